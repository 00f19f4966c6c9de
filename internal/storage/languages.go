package storage

import (
	"context"

	"penpal/backend/internal/models"
)

// SaveLanguage inserts the language unless one with the same code exists;
// language.ID is filled in either way.
func (s *Service) SaveLanguage(ctx context.Context, language *models.Language) error {
	return s.DB.WithContext(ctx).
		Where(models.Language{Code: language.Code}).
		Attrs(models.Language{Name: language.Name}).
		FirstOrCreate(language).Error
}

func (s *Service) GetLanguageByID(ctx context.Context, id uint) (*models.Language, error) {
	var language models.Language
	if err := s.DB.WithContext(ctx).First(&language, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &language, nil
}

func (s *Service) GetLanguageByCode(ctx context.Context, code string) (*models.Language, error) {
	var language models.Language
	if err := s.DB.WithContext(ctx).Where("code = ?", code).First(&language).Error; err != nil {
		return nil, notFound(err)
	}
	return &language, nil
}

// ListLanguages returns all languages by name with how many profiles learn each.
func (s *Service) ListLanguages(ctx context.Context) ([]models.LanguageStat, error) {
	var stats []models.LanguageStat
	err := s.DB.WithContext(ctx).
		Model(&models.Language{}).
		Select("languages.id, languages.name, languages.code, COUNT(pll.user_profile_id) AS learner_count").
		Joins("LEFT JOIN profile_learning_languages pll ON pll.language_id = languages.id").
		Group("languages.id, languages.name, languages.code").
		Order("languages.name").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

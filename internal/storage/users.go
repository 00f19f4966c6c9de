package storage

import (
	"context"
	"log"

	"penpal/backend/internal/models"

	"gorm.io/gorm"
)

// CreateUser inserts the user and its profile in one transaction. A user
// without a prefilled profile gets models.NewUserProfile().
func (s *Service) CreateUser(ctx context.Context, user *models.User) error {
	if user.Profile == nil {
		user.Profile = models.NewUserProfile()
	}
	if !user.Profile.Proficiency.Valid() {
		user.Profile.Proficiency = models.ProficiencyBeginner
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Profile").Create(user).Error; err != nil {
			return err
		}
		user.Profile.UserID = user.ID
		return tx.Omit("User", "NativeLanguage", "LearningLanguages.*").Create(user.Profile).Error
	})
	if err != nil {
		log.Printf("ERROR: Failed to create user %s: %v", user.Username, err)
		return err
	}

	log.Printf("INFO: New user %s saved to database (ID: %s).", user.Username, user.ID)
	return nil
}

func (s *Service) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Service) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Service) profiles(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx).
		Preload("User").
		Preload("NativeLanguage").
		Preload("LearningLanguages")
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := s.profiles(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, notFound(err)
	}
	return &profile, nil
}

// UpdateProfile writes the scalar profile fields. Learning languages are
// changed through SetLearningLanguages.
func (s *Service) UpdateProfile(ctx context.Context, profile *models.UserProfile) error {
	return s.DB.WithContext(ctx).Model(profile).
		Select("native_language_id", "proficiency", "bio", "is_available").
		Updates(map[string]any{
			"native_language_id": profile.NativeLanguageID,
			"proficiency":        profile.Proficiency,
			"bio":                profile.Bio,
			"is_available":       profile.IsAvailable,
		}).Error
}

func (s *Service) SetLearningLanguages(ctx context.Context, profile *models.UserProfile, languages []models.Language) error {
	return s.DB.WithContext(ctx).Model(profile).Association("LearningLanguages").Replace(languages)
}

// FindReciprocalProfiles returns available profiles native in targetLanguageID
// that are learning userNativeID, excluding excludeUserID.
func (s *Service) FindReciprocalProfiles(ctx context.Context, excludeUserID string, targetLanguageID, userNativeID uint) ([]models.UserProfile, error) {
	var profiles []models.UserProfile
	err := s.profiles(ctx).
		Where("user_profiles.native_language_id = ?", targetLanguageID).
		Where("user_profiles.id IN (?)", s.learnersOf(ctx, userNativeID)).
		Where("user_profiles.is_available = ?", true).
		Where("user_profiles.user_id <> ?", excludeUserID).
		Order("user_profiles.id").
		Find(&profiles).Error
	if err != nil {
		log.Printf("ERROR: Failed to query reciprocal partners for %s: %v", excludeUserID, err)
		return nil, err
	}
	return profiles, nil
}

// FindBroaderProfiles returns available profiles that are native in or
// learning targetLanguageID, excluding excludeUserID.
func (s *Service) FindBroaderProfiles(ctx context.Context, excludeUserID string, targetLanguageID uint) ([]models.UserProfile, error) {
	var profiles []models.UserProfile
	err := s.profiles(ctx).
		Where("(user_profiles.native_language_id = ? OR user_profiles.id IN (?))", targetLanguageID, s.learnersOf(ctx, targetLanguageID)).
		Where("user_profiles.is_available = ?", true).
		Where("user_profiles.user_id <> ?", excludeUserID).
		Order("user_profiles.id").
		Find(&profiles).Error
	if err != nil {
		log.Printf("ERROR: Failed to query broader partners for %s: %v", excludeUserID, err)
		return nil, err
	}
	return profiles, nil
}

// learnersOf is a subquery selecting ids of profiles learning languageID.
func (s *Service) learnersOf(ctx context.Context, languageID uint) *gorm.DB {
	return s.DB.WithContext(ctx).
		Table("profile_learning_languages").
		Select("user_profile_id").
		Where("language_id = ?", languageID)
}

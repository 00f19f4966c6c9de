package models

// Proficiency is a self-declared level in the languages a user is learning.
type Proficiency string

const (
	ProficiencyBeginner     Proficiency = "beginner"
	ProficiencyIntermediate Proficiency = "intermediate"
	ProficiencyAdvanced     Proficiency = "advanced"
	ProficiencyNative       Proficiency = "native"
)

// Valid reports whether p is one of the known levels.
func (p Proficiency) Valid() bool {
	switch p {
	case ProficiencyBeginner, ProficiencyIntermediate, ProficiencyAdvanced, ProficiencyNative:
		return true
	}
	return false
}

// UserProfile holds the language-exchange attributes of a user.
type UserProfile struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID string `gorm:"size:36;uniqueIndex;not null" json:"user_id"`
	User   *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`

	NativeLanguageID  *uint      `gorm:"index" json:"native_language_id"`
	NativeLanguage    *Language  `json:"native_language,omitempty"`
	LearningLanguages []Language `gorm:"many2many:profile_learning_languages;" json:"learning_languages"`

	Proficiency Proficiency `gorm:"size:16;not null" json:"proficiency"`
	Bio         string      `gorm:"type:text" json:"bio"`
	IsAvailable bool        `gorm:"not null;index" json:"is_available"`
}

// NewUserProfile returns the profile every new user starts with.
func NewUserProfile() *UserProfile {
	return &UserProfile{
		Proficiency: ProficiencyBeginner,
		IsAvailable: true,
	}
}

// IsLearning reports whether languageID is among the profile's learning languages.
func (p *UserProfile) IsLearning(languageID uint) bool {
	for _, l := range p.LearningLanguages {
		if l.ID == languageID {
			return true
		}
	}
	return false
}

// IsNativeIn reports whether the profile's native language is languageID.
func (p *UserProfile) IsNativeIn(languageID uint) bool {
	return p.NativeLanguageID != nil && *p.NativeLanguageID == languageID
}

// Username is a nil-safe accessor used by presenters.
func (p *UserProfile) Username() string {
	if p.User == nil {
		return ""
	}
	return p.User.Username
}

package models

// Language is immutable reference data: a language users can speak natively or learn.
type Language struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Code string `gorm:"size:5;uniqueIndex;not null" json:"code"` // ISO 639-1, e.g. "en"
}

// LanguageStat is a Language together with the number of profiles learning it.
type LanguageStat struct {
	Language
	LearnerCount int64 `json:"learner_count"`
}

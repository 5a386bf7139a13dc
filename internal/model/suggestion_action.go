package model

import "time"

// SuggestionActionRecord journals a user decision on one suggestion.
type SuggestionActionRecord struct {
	ID             uint      `gorm:"primarykey"`
	SettingName    string    `gorm:"not null"`
	CurrentValue   float64   `gorm:"not null"`
	SuggestedValue float64   `gorm:"not null"`
	Action         string    `gorm:"not null"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (SuggestionActionRecord) TableName() string {
	return "suggestion_action_records"
}

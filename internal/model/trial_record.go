package model

import (
	"time"

	"gorm.io/datatypes"
)

// TrialRecord journals one backtest comparison run from the optimize view.
type TrialRecord struct {
	ID                uint           `gorm:"primarykey"`
	Strategy          string         `gorm:"not null"`
	Days              int            `gorm:"not null"`
	SettingsPatch     datatypes.JSON `gorm:"type:jsonb"`
	CurrentSnapshot   datatypes.JSON `gorm:"type:jsonb"`
	OptimizedSnapshot datatypes.JSON `gorm:"type:jsonb"`
	TradeReductionPct float64        `gorm:"not null;default:0"`
	IsCustom          bool           `gorm:"not null;default:false"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (TrialRecord) TableName() string {
	return "trial_records"
}

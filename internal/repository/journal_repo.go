package repository

import (
	"context"
	"time"
	"trading-dashboard/internal/model"

	"gorm.io/gorm"
)

type JournalRepository interface {
	CreateTrial(ctx context.Context, record *model.TrialRecord) error
	CreateSuggestionAction(ctx context.Context, record *model.SuggestionActionRecord) error
	GetRecentTrials(ctx context.Context, limit int) ([]model.TrialRecord, error)
	DeleteOlderThan(ctx context.Context, date time.Time) (int64, error)
}

type journalRepository struct {
	db *gorm.DB
}

func NewJournalRepository(db *gorm.DB) JournalRepository {
	return &journalRepository{db: db}
}

func (r *journalRepository) CreateTrial(ctx context.Context, record *model.TrialRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *journalRepository) CreateSuggestionAction(ctx context.Context, record *model.SuggestionActionRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *journalRepository) GetRecentTrials(ctx context.Context, limit int) ([]model.TrialRecord, error) {
	var records []model.TrialRecord
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

func (r *journalRepository) DeleteOlderThan(ctx context.Context, date time.Time) (int64, error) {
	resTrials := r.db.WithContext(ctx).Where("created_at < ?", date).Delete(&model.TrialRecord{})
	if resTrials.Error != nil {
		return 0, resTrials.Error
	}
	resActions := r.db.WithContext(ctx).Where("created_at < ?", date).Delete(&model.SuggestionActionRecord{})
	if resActions.Error != nil {
		return resTrials.RowsAffected, resActions.Error
	}
	return resTrials.RowsAffected + resActions.RowsAffected, nil
}

package store

import (
	"context"

	"github.com/oscargavin/foremost-sub001/internal/store/model"
	"gorm.io/gorm"
)

type Run interface {
	Create(ctx context.Context, rec model.RunRecord) error
	List(ctx context.Context, limit int) ([]model.RunRecord, error)
}

type RunStore struct {
	db *gorm.DB
}

func NewRunStore(db *gorm.DB) *RunStore {
	return &RunStore{db: db}
}

func (s *RunStore) Create(ctx context.Context, rec model.RunRecord) error {
	return s.db.WithContext(ctx).Create(&rec).Error
}

func (s *RunStore) List(ctx context.Context, limit int) ([]model.RunRecord, error) {
	var recs []model.RunRecord
	err := s.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Find(&recs).Error
	return recs, err
}

package repository

import (
	"context"

	"StryktipsSync/internal/model"

	"gorm.io/gorm"
)

// ExpertRepository stores and serves scraped expert predictions.
type ExpertRepository interface {
	// ListByMatchID returns all stored predictions linked to one match.
	ListByMatchID(ctx context.Context, matchID uint64) ([]*model.ExpertItem, error)
	// ListByMatchIDs batch-loads predictions for several matches.
	ListByMatchIDs(ctx context.Context, matchIDs []uint64) ([]*model.ExpertItem, error)
	// Exists reports whether an item with the same URL and the same match
	// linkage (including both unlinked) is already stored.
	Exists(ctx context.Context, url string, matchID *uint64) (bool, error)
	// Create stores one prediction.
	Create(ctx context.Context, item *model.ExpertItem) error
	// ListLatest returns the most recently published items, optionally
	// filtered by source.
	ListLatest(ctx context.Context, source string, limit int) ([]*model.ExpertItem, error)
}

type expertRepository struct {
	db *gorm.DB
}

// NewExpertRepository creates an ExpertRepository backed by gorm.
func NewExpertRepository(db *gorm.DB) ExpertRepository {
	return &expertRepository{db: db}
}

func (r *expertRepository) ListByMatchID(ctx context.Context, matchID uint64) ([]*model.ExpertItem, error) {
	var items []*model.ExpertItem
	if err := r.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("published_at ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *expertRepository) ListByMatchIDs(ctx context.Context, matchIDs []uint64) ([]*model.ExpertItem, error) {
	if len(matchIDs) == 0 {
		return []*model.ExpertItem{}, nil
	}
	var items []*model.ExpertItem
	if err := r.db.WithContext(ctx).
		Where("match_id IN ?", matchIDs).
		Order("published_at ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *expertRepository) Exists(ctx context.Context, url string, matchID *uint64) (bool, error) {
	db := r.db.WithContext(ctx).Model(&model.ExpertItem{}).Where("url = ?", url)
	if matchID != nil {
		db = db.Where("match_id = ?", *matchID)
	} else {
		db = db.Where("match_id IS NULL")
	}
	var count int64
	if err := db.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *expertRepository) Create(ctx context.Context, item *model.ExpertItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *expertRepository) ListLatest(ctx context.Context, source string, limit int) ([]*model.ExpertItem, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	db := r.db.WithContext(ctx).Model(&model.ExpertItem{})
	if source != "" {
		db = db.Where("source = ?", source)
	}
	var items []*model.ExpertItem
	if err := db.Order("published_at DESC").Limit(limit).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

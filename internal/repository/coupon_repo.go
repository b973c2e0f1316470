package repository

import (
	"context"
	"time"

	"StryktipsSync/internal/model"

	"gorm.io/gorm"
)

// CouponRepository serves coupon, match and odds snapshots to the
// analysis services.
type CouponRepository interface {
	// GetByUUID fetches a coupon by its external UUID.
	GetByUUID(ctx context.Context, couponUUID string) (*model.Coupon, error)
	// GetByID fetches a coupon by its primary key.
	GetByID(ctx context.Context, couponID uint64) (*model.Coupon, error)
	// GetActive fetches the most recent active coupon.
	GetActive(ctx context.Context) (*model.Coupon, error)
	// ListMatches returns a coupon's matches ordered by match number.
	ListMatches(ctx context.Context, couponID uint64) ([]*model.Match, error)
	// GetOddsByMatchIDs batch-loads all bookmaker quotes for the given matches.
	GetOddsByMatchIDs(ctx context.Context, matchIDs []uint64) ([]*model.Odds, error)
	// UpdateOddsProbabilities writes the cached implied probabilities back
	// onto individual odds records.
	UpdateOddsProbabilities(ctx context.Context, records []*model.Odds) error
	// ListLinkableMatches returns matches of active coupons kicking off
	// after cutoff, the candidate set for fuzzy prediction linking.
	ListLinkableMatches(ctx context.Context, cutoff time.Time) ([]*model.Match, error)
}

type couponRepository struct {
	db *gorm.DB
}

// NewCouponRepository creates a CouponRepository backed by gorm.
func NewCouponRepository(db *gorm.DB) CouponRepository {
	return &couponRepository{db: db}
}

func (r *couponRepository) GetByUUID(ctx context.Context, couponUUID string) (*model.Coupon, error) {
	var coupon model.Coupon
	if err := r.db.WithContext(ctx).
		Where("coupon_uuid = ?", couponUUID).
		First(&coupon).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *couponRepository) GetByID(ctx context.Context, couponID uint64) (*model.Coupon, error) {
	var coupon model.Coupon
	if err := r.db.WithContext(ctx).
		Where("id = ?", couponID).
		First(&coupon).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *couponRepository) GetActive(ctx context.Context) (*model.Coupon, error) {
	var coupon model.Coupon
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("draw_date DESC").
		First(&coupon).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *couponRepository) ListMatches(ctx context.Context, couponID uint64) ([]*model.Match, error) {
	var matches []*model.Match
	if err := r.db.WithContext(ctx).
		Where("coupon_id = ?", couponID).
		Order("match_number ASC").
		Find(&matches).Error; err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *couponRepository) GetOddsByMatchIDs(ctx context.Context, matchIDs []uint64) ([]*model.Odds, error) {
	if len(matchIDs) == 0 {
		return []*model.Odds{}, nil
	}
	var records []*model.Odds
	if err := r.db.WithContext(ctx).
		Where("match_id IN ?", matchIDs).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *couponRepository) UpdateOddsProbabilities(ctx context.Context, records []*model.Odds) error {
	for _, rec := range records {
		if err := r.db.WithContext(ctx).Model(&model.Odds{}).
			Where("id = ?", rec.ID).
			Updates(map[string]interface{}{
				"home_probability": rec.HomeProbability,
				"draw_probability": rec.DrawProbability,
				"away_probability": rec.AwayProbability,
			}).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *couponRepository) ListLinkableMatches(ctx context.Context, cutoff time.Time) ([]*model.Match, error) {
	var matches []*model.Match
	if err := r.db.WithContext(ctx).Model(&model.Match{}).
		Joins("JOIN coupons ON coupons.id = matches.coupon_id").
		Where("coupons.is_active = ? AND matches.kickoff_time > ?", true, cutoff).
		Find(&matches).Error; err != nil {
		return nil, err
	}
	return matches, nil
}

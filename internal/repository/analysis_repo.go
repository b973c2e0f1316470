package repository

import (
	"context"

	"StryktipsSync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AnalysisRepository persists calculated per-match analyses and generated
// row suggestions.
type AnalysisRepository interface {
	// Upsert writes an analysis, replacing any previous one for the match.
	Upsert(ctx context.Context, analysis *model.Analysis) error
	// GetByMatchID fetches the analysis for one match.
	GetByMatchID(ctx context.Context, matchID uint64) (*model.Analysis, error)
	// MapByMatchNumber returns a coupon's analyses keyed by match number.
	MapByMatchNumber(ctx context.Context, couponID uint64) (map[int]*model.Analysis, error)
	// SetExpertSummary updates the expert summary text on a match's analysis.
	SetExpertSummary(ctx context.Context, matchID uint64, summary string) error
	// SaveSuggestedRows appends the rows of one generation run.
	SaveSuggestedRows(ctx context.Context, rows []*model.SuggestedRow) error
	// ListSuggestedRows returns a coupon's suggestions, newest first.
	ListSuggestedRows(ctx context.Context, couponID uint64, limit int) ([]*model.SuggestedRow, error)
}

type analysisRepository struct {
	db *gorm.DB
}

// NewAnalysisRepository creates an AnalysisRepository backed by gorm.
func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

func (r *analysisRepository) Upsert(ctx context.Context, analysis *model.Analysis) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "match_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"avg_home_odds", "avg_draw_odds", "avg_away_odds",
			"true_home_prob", "true_draw_prob", "true_away_prob",
			"home_value", "draw_value", "away_value",
			"recommended_signs", "calculated_at",
		}),
	}).Create(analysis).Error
}

func (r *analysisRepository) GetByMatchID(ctx context.Context, matchID uint64) (*model.Analysis, error) {
	var analysis model.Analysis
	if err := r.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		First(&analysis).Error; err != nil {
		return nil, err
	}
	return &analysis, nil
}

func (r *analysisRepository) MapByMatchNumber(ctx context.Context, couponID uint64) (map[int]*model.Analysis, error) {
	var matches []*model.Match
	if err := r.db.WithContext(ctx).
		Select("id", "match_number").
		Where("coupon_id = ?", couponID).
		Find(&matches).Error; err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return map[int]*model.Analysis{}, nil
	}
	numberByMatchID := make(map[uint64]int, len(matches))
	matchIDs := make([]uint64, 0, len(matches))
	for _, m := range matches {
		numberByMatchID[m.ID] = m.MatchNumber
		matchIDs = append(matchIDs, m.ID)
	}

	var analyses []*model.Analysis
	if err := r.db.WithContext(ctx).
		Where("match_id IN ?", matchIDs).
		Find(&analyses).Error; err != nil {
		return nil, err
	}
	result := make(map[int]*model.Analysis, len(analyses))
	for _, a := range analyses {
		result[numberByMatchID[a.MatchID]] = a
	}
	return result, nil
}

func (r *analysisRepository) SetExpertSummary(ctx context.Context, matchID uint64, summary string) error {
	return r.db.WithContext(ctx).Model(&model.Analysis{}).
		Where("match_id = ?", matchID).
		Update("expert_summary", summary).Error
}

func (r *analysisRepository) SaveSuggestedRows(ctx context.Context, rows []*model.SuggestedRow) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(rows).Error
}

func (r *analysisRepository) ListSuggestedRows(ctx context.Context, couponID uint64, limit int) ([]*model.SuggestedRow, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var rows []*model.SuggestedRow
	if err := r.db.WithContext(ctx).
		Where("coupon_id = ?", couponID).
		Order("generated_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

package model

import (
	"time"

	"gorm.io/datatypes"
)

// Analysis is the calculated value view of one match, one row per match.
// A rerun replaces the previous record. The value columns stay nil when
// the corresponding distribution percentage was missing or zero.
type Analysis struct {
	ID      uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	MatchID uint64 `gorm:"column:match_id;type:bigint;not null;uniqueIndex"`

	AvgHomeOdds float64 `gorm:"column:avg_home_odds;type:numeric(8,3);not null"`
	AvgDrawOdds float64 `gorm:"column:avg_draw_odds;type:numeric(8,3);not null"`
	AvgAwayOdds float64 `gorm:"column:avg_away_odds;type:numeric(8,3);not null"`

	TrueHomeProb float64 `gorm:"column:true_home_prob;type:numeric(8,6);not null"`
	TrueDrawProb float64 `gorm:"column:true_draw_prob;type:numeric(8,6);not null"`
	TrueAwayProb float64 `gorm:"column:true_away_prob;type:numeric(8,6);not null"`

	HomeValue *float64 `gorm:"column:home_value;type:numeric(8,4)"`
	DrawValue *float64 `gorm:"column:draw_value;type:numeric(8,4)"`
	AwayValue *float64 `gorm:"column:away_value;type:numeric(8,4)"`

	// Qualifying signs concatenated in fixed "1","X","2" order.
	RecommendedSigns string `gorm:"column:recommended_signs;type:varchar(10);not null"`

	ExpertSummary *string `gorm:"column:expert_summary;type:text"`

	CalculatedAt time.Time `gorm:"column:calculated_at;type:timestamp;default:now()"`
}

// SuggestedRow is one generated coupon row. Rows are append-only: a new
// generation run never touches earlier suggestions, and all rows from
// one invocation share a RunUUID.
type SuggestedRow struct {
	ID       uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	CouponID uint64 `gorm:"column:coupon_id;type:bigint;not null;index"`
	RunUUID  string `gorm:"column:run_uuid;type:varchar(64);not null;index"`

	// Row as JSON, match number to sign string: {"1":"1","2":"1X",...}
	RowData datatypes.JSON `gorm:"column:row_data;type:jsonb;not null"`

	HalfCoverCount int     `gorm:"column:half_cover_count;type:int;not null"`
	ExpectedValue  float64 `gorm:"column:expected_value;type:numeric(8,4);not null"`
	// CostFactor is the number of physical combinations the row covers,
	// always 2^half_cover_count.
	CostFactor int     `gorm:"column:cost_factor;type:int;not null"`
	Reasoning  *string `gorm:"column:reasoning;type:text"`

	GeneratedAt time.Time `gorm:"column:generated_at;type:timestamp;default:now()"`
}

func (Analysis) TableName() string     { return "analyses" }
func (SuggestedRow) TableName() string { return "suggested_rows" }

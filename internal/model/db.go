package model

import (
	"time"
)

// Coupon is one weekly Stryktips coupon of 13 matches.
type Coupon struct {
	ID            uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	CouponUUID    string    `gorm:"column:coupon_uuid;type:varchar(64);uniqueIndex;not null"`
	WeekNumber    int       `gorm:"column:week_number;type:int;uniqueIndex:uk_week_year;not null"`
	Year          int       `gorm:"column:year;type:int;uniqueIndex:uk_week_year;not null"`
	DrawDate      time.Time `gorm:"column:draw_date;type:timestamp;not null"`
	IsActive      bool      `gorm:"column:is_active;type:boolean;default:true;index"`
	JackpotAmount *int64    `gorm:"column:jackpot_amount;type:bigint"`
	CreatedAt     time.Time `gorm:"column:created_at;type:timestamp;default:now()"`
	UpdatedAt     time.Time `gorm:"column:updated_at;type:timestamp;default:now()"`

	Matches []Match `gorm:"foreignKey:CouponID;constraint:OnDelete:CASCADE"`
}

// Match is a single fixture on a coupon, numbered 1..13. The percentage
// fields carry the public betting distribution (streckprocent); each may
// be missing independently of the others.
type Match struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	CouponID    uint64    `gorm:"column:coupon_id;type:bigint;not null;index"`
	MatchNumber int       `gorm:"column:match_number;type:int;not null"`
	HomeTeam    string    `gorm:"column:home_team;type:varchar(200);not null"`
	AwayTeam    string    `gorm:"column:away_team;type:varchar(200);not null"`
	KickoffTime time.Time `gorm:"column:kickoff_time;type:timestamp;not null"`

	HomePercentage *float64 `gorm:"column:home_percentage;type:numeric(5,2)"`
	DrawPercentage *float64 `gorm:"column:draw_percentage;type:numeric(5,2)"`
	AwayPercentage *float64 `gorm:"column:away_percentage;type:numeric(5,2)"`

	// Final result once played: "1", "X" or "2".
	Result *string `gorm:"column:result;type:varchar(1)"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:now()"`
}

// Odds is one bookmaker's quoted 1X2 prices for a match. The probability
// columns cache the margin-removed implied probabilities; they are filled
// in by the value calculation, not by the fetcher.
type Odds struct {
	ID        uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	MatchID   uint64 `gorm:"column:match_id;type:bigint;not null;uniqueIndex:uk_match_bookmaker"`
	Bookmaker string `gorm:"column:bookmaker;type:varchar(100);not null;uniqueIndex:uk_match_bookmaker"`

	HomeOdds float64 `gorm:"column:home_odds;type:numeric(8,3);not null"`
	DrawOdds float64 `gorm:"column:draw_odds;type:numeric(8,3);not null"`
	AwayOdds float64 `gorm:"column:away_odds;type:numeric(8,3);not null"`

	HomeProbability *float64 `gorm:"column:home_probability;type:numeric(8,6)"`
	DrawProbability *float64 `gorm:"column:draw_probability;type:numeric(8,6)"`
	AwayProbability *float64 `gorm:"column:away_probability;type:numeric(8,6)"`

	FetchedAt time.Time `gorm:"column:fetched_at;type:timestamp;default:now()"`
}

func (Coupon) TableName() string { return "coupons" }
func (Match) TableName() string  { return "matches" }
func (Odds) TableName() string   { return "odds" }

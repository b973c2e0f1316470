package model

import (
	"time"

	"gorm.io/datatypes"
)

// ExpertItem is one stored expert prediction from an external source.
// MatchID is a weak reference: predictions are scraped independently of
// any coupon, so linking happens afterwards by fuzzy team-name matching
// and an unlinked item (MatchID == nil) is a valid state.
type ExpertItem struct {
	ID     uint64  `gorm:"column:id;primaryKey;autoIncrement"`
	Source string  `gorm:"column:source;type:varchar(100);not null;index"`
	Author *string `gorm:"column:author;type:varchar(200)"`

	PublishedAt time.Time `gorm:"column:published_at;type:timestamp;not null;index"`
	URL         string    `gorm:"column:url;type:text;not null"`
	Title       *string   `gorm:"column:title;type:text"`

	MatchID *uint64 `gorm:"column:match_id;type:bigint;index"`

	// Team names as scraped, kept for later reconciliation of unlinked items.
	MatchTags datatypes.JSON `gorm:"column:match_tags;type:jsonb"`

	// Pick is one of "1", "X", "2", "1X", "12", "X2".
	Pick       string  `gorm:"column:pick;type:varchar(10);not null"`
	Rationale  *string `gorm:"column:rationale;type:text"`
	Confidence *string `gorm:"column:confidence;type:varchar(50)"`

	ScrapedAt time.Time `gorm:"column:scraped_at;type:timestamp;default:now()"`
}

func (ExpertItem) TableName() string { return "expert_items" }

// ExpertPrediction is one freshly scraped expert pick as delivered by a
// provider, before it has been linked and stored as an ExpertItem.
type ExpertPrediction struct {
	Source      string
	Author      string
	PublishedAt time.Time
	URL         string
	Title       string
	HomeTeam    string
	AwayTeam    string
	Pick        string
	Rationale   string
	Confidence  string
}

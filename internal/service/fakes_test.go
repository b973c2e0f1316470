package service

import (
	"context"
	"io"
	"sort"
	"time"

	"StryktipsSync/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// fakeCouponRepo serves a fixed snapshot of coupons, matches and odds.
type fakeCouponRepo struct {
	coupons []*model.Coupon
	matches []*model.Match
	odds    []*model.Odds

	probabilityUpdates [][]*model.Odds
}

func (f *fakeCouponRepo) GetByUUID(_ context.Context, couponUUID string) (*model.Coupon, error) {
	for _, c := range f.coupons {
		if c.CouponUUID == couponUUID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCouponRepo) GetByID(_ context.Context, couponID uint64) (*model.Coupon, error) {
	for _, c := range f.coupons {
		if c.ID == couponID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCouponRepo) GetActive(_ context.Context) (*model.Coupon, error) {
	for _, c := range f.coupons {
		if c.IsActive {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCouponRepo) ListMatches(_ context.Context, couponID uint64) ([]*model.Match, error) {
	var out []*model.Match
	for _, m := range f.matches {
		if m.CouponID == couponID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MatchNumber < out[j].MatchNumber })
	return out, nil
}

func (f *fakeCouponRepo) GetOddsByMatchIDs(_ context.Context, matchIDs []uint64) ([]*model.Odds, error) {
	ids := make(map[uint64]bool, len(matchIDs))
	for _, id := range matchIDs {
		ids[id] = true
	}
	var out []*model.Odds
	for _, o := range f.odds {
		if ids[o.MatchID] {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeCouponRepo) UpdateOddsProbabilities(_ context.Context, records []*model.Odds) error {
	f.probabilityUpdates = append(f.probabilityUpdates, records)
	return nil
}

func (f *fakeCouponRepo) ListLinkableMatches(_ context.Context, cutoff time.Time) ([]*model.Match, error) {
	var out []*model.Match
	for _, m := range f.matches {
		if m.KickoffTime.After(cutoff) {
			out = append(out, m)
		}
	}
	return out, nil
}

// fakeAnalysisRepo keeps analyses and suggested rows in memory.
type fakeAnalysisRepo struct {
	matches   []*model.Match
	byMatchID map[uint64]*model.Analysis
	summaries map[uint64]string
	rows      []*model.SuggestedRow
}

func newFakeAnalysisRepo(matches []*model.Match) *fakeAnalysisRepo {
	return &fakeAnalysisRepo{
		matches:   matches,
		byMatchID: map[uint64]*model.Analysis{},
		summaries: map[uint64]string{},
	}
}

func (f *fakeAnalysisRepo) Upsert(_ context.Context, analysis *model.Analysis) error {
	f.byMatchID[analysis.MatchID] = analysis
	return nil
}

func (f *fakeAnalysisRepo) GetByMatchID(_ context.Context, matchID uint64) (*model.Analysis, error) {
	if a, ok := f.byMatchID[matchID]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAnalysisRepo) MapByMatchNumber(_ context.Context, couponID uint64) (map[int]*model.Analysis, error) {
	out := map[int]*model.Analysis{}
	for _, m := range f.matches {
		if m.CouponID != couponID {
			continue
		}
		if a, ok := f.byMatchID[m.ID]; ok {
			out[m.MatchNumber] = a
		}
	}
	return out, nil
}

func (f *fakeAnalysisRepo) SetExpertSummary(_ context.Context, matchID uint64, summary string) error {
	if _, ok := f.byMatchID[matchID]; ok {
		f.summaries[matchID] = summary
	}
	return nil
}

func (f *fakeAnalysisRepo) SaveSuggestedRows(_ context.Context, rows []*model.SuggestedRow) error {
	f.rows = append(f.rows, rows...)
	return nil
}

func (f *fakeAnalysisRepo) ListSuggestedRows(_ context.Context, couponID uint64, limit int) ([]*model.SuggestedRow, error) {
	var out []*model.SuggestedRow
	for i := len(f.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if f.rows[i].CouponID == couponID {
			out = append(out, f.rows[i])
		}
	}
	return out, nil
}

// fakeExpertRepo keeps expert items in memory.
type fakeExpertRepo struct {
	items  []*model.ExpertItem
	nextID uint64
}

func (f *fakeExpertRepo) ListByMatchID(_ context.Context, matchID uint64) ([]*model.ExpertItem, error) {
	var out []*model.ExpertItem
	for _, item := range f.items {
		if item.MatchID != nil && *item.MatchID == matchID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeExpertRepo) ListByMatchIDs(_ context.Context, matchIDs []uint64) ([]*model.ExpertItem, error) {
	ids := make(map[uint64]bool, len(matchIDs))
	for _, id := range matchIDs {
		ids[id] = true
	}
	var out []*model.ExpertItem
	for _, item := range f.items {
		if item.MatchID != nil && ids[*item.MatchID] {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeExpertRepo) Exists(_ context.Context, url string, matchID *uint64) (bool, error) {
	for _, item := range f.items {
		if item.URL != url {
			continue
		}
		if item.MatchID == nil && matchID == nil {
			return true, nil
		}
		if item.MatchID != nil && matchID != nil && *item.MatchID == *matchID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeExpertRepo) Create(_ context.Context, item *model.ExpertItem) error {
	f.nextID++
	item.ID = f.nextID
	f.items = append(f.items, item)
	return nil
}

func (f *fakeExpertRepo) ListLatest(_ context.Context, source string, limit int) ([]*model.ExpertItem, error) {
	var out []*model.ExpertItem
	for i := len(f.items) - 1; i >= 0 && len(out) < limit; i-- {
		if source == "" || f.items[i].Source == source {
			out = append(out, f.items[i])
		}
	}
	return out, nil
}

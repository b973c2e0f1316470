package service

import (
	"context"
	"testing"
	"time"

	"StryktipsSync/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func f64(v float64) *float64 { return &v }

func testMatch(number int, homePct, drawPct, awayPct *float64) *model.Match {
	return &model.Match{
		ID:             uint64(number),
		CouponID:       1,
		MatchNumber:    number,
		HomeTeam:       "Hemma",
		AwayTeam:       "Borta",
		KickoffTime:    time.Now().Add(24 * time.Hour),
		HomePercentage: homePct,
		DrawPercentage: drawPct,
		AwayPercentage: awayPct,
	}
}

func TestBuildAnalysisNoOddsIsSkipped(t *testing.T) {
	svc := NewValueService(nil, nil, 1.05, testLogger())
	assert.Nil(t, svc.BuildAnalysis(testMatch(1, f64(40), f64(30), f64(30)), nil))
}

func TestBuildAnalysisSingleBookmaker(t *testing.T) {
	svc := NewValueService(nil, nil, 1.05, testLogger())
	match := testMatch(1, f64(40), f64(30), f64(30))
	quotes := []*model.Odds{{MatchID: 1, Bookmaker: "Bet365", HomeOdds: 2.0, DrawOdds: 3.5, AwayOdds: 4.0}}

	analysis := svc.BuildAnalysis(match, quotes)
	require.NotNil(t, analysis)

	assert.InDelta(t, 0.4923, analysis.TrueHomeProb, 0.0001)
	assert.InDelta(t, 0.2813, analysis.TrueDrawProb, 0.0001)
	assert.InDelta(t, 0.2462, analysis.TrueAwayProb, 0.0001)

	// Home is undervalued by the public: 0.4923 / 0.40 ≈ 1.23.
	require.NotNil(t, analysis.HomeValue)
	assert.InDelta(t, 1.2308, *analysis.HomeValue, 0.001)
	assert.Equal(t, "1", analysis.RecommendedSigns)
}

func TestBuildAnalysisAveragesBookmakers(t *testing.T) {
	svc := NewValueService(nil, nil, 1.05, testLogger())
	match := testMatch(1, f64(40), f64(30), f64(30))
	quotes := []*model.Odds{
		{MatchID: 1, Bookmaker: "Bet365", HomeOdds: 2.0, DrawOdds: 3.4, AwayOdds: 4.0},
		{MatchID: 1, Bookmaker: "Unibet", HomeOdds: 2.2, DrawOdds: 3.6, AwayOdds: 3.8},
	}

	analysis := svc.BuildAnalysis(match, quotes)
	require.NotNil(t, analysis)
	assert.InDelta(t, 2.1, analysis.AvgHomeOdds, 1e-9)
	assert.InDelta(t, 3.5, analysis.AvgDrawOdds, 1e-9)
	assert.InDelta(t, 3.9, analysis.AvgAwayOdds, 1e-9)
}

func TestBuildAnalysisCachesProbabilitiesOnQuotes(t *testing.T) {
	svc := NewValueService(nil, nil, 1.05, testLogger())
	match := testMatch(1, f64(40), f64(30), f64(30))
	quotes := []*model.Odds{
		{MatchID: 1, Bookmaker: "Bet365", HomeOdds: 2.0, DrawOdds: 3.5, AwayOdds: 4.0},
		{MatchID: 1, Bookmaker: "Unibet", HomeOdds: 2.1, DrawOdds: 3.4, AwayOdds: 3.9},
	}

	require.NotNil(t, svc.BuildAnalysis(match, quotes))
	for _, q := range quotes {
		require.NotNil(t, q.HomeProbability, "bookmaker %s", q.Bookmaker)
		require.NotNil(t, q.DrawProbability)
		require.NotNil(t, q.AwayProbability)
		assert.InDelta(t, 1.0, *q.HomeProbability+*q.DrawProbability+*q.AwayProbability, 1e-6)
	}
}

func TestMissingDistributionLeavesValueNil(t *testing.T) {
	svc := NewValueService(nil, nil, 1.05, testLogger())
	quotes := []*model.Odds{{MatchID: 1, Bookmaker: "Bet365", HomeOdds: 2.0, DrawOdds: 3.5, AwayOdds: 4.0}}

	// Draw percentage missing, away percentage zero: both values stay nil.
	match := testMatch(1, f64(40), nil, f64(0))
	analysis := svc.BuildAnalysis(match, quotes)
	require.NotNil(t, analysis)
	assert.NotNil(t, analysis.HomeValue)
	assert.Nil(t, analysis.DrawValue)
	assert.Nil(t, analysis.AwayValue)
}

func TestRecommendSignsFallbackToHighest(t *testing.T) {
	svc := NewValueService(nil, nil, 1.05, testLogger())
	assert.Equal(t, "2", svc.recommendSigns(f64(0.9), f64(0.95), f64(1.0)))
}

func TestRecommendSignsMultipleInFixedOrder(t *testing.T) {
	svc := NewValueService(nil, nil, 1.05, testLogger())
	assert.Equal(t, "12", svc.recommendSigns(f64(1.1), f64(0.5), f64(1.2)))
	assert.Equal(t, "1X2", svc.recommendSigns(f64(1.1), f64(1.2), f64(1.3)))
	assert.Equal(t, "X2", svc.recommendSigns(f64(0.9), f64(1.06), f64(1.05)))
}

func TestRecommendSignsTieBreakPriority(t *testing.T) {
	svc := NewValueService(nil, nil, 1.05, testLogger())
	// All below threshold and equal: fixed priority picks home.
	assert.Equal(t, "1", svc.recommendSigns(f64(1.0), f64(1.0), f64(1.0)))
	// Nil values count as zero in the fallback.
	assert.Equal(t, "X", svc.recommendSigns(nil, f64(0.8), nil))
}

func TestCalculateCouponSkipsMatchesWithoutOdds(t *testing.T) {
	var matches []*model.Match
	var quotes []*model.Odds
	for n := 1; n <= 13; n++ {
		matches = append(matches, testMatch(n, f64(40), f64(30), f64(30)))
		if n == 7 {
			continue // no bookmaker quoted match 7
		}
		quotes = append(quotes, &model.Odds{
			ID: uint64(n), MatchID: uint64(n), Bookmaker: "Bet365",
			HomeOdds: 2.0, DrawOdds: 3.5, AwayOdds: 4.0,
		})
	}
	couponRepo := &fakeCouponRepo{
		coupons: []*model.Coupon{{ID: 1, CouponUUID: "c-1", IsActive: true}},
		matches: matches,
		odds:    quotes,
	}
	analysisRepo := newFakeAnalysisRepo(matches)
	svc := NewValueService(couponRepo, analysisRepo, 1.05, testLogger())

	result, err := svc.CalculateCoupon(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 12, result.Analyzed)
	assert.Equal(t, 13, result.Total)
	assert.Equal(t, []int{7}, result.Skipped)
	assert.Len(t, analysisRepo.byMatchID, 12)
	_, hasSkipped := analysisRepo.byMatchID[7]
	assert.False(t, hasSkipped)
}

func TestCalculateCouponRerunReplacesAnalyses(t *testing.T) {
	matches := []*model.Match{testMatch(1, f64(40), f64(30), f64(30))}
	quotes := []*model.Odds{{ID: 1, MatchID: 1, Bookmaker: "Bet365", HomeOdds: 2.0, DrawOdds: 3.5, AwayOdds: 4.0}}
	couponRepo := &fakeCouponRepo{
		coupons: []*model.Coupon{{ID: 1, CouponUUID: "c-1", IsActive: true}},
		matches: matches,
		odds:    quotes,
	}
	analysisRepo := newFakeAnalysisRepo(matches)
	svc := NewValueService(couponRepo, analysisRepo, 1.05, testLogger())

	_, err := svc.CalculateCoupon(context.Background(), 1)
	require.NoError(t, err)
	_, err = svc.CalculateCoupon(context.Background(), 1)
	require.NoError(t, err)

	assert.Len(t, analysisRepo.byMatchID, 1, "rerun replaces, never duplicates")
}

func TestCalculateCouponUnknownCouponFails(t *testing.T) {
	analysisRepo := newFakeAnalysisRepo(nil)
	svc := NewValueService(&fakeCouponRepo{}, analysisRepo, 1.05, testLogger())

	_, err := svc.CalculateCoupon(context.Background(), 999)
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Empty(t, analysisRepo.byMatchID)
}

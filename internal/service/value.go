package service

import (
	"context"
	"fmt"
	"time"

	"StryktipsSync/internal/model"
	"StryktipsSync/internal/odds"
	"StryktipsSync/internal/repository"

	"github.com/sirupsen/logrus"
)

// ValueService scores each outcome of a match by comparing the
// margin-removed bookmaker probability with the public betting
// distribution, and recommends signs.
type ValueService struct {
	couponRepo   repository.CouponRepository
	analysisRepo repository.AnalysisRepository
	threshold    float64
	logger       *logrus.Logger
}

// NewValueService creates a ValueService. threshold is the minimum value
// ratio for a sign to be recommended outright.
func NewValueService(couponRepo repository.CouponRepository, analysisRepo repository.AnalysisRepository, threshold float64, logger *logrus.Logger) *ValueService {
	return &ValueService{
		couponRepo:   couponRepo,
		analysisRepo: analysisRepo,
		threshold:    threshold,
		logger:       logger,
	}
}

// CouponValueResult reports how much of a coupon could be analyzed.
// Fewer than 13 analyzed matches is a reportable shortfall, not an error.
type CouponValueResult struct {
	CouponID uint64 `json:"coupon_id"`
	Analyzed int    `json:"analyzed"`
	Total    int    `json:"total"`
	Skipped  []int  `json:"skipped_match_numbers,omitempty"`
}

// BuildAnalysis computes the analysis for one match from its bookmaker
// quotes. Returns nil when the match has no odds; the caller skips such
// matches. As a side effect the margin-removed probabilities are written
// onto each quote record (in memory) for downstream transparency.
func (s *ValueService) BuildAnalysis(match *model.Match, quotes []*model.Odds) *model.Analysis {
	if len(quotes) == 0 {
		s.logger.Warnf("no odds available for match %d", match.MatchNumber)
		return nil
	}

	triples := make([]odds.Triple, 0, len(quotes))
	for _, q := range quotes {
		triples = append(triples, odds.Triple{Home: q.HomeOdds, Draw: q.DrawOdds, Away: q.AwayOdds})
	}
	avg, err := odds.Average(triples)
	if err != nil {
		return nil
	}
	trueProb, err := odds.Implied(avg)
	if err != nil {
		s.logger.WithError(err).Warnf("unusable odds for match %d", match.MatchNumber)
		return nil
	}

	// Cache per-bookmaker implied probabilities on the quote records.
	for _, q := range quotes {
		p, err := odds.Implied(odds.Triple{Home: q.HomeOdds, Draw: q.DrawOdds, Away: q.AwayOdds})
		if err != nil {
			continue
		}
		home, draw, away := p.Home, p.Draw, p.Away
		q.HomeProbability = &home
		q.DrawProbability = &draw
		q.AwayProbability = &away
	}

	homeValue := valueAgainstDistribution(trueProb.Home, match.HomePercentage)
	drawValue := valueAgainstDistribution(trueProb.Draw, match.DrawPercentage)
	awayValue := valueAgainstDistribution(trueProb.Away, match.AwayPercentage)

	recommended := s.recommendSigns(homeValue, drawValue, awayValue)

	s.logger.Infof("match %d: %s - %s -> recommended %s (values: 1=%.2f, X=%.2f, 2=%.2f)",
		match.MatchNumber, match.HomeTeam, match.AwayTeam, recommended,
		deref(homeValue), deref(drawValue), deref(awayValue))

	return &model.Analysis{
		MatchID:          match.ID,
		AvgHomeOdds:      avg.Home,
		AvgDrawOdds:      avg.Draw,
		AvgAwayOdds:      avg.Away,
		TrueHomeProb:     trueProb.Home,
		TrueDrawProb:     trueProb.Draw,
		TrueAwayProb:     trueProb.Away,
		HomeValue:        homeValue,
		DrawValue:        drawValue,
		AwayValue:        awayValue,
		RecommendedSigns: recommended,
		CalculatedAt:     time.Now().UTC(),
	}
}

// valueAgainstDistribution returns trueProb / (pct/100), or nil when the
// distribution percentage is missing or zero. A missing percentage never
// collapses to a zero value.
func valueAgainstDistribution(trueProb float64, pct *float64) *float64 {
	if pct == nil || *pct <= 0 {
		return nil
	}
	v := trueProb / (*pct / 100)
	return &v
}

// recommendSigns concatenates every sign whose value clears the
// threshold, in fixed "1","X","2" order. When none clears it, the single
// highest-value sign is recommended, ties resolved by the same order.
func (s *ValueService) recommendSigns(homeValue, drawValue, awayValue *float64) string {
	recommended := ""
	if homeValue != nil && *homeValue >= s.threshold {
		recommended += "1"
	}
	if drawValue != nil && *drawValue >= s.threshold {
		recommended += "X"
	}
	if awayValue != nil && *awayValue >= s.threshold {
		recommended += "2"
	}
	if recommended != "" {
		return recommended
	}

	best, bestValue := "1", deref(homeValue)
	if deref(drawValue) > bestValue {
		best, bestValue = "X", deref(drawValue)
	}
	if deref(awayValue) > bestValue {
		best = "2"
	}
	return best
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// CalculateCoupon runs the value calculation for every match on a coupon.
// Matches without odds are skipped with a warning and reported in the
// result; the caller decides whether the shortfall matters.
func (s *ValueService) CalculateCoupon(ctx context.Context, couponID uint64) (*CouponValueResult, error) {
	if _, err := s.couponRepo.GetByID(ctx, couponID); err != nil {
		return nil, fmt.Errorf("load coupon %d: %w", couponID, err)
	}
	matches, err := s.couponRepo.ListMatches(ctx, couponID)
	if err != nil {
		return nil, fmt.Errorf("list matches for coupon %d: %w", couponID, err)
	}

	matchIDs := make([]uint64, 0, len(matches))
	for _, m := range matches {
		matchIDs = append(matchIDs, m.ID)
	}
	allQuotes, err := s.couponRepo.GetOddsByMatchIDs(ctx, matchIDs)
	if err != nil {
		return nil, fmt.Errorf("load odds for coupon %d: %w", couponID, err)
	}
	quotesByMatch := make(map[uint64][]*model.Odds, len(matches))
	for _, q := range allQuotes {
		quotesByMatch[q.MatchID] = append(quotesByMatch[q.MatchID], q)
	}

	result := &CouponValueResult{CouponID: couponID, Total: len(matches)}
	for _, match := range matches {
		quotes := quotesByMatch[match.ID]
		analysis := s.BuildAnalysis(match, quotes)
		if analysis == nil {
			result.Skipped = append(result.Skipped, match.MatchNumber)
			continue
		}
		if err := s.analysisRepo.Upsert(ctx, analysis); err != nil {
			return nil, fmt.Errorf("save analysis for match %d: %w", match.MatchNumber, err)
		}
		if err := s.couponRepo.UpdateOddsProbabilities(ctx, quotes); err != nil {
			return nil, fmt.Errorf("cache odds probabilities for match %d: %w", match.MatchNumber, err)
		}
		result.Analyzed++
	}

	s.logger.Infof("calculated value for %d of %d matches on coupon %d",
		result.Analyzed, result.Total, couponID)
	if result.Analyzed < couponSize {
		s.logger.Warnf("coupon %d: only %d of %d matches have usable analysis",
			couponID, result.Analyzed, couponSize)
	}
	return result, nil
}

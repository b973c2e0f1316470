package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"StryktipsSync/internal/model"
)

// rationaleExcerptLen is how much of an expert's rationale is quoted in
// the summary before the ellipsis.
const rationaleExcerptLen = 100

// Summarize renders the expert predictions of one match as Swedish prose:
// total count, consensus band, full pick breakdown and one illustrative
// rationale excerpt.
func Summarize(items []*model.ExpertItem) string {
	if len(items) == 0 {
		return "Inga experttips tillgängliga."
	}

	counts := map[string]int{}
	var order []string
	for _, item := range items {
		if _, seen := counts[item.Pick]; !seen {
			order = append(order, item.Pick)
		}
		counts[item.Pick]++
	}

	// Breakdown sorted by count descending, first occurrence on ties.
	sorted := append([]string(nil), order...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return counts[sorted[i]] > counts[sorted[j]]
	})

	total := len(items)
	consensusPick := sorted[0]
	consensusCount := counts[consensusPick]
	pct := float64(consensusCount) / float64(total) * 100

	parts := []string{fmt.Sprintf("%d experter tippat.", total)}

	switch {
	case pct >= 60:
		parts = append(parts, fmt.Sprintf("Stark konsensus för %s (%d/%d, %.0f%%).",
			consensusPick, consensusCount, total, pct))
	case pct >= 40:
		parts = append(parts, fmt.Sprintf("Svag konsensus för %s (%d/%d, %.0f%%).",
			consensusPick, consensusCount, total, pct))
	default:
		parts = append(parts, fmt.Sprintf("Delade meningar. Vanligast: %s (%d/%d).",
			consensusPick, consensusCount, total))
	}

	breakdown := make([]string, 0, len(sorted))
	for _, pick := range sorted {
		breakdown = append(breakdown, fmt.Sprintf("%s=%d", pick, counts[pick]))
	}
	parts = append(parts, fmt.Sprintf("Fördelning: %s.", strings.Join(breakdown, ", ")))

	for _, item := range items {
		if item.Rationale == nil || *item.Rationale == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("Exempel: %s tippar %s - %s...",
			item.Source, item.Pick, truncateRunes(*item.Rationale, rationaleExcerptLen)))
		break
	}

	return strings.Join(parts, " ")
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// SummarizeCoupon builds the expert summary for every match on a coupon
// and persists it onto the match's analysis where one exists. Returns the
// summaries keyed by match number.
func (s *ConsensusService) SummarizeCoupon(ctx context.Context, couponID uint64) (map[int]string, error) {
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
	items, err := s.expertRepo.ListByMatchIDs(ctx, matchIDs)
	if err != nil {
		return nil, fmt.Errorf("load predictions for coupon %d: %w", couponID, err)
	}
	itemsByMatch := make(map[uint64][]*model.ExpertItem, len(matches))
	for _, item := range items {
		if item.MatchID != nil {
			itemsByMatch[*item.MatchID] = append(itemsByMatch[*item.MatchID], item)
		}
	}

	summaries := make(map[int]string, len(matches))
	for _, m := range matches {
		summary := Summarize(itemsByMatch[m.ID])
		summaries[m.MatchNumber] = summary

		// No-op when the match has no analysis yet.
		if err := s.analysisRepo.SetExpertSummary(ctx, m.ID, summary); err != nil {
			s.logger.WithError(err).Warnf("persist expert summary for match %d failed", m.MatchNumber)
		}
	}
	s.logger.Infof("summarized expert opinions for %d matches on coupon %d", len(summaries), couponID)
	return summaries, nil
}

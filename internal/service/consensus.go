package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"StryktipsSync/internal/interfaces"
	"StryktipsSync/internal/model"
	"StryktipsSync/internal/repository"
	"StryktipsSync/internal/teamkey"

	"github.com/sirupsen/logrus"
)

// ConsensusService aggregates independent expert predictions into
// per-match consensus views, links freshly scraped predictions to coupon
// matches, and writes summary prose onto analyses.
type ConsensusService struct {
	expertRepo   repository.ExpertRepository
	couponRepo   repository.CouponRepository
	analysisRepo repository.AnalysisRepository
	providers    []interfaces.ExpertProvider
	// weights is the fixed source-reliability table for the weighted
	// consensus; unknown sources count as 1.0. Injected, never mutated.
	weights map[string]float64
	window  time.Duration
	logger  *logrus.Logger
}

// NewConsensusService creates a ConsensusService. windowDays bounds how
// far back prediction-to-match linking searches.
func NewConsensusService(
	expertRepo repository.ExpertRepository,
	couponRepo repository.CouponRepository,
	analysisRepo repository.AnalysisRepository,
	providers []interfaces.ExpertProvider,
	weights map[string]float64,
	windowDays int,
	logger *logrus.Logger,
) *ConsensusService {
	return &ConsensusService{
		expertRepo:   expertRepo,
		couponRepo:   couponRepo,
		analysisRepo: analysisRepo,
		providers:    providers,
		weights:      weights,
		window:       time.Duration(windowDays) * 24 * time.Hour,
		logger:       logger,
	}
}

// SourcePick is one prediction inside a consensus breakdown.
type SourcePick struct {
	Pick        string    `json:"pick"`
	Author      *string   `json:"author,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	URL         string    `json:"url"`
	Rationale   *string   `json:"rationale,omitempty"`
}

// MatchConsensus is the aggregated expert view of one match. The
// unweighted ConsensusPick (mode) and the reliability-weighted
// WeightedPick may disagree; both are exposed and the caller chooses.
type MatchConsensus struct {
	MatchID          uint64                  `json:"match_id"`
	MatchNumber      int                     `json:"match_number,omitempty"`
	HomeTeam         string                  `json:"home_team,omitempty"`
	AwayTeam         string                  `json:"away_team,omitempty"`
	PredictionCount  int                     `json:"prediction_count"`
	ConsensusPick    string                  `json:"consensus_pick,omitempty"`
	Confidence       float64                 `json:"confidence"`
	WeightedPick     string                  `json:"weighted_consensus,omitempty"`
	PickDistribution map[string]int          `json:"pick_distribution"`
	SourceBreakdown  map[string][]SourcePick `json:"source_breakdown"`
}

// BuildConsensus aggregates stored predictions into a consensus view.
// Ties are broken by first occurrence in prediction order, which keeps
// the result deterministic for a given snapshot.
func (s *ConsensusService) BuildConsensus(items []*model.ExpertItem) *MatchConsensus {
	consensus := &MatchConsensus{
		PredictionCount:  len(items),
		PickDistribution: map[string]int{},
		SourceBreakdown:  map[string][]SourcePick{},
	}
	if len(items) == 0 {
		return consensus
	}

	counts := map[string]int{}
	weighted := map[string]float64{}
	var order []string
	for _, item := range items {
		if _, seen := counts[item.Pick]; !seen {
			order = append(order, item.Pick)
		}
		counts[item.Pick]++
		weighted[item.Pick] += s.sourceWeight(item.Source)

		consensus.SourceBreakdown[item.Source] = append(consensus.SourceBreakdown[item.Source], SourcePick{
			Pick:        item.Pick,
			Author:      item.Author,
			PublishedAt: item.PublishedAt,
			URL:         item.URL,
			Rationale:   item.Rationale,
		})
	}
	consensus.PickDistribution = counts

	bestCount, bestWeight := -1, -1.0
	for _, pick := range order {
		if counts[pick] > bestCount {
			bestCount = counts[pick]
			consensus.ConsensusPick = pick
		}
		if weighted[pick] > bestWeight {
			bestWeight = weighted[pick]
			consensus.WeightedPick = pick
		}
	}
	consensus.Confidence = float64(bestCount) / float64(len(items))
	return consensus
}

func (s *ConsensusService) sourceWeight(source string) float64 {
	if w, ok := s.weights[source]; ok {
		return w
	}
	return 1.0
}

// ConsensusForMatch aggregates all stored predictions for one match.
// No predictions yields an empty consensus, not an error.
func (s *ConsensusService) ConsensusForMatch(ctx context.Context, matchID uint64) (*MatchConsensus, error) {
	items, err := s.expertRepo.ListByMatchID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("load predictions for match %d: %w", matchID, err)
	}
	consensus := s.BuildConsensus(items)
	consensus.MatchID = matchID
	return consensus, nil
}

// ConsensusForCoupon aggregates predictions per match across a whole
// coupon, ordered by match number.
func (s *ConsensusService) ConsensusForCoupon(ctx context.Context, couponID uint64) ([]*MatchConsensus, error) {
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

	result := make([]*MatchConsensus, 0, len(matches))
	for _, m := range matches {
		consensus := s.BuildConsensus(itemsByMatch[m.ID])
		consensus.MatchID = m.ID
		consensus.MatchNumber = m.MatchNumber
		consensus.HomeTeam = m.HomeTeam
		consensus.AwayTeam = m.AwayTeam
		result = append(result, consensus)
	}
	return result, nil
}

// SavePredictions links and stores scraped predictions. A prediction
// whose teams match no current coupon match is stored unlinked for later
// reconciliation; one that duplicates a stored item (same URL, same
// linkage) is skipped. Returns the number of new items stored.
func (s *ConsensusService) SavePredictions(ctx context.Context, preds []model.ExpertPrediction) (int, error) {
	cutoff := time.Now().Add(-s.window)
	candidates, err := s.couponRepo.ListLinkableMatches(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list linkable matches: %w", err)
	}

	saved := 0
	for _, pred := range preds {
		matchID := linkPrediction(pred, candidates)
		if matchID == nil {
			s.logger.Debugf("no match found for '%s - %s', storing unlinked", pred.HomeTeam, pred.AwayTeam)
		}

		exists, err := s.expertRepo.Exists(ctx, pred.URL, matchID)
		if err != nil {
			s.logger.WithError(err).Warn("duplicate check failed, skipping prediction")
			continue
		}
		if exists {
			s.logger.Debugf("skipping duplicate prediction from %s", pred.URL)
			continue
		}

		item := &model.ExpertItem{
			Source:      pred.Source,
			Author:      optional(pred.Author),
			PublishedAt: pred.PublishedAt,
			URL:         pred.URL,
			Title:       optional(pred.Title),
			MatchID:     matchID,
			Pick:        pred.Pick,
			Rationale:   optional(pred.Rationale),
			Confidence:  optional(pred.Confidence),
			ScrapedAt:   time.Now().UTC(),
		}
		if pred.HomeTeam != "" || pred.AwayTeam != "" {
			tags, _ := json.Marshal(map[string]string{
				"home_team": pred.HomeTeam,
				"away_team": pred.AwayTeam,
			})
			item.MatchTags = tags
		}
		if err := s.expertRepo.Create(ctx, item); err != nil {
			s.logger.WithError(err).Warn("save prediction failed, skipping")
			continue
		}
		saved++
	}
	return saved, nil
}

// linkPrediction resolves the weak team-name reference to a match ID, or
// nil when the teams are missing or no candidate pairing matches.
func linkPrediction(pred model.ExpertPrediction, candidates []*model.Match) *uint64 {
	if pred.HomeTeam == "" || pred.AwayTeam == "" {
		return nil
	}
	for _, m := range candidates {
		if teamkey.SamePairing(pred.HomeTeam, pred.AwayTeam, m.HomeTeam, m.AwayTeam) {
			id := m.ID
			return &id
		}
	}
	return nil
}

// FetchAndSave pulls the latest predictions from every registered
// provider and stores them. A failing source is logged and counted as
// zero without blocking the others.
func (s *ConsensusService) FetchAndSave(ctx context.Context, maxPerSource int) map[string]int {
	counts := make(map[string]int, len(s.providers))
	for _, provider := range s.providers {
		name := provider.Name()
		preds, err := provider.FetchPredictions(ctx, maxPerSource)
		if err != nil {
			s.logger.WithError(err).Errorf("fetch from %s failed", name)
			counts[name] = 0
			continue
		}
		saved, err := s.SavePredictions(ctx, preds)
		if err != nil {
			s.logger.WithError(err).Errorf("save predictions from %s failed", name)
			counts[name] = 0
			continue
		}
		counts[name] = saved
		s.logger.Infof("saved %d predictions from %s", saved, name)
	}
	return counts
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

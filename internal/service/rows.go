package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"StryktipsSync/internal/model"
	"StryktipsSync/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// couponSize is the fixed number of matches on a Stryktips coupon.
const couponSize = 13

// RowService turns a coupon's analyses into a small ranked set of
// suggested rows: one conservative single-sign row plus alternatives
// that half-cover the most uncertain matches.
type RowService struct {
	couponRepo    repository.CouponRepository
	analysisRepo  repository.AnalysisRepository
	closeness     float64
	maxHalfCovers int
	logger        *logrus.Logger
}

// NewRowService creates a RowService. closeness is the minimum
// second-best/best value ratio for a half-cover candidate; maxHalfCovers
// bounds how many matches a generated row may half-cover.
func NewRowService(couponRepo repository.CouponRepository, analysisRepo repository.AnalysisRepository, closeness float64, maxHalfCovers int, logger *logrus.Logger) *RowService {
	return &RowService{
		couponRepo:    couponRepo,
		analysisRepo:  analysisRepo,
		closeness:     closeness,
		maxHalfCovers: maxHalfCovers,
		logger:        logger,
	}
}

// RowSuggestion is the in-memory form of one generated row before it is
// persisted.
type RowSuggestion struct {
	Row            map[int]string
	HalfCoverCount int
	ExpectedValue  float64
	CostFactor     int
	Reasoning      string
}

// signValue couples an outcome sign with its value score for ranking.
type signValue struct {
	value float64
	sign  string
}

// rankedValues returns the three outcome values sorted descending, ties
// resolved by the fixed "1" > "X" > "2" priority. Nil values count as 0
// for ranking but are remembered as absent.
func rankedValues(a *model.Analysis) []signValue {
	values := []signValue{
		{deref(a.HomeValue), "1"},
		{deref(a.DrawValue), "X"},
		{deref(a.AwayValue), "2"},
	}
	sort.SliceStable(values, func(i, j int) bool {
		return values[i].value > values[j].value
	})
	return values
}

// BuildPrimaryRow picks exactly one sign per slot: the analysis's
// recommendation when it names a single sign, otherwise the
// highest-value sign. Slots without an analysis fall back to "1".
func BuildPrimaryRow(analyses map[int]*model.Analysis) RowSuggestion {
	row := make(map[int]string, couponSize)
	totalValue := 0.0

	for matchNum := 1; matchNum <= couponSize; matchNum++ {
		analysis, ok := analyses[matchNum]
		if !ok {
			row[matchNum] = "1"
			continue
		}

		recommended := analysis.RecommendedSigns
		if len(recommended) != 1 {
			top := rankedValues(analysis)[0]
			row[matchNum] = top.sign
			totalValue += top.value
			continue
		}

		row[matchNum] = recommended
		switch recommended {
		case "1":
			totalValue += deref(analysis.HomeValue)
		case "X":
			totalValue += deref(analysis.DrawValue)
		case "2":
			totalValue += deref(analysis.AwayValue)
		}
	}

	return RowSuggestion{
		Row:            row,
		HalfCoverCount: 0,
		ExpectedValue:  totalValue / couponSize,
		CostFactor:     1,
		Reasoning:      "Primär rad med högsta värdet per match. Inga helgarderingar.",
	}
}

// halfCoverCandidate is a match whose top two outcomes are close enough
// in value that covering both is worth the doubled cost.
type halfCoverCandidate struct {
	matchNum      int
	signs         string
	combinedValue float64
}

// halfCoverCandidates selects slots where at least two outcomes carry
// strictly positive values and the runner-up is within the closeness
// ratio of the best, ranked by the top-two sum descending.
func halfCoverCandidates(analyses map[int]*model.Analysis, closeness float64) []halfCoverCandidate {
	var candidates []halfCoverCandidate
	for matchNum := 1; matchNum <= couponSize; matchNum++ {
		analysis, ok := analyses[matchNum]
		if !ok {
			continue
		}
		values := rankedValues(analysis)
		if values[0].value <= 0 || values[1].value <= 0 {
			continue
		}
		if values[1].value/values[0].value < closeness {
			continue
		}
		candidates = append(candidates, halfCoverCandidate{
			matchNum:      matchNum,
			signs:         values[0].sign + values[1].sign,
			combinedValue: values[0].value + values[1].value,
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].combinedValue > candidates[j].combinedValue
	})
	return candidates
}

// buildRowWithCovers builds a row like the primary one but overrides the
// covered slots with both top signs, summing both outcome values there.
func buildRowWithCovers(analyses map[int]*model.Analysis, covers []halfCoverCandidate) RowSuggestion {
	coverByMatch := make(map[int]halfCoverCandidate, len(covers))
	for _, hc := range covers {
		coverByMatch[hc.matchNum] = hc
	}

	row := make(map[int]string, couponSize)
	totalValue := 0.0
	for matchNum := 1; matchNum <= couponSize; matchNum++ {
		if hc, covered := coverByMatch[matchNum]; covered {
			row[matchNum] = hc.signs
			totalValue += hc.combinedValue
			continue
		}
		analysis, ok := analyses[matchNum]
		if !ok {
			row[matchNum] = "1"
			continue
		}
		top := rankedValues(analysis)[0]
		row[matchNum] = top.sign
		totalValue += top.value
	}

	costFactor := 1 << len(covers)
	coveredNums := make([]string, 0, len(covers))
	for _, hc := range covers {
		coveredNums = append(coveredNums, strconv.Itoa(hc.matchNum))
	}

	return RowSuggestion{
		Row:            row,
		HalfCoverCount: len(covers),
		ExpectedValue:  totalValue / couponSize,
		CostFactor:     costFactor,
		Reasoning: fmt.Sprintf("Alternativ rad med %d helgardering(ar) på matcher: %s. Kostnad: %dx basinvestering.",
			len(covers), strings.Join(coveredNums, ", "), costFactor),
	}
}

// buildAlternativeRows returns up to numRows rows: one covering the best
// candidate, one covering the best two. The search deliberately stops at
// the top-1 and top-2 selections instead of exploring every subset.
func (s *RowService) buildAlternativeRows(analyses map[int]*model.Analysis, numRows int) []RowSuggestion {
	if numRows <= 0 {
		return nil
	}
	candidates := halfCoverCandidates(analyses, s.closeness)

	var rows []RowSuggestion
	if len(candidates) >= 1 {
		rows = append(rows, buildRowWithCovers(analyses, candidates[:1]))
	}
	if len(candidates) >= 2 && numRows >= 2 && s.maxHalfCovers >= 2 {
		rows = append(rows, buildRowWithCovers(analyses, candidates[:2]))
	}
	if len(rows) > numRows {
		rows = rows[:numRows]
	}
	return rows
}

// GenerateRows builds and persists the primary row plus up to maxRows-1
// alternatives for a coupon. All rows of one invocation share a run UUID
// and are appended; earlier suggestions are never touched.
func (s *RowService) GenerateRows(ctx context.Context, couponID uint64, maxRows int) ([]*model.SuggestedRow, error) {
	if maxRows <= 0 {
		maxRows = 3
	}
	if _, err := s.couponRepo.GetByID(ctx, couponID); err != nil {
		return nil, fmt.Errorf("load coupon %d: %w", couponID, err)
	}
	analyses, err := s.analysisRepo.MapByMatchNumber(ctx, couponID)
	if err != nil {
		return nil, fmt.Errorf("load analyses for coupon %d: %w", couponID, err)
	}
	if len(analyses) != couponSize {
		s.logger.Warnf("only %d matches analyzed out of %d, generating rows anyway",
			len(analyses), couponSize)
	}

	suggestions := append([]RowSuggestion{BuildPrimaryRow(analyses)},
		s.buildAlternativeRows(analyses, maxRows-1)...)

	runUUID := uuid.NewString()
	rows := make([]*model.SuggestedRow, 0, len(suggestions))
	for _, sg := range suggestions {
		rowData, err := json.Marshal(sg.Row)
		if err != nil {
			return nil, fmt.Errorf("encode row data: %w", err)
		}
		reasoning := sg.Reasoning
		rows = append(rows, &model.SuggestedRow{
			CouponID:       couponID,
			RunUUID:        runUUID,
			RowData:        rowData,
			HalfCoverCount: sg.HalfCoverCount,
			ExpectedValue:  sg.ExpectedValue,
			CostFactor:     sg.CostFactor,
			Reasoning:      &reasoning,
		})
	}

	if err := s.analysisRepo.SaveSuggestedRows(ctx, rows); err != nil {
		return nil, fmt.Errorf("save suggested rows for coupon %d: %w", couponID, err)
	}
	s.logger.Infof("generated %d rows for coupon %d (run %s)", len(rows), couponID, runUUID)
	return rows, nil
}

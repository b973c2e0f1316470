package service

import (
	"context"

	"github.com/sirupsen/logrus"
)

// PipelineService chains the full weekly analysis: value calculation,
// expert summaries, row generation. Each stage commits its writes before
// the next stage reads, so reruns replace analyses but only append rows.
type PipelineService struct {
	value     *ValueService
	consensus *ConsensusService
	rows      *RowService
	logger    *logrus.Logger
}

// NewPipelineService creates a PipelineService over the three stages.
func NewPipelineService(value *ValueService, consensus *ConsensusService, rows *RowService, logger *logrus.Logger) *PipelineService {
	return &PipelineService{value: value, consensus: consensus, rows: rows, logger: logger}
}

// PipelineResult reports what each stage produced.
type PipelineResult struct {
	CouponID      uint64 `json:"coupon_id"`
	Analyzed      int    `json:"analyzed"`
	Total         int    `json:"total"`
	Skipped       []int  `json:"skipped_match_numbers,omitempty"`
	Summarized    int    `json:"summarized"`
	RowsGenerated int    `json:"rows_generated"`
}

// Run executes the full pipeline for one coupon.
func (s *PipelineService) Run(ctx context.Context, couponID uint64, maxRows int) (*PipelineResult, error) {
	valueResult, err := s.value.CalculateCoupon(ctx, couponID)
	if err != nil {
		return nil, err
	}

	summaries, err := s.consensus.SummarizeCoupon(ctx, couponID)
	if err != nil {
		return nil, err
	}

	rows, err := s.rows.GenerateRows(ctx, couponID, maxRows)
	if err != nil {
		return nil, err
	}

	result := &PipelineResult{
		CouponID:      couponID,
		Analyzed:      valueResult.Analyzed,
		Total:         valueResult.Total,
		Skipped:       valueResult.Skipped,
		Summarized:    len(summaries),
		RowsGenerated: len(rows),
	}
	s.logger.Infof("pipeline for coupon %d: %d/%d analyzed, %d summarized, %d rows",
		couponID, result.Analyzed, result.Total, result.Summarized, result.RowsGenerated)
	return result, nil
}

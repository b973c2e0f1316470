package api

import (
	"errors"
	"net/http"
	"strconv"

	"StryktipsSync/internal/config"
	"StryktipsSync/internal/interfaces"
	"StryktipsSync/internal/model"
	"StryktipsSync/internal/repository"
	"StryktipsSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AnalysisHandler exposes the analysis pipeline: value calculation,
// expert summaries, row generation, and the combined run.
type AnalysisHandler struct {
	couponRepo   repository.CouponRepository
	analysisRepo repository.AnalysisRepository
	value        *service.ValueService
	consensus    *service.ConsensusService
	rows         *service.RowService
	pipeline     *service.PipelineService
	logger       *logrus.Logger
}

// NewAnalysisHandler wires the analysis services over one gorm handle.
// providers supplies the expert sources; pass nil when the deployment
// only serves stored predictions.
func NewAnalysisHandler(db *gorm.DB, logger *logrus.Logger, cfg *config.Config, providers []interfaces.ExpertProvider) *AnalysisHandler {
	couponRepo := repository.NewCouponRepository(db)
	analysisRepo := repository.NewAnalysisRepository(db)
	expertRepo := repository.NewExpertRepository(db)

	value := service.NewValueService(couponRepo, analysisRepo, cfg.Analysis.MinValueThreshold, logger)
	consensus := service.NewConsensusService(expertRepo, couponRepo, analysisRepo,
		providers, cfg.Experts.SourceWeights, cfg.Analysis.PredictionWindowDays, logger)
	rows := service.NewRowService(couponRepo, analysisRepo,
		cfg.Analysis.HalfCoverCloseness, cfg.Analysis.MaxHalfCovers, logger)

	return &AnalysisHandler{
		couponRepo:   couponRepo,
		analysisRepo: analysisRepo,
		value:        value,
		consensus:    consensus,
		rows:         rows,
		pipeline:     service.NewPipelineService(value, consensus, rows, logger),
		logger:       logger,
	}
}

// resolveCoupon maps the path UUID to a coupon, writing the error
// response itself when the lookup fails.
func (h *AnalysisHandler) resolveCoupon(c *gin.Context) (*model.Coupon, bool) {
	coupon, err := h.couponRepo.GetByUUID(c.Request.Context(), c.Param("coupon_uuid"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "coupon not found"})
		return nil, false
	}
	if err != nil {
		h.logger.WithError(err).Error("coupon lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return coupon, true
}

// Analyze runs the value calculation for a coupon.
// POST /api/coupons/:coupon_uuid/analyze
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	coupon, ok := h.resolveCoupon(c)
	if !ok {
		return
	}
	result, err := h.value.CalculateCoupon(c.Request.Context(), coupon.ID)
	if err != nil {
		h.logger.WithError(err).Error("Analyze failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Summarize writes expert summaries for a coupon's matches.
// POST /api/coupons/:coupon_uuid/summarize
func (h *AnalysisHandler) Summarize(c *gin.Context) {
	coupon, ok := h.resolveCoupon(c)
	if !ok {
		return
	}
	summaries, err := h.consensus.SummarizeCoupon(c.Request.Context(), coupon.ID)
	if err != nil {
		h.logger.WithError(err).Error("Summarize failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"summaries": summaries})
}

// GenerateRows generates suggested rows for a coupon.
// POST /api/coupons/:coupon_uuid/rows?max_rows=3
func (h *AnalysisHandler) GenerateRows(c *gin.Context) {
	coupon, ok := h.resolveCoupon(c)
	if !ok {
		return
	}
	maxRows, _ := strconv.Atoi(c.DefaultQuery("max_rows", "3"))
	rows, err := h.rows.GenerateRows(c.Request.Context(), coupon.ID, maxRows)
	if err != nil {
		h.logger.WithError(err).Error("GenerateRows failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// ListRows returns previously generated rows, newest first.
// GET /api/coupons/:coupon_uuid/rows?limit=20
func (h *AnalysisHandler) ListRows(c *gin.Context) {
	coupon, ok := h.resolveCoupon(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	rows, err := h.analysisRepo.ListSuggestedRows(c.Request.Context(), coupon.ID, limit)
	if err != nil {
		h.logger.WithError(err).Error("ListRows failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// RunPipeline runs value calculation, summaries and row generation.
// POST /api/coupons/:coupon_uuid/pipeline?max_rows=3
func (h *AnalysisHandler) RunPipeline(c *gin.Context) {
	coupon, ok := h.resolveCoupon(c)
	if !ok {
		return
	}
	maxRows, _ := strconv.Atoi(c.DefaultQuery("max_rows", "3"))
	result, err := h.pipeline.Run(c.Request.Context(), coupon.ID, maxRows)
	if err != nil {
		h.logger.WithError(err).Error("RunPipeline failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

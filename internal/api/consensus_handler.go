package api

import (
	"errors"
	"net/http"
	"strconv"

	"StryktipsSync/internal/config"
	"StryktipsSync/internal/interfaces"
	"StryktipsSync/internal/repository"
	"StryktipsSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ConsensusHandler serves expert consensus views and raw predictions.
type ConsensusHandler struct {
	couponRepo repository.CouponRepository
	expertRepo repository.ExpertRepository
	consensus  *service.ConsensusService
	logger     *logrus.Logger
}

// NewConsensusHandler creates a ConsensusHandler.
func NewConsensusHandler(db *gorm.DB, logger *logrus.Logger, cfg *config.Config, providers []interfaces.ExpertProvider) *ConsensusHandler {
	couponRepo := repository.NewCouponRepository(db)
	analysisRepo := repository.NewAnalysisRepository(db)
	expertRepo := repository.NewExpertRepository(db)
	consensus := service.NewConsensusService(expertRepo, couponRepo, analysisRepo,
		providers, cfg.Experts.SourceWeights, cfg.Analysis.PredictionWindowDays, logger)
	return &ConsensusHandler{
		couponRepo: couponRepo,
		expertRepo: expertRepo,
		consensus:  consensus,
		logger:     logger,
	}
}

// CouponConsensus returns the per-match consensus for a coupon.
// GET /api/coupons/:coupon_uuid/consensus
func (h *ConsensusHandler) CouponConsensus(c *gin.Context) {
	coupon, err := h.couponRepo.GetByUUID(c.Request.Context(), c.Param("coupon_uuid"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "coupon not found"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("coupon lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	result, err := h.consensus.ConsensusForCoupon(c.Request.Context(), coupon.ID)
	if err != nil {
		h.logger.WithError(err).Error("CouponConsensus failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": result})
}

// MatchConsensus returns the consensus for one match.
// GET /api/matches/:match_id/consensus
func (h *ConsensusHandler) MatchConsensus(c *gin.Context) {
	matchID, err := strconv.ParseUint(c.Param("match_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid match id"})
		return
	}
	result, err := h.consensus.ConsensusForMatch(c.Request.Context(), matchID)
	if err != nil {
		h.logger.WithError(err).Error("MatchConsensus failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListPredictions returns the latest stored expert predictions.
// GET /api/predictions?source=Aftonbladet&limit=50
func (h *ConsensusHandler) ListPredictions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	items, err := h.expertRepo.ListLatest(c.Request.Context(), c.Query("source"), limit)
	if err != nil {
		h.logger.WithError(err).Error("ListPredictions failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"predictions": items})
}

// FetchPredictions pulls the latest picks from all registered providers.
// POST /api/predictions/fetch?max_per_source=20
func (h *ConsensusHandler) FetchPredictions(c *gin.Context) {
	maxPerSource, _ := strconv.Atoi(c.DefaultQuery("max_per_source", "20"))
	counts := h.consensus.FetchAndSave(c.Request.Context(), maxPerSource)
	c.JSON(http.StatusOK, gin.H{"saved": counts})
}

package api

import (
	"errors"
	"net/http"

	"StryktipsSync/internal/model"
	"StryktipsSync/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CouponHandler serves coupon lookups.
type CouponHandler struct {
	couponRepo repository.CouponRepository
	logger     *logrus.Logger
}

// NewCouponHandler creates a CouponHandler.
func NewCouponHandler(db *gorm.DB, logger *logrus.Logger) *CouponHandler {
	return &CouponHandler{
		couponRepo: repository.NewCouponRepository(db),
		logger:     logger,
	}
}

type couponResponse struct {
	*model.Coupon
	Matches []*model.Match `json:"matches"`
}

// GetActive returns the current active coupon with its matches.
// GET /api/coupons/active
func (h *CouponHandler) GetActive(c *gin.Context) {
	coupon, err := h.couponRepo.GetActive(c.Request.Context())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active coupon"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("GetActive failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.respondWithMatches(c, coupon)
}

// GetCoupon returns one coupon by UUID with its matches.
// GET /api/coupons/:coupon_uuid
func (h *CouponHandler) GetCoupon(c *gin.Context) {
	coupon, err := h.couponRepo.GetByUUID(c.Request.Context(), c.Param("coupon_uuid"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "coupon not found"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("GetCoupon failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.respondWithMatches(c, coupon)
}

func (h *CouponHandler) respondWithMatches(c *gin.Context, coupon *model.Coupon) {
	matches, err := h.couponRepo.ListMatches(c.Request.Context(), coupon.ID)
	if err != nil {
		h.logger.WithError(err).Error("ListMatches failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, couponResponse{Coupon: coupon, Matches: matches})
}

package infrastructure

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace/internal/affiliate/application"
	"marketplace/internal/affiliate/domain"
	"marketplace/pkg/errors"
	"marketplace/pkg/middleware"
)

// HTTPHandler handles HTTP requests for affiliate links
type HTTPHandler struct {
	useCase *application.AffiliateUseCase
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(useCase *application.AffiliateUseCase) *HTTPHandler {
	return &HTTPHandler{useCase: useCase}
}

// RegisterRoutes registers the affiliate routes
func (h *HTTPHandler) RegisterRoutes(r *gin.RouterGroup) {
	links := r.Group("/affiliate/links")
	{
		links.POST("", h.CreateLink)
		links.POST("/:code/click", h.TrackClick)
		links.GET("/:code/stats", h.GetLinkStats)
	}
}

// CreateLinkRequest is the request body for creating an affiliate link
type CreateLinkRequest struct {
	BloggerID      uint    `json:"blogger_id" binding:"required"`
	ProductID      uint    `json:"product_id" binding:"required"`
	MerchantID     uint    `json:"merchant_id"`
	CommissionRate float64 `json:"commission_rate" binding:"gte=0"`
	CommissionType string  `json:"commission_type" binding:"required,oneof=percentage fixed"`
}

// LinkResponse is the response body for link operations
type LinkResponse struct {
	AffiliateCode  string  `json:"affiliate_code"`
	BloggerID      uint    `json:"blogger_id"`
	ProductID      uint    `json:"product_id"`
	CommissionRate float64 `json:"commission_rate"`
	CommissionType string  `json:"commission_type"`
	IsActive       bool    `json:"is_active"`
}

// CreateLink handles POST /affiliate/links
func (h *HTTPHandler) CreateLink(c *gin.Context) {
	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	link, err := h.useCase.CreateLink(c.Request.Context(), application.CreateLinkInput{
		BloggerID:      req.BloggerID,
		ProductID:      req.ProductID,
		MerchantID:     req.MerchantID,
		CommissionRate: req.CommissionRate,
		CommissionType: domain.CommissionType(req.CommissionType),
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data": LinkResponse{
			AffiliateCode:  link.AffiliateCode,
			BloggerID:      link.BloggerID,
			ProductID:      link.ProductID,
			CommissionRate: link.CommissionRate,
			CommissionType: string(link.CommissionType),
			IsActive:       link.IsActive,
		},
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// TrackClick handles POST /affiliate/links/:code/click
func (h *HTTPHandler) TrackClick(c *gin.Context) {
	code := c.Param("code")

	if err := h.useCase.TrackClick(c.Request.Context(), code); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     gin.H{"tracked": true},
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// GetLinkStats handles GET /affiliate/links/:code/stats
func (h *HTTPHandler) GetLinkStats(c *gin.Context) {
	code := c.Param("code")

	stats, err := h.useCase.GetLinkStats(c.Request.Context(), code)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     stats,
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

package infrastructure

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"marketplace/internal/fraud/application"
	"marketplace/pkg/errors"
	"marketplace/pkg/middleware"
)

// HTTPHandler handles HTTP requests for fraud analysis
type HTTPHandler struct {
	useCase *application.FraudUseCase
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(useCase *application.FraudUseCase) *HTTPHandler {
	return &HTTPHandler{useCase: useCase}
}

// RegisterRoutes registers the fraud routes
func (h *HTTPHandler) RegisterRoutes(r *gin.RouterGroup) {
	fraud := r.Group("/fraud")
	{
		fraud.POST("/orders/:id/analyze", h.AnalyzeOrder)
		fraud.GET("/stats", h.GetFraudStats)
	}
}

// AnalyzeOrder handles POST /fraud/orders/:id/analyze
func (h *HTTPHandler) AnalyzeOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.Error(errors.NewValidation("invalid order id", nil))
		return
	}

	analysis, err := h.useCase.AnalyzeOrder(c.Request.Context(), uint(id))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     analysis,
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// GetFraudStats handles GET /fraud/stats?days=7
func (h *HTTPHandler) GetFraudStats(c *gin.Context) {
	days := 7
	if v := c.Query("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			c.Error(errors.NewValidation("invalid days parameter", nil))
			return
		}
		days = parsed
	}

	stats, err := h.useCase.GetFraudStats(c.Request.Context(), days)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     stats,
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

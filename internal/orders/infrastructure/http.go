package infrastructure

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"marketplace/internal/orders/application"
	"marketplace/internal/orders/domain"
	"marketplace/pkg/errors"
	"marketplace/pkg/middleware"
)

// HTTPHandler handles HTTP requests for orders
type HTTPHandler struct {
	useCase *application.OrderUseCase
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(useCase *application.OrderUseCase) *HTTPHandler {
	return &HTTPHandler{useCase: useCase}
}

// RegisterRoutes registers the order routes
func (h *HTTPHandler) RegisterRoutes(r *gin.RouterGroup) {
	orders := r.Group("/orders")
	{
		orders.POST("", h.CreateOrder)
		orders.GET("/:id", h.GetOrder)
		orders.PATCH("/:id/status", h.UpdateOrderStatus)
		orders.PATCH("/:id/payment", h.UpdatePaymentStatus)
		orders.PATCH("/:id/shipping", h.UpdateShippingStatus)
		orders.POST("/:id/cancel", h.CancelOrder)
		orders.POST("/:id/refund", h.RefundOrder)
	}
	r.GET("/customers/:id/orders", h.ListCustomerOrders)
}

// OrderItemRequest is one requested line item
type OrderItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gt=0"`
}

// CreateOrderRequest is the request body for creating an order
type CreateOrderRequest struct {
	CustomerID      uint               `json:"customer_id" binding:"required"`
	MerchantID      uint               `json:"merchant_id" binding:"required"`
	Items           []OrderItemRequest `json:"items" binding:"required,min=1"`
	AffiliateCode   string             `json:"affiliate_code"`
	ShippingAddress string             `json:"shipping_address"`
	ShippingAmount  float64            `json:"shipping_amount" binding:"gte=0"`
	DiscountAmount  float64            `json:"discount_amount" binding:"gte=0"`
	CartCreatedAt   *time.Time         `json:"cart_created_at"`
}

// OrderResponse is the response body for order operations
type OrderResponse struct {
	ID                  uint               `json:"id"`
	OrderNumber         string             `json:"order_number"`
	CustomerID          uint               `json:"customer_id"`
	MerchantID          uint               `json:"merchant_id"`
	Status              string             `json:"status"`
	PaymentStatus       string             `json:"payment_status"`
	ShippingStatus      string             `json:"shipping_status"`
	Items               []domain.OrderItem `json:"items"`
	Subtotal            float64            `json:"subtotal"`
	TaxAmount           float64            `json:"tax_amount"`
	ShippingAmount      float64            `json:"shipping_amount"`
	DiscountAmount      float64            `json:"discount_amount"`
	TotalAmount         float64            `json:"total_amount"`
	AffiliateCommission float64            `json:"affiliate_commission"`
	PlatformCommission  float64            `json:"platform_commission"`
	FraudStatus         string             `json:"fraud_status,omitempty"`
	TrackingNumber      string             `json:"tracking_number,omitempty"`
	CreatedAt           string             `json:"created_at"`
}

func toResponse(order *domain.Order) OrderResponse {
	return OrderResponse{
		ID:                  order.ID,
		OrderNumber:         order.OrderNumber,
		CustomerID:          order.CustomerID,
		MerchantID:          order.MerchantID,
		Status:              string(order.Status),
		PaymentStatus:       string(order.PaymentStatus),
		ShippingStatus:      string(order.ShippingStatus),
		Items:               order.Items,
		Subtotal:            order.Subtotal,
		TaxAmount:           order.TaxAmount,
		ShippingAmount:      order.ShippingAmount,
		DiscountAmount:      order.DiscountAmount,
		TotalAmount:         order.TotalAmount,
		AffiliateCommission: order.AffiliateCommission,
		PlatformCommission:  order.PlatformCommission,
		FraudStatus:         order.FraudStatus,
		TrackingNumber:      order.TrackingNumber,
		CreatedAt:           order.CreatedAt.Format(time.RFC3339),
	}
}

// CreateOrder handles POST /orders
func (h *HTTPHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	items := make([]application.CreateOrderItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = application.CreateOrderItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	output, err := h.useCase.CreateOrder(c.Request.Context(), application.CreateOrderInput{
		CustomerID: req.CustomerID,
		MerchantID: req.MerchantID,
		Items:      items,
		Info: domain.OrderInfo{
			AffiliateCode:   req.AffiliateCode,
			ShippingAddress: req.ShippingAddress,
			ShippingAmount:  req.ShippingAmount,
			DiscountAmount:  req.DiscountAmount,
			ClientIP:        c.ClientIP(),
			UserAgent:       c.Request.UserAgent(),
			CartCreatedAt:   req.CartCreatedAt,
		},
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data":     toResponse(output.Order),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// GetOrder handles GET /orders/:id
func (h *HTTPHandler) GetOrder(c *gin.Context) {
	id, ok := h.orderID(c)
	if !ok {
		return
	}

	order, err := h.useCase.GetOrder(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     toResponse(order),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// UpdateOrderStatusRequest is the request body for a fulfillment status change
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// UpdateOrderStatus handles PATCH /orders/:id/status
func (h *HTTPHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := h.orderID(c)
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	order, err := h.useCase.UpdateOrderStatus(c.Request.Context(), application.UpdateOrderStatusInput{
		OrderID: id,
		Status:  domain.OrderStatus(req.Status),
		Notes:   req.Notes,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     toResponse(order),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// UpdatePaymentStatusRequest is the request body for a payment status change
type UpdatePaymentStatusRequest struct {
	Status        string `json:"status" binding:"required"`
	TransactionID string `json:"transaction_id"`
	Method        string `json:"method"`
}

// UpdatePaymentStatus handles PATCH /orders/:id/payment
func (h *HTTPHandler) UpdatePaymentStatus(c *gin.Context) {
	id, ok := h.orderID(c)
	if !ok {
		return
	}

	var req UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	order, err := h.useCase.UpdatePaymentStatus(c.Request.Context(), application.UpdatePaymentStatusInput{
		OrderID:       id,
		Status:        domain.PaymentStatus(req.Status),
		TransactionID: req.TransactionID,
		Method:        req.Method,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     toResponse(order),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// UpdateShippingStatusRequest is the request body for a shipping status change
type UpdateShippingStatusRequest struct {
	Status         string `json:"status" binding:"required"`
	TrackingNumber string `json:"tracking_number"`
}

// UpdateShippingStatus handles PATCH /orders/:id/shipping
func (h *HTTPHandler) UpdateShippingStatus(c *gin.Context) {
	id, ok := h.orderID(c)
	if !ok {
		return
	}

	var req UpdateShippingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	order, err := h.useCase.UpdateShippingStatus(c.Request.Context(), application.UpdateShippingStatusInput{
		OrderID:        id,
		Status:         domain.ShippingStatus(req.Status),
		TrackingNumber: req.TrackingNumber,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     toResponse(order),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// CancelOrderRequest is the request body for cancelling an order
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CancelOrder handles POST /orders/:id/cancel
func (h *HTTPHandler) CancelOrder(c *gin.Context) {
	id, ok := h.orderID(c)
	if !ok {
		return
	}

	var req CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	order, err := h.useCase.CancelOrder(c.Request.Context(), application.CancelOrderInput{
		OrderID: id,
		Reason:  req.Reason,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     toResponse(order),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// RefundOrderRequest is the request body for refunding an order
type RefundOrderRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
	Reason string  `json:"reason" binding:"required"`
}

// RefundOrder handles POST /orders/:id/refund
func (h *HTTPHandler) RefundOrder(c *gin.Context) {
	id, ok := h.orderID(c)
	if !ok {
		return
	}

	var req RefundOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	order, err := h.useCase.RefundOrder(c.Request.Context(), application.RefundOrderInput{
		OrderID: id,
		Amount:  req.Amount,
		Reason:  req.Reason,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     toResponse(order),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// ListCustomerOrders handles GET /customers/:id/orders
func (h *HTTPHandler) ListCustomerOrders(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		c.Error(errors.NewValidation("invalid customer id", nil))
		return
	}

	orders, err := h.useCase.ListCustomerOrders(c.Request.Context(), uint(id))
	if err != nil {
		c.Error(err)
		return
	}

	responses := make([]OrderResponse, len(orders))
	for i, order := range orders {
		responses[i] = toResponse(order)
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     responses,
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

func (h *HTTPHandler) orderID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.Error(errors.NewValidation("invalid order id", nil))
		return 0, false
	}
	return uint(id), true
}

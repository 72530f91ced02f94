package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"invogen/internal/service"
)

// BillingHandler handles payment order endpoints and the gateway webhook.
type BillingHandler struct {
	billingService service.BillingService
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(billingService service.BillingService) *BillingHandler {
	return &BillingHandler{billingService: billingService}
}

// CreateOrder handles POST /api/create-order
func (h *BillingHandler) CreateOrder(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}

	var input service.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	order, err := h.billingService.CreateOrder(c.Request.Context(), accountID, input)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, order)
}

// VerifyPayment handles POST /api/verify-payment
func (h *BillingHandler) VerifyPayment(c *gin.Context) {
	var input service.VerifyPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.billingService.VerifyPayment(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// OrderStatus handles GET /api/order-status/:orderId
func (h *BillingHandler) OrderStatus(c *gin.Context) {
	orderID := c.Param("orderId")
	if orderID == "" {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "orderId is required")
		return
	}

	status, err := h.billingService.OrderStatus(c.Request.Context(), orderID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, status)
}

// Webhook handles POST /api/webhook. The signature covers the raw body,
// so it is read before any decoding.
func (h *BillingHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "unreadable body")
		return
	}

	signature := c.GetHeader("X-Razorpay-Signature")
	if err := h.billingService.HandleWebhook(c.Request.Context(), body, signature); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"received": true})
}

package public

import (
	"github.com/compoundrx/storefront/internal/http/response"

	"github.com/gin-gonic/gin"
)

// CreatePaymentIntent starts an embedded card payment for a pending order.
// Calling it again replaces the previous intent so a stuck card form can be
// restarted.
func (h *Handler) CreatePaymentIntent(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseOrderIDParam(c)
	if !ok {
		return
	}
	result, err := h.PaymentService.CreatePaymentIntent(c.Request.Context(), uid, orderID)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	response.Success(c, result)
}

// CreateCheckoutSession starts a hosted checkout payment for a pending order.
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseOrderIDParam(c)
	if !ok {
		return
	}
	result, err := h.PaymentService.CreateCheckoutSession(c.Request.Context(), uid, orderID)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	response.Success(c, result)
}

// ConfirmPayment asks the gateway for the payment outcome and applies it to
// the order. Safe to call any number of times; the order transitions at most
// once no matter whether this or the webhook lands first.
func (h *Handler) ConfirmPayment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseOrderIDParam(c)
	if !ok {
		return
	}
	status, err := h.PaymentService.ConfirmPayment(c.Request.Context(), uid, orderID)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	response.Success(c, gin.H{"payment_status": status})
}

package public

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/compoundrx/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// StripeWebhook receives payment events from Stripe. The raw body is
// verified against the signature header before anything is acted on.
//
// Stripe decides redelivery from the transport status alone, so this
// endpoint skips the JSON envelope: 2xx acknowledges the event for good,
// 400 rejects a delivery that can never verify, and 5xx asks Stripe to
// redeliver after a transient processing failure.
func (h *Handler) StripeWebhook(c *gin.Context) {
	log := requestLog(c)
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Warnw("stripe_webhook_body_read_failed", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	signature := strings.TrimSpace(c.GetHeader("Stripe-Signature"))

	if err := h.PaymentService.HandleWebhook(signature, body); err != nil {
		switch {
		case errors.Is(err, service.ErrWebhookSignatureInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		case errors.Is(err, service.ErrPaymentGatewayResponseInvalid):
			// A payload that cannot be parsed will not parse on redelivery
			// either.
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		default:
			log.Warnw("stripe_webhook_handle_failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook handling failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

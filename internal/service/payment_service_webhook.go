package service

import (
	"errors"
	"time"

	"github.com/compoundrx/storefront/internal/constants"
	"github.com/compoundrx/storefront/internal/logger"
	"github.com/compoundrx/storefront/internal/models"
	"github.com/compoundrx/storefront/internal/payment/stripe"
)

// HandleWebhook verifies and applies one Stripe event delivery. Deliveries
// are at-least-once and unordered, so every branch below lands on an
// idempotent order transition; an event for an unknown order is acknowledged
// rather than retried forever.
func (s *PaymentService) HandleWebhook(signatureHeader string, body []byte) error {
	if s.stripeClient == nil {
		return ErrPaymentConfigInvalid
	}

	event, err := s.stripeClient.VerifyWebhook(signatureHeader, body, time.Now())
	if err != nil {
		if errors.Is(err, stripe.ErrSignatureInvalid) {
			logger.Warnw("stripe_webhook_bad_signature", "error", err)
			return ErrWebhookSignatureInvalid
		}
		logger.Warnw("stripe_webhook_invalid", "error", err)
		return ErrPaymentGatewayResponseInvalid
	}

	switch event.Type {
	case constants.StripeEventPaymentSucceeded, constants.StripeEventCheckoutComplete:
		return s.applyWebhookOutcome(event, true)
	case constants.StripeEventPaymentFailed:
		return s.applyWebhookOutcome(event, false)
	default:
		logger.Debugw("stripe_webhook_ignored", "event_id", event.ID, "type", event.Type)
		return nil
	}
}

func (s *PaymentService) applyWebhookOutcome(event *stripe.Event, succeeded bool) error {
	order, err := s.resolveWebhookOrder(event)
	if err != nil {
		return err
	}
	if order == nil {
		logger.Warnw("stripe_webhook_order_not_found",
			"event_id", event.ID,
			"type", event.Type,
			"intent_id", event.PaymentIntentID,
			"session_id", event.SessionID)
		return nil
	}

	if succeeded {
		if err := s.orderService.MarkOrderPaid(order.ID, order.PaymentMethod); err != nil {
			return err
		}
		logger.Infow("stripe_webhook_paid", "event_id", event.ID, "order_no", order.OrderNo)
		return nil
	}

	if err := s.orderService.MarkOrderPaymentFailed(order.ID); err != nil {
		return err
	}
	logger.Infow("stripe_webhook_failed", "event_id", event.ID, "order_no", order.OrderNo)
	return nil
}

// resolveWebhookOrder finds the order an event refers to, trying the stored
// gateway references first and the metadata order id as a fallback.
func (s *PaymentService) resolveWebhookOrder(event *stripe.Event) (*models.Order, error) {
	if event.PaymentIntentID != "" {
		order, err := s.orderRepo.GetByPaymentIntentID(event.PaymentIntentID)
		if err != nil {
			return nil, ErrOrderFetchFailed
		}
		if order != nil {
			return order, nil
		}
	}
	if event.SessionID != "" {
		order, err := s.orderRepo.GetByCheckoutSessionID(event.SessionID)
		if err != nil {
			return nil, ErrOrderFetchFailed
		}
		if order != nil {
			return order, nil
		}
	}
	if event.OrderID != 0 {
		order, err := s.orderRepo.GetByID(event.OrderID)
		if err != nil {
			return nil, ErrOrderFetchFailed
		}
		if order != nil {
			return order, nil
		}
	}
	return nil, nil
}

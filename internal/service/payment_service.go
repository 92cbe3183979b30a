package service

import (
	"context"
	"errors"

	"github.com/compoundrx/storefront/internal/config"
	"github.com/compoundrx/storefront/internal/constants"
	"github.com/compoundrx/storefront/internal/logger"
	"github.com/compoundrx/storefront/internal/models"
	"github.com/compoundrx/storefront/internal/payment/stripe"
	"github.com/compoundrx/storefront/internal/repository"
)

// PaymentService opens Stripe payments for pending orders and applies the
// outcomes reported back by the client and by webhooks.
type PaymentService struct {
	orderService *OrderService
	orderRepo    repository.OrderRepository
	stripeClient *stripe.Client
	cfg          *config.Config
}

// NewPaymentService builds a payment service. stripeClient may be nil when
// the platform is not configured; every payment operation then fails with
// ErrPaymentConfigInvalid.
func NewPaymentService(orderService *OrderService, orderRepo repository.OrderRepository, stripeClient *stripe.Client, cfg *config.Config) *PaymentService {
	return &PaymentService{
		orderService: orderService,
		orderRepo:    orderRepo,
		stripeClient: stripeClient,
		cfg:          cfg,
	}
}

// PaymentIntentResult is what the client needs to mount the card form.
type PaymentIntentResult struct {
	PaymentIntentID string       `json:"payment_intent_id"`
	ClientSecret    string       `json:"client_secret"`
	PublishableKey  string       `json:"publishable_key"`
	Amount          models.Money `json:"amount"`
	Currency        string       `json:"currency"`
}

// CheckoutSessionResult is what the client needs to redirect to the hosted
// checkout page.
type CheckoutSessionResult struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// payableOrder loads the user's order and checks it can still take a
// payment.
func (s *PaymentService) payableOrder(userID, orderID uint) (*models.Order, error) {
	order, err := s.orderService.GetUserOrder(userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != constants.OrderStatusPending || order.PaymentStatus == constants.PaymentStatusPaid {
		return nil, ErrOrderNotPayable
	}
	return order, nil
}

// CreatePaymentIntent opens a Stripe PaymentIntent for on-site card entry
// and records its id on the order. Calling it again replaces the recorded
// intent, which lets a customer restart a stuck card form.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, userID, orderID uint) (*PaymentIntentResult, error) {
	if s.stripeClient == nil {
		return nil, ErrPaymentConfigInvalid
	}
	order, err := s.payableOrder(userID, orderID)
	if err != nil {
		return nil, err
	}

	intent, err := s.stripeClient.CreatePaymentIntent(ctx, stripe.PaymentIntentInput{
		OrderID:     order.ID,
		OrderNo:     order.OrderNo,
		Amount:      order.TotalAmount.String(),
		Currency:    order.Currency,
		Description: "Order " + order.OrderNo,
	})
	if err != nil {
		return nil, s.mapStripeError(order.OrderNo, err)
	}

	if err := s.orderService.AttachPayment(order.ID, constants.PaymentMethodCard, intent.ID, ""); err != nil {
		return nil, err
	}

	logger.Infow("payment_intent_created", "order_no", order.OrderNo, "intent_id", intent.ID)
	return &PaymentIntentResult{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		PublishableKey:  s.cfg.Stripe.PublishableKey,
		Amount:          order.TotalAmount,
		Currency:        order.Currency,
	}, nil
}

// CreateCheckoutSession opens a hosted checkout session for the order and
// records its id.
func (s *PaymentService) CreateCheckoutSession(ctx context.Context, userID, orderID uint) (*CheckoutSessionResult, error) {
	if s.stripeClient == nil {
		return nil, ErrPaymentConfigInvalid
	}
	order, err := s.payableOrder(userID, orderID)
	if err != nil {
		return nil, err
	}

	session, err := s.stripeClient.CreateCheckoutSession(ctx, stripe.CheckoutSessionInput{
		OrderID:     order.ID,
		OrderNo:     order.OrderNo,
		Amount:      order.TotalAmount.String(),
		Currency:    order.Currency,
		Description: "Order " + order.OrderNo,
	})
	if err != nil {
		return nil, s.mapStripeError(order.OrderNo, err)
	}

	if err := s.orderService.AttachPayment(order.ID, constants.PaymentMethodCheckout, session.PaymentIntentID, session.ID); err != nil {
		return nil, err
	}

	logger.Infow("checkout_session_created", "order_no", order.OrderNo, "session_id", session.ID)
	return &CheckoutSessionResult{SessionID: session.ID, URL: session.URL}, nil
}

// ConfirmPayment is the client-side confirmation path. It never trusts the
// client's claim: the recorded PaymentIntent is re-read from Stripe and only
// its status drives the order transition. Safe to race with the webhook.
func (s *PaymentService) ConfirmPayment(ctx context.Context, userID, orderID uint) (string, error) {
	if s.stripeClient == nil {
		return "", ErrPaymentConfigInvalid
	}
	order, err := s.orderService.GetUserOrder(userID, orderID)
	if err != nil {
		return "", err
	}
	if order.PaymentStatus == constants.PaymentStatusPaid {
		return constants.PaymentStatusPaid, nil
	}
	if order.PaymentIntentID == "" {
		return "", ErrOrderNotPayable
	}

	intent, err := s.stripeClient.GetPaymentIntent(ctx, order.PaymentIntentID)
	if err != nil {
		return "", s.mapStripeError(order.OrderNo, err)
	}

	switch intent.Status {
	case "succeeded":
		if err := s.orderService.MarkOrderPaid(order.ID, order.PaymentMethod); err != nil {
			return "", err
		}
		return constants.PaymentStatusPaid, nil
	case "canceled", "requires_payment_method":
		if err := s.orderService.MarkOrderPaymentFailed(order.ID); err != nil {
			return "", err
		}
		return constants.PaymentStatusFailed, nil
	default:
		return constants.PaymentStatusPending, nil
	}
}

func (s *PaymentService) mapStripeError(orderNo string, err error) error {
	switch {
	case errors.Is(err, stripe.ErrConfigInvalid):
		logger.Errorw("stripe_config_invalid", "order_no", orderNo, "error", err)
		return ErrPaymentConfigInvalid
	case errors.Is(err, stripe.ErrRequestFailed):
		logger.Errorw("stripe_request_failed", "order_no", orderNo, "error", err)
		return ErrPaymentGatewayRequestFailed
	case errors.Is(err, stripe.ErrResponseInvalid):
		logger.Errorw("stripe_response_invalid", "order_no", orderNo, "error", err)
		return ErrPaymentGatewayResponseInvalid
	default:
		logger.Errorw("stripe_call_failed", "order_no", orderNo, "error", err)
		return ErrPaymentGatewayRequestFailed
	}
}

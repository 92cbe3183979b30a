package service

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/compoundrx/storefront/internal/config"
	"github.com/compoundrx/storefront/internal/constants"
	"github.com/compoundrx/storefront/internal/logger"
	"github.com/compoundrx/storefront/internal/models"
	"github.com/compoundrx/storefront/internal/queue"
	"github.com/compoundrx/storefront/internal/repository"
)

// errTransitionNotApplied aborts a transition transaction when the guarded
// write matched no row. The caller re-reads the order to decide whether the
// transition already converged.
var errTransitionNotApplied = errors.New("transition not applied")

// OrderService drives the order lifecycle. Every transition goes through a
// guarded conditional write, so a client confirmation and a webhook racing
// for the same order apply the transition exactly once between them.
type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	cartRepo    repository.CartRepository
	settings    *SettingService
	queueClient *queue.Client
	cfg         *config.Config

	createGuard sync.Map // userID -> struct{}
}

// NewOrderService builds an order service.
func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, cartRepo repository.CartRepository, settings *SettingService, queueClient *queue.Client, cfg *config.Config) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
		settings:    settings,
		queueClient: queueClient,
		cfg:         cfg,
	}
}

// ShippingAddress is the address snapshot stored on the order.
type ShippingAddress struct {
	Name       string `json:"name" binding:"required"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1" binding:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city" binding:"required"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code" binding:"required"`
	Country    string `json:"country" binding:"required"`
}

func (a ShippingAddress) validate() error {
	if strings.TrimSpace(a.Name) == "" ||
		strings.TrimSpace(a.Line1) == "" ||
		strings.TrimSpace(a.City) == "" ||
		strings.TrimSpace(a.PostalCode) == "" ||
		strings.TrimSpace(a.Country) == "" {
		return ErrShippingAddressInvalid
	}
	return nil
}

func (a ShippingAddress) toJSON() models.JSON {
	return models.JSON{
		"name":        a.Name,
		"phone":       a.Phone,
		"line1":       a.Line1,
		"line2":       a.Line2,
		"city":        a.City,
		"state":       a.State,
		"postal_code": a.PostalCode,
		"country":     a.Country,
	}
}

// CreateOrderInput is the checkout payload.
type CreateOrderInput struct {
	ShippingAddress ShippingAddress
	ClientIP        string
}

func generateOrderNo() string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	suffix := binary.BigEndian.Uint32(buf) % 1000000
	return fmt.Sprintf("CRX%s%06d", time.Now().Format("20060102150405"), suffix)
}

func (s *OrderService) resolveExpireMinutes() int {
	if s.settings != nil {
		if minutes := s.settings.GetOrderPaymentExpireMinutes(); minutes > 0 {
			return minutes
		}
	}
	if s.cfg != nil && s.cfg.Order.PaymentExpireMinutes > 0 {
		return s.cfg.Order.PaymentExpireMinutes
	}
	return 15
}

// CreateOrder turns the user's cart into a pending order. Stock for tracked
// products is reserved inside the same transaction that writes the order,
// and the cart is cleared on commit. A second create racing for the same
// user is rejected while the first is in flight.
func (s *OrderService) CreateOrder(userID uint, input CreateOrderInput) (*models.Order, error) {
	if _, loaded := s.createGuard.LoadOrStore(userID, struct{}{}); loaded {
		return nil, ErrOrderCreateInFlight
	}
	defer s.createGuard.Delete(userID)

	if err := input.ShippingAddress.validate(); err != nil {
		return nil, err
	}

	cartItems, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		logger.Errorw("order_create_cart_load_failed", "user_id", userID, "error", err)
		return nil, ErrOrderCreateFailed
	}
	if len(cartItems) == 0 {
		return nil, ErrCartEmpty
	}

	type orderLine struct {
		product  *models.Product
		quantity int
	}
	lines := make([]orderLine, 0, len(cartItems))
	total := decimal.Zero
	for _, item := range cartItems {
		// Lines whose product vanished or was unlisted are hidden from the
		// cart view, so they cannot block checkout either.
		if item.Product == nil || !item.Product.IsActive {
			continue
		}
		if item.Quantity <= 0 {
			return nil, ErrInvalidCartItem
		}
		lines = append(lines, orderLine{product: item.Product, quantity: item.Quantity})
		total = total.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	if len(lines) == 0 {
		return nil, ErrCartEmpty
	}

	now := time.Now()
	expiresAt := now.Add(time.Duration(s.resolveExpireMinutes()) * time.Minute)
	currency := constants.SiteCurrencyDefault
	if s.cfg != nil && s.cfg.Stripe.Currency != "" {
		currency = strings.ToUpper(s.cfg.Stripe.Currency)
	}

	order := &models.Order{
		OrderNo:             generateOrderNo(),
		UserID:              userID,
		Status:              constants.OrderStatusPending,
		PaymentStatus:       constants.PaymentStatusPending,
		Currency:            currency,
		TotalAmount:         models.NewMoneyFromDecimal(total),
		ShippingAddressJSON: input.ShippingAddress.toJSON(),
		ClientIP:            input.ClientIP,
		ExpiresAt:           &expiresAt,
	}

	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.OrderItem{
			ProductID:   line.product.ID,
			ProductName: line.product.Name,
			DosageForm:  line.product.DosageForm,
			UnitPrice:   line.product.Price,
			Quantity:    line.quantity,
			TotalPrice:  models.NewMoneyFromDecimal(line.product.Price.Mul(decimal.NewFromInt(int64(line.quantity)))),
		})
	}

	err = s.productRepo.Transaction(func(tx *gorm.DB) error {
		txProducts := s.productRepo.WithTx(tx)
		for _, line := range lines {
			if line.product.StockTotal <= 0 {
				continue
			}
			rows, err := txProducts.ReserveStock(line.product.ID, line.quantity)
			if err != nil {
				return err
			}
			if rows == 0 {
				return ErrStockInsufficient
			}
		}
		if err := s.orderRepo.WithTx(tx).Create(order, items); err != nil {
			return err
		}
		return s.cartRepo.WithTx(tx).ClearByUser(userID)
	})
	if err != nil {
		if errors.Is(err, ErrStockInsufficient) {
			return nil, err
		}
		logger.Errorw("order_create_failed", "user_id", userID, "error", err)
		return nil, ErrOrderCreateFailed
	}

	s.scheduleTimeoutCancel(order, expiresAt.Sub(now))

	logger.Infow("order_created",
		"order_no", order.OrderNo,
		"user_id", userID,
		"total", order.TotalAmount.String(),
		"expires_at", expiresAt)
	order.Items = items
	return order, nil
}

func (s *OrderService) scheduleTimeoutCancel(order *models.Order, delay time.Duration) {
	if s.queueClient == nil || !s.queueClient.Enabled() {
		return
	}
	err := s.queueClient.EnqueueOrderTimeoutCancel(queue.OrderTimeoutCancelPayload{
		OrderID: order.ID,
		OrderNo: order.OrderNo,
	}, delay)
	if err != nil {
		// The periodic expiry sweep picks the order up anyway.
		logger.Warnw("order_timeout_enqueue_failed", "order_no", order.OrderNo, "error", err)
	}
}

// CancelOrder cancels a user's own pending order and releases its stock.
// Cancelling an already cancelled order is a no-op.
func (s *OrderService) CancelOrder(userID, orderID uint) error {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return ErrOrderFetchFailed
	}
	if order == nil {
		return ErrOrderNotFound
	}
	if order.Status == constants.OrderStatusCancelled {
		return nil
	}
	if order.Status != constants.OrderStatusPending {
		return ErrOrderCancelNotAllowed
	}

	applied, err := s.cancelPendingOrder(order, nil)
	if err != nil {
		return ErrOrderUpdateFailed
	}
	if !applied {
		// Lost the race. Re-read to see what the order became.
		current, err := s.orderRepo.GetByID(order.ID)
		if err != nil || current == nil {
			return ErrOrderUpdateFailed
		}
		if current.Status == constants.OrderStatusCancelled {
			return nil
		}
		return ErrOrderCancelNotAllowed
	}

	logger.Infow("order_cancelled", "order_no", order.OrderNo, "user_id", userID)
	return nil
}

// cancelPendingOrder runs the guarded pending -> cancelled write and releases
// reserved stock in the same transaction. Extra columns ride along with the
// transition. Returns whether this call applied the transition.
func (s *OrderService) cancelPendingOrder(order *models.Order, extra map[string]interface{}) (bool, error) {
	applied := false
	updates := map[string]interface{}{"cancelled_at": time.Now()}
	for k, v := range extra {
		updates[k] = v
	}
	err := s.productRepo.Transaction(func(tx *gorm.DB) error {
		rows, err := s.orderRepo.WithTx(tx).UpdateStatusIf(order.ID,
			constants.OrderStatusPending, constants.OrderStatusCancelled,
			updates)
		if err != nil {
			return err
		}
		if rows == 0 {
			return nil
		}
		applied = true

		txProducts := s.productRepo.WithTx(tx)
		for _, item := range order.Items {
			if _, err := txProducts.ReleaseStock(item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	return applied, err
}

// CancelExpiredOrder cancels a pending order whose payment window elapsed.
// Called by the timeout task and the expiry sweep; safe to call repeatedly
// and safe to race with a payment, the guarded write keeps only one outcome.
func (s *OrderService) CancelExpiredOrder(orderID uint) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if order == nil || order.Status != constants.OrderStatusPending {
		return nil
	}
	if order.ExpiresAt == nil || order.ExpiresAt.After(time.Now()) {
		return nil
	}

	applied, err := s.cancelPendingOrder(order, nil)
	if err != nil {
		return err
	}
	if applied {
		logger.Infow("order_expired_cancelled", "order_no", order.OrderNo)
	}
	return nil
}

// MarkOrderPaid applies the payment success transition: pending ->
// processing, payment_status paid, reserved stock consumed. Both the client
// confirmation path and the webhook path funnel through here; whichever
// lands second sees the guarded write match nothing and returns without
// side effects.
func (s *OrderService) MarkOrderPaid(orderID uint, paymentMethod string) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return ErrOrderFetchFailed
	}
	if order == nil {
		return ErrOrderNotFound
	}

	now := time.Now()
	updates := map[string]interface{}{
		"payment_status": constants.PaymentStatusPaid,
		"paid_at":        now,
	}
	if paymentMethod != "" {
		updates["payment_method"] = paymentMethod
	}

	err = s.productRepo.Transaction(func(tx *gorm.DB) error {
		rows, err := s.orderRepo.WithTx(tx).UpdateStatusIf(order.ID,
			constants.OrderStatusPending, constants.OrderStatusProcessing, updates)
		if err != nil {
			return err
		}
		if rows == 0 {
			return errTransitionNotApplied
		}

		txProducts := s.productRepo.WithTx(tx)
		for _, item := range order.Items {
			if _, err := txProducts.ConsumeStock(item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		logger.Infow("order_paid", "order_no", order.OrderNo, "method", paymentMethod)
		return nil
	}
	if !errors.Is(err, errTransitionNotApplied) {
		logger.Errorw("order_mark_paid_failed", "order_no", order.OrderNo, "error", err)
		return ErrOrderUpdateFailed
	}

	// Transition already happened elsewhere. Decide from the current row.
	current, err := s.orderRepo.GetByID(order.ID)
	if err != nil || current == nil {
		return ErrOrderFetchFailed
	}
	if current.PaymentStatus == constants.PaymentStatusPaid {
		return nil
	}
	if current.Status == constants.OrderStatusCancelled {
		// Payment landed after a timeout cancel. Record it so support can
		// refund; the cancelled status stays.
		if err := s.orderRepo.UpdateStatus(order.ID, constants.OrderStatusCancelled, map[string]interface{}{
			"payment_status": constants.PaymentStatusPaid,
			"paid_at":        now,
		}); err != nil {
			return ErrOrderUpdateFailed
		}
		logger.Warnw("order_paid_after_cancel", "order_no", order.OrderNo)
		return nil
	}
	return ErrOrderUpdateFailed
}

// MarkOrderPaymentFailed applies the payment failure transition: pending ->
// cancelled, payment_status failed, reserved stock released. The customer
// starts over with a fresh checkout. Replays and failure reports arriving
// after a successful payment are absorbed without side effects.
func (s *OrderService) MarkOrderPaymentFailed(orderID uint) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return ErrOrderFetchFailed
	}
	if order == nil {
		return ErrOrderNotFound
	}
	if order.Status != constants.OrderStatusPending {
		// Already paid or cancelled; the failure report is stale.
		logger.Infow("order_payment_failed_ignored", "order_no", order.OrderNo, "status", order.Status)
		return nil
	}

	applied, err := s.cancelPendingOrder(order, map[string]interface{}{
		"payment_status": constants.PaymentStatusFailed,
	})
	if err != nil {
		return ErrOrderUpdateFailed
	}
	if !applied {
		// Lost the race against a payment or another cancel; either outcome
		// already converged.
		logger.Infow("order_payment_failed_ignored", "order_no", order.OrderNo)
		return nil
	}
	logger.Infow("order_payment_failed_cancelled", "order_no", order.OrderNo)
	return nil
}

// AttachPayment records the gateway reference on a payable order. Only one
// of the two references is authoritative at a time, so picking one flow
// clears the other's leftover from an earlier attempt.
func (s *OrderService) AttachPayment(orderID uint, paymentMethod, intentID, sessionID string) error {
	updates := map[string]interface{}{}
	if paymentMethod != "" {
		updates["payment_method"] = paymentMethod
	}
	if intentID != "" {
		updates["payment_intent_id"] = intentID
		updates["checkout_session_id"] = ""
	}
	if sessionID != "" {
		updates["checkout_session_id"] = sessionID
		updates["payment_intent_id"] = ""
	}
	if len(updates) == 0 {
		return nil
	}

	rows, err := s.orderRepo.UpdateStatusIf(orderID,
		constants.OrderStatusPending, constants.OrderStatusPending, updates)
	if err != nil {
		return ErrOrderUpdateFailed
	}
	if rows == 0 {
		return ErrOrderNotPayable
	}
	return nil
}

// UpdateOrderStatus applies an admin status change through the transition
// graph. Repeating the current status is accepted and does nothing.
func (s *OrderService) UpdateOrderStatus(orderID uint, target string) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return ErrOrderFetchFailed
	}
	if order == nil {
		return ErrOrderNotFound
	}
	if order.Status == target {
		return nil
	}
	if !isTransitionAllowed(order.Status, target) {
		return ErrOrderStatusInvalid
	}

	if target == constants.OrderStatusCancelled {
		applied, err := s.cancelPendingOrder(order, nil)
		if err != nil {
			return ErrOrderUpdateFailed
		}
		if !applied {
			return ErrOrderStatusInvalid
		}
		return nil
	}

	rows, err := s.orderRepo.UpdateStatusIf(orderID, order.Status, target, nil)
	if err != nil {
		return ErrOrderUpdateFailed
	}
	if rows == 0 {
		return ErrOrderStatusInvalid
	}
	logger.Infow("order_status_updated", "order_no", order.OrderNo, "from", order.Status, "to", target)
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"vietqr-order-service/internal/apperr"
	"vietqr-order-service/internal/client"
	"vietqr-order-service/internal/model"
	"vietqr-order-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type DraftItem struct {
	ProductID string
	Quantity  int32
}

type OrderDraft struct {
	Items         []DraftItem
	PaymentMethod string
	TotalAmount   int64
	Shipping      model.ShippingInfo
}

type QRResult struct {
	Order         *model.Order
	QRImageRef    string
	TransactionID string
}

// Reconciler owns every order status transition. All triggers — checkout,
// webhook, cancellation, fulfillment, expiry sweep — funnel through the
// store's compare-and-set, so concurrent triggers on one order can never
// double-apply.
type Reconciler interface {
	CreateOrder(ctx context.Context, draft *OrderDraft) (*model.Order, error)
	GetOrder(ctx context.Context, orderID string) (*model.Order, error)
	RequestQR(ctx context.Context, orderID string) (*QRResult, error)
	ApplyPaymentEvent(ctx context.Context, event *model.PaymentEvent) (*model.Order, error)
	Cancel(ctx context.Context, orderID string) (*model.Order, error)
	Advance(ctx context.Context, orderID, nextStatus string) (*model.Order, error)
	ExpireStale(ctx context.Context, olderThan time.Time) (int, error)
}

type reconcilerImpl struct {
	orderRepo       repository.OrderRepository
	productRepo     repository.ProductRepository
	qrClient        client.VietQRClient
	amountTolerance int64
	logger          *zap.SugaredLogger
}

func NewReconciler(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	qrClient client.VietQRClient,
	amountTolerance int64,
	logger *zap.SugaredLogger,
) Reconciler {
	return &reconcilerImpl{
		orderRepo:       orderRepo,
		productRepo:     productRepo,
		qrClient:        qrClient,
		amountTolerance: amountTolerance,
		logger:          logger,
	}
}

func (s *reconcilerImpl) CreateOrder(ctx context.Context, draft *OrderDraft) (*model.Order, error) {
	if !model.ValidPaymentMethod(draft.PaymentMethod) {
		return nil, fmt.Errorf("%w: unsupported payment method %q", apperr.ErrValidation, draft.PaymentMethod)
	}
	if len(draft.Items) == 0 {
		return nil, fmt.Errorf("%w: order has no items", apperr.ErrValidation)
	}

	// repeated product ids are folded into one line with a summed quantity
	productIDs := make([]string, 0, len(draft.Items))
	quantityBySku := make(map[string]int32)
	for _, item := range draft.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item quantity must be positive", apperr.ErrValidation)
		}
		if _, ok := quantityBySku[item.ProductID]; !ok {
			productIDs = append(productIDs, item.ProductID)
		}
		quantityBySku[item.ProductID] += item.Quantity
	}

	products, err := s.productRepo.FindMany(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	if len(products) != len(productIDs) {
		return nil, fmt.Errorf("%w: some products not found", apperr.ErrValidation)
	}

	var computed int64
	orderItems := make([]model.OrderItem, len(products))
	for i, product := range products {
		quantity := quantityBySku[product.ID]
		computed += product.Price * int64(quantity)

		orderItems[i] = model.OrderItem{
			ProductID: product.ID,
			Quantity:  quantity,
			UnitPrice: product.Price,
		}
	}
	if computed != draft.TotalAmount {
		return nil, fmt.Errorf("%w: total_amount %d does not match item subtotals %d",
			apperr.ErrValidation, draft.TotalAmount, computed)
	}

	order := &model.Order{
		ID:            uuid.NewString(),
		Status:        model.StatusPending,
		PaymentMethod: draft.PaymentMethod,
		TotalAmount:   computed,
		Shipping:      draft.Shipping,
		Items:         orderItems,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("store order: %w", err)
	}

	return order, nil
}

func (s *reconcilerImpl) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	return s.orderRepo.FindByID(ctx, orderID)
}

// RequestQR drives pending → awaiting_payment. A gateway failure leaves the
// order in pending and attaches nothing, so the caller may simply try again;
// once an attach has succeeded, any further QR request is a conflict.
func (s *reconcilerImpl) RequestQR(ctx context.Context, orderID string) (*QRResult, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.PaymentMethod != model.MethodQRTransfer {
		return nil, fmt.Errorf("%w: order %s pays by %s, not %s",
			apperr.ErrValidation, orderID, order.PaymentMethod, model.MethodQRTransfer)
	}
	if order.Status != model.StatusPending {
		return nil, fmt.Errorf("%w: order %s is %s, QR generation requires %s",
			apperr.ErrConflict, orderID, order.Status, model.StatusPending)
	}

	resp, err := s.qrClient.RequestQR(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("request qr: %w", err)
	}

	order, err = s.orderRepo.AttachTransaction(ctx, orderID, resp.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("attach transaction: %w", err)
	}

	order, err = s.orderRepo.Transition(ctx, orderID, model.StatusPending, model.StatusAwaitingPayment)
	if err != nil {
		// a concurrent trigger (cancel, racing QR request) won; let the
		// caller re-read rather than guess
		return nil, fmt.Errorf("mark awaiting payment: %w", err)
	}

	return &QRResult{
		Order:         order,
		QRImageRef:    resp.QRImageRef,
		TransactionID: resp.TransactionID,
	}, nil
}

// ApplyPaymentEvent drives awaiting_payment → processing or payment_failed.
// A lost compare-and-set here means another delivery of the same outcome
// already landed, which is success from the provider's point of view.
func (s *reconcilerImpl) ApplyPaymentEvent(ctx context.Context, event *model.PaymentEvent) (*model.Order, error) {
	order, err := s.orderRepo.FindByTransactionID(ctx, event.TransactionID)
	if err != nil {
		return nil, err
	}

	if event.OrderReference != "" && event.OrderReference != order.ID {
		s.logger.Warnw("payment event order reference mismatch",
			"transaction_id", event.TransactionID,
			"claimed_order", event.OrderReference,
			"attached_order", order.ID)
		return nil, fmt.Errorf("%w: transaction %s is not attached to order %s",
			apperr.ErrUnknownTransaction, event.TransactionID, event.OrderReference)
	}

	switch event.Outcome {
	case model.OutcomeSuccess:
		diff := event.Amount - order.TotalAmount
		if diff < -s.amountTolerance || diff > s.amountTolerance {
			s.logger.Warnw("payment event amount mismatch",
				"transaction_id", event.TransactionID,
				"order_id", order.ID,
				"reported", event.Amount,
				"expected", order.TotalAmount)
			return nil, fmt.Errorf("%w: reported amount %d does not match order total %d",
				apperr.ErrValidation, event.Amount, order.TotalAmount)
		}
		return s.transitionHandled(ctx, order, model.StatusAwaitingPayment, model.StatusProcessing)

	case model.OutcomeFailure:
		return s.transitionHandled(ctx, order, model.StatusAwaitingPayment, model.StatusPaymentFailed)

	default:
		return nil, fmt.Errorf("%w: unknown outcome %q", apperr.ErrValidation, event.Outcome)
	}
}

// transitionHandled applies a webhook-driven transition, treating a lost
// compare-and-set as already handled.
func (s *reconcilerImpl) transitionHandled(ctx context.Context, order *model.Order, expected, next string) (*model.Order, error) {
	updated, err := s.orderRepo.Transition(ctx, order.ID, expected, next)
	if err == nil {
		return updated, nil
	}
	if errors.Is(err, apperr.ErrConflict) {
		current, readErr := s.orderRepo.FindByID(ctx, order.ID)
		if readErr != nil {
			return nil, readErr
		}
		s.logger.Infow("transition already handled",
			"order_id", order.ID, "status", current.Status, "wanted", next)
		return current, nil
	}
	return nil, err
}

func (s *reconcilerImpl) Cancel(ctx context.Context, orderID string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch order.Status {
	case model.StatusPending, model.StatusAwaitingPayment, model.StatusProcessing:
	default:
		return nil, fmt.Errorf("%w: order %s is %s and cannot be cancelled",
			apperr.ErrConflict, orderID, order.Status)
	}

	return s.orderRepo.Transition(ctx, orderID, order.Status, model.StatusCancelled)
}

// Advance applies the fulfillment transitions. The fulfillment system calls
// this entry point; the core never pushes to it.
func (s *reconcilerImpl) Advance(ctx context.Context, orderID, nextStatus string) (*model.Order, error) {
	var expected string
	switch nextStatus {
	case model.StatusShipped:
		expected = model.StatusProcessing
	case model.StatusDelivered:
		expected = model.StatusShipped
	default:
		return nil, fmt.Errorf("%w: %q is not a fulfillment status", apperr.ErrValidation, nextStatus)
	}

	return s.orderRepo.Transition(ctx, orderID, expected, nextStatus)
}

// ExpireStale fails orders stuck in awaiting_payment past the grace period.
// Each expiry goes through the same compare-and-set as a webhook, so a
// success event racing the sweep still wins or loses cleanly.
func (s *reconcilerImpl) ExpireStale(ctx context.Context, olderThan time.Time) (int, error) {
	stale, err := s.orderRepo.FindStaleAwaitingPayment(ctx, olderThan)
	if err != nil {
		return 0, fmt.Errorf("find stale orders: %w", err)
	}

	expired := 0
	for _, order := range stale {
		_, err := s.orderRepo.Transition(ctx, order.ID, model.StatusAwaitingPayment, model.StatusPaymentFailed)
		if errors.Is(err, apperr.ErrConflict) {
			continue // settled while we were sweeping
		}
		if err != nil {
			return expired, fmt.Errorf("expire order %s: %w", order.ID, err)
		}
		s.logger.Infow("expired awaiting payment order", "order_id", order.ID)
		expired++
	}

	return expired, nil
}

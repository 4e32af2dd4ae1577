package repository

import (
	"context"
	"errors"
	"fmt"
	"time"
	"vietqr-order-service/internal/apperr"
	"vietqr-order-service/internal/model"

	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, orderID string) (*model.Order, error)
	FindByTransactionID(ctx context.Context, transactionID string) (*model.Order, error)
	AttachTransaction(ctx context.Context, orderID, transactionID string) (*model.Order, error)
	Transition(ctx context.Context, orderID, expectedStatus, nextStatus string) (*model.Order, error)
	FindStaleAwaitingPayment(ctx context.Context, olderThan time.Time) ([]*model.Order, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

// Create stores the order and its items in one transaction. The draft must
// already carry a status; items are validated against the claimed total so a
// mispriced order never reaches the store.
func (r *orderRepoImpl) Create(ctx context.Context, order *model.Order) error {
	if len(order.Items) == 0 {
		return fmt.Errorf("%w: order has no items", apperr.ErrValidation)
	}

	var computed int64
	for _, item := range order.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: item quantity must be positive", apperr.ErrValidation)
		}
		computed += item.UnitPrice * int64(item.Quantity)
	}
	if computed != order.TotalAmount {
		return fmt.Errorf("%w: total_amount %d does not match item subtotals %d",
			apperr.ErrValidation, order.TotalAmount, computed)
	}

	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) FindByID(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", orderID).
		First(&order).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", apperr.ErrNotFound, orderID)
	}
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindByTransactionID(ctx context.Context, transactionID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("transaction_id = ?", transactionID).
		First(&order).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", apperr.ErrUnknownTransaction, transactionID)
	}
	if err != nil {
		return nil, err
	}

	return &order, nil
}

// AttachTransaction binds a provider transaction id to the order. At most one
// id may ever be attached: re-attaching the same pair is a no-op, anything
// else is a conflict. A unique index on transaction_id backs the check
// against concurrent attaches and against another order owning the id.
func (r *orderRepoImpl) AttachTransaction(ctx context.Context, orderID, transactionID string) (*model.Order, error) {
	order, err := r.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.TransactionID != nil {
		if *order.TransactionID == transactionID {
			return order, nil
		}
		return nil, fmt.Errorf("%w: order %s already has transaction %s attached",
			apperr.ErrConflict, orderID, *order.TransactionID)
	}

	if owner, err := r.FindByTransactionID(ctx, transactionID); err == nil && owner.ID != orderID {
		return nil, fmt.Errorf("%w: transaction %s already attached to order %s",
			apperr.ErrConflict, transactionID, owner.ID)
	}

	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND transaction_id IS NULL", orderID).
		Updates(map[string]interface{}{
			"transaction_id": transactionID,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		// unique index trip from a racing attach on another order
		return nil, fmt.Errorf("%w: attach transaction %s: %v",
			apperr.ErrConflict, transactionID, result.Error)
	}
	if result.RowsAffected == 0 {
		current, err := r.FindByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if current.TransactionID != nil && *current.TransactionID == transactionID {
			return current, nil
		}
		return nil, fmt.Errorf("%w: order %s lost attach race", apperr.ErrConflict, orderID)
	}

	return r.FindByID(ctx, orderID)
}

// Transition is the compare-and-set primitive serializing all status changes.
// The UPDATE is guarded on the expected status; zero rows affected means some
// concurrent trigger got there first.
func (r *orderRepoImpl) Transition(ctx context.Context, orderID, expectedStatus, nextStatus string) (*model.Order, error) {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, expectedStatus).
		Updates(map[string]interface{}{
			"status":     nextStatus,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		current, err := r.FindByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: order %s is %s, expected %s",
			apperr.ErrConflict, orderID, current.Status, expectedStatus)
	}

	return r.FindByID(ctx, orderID)
}

func (r *orderRepoImpl) FindStaleAwaitingPayment(ctx context.Context, olderThan time.Time) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Where("status = ?", model.StatusAwaitingPayment).
		Where("updated_at < ?", olderThan).
		Find(&orders).
		Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

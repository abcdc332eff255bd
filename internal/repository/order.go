package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"marketplace-settlement/internal/model"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order, lines []*model.OrderLine) error
	FindByID(ctx context.Context, orderID string) (*model.Order, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, orderID string) (*model.Order, error)
	FindByPaymentRefForUpdate(ctx context.Context, tx *gorm.DB, paymentRef string) (*model.Order, error)
	GetLines(ctx context.Context, tx *gorm.DB, orderID string) ([]*model.OrderLine, error)
	MarkPaymentSucceeded(ctx context.Context, tx *gorm.DB, orderID string, paidAt time.Time, releaseAt time.Time, holdDays int) error
	MarkPaymentFailed(ctx context.Context, tx *gorm.DB, orderID string) error
	MarkReleased(ctx context.Context, tx *gorm.DB, orderID string, releasedAt time.Time) error
	UpdateReleaseSchedule(ctx context.Context, tx *gorm.DB, orderID string, releaseAt time.Time, holdDays int) error
	ListDueForRelease(ctx context.Context, now time.Time) ([]*model.Order, error)
	ListByBuyer(ctx context.Context, buyerID string, offset, limit int) ([]*model.Order, int64, error)
	ListAll(ctx context.Context, offset, limit int) ([]*model.Order, int64, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order, lines []*model.OrderLine) error {
	if err := tx.WithContext(ctx).Create(order).Error; err != nil {
		return err
	}
	return tx.WithContext(ctx).Create(&lines).Error
}

func (r *orderRepoImpl) FindByID(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}

	return &order, nil
}

// lockForUpdate adds a FOR UPDATE row lock. SQLite has no row locks and
// serializes writers on its own, so the clause is skipped there.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// FindByIDForUpdate takes the per-order row lock all state transitions
// serialize on.
func (r *orderRepoImpl) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, orderID string) (*model.Order, error) {
	var order model.Order
	err := lockForUpdate(tx.WithContext(ctx)).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindByPaymentRefForUpdate(ctx context.Context, tx *gorm.DB, paymentRef string) (*model.Order, error) {
	var order model.Order
	err := lockForUpdate(tx.WithContext(ctx)).
		Where("payment_ref = ?", paymentRef).
		First(&order).Error
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) GetLines(ctx context.Context, tx *gorm.DB, orderID string) ([]*model.OrderLine, error) {
	var lines []*model.OrderLine
	err := tx.WithContext(ctx).
		Where("order_id = ?", orderID).
		Find(&lines).Error
	if err != nil {
		return nil, err
	}

	return lines, nil
}

func (r *orderRepoImpl) MarkPaymentSucceeded(ctx context.Context, tx *gorm.DB, orderID string, paidAt time.Time, releaseAt time.Time, holdDays int) error {
	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND payment_status = ?", orderID, model.PaymentStatusPending).
		Updates(map[string]interface{}{
			"payment_status": model.PaymentStatusSucceeded,
			"status":         model.OrderStatusConfirmed,
			"paid_at":        paidAt,
			"release_at":     releaseAt,
			"hold_days":      holdDays,
			"held":           true,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepoImpl) MarkPaymentFailed(ctx context.Context, tx *gorm.DB, orderID string) error {
	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND payment_status = ?", orderID, model.PaymentStatusPending).
		Updates(map[string]interface{}{
			"payment_status": model.PaymentStatusFailed,
			"status":         model.OrderStatusCanceled,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepoImpl) MarkReleased(ctx context.Context, tx *gorm.DB, orderID string, releasedAt time.Time) error {
	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND released = ?", orderID, false).
		Updates(map[string]interface{}{
			"released":    true,
			"released_at": releasedAt,
			"held":        false,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepoImpl) UpdateReleaseSchedule(ctx context.Context, tx *gorm.DB, orderID string, releaseAt time.Time, holdDays int) error {
	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND released = ?", orderID, false).
		Updates(map[string]interface{}{
			"release_at": releaseAt,
			"hold_days":  holdDays,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepoImpl) ListDueForRelease(ctx context.Context, now time.Time) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Where("payment_status = ? AND held = ? AND released = ? AND release_at <= ?",
			model.PaymentStatusSucceeded, true, false, now).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) ListByBuyer(ctx context.Context, buyerID string, offset, limit int) ([]*model.Order, int64, error) {
	var total int64
	query := r.db.WithContext(ctx).Model(&model.Order{}).Where("buyer_id = ?", buyerID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []*model.Order
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *orderRepoImpl) ListAll(ctx context.Context, offset, limit int) ([]*model.Order, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Order{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"marketplace-settlement/internal/model"
)

type PayoutRepository interface {
	Create(ctx context.Context, tx *gorm.DB, payout *model.Payout) error
	ExistsForOrderSeller(ctx context.Context, tx *gorm.DB, orderID, sellerID string) (bool, error)
	FindByID(ctx context.Context, payoutID string) (*model.Payout, error)
	ListByOrder(ctx context.Context, tx *gorm.DB, orderID string, statuses ...string) ([]*model.Payout, error)
	MarkProcessing(ctx context.Context, tx *gorm.DB, payoutID string) error
	MarkCompleted(ctx context.Context, tx *gorm.DB, payoutID, transferRef string, when time.Time) error
	MarkFailed(ctx context.Context, tx *gorm.DB, payoutID, reason string) error
	ListBySeller(ctx context.Context, sellerID string, offset, limit int) ([]*model.Payout, int64, error)
	ListAllBySeller(ctx context.Context, sellerID string) ([]*model.Payout, error)
}

type payoutRepoImpl struct {
	db *gorm.DB
}

func NewPayoutRepository(db *gorm.DB) PayoutRepository {
	return &payoutRepoImpl{
		db: db,
	}
}

func (r *payoutRepoImpl) Create(ctx context.Context, tx *gorm.DB, payout *model.Payout) error {
	return tx.WithContext(ctx).Create(payout).Error
}

func (r *payoutRepoImpl) ExistsForOrderSeller(ctx context.Context, tx *gorm.DB, orderID, sellerID string) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&model.Payout{}).
		Where("order_id = ? AND seller_id = ?", orderID, sellerID).
		Count(&count).Error

	return count > 0, err
}

func (r *payoutRepoImpl) FindByID(ctx context.Context, payoutID string) (*model.Payout, error) {
	var payout model.Payout
	err := r.db.WithContext(ctx).
		Where("id = ?", payoutID).
		First(&payout).Error
	if err != nil {
		return nil, err
	}

	return &payout, nil
}

func (r *payoutRepoImpl) ListByOrder(ctx context.Context, tx *gorm.DB, orderID string, statuses ...string) ([]*model.Payout, error) {
	query := tx.WithContext(ctx).Where("order_id = ?", orderID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var payouts []*model.Payout
	if err := query.Order("seller_id").Find(&payouts).Error; err != nil {
		return nil, err
	}

	return payouts, nil
}

func (r *payoutRepoImpl) MarkProcessing(ctx context.Context, tx *gorm.DB, payoutID string) error {
	return r.transition(ctx, tx, payoutID,
		[]string{model.PayoutStatusPending, model.PayoutStatusFailed},
		map[string]interface{}{
			"status":     model.PayoutStatusProcessing,
			"updated_at": time.Now(),
		})
}

func (r *payoutRepoImpl) MarkCompleted(ctx context.Context, tx *gorm.DB, payoutID, transferRef string, when time.Time) error {
	return r.transition(ctx, tx, payoutID,
		[]string{model.PayoutStatusProcessing},
		map[string]interface{}{
			"status":         model.PayoutStatusCompleted,
			"transfer_ref":   transferRef,
			"transfer_date":  when,
			"failure_reason": "",
			"updated_at":     time.Now(),
		})
}

func (r *payoutRepoImpl) MarkFailed(ctx context.Context, tx *gorm.DB, payoutID, reason string) error {
	return r.transition(ctx, tx, payoutID,
		[]string{model.PayoutStatusProcessing},
		map[string]interface{}{
			"status":         model.PayoutStatusFailed,
			"failure_reason": reason,
			"updated_at":     time.Now(),
		})
}

// transition is a status-guarded update: the row must currently be in one of
// the from statuses or the update affects nothing and errors.
func (r *payoutRepoImpl) transition(ctx context.Context, tx *gorm.DB, payoutID string, from []string, updates map[string]interface{}) error {
	result := tx.WithContext(ctx).Model(&model.Payout{}).
		Where("id = ? AND status IN ?", payoutID, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *payoutRepoImpl) ListBySeller(ctx context.Context, sellerID string, offset, limit int) ([]*model.Payout, int64, error) {
	var total int64
	query := r.db.WithContext(ctx).Model(&model.Payout{}).Where("seller_id = ?", sellerID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payouts []*model.Payout
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&payouts).Error
	if err != nil {
		return nil, 0, err
	}

	return payouts, total, nil
}

func (r *payoutRepoImpl) ListAllBySeller(ctx context.Context, sellerID string) ([]*model.Payout, error) {
	var payouts []*model.Payout
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&payouts).Error
	if err != nil {
		return nil, err
	}

	return payouts, nil
}

package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"marketplace-settlement/internal/model"
)

type SellerRepository interface {
	Get(ctx context.Context, sellerID string) (*model.Seller, error)
	GetMany(ctx context.Context, tx *gorm.DB, sellerIDs []string) (map[string]*model.Seller, error)
	UpdateAccountStatus(ctx context.Context, sellerID string, chargesEnabled, payoutsEnabled, detailsSubmitted bool) error
	UpdateSchedule(ctx context.Context, seller *model.Seller) error
}

type sellerRepoImpl struct {
	db *gorm.DB
}

func NewSellerRepository(db *gorm.DB) SellerRepository {
	return &sellerRepoImpl{
		db: db,
	}
}

func (r *sellerRepoImpl) Get(ctx context.Context, sellerID string) (*model.Seller, error) {
	var seller model.Seller
	err := r.db.WithContext(ctx).
		Where("id = ?", sellerID).
		First(&seller).Error
	if err != nil {
		return nil, err
	}

	return &seller, nil
}

func (r *sellerRepoImpl) GetMany(ctx context.Context, tx *gorm.DB, sellerIDs []string) (map[string]*model.Seller, error) {
	var sellers []*model.Seller
	err := tx.WithContext(ctx).
		Where("id IN ?", sellerIDs).
		Find(&sellers).Error
	if err != nil {
		return nil, err
	}

	bySeller := make(map[string]*model.Seller, len(sellers))
	for _, s := range sellers {
		bySeller[s.ID] = s
	}

	return bySeller, nil
}

func (r *sellerRepoImpl) UpdateAccountStatus(ctx context.Context, sellerID string, chargesEnabled, payoutsEnabled, detailsSubmitted bool) error {
	result := r.db.WithContext(ctx).Model(&model.Seller{}).
		Where("id = ?", sellerID).
		Updates(map[string]interface{}{
			"charges_enabled":   chargesEnabled,
			"payouts_enabled":   payoutsEnabled,
			"details_submitted": detailsSubmitted,
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *sellerRepoImpl) UpdateSchedule(ctx context.Context, seller *model.Seller) error {
	result := r.db.WithContext(ctx).Model(&model.Seller{}).
		Where("id = ?", seller.ID).
		Updates(map[string]interface{}{
			"schedule_type":    seller.ScheduleType,
			"schedule_day":     seller.ScheduleDay,
			"schedule_date":    seller.ScheduleDate,
			"next_payout_date": seller.NextPayoutDate,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

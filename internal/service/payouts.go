package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"marketplace-settlement/internal/clock"
	"marketplace-settlement/internal/dto"
	"marketplace-settlement/internal/model"
	"marketplace-settlement/internal/payoutschedule"
	"marketplace-settlement/internal/repository"
)

var (
	ErrSellerNotFound  = errors.New("seller not found")
	ErrInvalidSchedule = errors.New("invalid payout schedule")
)

type PayoutService interface {
	ListForSeller(ctx context.Context, sellerID string, page, pageSize int) (*dto.SellerPayoutsResponse, error)
	GetPayout(ctx context.Context, sellerID, payoutID string) (*dto.PayoutView, error)
	GetSchedule(ctx context.Context, sellerID string) (*dto.ScheduleResponse, error)
	SetSchedule(ctx context.Context, sellerID string, req *dto.ScheduleRequest) (*dto.ScheduleResponse, error)
}

type payoutServiceImpl struct {
	clock clock.Clock
	log   *zap.Logger

	payoutRepo repository.PayoutRepository
	sellerRepo repository.SellerRepository
}

func NewPayoutService(
	clk clock.Clock,
	log *zap.Logger,
	payoutRepo repository.PayoutRepository,
	sellerRepo repository.SellerRepository,
) PayoutService {
	return &payoutServiceImpl{
		clock:      clk,
		log:        log,
		payoutRepo: payoutRepo,
		sellerRepo: sellerRepo,
	}
}

// ListForSeller returns one page of payouts plus the derived earnings
// summary and monthly aggregation computed over the seller's full ledger.
func (s *payoutServiceImpl) ListForSeller(ctx context.Context, sellerID string, page, pageSize int) (*dto.SellerPayoutsResponse, error) {
	page, pageSize = normalizePage(page, pageSize)

	all, err := s.payoutRepo.ListAllBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list seller payouts: %w", err)
	}

	blocked := s.destinationBlocked(ctx, sellerID)

	summary := dto.PayoutSummary{TotalPayouts: len(all)}
	monthly := make(map[string]int64)
	for _, payout := range all {
		summary.TotalSales += payout.Gross
		summary.TotalFees += payout.PlatformFee + payout.ProcessorFee + payout.Tax

		switch payout.Status {
		case model.PayoutStatusCompleted:
			summary.TotalEarnings += payout.SellerEarnings
			summary.CompletedPayouts++
			if payout.TransferDate != nil {
				monthly[payout.TransferDate.UTC().Format("2006-01")] += payout.SellerEarnings
			}
		case model.PayoutStatusPending, model.PayoutStatusProcessing:
			summary.PendingEarnings += payout.SellerEarnings
			summary.PendingPayouts++
		case model.PayoutStatusFailed:
			summary.FailedPayouts++
		}
	}

	pagePayouts, total, err := s.payoutRepo.ListBySeller(ctx, sellerID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, fmt.Errorf("page seller payouts: %w", err)
	}

	views := make([]*dto.PayoutView, len(pagePayouts))
	for i, payout := range pagePayouts {
		views[i] = dto.NewPayoutView(payout, blocked && payout.Status == model.PayoutStatusPending)
	}

	return &dto.SellerPayoutsResponse{
		Payouts:         views,
		Summary:         summary,
		MonthlyEarnings: monthly,
		Pagination: dto.Pagination{
			Page:       page,
			PageSize:   pageSize,
			TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
			TotalItems: total,
		},
	}, nil
}

func (s *payoutServiceImpl) GetPayout(ctx context.Context, sellerID, payoutID string) (*dto.PayoutView, error) {
	payout, err := s.payoutRepo.FindByID(ctx, payoutID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPayoutNotFound
		}
		return nil, err
	}
	if payout.SellerID != sellerID {
		return nil, ErrPayoutNotFound
	}

	blocked := s.destinationBlocked(ctx, sellerID)
	return dto.NewPayoutView(payout, blocked && payout.Status == model.PayoutStatusPending), nil
}

func (s *payoutServiceImpl) GetSchedule(ctx context.Context, sellerID string) (*dto.ScheduleResponse, error) {
	seller, err := s.sellerRepo.Get(ctx, sellerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSellerNotFound
		}
		return nil, err
	}

	return &dto.ScheduleResponse{
		ScheduleType:   seller.ScheduleType,
		ScheduleDay:    seller.ScheduleDay,
		ScheduleDate:   seller.ScheduleDate,
		NextPayoutDate: payoutschedule.NextPayoutDate(seller, s.clock.Now()),
	}, nil
}

// SetSchedule stores the seller's informational payout recurrence and
// recomputes the next payout date. It never touches the hold/release
// pipeline.
func (s *payoutServiceImpl) SetSchedule(ctx context.Context, sellerID string, req *dto.ScheduleRequest) (*dto.ScheduleResponse, error) {
	if !payoutschedule.ValidSchedule(req.ScheduleType, req.ScheduleDay) {
		return nil, ErrInvalidSchedule
	}
	if req.ScheduleType == model.ScheduleCustom && req.ScheduleDate == nil {
		return nil, fmt.Errorf("%w: custom schedule needs a date", ErrInvalidSchedule)
	}

	seller, err := s.sellerRepo.Get(ctx, sellerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSellerNotFound
		}
		return nil, err
	}

	seller.ScheduleType = req.ScheduleType
	seller.ScheduleDay = req.ScheduleDay
	seller.ScheduleDate = req.ScheduleDate
	seller.NextPayoutDate = payoutschedule.NextPayoutDate(seller, s.clock.Now())

	if err := s.sellerRepo.UpdateSchedule(ctx, seller); err != nil {
		return nil, fmt.Errorf("store payout schedule: %w", err)
	}

	s.log.Info("payout schedule updated",
		zap.String("seller_id", sellerID),
		zap.String("schedule_type", seller.ScheduleType),
	)

	return &dto.ScheduleResponse{
		ScheduleType:   seller.ScheduleType,
		ScheduleDay:    seller.ScheduleDay,
		ScheduleDate:   seller.ScheduleDate,
		NextPayoutDate: seller.NextPayoutDate,
	}, nil
}

// destinationBlocked reports whether the seller currently lacks a usable
// payout destination; pending payouts for such sellers are surfaced as
// blocked in listings.
func (s *payoutServiceImpl) destinationBlocked(ctx context.Context, sellerID string) bool {
	seller, err := s.sellerRepo.Get(ctx, sellerID)
	if err != nil {
		return true
	}
	return seller.AccountRef == "" || !seller.PayoutsEnabled
}

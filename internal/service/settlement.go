package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"marketplace-settlement/internal/client"
	"marketplace-settlement/internal/clock"
	"marketplace-settlement/internal/config"
	"marketplace-settlement/internal/dto"
	"marketplace-settlement/internal/fee"
	"marketplace-settlement/internal/model"
	"marketplace-settlement/internal/repository"
)

var (
	ErrEmptyCart           = errors.New("no items in cart")
	ErrInvalidItems        = errors.New("invalid items")
	ErrOrderNotFound       = errors.New("order not found")
	ErrPayoutNotFound      = errors.New("payout not found")
	ErrAlreadyReleased     = errors.New("payment already released")
	ErrPaymentNotSucceeded = errors.New("payment has not succeeded")
	ErrInvalidHoldDays     = errors.New("hold days must be between 1 and 30")
	ErrPayoutNotRetriable  = errors.New("payout is not in a retriable state")
	ErrNoPayoutAccount     = errors.New("seller has no payout account")
	ErrBadSignature        = client.ErrBadSignature
)

const (
	minHoldDays = 1
	maxHoldDays = 30

	// transferTimeout bounds a single external transfer call. A timeout is
	// recorded as a failed payout, never assumed successful.
	transferTimeout = 30 * time.Second
)

type SettlementService interface {
	CreateOrder(ctx context.Context, buyerID string, items []*dto.Item) (*dto.CreateOrderResponse, error)
	ConfirmPayment(ctx context.Context, buyerID, paymentRef string) (*dto.OrderView, error)
	HandleWebhook(ctx context.Context, body []byte, sigHeader string) error
	GetOrder(ctx context.Context, orderID, buyerID string) (*dto.OrderView, error)
	ListOrders(ctx context.Context, buyerID string, page, pageSize int) (*dto.OrderListResponse, error)
	Release(ctx context.Context, orderID string) error
	ReleaseAllDue(ctx context.Context) (dto.ReleaseSummary, error)
	SetReleaseSchedule(ctx context.Context, orderID string, releaseAt *time.Time, holdDays *int) (*dto.OrderView, error)
	RetryPayout(ctx context.Context, payoutID string) (*dto.PayoutView, error)
	AdminListOrders(ctx context.Context, page, pageSize int) (*dto.OrderListResponse, error)
	RefreshSellerAccount(ctx context.Context, sellerID string) (*dto.AccountStatusResponse, error)
}

type settlementServiceImpl struct {
	db           *gorm.DB
	stripeClient client.StripeClient
	clock        clock.Clock
	log          *zap.Logger

	rates    fee.Rates
	cfg      config.Settlement
	currency string

	productRepo      repository.ProductRepository
	orderRepo        repository.OrderRepository
	payoutRepo       repository.PayoutRepository
	sellerRepo       repository.SellerRepository
	webhookEventRepo repository.WebhookEventRepository
}

func NewSettlementService(
	db *gorm.DB,
	stripeClient client.StripeClient,
	clk clock.Clock,
	log *zap.Logger,
	cfg config.Settlement,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	payoutRepo repository.PayoutRepository,
	sellerRepo repository.SellerRepository,
	webhookEventRepo repository.WebhookEventRepository,
) (SettlementService, error) {
	rates, err := fee.ParseRates(cfg.TaxRate, cfg.PlatformFeeRate, cfg.ProcessorFeeRate)
	if err != nil {
		return nil, fmt.Errorf("settlement config: %w", err)
	}

	return &settlementServiceImpl{
		db:               db,
		stripeClient:     stripeClient,
		clock:            clk,
		log:              log,
		rates:            rates,
		cfg:              cfg,
		currency:         cfg.Currency,
		productRepo:      productRepo,
		orderRepo:        orderRepo,
		payoutRepo:       payoutRepo,
		sellerRepo:       sellerRepo,
		webhookEventRepo: webhookEventRepo,
	}, nil
}

func clampHoldDays(days int) int {
	if days < minHoldDays {
		return minHoldDays
	}
	if days > maxHoldDays {
		return maxHoldDays
	}
	return days
}

// newOrderNumber builds a human-readable, collision-free order number.
func newOrderNumber(now time.Time) string {
	ts := fmt.Sprintf("%d", now.UnixMilli())
	entropy := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return fmt.Sprintf("ORD-%s-%s", ts[len(ts)-8:], entropy)
}

func (s *settlementServiceImpl) CreateOrder(ctx context.Context, buyerID string, items []*dto.Item) (*dto.CreateOrderResponse, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	productIDs := make([]string, len(items))
	quantityByProduct := make(map[string]int64, len(items))
	for i, item := range items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidItems)
		}
		productIDs[i] = item.ProductID
		quantityByProduct[item.ProductID] += item.Quantity
	}

	products, err := s.productRepo.FindMany(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	if len(products) != len(quantityByProduct) {
		return nil, fmt.Errorf("%w: unknown product", ErrInvalidItems)
	}

	now := s.clock.Now()
	orderID := uuid.NewString()

	subtotal := int64(0)
	lines := make([]*model.OrderLine, len(products))
	for i, product := range products {
		quantity := quantityByProduct[product.ID]
		subtotal += product.Price * quantity

		lines[i] = &model.OrderLine{
			OrderID:   orderID,
			ProductID: product.ID,
			SellerID:  product.SellerID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  quantity,
		}
	}

	amounts := fee.Breakdown(subtotal, s.rates)

	intent, err := s.stripeClient.CreatePaymentIntent(ctx, amounts.Total, s.currency, map[string]string{
		"order_id": orderID,
		"buyer_id": buyerID,
	})
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	order := &model.Order{
		ID:               orderID,
		OrderNumber:      newOrderNumber(now),
		BuyerID:          buyerID,
		Subtotal:         amounts.Subtotal,
		Tax:              amounts.Tax,
		PlatformFee:      amounts.PlatformFee,
		Total:            amounts.Total,
		Currency:         s.currency,
		TaxRate:          s.cfg.TaxRate,
		PlatformFeeRate:  s.cfg.PlatformFeeRate,
		ProcessorFeeRate: s.cfg.ProcessorFeeRate,
		PaymentRef:       intent.ID,
		PaymentStatus:    model.PaymentStatusPending,
		Status:           model.OrderStatusPending,
		HoldDays:         clampHoldDays(s.cfg.HoldDays),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.orderRepo.Create(ctx, tx, order, lines)
	})
	if err != nil {
		return nil, fmt.Errorf("store order: %w", err)
	}

	s.log.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Int64("total", order.Total),
	)

	return &dto.CreateOrderResponse{
		Order:               dto.NewOrderView(order, lines),
		ClientPaymentHandle: intent.ClientSecret,
		Breakdown: dto.Breakdown{
			Subtotal:         amounts.Subtotal,
			Tax:              amounts.Tax,
			PlatformFee:      amounts.PlatformFee,
			Total:            amounts.Total,
			TaxRate:          s.cfg.TaxRate,
			PlatformFeeRate:  s.cfg.PlatformFeeRate,
			ProcessorFeeRate: s.cfg.ProcessorFeeRate,
		},
	}, nil
}

// ConfirmPayment is the synchronous mirror of the webhook path: the client
// asks us to check the intent status and apply the same idempotent
// transition.
func (s *settlementServiceImpl) ConfirmPayment(ctx context.Context, buyerID, paymentRef string) (*dto.OrderView, error) {
	intent, err := s.stripeClient.RetrievePaymentIntent(ctx, paymentRef)
	if err != nil {
		return nil, fmt.Errorf("retrieve payment intent: %w", err)
	}

	if intent.Status == "succeeded" {
		if err := s.onPaymentConfirmed(ctx, paymentRef); err != nil {
			return nil, err
		}
	} else {
		if err := s.onPaymentFailed(ctx, paymentRef); err != nil {
			return nil, err
		}
	}

	var view *dto.OrderView
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.FindByPaymentRefForUpdate(ctx, tx, paymentRef)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if order.BuyerID != buyerID {
			return ErrOrderNotFound
		}
		lines, err := s.orderRepo.GetLines(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		view = dto.NewOrderView(order, lines)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return view, nil
}

func (s *settlementServiceImpl) HandleWebhook(ctx context.Context, body []byte, sigHeader string) error {
	if err := s.stripeClient.VerifyWebhookSignature(body, sigHeader); err != nil {
		return fmt.Errorf("verify webhook signature: %w", err)
	}

	event, err := model.DecodeProcessorEvent(body)
	if err != nil {
		return fmt.Errorf("decode webhook payload: %w", err)
	}

	// The event id is recorded in the same transaction as the state
	// transition. A failed dispatch rolls the id back with it, so the
	// processor's redelivery re-enters the guarded path instead of being
	// swallowed as a replay; the status-guarded transitions stay the real
	// idempotency boundary. An event for a payment ref with no stored order
	// (delivery racing ahead of order creation) errors out on purpose: the
	// non-2xx response provokes a redelivery that lands after the order
	// exists.
	var seen bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		seen, err = s.webhookEventRepo.Exists(ctx, tx, event.EventID)
		if err != nil || seen {
			return err
		}

		switch {
		case event.Succeeded != nil:
			if err := s.applyPaymentSucceeded(ctx, tx, event.Succeeded.PaymentRef); err != nil {
				return err
			}
		case event.Failed != nil:
			if err := s.applyPaymentFailed(ctx, tx, event.Failed.PaymentRef); err != nil {
				return err
			}
		default:
			s.log.Info("unhandled webhook event type", zap.String("event_type", event.EventType))
		}

		return s.webhookEventRepo.MarkProcessed(ctx, tx, event.EventID, event.EventType)
	})
	if err != nil {
		return err
	}

	if seen {
		s.log.Debug("webhook replay ignored", zap.String("event_id", event.EventID))
	}
	return nil
}

// onPaymentConfirmed wraps the succeeded transition in its own transaction
// for the synchronous confirmation path.
func (s *settlementServiceImpl) onPaymentConfirmed(ctx context.Context, paymentRef string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.applyPaymentSucceeded(ctx, tx, paymentRef)
	})
}

func (s *settlementServiceImpl) onPaymentFailed(ctx context.Context, paymentRef string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.applyPaymentFailed(ctx, tx, paymentRef)
	})
}

// applyPaymentSucceeded applies the succeeded transition and creates one
// pending payout per distinct seller. Everything runs under the order's row
// lock so concurrent deliveries cannot both pass the status check.
func (s *settlementServiceImpl) applyPaymentSucceeded(ctx context.Context, tx *gorm.DB, paymentRef string) error {
	order, err := s.orderRepo.FindByPaymentRefForUpdate(ctx, tx, paymentRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}

	if order.PaymentStatus == model.PaymentStatusSucceeded {
		return nil
	}
	if order.PaymentStatus != model.PaymentStatusPending {
		// failed/canceled orders never transition to succeeded
		return nil
	}

	now := s.clock.Now()
	holdDays := clampHoldDays(order.HoldDays)

	// releaseAt is set exactly once, unless an admin already scheduled
	// it before payment.
	releaseAt := now.AddDate(0, 0, holdDays)
	if order.ReleaseAt != nil {
		releaseAt = *order.ReleaseAt
	}

	if err := s.orderRepo.MarkPaymentSucceeded(ctx, tx, order.ID, now, releaseAt, holdDays); err != nil {
		return fmt.Errorf("mark payment succeeded: %w", err)
	}

	if err := s.createPendingPayouts(ctx, tx, order); err != nil {
		return err
	}

	s.log.Info("payment confirmed, funds held",
		zap.String("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Time("release_at", releaseAt),
	)
	return nil
}

func (s *settlementServiceImpl) applyPaymentFailed(ctx context.Context, tx *gorm.DB, paymentRef string) error {
	order, err := s.orderRepo.FindByPaymentRefForUpdate(ctx, tx, paymentRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}

	if order.PaymentStatus != model.PaymentStatusPending {
		return nil
	}

	if err := s.orderRepo.MarkPaymentFailed(ctx, tx, order.ID); err != nil {
		return fmt.Errorf("mark payment failed: %w", err)
	}

	s.log.Info("payment failed, order canceled", zap.String("order_id", order.ID))
	return nil
}

// createPendingPayouts groups the order's lines by seller and creates one
// payout per seller with that seller's split, computed from the rates
// snapshotted on the order. Existing (order, seller) pairs are skipped so
// replayed confirmations leave exactly one payout per seller.
func (s *settlementServiceImpl) createPendingPayouts(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	lines, err := s.orderRepo.GetLines(ctx, tx, order.ID)
	if err != nil {
		return fmt.Errorf("get order lines: %w", err)
	}

	rates, err := fee.ParseRates(order.TaxRate, order.PlatformFeeRate, order.ProcessorFeeRate)
	if err != nil {
		return fmt.Errorf("order %s snapshotted rates: %w", order.ID, err)
	}

	grossBySeller := make(map[string]int64)
	for _, line := range lines {
		grossBySeller[line.SellerID] += line.UnitPrice * line.Quantity
	}

	for sellerID, gross := range grossBySeller {
		exists, err := s.payoutRepo.ExistsForOrderSeller(ctx, tx, order.ID, sellerID)
		if err != nil {
			return fmt.Errorf("check payout exists: %w", err)
		}
		if exists {
			continue
		}

		split := fee.Split(gross, rates)
		payout := &model.Payout{
			ID:             uuid.NewString(),
			OrderID:        order.ID,
			SellerID:       sellerID,
			Gross:          split.Gross,
			PlatformFee:    split.PlatformFee,
			ProcessorFee:   split.ProcessorFee,
			Tax:            split.Tax,
			SellerEarnings: split.SellerEarnings,
			Status:         model.PayoutStatusPending,
		}
		if err := s.payoutRepo.Create(ctx, tx, payout); err != nil {
			return fmt.Errorf("create payout for seller %s: %w", sellerID, err)
		}
	}

	return nil
}

// Release transfers every pending payout of the order to its seller and
// marks the order released. A single seller's failure is recorded on its
// payout and never blocks the others or the order transition.
func (s *settlementServiceImpl) Release(ctx context.Context, orderID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.FindByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if order.Released {
			return ErrAlreadyReleased
		}
		if order.PaymentStatus != model.PaymentStatusSucceeded {
			return ErrPaymentNotSucceeded
		}

		payouts, err := s.payoutRepo.ListByOrder(ctx, tx, order.ID, model.PayoutStatusPending)
		if err != nil {
			return fmt.Errorf("list pending payouts: %w", err)
		}

		sellerIDs := make([]string, 0, len(payouts))
		for _, p := range payouts {
			sellerIDs = append(sellerIDs, p.SellerID)
		}
		sellers, err := s.sellerRepo.GetMany(ctx, tx, sellerIDs)
		if err != nil {
			return fmt.Errorf("load sellers: %w", err)
		}

		for _, payout := range payouts {
			s.attemptTransfer(ctx, tx, order, payout, sellers[payout.SellerID])
		}

		if err := s.orderRepo.MarkReleased(ctx, tx, order.ID, s.clock.Now()); err != nil {
			return fmt.Errorf("mark order released: %w", err)
		}

		s.log.Info("order released",
			zap.String("order_id", order.ID),
			zap.String("order_number", order.OrderNumber),
			zap.Int("payouts", len(payouts)),
		)
		return nil
	})
}

// attemptTransfer moves one payout through processing to completed or
// failed. Sellers without a usable destination are skipped: the payout stays
// pending (blocked) rather than silently losing funds.
func (s *settlementServiceImpl) attemptTransfer(ctx context.Context, tx *gorm.DB, order *model.Order, payout *model.Payout, seller *model.Seller) {
	if seller == nil || seller.AccountRef == "" || !seller.PayoutsEnabled {
		s.log.Warn("payout blocked: seller has no usable payout destination",
			zap.String("payout_id", payout.ID),
			zap.String("seller_id", payout.SellerID),
		)
		return
	}
	if payout.SellerEarnings <= 0 {
		s.log.Warn("payout skipped: non-positive earnings",
			zap.String("payout_id", payout.ID),
			zap.Int64("seller_earnings", payout.SellerEarnings),
		)
		return
	}

	if err := s.payoutRepo.MarkProcessing(ctx, tx, payout.ID); err != nil {
		s.log.Error("mark payout processing", zap.String("payout_id", payout.ID), zap.Error(err))
		return
	}

	transferCtx, cancel := context.WithTimeout(ctx, transferTimeout)
	defer cancel()

	transferRef, err := s.stripeClient.CreateTransfer(transferCtx, payout.SellerEarnings, order.Currency, seller.AccountRef, map[string]string{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"seller_id":    payout.SellerID,
		"payout_id":    payout.ID,
	})
	if err != nil {
		if markErr := s.payoutRepo.MarkFailed(ctx, tx, payout.ID, err.Error()); markErr != nil {
			s.log.Error("mark payout failed", zap.String("payout_id", payout.ID), zap.Error(markErr))
		}
		s.log.Warn("transfer failed",
			zap.String("payout_id", payout.ID),
			zap.String("seller_id", payout.SellerID),
			zap.Error(err),
		)
		return
	}

	if err := s.payoutRepo.MarkCompleted(ctx, tx, payout.ID, transferRef, s.clock.Now()); err != nil {
		s.log.Error("mark payout completed", zap.String("payout_id", payout.ID), zap.Error(err))
		return
	}

	s.log.Info("payout completed",
		zap.String("payout_id", payout.ID),
		zap.String("seller_id", payout.SellerID),
		zap.String("transfer_ref", transferRef),
		zap.Int64("seller_earnings", payout.SellerEarnings),
	)
}

// ReleaseAllDue sweeps orders whose hold period elapsed. One order's failure
// is counted and the sweep continues; overlap with another sweep is safe
// because Release re-checks its preconditions under the row lock.
func (s *settlementServiceImpl) ReleaseAllDue(ctx context.Context) (dto.ReleaseSummary, error) {
	due, err := s.orderRepo.ListDueForRelease(ctx, s.clock.Now())
	if err != nil {
		return dto.ReleaseSummary{}, fmt.Errorf("list due orders: %w", err)
	}

	summary := dto.ReleaseSummary{TotalOrders: len(due)}
	for _, order := range due {
		err := s.Release(ctx, order.ID)
		switch {
		case err == nil:
			summary.OrdersReleased++
		case errors.Is(err, ErrAlreadyReleased):
			// another sweep got there first
		default:
			summary.OrdersFailed++
			s.log.Error("release failed during sweep",
				zap.String("order_id", order.ID),
				zap.Error(err),
			)
		}
	}

	return summary, nil
}

func (s *settlementServiceImpl) SetReleaseSchedule(ctx context.Context, orderID string, releaseAt *time.Time, holdDays *int) (*dto.OrderView, error) {
	if holdDays != nil && (*holdDays < minHoldDays || *holdDays > maxHoldDays) {
		return nil, ErrInvalidHoldDays
	}
	if releaseAt == nil && holdDays == nil {
		return nil, fmt.Errorf("%w: provide release_at or hold_days", ErrInvalidHoldDays)
	}

	var view *dto.OrderView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.FindByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if order.Released {
			return ErrAlreadyReleased
		}

		newDays := order.HoldDays
		if holdDays != nil {
			newDays = *holdDays
		}

		var newReleaseAt time.Time
		if releaseAt != nil {
			newReleaseAt = releaseAt.UTC()
		} else {
			// recompute from the payment date, or creation when unpaid
			base := order.CreatedAt
			if order.PaidAt != nil {
				base = *order.PaidAt
			}
			newReleaseAt = base.AddDate(0, 0, newDays)
		}

		if err := s.orderRepo.UpdateReleaseSchedule(ctx, tx, order.ID, newReleaseAt, newDays); err != nil {
			return fmt.Errorf("update release schedule: %w", err)
		}

		order.ReleaseAt = &newReleaseAt
		order.HoldDays = newDays
		view = dto.NewOrderView(order, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("release schedule updated",
		zap.String("order_id", orderID),
		zap.Timep("release_at", view.ReleaseAt),
	)
	return view, nil
}

// RetryPayout re-attempts the transfer for a single failed payout. This is
// an explicit administrator action, never an implicit side effect of
// Release.
func (s *settlementServiceImpl) RetryPayout(ctx context.Context, payoutID string) (*dto.PayoutView, error) {
	var view *dto.PayoutView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payout, err := s.payoutRepo.FindByID(ctx, payoutID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPayoutNotFound
			}
			return err
		}

		// lock the parent order so the retry serializes with release sweeps
		order, err := s.orderRepo.FindByIDForUpdate(ctx, tx, payout.OrderID)
		if err != nil {
			return err
		}
		if order.PaymentStatus != model.PaymentStatusSucceeded {
			return ErrPaymentNotSucceeded
		}

		// re-read under the lock
		fresh, err := s.payoutRepo.ListByOrder(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		payout = nil
		for _, p := range fresh {
			if p.ID == payoutID {
				payout = p
				break
			}
		}
		if payout == nil {
			return ErrPayoutNotFound
		}
		if payout.Status != model.PayoutStatusFailed && payout.Status != model.PayoutStatusPending {
			return ErrPayoutNotRetriable
		}

		seller, err := s.sellerRepo.Get(ctx, payout.SellerID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		s.attemptTransfer(ctx, tx, order, payout, seller)

		// re-read inside the transaction to pick up the attempt's outcome
		fresh, err = s.payoutRepo.ListByOrder(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		var updated *model.Payout
		for _, p := range fresh {
			if p.ID == payoutID {
				updated = p
				break
			}
		}
		if updated == nil {
			return ErrPayoutNotFound
		}
		blocked := seller == nil || seller.AccountRef == "" || !seller.PayoutsEnabled
		view = dto.NewPayoutView(updated, blocked && updated.Status == model.PayoutStatusPending)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return view, nil
}

func (s *settlementServiceImpl) GetOrder(ctx context.Context, orderID, buyerID string) (*dto.OrderView, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.BuyerID != buyerID {
		// scoped to the owning buyer; don't leak existence
		return nil, ErrOrderNotFound
	}

	lines, err := s.orderRepo.GetLines(ctx, s.db, order.ID)
	if err != nil {
		return nil, err
	}

	return dto.NewOrderView(order, lines), nil
}

func (s *settlementServiceImpl) ListOrders(ctx context.Context, buyerID string, page, pageSize int) (*dto.OrderListResponse, error) {
	page, pageSize = normalizePage(page, pageSize)

	orders, total, err := s.orderRepo.ListByBuyer(ctx, buyerID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}

	return orderList(orders, page, pageSize, total), nil
}

func (s *settlementServiceImpl) AdminListOrders(ctx context.Context, page, pageSize int) (*dto.OrderListResponse, error) {
	page, pageSize = normalizePage(page, pageSize)

	orders, total, err := s.orderRepo.ListAll(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}

	return orderList(orders, page, pageSize, total), nil
}

// RefreshSellerAccount pulls the connected account's capability flags from
// the processor and stores them.
func (s *settlementServiceImpl) RefreshSellerAccount(ctx context.Context, sellerID string) (*dto.AccountStatusResponse, error) {
	seller, err := s.sellerRepo.Get(ctx, sellerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSellerNotFound
		}
		return nil, err
	}
	if seller.AccountRef == "" {
		return nil, ErrNoPayoutAccount
	}

	account, err := s.stripeClient.RetrieveAccount(ctx, seller.AccountRef)
	if err != nil {
		return nil, fmt.Errorf("retrieve account status: %w", err)
	}

	if err := s.sellerRepo.UpdateAccountStatus(ctx, sellerID, account.ChargesEnabled, account.PayoutsEnabled, account.DetailsSubmitted); err != nil {
		return nil, fmt.Errorf("store account status: %w", err)
	}

	return &dto.AccountStatusResponse{
		SellerID:         sellerID,
		AccountRef:       seller.AccountRef,
		ChargesEnabled:   account.ChargesEnabled,
		PayoutsEnabled:   account.PayoutsEnabled,
		DetailsSubmitted: account.DetailsSubmitted,
	}, nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

func orderList(orders []*model.Order, page, pageSize int, total int64) *dto.OrderListResponse {
	views := make([]*dto.OrderView, len(orders))
	for i, order := range orders {
		views[i] = dto.NewOrderView(order, nil)
	}

	return &dto.OrderListResponse{
		Orders: views,
		Pagination: dto.Pagination{
			Page:       page,
			PageSize:   pageSize,
			TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
			TotalItems: total,
		},
	}
}

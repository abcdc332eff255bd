package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"marketplace-settlement/internal/client"
	"marketplace-settlement/internal/clock"
	"marketplace-settlement/internal/config"
	"marketplace-settlement/internal/dto"
	"marketplace-settlement/internal/model"
	"marketplace-settlement/internal/repository"
)

// stubStripe satisfies client.StripeClient and records every transfer so
// tests can assert exactly what was attempted.
type stubStripe struct {
	intents      map[string]string // intent id -> status
	transfers    []stubTransfer
	failTransfer map[string]error // destination -> error
	badSignature bool
}

type stubTransfer struct {
	Amount      int64
	Destination string
}

func newStubStripe() *stubStripe {
	return &stubStripe{
		intents:      make(map[string]string),
		failTransfer: make(map[string]error),
	}
}

func (s *stubStripe) CreatePaymentIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*client.PaymentIntent, error) {
	id := fmt.Sprintf("pi_%d", len(s.intents)+1)
	s.intents[id] = "requires_payment_method"
	return &client.PaymentIntent{ID: id, ClientSecret: id + "_secret", Amount: amount, Currency: currency}, nil
}

func (s *stubStripe) RetrievePaymentIntent(ctx context.Context, intentID string) (*client.PaymentIntent, error) {
	return &client.PaymentIntent{ID: intentID, Status: s.intents[intentID]}, nil
}

func (s *stubStripe) CreateTransfer(ctx context.Context, amount int64, currency, destination string, metadata map[string]string) (string, error) {
	if err := s.failTransfer[destination]; err != nil {
		return "", err
	}
	s.transfers = append(s.transfers, stubTransfer{Amount: amount, Destination: destination})
	return fmt.Sprintf("tr_%d", len(s.transfers)), nil
}

func (s *stubStripe) RetrieveAccount(ctx context.Context, accountID string) (*client.AccountStatus, error) {
	return &client.AccountStatus{ID: accountID, ChargesEnabled: true, PayoutsEnabled: true, DetailsSubmitted: true}, nil
}

func (s *stubStripe) VerifyWebhookSignature(payload []byte, sigHeader string) error {
	if s.badSignature {
		return client.ErrBadSignature
	}
	return nil
}

type testEnv struct {
	db      *gorm.DB
	stripe  *stubStripe
	clock   *clock.Fixed
	service SettlementService
	payouts repository.PayoutRepository
	orders  repository.OrderRepository
}

var testStart = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func testSettlementConfig() config.Settlement {
	return config.Settlement{
		HoldDays:         5,
		TaxRate:          "0.0725",
		PlatformFeeRate:  "0.0325",
		ProcessorFeeRate: "0.029",
		Currency:         "usd",
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.Product{},
		&model.Seller{},
		&model.Order{},
		&model.OrderLine{},
		&model.Payout{},
		&model.WebhookEvent{},
	))

	stripe := newStubStripe()
	clk := clock.NewFixed(testStart)

	payoutRepo := repository.NewPayoutRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	svc, err := NewSettlementService(
		db, stripe, clk, zap.NewNop(), testSettlementConfig(),
		repository.NewProductRepository(db),
		orderRepo,
		payoutRepo,
		repository.NewSellerRepository(db),
		repository.NewWebhookEventRepository(db),
	)
	require.NoError(t, err)

	return &testEnv{
		db:      db,
		stripe:  stripe,
		clock:   clk,
		service: svc,
		payouts: payoutRepo,
		orders:  orderRepo,
	}
}

// seedCatalog loads the reference scenario: seller A sells one item at
// 100.00, seller B one at 50.00. Both sellers have usable destinations.
func seedCatalog(t *testing.T, env *testEnv) {
	t.Helper()
	require.NoError(t, env.db.Create([]*model.Product{
		{ID: "prod-a", SellerID: "seller-a", Name: "Widget", Price: 10000, Currency: "usd"},
		{ID: "prod-b", SellerID: "seller-b", Name: "Gadget", Price: 5000, Currency: "usd"},
	}).Error)
	require.NoError(t, env.db.Create([]*model.Seller{
		{ID: "seller-a", Email: "a@example.com", AccountRef: "acct_a", ChargesEnabled: true, PayoutsEnabled: true, DetailsSubmitted: true},
		{ID: "seller-b", Email: "b@example.com", AccountRef: "acct_b", ChargesEnabled: true, PayoutsEnabled: true, DetailsSubmitted: true},
	}).Error)
}

// createTwoSellerOrder places the reference order: 1 x 100.00 from seller A
// plus 2 x 50.00 from seller B, subtotal 200.00.
func createTwoSellerOrder(t *testing.T, env *testEnv) *dto.CreateOrderResponse {
	t.Helper()
	resp, err := env.service.CreateOrder(context.Background(), "buyer-1", []*dto.Item{
		{ProductID: "prod-a", Quantity: 1},
		{ProductID: "prod-b", Quantity: 2},
	})
	require.NoError(t, err)
	return resp
}

func succeededEvent(eventID, paymentRef string) []byte {
	return []byte(fmt.Sprintf(
		`{"id":%q,"type":"payment_intent.succeeded","data":{"object":{"id":%q,"status":"succeeded"}}}`,
		eventID, paymentRef))
}

func failedEvent(eventID, paymentRef string) []byte {
	return []byte(fmt.Sprintf(
		`{"id":%q,"type":"payment_intent.payment_failed","data":{"object":{"id":%q,"status":"requires_payment_method"}}}`,
		eventID, paymentRef))
}

func getOrder(t *testing.T, env *testEnv, orderID string) *model.Order {
	t.Helper()
	order, err := env.orders.FindByID(context.Background(), orderID)
	require.NoError(t, err)
	return order
}

func orderPayouts(t *testing.T, env *testEnv, orderID string) []*model.Payout {
	t.Helper()
	payouts, err := env.payouts.ListByOrder(context.Background(), env.db, orderID)
	require.NoError(t, err)
	return payouts
}

func TestCreateOrderBreakdown(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env)

	resp := createTwoSellerOrder(t, env)

	// 200.00 subtotal, 7.25% tax, 3.25% platform fee
	require.Equal(t, int64(20000), resp.Breakdown.Subtotal)
	require.Equal(t, int64(1450), resp.Breakdown.Tax)
	require.Equal(t, int64(650), resp.Breakdown.PlatformFee)
	require.Equal(t, int64(22100), resp.Breakdown.Total)
	require.NotEmpty(t, resp.ClientPaymentHandle)

	order := getOrder(t, env, resp.Order.ID)
	require.Equal(t, model.PaymentStatusPending, order.PaymentStatus)
	require.Equal(t, model.OrderStatusPending, order.Status)
	require.Equal(t, order.Total, order.Subtotal+order.Tax+order.PlatformFee)
	require.Equal(t, "0.0725", order.TaxRate)
	require.False(t, order.Held)
	require.Nil(t, order.ReleaseAt)
	require.Len(t, resp.Order.Lines, 2)
}

func TestCreateOrderValidation(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env)
	ctx := context.Background()

	_, err := env.service.CreateOrder(ctx, "buyer-1", nil)
	require.ErrorIs(t, err, ErrEmptyCart)

	_, err = env.service.CreateOrder(ctx, "buyer-1", []*dto.Item{{ProductID: "prod-a", Quantity: 0}})
	require.ErrorIs(t, err, ErrInvalidItems)

	_, err = env.service.CreateOrder(ctx, "buyer-1", []*dto.Item{{ProductID: "no-such", Quantity: 1}})
	require.ErrorIs(t, err, ErrInvalidItems)
}

func TestCreateOrderMergesDuplicateCartItems(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env)

	// the same product split across two cart items charges for all units
	resp, err := env.service.CreateOrder(context.Background(), "buyer-1", []*dto.Item{
		{ProductID: "prod-a", Quantity: 1},
		{ProductID: "prod-a", Quantity: 2},
	})
	require.NoError(t, err)

	require.Equal(t, int64(30000), resp.Breakdown.Subtotal)
	require.Len(t, resp.Order.Lines, 1)
	require.Equal(t, int64(3), resp.Order.Lines[0].Quantity)
}

func TestPaymentConfirmedCreatesPayoutsExactlyOnce(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env)
	ctx := context.Background()

	resp := createTwoSellerOrder(t, env)
	paymentRef := getOrder(t, env, resp.Order.ID).PaymentRef

	require.NoError(t, env.service.HandleWebhook(ctx, succeededEvent("evt_1", paymentRef), "sig"))

	order := getOrder(t, env, resp.Order.ID)
	require.Equal(t, model.PaymentStatusSucceeded, order.PaymentStatus)
	require.Equal(t, model.OrderStatusConfirmed, order.Status)
	require.True(t, order.Held)
	require.NotNil(t, order.PaidAt)
	require.NotNil(t, order.ReleaseAt)
	require.Equal(t, testStart.AddDate(0, 0, 5), order.ReleaseAt.UTC())

	first := orderPayouts(t, env, resp.Order.ID)
	require.Len(t, first, 2)

	// redeliver: same event id, then a fresh id for the same intent
	require.NoError(t, env.service.HandleWebhook(ctx, succeededEvent("evt_1", paymentRef), "sig"))
	require.NoError(t, env.service.HandleWebhook(ctx, succeededEvent("evt_2", paymentRef), "sig"))

	replayed := orderPayouts(t, env, resp.Order.ID)
	require.Len(t, replayed, 2)
	for i := range first {
		require.Equal(t, first[i].SellerEarnings, replayed[i].SellerEarnings)
		require.Equal(t, model.PayoutStatusPending, replayed[i].Status)
	}
}

func TestPayoutSplitReconciles(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env)
	ctx := context.Background()

	resp := createTwoSellerOrder(t, env)
	paymentRef := getOrder(t, env, resp.Order.ID).PaymentRef
	require.NoError(t, env.service.HandleWebhook(ctx, succeededEvent("evt_1", paymentRef), "sig"))

	payouts := orderPayouts(t, env, resp.Order.ID)
	require.Len(t, payouts, 2)

	// both sellers have gross 100.00; 7.25% tax, 3.25% platform, 2.9% processor
	var lineTotal int64
	for _, p := range payouts {
		require.Equal(t, int64(10000), p.Gross)
		require.Equal(t, int64(725), p.Tax)
		require.Equal(t, int64(325), p.PlatformFee)
		require.Equal(t, int64(290), p.ProcessorFee)
		require.Equal(t, int64(8660), p.SellerEarnings)
		require.Equal(t, p.Gross, p.SellerEarnings+p.Tax+p.PlatformFee+p.ProcessorFee)
		lineTotal += p.Gross
	}
	require.Equal(t, int64(20000), lineTotal)
}

func TestPaymentFailedCancelsOrder(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env)
	ctx := context.Background()

	resp := createTwoSellerOrder(t, env)
	paymentRef := getOrder(t, env, resp.Order.ID).PaymentRef

	require.NoError(t, env.service.HandleWebhook(ctx, failedEvent("evt_1", paymentRef), "sig"))

	order := getOrder(t, env, resp.Order.ID)
	require.Equal(t, model.PaymentStatusFailed, order.PaymentStatus)
	require.Equal(t, model.OrderStatusCanceled, order.Status)
	require.Empty(t, orderPayouts(t, env, resp.Order.ID))

	// a late success notification must not resurrect the order
	require.NoError(t, env.service.HandleWebhook(ctx, succeededEvent("evt_2", paymentRef), "sig"))
	require.Equal(t, model.PaymentStatusFailed, getOrder(t, env, resp.Order.ID).PaymentStatus)
	require.Empty(t, orderPayouts(t, env, resp.Order.ID))
}

func TestWebhookBadSignatureHasNoSideEffects(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env)
	ctx := context.Background()

	resp := createTwoSellerOrder(t, env)
	paymentRef := getOrder(t, env, resp.Order.ID).PaymentRef

	env.stripe.badSignature = true
	err := env.service.HandleWebhook(ctx, succeededEvent("evt_1", paymentRef), "bogus")
	require.ErrorIs(t, err, ErrBadSignature)

	order := getOrder(t, env, resp.Order.ID)
	require.Equal(t, model.PaymentStatusPending, order.PaymentStatus)
	require.Empty(t, orderPayouts(t, env, resp.Order.ID))
}

func TestWebhookUnhandledEventIsIgnored(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env)

	payload := []byte(`{"id":"evt_x","type":"charge.refunded","data":{"object":{"id":"ch_1"}}}`)
	require.NoError(t, env.service.HandleWebhook(context.Background(), payload, "sig"))
}

func TestWebhookRedeliveryAfterEarlyArrival(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env)
	ctx := context.Background()

	// the success notification races ahead of the order row: it must error
	// (provoking a processor retry) without consuming its event id
	err := env.service.HandleWebhook(ctx, succeededEvent("evt_early", "pi_1"), "sig")
	require.ErrorIs(t, err, ErrOrderNotFound)

	resp := createTwoSellerOrder(t, env)
	paymentRef := getOrder(t, env, resp.Order.ID).PaymentRef
	require.Equal(t, "pi_1", paymentRef)

	// the processor redelivers the same event id once the order exists
	require.NoError(t, env.service.HandleWebhook(ctx, succeededEvent("evt_early", paymentRef), "sig"))

	order := getOrder(t, env, resp.Order.ID)
	require.Equal(t, model.PaymentStatusSucceeded, order.PaymentStatus)
	require.Len(t, orderPayouts(t, env, resp.Order.ID), 2)
}

func TestReleaseTransfersAndMarksOrder(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env)
	ctx := context.Background()

	resp := createTwoSellerOrder(t, env)
	paymentRef := getOrder(t, env, resp.Order.ID).PaymentRef
	require.NoError(t, env.service.HandleWebhook(ctx, succeededEvent("evt_1", paymentRef), "sig"))

	require.NoError(t, env.service.Release(ctx, resp.Order.ID))

	order := getOrder(t, env, resp.Order.ID)
	require.True(t, order.Released)
	require.False(t, order.Held)
	require.NotNil(t, order.ReleasedAt)

	require.Len(t, env.stripe.transfers, 2)
	for _, payout := range orderPayouts(t, env, resp.Order.ID) {
		require.Equal(t, model.PayoutStatusCompleted, payout.Status)
		require.NotEmpty(t, payout.TransferRef)
		require.NotNil(t, payout.TransferDate)
	}

	// second release is a conflict and performs no second transfer
	require.ErrorIs(t, env.service.Release(ctx, resp.Order.ID), ErrAlreadyReleased)
	require.Len(t, env.stripe.transfers, 2)
}

func TestReleaseRequiresSucceededPayment(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env)

	resp := createTwoSellerOrder(t, env)
	require.ErrorIs(t, env.service.Release(context.Background(), resp.Order.ID), ErrPaymentNotSucceeded)

	require.ErrorIs(t, env.service.Release(context.Background(), "no-such-order"), ErrOrderNotFound)
}

func TestReleaseSkipsSellerWithoutDestination(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env)
	ctx := context.Background()

	// seller B loses its payout destination before release
	require.NoError(t, env.db.Model(&model.Seller{}).
		Where("id = ?", "seller-b").
		Update("account_ref", "").Error)

	resp := createTwoSellerOrder(t, env)
	paymentRef := getOrder(t, env, resp.Order.ID).PaymentRef
	require.NoError(t, env.service.HandleWebhook(ctx, succeededEvent("evt_1", paymentRef), "sig"))
	require.NoError(t, env.service.Release(ctx, resp.Order.ID))

	order := getOrder(t, env, resp.Order.ID)
	require.True(t, order.Released)

	require.Len(t, env.stripe.transfers, 1)
	require.Equal(t, "acct_a", env.stripe.transfers[0].Destination)

	for _, payout := range orderPayouts(t, env, resp.Order.ID) {
		switch payout.SellerID {
		case "seller-a":
			require.Equal(t, model.PayoutStatusCompleted, payout.Status)
		case "seller-b":
			require.Equal(t, model.PayoutStatusPending, payout.Status)
		}
	}
}

func TestReleaseIsolatesTransferFailure(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env)
	ctx := context.Background()

	env.stripe.failTransfer["acct_b"] = fmt.Errorf("%w: account cannot receive funds", client.ErrTransferRejected)

	resp := createTwoSellerOrder(t, env)
	paymentRef := getOrder(t, env, resp.Order.ID).PaymentRef
	require.NoError(t, env.service.HandleWebhook(ctx, succeededEvent("evt_1", paymentRef), "sig"))
	require.NoError(t, env.service.Release(ctx, resp.Order.ID))

	require.True(t, getOrder(t, env, resp.Order.ID).Released)

	for _, payout := range orderPayouts(t, env, resp.Order.ID) {
		switch payout.SellerID {
		case "seller-a":
			require.Equal(t, model.PayoutStatusCompleted, payout.Status)
		case "seller-b":
			require.Equal(t, model.PayoutStatusFailed, payout.Status)
			require.Contains(t, payout.FailureReason, "transfer rejected")
		}
	}
}

func TestReleaseAllDueHonorsHoldPeriod(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env)
	ctx := context.Background()

	resp := createTwoSellerOrder(t, env)
	paymentRef := getOrder(t, env, resp.Order.ID).PaymentRef
	require.NoError(t, env.service.HandleWebhook(ctx, succeededEvent("evt_1", paymentRef), "sig"))

	// day 4: nothing due
	env.clock.Advance(4 * 24 * time.Hour)
	summary, err := env.service.ReleaseAllDue(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, summary.TotalOrders)
	require.Empty(t, env.stripe.transfers)

	// day 5: released exactly once
	env.clock.Advance(24 * time.Hour)
	summary, err = env.service.ReleaseAllDue(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, summary.OrdersReleased)
	require.Len(t, env.stripe.transfers, 2)

	// a later sweep finds nothing
	summary, err = env.service.ReleaseAllDue(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, summary.TotalOrders)
	require.Len(t, env.stripe.transfers, 2)
}

func TestSetReleaseSchedule(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env)
	ctx := context.Background()

	resp := createTwoSellerOrder(t, env)
	paymentRef := getOrder(t, env, resp.Order.ID).PaymentRef
	require.NoError(t, env.service.HandleWebhook(ctx, succeededEvent("evt_1", paymentRef), "sig"))

	days := 10
	view, err := env.service.SetReleaseSchedule(ctx, resp.Order.ID, nil, &days)
	require.NoError(t, err)
	require.Equal(t, 10, view.HoldDays)
	require.Equal(t, testStart.AddDate(0, 0, 10), view.ReleaseAt.UTC())

	bad := 31
	_, err = env.service.SetReleaseSchedule(ctx, resp.Order.ID, nil, &bad)
	require.ErrorIs(t, err, ErrInvalidHoldDays)

	_, err = env.service.SetReleaseSchedule(ctx, resp.Order.ID, nil, nil)
	require.ErrorIs(t, err, ErrInvalidHoldDays)

	require.NoError(t, env.service.Release(ctx, resp.Order.ID))
	_, err = env.service.SetReleaseSchedule(ctx, resp.Order.ID, nil, &days)
	require.ErrorIs(t, err, ErrAlreadyReleased)
}

func TestAdminReleaseAtSetBeforePaymentIsKept(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env)
	ctx := context.Background()

	resp := createTwoSellerOrder(t, env)

	when := testStart.AddDate(0, 0, 20)
	_, err := env.service.SetReleaseSchedule(ctx, resp.Order.ID, &when, nil)
	require.NoError(t, err)

	paymentRef := getOrder(t, env, resp.Order.ID).PaymentRef
	require.NoError(t, env.service.HandleWebhook(ctx, succeededEvent("evt_1", paymentRef), "sig"))

	order := getOrder(t, env, resp.Order.ID)
	require.Equal(t, when, order.ReleaseAt.UTC())
}

func TestRetryPayout(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env)
	ctx := context.Background()

	env.stripe.failTransfer["acct_b"] = fmt.Errorf("%w: temporarily unavailable", client.ErrTransferRejected)

	resp := createTwoSellerOrder(t, env)
	paymentRef := getOrder(t, env, resp.Order.ID).PaymentRef
	require.NoError(t, env.service.HandleWebhook(ctx, succeededEvent("evt_1", paymentRef), "sig"))
	require.NoError(t, env.service.Release(ctx, resp.Order.ID))

	var failed *model.Payout
	for _, payout := range orderPayouts(t, env, resp.Order.ID) {
		if payout.Status == model.PayoutStatusFailed {
			failed = payout
		}
	}
	require.NotNil(t, failed)

	// destination recovers, admin retries
	delete(env.stripe.failTransfer, "acct_b")
	view, err := env.service.RetryPayout(ctx, failed.ID)
	require.NoError(t, err)
	require.Equal(t, model.PayoutStatusCompleted, view.Status)
	require.Len(t, env.stripe.transfers, 2)

	// retrying a completed payout is a conflict
	_, err = env.service.RetryPayout(ctx, failed.ID)
	require.ErrorIs(t, err, ErrPayoutNotRetriable)

	_, err = env.service.RetryPayout(ctx, "no-such-payout")
	require.ErrorIs(t, err, ErrPayoutNotFound)
}

func TestSnapshottedRatesSurviveConfigChange(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env)
	ctx := context.Background()

	resp := createTwoSellerOrder(t, env)
	paymentRef := getOrder(t, env, resp.Order.ID).PaymentRef

	// platform rates change after the order was created
	newCfg := testSettlementConfig()
	newCfg.TaxRate = "0.10"
	newCfg.PlatformFeeRate = "0.10"
	svc2, err := NewSettlementService(
		env.db, env.stripe, env.clock, zap.NewNop(), newCfg,
		repository.NewProductRepository(env.db),
		env.orders,
		env.payouts,
		repository.NewSellerRepository(env.db),
		repository.NewWebhookEventRepository(env.db),
	)
	require.NoError(t, err)

	require.NoError(t, svc2.HandleWebhook(ctx, succeededEvent("evt_1", paymentRef), "sig"))

	// payouts use the order's snapshotted rates, not the live ones
	for _, payout := range orderPayouts(t, env, resp.Order.ID) {
		require.Equal(t, int64(725), payout.Tax)
		require.Equal(t, int64(325), payout.PlatformFee)
	}
}

func TestGetOrderScopedToBuyer(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env)
	ctx := context.Background()

	resp := createTwoSellerOrder(t, env)

	view, err := env.service.GetOrder(ctx, resp.Order.ID, "buyer-1")
	require.NoError(t, err)
	require.Len(t, view.Lines, 2)

	_, err = env.service.GetOrder(ctx, resp.Order.ID, "someone-else")
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestConfirmPaymentMirrorsWebhook(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env)
	ctx := context.Background()

	resp := createTwoSellerOrder(t, env)
	paymentRef := getOrder(t, env, resp.Order.ID).PaymentRef
	env.stripe.intents[paymentRef] = "succeeded"

	view, err := env.service.ConfirmPayment(ctx, "buyer-1", paymentRef)
	require.NoError(t, err)
	require.Equal(t, model.PaymentStatusSucceeded, view.PaymentStatus)
	require.Len(t, orderPayouts(t, env, resp.Order.ID), 2)

	// confirming again is a no-op
	view, err = env.service.ConfirmPayment(ctx, "buyer-1", paymentRef)
	require.NoError(t, err)
	require.Equal(t, model.PaymentStatusSucceeded, view.PaymentStatus)
	require.Len(t, orderPayouts(t, env, resp.Order.ID), 2)
}

package dto

import (
	"time"

	"marketplace-settlement/internal/model"
)

type Item struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type CreateOrderRequest struct {
	Items []*Item `json:"items"`
}

type Breakdown struct {
	Subtotal         int64  `json:"subtotal"`
	Tax              int64  `json:"tax"`
	PlatformFee      int64  `json:"platform_fee"`
	Total            int64  `json:"total"`
	TaxRate          string `json:"tax_rate"`
	PlatformFeeRate  string `json:"platform_fee_rate"`
	ProcessorFeeRate string `json:"processor_fee_rate"`
}

type CreateOrderResponse struct {
	Order               *OrderView `json:"order"`
	ClientPaymentHandle string     `json:"client_payment_handle"`
	Breakdown           Breakdown  `json:"breakdown"`
}

type LineView struct {
	ProductID string `json:"product_id"`
	SellerID  string `json:"seller_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int64  `json:"quantity"`
}

type OrderView struct {
	ID            string      `json:"id"`
	OrderNumber   string      `json:"order_number"`
	BuyerID       string      `json:"buyer_id"`
	Subtotal      int64       `json:"subtotal"`
	Tax           int64       `json:"tax"`
	PlatformFee   int64       `json:"platform_fee"`
	Total         int64       `json:"total"`
	Currency      string      `json:"currency"`
	PaymentRef    string      `json:"payment_ref"`
	PaymentStatus string      `json:"payment_status"`
	Status        string      `json:"status"`
	HoldDays      int         `json:"hold_days"`
	ReleaseAt     *time.Time  `json:"release_at,omitempty"`
	Held          bool        `json:"held"`
	Released      bool        `json:"released"`
	PaidAt        *time.Time  `json:"paid_at,omitempty"`
	ReleasedAt    *time.Time  `json:"released_at,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	Lines         []*LineView `json:"lines,omitempty"`
}

func NewOrderView(order *model.Order, lines []*model.OrderLine) *OrderView {
	view := &OrderView{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		BuyerID:       order.BuyerID,
		Subtotal:      order.Subtotal,
		Tax:           order.Tax,
		PlatformFee:   order.PlatformFee,
		Total:         order.Total,
		Currency:      order.Currency,
		PaymentRef:    order.PaymentRef,
		PaymentStatus: order.PaymentStatus,
		Status:        order.Status,
		HoldDays:      order.HoldDays,
		ReleaseAt:     order.ReleaseAt,
		Held:          order.Held,
		Released:      order.Released,
		PaidAt:        order.PaidAt,
		ReleasedAt:    order.ReleasedAt,
		CreatedAt:     order.CreatedAt,
	}
	for _, line := range lines {
		view.Lines = append(view.Lines, &LineView{
			ProductID: line.ProductID,
			SellerID:  line.SellerID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}
	return view
}

type PayoutView struct {
	ID             string     `json:"id"`
	OrderID        string     `json:"order_id"`
	SellerID       string     `json:"seller_id"`
	Gross          int64      `json:"gross"`
	PlatformFee    int64      `json:"platform_fee"`
	ProcessorFee   int64      `json:"processor_fee"`
	Tax            int64      `json:"tax"`
	SellerEarnings int64      `json:"seller_earnings"`
	Status         string     `json:"status"`
	Blocked        bool       `json:"blocked"`
	TransferRef    string     `json:"transfer_ref,omitempty"`
	TransferDate   *time.Time `json:"transfer_date,omitempty"`
	FailureReason  string     `json:"failure_reason,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func NewPayoutView(payout *model.Payout, blocked bool) *PayoutView {
	return &PayoutView{
		ID:             payout.ID,
		OrderID:        payout.OrderID,
		SellerID:       payout.SellerID,
		Gross:          payout.Gross,
		PlatformFee:    payout.PlatformFee,
		ProcessorFee:   payout.ProcessorFee,
		Tax:            payout.Tax,
		SellerEarnings: payout.SellerEarnings,
		Status:         payout.Status,
		Blocked:        blocked,
		TransferRef:    payout.TransferRef,
		TransferDate:   payout.TransferDate,
		FailureReason:  payout.FailureReason,
		CreatedAt:      payout.CreatedAt,
	}
}

type PayoutSummary struct {
	TotalEarnings    int64 `json:"total_earnings"`
	PendingEarnings  int64 `json:"pending_earnings"`
	TotalSales       int64 `json:"total_sales"`
	TotalFees        int64 `json:"total_fees"`
	TotalPayouts     int   `json:"total_payouts"`
	CompletedPayouts int   `json:"completed_payouts"`
	PendingPayouts   int   `json:"pending_payouts"`
	FailedPayouts    int   `json:"failed_payouts"`
}

type SellerPayoutsResponse struct {
	Payouts         []*PayoutView    `json:"payouts"`
	Summary         PayoutSummary    `json:"summary"`
	MonthlyEarnings map[string]int64 `json:"monthly_earnings"`
	Pagination      Pagination       `json:"pagination"`
}

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
	TotalItems int64 `json:"total_items"`
}

type OrderListResponse struct {
	Orders     []*OrderView `json:"orders"`
	Pagination Pagination   `json:"pagination"`
}

type SetReleaseScheduleRequest struct {
	ReleaseAt *time.Time `json:"release_at,omitempty"`
	HoldDays  *int       `json:"hold_days,omitempty"`
}

type ConfirmPaymentRequest struct {
	PaymentRef string `json:"payment_ref"`
}

type ReleaseSummary struct {
	OrdersReleased int `json:"orders_released"`
	OrdersFailed   int `json:"orders_failed"`
	TotalOrders    int `json:"total_orders"`
}

type ScheduleRequest struct {
	ScheduleType string     `json:"schedule_type"`
	ScheduleDay  *int       `json:"schedule_day,omitempty"`
	ScheduleDate *time.Time `json:"schedule_date,omitempty"`
}

type ScheduleResponse struct {
	ScheduleType   string     `json:"schedule_type"`
	ScheduleDay    *int       `json:"schedule_day,omitempty"`
	ScheduleDate   *time.Time `json:"schedule_date,omitempty"`
	NextPayoutDate *time.Time `json:"next_payout_date,omitempty"`
}

type AccountStatusResponse struct {
	SellerID         string `json:"seller_id"`
	AccountRef       string `json:"account_ref"`
	ChargesEnabled   bool   `json:"charges_enabled"`
	PayoutsEnabled   bool   `json:"payouts_enabled"`
	DetailsSubmitted bool   `json:"details_submitted"`
}

package model

import "time"

// Payment lifecycle reported by the processor.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
	PaymentStatusCanceled  = "canceled"
)

// Order lifecycle.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusCanceled  = "canceled"
)

// Payout lifecycle. Completed and failed are terminal.
const (
	PayoutStatusPending    = "pending"
	PayoutStatusProcessing = "processing"
	PayoutStatusCompleted  = "completed"
	PayoutStatusFailed     = "failed"
)

// Seller payout schedule types (informational, decoupled from hold/release).
const (
	ScheduleDaily   = "daily"
	ScheduleWeekly  = "weekly"
	ScheduleMonthly = "monthly"
	ScheduleCustom  = "custom"
)

type Product struct {
	ID       string `gorm:"primaryKey;size:64;not null"` // product sku
	SellerID string `gorm:"size:64;index;not null"`
	Name     string `gorm:"size:255;not null"`
	Price    int64  `gorm:"not null"` // minor units
	Currency string `gorm:"size:8;not null"`
}

// Order is one checkout. All monetary fields are integer minor units; the
// fee rates in effect at creation are snapshotted as decimal strings so the
// split stays reproducible after platform-wide rates change.
type Order struct {
	ID          string `gorm:"primaryKey;size:64;not null"`
	OrderNumber string `gorm:"size:32;uniqueIndex;not null"`
	BuyerID     string `gorm:"size:64;index;not null"`

	Subtotal    int64  `gorm:"not null"`
	Tax         int64  `gorm:"not null"`
	PlatformFee int64  `gorm:"not null"`
	Total       int64  `gorm:"not null"`
	Currency    string `gorm:"size:8;not null"`

	TaxRate          string `gorm:"size:16;not null"`
	PlatformFeeRate  string `gorm:"size:16;not null"`
	ProcessorFeeRate string `gorm:"size:16;not null"`

	PaymentRef    string `gorm:"size:64;uniqueIndex;not null"` // processor payment-intent id
	PaymentStatus string `gorm:"size:32;index;not null"`
	Status        string `gorm:"size:32;index;not null"`

	HoldDays   int `gorm:"not null"`
	ReleaseAt  *time.Time
	Held       bool `gorm:"not null"`
	Released   bool `gorm:"index;not null"`
	PaidAt     *time.Time
	ReleasedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderLine snapshots a purchased item at order time. Never updated.
type OrderLine struct {
	ID uint `gorm:"primaryKey"`
	// FK → order.id
	OrderID   string `gorm:"size:64;index;not null"`
	ProductID string `gorm:"size:64;index;not null"`
	SellerID  string `gorm:"size:64;index;not null"`
	Name      string `gorm:"size:255;not null"`
	UnitPrice int64  `gorm:"not null"` // price at time of purchase, minor units
	Quantity  int64  `gorm:"not null"`

	CreatedAt time.Time
}

// Payout is one seller's earnings ledger entry for one order. The
// (order, seller) pair is unique so webhook replays cannot create duplicates.
type Payout struct {
	ID       string `gorm:"primaryKey;size:64;not null"`
	OrderID  string `gorm:"size:64;index;not null;uniqueIndex:idx_payout_order_seller"`
	SellerID string `gorm:"size:64;index;not null;uniqueIndex:idx_payout_order_seller"`

	Gross          int64 `gorm:"not null"` // sum of this seller's lines, minor units
	PlatformFee    int64 `gorm:"not null"`
	ProcessorFee   int64 `gorm:"not null"`
	Tax            int64 `gorm:"not null"`
	SellerEarnings int64 `gorm:"not null"`

	Status        string `gorm:"size:32;index;not null"`
	TransferRef   string `gorm:"size:64"`
	TransferDate  *time.Time
	FailureReason string `gorm:"size:512"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Seller carries the payout destination reported by the processor plus the
// optional informational payout schedule.
type Seller struct {
	ID    string `gorm:"primaryKey;size:64;not null"`
	Email string `gorm:"size:255;index"`

	AccountRef       string `gorm:"size:64;index"` // connected account id
	ChargesEnabled   bool   `gorm:"not null"`
	PayoutsEnabled   bool   `gorm:"not null"`
	DetailsSubmitted bool   `gorm:"not null"`

	ScheduleType   string `gorm:"size:16"` // daily, weekly, monthly, custom
	ScheduleDay    *int   // weekday 0-6 or day of month 1-31
	ScheduleDate   *time.Time
	NextPayoutDate *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// WebhookEvent records processed processor event ids for dedupe.
type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;uniqueIndex;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}

// Package fee computes order and per-seller monetary splits. All functions
// are pure: the same amounts and rates always produce the same breakdown, so
// a stored split can be reproduced from the rates snapshotted on the order.
package fee

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Rates are the fractions applied to a gross amount. Each is a decimal
// fraction, e.g. 0.0725 for 7.25%.
type Rates struct {
	Tax          decimal.Decimal
	PlatformFee  decimal.Decimal
	ProcessorFee decimal.Decimal
}

// ParseRates builds Rates from the decimal strings carried in config or
// snapshotted on an order.
func ParseRates(tax, platformFee, processorFee string) (Rates, error) {
	t, err := decimal.NewFromString(tax)
	if err != nil {
		return Rates{}, fmt.Errorf("parse tax rate %q: %w", tax, err)
	}
	p, err := decimal.NewFromString(platformFee)
	if err != nil {
		return Rates{}, fmt.Errorf("parse platform fee rate %q: %w", platformFee, err)
	}
	s, err := decimal.NewFromString(processorFee)
	if err != nil {
		return Rates{}, fmt.Errorf("parse processor fee rate %q: %w", processorFee, err)
	}
	return Rates{Tax: t, PlatformFee: p, ProcessorFee: s}, nil
}

// Amounts is the buyer-facing breakdown of an order. The processor fee is
// deducted from seller earnings only and never appears here.
type Amounts struct {
	Subtotal    int64
	Tax         int64
	PlatformFee int64
	Total       int64
}

// SellerSplit is one seller's share of an order: the gross owed for their
// lines and the deductions taken from it. Each component is rounded once,
// never accumulated across payouts.
type SellerSplit struct {
	Gross          int64
	Tax            int64
	PlatformFee    int64
	ProcessorFee   int64
	SellerEarnings int64
}

// Breakdown computes the buyer-facing totals for a subtotal in minor units.
// Each component is rounded half-up to the nearest minor unit independently.
func Breakdown(subtotal int64, r Rates) Amounts {
	tax := part(subtotal, r.Tax)
	platform := part(subtotal, r.PlatformFee)
	return Amounts{
		Subtotal:    subtotal,
		Tax:         tax,
		PlatformFee: platform,
		Total:       subtotal + tax + platform,
	}
}

// Split computes one seller's entitlement from their gross share.
func Split(gross int64, r Rates) SellerSplit {
	tax := part(gross, r.Tax)
	platform := part(gross, r.PlatformFee)
	processor := part(gross, r.ProcessorFee)
	return SellerSplit{
		Gross:          gross,
		Tax:            tax,
		PlatformFee:    platform,
		ProcessorFee:   processor,
		SellerEarnings: gross - tax - platform - processor,
	}
}

// part rounds amount*rate half-up to a whole minor unit.
func part(amount int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(amount).Mul(rate).Round(0).IntPart()
}

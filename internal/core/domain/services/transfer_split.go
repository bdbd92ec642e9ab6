package services

import (
	"errors"

	"orderflow/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// DefaultSplitPercent is the merchant's share of the subtotal.
var DefaultSplitPercent = decimal.RequireFromString("0.71")

var minorUnitsPerMajor = decimal.NewFromInt(100)

// ErrTransferSplitIsNotConstructed is returned for a zero TransferSplit.
var ErrTransferSplitIsNotConstructed = errors.New("TransferSplit must be created via NewTransferSplit constructor")

// TransferSplit computes the payment split sent to the merchant sub-account.
// Delivery fees stay with the platform; only the basket subtotal is split.
type TransferSplit struct {
	percent decimal.Decimal
}

// NewTransferSplit accepts a percent in (0, 1].
func NewTransferSplit(percent decimal.Decimal) (TransferSplit, error) {
	if !percent.IsPositive() || percent.GreaterThan(decimal.NewFromInt(1)) {
		return TransferSplit{}, errs.NewValueIsOutOfRangeError("split percent", percent.String(), "0 (exclusive)", 1)
	}
	return TransferSplit{percent: percent}, nil
}

func (s TransferSplit) Validate() error {
	if !s.percent.IsPositive() {
		return ErrTransferSplitIsNotConstructed
	}
	return nil
}

func (s TransferSplit) Percent() decimal.Decimal {
	return s.percent
}

// AmountMinor returns subtotal x percent in minor currency units, rounded half
// away from zero.
//
// Example:
//
//	split, _ := services.NewTransferSplit(decimal.RequireFromString("0.71"))
//	split.AmountMinor(decimal.RequireFromString("20.00")) // 1420
func (s TransferSplit) AmountMinor(subtotal decimal.Decimal) int64 {
	return subtotal.Mul(minorUnitsPerMajor).Mul(s.percent).Round(0).IntPart()
}

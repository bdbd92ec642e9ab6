package services_test

import (
	"testing"

	"orderflow/internal/core/domain/services"
	"orderflow/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferSplit_AmountMinor(t *testing.T) {
	split, err := services.NewTransferSplit(services.DefaultSplitPercent)
	require.NoError(t, err)

	tests := []struct {
		subtotal string
		want     int64
	}{
		{"20.00", 1420},
		{"0.00", 0},
		{"10.50", 746},  // 745.5 rounds away from zero
		{"12.34", 876},  // 876.14
		{"3.10", 220},   // 220.1
		{"99.99", 7099}, // 7099.29
	}

	for _, tt := range tests {
		t.Run(tt.subtotal, func(t *testing.T) {
			assert.Equal(t, tt.want, split.AmountMinor(decimal.RequireFromString(tt.subtotal)))
		})
	}
}

func TestNewTransferSplit_Range(t *testing.T) {
	for _, p := range []string{"0", "-0.1", "1.01"} {
		_, err := services.NewTransferSplit(decimal.RequireFromString(p))
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange, p)
	}

	split, err := services.NewTransferSplit(decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.Equal(t, int64(2000), split.AmountMinor(decimal.RequireFromString("20")))

	var zero services.TransferSplit
	require.ErrorIs(t, zero.Validate(), services.ErrTransferSplitIsNotConstructed)
}

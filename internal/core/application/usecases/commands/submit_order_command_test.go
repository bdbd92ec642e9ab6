package commands_test

import (
	"testing"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSubmitParams() commands.SubmitOrderParams {
	return commands.SubmitOrderParams{
		Email: "sam@example.com",
		Name:  "Sam",
		Phone: "07700 900123",
		Basket: []order.BasketLine{
			{ProductID: "bagel", Name: " Salt beef bagel ", Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
		},
		Total:           decimal.RequireFromString("25.00"),
		PaymentIntentID: "pi_123",
		Delivery: order.DeliveryDetails{
			IsDelivery: true,
			Address:    "10 Downing St",
			Postcode:   "SW1A 2AA",
			Lat:        51.5034,
			Lng:        -0.1276,
		},
	}
}

func TestNewSubmitOrderCommand_Valid(t *testing.T) {
	cmd, err := commands.NewSubmitOrderCommand(validSubmitParams())
	require.NoError(t, err)
	require.NoError(t, cmd.Validate())

	assert.Equal(t, "sam@example.com", cmd.Email())
	assert.True(t, cmd.CustomerUUID().IsEqual(kernel.UUIDFromName("sam@example.com")))
	assert.Equal(t, "Salt beef bagel", cmd.Basket()[0].Name)
	assert.Equal(t, "pi_123", cmd.Payment().PaymentIntentID)
	assert.NotEmpty(t, cmd.CorrelationID())

	d := cmd.Delivery()
	assert.Equal(t, "Sam", d.RecipientName)
	assert.Equal(t, "07700 900123", d.RecipientPhone)
}

func TestNewSubmitOrderCommand_DoesNotModifyInputBasket(t *testing.T) {
	params := validSubmitParams()
	_, err := commands.NewSubmitOrderCommand(params)
	require.NoError(t, err)
	assert.Equal(t, " Salt beef bagel ", params.Basket[0].Name)
}

func TestNewSubmitOrderCommand_CorrelationFallsBackToIdempotencyKey(t *testing.T) {
	params := validSubmitParams()
	params.IdempotencyKey = "checkout-1"

	cmd, err := commands.NewSubmitOrderCommand(params)
	require.NoError(t, err)
	assert.Equal(t, "checkout-1", cmd.CorrelationID())

	params.CorrelationID = "req-9"
	cmd, err = commands.NewSubmitOrderCommand(params)
	require.NoError(t, err)
	assert.Equal(t, "req-9", cmd.CorrelationID())
}

func TestNewSubmitOrderCommand_ExplicitCustomerUUID(t *testing.T) {
	params := validSubmitParams()
	params.CustomerUUID = "5f1b8c1e-1c3a-4d1c-9a3c-2f0b4f1e9b11"

	cmd, err := commands.NewSubmitOrderCommand(params)
	require.NoError(t, err)
	assert.Equal(t, params.CustomerUUID, cmd.CustomerUUID().String())

	params.CustomerUUID = "not-a-uuid"
	_, err = commands.NewSubmitOrderCommand(params)
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestNewSubmitOrderCommand_FatalInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *commands.SubmitOrderParams)
		want   error
	}{
		{
			name:   "missing payment intent",
			mutate: func(p *commands.SubmitOrderParams) { p.PaymentIntentID = " " },
			want:   commands.ErrPaymentReferenceRequired,
		},
		{
			name:   "empty basket",
			mutate: func(p *commands.SubmitOrderParams) { p.Basket = nil },
			want:   commands.ErrBasketIsEmpty,
		},
		{
			name:   "total below subtotal",
			mutate: func(p *commands.SubmitOrderParams) { p.Total = decimal.RequireFromString("19.99") },
			want:   commands.ErrTotalBelowSubtotal,
		},
		{
			name:   "delivery without address",
			mutate: func(p *commands.SubmitOrderParams) { p.Delivery.Address = "" },
			want:   commands.ErrDeliveryAddressRequired,
		},
		{
			name:   "missing email",
			mutate: func(p *commands.SubmitOrderParams) { p.Email = "" },
			want:   errs.ErrValueIsRequired,
		},
		{
			name: "zero quantity",
			mutate: func(p *commands.SubmitOrderParams) {
				p.Basket = []order.BasketLine{{ProductID: "x", Quantity: 0, UnitPrice: decimal.NewFromInt(1)}}
			},
			want: errs.ErrValueIsOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validSubmitParams()
			tt.mutate(&params)

			_, err := commands.NewSubmitOrderCommand(params)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewSubmitOrderCommand_CollectionNeedsNoAddress(t *testing.T) {
	params := validSubmitParams()
	params.Delivery = order.DeliveryDetails{}
	params.Total = decimal.RequireFromString("20.00")

	cmd, err := commands.NewSubmitOrderCommand(params)
	require.NoError(t, err)
	assert.False(t, cmd.Metadata().Delivery.RequestsDispatch())
}

func TestSubmitOrderCommand_ZeroValueIsNotConstructed(t *testing.T) {
	var cmd commands.SubmitOrderCommand
	require.ErrorIs(t, cmd.Validate(), commands.ErrSubmitOrderCommandIsNotConstructed)
}

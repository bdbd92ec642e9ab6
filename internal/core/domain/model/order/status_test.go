package order_test

import (
	"testing"

	"orderflow/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
)

func TestParseStatusText(t *testing.T) {
	tests := []struct {
		text string
		want order.StatusCode
	}{
		{"pending", order.StatusQueued},
		{"looking_for_driver", order.StatusQueued},
		{"driver_en_route_to_pickup", order.StatusEnRouteToPickup},
		{"driver_at_pickup", order.StatusAtPickup},
		{"in_transit", order.StatusInTransit},
		{"driver_at_dropoff", order.StatusInTransit},
		{"success", order.StatusDelivered},
		{"  Driver-At-Pickup ", order.StatusAtPickup},
		{"IN TRANSIT", order.StatusInTransit},
		{"cancelled", order.StatusUnrecognized},
		{"", order.StatusUnrecognized},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, order.ParseStatusText(tt.text))
		})
	}
}

func TestStatusCode_Predicates(t *testing.T) {
	assert.False(t, order.StatusUnrecognized.IsRecognized())
	assert.False(t, order.StatusReceived.IsRecognized())
	assert.True(t, order.StatusQueued.IsRecognized())
	assert.True(t, order.StatusDelivered.IsRecognized())

	assert.True(t, order.StatusInTransit.NotifiesCustomer())
	assert.True(t, order.StatusDelivered.NotifiesCustomer())
	assert.False(t, order.StatusAtPickup.NotifiesCustomer())

	assert.True(t, order.StatusEnRouteToPickup.IsRegressionFrom(order.StatusDelivered))
	assert.False(t, order.StatusDelivered.IsRegressionFrom(order.StatusEnRouteToPickup))
	assert.False(t, order.StatusInTransit.IsRegressionFrom(order.StatusInTransit))

	assert.Error(t, order.StatusUnrecognized.Validate())
	assert.Error(t, order.StatusCode(6).Validate())
	assert.NoError(t, order.StatusReceived.Validate())

	assert.Equal(t, "in_transit", order.StatusInTransit.String())
	assert.Equal(t, "delivered", order.StatusDelivered.String())
	assert.Equal(t, "unrecognized", order.StatusCode(42).String())
}

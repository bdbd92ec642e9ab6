package tracking_test

import (
	"testing"
	"time"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/tracking"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateKey(t *testing.T) {
	for _, key := range []string{"1234", "abc-uuid", "job_9f8e.1", "550e8400-e29b-41d4-a716-446655440000"} {
		assert.NoError(t, tracking.ValidateKey(key), key)
	}

	require.ErrorIs(t, tracking.ValidateKey(""), errs.ErrValueIsRequired)
	for _, key := range []string{"../etc/passwd", "a/b", ".hidden", "a b", string(make([]byte, 200))} {
		assert.ErrorIs(t, tracking.ValidateKey(key), errs.ErrValueIsInvalid, key)
	}
}

func TestNewDocument(t *testing.T) {
	now := time.Date(2026, 6, 1, 13, 0, 0, 0, time.FixedZone("BST", 3600))

	doc, err := tracking.NewDocument("1234", order.StatusInTransit, "in_transit",
		&tracking.Driver{Name: "Sam"}, &tracking.ETA{Dropoff: "13:20"}, now)

	require.NoError(t, err)
	assert.Equal(t, "1234", doc.OrderID)
	assert.Equal(t, order.StatusInTransit, doc.Status)
	assert.Equal(t, time.UTC, doc.UpdatedAtUTC.Location())
	assert.Equal(t, 12, doc.UpdatedAtUTC.Hour())

	_, err = tracking.NewDocument("1234", order.StatusUnrecognized, "cancelled", nil, nil, now)
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

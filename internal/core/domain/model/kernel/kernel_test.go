package kernel_test

import (
	"testing"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUID(t *testing.T) {
	t.Run("should create unique random UUIDs", func(t *testing.T) {
		id1 := kernel.NewUUID()
		id2 := kernel.NewUUID()

		require.NoError(t, id1.Validate())
		assert.False(t, id1.IsEqual(id2))
	})

	t.Run("should parse braced and urn forms", func(t *testing.T) {
		want := "550e8400-e29b-41d4-a716-446655440000"
		for _, in := range []string{want, "{" + want + "}", "urn:uuid:" + want, " " + want + " "} {
			id, err := kernel.UUIDFromString(in)
			require.NoError(t, err, in)
			assert.Equal(t, want, id.String())
		}
	})

	t.Run("should reject garbage and nil UUID", func(t *testing.T) {
		_, err := kernel.UUIDFromString("not-a-uuid")
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)

		_, err = kernel.UUIDFromString("00000000-0000-0000-0000-000000000000")
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should derive the same UUID for the same e-mail", func(t *testing.T) {
		a := kernel.UUIDFromName("Jane@Example.com ")
		b := kernel.UUIDFromName("jane@example.com")
		c := kernel.UUIDFromName("john@example.com")

		require.NoError(t, a.Validate())
		assert.True(t, a.IsEqual(b))
		assert.False(t, a.IsEqual(c))
	})

	t.Run("zero value is invalid", func(t *testing.T) {
		var id kernel.UUID
		require.ErrorIs(t, id.Validate(), kernel.ErrUUIDIsNotConstructed)
	})
}

func TestNewGeoPoint(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{name: "shop coordinates", lat: 51.5210, lng: -0.0710},
		{name: "zero is allowed", lat: 0, lng: 0},
		{name: "bounds are inclusive", lat: 90, lng: -180},
		{name: "latitude too large", lat: 90.1, lng: 0, wantErr: true},
		{name: "longitude too small", lat: 0, lng: -180.5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := kernel.NewGeoPoint(tt.lat, tt.lng)
			if tt.wantErr {
				require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.lat, p.Lat(), 1e-9)
			assert.InDelta(t, tt.lng, p.Lng(), 1e-9)
		})
	}

	t.Run("IsZero", func(t *testing.T) {
		assert.True(t, kernel.GeoPoint{}.IsZero())
		p, _ := kernel.NewGeoPoint(51.5, -0.1)
		assert.False(t, p.IsZero())
	})
}

func TestNormalizeUKPhone(t *testing.T) {
	const fallback = "+442070000000"

	tests := []struct {
		in   string
		want string
	}{
		{in: "07522 552608", want: "+447522552608"},
		{in: "447522552608", want: "+447522552608"},
		{in: "+44 (0)7522-552608", want: "+4407522552608"},
		{in: "+33 6 12 34 56 78", want: "+33612345678"},
		{in: "0033612345678", want: "+33612345678"},
		{in: "12345", want: fallback},
		{in: "", want: fallback},
		{in: "call me", want: fallback},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, kernel.NormalizeUKPhone(tt.in, fallback))
		})
	}
}

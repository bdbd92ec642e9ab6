package kernel

import (
	"errors"
	"fmt"

	"orderflow/internal/pkg/errs"
)

const (
	LatitudeMin  = -90.0
	LatitudeMax  = 90.0
	LongitudeMin = -180.0
	LongitudeMax = 180.0
)

// GeoPoint is a WGS84 coordinate pair. The zero value (0,0) is a legal point:
// missing coordinates are sent to couriers as zero and validated upstream, if at all.
//
// Example:
//
//	shop, err := kernel.NewGeoPoint(51.5210, -0.0710)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(shop) // GeoPoint(51.521000,-0.071000)
type GeoPoint struct {
	lat float64
	lng float64
}

// NewGeoPoint validates latitude in [-90, 90] and longitude in [-180, 180].
func NewGeoPoint(lat, lng float64) (GeoPoint, error) {
	var errLat, errLng error
	if lat < LatitudeMin || lat > LatitudeMax {
		errLat = errs.NewValueIsOutOfRangeError("latitude", lat, LatitudeMin, LatitudeMax)
	}
	if lng < LongitudeMin || lng > LongitudeMax {
		errLng = errs.NewValueIsOutOfRangeError("longitude", lng, LongitudeMin, LongitudeMax)
	}
	if err := errors.Join(errLat, errLng); err != nil {
		return GeoPoint{}, err
	}

	return GeoPoint{lat: lat, lng: lng}, nil
}

// Lat returns the latitude in degrees.
func (p GeoPoint) Lat() float64 {
	return p.lat
}

// Lng returns the longitude in degrees.
func (p GeoPoint) Lng() float64 {
	return p.lng
}

// IsZero reports whether no coordinates were supplied.
func (p GeoPoint) IsZero() bool {
	return p.lat == 0 && p.lng == 0
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("GeoPoint(%f,%f)", p.lat, p.lng)
}

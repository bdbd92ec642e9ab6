// Package kernel provides value objects shared by the order and delivery models.
//
// The package includes:
//   - UUID: identifier value object, with name-based derivation for customers
//   - GeoPoint: validated latitude/longitude pair
//   - NormalizeUKPhone: E.164 normalisation for numbers handed to couriers
package kernel

// Package order provides the Order aggregate: the durable record of a paid
// submission together with everything learned about it afterwards.
//
// The package includes:
//   - Order: aggregate root holding totals, status code and metadata
//   - StatusCode: ordered delivery progress plus the courier status text table
//   - Metadata: typed, versioned side-channel document (payment, transfer,
//     legacy mirror id, courier job, push token)
//
// Key business rules:
//   - Delivery fee is derived as total minus basket subtotal
//   - An order carries at most one courier job; without one the provider is "pending"
//   - Status codes only move forward unless a correction is requested
package order

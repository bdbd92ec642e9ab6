// Package services provides domain services: pure business decisions that do
// not belong to a single aggregate.
//
// The package includes:
//   - RoutingPolicy: chooses the daytime or nighttime courier from the pickup hour
//   - TransferSplit: computes the merchant share of an order subtotal in minor units
package services

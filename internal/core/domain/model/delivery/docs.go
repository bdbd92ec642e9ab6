// Package delivery models courier jobs: the request handed to exactly one
// courier provider, the result it returns, and the schedule that decides when
// the courier collects from the shop.
//
// The package includes:
//   - JobRequest / Stop: provider-neutral description of a pickup and drop-off
//   - JobResult: provider name plus the provider-assigned delivery id
//   - Schedule / ScheduleRules: target, pickup and urgency in shop-local time
//   - Shift: daytime or nighttime, the routing decision
//   - ProviderRejectedError: the courier refused the job or omitted its id
package delivery

package delivery

import (
	"strings"
	"time"
	_ "time/tzdata" // shop timezone must resolve on hosts without a zoneinfo database

	"orderflow/internal/pkg/errs"
)

const (
	DefaultTimezone         = "Europe/London"
	DefaultLeadTime         = 40 * time.Minute
	DefaultPickupOffset     = 30 * time.Minute
	DefaultUrgencyThreshold = 10 * time.Minute
)

var immediateHints = map[string]struct{}{
	"":          {},
	"asap":      {},
	"now":       {},
	"immediate": {},
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Schedule is the resolved timing of a courier job, in shop-local time.
type Schedule struct {
	Target   time.Time
	Pickup   time.Time
	IsUrgent bool
}

// ScheduleRules turns a customer scheduling hint into a Schedule.
type ScheduleRules struct {
	Location         *time.Location
	LeadTime         time.Duration
	PickupOffset     time.Duration
	UrgencyThreshold time.Duration
}

// NewScheduleRules loads the timezone and validates the durations.
func NewScheduleRules(timezone string, leadTime, pickupOffset, urgencyThreshold time.Duration) (ScheduleRules, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return ScheduleRules{}, errs.NewValueIsInvalidErrorWithCause("timezone", err)
	}
	if leadTime < 0 || pickupOffset < 0 || urgencyThreshold < 0 {
		return ScheduleRules{}, errs.NewValueIsInvalidError("schedule durations")
	}

	return ScheduleRules{
		Location:         loc,
		LeadTime:         leadTime,
		PickupOffset:     pickupOffset,
		UrgencyThreshold: urgencyThreshold,
	}, nil
}

// DefaultScheduleRules is Europe/London, 40 minute lead time, pickup 30 minutes
// before the target and a 10 minute urgency threshold.
func DefaultScheduleRules() (ScheduleRules, error) {
	return NewScheduleRules(DefaultTimezone, DefaultLeadTime, DefaultPickupOffset, DefaultUrgencyThreshold)
}

// Resolve computes target and pickup times and the urgency flag.
//
// Target: empty or immediate hints ("asap", "now", "immediate") and unparsable
// hints resolve to now + LeadTime. RFC3339 values keep their instant; naive
// date-times and bare "15:04" times are read as shop-local time.
//
// Pickup: explicitPickup when given, else Target - PickupOffset.
//
// Urgent: the hint was immediate, or pickup is within UrgencyThreshold of now.
//
// Example:
//
//	rules, _ := delivery.DefaultScheduleRules()
//	s := rules.Resolve(time.Date(2026, 6, 1, 13, 0, 0, 0, time.UTC), "asap", nil)
//	// 14:00 London: Target 14:40, Pickup 14:10, IsUrgent true
func (r ScheduleRules) Resolve(now time.Time, scheduledFor string, explicitPickup *time.Time) Schedule {
	local := now.In(r.Location)
	target, immediate := r.resolveTarget(local, scheduledFor)

	pickup := target.Add(-r.PickupOffset)
	if explicitPickup != nil && !explicitPickup.IsZero() {
		pickup = explicitPickup.In(r.Location)
	}

	return Schedule{
		Target:   target,
		Pickup:   pickup,
		IsUrgent: immediate || !pickup.After(local.Add(r.UrgencyThreshold)),
	}
}

func (r ScheduleRules) resolveTarget(now time.Time, hint string) (time.Time, bool) {
	trimmed := strings.TrimSpace(hint)
	if _, ok := immediateHints[strings.ToLower(trimmed)]; ok {
		return now.Add(r.LeadTime), true
	}

	if t, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return t.In(r.Location), false
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, r.Location); err == nil {
			return t, false
		}
	}
	if t, err := time.Parse("15:04", trimmed); err == nil {
		return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, r.Location), false
	}

	return now.Add(r.LeadTime), false
}

// Package duration derives time-in-state figures from a vehicle's timeline.
//
// Everything here is a pure function of its inputs: callers pass the vehicle
// snapshot, its events and, where needed, the current time.
package duration

import (
	"sort"
	"time"

	"github.com/ukydev/vehicle-quality/internal/models"
)

// Event is a timeline event with its timestamp parsed.
type Event struct {
	Type models.EventType
	At   time.Time
}

// Accumulation holds the historical control and rework totals of a vehicle.
type Accumulation struct {
	Control time.Duration
	Rework  time.Duration
	// Cutoff is the first waiting_for_shipping_info instant, if any.
	Cutoff *time.Time
	// Skipped counts events dropped for an unparseable timestamp.
	Skipped int
}

// Quality is the reported quality time. Rework is reported on its own and
// is not part of it.
func (a Accumulation) Quality() time.Duration {
	return a.Control
}

// SortEvents parses and orders the events of one vehicle ascending by
// timestamp. Events of other vehicles are ignored and events with a
// malformed timestamp are skipped and counted. The input is not modified.
func SortEvents(vehicleID string, events []models.TimelineEvent) ([]Event, int) {
	sorted := make([]Event, 0, len(events))
	skipped := 0
	for _, e := range events {
		if vehicleID != "" && e.VehicleID != "" && e.VehicleID != vehicleID {
			continue
		}
		at, err := ParseTimestamp(e.Timestamp)
		if err != nil {
			skipped++
			continue
		}
		sorted = append(sorted, Event{Type: e.EventType, At: at})
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].At.Before(sorted[j].At)
	})
	return sorted, skipped
}

// FindNextEventAfter returns the index of the first event of type t after
// index from, or -1. With a cutoff the search stops at the first event at or
// after it.
func FindNextEventAfter(events []Event, from int, t models.EventType, beforeCutoff *time.Time) int {
	for i := from + 1; i < len(events); i++ {
		if beforeCutoff != nil && !events[i].At.Before(*beforeCutoff) {
			return -1
		}
		if events[i].Type == t {
			return i
		}
	}
	return -1
}

func findLastEvent(events []Event, t models.EventType) int {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == t {
			return i
		}
	}
	return -1
}

// Accumulate sums control and rework time up to the first
// waiting_for_shipping_info event. A start with no matching end counts up to
// the cutoff when there is one and contributes nothing otherwise.
func Accumulate(v *models.Vehicle, events []models.TimelineEvent) Accumulation {
	sorted, skipped := SortEvents(vehicleID(v), events)
	acc := Accumulation{Skipped: skipped}

	for _, e := range sorted {
		if e.Type == models.EventWaitingForShippingInfo {
			cutoff := e.At
			acc.Cutoff = &cutoff
			break
		}
	}
	if acc.Cutoff != nil {
		sorted = eventsBefore(sorted, *acc.Cutoff)
	}

	acc.Control = sumIntervals(sorted, models.EventControlStart, models.EventControlEnd, acc.Cutoff)
	acc.Rework = sumIntervals(sorted, models.EventReworkStart, models.EventReworkEnd, acc.Cutoff)
	return acc
}

// AggregateTotals formats the accumulated totals with the default formatter.
func AggregateTotals(v *models.Vehicle, events []models.TimelineEvent) models.DurationTotals {
	return Default.Totals(Accumulate(v, events))
}

func eventsBefore(sorted []Event, cutoff time.Time) []Event {
	for i, e := range sorted {
		if !e.At.Before(cutoff) {
			return sorted[:i]
		}
	}
	return sorted
}

func sumIntervals(events []Event, start, end models.EventType, cutoff *time.Time) time.Duration {
	var total time.Duration
	for i, e := range events {
		if e.Type != start {
			continue
		}
		if j := FindNextEventAfter(events, i, end, cutoff); j >= 0 {
			endAt := events[j].At
			if cutoff != nil && !endAt.Before(*cutoff) {
				endAt = *cutoff
			}
			total += nonNegative(endAt.Sub(e.At))
		} else if cutoff != nil {
			total += nonNegative(cutoff.Sub(e.At))
		}
	}
	return total
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

func vehicleID(v *models.Vehicle) string {
	if v == nil {
		return ""
	}
	return v.IDHex()
}

package duration

import (
	"strings"
	"time"

	"github.com/ukydev/vehicle-quality/internal/models"
)

// Kind tells a real elapsed duration apart from the sentinel outcomes.
type Kind int

const (
	KindDuration Kind = iota
	KindNotApplicable
	KindNoData
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindNotApplicable:
		return "not_applicable"
	case KindNoData:
		return "no_data"
	case KindInvalid:
		return "invalid"
	default:
		return "duration"
	}
}

// Elapsed is the time a vehicle has spent in its current state.
type Elapsed struct {
	Kind     Kind
	Duration time.Duration
}

func (e Elapsed) String() string {
	return Default.Elapsed(e)
}

// ResolveElapsed computes how long the vehicle has been in its current state
// as of now. Shipped vehicles are not applicable. The start comes from the
// timeline for tracked states, then the open rework cycle for rework, then
// status_entered_at, then created_at.
func ResolveElapsed(v *models.Vehicle, events []models.TimelineEvent, now time.Time) Elapsed {
	if v == nil {
		return Elapsed{Kind: KindNoData}
	}
	status := models.NormalizeStatus(v.Status)
	if status == models.StatusShipped {
		return Elapsed{Kind: KindNotApplicable}
	}

	var (
		start time.Time
		end   = now
		found bool
	)

	if r, ok := rules[status]; ok {
		sorted, _ := SortEvents(v.IDHex(), events)
		if i := findLastEvent(sorted, r.start); i >= 0 {
			if j := FindNextEventAfter(sorted, i, r.end, nil); j >= 0 {
				if r.closedInterval {
					start, end, found = sorted[i].At, sorted[j].At, true
				}
			} else {
				start, found = sorted[i].At, true
			}
		}
		if !found && r.reworkCrossCheck {
			start, found = openReworkStart(v)
		}
	}

	if !found {
		for _, raw := range []string{v.StatusEnteredAt, v.CreatedAt} {
			if strings.TrimSpace(raw) == "" {
				continue
			}
			at, err := ParseTimestamp(raw)
			if err != nil {
				return Elapsed{Kind: KindInvalid}
			}
			start, found = at, true
			break
		}
	}
	if !found {
		return Elapsed{Kind: KindNoData}
	}

	return Elapsed{Kind: KindDuration, Duration: nonNegative(end.Sub(start))}
}

// CurrentElapsed formats ResolveElapsed with the default formatter.
func CurrentElapsed(v *models.Vehicle, events []models.TimelineEvent, now time.Time) string {
	return Default.Elapsed(ResolveElapsed(v, events, now))
}

// openReworkStart returns the start of the most recent open rework cycle.
func openReworkStart(v *models.Vehicle) (time.Time, bool) {
	for i := len(v.ReworkCycles) - 1; i >= 0; i-- {
		c := v.ReworkCycles[i]
		if c.EndedAt != "" {
			continue
		}
		if at, err := ParseTimestamp(c.StartedAt); err == nil {
			return at, true
		}
	}
	return time.Time{}, false
}

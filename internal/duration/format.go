package duration

import (
	"fmt"
	"strings"
	"time"

	"github.com/ukydev/vehicle-quality/internal/models"
)

// Sentinel figures. They never collide with a formatted duration.
const (
	NotApplicable = "N/A"
	NoData        = "-"
	InvalidDate   = "Geçersiz tarih"
)

// Locale holds the unit tokens used when rendering a duration.
type Locale struct {
	Day    string
	Hour   string
	Minute string
}

var (
	LocaleTR = Locale{Day: "gün", Hour: "sa", Minute: "dk"}
	LocaleEN = Locale{Day: "d", Hour: "h", Minute: "min"}
)

// LocaleByName returns the locale for "tr" or "en"; anything else falls back to Turkish.
func LocaleByName(name string) Locale {
	if strings.EqualFold(strings.TrimSpace(name), "en") {
		return LocaleEN
	}
	return LocaleTR
}

// Formatter renders durations and duration figures in one locale.
type Formatter struct {
	Locale Locale
}

// Default is the Turkish formatter used by the package-level helpers.
var Default = Formatter{Locale: LocaleTR}

// Format renders d as days, hours and minutes, largest unit first.
// Each unit is truncated, zero-valued leading units are dropped and
// anything under a minute renders as zero minutes.
func (f Formatter) Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Minute)
	days := total / (24 * 60)
	hours := (total % (24 * 60)) / 60
	minutes := total % 60

	parts := make([]string, 0, 3)
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", days, f.Locale.Day))
	}
	if days > 0 || hours > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", hours, f.Locale.Hour))
	}
	parts = append(parts, fmt.Sprintf("%d %s", minutes, f.Locale.Minute))
	return strings.Join(parts, " ")
}

// FormatMillis renders a millisecond count. Negative input renders as zero.
func (f Formatter) FormatMillis(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	return f.Format(time.Duration(ms) * time.Millisecond)
}

// Elapsed renders an elapsed figure, using the sentinel strings for non-durations.
func (f Formatter) Elapsed(e Elapsed) string {
	switch e.Kind {
	case KindNotApplicable:
		return NotApplicable
	case KindNoData:
		return NoData
	case KindInvalid:
		return InvalidDate
	default:
		return f.Format(e.Duration)
	}
}

// Totals renders an accumulation as the three reported figures.
func (f Formatter) Totals(a Accumulation) models.DurationTotals {
	return models.DurationTotals{
		ControlTime: f.Format(a.Control),
		ReworkTime:  f.Format(a.Rework),
		QualityTime: f.Format(a.Quality()),
	}
}

// Format renders d with the default formatter.
func Format(d time.Duration) string {
	return Default.Format(d)
}

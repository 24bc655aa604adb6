package duration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		in       time.Duration
		expected string
	}{
		{"zero", 0, "0 dk"},
		{"under a minute", 59 * time.Second, "0 dk"},
		{"minutes only", 42 * time.Minute, "42 dk"},
		{"hours and minutes", 2*time.Hour + 30*time.Minute, "2 sa 30 dk"},
		{"whole hours", 2 * time.Hour, "2 sa 0 dk"},
		{"days keep inner zero hours", 24*time.Hour + 5*time.Minute, "1 gün 0 sa 5 dk"},
		{"truncates seconds", 3*24*time.Hour + 4*time.Hour + 5*time.Minute + 59*time.Second, "3 gün 4 sa 5 dk"},
		{"negative clamps", -time.Hour, "0 dk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.in))
		})
	}
}

func TestFormatter_FormatMillis(t *testing.T) {
	assert.Equal(t, "1 gün 1 sa 1 dk", Default.FormatMillis(90061000))
	assert.Equal(t, "0 dk", Default.FormatMillis(-5))
	assert.Equal(t, "0 dk", Default.FormatMillis(59999))
	assert.Equal(t, "1 dk", Default.FormatMillis(60000))
}

func TestFormatter_Locale(t *testing.T) {
	en := Formatter{Locale: LocaleByName("EN")}
	assert.Equal(t, "1 d 2 h 3 min", en.Format(26*time.Hour+3*time.Minute))
	assert.Equal(t, LocaleTR, LocaleByName("tr"))
	assert.Equal(t, LocaleTR, LocaleByName("de"))
}

func TestFormatter_ElapsedSentinels(t *testing.T) {
	figures := map[string]string{
		"not applicable": Default.Elapsed(Elapsed{Kind: KindNotApplicable}),
		"no data":        Default.Elapsed(Elapsed{Kind: KindNoData}),
		"invalid":        Default.Elapsed(Elapsed{Kind: KindInvalid}),
		"zero":           Default.Elapsed(Elapsed{Kind: KindDuration}),
	}
	assert.Equal(t, NotApplicable, figures["not applicable"])
	assert.Equal(t, NoData, figures["no data"])
	assert.Equal(t, InvalidDate, figures["invalid"])
	assert.Equal(t, "0 dk", figures["zero"])

	seen := make(map[string]string)
	for name, f := range figures {
		if other, ok := seen[f]; ok {
			t.Errorf("%s and %s render the same figure %q", name, other, f)
		}
		seen[f] = name
	}
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	valid := []string{
		"2024-01-01T08:00:00Z",
		"2024-01-01T08:00:00.000Z",
		"2024-01-01T11:00:00+03:00",
		"2024-01-01 08:00:00+00",
		"2024-01-01 08:00:00.123456+00",
		"2024-01-01 08:00:00Z",
		"2024-01-01T08:00:00",
		"2024-01-01 08:00:00",
		" 2024-01-01T08:00:00Z ",
	}
	for _, raw := range valid {
		t.Run(raw, func(t *testing.T) {
			got, err := ParseTimestamp(raw)
			require.NoError(t, err)
			assert.True(t, want.Equal(got.Truncate(time.Second)), "got %v", got)
		})
	}

	day, err := ParseTimestamp("2024-01-01")
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Equal(day))

	_, err = ParseTimestamp("")
	assert.ErrorIs(t, err, ErrEmptyTimestamp)

	_, err = ParseTimestamp("yesterday at noon")
	assert.ErrorIs(t, err, ErrMalformedTimestamp)

	_, err = ParseTimestamp("2024-13-45T08:00:00Z")
	assert.ErrorIs(t, err, ErrMalformedTimestamp)
}

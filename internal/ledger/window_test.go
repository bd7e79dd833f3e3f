package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

// -- Windows tests --

func TestWindows_MondayWeekUTC(t *testing.T) {
	cal := NewCalendar(time.UTC, time.Monday)
	// Thursday 2025-03-13 15:04 UTC
	now := time.Date(2025, 3, 13, 15, 4, 0, 0, time.UTC)

	w := cal.Windows(now)

	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), w.CurrentWeek.Start)
	assert.Equal(t, time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC), w.CurrentWeek.End)
	assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), w.LastWeek.Start)
	assert.Equal(t, w.CurrentWeek.Start, w.LastWeek.End)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), w.CurrentMonth.Start)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), w.CurrentMonth.End)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), w.LastMonth.Start)
	assert.Equal(t, w.CurrentMonth.Start, w.LastMonth.End)
}

func TestWindows_SundayWeekStart(t *testing.T) {
	cal := NewCalendar(time.UTC, time.Sunday)
	now := time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC) // a Sunday

	w := cal.Windows(now)

	assert.Equal(t, now, w.CurrentWeek.Start)
	assert.True(t, w.CurrentWeek.Contains(now))
	assert.False(t, w.LastWeek.Contains(now))
}

func TestWindows_JanuaryRollsBackToDecember(t *testing.T) {
	cal := NewCalendar(time.UTC, time.Monday)
	now := time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC)

	w := cal.Windows(now)

	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), w.LastMonth.Start)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), w.LastMonth.End)
	assert.Equal(t, time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), w.CurrentWeek.Start)
}

func TestWindows_UsesReferenceTimezone(t *testing.T) {
	paris := mustLocation(t, "Europe/Paris")
	cal := NewCalendar(paris, time.Monday)
	// 23:30 UTC on Sunday 2025-03-09 is already Monday 00:30 in Paris.
	now := time.Date(2025, 3, 9, 23, 30, 0, 0, time.UTC)

	w := cal.Windows(now)

	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, paris), w.CurrentWeek.Start)
}

func TestWindows_AcrossDSTKeepsLocalMidnight(t *testing.T) {
	paris := mustLocation(t, "Europe/Paris")
	cal := NewCalendar(paris, time.Monday)
	// DST starts on 2025-03-30 in Paris.
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, paris)

	w := cal.Windows(now)

	assert.Equal(t, time.Date(2025, 3, 24, 0, 0, 0, 0, paris), w.LastWeek.Start)
	assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, paris), w.LastWeek.End)
	assert.Equal(t, 167*time.Hour, w.LastWeek.End.Sub(w.LastWeek.Start))
}

func TestWindows_PureFunctionOfNow(t *testing.T) {
	cal := NewCalendar(time.UTC, time.Monday)
	now := time.Date(2025, 6, 18, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, cal.Windows(now), cal.Windows(now))
}

// -- Window tests --

func TestWindow_ContainsIsHalfOpen(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	w := Window{Start: start, End: end}

	assert.True(t, w.Contains(start))
	assert.True(t, w.Contains(end.Add(-time.Nanosecond)))
	assert.False(t, w.Contains(end))
	assert.False(t, w.Contains(start.Add(-time.Nanosecond)))
}

func TestWindow_UnboundedSides(t *testing.T) {
	pivot := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, Window{End: pivot}.Contains(pivot.AddDate(-10, 0, 0)))
	assert.True(t, Window{Start: pivot}.Contains(pivot.AddDate(10, 0, 0)))
	assert.True(t, Window{}.Contains(pivot))
}

func TestWindow_RequireBounded(t *testing.T) {
	pivot := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, Window{Start: pivot, End: pivot}.RequireBounded())
	assert.ErrorIs(t, Window{Start: pivot}.RequireBounded(), ErrInvalidRange)
	assert.ErrorIs(t, Window{End: pivot}.RequireBounded(), ErrInvalidRange)
}

// -- ParseRange tests --

func TestParseRange(t *testing.T) {
	cal := NewCalendar(time.UTC, time.Monday)

	tests := []struct {
		name    string
		from    string
		to      string
		want    Window
		wantErr bool
	}{
		{
			name: "both empty is unbounded",
			want: Window{},
		},
		{
			name: "date only bounds cover the last day",
			from: "2025-03-01",
			to:   "2025-03-31",
			want: Window{
				Start: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
				End:   time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
			},
		},
		{
			name: "rfc3339 bounds are used verbatim",
			from: "2025-03-01T10:00:00Z",
			to:   "2025-03-01T12:00:00Z",
			want: Window{
				Start: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
				End:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
			},
		},
		{
			name: "only from",
			from: "2025-03-01",
			want: Window{Start: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		},
		{name: "garbage from", from: "yesterday", wantErr: true},
		{name: "garbage to", from: "2025-03-01", to: "03/31/2025", wantErr: true},
		{name: "inverted", from: "2025-04-01", to: "2025-03-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cal.ParseRange(tt.from, tt.to)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidRange), "got %v", err)
				return
			}
			assert.NoError(t, err)
			assert.True(t, tt.want.Start.Equal(got.Start), "start %v != %v", tt.want.Start, got.Start)
			assert.True(t, tt.want.End.Equal(got.End), "end %v != %v", tt.want.End, got.End)
		})
	}
}

func TestParseRange_DatesUseReferenceTimezone(t *testing.T) {
	paris := mustLocation(t, "Europe/Paris")
	cal := NewCalendar(paris, time.Monday)

	w, err := cal.ParseRange("2025-03-01", "2025-03-01")

	assert.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, paris), w.Start)
	assert.Equal(t, time.Date(2025, 3, 2, 0, 0, 0, 0, paris), w.End)
}

func TestParseRange_UpperBoundInclusiveness(t *testing.T) {
	cal := NewCalendar(time.UTC, time.Monday)

	byDate, err := cal.ParseRange("2024-03-01", "2024-03-01")
	assert.NoError(t, err)
	assert.True(t, byDate.Contains(time.Date(2024, 3, 1, 23, 59, 59, 0, time.UTC)))

	byInstant, err := cal.ParseRange("2024-03-01", "2024-03-01T12:00:00Z")
	assert.NoError(t, err)
	assert.True(t, byInstant.Contains(time.Date(2024, 3, 1, 11, 59, 59, 0, time.UTC)))
	assert.False(t, byInstant.Contains(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))
}

func TestDayKey(t *testing.T) {
	tokyo := mustLocation(t, "Asia/Tokyo")
	cal := NewCalendar(tokyo, time.Monday)

	assert.Equal(t, "2025-03-02", cal.DayKey(time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)))
}

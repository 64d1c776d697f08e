package loyalty

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddMonthsClamped(t *testing.T) {
	cases := []struct {
		name   string
		from   time.Time
		months int
		want   time.Time
	}{
		{"plain month", date(2026, time.March, 15), 1, date(2026, time.April, 15)},
		{"jan 31 clamps to feb 28", date(2026, time.January, 31), 1, date(2026, time.February, 28)},
		{"jan 31 leap year clamps to feb 29", date(2024, time.January, 31), 1, date(2024, time.February, 29)},
		{"may 31 clamps to jun 30", date(2026, time.May, 31), 1, date(2026, time.June, 30)},
		{"year rollover", date(2026, time.November, 10), 3, date(2027, time.February, 10)},
		{"twelve months", date(2026, time.August, 29), 12, date(2027, time.August, 29)},
		{"negative month", date(2026, time.March, 31), -1, date(2026, time.February, 28)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, AddMonthsClamped(tc.from, tc.months))
		})
	}
}

func TestAddMonthsClampedKeepsClock(t *testing.T) {
	from := time.Date(2026, time.January, 31, 14, 30, 45, 0, time.UTC)
	got := AddMonthsClamped(from, 1)
	require.Equal(t, time.Date(2026, time.February, 28, 14, 30, 45, 0, time.UTC), got)
}

func TestDaysInMonth(t *testing.T) {
	require.Equal(t, 31, DaysInMonth(2026, time.January))
	require.Equal(t, 28, DaysInMonth(2026, time.February))
	require.Equal(t, 29, DaysInMonth(2024, time.February))
	require.Equal(t, 30, DaysInMonth(2026, time.April))
	require.Equal(t, 31, DaysInMonth(2026, time.December))
}

func TestSameCalendarDay(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	a := time.Date(2026, time.June, 2, 1, 0, 0, 0, time.UTC)  // Jun 1, 21:00 in New York
	b := time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC) // Jun 1, 08:00 in New York

	require.False(t, SameCalendarDay(a, b, time.UTC))
	require.True(t, SameCalendarDay(a, b, ny))
}

func TestMidnight(t *testing.T) {
	loc := time.UTC
	got := Midnight(time.Date(2026, time.June, 1, 17, 45, 12, 99, loc), loc)
	require.Equal(t, date(2026, time.June, 1), got)
}

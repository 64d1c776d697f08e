package loyalty

import "time"

// AddMonthsClamped adds calendar months clamping to the end of the
// month: Jan 31 + 1 month = Feb 28 (29 in leap years), never Mar 2/3.
// time.AddDate would roll over.
func AddMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	ny, nm := normalizeMonth(y, int(m)+months)
	if last := DaysInMonth(ny, time.Month(nm)); d > last {
		d = last
	}
	return time.Date(ny, time.Month(nm), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func normalizeMonth(year, month int) (int, int) {
	for month > 12 {
		month -= 12
		year++
	}
	for month < 1 {
		month += 12
		year--
	}
	return year, month
}

// SameCalendarDay compares dates in the given location.
func SameCalendarDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// Midnight truncates to the start of day in the given location.
func Midnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

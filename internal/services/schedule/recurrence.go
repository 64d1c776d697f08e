package schedule

import (
	"fmt"
	"time"

	model "github.com/UmarEjaz/AestheTech-sub001/internal/models"
	loyalty "github.com/UmarEjaz/AestheTech-sub001/internal/services/loyalty"
)

const (
	defaultHorizonMonths  = 3
	defaultMaxOccurrences = 100

	// bound on candidate dates examined, so a config whose dates are all
	// excepted or past cannot loop forever
	maxScan = 5000
)

type SeriesConfig struct {
	Pattern model.RecurrencePattern

	Start time.Time // first candidate instant (day + time of day, salon timezone)

	DayOfWeek    time.Weekday   // WEEKLY/BIWEEKLY/CUSTOM_WEEKS
	CustomWeeks  int            // CUSTOM_WEEKS step
	SpecificDays []time.Weekday // SPECIFIC_DAYS
	DayOfMonth   int            // MONTHLY
	NthWeek      int            // NTH_WEEKDAY, 1..4 or NthWeekLast

	EndType model.SeriesEndType
	Count   int       // AFTER_COUNT
	Until   time.Time // BY_DATE, inclusive

	Exceptions []time.Time

	HorizonMonths  int // NEVER bound, 0 = default
	MaxOccurrences int // hard cap on all paths, 0 = default
}

// GenerateOccurrences produces the ordered future occurrence instants of
// a repeat pattern. Past dates and exception dates are filtered out and
// do not count towards AFTER_COUNT: "5 occurrences" always means 5
// future, non-skipped dates. NEVER is bounded by a rolling horizon, and
// every path is bounded by a hard cap.
func GenerateOccurrences(cfg SeriesConfig, now time.Time) ([]time.Time, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	loc := cfg.Start.Location()

	limit := cfg.MaxOccurrences
	if limit <= 0 {
		limit = defaultMaxOccurrences
	}

	var horizon time.Time
	if cfg.EndType == model.EndNever {
		months := cfg.HorizonMonths
		if months <= 0 {
			months = defaultHorizonMonths
		}
		anchor := cfg.Start
		if now.After(anchor) {
			anchor = now
		}
		horizon = loyalty.AddMonthsClamped(anchor, months)
	}

	exceptions := make(map[string]bool, len(cfg.Exceptions))
	for _, d := range cfg.Exceptions {
		exceptions[dayKey(d.In(loc))] = true
	}

	var out []time.Time
	next := firstCandidate(cfg, loc)
	for scanned := 0; scanned < maxScan; scanned++ {
		candidate, ok := next()
		if !ok {
			break
		}
		switch cfg.EndType {
		case model.EndNever:
			if candidate.After(horizon) {
				return out, nil
			}
		case model.EndByDate:
			if loyalty.Midnight(candidate, loc).After(loyalty.Midnight(cfg.Until, loc)) {
				return out, nil
			}
		}
		if !candidate.After(now) {
			continue // past dates are filtered, not counted
		}
		if exceptions[dayKey(candidate)] {
			continue // excepted dates are filtered, not counted
		}
		out = append(out, candidate)
		if cfg.EndType == model.EndAfterCount && len(out) == cfg.Count {
			return out, nil
		}
		if len(out) == limit {
			return out, nil
		}
	}
	return out, nil
}

func validateConfig(cfg SeriesConfig) error {
	if cfg.Start.IsZero() {
		return &model.ValidationError{Reason: "series start is required"}
	}
	switch cfg.Pattern {
	case model.PatternDaily, model.PatternWeekly, model.PatternBiweekly:
	case model.PatternCustomWeeks:
		if cfg.CustomWeeks < 1 {
			return &model.ValidationError{Reason: "custom interval must be at least one week"}
		}
	case model.PatternSpecificDays:
		if len(cfg.SpecificDays) == 0 {
			return &model.ValidationError{Reason: "specific-days pattern needs at least one weekday"}
		}
	case model.PatternMonthly:
		if cfg.DayOfMonth < 1 || cfg.DayOfMonth > 31 {
			return &model.ValidationError{Reason: "day of month must be 1..31"}
		}
	case model.PatternNthWeekday:
		if cfg.NthWeek < 1 || cfg.NthWeek > model.NthWeekLast {
			return &model.ValidationError{Reason: "nth week must be 1..5"}
		}
	default:
		return &model.ValidationError{Reason: fmt.Sprintf("unknown pattern %q", cfg.Pattern)}
	}
	switch cfg.EndType {
	case model.EndNever:
	case model.EndAfterCount:
		if cfg.Count < 1 {
			return &model.ValidationError{Reason: "occurrence count must be positive"}
		}
	case model.EndByDate:
		if cfg.Until.IsZero() {
			return &model.ValidationError{Reason: "end date is required"}
		}
		if cfg.Until.Before(cfg.Start) {
			return &model.ValidationError{Reason: "end date is before the series start"}
		}
	default:
		return &model.ValidationError{Reason: fmt.Sprintf("unknown end type %q", cfg.EndType)}
	}
	return nil
}

// firstCandidate returns an iterator over candidate instants in
// ascending order, before past/exception filtering.
func firstCandidate(cfg SeriesConfig, loc *time.Location) func() (time.Time, bool) {
	start := cfg.Start.In(loc)
	tod := timeOfDay(start)

	switch cfg.Pattern {
	case model.PatternDaily:
		return stepDays(start, 1)

	case model.PatternWeekly:
		return stepWeeks(start, tod, cfg.DayOfWeek, 1, loc)

	case model.PatternBiweekly:
		return stepWeeks(start, tod, cfg.DayOfWeek, 2, loc)

	case model.PatternCustomWeeks:
		return stepWeeks(start, tod, cfg.DayOfWeek, cfg.CustomWeeks, loc)

	case model.PatternSpecificDays:
		allowed := make(map[time.Weekday]bool, len(cfg.SpecificDays))
		for _, d := range cfg.SpecificDays {
			allowed[d] = true
		}
		inner := stepDays(start, 1)
		return func() (time.Time, bool) {
			for {
				c, ok := inner()
				if !ok {
					return time.Time{}, false
				}
				if allowed[c.Weekday()] {
					return c, true
				}
			}
		}

	case model.PatternMonthly:
		y, m := start.Year(), start.Month()
		first := true
		return func() (time.Time, bool) {
			if !first {
				y, m = nextMonth(y, m)
			}
			first = false
			d := cfg.DayOfMonth
			if last := loyalty.DaysInMonth(y, m); d > last {
				d = last // Jan 31 clamps to Feb 28/29
			}
			c := atTime(y, m, d, tod, loc)
			// the first month may fall before the start day
			for c.Before(start) {
				y, m = nextMonth(y, m)
				d = cfg.DayOfMonth
				if last := loyalty.DaysInMonth(y, m); d > last {
					d = last
				}
				c = atTime(y, m, d, tod, loc)
			}
			return c, true
		}

	case model.PatternNthWeekday:
		y, m := start.Year(), start.Month()
		first := true
		return func() (time.Time, bool) {
			for {
				if !first {
					y, m = nextMonth(y, m)
				}
				first = false
				d, ok := nthWeekdayOfMonth(y, m, cfg.DayOfWeek, cfg.NthWeek)
				if !ok {
					continue
				}
				c := atTime(y, m, d, tod, loc)
				if c.Before(start) {
					continue
				}
				return c, true
			}
		}
	}
	return func() (time.Time, bool) { return time.Time{}, false }
}

// nthWeekdayOfMonth enumerates every matching weekday in the month and
// indexes it; nth=NthWeekLast means the last one.
func nthWeekdayOfMonth(year int, month time.Month, weekday time.Weekday, nth int) (day int, ok bool) {
	var days []int
	last := loyalty.DaysInMonth(year, month)
	for d := 1; d <= last; d++ {
		if time.Date(year, month, d, 0, 0, 0, 0, time.UTC).Weekday() == weekday {
			days = append(days, d)
		}
	}
	if nth == model.NthWeekLast {
		return days[len(days)-1], true
	}
	if nth > len(days) {
		return 0, false // e.g. no 5th Tuesday this month
	}
	return days[nth-1], true
}

func stepDays(start time.Time, step int) func() (time.Time, bool) {
	cur := start
	first := true
	return func() (time.Time, bool) {
		if !first {
			cur = cur.AddDate(0, 0, step)
		}
		first = false
		return cur, true
	}
}

func stepWeeks(start time.Time, tod time.Duration, weekday time.Weekday, weeks int, loc *time.Location) func() (time.Time, bool) {
	// anchor to the configured weekday on or after the start day
	anchor := loyalty.Midnight(start, loc).Add(tod)
	for anchor.Weekday() != weekday || anchor.Before(start) {
		anchor = anchor.AddDate(0, 0, 1)
	}
	return stepDays(anchor, 7*weeks)
}

func timeOfDay(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute
}

func atTime(year int, month time.Month, day int, tod time.Duration, loc *time.Location) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, loc).Add(tod)
}

func nextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

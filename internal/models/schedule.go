package models

import (
	"time"

	"github.com/google/uuid"
)

// Repeat patterns
type RecurrencePattern string

const (
	PatternDaily        RecurrencePattern = "DAILY"
	PatternWeekly       RecurrencePattern = "WEEKLY"
	PatternBiweekly     RecurrencePattern = "BIWEEKLY"
	PatternCustomWeeks  RecurrencePattern = "CUSTOM_WEEKS"
	PatternSpecificDays RecurrencePattern = "SPECIFIC_DAYS"
	PatternMonthly      RecurrencePattern = "MONTHLY"
	PatternNthWeekday   RecurrencePattern = "NTH_WEEKDAY"
)

// End conditions
type SeriesEndType string

const (
	EndNever      SeriesEndType = "NEVER"
	EndAfterCount SeriesEndType = "AFTER_COUNT"
	EndByDate     SeriesEndType = "BY_DATE"
)

// Sentinel for "last occurrence of the weekday in the month"
const NthWeekLast = 5

// Recurring series template. Appointments are materialized copies and
// stay editable on their own; the series only carries the pattern.
type RecurringSeries struct {
	UUID     uuid.UUID
	ClientID string
	StaffID  string
	Pattern  RecurrencePattern

	// pattern parameters
	DayOfWeek    time.Weekday
	CustomWeeks  int
	SpecificDays []time.Weekday
	DayOfMonth   int
	NthWeek      int // 1..4, or NthWeekLast

	StartDate       time.Time     // first candidate day, midnight in salon timezone
	TimeOfDay       time.Duration // offset from midnight, salon timezone
	DurationMinutes int

	EndType SeriesEndType
	Count   int
	Until   time.Time

	ExceptionDates []time.Time // dates skipped, midnight in salon timezone
	CreatedAt      time.Time
}

// One concrete appointment
type Appointment struct {
	UUID      uuid.UUID
	Series    uuid.UUID // uuid.Nil for one-off appointments
	ClientID  string
	StaffID   string
	StartTime time.Time
	EndTime   time.Time
	Cancelled bool
}

// Conflict of a generated occurrence with an existing appointment
type Conflict struct {
	Date         time.Time
	Reason       string
	Alternatives []time.Time
}

// Per-date conflict resolutions
type ResolutionAction string

const (
	ResolutionAccept ResolutionAction = "ACCEPT"
	ResolutionSkip   ResolutionAction = "SKIP"
)

type ConflictResolution struct {
	Date   time.Time
	Action ResolutionAction
	Slot   time.Time // accepted alternative start, ACCEPT only
}

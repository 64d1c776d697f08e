package schedule

import (
	"context"
	"time"

	interf "github.com/UmarEjaz/AestheTech-sub001/internal/interfaces"
	model "github.com/UmarEjaz/AestheTech-sub001/internal/models"
	loyalty "github.com/UmarEjaz/AestheTech-sub001/internal/services/loyalty"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ScheduleService struct {
	logger       *zap.Logger
	db           interf.ScheduleStorage
	availability interf.AvailabilityLookup
	settings     interf.SettingsStorage
	clock        interf.Clock
}

func NewScheduleService(logger *zap.Logger, db interf.ScheduleStorage, availability interf.AvailabilityLookup, settings interf.SettingsStorage, clock interf.Clock) *ScheduleService {
	return &ScheduleService{logger, db, availability, settings, clock}
}

type SeriesPreview struct {
	Occurrences []time.Time      `json:"occurrences"`
	Conflicts   []model.Conflict `json:"conflicts"`
}

// PreviewSeries generates the occurrences a series would materialize and
// the conflicts the caller has to resolve before creating it.
func (s *ScheduleService) PreviewSeries(ctx context.Context, series model.RecurringSeries) (SeriesPreview, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return SeriesPreview{}, err
	}
	now := s.clock.Now().In(settings.Location())

	occurrences, err := GenerateOccurrences(seriesConfig(series, settings), now)
	if err != nil {
		return SeriesPreview{}, err
	}
	conflicts, err := s.DetectConflicts(ctx, occurrences, series.StaffID, seriesDuration(series))
	if err != nil {
		return SeriesPreview{}, err
	}
	return SeriesPreview{Occurrences: occurrences, Conflicts: conflicts}, nil
}

// CreateSeries persists a series and its materialized appointments. Every
// conflicted date needs an explicit resolution: an accepted alternative
// slot replaces the occurrence, a skip adds the date to the series'
// exception list. Unresolved conflicts block creation.
func (s *ScheduleService) CreateSeries(ctx context.Context, series model.RecurringSeries, resolutions []model.ConflictResolution) (model.RecurringSeries, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return model.RecurringSeries{}, err
	}
	loc := settings.Location()
	now := s.clock.Now().In(loc)

	occurrences, err := GenerateOccurrences(seriesConfig(series, settings), now)
	if err != nil {
		return model.RecurringSeries{}, err
	}
	conflicts, err := s.DetectConflicts(ctx, occurrences, series.StaffID, seriesDuration(series))
	if err != nil {
		return model.RecurringSeries{}, err
	}

	resolved := make(map[string]model.ConflictResolution, len(resolutions))
	for _, r := range resolutions {
		resolved[dayKey(r.Date.In(loc))] = r
	}
	for _, c := range conflicts {
		r, ok := resolved[dayKey(c.Date.In(loc))]
		if !ok {
			return model.RecurringSeries{}, &model.ValidationError{
				Reason: "unresolved conflict on " + c.Date.In(loc).Format("2006-01-02"),
			}
		}
		if r.Action == model.ResolutionAccept && r.Slot.IsZero() {
			return model.RecurringSeries{}, &model.ValidationError{
				Reason: "accepted resolution without a slot on " + c.Date.In(loc).Format("2006-01-02"),
			}
		}
	}

	if series.UUID == uuid.Nil {
		series.UUID = uuid.New()
	}
	series.CreatedAt = now

	duration := seriesDuration(series)
	appts := make([]model.Appointment, 0, len(occurrences))
	for _, occ := range occurrences {
		start := occ
		if r, ok := resolved[dayKey(occ.In(loc))]; ok {
			if r.Action == model.ResolutionSkip {
				// kept out of the materialized set and excluded from
				// any future regeneration
				series.ExceptionDates = append(series.ExceptionDates, loyalty.Midnight(occ, loc))
				continue
			}
			start = r.Slot
		}
		appts = append(appts, model.Appointment{
			UUID:      uuid.New(),
			Series:    series.UUID,
			ClientID:  series.ClientID,
			StaffID:   series.StaffID,
			StartTime: start,
			EndTime:   start.Add(duration),
		})
	}

	if err := s.db.CreateSeries(ctx, series, appts); err != nil {
		return model.RecurringSeries{}, err
	}
	return series, nil
}

func (s *ScheduleService) GetSeries(ctx context.Context, seriesId uuid.UUID) (model.RecurringSeries, error) {
	return s.db.GetSeries(ctx, seriesId)
}

func seriesConfig(series model.RecurringSeries, settings model.Settings) SeriesConfig {
	loc := settings.Location()
	var start time.Time
	if !series.StartDate.IsZero() {
		start = loyalty.Midnight(series.StartDate, loc).Add(series.TimeOfDay)
	}
	return SeriesConfig{
		Pattern:       series.Pattern,
		Start:         start,
		DayOfWeek:     series.DayOfWeek,
		CustomWeeks:   series.CustomWeeks,
		SpecificDays:  series.SpecificDays,
		DayOfMonth:    series.DayOfMonth,
		NthWeek:       series.NthWeek,
		EndType:       series.EndType,
		Count:         series.Count,
		Until:         series.Until,
		Exceptions:    series.ExceptionDates,
		HorizonMonths: settings.NeverEndHorizonMonths,
	}
}

func seriesDuration(series model.RecurringSeries) time.Duration {
	if series.DurationMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(series.DurationMinutes) * time.Minute
}

func (s *ScheduleService) Log(err error) {
	s.logger.Error(err.Error())
}

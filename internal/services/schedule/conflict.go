package schedule

import (
	"context"
	"fmt"
	"time"

	model "github.com/UmarEjaz/AestheTech-sub001/internal/models"
	"go.uber.org/zap"
)

// DetectConflicts checks each occurrence for an overlapping appointment
// of the same staff member. On conflict it surfaces the date, a readable
// reason, and alternative slots from the availability lookup.
func (s *ScheduleService) DetectConflicts(ctx context.Context, occurrences []time.Time, staffId string, duration time.Duration) ([]model.Conflict, error) {
	if len(occurrences) == 0 {
		return nil, nil
	}
	from, to := occurrences[0], occurrences[0]
	for _, o := range occurrences {
		if o.Before(from) {
			from = o
		}
		if o.After(to) {
			to = o
		}
	}
	existing, err := s.db.AppointmentsInRange(ctx, staffId, from, to.Add(duration))
	if err != nil {
		return nil, err
	}

	var conflicts []model.Conflict
	for _, occ := range occurrences {
		end := occ.Add(duration)
		for _, appt := range existing {
			if appt.Cancelled {
				continue
			}
			if occ.Before(appt.EndTime) && end.After(appt.StartTime) {
				conflicts = append(conflicts, model.Conflict{
					Date: occ,
					Reason: fmt.Sprintf("overlaps appointment from %s to %s",
						appt.StartTime.Format("15:04"), appt.EndTime.Format("15:04")),
					Alternatives: s.alternatives(ctx, staffId, occ, duration),
				})
				break
			}
		}
	}
	return conflicts, nil
}

// alternatives are best effort: a failing availability lookup must not
// block conflict reporting.
func (s *ScheduleService) alternatives(ctx context.Context, staffId string, day time.Time, duration time.Duration) []time.Time {
	if s.availability == nil {
		return nil
	}
	slots, err := s.availability.FreeSlots(ctx, staffId, day, duration)
	if err != nil {
		s.logger.Error("availability lookup",
			zap.String("staff", staffId),
			zap.Error(err),
		)
		return nil
	}
	return slots
}

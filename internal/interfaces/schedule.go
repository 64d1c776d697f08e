package interfaces

import (
	"context"
	"time"

	model "github.com/UmarEjaz/AestheTech-sub001/internal/models"
	"github.com/google/uuid"
)

//go:generate mockgen -destination=./../services/schedule/mock_schedule_test.go -package=schedule . ScheduleStorage,AvailabilityLookup

type ScheduleStorage interface {
	AppointmentsInRange(ctx context.Context, staffId string, from time.Time, to time.Time) ([]model.Appointment, error)
	CreateSeries(ctx context.Context, series model.RecurringSeries, appts []model.Appointment) error
	GetSeries(ctx context.Context, seriesId uuid.UUID) (model.RecurringSeries, error)
}

// AvailabilityLookup proposes free slots for a staff member on a given
// day. Availability itself lives outside this subsystem.
type AvailabilityLookup interface {
	FreeSlots(ctx context.Context, staffId string, day time.Time, duration time.Duration) ([]time.Time, error)
}

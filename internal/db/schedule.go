package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	model "github.com/UmarEjaz/AestheTech-sub001/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ScheduleDB struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewScheduleDB(logger *zap.Logger, pool *pgxpool.Pool) *ScheduleDB {
	return &ScheduleDB{pool, logger}
}

func (s *ScheduleDB) AppointmentsInRange(ctx context.Context, staffId string, from time.Time, to time.Time) ([]model.Appointment, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	sql, args, err := sq.Select("uuid", "series", "clientid", "staffid", "starttime", "endtime", "cancelled").
		From("appointments").
		Where(sq.Eq{"staffid": staffId}).
		Where(sq.Lt{"starttime": to}).
		Where(sq.Gt{"endtime": from}).
		OrderBy("starttime").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		s.logger.Error("SQL error",
			zap.Error(err),
			zap.String("query", sql),
			zap.Any("args", args),
		)
		return nil, err
	}
	defer rows.Close()

	var appts []model.Appointment
	for rows.Next() {
		var appt model.Appointment
		var id, series pgtype.UUID
		if err := rows.Scan(&id, &series, &appt.ClientID, &appt.StaffID, &appt.StartTime, &appt.EndTime, &appt.Cancelled); err != nil {
			return nil, err
		}
		appt.UUID, _ = uuid.FromBytes(id.Bytes[:])
		if series.Status == pgtype.Present {
			appt.Series, _ = uuid.FromBytes(series.Bytes[:])
		}
		appts = append(appts, appt)
	}
	return appts, rows.Err()
}

// CreateSeries persists the series and all materialized appointments in
// one transaction: a half-created series is never visible.
func (s *ScheduleDB) CreateSeries(ctx context.Context, series model.RecurringSeries, appts []model.Appointment) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback(ctx)
		}
	}()

	days := make([]int32, len(series.SpecificDays))
	for i, d := range series.SpecificDays {
		days[i] = int32(d)
	}

	sql, args, err := sq.Insert("series").
		Columns("uuid", "clientid", "staffid", "pattern", "dayofweek", "customweeks", "specificdays",
			"dayofmonth", "nthweek", "startdate", "timeofday", "durationminutes",
			"endtype", "cnt", "until", "exceptions", "createdat").
		Values(series.UUID, series.ClientID, series.StaffID, series.Pattern, int32(series.DayOfWeek),
			series.CustomWeeks, days, series.DayOfMonth, series.NthWeek, series.StartDate,
			int64(series.TimeOfDay/time.Minute), series.DurationMinutes,
			series.EndType, series.Count, nullableTime(series.Until), series.ExceptionDates, series.CreatedAt).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		s.logger.Error("SQL error",
			zap.Error(err),
			zap.String("query", sql),
			zap.Any("args", args),
		)
		return err
	}

	for _, appt := range appts {
		sql, args, err := sq.Insert("appointments").
			Columns("uuid", "series", "clientid", "staffid", "starttime", "endtime", "cancelled").
			Values(appt.UUID, appt.Series, appt.ClientID, appt.StaffID, appt.StartTime, appt.EndTime, appt.Cancelled).
			PlaceholderFormat(sq.Dollar).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			s.logger.Error("SQL error",
				zap.Error(err),
				zap.String("query", sql),
				zap.Any("args", args),
			)
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *ScheduleDB) GetSeries(ctx context.Context, seriesId uuid.UUID) (model.RecurringSeries, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return model.RecurringSeries{}, err
	}
	defer conn.Release()

	var series model.RecurringSeries
	var id pgtype.UUID
	var dayOfWeek int32
	var days []int32
	var timeOfDay int64
	var until pgtype.Timestamptz
	row := conn.QueryRow(ctx,
		`SELECT uuid, clientid, staffid, pattern, dayofweek, customweeks, specificdays,
		        dayofmonth, nthweek, startdate, timeofday, durationminutes,
		        endtype, cnt, until, exceptions, createdat
		 FROM series WHERE uuid = $1`, seriesId)
	err = row.Scan(&id, &series.ClientID, &series.StaffID, &series.Pattern, &dayOfWeek, &series.CustomWeeks, &days,
		&series.DayOfMonth, &series.NthWeek, &series.StartDate, &timeOfDay, &series.DurationMinutes,
		&series.EndType, &series.Count, &until, &series.ExceptionDates, &series.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return series, fmt.Errorf("series %w", model.ErrNotFound)
		}
		return series, err
	}
	series.UUID, _ = uuid.FromBytes(id.Bytes[:])
	series.DayOfWeek = time.Weekday(dayOfWeek)
	series.TimeOfDay = time.Duration(timeOfDay) * time.Minute
	series.SpecificDays = make([]time.Weekday, len(days))
	for i, d := range days {
		series.SpecificDays[i] = time.Weekday(d)
	}
	if until.Status == pgtype.Present {
		series.Until = until.Time
	}
	return series, nil
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	model "github.com/UmarEjaz/AestheTech-sub001/internal/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSeriesPayloadToSeries(t *testing.T) {
	p := SeriesPayload{
		ClientID:        "client-1",
		StaffID:         "staff-1",
		Pattern:         model.PatternWeekly,
		DayOfWeek:       1,
		StartDate:       "2026-06-01",
		TimeOfDay:       "10:30",
		DurationMinutes: 45,
		EndType:         model.EndAfterCount,
		Count:           3,
		ExceptionDates:  []string{"2026-06-08"},
	}
	series, err := p.toSeries()
	require.NoError(t, err)
	require.Equal(t, time.Monday, series.DayOfWeek)
	require.Equal(t, time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC), series.StartDate)
	require.Equal(t, 10*time.Hour+30*time.Minute, series.TimeOfDay)
	require.Len(t, series.ExceptionDates, 1)

	p.TimeOfDay = "25:99"
	_, err = p.toSeries()
	require.Error(t, err)

	p.TimeOfDay = "10:30"
	p.StartDate = "01.06.2026"
	_, err = p.toSeries()
	require.Error(t, err)
}

func TestWriteBusinessError(t *testing.T) {
	h := &SalonHandler{logger: zap.NewNop()}

	cases := []struct {
		name string
		err  error
		code int
	}{
		{"validation", &model.ValidationError{Reason: "bad input"}, http.StatusBadRequest},
		{"consistency", &model.ConsistencyError{Reason: "stale"}, http.StatusConflict},
		{"insufficient points", errors.Join(errors.New("redeem 100 with balance 50"), model.ErrInsufficientPoints), http.StatusBadRequest},
		{"not found", model.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", errors.Join(errors.New("account"), model.ErrNotFound), http.StatusNotFound},
		{"anything else", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.writeBusinessError(rec, "test", tc.err)
			require.Equal(t, tc.code, rec.Code)
		})
	}
}

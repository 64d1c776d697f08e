package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	interf "github.com/UmarEjaz/AestheTech-sub001/internal/interfaces"
	model "github.com/UmarEjaz/AestheTech-sub001/internal/models"
	loyalty "github.com/UmarEjaz/AestheTech-sub001/internal/services/loyalty"
	schedule "github.com/UmarEjaz/AestheTech-sub001/internal/services/schedule"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type SalonHandler struct {
	router   *mux.Router
	loyalty  *loyalty.LoyaltyService
	schedule *schedule.ScheduleService
	settings interf.SettingsStorage
	logger   *zap.Logger
}

func NewHandler(loyaltyService *loyalty.LoyaltyService, scheduleService *schedule.ScheduleService, settings interf.SettingsStorage, logger *zap.Logger) *SalonHandler {
	router := mux.NewRouter()
	handler := &SalonHandler{router: router, loyalty: loyaltyService, schedule: scheduleService, settings: settings, logger: logger}
	router.Use(MiddlewareLog())
	router.HandleFunc("/balance/{client}", handler.BalanceHandler).Methods(http.MethodGet)
	router.HandleFunc("/tier/{client}", handler.TierHandler).Methods(http.MethodGet)
	router.HandleFunc("/transactions/{client}", handler.TnxHandler).Methods(http.MethodGet)
	router.HandleFunc("/sale", handler.SaleHandler).Methods(http.MethodPost)
	router.HandleFunc("/refund", handler.RefundHandler).Methods(http.MethodPost)
	router.HandleFunc("/series/preview", handler.SeriesPreviewHandler).Methods(http.MethodPost)
	router.HandleFunc("/series", handler.SeriesCreateHandler).Methods(http.MethodPost)
	router.HandleFunc("/series/{id}", handler.SeriesGetHandler).Methods(http.MethodGet)
	router.HandleFunc("/settings", handler.GetSettingsHandler).Methods(http.MethodGet)
	router.HandleFunc("/settings", handler.SaveSettingsHandler).Methods(http.MethodPost)

	return handler
}

func (h *SalonHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *SalonHandler) Log(msg string, service string, err error) {
	h.logger.Error(msg,
		zap.String("service", service),
		zap.Error(err),
	)
}

// client balance
func (h *SalonHandler) BalanceHandler(w http.ResponseWriter, req *http.Request) {
	client := mux.Vars(req)["client"]
	points, err := h.loyalty.GetBalance(req.Context(), client)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.Log("Get balance", "BalanceHandler", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]int64{"balance": points})
}

type TierResponse struct {
	Tier             model.Tier `json:"tier"`
	Balance          int64      `json:"balance"`
	Progress         int        `json:"progress"`
	PointsToNextTier *int64     `json:"pointsToNextTier"`
}

// tier, progress and distance to the next tier
func (h *SalonHandler) TierHandler(w http.ResponseWriter, req *http.Request) {
	client := mux.Vars(req)["client"]
	acct, err := h.loyalty.GetAccount(req.Context(), client)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.Log("Get account", "TierHandler", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	settings, err := h.loyalty.Settings(req.Context())
	if err != nil {
		h.Log("Get settings", "TierHandler", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := TierResponse{
		Tier:     loyalty.CalculateTier(acct.Balance, settings),
		Balance:  acct.Balance,
		Progress: loyalty.TierProgress(acct.Balance, settings),
	}
	if next, ok := loyalty.PointsToNextTier(acct.Balance, settings); ok {
		resp.PointsToNextTier = &next
	}
	writeJSON(w, resp)
}

// transaction history
func (h *SalonHandler) TnxHandler(w http.ResponseWriter, req *http.Request) {
	client := mux.Vars(req)["client"]
	from, err := time.Parse("2006-01-02", req.URL.Query().Get("from"))
	if err != nil {
		http.Error(w, "from date is not correct", http.StatusBadRequest)
		return
	}
	to, err := time.Parse("2006-01-02", req.URL.Query().Get("to"))
	if err != nil {
		http.Error(w, "to date is not correct", http.StatusBadRequest)
		return
	}
	tnxs, err := h.loyalty.GetTnx(req.Context(), client, from, to.Add(24*time.Hour-time.Second))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.Log("Get transactions", "TnxHandler", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, tnxs)
}

// sale completion: redeem, earn, bonus, invoice - one transaction
func (h *SalonHandler) SaleHandler(w http.ResponseWriter, req *http.Request) {
	var in loyalty.SaleInput
	if !readJSON(w, req, &in) {
		return
	}
	settlement, err := h.loyalty.SettleSale(req.Context(), in)
	if err != nil {
		h.writeBusinessError(w, "SaleHandler", err)
		return
	}
	writeJSON(w, settlement)
}

type RefundRequest struct {
	ClientID    string `json:"clientId"`
	SaleID      string `json:"saleId"`
	RefundCents int64  `json:"refundCents"`
}

func (h *SalonHandler) RefundHandler(w http.ResponseWriter, req *http.Request) {
	var in RefundRequest
	if !readJSON(w, req, &in) {
		return
	}
	reversal, err := h.loyalty.ReverseRefundPoints(req.Context(), in.ClientID, in.SaleID, in.RefundCents)
	if err != nil {
		h.writeBusinessError(w, "RefundHandler", err)
		return
	}
	writeJSON(w, reversal)
}

type SeriesRequest struct {
	Series      SeriesPayload              `json:"series"`
	Resolutions []model.ConflictResolution `json:"resolutions"`
}

type SeriesPayload struct {
	ClientID        string                  `json:"clientId"`
	StaffID         string                  `json:"staffId"`
	Pattern         model.RecurrencePattern `json:"pattern"`
	DayOfWeek       int                     `json:"dayOfWeek"`
	CustomWeeks     int                     `json:"customWeeks"`
	SpecificDays    []int                   `json:"specificDays"`
	DayOfMonth      int                     `json:"dayOfMonth"`
	NthWeek         int                     `json:"nthWeek"`
	StartDate       string                  `json:"startDate"` // 2006-01-02
	TimeOfDay       string                  `json:"timeOfDay"` // 15:04
	DurationMinutes int                     `json:"durationMinutes"`
	EndType         model.SeriesEndType     `json:"endType"`
	Count           int                     `json:"count"`
	Until           string                  `json:"until"` // 2006-01-02, BY_DATE only
	ExceptionDates  []string                `json:"exceptionDates"`
}

func (h *SalonHandler) SeriesPreviewHandler(w http.ResponseWriter, req *http.Request) {
	var in SeriesPayload
	if !readJSON(w, req, &in) {
		return
	}
	series, err := in.toSeries()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	preview, err := h.schedule.PreviewSeries(req.Context(), series)
	if err != nil {
		h.writeBusinessError(w, "SeriesPreviewHandler", err)
		return
	}
	writeJSON(w, preview)
}

func (h *SalonHandler) SeriesCreateHandler(w http.ResponseWriter, req *http.Request) {
	var in SeriesRequest
	if !readJSON(w, req, &in) {
		return
	}
	series, err := in.Series.toSeries()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	created, err := h.schedule.CreateSeries(req.Context(), series, in.Resolutions)
	if err != nil {
		h.writeBusinessError(w, "SeriesCreateHandler", err)
		return
	}
	writeJSON(w, map[string]string{"seriesId": created.UUID.String()})
}

func (h *SalonHandler) SeriesGetHandler(w http.ResponseWriter, req *http.Request) {
	seriesId, err := uuid.Parse(mux.Vars(req)["id"])
	if err != nil {
		http.Error(w, "series id is not correct", http.StatusBadRequest)
		return
	}
	series, err := h.schedule.GetSeries(req.Context(), seriesId)
	if err != nil {
		h.writeBusinessError(w, "SeriesGetHandler", err)
		return
	}
	writeJSON(w, series)
}

func (p SeriesPayload) toSeries() (model.RecurringSeries, error) {
	var series model.RecurringSeries
	series.ClientID = p.ClientID
	series.StaffID = p.StaffID
	series.Pattern = p.Pattern
	series.DayOfWeek = time.Weekday(p.DayOfWeek)
	series.CustomWeeks = p.CustomWeeks
	series.DayOfMonth = p.DayOfMonth
	series.NthWeek = p.NthWeek
	series.DurationMinutes = p.DurationMinutes
	series.EndType = p.EndType
	series.Count = p.Count
	for _, d := range p.SpecificDays {
		series.SpecificDays = append(series.SpecificDays, time.Weekday(d))
	}

	if p.StartDate != "" {
		start, err := time.Parse("2006-01-02", p.StartDate)
		if err != nil {
			return series, errors.New("startDate is not correct")
		}
		series.StartDate = start
	}
	if p.TimeOfDay != "" {
		tod, err := time.Parse("15:04", p.TimeOfDay)
		if err != nil {
			return series, errors.New("timeOfDay is not correct")
		}
		series.TimeOfDay = time.Duration(tod.Hour())*time.Hour + time.Duration(tod.Minute())*time.Minute
	}
	if p.Until != "" {
		until, err := time.Parse("2006-01-02", p.Until)
		if err != nil {
			return series, errors.New("until is not correct")
		}
		series.Until = until
	}
	for _, d := range p.ExceptionDates {
		day, err := time.Parse("2006-01-02", d)
		if err != nil {
			return series, errors.New("exception date is not correct")
		}
		series.ExceptionDates = append(series.ExceptionDates, day)
	}
	return series, nil
}

func (h *SalonHandler) GetSettingsHandler(w http.ResponseWriter, req *http.Request) {
	settings, err := h.settings.Get(req.Context())
	if err != nil {
		h.Log("Get settings", "GetSettingsHandler", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, settings)
}

func (h *SalonHandler) SaveSettingsHandler(w http.ResponseWriter, req *http.Request) {
	var settings model.Settings
	if !readJSON(w, req, &settings) {
		return
	}
	if err := h.settings.Save(req.Context(), settings); err != nil {
		h.writeBusinessError(w, "SaveSettingsHandler", err)
		return
	}
	writeJSON(w, settings)
}

// writeBusinessError maps the error taxonomy to HTTP: validation 400,
// consistency 409, not found 404, the rest a generic 500 with detail in
// the server log only.
func (h *SalonHandler) writeBusinessError(w http.ResponseWriter, service string, err error) {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		http.Error(w, verr.Error(), http.StatusBadRequest)
		return
	}
	if errors.Is(err, model.ErrInsufficientPoints) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var cerr *model.ConsistencyError
	if errors.As(err, &cerr) {
		http.Error(w, cerr.Error(), http.StatusConflict)
		return
	}
	if errors.Is(err, model.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	h.Log("Request failed", service, err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func readJSON(w http.ResponseWriter, req *http.Request, dst any) bool {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		http.Error(w, "Body is empty", http.StatusBadRequest)
		return false
	}
	defer req.Body.Close()
	if err := json.Unmarshal(body, dst); err != nil {
		http.Error(w, "Body is not correct", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	j, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(j)
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/abelzeko/water-alert/internal/alerting"
	"github.com/abelzeko/water-alert/internal/entities"
	"github.com/abelzeko/water-alert/internal/usecases"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	defaultAlertLimit = 50
	maxBodyBytes      = 1 << 20
)

// HTTPHandler serves the JSON API
type HTTPHandler struct {
	useCase  *usecases.MonitorUseCase
	validate *validator.Validate
	logger   *zap.Logger
}

// NewHTTPHandler creates the JSON API handler
func NewHTTPHandler(useCase *usecases.MonitorUseCase, logger *zap.Logger) *HTTPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{
		useCase:  useCase,
		validate: validator.New(),
		logger:   logger,
	}
}

// Routes builds the router
func (h *HTTPHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.requestLogger)

	r.Get("/health", h.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/levels", h.handleLevels)
		r.Get("/status", h.handleOverview)
		r.Get("/status/{location}", h.handleStatus)
		r.Get("/predict/{location}", h.handlePredict)
		r.Post("/readings", h.handleSubmitReadings)
		r.Post("/signup", h.handleSignup)
		r.Get("/alerts", h.handleAlerts)
	})
	return r
}

func (h *HTTPHandler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

type readingJSON struct {
	Timestamp time.Time `json:"timestamp"`
	Level     float64   `json:"level"`
}

type predictionJSON struct {
	Model   string     `json:"model"`
	Kind    string     `json:"kind"`
	At      *time.Time `json:"at,omitempty"`
	Reason  string     `json:"reason,omitempty"`
	Message string     `json:"message"`
}

type statusJSON struct {
	Location    string         `json:"location"`
	DangerLevel float64        `json:"danger_level"`
	Latest      *readingJSON   `json:"latest,omitempty"`
	Status      string         `json:"status,omitempty"`
	Prediction  predictionJSON `json:"prediction"`
}

type alertJSON struct {
	ID            string    `json:"id"`
	Location      string    `json:"location"`
	Timestamp     time.Time `json:"timestamp"`
	ObservedLevel float64   `json:"observed_level"`
	Status        string    `json:"status"`
}

type submitRequest struct {
	Readings map[string]float64 `json:"readings" validate:"required"`
}

type submitResponse struct {
	Records []alertJSON `json:"records"`
	Failed  []string    `json:"failed,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type signupRequest struct {
	Name           string   `json:"name" validate:"required"`
	ContactAddress string   `json:"contact_address" validate:"required"`
	Locations      []string `json:"locations" validate:"required,min=1,dive,required"`
}

type subscriberJSON struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	ContactAddress string    `json:"contact_address"`
	Locations      []string  `json:"locations"`
	CreatedAt      time.Time `json:"created_at"`
}

func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) handleLevels(w http.ResponseWriter, r *http.Request) {
	levels := make(map[string]float64)
	for _, loc := range h.useCase.DangerLevels() {
		levels[loc.Name] = loc.DangerLevel
	}
	writeJSON(w, http.StatusOK, levels)
}

func (h *HTTPHandler) handleOverview(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.useCase.Overview(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]statusJSON, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, h.toStatusJSON(st))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HTTPHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.useCase.LocationStatus(r.Context(), chi.URLParam(r, "location"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toStatusJSON(st))
}

func (h *HTTPHandler) handlePredict(w http.ResponseWriter, r *http.Request) {
	location := chi.URLParam(r, "location")
	result, _, err := h.useCase.Predict(r.Context(), location)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toPredictionJSON(location, result))
}

func (h *HTTPHandler) handleSubmitReadings(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if !h.decode(w, r, &req) {
		return
	}

	records, err := h.useCase.SubmitManualReadings(r.Context(), req.Readings)
	resp := submitResponse{Records: make([]alertJSON, 0, len(records))}
	for _, rec := range records {
		resp.Records = append(resp.Records, toAlertJSON(rec))
	}

	status := http.StatusOK
	if err != nil {
		resp.Failed = alerting.FailedLocations(err)
		resp.Error = err.Error()
		if len(records) == 0 {
			status = http.StatusUnprocessableEntity
		}
	}
	writeJSON(w, status, resp)
}

func (h *HTTPHandler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !h.decode(w, r, &req) {
		return
	}

	sub, err := h.useCase.Signup(r.Context(), req.Name, req.ContactAddress, req.Locations)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, subscriberJSON{
		ID:             sub.ID,
		Name:           sub.Name,
		ContactAddress: sub.ContactAddress,
		Locations:      sub.Locations,
		CreatedAt:      sub.CreatedAt,
	})
}

func (h *HTTPHandler) handleAlerts(w http.ResponseWriter, r *http.Request) {
	limit := defaultAlertLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	records, err := h.useCase.RecentAlerts(r.Context(), r.URL.Query().Get("location"), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]alertJSON, 0, len(records))
	for _, rec := range records {
		out = append(out, toAlertJSON(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

// decode reads and validates a JSON body, writing a 400 on failure
func (h *HTTPHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return false
	}
	return true
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entities.ErrUnknownLocation), errors.Is(err, usecases.ErrIncompleteSignup):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		h.logger.Error("Request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func (h *HTTPHandler) toStatusJSON(st usecases.LocationStatus) statusJSON {
	out := statusJSON{
		Location:    st.Location.Name,
		DangerLevel: st.Location.DangerLevel,
		Prediction:  h.toPredictionJSON(st.Location.Name, st.Prediction),
	}
	if st.HasReading {
		out.Latest = &readingJSON{Timestamp: st.Latest.Timestamp, Level: st.Latest.Level}
		out.Status = string(st.Status)
	}
	return out
}

func (h *HTTPHandler) toPredictionJSON(location string, result entities.PredictionResult) predictionJSON {
	out := predictionJSON{
		Model:   h.useCase.ModelName(),
		Kind:    result.Kind.String(),
		Reason:  result.Reason,
		Message: h.useCase.FormatPrediction(location, result),
	}
	if result.Kind == entities.PredictionCrossingAt || result.Kind == entities.PredictionExceeded {
		at := result.At
		out.At = &at
	}
	return out
}

func toAlertJSON(rec entities.AlertRecord) alertJSON {
	return alertJSON{
		ID:            rec.ID,
		Location:      rec.Location,
		Timestamp:     rec.Timestamp,
		ObservedLevel: rec.ObservedLevel,
		Status:        string(rec.Status),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

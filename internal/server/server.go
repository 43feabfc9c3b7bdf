// Package server exposes the calculator as a JSON API.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/iwvelando/mortgage-calc/internal/calculator"
	"github.com/iwvelando/mortgage-calc/internal/marketdata"
	"github.com/iwvelando/mortgage-calc/pkg/amortization"
	"github.com/iwvelando/mortgage-calc/pkg/constants"
	"github.com/iwvelando/mortgage-calc/pkg/output"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type handler struct {
	logger         *zap.Logger
	calc           *calculator.Calculator
	maxRequestSize int64
	version        string
}

// NewHandler constructs the HTTP handler that serves the calculator API.
// Cross-origin requests are allowed only from allowedOrigins.
func NewHandler(logger *zap.Logger, calc *calculator.Calculator, maxRequestSize int64, version string, allowedOrigins []string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if calc == nil {
		calc = calculator.New(logger, nil)
	}
	if maxRequestSize <= 0 {
		maxRequestSize = constants.DefaultMaxRequestSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:         logger,
		calc:           calc,
		maxRequestSize: maxRequestSize,
		version:        trimmedVersion,
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/schedule", h.handleSchedule).Methods(http.MethodPost)
	api.HandleFunc("/schedule/export", h.handleScheduleExport).Methods(http.MethodPost)
	api.HandleFunc("/refinance", h.handleRefinance).Methods(http.MethodPost)
	api.HandleFunc("/rate", h.handleRate).Methods(http.MethodGet)
	api.HandleFunc("/version", h.handleVersion).Methods(http.MethodGet)

	if len(allowedOrigins) == 0 {
		return r
	}
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(r)
}

func (h *handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	op := "server.handleSchedule"
	start := time.Now()

	var req scheduleRequest
	if !h.decode(w, r, &req, op) {
		return
	}

	report, ok := h.schedule(w, r, req, op)
	if !ok {
		return
	}

	h.logger.Info("schedule computed",
		zap.String("op", op),
		zap.Int("periods", report.PayoffPeriods),
		zap.Duration("duration", time.Since(start)),
	)
	h.writeJSON(w, http.StatusOK, report)
}

func (h *handler) handleScheduleExport(w http.ResponseWriter, r *http.Request) {
	op := "server.handleScheduleExport"

	var req scheduleRequest
	if !h.decode(w, r, &req, op) {
		return
	}

	report, ok := h.schedule(w, r, req, op)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := output.ScheduleCSV(&buf, report); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to render schedule: %v", err), op)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="amortization_schedule.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("failed to write CSV response", zap.String("op", op), zap.Error(err))
	}
}

func (h *handler) schedule(w http.ResponseWriter, r *http.Request, req scheduleRequest, op string) (output.ScheduleReport, bool) {
	result, err := h.calc.Schedule(r.Context(), req.loanRequest())
	if err != nil {
		h.respondCalcError(w, err, op)
		return output.ScheduleReport{}, false
	}

	report, err := output.NewScheduleReport(result, strings.TrimSpace(req.StartMonth))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return output.ScheduleReport{}, false
	}
	return report, true
}

func (h *handler) handleRefinance(w http.ResponseWriter, r *http.Request) {
	op := "server.handleRefinance"
	start := time.Now()

	var req refinanceRequest
	if !h.decode(w, r, &req, op) {
		return
	}

	analyses, err := h.calc.Refinance(r.Context(), req.calculatorRequest())
	if err != nil {
		h.respondCalcError(w, err, op)
		return
	}

	var timing *marketdata.Timing
	if req.IncludeTiming || len(req.Forecasts) > 0 {
		t, err := h.calc.Timing(r.Context(), req.Forecasts)
		if err != nil {
			h.respondCalcError(w, err, op)
			return
		}
		timing = &t
	}

	report := output.NewRefinanceReport(analyses, timing)
	h.logger.Info("refinance computed",
		zap.String("op", op),
		zap.Int("scenarios", len(report.Scenarios)),
		zap.Bool("timing", timing != nil),
		zap.Duration("duration", time.Since(start)),
	)
	h.writeJSON(w, http.StatusOK, report)
}

func (h *handler) handleRate(w http.ResponseWriter, r *http.Request) {
	quote, err := h.calc.Quote(r.Context())
	if err != nil {
		h.respondCalcError(w, err, "server.handleRate")
		return
	}
	h.writeJSON(w, http.StatusOK, quote)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// decode reads a JSON body bounded by the configured request size.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestSize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxRequestSize), op)
			return false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

// statusFor maps calculator errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, amortization.ErrInvalidParameter), errors.Is(err, calculator.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, amortization.ErrNonConvergentSchedule):
		return http.StatusUnprocessableEntity
	case errors.Is(err, calculator.ErrRateUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) respondCalcError(w http.ResponseWriter, err error, op string) {
	h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

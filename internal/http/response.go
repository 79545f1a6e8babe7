package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"bankstat/internal/amqp"
	"bankstat/internal/log"
	"bankstat/internal/services"
	"bankstat/internal/statement"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest), services.IsInvalidInput(err):
		return http.StatusBadRequest
	case errors.Is(err, statement.ErrSourceUnavailable),
		errors.Is(err, statement.ErrSourceParse),
		errors.Is(err, services.ErrNoPublisher),
		errors.Is(err, amqp.ErrCircuitOpen):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	ctx := r.Context()
	logger := log.FromContext(ctx)

	msg := err.Error()
	switch status {
	case http.StatusBadRequest:
		logger.WarnContext(ctx, "Rejected report request",
			log.NewFields().WithOperation(op).WithError(err).WithErrorType(log.ErrorTypeValidation).ToSlice()...)
	case http.StatusServiceUnavailable:
		logger.ErrorContext(ctx, "Report dependency unavailable",
			log.NewFields().WithOperation(op).WithError(err).WithErrorType(log.ErrorTypeSource).ToSlice()...)
		msg = "service temporarily unavailable"
	default:
		log.NewStructuredLogger(logger).LogError(ctx, "Report failed", err, log.ComponentHTTP, op,
			log.NewFields().WithErrorType(log.ErrorTypeInternal))
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

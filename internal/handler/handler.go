package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"storefront/internal/middleware"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error body carrying the code, a message and the
// request's correlation id.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, logger zerolog.Logger) {
	event := logger.Info()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("code", code).Int("status", status).Msg(message)

	writeJSON(w, status, model.ErrorResponse{
		Error:         code,
		Message:       message,
		CorrelationID: middleware.CorrelationIDFromContext(r.Context()),
	})
}

// statusFor maps error codes onto HTTP statuses.
var statusFor = map[string]int{
	model.ErrCodeInvalidJSON:          http.StatusBadRequest,
	model.ErrCodeMissingField:         http.StatusBadRequest,
	model.ErrCodeInvalidPromoCode:     http.StatusBadRequest,
	model.ErrCodeInvalidPromoLength:   http.StatusBadRequest,
	model.ErrCodeInvalidQuantity:      http.StatusBadRequest,
	model.ErrCodeEmptyCart:            http.StatusBadRequest,
	model.ErrCodeInvalidShippingInfo:  http.StatusBadRequest,
	model.ErrCodeInvalidOrderStatus:   http.StatusBadRequest,
	model.ErrCodeProductNotFound:      http.StatusNotFound,
	model.ErrCodeOrderNotFound:        http.StatusNotFound,
	model.ErrCodeProductUnavailable:   http.StatusConflict,
	model.ErrCodeInsufficientStock:    http.StatusConflict,
	model.ErrCodeReservationConflict:  http.StatusConflict,
	model.ErrCodeCheckoutFailed:       http.StatusServiceUnavailable,
	model.ErrCodeOrderNumberExhausted: http.StatusServiceUnavailable,
	model.ErrCodeInvariantViolation:   http.StatusInternalServerError,
	model.ErrCodeUnauthorised:         http.StatusUnauthorized,
	model.ErrCodeForbidden:            http.StatusForbidden,
}

// respondError renders a service error. Domain errors are surfaced verbatim;
// anything else becomes an opaque 500.
func respondError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	var stockErr *model.InsufficientStockError
	if errors.As(err, &stockErr) {
		available := stockErr.Available
		logger.Info().
			Int64("product_id", stockErr.ProductID).
			Int("requested", stockErr.Requested).
			Int("available", available).
			Msg("insufficient stock")
		writeJSON(w, http.StatusConflict, model.ErrorResponse{
			Error:         model.ErrCodeInsufficientStock,
			Message:       model.ErrInsufficientStock.Message,
			Available:     &available,
			CorrelationID: middleware.CorrelationIDFromContext(r.Context()),
		})
		return
	}

	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		status, ok := statusFor[domainErr.Code]
		if !ok {
			status = http.StatusBadRequest
		}
		writeError(w, r, status, domainErr.Code, domainErr.Message, logger)
		return
	}

	logger.Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
	writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}

// requireUser returns the authenticated user id or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (int64, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, "authentication required", logger)
		return 0, false
	}
	return userID, true
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

// pathID parses a positive integer path value.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

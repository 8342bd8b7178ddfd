package handler

import (
	"net/http"
	"strings"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// IdempotencyHeader lets clients retry a checkout without creating a second order.
const IdempotencyHeader = "Idempotency-Key"

// CheckoutHandler serves checkout preview and placement.
type CheckoutHandler struct {
	service service.CheckoutService
	logger  zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(service service.CheckoutService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger.With().Str("handler", "checkout").Logger(),
	}
}

// Preview handles GET /api/checkout/preview?promoCode=...
func (h *CheckoutHandler) Preview(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	var promoCode *string
	if code := r.URL.Query().Get("promoCode"); code != "" {
		promoCode = &code
	}

	preview, err := h.service.Preview(r.Context(), userID, promoCode)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, preview)
}

// Checkout handles POST /api/checkout. A replayed checkout answers 200 with
// the original confirmation; a new order answers 201.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	var req model.CheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}
	req.IdempotencyKey = strings.TrimSpace(r.Header.Get(IdempotencyHeader))

	conf, err := h.service.Checkout(r.Context(), userID, &req)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	status := http.StatusCreated
	if conf.Replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, conf)
}

package handler

import (
	"context"
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// List handles GET /api/orders?page=&perPage=
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	page, err := queryInt(r, "page", 1)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid page parameter", h.logger)
		return
	}
	perPage, err := queryInt(r, "perPage", 10)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid perPage parameter", h.logger)
		return
	}

	orders, err := h.service.ListOrders(r.Context(), userID, page, perPage)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// GetByNumber handles GET /api/orders/{orderNumber}.
func (h *OrderHandler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	order, err := h.service.GetOrderByNumber(r.Context(), r.PathValue("orderNumber"), userID)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// UpdateStatus handles PATCH /api/admin/orders/{orderNumber}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	h.patch(w, r, h.service.UpdateStatus)
}

// UpdatePaymentStatus handles PATCH /api/admin/orders/{orderNumber}/payment-status.
func (h *OrderHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	h.patch(w, r, h.service.UpdatePaymentStatus)
}

func (h *OrderHandler) patch(w http.ResponseWriter, r *http.Request, update func(context.Context, string, string) (*model.Order, error)) {
	var req model.StatusUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Status == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "status is required", h.logger)
		return
	}

	order, err := update(r.Context(), r.PathValue("orderNumber"), req.Status)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

package handlers

import (
	"net/http"
	"strconv"

	"parcel-service/internal/logx"
)

// DeliveryHandler handles HTTP requests for delivery resources.
type DeliveryHandler struct {
	usecase deliveryUsecase
	logger  logx.Logger
}

// NewDeliveryHandler creates a new DeliveryHandler.
func NewDeliveryHandler(logger logx.Logger, uc deliveryUsecase) *DeliveryHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &DeliveryHandler{usecase: uc, logger: logger}
}

// Create handles POST /deliveries.
// @Summary Create a delivery
// @Description Prices the parcel under the active config and stores it as pending
// @Tags deliveries
// @Accept json
// @Produce json
// @Param request body createDeliveryRequest true "Pricing inputs"
// @Success 201 {object} deliveryDTO
// @Failure 400 {object} ErrorResponse "ValidationError"
// @Router /deliveries [post]
func (h *DeliveryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDeliveryRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	in, err := req.toModel()
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}

	d, err := h.usecase.Create(r.Context(), in)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	w.Header().Set("Location", "/deliveries/"+strconv.FormatInt(d.ID, 10))
	writeOK(h.logger, w, r, http.StatusCreated, deliveryToResponse(d))
}

// Get handles GET /deliveries/{id}.
func (h *DeliveryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.deliveryID(w, r)
	if !ok {
		return
	}
	d, err := h.usecase.Get(r.Context(), id)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeOK(h.logger, w, r, http.StatusOK, deliveryToResponse(d))
}

// Transition handles POST /deliveries/{id}/transitions.
// @Summary Submit a status transition
// @Tags deliveries
// @Accept json
// @Produce json
// @Param request body transitionRequest true "Target status and optional location/notes"
// @Success 200 {object} deliveryDTO
// @Failure 400 {object} ErrorResponse "ValidationError"
// @Failure 404 {object} ErrorResponse "NotFound"
// @Failure 409 {object} ErrorResponse "ConcurrencyConflict"
// @Failure 422 {object} ErrorResponse "InvalidTransition"
// @Router /deliveries/{id}/transitions [post]
func (h *DeliveryHandler) Transition(w http.ResponseWriter, r *http.Request) {
	id, ok := h.deliveryID(w, r)
	if !ok {
		return
	}
	var req transitionRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	target, note := req.toModel()
	d, err := h.usecase.SubmitTransition(r.Context(), id, target, note)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeOK(h.logger, w, r, http.StatusOK, deliveryToResponse(d))
}

// AssignCourier handles POST /deliveries/{id}/courier.
// @Summary Assign a courier
// @Tags deliveries
// @Accept json
// @Produce json
// @Param request body assignCourierRequest true "Courier id"
// @Success 200 {object} assignResultDTO
// @Failure 404 {object} ErrorResponse "NotFound"
// @Failure 409 {object} ErrorResponse "ConcurrencyConflict"
// @Failure 422 {object} ErrorResponse "CourierUnavailable"
// @Router /deliveries/{id}/courier [post]
func (h *DeliveryHandler) AssignCourier(w http.ResponseWriter, r *http.Request) {
	id, ok := h.deliveryID(w, r)
	if !ok {
		return
	}
	var req assignCourierRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	res, err := h.usecase.AssignCourier(r.Context(), id, req.CourierID)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeOK(h.logger, w, r, http.StatusOK, assignResultToResponse(res))
}

// Events handles GET /deliveries/{id}/events.
func (h *DeliveryHandler) Events(w http.ResponseWriter, r *http.Request) {
	id, ok := h.deliveryID(w, r)
	if !ok {
		return
	}
	evs, err := h.usecase.Events(r.Context(), id)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeOK(h.logger, w, r, http.StatusOK, eventsToResponse(id, evs))
}

// VerifyQuote handles GET /deliveries/{id}/quote/verify.
func (h *DeliveryHandler) VerifyQuote(w http.ResponseWriter, r *http.Request) {
	id, ok := h.deliveryID(w, r)
	if !ok {
		return
	}
	check, err := h.usecase.VerifyQuote(r.Context(), id)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeOK(h.logger, w, r, http.StatusOK, check)
}

func (h *DeliveryHandler) deliveryID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, CodeValidation, "invalid id")
		return 0, false
	}
	return id, true
}

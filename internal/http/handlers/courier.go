package handlers

import (
	"net/http"

	"parcel-service/internal/logx"
)

// CourierHandler serves read-only courier lookups.
type CourierHandler struct {
	usecase courierUsecase
	logger  logx.Logger
}

// NewCourierHandler creates a new CourierHandler.
func NewCourierHandler(logger logx.Logger, uc courierUsecase) *CourierHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &CourierHandler{usecase: uc, logger: logger}
}

// Get handles GET /couriers/{id}.
// @Summary Get a courier
// @Tags couriers
// @Produce json
// @Param id path int true "Courier ID"
// @Success 200 {object} domain.Courier
// @Failure 404 {object} ErrorResponse "NotFound"
// @Router /couriers/{id} [get]
func (h *CourierHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, CodeValidation, "invalid id")
		return
	}
	c, err := h.usecase.Get(r.Context(), id)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeOK(h.logger, w, r, http.StatusOK, c)
}

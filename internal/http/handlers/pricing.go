package handlers

import (
	"net/http"

	"parcel-service/internal/logx"
)

// PricingHandler serves quotes and the active pricing config.
type PricingHandler struct {
	usecase pricingUsecase
	logger  logx.Logger
}

// NewPricingHandler creates a new PricingHandler.
func NewPricingHandler(logger logx.Logger, uc pricingUsecase) *PricingHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &PricingHandler{usecase: uc, logger: logger}
}

// Quote handles POST /pricing/quote. Nothing is persisted.
// @Summary Calculate a quote
// @Tags pricing
// @Accept json
// @Produce json
// @Param request body quoteRequest true "Pricing inputs"
// @Success 200 {object} domain.PricingBreakdown
// @Failure 400 {object} ErrorResponse "ValidationError"
// @Router /pricing/quote [post]
func (h *PricingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	in, err := req.toModel()
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}

	b, err := h.usecase.Calculate(r.Context(), in)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeOK(h.logger, w, r, http.StatusOK, b)
}

// ActiveConfig handles GET /pricing/config.
func (h *PricingHandler) ActiveConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.usecase.Active(r.Context())
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeOK(h.logger, w, r, http.StatusOK, cfg)
}

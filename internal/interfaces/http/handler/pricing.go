package handler

import (
	pricingapp "github.com/erp/crm/internal/application/pricing"
	"github.com/gin-gonic/gin"
)

// PricingHandler handles price breakdown requests
type PricingHandler struct {
	BaseHandler
	service *pricingapp.Service
}

// NewPricingHandler creates a new PricingHandler
func NewPricingHandler(service *pricingapp.Service) *PricingHandler {
	return &PricingHandler{service: service}
}

// Breakdown godoc
// @ID           pricingBreakdown
// @Summary      Price breakdown of one line
// @Description  Applies the markup to the unit cost, optionally converting the cost to the target currency first
// @Tags         pricing
// @Accept       json
// @Produce      json
// @Param        request body pricingapp.BreakdownRequest true "Line cost and markup"
// @Success      200 {object} APIResponse[pricingapp.BreakdownResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /pricing/breakdown [post]
func (h *PricingHandler) Breakdown(c *gin.Context) {
	tenantID, _, ok := h.caller(c)
	if !ok {
		return
	}
	var req pricingapp.BreakdownRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Quote(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

package handler

import (
	currencyapp "github.com/erp/crm/internal/application/currency"
	"github.com/gin-gonic/gin"
)

// CurrencyHandler handles currency endpoints
type CurrencyHandler struct {
	BaseHandler
	service *currencyapp.Service
}

// NewCurrencyHandler creates a new CurrencyHandler
func NewCurrencyHandler(service *currencyapp.Service) *CurrencyHandler {
	return &CurrencyHandler{service: service}
}

// Convert godoc
// @ID           convertCurrency
// @Summary      Convert an amount
// @Description  Converts an amount between two active currencies of the tenant through the home currency
// @Tags         currencies
// @Accept       json
// @Produce      json
// @Param        request body currencyapp.ConvertRequest true "Conversion request"
// @Success      200 {object} APIResponse[currencyapp.ConvertResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /currencies/convert [post]
func (h *CurrencyHandler) Convert(c *gin.Context) {
	tenantID, _, ok := h.caller(c)
	if !ok {
		return
	}
	var req currencyapp.ConvertRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Convert(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListActive godoc
// @ID           listCurrencies
// @Summary      List active currencies
// @Description  Returns the active currencies of the tenant, home currency first
// @Tags         currencies
// @Produce      json
// @Success      200 {object} ListResponse[currencyapp.CurrencyResponse]
// @Security     BearerAuth
// @Router       /currencies [get]
func (h *CurrencyHandler) ListActive(c *gin.Context) {
	tenantID, _, ok := h.caller(c)
	if !ok {
		return
	}

	list, err := h.service.ListActive(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.List(c, list, len(list))
}

// UpdateRate godoc
// @ID           updateCurrencyRate
// @Summary      Update an exchange rate
// @Description  Sets the home-currency value of one unit of the currency
// @Tags         currencies
// @Accept       json
// @Produce      json
// @Param        code path string true "ISO 4217 code"
// @Param        request body currencyapp.UpdateRateRequest true "New rate"
// @Success      200 {object} APIResponse[currencyapp.CurrencyResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /currencies/{code}/rate [put]
func (h *CurrencyHandler) UpdateRate(c *gin.Context) {
	tenantID, _, ok := h.caller(c)
	if !ok {
		return
	}
	var req currencyapp.UpdateRateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.UpdateRate(c.Request.Context(), tenantID, c.Param("code"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Deactivate godoc
// @ID           deactivateCurrency
// @Summary      Deactivate a currency
// @Description  Removes the currency from conversions. The home currency cannot be deactivated.
// @Tags         currencies
// @Produce      json
// @Param        code path string true "ISO 4217 code"
// @Success      200 {object} APIResponse[currencyapp.CurrencyResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /currencies/{code}/deactivate [post]
func (h *CurrencyHandler) Deactivate(c *gin.Context) {
	tenantID, _, ok := h.caller(c)
	if !ok {
		return
	}

	resp, err := h.service.Deactivate(c.Request.Context(), tenantID, c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

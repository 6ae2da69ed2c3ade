package handler

import (
	"fmt"
	"net/http"
	"strconv"

	salesapp "github.com/erp/crm/internal/application/sales"
	"github.com/erp/crm/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SalesHandler handles sales reporting endpoints
type SalesHandler struct {
	BaseHandler
	service *salesapp.Service
}

// NewSalesHandler creates a new SalesHandler
func NewSalesHandler(service *salesapp.Service) *SalesHandler {
	return &SalesHandler{service: service}
}

// CompanySummary godoc
// @ID           companySalesSummary
// @Summary      Sales context of a company
// @Description  Aggregates sale invoices of the last months_back × 30 days with trends against the previous period. Amounts are in the home currency.
// @Tags         sales
// @Produce      json
// @Param        id path string true "Company ID" format(uuid)
// @Param        months_back query int false "Window in months (1..36)" default(6)
// @Success      200 {object} APIResponse[salesapp.SummaryResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /companies/{id}/sales-summary [get]
func (h *SalesHandler) CompanySummary(c *gin.Context) {
	tenantID, _, ok := h.caller(c)
	if !ok {
		return
	}
	companyID, ok := h.pathID(c)
	if !ok {
		return
	}
	monthsBack := 0
	if raw := c.Query("months_back"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "months_back must be between 1 and 36")
			return
		}
		monthsBack = n
	}

	resp, err := h.service.CompanySalesSummary(c.Request.Context(), tenantID, companyID, monthsBack)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// InvoiceStats godoc
// @ID           invoiceStats
// @Summary      Invoice statistics
// @Description  Totals of matching invoices in the home currency, split by sale type and invoice currency
// @Tags         sales
// @Produce      json
// @Param        company_id query string false "Company ID" format(uuid)
// @Param        invoice_type query string false "purchase or sale"
// @Param        from query string false "First day, YYYY-MM-DD"
// @Param        to query string false "Last day inclusive, YYYY-MM-DD"
// @Success      200 {object} APIResponse[salesapp.StatsResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/stats [get]
func (h *SalesHandler) InvoiceStats(c *gin.Context) {
	tenantID, _, ok := h.caller(c)
	if !ok {
		return
	}
	var req salesapp.InvoiceFilterRequest
	if !h.bindQuery(c, &req) {
		return
	}

	resp, err := h.service.InvoiceStats(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ExportInvoices godoc
// @ID           exportInvoices
// @Summary      Export invoices
// @Description  Streams the file, or with object storage configured uploads it and returns a download link
// @Tags         sales
// @Produce      json
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce      text/csv
// @Param        format query string false "xlsx, csv or json" default(xlsx)
// @Param        company_id query string false "Company ID" format(uuid)
// @Param        invoice_type query string false "purchase or sale"
// @Param        from query string false "First day, YYYY-MM-DD"
// @Param        to query string false "Last day inclusive, YYYY-MM-DD"
// @Success      200 {object} APIResponse[salesapp.ExportResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/export [get]
func (h *SalesHandler) ExportInvoices(c *gin.Context) {
	tenantID, _, ok := h.caller(c)
	if !ok {
		return
	}
	var req salesapp.InvoiceFilterRequest
	if !h.bindQuery(c, &req) {
		return
	}

	file, resp, err := h.service.ExportInvoices(c.Request.Context(), tenantID, req, c.Query("format"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if file == nil {
		h.Success(c, resp)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.Data(http.StatusOK, file.ContentType, file.Body)
}

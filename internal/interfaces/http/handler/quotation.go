package handler

import (
	"context"
	"fmt"
	"net/http"

	rfqapp "github.com/erp/crm/internal/application/rfq"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// QuotationHandler handles quotation endpoints
type QuotationHandler struct {
	BaseHandler
	service *rfqapp.QuotationService
}

// NewQuotationHandler creates a new QuotationHandler
func NewQuotationHandler(service *rfqapp.QuotationService) *QuotationHandler {
	return &QuotationHandler{service: service}
}

// Create godoc
// @ID           createQuotation
// @Summary      Start a quotation for an RFQ
// @Description  Creates a draft quotation. The caller becomes its product manager.
// @Tags         quotations
// @Accept       json
// @Produce      json
// @Param        request body rfqapp.CreateQuotationRequest true "Quotation"
// @Success      201 {object} APIResponse[rfqapp.QuotationResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /quotations [post]
func (h *QuotationHandler) Create(c *gin.Context) {
	tenantID, userID, ok := h.caller(c)
	if !ok {
		return
	}
	var req rfqapp.CreateQuotationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Create(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID godoc
// @ID           getQuotation
// @Summary      Get a quotation
// @Tags         quotations
// @Produce      json
// @Param        id path string true "Quotation ID" format(uuid)
// @Success      200 {object} APIResponse[rfqapp.QuotationResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /quotations/{id} [get]
func (h *QuotationHandler) GetByID(c *gin.Context) {
	h.withQuotation(c, h.service.GetByID)
}

// ListByRFQ godoc
// @ID           listRFQQuotations
// @Summary      Quotations answering an RFQ
// @Tags         quotations
// @Produce      json
// @Param        id path string true "RFQ ID" format(uuid)
// @Success      200 {object} ListResponse[rfqapp.QuotationResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /rfqs/{id}/quotations [get]
func (h *QuotationHandler) ListByRFQ(c *gin.Context) {
	tenantID, _, ok := h.caller(c)
	if !ok {
		return
	}
	rfqID, ok := h.pathID(c)
	if !ok {
		return
	}

	list, err := h.service.ListByRFQ(c.Request.Context(), tenantID, rfqID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.List(c, list, len(list))
}

// AddItem godoc
// @ID           addQuotationItem
// @Summary      Price one RFQ item
// @Description  Adds a priced line answering an RFQ item; unit price = cost × (1 + markup / 100)
// @Tags         quotations
// @Accept       json
// @Produce      json
// @Param        id path string true "Quotation ID" format(uuid)
// @Param        request body rfqapp.AddQuotationItemRequest true "Priced line"
// @Success      201 {object} APIResponse[rfqapp.QuotationItemResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /quotations/{id}/items [post]
func (h *QuotationHandler) AddItem(c *gin.Context) {
	tenantID, _, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req rfqapp.AddQuotationItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.AddItem(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Submit godoc
// @ID           submitQuotation
// @Summary      Send a quotation to the sales manager
// @Tags         quotations
// @Produce      json
// @Param        id path string true "Quotation ID" format(uuid)
// @Success      200 {object} APIResponse[rfqapp.QuotationResponse]
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /quotations/{id}/submit [post]
func (h *QuotationHandler) Submit(c *gin.Context) {
	h.withQuotation(c, h.service.Submit)
}

// Accept godoc
// @ID           acceptQuotation
// @Summary      Accept a submitted quotation
// @Tags         quotations
// @Produce      json
// @Param        id path string true "Quotation ID" format(uuid)
// @Success      200 {object} APIResponse[rfqapp.QuotationResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /quotations/{id}/accept [post]
func (h *QuotationHandler) Accept(c *gin.Context) {
	h.withQuotation(c, h.service.Accept)
}

// Reject godoc
// @ID           rejectQuotation
// @Summary      Reject a submitted quotation
// @Tags         quotations
// @Accept       json
// @Produce      json
// @Param        id path string true "Quotation ID" format(uuid)
// @Param        request body rfqapp.ReasonRequest false "Reason"
// @Success      200 {object} APIResponse[rfqapp.QuotationResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /quotations/{id}/reject [post]
func (h *QuotationHandler) Reject(c *gin.Context) {
	var req rfqapp.ReasonRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}
	h.withQuotation(c, func(ctx context.Context, tenantID, id uuid.UUID) (*rfqapp.QuotationResponse, error) {
		return h.service.Reject(ctx, tenantID, id, req)
	})
}

// Expire godoc
// @ID           expireQuotation
// @Summary      Expire a submitted quotation past its validity date
// @Tags         quotations
// @Produce      json
// @Param        id path string true "Quotation ID" format(uuid)
// @Success      200 {object} APIResponse[rfqapp.QuotationResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /quotations/{id}/expire [post]
func (h *QuotationHandler) Expire(c *gin.Context) {
	h.withQuotation(c, h.service.Expire)
}

// PDF godoc
// @ID           quotationPDF
// @Summary      Quotation document
// @Description  Renders the quotation as PDF
// @Tags         quotations
// @Produce      application/pdf
// @Param        id path string true "Quotation ID" format(uuid)
// @Success      200 {file} binary
// @Failure      404 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /quotations/{id}/pdf [get]
func (h *QuotationHandler) PDF(c *gin.Context) {
	tenantID, _, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	pdf, fileName, err := h.service.RenderPDF(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", fileName))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *QuotationHandler) withQuotation(c *gin.Context, fn func(ctx context.Context, tenantID, id uuid.UUID) (*rfqapp.QuotationResponse, error)) {
	tenantID, _, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	resp, err := fn(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

package handler

import (
	"context"

	rfqapp "github.com/erp/crm/internal/application/rfq"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RFQHandler handles RFQ endpoints
type RFQHandler struct {
	BaseHandler
	service *rfqapp.RFQService
}

// NewRFQHandler creates a new RFQHandler
func NewRFQHandler(service *rfqapp.RFQService) *RFQHandler {
	return &RFQHandler{service: service}
}

// Create godoc
// @ID           createRFQ
// @Summary      Open an RFQ
// @Description  Creates a draft RFQ for a company, optionally with its first items. The caller becomes the sales manager.
// @Tags         rfqs
// @Accept       json
// @Produce      json
// @Param        request body rfqapp.CreateRFQRequest true "RFQ"
// @Success      201 {object} APIResponse[rfqapp.RFQResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /rfqs [post]
func (h *RFQHandler) Create(c *gin.Context) {
	tenantID, userID, ok := h.caller(c)
	if !ok {
		return
	}
	var req rfqapp.CreateRFQRequest
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
// @ID           getRFQ
// @Summary      Get an RFQ
// @Tags         rfqs
// @Produce      json
// @Param        id path string true "RFQ ID" format(uuid)
// @Success      200 {object} APIResponse[rfqapp.RFQResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /rfqs/{id} [get]
func (h *RFQHandler) GetByID(c *gin.Context) {
	h.withRFQ(c, h.service.GetByID)
}

// AddItem godoc
// @ID           addRFQItem
// @Summary      Add an item to a draft RFQ
// @Description  The item references either a catalog product or a free-text product, never both
// @Tags         rfqs
// @Accept       json
// @Produce      json
// @Param        id path string true "RFQ ID" format(uuid)
// @Param        request body rfqapp.AddRFQItemRequest true "Item"
// @Success      201 {object} APIResponse[rfqapp.RFQItemResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /rfqs/{id}/items [post]
func (h *RFQHandler) AddItem(c *gin.Context) {
	tenantID, _, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req rfqapp.AddRFQItemRequest
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
// @ID           submitRFQ
// @Summary      Submit an RFQ to product managers
// @Tags         rfqs
// @Produce      json
// @Param        id path string true "RFQ ID" format(uuid)
// @Success      200 {object} APIResponse[rfqapp.RFQResponse]
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /rfqs/{id}/submit [post]
func (h *RFQHandler) Submit(c *gin.Context) {
	h.withRFQ(c, h.service.Submit)
}

// Start godoc
// @ID           startRFQ
// @Summary      Take an RFQ into work
// @Tags         rfqs
// @Produce      json
// @Param        id path string true "RFQ ID" format(uuid)
// @Success      200 {object} APIResponse[rfqapp.RFQResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /rfqs/{id}/start [post]
func (h *RFQHandler) Start(c *gin.Context) {
	h.withRFQ(c, h.service.StartProgress)
}

// Close godoc
// @ID           closeRFQ
// @Summary      Close a quoted RFQ
// @Tags         rfqs
// @Produce      json
// @Param        id path string true "RFQ ID" format(uuid)
// @Success      200 {object} APIResponse[rfqapp.RFQResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /rfqs/{id}/close [post]
func (h *RFQHandler) Close(c *gin.Context) {
	h.withRFQ(c, h.service.Close)
}

// Cancel godoc
// @ID           cancelRFQ
// @Summary      Cancel an RFQ
// @Tags         rfqs
// @Accept       json
// @Produce      json
// @Param        id path string true "RFQ ID" format(uuid)
// @Param        request body rfqapp.ReasonRequest false "Reason"
// @Success      200 {object} APIResponse[rfqapp.RFQResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /rfqs/{id}/cancel [post]
func (h *RFQHandler) Cancel(c *gin.Context) {
	var req rfqapp.ReasonRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}
	h.withRFQ(c, func(ctx context.Context, tenantID, id uuid.UUID) (*rfqapp.RFQResponse, error) {
		return h.service.Cancel(ctx, tenantID, id, req)
	})
}

// Pending godoc
// @ID           pendingRFQs
// @Summary      RFQs awaiting the caller's quotation
// @Description  Submitted or in-progress RFQs the calling product manager has not quoted yet, oldest first
// @Tags         rfqs
// @Produce      json
// @Success      200 {object} ListResponse[rfqapp.RFQResponse]
// @Security     BearerAuth
// @Router       /rfqs/pending [get]
func (h *RFQHandler) Pending(c *gin.Context) {
	tenantID, userID, ok := h.caller(c)
	if !ok {
		return
	}

	list, err := h.service.PendingFor(c.Request.Context(), tenantID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.List(c, list, len(list))
}

func (h *RFQHandler) withRFQ(c *gin.Context, fn func(ctx context.Context, tenantID, id uuid.UUID) (*rfqapp.RFQResponse, error)) {
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

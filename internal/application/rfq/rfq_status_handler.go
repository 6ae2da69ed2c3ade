package rfq

import (
	"context"
	"fmt"

	"github.com/erp/crm/internal/domain/rfq"
	"github.com/erp/crm/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RFQStatusHandler moves an RFQ along as quotations are created and submitted.
// The first quotation on a submitted RFQ starts progress; a submitted
// quotation marks the RFQ quoted.
type RFQStatusHandler struct {
	rfqRepo        rfq.RFQRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewRFQStatusHandler creates a new handler for quotation lifecycle events
func NewRFQStatusHandler(rfqRepo rfq.RFQRepository, logger *zap.Logger) *RFQStatusHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RFQStatusHandler{rfqRepo: rfqRepo, logger: logger}
}

// SetEventPublisher sets the publisher for the resulting RFQ events
func (h *RFQStatusHandler) SetEventPublisher(publisher shared.EventPublisher) {
	h.eventPublisher = publisher
}

// EventTypes returns the event types this handler is interested in
func (h *RFQStatusHandler) EventTypes() []string {
	return []string{rfq.EventTypeQuotationCreated, rfq.EventTypeQuotationSubmitted}
}

// Handle applies the RFQ transition implied by the quotation event
func (h *RFQStatusHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var (
		rfqID  uuid.UUID
		target rfq.RFQStatus
		apply  rfq.RFQMutation
	)
	switch e := event.(type) {
	case *rfq.QuotationCreatedEvent:
		rfqID, target = e.RFQID, rfq.RFQStatusInProgress
		apply = func(r *rfq.RFQ) error {
			if r.Status != rfq.RFQStatusSubmitted {
				return nil
			}
			return r.StartProgress()
		}
	case *rfq.QuotationSubmittedEvent:
		rfqID, target = e.RFQID, rfq.RFQStatusQuoted
		apply = func(r *rfq.RFQ) error {
			if r.Status == rfq.RFQStatusQuoted || !r.Status.CanTransitionTo(rfq.RFQStatusQuoted) {
				return nil
			}
			return r.MarkQuoted()
		}
	default:
		h.logger.Error("unexpected event type", zap.String("actual", event.EventType()))
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	r, err := h.rfqRepo.Mutate(ctx, event.TenantID(), rfqID, apply)
	if err != nil {
		h.logger.Error("failed to update rfq status",
			zap.String("tenant_id", event.TenantID().String()),
			zap.String("rfq_id", rfqID.String()),
			zap.String("target", target.String()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to update rfq %s: %w", rfqID, err)
	}
	h.logger.Debug("rfq status synchronized",
		zap.String("rfq_id", rfqID.String()),
		zap.String("status", r.Status.String()),
	)
	publishEvents(ctx, h.eventPublisher, h.logger, r)
	return nil
}

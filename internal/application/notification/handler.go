// Package notification turns workflow events into user-facing notices.
package notification

import (
	"context"
	"fmt"

	"github.com/erp/crm/internal/domain/currency"
	"github.com/erp/crm/internal/domain/rfq"
	"github.com/erp/crm/internal/domain/shared"
	"github.com/erp/crm/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Audience identifies who a notice is addressed to
type Audience string

const (
	AudienceProductManagers Audience = "product_managers"
	AudienceSalesManagers   Audience = "sales_managers"
	AudienceFinance         Audience = "finance"
)

// Notice is one notification
type Notice struct {
	TenantID    uuid.UUID
	Audience    Audience
	AggregateID uuid.UUID
	EventType   string
	Subject     string
}

// Notifier delivers notices
type Notifier interface {
	Notify(ctx context.Context, n Notice) error
}

// LogNotifier writes notices to the structured log
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier backed by logger
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the notice
func (n *LogNotifier) Notify(_ context.Context, notice Notice) error {
	n.logger.Info("notification",
		zap.String("tenant_id", notice.TenantID.String()),
		zap.String("audience", string(notice.Audience)),
		zap.String("event_type", notice.EventType),
		zap.String("aggregate_id", notice.AggregateID.String()),
		zap.String("subject", notice.Subject),
	)
	return nil
}

// Handler subscribes to workflow events and forwards notices
type Handler struct {
	notifier Notifier
}

// NewHandler creates a notification handler
func NewHandler(notifier Notifier) *Handler {
	return &Handler{notifier: notifier}
}

// EventTypes implements shared.EventHandler
func (h *Handler) EventTypes() []string {
	return []string{
		rfq.EventTypeRFQSubmitted,
		rfq.EventTypeRFQStatusChanged,
		rfq.EventTypeQuotationSubmitted,
		rfq.EventTypeQuotationStatusChanged,
		currency.EventTypeCurrencyRateChanged,
	}
}

// Handle implements shared.EventHandler
func (h *Handler) Handle(ctx context.Context, event shared.DomainEvent) error {
	notice, ok := h.noticeFor(event)
	if !ok {
		return nil
	}
	notice.TenantID = event.TenantID()
	notice.AggregateID = event.AggregateID()
	notice.EventType = event.EventType()
	return h.notifier.Notify(ctx, notice)
}

func (h *Handler) noticeFor(event shared.DomainEvent) (Notice, bool) {
	switch e := event.(type) {
	case *rfq.RFQSubmittedEvent:
		return Notice{
			Audience: AudienceProductManagers,
			Subject:  fmt.Sprintf("New RFQ %s %q with %d item(s), priority %s", e.Number, e.Title, e.ItemCount, e.Priority),
		}, true
	case *rfq.RFQStatusChangedEvent:
		if e.To != rfq.RFQStatusQuoted && e.To != rfq.RFQStatusCancelled {
			return Notice{}, false
		}
		return Notice{
			Audience: AudienceSalesManagers,
			Subject:  fmt.Sprintf("RFQ %s is now %s", e.Number, e.To),
		}, true
	case *rfq.QuotationSubmittedEvent:
		return Notice{
			Audience: AudienceSalesManagers,
			Subject: fmt.Sprintf("Quotation %s submitted: %s %s",
				e.Number, e.TotalAmount.StringFixed(valueobject.MoneyPlaces), e.Currency),
		}, true
	case *rfq.QuotationStatusChangedEvent:
		if e.To != rfq.QuotationStatusAccepted && e.To != rfq.QuotationStatusRejected {
			return Notice{}, false
		}
		return Notice{
			Audience: AudienceProductManagers,
			Subject:  fmt.Sprintf("Quotation %s was %s", e.Number, e.To),
		}, true
	case *currency.CurrencyRateChangedEvent:
		return Notice{
			Audience: AudienceFinance,
			Subject: fmt.Sprintf("%s rate changed from %s to %s", e.Code,
				e.OldRate.StringFixed(valueobject.RatePlaces), e.NewRate.StringFixed(valueobject.RatePlaces)),
		}, true
	}
	return Notice{}, false
}

var _ shared.EventHandler = (*Handler)(nil)

package telemetry

import (
	"context"

	"github.com/erp/crm/internal/domain/currency"
	"github.com/erp/crm/internal/domain/rfq"
	"github.com/erp/crm/internal/domain/shared"
	"github.com/erp/crm/internal/domain/shared/valueobject"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope of the workflow instruments
const MeterName = "github.com/erp/crm/workflow"

// WorkflowMetrics counts RFQ and quotation workflow events and currency
// conversions. It is subscribed to the event bus like any other handler.
type WorkflowMetrics struct {
	rfqsSubmitted       *Counter
	rfqTransitions      *Counter
	quotationsSubmitted *Counter
	quotationOutcomes   *Counter
	quotationItems      *Histogram
	rateChanges         *Counter
	conversions         *Counter
}

// NewWorkflowMetrics registers the workflow instruments on meter
func NewWorkflowMetrics(meter metric.Meter) (*WorkflowMetrics, error) {
	in := NewInstruments(meter)
	m := &WorkflowMetrics{
		rfqsSubmitted:       in.Counter("crm.rfq.submitted", "RFQs submitted to product managers", "{rfq}"),
		rfqTransitions:      in.Counter("crm.rfq.transitions", "RFQ status transitions", "{transition}"),
		quotationsSubmitted: in.Counter("crm.quotation.submitted", "Quotations submitted to sales", "{quotation}"),
		quotationOutcomes:   in.Counter("crm.quotation.outcomes", "Quotations reaching a terminal status", "{quotation}"),
		quotationItems:      in.Histogram("crm.quotation.items", "Items per submitted quotation", "{item}", 1, 2, 5, 10, 20, 50),
		rateChanges:         in.Counter("crm.currency.rate_changes", "Exchange rate edits", "{change}"),
		conversions:         in.Counter("crm.currency.conversions", "Currency conversions served", "{conversion}"),
	}
	if err := in.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// EventTypes implements shared.EventHandler
func (m *WorkflowMetrics) EventTypes() []string {
	return []string{
		rfq.EventTypeRFQSubmitted,
		rfq.EventTypeRFQStatusChanged,
		rfq.EventTypeQuotationSubmitted,
		rfq.EventTypeQuotationStatusChanged,
		currency.EventTypeCurrencyRateChanged,
	}
}

// Handle implements shared.EventHandler
func (m *WorkflowMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	tenant := attribute.String("tenant_id", event.TenantID().String())
	switch e := event.(type) {
	case *rfq.RFQSubmittedEvent:
		m.rfqsSubmitted.Inc(ctx, tenant, attribute.String("priority", string(e.Priority)))
	case *rfq.RFQStatusChangedEvent:
		m.rfqTransitions.Inc(ctx, tenant, attribute.String("from", string(e.From)), attribute.String("to", string(e.To)))
	case *rfq.QuotationSubmittedEvent:
		m.quotationsSubmitted.Inc(ctx, tenant, attribute.String("currency", e.Currency.String()))
		m.quotationItems.Record(ctx, float64(e.ItemCount), tenant)
	case *rfq.QuotationStatusChangedEvent:
		if e.To.IsTerminal() {
			m.quotationOutcomes.Inc(ctx, tenant, attribute.String("status", string(e.To)))
		}
	case *currency.CurrencyRateChangedEvent:
		m.rateChanges.Inc(ctx, tenant, attribute.String("code", e.Code.String()))
	}
	return nil
}

// ObserveConversion implements the currency service conversion observer
func (m *WorkflowMetrics) ObserveConversion(ctx context.Context, from, to valueobject.CurrencyCode) {
	m.conversions.Inc(ctx, attribute.String("from", from.String()), attribute.String("to", to.String()))
}

var _ shared.EventHandler = (*WorkflowMetrics)(nil)

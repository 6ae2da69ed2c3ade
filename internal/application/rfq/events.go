package rfq

import (
	"context"

	"github.com/erp/crm/internal/domain/shared"
	"go.uber.org/zap"
)

// publishEvents hands pending events to the publisher after commit.
// Failures are logged; the state change is already durable.
func publishEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, src shared.EventSource) {
	events := shared.PullDomainEvents(src)
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Warn("failed to publish domain events", zap.Int("count", len(events)), zap.Error(err))
	}
}

package rfq

import (
	"context"
	"errors"

	"github.com/erp/crm/internal/domain/shared"
)

// maxNumberAttempts bounds how often a document is renumbered after a
// concurrent create took its number
const maxNumberAttempts = 10

// createNumbered builds an aggregate around a freshly generated number and
// inserts it. When the insert finds the number taken the aggregate is rebuilt
// with the next free number, so recorded events carry the stored number.
func createNumbered[T any](
	ctx context.Context,
	generate func(context.Context) (string, error),
	build func(number string) (T, error),
	insert func(context.Context, T) error,
) (T, error) {
	var zero T
	for attempt := 1; ; attempt++ {
		number, err := generate(ctx)
		if err != nil {
			return zero, err
		}
		agg, err := build(number)
		if err != nil {
			return zero, err
		}
		err = insert(ctx, agg)
		if err == nil {
			return agg, nil
		}
		if !errors.Is(err, shared.ErrAlreadyExists) || attempt == maxNumberAttempts {
			return zero, err
		}
	}
}

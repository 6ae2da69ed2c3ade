package persistence

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// sequenceWidth is the zero padded width of the running number
const sequenceWidth = 5

// nextNumber returns PREFIX-YYYY-NNNNN following the tenant's highest number of that year
func nextNumber(ctx context.Context, db *gorm.DB, table, prefix string, tenantID uuid.UUID, now time.Time) (string, error) {
	yearPrefix := fmt.Sprintf("%s-%d-", prefix, now.Year())

	var last *string
	err := db.WithContext(ctx).
		Table(table).
		Scopes(tenantScope(tenantID)).
		Where("number LIKE ?", yearPrefix+"%").
		Select("MAX(number)").
		Scan(&last).Error
	if err != nil {
		return "", fmt.Errorf("failed to read last %s number: %w", prefix, err)
	}

	seq := 1
	if last != nil && *last != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(*last, yearPrefix))
		if err != nil {
			return "", fmt.Errorf("malformed %s number %q: %w", prefix, *last, err)
		}
		seq = n + 1
	}
	return fmt.Sprintf("%s%0*d", yearPrefix, sequenceWidth, seq), nil
}

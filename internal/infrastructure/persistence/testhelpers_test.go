package persistence

import (
	"testing"

	"github.com/erp/crm/internal/infrastructure/config"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB opens a migrated in-memory sqlite database
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewDatabase(&config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })
	return db.DB
}

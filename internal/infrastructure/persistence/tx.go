package persistence

import (
	"errors"
	"strings"

	"github.com/erp/crm/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate adds a row lock where the dialect supports one
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func tenantScope(tenantID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}

// translateError maps driver errors onto domain errors
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return shared.ErrAlreadyExists
	}
	return err
}

// isUniqueViolation covers drivers that do not translate errors
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 23505") || strings.Contains(msg, "UNIQUE constraint failed")
}

// updateVersioned writes columns guarded by the version read under lock and bumps it
func updateVersioned(tx *gorm.DB, model any, id uuid.UUID, version int, columns map[string]any) error {
	columns["version"] = version + 1
	result := tx.Model(model).
		Omit(clause.Associations).
		Where("id = ? AND version = ?", id, version).
		Updates(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrentModification
	}
	return nil
}

// upsertByID inserts new children and overwrites existing ones
func upsertByID[T any](tx *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&rows).Error
}

package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/erp/crm/internal/domain/sales"
	"github.com/erp/crm/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saveInvoice(t *testing.T, repo *GormInvoiceRepository, tenantID, companyID uuid.UUID, number string, typ sales.InvoiceType, date time.Time) *sales.Invoice {
	t.Helper()
	inv, err := sales.NewInvoice(tenantID, number, typ, sales.SaleTypeStock, valueobject.RUB, date, companyID)
	require.NoError(t, err)
	_, err = inv.AddLine(nil, "Switch", decimal.NewFromInt(2), decimal.NewFromInt(500))
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), inv))
	return inv
}

func TestGormInvoiceRepository_FindSales(t *testing.T) {
	ctx := context.Background()
	repo := NewGormInvoiceRepository(newTestDB(t))
	tenantID, companyID := uuid.New(), uuid.New()
	day := func(d int) time.Time { return time.Date(2026, 6, d, 12, 0, 0, 0, time.UTC) }

	saveInvoice(t, repo, tenantID, companyID, "S-1", sales.InvoiceTypeSale, day(1))
	saveInvoice(t, repo, tenantID, companyID, "S-2", sales.InvoiceTypeSale, day(10))
	saveInvoice(t, repo, tenantID, companyID, "P-1", sales.InvoiceTypePurchase, day(5))
	saveInvoice(t, repo, tenantID, uuid.New(), "S-3", sales.InvoiceTypeSale, day(5))
	saveInvoice(t, repo, tenantID, companyID, "S-4", sales.InvoiceTypeSale, day(20))

	window := sales.Window{
		From: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 6, 20, 12, 0, 0, 0, time.UTC),
	}
	got, err := repo.FindSales(ctx, tenantID, companyID, window)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "S-1", got[0].Number)
	assert.Equal(t, "S-2", got[1].Number)
	require.Len(t, got[0].Lines, 1)
	assert.True(t, decimal.NewFromInt(1000).Equal(got[0].TotalAmount()))
}

func TestGormInvoiceRepository_Find(t *testing.T) {
	ctx := context.Background()
	repo := NewGormInvoiceRepository(newTestDB(t))
	tenantID, companyID := uuid.New(), uuid.New()

	saveInvoice(t, repo, tenantID, companyID, "S-1", sales.InvoiceTypeSale, time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC))
	saveInvoice(t, repo, tenantID, companyID, "S-2", sales.InvoiceTypeSale, time.Date(2026, 1, 31, 18, 30, 0, 0, time.UTC))
	saveInvoice(t, repo, tenantID, companyID, "P-1", sales.InvoiceTypePurchase, time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC))
	saveInvoice(t, repo, tenantID, uuid.New(), "S-3", sales.InvoiceTypeSale, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))

	t.Run("no filter returns tenant invoices", func(t *testing.T) {
		got, err := repo.Find(ctx, tenantID, sales.InvoiceFilter{})
		require.NoError(t, err)
		assert.Len(t, got, 4)
	})

	t.Run("to date includes the whole day", func(t *testing.T) {
		from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
		got, err := repo.Find(ctx, tenantID, sales.InvoiceFilter{Type: sales.InvoiceTypeSale, From: &from, To: &to})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "S-2", got[1].Number)
	})

	t.Run("by company", func(t *testing.T) {
		got, err := repo.Find(ctx, tenantID, sales.InvoiceFilter{CompanyID: &companyID})
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("other tenant", func(t *testing.T) {
		got, err := repo.Find(ctx, uuid.New(), sales.InvoiceFilter{})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

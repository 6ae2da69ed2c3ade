package sales

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/crm/internal/domain/currency"
	"github.com/erp/crm/internal/domain/sales"
	"github.com/erp/crm/internal/domain/shared"
	"github.com/erp/crm/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockInvoiceRepository is a mock implementation of InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindSales(ctx context.Context, tenantID, companyID uuid.UUID, window sales.Window) ([]sales.Invoice, error) {
	args := m.Called(ctx, tenantID, companyID, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sales.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Find(ctx context.Context, tenantID uuid.UUID, filter sales.InvoiceFilter) ([]sales.Invoice, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sales.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, inv *sales.Invoice) error {
	return m.Called(ctx, inv).Error(0)
}

type staticHome valueobject.CurrencyCode

func (h staticHome) Home(context.Context, uuid.UUID) (valueobject.CurrencyCode, error) {
	return valueobject.CurrencyCode(h), nil
}

type fakeExporter struct {
	rows []ExportRow
}

func (e *fakeExporter) Export(_ context.Context, format ExportFormat, baseName string, rows []ExportRow) (*ExportFile, error) {
	e.rows = rows
	return &ExportFile{Name: baseName + "." + string(format), ContentType: "text/plain", Body: []byte("ok")}, nil
}

type fakeStorage struct {
	objects map[string][]byte
}

func (s *fakeStorage) PutObject(_ context.Context, key, _ string, body []byte) error {
	s.objects[key] = body
	return nil
}

func (s *fakeStorage) GenerateDownloadURL(_ context.Context, key, _ string) (string, time.Time, error) {
	return "https://files.local/" + key, time.Now().Add(time.Hour), nil
}

var fixedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestService(repo *MockInvoiceRepository) *Service {
	rates := currency.RateTable{
		valueobject.RUB: decimal.NewFromInt(1),
		valueobject.USD: decimal.NewFromInt(95),
	}
	svc := NewService(repo, staticHome(valueobject.RUB), currency.NewConverter(rates), nil)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func saleInvoice(t *testing.T, tenantID, companyID uuid.UUID, code valueobject.CurrencyCode, date time.Time, name string, qty, price int64) sales.Invoice {
	t.Helper()
	inv, err := sales.NewInvoice(tenantID, "INV-"+name, sales.InvoiceTypeSale, sales.SaleTypeOrder, code, date, companyID)
	require.NoError(t, err)
	_, err = inv.AddLine(nil, name, decimal.NewFromInt(qty), decimal.NewFromInt(price))
	require.NoError(t, err)
	return *inv
}

func TestService_CompanySalesSummary(t *testing.T) {
	ctx := context.Background()
	tenantID, companyID := uuid.New(), uuid.New()
	repo := new(MockInvoiceRepository)
	svc := newTestService(repo)

	current, previous, err := sales.Windows(fixedNow, 6)
	require.NoError(t, err)

	repo.On("FindSales", ctx, tenantID, companyID, current).Return([]sales.Invoice{
		saleInvoice(t, tenantID, companyID, valueobject.RUB, fixedNow.AddDate(0, -1, 0), "Bolt", 10, 50),
		saleInvoice(t, tenantID, companyID, valueobject.USD, fixedNow.AddDate(0, 0, -2), "Nut", 2, 5),
	}, nil)
	repo.On("FindSales", ctx, tenantID, companyID, previous).Return([]sales.Invoice{
		saleInvoice(t, tenantID, companyID, valueobject.RUB, fixedNow.AddDate(0, -8, 0), "Bolt", 10, 50),
	}, nil)

	resp, err := svc.CompanySalesSummary(ctx, tenantID, companyID, 0)
	require.NoError(t, err)

	assert.Equal(t, 6, resp.PeriodMonths)
	assert.Equal(t, 2, resp.TotalInvoices)
	assert.Equal(t, "1450.00", resp.TotalAmount)
	assert.Equal(t, "725.00", resp.AvgOrderValue)
	assert.Equal(t, "RUB", resp.Currency)
	assert.Equal(t, string(sales.TrendGrowth), resp.RevenueTrend)
	assert.Equal(t, string(sales.TrendGrowth), resp.OrdersTrend)
	require.NotNil(t, resp.LastPurchaseDate)
	assert.Equal(t, "13.03.2026", *resp.LastPurchaseDate)
	require.Len(t, resp.TopProducts, 2)
	assert.Equal(t, "Nut", resp.TopProducts[0].ProductName)
	assert.Equal(t, "950.00", resp.TopProducts[0].TotalAmount)
	repo.AssertExpectations(t)
}

func TestService_CompanySalesSummary_InvalidMonths(t *testing.T) {
	svc := newTestService(new(MockInvoiceRepository))

	_, err := svc.CompanySalesSummary(context.Background(), uuid.New(), uuid.New(), 37)
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}

func TestService_CompanySalesSummary_NoInvoices(t *testing.T) {
	ctx := context.Background()
	tenantID, companyID := uuid.New(), uuid.New()
	repo := new(MockInvoiceRepository)
	svc := newTestService(repo)
	repo.On("FindSales", ctx, tenantID, companyID, mock.Anything).Return([]sales.Invoice{}, nil)

	resp, err := svc.CompanySalesSummary(ctx, tenantID, companyID, 3)
	require.NoError(t, err)

	assert.Equal(t, 0, resp.TotalInvoices)
	assert.Equal(t, "0.00", resp.TotalAmount)
	assert.Nil(t, resp.LastPurchaseDate)
	assert.Empty(t, resp.TopProducts)
	assert.Equal(t, string(sales.TrendStable), resp.RevenueTrend)
}

func TestService_InvoiceStats(t *testing.T) {
	ctx := context.Background()
	tenantID, companyID := uuid.New(), uuid.New()
	repo := new(MockInvoiceRepository)
	svc := newTestService(repo)

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.On("Find", ctx, tenantID, mock.MatchedBy(func(f sales.InvoiceFilter) bool {
		return f.Type == sales.InvoiceTypeSale && f.From != nil && f.From.Equal(from) && f.To == nil
	})).Return([]sales.Invoice{
		saleInvoice(t, tenantID, companyID, valueobject.USD, fixedNow, "Nut", 1, 10),
		saleInvoice(t, tenantID, companyID, valueobject.RUB, fixedNow, "Bolt", 1, 50),
	}, nil)

	resp, err := svc.InvoiceStats(ctx, tenantID, InvoiceFilterRequest{Type: "sale", From: "2026-01-01"})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.TotalInvoices)
	assert.Equal(t, "1000.00", resp.TotalAmount)
	assert.Equal(t, "10.00", resp.SalesByCurrency["USD"])
	assert.Equal(t, "50.00", resp.SalesByCurrency["RUB"])
	assert.Equal(t, "1000.00", resp.SalesByType[string(sales.SaleTypeOrder)])
}

func TestService_InvoiceStats_BadRange(t *testing.T) {
	svc := newTestService(new(MockInvoiceRepository))

	_, err := svc.InvoiceStats(context.Background(), uuid.New(), InvoiceFilterRequest{From: "2026-02-01", To: "2026-01-01"})
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	_, err = svc.InvoiceStats(context.Background(), uuid.New(), InvoiceFilterRequest{Type: "refund"})
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}

func TestService_ExportInvoices(t *testing.T) {
	ctx := context.Background()
	tenantID, companyID := uuid.New(), uuid.New()

	t.Run("returns file without storage", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		svc := newTestService(repo)
		exporter := &fakeExporter{}
		svc.SetExporter(exporter)
		repo.On("Find", ctx, tenantID, mock.Anything).Return([]sales.Invoice{
			saleInvoice(t, tenantID, companyID, valueobject.USD, fixedNow, "Nut", 3, 2),
		}, nil)

		file, resp, err := svc.ExportInvoices(ctx, tenantID, InvoiceFilterRequest{}, "csv")
		require.NoError(t, err)
		require.NotNil(t, file)

		assert.Equal(t, "invoices-20260315-120000.csv", resp.FileName)
		assert.Equal(t, 1, resp.Rows)
		assert.Empty(t, resp.StorageKey)
		require.Len(t, exporter.rows, 1)
		assert.Equal(t, "6.00", exporter.rows[0].Total)
		assert.Equal(t, "570.00", exporter.rows[0].TotalHome)
	})

	t.Run("uploads when storage is configured", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		svc := newTestService(repo)
		storage := &fakeStorage{objects: map[string][]byte{}}
		svc.SetExporter(&fakeExporter{})
		svc.SetStorage(storage)
		repo.On("Find", ctx, tenantID, mock.Anything).Return([]sales.Invoice{}, nil)

		file, resp, err := svc.ExportInvoices(ctx, tenantID, InvoiceFilterRequest{}, "")
		require.NoError(t, err)

		assert.Nil(t, file)
		assert.Equal(t, "exports/"+tenantID.String()+"/invoices-20260315-120000.xlsx", resp.StorageKey)
		assert.Contains(t, resp.DownloadURL, resp.StorageKey)
		assert.Contains(t, storage.objects, resp.StorageKey)
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		svc := newTestService(new(MockInvoiceRepository))
		svc.SetExporter(&fakeExporter{})

		_, _, err := svc.ExportInvoices(ctx, tenantID, InvoiceFilterRequest{}, "pdf")
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("requires an exporter", func(t *testing.T) {
		svc := newTestService(new(MockInvoiceRepository))

		_, _, err := svc.ExportInvoices(ctx, tenantID, InvoiceFilterRequest{}, "csv")
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})
}

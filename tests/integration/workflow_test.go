//go:build integration

package integration

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	currencyapp "github.com/erp/crm/internal/application/currency"
	rfqapp "github.com/erp/crm/internal/application/rfq"
	"github.com/erp/crm/internal/domain/partner"
	"github.com/erp/crm/internal/domain/rfq"
	"github.com/erp/crm/internal/domain/shared"
	"github.com/erp/crm/internal/infrastructure/event"
	"github.com/erp/crm/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	code := m.Run()
	CleanupSharedContainer()
	os.Exit(code)
}

// workflow wires the RFQ services over PostgreSQL the way the server does
type workflow struct {
	tenantID   uuid.UUID
	sales      uuid.UUID
	product    uuid.UUID
	company    *partner.Company
	currencies *currencyapp.Service
	rfqs       *rfqapp.RFQService
	quotations *rfqapp.QuotationService
	bus        *event.InMemoryEventBus
}

func newWorkflow(t *testing.T, tdb *TestDB) *workflow {
	t.Helper()
	ctx := context.Background()
	log := zap.NewNop()

	w := &workflow{tenantID: uuid.New(), sales: uuid.New(), product: uuid.New()}

	w.currencies = currencyapp.NewService(persistence.NewGormCurrencyRepository(tdb.DB), nil, nil, log)
	_, err := w.currencies.SeedDefaults(ctx, w.tenantID, false)
	require.NoError(t, err)

	companyRepo := persistence.NewGormCompanyRepository(tdb.DB)
	w.company, err = partner.NewCompany(w.tenantID, "Volga Machinery", partner.CompanyTypeEndUser)
	require.NoError(t, err)
	require.NoError(t, companyRepo.Save(ctx, w.company))

	rfqRepo := persistence.NewGormRFQRepository(tdb.DB)
	productRepo := persistence.NewGormProductRepository(tdb.DB)
	w.rfqs = rfqapp.NewRFQService(rfqRepo, companyRepo, productRepo, log)
	w.quotations = rfqapp.NewQuotationService(persistence.NewGormQuotationRepository(tdb.DB), rfqRepo, productRepo, w.currencies, log)

	w.bus = event.NewInMemoryEventBus(log)
	status := rfqapp.NewRFQStatusHandler(rfqRepo, log)
	status.SetEventPublisher(w.bus)
	w.bus.Subscribe(status)
	w.rfqs.SetEventPublisher(w.bus)
	w.quotations.SetEventPublisher(w.bus)
	require.NoError(t, w.bus.Start(ctx))
	return w
}

func (w *workflow) submittedRFQ(t *testing.T, quantities ...int64) *rfqapp.RFQResponse {
	t.Helper()
	ctx := context.Background()

	items := make([]rfqapp.AddRFQItemRequest, 0, len(quantities))
	for _, qty := range quantities {
		items = append(items, rfqapp.AddRFQItemRequest{ProductName: "Centrifugal pump", Quantity: qty, Unit: "pcs"})
	}
	created, err := w.rfqs.Create(ctx, w.tenantID, w.sales, rfqapp.CreateRFQRequest{
		Title:     "Pumps for the northern plant",
		CompanyID: w.company.ID,
		Items:     items,
	})
	require.NoError(t, err)

	submitted, err := w.rfqs.Submit(ctx, w.tenantID, created.ID)
	require.NoError(t, err)
	return submitted
}

func TestWorkflow_QuotationDrivesRFQStatus(t *testing.T) {
	tdb := NewSharedTestDB(t)
	w := newWorkflow(t, tdb)
	ctx := context.Background()

	r := w.submittedRFQ(t, 3)
	assert.Equal(t, string(rfq.RFQStatusSubmitted), r.Status)

	pending, err := w.rfqs.PendingFor(ctx, w.tenantID, w.product)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	q, err := w.quotations.Create(ctx, w.tenantID, w.product, rfqapp.CreateQuotationRequest{
		RFQID:    r.ID,
		Title:    "Offer",
		Currency: "USD",
	})
	require.NoError(t, err)

	got, err := w.rfqs.GetByID(ctx, w.tenantID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, string(rfq.RFQStatusInProgress), got.Status)

	pending, err = w.rfqs.PendingFor(ctx, w.tenantID, w.product)
	require.NoError(t, err)
	assert.Empty(t, pending)

	item, err := w.quotations.AddItem(ctx, w.tenantID, q.ID, rfqapp.AddQuotationItemRequest{
		RFQItemID:     r.Items[0].ID,
		Quantity:      3,
		UnitCostPrice: decimal.NewFromInt(100),
		MarkupPercent: decimal.NewFromInt(20),
	})
	require.NoError(t, err)
	assert.Equal(t, "120.00", item.UnitPrice)

	submitted, err := w.quotations.Submit(ctx, w.tenantID, q.ID)
	require.NoError(t, err)
	assert.Equal(t, "360.00", submitted.TotalAmount)

	got, err = w.rfqs.GetByID(ctx, w.tenantID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, string(rfq.RFQStatusQuoted), got.Status)

	closed, err := w.rfqs.Close(ctx, w.tenantID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, string(rfq.RFQStatusClosed), closed.Status)
	assert.Zero(t, w.bus.Failures())
}

func TestWorkflow_ConcurrentAcceptIsSerialized(t *testing.T) {
	tdb := NewSharedTestDB(t)
	w := newWorkflow(t, tdb)
	ctx := context.Background()

	r := w.submittedRFQ(t, 1)
	q, err := w.quotations.Create(ctx, w.tenantID, w.product, rfqapp.CreateQuotationRequest{
		RFQID: r.ID, Title: "Offer", Currency: "RUB",
	})
	require.NoError(t, err)
	_, err = w.quotations.AddItem(ctx, w.tenantID, q.ID, rfqapp.AddQuotationItemRequest{
		RFQItemID: r.Items[0].ID, Quantity: 1, UnitCostPrice: decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	_, err = w.quotations.Submit(ctx, w.tenantID, q.ID)
	require.NoError(t, err)

	const callers = 5
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, errs[i] = w.quotations.Accept(ctx, w.tenantID, q.ID)
			} else {
				_, errs[i] = w.quotations.Reject(ctx, w.tenantID, q.ID, rfqapp.ReasonRequest{Reason: "too expensive"})
			}
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	}
	assert.Equal(t, 1, succeeded)

	final, err := w.quotations.GetByID(ctx, w.tenantID, q.ID)
	require.NoError(t, err)
	assert.Contains(t, []string{string(rfq.QuotationStatusAccepted), string(rfq.QuotationStatusRejected)}, final.Status)
	assert.Equal(t, q.Version+3, final.Version)
}

func TestWorkflow_ConcurrentItemsGetDistinctLineNumbers(t *testing.T) {
	tdb := NewSharedTestDB(t)
	w := newWorkflow(t, tdb)
	ctx := context.Background()

	created, err := w.rfqs.Create(ctx, w.tenantID, w.sales, rfqapp.CreateRFQRequest{
		Title: "Spare parts", CompanyID: w.company.ID,
	})
	require.NoError(t, err)

	const items = 6
	var wg sync.WaitGroup
	errs := make([]error, items)
	for i := range items {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = w.rfqs.AddItem(ctx, w.tenantID, created.ID, rfqapp.AddRFQItemRequest{
				ProductName: "Bearing", Quantity: int64(i + 1),
			})
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	got, err := w.rfqs.GetByID(ctx, w.tenantID, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, items)
	for i, item := range got.Items {
		assert.Equal(t, i+1, item.LineNumber)
	}
	assert.Equal(t, created.Version+items, got.Version)
}

func TestWorkflow_ConcurrentCreatesGetDistinctNumbers(t *testing.T) {
	tdb := NewSharedTestDB(t)
	w := newWorkflow(t, tdb)
	ctx := context.Background()

	const creates = 8
	var wg sync.WaitGroup
	numbers := make([]string, creates)
	errs := make([]error, creates)
	for i := range creates {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			created, err := w.rfqs.Create(ctx, w.tenantID, w.sales, rfqapp.CreateRFQRequest{
				Title: "Valves", CompanyID: w.company.ID,
			})
			errs[i] = err
			if err == nil {
				numbers[i] = created.Number
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, creates)
	for i := range creates {
		require.NoError(t, errs[i])
		assert.False(t, seen[numbers[i]], numbers[i])
		seen[numbers[i]] = true
	}
	assert.Len(t, seen, creates)
}

func TestWorkflow_TenantIsolation(t *testing.T) {
	tdb := NewSharedTestDB(t)
	a := newWorkflow(t, tdb)
	b := newWorkflow(t, tdb)
	ctx := context.Background()

	r := a.submittedRFQ(t, 2)

	_, err := b.rfqs.GetByID(ctx, b.tenantID, r.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = b.rfqs.Cancel(ctx, b.tenantID, r.ID, rfqapp.ReasonRequest{})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = b.quotations.Create(ctx, b.tenantID, b.product, rfqapp.CreateQuotationRequest{
		RFQID: r.ID, Title: "Poaching", Currency: "RUB",
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	pending, err := b.rfqs.PendingFor(ctx, b.tenantID, b.product)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = a.currencies.UpdateRate(ctx, a.tenantID, "USD", currencyapp.UpdateRateRequest{Rate: decimal.NewFromInt(100)})
	require.NoError(t, err)
	rate, err := b.currencies.Rate(ctx, b.tenantID, "USD")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(95).Equal(rate), rate.String())
}

func TestWorkflow_OverdueQuotationsExpire(t *testing.T) {
	tdb := NewSharedTestDB(t)
	w := newWorkflow(t, tdb)
	ctx := context.Background()

	r := w.submittedRFQ(t, 1)
	lapsed := time.Now().Add(-time.Hour)
	q, err := w.quotations.Create(ctx, w.tenantID, w.product, rfqapp.CreateQuotationRequest{
		RFQID: r.ID, Title: "Short offer", Currency: "RUB", ValidUntil: &lapsed,
	})
	require.NoError(t, err)
	_, err = w.quotations.AddItem(ctx, w.tenantID, q.ID, rfqapp.AddQuotationItemRequest{
		RFQItemID: r.Items[0].ID, Quantity: 1, UnitCostPrice: decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	_, err = w.quotations.Submit(ctx, w.tenantID, q.ID)
	require.NoError(t, err)

	n, err := w.quotations.ExpireOverdue(ctx, time.Now(), 100)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)

	got, err := w.quotations.GetByID(ctx, w.tenantID, q.ID)
	require.NoError(t, err)
	assert.Equal(t, string(rfq.QuotationStatusExpired), got.Status)

	_, err = w.quotations.Accept(ctx, w.tenantID, q.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

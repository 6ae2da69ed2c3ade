package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	currencyapp "github.com/erp/crm/internal/application/currency"
	pricingapp "github.com/erp/crm/internal/application/pricing"
	rfqapp "github.com/erp/crm/internal/application/rfq"
	salesapp "github.com/erp/crm/internal/application/sales"
	"github.com/erp/crm/internal/domain/partner"
	"github.com/erp/crm/internal/infrastructure/auth"
	"github.com/erp/crm/internal/infrastructure/config"
	"github.com/erp/crm/internal/infrastructure/export"
	"github.com/erp/crm/internal/infrastructure/logger"
	"github.com/erp/crm/internal/infrastructure/persistence"
	"github.com/erp/crm/internal/interfaces/http/dto"
	"github.com/erp/crm/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// testEnv is a full handler stack over an in-memory sqlite database
type testEnv struct {
	t              *testing.T
	db             *gorm.DB
	router         *gin.Engine
	tenantID       uuid.UUID
	salesManager   uuid.UUID
	productManager uuid.UUID
	company        *partner.Company

	currencies *currencyapp.Service
	quotations *rfqapp.QuotationService
	sales      *salesapp.Service
}

type stubRenderer struct {
	docs []rfqapp.QuotationDocument
}

func (s *stubRenderer) RenderQuotation(_ context.Context, doc rfqapp.QuotationDocument) ([]byte, error) {
	s.docs = append(s.docs, doc)
	return []byte("%PDF-1.7 " + doc.Quotation.Number), nil
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	database, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate())
	t.Cleanup(func() { _ = database.Close() })
	db := database.DB

	env := &testEnv{
		t:              t,
		db:             db,
		tenantID:       uuid.New(),
		salesManager:   uuid.New(),
		productManager: uuid.New(),
	}
	log := zap.NewNop()
	ctx := context.Background()

	currencyRepo := persistence.NewGormCurrencyRepository(db)
	companyRepo := persistence.NewGormCompanyRepository(db)
	productRepo := persistence.NewGormProductRepository(db)
	rfqRepo := persistence.NewGormRFQRepository(db)
	quotationRepo := persistence.NewGormQuotationRepository(db)
	invoiceRepo := persistence.NewGormInvoiceRepository(db)

	env.currencies = currencyapp.NewService(currencyRepo, nil, nil, log)
	_, err = env.currencies.SeedDefaults(ctx, env.tenantID, false)
	require.NoError(t, err)

	env.company, err = partner.NewCompany(env.tenantID, "Acme Industrial", partner.CompanyTypeEndUser)
	require.NoError(t, err)
	require.NoError(t, companyRepo.Save(ctx, env.company))

	rfqs := rfqapp.NewRFQService(rfqRepo, companyRepo, productRepo, log)
	env.quotations = rfqapp.NewQuotationService(quotationRepo, rfqRepo, productRepo, env.currencies, log)
	env.sales = salesapp.NewService(invoiceRepo, env.currencies, env.currencies.ReportingConverter(), log)
	env.sales.SetExporter(export.NewInvoiceExporter())

	env.router = gin.New()
	env.router.Use(func(c *gin.Context) {
		c.Set(logger.GinRequestIDKey, "req-test")
		c.Set(logger.GinLoggerKey, log)
		c.Next()
	})
	env.router.Use(env.authenticate)

	currencyHandler := NewCurrencyHandler(env.currencies)
	pricingHandler := NewPricingHandler(pricingapp.NewService(env.currencies.Converter()))
	rfqHandler := NewRFQHandler(rfqs)
	quotationHandler := NewQuotationHandler(env.quotations)
	salesHandler := NewSalesHandler(env.sales)

	api := env.router.Group("/api/v1")
	api.POST("/currencies/convert", currencyHandler.Convert)
	api.GET("/currencies", currencyHandler.ListActive)
	api.PUT("/currencies/:code/rate", currencyHandler.UpdateRate)
	api.POST("/currencies/:code/deactivate", currencyHandler.Deactivate)

	api.POST("/pricing/breakdown", pricingHandler.Breakdown)

	api.POST("/rfqs", rfqHandler.Create)
	api.GET("/rfqs/pending", rfqHandler.Pending)
	api.GET("/rfqs/:id", rfqHandler.GetByID)
	api.POST("/rfqs/:id/items", rfqHandler.AddItem)
	api.POST("/rfqs/:id/submit", rfqHandler.Submit)
	api.POST("/rfqs/:id/start", rfqHandler.Start)
	api.POST("/rfqs/:id/close", rfqHandler.Close)
	api.POST("/rfqs/:id/cancel", rfqHandler.Cancel)
	api.GET("/rfqs/:id/quotations", quotationHandler.ListByRFQ)

	api.POST("/quotations", quotationHandler.Create)
	api.GET("/quotations/:id", quotationHandler.GetByID)
	api.POST("/quotations/:id/items", quotationHandler.AddItem)
	api.POST("/quotations/:id/submit", quotationHandler.Submit)
	api.POST("/quotations/:id/accept", quotationHandler.Accept)
	api.POST("/quotations/:id/reject", quotationHandler.Reject)
	api.POST("/quotations/:id/expire", quotationHandler.Expire)
	api.GET("/quotations/:id/pdf", quotationHandler.PDF)

	api.GET("/companies/:id/sales-summary", salesHandler.CompanySummary)
	api.GET("/invoices/stats", salesHandler.InvoiceStats)
	api.GET("/invoices/export", salesHandler.ExportInvoices)
	return env
}

// authenticate stands in for the JWT middleware. The X-Test-User header picks
// the caller; "anonymous" leaves the request without claims.
func (e *testEnv) authenticate(c *gin.Context) {
	switch c.GetHeader("X-Test-User") {
	case "anonymous":
	case "product":
		e.setClaims(c, e.productManager, auth.RoleProduct)
	default:
		e.setClaims(c, e.salesManager, auth.RoleSales)
	}
	c.Next()
}

func (e *testEnv) setClaims(c *gin.Context, userID uuid.UUID, role auth.Role) {
	c.Set(middleware.JWTTenantIDKey, e.tenantID.String())
	c.Set(middleware.JWTUserIDKey, userID.String())
	c.Set(middleware.JWTRoleKey, role)
}

// do sends a request as the given caller and returns the recorder
func (e *testEnv) do(method, path, user string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Test-User", user)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// envelope is the decoded response with data left raw
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

// requireError asserts status and API error code of a failed response
func requireError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) envelope {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	env := decode(t, w, nil)
	require.False(t, env.Success)
	require.NotNil(t, env.Error)
	require.Equal(t, code, env.Error.Code)
	require.Equal(t, "req-test", env.Error.RequestID)
	return env
}

// createSubmittedRFQ creates an RFQ with one new-product line and submits it
func (e *testEnv) createSubmittedRFQ() rfqapp.RFQResponse {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/v1/rfqs", "sales", map[string]any{
		"title":      "Pumps for line 3",
		"company_id": e.company.ID,
		"priority":   "high",
		"items": []map[string]any{
			{"product_name": "Centrifugal pump", "manufacturer": "Grundfos", "quantity": 3, "unit": "pcs"},
		},
	})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	var created rfqapp.RFQResponse
	decode(e.t, w, &created)

	w = e.do(http.MethodPost, "/api/v1/rfqs/"+created.ID.String()+"/submit", "sales", nil)
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	var submitted rfqapp.RFQResponse
	decode(e.t, w, &submitted)
	return submitted
}

// createQuotation starts a quotation for r with one priced line
func (e *testEnv) createQuotation(r rfqapp.RFQResponse) rfqapp.QuotationResponse {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/v1/quotations", "product", map[string]any{
		"rfq_id":   r.ID,
		"title":    "Offer for " + r.Number,
		"currency": "RUB",
	})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	var q rfqapp.QuotationResponse
	decode(e.t, w, &q)

	w = e.do(http.MethodPost, "/api/v1/quotations/"+q.ID.String()+"/items", "product", map[string]any{
		"rfq_item_id":     r.Items[0].ID,
		"quantity":        3,
		"unit_cost_price": "100",
		"markup_percent":  "20",
	})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(http.MethodGet, "/api/v1/quotations/"+q.ID.String(), "product", nil)
	require.Equal(e.t, http.StatusOK, w.Code)
	decode(e.t, w, &q)
	return q
}

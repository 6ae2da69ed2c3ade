package handler

import (
	"context"
	"net/http"
	"testing"

	rfqapp "github.com/erp/crm/internal/application/rfq"
	"github.com/erp/crm/internal/domain/catalog"
	"github.com/erp/crm/internal/domain/partner"
	"github.com/erp/crm/internal/infrastructure/persistence"
	"github.com/erp/crm/internal/interfaces/http/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRFQHandler_Lifecycle(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/v1/rfqs", "sales", map[string]any{
		"title":      "Valves",
		"company_id": env.company.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created rfqapp.RFQResponse
	decode(t, w, &created)
	assert.Equal(t, "draft", created.Status)
	assert.Equal(t, env.salesManager, created.SalesManagerID)
	assert.NotEmpty(t, created.Number)
	assert.Empty(t, created.Items)
	base := "/api/v1/rfqs/" + created.ID.String()

	w = env.do(http.MethodPost, base+"/submit", "sales", nil)
	requireError(t, w, http.StatusUnprocessableEntity, dto.ErrCodeEmptyRFQ)

	w = env.do(http.MethodPost, base+"/items", "sales", map[string]any{
		"product_name": "Ball valve DN50", "quantity": 10, "unit": "pcs",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var item rfqapp.RFQItemResponse
	decode(t, w, &item)
	assert.Equal(t, 1, item.LineNumber)
	assert.True(t, item.IsNewProduct)

	w = env.do(http.MethodPost, base+"/submit", "sales", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var submitted rfqapp.RFQResponse
	decode(t, w, &submitted)
	assert.Equal(t, "submitted", submitted.Status)
	assert.NotNil(t, submitted.SubmittedAt)
	assert.Greater(t, submitted.Version, created.Version)

	w = env.do(http.MethodPost, base+"/submit", "sales", nil)
	requireError(t, w, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState)

	w = env.do(http.MethodPost, base+"/start", "product", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var started rfqapp.RFQResponse
	decode(t, w, &started)
	assert.Equal(t, "in_progress", started.Status)

	w = env.do(http.MethodPost, base+"/items", "sales", map[string]any{"product_name": "Late line", "quantity": 1})
	requireError(t, w, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState)

	w = env.do(http.MethodPost, base+"/close", "sales", nil)
	requireError(t, w, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState)

	w = env.do(http.MethodPost, base+"/cancel", "sales", map[string]any{"reason": "customer went silent"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var cancelled rfqapp.RFQResponse
	decode(t, w, &cancelled)
	assert.Equal(t, "cancelled", cancelled.Status)

	w = env.do(http.MethodGet, base, "product", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched rfqapp.RFQResponse
	decode(t, w, &fetched)
	assert.Equal(t, "cancelled", fetched.Status)
	require.Len(t, fetched.Items, 1)
	assert.Equal(t, "Ball valve DN50", fetched.Items[0].ProductName)
}

func TestRFQHandler_Create(t *testing.T) {
	env := newTestEnv(t)

	t.Run("creates with items", func(t *testing.T) {
		r := env.createSubmittedRFQ()
		assert.Equal(t, "submitted", r.Status)
		assert.Equal(t, "high", r.Priority)
		require.Len(t, r.Items, 1)
		assert.Equal(t, int64(3), r.Items[0].Quantity)
	})

	t.Run("title is required", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/v1/rfqs", "sales", map[string]any{"company_id": env.company.ID})
		body := requireError(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
		require.NotEmpty(t, body.Error.Details)
		assert.Equal(t, "title", body.Error.Details[0].Field)
	})

	t.Run("unknown company", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/v1/rfqs", "sales", map[string]any{
			"title": "Ghost", "company_id": uuid.New(),
		})
		requireError(t, w, http.StatusBadRequest, dto.ErrCodeInvalidInput)
	})

	t.Run("blacklisted company", func(t *testing.T) {
		c, err := partner.NewCompany(env.tenantID, "Bad Debts LLC", partner.CompanyTypeOther)
		require.NoError(t, err)
		c.Status = partner.CompanyStatusBlacklist
		require.NoError(t, persistence.NewGormCompanyRepository(env.db).Save(context.Background(), c))

		w := env.do(http.MethodPost, "/api/v1/rfqs", "sales", map[string]any{"title": "Nope", "company_id": c.ID})
		requireError(t, w, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState)
	})

	t.Run("item referencing and naming a product", func(t *testing.T) {
		p, err := catalog.NewProduct(env.tenantID, "PMP-100", "Pump", "pcs")
		require.NoError(t, err)
		require.NoError(t, persistence.NewGormProductRepository(env.db).Save(context.Background(), p))

		w := env.do(http.MethodPost, "/api/v1/rfqs", "sales", map[string]any{
			"title":      "Mixed",
			"company_id": env.company.ID,
			"items": []map[string]any{
				{"product_id": p.ID, "product_name": "Also a name", "quantity": 1},
			},
		})
		requireError(t, w, http.StatusBadRequest, dto.ErrCodeAmbiguousOrMissingProduct)
	})
}

func TestRFQHandler_AddItem(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodPost, "/api/v1/rfqs", "sales", map[string]any{"title": "Cables", "company_id": env.company.ID})
	require.Equal(t, http.StatusCreated, w.Code)
	var r rfqapp.RFQResponse
	decode(t, w, &r)

	t.Run("neither product nor name", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/v1/rfqs/"+r.ID.String()+"/items", "sales", map[string]any{"quantity": 2})
		requireError(t, w, http.StatusBadRequest, dto.ErrCodeAmbiguousOrMissingProduct)
	})

	t.Run("unknown rfq", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/v1/rfqs/"+uuid.NewString()+"/items", "sales", map[string]any{
			"product_name": "Cable", "quantity": 2,
		})
		requireError(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/v1/rfqs/not-a-uuid/items", "sales", map[string]any{
			"product_name": "Cable", "quantity": 2,
		})
		requireError(t, w, http.StatusBadRequest, dto.ErrCodeInvalidInput)
	})
}

func TestRFQHandler_GetByID(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/rfqs/"+uuid.NewString(), "sales", nil)
	requireError(t, w, http.StatusNotFound, dto.ErrCodeNotFound)

	w = env.do(http.MethodGet, "/api/v1/rfqs/123", "sales", nil)
	requireError(t, w, http.StatusBadRequest, dto.ErrCodeInvalidInput)
}

func TestRFQHandler_Pending(t *testing.T) {
	env := newTestEnv(t)
	r := env.createSubmittedRFQ()

	w := env.do(http.MethodGet, "/api/v1/rfqs/pending", "product", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var pending []rfqapp.RFQResponse
	body := decode(t, w, &pending)
	require.Len(t, pending, 1)
	assert.Equal(t, r.ID, pending[0].ID)
	assert.Equal(t, 1, body.Meta.Total)

	env.createQuotation(r)

	w = env.do(http.MethodGet, "/api/v1/rfqs/pending", "product", nil)
	require.Equal(t, http.StatusOK, w.Code)
	pending = nil
	body = decode(t, w, &pending)
	assert.Empty(t, pending)
	assert.Equal(t, 0, body.Meta.Total)
}

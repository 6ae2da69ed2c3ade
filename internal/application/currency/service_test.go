package currency

import (
	"context"
	"sync"
	"testing"

	"github.com/erp/crm/internal/domain/currency"
	"github.com/erp/crm/internal/domain/shared"
	"github.com/erp/crm/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCurrencyRepository is a mock implementation of CurrencyRepository
type MockCurrencyRepository struct {
	mock.Mock
}

func (m *MockCurrencyRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code valueobject.CurrencyCode) (*currency.Currency, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*currency.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) FindActive(ctx context.Context, tenantID uuid.UUID) ([]currency.Currency, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]currency.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) FindHome(ctx context.Context, tenantID uuid.UUID) (*currency.Currency, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*currency.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) Save(ctx context.Context, c *currency.Currency) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCurrencyRepository) SaveWithLock(ctx context.Context, c *currency.Currency) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

type mapCache struct {
	mu          sync.Mutex
	rates       map[string]decimal.Decimal
	invalidated []valueobject.CurrencyCode
}

func newMapCache() *mapCache {
	return &mapCache{rates: make(map[string]decimal.Decimal)}
}

func (c *mapCache) key(tenantID uuid.UUID, code valueobject.CurrencyCode) string {
	return tenantID.String() + ":" + code.String()
}

func (c *mapCache) Get(_ context.Context, tenantID uuid.UUID, code valueobject.CurrencyCode) (decimal.Decimal, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.rates[c.key(tenantID, code)]
	return r, ok
}

func (c *mapCache) Set(_ context.Context, tenantID uuid.UUID, code valueobject.CurrencyCode, rate decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rates[c.key(tenantID, code)] = rate
}

func (c *mapCache) Invalidate(_ context.Context, tenantID uuid.UUID, code valueobject.CurrencyCode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rates, c.key(tenantID, code))
	c.invalidated = append(c.invalidated, code)
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func seeded(t *testing.T, tenantID uuid.UUID) map[valueobject.CurrencyCode]*currency.Currency {
	rub, err := currency.NewHomeCurrency(tenantID, valueobject.RUB, "Russian Ruble", "₽")
	require.NoError(t, err)
	usd, err := currency.NewCurrency(tenantID, valueobject.USD, "US Dollar", "$", decimal.NewFromInt(95))
	require.NoError(t, err)
	cny, err := currency.NewCurrency(tenantID, valueobject.CNY, "Chinese Yuan", "¥", decimal.NewFromInt(13))
	require.NoError(t, err)
	return map[valueobject.CurrencyCode]*currency.Currency{valueobject.RUB: rub, valueobject.USD: usd, valueobject.CNY: cny}
}

func expectCurrencies(repo *MockCurrencyRepository, tenantID uuid.UUID, list map[valueobject.CurrencyCode]*currency.Currency) {
	for code, c := range list {
		repo.On("FindByCode", mock.Anything, tenantID, code).Return(c, nil).Maybe()
	}
}

func TestService_Convert(t *testing.T) {
	tenantID := uuid.New()
	repo := new(MockCurrencyRepository)
	expectCurrencies(repo, tenantID, seeded(t, tenantID))
	svc := NewService(repo, nil, nil, nil)

	t.Run("USD to RUB", func(t *testing.T) {
		resp, err := svc.Convert(context.Background(), tenantID, ConvertRequest{Amount: decimal.NewFromInt(100), From: "USD", To: "rub"})
		require.NoError(t, err)
		assert.Equal(t, "9500.00", resp.Result)
		assert.Equal(t, "RUB", resp.To)
		assert.Contains(t, resp.Formatted, "9,500.00")
	})

	t.Run("CNY to USD rounds at the boundary", func(t *testing.T) {
		resp, err := svc.Convert(context.Background(), tenantID, ConvertRequest{Amount: decimal.NewFromInt(13), From: "CNY", To: "USD"})
		require.NoError(t, err)
		assert.Equal(t, "1.78", resp.Result)
	})

	t.Run("invalid code", func(t *testing.T) {
		_, err := svc.Convert(context.Background(), tenantID, ConvertRequest{Amount: decimal.NewFromInt(1), From: "US", To: "RUB"})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestService_Rate(t *testing.T) {
	tenantID := uuid.New()

	t.Run("unknown currency", func(t *testing.T) {
		repo := new(MockCurrencyRepository)
		repo.On("FindByCode", mock.Anything, tenantID, valueobject.CurrencyCode("EUR")).Return(nil, shared.ErrNotFound)
		svc := NewService(repo, nil, nil, nil)

		_, err := svc.Rate(context.Background(), tenantID, "EUR")
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, currency.CodeCurrencyNotFound, de.Code)
	})

	t.Run("inactive currency", func(t *testing.T) {
		list := seeded(t, tenantID)
		require.NoError(t, list[valueobject.CNY].Deactivate())
		repo := new(MockCurrencyRepository)
		expectCurrencies(repo, tenantID, list)
		svc := NewService(repo, nil, nil, nil)

		_, err := svc.Rate(context.Background(), tenantID, valueobject.CNY)
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, currency.CodeCurrencyNotFound, de.Code)
	})

	t.Run("cache is read through", func(t *testing.T) {
		repo := new(MockCurrencyRepository)
		expectCurrencies(repo, tenantID, seeded(t, tenantID))
		cache := newMapCache()
		svc := NewService(repo, cache, nil, nil)

		rate, err := svc.Rate(context.Background(), tenantID, valueobject.USD)
		require.NoError(t, err)
		assert.True(t, rate.Equal(decimal.NewFromInt(95)))

		rate, err = svc.Rate(context.Background(), tenantID, valueobject.USD)
		require.NoError(t, err)
		assert.True(t, rate.Equal(decimal.NewFromInt(95)))
		repo.AssertNumberOfCalls(t, "FindByCode", 1)
	})
}

func TestService_ReportingConverter(t *testing.T) {
	tenantID := uuid.New()
	list := seeded(t, tenantID)
	require.NoError(t, list[valueobject.CNY].Deactivate())
	repo := new(MockCurrencyRepository)
	expectCurrencies(repo, tenantID, list)
	repo.On("FindByCode", mock.Anything, tenantID, valueobject.CurrencyCode("EUR")).Return(nil, shared.ErrNotFound)
	svc := NewService(repo, newMapCache(), nil, nil)

	_, err := svc.Converter().Convert(context.Background(), tenantID, decimal.NewFromInt(10), valueobject.CNY, valueobject.RUB)
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, currency.CodeCurrencyNotFound, de.Code)

	got, err := svc.ReportingConverter().Convert(context.Background(), tenantID, decimal.NewFromInt(10), valueobject.CNY, valueobject.RUB)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(130)))

	_, err = svc.BookedRate(context.Background(), tenantID, "EUR")
	de, ok = shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, currency.CodeCurrencyNotFound, de.Code)
}

func TestService_UpdateRate(t *testing.T) {
	tenantID := uuid.New()
	list := seeded(t, tenantID)
	repo := new(MockCurrencyRepository)
	expectCurrencies(repo, tenantID, list)
	repo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*currency.Currency")).Return(nil)
	cache := newMapCache()
	pub := &recordingPublisher{}
	svc := NewService(repo, cache, nil, nil)
	svc.SetEventPublisher(pub)

	resp, err := svc.UpdateRate(context.Background(), tenantID, "usd", UpdateRateRequest{Rate: decimal.RequireFromString("97.12345")})
	require.NoError(t, err)
	assert.Equal(t, "97.1235", resp.ExchangeRate)
	assert.Equal(t, []valueobject.CurrencyCode{valueobject.USD}, cache.invalidated)
	require.Len(t, pub.events, 1)
	assert.Equal(t, currency.EventTypeCurrencyRateChanged, pub.events[0].EventType())
	assert.Empty(t, list[valueobject.USD].GetDomainEvents())

	_, err = svc.UpdateRate(context.Background(), tenantID, "RUB", UpdateRateRequest{Rate: decimal.NewFromInt(2)})
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	_, err = svc.UpdateRate(context.Background(), tenantID, "USD", UpdateRateRequest{Rate: decimal.Zero})
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, currency.CodeInvalidRate, de.Code)
}

func TestService_Deactivate(t *testing.T) {
	tenantID := uuid.New()
	list := seeded(t, tenantID)
	repo := new(MockCurrencyRepository)
	expectCurrencies(repo, tenantID, list)
	repo.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil)
	svc := NewService(repo, nil, nil, nil)

	resp, err := svc.Deactivate(context.Background(), tenantID, "CNY")
	require.NoError(t, err)
	assert.False(t, resp.IsActive)

	_, err = svc.Deactivate(context.Background(), tenantID, "RUB")
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestService_SeedDefaults(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates missing", func(t *testing.T) {
		repo := new(MockCurrencyRepository)
		repo.On("FindByCode", mock.Anything, tenantID, mock.Anything).Return(nil, shared.ErrNotFound)
		repo.On("Save", mock.Anything, mock.Anything).Return(nil)
		svc := NewService(repo, nil, nil, nil)

		res, err := svc.SeedDefaults(context.Background(), tenantID, false)
		require.NoError(t, err)
		assert.Equal(t, []string{"RUB", "USD", "CNY"}, res.Created)
		repo.AssertNumberOfCalls(t, "Save", 3)

		home := repo.Calls[1].Arguments.Get(1).(*currency.Currency)
		assert.True(t, home.IsHome)
	})

	t.Run("skips existing without recreate", func(t *testing.T) {
		repo := new(MockCurrencyRepository)
		expectCurrencies(repo, tenantID, seeded(t, tenantID))
		svc := NewService(repo, nil, nil, nil)

		res, err := svc.SeedDefaults(context.Background(), tenantID, false)
		require.NoError(t, err)
		assert.Len(t, res.Skipped, 3)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("recreate resets rates", func(t *testing.T) {
		list := seeded(t, tenantID)
		require.NoError(t, list[valueobject.USD].UpdateRate(decimal.NewFromInt(100)))
		require.NoError(t, list[valueobject.CNY].Deactivate())
		repo := new(MockCurrencyRepository)
		expectCurrencies(repo, tenantID, list)
		repo.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil)
		svc := NewService(repo, nil, nil, nil)

		res, err := svc.SeedDefaults(context.Background(), tenantID, true)
		require.NoError(t, err)
		assert.Len(t, res.Reset, 3)
		assert.Equal(t, "95.0000", list[valueobject.USD].ExchangeRate.StringFixed(4))
		assert.True(t, list[valueobject.CNY].IsActive)
	})
}

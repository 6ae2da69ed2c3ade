package currency

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/crm/internal/domain/currency"
	"github.com/erp/crm/internal/domain/shared"
	"github.com/erp/crm/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RateCache caches rates of active currencies
type RateCache interface {
	Get(ctx context.Context, tenantID uuid.UUID, code valueobject.CurrencyCode) (decimal.Decimal, bool)
	Set(ctx context.Context, tenantID uuid.UUID, code valueobject.CurrencyCode, rate decimal.Decimal)
	Invalidate(ctx context.Context, tenantID uuid.UUID, code valueobject.CurrencyCode)
}

// ConversionObserver is told about every successful conversion
type ConversionObserver interface {
	ObserveConversion(ctx context.Context, from, to valueobject.CurrencyCode)
}

// Service handles currency operations and serves as the converter's rate source
type Service struct {
	repo           currency.CurrencyRepository
	cache          RateCache
	formatter      *currency.Formatter
	converter      *currency.Converter
	reporting      *currency.Converter
	eventPublisher shared.EventPublisher
	observer       ConversionObserver
	logger         *zap.Logger
}

// NewService creates a new currency service. cache may be nil.
func NewService(repo currency.CurrencyRepository, cache RateCache, formatter *currency.Formatter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if formatter == nil {
		formatter = currency.NewFormatter("en")
	}
	s := &Service{
		repo:      repo,
		cache:     cache,
		formatter: formatter,
		logger:    logger,
	}
	s.converter = currency.NewConverter(s)
	s.reporting = currency.NewConverter(currency.RateFunc(s.BookedRate))
	return s
}

// SetEventPublisher sets the event publisher for rate change notifications
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetConversionObserver sets the observer notified on each conversion
func (s *Service) SetConversionObserver(observer ConversionObserver) {
	s.observer = observer
}

// Converter returns the converter backed by this service
func (s *Service) Converter() *currency.Converter {
	return s.converter
}

// ReportingConverter returns a converter that also accepts deactivated
// currencies, for amounts booked while they were active
func (s *Service) ReportingConverter() *currency.Converter {
	return s.reporting
}

// BookedRate returns the stored rate of a currency whether or not it is active.
// It bypasses the cache, which only holds active rates.
func (s *Service) BookedRate(ctx context.Context, tenantID uuid.UUID, code valueobject.CurrencyCode) (decimal.Decimal, error) {
	c, err := s.repo.FindByCode(ctx, tenantID, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return decimal.Zero, currency.NewCurrencyNotFoundError(code)
		}
		return decimal.Zero, fmt.Errorf("failed to load currency %s: %w", code, err)
	}
	return c.ExchangeRate, nil
}

// Rate implements currency.RateSource over the cache and repository
func (s *Service) Rate(ctx context.Context, tenantID uuid.UUID, code valueobject.CurrencyCode) (decimal.Decimal, error) {
	if s.cache != nil {
		if rate, ok := s.cache.Get(ctx, tenantID, code); ok {
			return rate, nil
		}
	}

	c, err := s.repo.FindByCode(ctx, tenantID, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return decimal.Zero, currency.NewCurrencyNotFoundError(code)
		}
		return decimal.Zero, fmt.Errorf("failed to load currency %s: %w", code, err)
	}
	if !c.IsActive {
		return decimal.Zero, currency.NewCurrencyNotFoundError(code)
	}

	if s.cache != nil {
		s.cache.Set(ctx, tenantID, code, c.ExchangeRate)
	}
	return c.ExchangeRate, nil
}

// Convert converts an amount and rounds the result for display
func (s *Service) Convert(ctx context.Context, tenantID uuid.UUID, req ConvertRequest) (*ConvertResponse, error) {
	from, err := valueobject.ParseCurrencyCode(req.From)
	if err != nil {
		return nil, err
	}
	to, err := valueobject.ParseCurrencyCode(req.To)
	if err != nil {
		return nil, err
	}

	result, err := s.converter.Convert(ctx, tenantID, req.Amount, from, to)
	if err != nil {
		return nil, err
	}
	if s.observer != nil {
		s.observer.ObserveConversion(ctx, from, to)
	}

	resp := &ConvertResponse{
		Amount: req.Amount,
		From:   from.String(),
		To:     to.String(),
		Result: valueobject.RoundMoney(result).StringFixed(valueobject.MoneyPlaces),
	}
	if target, err := s.repo.FindByCode(ctx, tenantID, to); err == nil {
		resp.Formatted = s.formatter.Format(result, target)
	}
	return resp, nil
}

// ListActive returns the tenant's active currencies
func (s *Service) ListActive(ctx context.Context, tenantID uuid.UUID) ([]CurrencyResponse, error) {
	list, err := s.repo.FindActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]CurrencyResponse, 0, len(list))
	for i := range list {
		out = append(out, ToCurrencyResponse(&list[i]))
	}
	return out, nil
}

// UpdateRate changes the rate of a currency to the home currency
func (s *Service) UpdateRate(ctx context.Context, tenantID uuid.UUID, code string, req UpdateRateRequest) (*CurrencyResponse, error) {
	c, err := s.find(ctx, tenantID, code)
	if err != nil {
		return nil, err
	}
	if err := c.UpdateRate(req.Rate); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenantID, c.Code)
	s.publish(ctx, c)

	s.logger.Info("currency rate updated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("code", c.Code.String()),
		zap.String("rate", c.ExchangeRate.StringFixed(valueobject.RatePlaces)),
	)
	resp := ToCurrencyResponse(c)
	return &resp, nil
}

// Deactivate hides a currency from conversions
func (s *Service) Deactivate(ctx context.Context, tenantID uuid.UUID, code string) (*CurrencyResponse, error) {
	c, err := s.find(ctx, tenantID, code)
	if err != nil {
		return nil, err
	}
	if err := c.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenantID, c.Code)
	resp := ToCurrencyResponse(c)
	return &resp, nil
}

// SeedDefaults creates the default currencies. With recreate, existing
// defaults are reset to the seeded rate and reactivated.
func (s *Service) SeedDefaults(ctx context.Context, tenantID uuid.UUID, recreate bool) (*SeedResult, error) {
	result := &SeedResult{Created: []string{}, Reset: []string{}, Skipped: []string{}}

	for _, def := range currency.Defaults {
		rate := decimal.RequireFromString(def.Rate)
		existing, err := s.repo.FindByCode(ctx, tenantID, def.Code)
		switch {
		case err == nil && !recreate:
			result.Skipped = append(result.Skipped, def.Code.String())
			continue
		case err == nil:
			existing.Name = def.Name
			existing.Symbol = def.Symbol
			existing.Activate()
			if !existing.ExchangeRate.Equal(rate) {
				if err := existing.UpdateRate(rate); err != nil {
					return nil, err
				}
			}
			if err := s.repo.SaveWithLock(ctx, existing); err != nil {
				return nil, err
			}
			s.invalidate(ctx, tenantID, def.Code)
			result.Reset = append(result.Reset, def.Code.String())
			continue
		case !errors.Is(err, shared.ErrNotFound):
			return nil, err
		}

		var c *currency.Currency
		if def.Home {
			c, err = currency.NewHomeCurrency(tenantID, def.Code, def.Name, def.Symbol)
		} else {
			c, err = currency.NewCurrency(tenantID, def.Code, def.Name, def.Symbol, rate)
		}
		if err != nil {
			return nil, err
		}
		if err := s.repo.Save(ctx, c); err != nil {
			return nil, err
		}
		result.Created = append(result.Created, def.Code.String())
	}

	s.logger.Info("default currencies seeded",
		zap.String("tenant_id", tenantID.String()),
		zap.Strings("created", result.Created),
		zap.Strings("reset", result.Reset),
	)
	return result, nil
}

// Home returns the tenant's home currency code
func (s *Service) Home(ctx context.Context, tenantID uuid.UUID) (valueobject.CurrencyCode, error) {
	c, err := s.repo.FindHome(ctx, tenantID)
	if err != nil {
		return "", err
	}
	return c.Code, nil
}

func (s *Service) find(ctx context.Context, tenantID uuid.UUID, raw string) (*currency.Currency, error) {
	code, err := valueobject.ParseCurrencyCode(raw)
	if err != nil {
		return nil, err
	}
	c, err := s.repo.FindByCode(ctx, tenantID, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, currency.NewCurrencyNotFoundError(code)
		}
		return nil, err
	}
	return c, nil
}

func (s *Service) invalidate(ctx context.Context, tenantID uuid.UUID, code valueobject.CurrencyCode) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, tenantID, code)
	}
}

func (s *Service) publish(ctx context.Context, c *currency.Currency) {
	events := shared.PullDomainEvents(c)
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish currency events", zap.Error(err))
	}
}

package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/crm/internal/domain/currency"
	"github.com/erp/crm/internal/domain/sales"
	"github.com/erp/crm/internal/domain/shared"
	"github.com/erp/crm/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// HomeCurrencyResolver resolves the tenant's home currency
type HomeCurrencyResolver interface {
	Home(ctx context.Context, tenantID uuid.UUID) (valueobject.CurrencyCode, error)
}

// Service aggregates invoices for reporting
type Service struct {
	invoiceRepo sales.InvoiceRepository
	homes       HomeCurrencyResolver
	converter   *currency.Converter
	exporter    Exporter
	storage     ObjectStorage
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates a new sales service
func NewService(invoiceRepo sales.InvoiceRepository, homes HomeCurrencyResolver, converter *currency.Converter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		invoiceRepo: invoiceRepo,
		homes:       homes,
		converter:   converter,
		logger:      logger,
		now:         time.Now,
	}
}

// SetExporter sets the file exporter
func (s *Service) SetExporter(exporter Exporter) {
	s.exporter = exporter
}

// SetStorage sets the object storage exports are uploaded to
func (s *Service) SetStorage(storage ObjectStorage) {
	s.storage = storage
}

func (s *Service) normalizer(ctx context.Context, tenantID uuid.UUID, home valueobject.CurrencyCode) sales.Normalizer {
	return func(amount decimal.Decimal, code valueobject.CurrencyCode) (decimal.Decimal, error) {
		if code == "" {
			code = home
		}
		return s.converter.Convert(ctx, tenantID, amount, code, home)
	}
}

// CompanySalesSummary aggregates a company's sale invoices over monthsBack months
func (s *Service) CompanySalesSummary(ctx context.Context, tenantID, companyID uuid.UUID, monthsBack int) (*SummaryResponse, error) {
	if monthsBack == 0 {
		monthsBack = sales.DefaultMonthsBack
	}
	current, previous, err := sales.Windows(s.now(), monthsBack)
	if err != nil {
		return nil, err
	}

	home, err := s.homes.Home(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve home currency: %w", err)
	}

	currentInvoices, err := s.invoiceRepo.FindSales(ctx, tenantID, companyID, current)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}
	previousInvoices, err := s.invoiceRepo.FindSales(ctx, tenantID, companyID, previous)
	if err != nil {
		return nil, fmt.Errorf("failed to load previous invoices: %w", err)
	}

	summary, err := sales.Summarize(companyID, monthsBack, home, currentInvoices, previousInvoices, s.normalizer(ctx, tenantID, home))
	if err != nil {
		return nil, err
	}

	s.logger.Debug("company sales summarized",
		zap.String("tenant_id", tenantID.String()),
		zap.String("company_id", companyID.String()),
		zap.Int("invoices", summary.TotalInvoices),
		zap.String("revenue_trend", string(summary.RevenueTrend)),
	)
	resp := ToSummaryResponse(summary)
	return &resp, nil
}

// InvoiceStats totals invoices matching the filter in home currency
func (s *Service) InvoiceStats(ctx context.Context, tenantID uuid.UUID, req InvoiceFilterRequest) (*StatsResponse, error) {
	filter, err := toFilter(req)
	if err != nil {
		return nil, err
	}
	home, err := s.homes.Home(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve home currency: %w", err)
	}
	invoices, err := s.invoiceRepo.Find(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	st, err := sales.ComputeStats(invoices, s.normalizer(ctx, tenantID, home))
	if err != nil {
		return nil, err
	}
	resp := ToStatsResponse(st, home)
	return &resp, nil
}

func toFilter(req InvoiceFilterRequest) (sales.InvoiceFilter, error) {
	filter := sales.InvoiceFilter{CompanyID: req.CompanyID, Type: sales.InvoiceType(req.Type)}
	if req.Type != "" && !filter.Type.IsValid() {
		return filter, shared.NewDomainError(shared.CodeInvalidInput, "Invalid invoice type")
	}
	parse := func(v string) (*time.Time, error) {
		if v == "" {
			return nil, nil
		}
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Dates must be formatted as YYYY-MM-DD")
		}
		return &t, nil
	}
	var err error
	if filter.From, err = parse(req.From); err != nil {
		return filter, err
	}
	if filter.To, err = parse(req.To); err != nil {
		return filter, err
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return filter, shared.NewDomainError(shared.CodeInvalidInput, "Date range end is before its start")
	}
	return filter, nil
}

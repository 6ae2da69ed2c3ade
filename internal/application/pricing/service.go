package pricing

import (
	"context"

	"github.com/erp/crm/internal/domain/pricing"
	"github.com/erp/crm/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Converter converts amounts between tenant currencies
type Converter interface {
	Convert(ctx context.Context, tenantID uuid.UUID, amount decimal.Decimal, from, to valueobject.CurrencyCode) (decimal.Decimal, error)
}

// BreakdownRequest asks for the price breakdown of one line
type BreakdownRequest struct {
	Cost           decimal.Decimal `json:"cost" binding:"required,decimal_gte0"`
	MarkupPercent  decimal.Decimal `json:"markup_percent"`
	Quantity       int64           `json:"quantity"`
	CostCurrency   string          `json:"cost_currency" binding:"omitempty,currency_code"`
	TargetCurrency string          `json:"target_currency" binding:"omitempty,currency_code"`
}

// BreakdownResponse is the breakdown rounded to money precision
type BreakdownResponse struct {
	pricing.Breakdown
	Currency     string `json:"currency,omitempty"`
	CostCurrency string `json:"cost_currency,omitempty"`
	ExchangeRate string `json:"exchange_rate,omitempty"`
}

// Service prices quotation lines
type Service struct {
	converter Converter
}

// NewService creates a new pricing service
func NewService(converter Converter) *Service {
	return &Service{converter: converter}
}

// Quote computes the breakdown. When both currencies are given and differ,
// the unit cost is converted to the target currency before markup.
func (s *Service) Quote(ctx context.Context, tenantID uuid.UUID, req BreakdownRequest) (*BreakdownResponse, error) {
	cost := req.Cost
	resp := &BreakdownResponse{}

	if req.CostCurrency != "" && req.TargetCurrency != "" {
		from, err := valueobject.ParseCurrencyCode(req.CostCurrency)
		if err != nil {
			return nil, err
		}
		to, err := valueobject.ParseCurrencyCode(req.TargetCurrency)
		if err != nil {
			return nil, err
		}
		resp.CostCurrency = from.String()
		resp.Currency = to.String()
		if from != to {
			converted, err := s.converter.Convert(ctx, tenantID, cost, from, to)
			if err != nil {
				return nil, err
			}
			if !cost.IsZero() {
				resp.ExchangeRate = valueobject.RoundRate(converted.Div(cost)).StringFixed(valueobject.RatePlaces)
			}
			cost = converted
		}
	} else if req.TargetCurrency != "" {
		to, err := valueobject.ParseCurrencyCode(req.TargetCurrency)
		if err != nil {
			return nil, err
		}
		resp.Currency = to.String()
	}

	b, err := pricing.PriceBreakdown(cost, req.MarkupPercent, req.Quantity)
	if err != nil {
		return nil, err
	}
	resp.Breakdown = b.Rounded()
	return resp, nil
}

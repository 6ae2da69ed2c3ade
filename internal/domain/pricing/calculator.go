// Package pricing derives selling prices from cost and markup.
// All functions are pure and keep full decimal precision.
package pricing

import (
	"github.com/erp/crm/internal/domain/shared"
	"github.com/erp/crm/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Error codes
const (
	CodeInvalidMarkup   = "INVALID_MARKUP"
	CodeInvalidQuantity = "INVALID_QUANTITY"
)

var (
	ErrInvalidMarkup   = shared.NewDomainError(CodeInvalidMarkup, "Markup percent cannot be negative")
	ErrInvalidQuantity = shared.NewDomainError(CodeInvalidQuantity, "Quantity must be a positive integer")
)

var hundred = decimal.NewFromInt(100)

// MarkupAmount returns cost × markup/100
func MarkupAmount(cost, markupPercent decimal.Decimal) (decimal.Decimal, error) {
	if markupPercent.IsNegative() {
		return decimal.Zero, ErrInvalidMarkup
	}
	return cost.Mul(markupPercent).Div(hundred), nil
}

// SellingPrice returns cost plus its markup
func SellingPrice(cost, markupPercent decimal.Decimal) (decimal.Decimal, error) {
	markup, err := MarkupAmount(cost, markupPercent)
	if err != nil {
		return decimal.Zero, err
	}
	return cost.Add(markup), nil
}

// TotalPrice returns unitPrice × quantity
func TotalPrice(unitPrice decimal.Decimal, quantity int64) (decimal.Decimal, error) {
	if quantity <= 0 {
		return decimal.Zero, ErrInvalidQuantity
	}
	return unitPrice.Mul(decimal.NewFromInt(quantity)), nil
}

// Breakdown is the unit and line view of a priced item
type Breakdown struct {
	UnitCostPrice     decimal.Decimal `json:"unit_cost_price"`
	UnitMarkupAmount  decimal.Decimal `json:"unit_markup_amount"`
	UnitSellingPrice  decimal.Decimal `json:"unit_selling_price"`
	Quantity          int64           `json:"quantity"`
	TotalCostPrice    decimal.Decimal `json:"total_cost_price"`
	TotalMarkupAmount decimal.Decimal `json:"total_markup_amount"`
	TotalSellingPrice decimal.Decimal `json:"total_selling_price"`
	MarkupPercent     decimal.Decimal `json:"markup_percent"`
}

// PriceBreakdown computes every unit and total field for one line
func PriceBreakdown(cost, markupPercent decimal.Decimal, quantity int64) (Breakdown, error) {
	unitMarkup, err := MarkupAmount(cost, markupPercent)
	if err != nil {
		return Breakdown{}, err
	}
	if quantity <= 0 {
		return Breakdown{}, ErrInvalidQuantity
	}
	qty := decimal.NewFromInt(quantity)
	unitSelling := cost.Add(unitMarkup)

	return Breakdown{
		UnitCostPrice:     cost,
		UnitMarkupAmount:  unitMarkup,
		UnitSellingPrice:  unitSelling,
		Quantity:          quantity,
		TotalCostPrice:    cost.Mul(qty),
		TotalMarkupAmount: unitMarkup.Mul(qty),
		TotalSellingPrice: unitSelling.Mul(qty),
		MarkupPercent:     markupPercent,
	}, nil
}

// Rounded returns a copy with money fields rounded to money precision
func (b Breakdown) Rounded() Breakdown {
	r := b
	r.UnitCostPrice = valueobject.RoundMoney(b.UnitCostPrice)
	r.UnitMarkupAmount = valueobject.RoundMoney(b.UnitMarkupAmount)
	r.UnitSellingPrice = valueobject.RoundMoney(b.UnitSellingPrice)
	r.TotalCostPrice = valueobject.RoundMoney(b.TotalCostPrice)
	r.TotalMarkupAmount = valueobject.RoundMoney(b.TotalMarkupAmount)
	r.TotalSellingPrice = valueobject.RoundMoney(b.TotalSellingPrice)
	return r
}

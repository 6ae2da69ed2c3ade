// Package sales aggregates sale invoices into per-company summaries and statistics.
package sales

import (
	"sort"
	"time"

	"github.com/erp/crm/internal/domain/shared"
	"github.com/erp/crm/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Trend is the direction of a metric against the previous period
type Trend string

const (
	TrendGrowth  Trend = "growth"
	TrendDecline Trend = "decline"
	TrendStable  Trend = "stable"
)

const (
	// TopProductsLimit caps the ranked product list
	TopProductsLimit = 5
	// DaysPerMonth is the month length used for reporting windows
	DaysPerMonth = 30
	// MaxMonthsBack bounds the reporting window
	MaxMonthsBack = 36
	// DefaultMonthsBack is used when no window is requested
	DefaultMonthsBack = 6
	// DateFormat is the wire format of purchase dates
	DateFormat = "02.01.2006"
)

var (
	trendThreshold = decimal.NewFromInt(10)
	hundred        = decimal.NewFromInt(100)
)

// ClassifyTrend compares current against previous with a ±10% band.
// A zero previous value gives TrendStable.
func ClassifyTrend(current, previous decimal.Decimal) Trend {
	if !previous.IsPositive() {
		return TrendStable
	}
	change := current.Sub(previous).Div(previous).Mul(hundred)
	switch {
	case change.GreaterThan(trendThreshold):
		return TrendGrowth
	case change.LessThan(trendThreshold.Neg()):
		return TrendDecline
	}
	return TrendStable
}

// Window is a half-open time range [From, To)
type Window struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the window
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

// Windows returns the current reporting window ending with the day of now
// and the previous window of equal length right before it.
func Windows(now time.Time, monthsBack int) (current, previous Window, err error) {
	if monthsBack < 1 || monthsBack > MaxMonthsBack {
		return Window{}, Window{}, shared.NewDomainError(shared.CodeInvalidInput, "months_back must be between 1 and 36")
	}
	span := time.Duration(monthsBack*DaysPerMonth) * 24 * time.Hour
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := day.AddDate(0, 0, 1)
	start := day.Add(-span)
	current = Window{From: start, To: end}
	previous = Window{From: start.Add(-span), To: start}
	return current, previous, nil
}

// Normalizer converts an amount into the home currency
type Normalizer func(amount decimal.Decimal, code valueobject.CurrencyCode) (decimal.Decimal, error)

// ProductSales is one entry of the top product ranking
type ProductSales struct {
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	OrdersCount int             `json:"orders_count"`
}

// Summary is the sales context of one company
type Summary struct {
	CompanyID        uuid.UUID
	PeriodMonths     int
	TotalInvoices    int
	TotalAmount      decimal.Decimal
	AvgOrderValue    decimal.Decimal
	LastPurchaseDate *time.Time
	TopProducts      []ProductSales
	RevenueTrend     Trend
	OrdersTrend      Trend
	Currency         valueobject.CurrencyCode
}

// Summarize aggregates sale invoices of the current and previous windows.
// Purchase invoices are ignored. All amounts are normalized to home currency.
func Summarize(companyID uuid.UUID, monthsBack int, home valueobject.CurrencyCode, current, previous []Invoice, normalize Normalizer) (*Summary, error) {
	s := &Summary{
		CompanyID:     companyID,
		PeriodMonths:  monthsBack,
		TotalAmount:   decimal.Zero,
		AvgOrderValue: decimal.Zero,
		TopProducts:   make([]ProductSales, 0),
		Currency:      home,
	}

	products := make(map[string]*ProductSales)
	for i := range current {
		inv := &current[i]
		if !inv.IsSale() {
			continue
		}
		total, err := normalize(inv.TotalAmount(), inv.Currency)
		if err != nil {
			return nil, err
		}
		s.TotalInvoices++
		s.TotalAmount = s.TotalAmount.Add(total)
		if s.LastPurchaseDate == nil || inv.InvoiceDate.After(*s.LastPurchaseDate) {
			d := inv.InvoiceDate
			s.LastPurchaseDate = &d
		}

		for _, line := range inv.Lines {
			amount, err := normalize(line.Total(), inv.Currency)
			if err != nil {
				return nil, err
			}
			key := productKey(line)
			p, ok := products[key]
			if !ok {
				p = &ProductSales{ProductID: line.ProductID, ProductName: line.ProductName, Quantity: decimal.Zero, TotalAmount: decimal.Zero}
				products[key] = p
			}
			p.Quantity = p.Quantity.Add(line.Quantity)
			p.TotalAmount = p.TotalAmount.Add(amount)
			p.OrdersCount++
		}
	}

	prevAmount := decimal.Zero
	prevCount := 0
	for i := range previous {
		inv := &previous[i]
		if !inv.IsSale() {
			continue
		}
		total, err := normalize(inv.TotalAmount(), inv.Currency)
		if err != nil {
			return nil, err
		}
		prevCount++
		prevAmount = prevAmount.Add(total)
	}

	if s.TotalInvoices > 0 {
		s.AvgOrderValue = s.TotalAmount.Div(decimal.NewFromInt(int64(s.TotalInvoices)))
	}
	s.RevenueTrend = ClassifyTrend(s.TotalAmount, prevAmount)
	s.OrdersTrend = ClassifyTrend(decimal.NewFromInt(int64(s.TotalInvoices)), decimal.NewFromInt(int64(prevCount)))
	s.TopProducts = rankProducts(products, TopProductsLimit)
	return s, nil
}

func productKey(l InvoiceLine) string {
	if l.ProductID != nil {
		return l.ProductID.String()
	}
	return "name:" + l.ProductName
}

// rankProducts orders by amount desc, then name, then id
func rankProducts(products map[string]*ProductSales, limit int) []ProductSales {
	out := make([]ProductSales, 0, len(products))
	for _, p := range products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if c := a.TotalAmount.Cmp(b.TotalAmount); c != 0 {
			return c > 0
		}
		if a.ProductName != b.ProductName {
			return a.ProductName < b.ProductName
		}
		return idString(a.ProductID) < idString(b.ProductID)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func idString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

package sales

import (
	"time"

	"github.com/erp/crm/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceFilter narrows invoice queries
type InvoiceFilter struct {
	CompanyID *uuid.UUID
	Type      InvoiceType
	From      *time.Time
	To        *time.Time
}

// Stats is a tenant-wide view over a set of invoices
type Stats struct {
	TotalInvoices   int
	TotalAmount     decimal.Decimal
	SalesByType     map[SaleType]decimal.Decimal
	SalesByCurrency map[valueobject.CurrencyCode]decimal.Decimal
}

// ComputeStats totals invoices in home currency. SalesByCurrency keeps native amounts.
func ComputeStats(invoices []Invoice, normalize Normalizer) (*Stats, error) {
	st := &Stats{
		TotalAmount: decimal.Zero,
		SalesByType: map[SaleType]decimal.Decimal{
			SaleTypeStock: decimal.Zero,
			SaleTypeOrder: decimal.Zero,
		},
		SalesByCurrency: make(map[valueobject.CurrencyCode]decimal.Decimal),
	}
	for i := range invoices {
		inv := &invoices[i]
		native := inv.TotalAmount()
		home, err := normalize(native, inv.Currency)
		if err != nil {
			return nil, err
		}
		st.TotalInvoices++
		st.TotalAmount = st.TotalAmount.Add(home)
		if inv.IsSale() {
			st.SalesByType[inv.SaleType] = st.SalesByType[inv.SaleType].Add(home)
		}
		st.SalesByCurrency[inv.Currency] = st.SalesByCurrency[inv.Currency].Add(native)
	}
	return st, nil
}

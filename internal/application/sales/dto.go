package sales

import (
	"github.com/erp/crm/internal/domain/sales"
	"github.com/erp/crm/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SummaryResponse is the sales context of one company. Amounts are rounded to 2 places.
type SummaryResponse struct {
	CompanyID        uuid.UUID              `json:"company_id"`
	PeriodMonths     int                    `json:"period_months"`
	TotalInvoices    int                    `json:"total_invoices"`
	TotalAmount      string                 `json:"total_amount"`
	AvgOrderValue    string                 `json:"avg_order_value"`
	LastPurchaseDate *string                `json:"last_purchase_date"`
	TopProducts      []ProductSalesResponse `json:"top_products"`
	RevenueTrend     string                 `json:"revenue_trend"`
	OrdersTrend      string                 `json:"orders_trend"`
	Currency         string                 `json:"currency"`
}

// ProductSalesResponse is one ranked product
type ProductSalesResponse struct {
	ProductID   *uuid.UUID `json:"product_id,omitempty"`
	ProductName string     `json:"product_name"`
	Quantity    string     `json:"quantity"`
	TotalAmount string     `json:"total_amount"`
	OrdersCount int        `json:"orders_count"`
}

func money(d decimal.Decimal) string {
	return valueobject.RoundMoney(d).StringFixed(valueobject.MoneyPlaces)
}

// ToSummaryResponse maps a domain summary
func ToSummaryResponse(s *sales.Summary) SummaryResponse {
	top := make([]ProductSalesResponse, 0, len(s.TopProducts))
	for _, p := range s.TopProducts {
		top = append(top, ProductSalesResponse{
			ProductID:   p.ProductID,
			ProductName: p.ProductName,
			Quantity:    p.Quantity.String(),
			TotalAmount: money(p.TotalAmount),
			OrdersCount: p.OrdersCount,
		})
	}
	resp := SummaryResponse{
		CompanyID:     s.CompanyID,
		PeriodMonths:  s.PeriodMonths,
		TotalInvoices: s.TotalInvoices,
		TotalAmount:   money(s.TotalAmount),
		AvgOrderValue: money(s.AvgOrderValue),
		TopProducts:   top,
		RevenueTrend:  string(s.RevenueTrend),
		OrdersTrend:   string(s.OrdersTrend),
		Currency:      s.Currency.String(),
	}
	if s.LastPurchaseDate != nil {
		d := s.LastPurchaseDate.Format(sales.DateFormat)
		resp.LastPurchaseDate = &d
	}
	return resp
}

// StatsResponse is the invoice statistics view
type StatsResponse struct {
	TotalInvoices   int               `json:"total_invoices"`
	TotalAmount     string            `json:"total_amount"`
	Currency        string            `json:"currency"`
	SalesByType     map[string]string `json:"sales_by_type"`
	SalesByCurrency map[string]string `json:"sales_by_currency"`
}

// ToStatsResponse maps domain stats
func ToStatsResponse(st *sales.Stats, home valueobject.CurrencyCode) StatsResponse {
	byType := make(map[string]string, len(st.SalesByType))
	for k, v := range st.SalesByType {
		byType[string(k)] = money(v)
	}
	byCurrency := make(map[string]string, len(st.SalesByCurrency))
	for k, v := range st.SalesByCurrency {
		byCurrency[k.String()] = money(v)
	}
	return StatsResponse{
		TotalInvoices:   st.TotalInvoices,
		TotalAmount:     money(st.TotalAmount),
		Currency:        home.String(),
		SalesByType:     byType,
		SalesByCurrency: byCurrency,
	}
}

// InvoiceFilterRequest is the query of stats and export endpoints
type InvoiceFilterRequest struct {
	CompanyID *uuid.UUID `form:"company_id"`
	Type      string     `form:"invoice_type" binding:"omitempty,oneof=purchase sale"`
	From      string     `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To        string     `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

// ExportResponse describes an exported file
type ExportResponse struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Rows        int    `json:"rows"`
	StorageKey  string `json:"storage_key,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`
}

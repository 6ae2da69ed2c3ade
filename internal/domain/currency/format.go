package currency

import (
	"fmt"

	"github.com/erp/crm/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	xcurrency "golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders amounts for display in a fixed locale
type Formatter struct {
	printer *message.Printer
}

// NewFormatter creates a formatter for the given BCP 47 locale, falling back to English
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Formatter{printer: message.NewPrinter(tag)}
}

// IsISOCode reports whether code is a known ISO 4217 currency
func IsISOCode(code valueobject.CurrencyCode) bool {
	_, err := xcurrency.ParseISO(code.String())
	return err == nil
}

// Format rounds amount to money precision and renders it with grouping and the currency symbol
func (f *Formatter) Format(amount decimal.Decimal, c *Currency) string {
	rounded := valueobject.RoundMoney(amount)
	// display only, the value is already rounded to cents
	value, _ := rounded.Float64()
	formatted := f.printer.Sprint(number.Decimal(value, number.Scale(int(valueobject.MoneyPlaces))))
	symbol := c.Symbol
	if symbol == "" {
		symbol = c.Code.String()
	}
	return fmt.Sprintf("%s %s", formatted, symbol)
}

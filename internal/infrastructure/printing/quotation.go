package printing

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"strings"
	"time"

	rfqapp "github.com/erp/crm/internal/application/rfq"
)

//go:embed templates/quotation.html
var templateFS embed.FS

const documentDateFormat = "02.01.2006"

var funcs = template.FuncMap{
	"date": func(t any) string {
		switch v := t.(type) {
		case time.Time:
			return v.Format(documentDateFormat)
		case *time.Time:
			if v == nil {
				return ""
			}
			return v.Format(documentDateFormat)
		}
		return ""
	},
	"productLabel": productLabel,
}

func productLabel(item rfqapp.QuotationItemResponse) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{item.ProposedProductName, item.ProposedManufacturer, item.ProposedPartNumber} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 && item.ProductID != nil {
		return item.ProductID.String()
	}
	return strings.Join(parts, " / ")
}

// QuotationRenderer fills the quotation template and prints it
type QuotationRenderer struct {
	tmpl *template.Template
	pdf  PDFRenderer
}

// NewQuotationRenderer parses the embedded template
func NewQuotationRenderer(pdf PDFRenderer) (*QuotationRenderer, error) {
	tmpl, err := template.New("quotation.html").Funcs(funcs).ParseFS(templateFS, "templates/quotation.html")
	if err != nil {
		return nil, failAt(StageTemplate, "failed to parse quotation template", err)
	}
	return &QuotationRenderer{tmpl: tmpl, pdf: pdf}, nil
}

// RenderHTML executes the template
func (r *QuotationRenderer) RenderHTML(doc rfqapp.QuotationDocument) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, doc); err != nil {
		return "", failAt(StageTemplate, "failed to execute quotation template", err)
	}
	return buf.String(), nil
}

// RenderQuotation renders the quotation to PDF
func (r *QuotationRenderer) RenderQuotation(ctx context.Context, doc rfqapp.QuotationDocument) ([]byte, error) {
	html, err := r.RenderHTML(doc)
	if err != nil {
		return nil, err
	}
	return r.pdf.RenderPDF(ctx, html)
}

var _ rfqapp.QuotationRenderer = (*QuotationRenderer)(nil)

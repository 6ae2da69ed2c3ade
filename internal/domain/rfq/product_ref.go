package rfq

import (
	"strings"

	"github.com/google/uuid"
)

// ProductRef names the goods on a line: a catalog product or a free-text description, never both
type ProductRef struct {
	ProductID    *uuid.UUID
	Name         string
	Manufacturer string
	PartNumber   string
}

// CatalogProduct references an existing catalog product
func CatalogProduct(id uuid.UUID) ProductRef {
	return ProductRef{ProductID: &id}
}

// FreeTextProduct describes a product not in the catalog
func FreeTextProduct(name, manufacturer, partNumber string) ProductRef {
	return ProductRef{Name: name, Manufacturer: manufacturer, PartNumber: partNumber}
}

func (r ProductRef) normalized() ProductRef {
	out := ProductRef{
		Name:         strings.TrimSpace(r.Name),
		Manufacturer: strings.TrimSpace(r.Manufacturer),
		PartNumber:   strings.TrimSpace(r.PartNumber),
	}
	if r.ProductID != nil && *r.ProductID != uuid.Nil {
		id := *r.ProductID
		out.ProductID = &id
	}
	return out
}

func (r ProductRef) hasText() bool {
	return r.Name != "" || r.Manufacturer != "" || r.PartNumber != ""
}

// Validate enforces that exactly one of catalog reference and free text is present
func (r ProductRef) Validate() error {
	n := r.normalized()
	switch {
	case n.ProductID != nil && n.hasText():
		return ErrAmbiguousProduct
	case n.ProductID == nil && n.Name == "":
		return ErrMissingProduct
	}
	return nil
}

// IsCatalog reports whether the reference points into the catalog
func (r ProductRef) IsCatalog() bool {
	return r.ProductID != nil
}

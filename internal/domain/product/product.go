package product

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Category enumerates the fixed set of catalog categories.
type Category string

const (
	CategoryAbaya   Category = "Abaya"
	CategoryJalabia Category = "Jalabia"
	CategoryHijab   Category = "Hijab"
	CategoryCaps    Category = "Caps"
	CategoryMat     Category = "Mat"
)

// Categories returns all valid catalog categories.
func Categories() []Category {
	return []Category{CategoryAbaya, CategoryJalabia, CategoryHijab, CategoryCaps, CategoryMat}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryAbaya, CategoryJalabia, CategoryHijab, CategoryCaps, CategoryMat:
		return true
	}
	return false
}

// Size is a named inventory bucket of a sized product.
type Size struct {
	Label string `json:"label"`
	Stock int    `json:"stock"`
}

// Product represents a catalog item available for purchase.
//
// Inventory lives in exactly one of two representations, selected by
// HasSizes: a flat Stock counter, or per-size buckets in Sizes. For sized
// products Stock is a cached sum of all bucket stocks, recomputed on every
// inventory mutation and never independently writable.
type Product struct {
	ID          string
	Name        string
	Description string
	Category    Category
	Price       decimal.Decimal
	Features    []string
	Media       []string
	HasSizes    bool
	Stock       int
	Sizes       []Size
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TotalSizeStock returns the sum of all size bucket stocks.
func (p *Product) TotalSizeStock() int {
	total := 0
	for _, s := range p.Sizes {
		total += s.Stock
	}
	return total
}

// ValidateSizes checks that the size list is non-empty, has no empty labels
// or negative stock, and that labels are unique under case-insensitive
// comparison.
func ValidateSizes(sizes []Size) error {
	if len(sizes) == 0 {
		return errors.New("at least one size is required")
	}
	seen := make(map[string]struct{}, len(sizes))
	for _, s := range sizes {
		label := strings.TrimSpace(s.Label)
		if label == "" {
			return errors.New("size label must not be empty")
		}
		if s.Stock < 0 {
			return errors.Errorf("size %q has negative stock", s.Label)
		}
		key := strings.ToLower(label)
		if _, ok := seen[key]; ok {
			return errors.Errorf("duplicate size label %q", s.Label)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}

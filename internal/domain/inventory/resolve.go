// Package inventory contains the pure stock resolution logic for checkout.
//
// Resolution is separated from I/O on purpose: callers fetch the product
// inside their transaction scope, resolve the requested decrement here, and
// write the returned replacement values back themselves. Nothing in this
// package mutates the product it is given.
package inventory

import (
	"fmt"

	"github.com/modesta/storefront-api/internal/domain/product"
)

// SizeNotFoundError indicates the requested size label has no matching
// bucket on a sized product. Matching is exact and case-sensitive.
type SizeNotFoundError struct {
	ProductName string
	Label       string
}

func (e *SizeNotFoundError) Error() string {
	return fmt.Sprintf("Size %s not found for %s", e.Label, e.ProductName)
}

// InsufficientStockError indicates the requested quantity exceeds the
// available stock. Label is empty for non-sized products.
type InsufficientStockError struct {
	ProductName string
	Label       string
}

func (e *InsufficientStockError) Error() string {
	if e.Label == "" {
		return fmt.Sprintf("Insufficient stock for %s", e.ProductName)
	}
	return fmt.Sprintf("Insufficient stock for %s size %s", e.ProductName, e.Label)
}

// Update holds the fully-formed replacement inventory state for one product
// after a resolved decrement. Sizes is nil for non-sized products.
type Update struct {
	Stock int
	Sizes []product.Size
}

// Resolve determines whether quantity units of p (of the given size, when p
// is sized) can be fulfilled, and returns the product's post-fulfillment
// inventory state.
//
// For sized products the returned size list is a copy with the matched
// bucket decremented, and Stock is recomputed as the sum of all buckets.
// For flat products Stock is simply reduced by quantity.
func Resolve(p *product.Product, quantity int, sizeLabel string) (Update, error) {
	if p.HasSizes {
		idx := -1
		for i, s := range p.Sizes {
			if s.Label == sizeLabel {
				idx = i
				break
			}
		}
		if idx == -1 {
			return Update{}, &SizeNotFoundError{ProductName: p.Name, Label: sizeLabel}
		}
		if p.Sizes[idx].Stock < quantity {
			return Update{}, &InsufficientStockError{ProductName: p.Name, Label: sizeLabel}
		}

		sizes := make([]product.Size, len(p.Sizes))
		copy(sizes, p.Sizes)
		sizes[idx].Stock -= quantity

		total := 0
		for _, s := range sizes {
			total += s.Stock
		}
		return Update{Stock: total, Sizes: sizes}, nil
	}

	if p.Stock < quantity {
		return Update{}, &InsufficientStockError{ProductName: p.Name}
	}
	return Update{Stock: p.Stock - quantity}, nil
}

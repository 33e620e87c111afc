package order

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"

	"github.com/modesta/storefront-api/internal/domain/product"
)

// ErrEmptyOrder is returned when a checkout is submitted with no line items.
var ErrEmptyOrder = errors.New("Cart is empty")

// CartItem is one client-supplied line of a checkout request. It references
// a product by identifier and is never persisted.
type CartItem struct {
	ProductID    string `json:"productId"`
	Quantity     int    `json:"quantity"`
	SelectedSize string `json:"selectedSize,omitempty"`
}

// InvalidReferenceError indicates a line item's product identifier is not a
// well-formed UUID. It is raised before the item touches the store.
type InvalidReferenceError struct {
	ProductID string
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("Invalid product ID: %s", e.ProductID)
}

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// ProductNotFoundError indicates a well-formed identifier with no matching
// product record.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("Product not found: %s", e.ProductID)
}

// TransactionError wraps an infrastructure-level failure of the underlying
// store (begin, read, write, commit, or rollback). It is distinct from the
// business failures above so callers can decide whether to retry, and its
// cause is logged server-side rather than surfaced to clients.
type TransactionError struct {
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("order transaction failed: %v", e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

// Tx is the transaction-scoped view of the product store. Reads lock the
// row so concurrent checkouts over the same product serialize; writes stay
// invisible outside the transaction until commit.
type Tx interface {
	ProductForUpdate(ctx context.Context, id string) (*product.Product, error)
	SetStock(ctx context.Context, id string, stock int, sizes []product.Size) error
}

// UnitOfWork runs fn within a single store transaction. If fn returns an
// error the transaction is rolled back and every write made by fn is
// discarded; otherwise the transaction commits and all writes become
// visible atomically. Infrastructure failures are reported as
// *TransactionError; errors returned by fn pass through unchanged.
type UnitOfWork interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

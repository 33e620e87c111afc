package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/modesta/storefront-api/internal/domain/inventory"
	"github.com/modesta/storefront-api/internal/domain/product"
)

// Service coordinates order fulfillment: it applies stock resolution to
// every line item of a submitted cart as one atomic unit against the
// product store.
type Service struct {
	uow UnitOfWork
}

// NewService creates an order Service backed by the given unit of work.
func NewService(uow UnitOfWork) *Service {
	return &Service{uow: uow}
}

// Checkout validates and applies the stock decrements for all line items
// within a single transaction. Either every decrement commits, or the store
// is left exactly as it was before the call.
//
// Items are processed in submission order and the first failure wins:
// remaining items are not attempted and all prior writes are rolled back.
// Business failures (ErrEmptyOrder, *InvalidReferenceError,
// *InvalidQuantityError, *ProductNotFoundError, *inventory.SizeNotFoundError,
// *inventory.InsufficientStockError) identify the offending item;
// *TransactionError reports an infrastructure failure.
func (s *Service) Checkout(ctx context.Context, items []CartItem) error {
	if len(items) == 0 {
		return ErrEmptyOrder
	}

	err := s.uow.InTx(ctx, func(tx Tx) error {
		for _, item := range items {
			if item.Quantity <= 0 {
				return &InvalidQuantityError{ProductID: item.ProductID}
			}
			if _, err := uuid.Parse(item.ProductID); err != nil {
				return &InvalidReferenceError{ProductID: item.ProductID}
			}

			p, err := tx.ProductForUpdate(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, product.ErrNotFound) {
					return &ProductNotFoundError{ProductID: item.ProductID}
				}
				return &TransactionError{Err: errors.Wrapf(err, "read product %s", item.ProductID)}
			}

			upd, err := inventory.Resolve(p, item.Quantity, item.SelectedSize)
			if err != nil {
				return err
			}

			if err := tx.SetStock(ctx, p.ID, upd.Stock, upd.Sizes); err != nil {
				return &TransactionError{Err: errors.Wrapf(err, "write product %s", item.ProductID)}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return nil
}

// IsBusinessError reports whether err is one of the order validation or
// stock resolution failures, as opposed to an infrastructure failure whose
// detail must not reach clients.
func IsBusinessError(err error) bool {
	var (
		invRef  *InvalidReferenceError
		invQty  *InvalidQuantityError
		notFnd  *ProductNotFoundError
		noSize  *inventory.SizeNotFoundError
		noStock *inventory.InsufficientStockError
	)
	return errors.Is(err, ErrEmptyOrder) ||
		errors.As(err, &invRef) ||
		errors.As(err, &invQty) ||
		errors.As(err, &notFnd) ||
		errors.As(err, &noSize) ||
		errors.As(err, &noStock)
}

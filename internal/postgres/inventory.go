package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/modesta/storefront-api/internal/domain/order"
	"github.com/modesta/storefront-api/internal/domain/product"
)

const (
	// FOR UPDATE serializes concurrent checkouts touching the same product:
	// the second transaction blocks on the row lock until the first commits
	// or rolls back, and then reads the committed stock.
	getProductForUpdateSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`

	setStockSQL = `UPDATE products SET stock = $2, sizes = $3, updated_at = now() WHERE id = $1`
)

var _ order.UnitOfWork = (*InventoryUnitOfWork)(nil)

// InventoryUnitOfWork implements order.UnitOfWork on a PostgreSQL
// transaction. All reads and writes inside one InTx call share a single
// transaction; writes become visible atomically on commit and are discarded
// on any failure.
type InventoryUnitOfWork struct {
	pool *pgxpool.Pool
}

// NewInventoryUnitOfWork returns an InventoryUnitOfWork using the given pool.
func NewInventoryUnitOfWork(pool *pgxpool.Pool) *InventoryUnitOfWork {
	return &InventoryUnitOfWork{pool: pool}
}

// InTx runs fn within a database transaction. Begin and commit failures are
// reported as *order.TransactionError; errors returned by fn roll the
// transaction back and pass through unchanged.
func (u *InventoryUnitOfWork) InTx(ctx context.Context, fn func(tx order.Tx) error) error {
	pgtx, err := u.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return &order.TransactionError{Err: errors.Wrap(err, "begin")}
	}

	if err := fn(&inventoryTx{tx: pgtx}); err != nil {
		if rbErr := pgtx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			zctx.From(ctx).Error("Transaction rollback failed", zap.Error(rbErr))
		}
		return err
	}

	if err := pgtx.Commit(ctx); err != nil {
		return &order.TransactionError{Err: errors.Wrap(err, "commit")}
	}
	return nil
}

type inventoryTx struct {
	tx pgx.Tx
}

// ProductForUpdate reads a product inside the transaction, taking a row
// lock so no concurrent checkout can act on stale stock.
func (t *inventoryTx) ProductForUpdate(ctx context.Context, id string) (*product.Product, error) {
	rows, err := t.tx.Query(ctx, getProductForUpdateSQL, id)
	if err != nil {
		return nil, fmt.Errorf("locking product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("locking product %q: %w", id, err)
	}
	return &p, nil
}

// SetStock writes the resolved inventory state back to the locked row.
func (t *inventoryTx) SetStock(ctx context.Context, id string, stock int, sizes []product.Size) error {
	if sizes == nil {
		sizes = []product.Size{}
	}
	sizesJSON, err := json.Marshal(sizes)
	if err != nil {
		return fmt.Errorf("marshaling sizes: %w", err)
	}

	tag, err := t.tx.Exec(ctx, setStockSQL, id, stock, sizesJSON)
	if err != nil {
		return fmt.Errorf("updating stock for product %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/modesta/storefront-api/internal/domain/product"
)

const (
	productColumns = `id, name, description, category, price, features, media, has_sizes, stock, sizes, created_at, updated_at`

	listProductsSQL = `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	insertProductSQL = `INSERT INTO products (id, name, description, category, price, features, media, has_sizes, stock, sizes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	updateProductSQL = `UPDATE products
		SET name = $2, description = $3, category = $4, price = $5, features = $6, media = $7,
		    has_sizes = $8, stock = $9, sizes = $10, updated_at = $11
		WHERE id = $1`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`

	upsertProductSQL = `INSERT INTO products (id, name, description, category, price, features, media, has_sizes, stock, sizes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, description = EXCLUDED.description,
			category = EXCLUDED.category, price = EXCLUDED.price,
			features = EXCLUDED.features, media = EXCLUDED.media,
			has_sizes = EXCLUDED.has_sizes, stock = EXCLUDED.stock,
			sizes = EXCLUDED.sizes, updated_at = now()`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns all products from the catalog, newest first.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// Create inserts a new product record.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	sizesJSON, err := marshalSizes(p.Sizes)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, insertProductSQL,
		p.ID, p.Name, p.Description, string(p.Category), p.Price,
		p.Features, p.Media, p.HasSizes, p.Stock, sizesJSON,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating product %q: %w", p.ID, err)
	}
	return nil
}

// Update replaces all mutable fields of an existing product record.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	sizesJSON, err := marshalSizes(p.Sizes)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, updateProductSQL,
		p.ID, p.Name, p.Description, string(p.Category), p.Price,
		p.Features, p.Media, p.HasSizes, p.Stock, sizesJSON, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("updating product %q: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// Delete removes a product record.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteProductSQL, id)
	if err != nil {
		return fmt.Errorf("deleting product %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// Upsert inserts a product or replaces an existing record with the same ID.
// Used by seeding and bulk ingest tooling, not by the serving path.
func (r *ProductRepository) Upsert(ctx context.Context, p *product.Product) error {
	sizesJSON, err := marshalSizes(p.Sizes)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, upsertProductSQL,
		p.ID, p.Name, p.Description, string(p.Category), p.Price,
		p.Features, p.Media, p.HasSizes, p.Stock, sizesJSON,
	)
	if err != nil {
		return fmt.Errorf("upserting product %q: %w", p.ID, err)
	}
	return nil
}

func marshalSizes(sizes []product.Size) ([]byte, error) {
	if sizes == nil {
		sizes = []product.Size{}
	}
	data, err := json.Marshal(sizes)
	if err != nil {
		return nil, fmt.Errorf("marshaling sizes: %w", err)
	}
	return data, nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var (
		p         product.Product
		category  string
		price     decimal.Decimal
		sizesJSON []byte
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &category, &price,
		&p.Features, &p.Media, &p.HasSizes, &p.Stock, &sizesJSON,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return p, err
	}

	p.Category = product.Category(category)
	p.Price = price
	if len(sizesJSON) > 0 {
		if err := json.Unmarshal(sizesJSON, &p.Sizes); err != nil {
			return p, fmt.Errorf("unmarshaling sizes for product %q: %w", p.ID, err)
		}
	}
	if len(p.Sizes) == 0 {
		p.Sizes = nil
	}
	return p, nil
}

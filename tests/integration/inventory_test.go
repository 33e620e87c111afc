//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/modesta/storefront-api/internal/domain/order"
	"github.com/modesta/storefront-api/internal/domain/product"
	"github.com/modesta/storefront-api/internal/postgres"
)

func seedProduct(t *testing.T, p *product.Product) *product.Product {
	t.Helper()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	repo := postgres.NewProductRepository(pool)
	require.NoError(t, repo.Upsert(context.Background(), p))
	t.Cleanup(func() {
		_ = repo.Delete(context.Background(), p.ID)
	})
	return p
}

func flatProduct(stock int) *product.Product {
	return &product.Product{
		Name:        "Chiffon Hijab Set",
		Description: "Three-piece chiffon hijab set.",
		Category:    product.CategoryHijab,
		Price:       decimal.NewFromInt(45),
		Features:    []string{"Premium chiffon", "Set of three"},
		Media:       []string{"https://res.cloudinary.com/demo/image/upload/store/hijab.jpg"},
		Stock:       stock,
	}
}

func sizedProduct(sizes ...product.Size) *product.Product {
	p := flatProduct(0)
	p.Name = "Embroidered Jalabia"
	p.Category = product.CategoryJalabia
	p.HasSizes = true
	p.Sizes = sizes
	p.Stock = p.TotalSizeStock()
	return p
}

func TestProductRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewProductRepository(pool)

	p := flatProduct(10)
	p.ID = uuid.New().String()
	require.NoError(t, repo.Create(ctx, p))
	t.Cleanup(func() { _ = repo.Delete(ctx, p.ID) })

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, 10, got.Stock)
	assert.True(t, p.Price.Equal(got.Price))
	assert.Nil(t, got.Sizes)

	got.Stock = 7
	got.Description = "Updated description."
	require.NoError(t, repo.Update(ctx, got))

	got2, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got2.Stock)
	assert.Equal(t, "Updated description.", got2.Description)

	require.NoError(t, repo.Delete(ctx, p.ID))
	_, err = repo.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, product.ErrNotFound)
}

func TestProductRepository_SizesRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := seedProduct(t, sizedProduct(
		product.Size{Label: "M", Stock: 5},
		product.Size{Label: "L", Stock: 7},
	))

	got, err := postgres.NewProductRepository(pool).GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.HasSizes)
	assert.Equal(t, 12, got.Stock)
	assert.Equal(t, []product.Size{{Label: "M", Stock: 5}, {Label: "L", Stock: 7}}, got.Sizes)
}

func TestCheckout_DecrementsAtomically(t *testing.T) {
	ctx := context.Background()
	p1 := seedProduct(t, flatProduct(5))
	p2 := seedProduct(t, sizedProduct(
		product.Size{Label: "M", Stock: 5},
		product.Size{Label: "L", Stock: 7},
	))

	svc := order.NewService(postgres.NewInventoryUnitOfWork(pool))
	err := svc.Checkout(ctx, []order.CartItem{
		{ProductID: p1.ID, Quantity: 3},
		{ProductID: p2.ID, Quantity: 2, SelectedSize: "M"},
	})
	require.NoError(t, err)

	repo := postgres.NewProductRepository(pool)
	got1, err := repo.GetByID(ctx, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got1.Stock)

	got2, err := repo.GetByID(ctx, p2.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got2.Stock)
	assert.Equal(t, []product.Size{{Label: "M", Stock: 3}, {Label: "L", Stock: 7}}, got2.Sizes)
}

func TestCheckout_RollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	p1 := seedProduct(t, flatProduct(10))
	p2 := seedProduct(t, flatProduct(1))

	svc := order.NewService(postgres.NewInventoryUnitOfWork(pool))
	err := svc.Checkout(ctx, []order.CartItem{
		{ProductID: p1.ID, Quantity: 2},
		{ProductID: p2.ID, Quantity: 5},
	})
	require.Error(t, err)
	assert.True(t, order.IsBusinessError(err))

	repo := postgres.NewProductRepository(pool)
	got1, err := repo.GetByID(ctx, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got1.Stock, "first item must be restored after rollback")

	got2, err := repo.GetByID(ctx, p2.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got2.Stock)
}

// Two concurrent orders both demanding the full remaining stock must
// serialize on the row lock: exactly one succeeds.
func TestCheckout_ConcurrentOrdersOneWins(t *testing.T) {
	ctx := context.Background()
	p := seedProduct(t, flatProduct(4))

	svc := order.NewService(postgres.NewInventoryUnitOfWork(pool))

	results := make([]error, 2)
	var g errgroup.Group
	for i := range results {
		g.Go(func() error {
			results[i] = svc.Checkout(ctx, []order.CartItem{{ProductID: p.ID, Quantity: 4}})
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var successes, rejections int
	for _, err := range results {
		if err == nil {
			successes++
		} else if order.IsBusinessError(err) {
			rejections++
		} else {
			t.Fatalf("unexpected infrastructure error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, rejections)

	got, err := postgres.NewProductRepository(pool).GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
}

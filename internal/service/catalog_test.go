package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecofinds/marketplace/internal/models"
	"github.com/ecofinds/marketplace/internal/store"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog(context.Background(), store.NewMemory())
	require.NoError(t, err)
	return c
}

func draft(title string, category models.Category, condition models.Condition, price float64) models.ProductDraft {
	return models.ProductDraft{
		Title:       title,
		Description: "test listing",
		Category:    category,
		Condition:   condition,
		Price:       price,
		SellerID:    "seller-1",
		SellerName:  "Seller One",
	}
}

func TestCatalogInsertAssignsIdentity(t *testing.T) {
	c := newTestCatalog(t)

	impact := EstimateImpact(models.CategoryClothing, models.ConditionExcellent)
	product, err := c.Insert(context.Background(), draft("Jacket", models.CategoryClothing, models.ConditionExcellent, 89), impact)
	require.NoError(t, err)

	assert.NotEmpty(t, product.ID)
	assert.Equal(t, models.StatusAvailable, product.Status)
	assert.False(t, product.CreatedAt.IsZero())
	assert.Equal(t, impact, product.EcoImpact)

	stored, err := c.GetByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, product, stored)
}

func TestCatalogInsertValidation(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	var vErr *ValidationError

	_, err := c.Insert(ctx, draft("Jacket", models.CategoryClothing, models.ConditionGood, -1), models.EcoImpact{})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "price", vErr.Field)

	_, err = c.Insert(ctx, draft("Jacket", "", models.ConditionGood, 10), models.EcoImpact{})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "category", vErr.Field)

	_, err = c.Insert(ctx, draft("Jacket", models.CategoryClothing, "", 10), models.EcoImpact{})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "condition", vErr.Field)

	// Nothing was stored.
	assert.Empty(t, c.Query(models.CatalogQuery{}))
}

func TestCatalogGetByIDNotFound(t *testing.T) {
	c := newTestCatalog(t)
	_, err := c.GetByID("missing")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCatalogListBySellerIncludesAllStatuses(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	first, err := c.Insert(ctx, draft("One", models.CategoryBooks, models.ConditionGood, 5), models.EcoImpact{})
	require.NoError(t, err)
	_, err = c.Insert(ctx, draft("Two", models.CategoryBooks, models.ConditionGood, 6), models.EcoImpact{})
	require.NoError(t, err)

	other := draft("Elsewhere", models.CategoryBooks, models.ConditionGood, 7)
	other.SellerID = "seller-2"
	_, err = c.Insert(ctx, other, models.EcoImpact{})
	require.NoError(t, err)

	_, err = c.MarkSold(ctx, first.ID)
	require.NoError(t, err)

	mine := c.ListBySeller("seller-1")
	require.Len(t, mine, 2)
	assert.Equal(t, "One", mine[0].Title)
	assert.Equal(t, models.StatusSold, mine[0].Status)
	assert.Equal(t, "Two", mine[1].Title)
}

func TestCatalogQueryFilters(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	jacket, err := c.Insert(ctx, draft("Vintage Leather Jacket", models.CategoryClothing, models.ConditionExcellent, 89), models.EcoImpact{})
	require.NoError(t, err)
	laptop, err := c.Insert(ctx, draft("MacBook Pro", models.CategoryElectronics, models.ConditionGood, 899), models.EcoImpact{})
	require.NoError(t, err)
	chair, err := c.Insert(ctx, draft("Wooden Chair", models.CategoryFurniture, models.ConditionGood, 145), models.EcoImpact{})
	require.NoError(t, err)

	// Case-insensitive substring over title and description.
	got := c.Query(models.CatalogQuery{Search: "LEATHER"})
	require.Len(t, got, 1)
	assert.Equal(t, jacket.ID, got[0].ID)

	got = c.Query(models.CatalogQuery{Search: "test listing"})
	assert.Len(t, got, 3)

	// Category equality, "all" matches everything.
	got = c.Query(models.CatalogQuery{Category: models.CategoryElectronics})
	require.Len(t, got, 1)
	assert.Equal(t, laptop.ID, got[0].ID)
	assert.Len(t, c.Query(models.CatalogQuery{Category: "all"}), 3)

	// Inclusive price range.
	got = c.Query(models.CatalogQuery{MinPrice: 89, MaxPrice: 145})
	assert.Len(t, got, 2)

	// Sold products never show up.
	_, err = c.MarkSold(ctx, chair.ID)
	require.NoError(t, err)
	got = c.Query(models.CatalogQuery{})
	assert.Len(t, got, 2)
}

func TestCatalogQuerySorts(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	cheap, err := c.Insert(ctx, draft("Cheap", models.CategoryBooks, models.ConditionGood, 5), models.EcoImpact{CO2Saved: 12})
	require.NoError(t, err)
	pricey, err := c.Insert(ctx, draft("Pricey", models.CategoryElectronics, models.ConditionGood, 899), models.EcoImpact{CO2Saved: 80})
	require.NoError(t, err)
	mid, err := c.Insert(ctx, draft("Mid", models.CategoryFurniture, models.ConditionGood, 145), models.EcoImpact{CO2Saved: 40})
	require.NoError(t, err)

	got := c.Query(models.CatalogQuery{Sort: models.SortPriceAsc})
	assert.Equal(t, []string{cheap.ID, mid.ID, pricey.ID}, ids(got))

	got = c.Query(models.CatalogQuery{Sort: models.SortPriceDesc})
	assert.Equal(t, []string{pricey.ID, mid.ID, cheap.ID}, ids(got))

	got = c.Query(models.CatalogQuery{Sort: models.SortEcoImpactDesc})
	assert.Equal(t, []string{pricey.ID, mid.ID, cheap.ID}, ids(got))
}

func TestCatalogQueryNewestTieBreak(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	// Freeze the clock so all listings share one timestamp.
	frozen := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return frozen }

	first, err := c.Insert(ctx, draft("First", models.CategoryBooks, models.ConditionGood, 1), models.EcoImpact{})
	require.NoError(t, err)
	second, err := c.Insert(ctx, draft("Second", models.CategoryBooks, models.ConditionGood, 2), models.EcoImpact{})
	require.NoError(t, err)
	third, err := c.Insert(ctx, draft("Third", models.CategoryBooks, models.ConditionGood, 3), models.EcoImpact{})
	require.NoError(t, err)

	// Equal timestamps resolve to the more recently inserted listing.
	got := c.Query(models.CatalogQuery{Sort: models.SortNewest})
	assert.Equal(t, []string{third.ID, second.ID, first.ID}, ids(got))

	// A strictly newer listing still wins over the tie group.
	c.now = func() time.Time { return frozen.Add(time.Hour) }
	newest, err := c.Insert(ctx, draft("Newest", models.CategoryBooks, models.ConditionGood, 4), models.EcoImpact{})
	require.NoError(t, err)

	got = c.Query(models.CatalogQuery{Sort: models.SortNewest})
	assert.Equal(t, []string{newest.ID, third.ID, second.ID, first.ID}, ids(got))
}

func TestCatalogMarkSoldTransitions(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	product, err := c.Insert(ctx, draft("Item", models.CategoryToys, models.ConditionFair, 9), models.EcoImpact{})
	require.NoError(t, err)

	sold, err := c.MarkSold(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSold, sold.Status)

	// At most once: the flip never repeats and never reverts.
	_, err = c.MarkSold(ctx, product.ID)
	assert.ErrorIs(t, err, ErrProductNotAvailable)

	_, err = c.MarkSold(ctx, "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func ids(products []models.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ecofinds/marketplace/internal/models"
	"github.com/ecofinds/marketplace/internal/store"
)

// Catalog owns the set of product listings. All mutations happen under its
// lock and are written back to the repository as the whole collection, so
// the atomic available->sold flip of the purchase protocol is serialized
// per product here.
type Catalog struct {
	mu       sync.RWMutex
	products map[string]*models.Product
	order    []string // insertion order, drives the newest-sort tie-break
	repo     store.Repository
	now      func() time.Time
}

func NewCatalog(ctx context.Context, repo store.Repository) (*Catalog, error) {
	c := &Catalog{
		products: make(map[string]*models.Product),
		repo:     repo,
		now:      time.Now,
	}

	records, err := repo.LoadAll(ctx, store.CollectionProducts)
	if err != nil {
		return nil, fmt.Errorf("loading products: %w", err)
	}
	for _, rec := range records {
		var p models.Product
		if err := json.Unmarshal(rec, &p); err != nil {
			return nil, fmt.Errorf("decoding product record: %w", err)
		}
		c.products[p.ID] = &p
		c.order = append(c.order, p.ID)
	}
	return c, nil
}

// Insert validates a draft, assigns identity and creation time, and stores
// the listing as available. The impact estimate is computed by the caller
// so that the listing flow shows the same numbers it stores.
func (c *Catalog) Insert(ctx context.Context, draft models.ProductDraft, impact models.EcoImpact) (models.Product, error) {
	if draft.Price < 0 {
		return models.Product{}, &ValidationError{Field: "price", Reason: "must be non-negative"}
	}
	if draft.Category == "" {
		return models.Product{}, &ValidationError{Field: "category", Reason: "must not be empty"}
	}
	if draft.Condition == "" {
		return models.Product{}, &ValidationError{Field: "condition", Reason: "must not be empty"}
	}

	product := models.Product{
		ID:          uuid.New().String(),
		Title:       draft.Title,
		Description: draft.Description,
		Category:    draft.Category,
		Condition:   draft.Condition,
		Price:       draft.Price,
		Image:       draft.Image,
		SellerID:    draft.SellerID,
		SellerName:  draft.SellerName,
		EcoImpact:   impact,
		CreatedAt:   c.now().UTC(),
		Status:      models.StatusAvailable,
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.products[product.ID] = &product
	c.order = append(c.order, product.ID)

	if err := c.persistLocked(ctx); err != nil {
		delete(c.products, product.ID)
		c.order = c.order[:len(c.order)-1]
		return models.Product{}, err
	}
	return product, nil
}

// GetByID returns a copy of the product or ErrProductNotFound.
func (c *Catalog) GetByID(id string) (models.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.products[id]
	if !ok {
		return models.Product{}, ErrProductNotFound
	}
	return *p, nil
}

// ListBySeller returns the seller's listings in insertion order, all
// statuses included. This doubles as the "first listing" check for the
// rewards engine.
func (c *Catalog) ListBySeller(sellerID string) []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []models.Product
	for _, id := range c.order {
		if p := c.products[id]; p.SellerID == sellerID {
			out = append(out, *p)
		}
	}
	return out
}

// Query returns the available products matching the filter, ordered by the
// requested sort key. An unrecognized sort key falls back to newest.
func (c *Catalog) Query(q models.CatalogQuery) []models.Product {
	c.mu.RLock()
	matched := make([]models.Product, 0)
	for _, id := range c.order {
		p := c.products[id]
		if matches(p, q) {
			matched = append(matched, *p)
		}
	}
	c.mu.RUnlock()

	switch q.Sort {
	case models.SortPriceAsc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price < matched[j].Price })
	case models.SortPriceDesc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price > matched[j].Price })
	case models.SortEcoImpactDesc:
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].EcoImpact.CO2Saved > matched[j].EcoImpact.CO2Saved
		})
	default:
		// Newest first. Reversing the insertion order before the stable
		// sort makes equal timestamps resolve to the more recently
		// inserted listing.
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		})
	}
	return matched
}

func matches(p *models.Product, q models.CatalogQuery) bool {
	if p.Status != models.StatusAvailable {
		return false
	}
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(p.Title), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			return false
		}
	}
	if q.Category != "" && q.Category != "all" && p.Category != q.Category {
		return false
	}
	if q.Condition != "" && q.Condition != "all" && p.Condition != q.Condition {
		return false
	}
	if p.Price < q.MinPrice {
		return false
	}
	if q.MaxPrice > 0 && p.Price > q.MaxPrice {
		return false
	}
	return true
}

// MarkSold atomically flips an available product to sold and returns the
// post-flip snapshot. Concurrent callers on the same product see exactly
// one success; the rest get ErrProductNotAvailable. Sold products never
// transition back.
func (c *Catalog) MarkSold(ctx context.Context, id string) (models.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.products[id]
	if !ok {
		return models.Product{}, ErrProductNotFound
	}
	if p.Status != models.StatusAvailable {
		return models.Product{}, ErrProductNotAvailable
	}

	p.Status = models.StatusSold
	if err := c.persistLocked(ctx); err != nil {
		p.Status = models.StatusAvailable
		return models.Product{}, err
	}
	return *p, nil
}

func (c *Catalog) persistLocked(ctx context.Context) error {
	records := make([]json.RawMessage, 0, len(c.order))
	for _, id := range c.order {
		rec, err := json.Marshal(c.products[id])
		if err != nil {
			return fmt.Errorf("encoding product %s: %w", id, err)
		}
		records = append(records, rec)
	}
	if err := c.repo.SaveAll(ctx, store.CollectionProducts, records); err != nil {
		return fmt.Errorf("persisting products: %w", err)
	}
	return nil
}

package main

import (
	"context"
	"log"

	"github.com/ecofinds/marketplace/internal/config"
	"github.com/ecofinds/marketplace/internal/models"
	"github.com/ecofinds/marketplace/internal/service"
	"github.com/ecofinds/marketplace/internal/store"
)

type seedListing struct {
	sellerName  string
	sellerEmail string
	draft       models.ProductDraft
}

var seedListings = []seedListing{
	{
		sellerName:  "Sarah Green",
		sellerEmail: "sarah@example.com",
		draft: models.ProductDraft{
			Title:       "Vintage Leather Jacket",
			Description: "Classic brown leather jacket in excellent condition. Perfect for sustainable fashion lovers.",
			Category:    models.CategoryClothing,
			Condition:   models.ConditionExcellent,
			Price:       89,
			Image:       "https://images.pexels.com/photos/1040945/pexels-photo-1040945.jpeg",
		},
	},
	{
		sellerName:  "Mike Tech",
		sellerEmail: "mike@example.com",
		draft: models.ProductDraft{
			Title:       "MacBook Pro 2020",
			Description: "Well-maintained MacBook Pro with minimal wear. Great for students and professionals.",
			Category:    models.CategoryElectronics,
			Condition:   models.ConditionGood,
			Price:       899,
			Image:       "https://images.pexels.com/photos/812264/pexels-photo-812264.jpeg",
		},
	},
	{
		sellerName:  "Emma Vintage",
		sellerEmail: "emma@example.com",
		draft: models.ProductDraft{
			Title:       "Antique Wooden Chair",
			Description: "Beautiful handcrafted wooden chair with intricate details. A piece of sustainable furniture.",
			Category:    models.CategoryFurniture,
			Condition:   models.ConditionGood,
			Price:       145,
			Image:       "https://images.pexels.com/photos/1148955/pexels-photo-1148955.jpeg",
		},
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	repo, cleanup, err := buildRepository(ctx, cfg)
	if err != nil {
		log.Fatalf("Unable to initialize repository: %v", err)
	}
	defer cleanup()

	log.Println("--- Seeding Marketplace ---")

	market, err := service.NewMarketplace(ctx, repo)
	if err != nil {
		log.Fatalf("Unable to build marketplace engine: %v", err)
	}

	// Check existing
	if existing := market.Catalog().Query(models.CatalogQuery{}); len(existing) > 0 {
		log.Printf("Catalog already has %d available products. Skipping.", len(existing))
		return
	}

	for _, seed := range seedListings {
		account, err := market.RegisterUser(ctx, seed.sellerName, seed.sellerEmail)
		if err != nil {
			log.Fatalf("Registering %s failed: %v", seed.sellerName, err)
		}

		draft := seed.draft
		draft.SellerID = account.ID
		product, _, err := market.ListItem(ctx, draft)
		if err != nil {
			log.Fatalf("Listing %q failed: %v", draft.Title, err)
		}
		log.Printf("Seeded %q (%s, %.1fkg CO2 saved)", product.Title, product.ID, product.EcoImpact.CO2Saved)
	}

	log.Printf("Successfully seeded %d listings.", len(seedListings))
}

func buildRepository(ctx context.Context, cfg *config.Config) (store.Repository, func(), error) {
	switch cfg.RepoDriver {
	case config.DriverPostgres:
		pg, err := store.NewPostgres(cfg.DBSource)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, nil, err
		}
		return pg, pg.Close, nil
	case config.DriverRedis:
		rd, err := store.NewRedis(cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		return rd, func() { rd.Close() }, nil
	default:
		return store.NewMemory(), func() {}, nil
	}
}

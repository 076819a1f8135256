package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ecofinds/marketplace/internal/api"
	"github.com/ecofinds/marketplace/internal/config"
	"github.com/ecofinds/marketplace/internal/service"
	"github.com/ecofinds/marketplace/internal/store"
)

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

	market, err := service.NewMarketplace(ctx, repo)
	if err != nil {
		log.Fatalf("Unable to build marketplace engine: %v", err)
	}
	handler := api.NewHandler(market)

	// Router
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", handler.HealthCheckHandler).Methods("GET")

	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	apiV1.HandleFunc("/users", handler.RegisterUserHandler).Methods("POST")
	apiV1.HandleFunc("/users/{id}", handler.GetUserHandler).Methods("GET")
	apiV1.HandleFunc("/users/{id}/products", handler.GetUserProductsHandler).Methods("GET")
	apiV1.HandleFunc("/users/{id}/transactions", handler.GetUserTransactionsHandler).Methods("GET")
	apiV1.HandleFunc("/products", handler.CreateProductHandler).Methods("POST")
	apiV1.HandleFunc("/products", handler.ListProductsHandler).Methods("GET")
	apiV1.HandleFunc("/products/{id}", handler.GetProductHandler).Methods("GET")
	apiV1.HandleFunc("/purchases", handler.CreatePurchaseHandler).Methods("POST")
	apiV1.HandleFunc("/leaderboard", handler.LeaderboardHandler).Methods("GET")

	log.Printf("Server starting on :%s (repo driver: %s)", cfg.Port, cfg.RepoDriver)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
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

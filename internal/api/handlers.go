package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ecofinds/marketplace/internal/models"
	"github.com/ecofinds/marketplace/internal/service"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "endpoint", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "marketplace_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "endpoint"})
)

type Handler struct {
	market *service.Marketplace
}

func NewHandler(m *service.Marketplace) *Handler {
	return &Handler{market: m}
}

func (h *Handler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type registerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *Handler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.reject(w, "POST", "/users", http.StatusBadRequest, "Malformed JSON body")
		return
	}
	if req.Name == "" || req.Email == "" {
		h.reject(w, "POST", "/users", http.StatusUnprocessableEntity, "Name and email required")
		return
	}

	account, err := h.market.RegisterUser(r.Context(), req.Name, req.Email)
	if err != nil {
		h.respondServiceError(w, "POST", "/users", err)
		return
	}

	httpRequestsTotal.WithLabelValues("POST", "/users", "201").Inc()
	respondWithJSON(w, http.StatusCreated, account)
}

type profileResponse struct {
	models.UserAccount
	Level models.Level `json:"levelInfo"`
}

func (h *Handler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	account, err := h.market.Users().Get(id)
	if err != nil {
		h.respondServiceError(w, "GET", "/users/{id}", err)
		return
	}

	httpRequestsTotal.WithLabelValues("GET", "/users/{id}", "200").Inc()
	respondWithJSON(w, http.StatusOK, profileResponse{
		UserAccount: account,
		Level:       service.LevelFor(account.EcoPoints),
	})
}

func (h *Handler) GetUserProductsHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if _, err := h.market.Users().Get(id); err != nil {
		h.respondServiceError(w, "GET", "/users/{id}/products", err)
		return
	}

	httpRequestsTotal.WithLabelValues("GET", "/users/{id}/products", "200").Inc()
	respondWithJSON(w, http.StatusOK, h.market.Catalog().ListBySeller(id))
}

func (h *Handler) GetUserTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if _, err := h.market.Users().Get(id); err != nil {
		h.respondServiceError(w, "GET", "/users/{id}/transactions", err)
		return
	}

	httpRequestsTotal.WithLabelValues("GET", "/users/{id}/transactions", "200").Inc()
	respondWithJSON(w, http.StatusOK, h.market.Ledger().ListByUser(id))
}

type listingResponse struct {
	Product models.Product     `json:"product"`
	Seller  models.UserAccount `json:"seller"`
}

func (h *Handler) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/products"))
	defer timer.ObserveDuration()

	var draft models.ProductDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		h.reject(w, "POST", "/products", http.StatusBadRequest, "Malformed JSON body")
		return
	}

	product, seller, err := h.market.ListItem(r.Context(), draft)
	if err != nil {
		h.respondServiceError(w, "POST", "/products", err)
		return
	}

	httpRequestsTotal.WithLabelValues("POST", "/products", "201").Inc()
	w.Header().Set("Location", fmt.Sprintf("/api/v1/products/%s", product.ID))
	respondWithJSON(w, http.StatusCreated, listingResponse{Product: product, Seller: seller})
}

func (h *Handler) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := models.CatalogQuery{
		Search:    q.Get("search"),
		Category:  models.Category(q.Get("category")),
		Condition: models.Condition(q.Get("condition")),
		Sort:      models.SortKey(q.Get("sort")),
	}
	if v := q.Get("min_price"); v != "" {
		query.MinPrice, _ = strconv.ParseFloat(v, 64)
	}
	if v := q.Get("max_price"); v != "" {
		query.MaxPrice, _ = strconv.ParseFloat(v, 64)
	}

	httpRequestsTotal.WithLabelValues("GET", "/products", "200").Inc()
	respondWithJSON(w, http.StatusOK, h.market.Catalog().Query(query))
}

func (h *Handler) GetProductHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	product, err := h.market.Catalog().GetByID(id)
	if err != nil {
		h.respondServiceError(w, "GET", "/products/{id}", err)
		return
	}

	httpRequestsTotal.WithLabelValues("GET", "/products/{id}", "200").Inc()
	respondWithJSON(w, http.StatusOK, product)
}

type purchaseRequest struct {
	ProductID string `json:"productId"`
	BuyerID   string `json:"buyerId"`
}

type purchaseResponse struct {
	Transaction   models.Transaction `json:"transaction"`
	CertificateID string             `json:"certificateId"`
	Buyer         models.UserAccount `json:"buyer"`
}

func (h *Handler) CreatePurchaseHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/purchases"))
	defer timer.ObserveDuration()

	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.reject(w, "POST", "/purchases", http.StatusBadRequest, "Malformed JSON body")
		return
	}
	if req.ProductID == "" || req.BuyerID == "" {
		h.reject(w, "POST", "/purchases", http.StatusUnprocessableEntity, "productId and buyerId required")
		return
	}

	tx, buyer, err := h.market.Purchase(r.Context(), req.ProductID, req.BuyerID)
	if err != nil {
		h.respondServiceError(w, "POST", "/purchases", err)
		return
	}

	httpRequestsTotal.WithLabelValues("POST", "/purchases", "201").Inc()
	respondWithJSON(w, http.StatusCreated, purchaseResponse{
		Transaction:   tx,
		CertificateID: service.CertificateID(tx.EcoCertificateHash),
		Buyer:         buyer,
	})
}

func (h *Handler) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	httpRequestsTotal.WithLabelValues("GET", "/leaderboard", "200").Inc()
	respondWithJSON(w, http.StatusOK, h.market.Leaderboard())
}

// respondServiceError maps the engine's error taxonomy onto status codes.
// ProductNotAvailable is a terminal outcome for the attempt, reported as a
// conflict so clients know not to retry.
func (h *Handler) respondServiceError(w http.ResponseWriter, method, endpoint string, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		h.reject(w, method, endpoint, http.StatusUnprocessableEntity, vErr.Error())
	case errors.Is(err, service.ErrProductNotFound):
		h.reject(w, method, endpoint, http.StatusNotFound, "Product not found")
	case errors.Is(err, service.ErrUserNotFound):
		h.reject(w, method, endpoint, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrProductNotAvailable):
		h.reject(w, method, endpoint, http.StatusConflict, "Product no longer available")
	default:
		h.reject(w, method, endpoint, http.StatusInternalServerError, "Internal Server Error")
	}
}

func (h *Handler) reject(w http.ResponseWriter, method, endpoint string, code int, message string) {
	httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(code)).Inc()
	respondWithError(w, code, message)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

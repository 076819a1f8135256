package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Config holds the benchmark settings
var (
	targetURL   string
	concurrency int
	products    int
	workload    string
)

// Metrics
var (
	totalRequests uint64
	success201    uint64 // Purchases won
	conflict409   uint64 // Race losers (product already sold)
	failOther     uint64
)

// Per-product win counts, to verify the at-most-once guarantee client-side.
var (
	winsMu sync.Mutex
	wins   = map[string]int{}
)

func init() {
	flag.StringVar(&targetURL, "url", "http://localhost:8080", "API Base URL")
	flag.IntVar(&concurrency, "workers", 10, "Number of concurrent buyers")
	flag.IntVar(&products, "products", 50, "Number of products to contest")
	flag.StringVar(&workload, "workload", "uniform", "Workload type: uniform | hotspot")
}

func main() {
	flag.Parse()
	log.Printf("Starting Benchmark: %s | Workers: %d | Products: %d", workload, concurrency, products)

	client := &http.Client{Timeout: 5 * time.Second}

	sellerID := registerUser(client, "Bench Seller", "bench-seller")
	buyers := make([]string, concurrency)
	for i := range buyers {
		buyers[i] = registerUser(client, fmt.Sprintf("Bench Buyer %d", i), fmt.Sprintf("bench-buyer-%d", i))
	}

	productIDs := make([]string, products)
	for i := range productIDs {
		productIDs[i] = createProduct(client, sellerID, i)
	}

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go worker(&wg, buyers[i], productIDs)
	}
	wg.Wait()

	printResults(time.Since(start), productIDs)
}

func worker(wg *sync.WaitGroup, buyerID string, productIDs []string) {
	defer wg.Done()
	client := &http.Client{Timeout: 5 * time.Second}

	// Every worker attempts every product once; each product must yield
	// exactly one 201 across all workers.
	order := rand.Perm(len(productIDs))
	for _, i := range order {
		productID := productIDs[i]
		if workload == "hotspot" && rand.Float32() < 0.90 {
			// Hotspot: 90% of attempts pile onto the first product.
			productID = productIDs[0]
		}

		payload := map[string]string{
			"productId": productID,
			"buyerId":   buyerID,
		}
		body, _ := json.Marshal(payload)

		resp, err := client.Post(targetURL+"/api/v1/purchases", "application/json", bytes.NewBuffer(body))
		if err != nil {
			atomic.AddUint64(&failOther, 1)
			continue
		}

		atomic.AddUint64(&totalRequests, 1)
		switch resp.StatusCode {
		case 201:
			atomic.AddUint64(&success201, 1)
			winsMu.Lock()
			wins[productID]++
			winsMu.Unlock()
		case 409:
			atomic.AddUint64(&conflict409, 1)
		default:
			atomic.AddUint64(&failOther, 1)
		}
		resp.Body.Close()
	}
}

func registerUser(client *http.Client, name, emailSlug string) string {
	payload := map[string]string{
		"name":  name,
		"email": fmt.Sprintf("%s-%d@bench.local", emailSlug, time.Now().UnixNano()),
	}
	body, _ := json.Marshal(payload)

	resp, err := client.Post(targetURL+"/api/v1/users", "application/json", bytes.NewBuffer(body))
	if err != nil {
		log.Fatalf("User registration failed: %v", err)
	}
	defer resp.Body.Close()

	var account struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&account); err != nil || account.ID == "" {
		log.Fatalf("User registration returned no id (status %d): %v", resp.StatusCode, err)
	}
	return account.ID
}

func createProduct(client *http.Client, sellerID string, n int) string {
	payload := map[string]interface{}{
		"title":       fmt.Sprintf("Bench Item %d", n),
		"description": "Benchmark listing",
		"category":    "electronics",
		"condition":   "good",
		"price":       10,
		"sellerId":    sellerID,
	}
	body, _ := json.Marshal(payload)

	resp, err := client.Post(targetURL+"/api/v1/products", "application/json", bytes.NewBuffer(body))
	if err != nil {
		log.Fatalf("Product creation failed: %v", err)
	}
	defer resp.Body.Close()

	var created struct {
		Product struct {
			ID string `json:"id"`
		} `json:"product"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil || created.Product.ID == "" {
		log.Fatalf("Product creation returned no id (status %d): %v", resp.StatusCode, err)
	}
	return created.Product.ID
}

func printResults(d time.Duration, productIDs []string) {
	total := atomic.LoadUint64(&totalRequests)
	s201 := atomic.LoadUint64(&success201)
	f409 := atomic.LoadUint64(&conflict409)
	fErr := atomic.LoadUint64(&failOther)

	doubleSold := 0
	winsMu.Lock()
	for _, count := range wins {
		if count > 1 {
			doubleSold++
		}
	}
	winsMu.Unlock()

	tps := float64(total) / d.Seconds()
	conflictRate := float64(f409) / float64(total) * 100

	results := map[string]interface{}{
		"workload":          workload,
		"duration_sec":      d.Seconds(),
		"total_requests":    total,
		"throughput_tps":    tps,
		"purchases_won":     s201,
		"conflicts":         f409,
		"conflict_rate_pct": conflictRate,
		"errors":            fErr,
		"products":          len(productIDs),
		"double_sold":       doubleSold, // must be 0
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(results)

	filename := fmt.Sprintf("results_%s.json", workload)
	file, _ := os.Create(filename)
	defer file.Close()
	json.NewEncoder(file).Encode(results)
}

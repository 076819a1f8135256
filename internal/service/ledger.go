package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ecofinds/marketplace/internal/models"
	"github.com/ecofinds/marketplace/internal/store"
)

// Ledger owns the append-only set of completed purchases. Transactions are
// never mutated or deleted once written.
type Ledger struct {
	mu           sync.RWMutex
	transactions []models.Transaction
	catalog      *Catalog
	repo         store.Repository
	now          func() time.Time
}

func NewLedger(ctx context.Context, repo store.Repository, catalog *Catalog) (*Ledger, error) {
	l := &Ledger{
		catalog: catalog,
		repo:    repo,
		now:     time.Now,
	}

	records, err := repo.LoadAll(ctx, store.CollectionTransactions)
	if err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}
	for _, rec := range records {
		var t models.Transaction
		if err := json.Unmarshal(rec, &t); err != nil {
			return nil, fmt.Errorf("decoding transaction record: %w", err)
		}
		l.transactions = append(l.transactions, t)
	}
	return l, nil
}

// BuyProduct executes the purchase protocol. A ProductNotAvailable outcome
// is terminal for the attempt; callers must not retry it.
func (l *Ledger) BuyProduct(ctx context.Context, productID, buyerID string) (models.Transaction, error) {
	// 1. Availability gate and atomic status flip. The catalog serializes
	// this per product, so a race on the same listing yields exactly one
	// winner here.
	product, err := l.catalog.MarkSold(ctx, productID)
	if err != nil {
		return models.Transaction{}, err
	}

	// 2. Candidate record. Seller and impact are copied from the product
	// at purchase time, not recomputed.
	completedAt := l.now().UTC()
	tx := models.Transaction{
		ID:          uuid.New().String(),
		ProductID:   product.ID,
		BuyerID:     buyerID,
		SellerID:    product.SellerID,
		CompletedAt: completedAt,
		EcoImpact:   product.EcoImpact,
	}

	// 3. Certificate hash over the identity fields.
	tx.EcoCertificateHash = CertificateHash(
		tx.ProductID, tx.BuyerID, tx.SellerID, CertificateTimestamp(completedAt))

	// 4. Append to the ledger.
	l.mu.Lock()
	defer l.mu.Unlock()
	l.transactions = append(l.transactions, tx)
	if err := l.persistLocked(ctx); err != nil {
		l.transactions = l.transactions[:len(l.transactions)-1]
		return models.Transaction{}, err
	}
	return tx, nil
}

// ListByUser returns the transactions a user participated in as buyer or
// seller, in completion order.
func (l *Ledger) ListByUser(userID string) []models.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []models.Transaction
	for _, t := range l.transactions {
		if t.BuyerID == userID || t.SellerID == userID {
			out = append(out, t)
		}
	}
	return out
}

// ListByProduct returns the transactions recorded for a product. Under
// normal operation there is at most one.
func (l *Ledger) ListByProduct(productID string) []models.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []models.Transaction
	for _, t := range l.transactions {
		if t.ProductID == productID {
			out = append(out, t)
		}
	}
	return out
}

func (l *Ledger) persistLocked(ctx context.Context) error {
	records := make([]json.RawMessage, 0, len(l.transactions))
	for i := range l.transactions {
		rec, err := json.Marshal(&l.transactions[i])
		if err != nil {
			return fmt.Errorf("encoding transaction %s: %w", l.transactions[i].ID, err)
		}
		records = append(records, rec)
	}
	if err := l.repo.SaveAll(ctx, store.CollectionTransactions, records); err != nil {
		return fmt.Errorf("persisting transactions: %w", err)
	}
	return nil
}

package store

import (
	"context"
	"encoding/json"
)

// Collection names understood by every Repository implementation.
const (
	CollectionProducts     = "products"
	CollectionTransactions = "transactions"
	CollectionUsers        = "users"
)

// Repository is the persistence boundary of the engine. Persistence is
// whole-collection replace: after each mutation the owning service writes
// back the entire updated collection, not incremental patches.
type Repository interface {
	// LoadAll returns every record of a collection, in stored order.
	// An unknown collection yields an empty result, not an error.
	LoadAll(ctx context.Context, collection string) ([]json.RawMessage, error)

	// SaveAll replaces the full contents of a collection.
	SaveAll(ctx context.Context, collection string, records []json.RawMessage) error
}

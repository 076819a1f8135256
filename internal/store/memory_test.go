package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTrip(t *testing.T) {
	repo := NewMemory()
	ctx := context.Background()

	records := []json.RawMessage{
		json.RawMessage(`{"id":"1"}`),
		json.RawMessage(`{"id":"2"}`),
	}
	require.NoError(t, repo.SaveAll(ctx, CollectionProducts, records))

	got, err := repo.LoadAll(ctx, CollectionProducts)
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestMemoryUnknownCollectionIsEmpty(t *testing.T) {
	repo := NewMemory()

	got, err := repo.LoadAll(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemorySaveReplacesWholeCollection(t *testing.T) {
	repo := NewMemory()
	ctx := context.Background()

	require.NoError(t, repo.SaveAll(ctx, CollectionUsers, []json.RawMessage{json.RawMessage(`{"id":"a"}`)}))
	require.NoError(t, repo.SaveAll(ctx, CollectionUsers, []json.RawMessage{json.RawMessage(`{"id":"b"}`)}))

	got, err := repo.LoadAll(ctx, CollectionUsers)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.JSONEq(t, `{"id":"b"}`, string(got[0]))
}

func TestMemoryLoadReturnsCopies(t *testing.T) {
	repo := NewMemory()
	ctx := context.Background()

	require.NoError(t, repo.SaveAll(ctx, CollectionTransactions, []json.RawMessage{json.RawMessage(`{"id":"x"}`)}))

	first, err := repo.LoadAll(ctx, CollectionTransactions)
	require.NoError(t, err)
	first[0] = json.RawMessage(`{"id":"tampered"}`)

	second, err := repo.LoadAll(ctx, CollectionTransactions)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"x"}`, string(second[0]))
}

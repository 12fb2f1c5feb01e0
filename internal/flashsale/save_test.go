package flashsale

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore keeps upsert semantics in memory: create sets the name,
// later writes move EndsAt only.
type memStore struct {
	records map[string]SaleRecord
	err     error
}

func newMemStore() *memStore {
	return &memStore{records: map[string]SaleRecord{}}
}

func (m *memStore) Upsert(_ context.Context, productID, productName, endsAt string) error {
	if m.err != nil {
		return m.err
	}
	rec, ok := m.records[productID]
	if !ok {
		rec = SaleRecord{ProductID: productID, ProductName: productName}
	}
	rec.EndsAt = endsAt
	m.records[productID] = rec
	return nil
}

// recordingRemote captures metafield writes and optionally fails them.
type recordingRemote struct {
	calls []struct{ ProductID, Value string }
	err   error
}

func (r *recordingRemote) SetFlashSaleMetafield(_ context.Context, productID, value string) error {
	r.calls = append(r.calls, struct{ ProductID, Value string }{productID, value})
	return r.err
}

func TestSave_CreateThenReadBack(t *testing.T) {
	store := newMemStore()
	remote := &recordingRemote{}

	err := Save(context.Background(), store, remote, SaveInput{
		ProductID:   "gid://shopify/Product/1",
		ProductName: "Shirt",
		EndsAt:      "2025-12-31",
	})
	require.NoError(t, err)

	rec, ok := store.records["gid://shopify/Product/1"]
	require.True(t, ok)
	assert.Equal(t, "Shirt", rec.ProductName)
	assert.Equal(t, "2025-12-31T00:00:00Z", rec.EndsAt)

	require.Len(t, remote.calls, 1)
	assert.Equal(t, "gid://shopify/Product/1", remote.calls[0].ProductID)
	assert.Equal(t, "2025-12-31", remote.calls[0].Value, "metafield gets the raw date string")
}

func TestSave_SecondWriteKeepsName(t *testing.T) {
	store := newMemStore()
	remote := &recordingRemote{}

	require.NoError(t, Save(context.Background(), store, remote, SaveInput{
		ProductID:   "gid://shopify/Product/1",
		ProductName: "Shirt",
		EndsAt:      "2025-12-31",
	}))
	require.NoError(t, Save(context.Background(), store, remote, SaveInput{
		ProductID:   "gid://shopify/Product/1",
		ProductName: "Renamed",
		EndsAt:      "2026-01-15",
	}))

	require.Len(t, store.records, 1, "upsert must never duplicate a product's record")
	rec := store.records["gid://shopify/Product/1"]
	assert.Equal(t, "Shirt", rec.ProductName, "update path must not overwrite the name")
	assert.Equal(t, "2026-01-15T00:00:00Z", rec.EndsAt)
}

func TestSave_MissingProductID(t *testing.T) {
	store := newMemStore()
	remote := &recordingRemote{}

	err := Save(context.Background(), store, remote, SaveInput{
		ProductID: "   ",
		EndsAt:    "2025-12-31",
	})

	require.ErrorIs(t, err, ErrMissingProductID)
	assert.Empty(t, store.records, "validation failure must precede any mutation")
	assert.Empty(t, remote.calls)
}

func TestSave_InvalidDate(t *testing.T) {
	store := newMemStore()
	remote := &recordingRemote{}

	for _, bad := range []string{"", "not-a-date", "31/12/2025", "2025-13-45"} {
		err := Save(context.Background(), store, remote, SaveInput{
			ProductID: "gid://shopify/Product/1",
			EndsAt:    bad,
		})
		require.ErrorIs(t, err, ErrInvalidDate, "input %q", bad)
	}

	assert.Empty(t, store.records, "invalid dates must never reach the store")
	assert.Empty(t, remote.calls)
}

func TestSave_AcceptsRFC3339(t *testing.T) {
	store := newMemStore()
	remote := &recordingRemote{}

	err := Save(context.Background(), store, remote, SaveInput{
		ProductID: "gid://shopify/Product/1",
		EndsAt:    "2025-12-31T18:30:00+07:00",
	})
	require.NoError(t, err)

	assert.Equal(t, "2025-12-31T11:30:00Z", store.records["gid://shopify/Product/1"].EndsAt)
}

func TestSave_RemoteFailureKeepsLocalRecord(t *testing.T) {
	store := newMemStore()
	remote := &recordingRemote{err: errors.New("metafieldsSet: http 500")}

	err := Save(context.Background(), store, remote, SaveInput{
		ProductID:   "gid://shopify/Product/1",
		ProductName: "Shirt",
		EndsAt:      "2025-12-31",
	})

	var propErr *PropagationError
	require.ErrorAs(t, err, &propErr)
	assert.Equal(t, "gid://shopify/Product/1", propErr.ProductID)

	rec, ok := store.records["gid://shopify/Product/1"]
	require.True(t, ok, "local upsert is not rolled back on remote failure")
	assert.Equal(t, "2025-12-31T00:00:00Z", rec.EndsAt)
}

func TestSave_LocalFailureSkipsRemote(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("dynamodb unavailable")
	remote := &recordingRemote{}

	err := Save(context.Background(), store, remote, SaveInput{
		ProductID: "gid://shopify/Product/1",
		EndsAt:    "2025-12-31",
	})

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidDate)
	assert.Empty(t, remote.calls, "remote propagation must wait for local durability")
}

func TestSave_DefaultsNameToEmpty(t *testing.T) {
	store := newMemStore()
	remote := &recordingRemote{}

	require.NoError(t, Save(context.Background(), store, remote, SaveInput{
		ProductID: "gid://shopify/Product/7",
		EndsAt:    "2025-12-31",
	}))

	assert.Equal(t, "", store.records["gid://shopify/Product/7"].ProductName)
}

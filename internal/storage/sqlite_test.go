package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"storefront/internal/domain"
)

func TestSQLite_RoundTripSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "slots.db")

	store, err := OpenSQLite(ctx, path)
	require.NoError(t, err)

	_, err = store.Get(ctx, "sess:orders")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Set(ctx, "sess:orders", []byte(`[]`)))
	require.NoError(t, store.Set(ctx, "sess:orders", []byte(`[{"orderId":"ORD1"}]`)))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "sess:orders")
	require.NoError(t, err)
	assert.Equal(t, `[{"orderId":"ORD1"}]`, string(got))

	require.NoError(t, reopened.Delete(ctx, "sess:orders"))
	_, err = reopened.Get(ctx, "sess:orders")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSQLite_PingAfterClose(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "slots.db"))
	require.NoError(t, err)

	require.NoError(t, store.Ping(ctx))
	require.NoError(t, store.Close())
	assert.Error(t, store.Ping(ctx))
}

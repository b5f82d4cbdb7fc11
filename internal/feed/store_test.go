package feed_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/collector/internal/feed"
)

func openStore(t *testing.T) *feed.Store {
	t.Helper()

	store, err := feed.OpenStore(filepath.Join(t.TempDir(), "watch.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_GetOrCreate(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	state, err := store.GetOrCreate(ctx, "https://example.com/rss")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/rss", state.FeedURL)
	assert.Nil(t, state.ETag)

	// second call returns the same row instead of failing on the key
	again, err := store.GetOrCreate(ctx, "https://example.com/rss")
	require.NoError(t, err)
	assert.Equal(t, state.FeedURL, again.FeedURL)
}

func TestStore_UpdateSuccess(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	_, err := store.GetOrCreate(ctx, "https://example.com/rss")
	require.NoError(t, err)

	etag := `"abc123"`
	modified := "Mon, 02 Jan 2006 15:04:05 GMT"
	require.NoError(t, store.UpdateSuccess(ctx, "https://example.com/rss", &etag, &modified))

	state, err := store.GetOrCreate(ctx, "https://example.com/rss")
	require.NoError(t, err)
	require.NotNil(t, state.ETag)
	assert.Equal(t, etag, *state.ETag)
	require.NotNil(t, state.LastModified)
	assert.Equal(t, modified, *state.LastModified)
	assert.NotNil(t, state.LastPolledAt)
	assert.Nil(t, state.LastError)
}

func TestStore_UpdateError(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	_, err := store.GetOrCreate(ctx, "https://example.com/rss")
	require.NoError(t, err)

	require.NoError(t, store.UpdateError(ctx, "https://example.com/rss", "503"))

	state, err := store.GetOrCreate(ctx, "https://example.com/rss")
	require.NoError(t, err)
	require.NotNil(t, state.LastError)
	assert.Equal(t, "503", *state.LastError)
}

func TestStore_MarkSeen(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	isNew, err := store.MarkSeen(ctx, "https://example.com/rss", "https://example.com/articles/1")
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = store.MarkSeen(ctx, "https://example.com/rss", "https://example.com/articles/1")
	require.NoError(t, err)
	assert.False(t, isNew)

	// same item URL under a different feed is still new
	isNew, err = store.MarkSeen(ctx, "https://example.com/other", "https://example.com/articles/1")
	require.NoError(t, err)
	assert.True(t, isNew)
}

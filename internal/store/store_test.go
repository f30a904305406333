package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/vaultmark/internal/vault"
)

var _ vault.DimensionCache = (*Store)(nil)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_Dimensions(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	mod := time.Unix(1700000000, 123)

	_, _, ok := s.LookupDimensions(ctx, "a.png", 10, mod)
	assert.False(t, ok)

	require.NoError(t, s.StoreDimensions(ctx, "a.png", 10, mod, 300, 200))
	w, h, ok := s.LookupDimensions(ctx, "a.png", 10, mod)
	require.True(t, ok)
	assert.Equal(t, 300, w)
	assert.Equal(t, 200, h)

	_, _, ok = s.LookupDimensions(ctx, "a.png", 11, mod)
	assert.False(t, ok, "size change invalidates the entry")
	_, _, ok = s.LookupDimensions(ctx, "a.png", 10, mod.Add(time.Second))
	assert.False(t, ok, "mod time change invalidates the entry")

	require.NoError(t, s.StoreDimensions(ctx, "a.png", 11, mod, 30, 20))
	w, _, ok = s.LookupDimensions(ctx, "a.png", 11, mod)
	require.True(t, ok)
	assert.Equal(t, 30, w)
}

func TestStore_Fingerprints(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	_, ok, err := s.Fingerprint(ctx, "notes/index.html")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.PutFingerprint(ctx, "notes/index.html", "abc"))
	require.NoError(t, s.PutFingerprint(ctx, "notes/index.html", "def"))
	fp, ok, err := s.Fingerprint(ctx, "notes/index.html")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "def", fp)

	require.NoError(t, s.ResetFingerprints(ctx))
	_, ok, err = s.Fingerprint(ctx, "notes/index.html")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_PersistsAcrossOpens(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	s, err := Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.PutFingerprint(ctx, "index.html", "xyz"))
	require.NoError(t, s.Close())

	s, err = Open(dbPath)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	fp, ok, err := s.Fingerprint(ctx, "index.html")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "xyz", fp)
}

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumfinancegroupltd-commits/Local-Link-sub004/internal/model"
)

func openTestStore(t *testing.T) *SnapshotStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSnapshotStore_PutGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	price := 20.5
	entities := []model.Entity{
		{ID: "p1", Name: "Tomatoes", Category: "Produce", Price: &price},
		{ID: "p2", Name: "Yam"},
	}
	require.NoError(t, s.Put(ctx, model.KindProducts, entities, time.Hour))

	got, ok, err := s.Get(ctx, model.KindProducts)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, "Tomatoes", got[0].Name)
	require.NotNil(t, got[0].Price)
	assert.Equal(t, 20.5, *got[0].Price)

	// Kinds are cached independently.
	_, ok, err = s.Get(ctx, model.KindArtisans)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSnapshotStore_PutReplaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, model.KindProducts, []model.Entity{{ID: "old"}}, time.Hour))
	require.NoError(t, s.Put(ctx, model.KindProducts, []model.Entity{{ID: "new"}}, time.Hour))

	got, ok, err := s.Get(ctx, model.KindProducts)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].ID)
}

func TestSnapshotStore_ExpiryIsAMiss(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, model.KindServices, []model.Entity{{ID: "s1"}}, -time.Minute))

	_, ok, err := s.Get(ctx, model.KindServices)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSnapshotStore_DeleteExpired(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, model.KindProducts, []model.Entity{{ID: "live"}}, time.Hour))
	require.NoError(t, s.Put(ctx, model.KindArtisans, []model.Entity{{ID: "dead"}}, -time.Minute))

	n, err := s.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, ok, err := s.Get(ctx, model.KindProducts)
	require.NoError(t, err)
	assert.True(t, ok)
}

package catalog

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/quantumfinancegroupltd-commits/Local-Link-sub004/internal/model"
	"github.com/quantumfinancegroupltd-commits/Local-Link-sub004/internal/store"
	"github.com/quantumfinancegroupltd-commits/Local-Link-sub004/pkg/api"
)

// Loader fetches entity collections through the local snapshot cache.
// It satisfies the browse engine's Source contract: collections may be
// served from cache, search always goes to the API.
type Loader struct {
	client api.Client
	cache  *store.SnapshotStore
	ttl    time.Duration
}

// NewLoader creates a Loader. cache may be nil to disable snapshotting.
func NewLoader(client api.Client, cache *store.SnapshotStore, ttl time.Duration) *Loader {
	return &Loader{client: client, cache: cache, ttl: ttl}
}

// Collection returns the full collection for a kind, from cache when a
// fresh snapshot exists. Cache failures degrade to a direct fetch.
func (l *Loader) Collection(ctx context.Context, kind model.Kind) ([]model.Entity, error) {
	if l.cache != nil {
		entities, ok, err := l.cache.Get(ctx, kind)
		if err != nil {
			zap.L().Warn("snapshot read failed", zap.String("kind", string(kind)), zap.Error(err))
		} else if ok {
			zap.L().Debug("snapshot hit", zap.String("kind", string(kind)), zap.Int("entities", len(entities)))
			return entities, nil
		}
	}

	entities, err := l.client.Collection(ctx, kind)
	if err != nil {
		return nil, err
	}

	if l.cache != nil {
		if err := l.cache.Put(ctx, kind, entities, l.ttl); err != nil {
			zap.L().Warn("snapshot write failed", zap.String("kind", string(kind)), zap.Error(err))
		}
	}
	return entities, nil
}

// Search delegates to the API. Search results are never snapshotted.
func (l *Loader) Search(ctx context.Context, kind model.Kind, query string, limit int) ([]model.Entity, error) {
	return l.client.Search(ctx, kind, query, limit)
}

// Preload warms the given collections concurrently. The first failure
// cancels the rest.
func (l *Loader) Preload(ctx context.Context, kinds ...model.Kind) error {
	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(len(kinds))

	for _, kind := range kinds {
		kind := kind
		eg.Go(func() error {
			_, err := l.Collection(gCtx, kind)
			return err
		})
	}
	return eg.Wait()
}

package cache

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/riskibarqy/rpsls-game/internal/domain/score"
	basecache "github.com/riskibarqy/rpsls-game/internal/platform/cache"
)

const recentKeyPrefix = "score:recent:"

// ScoreRepository caches RecentEntries in front of another ledger backend.
// Keys carry a generation that every write bumps, so reads issued after a
// write returns never hit results loaded before it.
type ScoreRepository struct {
	next       score.Repository
	cache      *basecache.Store[[]score.Entry]
	generation atomic.Uint64
}

func NewScoreRepository(next score.Repository, cache *basecache.Store[[]score.Entry]) *ScoreRepository {
	return &ScoreRepository{next: next, cache: cache}
}

func (r *ScoreRepository) Append(ctx context.Context, entry score.Entry) (score.Entry, error) {
	defer r.invalidate(ctx)
	return r.next.Append(ctx, entry)
}

func (r *ScoreRepository) RecentEntries(ctx context.Context, identity string, limit int) ([]score.Entry, error) {
	identity = score.NormalizeIdentity(identity)
	limit = score.NormalizeLimit(limit)

	gen := r.generation.Load()
	key := r.recentKey(gen, identity, limit)
	items, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) ([]score.Entry, error) {
		return r.next.RecentEntries(ctx, identity, limit)
	})
	if err != nil {
		return nil, err
	}
	// A write landed during the load, so nothing will ever read this key again.
	if r.generation.Load() != gen {
		r.cache.Delete(ctx, key)
	}
	return append([]score.Entry(nil), items...), nil
}

func (r *ScoreRepository) PurgeByIdentity(ctx context.Context, identity string) (int64, error) {
	defer r.invalidate(ctx)
	return r.next.PurgeByIdentity(ctx, identity)
}

// Ping forwards to the wrapped backend when it supports it.
func (r *ScoreRepository) Ping(ctx context.Context) error {
	if p, ok := r.next.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// invalidate runs even when the write failed: a failed write may still have committed.
func (r *ScoreRepository) invalidate(ctx context.Context) {
	old := r.generation.Add(1) - 1
	r.cache.DeletePrefix(ctx, recentKeyPrefix+strconv.FormatUint(old, 10)+":")
}

func (r *ScoreRepository) recentKey(gen uint64, identity string, limit int) string {
	return recentKeyPrefix + strconv.FormatUint(gen, 10) + ":" + strconv.Itoa(limit) + ":" + identity
}

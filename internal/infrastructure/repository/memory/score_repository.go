package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/riskibarqy/rpsls-game/internal/domain/score"
)

// ScoreRepository keeps the ledger in process memory. Entries are lost on restart.
type ScoreRepository struct {
	mu      sync.RWMutex
	entries []score.Entry
	nextID  int64
}

func NewScoreRepository() *ScoreRepository {
	return &ScoreRepository{nextID: 1}
}

func (r *ScoreRepository) Append(ctx context.Context, entry score.Entry) (score.Entry, error) {
	if err := ctx.Err(); err != nil {
		return score.Entry{}, err
	}
	if err := entry.Validate(); err != nil {
		return score.Entry{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry.ID = r.nextID
	entry.Identity = score.NormalizeIdentity(entry.Identity)
	entry.PlayedAt = entry.PlayedAt.UTC()
	r.nextID++
	r.entries = append(r.entries, entry)

	return entry, nil
}

func (r *ScoreRepository) RecentEntries(ctx context.Context, identity string, limit int) ([]score.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	identity = score.NormalizeIdentity(identity)
	limit = score.NormalizeLimit(limit)

	r.mu.RLock()
	matched := make([]score.Entry, 0, min(limit, len(r.entries)))
	for _, e := range r.entries {
		if identity == "" || e.Identity == identity {
			matched = append(matched, e)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(matched, func(a, b score.Entry) int {
		switch {
		case score.Newer(a, b):
			return -1
		case score.Newer(b, a):
			return 1
		default:
			return 0
		}
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *ScoreRepository) PurgeByIdentity(ctx context.Context, identity string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	identity = score.NormalizeIdentity(identity)
	if identity == "" {
		return 0, score.ErrIdentityRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.entries[:0]
	var deleted int64
	for _, e := range r.entries {
		if e.Identity == identity {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	clear(r.entries[len(kept):])
	r.entries = kept

	return deleted, nil
}

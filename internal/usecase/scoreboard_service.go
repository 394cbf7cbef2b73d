package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/rpsls-game/internal/domain/score"
	"github.com/riskibarqy/rpsls-game/internal/platform/logging"
)

type ScoreboardService struct {
	scores       score.Repository
	defaultLimit int
	logger       *logging.Logger
}

func NewScoreboardService(scores score.Repository, defaultLimit int, logger *logging.Logger) *ScoreboardService {
	return &ScoreboardService{
		scores:       scores,
		defaultLimit: score.NormalizeLimit(defaultLimit),
		logger:       logging.OrDefault(logger).Named("scoreboard"),
	}
}

// RecentEntries lists the newest rounds, optionally for one identity. An empty identity lists everyone.
func (s *ScoreboardService) RecentEntries(ctx context.Context, identity string, limit int) ([]score.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreboardService.RecentEntries")
	defer span.End()

	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", ErrInvalidInput)
	}
	if limit == 0 {
		limit = s.defaultLimit
	}

	entries, err := s.scores.RecentEntries(ctx, score.NormalizeIdentity(identity), score.NormalizeLimit(limit))
	if err != nil {
		return nil, storageError(ctx, "list recent entries", err)
	}
	return entries, nil
}

func (s *ScoreboardService) Purge(ctx context.Context, identity string) (int64, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreboardService.Purge")
	defer span.End()

	identity = score.NormalizeIdentity(identity)
	if identity == "" {
		return 0, fmt.Errorf("%w: identity is required", ErrInvalidInput)
	}

	deleted, err := s.scores.PurgeByIdentity(ctx, identity)
	if err != nil {
		return 0, storageError(ctx, "purge entries", err)
	}

	s.logger.InfoContext(ctx, "purged score entries", "identity", identity, "deleted", deleted)
	return deleted, nil
}

// Ping checks that the ledger answers a minimal query.
func (s *ScoreboardService) Ping(ctx context.Context) error {
	if _, err := s.scores.RecentEntries(ctx, "", 1); err != nil {
		return storageError(ctx, "ping ledger", err)
	}
	return nil
}

func storageError(ctx context.Context, op string, err error) error {
	if isCancellation(ctx, err) {
		return fmt.Errorf("%w: %s: %w", ErrCanceled, op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

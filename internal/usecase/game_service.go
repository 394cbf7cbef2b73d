package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/rpsls-game/internal/domain/game"
	"github.com/riskibarqy/rpsls-game/internal/domain/score"
	"github.com/riskibarqy/rpsls-game/internal/platform/logging"
	"github.com/riskibarqy/rpsls-game/internal/platform/metrics"
	"go.opentelemetry.io/otel/attribute"
)

type PlayRoundInput struct {
	PlayerMoveID int
	Identity     string
}

type RoundOutcome struct {
	Player   game.Move
	Computer game.Move
	Result   game.Result
	Fact     string
}

// GameService plays rounds against a computer opponent whose move is derived from an external seed.
type GameService struct {
	seeds   game.SeedSource
	scores  score.Repository
	logger  *logging.Logger
	metrics *metrics.Rounds

	now      func() time.Time
	pickFact func() string
}

func NewGameService(seeds game.SeedSource, scores score.Repository, logger *logging.Logger, roundMetrics *metrics.Rounds) *GameService {
	return &GameService{
		seeds:    seeds,
		scores:   scores,
		logger:   logging.OrDefault(logger).Named("game"),
		metrics:  roundMetrics,
		now:      time.Now,
		pickFact: randomFact,
	}
}

func (s *GameService) GetChoices() []game.Move {
	return game.AllMoves()
}

// GetChoice resolves a catalog id ("3") or a move name ("Scissors").
func (s *GameService) GetChoice(ref string) (game.Move, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.Atoi(ref); err == nil {
		if m, ok := game.MoveOf(id); ok {
			return m, nil
		}
		return 0, fmt.Errorf("%w: choice %d", ErrNotFound, id)
	}

	m, err := game.ParseMove(ref)
	if err != nil {
		return 0, fmt.Errorf("%w: choice %q", ErrNotFound, ref)
	}
	return m, nil
}

func (s *GameService) GetRandomChoice(ctx context.Context) (game.Move, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.GetRandomChoice")
	defer span.End()

	seed, err := s.fetchSeed(ctx)
	if err != nil {
		return 0, err
	}
	return game.ComputerMoveFromSeed(seed), nil
}

func (s *GameService) PlayRound(ctx context.Context, in PlayRoundInput) (RoundOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.PlayRound")
	defer span.End()

	player, ok := game.MoveOf(in.PlayerMoveID)
	if !ok {
		return RoundOutcome{}, fmt.Errorf("%w: player move must be between 1 and %d, got %d", ErrInvalidInput, game.MoveCount, in.PlayerMoveID)
	}

	seed, err := s.fetchSeed(ctx)
	if err != nil {
		return RoundOutcome{}, err
	}

	computer := game.ComputerMoveFromSeed(seed)
	result := game.Resolve(player, computer)
	span.SetAttributes(
		attribute.String("round.player", player.String()),
		attribute.String("round.computer", computer.String()),
		attribute.String("round.result", result.String()),
	)

	if err := ctx.Err(); err != nil {
		return RoundOutcome{}, fmt.Errorf("%w: round abandoned before recording: %w", ErrCanceled, err)
	}

	entry := score.Entry{
		Identity:     score.NormalizeIdentity(in.Identity),
		PlayerMove:   player,
		ComputerMove: computer,
		Result:       result,
		PlayedAt:     s.now().UTC(),
	}
	if _, err := s.scores.Append(ctx, entry); err != nil {
		if isCancellation(ctx, err) {
			return RoundOutcome{}, fmt.Errorf("%w: record round: %w", ErrCanceled, err)
		}
		s.metrics.AppendFailed()
		s.logger.WarnContext(ctx, "failed to record round, returning result anyway",
			"identity", entry.Identity,
			"result", result.String(),
			"error", err,
		)
	}

	s.metrics.Played(result.String())
	return RoundOutcome{
		Player:   player,
		Computer: computer,
		Result:   result,
		Fact:     s.pickFact(),
	}, nil
}

func (s *GameService) fetchSeed(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCanceled, err)
	}

	seed, err := s.seeds.FetchSeed(ctx)
	if err != nil {
		if isCancellation(ctx, err) {
			return 0, fmt.Errorf("%w: fetch seed: %w", ErrCanceled, err)
		}
		if errors.Is(err, ErrDependencyUnavailable) {
			return 0, fmt.Errorf("fetch seed: %w", err)
		}
		return 0, fmt.Errorf("%w: fetch seed: %w", ErrDependencyUnavailable, err)
	}
	return seed, nil
}

func isCancellation(ctx context.Context, err error) bool {
	if ctx.Err() == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

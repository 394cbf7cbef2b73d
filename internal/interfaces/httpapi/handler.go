package httpapi

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/rpsls-game/internal/platform/logging"
	"github.com/riskibarqy/rpsls-game/internal/usecase"
)

const maxRequestBodyBytes = 1 << 16

// ReadinessProbe is one dependency checked by /readyz.
type ReadinessProbe struct {
	Name  string
	Check func(ctx context.Context) error
}

type Handler struct {
	gameService       *usecase.GameService
	scoreboardService *usecase.ScoreboardService
	probes            []ReadinessProbe
	breakerState      func() string
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	gameService *usecase.GameService,
	scoreboardService *usecase.ScoreboardService,
	probes []ReadinessProbe,
	breakerState func() string,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if breakerState == nil {
		breakerState = func() string { return "disabled" }
	}

	return &Handler{
		gameService:       gameService,
		scoreboardService: scoreboardService,
		probes:            probes,
		breakerState:      breakerState,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

package httpapi

import (
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/rpsls-game/internal/usecase"
)

func (h *Handler) ListChoices(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListChoices")
	defer span.End()

	moves := h.gameService.GetChoices()
	items := make([]choiceDTO, 0, len(moves))
	for _, m := range moves {
		items = append(items, choiceToDTO(m))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetChoice(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetChoice")
	defer span.End()

	move, err := h.gameService.GetChoice(r.PathValue("move"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, choiceToDTO(move))
}

func (h *Handler) RandomChoice(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RandomChoice")
	defer span.End()

	move, err := h.gameService.GetRandomChoice(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "random choice failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, choiceToDTO(move))
}

func (h *Handler) Play(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Play")
	defer span.End()

	var req playRequest
	decoder := sonic.ConfigDefault.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	outcome, err := h.gameService.PlayRound(ctx, usecase.PlayRoundInput{
		PlayerMoveID: req.Player,
		Identity:     req.Email,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "play round failed", "player", req.Player, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, roundOutcomeToDTO(outcome))
}

package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/riskibarqy/rpsls-game/internal/usecase"
)

func (h *Handler) ListScoreboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListScoreboard")
	defer span.End()

	query := r.URL.Query()
	limit := 0
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(ctx, w, fmt.Errorf("%w: limit must be a positive integer", usecase.ErrInvalidInput))
			return
		}
		limit = parsed
	}

	entries, err := h.scoreboardService.RecentEntries(ctx, query.Get("email"), limit)
	if err != nil {
		h.logger.WarnContext(ctx, "list scoreboard failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]scoreEntryDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, scoreEntryToDTO(entry))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ResetScoreboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResetScoreboard")
	defer span.End()

	email := strings.TrimSpace(r.URL.Query().Get("email"))
	deleted, err := h.scoreboardService.Purge(ctx, email)
	if err != nil {
		h.logger.WarnContext(ctx, "reset scoreboard failed", "email", email, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, scoreboardResetDTO{Email: email, Deleted: deleted})
}

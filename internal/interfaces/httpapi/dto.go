package httpapi

import (
	"time"

	"github.com/riskibarqy/rpsls-game/internal/domain/game"
	"github.com/riskibarqy/rpsls-game/internal/domain/score"
	"github.com/riskibarqy/rpsls-game/internal/usecase"
)

type playRequest struct {
	Player int    `json:"player" validate:"required,min=1,max=5"`
	Email  string `json:"email" validate:"omitempty,max=320"`
}

type choiceDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type playResultDTO struct {
	Player   int    `json:"player"`
	Computer int    `json:"computer"`
	Result   string `json:"result"`
	Fact     string `json:"fact,omitempty"`
}

type scoreEntryDTO struct {
	Email        string `json:"email,omitempty"`
	PlayerMove   string `json:"player_move"`
	ComputerMove string `json:"computer_move"`
	Result       string `json:"result"`
	PlayedAt     string `json:"played_at"`
}

type scoreboardResetDTO struct {
	Email   string `json:"email"`
	Deleted int64  `json:"deleted"`
}

type readinessDTO struct {
	Status        string            `json:"status"`
	Checks        map[string]string `json:"checks"`
	RandomBreaker string            `json:"random_source_breaker"`
}

func choiceToDTO(m game.Move) choiceDTO {
	return choiceDTO{ID: m.ID(), Name: m.String()}
}

func roundOutcomeToDTO(v usecase.RoundOutcome) playResultDTO {
	return playResultDTO{
		Player:   v.Player.ID(),
		Computer: v.Computer.ID(),
		Result:   v.Result.String(),
		Fact:     v.Fact,
	}
}

func scoreEntryToDTO(v score.Entry) scoreEntryDTO {
	return scoreEntryDTO{
		Email:        v.Identity,
		PlayerMove:   v.PlayerMove.String(),
		ComputerMove: v.ComputerMove.String(),
		Result:       v.Result.String(),
		PlayedAt:     v.PlayedAt.UTC().Format(time.RFC3339Nano),
	}
}

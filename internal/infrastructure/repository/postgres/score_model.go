package postgres

import (
	"time"

	"github.com/riskibarqy/rpsls-game/internal/domain/game"
	"github.com/riskibarqy/rpsls-game/internal/domain/score"
)

const scoreEntriesTable = "score_entries"

var scoreEntryColumns = []string{"id", "identity", "player_move", "computer_move", "result", "played_at"}

type scoreEntryTableModel struct {
	ID           int64     `db:"id,readonly"`
	Identity     string    `db:"identity"`
	PlayerMove   int16     `db:"player_move"`
	ComputerMove int16     `db:"computer_move"`
	Result       string    `db:"result"`
	PlayedAt     time.Time `db:"played_at"`
}

func scoreEntryToRow(e score.Entry) scoreEntryTableModel {
	return scoreEntryTableModel{
		ID:           e.ID,
		Identity:     e.Identity,
		PlayerMove:   int16(e.PlayerMove),
		ComputerMove: int16(e.ComputerMove),
		Result:       e.Result.String(),
		PlayedAt:     e.PlayedAt.UTC(),
	}
}

func scoreEntryFromRow(row scoreEntryTableModel) score.Entry {
	return score.Entry{
		ID:           row.ID,
		Identity:     row.Identity,
		PlayerMove:   game.Move(row.PlayerMove),
		ComputerMove: game.Move(row.ComputerMove),
		Result:       game.Result(row.Result),
		PlayedAt:     row.PlayedAt.UTC(),
	}
}

package sqlite

import (
	"time"

	"github.com/riskibarqy/rpsls-game/internal/domain/game"
	"github.com/riskibarqy/rpsls-game/internal/domain/score"
)

const scoreEntriesTable = "score_entries"

var scoreEntryColumns = []string{"id", "identity", "player_move", "computer_move", "result", "played_at"}

// played_at is stored as unix nanoseconds so ordering stays exact.
type scoreEntryTableModel struct {
	ID           int64  `db:"id,readonly"`
	Identity     string `db:"identity"`
	PlayerMove   int    `db:"player_move"`
	ComputerMove int    `db:"computer_move"`
	Result       string `db:"result"`
	PlayedAt     int64  `db:"played_at"`
}

func scoreEntryToRow(e score.Entry) scoreEntryTableModel {
	return scoreEntryTableModel{
		ID:           e.ID,
		Identity:     e.Identity,
		PlayerMove:   e.PlayerMove.ID(),
		ComputerMove: e.ComputerMove.ID(),
		Result:       e.Result.String(),
		PlayedAt:     e.PlayedAt.UTC().UnixNano(),
	}
}

func scoreEntryFromRow(row scoreEntryTableModel) score.Entry {
	return score.Entry{
		ID:           row.ID,
		Identity:     row.Identity,
		PlayerMove:   game.Move(row.PlayerMove),
		ComputerMove: game.Move(row.ComputerMove),
		Result:       game.Result(row.Result),
		PlayedAt:     time.Unix(0, row.PlayedAt).UTC(),
	}
}

package score

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/rpsls-game/internal/domain/game"
)

const (
	DefaultRecentLimit = 10
	MaxRecentLimit     = 100
)

// ErrIdentityRequired is returned by ledgers asked to purge without an identity.
var ErrIdentityRequired = errors.New("identity is required")

// Entry is one recorded round in the ledger.
type Entry struct {
	ID           int64
	Identity     string
	PlayerMove   game.Move
	ComputerMove game.Move
	Result       game.Result
	PlayedAt     time.Time
}

func (e Entry) Validate() error {
	if !e.PlayerMove.Valid() {
		return fmt.Errorf("player move %d is not a catalog move", e.PlayerMove)
	}
	if !e.ComputerMove.Valid() {
		return fmt.Errorf("computer move %d is not a catalog move", e.ComputerMove)
	}
	switch e.Result {
	case game.ResultWin, game.ResultLose, game.ResultTie:
	default:
		return fmt.Errorf("unknown result %q", e.Result)
	}
	if e.PlayedAt.IsZero() {
		return fmt.Errorf("played at is required")
	}
	return nil
}

// NormalizeIdentity trims surrounding whitespace. Identities are otherwise opaque.
func NormalizeIdentity(identity string) string {
	return strings.TrimSpace(identity)
}

// NormalizeLimit applies the default for non-positive limits and caps large ones.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		return MaxRecentLimit
	}
	return limit
}

// Newer reports whether a sorts before b in recent-first order.
func Newer(a, b Entry) bool {
	if !a.PlayedAt.Equal(b.PlayedAt) {
		return a.PlayedAt.After(b.PlayedAt)
	}
	return a.ID > b.ID
}

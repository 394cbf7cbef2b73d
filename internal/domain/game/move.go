package game

import (
	"errors"
	"strings"
)

var ErrUnknownMove = errors.New("unknown move")

// Move is one of the five gestures. The numeric value is the wire identifier.
type Move int

const (
	Rock Move = iota + 1
	Paper
	Scissors
	Lizard
	Spock
)

// MoveCount is the size of the catalog.
const MoveCount = 5

var allMoves = [MoveCount]Move{Rock, Paper, Scissors, Lizard, Spock}

var moveNames = [MoveCount]string{"rock", "paper", "scissors", "lizard", "spock"}

// AllMoves returns the catalog in identifier order.
func AllMoves() []Move {
	out := make([]Move, MoveCount)
	copy(out, allMoves[:])
	return out
}

func (m Move) Valid() bool {
	return m >= Rock && m <= Spock
}

func (m Move) ID() int {
	return int(m)
}

func (m Move) String() string {
	if !m.Valid() {
		return "unknown"
	}
	return moveNames[m-1]
}

func IDOf(m Move) int {
	return m.ID()
}

func MoveOf(id int) (Move, bool) {
	m := Move(id)
	if !m.Valid() {
		return 0, false
	}
	return m, true
}

func ParseMove(name string) (Move, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for i, candidate := range moveNames {
		if candidate == normalized {
			return allMoves[i], nil
		}
	}
	return 0, ErrUnknownMove
}

package game

import "context"

// Result is the outcome of a round from the player's point of view.
type Result string

const (
	ResultWin  Result = "win"
	ResultLose Result = "lose"
	ResultTie  Result = "tie"
)

func (r Result) String() string {
	return string(r)
}

// SeedIndex maps any signed seed onto a catalog index in [0, MoveCount).
// Seeds are 1-based, so seed 1 selects the first move and seed 0 wraps to the last.
func SeedIndex(seed int) int {
	idx := (seed - 1) % MoveCount
	if idx < 0 {
		idx += MoveCount
	}
	return idx
}

func ComputerMoveFromSeed(seed int) Move {
	return allMoves[SeedIndex(seed)]
}

func Resolve(player, computer Move) Result {
	if player == computer {
		return ResultTie
	}
	if Defeats(player, computer) {
		return ResultWin
	}
	return ResultLose
}

// SeedSource supplies the raw seeds that select computer moves.
type SeedSource interface {
	FetchSeed(ctx context.Context) (int, error)
}

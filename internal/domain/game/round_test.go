package game

import "testing"

func TestComputerMoveFromSeed(t *testing.T) {
	tests := []struct {
		seed int
		want Move
	}{
		{1, Rock},
		{2, Paper},
		{3, Scissors},
		{4, Lizard},
		{5, Spock},
		{6, Rock},
		{0, Spock},
		{42, Paper},
		{99, Lizard},
		{999, Lizard},
		{-1, Lizard},
		{-4, Rock},
		{-999, Rock},
	}

	for _, tt := range tests {
		if got := ComputerMoveFromSeed(tt.seed); got != tt.want {
			t.Fatalf("seed %d: expected %s, got %s", tt.seed, tt.want, got)
		}
	}
}

func TestSeedIndexAlwaysInRange(t *testing.T) {
	for seed := -1000; seed <= 1000; seed++ {
		idx := SeedIndex(seed)
		if idx < 0 || idx >= MoveCount {
			t.Fatalf("seed %d produced index %d", seed, idx)
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		player   Move
		computer Move
		want     Result
	}{
		{"rock crushes scissors", Rock, Scissors, ResultWin},
		{"rock crushes lizard", Rock, Lizard, ResultWin},
		{"paper covers rock", Paper, Rock, ResultWin},
		{"paper disproves spock", Paper, Spock, ResultWin},
		{"scissors cuts paper", Scissors, Paper, ResultWin},
		{"scissors decapitates lizard", Scissors, Lizard, ResultWin},
		{"lizard poisons spock", Lizard, Spock, ResultWin},
		{"lizard eats paper", Lizard, Paper, ResultWin},
		{"spock smashes scissors", Spock, Scissors, ResultWin},
		{"spock vaporizes rock", Spock, Rock, ResultWin},
		{"spock loses to lizard", Spock, Lizard, ResultLose},
		{"rock loses to paper", Rock, Paper, ResultLose},
		{"paper tie", Paper, Paper, ResultTie},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.player, tt.computer); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestResolveIsAntisymmetric(t *testing.T) {
	for _, a := range AllMoves() {
		for _, b := range AllMoves() {
			ab := Resolve(a, b)
			ba := Resolve(b, a)
			switch ab {
			case ResultTie:
				if a != b || ba != ResultTie {
					t.Fatalf("unexpected tie for %s vs %s", a, b)
				}
			case ResultWin:
				if ba != ResultLose {
					t.Fatalf("%s beats %s but reverse is %s", a, b, ba)
				}
			case ResultLose:
				if ba != ResultWin {
					t.Fatalf("%s loses to %s but reverse is %s", a, b, ba)
				}
			}
		}
	}
}

package game

import "testing"

func TestBeatsRelationIsTournament(t *testing.T) {
	for _, m := range AllMoves() {
		if Defeats(m, m) {
			t.Fatalf("%s must not beat itself", m)
		}
		if got := len(Beats(m)); got != 2 {
			t.Fatalf("%s beats %d moves, expected 2", m, got)
		}
		for _, other := range AllMoves() {
			if m == other {
				continue
			}
			if Defeats(m, other) == Defeats(other, m) {
				t.Fatalf("exactly one of %s/%s must win", m, other)
			}
		}
	}
}

func TestBeats(t *testing.T) {
	tests := []struct {
		attacker Move
		want     []Move
	}{
		{Rock, []Move{Scissors, Lizard}},
		{Paper, []Move{Rock, Spock}},
		{Scissors, []Move{Paper, Lizard}},
		{Lizard, []Move{Paper, Spock}},
		{Spock, []Move{Rock, Scissors}},
	}

	for _, tt := range tests {
		t.Run(tt.attacker.String(), func(t *testing.T) {
			got := Beats(tt.attacker)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("expected %v, got %v", tt.want, got)
				}
			}
		})
	}

	if got := Beats(Move(42)); got != nil {
		t.Fatalf("expected nil for unknown move, got %v", got)
	}
}

func TestBuildDefeatsRejectsBrokenTables(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[Move][2]Move)
	}{
		{
			name:   "missing attacker",
			mutate: func(src map[Move][2]Move) { delete(src, Spock) },
		},
		{
			name:   "self defeat",
			mutate: func(src map[Move][2]Move) { src[Rock] = [2]Move{Rock, Lizard} },
		},
		{
			name:   "duplicate victim",
			mutate: func(src map[Move][2]Move) { src[Rock] = [2]Move{Scissors, Scissors} },
		},
		{
			name:   "mutual defeat",
			mutate: func(src map[Move][2]Move) { src[Rock] = [2]Move{Paper, Lizard} },
		},
		{
			name:   "unknown victim",
			mutate: func(src map[Move][2]Move) { src[Rock] = [2]Move{Scissors, Move(9)} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := make(map[Move][2]Move, len(beatsTable))
			for k, v := range beatsTable {
				src[k] = v
			}
			tt.mutate(src)

			if _, err := buildDefeats(src); err == nil {
				t.Fatalf("expected error for %s", tt.name)
			}
		})
	}

	if _, err := buildDefeats(beatsTable); err != nil {
		t.Fatalf("expected canonical table to be valid, got %v", err)
	}
}

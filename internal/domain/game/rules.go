package game

import "fmt"

var beatsTable = map[Move][2]Move{
	Rock:     {Scissors, Lizard},
	Paper:    {Rock, Spock},
	Scissors: {Paper, Lizard},
	Lizard:   {Spock, Paper},
	Spock:    {Rock, Scissors},
}

// defeats[a][b] reports whether a beats b. Indexes are move identifiers.
var defeats [MoveCount + 1][MoveCount + 1]bool

func init() {
	table, err := buildDefeats(beatsTable)
	if err != nil {
		panic(fmt.Sprintf("game: invalid beats relation: %v", err))
	}
	defeats = table
}

// buildDefeats turns the hand-written table into the lookup matrix and rejects anything
// that is not a tournament where every move beats exactly two others.
func buildDefeats(source map[Move][2]Move) ([MoveCount + 1][MoveCount + 1]bool, error) {
	var out [MoveCount + 1][MoveCount + 1]bool
	if len(source) != MoveCount {
		return out, fmt.Errorf("expected %d attackers, got %d", MoveCount, len(source))
	}

	inDegree := make(map[Move]int, MoveCount)
	for attacker, victims := range source {
		if !attacker.Valid() {
			return out, fmt.Errorf("attacker %d is not a catalog move", attacker)
		}
		if victims[0] == victims[1] {
			return out, fmt.Errorf("%s lists %s twice", attacker, victims[0])
		}
		for _, victim := range victims {
			if !victim.Valid() {
				return out, fmt.Errorf("%s beats unknown move %d", attacker, victim)
			}
			if victim == attacker {
				return out, fmt.Errorf("%s cannot beat itself", attacker)
			}
			out[attacker][victim] = true
			inDegree[victim]++
		}
	}

	for _, m := range allMoves {
		if inDegree[m] != 2 {
			return out, fmt.Errorf("%s is beaten by %d moves, expected 2", m, inDegree[m])
		}
		for _, other := range allMoves {
			if out[m][other] && out[other][m] {
				return out, fmt.Errorf("%s and %s beat each other", m, other)
			}
		}
	}

	return out, nil
}

// Beats returns the two moves defeated by attacker, in catalog order.
func Beats(attacker Move) []Move {
	if !attacker.Valid() {
		return nil
	}
	out := make([]Move, 0, 2)
	for _, m := range allMoves {
		if defeats[attacker][m] {
			out = append(out, m)
		}
	}
	return out
}

func Defeats(attacker, defender Move) bool {
	if !attacker.Valid() || !defender.Valid() {
		return false
	}
	return defeats[attacker][defender]
}

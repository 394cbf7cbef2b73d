package usecase

import "math/rand/v2"

var funFacts = [...]string{
	"This game was invented by Sam Kass and Karen Bryla.",
	"Made famous by The Big Bang Theory TV show.",
	"Every move defeats exactly two others. Balanced gameplay!",
	"There are 10 matchups in RPSLS, versus 3 in RPS.",
	"Spock is the only move named after a person!",
	"Spock vaporizes Rock!",
	"Lizard poisons Spock... why? Nobody knows.",
	"Scissors decapitates Lizard!",
	"Paper disproves Spock!",
	"Rock crushes Scissors!",
	"The earliest known hand game of this kind, Shoushiling, dates back to the Han Dynasty in China.",
	"In Japan the classic three-move game is called Jan-Ken and is used to settle everyday disputes.",
	"RPSLS is a non-transitive game: no single move is best against every other.",
	"Hand games like this one are used in AI research to study how agents adapt to opponents.",
	"RPSLS expands the original 3 gestures to 5, reducing tie probability from 33.3% to 20%.",
	"RPSLS was invented in the early 2000s to cut down on ties between people who know each other well.",
	"Psychologists have found that people fall into predictable patterns when asked to play randomly.",
	"Competitive tournaments exist for the classic game, where bluffing and reading opponents matter.",
	"Strong game bots use Markov chains or Bayesian models to predict a human's next move.",
	"Against a truly random opponent, no strategy can do better than break even in the long run.",
}

// randomFact picks a fact uniformly. It never blocks and never fails.
func randomFact() string {
	return funFacts[rand.IntN(len(funFacts))]
}

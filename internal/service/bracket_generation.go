package service

import (
	"math"
	"time"

	"github.com/AdamBeresnev/federation-core/internal/bracket"
	"github.com/google/uuid"
)

// Gets the nearest power of 2 while rounding up, so with input 5 it returns 8 and so on.
// A lone participant still gets a two slot bracket.
func calcBracketSize(count int) int {
	if count <= 0 {
		return 0
	}
	if count == 1 {
		return 2
	}

	// Log2 -> Ceil -> 2^^log2 to round up
	log2 := math.Ceil(math.Log2(float64(count)))
	return int(math.Pow(2, log2))
}

// Seeds are paired in order: 1v2, 3v4 and so on. Indexes at or past the
// participant count are byes.
func generateRound1Pairs(bracketSize int) [][2]int {
	pairs := make([][2]int, 0, bracketSize/2)
	for i := 0; i+1 < bracketSize; i += 2 {
		pairs = append(pairs, [2]int{i, i + 1})
	}
	return pairs
}

// Generate every round of a single elimination tree. Round 1 slots are left
// empty for seeding, later slots wait on the previous round.
func generateSingleElimBracket(bracketID uuid.UUID, bracketSize int, now time.Time) []bracket.Match {
	totalRounds := bracket.TotalRounds(bracketSize)

	var matches []bracket.Match
	for r := 1; r <= totalRounds; r++ {
		matchesInCurrentRound := bracketSize >> r

		for i := 0; i < matchesInCurrentRound; i++ {
			m := bracket.Match{
				ID:          uuid.New(),
				BracketID:   bracketID,
				RoundNumber: r,
				MatchNumber: i + 1,
				Status:      bracket.MatchScheduled,
				CreatedAt:   now,
			}
			if r == 1 {
				m.SetSlot(1, bracket.Slot{State: bracket.SlotEmpty})
				m.SetSlot(2, bracket.Slot{State: bracket.SlotEmpty})
			} else {
				m.SetSlot(1, bracket.Awaiting())
				m.SetSlot(2, bracket.Awaiting())
			}
			matches = append(matches, m)
		}
	}
	return matches
}

// seedRound1 places participants into round 1 and returns those matches so the
// bye queue can start from them.
func seedRound1(g *matchGrid, participants []bracket.Participant, bracketSize int) []*bracket.Match {
	var round1 []*bracket.Match
	for i, pair := range generateRound1Pairs(bracketSize) {
		match := g.at(1, i+1)
		for slot, index := range pair {
			if index < len(participants) {
				match.SetSlot(slot+1, bracket.Filled(participants[index].ID))
			} else {
				match.SetSlot(slot+1, bracket.Bye())
			}
		}
		round1 = append(round1, match)
	}
	return round1
}

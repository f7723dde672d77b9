package rating

import (
	"github.com/AdamBeresnev/federation-core/internal/bracket"
	"github.com/google/uuid"
)

// Outcome holds the bracket participants credited from one bracket.
type Outcome struct {
	Gold   *uuid.UUID
	Bronze []uuid.UUID
}

// DeriveMedals credits the final's winner with gold and each semifinal loser with
// bronze. The final's loser is not credited with silver.
func DeriveMedals(bracketSize int, matches []bracket.Match) Outcome {
	var out Outcome

	totalRounds := bracket.TotalRounds(bracketSize)
	if totalRounds == 0 {
		return out
	}

	var final *bracket.Match
	for i := range matches {
		m := &matches[i]
		if final == nil || m.RoundNumber > final.RoundNumber {
			final = m
		}
	}
	if final != nil && final.WinnerID != nil {
		id := *final.WinnerID
		out.Gold = &id
	}

	semifinalRound := totalRounds - 1
	if semifinalRound < 1 {
		return out
	}
	for i := range matches {
		m := &matches[i]
		if m.RoundNumber != semifinalRound || m.Status != bracket.MatchCompleted {
			continue
		}
		if loser := m.LoserID(); loser != nil {
			out.Bronze = append(out.Bronze, *loser)
		}
	}

	return out
}

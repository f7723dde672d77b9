package bracket

import (
	"fmt"
	"math/bits"
)

// TotalRounds is ceil(log2(bracketSize)); 0 for sizes below 2.
func TotalRounds(bracketSize int) int {
	if bracketSize < 2 {
		return 0
	}
	return bits.Len(uint(bracketSize - 1))
}

// RoundName labels a round counted from the end of the bracket, so round 1 of a
// 2-slot bracket is the Final.
func RoundName(roundNumber, bracketSize int) string {
	roundsFromEnd := TotalRounds(bracketSize) - roundNumber + 1

	switch roundsFromEnd {
	case 1:
		return "Final"
	case 2:
		return "Semifinal"
	case 3:
		return "Quarterfinal"
	case 4:
		return "Round of 16"
	case 5:
		return "Round of 32"
	case 6:
		return "Round of 64"
	default:
		return fmt.Sprintf("Round %d", roundNumber)
	}
}

// NextPosition returns where the winner of match number k goes in the following
// round: match ceil(k/2), slot 1 for odd k and slot 2 for even k.
func NextPosition(matchNumber int) (nextMatchNumber int, slot int) {
	nextMatchNumber = (matchNumber + 1) / 2
	if matchNumber%2 != 0 {
		return nextMatchNumber, 1
	}
	return nextMatchNumber, 2
}

package bracket

import (
	"time"

	"github.com/google/uuid"
)

type ScoreKind string

const (
	ScorePoint     ScoreKind = "point"
	ScoreAdvantage ScoreKind = "advantage"
	ScorePenalty   ScoreKind = "penalty"
)

func (k ScoreKind) Valid() bool {
	switch k {
	case ScorePoint, ScoreAdvantage, ScorePenalty:
		return true
	}
	return false
}

// ScoreEvent is one entry of a match's score log. The log drives the running
// score only, the winner is always set explicitly on completion.
type ScoreEvent struct {
	ID            uuid.UUID `db:"id"`
	MatchID       uuid.UUID `db:"match_id"`
	ParticipantID uuid.UUID `db:"participant_id"`
	Kind          ScoreKind `db:"kind"`
	Points        int       `db:"points"`
	CreatedAt     time.Time `db:"created_at"`
}

type SideScore struct {
	Points     int `json:"points"`
	Advantages int `json:"advantages"`
	Penalties  int `json:"penalties"`
}

type RunningScore struct {
	Side1 SideScore `json:"side_1"`
	Side2 SideScore `json:"side_2"`
}

// Tally folds events in order into per-slot totals. Events for participants not
// in the match are skipped.
func Tally(m *Match, events []ScoreEvent) RunningScore {
	var rs RunningScore
	for _, e := range events {
		var side *SideScore
		switch m.SlotOf(e.ParticipantID) {
		case 1:
			side = &rs.Side1
		case 2:
			side = &rs.Side2
		default:
			continue
		}

		switch e.Kind {
		case ScorePoint:
			side.Points += e.Points
		case ScoreAdvantage:
			side.Advantages += e.Points
		case ScorePenalty:
			side.Penalties += e.Points
		}
	}
	return rs
}

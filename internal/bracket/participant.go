package bracket

import "github.com/google/uuid"

// Participant is an approved registration placed into a bracket slot.
type Participant struct {
	ID        uuid.UUID `db:"id"`
	BracketID uuid.UUID `db:"bracket_id"`
	AthleteID uuid.UUID `db:"athlete_id"`
	Seed      int       `db:"seed"`
	Weight    *float64  `db:"weight"`
}

package rating

import "github.com/google/uuid"

type Athlete struct {
	ID       uuid.UUID  `db:"id"`
	ClubID   *uuid.UUID `db:"club_id"`
	FullName string     `db:"full_name"`
	Gold     int        `db:"gold"`
	Silver   int        `db:"silver"`
	Bronze   int        `db:"bronze"`
	Rating   int        `db:"rating"`
}

func (a *Athlete) Medals() Medals {
	return Medals{Gold: a.Gold, Silver: a.Silver, Bronze: a.Bronze}
}

type Club struct {
	ID     uuid.UUID `db:"id"`
	Name   string    `db:"name"`
	Rating int       `db:"rating"`
}

type Medals struct {
	Gold   int
	Silver int
	Bronze int
}

func (m Medals) IsZero() bool {
	return m == Medals{}
}

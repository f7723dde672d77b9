package bracket

import (
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderMixed  Gender = "mixed"
)

// Category is one competitive grouping (discipline x age x weight x belt x gender)
// within a competition. It owns at most one Bracket.
type Category struct {
	ID               uuid.UUID  `db:"id"`
	CompetitionID    uuid.UUID  `db:"competition_id"`
	DisciplineID     *uuid.UUID `db:"discipline_id"`
	AgeCategoryID    *uuid.UUID `db:"age_category_id"`
	WeightCategoryID *uuid.UUID `db:"weight_category_id"`
	BeltCategoryID   *uuid.UUID `db:"belt_category_id"`
	Gender           Gender     `db:"gender"`
	Name             string     `db:"name"`
	CreatedAt        time.Time  `db:"created_at"`
}

type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "pending"
	RegistrationApproved RegistrationStatus = "approved"
	RegistrationRejected RegistrationStatus = "rejected"
)

type Registration struct {
	ID         uuid.UUID          `db:"id"`
	CategoryID uuid.UUID          `db:"category_id"`
	AthleteID  uuid.UUID          `db:"athlete_id"`
	Status     RegistrationStatus `db:"status"`
	Weight     *float64           `db:"weight"`
	CreatedAt  time.Time          `db:"created_at"`
}

// Competition groups categories. Level is one of club, regional, national or
// international.
type Competition struct {
	ID           uuid.UUID `db:"id"`
	FederationID uuid.UUID `db:"federation_id"`
	Name         string    `db:"name"`
	Level        string    `db:"level"`
	CreatedAt    time.Time `db:"created_at"`
}

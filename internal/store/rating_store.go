package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/AdamBeresnev/federation-core/internal/rating"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type RatingStore struct {
	db *sqlx.DB
}

func NewRatingStore(db *sqlx.DB) *RatingStore {
	return &RatingStore{db: db}
}

func (s *RatingStore) CreateClub(ctx context.Context, tx *sqlx.Tx, club *rating.Club) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO clubs (id, name, rating) VALUES (:id, :name, :rating)`, club)
	return err
}

func (s *RatingStore) GetClub(ctx context.Context, id uuid.UUID) (*rating.Club, error) {
	var club rating.Club
	err := s.db.GetContext(ctx, &club, s.db.Rebind("SELECT * FROM clubs WHERE id = ?"), id)
	if err != nil {
		return nil, err
	}
	return &club, nil
}

func (s *RatingStore) CreateAthletes(ctx context.Context, tx *sqlx.Tx, athletes []rating.Athlete) error {
	if len(athletes) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO athletes (id, club_id, full_name, gold, silver, bronze, rating)
		VALUES (:id, :club_id, :full_name, :gold, :silver, :bronze, :rating)`, athletes)
	return err
}

func (s *RatingStore) GetAthlete(ctx context.Context, id uuid.UUID) (*rating.Athlete, error) {
	var athlete rating.Athlete
	err := s.db.GetContext(ctx, &athlete, s.db.Rebind("SELECT * FROM athletes WHERE id = ?"), id)
	if err != nil {
		return nil, err
	}
	return &athlete, nil
}

func (s *RatingStore) GetAthleteTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*rating.Athlete, error) {
	var athlete rating.Athlete
	err := tx.GetContext(ctx, &athlete, tx.Rebind("SELECT * FROM athletes WHERE id = ?"), id)
	if err != nil {
		return nil, err
	}
	return &athlete, nil
}

// IncrementMedalsTx adds to the athlete's counters, counters never decrease here.
func (s *RatingStore) IncrementMedalsTx(ctx context.Context, tx *sqlx.Tx, athleteID uuid.UUID, m rating.Medals) error {
	result, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE athletes
		SET gold = gold + ?, silver = silver + ?, bronze = bronze + ?
		WHERE id = ?`), m.Gold, m.Silver, m.Bronze, athleteID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, sql.ErrNoRows)
}

func (s *RatingStore) UpdateAthleteRatingTx(ctx context.Context, tx *sqlx.Tx, athleteID uuid.UUID, value int) error {
	result, err := tx.ExecContext(ctx, tx.Rebind("UPDATE athletes SET rating = ? WHERE id = ?"), value, athleteID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, sql.ErrNoRows)
}

func (s *RatingStore) SumClubRatingTx(ctx context.Context, tx *sqlx.Tx, clubID uuid.UUID) (int, error) {
	var total int
	err := tx.GetContext(ctx, &total, tx.Rebind("SELECT COALESCE(SUM(rating), 0) FROM athletes WHERE club_id = ?"), clubID)
	return total, err
}

func (s *RatingStore) UpdateClubRatingTx(ctx context.Context, tx *sqlx.Tx, clubID uuid.UUID, value int) error {
	result, err := tx.ExecContext(ctx, tx.Rebind("UPDATE clubs SET rating = ? WHERE id = ?"), value, clubID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, sql.ErrNoRows)
}

// GetRatingPointsTx returns the raw rating_points blob of a federation, nil
// when the federation has no settings row.
func (s *RatingStore) GetRatingPointsTx(ctx context.Context, tx *sqlx.Tx, federationID uuid.UUID) ([]byte, error) {
	var blob string
	err := tx.GetContext(ctx, &blob, tx.Rebind("SELECT rating_points FROM federation_settings WHERE federation_id = ?"), federationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(blob), nil
}

func (s *RatingStore) SaveRatingPoints(ctx context.Context, tx *sqlx.Tx, federationID uuid.UUID, blob []byte) error {
	_, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO federation_settings (federation_id, rating_points) VALUES (?, ?)
		ON CONFLICT (federation_id) DO UPDATE SET rating_points = excluded.rating_points`), federationID, string(blob))
	return err
}

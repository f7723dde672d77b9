package store

import (
	"context"

	"github.com/AdamBeresnev/federation-core/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type CategoryStore struct {
	db *sqlx.DB
}

func NewCategoryStore(db *sqlx.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

func (s *CategoryStore) CreateCompetition(ctx context.Context, tx *sqlx.Tx, competition *bracket.Competition) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO competitions (id, federation_id, name, level, created_at)
		VALUES (:id, :federation_id, :name, :level, :created_at)`, competition)
	return err
}

func (s *CategoryStore) GetCompetitionTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.Competition, error) {
	var competition bracket.Competition
	err := tx.GetContext(ctx, &competition, tx.Rebind("SELECT * FROM competitions WHERE id = ?"), id)
	if err != nil {
		return nil, err
	}
	return &competition, nil
}

func (s *CategoryStore) CreateCategory(ctx context.Context, tx *sqlx.Tx, category *bracket.Category) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO categories (id, competition_id, discipline_id, age_category_id, weight_category_id, belt_category_id, gender, name, created_at)
		VALUES (:id, :competition_id, :discipline_id, :age_category_id, :weight_category_id, :belt_category_id, :gender, :name, :created_at)`, category)
	return err
}

func (s *CategoryStore) GetCategory(ctx context.Context, id uuid.UUID) (*bracket.Category, error) {
	var category bracket.Category
	err := s.db.GetContext(ctx, &category, s.db.Rebind("SELECT * FROM categories WHERE id = ?"), id)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *CategoryStore) GetCategoryTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.Category, error) {
	var category bracket.Category
	err := tx.GetContext(ctx, &category, tx.Rebind("SELECT * FROM categories WHERE id = ?"), id)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *CategoryStore) CreateRegistrations(ctx context.Context, tx *sqlx.Tx, registrations []bracket.Registration) error {
	if len(registrations) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO registrations (id, category_id, athlete_id, status, weight, created_at)
		VALUES (:id, :category_id, :athlete_id, :status, :weight, :created_at)`, registrations)
	return err
}

// ListApprovedRegistrationsTx returns the category's approved registrations in
// registration order, which is the default seed order.
func (s *CategoryStore) ListApprovedRegistrationsTx(ctx context.Context, tx *sqlx.Tx, categoryID uuid.UUID) ([]bracket.Registration, error) {
	var registrations []bracket.Registration
	err := tx.SelectContext(ctx, &registrations, tx.Rebind(`SELECT * FROM registrations
		WHERE category_id = ? AND status = ?
		ORDER BY created_at ASC, id ASC`), categoryID, bracket.RegistrationApproved)
	return registrations, err
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AdamBeresnev/federation-core/internal/bracket"
	"github.com/AdamBeresnev/federation-core/internal/metrics"
	"github.com/AdamBeresnev/federation-core/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

type BracketService struct {
	db         *sqlx.DB
	categories *store.CategoryStore
	brackets   *store.BracketStore
	logger     *slog.Logger
}

func NewBracketService(db *sqlx.DB, categories *store.CategoryStore, brackets *store.BracketStore, logger *slog.Logger) *BracketService {
	return &BracketService{db: db, categories: categories, brackets: brackets, logger: logger}
}

// ParticipantInput is one athlete to seed. Seeds follow input order.
type ParticipantInput struct {
	AthleteID uuid.UUID `json:"athlete_id"`
	Weight    *float64  `json:"weight,omitempty"`
}

// BuildBracket generates the single elimination bracket of a category. An
// existing bracket for the category is replaced.
func (s *BracketService) BuildBracket(ctx context.Context, categoryID uuid.UUID, inputs []ParticipantInput) (*bracket.Bracket, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.requireCategory(ctx, tx, categoryID); err != nil {
		return nil, err
	}

	b, err := s.build(ctx, tx, categoryID, inputs)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	metrics.BracketsGenerated.Inc()
	return b, nil
}

// BuildFromRegistrations seeds the category's approved registrations in the
// order they were made.
func (s *BracketService) BuildFromRegistrations(ctx context.Context, categoryID uuid.UUID) (*bracket.Bracket, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.requireCategory(ctx, tx, categoryID); err != nil {
		return nil, err
	}

	registrations, err := s.categories.ListApprovedRegistrationsTx(ctx, tx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}

	inputs := make([]ParticipantInput, 0, len(registrations))
	for _, r := range registrations {
		inputs = append(inputs, ParticipantInput{AthleteID: r.AthleteID, Weight: r.Weight})
	}

	b, err := s.build(ctx, tx, categoryID, inputs)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	metrics.BracketsGenerated.Inc()
	return b, nil
}

func (s *BracketService) requireCategory(ctx context.Context, tx *sqlx.Tx, categoryID uuid.UUID) error {
	if _, err := s.categories.GetCategoryTx(ctx, tx, categoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to get category: %w", err)
	}
	return nil
}

func (s *BracketService) build(ctx context.Context, tx *sqlx.Tx, categoryID uuid.UUID, inputs []ParticipantInput) (*bracket.Bracket, error) {
	if len(inputs) == 0 {
		return nil, ErrEmptyParticipantSet
	}

	existing, err := s.brackets.GetBracketByCategoryTx(ctx, tx, categoryID)
	switch {
	case err == nil:
		s.logger.Info("replacing existing bracket", "category_id", categoryID, "bracket_id", existing.ID, "status", existing.Status)
		if err := s.brackets.DeleteBracketTx(ctx, tx, existing.ID); err != nil {
			return nil, fmt.Errorf("failed to delete previous bracket: %w", err)
		}
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("failed to look up existing bracket: %w", err)
	}

	now := time.Now().UTC()
	size := calcBracketSize(len(inputs))
	b := bracket.Bracket{
		ID:          uuid.New(),
		CategoryID:  categoryID,
		Type:        bracket.SingleElimination,
		Size:        size,
		Status:      bracket.StatusGenerated,
		GeneratedAt: &now,
	}

	participants := make([]bracket.Participant, 0, len(inputs))
	for i, input := range inputs {
		participants = append(participants, bracket.Participant{
			ID:        uuid.New(),
			BracketID: b.ID,
			AthleteID: input.AthleteID,
			Seed:      i + 1,
			Weight:    input.Weight,
		})
	}

	matches := generateSingleElimBracket(b.ID, size, now)
	grid := newMatchGrid(size, matches)
	byes, finalResolved := grid.resolveByes(seedRound1(grid, participants, size))
	if finalResolved {
		b.Status = bracket.StatusCompleted
	}

	if err := s.brackets.CreateBracket(ctx, tx, &b); err != nil {
		return nil, fmt.Errorf("failed to create bracket: %w", err)
	}
	if err := s.brackets.CreateParticipants(ctx, tx, participants); err != nil {
		return nil, fmt.Errorf("failed to create participants: %w", err)
	}
	if err := s.brackets.CreateMatches(ctx, tx, matches); err != nil {
		return nil, fmt.Errorf("failed to create matches: %w", err)
	}

	metrics.ByesResolved.Add(float64(byes))
	s.logger.Info("bracket generated",
		"category_id", categoryID,
		"bracket_id", b.ID,
		"participants", len(participants),
		"size", size,
		"byes", byes,
		"status", b.Status,
	)
	return &b, nil
}

// GetBracketView loads a category's bracket with its participants, matches and
// running scores grouped by round.
func (s *BracketService) GetBracketView(ctx context.Context, categoryID uuid.UUID) (*BracketView, error) {
	category, err := s.categories.GetCategory(ctx, categoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	b, err := s.brackets.GetBracketByCategory(ctx, categoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBracketNotFound
		}
		return nil, fmt.Errorf("failed to get bracket: %w", err)
	}

	var (
		participants []bracket.Participant
		matches      []bracket.Match
		scores       map[uuid.UUID][]bracket.ScoreEvent
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		participants, err = s.brackets.GetParticipants(gctx, b.ID)
		if err != nil {
			return fmt.Errorf("failed to get participants: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		matches, err = s.brackets.GetMatches(gctx, b.ID)
		if err != nil {
			return fmt.Errorf("failed to get matches: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		scores, err = s.brackets.GetScoreEventsByBracket(gctx, b.ID)
		if err != nil {
			return fmt.Errorf("failed to get score events: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return newBracketView(category, b, participants, matches, scores), nil
}

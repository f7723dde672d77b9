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
	"github.com/AdamBeresnev/federation-core/internal/rating"
	"github.com/AdamBeresnev/federation-core/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type RatingService struct {
	db         *sqlx.DB
	categories *store.CategoryStore
	brackets   *store.BracketStore
	ratings    *store.RatingStore
	logger     *slog.Logger
}

func NewRatingService(db *sqlx.DB, categories *store.CategoryStore, brackets *store.BracketStore, ratings *store.RatingStore, logger *slog.Logger) *RatingService {
	return &RatingService{db: db, categories: categories, brackets: brackets, ratings: ratings, logger: logger}
}

type ResultsSummary struct {
	BracketsProcessed int `json:"brackets_processed"`
	AthletesUpdated   int `json:"athletes_updated"`
	ClubsUpdated      int `json:"clubs_updated"`
	GoldAwarded       int `json:"gold_awarded"`
	BronzeAwarded     int `json:"bronze_awarded"`
}

// ProcessCompetitionResults credits medals from every finished or running
// bracket of the competition, then recomputes the ratings of the athletes
// involved and of their clubs. Running it twice credits medals twice.
func (s *RatingService) ProcessCompetitionResults(ctx context.Context, competitionID uuid.UUID) (*ResultsSummary, error) {
	start := time.Now()
	defer func() {
		metrics.ResultsProcessingDuration.Observe(time.Since(start).Seconds())
	}()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	competition, err := s.categories.GetCompetitionTx(ctx, tx, competitionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompetitionNotFound
		}
		return nil, fmt.Errorf("failed to get competition: %w", err)
	}

	blob, err := s.ratings.GetRatingPointsTx(ctx, tx, competition.FederationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get rating points: %w", err)
	}
	table, err := rating.ParsePointTable(blob)
	if err != nil {
		s.logger.Warn("using default rating points", "federation_id", competition.FederationID, "error", err)
	}
	// Ratings are computed on the national tier whatever the competition level.
	tier := table.Tier(rating.LevelNational)
	s.logger.Debug("rating tier selected", "competition_level", competition.Level, "tier", rating.LevelNational)

	brackets, err := s.brackets.ListBracketsByCompetitionTx(ctx, tx, competitionID, bracket.StatusCompleted, bracket.StatusInProgress)
	if err != nil {
		return nil, fmt.Errorf("failed to list brackets: %w", err)
	}

	summary := &ResultsSummary{BracketsProcessed: len(brackets)}
	awards := make(map[uuid.UUID]rating.Medals)
	var athleteOrder []uuid.UUID
	credit := func(athleteID uuid.UUID, add rating.Medals) {
		m, seen := awards[athleteID]
		if !seen {
			athleteOrder = append(athleteOrder, athleteID)
		}
		m.Gold += add.Gold
		m.Bronze += add.Bronze
		awards[athleteID] = m
	}

	for _, b := range brackets {
		participants, err := s.brackets.GetParticipantsTx(ctx, tx, b.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get participants of bracket %s: %w", b.ID, err)
		}
		athleteOf := make(map[uuid.UUID]uuid.UUID, len(participants))
		for _, p := range participants {
			athleteOf[p.ID] = p.AthleteID
		}

		matches, err := s.brackets.GetMatchesTx(ctx, tx, b.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get matches of bracket %s: %w", b.ID, err)
		}

		outcome := rating.DeriveMedals(b.Size, matches)
		if outcome.Gold != nil {
			credit(athleteOf[*outcome.Gold], rating.Medals{Gold: 1})
			summary.GoldAwarded++
		}
		for _, participantID := range outcome.Bronze {
			credit(athleteOf[participantID], rating.Medals{Bronze: 1})
			summary.BronzeAwarded++
		}
	}

	clubs := make(map[uuid.UUID]bool)
	var clubOrder []uuid.UUID
	for _, athleteID := range athleteOrder {
		if err := s.ratings.IncrementMedalsTx(ctx, tx, athleteID, awards[athleteID]); err != nil {
			return nil, fmt.Errorf("failed to credit medals to athlete %s: %w", athleteID, err)
		}

		athlete, err := s.ratings.GetAthleteTx(ctx, tx, athleteID)
		if err != nil {
			return nil, fmt.Errorf("failed to get athlete %s: %w", athleteID, err)
		}
		if err := s.ratings.UpdateAthleteRatingTx(ctx, tx, athleteID, rating.Score(athlete.Medals(), tier)); err != nil {
			return nil, fmt.Errorf("failed to update rating of athlete %s: %w", athleteID, err)
		}
		summary.AthletesUpdated++

		if athlete.ClubID != nil && !clubs[*athlete.ClubID] {
			clubs[*athlete.ClubID] = true
			clubOrder = append(clubOrder, *athlete.ClubID)
		}
	}

	for _, clubID := range clubOrder {
		if _, err := s.recomputeClub(ctx, tx, clubID); err != nil {
			return nil, err
		}
		summary.ClubsUpdated++
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	metrics.MedalsAwarded.WithLabelValues("gold").Add(float64(summary.GoldAwarded))
	metrics.MedalsAwarded.WithLabelValues("bronze").Add(float64(summary.BronzeAwarded))
	s.logger.Info("competition results processed",
		"competition_id", competitionID,
		"brackets", summary.BracketsProcessed,
		"athletes", summary.AthletesUpdated,
		"clubs", summary.ClubsUpdated,
	)
	return summary, nil
}

// RecomputeClubRating overwrites a club's rating with the sum of its athletes'.
func (s *RatingService) RecomputeClubRating(ctx context.Context, clubID uuid.UUID) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	total, err := s.recomputeClub(ctx, tx, clubID)
	if err != nil {
		return 0, err
	}
	return total, tx.Commit()
}

func (s *RatingService) recomputeClub(ctx context.Context, tx *sqlx.Tx, clubID uuid.UUID) (int, error) {
	total, err := s.ratings.SumClubRatingTx(ctx, tx, clubID)
	if err != nil {
		return 0, fmt.Errorf("failed to sum ratings of club %s: %w", clubID, err)
	}
	if err := s.ratings.UpdateClubRatingTx(ctx, tx, clubID, total); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrClubNotFound
		}
		return 0, fmt.Errorf("failed to update rating of club %s: %w", clubID, err)
	}
	return total, nil
}

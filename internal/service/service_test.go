package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/AdamBeresnev/federation-core/internal/bracket"
	"github.com/AdamBeresnev/federation-core/internal/config"
	"github.com/AdamBeresnev/federation-core/internal/db"
	"github.com/AdamBeresnev/federation-core/internal/rating"
	"github.com/AdamBeresnev/federation-core/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.InitDB(&config.Config{DBDriver: "sqlite3", DatabaseURL: "file::memory:"})
	require.NoError(t, err, "Failed to connect to in-memory DB")
	require.NoError(t, db.RunMigrations(database), "Failed to apply migrations")

	t.Cleanup(func() { database.Close() })
	return database
}

type testEnv struct {
	db         *sqlx.DB
	categories *store.CategoryStore
	brackets   *store.BracketStore
	ratings    *store.RatingStore

	bracketService *BracketService
	matchService   *MatchService
	ratingService  *RatingService

	competition bracket.Competition
	category    bracket.Category
	club        rating.Club
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithLevel(t, "national")
}

func newTestEnvWithLevel(t *testing.T, level string) *testEnv {
	t.Helper()

	database := setupTestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	e := &testEnv{
		db:         database,
		categories: store.NewCategoryStore(database),
		brackets:   store.NewBracketStore(database),
		ratings:    store.NewRatingStore(database),
	}
	e.bracketService = NewBracketService(database, e.categories, e.brackets, logger)
	e.matchService = NewMatchService(database, e.brackets, logger)
	e.ratingService = NewRatingService(database, e.categories, e.brackets, e.ratings, logger)

	now := time.Now().UTC()
	e.competition = bracket.Competition{ID: uuid.New(), FederationID: uuid.New(), Name: "Championship", Level: level, CreatedAt: now}
	e.category = bracket.Category{ID: uuid.New(), CompetitionID: e.competition.ID, Gender: bracket.GenderMixed, Name: "Open", CreatedAt: now}
	e.club = rating.Club{ID: uuid.New(), Name: "Home Club"}

	e.withTx(t, func(tx *sqlx.Tx) error {
		ctx := context.Background()
		require.NoError(t, e.categories.CreateCompetition(ctx, tx, &e.competition))
		require.NoError(t, e.categories.CreateCategory(ctx, tx, &e.category))
		return e.ratings.CreateClub(ctx, tx, &e.club)
	})
	return e
}

func (e *testEnv) withTx(t *testing.T, fn func(tx *sqlx.Tx) error) {
	t.Helper()

	tx, err := e.db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	defer tx.Rollback()

	require.NoError(t, fn(tx))
	require.NoError(t, tx.Commit())
}

// addAthletes creates n athletes in the env's club.
func (e *testEnv) addAthletes(t *testing.T, n int) []uuid.UUID {
	t.Helper()

	athletes := make([]rating.Athlete, 0, n)
	ids := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		a := rating.Athlete{ID: uuid.New(), ClubID: &e.club.ID, FullName: "Athlete"}
		athletes = append(athletes, a)
		ids = append(ids, a.ID)
	}
	e.withTx(t, func(tx *sqlx.Tx) error {
		return e.ratings.CreateAthletes(context.Background(), tx, athletes)
	})
	return ids
}

func toInputs(athleteIDs []uuid.UUID) []ParticipantInput {
	inputs := make([]ParticipantInput, 0, len(athleteIDs))
	for _, id := range athleteIDs {
		inputs = append(inputs, ParticipantInput{AthleteID: id})
	}
	return inputs
}

// build creates a bracket for n new athletes and returns it with the participant
// id of every seed.
func (e *testEnv) build(t *testing.T, n int) (*bracket.Bracket, map[int]uuid.UUID) {
	t.Helper()

	b, err := e.bracketService.BuildBracket(context.Background(), e.category.ID, toInputs(e.addAthletes(t, n)))
	require.NoError(t, err)
	return b, e.seeds(t, b.ID)
}

func (e *testEnv) seeds(t *testing.T, bracketID uuid.UUID) map[int]uuid.UUID {
	t.Helper()

	participants, err := e.brackets.GetParticipants(context.Background(), bracketID)
	require.NoError(t, err)

	bySeed := make(map[int]uuid.UUID, len(participants))
	for _, p := range participants {
		bySeed[p.Seed] = p.ID
	}
	return bySeed
}

func (e *testEnv) match(t *testing.T, bracketID uuid.UUID, round, number int) bracket.Match {
	t.Helper()

	matches, err := e.brackets.GetMatches(context.Background(), bracketID)
	require.NoError(t, err)
	for _, m := range matches {
		if m.RoundNumber == round && m.MatchNumber == number {
			return m
		}
	}
	t.Fatalf("match %d-%d not found", round, number)
	return bracket.Match{}
}

func (e *testEnv) bracketStatus(t *testing.T) bracket.Status {
	t.Helper()

	b, err := e.brackets.GetBracketByCategory(context.Background(), e.category.ID)
	require.NoError(t, err)
	return b.Status
}

// complete finishes a match with the given winner and default scores.
func (e *testEnv) complete(t *testing.T, bracketID uuid.UUID, round, number int, winner uuid.UUID) *MatchCompletionResult {
	t.Helper()

	m := e.match(t, bracketID, round, number)
	result, err := e.matchService.CompleteMatch(context.Background(), m.ID, winner, FinalScores{Participant1: 3, Participant2: 1})
	require.NoError(t, err)
	return result
}

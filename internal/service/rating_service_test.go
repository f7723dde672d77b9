package service

import (
	"context"
	"testing"

	"github.com/AdamBeresnev/federation-core/internal/bracket"
	"github.com/AdamBeresnev/federation-core/internal/rating"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// playFourBracket runs a 4 participant bracket to completion: seed 1 beats 2,
// seed 4 beats 3, seed 4 wins the final.
func playFourBracket(t *testing.T, env *testEnv) map[int]uuid.UUID {
	t.Helper()

	ctx := context.Background()
	athletes := env.addAthletes(t, 4)
	b, err := env.bracketService.BuildBracket(ctx, env.category.ID, toInputs(athletes))
	require.NoError(t, err)

	seeds := env.seeds(t, b.ID)
	env.complete(t, b.ID, 1, 1, seeds[1])
	env.complete(t, b.ID, 1, 2, seeds[4])
	env.complete(t, b.ID, 2, 1, seeds[4])

	bySeed := make(map[int]uuid.UUID, 4)
	for i, id := range athletes {
		bySeed[i+1] = id
	}
	return bySeed
}

func (e *testEnv) athlete(t *testing.T, id uuid.UUID) *rating.Athlete {
	t.Helper()

	a, err := e.ratings.GetAthlete(context.Background(), id)
	require.NoError(t, err)
	return a
}

func TestProcessCompetitionResults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	athletes := playFourBracket(t, env)

	summary, err := env.ratingService.ProcessCompetitionResults(ctx, env.competition.ID)
	require.NoError(t, err)
	assert.Equal(t, &ResultsSummary{
		BracketsProcessed: 1,
		AthletesUpdated:   3,
		ClubsUpdated:      1,
		GoldAwarded:       1,
		BronzeAwarded:     2,
	}, summary)

	champion := env.athlete(t, athletes[4])
	assert.Equal(t, rating.Medals{Gold: 1}, champion.Medals())
	assert.Equal(t, 50, champion.Rating)

	for _, seed := range []int{2, 3} {
		a := env.athlete(t, athletes[seed])
		assert.Equal(t, rating.Medals{Bronze: 1}, a.Medals(), "seed %d", seed)
		assert.Equal(t, 25, a.Rating, "seed %d", seed)
	}

	// The losing finalist is not credited
	finalist := env.athlete(t, athletes[1])
	assert.True(t, finalist.Medals().IsZero())
	assert.Zero(t, finalist.Rating)

	club, err := env.ratings.GetClub(ctx, env.club.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, club.Rating)
}

func TestProcessCompetitionResults_AlwaysNationalTier(t *testing.T) {
	env := newTestEnvWithLevel(t, "international")
	athletes := playFourBracket(t, env)

	_, err := env.ratingService.ProcessCompetitionResults(context.Background(), env.competition.ID)
	require.NoError(t, err)

	assert.Equal(t, 50, env.athlete(t, athletes[4]).Rating)
}

func TestProcessCompetitionResults_FederationPoints(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	athletes := playFourBracket(t, env)

	env.withTx(t, func(tx *sqlx.Tx) error {
		return env.ratings.SaveRatingPoints(ctx, tx, env.competition.FederationID, []byte(`{"national":{"gold":60},"club":{"gold":1}}`))
	})

	_, err := env.ratingService.ProcessCompetitionResults(ctx, env.competition.ID)
	require.NoError(t, err)

	assert.Equal(t, 60, env.athlete(t, athletes[4]).Rating)
	assert.Equal(t, 25, env.athlete(t, athletes[2]).Rating)
}

func TestProcessCompetitionResults_InvalidSettingsUseDefaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	athletes := playFourBracket(t, env)

	env.withTx(t, func(tx *sqlx.Tx) error {
		return env.ratings.SaveRatingPoints(ctx, tx, env.competition.FederationID, []byte(`{not json`))
	})

	_, err := env.ratingService.ProcessCompetitionResults(ctx, env.competition.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, env.athlete(t, athletes[4]).Rating)
}

func TestProcessCompetitionResults_NotIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	athletes := playFourBracket(t, env)

	for i := 0; i < 2; i++ {
		_, err := env.ratingService.ProcessCompetitionResults(ctx, env.competition.ID)
		require.NoError(t, err)
	}

	champion := env.athlete(t, athletes[4])
	assert.Equal(t, 2, champion.Gold)
	assert.Equal(t, 100, champion.Rating)
}

func TestProcessCompetitionResults_BracketStates(t *testing.T) {
	t.Run("generated bracket is skipped", func(t *testing.T) {
		env := newTestEnv(t)
		env.build(t, 4)

		summary, err := env.ratingService.ProcessCompetitionResults(context.Background(), env.competition.ID)
		require.NoError(t, err)
		assert.Zero(t, summary.BracketsProcessed)
		assert.Zero(t, summary.AthletesUpdated)
	})

	t.Run("in progress bracket credits decided semifinals", func(t *testing.T) {
		env := newTestEnv(t)
		athletes := env.addAthletes(t, 4)
		b, err := env.bracketService.BuildBracket(context.Background(), env.category.ID, toInputs(athletes))
		require.NoError(t, err)
		seeds := env.seeds(t, b.ID)
		env.complete(t, b.ID, 1, 1, seeds[2])

		summary, err := env.ratingService.ProcessCompetitionResults(context.Background(), env.competition.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, summary.BracketsProcessed)
		assert.Zero(t, summary.GoldAwarded)
		assert.Equal(t, 1, summary.BronzeAwarded)
		assert.Equal(t, 1, env.athlete(t, athletes[0]).Bronze)
	})

	t.Run("single participant bracket gives gold", func(t *testing.T) {
		env := newTestEnv(t)
		athletes := env.addAthletes(t, 1)
		b, err := env.bracketService.BuildBracket(context.Background(), env.category.ID, toInputs(athletes))
		require.NoError(t, err)
		require.Equal(t, bracket.StatusCompleted, b.Status)

		summary, err := env.ratingService.ProcessCompetitionResults(context.Background(), env.competition.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, summary.GoldAwarded)
		assert.Equal(t, 1, env.athlete(t, athletes[0]).Gold)
	})
}

func TestProcessCompetitionResults_UnknownCompetition(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.ratingService.ProcessCompetitionResults(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrCompetitionNotFound)
}

func TestRecomputeClubRating(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	athletes := env.addAthletes(t, 2)

	env.withTx(t, func(tx *sqlx.Tx) error {
		require.NoError(t, env.ratings.UpdateAthleteRatingTx(ctx, tx, athletes[0], 30))
		return env.ratings.UpdateAthleteRatingTx(ctx, tx, athletes[1], 12)
	})

	total, err := env.ratingService.RecomputeClubRating(ctx, env.club.ID)
	require.NoError(t, err)
	assert.Equal(t, 42, total)

	club, err := env.ratings.GetClub(ctx, env.club.ID)
	require.NoError(t, err)
	assert.Equal(t, 42, club.Rating)

	_, err = env.ratingService.RecomputeClubRating(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrClubNotFound)
}

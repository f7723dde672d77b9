package service

import (
	"context"
	"testing"
	"time"

	"github.com/AdamBeresnev/federation-core/internal/bracket"
	"github.com/AdamBeresnev/federation-core/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteMatch_FourParticipants(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	b, seeds := env.build(t, 4)

	semi1 := env.match(t, b.ID, 1, 1)
	result, err := env.matchService.CompleteMatch(ctx, semi1.ID, seeds[1], FinalScores{Participant1: 4, Participant2: 2})
	require.NoError(t, err)

	assert.Equal(t, bracket.MatchCompleted, result.Match.Status)
	assert.Equal(t, seeds[1], *result.Match.WinnerID)
	assert.False(t, result.BracketCompleted)
	require.NotNil(t, result.NextMatch)
	assert.Equal(t, 2, result.NextMatch.RoundNumber)
	assert.Equal(t, seeds[1], *result.NextMatch.Participant1ID)
	assert.Equal(t, bracket.StatusInProgress, env.bracketStatus(t))

	stored := env.match(t, b.ID, 1, 1)
	assert.Equal(t, 4, stored.Score1)
	assert.Equal(t, 2, stored.Score2)
	require.NotNil(t, stored.EndedAt)

	final := env.match(t, b.ID, 2, 1)
	assert.Equal(t, bracket.SlotFilled, final.Slot1State)
	assert.Equal(t, bracket.SlotAwaiting, final.Slot2State)

	result = env.complete(t, b.ID, 1, 2, seeds[4])
	assert.Equal(t, seeds[4], *result.NextMatch.Participant2ID)

	final = env.match(t, b.ID, 2, 1)
	assert.True(t, final.Ready())

	result = env.complete(t, b.ID, 2, 1, seeds[4])
	assert.True(t, result.BracketCompleted)
	assert.Nil(t, result.NextMatch)
	assert.Equal(t, bracket.StatusCompleted, env.bracketStatus(t))
}

func TestCompleteMatch_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	b, seeds := env.build(t, 3)

	semi := env.match(t, b.ID, 1, 1)
	bye := env.match(t, b.ID, 1, 2)
	final := env.match(t, b.ID, 2, 1)

	testCases := []struct {
		name     string
		matchID  uuid.UUID
		winnerID uuid.UUID
		expected error
	}{
		{name: "unknown match", matchID: uuid.New(), winnerID: seeds[1], expected: ErrMatchNotFound},
		{name: "final still awaiting a semifinal", matchID: final.ID, winnerID: seeds[3], expected: ErrMatchNotReady},
		{name: "winner from another match", matchID: semi.ID, winnerID: seeds[3], expected: ErrInvalidWinner},
		{name: "random winner", matchID: semi.ID, winnerID: uuid.New(), expected: ErrInvalidWinner},
		{name: "bye match", matchID: bye.ID, winnerID: seeds[3], expected: ErrMatchAlreadyCompleted},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.matchService.CompleteMatch(ctx, tc.matchID, tc.winnerID, FinalScores{})
			assert.ErrorIs(t, err, tc.expected)
		})
	}

	// Rejected attempts leave the bracket untouched
	assert.Equal(t, bracket.StatusGenerated, env.bracketStatus(t))
}

func TestCompleteMatch_Twice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	b, seeds := env.build(t, 2)

	final := env.match(t, b.ID, 1, 1)
	_, err := env.matchService.CompleteMatch(ctx, final.ID, seeds[1], FinalScores{})
	require.NoError(t, err)

	_, err = env.matchService.CompleteMatch(ctx, final.ID, seeds[2], FinalScores{})
	assert.ErrorIs(t, err, ErrMatchAlreadyCompleted)

	stored := env.match(t, b.ID, 1, 1)
	assert.Equal(t, seeds[1], *stored.WinnerID)
}

func TestCompleteMatch_WinnerOppositeByeAdvances(t *testing.T) {
	env := newTestEnv(t)
	b, seeds := env.build(t, 6)

	// Round 1: 1v2, 3v4, 5v6, bye v bye. The semifinal fed by match 3 already
	// holds a bye in slot 2.
	result := env.complete(t, b.ID, 1, 3, seeds[6])

	require.NotNil(t, result.NextMatch)
	assert.Equal(t, bracket.MatchBye, result.NextMatch.Status)
	assert.Equal(t, seeds[6], *result.NextMatch.WinnerID)

	final := env.match(t, b.ID, 3, 1)
	assert.Equal(t, bracket.SlotFilled, final.Slot2State)
	assert.Equal(t, seeds[6], *final.Participant2ID)
	assert.Equal(t, bracket.SlotAwaiting, final.Slot1State)
	assert.False(t, result.BracketCompleted)
}

func TestCompleteMatch_FiveParticipantsToFinal(t *testing.T) {
	env := newTestEnv(t)
	b, seeds := env.build(t, 5)

	env.complete(t, b.ID, 1, 1, seeds[2])
	env.complete(t, b.ID, 1, 2, seeds[3])
	result := env.complete(t, b.ID, 2, 1, seeds[3])

	assert.Equal(t, seeds[3], *result.NextMatch.Participant1ID)
	assert.Equal(t, seeds[5], *result.NextMatch.Participant2ID)

	result = env.complete(t, b.ID, 3, 1, seeds[5])
	assert.True(t, result.BracketCompleted)
	assert.Equal(t, bracket.StatusCompleted, env.bracketStatus(t))
}

func TestStartMatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	b, _ := env.build(t, 3)

	semi := env.match(t, b.ID, 1, 1)
	started, err := env.matchService.StartMatch(ctx, semi.ID, utils.Ptr(2))
	require.NoError(t, err)
	assert.Equal(t, bracket.MatchOngoing, started.Status)
	assert.Equal(t, 2, *started.Tatami)
	require.NotNil(t, started.StartedAt)
	assert.Equal(t, bracket.StatusInProgress, env.bracketStatus(t))

	_, err = env.matchService.StartMatch(ctx, semi.ID, nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = env.matchService.StartMatch(ctx, env.match(t, b.ID, 2, 1).ID, nil)
	assert.ErrorIs(t, err, ErrMatchNotReady)

	_, err = env.matchService.StartMatch(ctx, env.match(t, b.ID, 1, 2).ID, nil)
	assert.ErrorIs(t, err, ErrMatchAlreadyCompleted)

	_, err = env.matchService.StartMatch(ctx, uuid.New(), nil)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestScheduleMatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	b, seeds := env.build(t, 2)

	final := env.match(t, b.ID, 1, 1)
	at := time.Date(2026, 6, 1, 14, 30, 0, 0, time.UTC)

	scheduled, err := env.matchService.ScheduleMatch(ctx, final.ID, at, utils.Ptr(4))
	require.NoError(t, err)
	require.NotNil(t, scheduled.ScheduledAt)
	assert.True(t, at.Equal(*scheduled.ScheduledAt))
	assert.Equal(t, 4, *scheduled.Tatami)

	// Moving the time keeps the tatami
	scheduled, err = env.matchService.ScheduleMatch(ctx, final.ID, at.Add(time.Hour), nil)
	require.NoError(t, err)
	assert.Equal(t, 4, *scheduled.Tatami)

	started, err := env.matchService.StartMatch(ctx, final.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, *started.Tatami)

	env.complete(t, b.ID, 1, 1, seeds[1])
	_, err = env.matchService.ScheduleMatch(ctx, final.ID, at, nil)
	assert.ErrorIs(t, err, ErrMatchAlreadyCompleted)
}

func TestRecordScoreAndMatchScore(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	b, seeds := env.build(t, 3)

	semi := env.match(t, b.ID, 1, 1)
	_, err := env.matchService.StartMatch(ctx, semi.ID, nil)
	require.NoError(t, err)

	events := []struct {
		participant uuid.UUID
		kind        bracket.ScoreKind
		points      int
	}{
		{seeds[1], bracket.ScorePoint, 2},
		{seeds[2], bracket.ScoreAdvantage, 1},
		{seeds[1], bracket.ScorePoint, 3},
		{seeds[2], bracket.ScorePenalty, 1},
	}
	for _, e := range events {
		_, err := env.matchService.RecordScore(ctx, semi.ID, e.participant, e.kind, e.points)
		require.NoError(t, err)
	}

	score, err := env.matchService.MatchScore(ctx, semi.ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.SideScore{Points: 5}, score.Side1)
	assert.Equal(t, bracket.SideScore{Advantages: 1, Penalties: 1}, score.Side2)

	view, err := env.matchService.MatchView(ctx, semi.ID)
	require.NoError(t, err)
	assert.Equal(t, "Semifinal", view.RoundName)
	assert.Equal(t, *score, view.Running)

	// The running score never decides the winner
	result := env.complete(t, b.ID, 1, 1, seeds[2])
	assert.Equal(t, seeds[2], *result.Match.WinnerID)
}

func TestRecordScore_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	b, seeds := env.build(t, 3)

	semi := env.match(t, b.ID, 1, 1)
	bye := env.match(t, b.ID, 1, 2)

	_, err := env.matchService.RecordScore(ctx, semi.ID, seeds[1], bracket.ScoreKind("ippon"), 1)
	assert.ErrorIs(t, err, ErrInvalidScore)

	_, err = env.matchService.RecordScore(ctx, semi.ID, seeds[1], bracket.ScorePoint, 0)
	assert.ErrorIs(t, err, ErrInvalidScore)

	_, err = env.matchService.RecordScore(ctx, semi.ID, seeds[3], bracket.ScorePoint, 2)
	assert.ErrorIs(t, err, ErrInvalidScore)

	_, err = env.matchService.RecordScore(ctx, bye.ID, seeds[3], bracket.ScorePoint, 2)
	assert.ErrorIs(t, err, ErrMatchAlreadyCompleted)

	_, err = env.matchService.RecordScore(ctx, uuid.New(), seeds[1], bracket.ScorePoint, 2)
	assert.ErrorIs(t, err, ErrMatchNotFound)

	_, err = env.matchService.MatchScore(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

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
	"github.com/AdamBeresnev/federation-core/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type MatchService struct {
	db     *sqlx.DB
	store  *store.BracketStore
	logger *slog.Logger
}

func NewMatchService(db *sqlx.DB, store *store.BracketStore, logger *slog.Logger) *MatchService {
	return &MatchService{db: db, store: store, logger: logger}
}

// FinalScores are the official scores of each slot, recorded as given.
type FinalScores struct {
	Participant1 int `json:"participant_1"`
	Participant2 int `json:"participant_2"`
}

type MatchCompletionResult struct {
	Match            *bracket.Match
	NextMatch        *bracket.Match
	BracketCompleted bool
	BracketSize      int
}

// CompleteMatch records the winner of a ready match and moves them into the
// next round. Byes opened up by the result are resolved in the same transaction.
func (s *MatchService) CompleteMatch(ctx context.Context, matchID, winnerID uuid.UUID, scores FinalScores) (*MatchCompletionResult, error) {
	result, err := s.completeMatch(ctx, matchID, winnerID, scores)

	switch {
	case err == nil:
		metrics.MatchCompletions.WithLabelValues("completed").Inc()
	case errors.Is(err, ErrMatchAlreadyCompleted):
		metrics.MatchCompletions.WithLabelValues("conflict").Inc()
	case errors.Is(err, ErrMatchNotFound), errors.Is(err, ErrMatchNotReady), errors.Is(err, ErrInvalidWinner):
		metrics.MatchCompletions.WithLabelValues("rejected").Inc()
	default:
		metrics.MatchCompletions.WithLabelValues("error").Inc()
	}
	return result, err
}

func (s *MatchService) completeMatch(ctx context.Context, matchID, winnerID uuid.UUID, scores FinalScores) (*MatchCompletionResult, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	match, err := s.getMatchTx(ctx, tx, matchID)
	if err != nil {
		return nil, err
	}

	if match.Resolved() {
		return nil, ErrMatchAlreadyCompleted
	}
	if !match.Ready() {
		return nil, ErrMatchNotReady
	}
	if match.SlotOf(winnerID) == 0 {
		return nil, ErrInvalidWinner
	}

	now := time.Now().UTC()
	match.WinnerID = &winnerID
	match.Status = bracket.MatchCompleted
	match.EndedAt = &now
	match.Score1 = scores.Participant1
	match.Score2 = scores.Participant2

	if err := s.store.CompleteMatchTx(ctx, tx, match); err != nil {
		if errors.Is(err, store.ErrStaleWrite) {
			return nil, ErrMatchAlreadyCompleted
		}
		return nil, fmt.Errorf("failed to update match: %w", err)
	}

	b, err := s.store.GetBracketTx(ctx, tx, match.BracketID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bracket: %w", err)
	}
	matches, err := s.store.GetMatchesTx(ctx, tx, match.BracketID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bracket matches: %w", err)
	}

	grid := newMatchGrid(b.Size, matches)
	current := grid.at(match.RoundNumber, match.MatchNumber)
	if current == nil {
		return nil, fmt.Errorf("match %s is missing from its bracket", match.ID)
	}
	*current = *match

	result := &MatchCompletionResult{Match: match, BracketSize: b.Size}
	if grid.isFinal(current) {
		result.BracketCompleted = true
	} else {
		next := grid.advance(current, bracket.Filled(winnerID))
		if next == nil {
			return nil, fmt.Errorf("next match of %s is missing", match.ID)
		}
		byes, finalResolved := grid.resolveByes([]*bracket.Match{next})
		metrics.ByesResolved.Add(float64(byes))
		result.BracketCompleted = finalResolved
		result.NextMatch = next
	}

	for _, m := range grid.Changed() {
		if err := s.store.UpdateMatch(ctx, tx, m); err != nil {
			return nil, fmt.Errorf("failed to update match %d-%d: %w", m.RoundNumber, m.MatchNumber, err)
		}
	}

	if result.BracketCompleted {
		_, err = s.store.UpdateBracketStatusTx(ctx, tx, b.ID, bracket.StatusCompleted, bracket.StatusGenerated, bracket.StatusInProgress)
	} else {
		_, err = s.store.UpdateBracketStatusTx(ctx, tx, b.ID, bracket.StatusInProgress, bracket.StatusGenerated)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update bracket status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("match completed",
		"match_id", match.ID,
		"bracket_id", b.ID,
		"round", match.RoundNumber,
		"winner_id", winnerID,
		"bracket_completed", result.BracketCompleted,
	)
	return result, nil
}

// StartMatch puts a ready match on a tatami. A nil tatami keeps the one set
// when scheduling.
func (s *MatchService) StartMatch(ctx context.Context, matchID uuid.UUID, tatami *int) (*bracket.Match, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	match, err := s.getMatchTx(ctx, tx, matchID)
	if err != nil {
		return nil, err
	}

	switch {
	case match.Resolved():
		return nil, ErrMatchAlreadyCompleted
	case match.Status != bracket.MatchScheduled:
		return nil, ErrInvalidTransition
	case !match.Ready():
		return nil, ErrMatchNotReady
	}

	now := time.Now().UTC()
	match.Status = bracket.MatchOngoing
	match.StartedAt = &now
	if tatami != nil {
		match.Tatami = tatami
	}

	if err := s.store.StartMatchTx(ctx, tx, match); err != nil {
		if errors.Is(err, store.ErrStaleWrite) {
			return nil, ErrInvalidTransition
		}
		return nil, fmt.Errorf("failed to start match: %w", err)
	}

	if _, err := s.store.UpdateBracketStatusTx(ctx, tx, match.BracketID, bracket.StatusInProgress, bracket.StatusGenerated); err != nil {
		return nil, fmt.Errorf("failed to update bracket status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("match started", "match_id", match.ID, "tatami", utils.OrZero(match.Tatami))
	return match, nil
}

// ScheduleMatch sets when and where an open match is fought.
func (s *MatchService) ScheduleMatch(ctx context.Context, matchID uuid.UUID, at time.Time, tatami *int) (*bracket.Match, error) {
	match, err := s.getMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Resolved() {
		return nil, ErrMatchAlreadyCompleted
	}

	if tatami == nil {
		tatami = match.Tatami
	}
	if err := s.store.ScheduleMatch(ctx, matchID, at.UTC(), tatami); err != nil {
		if errors.Is(err, store.ErrStaleWrite) {
			return nil, ErrMatchAlreadyCompleted
		}
		return nil, fmt.Errorf("failed to schedule match: %w", err)
	}

	return s.getMatch(ctx, matchID)
}

// RecordScore appends an event to the match's score log.
func (s *MatchService) RecordScore(ctx context.Context, matchID, participantID uuid.UUID, kind bracket.ScoreKind, points int) (*bracket.ScoreEvent, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidScore, kind)
	}
	if points <= 0 {
		return nil, fmt.Errorf("%w: points must be positive", ErrInvalidScore)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	match, err := s.getMatchTx(ctx, tx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Resolved() {
		return nil, ErrMatchAlreadyCompleted
	}
	if match.SlotOf(participantID) == 0 {
		return nil, fmt.Errorf("%w: participant is not in this match", ErrInvalidScore)
	}

	event := &bracket.ScoreEvent{
		ID:            uuid.New(),
		MatchID:       matchID,
		ParticipantID: participantID,
		Kind:          kind,
		Points:        points,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.store.CreateScoreEvent(ctx, tx, event); err != nil {
		return nil, fmt.Errorf("failed to record score: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Debug("score recorded", "match_id", matchID, "participant_id", participantID, "kind", kind, "points", points)
	return event, nil
}

// MatchScore folds the match's score log into a running score. It never
// decides the winner.
func (s *MatchService) MatchScore(ctx context.Context, matchID uuid.UUID) (*bracket.RunningScore, error) {
	match, err := s.getMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	events, err := s.store.GetScoreEvents(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get score events: %w", err)
	}

	score := bracket.Tally(match, events)
	return &score, nil
}

// MatchView loads a match with its round label and running score.
func (s *MatchService) MatchView(ctx context.Context, matchID uuid.UUID) (*MatchView, error) {
	match, err := s.getMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	b, err := s.store.GetBracket(ctx, match.BracketID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bracket: %w", err)
	}

	events, err := s.store.GetScoreEvents(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get score events: %w", err)
	}

	view := NewMatchView(match, b.Size, events)
	return &view, nil
}

func (s *MatchService) getMatch(ctx context.Context, matchID uuid.UUID) (*bracket.Match, error) {
	match, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return match, nil
}

func (s *MatchService) getMatchTx(ctx context.Context, tx *sqlx.Tx, matchID uuid.UUID) (*bracket.Match, error) {
	match, err := s.store.GetMatchTx(ctx, tx, matchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return match, nil
}

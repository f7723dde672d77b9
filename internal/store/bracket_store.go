package store

import (
	"context"
	"time"

	"github.com/AdamBeresnev/federation-core/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type BracketStore struct {
	db *sqlx.DB
}

func NewBracketStore(db *sqlx.DB) *BracketStore {
	return &BracketStore{db: db}
}

const (
	insertMatchQuery = `INSERT INTO matches (id, bracket_id, round_number, match_number,
			participant_1_id, slot_1_state, participant_2_id, slot_2_state,
			winner_id, status, tatami, scheduled_at, started_at, ended_at, score_1, score_2, created_at)
		VALUES (:id, :bracket_id, :round_number, :match_number,
			:participant_1_id, :slot_1_state, :participant_2_id, :slot_2_state,
			:winner_id, :status, :tatami, :scheduled_at, :started_at, :ended_at, :score_1, :score_2, :created_at)`

	updateMatchQuery = `UPDATE matches SET
			participant_1_id = :participant_1_id, slot_1_state = :slot_1_state,
			participant_2_id = :participant_2_id, slot_2_state = :slot_2_state,
			winner_id = :winner_id, status = :status, tatami = :tatami,
			scheduled_at = :scheduled_at, started_at = :started_at, ended_at = :ended_at,
			score_1 = :score_1, score_2 = :score_2
		WHERE id = :id`

	// Only an open match may be completed; this is the guard against two
	// concurrent completions of the same match
	completeMatchQuery = `UPDATE matches SET
			winner_id = :winner_id, status = :status, ended_at = :ended_at,
			score_1 = :score_1, score_2 = :score_2
		WHERE id = :id AND status IN ('scheduled', 'ongoing')`

	startMatchQuery = `UPDATE matches SET
			status = :status, started_at = :started_at, tatami = :tatami
		WHERE id = :id AND status = 'scheduled'`
)

func (s *BracketStore) CreateBracket(ctx context.Context, tx *sqlx.Tx, b *bracket.Bracket) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO brackets (id, category_id, bracket_type, bracket_size, status, generated_at)
		VALUES (:id, :category_id, :bracket_type, :bracket_size, :status, :generated_at)`, b)
	return err
}

func (s *BracketStore) GetBracketByCategory(ctx context.Context, categoryID uuid.UUID) (*bracket.Bracket, error) {
	var b bracket.Bracket
	err := s.db.GetContext(ctx, &b, s.db.Rebind("SELECT * FROM brackets WHERE category_id = ?"), categoryID)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *BracketStore) GetBracketByCategoryTx(ctx context.Context, tx *sqlx.Tx, categoryID uuid.UUID) (*bracket.Bracket, error) {
	var b bracket.Bracket
	err := tx.GetContext(ctx, &b, tx.Rebind("SELECT * FROM brackets WHERE category_id = ?"), categoryID)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *BracketStore) GetBracket(ctx context.Context, id uuid.UUID) (*bracket.Bracket, error) {
	var b bracket.Bracket
	err := s.db.GetContext(ctx, &b, s.db.Rebind("SELECT * FROM brackets WHERE id = ?"), id)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *BracketStore) GetBracketTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.Bracket, error) {
	var b bracket.Bracket
	err := tx.GetContext(ctx, &b, tx.Rebind("SELECT * FROM brackets WHERE id = ?"), id)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBracketsByCompetitionTx returns the brackets of every category in the
// competition whose status is one of statuses.
func (s *BracketStore) ListBracketsByCompetitionTx(ctx context.Context, tx *sqlx.Tx, competitionID uuid.UUID, statuses ...bracket.Status) ([]bracket.Bracket, error) {
	query, args, err := sqlx.In(`SELECT b.* FROM brackets b
		JOIN categories c ON c.id = b.category_id
		WHERE c.competition_id = ? AND b.status IN (?)
		ORDER BY c.created_at ASC, b.id ASC`, competitionID, statuses)
	if err != nil {
		return nil, err
	}

	var brackets []bracket.Bracket
	err = tx.SelectContext(ctx, &brackets, tx.Rebind(query), args...)
	return brackets, err
}

// UpdateBracketStatusTx moves the bracket to status when its current status is
// one of from. It reports whether a row changed.
func (s *BracketStore) UpdateBracketStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status bracket.Status, from ...bracket.Status) (bool, error) {
	query, args, err := sqlx.In("UPDATE brackets SET status = ? WHERE id = ? AND status IN (?)", status, id, from)
	if err != nil {
		return false, err
	}

	result, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

// DeleteBracketTx removes a bracket together with everything built under it.
func (s *BracketStore) DeleteBracketTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	queries := []string{
		"DELETE FROM match_scores WHERE match_id IN (SELECT id FROM matches WHERE bracket_id = ?)",
		"DELETE FROM matches WHERE bracket_id = ?",
		"DELETE FROM participants WHERE bracket_id = ?",
		"DELETE FROM brackets WHERE id = ?",
	}
	for _, q := range queries {
		if _, err := tx.ExecContext(ctx, tx.Rebind(q), id); err != nil {
			return err
		}
	}
	return nil
}

func (s *BracketStore) CreateParticipants(ctx context.Context, tx *sqlx.Tx, participants []bracket.Participant) error {
	if len(participants) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO participants (id, bracket_id, athlete_id, seed, weight)
		VALUES (:id, :bracket_id, :athlete_id, :seed, :weight)`, participants)
	return err
}

func (s *BracketStore) GetParticipants(ctx context.Context, bracketID uuid.UUID) ([]bracket.Participant, error) {
	var participants []bracket.Participant
	err := s.db.SelectContext(ctx, &participants, s.db.Rebind("SELECT * FROM participants WHERE bracket_id = ? ORDER BY seed ASC"), bracketID)
	return participants, err
}

func (s *BracketStore) GetParticipantsTx(ctx context.Context, tx *sqlx.Tx, bracketID uuid.UUID) ([]bracket.Participant, error) {
	var participants []bracket.Participant
	err := tx.SelectContext(ctx, &participants, tx.Rebind("SELECT * FROM participants WHERE bracket_id = ? ORDER BY seed ASC"), bracketID)
	return participants, err
}

func (s *BracketStore) CreateMatches(ctx context.Context, tx *sqlx.Tx, matches []bracket.Match) error {
	if len(matches) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, insertMatchQuery, matches)
	return err
}

func (s *BracketStore) GetMatch(ctx context.Context, id uuid.UUID) (*bracket.Match, error) {
	var match bracket.Match
	err := s.db.GetContext(ctx, &match, s.db.Rebind("SELECT * FROM matches WHERE id = ?"), id)
	if err != nil {
		return nil, err
	}
	return &match, nil
}

func (s *BracketStore) GetMatchTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.Match, error) {
	var match bracket.Match
	err := tx.GetContext(ctx, &match, tx.Rebind("SELECT * FROM matches WHERE id = ?"), id)
	if err != nil {
		return nil, err
	}
	return &match, nil
}

func (s *BracketStore) GetMatches(ctx context.Context, bracketID uuid.UUID) ([]bracket.Match, error) {
	var matches []bracket.Match
	err := s.db.SelectContext(ctx, &matches, s.db.Rebind("SELECT * FROM matches WHERE bracket_id = ? ORDER BY round_number ASC, match_number ASC"), bracketID)
	return matches, err
}

func (s *BracketStore) GetMatchesTx(ctx context.Context, tx *sqlx.Tx, bracketID uuid.UUID) ([]bracket.Match, error) {
	var matches []bracket.Match
	err := tx.SelectContext(ctx, &matches, tx.Rebind("SELECT * FROM matches WHERE bracket_id = ? ORDER BY round_number ASC, match_number ASC"), bracketID)
	return matches, err
}

func (s *BracketStore) UpdateMatch(ctx context.Context, tx *sqlx.Tx, match *bracket.Match) error {
	result, err := tx.NamedExecContext(ctx, updateMatchQuery, match)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrStaleWrite)
}

// CompleteMatchTx writes the result of an open match. ErrStaleWrite means the
// match was already closed.
func (s *BracketStore) CompleteMatchTx(ctx context.Context, tx *sqlx.Tx, match *bracket.Match) error {
	result, err := tx.NamedExecContext(ctx, completeMatchQuery, match)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrStaleWrite)
}

func (s *BracketStore) StartMatchTx(ctx context.Context, tx *sqlx.Tx, match *bracket.Match) error {
	result, err := tx.NamedExecContext(ctx, startMatchQuery, match)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrStaleWrite)
}

func (s *BracketStore) ScheduleMatch(ctx context.Context, id uuid.UUID, at time.Time, tatami *int) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE matches SET scheduled_at = ?, tatami = ?
		WHERE id = ? AND status IN ('scheduled', 'ongoing')`), at, tatami, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrStaleWrite)
}

func (s *BracketStore) CreateScoreEvent(ctx context.Context, tx *sqlx.Tx, event *bracket.ScoreEvent) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO match_scores (id, match_id, participant_id, kind, points, created_at)
		VALUES (:id, :match_id, :participant_id, :kind, :points, :created_at)`, event)
	return err
}

func (s *BracketStore) GetScoreEvents(ctx context.Context, matchID uuid.UUID) ([]bracket.ScoreEvent, error) {
	var events []bracket.ScoreEvent
	err := s.db.SelectContext(ctx, &events, s.db.Rebind("SELECT * FROM match_scores WHERE match_id = ? ORDER BY created_at ASC, id ASC"), matchID)
	return events, err
}

// GetScoreEventsByBracket returns the score logs of every match in the bracket,
// keyed by match.
func (s *BracketStore) GetScoreEventsByBracket(ctx context.Context, bracketID uuid.UUID) (map[uuid.UUID][]bracket.ScoreEvent, error) {
	var events []bracket.ScoreEvent
	err := s.db.SelectContext(ctx, &events, s.db.Rebind(`SELECT ms.* FROM match_scores ms
		JOIN matches m ON m.id = ms.match_id
		WHERE m.bracket_id = ?
		ORDER BY ms.created_at ASC, ms.id ASC`), bracketID)
	if err != nil {
		return nil, err
	}

	byMatch := make(map[uuid.UUID][]bracket.ScoreEvent)
	for _, e := range events {
		byMatch[e.MatchID] = append(byMatch[e.MatchID], e)
	}
	return byMatch, nil
}

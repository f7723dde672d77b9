package bracket

import (
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchScheduled MatchStatus = "scheduled"
	MatchOngoing   MatchStatus = "ongoing"
	MatchCompleted MatchStatus = "completed"
	// Automatic advance resolved while building or propagating; never played.
	MatchBye MatchStatus = "bye"
)

type Match struct {
	ID        uuid.UUID `db:"id"`
	BracketID uuid.UUID `db:"bracket_id"`

	// Position in the tree, propagation targets are derived from these
	RoundNumber int `db:"round_number"`
	MatchNumber int `db:"match_number"`

	Participant1ID *uuid.UUID `db:"participant_1_id"`
	Slot1State     SlotState  `db:"slot_1_state"`
	Participant2ID *uuid.UUID `db:"participant_2_id"`
	Slot2State     SlotState  `db:"slot_2_state"`

	WinnerID *uuid.UUID  `db:"winner_id"`
	Status   MatchStatus `db:"status"`

	Tatami      *int       `db:"tatami"`
	ScheduledAt *time.Time `db:"scheduled_at"`
	StartedAt   *time.Time `db:"started_at"`
	EndedAt     *time.Time `db:"ended_at"`

	Score1 int `db:"score_1"`
	Score2 int `db:"score_2"`

	CreatedAt time.Time `db:"created_at"`
}

func (m *Match) Slot(n int) Slot {
	if n == 1 {
		return Slot{State: m.Slot1State, ParticipantID: m.Participant1ID}
	}
	return Slot{State: m.Slot2State, ParticipantID: m.Participant2ID}
}

func (m *Match) SetSlot(n int, s Slot) {
	if n == 1 {
		m.Slot1State, m.Participant1ID = s.State, s.ParticipantID
		return
	}
	m.Slot2State, m.Participant2ID = s.State, s.ParticipantID
}

// SlotOf returns 1 or 2 when the participant sits in this match, 0 otherwise.
func (m *Match) SlotOf(participantID uuid.UUID) int {
	for _, n := range []int{1, 2} {
		if s := m.Slot(n); s.IsFilled() && *s.ParticipantID == participantID {
			return n
		}
	}
	return 0
}

// Ready reports whether both sides hold a real participant.
func (m *Match) Ready() bool {
	return m.Slot(1).IsFilled() && m.Slot(2).IsFilled()
}

func (m *Match) Resolved() bool {
	return m.Status == MatchCompleted || m.Status == MatchBye
}

// LoserID is the filled slot that did not win, nil while undecided or for byes.
func (m *Match) LoserID() *uuid.UUID {
	if m.WinnerID == nil || !m.Ready() {
		return nil
	}
	if *m.Participant1ID == *m.WinnerID {
		return m.Participant2ID
	}
	return m.Participant1ID
}

func (m *Match) IsWinner(slot int) bool {
	s := m.Slot(slot)
	return m.Resolved() && m.WinnerID != nil && s.IsFilled() && *s.ParticipantID == *m.WinnerID
}

func (m *Match) IsLoser(slot int) bool {
	s := m.Slot(slot)
	return m.Resolved() && m.WinnerID != nil && s.IsFilled() && *s.ParticipantID != *m.WinnerID
}

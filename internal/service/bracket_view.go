package service

import (
	"sort"
	"time"

	"github.com/AdamBeresnev/federation-core/internal/bracket"
	"github.com/google/uuid"
)

type BracketView struct {
	Category     CategoryView      `json:"category"`
	Bracket      BracketSummary    `json:"bracket"`
	Participants []ParticipantView `json:"participants"`
	Rounds       []RoundView       `json:"rounds"`
}

type CategoryView struct {
	ID            uuid.UUID      `json:"id"`
	CompetitionID uuid.UUID      `json:"competition_id"`
	Name          string         `json:"name"`
	Gender        bracket.Gender `json:"gender"`
}

type BracketSummary struct {
	ID          uuid.UUID      `json:"id"`
	Type        bracket.Type   `json:"type"`
	Size        int            `json:"size"`
	TotalRounds int            `json:"total_rounds"`
	Status      bracket.Status `json:"status"`
	GeneratedAt *time.Time     `json:"generated_at,omitempty"`
}

type ParticipantView struct {
	ID        uuid.UUID `json:"id"`
	AthleteID uuid.UUID `json:"athlete_id"`
	Seed      int       `json:"seed"`
	Weight    *float64  `json:"weight,omitempty"`
}

type RoundView struct {
	Number  int         `json:"number"`
	Name    string      `json:"name"`
	Matches []MatchView `json:"matches"`
}

type SlotView struct {
	State         bracket.SlotState `json:"state"`
	ParticipantID *uuid.UUID        `json:"participant_id,omitempty"`
}

type MatchView struct {
	ID          uuid.UUID            `json:"id"`
	RoundNumber int                  `json:"round_number"`
	MatchNumber int                  `json:"match_number"`
	RoundName   string               `json:"round_name"`
	Slot1       SlotView             `json:"slot_1"`
	Slot2       SlotView             `json:"slot_2"`
	WinnerID    *uuid.UUID           `json:"winner_id,omitempty"`
	Status      bracket.MatchStatus  `json:"status"`
	Tatami      *int                 `json:"tatami,omitempty"`
	ScheduledAt *time.Time           `json:"scheduled_at,omitempty"`
	StartedAt   *time.Time           `json:"started_at,omitempty"`
	EndedAt     *time.Time           `json:"ended_at,omitempty"`
	Score1      int                  `json:"score_1"`
	Score2      int                  `json:"score_2"`
	Running     bracket.RunningScore `json:"running_score"`
}

// NewMatchView renders a match for a bracket of bracketSize slots.
func NewMatchView(m *bracket.Match, bracketSize int, events []bracket.ScoreEvent) MatchView {
	s1, s2 := m.Slot(1), m.Slot(2)
	return MatchView{
		ID:          m.ID,
		RoundNumber: m.RoundNumber,
		MatchNumber: m.MatchNumber,
		RoundName:   bracket.RoundName(m.RoundNumber, bracketSize),
		Slot1:       SlotView{State: s1.State, ParticipantID: s1.ParticipantID},
		Slot2:       SlotView{State: s2.State, ParticipantID: s2.ParticipantID},
		WinnerID:    m.WinnerID,
		Status:      m.Status,
		Tatami:      m.Tatami,
		ScheduledAt: m.ScheduledAt,
		StartedAt:   m.StartedAt,
		EndedAt:     m.EndedAt,
		Score1:      m.Score1,
		Score2:      m.Score2,
		Running:     bracket.Tally(m, events),
	}
}

func newBracketView(category *bracket.Category, b *bracket.Bracket, participants []bracket.Participant, matches []bracket.Match, scores map[uuid.UUID][]bracket.ScoreEvent) *BracketView {
	view := &BracketView{
		Category: CategoryView{
			ID:            category.ID,
			CompetitionID: category.CompetitionID,
			Name:          category.Name,
			Gender:        category.Gender,
		},
		Bracket: BracketSummary{
			ID:          b.ID,
			Type:        b.Type,
			Size:        b.Size,
			TotalRounds: b.TotalRounds(),
			Status:      b.Status,
			GeneratedAt: b.GeneratedAt,
		},
		Participants: make([]ParticipantView, 0, len(participants)),
		Rounds:       make([]RoundView, 0, b.TotalRounds()),
	}

	for _, p := range participants {
		view.Participants = append(view.Participants, ParticipantView{ID: p.ID, AthleteID: p.AthleteID, Seed: p.Seed, Weight: p.Weight})
	}

	rounds := make(map[int][]MatchView)
	var roundNums []int
	for i := range matches {
		m := &matches[i]
		if _, exists := rounds[m.RoundNumber]; !exists {
			roundNums = append(roundNums, m.RoundNumber)
		}
		rounds[m.RoundNumber] = append(rounds[m.RoundNumber], NewMatchView(m, b.Size, scores[m.ID]))
	}

	sort.Ints(roundNums)
	for _, r := range roundNums {
		sort.Slice(rounds[r], func(i, j int) bool {
			return rounds[r][i].MatchNumber < rounds[r][j].MatchNumber
		})
		view.Rounds = append(view.Rounds, RoundView{
			Number:  r,
			Name:    bracket.RoundName(r, b.Size),
			Matches: rounds[r],
		})
	}

	return view
}

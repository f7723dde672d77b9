package service

import (
	"github.com/AdamBeresnev/federation-core/internal/bracket"
	"github.com/google/uuid"
)

type position struct {
	round  int
	number int
}

// matchGrid indexes a bracket's matches by (round, match number) so winners can
// be written forward without storing next-match pointers.
type matchGrid struct {
	totalRounds int
	ordered     []*bracket.Match
	byPosition  map[position]*bracket.Match
	changed     map[uuid.UUID]bool
}

func newMatchGrid(bracketSize int, matches []bracket.Match) *matchGrid {
	g := &matchGrid{
		totalRounds: bracket.TotalRounds(bracketSize),
		byPosition:  make(map[position]*bracket.Match, len(matches)),
		changed:     make(map[uuid.UUID]bool),
	}
	for i := range matches {
		m := &matches[i]
		g.ordered = append(g.ordered, m)
		g.byPosition[position{m.RoundNumber, m.MatchNumber}] = m
	}
	return g
}

func (g *matchGrid) at(round, number int) *bracket.Match {
	return g.byPosition[position{round, number}]
}

func (g *matchGrid) isFinal(m *bracket.Match) bool {
	return m.RoundNumber == g.totalRounds
}

// next returns the match and slot that receive m's winner, nil for the final.
func (g *matchGrid) next(m *bracket.Match) (*bracket.Match, int) {
	if g.isFinal(m) {
		return nil, 0
	}
	number, slot := bracket.NextPosition(m.MatchNumber)
	return g.at(m.RoundNumber+1, number), slot
}

// advance writes what m sends forward into the following match and returns it.
func (g *matchGrid) advance(m *bracket.Match, s bracket.Slot) *bracket.Match {
	next, slot := g.next(m)
	if next == nil {
		return nil
	}
	next.SetSlot(slot, s)
	g.changed[next.ID] = true
	return next
}

// Changed lists the matches modified since the grid was built, in bracket order.
func (g *matchGrid) Changed() []*bracket.Match {
	var out []*bracket.Match
	for _, m := range g.ordered {
		if g.changed[m.ID] {
			out = append(out, m)
		}
	}
	return out
}

// resolveByes runs the bye work queue starting from queue. A match resolves
// automatically once both slots are decided and at least one is a bye; whatever
// it holds (a participant or another bye) moves forward and the receiving match
// is queued in turn. It returns how many matches resolved and whether the final
// was among them.
func (g *matchGrid) resolveByes(queue []*bracket.Match) (resolved int, finalResolved bool) {
	for len(queue) > 0 {
		m := queue[0]
		queue = queue[1:]

		if m.Resolved() {
			continue
		}
		s1, s2 := m.Slot(1), m.Slot(2)
		if !s1.Decided() || !s2.Decided() || (!s1.IsBye() && !s2.IsBye()) {
			continue
		}

		m.Status = bracket.MatchBye
		forward := bracket.Bye()
		switch {
		case s1.IsFilled():
			m.WinnerID = s1.ParticipantID
			forward = bracket.Filled(*s1.ParticipantID)
		case s2.IsFilled():
			m.WinnerID = s2.ParticipantID
			forward = bracket.Filled(*s2.ParticipantID)
		}
		g.changed[m.ID] = true
		resolved++

		if g.isFinal(m) {
			finalResolved = true
			continue
		}
		if next := g.advance(m, forward); next != nil {
			queue = append(queue, next)
		}
	}
	return resolved, finalResolved
}

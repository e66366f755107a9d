package bracket

import (
	"slices"
)

type SlotName string

const (
	SlotTeamA SlotName = "teamA"
	SlotTeamB SlotName = "teamB"
)

// Slot is one side of a match. PrereqMatchID names the match whose winner
// fills this slot; nil means the team was seeded directly.
type Slot struct {
	ID            *int64 `json:"id"`
	PrereqMatchID *int64 `json:"prereqMatchId"`
}

// Match is a single series. Positive rounds are upper bracket, negative
// rounds lower bracket. GroupID marks group stage matches.
type Match struct {
	ID       int64    `json:"id"`
	Round    int      `json:"round"`
	GroupID  *int64   `json:"groupId,omitempty"`
	Custom   bool     `json:"custom"`
	TeamA    Slot     `json:"teamA"`
	TeamB    Slot     `json:"teamB"`
	WinnerID *int64   `json:"winnerId"`
	Scores   []string `json:"scores"`
}

func (m Match) Slot(name SlotName) Slot {
	if name == SlotTeamB {
		return m.TeamB
	}
	return m.TeamA
}

func (m *Match) setSlotID(name SlotName, id int64) {
	switch name {
	case SlotTeamA:
		m.TeamA.ID = &id
	case SlotTeamB:
		m.TeamB.ID = &id
	}
}

func (m Match) clone() Match {
	c := m
	c.GroupID = copyPtr(m.GroupID)
	c.WinnerID = copyPtr(m.WinnerID)
	c.TeamA = Slot{ID: copyPtr(m.TeamA.ID), PrereqMatchID: copyPtr(m.TeamA.PrereqMatchID)}
	c.TeamB = Slot{ID: copyPtr(m.TeamB.ID), PrereqMatchID: copyPtr(m.TeamB.PrereqMatchID)}
	if m.Scores != nil {
		c.Scores = slices.Clone(m.Scores)
	}
	return c
}

// MatchGraph is a tournament's matches keyed by id. Operations on it return
// new graphs instead of editing the receiver.
type MatchGraph map[int64]Match

func NewMatchGraph(matches []Match) MatchGraph {
	g := make(MatchGraph, len(matches))
	for _, m := range matches {
		g[m.ID] = m.clone()
	}
	return g
}

func (g MatchGraph) Get(id int64) (Match, bool) {
	m, ok := g[id]
	if !ok {
		return Match{}, false
	}
	return m.clone(), true
}

func (g MatchGraph) Clone() MatchGraph {
	c := make(MatchGraph, len(g))
	for id, m := range g {
		c[id] = m.clone()
	}
	return c
}

// Matches returns the graph ordered by round, then id.
func (g MatchGraph) Matches() []Match {
	out := make([]Match, 0, len(g))
	for _, m := range g {
		out = append(out, m.clone())
	}
	slices.SortFunc(out, func(a, b Match) int {
		if a.Round != b.Round {
			return a.Round - b.Round
		}
		return compareIDs(a.ID, b.ID)
	})
	return out
}

func (g MatchGraph) sortedIDs() []int64 {
	ids := make([]int64, 0, len(g))
	for id := range g {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func compareIDs(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

package bracket

import (
	"fmt"
	"maps"
	"slices"
)

// AffectedMatch says which slot of which match now carries a winner.
type AffectedMatch struct {
	Team          SlotName `json:"team"`
	PrereqMatchID int64    `json:"prereqMatchId"`
	AffectedMatch int64    `json:"affectedMatch"`
	ID            int64    `json:"id"`
}

// PropagateWinner collects every downstream slot fed by matchID once its
// winner is known, following already decided matches transitively. Deeper
// results overwrite shallower ones for the same match.
func (g MatchGraph) PropagateWinner(matchID int64, winnerID *int64, round int) (map[int64]AffectedMatch, error) {
	return g.propagate(matchID, winnerID, round, 0, g.roundDepth())
}

func (g MatchGraph) propagate(matchID int64, winnerID *int64, round, depth, maxDepth int) (map[int64]AffectedMatch, error) {
	affected := make(map[int64]AffectedMatch)
	if winnerID == nil {
		return affected, nil
	}
	if depth > maxDepth {
		return nil, fmt.Errorf("%w: match %d at depth %d", ErrCyclicBracket, matchID, depth)
	}

	nextRound := abs(round) + 1
	for _, key := range g.sortedIDs() {
		candidate := g[key]
		if abs(candidate.Round) != nextRound {
			continue
		}

		for _, slot := range []SlotName{SlotTeamA, SlotTeamB} {
			prereq := candidate.Slot(slot).PrereqMatchID
			if prereq == nil || *prereq != matchID {
				continue
			}

			affected[key] = AffectedMatch{
				Team:          slot,
				PrereqMatchID: matchID,
				AffectedMatch: candidate.ID,
				ID:            *winnerID,
			}

			child, err := g.propagate(candidate.ID, candidate.WinnerID, candidate.Round, depth+1, maxDepth)
			if err != nil {
				return nil, err
			}
			maps.Copy(affected, child)
		}
	}
	return affected, nil
}

// roundDepth bounds recursion: each step climbs one round magnitude, so a
// walk can never be longer than the number of distinct rounds.
func (g MatchGraph) roundDepth() int {
	seen := make(map[int]struct{})
	for _, m := range g {
		seen[abs(m.Round)] = struct{}{}
	}
	return len(seen)
}

// UpdatedMatches returns a new graph with m written in and every slot fed by
// m's result updated. Affected matches missing from the graph are skipped.
func (g MatchGraph) UpdatedMatches(m Match) (MatchGraph, map[int64]AffectedMatch, error) {
	affected, err := g.PropagateWinner(m.ID, m.WinnerID, m.Round)
	if err != nil {
		return nil, nil, err
	}

	next := g.Clone()
	next[m.ID] = m.clone()

	keys := slices.Sorted(maps.Keys(affected))
	for _, key := range keys {
		entry := affected[key]
		target, ok := next[entry.AffectedMatch]
		if !ok {
			continue
		}
		target.setSlotID(entry.Team, entry.ID)
		next[entry.AffectedMatch] = target
	}
	return next, affected, nil
}

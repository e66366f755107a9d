package bracket

import (
	"maps"
	"slices"
)

type TypeSplit struct {
	Groups   MatchGraph
	Playoffs MatchGraph
}

// SplitMatchesByType separates group stage matches from playoff matches.
func SplitMatchesByType(g MatchGraph) TypeSplit {
	split := TypeSplit{Groups: MatchGraph{}, Playoffs: MatchGraph{}}
	for id, m := range g {
		if m.GroupID != nil {
			split.Groups[id] = m
		} else {
			split.Playoffs[id] = m
		}
	}
	return split
}

// MapByGroup buckets matches by group id. Matches without a group are dropped.
func MapByGroup(g MatchGraph) map[int64]MatchGraph {
	groups := make(map[int64]MatchGraph)
	for id, m := range g {
		if m.GroupID == nil {
			continue
		}
		bucket, ok := groups[*m.GroupID]
		if !ok {
			bucket = MatchGraph{}
			groups[*m.GroupID] = bucket
		}
		bucket[id] = m
	}
	return groups
}

// RoundBuckets holds matches keyed by round magnitude.
type RoundBuckets map[int]MatchGraph

// Rounds returns the bucket keys in ascending order.
func (b RoundBuckets) Rounds() []int {
	return slices.Sorted(maps.Keys(b))
}

// MapByRound buckets matches by abs(round), dropping round 0.
func MapByRound(g MatchGraph) RoundBuckets {
	rounds := make(RoundBuckets)
	for id, m := range g {
		round := abs(m.Round)
		if round == 0 {
			continue
		}
		bucket, ok := rounds[round]
		if !ok {
			bucket = MatchGraph{}
			rounds[round] = bucket
		}
		bucket[id] = m
	}
	return rounds
}

type BracketSplit struct {
	Upper  RoundBuckets
	Lower  RoundBuckets
	Custom RoundBuckets
}

// SplitByBracket buckets playoff matches into upper, lower and custom
// brackets. A custom match also lands in upper or lower when its round is set.
func SplitByBracket(g MatchGraph) BracketSplit {
	upper, lower, custom := MatchGraph{}, MatchGraph{}, MatchGraph{}
	for id, m := range g {
		if m.Round > 0 {
			upper[id] = m
		}
		if m.Round < 0 {
			lower[id] = m
		}
		if m.Custom {
			custom[id] = m
		}
	}
	return BracketSplit{
		Upper:  MapByRound(upper),
		Lower:  MapByRound(lower),
		Custom: MapByRound(custom),
	}
}

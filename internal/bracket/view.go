package bracket

type MatchView struct {
	Match
	Score Score `json:"score"`
}

type RoundView struct {
	Round   int         `json:"round"`
	Matches []MatchView `json:"matches"`
}

// View is the read-only projection of a tournament served to clients.
type View struct {
	Groups map[int64][]MatchView `json:"groups"`
	Upper  []RoundView           `json:"upper"`
	Lower  []RoundView           `json:"lower"`
	Custom []RoundView           `json:"custom"`
}

func BuildBracketView(g MatchGraph) View {
	split := SplitMatchesByType(g)
	brackets := SplitByBracket(split.Playoffs)

	groups := make(map[int64][]MatchView)
	for groupID, matches := range MapByGroup(split.Groups) {
		groups[groupID] = matchViews(matches)
	}

	return View{
		Groups: groups,
		Upper:  roundViews(brackets.Upper),
		Lower:  roundViews(brackets.Lower),
		Custom: roundViews(brackets.Custom),
	}
}

func roundViews(buckets RoundBuckets) []RoundView {
	views := make([]RoundView, 0, len(buckets))
	for _, r := range buckets.Rounds() {
		views = append(views, RoundView{Round: r, Matches: matchViews(buckets[r])})
	}
	return views
}

func matchViews(g MatchGraph) []MatchView {
	matches := g.Matches()
	views := make([]MatchView, 0, len(matches))
	for _, m := range matches {
		views = append(views, MatchView{Match: m, Score: ComputeScore(m)})
	}
	return views
}

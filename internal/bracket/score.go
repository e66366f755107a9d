package bracket

import (
	"strconv"
	"strings"
)

type SideScore struct {
	Scores []int `json:"scores"`
	Final  int   `json:"final"`
}

type Score struct {
	A SideScore `json:"a"`
	B SideScore `json:"b"`
}

// ComputeScore tallies per-game "A-B" strings into game scores and maps won.
// Missing or malformed halves count as 0; ties award nobody.
func ComputeScore(m Match) Score {
	score := Score{
		A: SideScore{Scores: []int{}},
		B: SideScore{Scores: []int{}},
	}

	for _, raw := range m.Scores {
		a, b := parseScore(raw)
		score.A.Scores = append(score.A.Scores, a)
		score.B.Scores = append(score.B.Scores, b)

		if a > b {
			score.A.Final++
		} else if b > a {
			score.B.Final++
		}
	}
	return score
}

func parseScore(raw string) (int, int) {
	parts := strings.Split(raw, "-")
	return partOrZero(parts, 0), partOrZero(parts, 1)
}

func partOrZero(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
	if err != nil {
		return 0
	}
	return n
}

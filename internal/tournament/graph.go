package tournament

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/DoyleJ11/veto-bracket-backend/internal/bracket"
	"github.com/DoyleJ11/veto-bracket-backend/internal/metrics"
)

// Result is a reported match outcome.
type Result struct {
	WinnerID *int64   `json:"winnerId"`
	Scores   []string `json:"scores"`
}

// Diff is what one reported result changed.
type Diff struct {
	Affected map[int64]bracket.AffectedMatch `json:"affected"`
	Updated  []bracket.Match                 `json:"updated"`
	Version  int                             `json:"version"`
}

// Graph owns one tournament's match graph. Writers are serialized; readers
// get the last published snapshot.
type Graph struct {
	id   string
	repo Repository

	mu      sync.RWMutex
	matches bracket.MatchGraph
	version int

	logger  *zap.Logger
	metrics *metrics.Recorder
}

func newGraph(id string, repo Repository, matches []bracket.Match, logger *zap.Logger, rec *metrics.Recorder) *Graph {
	return &Graph{
		id:      id,
		repo:    repo,
		matches: bracket.NewMatchGraph(matches),
		logger:  logger.With(zap.String("tournament_id", id)),
		metrics: rec,
	}
}

func (g *Graph) ID() string { return g.id }

// Snapshot returns a private copy of the current matches and their version.
func (g *Graph) Snapshot() (bracket.MatchGraph, int) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.matches.Clone(), g.version
}

func (g *Graph) View() bracket.View {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return bracket.BuildBracketView(g.matches)
}

// Replace stores a whole new set of matches.
func (g *Graph) Replace(ctx context.Context, matches []bracket.Match) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.repo.ReplaceMatches(ctx, g.id, matches); err != nil {
		return 0, fmt.Errorf("replace matches: %w", err)
	}
	g.matches = bracket.NewMatchGraph(matches)
	g.version++
	g.logger.Info("matches replaced", zap.Int("count", len(matches)), zap.Int("version", g.version))
	return g.version, nil
}

// ReportResult writes a match outcome, propagates the winner downstream and
// persists every changed match before publishing the new snapshot.
func (g *Graph) ReportResult(ctx context.Context, matchID int64, r Result) (Diff, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	m, ok := g.matches.Get(matchID)
	if !ok {
		g.metrics.RecordPropagation(0, bracket.KindMatchNotFound)
		return Diff{}, fmt.Errorf("%w: %d", bracket.ErrMatchNotFound, matchID)
	}
	m.WinnerID = r.WinnerID
	if r.Scores != nil {
		m.Scores = r.Scores
	}

	next, affected, err := g.matches.UpdatedMatches(m)
	if err != nil {
		g.metrics.RecordPropagation(0, bracket.KindOf(err))
		g.logger.Warn("propagation failed", zap.Int64("match_id", matchID), zap.Error(err))
		return Diff{}, err
	}

	updated := []bracket.Match{next[matchID]}
	for _, id := range slices.Sorted(maps.Keys(affected)) {
		if target, ok := next[id]; ok {
			updated = append(updated, target)
		}
	}

	if err := g.repo.SaveMatches(ctx, g.id, updated); err != nil {
		return Diff{}, fmt.Errorf("save matches: %w", err)
	}
	g.matches = next
	g.version++
	g.metrics.RecordPropagation(len(affected), "")
	g.logger.Info("result reported",
		zap.Int64("match_id", matchID),
		zap.Int("affected", len(affected)),
		zap.Int("version", g.version))

	return Diff{Affected: affected, Updated: updated, Version: g.version}, nil
}

package tournament

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/DoyleJ11/veto-bracket-backend/internal/bracket"
	"github.com/DoyleJ11/veto-bracket-backend/internal/logging"
	"github.com/DoyleJ11/veto-bracket-backend/internal/metrics"
)

// Registry hands out one Graph per tournament, loading each from the
// repository at most once.
type Registry struct {
	repo    Repository
	logger  *zap.Logger
	metrics *metrics.Recorder

	group  singleflight.Group
	mu     sync.Mutex
	graphs map[string]*Graph
}

func NewRegistry(repo Repository, logger *zap.Logger, rec *metrics.Recorder) *Registry {
	return &Registry{
		repo:    repo,
		logger:  logging.OrNop(logger),
		metrics: rec,
		graphs:  make(map[string]*Graph),
	}
}

func (r *Registry) Get(ctx context.Context, tournamentID string) (*Graph, error) {
	if g := r.cached(tournamentID); g != nil {
		return g, nil
	}

	v, err, _ := r.group.Do(tournamentID, func() (any, error) {
		if g := r.cached(tournamentID); g != nil {
			return g, nil
		}
		matches, err := r.repo.LoadMatches(ctx, tournamentID)
		if err != nil {
			return nil, err
		}
		return r.store(tournamentID, matches), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Graph), nil
}

// Replace swaps in a whole bracket, creating the tournament if needed.
func (r *Registry) Replace(ctx context.Context, tournamentID string, matches []bracket.Match) (*Graph, int, error) {
	g, err := r.Get(ctx, tournamentID)
	if errors.Is(err, ErrTournamentNotFound) {
		g, err = r.store(tournamentID, nil), nil
	}
	if err != nil {
		return nil, 0, err
	}

	version, err := g.Replace(ctx, matches)
	if err != nil {
		return nil, 0, err
	}
	return g, version, nil
}

func (r *Registry) cached(id string) *Graph {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.graphs[id]
}

// store registers a graph unless another caller got there first.
func (r *Registry) store(id string, matches []bracket.Match) *Graph {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g, ok := r.graphs[id]; ok {
		return g
	}
	g := newGraph(id, r.repo, matches, r.logger, r.metrics)
	r.graphs[id] = g
	return g
}

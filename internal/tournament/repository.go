package tournament

import (
	"context"
	"errors"
	"sync"

	"github.com/DoyleJ11/veto-bracket-backend/internal/bracket"
)

var ErrTournamentNotFound = errors.New("tournament not found")

// Repository persists a tournament's matches.
type Repository interface {
	// LoadMatches returns ErrTournamentNotFound when nothing is stored.
	LoadMatches(ctx context.Context, tournamentID string) ([]bracket.Match, error)
	// SaveMatches upserts the given matches.
	SaveMatches(ctx context.Context, tournamentID string, matches []bracket.Match) error
	// ReplaceMatches drops every stored match and writes matches instead.
	ReplaceMatches(ctx context.Context, tournamentID string, matches []bracket.Match) error
}

// MemoryRepository keeps matches in process memory.
type MemoryRepository struct {
	mu   sync.RWMutex
	data map[string]bracket.MatchGraph
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[string]bracket.MatchGraph)}
}

func (r *MemoryRepository) LoadMatches(_ context.Context, tournamentID string) ([]bracket.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.data[tournamentID]
	if !ok {
		return nil, ErrTournamentNotFound
	}
	return g.Matches(), nil
}

func (r *MemoryRepository) SaveMatches(_ context.Context, tournamentID string, matches []bracket.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.data[tournamentID]
	if !ok {
		g = bracket.MatchGraph{}
		r.data[tournamentID] = g
	}
	for id, m := range bracket.NewMatchGraph(matches) {
		g[id] = m
	}
	return nil
}

func (r *MemoryRepository) ReplaceMatches(_ context.Context, tournamentID string, matches []bracket.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data[tournamentID] = bracket.NewMatchGraph(matches)
	return nil
}

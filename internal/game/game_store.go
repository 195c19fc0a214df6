package game

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// GameStore holds the live games of this process.
type GameStore struct {
	mu    sync.Mutex
	games map[uuid.UUID]*SkyjoGame
}

func NewGameStore() *GameStore {
	return &GameStore{
		games: make(map[uuid.UUID]*SkyjoGame),
	}
}

func (s *GameStore) AddGame(game *SkyjoGame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[game.ID] = game
}

func (s *GameStore) GetGame(id uuid.UUID) (*SkyjoGame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, exists := s.games[id]
	return g, exists
}

func (s *GameStore) DeleteGame(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, id)
}

// Len returns the number of live games.
func (s *GameStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.games)
}

// ListGames returns all games, oldest first.
func (s *GameStore) ListGames() []*SkyjoGame {
	s.mu.Lock()
	out := make([]*SkyjoGame, 0, len(s.games))
	for _, g := range s.games {
		out = append(out, g)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// PruneInactive removes games that have not changed since before now-maxIdle
// and returns their ids.
func (s *GameStore) PruneInactive(now time.Time, maxIdle time.Duration) []uuid.UUID {
	cutoff := now.Add(-maxIdle)

	s.mu.Lock()
	candidates := make([]*SkyjoGame, 0, len(s.games))
	for _, g := range s.games {
		candidates = append(candidates, g)
	}
	s.mu.Unlock()

	var pruned []uuid.UUID
	for _, g := range candidates {
		// game lock is taken outside the store lock
		if g.LastActivity().Before(cutoff) {
			pruned = append(pruned, g.ID)
		}
	}

	s.mu.Lock()
	for _, id := range pruned {
		delete(s.games, id)
	}
	s.mu.Unlock()
	return pruned
}

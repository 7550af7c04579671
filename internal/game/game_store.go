package game

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Repository loads and atomically stores whole game snapshots.
type Repository interface {
	Create(ctx context.Context, st *State) error
	Load(ctx context.Context, id uuid.UUID) (*State, error)
	Save(ctx context.Context, st *State) error
}

// MemoryStore keeps snapshots in process. Every call copies, so callers never share a State
// with the store.
type MemoryStore struct {
	mu    sync.Mutex
	games map[uuid.UUID]*State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games: make(map[uuid.UUID]*State),
	}
}

func (s *MemoryStore) Create(_ context.Context, st *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.games[st.Game.ID]; exists {
		return fmt.Errorf("game %s already exists", st.Game.ID)
	}
	s.games[st.Game.ID] = st.Clone()
	return nil
}

func (s *MemoryStore) Load(_ context.Context, id uuid.UUID) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, exists := s.games[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	return st.Clone(), nil
}

// Save swaps the whole snapshot in one step.
func (s *MemoryStore) Save(_ context.Context, st *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.games[st.Game.ID]; !exists {
		return fmt.Errorf("%w: %s", ErrGameNotFound, st.Game.ID)
	}
	s.games[st.Game.ID] = st.Clone()
	return nil
}

// DeleteGame drops a game from memory.
func (s *MemoryStore) DeleteGame(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, id)
}

// Len is the number of games held.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.games)
}

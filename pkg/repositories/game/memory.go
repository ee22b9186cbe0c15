package game

import (
	"context"
	"sync"

	"github.com/fadedpez/twentyone/pkg/entities"
)

// MemoryRepository implements Repository interface with in-memory storage
type MemoryRepository struct {
	mu sync.RWMutex
	// Map of sessionID to round results, oldest first
	sessionRounds map[string][]*entities.RoundResult
}

// NewMemoryRepository creates a new in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		sessionRounds: make(map[string][]*entities.RoundResult),
	}
}

// SaveRoundResult stores a round result under its session
func (r *MemoryRepository) SaveRoundResult(ctx context.Context, result *entities.RoundResult) error {
	if result == nil {
		return ErrNilRoundResult
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessionRounds[result.SessionID] = append(r.sessionRounds[result.SessionID], result)
	return nil
}

// GetRoundResults retrieves the most recent round results for a session, oldest first
func (r *MemoryRepository) GetRoundResults(ctx context.Context, sessionID string, limit int) ([]*entities.RoundResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := r.sessionRounds[sessionID]
	if results == nil {
		return []*entities.RoundResult{}, nil
	}

	// If we have more results than the limit, return only the most recent ones
	if limit > 0 && len(results) > limit {
		results = results[len(results)-limit:]
	}
	out := make([]*entities.RoundResult, len(results))
	copy(out, results)
	return out, nil
}

// GetPlayerBetResults retrieves every settled bet for a player in a session
func (r *MemoryRepository) GetPlayerBetResults(ctx context.Context, sessionID, playerName string) ([]*entities.BetResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bets := []*entities.BetResult{}
	for _, round := range r.sessionRounds[sessionID] {
		for _, bet := range round.Bets {
			if bet.PlayerName == playerName {
				bets = append(bets, bet)
			}
		}
	}
	return bets, nil
}

// Close is a no-op for memory repository since there are no resources to close
func (r *MemoryRepository) Close() error {
	return nil
}

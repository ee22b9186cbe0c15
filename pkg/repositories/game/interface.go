package game

import (
	"context"

	"github.com/fadedpez/twentyone/pkg/entities"
)

//go:generate mockgen -source=$GOFILE -destination=mock/mock.go -package=mock_game

// Repository stores the settled history of completed rounds
type Repository interface {
	// Round results
	SaveRoundResult(ctx context.Context, result *entities.RoundResult) error
	GetRoundResults(ctx context.Context, sessionID string, limit int) ([]*entities.RoundResult, error)

	// Bet results across every round of a session for one player
	GetPlayerBetResults(ctx context.Context, sessionID, playerName string) ([]*entities.BetResult, error)

	// Close closes any resources used by the repository
	Close() error
}

package blackjack

import (
	"github.com/shopspring/decimal"

	"github.com/fadedpez/twentyone/pkg/entities"
)

// Bet covers one specific hand of one player. Hands are addressed by index
// into the engine's player list and the player's hand list.
type Bet struct {
	PlayerIndex int
	HandIndex   int
	Amount      decimal.Decimal
	Type        entities.BetType
	Resolution  entities.Resolution
}

// NewBet creates an unresolved bet
func NewBet(playerIndex, handIndex int, amount decimal.Decimal, betType entities.BetType) *Bet {
	return &Bet{
		PlayerIndex: playerIndex,
		HandIndex:   handIndex,
		Amount:      amount,
		Type:        betType,
		Resolution:  entities.ResolutionNone,
	}
}

// Covers reports whether the bet belongs to the given player hand
func (b *Bet) Covers(playerIndex, handIndex int) bool {
	return b.PlayerIndex == playerIndex && b.HandIndex == handIndex
}

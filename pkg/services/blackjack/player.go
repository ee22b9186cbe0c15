package blackjack

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Player is a seat at the table. Hands holds more than one entry only after a split.
type Player struct {
	Name       string
	Bankroll   decimal.Decimal
	Hands      []*Hand
	SittingOut bool
}

// NewPlayer creates a player holding one empty hand
func NewPlayer(name string, bankroll decimal.Decimal) *Player {
	return &Player{
		Name:     name,
		Bankroll: bankroll,
		Hands:    []*Hand{NewHand()},
	}
}

// PlayerName returns the seat name for a zero-based index
func PlayerName(index int) string {
	return fmt.Sprintf("Player %d", index+1)
}

// ResetHands discards every hand and leaves a single empty one
func (p *Player) ResetHands() {
	p.Hands = []*Hand{NewHand()}
}

// CanAfford reports whether the bankroll covers amount
func (p *Player) CanAfford(amount decimal.Decimal) bool {
	return p.Bankroll.GreaterThanOrEqual(amount)
}

// Debit removes amount from the bankroll
func (p *Player) Debit(amount decimal.Decimal) {
	p.Bankroll = p.Bankroll.Sub(amount)
}

// Credit adds amount to the bankroll
func (p *Player) Credit(amount decimal.Decimal) {
	p.Bankroll = p.Bankroll.Add(amount)
}

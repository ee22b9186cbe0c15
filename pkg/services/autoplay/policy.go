package autoplay

import (
	"github.com/thoas/go-funk"

	"github.com/fadedpez/twentyone/pkg/entities"
	"github.com/fadedpez/twentyone/pkg/services/blackjack"
)

// Policy picks an action from a snapshot
type Policy interface {
	Choose(snap blackjack.Snapshot) blackjack.PlayerAction
}

// BasicPolicy plays a simplified basic strategy against the dealer's up card
type BasicPolicy struct{}

// Choose returns a legal action for the current hand, or ActionNone when
// nothing is legal
func (BasicPolicy) Choose(snap blackjack.Snapshot) blackjack.PlayerAction {
	legal := snap.LegalActions
	if len(legal) == 0 {
		return blackjack.ActionNone
	}
	if funk.Contains(legal, blackjack.ActionBet) {
		return blackjack.ActionBet
	}

	hand, ok := snap.CurrentHand()
	if !ok {
		return legal[0]
	}

	choice := basicStrategy(hand, snap.Dealer.Value, legal)
	if funk.Contains(legal, choice) {
		return choice
	}
	return legal[0]
}

// basicStrategy plays pairs of aces and eights by splitting, doubles on 10
// and 11 (and 9 against a weak up card), and otherwise draws to 12, or to
// 17 against a dealer showing 7 or better
func basicStrategy(hand blackjack.HandView, upCard int, legal []blackjack.PlayerAction) blackjack.PlayerAction {
	canSplit := funk.Contains(legal, blackjack.ActionSplit)
	canDouble := funk.Contains(legal, blackjack.ActionDoubleDown)

	if canSplit && len(hand.Cards) == 2 {
		switch hand.Cards[0].Rank {
		case entities.Ace, entities.Eight:
			return blackjack.ActionSplit
		}
	}

	switch value := hand.Value; {
	case canDouble && (value == 10 || value == 11):
		return blackjack.ActionDoubleDown
	case canDouble && value == 9 && upCard >= 3 && upCard <= 6:
		return blackjack.ActionDoubleDown
	case value < 12:
		return blackjack.ActionHit
	case value <= 16:
		if upCard >= 2 && upCard <= 6 {
			return blackjack.ActionStand
		}
		return blackjack.ActionHit
	default:
		return blackjack.ActionStand
	}
}

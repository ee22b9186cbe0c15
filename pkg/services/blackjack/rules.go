package blackjack

import (
	"github.com/shopspring/decimal"

	"github.com/fadedpez/twentyone/pkg/entities"
)

const (
	MinPlayers           = 1  // Fewest seats a table can run with
	MaxPlayers           = 6  // Max number of players allowed at the table
	MaxResplitCount      = 4  // Most hands a player may hold through splitting
	DealerStandThreshold = 17 // Dealer draws below this total
	BlackjackValue       = 21
	DefaultShoeDeckCount = 6
)

var (
	DefaultBetAmount        = decimal.NewFromInt(2)
	DefaultStartingBankroll = decimal.NewFromInt(500)
	// NaturalPayoutMultiplier is the 3:2 winnings paid on a natural, on top of the stake
	NaturalPayoutMultiplier = decimal.NewFromFloat(1.5)
)

// handTotal counts aces as 1, then promotes them to 11 one at a time while
// the total stays at or below 11. soft reports whether an ace was promoted.
func handTotal(cards []entities.Card) (total int, soft bool) {
	aces := 0
	for _, card := range cards {
		if card.Rank == entities.Ace {
			aces++
			total++
			continue
		}
		total += card.Rank.Value()
	}

	for aces > 0 && total <= 11 {
		total += 10
		aces--
		soft = true
	}
	return total, soft
}

// HandValue returns the blackjack total of the cards
func HandValue(cards []entities.Card) int {
	total, _ := handTotal(cards)
	return total
}

// IsSoft reports whether the hand total counts an ace as 11
func IsSoft(cards []entities.Card) bool {
	_, soft := handTotal(cards)
	return soft
}

// VisibleValue values only the face-up cards
func VisibleValue(cards []entities.Card) int {
	visible := make([]entities.Card, 0, len(cards))
	for _, card := range cards {
		if card.FaceUp {
			visible = append(visible, card)
		}
	}
	return HandValue(visible)
}

// IsBust checks if a hand exceeds 21
func IsBust(cards []entities.Card) bool {
	return HandValue(cards) > BlackjackValue
}

// IsTwentyOne checks if a hand totals exactly 21, with any number of cards
func IsTwentyOne(cards []entities.Card) bool {
	return HandValue(cards) == BlackjackValue
}

// IsNatural checks for a two-card 21
func IsNatural(cards []entities.Card) bool {
	return len(cards) == 2 && IsTwentyOne(cards)
}

// CanDoubleDown checks for exactly two cards totaling 9, 10 or 11
func CanDoubleDown(cards []entities.Card) bool {
	if len(cards) != 2 {
		return false
	}
	value := HandValue(cards)
	return value >= 9 && value <= 11
}

// CanSplit checks for a pair while the player holds fewer than MaxResplitCount hands
func CanSplit(cards []entities.Card, handCount int) bool {
	return len(cards) == 2 && cards[0].Rank == cards[1].Rank && handCount < MaxResplitCount
}

// DealerShouldDraw applies the dealer's fixed policy: draw below 17, stand on all 17s
func DealerShouldDraw(cards []entities.Card) bool {
	return HandValue(cards) < DealerStandThreshold
}

package blackjack

import (
	"github.com/fadedpez/twentyone/pkg/entities"
)

// Hand represents one player hand or the dealer's hand, in deal order
type Hand struct {
	cards []entities.Card
}

// NewHand creates a new empty hand
func NewHand() *Hand {
	return &Hand{
		cards: make([]entities.Card, 0, 4),
	}
}

// Add appends a card to the hand
func (h *Hand) Add(card entities.Card) {
	h.cards = append(h.cards, card)
}

// RemoveLast takes the most recently added card off the hand
func (h *Hand) RemoveLast() (entities.Card, bool) {
	if len(h.cards) == 0 {
		return entities.Card{}, false
	}
	card := h.cards[len(h.cards)-1]
	h.cards = h.cards[:len(h.cards)-1]
	return card, true
}

// Clear empties the hand
func (h *Hand) Clear() {
	h.cards = h.cards[:0]
}

// Cards returns a copy of the cards in the hand
func (h *Hand) Cards() []entities.Card {
	out := make([]entities.Card, len(h.cards))
	copy(out, h.cards)
	return out
}

// Len returns the number of cards held
func (h *Hand) Len() int {
	return len(h.cards)
}

func (h *Hand) Value() int {
	return HandValue(h.cards)
}

func (h *Hand) Soft() bool {
	return IsSoft(h.cards)
}

func (h *Hand) Bust() bool {
	return IsBust(h.cards)
}

func (h *Hand) Natural() bool {
	return IsNatural(h.cards)
}

// HasFaceDown reports whether any card is still hidden
func (h *Hand) HasFaceDown() bool {
	for _, card := range h.cards {
		if !card.FaceUp {
			return true
		}
	}
	return false
}

// RevealAll turns every card face up and reports whether any card flipped
func (h *Hand) RevealAll() bool {
	flipped := false
	for i := range h.cards {
		if !h.cards[i].FaceUp {
			h.cards[i].FaceUp = true
			flipped = true
		}
	}
	return flipped
}

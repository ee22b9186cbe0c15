package entities

import (
	"errors"
	"math/rand/v2"
)

// DeckSize is the number of cards in one standard deck
const DeckSize = 52

// Cut card placement, as a percentage of the shoe measured from the back
const (
	cutCardMinPercent = 15
	cutCardMaxPercent = 25
)

// ErrShoeExhausted is returned when a card is requested from an empty shoe
var ErrShoeExhausted = errors.New("shoe exhausted")

// Shoe holds one or more standard decks. allCards is the template the shoe is
// rebuilt from on every shuffle; undealt is the working sequence dealt from
// the front.
type Shoe struct {
	allCards        []Card
	undealt         []Card
	deckCount       int
	cutCardPosition int
	shuffled        bool
	rng             *rand.Rand
}

// NewShoeWithRand creates an unshuffled shoe that draws its shuffle order
// and cut card placement from rng
func NewShoeWithRand(deckCount int, rng *rand.Rand) *Shoe {
	if deckCount < 1 {
		deckCount = 1
	}

	cards := make([]Card, 0, DeckSize*deckCount)
	for i := 0; i < deckCount; i++ {
		for _, suit := range Suits {
			for _, rank := range Ranks {
				cards = append(cards, NewCard(suit, rank))
			}
		}
	}

	undealt := make([]Card, len(cards))
	copy(undealt, cards)

	return &Shoe{
		allCards:  cards,
		undealt:   undealt,
		deckCount: deckCount,
		rng:       rng,
	}
}

// DeckCount returns the number of decks the shoe was built from
func (s *Shoe) DeckCount() int {
	return s.deckCount
}

// TotalCardCount returns the size of the full shoe
func (s *Shoe) TotalCardCount() int {
	return len(s.allCards)
}

// UndealtCardCount returns how many cards remain to be dealt
func (s *Shoe) UndealtCardCount() int {
	return len(s.undealt)
}

// CutCardPosition returns the undealt count at which the cut card is reached
func (s *Shoe) CutCardPosition() int {
	return s.cutCardPosition
}

// CutCardReached reports whether dealing has reached the cut card
func (s *Shoe) CutCardReached() bool {
	return len(s.undealt) <= s.cutCardPosition
}

// Shuffled reports whether the shoe has been shuffled at least once
func (s *Shoe) Shuffled() bool {
	return s.shuffled
}

// NeedsShuffle reports whether the shoe must be shuffled before the next round
func (s *Shoe) NeedsShuffle() bool {
	return !s.shuffled || s.CutCardReached()
}

// Shuffle restores every card to the shoe in a Fisher-Yates permutation and
// places a new cut card
func (s *Shoe) Shuffle() {
	s.undealt = s.undealt[:0]
	for _, card := range s.allCards {
		s.undealt = append(s.undealt, card)
	}

	for i := len(s.undealt) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		s.undealt[i], s.undealt[j] = s.undealt[j], s.undealt[i]
	}

	s.cutCardPosition = s.pickCutCard()
	s.shuffled = true
}

// pickCutCard returns a position in [15%, 25%) of the total card count
func (s *Shoe) pickCutCard() int {
	total := len(s.allCards)
	lo := (total*cutCardMinPercent + 99) / 100
	hi := (total*cutCardMaxPercent + 99) / 100
	if hi <= lo {
		return lo
	}
	return lo + s.rng.IntN(hi-lo)
}

// Deal removes and returns the front card of the shoe, face up
func (s *Shoe) Deal() (Card, error) {
	if len(s.undealt) == 0 {
		return Card{}, ErrShoeExhausted
	}
	card := s.undealt[0]
	s.undealt = s.undealt[1:]
	card.FaceUp = true
	return card, nil
}

// Stack places cards at the front of the shoe in the given order. It is
// intended for arranging known sequences in tests and replays.
func (s *Shoe) Stack(cards ...Card) {
	front := make([]Card, 0, len(cards)+len(s.undealt))
	front = append(front, cards...)
	s.undealt = append(front, s.undealt...)
}

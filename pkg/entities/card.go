package entities

import "fmt"

// Suit represents a card suit

type Suit string

const (
	Clubs    Suit = "CLUBS"
	Diamonds Suit = "DIAMONDS"
	Hearts   Suit = "HEARTS"
	Spades   Suit = "SPADES"
)

// Suits lists every suit in deck construction order
var Suits = []Suit{Clubs, Diamonds, Hearts, Spades}

// Rank represents a card rank

type Rank string

const (
	Ace   Rank = "A"
	Two   Rank = "2"
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
)

// Ranks lists every rank in deck construction order
var Ranks = []Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}

var rankValues = map[Rank]int{
	Ace:   11,
	Two:   2,
	Three: 3,
	Four:  4,
	Five:  5,
	Six:   6,
	Seven: 7,
	Eight: 8,
	Nine:  9,
	Ten:   10,
	Jack:  10,
	Queen: 10,
	King:  10,
}

// Value returns the table value of the rank. Aces report 11; callers that
// need soft totals count them separately.
func (r Rank) Value() int {
	return rankValues[r]
}

// Valid reports whether r is one of the thirteen standard ranks
func (r Rank) Valid() bool {
	_, ok := rankValues[r]
	return ok
}

// Card represents a playing card. FaceUp only ever changes for the
// dealer's hole card.
type Card struct {
	Suit   Suit `json:"suit"`
	Rank   Rank `json:"rank"`
	FaceUp bool `json:"face_up"`
}

// NewCard creates a new face-up card

func NewCard(suit Suit, rank Rank) Card {
	return Card{
		Suit:   suit,
		Rank:   rank,
		FaceUp: true,
	}
}

// SameIdentity reports whether two cards share rank and suit, ignoring visibility
func (c Card) SameIdentity(other Card) bool {
	return c.Suit == other.Suit && c.Rank == other.Rank
}

// String returns the string representation of the card

func (c Card) String() string {
	if !c.FaceUp {
		return "face-down card"
	}
	return fmt.Sprintf("%s of %s", c.Rank, c.Suit)
}

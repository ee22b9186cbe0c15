package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Phase is a stage of the betting round
type Phase string

const (
	PhaseBetting     Phase = "BETTING"
	PhaseDealing     Phase = "DEALING"
	PhaseNaturals    Phase = "NATURALS"
	PhasePlayerTurns Phase = "PLAYER_TURNS"
	PhaseDealerTurn  Phase = "DEALER_TURN"
	PhaseRoundEnd    Phase = "ROUND_END"
)

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}

// BetType records how a bet came to exist
type BetType string

const (
	BetNormal     BetType = "NORMAL"
	BetDoubleDown BetType = "DOUBLE_DOWN"
	BetSplit      BetType = "SPLIT"
)

// Resolution is the settled outcome of a bet
type Resolution string

const (
	ResolutionNone          Resolution = "NONE"
	ResolutionWin           Resolution = "WIN"
	ResolutionLose          Resolution = "LOSE"
	ResolutionStandoff      Resolution = "STANDOFF"
	ResolutionBusted        Resolution = "BUSTED"
	ResolutionDoubleDownWin Resolution = "DOUBLE_DOWN_WIN"
	ResolutionNatural       Resolution = "NATURAL"
)

// String returns the string representation of the resolution
func (r Resolution) String() string {
	return string(r)
}

// IsWin returns true if this resolution paid the player more than the stake
func (r Resolution) IsWin() bool {
	return r == ResolutionWin || r == ResolutionDoubleDownWin || r == ResolutionNatural
}

// HouseWins returns true if the stake went to the house
func (r Resolution) HouseWins() bool {
	return r == ResolutionLose || r == ResolutionBusted
}

// RoundResult is the settled record of one completed round
type RoundResult struct {
	ID          string       `json:"id"`
	SessionID   string       `json:"session_id"`
	Number      int          `json:"number"`
	StartedAt   time.Time    `json:"started_at"`
	CompletedAt time.Time    `json:"completed_at"`
	DealerCards []Card       `json:"dealer_cards"`
	DealerValue int          `json:"dealer_value"`
	DealerBust  bool         `json:"dealer_bust"`
	Bets        []*BetResult `json:"bets"`
}

// BetResult is the settled record of one bet within a round
type BetResult struct {
	RoundID    string          `json:"round_id"`
	PlayerName string          `json:"player_name"`
	HandIndex  int             `json:"hand_index"`
	Cards      []Card          `json:"cards"`
	HandValue  int             `json:"hand_value"`
	Type       BetType         `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	Resolution Resolution      `json:"resolution"`
	// Payout is what was credited back to the bankroll, stake included
	Payout decimal.Decimal `json:"payout"`
}

// Net returns the player's gain or loss on the bet
func (b *BetResult) Net() decimal.Decimal {
	return b.Payout.Sub(b.Amount)
}

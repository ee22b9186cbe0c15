package blackjack

import (
	"github.com/shopspring/decimal"

	"github.com/fadedpez/twentyone/pkg/entities"
)

// HandView is a read-only copy of a hand with its valuation
type HandView struct {
	Cards   []entities.Card `json:"cards"`
	Value   int             `json:"value"`
	Soft    bool            `json:"soft"`
	Bust    bool            `json:"bust"`
	Natural bool            `json:"natural"`
}

// PlayerView is a read-only copy of a player
type PlayerView struct {
	Name       string          `json:"name"`
	Bankroll   decimal.Decimal `json:"bankroll"`
	SittingOut bool            `json:"sitting_out"`
	Hands      []HandView      `json:"hands"`
}

// BetView is a read-only copy of a bet
type BetView struct {
	PlayerIndex int                 `json:"player_index"`
	PlayerName  string              `json:"player_name"`
	HandIndex   int                 `json:"hand_index"`
	Amount      decimal.Decimal     `json:"amount"`
	Type        entities.BetType    `json:"type"`
	Resolution  entities.Resolution `json:"resolution"`
	Payout      decimal.Decimal     `json:"payout"`
}

func newBetView(bet *Bet, playerName string, payout decimal.Decimal) BetView {
	return BetView{
		PlayerIndex: bet.PlayerIndex,
		PlayerName:  playerName,
		HandIndex:   bet.HandIndex,
		Amount:      bet.Amount,
		Type:        bet.Type,
		Resolution:  bet.Resolution,
		Payout:      payout,
	}
}

// ShoeView exposes the shoe counters without its order
type ShoeView struct {
	DeckCount       int  `json:"deck_count"`
	Total           int  `json:"total"`
	Undealt         int  `json:"undealt"`
	CutCardPosition int  `json:"cut_card_position"`
	CutCardReached  bool `json:"cut_card_reached"`
}

// Snapshot is a deep copy of the engine state for renderers. Mutating it
// has no effect on the engine.
type Snapshot struct {
	Started         bool           `json:"started"`
	SessionID       string         `json:"session_id"`
	RoundID         string         `json:"round_id"`
	RoundNumber     int            `json:"round_number"`
	RoundsCompleted int            `json:"rounds_completed"`
	Phase           entities.Phase `json:"phase"`

	Players             []PlayerView `json:"players"`
	// Dealer hides the hole card while it is face down and values only visible cards
	Dealer              HandView     `json:"dealer"`
	DealerPendingAction DealerAction `json:"dealer_pending_action"`

	CurrentPlayerIndex int            `json:"current_player_index"`
	CurrentHandIndex   int            `json:"current_hand_index"`
	PendingIntent      PlayerAction   `json:"pending_intent"`
	LegalActions       []PlayerAction `json:"legal_actions"`
	AwaitingInput      bool           `json:"awaiting_input"`

	ActiveBets    []BetView       `json:"active_bets"`
	TableWinnings decimal.Decimal `json:"table_winnings"`
	Shoe          ShoeView        `json:"shoe"`

	LastDealerAction DealerAction   `json:"last_dealer_action"`
	LastPlayerIndex  int            `json:"last_player_index"`
	LastHandIndex    int            `json:"last_hand_index"`
	LastPlayerIntent PlayerAction   `json:"last_player_intent"`
	LastDrawnCard    *entities.Card `json:"last_drawn_card,omitempty"`
	LastResolvedBet  *BetView       `json:"last_resolved_bet,omitempty"`
}

// CurrentHand returns the view of the hand whose turn it is
func (s Snapshot) CurrentHand() (HandView, bool) {
	if s.CurrentPlayerIndex < 0 || s.CurrentPlayerIndex >= len(s.Players) {
		return HandView{}, false
	}
	hands := s.Players[s.CurrentPlayerIndex].Hands
	if s.CurrentHandIndex < 0 || s.CurrentHandIndex >= len(hands) {
		return HandView{}, false
	}
	return hands[s.CurrentHandIndex], true
}

func newHandView(hand *Hand) HandView {
	cards := hand.Cards()
	return HandView{
		Cards:   cards,
		Value:   HandValue(cards),
		Soft:    IsSoft(cards),
		Bust:    IsBust(cards),
		Natural: IsNatural(cards),
	}
}

func newDealerView(hand *Hand) HandView {
	cards := hand.Cards()
	visible := make([]entities.Card, 0, len(cards))
	for i, card := range cards {
		if !card.FaceUp {
			cards[i] = entities.Card{FaceUp: false}
			continue
		}
		visible = append(visible, card)
	}
	return HandView{
		Cards:   cards,
		Value:   HandValue(visible),
		Soft:    IsSoft(visible),
		Bust:    IsBust(visible),
		Natural: IsNatural(visible),
	}
}

// Snapshot returns a copy of the current state. Before StartNewGame it is
// the zero Snapshot.
func (e *Engine) Snapshot() Snapshot {
	s := e.state
	if s == nil {
		return Snapshot{}
	}

	players := make([]PlayerView, len(s.players))
	for i, player := range s.players {
		hands := make([]HandView, len(player.Hands))
		for j, hand := range player.Hands {
			hands[j] = newHandView(hand)
		}
		players[i] = PlayerView{
			Name:       player.Name,
			Bankroll:   player.Bankroll,
			SittingOut: player.SittingOut,
			Hands:      hands,
		}
	}

	bets := make([]BetView, len(s.activeBets))
	for i, bet := range s.activeBets {
		bets[i] = newBetView(bet, s.players[bet.PlayerIndex].Name, decimal.Zero)
	}

	legal := make([]PlayerAction, len(s.legalActions))
	copy(legal, s.legalActions)

	snap := Snapshot{
		Started:             true,
		SessionID:           s.sessionID,
		RoundID:             s.roundID,
		RoundNumber:         s.roundNumber,
		RoundsCompleted:     s.roundsCompleted,
		Phase:               s.phase,
		Players:             players,
		Dealer:              newDealerView(s.dealer),
		DealerPendingAction: s.dealerAction,
		CurrentPlayerIndex:  s.currentPlayerIndex,
		CurrentHandIndex:    s.currentHandIndex,
		PendingIntent:       s.intent,
		LegalActions:        legal,
		AwaitingInput:       len(legal) > 0 && s.intent == ActionNone,
		ActiveBets:          bets,
		TableWinnings:       s.tableWinnings,
		Shoe: ShoeView{
			DeckCount:       s.shoe.DeckCount(),
			Total:           s.shoe.TotalCardCount(),
			Undealt:         s.shoe.UndealtCardCount(),
			CutCardPosition: s.shoe.CutCardPosition(),
			CutCardReached:  s.shoe.CutCardReached(),
		},
		LastDealerAction: s.lastDealerAction,
		LastPlayerIndex:  s.lastPlayerIndex,
		LastHandIndex:    s.lastHandIndex,
		LastPlayerIntent: s.lastPlayerIntent,
	}
	if s.lastDrawnCard != nil {
		card := *s.lastDrawnCard
		snap.LastDrawnCard = &card
	}
	if s.lastResolvedBet != nil {
		bet := *s.lastResolvedBet
		snap.LastResolvedBet = &bet
	}
	return snap
}

package blackjack

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fadedpez/twentyone/pkg/entities"
)

// roundState is owned by the Engine and never handed out; readers get a Snapshot
type roundState struct {
	sessionID       string
	roundID         string
	roundNumber     int
	roundsCompleted int
	startedAt       time.Time

	phase        entities.Phase
	shoe         *entities.Shoe
	dealer       *Hand
	dealerAction DealerAction // decided, executes on the next DealerTurn step
	dealerPeeked bool

	players            []*Player
	currentPlayerIndex int
	currentHandIndex   int
	intent             PlayerAction
	legalActions       []PlayerAction

	activeBets    []*Bet
	tableWinnings decimal.Decimal
	settled       []*entities.BetResult

	// Memos of the most recent step, cleared before each Advance
	lastDealerAction DealerAction
	lastPlayerIndex  int
	lastHandIndex    int
	lastPlayerIntent PlayerAction
	lastDrawnCard    *entities.Card
	lastResolvedBet  *BetView
}

func (s *roundState) clearMemos() {
	s.lastDealerAction = DealerNone
	s.lastPlayerIndex = -1
	s.lastHandIndex = -1
	s.lastPlayerIntent = ActionNone
	s.lastDrawnCard = nil
	s.lastResolvedBet = nil
}

// handCounts lists how many hands each player is playing, zero when sitting out
func (s *roundState) handCounts() []int {
	counts := make([]int, len(s.players))
	for i, player := range s.players {
		if !player.SittingOut {
			counts[i] = len(player.Hands)
		}
	}
	return counts
}

func (s *roundState) activePlayerCount() int {
	n := 0
	for _, player := range s.players {
		if !player.SittingOut {
			n++
		}
	}
	return n
}

// seated reports whether the current indices address a live player hand
func (s *roundState) seated() bool {
	p, h := s.currentPlayerIndex, s.currentHandIndex
	if p < 0 || p >= len(s.players) {
		return false
	}
	player := s.players[p]
	return !player.SittingOut && h >= 0 && h < len(player.Hands)
}

func (s *roundState) currentPlayer() *Player {
	return s.players[s.currentPlayerIndex]
}

func (s *roundState) currentHand() *Hand {
	return s.players[s.currentPlayerIndex].Hands[s.currentHandIndex]
}

// findBet returns the position in activeBets of the bet covering (p, h), or -1
func (s *roundState) findBet(p, h int) int {
	for i, bet := range s.activeBets {
		if bet.Covers(p, h) {
			return i
		}
	}
	return -1
}

func (s *roundState) removeBet(i int) *Bet {
	bet := s.activeBets[i]
	s.activeBets = append(s.activeBets[:i], s.activeBets[i+1:]...)
	return bet
}

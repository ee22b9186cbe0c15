package blackjack

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fadedpez/twentyone/internal/types"
	"github.com/fadedpez/twentyone/pkg/entities"
)

// transition exits the current phase and enters next
func (e *Engine) transition(next entities.Phase) {
	s := e.state
	e.exitPhase(s.phase)
	e.logger.Debug("Round %d: %s -> %s", s.roundNumber, s.phase, next)
	s.phase = next
	e.enterPhase(next)
}

// enterPhase performs one-time setup and points the turn at the first seat
func (e *Engine) enterPhase(phase entities.Phase) {
	s := e.state
	switch phase {
	case entities.PhaseBetting:
		s.roundID = uuid.NewString()
		s.roundNumber++
		s.startedAt = e.clock.Now()
		s.settled = nil
		s.dealerPeeked = false
		s.dealerAction = DealerNone
		s.dealer.Clear()
		for _, player := range s.players {
			player.ResetHands()
			player.SittingOut = !player.Bankroll.IsPositive()
			if player.SittingOut {
				e.logger.Debug("%s sits out with an empty bankroll", player.Name)
			}
		}
		if s.shoe.NeedsShuffle() {
			s.shoe.Shuffle()
			e.logger.Info("Shuffled %d-deck shoe, cut card at %d", s.shoe.DeckCount(), s.shoe.CutCardPosition())
		}
	case entities.PhaseDealerTurn:
		s.dealerAction = DealerNone
	case entities.PhaseRoundEnd:
		// The hole card may still be down when no hand reached the dealer turn
		s.dealer.RevealAll()
	}

	s.currentPlayerIndex, s.currentHandIndex = 0, 0
	if p, h, ok := firstSeat(s.handCounts()); ok {
		s.currentPlayerIndex, s.currentHandIndex = p, h
	}
	s.intent = ActionNone
	s.legalActions = e.legalActions()
}

func (e *Engine) exitPhase(phase entities.Phase) {
	if phase == entities.PhaseRoundEnd {
		e.recordRound()
	}
}

// advanceSeat moves the turn to the next player hand, or transitions to
// then when every hand has been visited
func (e *Engine) advanceSeat(then entities.Phase) {
	s := e.state
	p, h, ok := nextSeat(s.handCounts(), s.currentPlayerIndex, s.currentHandIndex)
	if !ok {
		e.transition(then)
		return
	}
	s.currentPlayerIndex, s.currentHandIndex = p, h
	s.intent = ActionNone
	s.legalActions = e.legalActions()
}

// legalActions computes what the current player may submit
func (e *Engine) legalActions() []PlayerAction {
	s := e.state
	if !s.seated() {
		return nil
	}
	player := s.currentPlayer()

	switch s.phase {
	case entities.PhaseBetting:
		if player.Bankroll.IsPositive() {
			return []PlayerAction{ActionBet}
		}
		return nil
	case entities.PhasePlayerTurns:
		hand := s.currentHand()
		if hand.Len() < 2 || hand.Bust() || hand.Natural() {
			return nil
		}
		actions := []PlayerAction{ActionHit, ActionStand}
		i := s.findBet(s.currentPlayerIndex, s.currentHandIndex)
		if i < 0 || !player.CanAfford(s.activeBets[i].Amount) {
			return actions
		}
		if CanDoubleDown(hand.cards) {
			actions = append(actions, ActionDoubleDown)
		}
		if CanSplit(hand.cards, len(player.Hands)) {
			actions = append(actions, ActionSplit)
		}
		return actions
	default:
		return nil
	}
}

// consumeIntent takes the pending intent and memoizes who acted
func (e *Engine) consumeIntent() PlayerAction {
	s := e.state
	action := s.intent
	s.intent = ActionNone
	s.lastPlayerIntent = action
	s.lastPlayerIndex = s.currentPlayerIndex
	s.lastHandIndex = s.currentHandIndex
	return action
}

func (e *Engine) advanceBetting() error {
	s := e.state
	if s.activePlayerCount() == 0 {
		return types.NewGameError(types.ErrNoActivePlayers, "every player is out of money")
	}
	if s.intent == ActionNone {
		return nil
	}

	e.consumeIntent()
	player := s.currentPlayer()
	amount := decimal.Min(player.Bankroll, e.betAmount)
	player.Debit(amount)
	s.activeBets = append(s.activeBets, NewBet(s.currentPlayerIndex, 0, amount, entities.BetNormal))
	e.logger.Debug("%s bets %s", player.Name, amount.StringFixed(2))

	e.advanceSeat(entities.PhaseDealing)
	return nil
}

// advanceDealing deals one card: each player's first card, the dealer's up
// card, each player's second card, then the dealer's hole card face down
func (e *Engine) advanceDealing() error {
	s := e.state
	pass := s.dealer.Len()

	for i, player := range s.players {
		if player.SittingOut || player.Hands[0].Len() != pass {
			continue
		}
		card, err := e.draw()
		if err != nil {
			return e.abortRound(err)
		}
		player.Hands[0].Add(card)
		s.lastPlayerIndex, s.lastHandIndex = i, 0
		return nil
	}

	card, err := e.draw()
	if err != nil {
		return e.abortRound(err)
	}
	if pass == 1 {
		card.FaceUp = false
		s.lastDrawnCard = &entities.Card{FaceUp: false}
	}
	s.dealer.Add(card)

	if s.dealer.Len() < 2 {
		return nil
	}
	for _, player := range s.players {
		if !player.SittingOut && player.Hands[0].Natural() {
			e.transition(entities.PhaseNaturals)
			return nil
		}
	}
	e.transition(entities.PhasePlayerTurns)
	return nil
}

// advanceNaturals first peeks at the dealer's hole card, then settles one
// player natural per call
func (e *Engine) advanceNaturals() error {
	s := e.state
	if !s.dealerPeeked {
		s.dealerPeeked = true
		s.lastDealerAction = DealerPeek
		if s.dealer.Natural() {
			s.dealer.RevealAll()
			e.logger.Debug("Round %d: dealer has a natural", s.roundNumber)
			e.transition(entities.PhaseRoundEnd)
		}
		return nil
	}

	for i, bet := range s.activeBets {
		if s.players[bet.PlayerIndex].Hands[bet.HandIndex].Natural() {
			e.settle(s.removeBet(i), entities.ResolutionNatural)
			return nil
		}
	}

	if len(s.activeBets) == 0 {
		e.transition(entities.PhaseRoundEnd)
		return nil
	}
	e.transition(entities.PhasePlayerTurns)
	return nil
}

func (e *Engine) advancePlayerTurns() error {
	s := e.state
	if s.seated() && s.currentHand().Len() == 1 {
		return e.completeSplitHand()
	}
	if !s.seated() || len(s.legalActions) == 0 {
		e.advanceSeat(entities.PhaseDealerTurn)
		return nil
	}
	if s.intent == ActionNone {
		return nil
	}

	p, h := s.currentPlayerIndex, s.currentHandIndex
	player := s.currentPlayer()
	hand := s.currentHand()

	switch s.intent {
	case ActionHit:
		card, err := e.draw()
		if err != nil {
			return e.abortRound(err)
		}
		e.consumeIntent()
		hand.Add(card)
		if hand.Bust() {
			e.advanceSeat(entities.PhaseDealerTurn)
			return nil
		}
		s.legalActions = e.legalActions()

	case ActionStand:
		e.consumeIntent()
		e.advanceSeat(entities.PhaseDealerTurn)

	case ActionDoubleDown:
		i := s.findBet(p, h)
		if i < 0 {
			return e.missingBet(p, h)
		}
		card, err := e.draw()
		if err != nil {
			return e.abortRound(err)
		}
		e.consumeIntent()
		old := s.removeBet(i)
		s.activeBets = append(s.activeBets, NewBet(p, h, old.Amount.Mul(decimal.NewFromInt(2)), entities.BetDoubleDown))
		player.Debit(old.Amount)
		hand.Add(card)
		e.advanceSeat(entities.PhaseDealerTurn)

	case ActionSplit:
		i := s.findBet(p, h)
		if i < 0 {
			return e.missingBet(p, h)
		}
		e.consumeIntent()
		old := s.removeBet(i)
		moved, _ := hand.RemoveLast()
		split := NewHand()
		split.Add(moved)
		player.Hands = append(player.Hands, split)
		player.Debit(old.Amount)
		s.activeBets = append(s.activeBets,
			NewBet(p, h, old.Amount, entities.BetSplit),
			NewBet(p, len(player.Hands)-1, old.Amount, entities.BetSplit))
		s.legalActions = e.legalActions()

	default:
		action := e.consumeIntent()
		return types.NewGameErrorf(types.ErrIllegalAction, "%s is not a turn action", action)
	}
	return nil
}

// completeSplitHand deals the second card to a split hand once its turn comes up
func (e *Engine) completeSplitHand() error {
	s := e.state
	card, err := e.draw()
	if err != nil {
		return e.abortRound(err)
	}
	s.currentHand().Add(card)
	s.lastPlayerIndex, s.lastHandIndex = s.currentPlayerIndex, s.currentHandIndex
	s.legalActions = e.legalActions()
	return nil
}

// advanceDealerTurn alternates between deciding the dealer's next action
// and carrying it out, so each call is one visible event
func (e *Engine) advanceDealerTurn() error {
	s := e.state
	if s.dealerAction == DealerNone {
		s.dealerAction = e.decideDealerAction()
		return nil
	}

	action := s.dealerAction
	s.dealerAction = DealerNone
	s.lastDealerAction = action

	switch action {
	case DealerShowFaceDown:
		s.dealer.RevealAll()
	case DealerDraw:
		card, err := e.draw()
		if err != nil {
			return e.abortRound(err)
		}
		s.dealer.Add(card)
	case DealerStand:
		e.transition(entities.PhaseRoundEnd)
	}
	return nil
}

func (e *Engine) decideDealerAction() DealerAction {
	s := e.state
	switch {
	case s.dealer.HasFaceDown():
		return DealerShowFaceDown
	case DealerShouldDraw(s.dealer.cards):
		return DealerDraw
	default:
		return DealerStand
	}
}

// advanceRoundEnd resolves the first unresolved bet in player then hand order
func (e *Engine) advanceRoundEnd() error {
	s := e.state
	for p, player := range s.players {
		for h := range player.Hands {
			i := s.findBet(p, h)
			if i < 0 {
				continue
			}
			bet := s.removeBet(i)
			e.settle(bet, resolveBet(bet, player.Hands[h].cards, s.dealer.cards))
			return nil
		}
	}

	e.transition(entities.PhaseBetting)
	return nil
}

package blackjack

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fadedpez/twentyone/internal/types"
	"github.com/fadedpez/twentyone/pkg/entities"
)

// resolveBet decides a bet against the dealer's final hand. Busted is
// checked first, so a bust player loses even when the dealer busts too.
func resolveBet(bet *Bet, hand, dealer []entities.Card) entities.Resolution {
	handValue := HandValue(hand)
	dealerValue := HandValue(dealer)

	switch {
	case handValue > BlackjackValue:
		return entities.ResolutionBusted
	case dealerValue > BlackjackValue || handValue > dealerValue:
		if bet.Type == entities.BetDoubleDown {
			return entities.ResolutionDoubleDownWin
		}
		return entities.ResolutionWin
	case handValue == dealerValue:
		return entities.ResolutionStandoff
	default:
		return entities.ResolutionLose
	}
}

// payoutFor returns what is credited back to the bankroll, stake included
func payoutFor(amount decimal.Decimal, resolution entities.Resolution) decimal.Decimal {
	switch resolution {
	case entities.ResolutionNatural:
		return amount.Add(amount.Mul(NaturalPayoutMultiplier))
	case entities.ResolutionWin, entities.ResolutionDoubleDownWin:
		return amount.Mul(decimal.NewFromInt(2))
	case entities.ResolutionStandoff:
		return amount
	default:
		return decimal.Zero
	}
}

// settle writes the resolution on a bet already removed from the active
// set, pays the player and moves table winnings
func (e *Engine) settle(bet *Bet, resolution entities.Resolution) {
	s := e.state
	player := s.players[bet.PlayerIndex]
	hand := player.Hands[bet.HandIndex]

	payout := payoutFor(bet.Amount, resolution)
	player.Credit(payout)
	switch {
	case resolution.HouseWins():
		s.tableWinnings = s.tableWinnings.Add(bet.Amount)
	case resolution.IsWin():
		s.tableWinnings = s.tableWinnings.Sub(payout.Sub(bet.Amount))
	}
	bet.Resolution = resolution

	s.settled = append(s.settled, &entities.BetResult{
		RoundID:    s.roundID,
		PlayerName: player.Name,
		HandIndex:  bet.HandIndex,
		Cards:      hand.Cards(),
		HandValue:  hand.Value(),
		Type:       bet.Type,
		Amount:     bet.Amount,
		Resolution: resolution,
		Payout:     payout,
	})

	view := newBetView(bet, player.Name, payout)
	s.lastResolvedBet = &view
	s.lastPlayerIndex, s.lastHandIndex = bet.PlayerIndex, bet.HandIndex

	e.logger.Debug("%s hand %d: %d vs dealer %d, %s on %s, paid %s",
		player.Name, bet.HandIndex+1, hand.Value(), s.dealer.Value(), resolution, bet.Amount.StringFixed(2), payout.StringFixed(2))
}

// recordRound closes the books on a completed round and saves it to the
// repository when one is configured. Failures are logged, never returned.
func (e *Engine) recordRound() {
	s := e.state
	s.roundsCompleted++

	result := &entities.RoundResult{
		ID:          s.roundID,
		SessionID:   s.sessionID,
		Number:      s.roundNumber,
		StartedAt:   s.startedAt,
		CompletedAt: e.clock.Now(),
		DealerCards: s.dealer.Cards(),
		DealerValue: s.dealer.Value(),
		DealerBust:  s.dealer.Bust(),
		Bets:        s.settled,
	}
	if result.Bets == nil {
		result.Bets = []*entities.BetResult{}
	}
	s.settled = nil

	e.logger.Debug("Round %d complete: dealer %d, %d bets settled, table winnings %s",
		result.Number, result.DealerValue, len(result.Bets), s.tableWinnings.StringFixed(2))

	if e.repo == nil {
		return
	}
	if err := e.repo.SaveRoundResult(context.Background(), result); err != nil {
		e.logger.LogError(types.WrapError(types.ErrDatabaseError, "failed to record round history", err))
	}
}

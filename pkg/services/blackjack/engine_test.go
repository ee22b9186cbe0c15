package blackjack

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/fadedpez/twentyone/internal/logging"
	"github.com/fadedpez/twentyone/internal/types"
	"github.com/fadedpez/twentyone/pkg/entities"
	mock_game "github.com/fadedpez/twentyone/pkg/repositories/game/mock"
)

type EngineTestSuite struct {
	suite.Suite
	clock  *quartz.Mock
	engine *Engine
}

func (s *EngineTestSuite) SetupTest() {
	s.clock = quartz.NewMock(s.T())
	s.engine = s.newEngine()
}

func (s *EngineTestSuite) newEngine(opts ...Option) *Engine {
	base := []Option{
		WithRand(rand.New(rand.NewPCG(7, 11))),
		WithClock(s.clock),
		WithLogger(logging.Discard),
		WithBetAmount(decimal.NewFromInt(10)),
	}
	return NewEngine(append(base, opts...)...)
}

func (s *EngineTestSuite) start(players int) Snapshot {
	return s.engine.StartNewGame(players, decimal.NewFromInt(500), 1)
}

// rig stacks the shoe so the next deal gives each player and the dealer
// the listed two cards, followed by extra
func (s *EngineTestSuite) rig(dealer [2]entities.Rank, players [][2]entities.Rank, extra ...entities.Rank) {
	var order []entities.Rank
	for pass := 0; pass < 2; pass++ {
		for _, hand := range players {
			order = append(order, hand[pass])
		}
		order = append(order, dealer[pass])
	}
	order = append(order, extra...)
	s.engine.state.shoe.Stack(cardsOf(order...)...)
}

func (s *EngineTestSuite) advance() {
	s.Require().NoError(s.engine.Advance())
}

func (s *EngineTestSuite) act(action PlayerAction) {
	s.Require().True(s.engine.SubmitPlayerIntent(action), "intent %s rejected, legal %v", action, s.engine.Snapshot().LegalActions)
	s.advance()
}

func (s *EngineTestSuite) betAll() {
	for s.engine.Snapshot().Phase == entities.PhaseBetting {
		s.act(ActionBet)
	}
}

func (s *EngineTestSuite) dealAll() {
	for s.engine.Snapshot().Phase == entities.PhaseDealing {
		s.advance()
	}
}

// advanceUntil steps until the phase is reached, failing after a bounded number of steps
func (s *EngineTestSuite) advanceUntil(phase entities.Phase) {
	for i := 0; i < 50; i++ {
		if s.engine.Snapshot().Phase == phase {
			return
		}
		s.advance()
	}
	s.FailNow("phase not reached", "wanted %s, still in %s", phase, s.engine.Snapshot().Phase)
}

func (s *EngineTestSuite) assertMoney(expected int64, actual decimal.Decimal, msgAndArgs ...interface{}) {
	s.Truef(decimal.NewFromInt(expected).Equal(actual), "expected %d, got %s %v", expected, actual.String(), msgAndArgs)
}

func (s *EngineTestSuite) TestAdvanceBeforeStart() {
	// Execute
	err := s.engine.Advance()

	// Assert
	s.True(types.IsGameError(err, types.ErrGameNotStarted))
	s.False(s.engine.SubmitPlayerIntent(ActionBet))
	s.False(s.engine.Snapshot().Started)
	s.Empty(s.engine.SessionID())
}

func (s *EngineTestSuite) TestStartNewGame() {
	// Execute
	snap := s.engine.StartNewGame(3, decimal.NewFromInt(500), 2)

	// Assert
	s.True(snap.Started)
	s.NotEmpty(snap.SessionID)
	s.NotEmpty(snap.RoundID)
	s.Equal(1, snap.RoundNumber)
	s.Equal(entities.PhaseBetting, snap.Phase)
	s.Require().Len(snap.Players, 3)
	s.Equal("Player 1", snap.Players[0].Name)
	s.Equal("Player 3", snap.Players[2].Name)
	for _, player := range snap.Players {
		s.assertMoney(500, player.Bankroll)
		s.Len(player.Hands, 1)
		s.Empty(player.Hands[0].Cards)
	}
	s.Equal([]PlayerAction{ActionBet}, snap.LegalActions)
	s.True(snap.AwaitingInput)
	s.Equal(104, snap.Shoe.Total)
	s.Equal(104, snap.Shoe.Undealt)
	s.False(s.engine.state.shoe.NeedsShuffle())
}

func (s *EngineTestSuite) TestStartNewGameClampsPlayerCount() {
	s.Len(s.engine.StartNewGame(0, decimal.NewFromInt(100), 1).Players, MinPlayers)
	s.Len(s.engine.StartNewGame(9, decimal.NewFromInt(100), 1).Players, MaxPlayers)
}

func (s *EngineTestSuite) TestSubmitPlayerIntentRejections() {
	// Setup
	s.start(1)

	// Assert
	s.False(s.engine.SubmitPlayerIntent(ActionStand), "stand is not legal while betting")
	s.False(s.engine.SubmitPlayerIntent(ActionNone))
	s.True(s.engine.SubmitPlayerIntent(ActionBet))
	s.False(s.engine.SubmitPlayerIntent(ActionBet), "an intent is already pending")

	snap := s.engine.Snapshot()
	s.Equal(ActionBet, snap.PendingIntent)
	s.False(snap.AwaitingInput)
}

func (s *EngineTestSuite) TestBettingDebitsAndAdvancesSeat() {
	// Setup
	s.start(2)

	// Execute
	s.act(ActionBet)
	afterFirst := s.engine.Snapshot()
	s.act(ActionBet)
	afterSecond := s.engine.Snapshot()

	// Assert
	s.Equal(entities.PhaseBetting, afterFirst.Phase)
	s.Equal(1, afterFirst.CurrentPlayerIndex)
	s.assertMoney(490, afterFirst.Players[0].Bankroll)
	s.Equal(ActionBet, afterFirst.LastPlayerIntent)
	s.Equal(0, afterFirst.LastPlayerIndex)

	s.Equal(entities.PhaseDealing, afterSecond.Phase)
	s.Require().Len(afterSecond.ActiveBets, 2)
	s.Equal(entities.BetNormal, afterSecond.ActiveBets[1].Type)
	s.assertMoney(10, afterSecond.ActiveBets[1].Amount)
}

func (s *EngineTestSuite) TestAdvanceWithoutIntentWaits() {
	// Setup
	s.start(1)

	// Execute
	s.advance()

	// Assert
	snap := s.engine.Snapshot()
	s.Equal(entities.PhaseBetting, snap.Phase)
	s.Empty(snap.ActiveBets)
	s.True(snap.AwaitingInput)
}

func (s *EngineTestSuite) TestBetCappedByBankroll() {
	// Setup
	s.engine.StartNewGame(1, decimal.NewFromInt(5), 1)

	// Execute
	s.act(ActionBet)

	// Assert
	snap := s.engine.Snapshot()
	s.assertMoney(0, snap.Players[0].Bankroll)
	s.Require().Len(snap.ActiveBets, 1)
	s.assertMoney(5, snap.ActiveBets[0].Amount)
}

func (s *EngineTestSuite) TestDealingOrder() {
	// Setup
	s.start(2)
	s.rig([2]entities.Rank{entities.Nine, entities.King},
		[][2]entities.Rank{{entities.Two, entities.Four}, {entities.Three, entities.Five}})
	s.betAll()

	// Execute
	s.advance()
	first := s.engine.Snapshot()
	s.advance()
	s.advance()
	dealerUp := s.engine.Snapshot()
	s.dealAll()
	dealt := s.engine.Snapshot()

	// Assert
	s.Equal(entities.PhaseDealing, first.Phase)
	s.Len(first.Players[0].Hands[0].Cards, 1)
	s.Empty(first.Players[1].Hands[0].Cards)
	s.Equal(0, first.LastPlayerIndex)

	s.Require().Len(dealerUp.Dealer.Cards, 1)
	s.Equal(entities.Nine, dealerUp.Dealer.Cards[0].Rank)

	s.Equal(entities.PhasePlayerTurns, dealt.Phase)
	s.Equal(cardsOf(entities.Two, entities.Four), dealt.Players[0].Hands[0].Cards)
	s.Equal(cardsOf(entities.Three, entities.Five), dealt.Players[1].Hands[0].Cards)

	s.Require().Len(dealt.Dealer.Cards, 2)
	s.True(dealt.Dealer.Cards[0].FaceUp)
	s.False(dealt.Dealer.Cards[1].FaceUp)
	s.Empty(dealt.Dealer.Cards[1].Rank, "hole card is hidden from snapshots")
	s.Equal(9, dealt.Dealer.Value)
	s.Equal(19, s.engine.state.dealer.Value())
}

func (s *EngineTestSuite) TestNaturalsPhaseSettlesPlayerNatural() {
	// Setup
	s.start(2)
	s.rig([2]entities.Rank{entities.Nine, entities.Seven},
		[][2]entities.Rank{{entities.Ace, entities.King}, {entities.Ten, entities.Nine}},
		entities.Two)
	s.betAll()

	// Execute
	s.dealAll()
	dealt := s.engine.Snapshot()
	s.advance()
	peeked := s.engine.Snapshot()
	s.advance()
	settled := s.engine.Snapshot()
	s.advance()
	turns := s.engine.Snapshot()

	// Assert
	s.Equal(entities.PhaseNaturals, dealt.Phase)

	s.Equal(entities.PhaseNaturals, peeked.Phase)
	s.Equal(DealerPeek, peeked.LastDealerAction)

	s.Require().NotNil(settled.LastResolvedBet)
	s.Equal(entities.ResolutionNatural, settled.LastResolvedBet.Resolution)
	s.assertMoney(25, settled.LastResolvedBet.Payout)
	s.assertMoney(515, settled.Players[0].Bankroll)
	s.assertMoney(-15, settled.TableWinnings)
	s.Len(settled.ActiveBets, 1)

	s.Equal(entities.PhasePlayerTurns, turns.Phase)
	s.Empty(turns.LegalActions, "the settled natural has nothing to play")

	// The natural hand is skipped and player 2 plays on
	s.advance()
	s.Equal(1, s.engine.Snapshot().CurrentPlayerIndex)
	s.act(ActionStand)
	s.advanceUntil(entities.PhaseRoundEnd)
	s.advanceUntil(entities.PhaseBetting)

	final := s.engine.Snapshot()
	s.Equal(1, final.RoundsCompleted)
	s.assertMoney(515, final.Players[0].Bankroll)
	s.assertMoney(510, final.Players[1].Bankroll, "19 beats dealer 18")
	s.assertMoney(-25, final.TableWinnings)
}

func (s *EngineTestSuite) TestNaturalsPhaseEndsRoundWhenOnlyNaturalsBet() {
	// Setup
	s.start(1)
	s.rig([2]entities.Rank{entities.Nine, entities.Seven},
		[][2]entities.Rank{{entities.Ace, entities.Queen}})
	s.betAll()
	s.dealAll()

	// Execute
	s.advance()
	s.advance()
	s.advance()

	// Assert
	snap := s.engine.Snapshot()
	s.Equal(entities.PhaseRoundEnd, snap.Phase)
	s.Empty(snap.ActiveBets)
	s.True(snap.Dealer.Cards[1].FaceUp)
	s.assertMoney(515, snap.Players[0].Bankroll)
}

func (s *EngineTestSuite) TestDealerNaturalEndsRound() {
	// Setup
	s.start(2)
	s.rig([2]entities.Rank{entities.Ace, entities.Queen},
		[][2]entities.Rank{{entities.Ace, entities.King}, {entities.Ten, entities.Nine}})
	s.betAll()
	s.dealAll()

	// Execute
	s.advance()
	peeked := s.engine.Snapshot()
	s.advance()
	first := s.engine.Snapshot()
	s.advance()
	second := s.engine.Snapshot()
	s.advance()

	// Assert
	s.Equal(entities.PhaseRoundEnd, peeked.Phase)
	s.Equal(21, peeked.Dealer.Value)

	s.Equal(entities.ResolutionStandoff, first.LastResolvedBet.Resolution)
	s.assertMoney(500, first.Players[0].Bankroll)

	s.Equal(entities.ResolutionLose, second.LastResolvedBet.Resolution)
	s.assertMoney(490, second.Players[1].Bankroll)
	s.assertMoney(10, second.TableWinnings)

	s.Equal(entities.PhaseBetting, s.engine.Snapshot().Phase)
	s.Equal(2, s.engine.Snapshot().RoundNumber)
}

func (s *EngineTestSuite) TestNoNaturalsGoesStraightToPlayerTurns() {
	// Setup
	s.start(1)
	s.rig([2]entities.Rank{entities.Ace, entities.King},
		[][2]entities.Rank{{entities.Ten, entities.Nine}})
	s.betAll()

	// Execute
	s.dealAll()

	// Assert
	snap := s.engine.Snapshot()
	s.Equal(entities.PhasePlayerTurns, snap.Phase, "a dealer natural alone does not open the naturals phase")
	s.Equal([]PlayerAction{ActionHit, ActionStand}, snap.LegalActions)
}

func (s *EngineTestSuite) TestTurnOrderAfterSplit() {
	// Setup
	s.start(2)
	s.rig([2]entities.Rank{entities.Ten, entities.Six},
		[][2]entities.Rank{{entities.Eight, entities.Eight}, {entities.Ten, entities.Seven}},
		entities.Three, entities.Two)
	s.betAll()
	s.dealAll()
	s.Require().Contains(s.engine.Snapshot().LegalActions, ActionSplit)

	// Execute
	s.act(ActionSplit)
	split := s.engine.Snapshot()
	s.advance()
	firstDealt := s.engine.Snapshot()

	var visited []seat
	var secondBeforeTurn []entities.Card
	for s.engine.Snapshot().Phase == entities.PhasePlayerTurns {
		snap := s.engine.Snapshot()
		if !snap.AwaitingInput {
			s.advance()
			continue
		}
		visited = append(visited, seat{snap.CurrentPlayerIndex, snap.CurrentHandIndex})
		if snap.CurrentHandIndex == 0 && snap.CurrentPlayerIndex == 0 {
			secondBeforeTurn = snap.Players[0].Hands[1].Cards
		}
		s.act(ActionStand)
	}
	final := s.engine.Snapshot()

	// Assert
	s.Require().Len(split.Players[0].Hands, 2)
	s.Equal(cardsOf(entities.Eight), split.Players[0].Hands[0].Cards)
	s.Equal(cardsOf(entities.Eight), split.Players[0].Hands[1].Cards)
	s.assertMoney(480, split.Players[0].Bankroll)
	s.Equal(0, split.CurrentHandIndex, "split does not advance the turn")
	s.Empty(split.LegalActions)
	s.False(split.AwaitingInput)

	splitBets := 0
	for _, bet := range split.ActiveBets {
		if bet.Type == entities.BetSplit {
			splitBets++
			s.assertMoney(10, bet.Amount)
		}
	}
	s.Equal(2, splitBets)

	s.Equal(cardsOf(entities.Eight, entities.Three), firstDealt.Players[0].Hands[0].Cards)
	s.Equal(0, firstDealt.CurrentHandIndex)
	s.Equal([]PlayerAction{ActionHit, ActionStand, ActionDoubleDown}, firstDealt.LegalActions)
	s.Equal(cardsOf(entities.Eight), secondBeforeTurn, "second hand waits for its turn")
	s.Equal(cardsOf(entities.Eight, entities.Two), final.Players[0].Hands[1].Cards)

	s.Equal([]seat{{0, 0}, {0, 1}, {1, 0}}, visited)
	s.Equal(entities.PhaseDealerTurn, final.Phase)
}

func (s *EngineTestSuite) TestSplitRequiresBankroll() {
	// Setup
	s.engine.StartNewGame(1, decimal.NewFromInt(10), 1)
	s.rig([2]entities.Rank{entities.Ten, entities.Six},
		[][2]entities.Rank{{entities.Five, entities.Five}})
	s.betAll()

	// Execute
	s.dealAll()

	// Assert
	snap := s.engine.Snapshot()
	s.Equal([]PlayerAction{ActionHit, ActionStand}, snap.LegalActions)
	s.False(s.engine.SubmitPlayerIntent(ActionSplit))
	s.False(s.engine.SubmitPlayerIntent(ActionDoubleDown))
}

func (s *EngineTestSuite) TestDoubleDownDealsOneCard() {
	// Setup
	s.start(1)
	s.rig([2]entities.Rank{entities.Ten, entities.Seven},
		[][2]entities.Rank{{entities.Six, entities.Five}},
		entities.Ten)
	s.betAll()
	s.dealAll()

	// Execute
	s.act(ActionDoubleDown)
	doubled := s.engine.Snapshot()

	// Assert
	s.Equal(entities.PhaseDealerTurn, doubled.Phase)
	s.Equal(cardsOf(entities.Six, entities.Five, entities.Ten), doubled.Players[0].Hands[0].Cards)
	s.assertMoney(480, doubled.Players[0].Bankroll)
	s.Require().Len(doubled.ActiveBets, 1)
	s.Equal(entities.BetDoubleDown, doubled.ActiveBets[0].Type)
	s.assertMoney(20, doubled.ActiveBets[0].Amount)
	s.False(s.engine.SubmitPlayerIntent(ActionHit))

	// Dealer reveals 17 and stands
	s.advance()
	s.Equal(DealerShowFaceDown, s.engine.Snapshot().DealerPendingAction)
	s.advance()
	s.Equal(DealerShowFaceDown, s.engine.Snapshot().LastDealerAction)
	s.advance()
	s.Equal(DealerStand, s.engine.Snapshot().DealerPendingAction)
	s.advance()
	s.Equal(entities.PhaseRoundEnd, s.engine.Snapshot().Phase)

	s.advance()
	resolved := s.engine.Snapshot()
	s.Equal(entities.ResolutionDoubleDownWin, resolved.LastResolvedBet.Resolution)
	s.assertMoney(520, resolved.Players[0].Bankroll)
	s.assertMoney(-20, resolved.TableWinnings)
}

func (s *EngineTestSuite) TestDealerDrawsWhenEveryHandBusts() {
	// Setup
	s.start(1)
	s.rig([2]entities.Rank{entities.Ten, entities.Two},
		[][2]entities.Rank{{entities.Ten, entities.Six}},
		entities.King, entities.Five)
	s.betAll()
	s.dealAll()

	// Execute
	s.act(ActionHit)
	hit := s.engine.Snapshot()
	var dealerActions []DealerAction
	for s.engine.Snapshot().Phase == entities.PhaseDealerTurn {
		s.advance()
		if action := s.engine.Snapshot().LastDealerAction; action != DealerNone {
			dealerActions = append(dealerActions, action)
		}
	}
	dealer := s.engine.Snapshot().Dealer
	s.advance()
	resolved := s.engine.Snapshot()

	// Assert
	s.Equal(entities.PhaseDealerTurn, hit.Phase)
	s.True(hit.Players[0].Hands[0].Bust)
	s.Require().NotNil(hit.LastDrawnCard)
	s.Equal(entities.King, hit.LastDrawnCard.Rank)

	s.Equal([]DealerAction{DealerShowFaceDown, DealerDraw, DealerStand}, dealerActions)
	s.Equal(cardsOf(entities.Ten, entities.Two, entities.Five), dealer.Cards)
	s.GreaterOrEqual(dealer.Value, DealerStandThreshold)

	s.Equal(entities.ResolutionBusted, resolved.LastResolvedBet.Resolution)
	s.assertMoney(490, resolved.Players[0].Bankroll)
	s.assertMoney(10, resolved.TableWinnings)
}

func (s *EngineTestSuite) TestHitKeepsTurnUntilBust() {
	// Setup
	s.start(1)
	s.rig([2]entities.Rank{entities.Ten, entities.Seven},
		[][2]entities.Rank{{entities.Two, entities.Three}},
		entities.Four)
	s.betAll()
	s.dealAll()

	// Execute
	s.act(ActionHit)

	// Assert
	snap := s.engine.Snapshot()
	s.Equal(entities.PhasePlayerTurns, snap.Phase)
	s.Equal(9, snap.Players[0].Hands[0].Value)
	s.Equal([]PlayerAction{ActionHit, ActionStand}, snap.LegalActions, "no double down on three cards")
}

func (s *EngineTestSuite) TestDealerDrawsBelowSeventeen() {
	// Setup
	s.start(1)
	s.rig([2]entities.Rank{entities.Ten, entities.Two},
		[][2]entities.Rank{{entities.Ten, entities.Nine}},
		entities.Five)
	s.betAll()
	s.dealAll()
	s.act(ActionStand)

	// Execute
	var actions []DealerAction
	for s.engine.Snapshot().Phase == entities.PhaseDealerTurn {
		s.advance()
		if last := s.engine.Snapshot().LastDealerAction; last != DealerNone {
			actions = append(actions, last)
		}
	}

	// Assert
	s.Equal([]DealerAction{DealerShowFaceDown, DealerDraw, DealerStand}, actions)
	s.Equal(17, s.engine.Snapshot().Dealer.Value)
	s.advance()
	s.Equal(entities.ResolutionWin, s.engine.Snapshot().LastResolvedBet.Resolution)
	s.assertMoney(510, s.engine.Snapshot().Players[0].Bankroll)
}

func (s *EngineTestSuite) TestRoundEndSettlement() {
	// Setup
	s.start(3)
	state := s.engine.state
	state.dealer = handOf(cardsOf(entities.King, entities.Queen)...)
	hands := [][]entities.Card{
		cardsOf(entities.Ten, entities.Eight),
		cardsOf(entities.Ten, entities.King),
		cardsOf(entities.Ten, entities.Six, entities.King),
	}
	for i, cards := range hands {
		state.players[i].Hands = []*Hand{handOf(cards...)}
		state.players[i].Debit(decimal.NewFromInt(10))
		state.activeBets = append(state.activeBets, NewBet(i, 0, decimal.NewFromInt(10), entities.BetNormal))
	}
	state.phase = entities.PhaseRoundEnd

	// Execute
	var resolutions []entities.Resolution
	for len(s.engine.Snapshot().ActiveBets) > 0 {
		s.advance()
		resolutions = append(resolutions, s.engine.Snapshot().LastResolvedBet.Resolution)
	}
	snap := s.engine.Snapshot()

	// Assert
	s.Equal([]entities.Resolution{entities.ResolutionLose, entities.ResolutionStandoff, entities.ResolutionBusted}, resolutions)
	s.assertMoney(490, snap.Players[0].Bankroll)
	s.assertMoney(500, snap.Players[1].Bankroll)
	s.assertMoney(490, snap.Players[2].Bankroll)
	s.assertMoney(20, snap.TableWinnings)
}

func (s *EngineTestSuite) TestRoundEndPaysAgainstDealerBust() {
	// Setup
	s.start(1)
	state := s.engine.state
	state.dealer = handOf(cardsOf(entities.King, entities.Six, entities.Nine)...)
	state.players[0].Hands = []*Hand{handOf(cardsOf(entities.Seven, entities.Four, entities.King)...)}
	state.players[0].Debit(decimal.NewFromInt(10))
	state.activeBets = []*Bet{NewBet(0, 0, decimal.NewFromInt(10), entities.BetNormal)}
	state.phase = entities.PhaseRoundEnd

	// Execute
	s.advance()

	// Assert
	snap := s.engine.Snapshot()
	s.Equal(entities.ResolutionWin, snap.LastResolvedBet.Resolution)
	s.assertMoney(510, snap.Players[0].Bankroll)
	s.assertMoney(-10, snap.TableWinnings)
}

func (s *EngineTestSuite) TestMissingBetIsReported() {
	// Setup
	s.start(1)
	s.rig([2]entities.Rank{entities.Ten, entities.Seven},
		[][2]entities.Rank{{entities.Five, entities.Five}})
	s.betAll()
	s.dealAll()
	s.Require().True(s.engine.SubmitPlayerIntent(ActionDoubleDown))
	s.engine.state.activeBets = nil

	// Execute
	err := s.engine.Advance()

	// Assert
	s.True(types.IsGameError(err, types.ErrMissingBet))
	snap := s.engine.Snapshot()
	s.Equal(entities.PhasePlayerTurns, snap.Phase)
	s.Len(snap.Players[0].Hands[0].Cards, 2)
	s.Equal(ActionNone, snap.PendingIntent)
}

func (s *EngineTestSuite) TestShoeExhaustionAbortsRound() {
	// Setup
	s.start(1)
	s.betAll()
	shoe := entities.NewShoeWithRand(1, rand.New(rand.NewPCG(1, 2)))
	shoe.Shuffle()
	for shoe.UndealtCardCount() > 0 {
		_, err := shoe.Deal()
		s.Require().NoError(err)
	}
	shoe.Stack(cardsOf(entities.Two, entities.Three)...)
	s.engine.state.shoe = shoe

	// Execute
	s.advance()
	s.advance()
	err := s.engine.Advance()

	// Assert
	s.True(types.IsGameError(err, types.ErrShoeExhausted))
	s.True(errors.Is(err, entities.ErrShoeExhausted))
	snap := s.engine.Snapshot()
	s.Equal(entities.PhaseBetting, snap.Phase)
	s.Equal(2, snap.RoundNumber)
	s.Equal(0, snap.RoundsCompleted)
	s.Empty(snap.ActiveBets)
	s.assertMoney(500, snap.Players[0].Bankroll, "stake refunded")
	s.Empty(snap.Players[0].Hands[0].Cards)
	s.Equal(52, snap.Shoe.Undealt, "shoe reshuffled for the next round")
}

func (s *EngineTestSuite) TestSittingOutPlayers() {
	// Setup
	s.engine.StartNewGame(2, decimal.Zero, 1)

	// Execute
	err := s.engine.Advance()

	// Assert
	s.True(types.IsGameError(err, types.ErrNoActivePlayers))
	snap := s.engine.Snapshot()
	s.True(snap.Players[0].SittingOut)
	s.True(snap.Players[1].SittingOut)
	s.Empty(snap.LegalActions)
}

func (s *EngineTestSuite) TestBrokePlayerSitsOutNextRound() {
	// Setup
	s.engine.StartNewGame(2, decimal.NewFromInt(10), 1)
	s.rig([2]entities.Rank{entities.Ten, entities.Queen},
		[][2]entities.Rank{{entities.Ten, entities.Eight}, {entities.Ten, entities.Nine}})
	s.betAll()
	s.dealAll()
	s.act(ActionStand)
	s.act(ActionStand)

	// Execute
	s.advanceUntil(entities.PhaseRoundEnd)
	s.advanceUntil(entities.PhaseBetting)

	// Assert
	snap := s.engine.Snapshot()
	s.True(snap.Players[0].SittingOut)
	s.True(snap.Players[1].SittingOut)
	s.True(types.IsGameError(s.engine.Advance(), types.ErrNoActivePlayers))
}

func (s *EngineTestSuite) TestRoundRecordedToRepository() {
	// Setup
	ctrl := gomock.NewController(s.T())
	repo := mock_game.NewMockRepository(ctrl)
	s.engine = s.newEngine(WithRepository(repo))

	startedAt := s.clock.Now()
	var saved *entities.RoundResult
	repo.EXPECT().
		SaveRoundResult(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, result *entities.RoundResult) error {
			saved = result
			return nil
		}).
		Times(1)

	snap := s.start(1)
	s.rig([2]entities.Rank{entities.Ten, entities.King},
		[][2]entities.Rank{{entities.Ten, entities.Nine}})
	s.betAll()
	s.dealAll()
	s.act(ActionStand)
	s.advanceUntil(entities.PhaseRoundEnd)
	s.clock.Advance(2 * time.Minute).MustWait(context.Background())

	// Execute
	s.advanceUntil(entities.PhaseBetting)

	// Assert
	s.Require().NotNil(saved)
	s.Equal(snap.RoundID, saved.ID)
	s.Equal(snap.SessionID, saved.SessionID)
	s.Equal(1, saved.Number)
	s.True(startedAt.Equal(saved.StartedAt))
	s.True(startedAt.Add(2 * time.Minute).Equal(saved.CompletedAt))
	s.Equal(20, saved.DealerValue)
	s.False(saved.DealerBust)
	s.Require().Len(saved.Bets, 1)
	s.Equal("Player 1", saved.Bets[0].PlayerName)
	s.Equal(entities.ResolutionLose, saved.Bets[0].Resolution)
	s.Equal(19, saved.Bets[0].HandValue)
	s.assertMoney(0, saved.Bets[0].Payout)
}

func (s *EngineTestSuite) TestRepositoryFailureDoesNotStopPlay() {
	// Setup
	ctrl := gomock.NewController(s.T())
	repo := mock_game.NewMockRepository(ctrl)
	repo.EXPECT().SaveRoundResult(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
	s.engine = s.newEngine(WithRepository(repo))
	s.start(1)
	s.rig([2]entities.Rank{entities.Ten, entities.King},
		[][2]entities.Rank{{entities.Ten, entities.Nine}})
	s.betAll()
	s.dealAll()
	s.act(ActionStand)
	s.advanceUntil(entities.PhaseRoundEnd)

	// Execute
	s.advanceUntil(entities.PhaseBetting)

	// Assert
	s.Equal(1, s.engine.Snapshot().RoundsCompleted)
}

func (s *EngineTestSuite) TestStateChangeNotifications() {
	// Setup
	var phases []entities.Phase
	s.engine.OnStateChanged(func(snap Snapshot) {
		phases = append(phases, snap.Phase)
	})

	// Execute
	s.start(1)
	s.engine.SubmitPlayerIntent(ActionStand)
	s.engine.SubmitPlayerIntent(ActionBet)
	s.advance()

	// Assert
	s.Equal([]entities.Phase{entities.PhaseBetting, entities.PhaseBetting, entities.PhaseDealing}, phases)
}

func (s *EngineTestSuite) TestSnapshotIsACopy() {
	// Setup
	s.start(1)
	s.rig([2]entities.Rank{entities.Ten, entities.Seven},
		[][2]entities.Rank{{entities.Two, entities.Three}})
	s.betAll()
	s.dealAll()

	// Execute
	snap := s.engine.Snapshot()
	snap.Players[0].Hands[0].Cards[0].Rank = entities.Ace
	snap.LegalActions[0] = ActionSplit
	snap.Players[0].Bankroll = decimal.NewFromInt(1000000)

	// Assert
	fresh := s.engine.Snapshot()
	s.Equal(entities.Two, fresh.Players[0].Hands[0].Cards[0].Rank)
	s.Equal(ActionHit, fresh.LegalActions[0])
	s.assertMoney(490, fresh.Players[0].Bankroll)
}

func (s *EngineTestSuite) TestFullCycleReturnsToBetting() {
	// Setup
	s.start(2)

	// Execute
	for round := 0; round < 3; round++ {
		s.betAll()
		s.dealAll()
		for s.engine.Snapshot().Phase != entities.PhaseBetting {
			snap := s.engine.Snapshot()
			if snap.AwaitingInput {
				s.act(ActionStand)
				continue
			}
			s.advance()
		}
	}

	// Assert
	snap := s.engine.Snapshot()
	s.Equal(3, snap.RoundsCompleted)
	s.Equal(4, snap.RoundNumber)
	s.Empty(snap.ActiveBets)
	total := snap.Players[0].Bankroll.Add(snap.Players[1].Bankroll).Add(snap.TableWinnings)
	s.assertMoney(1000, total, "money is conserved between players and the table")
}

func handOf(cards ...entities.Card) *Hand {
	hand := NewHand()
	for _, card := range cards {
		hand.Add(card)
	}
	return hand
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

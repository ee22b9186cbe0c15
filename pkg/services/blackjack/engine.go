package blackjack

import (
	"math/rand/v2"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/thoas/go-funk"

	"github.com/fadedpez/twentyone/internal/logging"
	"github.com/fadedpez/twentyone/internal/types"
	"github.com/fadedpez/twentyone/pkg/entities"
	"github.com/fadedpez/twentyone/pkg/repositories/game"
)

// Engine runs one blackjack table through repeated betting rounds. Every
// state change is driven by StartNewGame, SubmitPlayerIntent or Advance.
// Calls must be serialized by the caller.
type Engine struct {
	state     *roundState
	betAmount decimal.Decimal
	rng       *rand.Rand
	clock     quartz.Clock
	repo      game.Repository
	logger    *logging.Logger
	listeners []func(Snapshot)
}

// Option configures an Engine
type Option func(*Engine)

// WithBetAmount sets the fixed stake placed by every Bet action
func WithBetAmount(amount decimal.Decimal) Option {
	return func(e *Engine) {
		if amount.IsPositive() {
			e.betAmount = amount
		}
	}
}

// WithRand sets the source used to shuffle the shoe
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = rng
	}
}

// WithClock sets the clock used for round timestamps
func WithClock(clock quartz.Clock) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithRepository records every completed round to repo
func WithRepository(repo game.Repository) Option {
	return func(e *Engine) {
		e.repo = repo
	}
}

// WithLogger sets the engine logger
func WithLogger(logger *logging.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an engine with no game running
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		betAmount: DefaultBetAmount,
		clock:     quartz.NewReal(),
		logger:    logging.Default,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		seed := uint64(time.Now().UnixNano())
		e.rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return e
}

// OnStateChanged registers fn to receive a snapshot after every state change
func (e *Engine) OnStateChanged(fn func(Snapshot)) {
	e.listeners = append(e.listeners, fn)
}

func (e *Engine) notify() {
	if len(e.listeners) == 0 {
		return
	}
	snap := e.Snapshot()
	for _, fn := range e.listeners {
		fn(snap)
	}
}

// SessionID returns the id of the running game, or "" before StartNewGame
func (e *Engine) SessionID() string {
	if e.state == nil {
		return ""
	}
	return e.state.sessionID
}

// StartNewGame discards any running game and seats playerCount players,
// clamped to [MinPlayers, MaxPlayers], in front of a fresh shoe
func (e *Engine) StartNewGame(playerCount int, startingBankroll decimal.Decimal, shoeDeckCount int) Snapshot {
	if playerCount < MinPlayers {
		playerCount = MinPlayers
	}
	if playerCount > MaxPlayers {
		playerCount = MaxPlayers
	}
	if startingBankroll.IsNegative() {
		startingBankroll = decimal.Zero
	}

	players := make([]*Player, playerCount)
	for i := range players {
		players[i] = NewPlayer(PlayerName(i), startingBankroll)
	}

	e.state = &roundState{
		sessionID:     uuid.NewString(),
		phase:         entities.PhaseBetting,
		shoe:          entities.NewShoeWithRand(shoeDeckCount, e.rng),
		dealer:        NewHand(),
		dealerAction:  DealerNone,
		players:       players,
		intent:        ActionNone,
		tableWinnings: decimal.Zero,
	}
	e.state.clearMemos()

	e.logger.Info("Starting new game %s with %d players, %s bankroll, %d decks",
		e.state.sessionID, playerCount, startingBankroll.StringFixed(2), e.state.shoe.DeckCount())

	e.enterPhase(entities.PhaseBetting)
	snap := e.Snapshot()
	e.notify()
	return snap
}

// SubmitPlayerIntent queues action for the current player. It is accepted
// only when no intent is pending and action is currently legal.
func (e *Engine) SubmitPlayerIntent(action PlayerAction) bool {
	s := e.state
	if s == nil || s.intent != ActionNone || action == ActionNone {
		return false
	}
	if !funk.Contains(s.legalActions, action) {
		e.logger.Debug("Rejected %s in %s, legal actions %v", action, s.phase, s.legalActions)
		return false
	}

	s.intent = action
	e.notify()
	return true
}

// Advance performs exactly one step of the current phase
func (e *Engine) Advance() error {
	if e.state == nil {
		return types.NewGameError(types.ErrGameNotStarted, "no game has been started")
	}

	e.state.clearMemos()
	err := e.step()
	e.notify()
	return err
}

func (e *Engine) step() error {
	switch e.state.phase {
	case entities.PhaseBetting:
		return e.advanceBetting()
	case entities.PhaseDealing:
		return e.advanceDealing()
	case entities.PhaseNaturals:
		return e.advanceNaturals()
	case entities.PhasePlayerTurns:
		return e.advancePlayerTurns()
	case entities.PhaseDealerTurn:
		return e.advanceDealerTurn()
	case entities.PhaseRoundEnd:
		return e.advanceRoundEnd()
	default:
		return types.NewGameErrorf(types.ErrInvalidState, "unknown phase %s", e.state.phase)
	}
}

// draw deals one face-up card from the shoe
func (e *Engine) draw() (entities.Card, error) {
	card, err := e.state.shoe.Deal()
	if err != nil {
		return entities.Card{}, err
	}
	e.state.lastDrawnCard = &card
	return card, nil
}

// abortRound refunds every unresolved stake and restarts betting after the
// shoe ran dry mid-round
func (e *Engine) abortRound(cause error) error {
	s := e.state
	for _, bet := range s.activeBets {
		s.players[bet.PlayerIndex].Credit(bet.Amount)
	}
	s.activeBets = nil
	s.settled = nil

	gameErr := types.WrapError(types.ErrShoeExhausted,
		"shoe ran out of cards, round aborted and stakes refunded", cause)
	e.logger.LogError(gameErr)

	s.phase = entities.PhaseBetting
	e.enterPhase(entities.PhaseBetting)
	return gameErr
}

func (e *Engine) missingBet(p, h int) error {
	e.state.intent = ActionNone
	gameErr := types.NewGameErrorf(types.ErrMissingBet, "no unresolved bet for %s hand %d", e.state.players[p].Name, h+1)
	e.logger.LogError(gameErr)
	return gameErr
}

package autoplay

import (
	"context"

	"github.com/fadedpez/twentyone/internal/logging"
	"github.com/fadedpez/twentyone/internal/types"
	"github.com/fadedpez/twentyone/pkg/services/blackjack"
)

// Table is the command surface the runner drives
type Table interface {
	Snapshot() blackjack.Snapshot
	SubmitPlayerIntent(action blackjack.PlayerAction) bool
	Advance() error
}

// maxStepsPerRound bounds a single round so a stuck table cannot spin forever
const maxStepsPerRound = 1000

// Runner plays rounds on a table, submitting the policy's choice whenever
// the table waits for input
type Runner struct {
	table  Table
	policy Policy
	logger *logging.Logger
}

// NewRunner creates a runner. A nil policy plays BasicPolicy.
func NewRunner(table Table, policy Policy, logger *logging.Logger) *Runner {
	if policy == nil {
		policy = BasicPolicy{}
	}
	if logger == nil {
		logger = logging.Default
	}
	return &Runner{
		table:  table,
		policy: policy,
		logger: logger,
	}
}

// Play runs until rounds more rounds have completed, every player is out of
// money, or ctx is done. It returns the number of rounds completed.
func (r *Runner) Play(ctx context.Context, rounds int) (int, error) {
	start := r.table.Snapshot()
	if !start.Started {
		return 0, types.NewGameError(types.ErrGameNotStarted, "start a game before autoplaying")
	}
	target := start.RoundsCompleted + rounds

	steps := 0
	lastRound := start.RoundsCompleted
	for {
		snap := r.table.Snapshot()
		played := snap.RoundsCompleted - start.RoundsCompleted
		if snap.RoundsCompleted >= target {
			return played, nil
		}
		if err := ctx.Err(); err != nil {
			return played, err
		}

		if snap.RoundsCompleted != lastRound {
			lastRound = snap.RoundsCompleted
			steps = 0
		}
		steps++
		if steps > maxStepsPerRound {
			return played, types.NewGameErrorf(types.ErrInternalError, "round %d did not finish in %d steps", snap.RoundNumber, maxStepsPerRound)
		}

		if snap.AwaitingInput {
			action := r.policy.Choose(snap)
			if !r.table.SubmitPlayerIntent(action) {
				return played, types.NewGameErrorf(types.ErrIllegalAction, "policy chose %s, legal actions %v", action, snap.LegalActions)
			}
			r.logger.Debug("%s hand %d: %s", snap.Players[snap.CurrentPlayerIndex].Name, snap.CurrentHandIndex+1, action)
		}

		if err := r.table.Advance(); err != nil {
			if types.IsGameError(err, types.ErrNoActivePlayers) {
				r.logger.Info("Every player is out of money after %d rounds", played)
				return played, nil
			}
			if types.IsGameError(err, types.ErrShoeExhausted) {
				// The round was refunded and betting restarts
				r.logger.Warn("Round %d aborted: %v", snap.RoundNumber, err)
				continue
			}
			return played, err
		}
	}
}

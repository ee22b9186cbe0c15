package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/shopspring/decimal"

	"github.com/fadedpez/twentyone/internal/config"
	"github.com/fadedpez/twentyone/internal/logging"
	"github.com/fadedpez/twentyone/internal/types"
	"github.com/fadedpez/twentyone/pkg/repositories/game"
	"github.com/fadedpez/twentyone/pkg/services/autoplay"
	"github.com/fadedpez/twentyone/pkg/services/blackjack"
	"github.com/fadedpez/twentyone/pkg/services/statistics"
)

type CLI struct {
	Rounds   int    `default:"1000" help:"Number of rounds to play"`
	Players  int    `default:"${players}" help:"Seats at the table (1-6)"`
	Bankroll string `default:"${bankroll}" help:"Starting bankroll per player"`
	Decks    int    `default:"${decks}" help:"Decks in the shoe"`
	Bet      string `default:"${bet}" help:"Fixed bet amount"`
	Storage  string `default:"${storage}" enum:"memory,sqlite" help:"Round history storage: memory, sqlite"`
	Seed     uint64 `default:"0" help:"Shuffle seed (0 for random)"`
	Verbose  bool   `short:"v" help:"Verbose logging"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("simulate"),
		kong.Description("Autoplay blackjack rounds and report per-player results"),
		kong.UsageOnError(),
		kong.Vars{
			"players":  strconv.Itoa(cfg.PlayerCount),
			"bankroll": cfg.StartingBankroll.String(),
			"decks":    strconv.Itoa(cfg.ShoeDeckCount),
			"bet":      cfg.BetAmount.String(),
			"storage":  cfg.StorageType,
		},
		kong.Bind(cfg),
	)
	ctx.FatalIfErrorf(ctx.Run())
}

func (c *CLI) Run(cfg *config.Config) error {
	level := logging.ParseLevel(cfg.LogLevel)
	if c.Verbose {
		level = logging.DEBUG
	}
	logger := logging.NewLogger(level)

	bankroll, err := parseAmount("bankroll", c.Bankroll, true)
	if err != nil {
		return err
	}
	bet, err := parseAmount("bet", c.Bet, false)
	if err != nil {
		return err
	}

	cfg.StorageType = c.Storage
	repo, err := openRepository(cfg, logger)
	if err != nil {
		return err
	}
	defer repo.Close()

	opts := []blackjack.Option{
		blackjack.WithBetAmount(bet),
		blackjack.WithRepository(repo),
		blackjack.WithLogger(logger),
	}
	if c.Seed != 0 {
		opts = append(opts, blackjack.WithRand(rand.New(rand.NewPCG(c.Seed, c.Seed))))
	}
	engine := blackjack.NewEngine(opts...)
	engine.StartNewGame(c.Players, bankroll, c.Decks)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := autoplay.NewRunner(engine, autoplay.BasicPolicy{}, logger)
	played, err := runner.Play(runCtx, c.Rounds)
	if err != nil && runCtx.Err() == nil {
		return err
	}
	logger.Info("Played %d rounds in session %s", played, engine.SessionID())

	return report(context.Background(), engine, statistics.NewService(repo), logger)
}

// openRepository picks round history storage from configuration, falling
// back to memory when SQLite cannot be opened
// parseAmount reads a money flag. Zero is accepted only when allowZero is set.
func parseAmount(name, value string, allowZero bool) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, types.WrapError(types.ErrInvalidArgument, fmt.Sprintf("invalid %s %q", name, value), err)
	}
	if amount.IsNegative() || (amount.IsZero() && !allowZero) {
		return decimal.Zero, types.NewGameErrorf(types.ErrInvalidArgument, "%s must be positive, got %s", name, value)
	}
	return amount, nil
}

func openRepository(cfg *config.Config, logger *logging.Logger) (game.Repository, error) {
	var repo game.Repository
	if cfg.StorageType == config.StorageSQLite {
		dbPath := cfg.SQLitePath()
		logger.Info("Initializing SQLite repository at %s", dbPath)
		sqliteRepo, err := game.NewSQLiteRepository(dbPath, logger)
		if err != nil {
			logger.Warn("Failed to initialize SQLite repository: %v", err)
			logger.Warn("Falling back to in-memory repository")
			repo = game.NewMemoryRepository()
		} else {
			repo = sqliteRepo
		}
	} else {
		repo = game.NewMemoryRepository()
		logger.Debug("Using in-memory repository for round history")
	}

	if !cfg.ElasticsearchEnabled() {
		return repo, nil
	}
	esRepo, err := game.NewElasticsearchRepository(repo, &game.ElasticsearchConfig{
		URL:         cfg.ElasticsearchURL,
		Username:    cfg.ElasticsearchUsername,
		Password:    cfg.ElasticsearchPassword,
		IndexPrefix: cfg.ElasticsearchIndex,
	}, logger)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to initialize Elasticsearch repository: %w", err)
	}
	logger.Info("Mirroring round history to Elasticsearch at %s", cfg.ElasticsearchURL)
	return esRepo, nil
}

func report(ctx context.Context, engine *blackjack.Engine, stats *statistics.Service, logger *logging.Logger) error {
	snap := engine.Snapshot()
	leaderboard, err := stats.GetLeaderboard(ctx, snap.SessionID, 1, blackjack.MaxPlayers)
	if err != nil {
		return fmt.Errorf("failed to build leaderboard: %w", err)
	}

	for _, rank := range leaderboard.Players {
		logger.Info("#%d %s: %d hands, %d won, %d lost, %d pushed, %d naturals, net %s (%.1f%% win rate)",
			rank.Rank, rank.PlayerName, rank.HandsPlayed, rank.Wins, rank.Losses, rank.Standoffs,
			rank.Naturals, rank.Net.StringFixed(2), rank.WinRate)
	}
	for _, player := range snap.Players {
		logger.Info("%s finishes with %s", player.Name, player.Bankroll.StringFixed(2))
	}
	logger.Info("Table winnings %s, %d of %d cards left in the shoe",
		snap.TableWinnings.StringFixed(2), snap.Shoe.Undealt, snap.Shoe.Total)
	return nil
}

package statistics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/coder/quartz"
	"github.com/shopspring/decimal"

	"github.com/fadedpez/twentyone/pkg/entities"
	"github.com/fadedpez/twentyone/pkg/repositories/game"
)

// Service provides methods for retrieving and processing player statistics
type Service struct {
	repository game.Repository
	clock      quartz.Clock
}

// NewService creates a new statistics service
func NewService(repository game.Repository) *Service {
	return &Service{
		repository: repository,
		clock:      quartz.NewReal(),
	}
}

// NewServiceWithClock creates a statistics service stamping results with clock
func NewServiceWithClock(repository game.Repository, clock quartz.Clock) *Service {
	return &Service{
		repository: repository,
		clock:      clock,
	}
}

// PlayerRank represents a player's statistics with ranking information
type PlayerRank struct {
	*entities.PlayerStatistics
	Rank        int             `json:"rank"`
	Net         decimal.Decimal `json:"net"`
	WinRate     float64         `json:"win_rate"`
	ProfitRate  float64         `json:"profit_rate"`
	IsTopWinner bool            `json:"is_top_winner"`
	IsTopPlayer bool            `json:"is_top_player"`
}

// Leaderboard represents a paginated leaderboard of player statistics
type Leaderboard struct {
	SessionID      string        `json:"session_id"`
	Players        []*PlayerRank `json:"players"`
	TotalPlayers   int           `json:"total_players"`
	CurrentPage    int           `json:"current_page"`
	TotalPages     int           `json:"total_pages"`
	PlayersPerPage int           `json:"players_per_page"`
	LastUpdated    time.Time     `json:"last_updated"`
}

// Aggregate folds settled bets into per-player statistics keyed by player name
func Aggregate(bets []*entities.BetResult, now time.Time) map[string]*entities.PlayerStatistics {
	stats := make(map[string]*entities.PlayerStatistics)
	for _, bet := range bets {
		s, ok := stats[bet.PlayerName]
		if !ok {
			s = &entities.PlayerStatistics{
				PlayerName:    bet.PlayerName,
				TotalWagered:  decimal.Zero,
				TotalReturned: decimal.Zero,
			}
			stats[bet.PlayerName] = s
		}
		s.HandsPlayed++
		s.TotalWagered = s.TotalWagered.Add(bet.Amount)
		s.TotalReturned = s.TotalReturned.Add(bet.Payout)
		s.LastUpdated = now

		switch bet.Type {
		case entities.BetSplit:
			s.Splits++
		case entities.BetDoubleDown:
			s.DoubleDowns++
		}

		switch {
		case bet.Resolution.IsWin():
			s.Wins++
			if bet.Resolution == entities.ResolutionNatural {
				s.Naturals++
			}
		case bet.Resolution.HouseWins():
			s.Losses++
			if bet.Resolution == entities.ResolutionBusted {
				s.Busts++
			}
		case bet.Resolution == entities.ResolutionStandoff:
			s.Standoffs++
		}
	}
	return stats
}

// GetPlayerStatistics aggregates every recorded bet of one player in a session
func (s *Service) GetPlayerStatistics(ctx context.Context, sessionID, playerName string) (*entities.PlayerStatistics, error) {
	bets, err := s.repository.GetPlayerBetResults(ctx, sessionID, playerName)
	if err != nil {
		return nil, fmt.Errorf("error loading bets for %s: %w", playerName, err)
	}

	if stats, ok := Aggregate(bets, s.clock.Now())[playerName]; ok {
		return stats, nil
	}
	return &entities.PlayerStatistics{
		PlayerName:    playerName,
		TotalWagered:  decimal.Zero,
		TotalReturned: decimal.Zero,
	}, nil
}

// GetLeaderboard retrieves a paginated leaderboard of a session, ordered by net winnings
func (s *Service) GetLeaderboard(ctx context.Context, sessionID string, page, playersPerPage int) (*Leaderboard, error) {
	// Default values
	if page < 1 {
		page = 1
	}
	if playersPerPage < 1 {
		playersPerPage = 10
	}

	rounds, err := s.repository.GetRoundResults(ctx, sessionID, 0)
	if err != nil {
		return nil, fmt.Errorf("error loading rounds for session %s: %w", sessionID, err)
	}

	var bets []*entities.BetResult
	for _, round := range rounds {
		bets = append(bets, round.Bets...)
	}
	now := s.clock.Now()
	allStats := Aggregate(bets, now)

	// Convert to PlayerRank and calculate additional metrics
	playerRanks := make([]*PlayerRank, 0, len(allStats))
	for _, stats := range allStats {
		var profitRate float64
		if stats.TotalWagered.IsPositive() {
			profitRate = stats.NetProfit().Div(stats.TotalWagered).InexactFloat64()
		}

		playerRanks = append(playerRanks, &PlayerRank{
			PlayerStatistics: stats,
			Net:              stats.NetProfit(),
			WinRate:          stats.WinRate(),
			ProfitRate:       profitRate,
		})
	}

	// Sort by net winnings (descending), then name for a stable order
	sort.Slice(playerRanks, func(i, j int) bool {
		if cmp := playerRanks[i].Net.Cmp(playerRanks[j].Net); cmp != 0 {
			return cmp > 0
		}
		return playerRanks[i].PlayerName < playerRanks[j].PlayerName
	})

	// Mark top winners and players
	if len(playerRanks) > 0 {
		// Top winner is the player with the highest net
		playerRanks[0].IsTopWinner = true

		// Find the player with the most hands played
		mostHandsIdx := 0
		for i := 1; i < len(playerRanks); i++ {
			if playerRanks[i].HandsPlayed > playerRanks[mostHandsIdx].HandsPlayed {
				mostHandsIdx = i
			}
		}
		playerRanks[mostHandsIdx].IsTopPlayer = true
	}

	// Assign ranks
	for i := range playerRanks {
		playerRanks[i].Rank = i + 1
	}

	// Calculate pagination
	totalPlayers := len(playerRanks)
	totalPages := (totalPlayers + playersPerPage - 1) / playersPerPage
	if page > totalPages && totalPages > 0 {
		page = totalPages
	}

	// Get the current page of players
	start := (page - 1) * playersPerPage
	end := start + playersPerPage
	if end > totalPlayers {
		end = totalPlayers
	}

	currentPagePlayers := []*PlayerRank{}
	if start < totalPlayers {
		currentPagePlayers = playerRanks[start:end]
	}

	return &Leaderboard{
		SessionID:      sessionID,
		Players:        currentPagePlayers,
		TotalPlayers:   totalPlayers,
		CurrentPage:    page,
		TotalPages:     totalPages,
		PlayersPerPage: playersPerPage,
		LastUpdated:    now,
	}, nil
}

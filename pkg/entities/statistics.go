package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlayerStatistics represents aggregated results for one player name
type PlayerStatistics struct {
	PlayerName    string          `json:"player_name"`
	HandsPlayed   int             `json:"hands_played"`
	Wins          int             `json:"wins"`
	Losses        int             `json:"losses"`
	Standoffs     int             `json:"standoffs"`
	Naturals      int             `json:"naturals"`
	Busts         int             `json:"busts"`
	Splits        int             `json:"splits"`
	DoubleDowns   int             `json:"double_downs"`
	TotalWagered  decimal.Decimal `json:"total_wagered"`
	TotalReturned decimal.Decimal `json:"total_returned"`
	LastUpdated   time.Time       `json:"last_updated"`
}

// NetProfit calculates the player's net profit
func (s *PlayerStatistics) NetProfit() decimal.Decimal {
	return s.TotalReturned.Sub(s.TotalWagered)
}

// WinRate calculates the player's win rate as a percentage
func (s *PlayerStatistics) WinRate() float64 {
	if s.HandsPlayed == 0 {
		return 0.0
	}
	return float64(s.Wins) / float64(s.HandsPlayed) * 100.0
}

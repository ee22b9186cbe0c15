package game

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fadedpez/twentyone/internal/logging"
	"github.com/fadedpez/twentyone/pkg/db/migrations"
	"github.com/fadedpez/twentyone/pkg/entities"
)

// SQLiteRepository implements the Repository interface using SQLite
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (or creates) the database at dbPath and applies migrations
func NewSQLiteRepository(dbPath string, logger *logging.Logger) (*SQLiteRepository, error) {
	// Ensure the directory exists
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	migrator := migrations.NewMigrator(db, migrations.Embedded())
	if logger != nil {
		migrator.SetLogger(logger)
	}
	if _, err := migrator.MigrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error applying migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// SaveRoundResult stores a round result and its bets in one transaction
func (r *SQLiteRepository) SaveRoundResult(ctx context.Context, result *entities.RoundResult) error {
	if result == nil {
		return ErrNilRoundResult
	}

	dealerJSON, err := json.Marshal(result.DealerCards)
	if err != nil {
		return fmt.Errorf("error encoding dealer cards: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO round_results (
			id, session_id, number, started_at, completed_at,
			dealer_cards, dealer_value, dealer_bust
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = tx.ExecContext(ctx, query,
		result.ID, result.SessionID, result.Number, result.StartedAt.UTC(), result.CompletedAt.UTC(),
		string(dealerJSON), result.DealerValue, result.DealerBust)
	if err != nil {
		return fmt.Errorf("error inserting round %s: %w", result.ID, err)
	}

	for _, bet := range result.Bets {
		cardsJSON, err := json.Marshal(bet.Cards)
		if err != nil {
			return fmt.Errorf("error encoding hand cards: %w", err)
		}

		query := `
			INSERT INTO bet_results (
				round_id, player_name, hand_index, cards, hand_value,
				bet_type, amount, resolution, payout
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

		_, err = tx.ExecContext(ctx, query,
			result.ID, bet.PlayerName, bet.HandIndex, string(cardsJSON), bet.HandValue,
			string(bet.Type), bet.Amount.String(), string(bet.Resolution), bet.Payout.String())
		if err != nil {
			return fmt.Errorf("error inserting bet for %s: %w", bet.PlayerName, err)
		}
	}

	return tx.Commit()
}

// GetRoundResults retrieves the most recent round results for a session, oldest first
func (r *SQLiteRepository) GetRoundResults(ctx context.Context, sessionID string, limit int) ([]*entities.RoundResult, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded
	}

	query := `
		SELECT id, session_id, number, started_at, completed_at,
		       dealer_cards, dealer_value, dealer_bust
		FROM round_results
		WHERE session_id = ?
		ORDER BY number DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []*entities.RoundResult{}
	byID := make(map[string]*entities.RoundResult)
	for rows.Next() {
		var (
			result     entities.RoundResult
			dealerJSON string
		)
		if err := rows.Scan(
			&result.ID, &result.SessionID, &result.Number, &result.StartedAt, &result.CompletedAt,
			&dealerJSON, &result.DealerValue, &result.DealerBust,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(dealerJSON), &result.DealerCards); err != nil {
			return nil, fmt.Errorf("error decoding dealer cards: %w", err)
		}
		result.Bets = []*entities.BetResult{}
		results = append(results, &result)
		byID[result.ID] = &result
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Query returned newest first; callers expect oldest first
	for i, j := 0, len(results)-1; i < j; i, j = i+1, j-1 {
		results[i], results[j] = results[j], results[i]
	}

	if len(results) == 0 {
		return results, nil
	}

	// Only load bets for the rounds being returned
	placeholders := make([]string, len(results))
	args := make([]interface{}, len(results))
	for i, result := range results {
		placeholders[i] = "?"
		args[i] = result.ID
	}
	bets, err := r.queryBets(ctx, `
		SELECT round_id, player_name, hand_index, cards, hand_value,
		       bet_type, amount, resolution, payout
		FROM bet_results
		WHERE round_id IN (`+strings.Join(placeholders, ", ")+`)
		ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	for _, bet := range bets {
		if round, ok := byID[bet.RoundID]; ok {
			round.Bets = append(round.Bets, bet)
		}
	}

	return results, nil
}

// GetPlayerBetResults retrieves every settled bet for a player in a session
func (r *SQLiteRepository) GetPlayerBetResults(ctx context.Context, sessionID, playerName string) ([]*entities.BetResult, error) {
	return r.queryBets(ctx, `
		SELECT b.round_id, b.player_name, b.hand_index, b.cards, b.hand_value,
		       b.bet_type, b.amount, b.resolution, b.payout
		FROM bet_results b
		JOIN round_results r ON r.id = b.round_id
		WHERE r.session_id = ? AND b.player_name = ?
		ORDER BY r.number, b.id`, sessionID, playerName)
}

func (r *SQLiteRepository) queryBets(ctx context.Context, query string, args ...interface{}) ([]*entities.BetResult, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bets := []*entities.BetResult{}
	for rows.Next() {
		var (
			bet        entities.BetResult
			cardsJSON  string
			betType    string
			resolution string
		)
		if err := rows.Scan(
			&bet.RoundID, &bet.PlayerName, &bet.HandIndex, &cardsJSON, &bet.HandValue,
			&betType, &bet.Amount, &resolution, &bet.Payout,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(cardsJSON), &bet.Cards); err != nil {
			return nil, fmt.Errorf("error decoding hand cards: %w", err)
		}
		bet.Type = entities.BetType(betType)
		bet.Resolution = entities.Resolution(resolution)
		bets = append(bets, &bet)
	}

	return bets, rows.Err()
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

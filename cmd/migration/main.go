package main

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	_ "github.com/mattn/go-sqlite3"

	"github.com/fadedpez/twentyone/internal/config"
	"github.com/fadedpez/twentyone/internal/logging"
	"github.com/fadedpez/twentyone/pkg/db/migrations"
)

type CLI struct {
	Create  CreateCmd  `cmd:"" help:"Create a new migration file"`
	Migrate MigrateCmd `cmd:"" help:"Apply pending migrations"`
}

type CreateCmd struct {
	Description string `arg:"" help:"Short description, e.g. \"add session table\""`
	Dir         string `default:"pkg/db/migrations/sql" help:"Directory to store migrations"`
}

type MigrateCmd struct {
	DB  string `default:"${db}" help:"Path to SQLite database"`
	Dir string `help:"Directory containing migrations (defaults to the migrations built into this binary)"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel))

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("migration"),
		kong.Description("Manage the round history database schema"),
		kong.UsageOnError(),
		kong.Vars{
			"db": cfg.SQLitePath(),
		},
		kong.Bind(logger),
	)
	ctx.FatalIfErrorf(ctx.Run())
}

func (c *CreateCmd) Run(logger *logging.Logger) error {
	filePath, err := migrations.CreateMigration(c.Dir, c.Description)
	if err != nil {
		return fmt.Errorf("error creating migration: %w", err)
	}

	// Add helpful SQLite examples to the migration file
	if err := addSQLiteExamples(filePath); err != nil {
		return err
	}

	logger.Info("Created migration file: %s", filePath)
	logger.Info("Edit this file to add your database schema changes.")
	return nil
}

func addSQLiteExamples(filePath string) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("error reading migration file: %w", err)
	}

	examples := `
-- SQLite Examples:

-- Create a new table
-- CREATE TABLE IF NOT EXISTS table_name (
--   id INTEGER PRIMARY KEY AUTOINCREMENT,
--   name TEXT NOT NULL,
--   created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
-- );

-- Add a column to existing table
-- ALTER TABLE table_name ADD COLUMN new_column TEXT;

-- Create an index
-- CREATE INDEX IF NOT EXISTS idx_table_column ON table_name(column_name);

-- Your migration SQL goes below this line:

`

	if err := os.WriteFile(filePath, append(content, examples...), 0644); err != nil {
		return fmt.Errorf("error writing to migration file: %w", err)
	}
	return nil
}

func (c *MigrateCmd) Run(logger *logging.Logger) error {
	// Ensure database directory exists
	if err := os.MkdirAll(filepath.Dir(c.DB), 0755); err != nil {
		return fmt.Errorf("error creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", c.DB)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}
	defer db.Close()

	var source fs.FS = migrations.Embedded()
	if c.Dir != "" {
		source = os.DirFS(c.Dir)
	}

	migrator := migrations.NewMigrator(db, source)
	migrator.SetLogger(logger)

	applied, err := migrator.MigrateUp()
	if err != nil {
		return fmt.Errorf("error applying migrations: %w", err)
	}

	logger.Info("Applied %d migrations to %s", applied, c.DB)
	return nil
}

package builder

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/Hkishore1/ClaimsRAG/internal/config"
)

// setupDatabase opens the SQLite history database
func setupDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", cfg.DBPath+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite allows one writer at a time
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("database connection established",
		zap.String("path", cfg.DBPath),
	)

	return db, nil
}

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// schema holds the side tables kept in Postgres. Content lives in MongoDB.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS moderation_actions (
		id UUID PRIMARY KEY,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		actor_id VARCHAR(24) NOT NULL,
		action VARCHAR(50) NOT NULL,
		content_type VARCHAR(50),
		content_id VARCHAR(24),
		target_id VARCHAR(24),
		reason TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_moderation_actions_created_at ON moderation_actions(created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_moderation_actions_target ON moderation_actions(target_id)`,
}

// ConnectPostgres opens the pool, pings it and creates missing tables.
func ConnectPostgres(ctx context.Context, uri string, log *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", uri)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	log.Info("connected to PostgreSQL")

	if err := InitPostgresTables(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func InitPostgresTables(ctx context.Context, db *sql.DB) error {
	for _, q := range schema {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("postgres schema: %w", err)
		}
	}
	return nil
}

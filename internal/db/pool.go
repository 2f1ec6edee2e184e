package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	maxRetries    = 5
	retryInterval = 2 * time.Second
)

// NewPool connects to Postgres with retry and validates the connection with a
// ping before returning.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = time.Minute

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= maxRetries; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, config)
		if err == nil {
			if pingErr := pool.Ping(ctx); pingErr == nil {
				log.Println("database connected")
				return pool, nil
			} else {
				pool.Close()
				err = pingErr
			}
		}

		log.Printf("database connection attempt %d/%d failed: %v", attempt, maxRetries, err)
		if attempt < maxRetries {
			time.Sleep(retryInterval)
		}
	}

	return nil, fmt.Errorf("database connection failed after %d attempts: %w", maxRetries, err)
}

// schema holds the idempotent DDL for all tables, applied at startup.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS connections (
		id            BIGSERIAL PRIMARY KEY,
		user_id       VARCHAR(64) NOT NULL,
		channel_id    VARCHAR(32) NOT NULL,
		channel_name  VARCHAR(128) NOT NULL DEFAULT '',
		access_token  TEXT NOT NULL DEFAULT '',
		refresh_token TEXT,
		expires_at    BIGINT NOT NULL DEFAULT 0,
		connected_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (user_id, channel_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_connections_user ON connections (user_id)`,

	`CREATE TABLE IF NOT EXISTS refresh_jobs (
		id                 UUID PRIMARY KEY,
		user_id            VARCHAR(64) NOT NULL,
		status             VARCHAR(16) NOT NULL,
		requested_at       TIMESTAMPTZ NOT NULL,
		started_at         TIMESTAMPTZ,
		finished_at        TIMESTAMPTZ,
		error_message      TEXT,
		channels_total     INT NOT NULL DEFAULT 0,
		channels_processed INT NOT NULL DEFAULT 0,
		meta               JSONB
	)`,
	`CREATE INDEX IF NOT EXISTS idx_refresh_jobs_user_requested
		ON refresh_jobs (user_id, requested_at DESC)`,

	`CREATE TABLE IF NOT EXISTS cached_summaries (
		user_id        VARCHAR(64) PRIMARY KEY,
		summary        JSONB NOT NULL,
		generated_at   TIMESTAMPTZ NOT NULL,
		refresh_job_id UUID
	)`,

	`CREATE TABLE IF NOT EXISTS reporting_jobs (
		channel_id     VARCHAR(32) NOT NULL,
		report_type    VARCHAR(32) NOT NULL,
		job_id         TEXT NOT NULL,
		name           TEXT NOT NULL DEFAULT '',
		report_type_id TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (channel_id, report_type)
	)`,
}

// Migrate applies the schema. Every statement is idempotent, so running it on
// every startup is safe.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	log.Println("database schema up to date")
	return nil
}

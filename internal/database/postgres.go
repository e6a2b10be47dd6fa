package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KyleBrandon/temp-monitor/internal/reading"
	_ "github.com/lib/pq"
)

const createReadingsTable = `
CREATE TABLE IF NOT EXISTS readings (
	id          BIGSERIAL PRIMARY KEY,
	device_id   TEXT NOT NULL,
	celsius     REAL NOT NULL,
	timestamp   BIGINT NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL
)`

const insertReading = `
INSERT INTO readings (device_id, celsius, timestamp, recorded_at)
VALUES ($1, $2, $3, $4)`

type PostgresArchive struct {
	db *sql.DB
}

func NewPostgresArchive(ctx context.Context, databaseURL string) (*PostgresArchive, error) {
	if len(databaseURL) == 0 {
		return nil, errors.New("no database connection string is configured")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	return newPostgresArchive(ctx, db)
}

func newPostgresArchive(ctx context.Context, db *sql.DB) (*PostgresArchive, error) {
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, createReadingsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create readings table: %w", err)
	}

	slog.Info("Connected to postgres archive")

	return &PostgresArchive{db: db}, nil
}

func (a *PostgresArchive) SaveReading(ctx context.Context, deviceID string, r reading.Reading) error {
	_, err := a.db.ExecContext(ctx, insertReading,
		deviceID,
		r.Temperature.Celsius,
		int64(r.Timestamp),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert reading: %w", err)
	}

	return nil
}

func (a *PostgresArchive) Close() error {
	return a.db.Close()
}

package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/KyleBrandon/temp-monitor/internal/reading"
)

const createClickHouseReadings = `
CREATE TABLE IF NOT EXISTS readings (
	recorded_at DateTime64(3),
	device_id   String,
	celsius     Float32,
	timestamp   UInt32
) ENGINE = MergeTree()
ORDER BY (device_id, recorded_at)`

type ClickHouseArchive struct {
	conn driver.Conn
}

func NewClickHouseArchive(ctx context.Context, addr, database, username, password string) (*ClickHouseArchive, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout: 5 * time.Second,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	if err := conn.Exec(ctx, createClickHouseReadings); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create readings table: %w", err)
	}

	slog.Info("Connected to ClickHouse archive", "addr", addr)

	return &ClickHouseArchive{conn: conn}, nil
}

func (a *ClickHouseArchive) SaveReading(ctx context.Context, deviceID string, r reading.Reading) error {
	err := a.conn.Exec(ctx,
		"INSERT INTO readings (recorded_at, device_id, celsius, timestamp) VALUES (?, ?, ?, ?)",
		time.Now().UTC(),
		deviceID,
		r.Temperature.Celsius,
		r.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reading: %w", err)
	}

	return nil
}

func (a *ClickHouseArchive) Close() error {
	return a.conn.Close()
}

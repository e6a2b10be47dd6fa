// Package database archives accepted readings outside the device's bounded store.
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KyleBrandon/temp-monitor/internal/reading"
)

const (
	ARCHIVE_NONE       = ""
	ARCHIVE_POSTGRES   = "postgres"
	ARCHIVE_CLICKHOUSE = "clickhouse"
)

var ErrUnknownArchive = errors.New("unknown archive driver")

type (
	Archiver interface {
		SaveReading(ctx context.Context, deviceID string, r reading.Reading) error
		Close() error
	}

	ArchiveSettings struct {
		Driver      string
		DatabaseURL string

		ClickHouseAddr     string
		ClickHouseDatabase string
		ClickHouseUsername string
		ClickHousePassword string
	}
)

// OpenArchive connects to the configured archive. No driver means no archive
// and a nil Archiver.
func OpenArchive(ctx context.Context, settings ArchiveSettings) (Archiver, error) {
	slog.Debug(">>OpenArchive", "driver", settings.Driver)
	defer slog.Debug("<<OpenArchive")

	switch settings.Driver {
	case ARCHIVE_NONE:
		return nil, nil

	case ARCHIVE_POSTGRES:
		archive, err := NewPostgresArchive(ctx, settings.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return archive, nil

	case ARCHIVE_CLICKHOUSE:
		archive, err := NewClickHouseArchive(ctx, settings.ClickHouseAddr, settings.ClickHouseDatabase, settings.ClickHouseUsername, settings.ClickHousePassword)
		if err != nil {
			return nil, err
		}
		return archive, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownArchive, settings.Driver)
}

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/KyleBrandon/temp-monitor/internal/sensor"
)

const DefaultLogLevel = slog.LevelInfo

const (
	DEFAULT_BUFFER_CAPACITY = 64
	DEFAULT_SAMPLE_RATE_HZ  = 1
	DEFAULT_REPORT_EVERY    = 10
	MAX_SAMPLE_RATE_HZ      = 1000
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Devices          []sensor.DeviceConfig `json:"devices"`
	BufferCapacity   int                   `json:"buffer_capacity"`
	SampleRateHz     uint32                `json:"sample_rate_hz"`
	ReportEvery      int                   `json:"report_every"`
	AlertHighCelsius *float32              `json:"alert_high_celsius,omitempty"`
	AlertLowCelsius  *float32              `json:"alert_low_celsius,omitempty"`
	OriginPatterns   []string              `json:"origin_patterns"`
}

func LoadConfigSettings(filename string) (Config, error) {
	var config Config
	file, err := os.Open(filename)
	if err != nil {
		return config, err
	}

	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return config, err
	}

	err = json.Unmarshal(bytes, &config)
	if err != nil {
		return config, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return config, err
	}

	return config, nil
}

func (c *Config) applyDefaults() {
	if c.BufferCapacity == 0 {
		c.BufferCapacity = DEFAULT_BUFFER_CAPACITY
	}

	if c.SampleRateHz == 0 {
		c.SampleRateHz = DEFAULT_SAMPLE_RATE_HZ
	}

	if c.ReportEvery == 0 {
		c.ReportEvery = DEFAULT_REPORT_EVERY
	}
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	if c.BufferCapacity < 0 {
		return fmt.Errorf("%w: buffer_capacity must be positive, got %d", ErrInvalidConfig, c.BufferCapacity)
	}

	if c.SampleRateHz > MAX_SAMPLE_RATE_HZ {
		return fmt.Errorf("%w: sample_rate_hz must be at most %d, got %d", ErrInvalidConfig, MAX_SAMPLE_RATE_HZ, c.SampleRateHz)
	}

	if c.ReportEvery < 0 {
		return fmt.Errorf("%w: report_every must be positive, got %d", ErrInvalidConfig, c.ReportEvery)
	}

	if c.AlertHighCelsius != nil && c.AlertLowCelsius != nil && *c.AlertLowCelsius >= *c.AlertHighCelsius {
		return fmt.Errorf("%w: alert_low_celsius %v must be below alert_high_celsius %v", ErrInvalidConfig, *c.AlertLowCelsius, *c.AlertHighCelsius)
	}

	return nil
}

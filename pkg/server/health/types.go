package health

import (
	"log/slog"
)

type (
	Handler struct {
		levelVar *slog.LevelVar
		logger   *slog.Logger
		apiKey   string
	}

	HealthResponse struct {
		Status string `json:"status"`
	}

	LogLevelResponse struct {
		Level string `json:"level"`
	}
)

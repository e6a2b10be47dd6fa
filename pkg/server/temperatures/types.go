package temperatures

import (
	"github.com/KyleBrandon/temp-monitor/internal/protocol"
	"github.com/KyleBrandon/temp-monitor/internal/reading"
)

type (
	TemperatureReading struct {
		Timestamp    uint32  `json:"timestamp"`
		TemperatureC float32 `json:"temperature_c"`
		TemperatureF float32 `json:"temperature_f"`
	}

	TemperatureStats struct {
		MinC     float32 `json:"min_c"`
		MaxC     float32 `json:"max_c"`
		AverageC float32 `json:"average_c"`
		AverageF float32 `json:"average_f"`
		Count    int     `json:"count"`
	}

	ReadingCount struct {
		Count int `json:"count"`
	}

	Monitor interface {
		ProcessCommand(cmd protocol.Command) protocol.Response
		Readings() []reading.Reading
	}

	Handler struct {
		mctx Monitor
	}
)

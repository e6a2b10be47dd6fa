// Package protocol answers status and statistics commands over a bounded
// reading store.
package protocol

import (
	"math"

	"github.com/KyleBrandon/temp-monitor/internal/reading"
	"github.com/KyleBrandon/temp-monitor/internal/store"
)

// NewHandler creates an uninitialized handler owning a store of the given capacity.
// Init must be called before readings or commands are accepted.
func NewHandler(capacity int, sampleRateHz uint32) *Handler {
	if sampleRateHz == 0 {
		sampleRateHz = DEFAULT_SAMPLE_RATE_HZ
	}

	return &Handler{
		store:      store.New(capacity),
		sampleRate: sampleRateHz,
	}
}

// Init records the boot time and clears all readings and counters. Calling it
// again starts over.
func (h *Handler) Init(bootTimestamp uint32) {
	h.bootTimestamp = bootTimestamp
	h.readingCount = 0
	h.store.Reset()
	h.initialized = true
}

func (h *Handler) Initialized() bool {
	return h.initialized
}

func (h *Handler) Capacity() int {
	return h.store.Capacity()
}

func (h *Handler) Len() int {
	return h.store.Len()
}

func (h *Handler) SampleRate() uint32 {
	return h.sampleRate
}

// Readings returns the stored readings, oldest first.
func (h *Handler) Readings() []reading.Reading {
	return h.store.Readings()
}

// AddReading stores a reading and counts it toward the lifetime total.
func (h *Handler) AddReading(t reading.Temperature, timestamp uint32) error {
	if !h.initialized {
		return ErrNotInitialized
	}

	h.store.Push(reading.NewReading(t, timestamp))
	h.readingCount++

	return nil
}

// ProcessCommand answers a command without modifying the stored readings.
func (h *Handler) ProcessCommand(cmd Command, timestamp uint32) Response {
	if !h.initialized {
		return ErrorResponse{Message: UNINITIALIZED_MESSAGE}
	}

	switch cmd {
	case GetStatus:
		return h.status(timestamp)

	case GetStats:
		stats, err := h.store.Statistics()
		if err != nil {
			return NoDataResponse{}
		}
		return StatsResponse(stats)

	case GetLatestReading:
		latest, ok := h.store.Latest()
		if !ok {
			return NoDataResponse{}
		}
		return ReadingResponse(latest)

	case GetReadingCount:
		return ReadingCountResponse{Count: h.store.Len()}
	}

	return ErrorResponse{Message: ErrUnknownCommand.Error()}
}

func (h *Handler) status(timestamp uint32) StatusResponse {
	// a clock that runs behind boot reports zero uptime rather than wrapping
	var uptime uint32
	if timestamp > h.bootTimestamp {
		uptime = timestamp - h.bootTimestamp
	}

	usage := math.Round(float64(h.store.Len()) / float64(h.store.Capacity()) * 100)

	return StatusResponse{
		UptimeSeconds: uptime,
		ReadingCount:  h.readingCount,
		SampleRate:    h.sampleRate,
		BufferUsage:   uint8(usage),
	}
}

package protocol

import (
	"errors"

	"github.com/KyleBrandon/temp-monitor/internal/reading"
	"github.com/KyleBrandon/temp-monitor/internal/store"
)

const (
	GetStatus Command = iota
	GetStats
	GetLatestReading
	GetReadingCount
)

const (
	DEFAULT_SAMPLE_RATE_HZ = 10
	UNINITIALIZED_MESSAGE  = "uninitialized"
)

var (
	ErrNotInitialized = errors.New("protocol handler is not initialized")
	ErrUnknownCommand = errors.New("unknown command")
	ErrBufferTooSmall = errors.New("encoded response exceeds buffer")
)

type (
	Command int

	// Response is one of the response variants below.
	Response interface {
		responseKind() string
	}

	StatusResponse struct {
		UptimeSeconds uint32 `json:"uptime_seconds"`
		ReadingCount  uint32 `json:"reading_count"`
		SampleRate    uint32 `json:"sample_rate"`
		BufferUsage   uint8  `json:"buffer_usage"`
	}

	StatsResponse store.Statistics

	ReadingResponse reading.Reading

	ReadingCountResponse struct {
		Count int
	}

	// NoDataResponse answers a query over an empty store.
	NoDataResponse struct{}

	ErrorResponse struct {
		Message string
	}

	Handler struct {
		store         *store.Store
		sampleRate    uint32
		bootTimestamp uint32
		readingCount  uint32
		initialized   bool
	}
)

func (StatusResponse) responseKind() string       { return "Status" }
func (StatsResponse) responseKind() string        { return "Stats" }
func (ReadingResponse) responseKind() string      { return "Reading" }
func (ReadingCountResponse) responseKind() string { return "ReadingCount" }
func (NoDataResponse) responseKind() string       { return "NoData" }
func (ErrorResponse) responseKind() string        { return "Error" }

// Kind names the response variant, matching its JSON tag.
func Kind(r Response) string {
	return r.responseKind()
}

package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/KyleBrandon/temp-monitor/internal/clock"
	"github.com/KyleBrandon/temp-monitor/internal/database"
	"github.com/KyleBrandon/temp-monitor/internal/protocol"
	"github.com/KyleBrandon/temp-monitor/internal/sensor"
)

const (
	NOTIFICATION_SUBJECT    = "Temperature Monitor"
	NOTIFICATION_QUEUE_SIZE = 16
	DEFAULT_REPORT_EVERY    = 10
	MIN_SAMPLE_INTERVAL     = time.Millisecond
)

type (
	NotificationTask struct {
		Message string
	}

	// Sink receives responses emitted by the sampling loop.
	Sink interface {
		Emit(ctx context.Context, resp protocol.Response) error
	}

	Notifier interface {
		Send(ctx context.Context, subject, message string) error
	}

	MonitorSettings struct {
		DeviceID         string
		BufferCapacity   int
		SampleRateHz     uint32
		ReportEvery      int
		AlertHighCelsius *float32
		AlertLowCelsius  *float32
	}

	// MonitorContext owns the protocol handler. Every access to the handler
	// goes through the embedded mutex.
	MonitorContext struct {
		sync.Mutex
		wg                *sync.WaitGroup
		ctx               context.Context
		monitorCancelFunc context.CancelFunc

		handler  *protocol.Handler
		sensors  sensor.Sensors
		clock    clock.Clock
		sinks    []Sink
		archive  database.Archiver
		settings MonitorSettings

		sinceReport int

		Alert struct {
			High bool
			Low  bool
		}

		Notification struct {
			NotifyCh chan NotificationTask
			notifier Notifier
		}
	}
)

package status

import (
	"time"

	"github.com/KyleBrandon/temp-monitor/internal/protocol"
)

const (
	DEFAULT_STATUS_INTERVAL    = 1 * time.Second
	DEFAULT_HEARTBEAT_INTERVAL = 30 * time.Second
)

type (
	CommandProcessor interface {
		ProcessCommand(cmd protocol.Command) protocol.Response
	}

	Handler struct {
		processor         CommandProcessor
		originPatterns    []string
		statusInterval    time.Duration
		heartbeatInterval time.Duration
	}
)

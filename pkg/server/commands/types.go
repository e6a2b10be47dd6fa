package commands

import (
	"github.com/KyleBrandon/temp-monitor/internal/protocol"
)

const (
	FORMAT_JSON   = "json"
	FORMAT_BINARY = "binary"

	// largest command body accepted
	MAX_COMMAND_BYTES = 256
)

type (
	Monitor interface {
		ProcessCommand(cmd protocol.Command) protocol.Response
		Reset()
	}

	Handler struct {
		mctx   Monitor
		apiKey string
	}
)

package monitor

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/KyleBrandon/temp-monitor/internal/protocol"
)

// matches the serial output buffer on the device
const LOG_SINK_BUFFER_SIZE = 256

// LogSink writes responses as KIND_JSON: {...} lines, the format the device
// prints over its serial console.
type LogSink struct {
	w io.Writer
}

func NewLogSink(w io.Writer) *LogSink {
	return &LogSink{w: w}
}

func (s *LogSink) Emit(ctx context.Context, resp protocol.Response) error {
	data, err := protocol.EncodeBounded(resp, LOG_SINK_BUFFER_SIZE)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(s.w, "%s_JSON: %s\n", strings.ToUpper(protocol.Kind(resp)), data)
	return err
}

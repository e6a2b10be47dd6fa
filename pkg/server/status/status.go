package status

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/KyleBrandon/temp-monitor/internal/protocol"
	"github.com/KyleBrandon/temp-monitor/pkg/utils"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

func NewHandler(processor CommandProcessor, originPatterns []string) *Handler {
	return &Handler{
		processor:         processor,
		originPatterns:    originPatterns,
		statusInterval:    DEFAULT_STATUS_INTERVAL,
		heartbeatInterval: DEFAULT_HEARTBEAT_INTERVAL,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/status", h.handleStatusGet)
	mux.HandleFunc("GET /v1/status/ws", h.handleStatusWS)
}

func (h *Handler) handleStatusGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handleStatusGet")

	resp := h.processor.ProcessCommand(protocol.GetStatus)
	if errResp, ok := resp.(protocol.ErrorResponse); ok {
		utils.RespondWithJSON(w, http.StatusServiceUnavailable, errResp)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleStatusWS(w http.ResponseWriter, r *http.Request) {
	slog.Debug(">>handleStatusWS: new incoming connection")
	defer slog.Debug("<<handleStatusWS")

	opts := &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	}
	c, err := websocket.Accept(w, r, opts)
	if err != nil {
		slog.Error("websocket accept error:", "error", err)
		return
	}

	defer c.Close(websocket.StatusInternalError, "Unexpected connection close")

	ctx := c.CloseRead(r.Context())

	h.monitorStatus(ctx, c)
}

// monitorStatus pushes a status response to the client on every tick until
// the client goes away.
func (h *Handler) monitorStatus(ctx context.Context, c *websocket.Conn) {
	slog.Debug(">>monitorStatus")
	defer slog.Debug("<<monitorStatus")

	ticker := time.NewTicker(h.statusInterval)
	heartbeatTicker := time.NewTicker(h.heartbeatInterval)
	defer ticker.Stop()
	defer heartbeatTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("monitorStatus: client disconnected")
			c.Close(websocket.StatusNormalClosure, "Connection closed")
			return

		case <-ticker.C:
			resp := h.processor.ProcessCommand(protocol.GetStatus)

			err := wsjson.Write(ctx, c, resp)
			if err != nil {
				slog.Error("monitorStatus: error writing to client", "error", err)
				c.Close(websocket.StatusInternalError, "error writing status")
				return
			}

		case <-heartbeatTicker.C:
			err := c.Ping(ctx)
			if err != nil {
				slog.Error("monitorStatus: error sending ping", "error", err)
				c.Close(websocket.StatusInternalError, "error sending ping")
				return
			}
		}
	}
}

package commands

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/KyleBrandon/temp-monitor/internal/auth"
	"github.com/KyleBrandon/temp-monitor/internal/protocol"
	"github.com/KyleBrandon/temp-monitor/pkg/utils"
)

func NewHandler(mctx Monitor, apiKey string) *Handler {
	return &Handler{
		mctx:   mctx,
		apiKey: apiKey,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/commands", h.handlerCommandPost)
	mux.HandleFunc("POST /v1/commands/reset", h.handlerResetPost)
}

// handlerCommandPost runs the command in the request body and returns the
// response in the protocol encoding, JSON by default or binary with ?format=binary.
func (h *Handler) handlerCommandPost(w http.ResponseWriter, r *http.Request) {
	slog.Debug(">>handlerCommandPost")
	defer slog.Debug("<<handlerCommandPost")

	if err := auth.Authorize(r, h.apiKey); err != nil {
		utils.RespondWithError(w, http.StatusForbidden, "Not authorized to send commands", err)
		return
	}

	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, MAX_COMMAND_BYTES))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid body for command", err)
		return
	}

	cmd, err := protocol.ParseCommand(string(body))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Unknown command", err)
		return
	}

	resp := h.mctx.ProcessCommand(cmd)

	switch format := r.URL.Query().Get("format"); format {
	case "", FORMAT_JSON:
		utils.RespondWithJSON(w, http.StatusOK, resp)

	case FORMAT_BINARY:
		data, err := protocol.MarshalBinary(resp)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to encode response", err)
			return
		}

		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(http.StatusOK)
		w.Write(data)

	default:
		utils.RespondWithError(w, http.StatusBadRequest, "Unknown response format", nil)
	}
}

func (h *Handler) handlerResetPost(w http.ResponseWriter, r *http.Request) {
	slog.Debug(">>handlerResetPost")
	defer slog.Debug("<<handlerResetPost")

	if err := auth.Authorize(r, h.apiKey); err != nil {
		utils.RespondWithError(w, http.StatusForbidden, "Not authorized to reset the monitor", err)
		return
	}

	h.mctx.Reset()

	utils.RespondWithNoContent(w, http.StatusNoContent)
}

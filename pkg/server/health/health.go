package health

import (
	"log/slog"
	"net/http"

	"github.com/KyleBrandon/temp-monitor/internal/auth"
	"github.com/KyleBrandon/temp-monitor/pkg/utils"
)

func NewHandler(levelVar *slog.LevelVar, logger *slog.Logger, apiKey string) *Handler {
	return &Handler{
		levelVar: levelVar,
		logger:   logger,
		apiKey:   apiKey,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/health", h.handlerHealthGet)
	mux.HandleFunc("GET /v1/health/loglevel", h.handlerLogLevelGet)
	mux.HandleFunc("PUT /v1/health/loglevel", h.handlerLogLevelPut)
}

func (h *Handler) handlerHealthGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handlerHealthGet")

	utils.RespondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *Handler) handlerLogLevelGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handlerLogLevelGet")

	utils.RespondWithJSON(w, http.StatusOK, LogLevelResponse{Level: h.levelVar.Level().String()})
}

func (h *Handler) handlerLogLevelPut(w http.ResponseWriter, r *http.Request) {
	slog.Debug(">>handlerLogLevelPut")
	defer slog.Debug("<<handlerLogLevelPut")

	if err := auth.Authorize(r, h.apiKey); err != nil {
		utils.RespondWithError(w, http.StatusForbidden, "Not authorized to change the log level", err)
		return
	}

	level, err := utils.ParseLogLevel(r.URL.Query().Get("level"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid log level", err)
		return
	}

	h.levelVar.Set(level)
	h.logger.Info("log level changed", "level", level.String())

	utils.RespondWithJSON(w, http.StatusOK, LogLevelResponse{Level: level.String()})
}

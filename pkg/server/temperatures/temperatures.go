package temperatures

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/KyleBrandon/temp-monitor/internal/protocol"
	"github.com/KyleBrandon/temp-monitor/internal/reading"
	"github.com/KyleBrandon/temp-monitor/pkg/utils"
)

var ErrNoData = errors.New("no readings available")

func NewHandler(mctx Monitor) *Handler {
	return &Handler{
		mctx,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/temperatures", h.handlerTemperaturesGet)
	mux.HandleFunc("GET /v1/temperatures/latest", h.handlerLatestGet)
	mux.HandleFunc("GET /v1/temperatures/stats", h.handlerStatsGet)
	mux.HandleFunc("GET /v1/temperatures/count", h.handlerCountGet)
}

func (h *Handler) handlerTemperaturesGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handlerTemperaturesGet")

	readings := h.mctx.Readings()

	results := make([]TemperatureReading, 0, len(readings))
	for _, r := range readings {
		results = append(results, convertFromReading(r))
	}

	utils.RespondWithJSON(w, http.StatusOK, results)
}

func (h *Handler) handlerLatestGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handlerLatestGet")

	switch resp := h.mctx.ProcessCommand(protocol.GetLatestReading).(type) {
	case protocol.ReadingResponse:
		utils.RespondWithJSON(w, http.StatusOK, convertFromReading(reading.Reading(resp)))
	default:
		respondWithUnexpected(w, resp)
	}
}

func (h *Handler) handlerStatsGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handlerStatsGet")

	switch resp := h.mctx.ProcessCommand(protocol.GetStats).(type) {
	case protocol.StatsResponse:
		utils.RespondWithJSON(w, http.StatusOK, TemperatureStats{
			MinC:     resp.Min.Celsius,
			MaxC:     resp.Max.Celsius,
			AverageC: resp.Average.Celsius,
			AverageF: resp.Average.Fahrenheit(),
			Count:    resp.Count,
		})
	default:
		respondWithUnexpected(w, resp)
	}
}

func (h *Handler) handlerCountGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handlerCountGet")

	switch resp := h.mctx.ProcessCommand(protocol.GetReadingCount).(type) {
	case protocol.ReadingCountResponse:
		utils.RespondWithJSON(w, http.StatusOK, ReadingCount{Count: resp.Count})
	default:
		respondWithUnexpected(w, resp)
	}
}

// respondWithUnexpected maps the sentinel responses onto HTTP errors.
func respondWithUnexpected(w http.ResponseWriter, resp protocol.Response) {
	switch resp := resp.(type) {
	case protocol.NoDataResponse:
		utils.RespondWithError(w, http.StatusNotFound, "No temperature readings available", ErrNoData)
	case protocol.ErrorResponse:
		utils.RespondWithError(w, http.StatusServiceUnavailable, "Temperature monitor is not available", errors.New(resp.Message))
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Unexpected response", fmt.Errorf("unexpected response %s", protocol.Kind(resp)))
	}
}

func convertFromReading(r reading.Reading) TemperatureReading {
	return TemperatureReading{
		Timestamp:    r.Timestamp,
		TemperatureC: r.Temperature.Celsius,
		TemperatureF: r.Temperature.Fahrenheit(),
	}
}

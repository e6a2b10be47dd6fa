package temperatures

import (
	"net/http"
	"testing"

	"github.com/KyleBrandon/temp-monitor/internal/protocol"
	"github.com/KyleBrandon/temp-monitor/internal/reading"
	"github.com/KyleBrandon/temp-monitor/pkg/utils"
)

type mockMonitor struct {
	h *protocol.Handler
}

func (m *mockMonitor) ProcessCommand(cmd protocol.Command) protocol.Response {
	return m.h.ProcessCommand(cmd, 100)
}

func (m *mockMonitor) Readings() []reading.Reading {
	return m.h.Readings()
}

func newMockMonitor(t *testing.T, capacity int, temps ...float32) *mockMonitor {
	t.Helper()

	h := protocol.NewHandler(capacity, 1)
	h.Init(0)
	for i, c := range temps {
		if err := h.AddReading(reading.NewTemperature(c), uint32(i+1)); err != nil {
			t.Fatal(err)
		}
	}

	return &mockMonitor{h: h}
}

func TestTemperaturesGet(t *testing.T) {
	t.Run("should list readings oldest first", func(t *testing.T) {
		handler := NewHandler(newMockMonitor(t, 2, 10, 20, 100))

		rr := utils.TestRequest(t, http.MethodGet, "/v1/temperatures", nil, handler.handlerTemperaturesGet)
		utils.TestExpectedStatus(t, rr, http.StatusOK)

		var results []TemperatureReading
		utils.TestDecodeBody(t, rr, &results)

		if len(results) != 2 {
			t.Fatalf("expected 2 readings, got %d", len(results))
		}
		if results[0].Timestamp != 2 || results[1].Timestamp != 3 {
			t.Errorf("unexpected order %+v", results)
		}
		if results[1].TemperatureF != 212 {
			t.Errorf("expected 212°F, got %v", results[1].TemperatureF)
		}
	})

	t.Run("should return an empty list", func(t *testing.T) {
		handler := NewHandler(newMockMonitor(t, 2))

		rr := utils.TestRequest(t, http.MethodGet, "/v1/temperatures", nil, handler.handlerTemperaturesGet)
		utils.TestExpectedStatus(t, rr, http.StatusOK)
		utils.TestExpectedMessage(t, rr, "[]")
	})
}

func TestLatestGet(t *testing.T) {
	t.Run("should return not found when empty", func(t *testing.T) {
		handler := NewHandler(newMockMonitor(t, 4))

		rr := utils.TestRequest(t, http.MethodGet, "/v1/temperatures/latest", nil, handler.handlerLatestGet)
		utils.TestExpectedStatus(t, rr, http.StatusNotFound)
	})

	t.Run("should return the latest reading", func(t *testing.T) {
		handler := NewHandler(newMockMonitor(t, 4, 21, 22.5))

		rr := utils.TestRequest(t, http.MethodGet, "/v1/temperatures/latest", nil, handler.handlerLatestGet)
		utils.TestExpectedStatus(t, rr, http.StatusOK)

		var result TemperatureReading
		utils.TestDecodeBody(t, rr, &result)
		if result.Timestamp != 2 || result.TemperatureC != 22.5 {
			t.Errorf("unexpected reading %+v", result)
		}
	})

	t.Run("should be unavailable before init", func(t *testing.T) {
		handler := NewHandler(&mockMonitor{h: protocol.NewHandler(4, 1)})

		rr := utils.TestRequest(t, http.MethodGet, "/v1/temperatures/latest", nil, handler.handlerLatestGet)
		utils.TestExpectedStatus(t, rr, http.StatusServiceUnavailable)
	})
}

func TestStatsGet(t *testing.T) {
	t.Run("should return not found when empty", func(t *testing.T) {
		handler := NewHandler(newMockMonitor(t, 4))

		rr := utils.TestRequest(t, http.MethodGet, "/v1/temperatures/stats", nil, handler.handlerStatsGet)
		utils.TestExpectedStatus(t, rr, http.StatusNotFound)
	})

	t.Run("should return the statistics", func(t *testing.T) {
		handler := NewHandler(newMockMonitor(t, 4, 20, 25, 30))

		rr := utils.TestRequest(t, http.MethodGet, "/v1/temperatures/stats", nil, handler.handlerStatsGet)
		utils.TestExpectedStatus(t, rr, http.StatusOK)

		var stats TemperatureStats
		utils.TestDecodeBody(t, rr, &stats)

		expected := TemperatureStats{MinC: 20, MaxC: 30, AverageC: 25, AverageF: 77, Count: 3}
		if stats != expected {
			t.Errorf("expected %+v, got %+v", expected, stats)
		}
	})
}

func TestCountGet(t *testing.T) {
	handler := NewHandler(newMockMonitor(t, 3, 1, 2, 3, 4, 5))

	rr := utils.TestRequest(t, http.MethodGet, "/v1/temperatures/count", nil, handler.handlerCountGet)
	utils.TestExpectedStatus(t, rr, http.StatusOK)
	utils.TestExpectedMessage(t, rr, `{"count":3}`)
}

package commands

import (
	"net/http"
	"strings"
	"testing"

	"github.com/KyleBrandon/temp-monitor/internal/protocol"
	"github.com/KyleBrandon/temp-monitor/internal/reading"
	"github.com/KyleBrandon/temp-monitor/pkg/utils"
)

type mockMonitor struct {
	h      *protocol.Handler
	now    uint32
	resets int
}

func (m *mockMonitor) ProcessCommand(cmd protocol.Command) protocol.Response {
	return m.h.ProcessCommand(cmd, m.now)
}

func (m *mockMonitor) Reset() {
	m.resets++
	m.h.Init(m.now)
}

func newMockMonitor(t *testing.T) *mockMonitor {
	t.Helper()

	h := protocol.NewHandler(8, 1)
	h.Init(0)
	for i, c := range []float32{20, 25, 30} {
		if err := h.AddReading(reading.NewTemperature(c), uint32(i)); err != nil {
			t.Fatal(err)
		}
	}

	return &mockMonitor{h: h, now: 10}
}

var authorized = map[string][]string{"Authorization": {"ApiKey 12345"}}

func TestCommandPost(t *testing.T) {
	mctx := newMockMonitor(t)
	handler := NewHandler(mctx, "12345")

	t.Run("should require an api key", func(t *testing.T) {
		rr := utils.TestRequest(t, http.MethodPost, "/v1/commands", strings.NewReader("GetStats"), handler.handlerCommandPost)
		utils.TestExpectedStatus(t, rr, http.StatusForbidden)
	})

	t.Run("should reject unknown commands", func(t *testing.T) {
		rr := utils.TestRequestWithHeaders(t, http.MethodPost, "/v1/commands", authorized, strings.NewReader("Reboot"), handler.handlerCommandPost)
		utils.TestExpectedStatus(t, rr, http.StatusBadRequest)
		utils.TestExpectedMessage(t, rr, "Unknown command")
	})

	t.Run("should return the stats response", func(t *testing.T) {
		rr := utils.TestRequestWithHeaders(t, http.MethodPost, "/v1/commands", authorized, strings.NewReader(`{"command":"GetStats"}`), handler.handlerCommandPost)
		utils.TestExpectedStatus(t, rr, http.StatusOK)

		resp, err := protocol.DecodeResponse(rr.Body.Bytes())
		if err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		stats, ok := resp.(protocol.StatsResponse)
		if !ok {
			t.Fatalf("expected StatsResponse, got %T", resp)
		}
		if stats.Min.Celsius != 20 || stats.Max.Celsius != 30 || stats.Average.Celsius != 25 || stats.Count != 3 {
			t.Errorf("unexpected stats %+v", stats)
		}
	})

	t.Run("should return the binary encoding", func(t *testing.T) {
		rr := utils.TestRequestWithHeaders(t, http.MethodPost, "/v1/commands?format=binary", authorized, strings.NewReader("GetReadingCount"), handler.handlerCommandPost)
		utils.TestExpectedStatus(t, rr, http.StatusOK)

		resp, err := protocol.UnmarshalBinary(rr.Body.Bytes())
		if err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp != (protocol.ReadingCountResponse{Count: 3}) {
			t.Errorf("unexpected response %+v", resp)
		}
	})

	t.Run("should reject an unknown format", func(t *testing.T) {
		rr := utils.TestRequestWithHeaders(t, http.MethodPost, "/v1/commands?format=xml", authorized, strings.NewReader("GetStatus"), handler.handlerCommandPost)
		utils.TestExpectedStatus(t, rr, http.StatusBadRequest)
	})
}

func TestResetPost(t *testing.T) {
	mctx := newMockMonitor(t)
	handler := NewHandler(mctx, "12345")

	t.Run("should require an api key", func(t *testing.T) {
		rr := utils.TestRequest(t, http.MethodPost, "/v1/commands/reset", nil, handler.handlerResetPost)
		utils.TestExpectedStatus(t, rr, http.StatusForbidden)
		if mctx.resets != 0 {
			t.Error("expected no reset")
		}
	})

	t.Run("should reset the monitor", func(t *testing.T) {
		rr := utils.TestRequestWithHeaders(t, http.MethodPost, "/v1/commands/reset", authorized, nil, handler.handlerResetPost)
		utils.TestExpectedStatus(t, rr, http.StatusNoContent)

		if mctx.resets != 1 {
			t.Errorf("expected one reset, got %d", mctx.resets)
		}
		if _, ok := mctx.ProcessCommand(protocol.GetStats).(protocol.NoDataResponse); !ok {
			t.Error("expected no data after reset")
		}
	})
}

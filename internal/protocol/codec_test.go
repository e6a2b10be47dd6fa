package protocol

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/KyleBrandon/temp-monitor/internal/reading"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input    string
		expected Command
	}{
		{"GetStatus", GetStatus},
		{"  getstats\n", GetStats},
		{`"GetLatestReading"`, GetLatestReading},
		{`{"command": "GetReadingCount"}`, GetReadingCount},
	}

	for _, tc := range tests {
		cmd, err := ParseCommand(tc.input)
		if err != nil {
			t.Errorf("%q: unexpected error %v", tc.input, err)
			continue
		}
		if cmd != tc.expected {
			t.Errorf("%q: expected %v, got %v", tc.input, tc.expected, cmd)
		}
	}

	t.Run("should reject unknown commands", func(t *testing.T) {
		for _, input := range []string{"", "Reboot", `{"command": 7}`, `"unterminated`} {
			if _, err := ParseCommand(input); !errors.Is(err, ErrUnknownCommand) {
				t.Errorf("%q: expected ErrUnknownCommand, got %v", input, err)
			}
		}
	})
}

func TestCommandJSON(t *testing.T) {
	data, err := json.Marshal(GetLatestReading)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"GetLatestReading"` {
		t.Errorf("unexpected encoding %s", data)
	}

	var req struct {
		Command Command `json:"command"`
	}
	if err := json.Unmarshal([]byte(`{"command":"GetStats"}`), &req); err != nil {
		t.Fatal(err)
	}
	if req.Command != GetStats {
		t.Errorf("expected GetStats, got %v", req.Command)
	}

	if _, err := json.Marshal(Command(9)); err == nil {
		t.Error("expected an error encoding an unknown command")
	}
}

func TestResponseJSON(t *testing.T) {
	tests := []struct {
		name     string
		resp     Response
		expected string
	}{
		{
			name:     "status",
			resp:     StatusResponse{UptimeSeconds: 60, ReadingCount: 3, SampleRate: 10, BufferUsage: 30},
			expected: `{"Status":{"uptime_seconds":60,"reading_count":3,"sample_rate":10,"buffer_usage":30}}`,
		},
		{
			name: "stats",
			resp: StatsResponse{
				Min:     reading.NewTemperature(20),
				Max:     reading.NewTemperature(30),
				Average: reading.NewTemperature(25),
				Count:   3,
			},
			expected: `{"Stats":{"min":{"celsius":20},"max":{"celsius":30},"average":{"celsius":25},"count":3}}`,
		},
		{
			name:     "reading",
			resp:     ReadingResponse(reading.NewReading(reading.NewTemperature(21.5), 7)),
			expected: `{"Reading":{"temperature":{"celsius":21.5},"timestamp":7}}`,
		},
		{
			name:     "reading count",
			resp:     ReadingCountResponse{Count: 4},
			expected: `{"ReadingCount":4}`,
		},
		{
			name:     "no data",
			resp:     NoDataResponse{},
			expected: `"NoData"`,
		},
		{
			name:     "error",
			resp:     ErrorResponse{Message: "uninitialized"},
			expected: `{"Error":"uninitialized"}`,
		},
	}

	for _, tc := range tests {
		t.Run("should encode "+tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.resp)
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != tc.expected {
				t.Errorf("expected %s, got %s", tc.expected, data)
			}

			decoded, err := DecodeResponse(data)
			if err != nil {
				t.Fatalf("failed to decode %s: %v", data, err)
			}
			if decoded != tc.resp {
				t.Errorf("expected %+v, got %+v", tc.resp, decoded)
			}
		})
	}
}

func TestDecodeResponseErrors(t *testing.T) {
	for _, input := range []string{
		`"Rebooting"`,
		`{"Unknown":1}`,
		`{"Status":{},"Stats":{}}`,
		`{"ReadingCount":"four"}`,
		`[1,2,3]`,
	} {
		if _, err := DecodeResponse([]byte(input)); !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("%s: expected ErrMalformedResponse, got %v", input, err)
		}
	}
}

func TestEncodeBounded(t *testing.T) {
	h := NewHandler(4, 10)
	h.Init(0)
	if err := h.AddReading(reading.NewTemperature(22.25), 3); err != nil {
		t.Fatal(err)
	}

	resp := h.ProcessCommand(GetStatus, 5)

	t.Run("should encode within the limit", func(t *testing.T) {
		data, err := EncodeBounded(resp, 256)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(data) == 0 || len(data) > 256 {
			t.Errorf("unexpected encoded length %d", len(data))
		}
	})

	t.Run("should fail without touching handler state", func(t *testing.T) {
		_, err := EncodeBounded(resp, 8)
		if !errors.Is(err, ErrBufferTooSmall) {
			t.Errorf("expected ErrBufferTooSmall, got %v", err)
		}

		if h.Len() != 1 {
			t.Errorf("expected the stored reading to survive, got %d", h.Len())
		}
		status := h.ProcessCommand(GetStatus, 5).(StatusResponse)
		if status.ReadingCount != 1 {
			t.Errorf("expected lifetime count 1, got %d", status.ReadingCount)
		}
	})
}

func TestBinaryEncoding(t *testing.T) {
	t.Run("should decode what it encodes", func(t *testing.T) {
		for _, resp := range []Response{
			StatusResponse{UptimeSeconds: 3600, ReadingCount: 70000, SampleRate: 10, BufferUsage: 100},
			StatsResponse{Min: reading.NewTemperature(-4.5), Max: reading.NewTemperature(31), Average: reading.NewTemperature(12.25), Count: 64},
			ReadingResponse(reading.NewReading(reading.NewTemperature(18.75), 42)),
			ReadingCountResponse{Count: 12},
			NoDataResponse{},
			ErrorResponse{Message: "uninitialized"},
		} {
			data, err := MarshalBinary(resp)
			if err != nil {
				t.Fatalf("%s: %v", Kind(resp), err)
			}

			decoded, err := UnmarshalBinary(data)
			if err != nil {
				t.Fatalf("%s: %v", Kind(resp), err)
			}
			if decoded != resp {
				t.Errorf("expected %+v, got %+v", resp, decoded)
			}
		}
	})

	t.Run("should use a single byte for no data", func(t *testing.T) {
		data, _ := MarshalBinary(NoDataResponse{})
		if len(data) != 1 {
			t.Errorf("expected 1 byte, got %d", len(data))
		}
	})

	t.Run("should cut long error messages on a rune boundary", func(t *testing.T) {
		msg := strings.Repeat("a", 254) + "é" + "tail"
		data, err := MarshalBinary(ErrorResponse{Message: msg})
		if err != nil {
			t.Fatal(err)
		}

		decoded, err := UnmarshalBinary(data)
		if err != nil {
			t.Fatal(err)
		}

		got := decoded.(ErrorResponse).Message
		if got != strings.Repeat("a", 254) {
			t.Errorf("expected the message to stop before the split rune, got %d bytes", len(got))
		}
		if !utf8.ValidString(got) {
			t.Error("expected valid UTF-8")
		}
	})

	t.Run("should reject truncated input", func(t *testing.T) {
		data, _ := MarshalBinary(StatusResponse{UptimeSeconds: 1})
		if _, err := UnmarshalBinary(data[:5]); !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("expected ErrMalformedResponse, got %v", err)
		}
	})

	t.Run("should reject unknown tags", func(t *testing.T) {
		if _, err := UnmarshalBinary([]byte{0xff}); !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("expected ErrMalformedResponse, got %v", err)
		}
		if _, err := UnmarshalBinary(nil); !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("expected ErrMalformedResponse, got %v", err)
		}
	})
}

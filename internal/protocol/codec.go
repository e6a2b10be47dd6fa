package protocol

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/KyleBrandon/temp-monitor/internal/reading"
	"github.com/KyleBrandon/temp-monitor/internal/store"
)

// binary tags, one per response variant
const (
	tagStatus byte = iota + 1
	tagStats
	tagReading
	tagReadingCount
	tagNoData
	tagError
)

var ErrMalformedResponse = errors.New("malformed response")

var commandNames = [...]string{
	GetStatus:        "GetStatus",
	GetStats:         "GetStats",
	GetLatestReading: "GetLatestReading",
	GetReadingCount:  "GetReadingCount",
}

func (c Command) String() string {
	if c < 0 || int(c) >= len(commandNames) {
		return fmt.Sprintf("Command(%d)", int(c))
	}
	return commandNames[c]
}

// ParseCommand accepts a bare command name, a JSON string or a JSON object
// of the form {"command": "GetStats"}.
func ParseCommand(s string) (Command, error) {
	s = strings.TrimSpace(s)

	switch {
	case strings.HasPrefix(s, "{"):
		var req struct {
			Command string `json:"command"`
		}
		if err := json.Unmarshal([]byte(s), &req); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrUnknownCommand, err)
		}
		s = req.Command

	case strings.HasPrefix(s, `"`):
		var name string
		if err := json.Unmarshal([]byte(s), &name); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrUnknownCommand, err)
		}
		s = name
	}

	for i, name := range commandNames {
		if strings.EqualFold(name, s) {
			return Command(i), nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownCommand, s)
}

func (c Command) MarshalJSON() ([]byte, error) {
	if c < 0 || int(c) >= len(commandNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCommand, int(c))
	}
	return json.Marshal(commandNames[c])
}

func (c *Command) UnmarshalJSON(data []byte) error {
	cmd, err := ParseCommand(string(data))
	if err != nil {
		return err
	}

	*c = cmd
	return nil
}

func (r StatusResponse) MarshalJSON() ([]byte, error) {
	type status StatusResponse
	return json.Marshal(map[string]status{"Status": status(r)})
}

func (r StatsResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]store.Statistics{"Stats": store.Statistics(r)})
}

func (r ReadingResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]reading.Reading{"Reading": reading.Reading(r)})
}

func (r ReadingCountResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]int{"ReadingCount": r.Count})
}

func (NoDataResponse) MarshalJSON() ([]byte, error) {
	return []byte(`"NoData"`), nil
}

func (r ErrorResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"Error": r.Message})
}

// DecodeResponse parses the tagged JSON form written by the response types.
func DecodeResponse(data []byte) (Response, error) {
	data = bytes.TrimSpace(data)

	if bytes.HasPrefix(data, []byte(`"`)) {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		if name == "NoData" {
			return NoDataResponse{}, nil
		}
		return nil, fmt.Errorf("%w: unknown variant %q", ErrMalformedResponse, name)
	}

	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(tagged) != 1 {
		return nil, fmt.Errorf("%w: expected one variant, found %d", ErrMalformedResponse, len(tagged))
	}

	for kind, body := range tagged {
		switch kind {
		case "Status":
			var s StatusResponse
			err := json.Unmarshal(body, &s)
			return s, wrapMalformed(err)

		case "Stats":
			var s store.Statistics
			err := json.Unmarshal(body, &s)
			return StatsResponse(s), wrapMalformed(err)

		case "Reading":
			var r reading.Reading
			err := json.Unmarshal(body, &r)
			return ReadingResponse(r), wrapMalformed(err)

		case "ReadingCount":
			var n int
			err := json.Unmarshal(body, &n)
			return ReadingCountResponse{Count: n}, wrapMalformed(err)

		case "Error":
			var msg string
			err := json.Unmarshal(body, &msg)
			return ErrorResponse{Message: msg}, wrapMalformed(err)

		default:
			return nil, fmt.Errorf("%w: unknown variant %q", ErrMalformedResponse, kind)
		}
	}

	return nil, ErrMalformedResponse
}

func wrapMalformed(err error) error {
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// EncodeBounded encodes the response as JSON and fails when it would not fit
// in a buffer of limit bytes.
func EncodeBounded(r Response, limit int) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}

	if len(data) > limit {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrBufferTooSmall, len(data), limit)
	}

	return data, nil
}

// MarshalBinary packs a response into a tag byte followed by little endian fields.
func MarshalBinary(r Response) ([]byte, error) {
	le := binary.LittleEndian

	switch v := r.(type) {
	case StatusResponse:
		b := []byte{tagStatus}
		b = le.AppendUint32(b, v.UptimeSeconds)
		b = le.AppendUint32(b, v.ReadingCount)
		b = le.AppendUint32(b, v.SampleRate)
		return append(b, v.BufferUsage), nil

	case StatsResponse:
		b := []byte{tagStats}
		b = le.AppendUint32(b, math.Float32bits(v.Min.Celsius))
		b = le.AppendUint32(b, math.Float32bits(v.Max.Celsius))
		b = le.AppendUint32(b, math.Float32bits(v.Average.Celsius))
		return le.AppendUint32(b, uint32(v.Count)), nil

	case ReadingResponse:
		b := []byte{tagReading}
		b = le.AppendUint32(b, math.Float32bits(v.Temperature.Celsius))
		return le.AppendUint32(b, v.Timestamp), nil

	case ReadingCountResponse:
		return le.AppendUint32([]byte{tagReadingCount}, uint32(v.Count)), nil

	case NoDataResponse:
		return []byte{tagNoData}, nil

	case ErrorResponse:
		msg := truncateUTF8(v.Message, math.MaxUint8)
		b := []byte{tagError, byte(len(msg))}
		return append(b, msg...), nil
	}

	return nil, fmt.Errorf("%w: %T", ErrMalformedResponse, r)
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}

	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}

	return s[:n]
}

// UnmarshalBinary is the inverse of MarshalBinary.
func UnmarshalBinary(data []byte) (Response, error) {
	if len(data) == 0 {
		return nil, ErrMalformedResponse
	}

	le := binary.LittleEndian
	body := data[1:]
	need := func(n int) error {
		if len(body) < n {
			return fmt.Errorf("%w: need %d bytes, have %d", ErrMalformedResponse, n, len(body))
		}
		return nil
	}
	f32 := func(b []byte) reading.Temperature {
		return reading.NewTemperature(math.Float32frombits(le.Uint32(b)))
	}

	switch data[0] {
	case tagStatus:
		if err := need(13); err != nil {
			return nil, err
		}
		return StatusResponse{
			UptimeSeconds: le.Uint32(body[0:]),
			ReadingCount:  le.Uint32(body[4:]),
			SampleRate:    le.Uint32(body[8:]),
			BufferUsage:   body[12],
		}, nil

	case tagStats:
		if err := need(16); err != nil {
			return nil, err
		}
		return StatsResponse{
			Min:     f32(body[0:]),
			Max:     f32(body[4:]),
			Average: f32(body[8:]),
			Count:   int(le.Uint32(body[12:])),
		}, nil

	case tagReading:
		if err := need(8); err != nil {
			return nil, err
		}
		return ReadingResponse{
			Temperature: f32(body[0:]),
			Timestamp:   le.Uint32(body[4:]),
		}, nil

	case tagReadingCount:
		if err := need(4); err != nil {
			return nil, err
		}
		return ReadingCountResponse{Count: int(le.Uint32(body))}, nil

	case tagNoData:
		return NoDataResponse{}, nil

	case tagError:
		if err := need(1); err != nil {
			return nil, err
		}
		n := int(body[0])
		if err := need(1 + n); err != nil {
			return nil, err
		}
		return ErrorResponse{Message: string(body[1 : 1+n])}, nil
	}

	return nil, fmt.Errorf("%w: unknown tag %d", ErrMalformedResponse, data[0])
}

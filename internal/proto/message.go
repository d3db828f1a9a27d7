package proto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/vovakirdan/msgboard/internal/core"
)

// ErrInvalidPayload marks bytes that are not a JSON object.
var ErrInvalidPayload = errors.New("invalid payload")

// Payload is the JSON object sent from the web server to the ingest server,
// one per TCP connection, terminated by the sender closing its write side.
//
// The web server always sends strings. Other senders may put any JSON value
// in either field; Decode keeps it as is.
type Payload struct {
	Username any `json:"username"`
	Message  any `json:"message"`
}

// FromMessage maps a domain message onto the wire payload.
func FromMessage(m core.Message) Payload {
	return Payload{Username: m.Username, Message: m.Text}
}

// Record stamps the payload with the ingest time.
func (p Payload) Record(at time.Time) core.Record {
	return core.NewRecordValues(at, p.Username, p.Message)
}

// Encode serializes the payload as UTF-8 JSON without a trailing newline.
func Encode(p Payload) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return data, nil
}

// Decode parses one payload. A missing field becomes "", an explicit null
// stays nil, numbers become int64 when integral and float64 otherwise.
// Unknown fields are ignored.
func Decode(data []byte) (Payload, error) {
	if !utf8.Valid(data) {
		return Payload{}, fmt.Errorf("%w: not valid utf-8", ErrInvalidPayload)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Payload{}, fmt.Errorf("%w: expected a JSON object", ErrInvalidPayload)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	var (
		p   Payload
		err error
	)
	if p.Username, err = decodeField(fields, "username"); err != nil {
		return Payload{}, err
	}
	if p.Message, err = decodeField(fields, "message"); err != nil {
		return Payload{}, err
	}
	return p, nil
}

func decodeField(fields map[string]json.RawMessage, key string) (any, error) {
	raw, ok := fields[key]
	if !ok {
		return "", nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, key, err)
	}
	return normalize(v), nil
}

// normalize replaces json.Number so stores see plain Go numbers.
func normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		for k, e := range t {
			t[k] = normalize(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalize(e)
		}
		return t
	default:
		return v
	}
}

package proto

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/vovakirdan/msgboard/internal/core"
)

func TestEncodeMatchesWireShape(t *testing.T) {
	data, err := Encode(FromMessage(core.NewMessage("alice", "hi")))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got := string(data); got != `{"username":"alice","message":"hi"}` {
		t.Fatalf("unexpected wire bytes %s", got)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Payload
		wantErr bool
	}{
		{name: "full", in: `{"username":"alice","message":"hi"}`, want: Payload{Username: "alice", Message: "hi"}},
		{name: "missing message", in: `{"username":"bob"}`, want: Payload{Username: "bob", Message: ""}},
		{name: "empty object", in: `{}`, want: Payload{Username: "", Message: ""}},
		{name: "extra fields", in: ` {"username":"c","message":"m","x":1}` + "\n", want: Payload{Username: "c", Message: "m"}},
		{name: "unicode", in: `{"username":"жора","message":"привет"}`, want: Payload{Username: "жора", Message: "привет"}},
		{name: "integer", in: `{"username":42,"message":"hi"}`, want: Payload{Username: int64(42), Message: "hi"}},
		{name: "float and bool", in: `{"username":1.5,"message":true}`, want: Payload{Username: 1.5, Message: true}},
		{name: "null", in: `{"username":null,"message":"hi"}`, want: Payload{Username: nil, Message: "hi"}},
		{
			name: "nested",
			in:   `{"username":"a","message":{"text":"hi","tags":[1,"x"]}}`,
			want: Payload{Username: "a", Message: map[string]any{"text": "hi", "tags": []any{int64(1), "x"}}},
		},
		{name: "garbage", in: `not json`, wantErr: true},
		{name: "truncated", in: `{"username":"a"`, wantErr: true},
		{name: "array", in: `["a","b"]`, wantErr: true},
		{name: "empty", in: ``, wantErr: true},
		{name: "trailing data", in: `{"username":"a"} {}`, wantErr: true},
		{name: "bad utf8", in: "{\"username\":\"\xff\"}", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.in))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPayload) {
					t.Fatalf("expected ErrInvalidPayload, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestPayloadRecord(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)
	rec := Payload{Username: int64(7), Message: "hi"}.Record(at)

	want := core.Record{Date: "2024-05-01 12:00:00.000000", Username: int64(7), Message: "hi"}
	if !reflect.DeepEqual(rec, want) {
		t.Fatalf("got %#v, want %#v", rec, want)
	}
}

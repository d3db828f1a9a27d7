package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/msgboard/internal/core"
	"github.com/vovakirdan/msgboard/internal/store"
)

var (
	_ store.Store        = (*SQLiteStore)(nil)
	_ store.RecordLister = (*SQLiteStore)(nil)
)

func TestInsertAndListRecords(t *testing.T) {
	req := require.New(t)
	s, err := New(":memory:")
	req.NoError(err)
	defer s.Close(context.Background())

	ctx := context.Background()
	records := []core.Record{
		{Date: "2024-01-01 10:00:00.000001", Username: "alice", Message: "hi"},
		{Date: "2024-01-01 10:00:01.000002", Username: "bob", Message: "hello"},
		{Date: "2024-01-01 10:00:02.000003", Username: "clara", Message: "hey"},
	}
	for _, rec := range records {
		req.NoError(s.InsertRecord(ctx, rec))
	}

	all, err := s.ListRecords(ctx, 0)
	req.NoError(err)
	req.Equal([]core.Record{records[2], records[1], records[0]}, all)

	latest, err := s.ListRecords(ctx, 1)
	req.NoError(err)
	req.Equal([]core.Record{records[2]}, latest)
}

func TestInsertNonStringFieldsAsJSON(t *testing.T) {
	req := require.New(t)
	s, err := New(":memory:")
	req.NoError(err)
	defer s.Close(context.Background())

	ctx := context.Background()
	req.NoError(s.InsertRecord(ctx, core.Record{Date: "2024-01-01 10:00:00.000000", Username: int64(42), Message: true}))
	req.NoError(s.InsertRecord(ctx, core.Record{Date: "2024-01-01 10:00:01.000000", Username: nil, Message: map[string]any{"a": 1.5}}))

	got, err := s.ListRecords(ctx, 0)
	req.NoError(err)
	req.Equal([]core.Record{
		{Date: "2024-01-01 10:00:01.000000", Username: nil, Message: `{"a":1.5}`},
		{Date: "2024-01-01 10:00:00.000000", Username: "42", Message: "true"},
	}, got)
}

func TestNewPersistsToFile(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "messages.db")
	ctx := context.Background()

	s, err := New(path)
	req.NoError(err)
	req.NoError(s.Ping(ctx))
	req.NoError(s.InsertRecord(ctx, core.Record{Date: "2024-01-01 00:00:00.000000", Username: "a", Message: "b"}))
	req.NoError(s.Close(ctx))

	reopened, err := New(path)
	req.NoError(err)
	defer reopened.Close(ctx)

	got, err := reopened.ListRecords(ctx, 0)
	req.NoError(err)
	req.Len(got, 1)
	req.Equal("a", got[0].Username)
}

func TestNewWithSetupFailure(t *testing.T) {
	_, err := NewWithSetup(":memory:", func(*sql.DB) error {
		return errors.New("boom")
	})
	require.ErrorContains(t, err, "setup: boom")
}

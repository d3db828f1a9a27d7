package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/msgboard/internal/core"
)

type fakeStore struct {
	pingErr error
	closed  bool
}

func (f *fakeStore) InsertRecord(context.Context, core.Record) error { return nil }
func (f *fakeStore) Ping(context.Context) error                     { return f.pingErr }
func (f *fakeStore) Close(context.Context) error {
	f.closed = true
	return nil
}

type recordingSleep struct {
	calls []time.Duration
}

func (r *recordingSleep) sleep(_ context.Context, d time.Duration) error {
	r.calls = append(r.calls, d)
	return nil
}

func TestConnectWithRetrySucceedsAfterFailures(t *testing.T) {
	req := require.New(t)
	logger := zerolog.Nop()
	sleeper := &recordingSleep{}

	var handles []*fakeStore
	opener := func(context.Context) (Store, error) {
		st := &fakeStore{}
		if len(handles) < 2 {
			st.pingErr = errors.New("connection refused")
		}
		handles = append(handles, st)
		return st, nil
	}

	st, err := ConnectWithRetry(context.Background(), opener, RetryPolicy{
		Attempts: 30,
		Delay:    time.Second,
		Sleep:    sleeper.sleep,
	}, &logger)
	req.NoError(err)
	req.Same(handles[2], st)
	req.Len(handles, 3)
	req.Equal([]time.Duration{time.Second, time.Second}, sleeper.calls)
	req.True(handles[0].closed, "failed handle must be closed")
	req.True(handles[1].closed, "failed handle must be closed")
	req.False(handles[2].closed)
}

func TestConnectWithRetryGivesUp(t *testing.T) {
	req := require.New(t)
	logger := zerolog.Nop()
	sleeper := &recordingSleep{}

	calls := 0
	opener := func(context.Context) (Store, error) {
		calls++
		return nil, errors.New("no route to host")
	}

	st, err := ConnectWithRetry(context.Background(), opener, RetryPolicy{
		Attempts: 5,
		Delay:    250 * time.Millisecond,
		Sleep:    sleeper.sleep,
	}, &logger)
	req.Nil(st)
	req.ErrorIs(err, ErrUnavailable)
	req.ErrorContains(err, "no route to host")
	req.Equal(5, calls)
	req.Len(sleeper.calls, 4, "no sleep after the final attempt")
}

func TestConnectWithRetryStopsOnCancel(t *testing.T) {
	req := require.New(t)
	logger := zerolog.Nop()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	opener := func(context.Context) (Store, error) {
		calls++
		return nil, errors.New("down")
	}
	sleep := func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}

	_, err := ConnectWithRetry(ctx, opener, RetryPolicy{Attempts: 10, Delay: time.Second, Sleep: sleep}, &logger)
	req.ErrorIs(err, context.Canceled)
	req.Equal(1, calls)
}

func TestSleepContext(t *testing.T) {
	req := require.New(t)
	req.NoError(sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req.ErrorIs(sleepContext(ctx, time.Hour), context.Canceled)
}

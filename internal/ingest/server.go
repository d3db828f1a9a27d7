package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/msgboard/internal/proto"
	"github.com/vovakirdan/msgboard/internal/store"
	"github.com/vovakirdan/msgboard/internal/utils"
)

// ErrServerClosed is returned by Serve after Shutdown.
var ErrServerClosed = errors.New("ingest: server closed")

var errPayloadTooLarge = errors.New("payload too large")

const maxAcceptBackoff = time.Second

// Options tunes a Server. The zero value reproduces the plain behavior:
// no read deadline, no size cap, wall clock time.
type Options struct {
	ReadTimeout     time.Duration
	MaxPayloadBytes int64
	Now             func() time.Time
	// ConnStateHook, if set, observes every state transition.
	ConnStateHook func(connID string, state ConnState)
}

// Server accepts TCP connections one at a time. Each connection carries a
// single JSON payload terminated by EOF, which is stored as one record.
type Server struct {
	store store.RecordStore
	opts  Options
	log   *zerolog.Logger

	mu       sync.Mutex
	listener net.Listener
	closed   bool
}

// NewServer creates a server writing into st.
func NewServer(st store.RecordStore, opts Options, logger *zerolog.Logger) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Server{store: st, opts: opts, log: logger}
}

// ListenAndServe binds addr and serves until Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ln)
}

// Serve runs the accept loop on ln. Connections are handled serially; no
// failure inside a connection stops the loop.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		ln.Close()
		return ErrServerClosed
	}
	s.listener = ln
	s.mu.Unlock()

	s.log.Info().Str("addr", ln.Addr().String()).Msg("ingest server listening")

	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.isClosed() || errors.Is(err, net.ErrClosed) {
				return ErrServerClosed
			}
			backoff = nextBackoff(backoff)
			s.log.Error().Err(err).Dur("retry_in", backoff).Msg("accept failed")
			time.Sleep(backoff)
			continue
		}
		backoff = 0
		s.handleConn(conn)
	}
}

// Shutdown stops accepting connections. A connection being handled is
// finished first, after which Serve returns ErrServerClosed.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Server) handleConn(conn net.Conn) {
	id := utils.ShortID(utils.NewID())
	logger := s.log.With().Str("conn_id", id).Str("remote", conn.RemoteAddr().String()).Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("connection handler panicked")
		}
		conn.Close()
		s.setState(id, StateClosed)
	}()

	s.setState(id, StateAccepted)
	logger.Debug().Msg("connection accepted")

	s.setState(id, StateReading)
	data, err := s.readPayload(conn)
	if err != nil {
		s.setState(id, StateParseFailed)
		logger.Warn().Err(err).Msg("failed to read payload")
		return
	}

	payload, err := proto.Decode(data)
	if err != nil {
		s.setState(id, StateParseFailed)
		logger.Warn().Err(err).Int("bytes", len(data)).Msg("failed to parse payload")
		return
	}
	s.setState(id, StateParsed)

	rec := payload.Record(s.opts.Now())
	if err := s.store.InsertRecord(context.Background(), rec); err != nil {
		s.setState(id, StateInsertFailed)
		logger.Error().Err(err).Msg("failed to save record")
		return
	}
	s.setState(id, StateInserted)

	logger.Info().
		Str("date", rec.Date).
		Interface("username", rec.Username).
		Interface("message", rec.Message).
		Msg("saved message")
}

func (s *Server) readPayload(conn net.Conn) ([]byte, error) {
	if s.opts.ReadTimeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout)); err != nil {
			return nil, fmt.Errorf("set read deadline: %w", err)
		}
	}

	var r io.Reader = conn
	if s.opts.MaxPayloadBytes > 0 {
		r = io.LimitReader(conn, s.opts.MaxPayloadBytes+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if s.opts.MaxPayloadBytes > 0 && int64(len(data)) > s.opts.MaxPayloadBytes {
		return nil, fmt.Errorf("%w: over %d bytes", errPayloadTooLarge, s.opts.MaxPayloadBytes)
	}
	return data, nil
}

func (s *Server) setState(id string, state ConnState) {
	if s.opts.ConnStateHook != nil {
		s.opts.ConnStateHook(id, state)
	}
}

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	d *= 2
	if d > maxAcceptBackoff {
		d = maxAcceptBackoff
	}
	return d
}

package relay

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/msgboard/internal/core"
	"github.com/vovakirdan/msgboard/internal/proto"
)

// Sender hands a validated message to the ingest service.
type Sender interface {
	Send(ctx context.Context, msg core.Message) error
}

// Client opens one TCP connection to the ingest server per message.
type Client struct {
	addr   string
	dialer net.Dialer
	log    *zerolog.Logger
}

// NewClient builds a client for the ingest server at addr (host:port).
func NewClient(addr string, dialTimeout time.Duration, logger *zerolog.Logger) *Client {
	return &Client{
		addr:   addr,
		dialer: net.Dialer{Timeout: dialTimeout},
		log:    logger,
	}
}

// Send writes msg as a JSON payload and closes the connection to mark its end.
// Incomplete messages are refused before dialing.
func (c *Client) Send(ctx context.Context, msg core.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	data, err := proto.Encode(proto.FromMessage(msg))
	if err != nil {
		return err
	}

	conn, err := c.dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return fmt.Errorf("dial ingest: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	}

	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}

	if tcp, ok := conn.(*net.TCPConn); ok {
		if err := tcp.CloseWrite(); err != nil {
			return fmt.Errorf("close write: %w", err)
		}
	}

	c.log.Debug().Str("ingest_addr", c.addr).Int("bytes", len(data)).Msg("payload forwarded")
	return nil
}

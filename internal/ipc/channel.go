//go:build windows

// Package ipc owns the two named-pipe channels a session bridge uses:
// inputs (read by the bridge) and updates (written by the bridge), each
// addressed as "remotesession_<session_id>_<name>" per §6. Piping is
// backed by github.com/Microsoft/go-winio, the same named-pipe client
// the pack's autoupdate connector test dials into
// (winio.DialPipeContext).
package ipc

import (
	"context"
	"fmt"
	"io"
	"net"

	"github.com/Microsoft/go-winio"
)

// Channel is one half-duplex named-pipe byte stream. The bridge listens
// for the web-facing gateway to connect, matching the "opened during
// connect, closed on teardown" lifecycle in §3.
type Channel struct {
	path     string
	listener net.Listener
	conn     net.Conn
}

// Listen creates the named pipe and blocks until a peer connects or ctx
// is cancelled.
func Listen(ctx context.Context, path string) (*Channel, error) {
	l, err := winio.ListenPipe(path, nil)
	if err != nil {
		return nil, fmt.Errorf("listen pipe %s: %w", path, err)
	}

	type acceptResult struct {
		conn net.Conn
		err  error
	}
	resultCh := make(chan acceptResult, 1)
	go func() {
		conn, err := l.Accept()
		resultCh <- acceptResult{conn, err}
	}()

	select {
	case <-ctx.Done():
		l.Close()
		return nil, ctx.Err()
	case r := <-resultCh:
		if r.err != nil {
			l.Close()
			return nil, fmt.Errorf("accept pipe %s: %w", path, r.err)
		}
		return &Channel{path: path, listener: l, conn: r.conn}, nil
	}
}

// Read implements io.Reader, reading from the connected peer.
func (c *Channel) Read(p []byte) (int, error) {
	return c.conn.Read(p)
}

// Write implements io.Writer, writing to the connected peer in a single
// call per invocation (callers are expected to pass one fully-built
// message, per §4.4/§4.7's single-syscall-per-write requirement).
func (c *Channel) Write(p []byte) (int, error) {
	return c.conn.Write(p)
}

// Close tears down both the connection and the listening pipe handle.
func (c *Channel) Close() error {
	var err error
	if c.conn != nil {
		err = c.conn.Close()
	}
	if c.listener != nil {
		if lerr := c.listener.Close(); err == nil {
			err = lerr
		}
	}
	return err
}

var _ io.ReadWriteCloser = (*Channel)(nil)

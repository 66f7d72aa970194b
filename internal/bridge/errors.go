package bridge

import (
	"errors"
	"fmt"
	"strings"
)

// IPCKind classifies an inputs/updates channel failure, per §7's
// IpcRead{kind}/IpcWrite{kind} taxonomy. All kinds are terminal: the
// reader exits and the session tears down.
type IPCKind int

const (
	IPCKindOther IPCKind = iota
	IPCKindInvalidHandle
	IPCKindNotConnected
	IPCKindBusy
	IPCKindBadPipe
	IPCKindBrokenPipe
)

func (k IPCKind) String() string {
	switch k {
	case IPCKindInvalidHandle:
		return "invalid handle"
	case IPCKindNotConnected:
		return "not connected"
	case IPCKindBusy:
		return "busy"
	case IPCKindBadPipe:
		return "bad pipe"
	case IPCKindBrokenPipe:
		return "broken pipe"
	default:
		return "other"
	}
}

// IPCError wraps an underlying channel error with its classified kind and
// which direction (read/write) it occurred on.
type IPCError struct {
	Op   string // "read" or "write"
	Kind IPCKind
	Err  error
}

func (e *IPCError) Error() string {
	return fmt.Sprintf("ipc %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *IPCError) Unwrap() error { return e.Err }

// classifyIPCError maps the loose vocabulary Windows pipe errors surface
// as (via their Error() text, since the underlying syscall.Errno isn't
// portable to classify here) onto an IPCKind. Unrecognized errors map to
// IPCKindOther, which is still terminal.
func classifyIPCError(op string, err error) error {
	if err == nil {
		return nil
	}

	msg := strings.ToLower(err.Error())
	kind := IPCKindOther
	switch {
	case strings.Contains(msg, "invalid handle"):
		kind = IPCKindInvalidHandle
	case strings.Contains(msg, "not connected") || errors.Is(err, errPipeNotConnected):
		kind = IPCKindNotConnected
	case strings.Contains(msg, "pipe busy") || strings.Contains(msg, "all pipe instances are busy"):
		kind = IPCKindBusy
	case strings.Contains(msg, "bad pipe"):
		kind = IPCKindBadPipe
	case strings.Contains(msg, "broken pipe") || strings.Contains(msg, "closed pipe"):
		kind = IPCKindBrokenPipe
	}

	return &IPCError{Op: op, Kind: kind, Err: err}
}

var errPipeNotConnected = errors.New("pipe not connected")

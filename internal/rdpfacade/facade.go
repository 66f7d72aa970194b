// Package rdpfacade declares the narrow interface the command
// dispatcher (C6) and capture hooks (C9) use to drive the actual RDP
// protocol stack. The stack itself — connection, security negotiation,
// the graphics pipeline, clipboard redirection, input event encoding —
// is an external collaborator and out of scope here.
package rdpfacade

// MouseButton identifies which pointer button a button event targets.
type MouseButton int

const (
	ButtonLeft MouseButton = iota
	ButtonMiddle
	ButtonRight
)

// Facade is implemented by the RDP client the bridge drives. Every
// method is expected to be non-blocking or to return quickly; Connect
// is the one operation expected to run on its own goroutine (the
// "spawn RDP client thread" effect of the CON command).
type Facade interface {
	// SetServer records the target host/port parsed from an SRV command.
	SetServer(host string, port int)
	// SetVMConnect switches to Hyper-V VM-connect mode: port 2179,
	// security negotiation disabled, a preconnection PDU carrying guid.
	SetVMConnect(guid string)
	SetDomain(domain string)
	SetUsername(username string)
	SetPassword(password string)
	SetAlternateShell(program string)

	// Connect spawns the client connection per the CON command.
	Connect() error
	// Disconnect tears down an active connection; safe to call when
	// not connected.
	Disconnect()

	SendUnicodeKey(code int, down bool)
	SendScancodeKey(code int, down, extended bool)
	SendMouseMove(x, y int)
	SendMouseButton(button MouseButton, down bool, x, y int)
	SendMouseWheel(flags uint32, x, y int)

	// RequestClipboard asks the server for its UNICODETEXT clipboard
	// format; the resulting text arrives asynchronously and is expected
	// to land on session.ClipboardState via the facade's own callback
	// wiring, not as a return value here.
	RequestClipboard()
}

// Package bridge implements the Session Bridge (C7) and the Capture
// Hooks (C9): the state machine owning the two IPC channels, the input
// reader, and the three capture entry points the RDP facade calls into
// when the display changes. Generalizes the WebSocket relay loop
// (startBidirectionalRelay / wsToRdp / rdpToWsWithMutex) in the
// teacher's internal/handler package into an IPC-channel relay driven
// by the same single-owner-of-the-write-handle discipline (wsMu).
package bridge

import (
	"bytes"
	"fmt"
	"io"

	"github.com/rcarmo/remotesession-bridge/internal/capture"
	"github.com/rcarmo/remotesession-bridge/internal/command"
	"github.com/rcarmo/remotesession-bridge/internal/encode"
	"github.com/rcarmo/remotesession-bridge/internal/logging"
	"github.com/rcarmo/remotesession-bridge/internal/pixel"
	"github.com/rcarmo/remotesession-bridge/internal/printer"
	"github.com/rcarmo/remotesession-bridge/internal/quality"
	"github.com/rcarmo/remotesession-bridge/internal/rdpfacade"
	"github.com/rcarmo/remotesession-bridge/internal/session"
	"github.com/rcarmo/remotesession-bridge/internal/wire"
)

// State is the Session Bridge's lifecycle state, per §4.7.
type State int

const (
	Configured State = iota
	Connected
	Running
	Terminating
)

// Bridge owns the session, the RDP facade, the screen/cursor sources,
// the printer registry, and the single-writer updates actor.
type Bridge struct {
	Session  *session.Session
	Facade   rdpfacade.Facade
	Screen   capture.ScreenSource
	Cursor   capture.CursorSource
	Printers *printer.Registry

	state          State
	emitter        *emitter
	inputs         io.Reader
	readChunkBytes int
	debug          *debugCapture
}

// New constructs a Bridge in the Configured state from already-open
// inputs/updates channels and starts the updates actor immediately. Run
// then moves it to Running; the Bridge itself never enters the
// Connected state.
func New(sess *session.Session, facade rdpfacade.Facade, screen capture.ScreenSource, cursor capture.CursorSource, printers *printer.Registry, inputs io.Reader, updates io.Writer, readChunkBytes int) *Bridge {
	return &Bridge{
		Session:        sess,
		Facade:         facade,
		Screen:         screen,
		Cursor:         cursor,
		Printers:       printers,
		state:          Configured,
		emitter:        newEmitter(updates, sess),
		inputs:         inputs,
		readChunkBytes: readChunkBytes,
		debug:          newDebugCapture(false, "", sess.ID),
	}
}

// EnableDebugCapture turns on §4.9.1's debug frame capture: every frame
// emitted from this point on is also written under moduleParentDir
// before being handed to the updates writer.
func (b *Bridge) EnableDebugCapture(moduleParentDir string) {
	b.debug = newDebugCapture(true, moduleParentDir, b.Session.ID)
}

// State reports the bridge's current lifecycle state.
func (b *Bridge) State() State { return b.state }

// EmitText implements command.Hooks, handing a text message to the
// single-writer updates actor.
func (b *Bridge) EmitText(msg string) error {
	return b.emitter.EmitText(msg)
}

// SendScreen implements command.Hooks and the public send_screen entry
// point (C9): capture the full desktop and process it as a fullscreen
// frame. A no-op if there is no primary drawing surface.
func (b *Bridge) SendScreen() {
	bmp, err := capture.CaptureFull(b.Screen, b.Session.Policy)
	if err != nil {
		logging.Default().Warn("capture full screen failed: %v", err)
		return
	}
	if bmp == nil {
		return
	}
	b.process(bmp, true)
}

// SendRegion is the send_region capture hook (C9): applies the rate
// controller, then captures and processes the requested rectangle.
// Invalid rectangles and rate-dropped calls are silent no-ops.
func (b *Bridge) SendRegion(rect capture.Rect) {
	if !quality.ShouldEmit(b.Session) {
		return
	}

	bmp, err := capture.CaptureRegion(b.Screen, b.Session.Policy, rect)
	if err != nil {
		logging.Default().Warn("capture region failed: %v", err)
		return
	}
	if bmp == nil {
		return
	}
	b.process(bmp, false)
}

// SendCursor is the send_cursor capture hook (C9): composite the
// pointer icon and, if non-empty, PNG-encode it and emit it as a PNG
// frame at HIGHEST quality with the hotspot as its position, per §4.2.
func (b *Bridge) SendCursor() {
	bmp, hotX, hotY, nonEmpty, err := capture.CompositeCursor(b.Cursor)
	if err != nil {
		logging.Default().Warn("composite cursor failed: %v", err)
		return
	}
	if !nonEmpty || bmp == nil {
		return
	}

	payload, err := encode.EncodePNG(bmp)
	if err != nil {
		logging.Default().Warn("encode cursor frame failed: %v", err)
		return
	}

	frame := wire.Frame{
		Idx:     b.Session.NextIdx(),
		PosX:    uint32(hotX),
		PosY:    uint32(hotY),
		Width:   uint32(bmp.Width),
		Height:  uint32(bmp.Height),
		Format:  wire.FormatPNG,
		Quality: session.QualityHighest,
		Payload: payload,
	}
	b.debug.save(frame)
	b.emitter.EmitFrame(frame)
}

// process implements the shared capture-hook tail from §4.9: compute
// effective quality, encode per policy, allocate idx, frame and write.
func (b *Bridge) process(bmp *pixel.Bitmap, fullscreen bool) {
	enc := b.Session.Policy.Encoding()

	effectiveQuality := b.Session.Policy.Quality()
	if fullscreen && enc != session.EncodingPNG {
		effectiveQuality = session.QualityHigher
	}

	result, err := encode.Encode(enc, effectiveQuality, bmp)
	if err != nil {
		logging.Default().Warn("encode frame failed: %v", err)
		return
	}

	var fullscreenFlag uint32
	if fullscreen {
		fullscreenFlag = 1
	}

	frame := wire.Frame{
		Idx:            b.Session.NextIdx(),
		PosX:           uint32(bmp.X),
		PosY:           uint32(bmp.Y),
		Width:          uint32(bmp.Width),
		Height:         uint32(bmp.Height),
		Format:         result.Format,
		Quality:        uint32(result.Quality),
		FullscreenFlag: fullscreenFlag,
		Payload:        result.Payload,
	}
	b.debug.save(frame)
	b.emitter.EmitFrame(frame)
}

// NotifyPrintJobClosed forwards a printer-relay close notification
// (§4.8's "printjob|<name>.pdf" text message) to the updates channel.
func (b *Bridge) NotifyPrintJobClosed(msg string) {
	if msg == "" {
		return
	}
	_ = b.emitter.EmitText(msg)
}

// Run moves the bridge to Running and blocks reading the inputs
// channel until ProcessInputs() goes false or a read fails, per the
// state machine in §4.7. Call it on its own goroutine.
func (b *Bridge) Run() {
	b.state = Running

	buf := make([]byte, b.readChunkBytes)
	var pending bytes.Buffer

	for b.Session.ProcessInputs() {
		n, err := b.inputs.Read(buf)
		if err != nil {
			logging.Default().Error("%v", classifyIPCError("read", err))
			b.Session.Stop()
			break
		}
		if n == 0 {
			continue
		}

		pending.Write(buf[:n])
		b.dispatchBatch(pending.Bytes())
		pending.Reset()
	}

	b.Teardown()
}

// dispatchBatch parses and applies every command in one read's worth of
// bytes. A CLO anywhere in the batch still lets earlier records apply;
// later records in the same batch are applied too (§8's boundary
// behavior permits either choice; the reader exits after the batch
// either way because Run rechecks ProcessInputs() on the next
// iteration).
func (b *Bridge) dispatchBatch(data []byte) {
	for _, cmd := range command.Parse(data) {
		command.Dispatch(cmd, b.Session, b.Facade, b)
	}
}

// Teardown moves to Terminating: stops the updates actor and
// disconnects the facade. It does not exit the process — per the
// design notes, the source's CLO handler calling exit() is flagged as
// an open question; a clean unwind here lets the caller (cmd/bridge)
// decide whether and when to exit.
func (b *Bridge) Teardown() {
	b.state = Terminating
	b.Facade.Disconnect()
	b.emitter.Close()
}

var _ fmt.Stringer = State(0)

func (s State) String() string {
	switch s {
	case Configured:
		return "Configured"
	case Connected:
		return "Connected"
	case Running:
		return "Running"
	case Terminating:
		return "Terminating"
	default:
		return "Unknown"
	}
}

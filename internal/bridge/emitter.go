package bridge

import (
	"fmt"
	"io"

	"github.com/rcarmo/remotesession-bridge/internal/logging"
	"github.com/rcarmo/remotesession-bridge/internal/session"
	"github.com/rcarmo/remotesession-bridge/internal/wire"
)

// emitMsg is the sum of what can be pushed to the emitter: a frame or a
// text message, never both.
type emitMsg struct {
	frame *wire.Frame
	text  string
}

// emitter is the single-writer actor that owns the updates channel
// handle, per the design note generalizing the implicit
// one-syscall-per-write assumption into an explicit actor: the input
// reader and every capture callback push Emit requests here instead of
// writing the handle directly, so frames and text messages never
// interleave even if multiple goroutines produce them concurrently.
type emitter struct {
	w    *wire.Writer
	sess *session.Session
	ch   chan emitMsg
	done chan struct{}
}

func newEmitter(w io.Writer, sess *session.Session) *emitter {
	e := &emitter{
		w:    wire.NewWriter(w),
		sess: sess,
		ch:   make(chan emitMsg, 64),
		done: make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *emitter) run() {
	defer close(e.done)
	for msg := range e.ch {
		var err error
		if msg.frame != nil {
			err = e.w.WriteFrame(*msg.frame)
		} else {
			err = e.w.WriteText(msg.text)
		}
		if err != nil {
			// §4.4/§7: an IpcWrite failure is terminal; the session tears
			// down and drops the rest of the queue.
			logging.Default().Error("%v", classifyIPCError("write", err))
			e.sess.Stop()
			return
		}
	}
}

// EmitFrame enqueues a frame for the actor to write. It is a no-op once
// the actor has stopped (e.g. after a prior write failure).
func (e *emitter) EmitFrame(f wire.Frame) {
	select {
	case e.ch <- emitMsg{frame: &f}:
	case <-e.done:
	}
}

// EmitText enqueues a text message, returning an error if the actor has
// already stopped.
func (e *emitter) EmitText(msg string) error {
	select {
	case e.ch <- emitMsg{text: msg}:
		return nil
	case <-e.done:
		return fmt.Errorf("emitter: updates channel closed")
	}
}

// Close stops accepting new messages and waits for the actor to drain
// and exit.
func (e *emitter) Close() {
	close(e.ch)
	<-e.done
}

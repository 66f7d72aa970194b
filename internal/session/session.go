// Package session holds the per-process Session singleton: IPC handles,
// image policy, clipboard cache, and the monotonic counters the rate
// controller and capture hooks allocate frame indexes from.
package session

import (
	"sync"
	"sync/atomic"
)

// Encoding identifies the image codec an ImagePolicy selects.
type Encoding int

const (
	EncodingAuto Encoding = iota
	EncodingPNG
	EncodingJPEG
	EncodingWebP
)

func (e Encoding) String() string {
	switch e {
	case EncodingPNG:
		return "PNG"
	case EncodingJPEG:
		return "JPEG"
	case EncodingWebP:
		return "WEBP"
	default:
		return "AUTO"
	}
}

// Quality levels, per spec §3.
const (
	QualityLow     = 10
	QualityMedium  = 25
	QualityHigh    = 50
	QualityHigher  = 75
	QualityHighest = 100
)

// maxIdx is INT32_MAX; image indexes wrap modulo this value.
const maxIdx = 1<<31 - 1

// ImagePolicy holds the mutable encode/quality/quantity/scaling knobs a
// Session exposes to the capture pipeline. All fields are guarded by mu
// since commands mutate them from the input-reader goroutine while
// capture callbacks read them concurrently.
type ImagePolicy struct {
	mu sync.RWMutex

	encoding     Encoding
	quality      int
	quantity     int
	scaleDisplay bool
	clientW      int
	clientH      int
}

// NewImagePolicy returns a policy seeded with the given defaults.
func NewImagePolicy(encoding Encoding, quality, quantity int) *ImagePolicy {
	return &ImagePolicy{encoding: encoding, quality: quality, quantity: quantity}
}

func (p *ImagePolicy) Encoding() Encoding {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.encoding
}

// SetEncoding sets the encoding and resets quality to HIGH, per the ECD
// command's effect (§4.6).
func (p *ImagePolicy) SetEncoding(e Encoding) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.encoding = e
	p.quality = QualityHigh
}

func (p *ImagePolicy) Quality() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.quality
}

func (p *ImagePolicy) SetQuality(q int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.quality = q
}

func (p *ImagePolicy) Quantity() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.quantity
}

func (p *ImagePolicy) SetQuantity(q int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.quantity = q
}

// Scaling returns the scale_display flag and the client dimensions under
// one lock, so callers read a consistent triple in one call. SetScaling
// changes all three together; DisableScaling and SetClientSize each
// change only part of it.
func (p *ImagePolicy) Scaling() (scale bool, clientW, clientH int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.scaleDisplay, p.clientW, p.clientH
}

// SetScaling enables scaling and sets the client dimensions atomically.
func (p *ImagePolicy) SetScaling(clientW, clientH int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scaleDisplay = true
	p.clientW = clientW
	p.clientH = clientH
}

// DisableScaling turns scaling off without touching the last known client dims.
func (p *ImagePolicy) DisableScaling() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scaleDisplay = false
}

// SetClientSize updates client dimensions (e.g. on browser RSZ) without
// changing whether scaling is enabled.
func (p *ImagePolicy) SetClientSize(clientW, clientH int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clientW = clientW
	p.clientH = clientH
}

// ClipboardState holds the last known remote clipboard text.
type ClipboardState struct {
	mu      sync.Mutex
	text    string
	updated bool
}

// Set stores new clipboard text and marks it as not-yet-transmitted.
func (c *ClipboardState) Set(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
	c.updated = true
}

// Updated reports whether the cached text has not been transmitted yet.
func (c *ClipboardState) Updated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updated
}

// Consume returns the cached text and clears the updated flag, as happens
// once the text is transmitted down the updates channel.
func (c *ClipboardState) Consume() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updated = false
	return c.text
}

// Text returns the cached text without clearing the updated flag.
func (c *ClipboardState) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// Session is the per-process singleton bridging one RDP session to one
// pair of IPC channels.
type Session struct {
	ID uint32

	Policy    *ImagePolicy
	Clipboard ClipboardState

	imageCount    atomic.Uint32
	imageIdx      atomic.Uint32
	processInputs atomic.Bool

	desktopW atomic.Int32
	desktopH atomic.Int32
}

// SetDesktopSize records the remote desktop's native size, learned once
// the RDP facade connects. Commands that translate client coordinates
// back to desktop coordinates (mouse move/button/wheel under scaling)
// read it via DesktopSize.
func (s *Session) SetDesktopSize(w, h int) {
	s.desktopW.Store(int32(w))
	s.desktopH.Store(int32(h))
}

// DesktopSize returns the last size recorded by SetDesktopSize, or
// (0, 0) before the facade has connected.
func (s *Session) DesktopSize() (int, int) {
	return int(s.desktopW.Load()), int(s.desktopH.Load())
}

// New creates a Session in the Configured state (processInputs starts true;
// it is cleared by CLO, an IPC failure, or a write failure per §4.7).
func New(id uint32, encoding Encoding, quality, quantity int) *Session {
	s := &Session{
		ID:     id,
		Policy: NewImagePolicy(encoding, quality, quantity),
	}
	s.processInputs.Store(true)
	return s
}

// ProcessInputs reports whether the session should keep processing input
// records and emitting frames.
func (s *Session) ProcessInputs() bool {
	return s.processInputs.Load()
}

// Stop clears ProcessInputs, signaling the bridge to tear down.
func (s *Session) Stop() {
	s.processInputs.Store(false)
}

// NextIdx allocates the next monotonic frame index, wrapping modulo
// INT32_MAX as required by §3.
func (s *Session) NextIdx() uint32 {
	for {
		cur := s.imageIdx.Load()
		next := cur + 1
		if next > maxIdx {
			next = 0
		}
		if s.imageIdx.CompareAndSwap(cur, next) {
			return next
		}
	}
}

// BumpImageCount increments the region-frame counter used by the rate
// controller, wrapping at u31 overflow (§4.5 step 1), and returns the new
// value.
func (s *Session) BumpImageCount() uint32 {
	for {
		cur := s.imageCount.Load()
		next := cur + 1
		if next > maxIdx {
			next = 0
		}
		if s.imageCount.CompareAndSwap(cur, next) {
			return next
		}
	}
}

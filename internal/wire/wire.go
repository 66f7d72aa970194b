// Package wire implements the updates-channel binary framing (§4.4): a
// text-message shape and an image-frame shape, both little-endian, both
// written as a single syscall per message. This generalizes the manual
// byte-framing style the teacher used for its capabilities/audio
// messages in internal/handler/connect.go (buildCapabilitiesMessage,
// sendAudioDataWithMutex) into one shared encoder.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Format identifies the image payload codec, matching §3's Frame.format.
type Format uint32

const (
	FormatCursor Format = 0
	FormatPNG    Format = 1
	FormatJPEG   Format = 2
	FormatWebP   Format = 3
)

// imageFrameHeaderSize is the 9 little-endian u32 fields before the
// payload: tag, idx, pos_x, pos_y, width, height, format, quality,
// fullscreen_flag.
const imageFrameHeaderSize = 9 * 4

// frameTag disambiguates an image frame from a text message: it is the
// second u32 of an image frame, right after total_len. A text message's
// length prefix (its first u32) is guaranteed nonzero for anything this
// bridge sends.
const frameTag uint32 = 0

// Frame is one encoded image ready to be written to the updates channel.
type Frame struct {
	Idx            uint32
	PosX           uint32
	PosY           uint32
	Width          uint32
	Height         uint32
	Format         Format
	Quality        uint32
	FullscreenFlag uint32
	Payload        []byte
}

// TotalLen returns 36 + len(payload), the value a reader would find in
// the frame's length prefix.
func (f Frame) TotalLen() uint32 {
	return imageFrameHeaderSize + uint32(len(f.Payload))
}

// Writer serializes frames and text messages to an io.Writer, issuing one
// Write call per message as required by §4.4 (so the OS treats it as a
// single atomic syscall on a pipe).
type Writer struct {
	w io.Writer
}

// NewWriter wraps w (typically the updates IPC channel) in a Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteFrame encodes and writes an image frame:
// [u32 total_len][u32 tag=0][u32 idx][u32 pos_x][u32 pos_y][u32 width]
// [u32 height][u32 format][u32 quality][u32 fullscreen_flag][payload].
func (w *Writer) WriteFrame(f Frame) error {
	buf := make([]byte, 4+imageFrameHeaderSize+len(f.Payload))

	binary.LittleEndian.PutUint32(buf[0:4], f.TotalLen())
	binary.LittleEndian.PutUint32(buf[4:8], frameTag)
	binary.LittleEndian.PutUint32(buf[8:12], f.Idx)
	binary.LittleEndian.PutUint32(buf[12:16], f.PosX)
	binary.LittleEndian.PutUint32(buf[16:20], f.PosY)
	binary.LittleEndian.PutUint32(buf[20:24], f.Width)
	binary.LittleEndian.PutUint32(buf[24:28], f.Height)
	binary.LittleEndian.PutUint32(buf[28:32], uint32(f.Format))
	binary.LittleEndian.PutUint32(buf[32:36], f.Quality)
	binary.LittleEndian.PutUint32(buf[36:40], f.FullscreenFlag)
	copy(buf[40:], f.Payload)

	_, err := w.w.Write(buf)
	if err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// WriteText encodes and writes a text message: [u32 len][len bytes utf-8].
// len is guaranteed nonzero for any text this bridge sends so that a
// reader peeking the tag/len field can discriminate it from an image
// frame (whose tag, the u32 after total_len, is always 0).
func (w *Writer) WriteText(msg string) error {
	if msg == "" {
		return fmt.Errorf("write text: empty message")
	}

	payload := []byte(msg)
	buf := make([]byte, 4+len(payload))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(payload)))
	copy(buf[4:], payload)

	_, err := w.w.Write(buf)
	if err != nil {
		return fmt.Errorf("write text: %w", err)
	}
	return nil
}

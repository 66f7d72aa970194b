package wire

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFrame_Layout(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	f := Frame{
		Idx:            7,
		PosX:           1,
		PosY:           2,
		Width:          10,
		Height:         20,
		Format:         FormatPNG,
		Quality:        100,
		FullscreenFlag: 1,
		Payload:        []byte("hello"),
	}
	require.NoError(t, w.WriteFrame(f))

	data := buf.Bytes()
	totalLen := binary.LittleEndian.Uint32(data[0:4])
	assert.EqualValues(t, 36+len("hello"), totalLen)
	assert.EqualValues(t, len(data)-4, totalLen)

	tag := binary.LittleEndian.Uint32(data[4:8])
	assert.EqualValues(t, 0, tag)

	idx := binary.LittleEndian.Uint32(data[8:12])
	assert.EqualValues(t, 7, idx)

	format := binary.LittleEndian.Uint32(data[28:32])
	assert.EqualValues(t, FormatPNG, format)

	payload := data[40:]
	assert.Equal(t, "hello", string(payload))
}

func TestWriteText_Layout(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.WriteText("reload"))

	data := buf.Bytes()
	length := binary.LittleEndian.Uint32(data[0:4])
	assert.EqualValues(t, len("reload"), length)
	assert.Greater(t, length, uint32(0))
	assert.Equal(t, "reload", string(data[4:]))
}

func TestWriteText_RejectsEmpty(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	assert.Error(t, w.WriteText(""))
}

func TestFrameAndTextDiscriminable(t *testing.T) {
	// An image frame's second u32 (tag) is always 0; a text message's
	// first u32 (length) is always nonzero for anything we send. A
	// reader peeking the field at the position each shape puts it in
	// must be able to tell them apart.
	var frameBuf, textBuf bytes.Buffer
	require.NoError(t, NewWriter(&frameBuf).WriteFrame(Frame{Format: FormatCursor}))
	require.NoError(t, NewWriter(&textBuf).WriteText("clipboard|x"))

	frameTagField := binary.LittleEndian.Uint32(frameBuf.Bytes()[4:8])
	textLenField := binary.LittleEndian.Uint32(textBuf.Bytes()[0:4])

	assert.EqualValues(t, 0, frameTagField)
	assert.NotEqual(t, uint32(0), textLenField)
}

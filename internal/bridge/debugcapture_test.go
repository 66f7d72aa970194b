package bridge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcarmo/remotesession-bridge/internal/wire"
)

func TestDebugCapture_DisabledIsNoop(t *testing.T) {
	dir := t.TempDir()
	dc := newDebugCapture(false, dir, 7)
	dc.save(wire.Frame{Idx: 1, Format: wire.FormatPNG, Payload: []byte("x")})

	entries, err := os.ReadDir(filepath.Join(dir, "log"))
	assert.True(t, os.IsNotExist(err) || len(entries) == 0)
}

func TestDebugCapture_WritesPayloadUnderSessionDir(t *testing.T) {
	dir := t.TempDir()
	dc := newDebugCapture(true, dir, 7)
	dc.save(wire.Frame{Idx: 3, Format: wire.FormatJPEG, Payload: []byte("jpegdata")})

	want := filepath.Join(dc.dir, "3.jpg")
	got, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, "jpegdata", string(got))
}

func TestFrameExt(t *testing.T) {
	assert.Equal(t, "png", frameExt(wire.FormatPNG))
	assert.Equal(t, "jpg", frameExt(wire.FormatJPEG))
	assert.Equal(t, "webp", frameExt(wire.FormatWebP))
	assert.Equal(t, "bin", frameExt(wire.FormatCursor))
}

func TestNilDebugCapture_SaveIsSafe(t *testing.T) {
	var dc *debugCapture
	assert.NotPanics(t, func() { dc.save(wire.Frame{}) })
}

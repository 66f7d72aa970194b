package capture

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcarmo/remotesession-bridge/internal/pixel"
	"github.com/rcarmo/remotesession-bridge/internal/session"
)

type fakeScreen struct {
	w, h       int
	hasSurface bool
	desktop    *pixel.Bitmap
	region     *pixel.Bitmap
	err        error
}

func (f *fakeScreen) DesktopSize() (int, int)      { return f.w, f.h }
func (f *fakeScreen) HasPrimarySurface() bool      { return f.hasSurface }
func (f *fakeScreen) CaptureDesktop() (*pixel.Bitmap, error) {
	return f.desktop, f.err
}
func (f *fakeScreen) CaptureRect(rect Rect) (*pixel.Bitmap, error) {
	return f.region, f.err
}

func solid(w, h int) *pixel.Bitmap {
	return &pixel.Bitmap{Width: w, Height: h, Pix: make([]byte, w*h*4)}
}

func TestRectValid(t *testing.T) {
	assert.True(t, Rect{0, 0, 10, 10}.Valid(100, 100))
	assert.False(t, Rect{10, 0, 5, 10}.Valid(100, 100), "inverted left>right")
	assert.False(t, Rect{0, 0, 200, 10}.Valid(100, 100), "out of desktop bounds")
}

func TestCaptureFull_NoSurface(t *testing.T) {
	src := &fakeScreen{hasSurface: false}
	policy := session.NewImagePolicy(session.EncodingAuto, session.QualityHigh, 100)
	bmp, err := CaptureFull(src, policy)
	require.NoError(t, err)
	assert.Nil(t, bmp)
}

func TestCaptureFull_NoScaling(t *testing.T) {
	src := &fakeScreen{hasSurface: true, w: 800, h: 600, desktop: solid(800, 600)}
	policy := session.NewImagePolicy(session.EncodingAuto, session.QualityHigh, 100)
	bmp, err := CaptureFull(src, policy)
	require.NoError(t, err)
	assert.Equal(t, 800, bmp.Width)
	assert.Equal(t, 600, bmp.Height)
}

func TestCaptureFull_Scaled(t *testing.T) {
	src := &fakeScreen{hasSurface: true, w: 1600, h: 1200, desktop: solid(1600, 1200)}
	policy := session.NewImagePolicy(session.EncodingAuto, session.QualityHigh, 100)
	policy.SetScaling(800, 600)
	bmp, err := CaptureFull(src, policy)
	require.NoError(t, err)
	assert.Equal(t, 800, bmp.Width)
	assert.Equal(t, 600, bmp.Height)
}

func TestCaptureRegion_InvalidRectIsNoop(t *testing.T) {
	src := &fakeScreen{w: 100, h: 100}
	policy := session.NewImagePolicy(session.EncodingAuto, session.QualityHigh, 100)
	bmp, err := CaptureRegion(src, policy, Rect{50, 0, 10, 10})
	require.NoError(t, err)
	assert.Nil(t, bmp)
}

func TestCaptureRegion_ScaledMapsRectAndPixels(t *testing.T) {
	// desktop 1600x1200, client 800x600 -> region (400,300,800,600) scales
	// to width=200 height=150 pos=(200,150), matching the spec's scaled
	// region scenario.
	src := &fakeScreen{w: 1600, h: 1200, region: solid(400, 300)}
	policy := session.NewImagePolicy(session.EncodingAuto, session.QualityHigh, 100)
	policy.SetScaling(800, 600)

	bmp, err := CaptureRegion(src, policy, Rect{400, 300, 800, 600})
	require.NoError(t, err)
	require.NotNil(t, bmp)
	assert.Equal(t, 200, bmp.Width)
	assert.Equal(t, 150, bmp.Height)
	assert.Equal(t, 200, bmp.X)
	assert.Equal(t, 150, bmp.Y)
}

func TestCaptureRegion_PropagatesSourceError(t *testing.T) {
	src := &fakeScreen{w: 100, h: 100, err: errors.New("boom")}
	policy := session.NewImagePolicy(session.EncodingAuto, session.QualityHigh, 100)
	_, err := CaptureRegion(src, policy, Rect{0, 0, 10, 10})
	assert.Error(t, err)
}

type fakeCursor struct {
	hasSurface bool
	bmp        *pixel.Bitmap
	hotX, hotY int
}

func (f *fakeCursor) HasPrimarySurface() bool { return f.hasSurface }
func (f *fakeCursor) CursorBitmap() (*pixel.Bitmap, int, int, error) {
	return f.bmp, f.hotX, f.hotY, nil
}

func TestCompositeCursor_MaskBlueBecomesTransparent(t *testing.T) {
	bmp := &pixel.Bitmap{Width: 1, Height: 1, Pix: []byte{0, 0, 255, 255}}
	cur := &fakeCursor{hasSurface: true, bmp: bmp, hotX: 3, hotY: 4}

	out, hx, hy, nonEmpty, err := CompositeCursor(cur)
	require.NoError(t, err)
	assert.Equal(t, 3, hx)
	assert.Equal(t, 4, hy)
	assert.False(t, nonEmpty)
	assert.Equal(t, byte(0), out.Pix[3])
}

func TestCompositeCursor_YellowBecomesOpaqueBlack(t *testing.T) {
	bmp := &pixel.Bitmap{Width: 1, Height: 1, Pix: []byte{255, 255, 0, 255}}
	cur := &fakeCursor{hasSurface: true, bmp: bmp}

	out, _, _, nonEmpty, err := CompositeCursor(cur)
	require.NoError(t, err)
	assert.True(t, nonEmpty)
	assert.Equal(t, []byte{0, 0, 0, 255}, out.Pix)
}

func TestCompositeCursor_NoSurfaceIsNoop(t *testing.T) {
	cur := &fakeCursor{hasSurface: false}
	out, _, _, nonEmpty, err := CompositeCursor(cur)
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.False(t, nonEmpty)
}

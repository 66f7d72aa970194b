package pixel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeRGB565_PureRed(t *testing.T) {
	// R=11111 G=000000 B=00000 -> 0xF800 little-endian.
	r, g, b := decodeRGB565([]byte{0x00, 0xF8})
	assert.EqualValues(t, 255, r)
	assert.EqualValues(t, 0, g)
	assert.EqualValues(t, 0, b)
}

func TestDecodeBGR24(t *testing.T) {
	r, g, b := decodeBGR24([]byte{10, 20, 30}) // B,G,R
	assert.Equal(t, byte(30), r)
	assert.Equal(t, byte(20), g)
	assert.Equal(t, byte(10), b)
}

func TestDecodeBGRA32(t *testing.T) {
	r, g, b := decodeBGRA32([]byte{10, 20, 30, 40}) // B,G,R,A
	assert.Equal(t, byte(30), r)
	assert.Equal(t, byte(20), g)
	assert.Equal(t, byte(10), b)
}

func TestDecoderFor_UnsupportedDepth(t *testing.T) {
	decode, stride := decoderFor(8)
	assert.Nil(t, decode)
	assert.Equal(t, 0, stride)
}

func TestFromRaw_32bpp(t *testing.T) {
	src := []byte{10, 20, 30, 40}
	bmp := FromRaw(src, 5, 6, 1, 1, 32, false)
	assert.NotNil(t, bmp)
	assert.Equal(t, 5, bmp.X)
	assert.Equal(t, 6, bmp.Y)
	assert.Equal(t, []byte{30, 20, 10, 255}, bmp.Pix)
}

func TestFromRaw_BottomUpReordersRowsWithoutMutatingSource(t *testing.T) {
	// Two 1x1-pixel rows, 24bpp BGR: row0 = (1,2,3), row1 = (4,5,6).
	src := []byte{1, 2, 3, 4, 5, 6}
	srcCopy := append([]byte(nil), src...)

	bmp := FromRaw(src, 0, 0, 1, 2, 24, true)
	assert.NotNil(t, bmp)
	// Bottom-up: source row1 becomes top row, row0 becomes bottom row.
	assert.Equal(t, []byte{6, 5, 4, 255, 3, 2, 1, 255}, bmp.Pix)
	assert.Equal(t, srcCopy, src, "FromRaw must not mutate its source buffer")
}

func TestFromRaw_UnsupportedDepth(t *testing.T) {
	assert.Nil(t, FromRaw([]byte{1, 2}, 0, 0, 1, 1, 8, false))
}

func TestFromRaw_BufferTooShort(t *testing.T) {
	assert.Nil(t, FromRaw([]byte{1, 2, 3}, 0, 0, 2, 2, 32, false))
}

func TestBitmapImage(t *testing.T) {
	bmp := &Bitmap{Width: 2, Height: 1, Pix: []byte{1, 2, 3, 255, 4, 5, 6, 255}}
	img := bmp.Image()
	assert.Equal(t, 2, img.Rect.Dx())
	assert.Equal(t, 1, img.Rect.Dy())
}

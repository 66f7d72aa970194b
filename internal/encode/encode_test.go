package encode

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcarmo/remotesession-bridge/internal/pixel"
	"github.com/rcarmo/remotesession-bridge/internal/session"
	"github.com/rcarmo/remotesession-bridge/internal/wire"
)

func solidBitmap(w, h int, r, g, b byte) *pixel.Bitmap {
	pix := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		pix[i*4] = r
		pix[i*4+1] = g
		pix[i*4+2] = b
		pix[i*4+3] = 255
	}
	return &pixel.Bitmap{Width: w, Height: h, Pix: pix}
}

func TestEncodePNG_RoundTrip(t *testing.T) {
	bmp := solidBitmap(4, 4, 10, 20, 30)
	payload, err := EncodePNG(bmp)
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(payload))
	require.NoError(t, err)
	r, g, b, _ := decoded.At(0, 0).RGBA()
	assert.EqualValues(t, 10, r>>8)
	assert.EqualValues(t, 20, g>>8)
	assert.EqualValues(t, 30, b>>8)
}

func TestEncodeJPEG_Produces(t *testing.T) {
	bmp := solidBitmap(8, 8, 100, 150, 200)
	payload, err := EncodeJPEG(bmp, session.QualityHigh)
	require.NoError(t, err)
	assert.NotEmpty(t, payload)
}

func TestEncode_AutoPicksSmaller(t *testing.T) {
	// A flat solid-color bitmap compresses extremely well in PNG, so AUTO
	// should pick PNG and force quality to HIGHEST.
	bmp := solidBitmap(64, 64, 0, 0, 0)
	result, err := Encode(session.EncodingAuto, session.QualityLow, bmp)
	require.NoError(t, err)
	assert.Equal(t, wire.FormatPNG, result.Format)
	assert.Equal(t, session.QualityHighest, result.Quality)
}

func TestEncode_ExplicitPNGForcesHighestQuality(t *testing.T) {
	bmp := solidBitmap(4, 4, 1, 2, 3)
	result, err := Encode(session.EncodingPNG, session.QualityLow, bmp)
	require.NoError(t, err)
	assert.Equal(t, session.QualityHighest, result.Quality)
}

func TestEncode_ExplicitJPEG(t *testing.T) {
	bmp := solidBitmap(4, 4, 1, 2, 3)
	result, err := Encode(session.EncodingJPEG, session.QualityMedium, bmp)
	require.NoError(t, err)
	assert.Equal(t, wire.FormatJPEG, result.Format)
	assert.Equal(t, session.QualityMedium, result.Quality)
}

func TestError_UnwrapAndFormat(t *testing.T) {
	inner := assert.AnError
	err := &Error{Format: "jpeg", Err: inner}

	require.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "jpeg")
}

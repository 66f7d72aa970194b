// Package encode implements the Frame Codec (C1): turning a captured
// bitmap into PNG, JPEG, or WebP bytes, including the AUTO mode that
// picks whichever of PNG/JPEG comes out smaller. Grounded on the image
// encoding step of the optimizer pipeline in other_examples (PNG/JPEG
// via the stdlib, WebP via github.com/chai2010/webp).
package encode

import (
	"bytes"
	"image/jpeg"
	"image/png"

	"github.com/chai2010/webp"

	"github.com/rcarmo/remotesession-bridge/internal/pixel"
	"github.com/rcarmo/remotesession-bridge/internal/session"
	"github.com/rcarmo/remotesession-bridge/internal/wire"
)

// Result is the encoded payload plus the format and quality that should
// be reported in the frame header (AUTO can override the requested
// quality when PNG wins).
type Result struct {
	Format  wire.Format
	Quality int
	Payload []byte
}

// EncodePNG encodes bmp as PNG. Quality is not meaningful for PNG; PNG
// frames are reported at session.QualityHighest (see Encode).
func EncodePNG(bmp *pixel.Bitmap) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, bmp.Image()); err != nil {
		return nil, &Error{Format: "png", Err: err}
	}
	return buf.Bytes(), nil
}

// EncodeJPEG encodes bmp as JPEG at the given quality (1-100).
func EncodeJPEG(bmp *pixel.Bitmap, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, bmp.Image(), &jpeg.Options{Quality: quality}); err != nil {
		return nil, &Error{Format: "jpeg", Err: err}
	}
	return buf.Bytes(), nil
}

// EncodeWebP encodes bmp as lossy WebP at the given quality (0-100).
func EncodeWebP(bmp *pixel.Bitmap, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := webp.Encode(&buf, bmp.Image(), &webp.Options{Lossless: false, Quality: float32(quality)}); err != nil {
		return nil, &Error{Format: "webp", Err: err}
	}
	return buf.Bytes(), nil
}

// Encode produces the payload for bmp per the requested encoding and
// quality. In AUTO mode it encodes both PNG and JPEG and returns
// whichever is smaller; if PNG wins, the reported quality is forced to
// session.QualityHighest per §4.1's rationale (PNG is lossless, so the
// "quality" label should reflect that rather than the caller's setting).
func Encode(enc session.Encoding, quality int, bmp *pixel.Bitmap) (Result, error) {
	switch enc {
	case session.EncodingPNG:
		payload, err := EncodePNG(bmp)
		if err != nil {
			return Result{}, err
		}
		return Result{Format: wire.FormatPNG, Quality: session.QualityHighest, Payload: payload}, nil

	case session.EncodingJPEG:
		payload, err := EncodeJPEG(bmp, quality)
		if err != nil {
			return Result{}, err
		}
		return Result{Format: wire.FormatJPEG, Quality: quality, Payload: payload}, nil

	case session.EncodingWebP:
		payload, err := EncodeWebP(bmp, quality)
		if err != nil {
			return Result{}, err
		}
		return Result{Format: wire.FormatWebP, Quality: quality, Payload: payload}, nil

	default: // AUTO
		return encodeAuto(bmp, quality)
	}
}

func encodeAuto(bmp *pixel.Bitmap, quality int) (Result, error) {
	pngPayload, err := EncodePNG(bmp)
	if err != nil {
		return Result{}, err
	}

	jpegPayload, err := EncodeJPEG(bmp, quality)
	if err != nil {
		return Result{}, err
	}

	if len(pngPayload) <= len(jpegPayload) {
		return Result{Format: wire.FormatPNG, Quality: session.QualityHighest, Payload: pngPayload}, nil
	}
	return Result{Format: wire.FormatJPEG, Quality: quality, Payload: jpegPayload}, nil
}

// Package capture implements the Screen Source (C3) and Cursor
// Compositor (C2) components: turning whatever the bitmap-acquisition
// facade hands back into the ARGB bitmaps the frame codec encodes,
// including the scaling transform and the cursor mask-color rewrite.
// Scaling uses golang.org/x/image/draw's bilinear scaler, the same
// high-quality downsampler the pack's image pipeline example uses.
package capture

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/rcarmo/remotesession-bridge/internal/pixel"
	"github.com/rcarmo/remotesession-bridge/internal/session"
)

// Rect is a desktop-coordinate rectangle, left/top inclusive,
// right/bottom exclusive.
type Rect struct {
	Left, Top, Right, Bottom int
}

func (r Rect) Width() int  { return r.Right - r.Left }
func (r Rect) Height() int { return r.Bottom - r.Top }

// Valid reports whether r has non-inverted coordinates and fits inside
// a desktopW x desktopH desktop.
func (r Rect) Valid(desktopW, desktopH int) bool {
	if r.Left >= r.Right || r.Top >= r.Bottom {
		return false
	}
	if r.Left < 0 || r.Top < 0 || r.Right > desktopW || r.Bottom > desktopH {
		return false
	}
	return true
}

// ScreenSource is the external collaborator that knows how to obtain
// bitmaps from the remote desktop's primary drawing surface. The RDP
// protocol stack behind it is out of scope here.
type ScreenSource interface {
	DesktopSize() (w, h int)
	HasPrimarySurface() bool
	CaptureDesktop() (*pixel.Bitmap, error)
	CaptureRect(rect Rect) (*pixel.Bitmap, error)
}

// CursorSource is the external collaborator that renders the current
// pointer icon, already composited onto the mask-blue background, at
// OS cursor-icon size.
type CursorSource interface {
	HasPrimarySurface() bool
	CursorBitmap() (bmp *pixel.Bitmap, hotspotX, hotspotY int, err error)
}

// CaptureFull implements C3.capture_full: the full desktop, scaled to
// the client window size when scaling is enabled.
func CaptureFull(src ScreenSource, policy *session.ImagePolicy) (*pixel.Bitmap, error) {
	if !src.HasPrimarySurface() {
		return nil, nil
	}

	bmp, err := src.CaptureDesktop()
	if err != nil {
		return nil, fmt.Errorf("capture desktop: %w", err)
	}

	scale, clientW, clientH := policy.Scaling()
	if !scale || (clientW == bmp.Width && clientH == bmp.Height) {
		return bmp, nil
	}

	return scaleBitmap(bmp, clientW, clientH), nil
}

// CaptureRegion implements C3.capture_region: validates the rectangle
// against desktop bounds, then maps both the pixels and the reported
// rect to client coordinates under scaling. Returns nil, nil for an
// invalid rectangle per §3 (no bitmap, no error surface).
func CaptureRegion(src ScreenSource, policy *session.ImagePolicy, rect Rect) (*pixel.Bitmap, error) {
	desktopW, desktopH := src.DesktopSize()
	if !rect.Valid(desktopW, desktopH) {
		return nil, nil
	}

	bmp, err := src.CaptureRect(rect)
	if err != nil {
		return nil, fmt.Errorf("capture rect: %w", err)
	}

	scale, clientW, clientH := policy.Scaling()
	if !scale || (clientW == desktopW && clientH == desktopH) {
		bmp.X, bmp.Y = rect.Left, rect.Top
		return bmp, nil
	}

	scaledX := rect.Left * clientW / desktopW
	scaledY := rect.Top * clientH / desktopH
	scaledRight := rect.Right * clientW / desktopW
	scaledBottom := rect.Bottom * clientH / desktopH

	scaled := scaleBitmap(bmp, scaledRight-scaledX, scaledBottom-scaledY)
	scaled.X, scaled.Y = scaledX, scaledY
	return scaled, nil
}

// scaleBitmap resizes bmp to w x h using bilinear interpolation.
func scaleBitmap(bmp *pixel.Bitmap, w, h int) *pixel.Bitmap {
	if w <= 0 || h <= 0 {
		return bmp
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), bmp.Image(), bmp.Image().Bounds(), draw.Over, nil)

	return &pixel.Bitmap{X: bmp.X, Y: bmp.Y, Width: w, Height: h, Pix: dst.Pix}
}

// NoSurface is the zero-value ScreenSource/CursorSource: it reports no
// primary drawing surface, so CaptureFull/CaptureRegion/CompositeCursor
// all return nil, nil until a real capture backend (the integration seam
// for the host's GDI/desktop-duplication layer) replaces it.
type NoSurface struct{}

func (NoSurface) DesktopSize() (int, int)                  { return 0, 0 }
func (NoSurface) HasPrimarySurface() bool                  { return false }
func (NoSurface) CaptureDesktop() (*pixel.Bitmap, error)    { return nil, nil }
func (NoSurface) CaptureRect(Rect) (*pixel.Bitmap, error)   { return nil, nil }
func (NoSurface) CursorBitmap() (*pixel.Bitmap, int, int, error) { return nil, 0, 0, nil }

var (
	_ ScreenSource = NoSurface{}
	_ CursorSource = NoSurface{}
)

// Mask colors the cursor renderer draws against, per §4.2.
const (
	maskBlueR, maskBlueG, maskBlueB     = 0, 0, 255
	maskYellowR, maskYellowG, maskYellowB = 255, 255, 0
)

// CompositeCursor implements C2: renders the pointer icon, rewrites the
// mask-blue background to transparent and pure yellow to opaque black,
// and reports whether any opaque pixel survived (an all-transparent
// result means the cursor is considered empty and should be suppressed).
func CompositeCursor(src CursorSource) (bmp *pixel.Bitmap, hotspotX, hotspotY int, nonEmpty bool, err error) {
	if !src.HasPrimarySurface() {
		return nil, 0, 0, false, nil
	}

	bmp, hotspotX, hotspotY, err = src.CursorBitmap()
	if err != nil {
		return nil, 0, 0, false, fmt.Errorf("cursor bitmap: %w", err)
	}
	if bmp == nil {
		return nil, 0, 0, false, nil
	}

	for i := 0; i+3 < len(bmp.Pix); i += 4 {
		r, g, b := bmp.Pix[i], bmp.Pix[i+1], bmp.Pix[i+2]

		switch {
		case r == maskBlueR && g == maskBlueG && b == maskBlueB:
			bmp.Pix[i], bmp.Pix[i+1], bmp.Pix[i+2], bmp.Pix[i+3] = 255, 255, 255, 0
		case r == maskYellowR && g == maskYellowG && b == maskYellowB:
			bmp.Pix[i], bmp.Pix[i+1], bmp.Pix[i+2], bmp.Pix[i+3] = 0, 0, 0, 255
			nonEmpty = true
		default:
			if bmp.Pix[i+3] != 0 {
				nonEmpty = true
			}
		}
	}

	return bmp, hotspotX, hotspotY, nonEmpty, nil
}

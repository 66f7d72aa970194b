package bridge

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rcarmo/remotesession-bridge/internal/logging"
	"github.com/rcarmo/remotesession-bridge/internal/wire"
)

// frameExt maps a wire.Format to the file extension debugCapture writes.
func frameExt(f wire.Format) string {
	switch f {
	case wire.FormatPNG:
		return "png"
	case wire.FormatJPEG:
		return "jpg"
	case wire.FormatWebP:
		return "webp"
	default:
		return "bin"
	}
}

// debugCapture implements §4.9.1: when enabled, writes every emitted
// frame's payload under
// <module-parent>/log/remotesession_<session_id>.<pid>/<idx>.<ext>
// before the frame reaches the wire framer. Disabled by default; write
// failures are logged at WARN and never affect emission.
type debugCapture struct {
	enabled bool
	dir     string
}

func newDebugCapture(enabled bool, moduleParentDir string, sessionID uint32) *debugCapture {
	dc := &debugCapture{enabled: enabled}
	if enabled {
		dc.dir = filepath.Join(moduleParentDir, "log", fmt.Sprintf("remotesession_%d.%d", sessionID, os.Getpid()))
	}
	return dc
}

func (dc *debugCapture) save(f wire.Frame) {
	if dc == nil || !dc.enabled {
		return
	}
	if err := os.MkdirAll(dc.dir, 0o755); err != nil {
		logging.Default().Warn("debug capture: mkdir failed: %v", err)
		return
	}

	path := filepath.Join(dc.dir, fmt.Sprintf("%d.%s", f.Idx, frameExt(f.Format)))
	if err := os.WriteFile(path, f.Payload, 0o644); err != nil {
		logging.Default().Warn("debug capture: write failed: %v", err)
	}
}

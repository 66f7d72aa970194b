// Package quality implements the Rate Controller (C5): per-region frame
// dropping driven by the quantity (IPS) policy knob, layered on top of
// the monotonic counters the session already exposes.
package quality

import "github.com/rcarmo/remotesession-bridge/internal/session"

// dropRatios maps a quantity setting to "emit every Nth region frame".
// 100 means emit all; values not present here are treated as emit-all.
var dropRatios = map[int]int{
	5:  20,
	10: 10,
	20: 5,
	25: 4,
	50: 2,
}

// ShouldEmit reports whether a region frame should be emitted, given the
// session's current quantity policy. It always advances image_count (so
// the drop cadence stays correct) even when it returns false.
func ShouldEmit(s *session.Session) bool {
	count := s.BumpImageCount()

	divisor, limited := dropRatios[s.Policy.Quantity()]
	if !limited {
		return true
	}

	return count%uint32(divisor) == 0
}

package ipc

import "fmt"

// PipePath formats the OS pipe path for a session's named channel, per
// §6's "remotesession_<session_id>_<name>" naming. Kept out of
// channel.go (which is windows-only) so the naming rule itself is
// testable on any platform.
func PipePath(template string, sessionID uint32, name string) string {
	return `\\.\pipe\` + fmt.Sprintf(template, sessionID, name)
}

package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcarmo/remotesession-bridge/internal/rdpfacade"
	"github.com/rcarmo/remotesession-bridge/internal/session"
)

type fakeFacade struct {
	unicodeKeys  []UnicodeKeyCmd
	scancodes    []ScancodeKeyCmd
	scancodeExt  []bool
	mouseMoves   []MouseMoveCmd
	mouseButtons []MouseButtonCmd
	wheelFlags   []uint32
	wheelPos     [][2]int
	clipboardReq int
}

func (f *fakeFacade) SetServer(host string, port int)   {}
func (f *fakeFacade) SetVMConnect(guid string)           {}
func (f *fakeFacade) SetDomain(domain string)            {}
func (f *fakeFacade) SetUsername(username string)        {}
func (f *fakeFacade) SetPassword(password string)        {}
func (f *fakeFacade) SetAlternateShell(program string)   {}
func (f *fakeFacade) Connect() error                     { return nil }
func (f *fakeFacade) Disconnect()                        {}
func (f *fakeFacade) SendUnicodeKey(code int, down bool) {
	f.unicodeKeys = append(f.unicodeKeys, UnicodeKeyCmd{Code: code, Down: down})
}
func (f *fakeFacade) SendScancodeKey(code int, down, extended bool) {
	f.scancodes = append(f.scancodes, ScancodeKeyCmd{Code: code, Down: down})
	f.scancodeExt = append(f.scancodeExt, extended)
}
func (f *fakeFacade) SendMouseMove(x, y int) {
	f.mouseMoves = append(f.mouseMoves, MouseMoveCmd{X: x, Y: y})
}
func (f *fakeFacade) SendMouseButton(button rdpfacade.MouseButton, down bool, x, y int) {
	f.mouseButtons = append(f.mouseButtons, MouseButtonCmd{Down: down, X: x, Y: y})
}
func (f *fakeFacade) SendMouseWheel(flags uint32, x, y int) {
	f.wheelFlags = append(f.wheelFlags, flags)
	f.wheelPos = append(f.wheelPos, [2]int{x, y})
}
func (f *fakeFacade) RequestClipboard() { f.clipboardReq++ }

type fakeHooks struct {
	texts       []string
	screenCalls int
}

func (h *fakeHooks) EmitText(msg string) error {
	h.texts = append(h.texts, msg)
	return nil
}
func (h *fakeHooks) SendScreen() { h.screenCalls++ }

func TestParse_UnicodeKeystroke(t *testing.T) {
	cmds := Parse([]byte("KUC65-1\tKUC65-0"))
	require.Len(t, cmds, 2)
	assert.Equal(t, UnicodeKeyCmd{Code: 65, Down: true}, cmds[0])
	assert.Equal(t, UnicodeKeyCmd{Code: 65, Down: false}, cmds[1])
}

func TestDispatch_ScrollWheelDown(t *testing.T) {
	cmds := Parse([]byte("MWD120-200"))
	require.Len(t, cmds, 1)

	sess := session.New(1, session.EncodingAuto, session.QualityHigh, 100)
	facade := &fakeFacade{}
	hooks := &fakeHooks{}
	Dispatch(cmds[0], sess, facade, hooks)

	require.Len(t, facade.wheelFlags, 1)
	assert.Equal(t, ptrflagsWheel|ptrflagsWheelNegative|wheelDownUnits, facade.wheelFlags[0])
	assert.Equal(t, [2]int{120, 200}, facade.wheelPos[0])
}

func TestDispatch_QualityEncodingThenFullscreen(t *testing.T) {
	cmds := Parse([]byte("ECD1\tQLT75\tFSU"))
	require.Len(t, cmds, 3)

	sess := session.New(1, session.EncodingJPEG, session.QualityMedium, 100)
	facade := &fakeFacade{}
	hooks := &fakeHooks{}
	for _, c := range cmds {
		Dispatch(c, sess, facade, hooks)
	}

	assert.Equal(t, session.EncodingPNG, sess.Policy.Encoding())
	assert.Equal(t, 75, sess.Policy.Quality())
	assert.Equal(t, 1, hooks.screenCalls)
}

func TestDispatch_ScaledMouseMoveRemapsToDesktop(t *testing.T) {
	sess := session.New(1, session.EncodingAuto, session.QualityHigh, 100)
	sess.SetDesktopSize(1600, 1200)
	sess.Policy.SetScaling(800, 600)

	facade := &fakeFacade{}
	Dispatch(MouseMoveCmd{X: 400, Y: 300}, sess, facade, &fakeHooks{})

	require.Len(t, facade.mouseMoves, 1)
	assert.Equal(t, 800, facade.mouseMoves[0].X)
	assert.Equal(t, 600, facade.mouseMoves[0].Y)
}

func TestDispatch_ClipboardRequest_UsesCachedTextWhenNotUpdated(t *testing.T) {
	sess := session.New(1, session.EncodingAuto, session.QualityHigh, 100)
	sess.Clipboard.Set("hello")
	sess.Clipboard.Consume() // clears updated

	facade := &fakeFacade{}
	hooks := &fakeHooks{}
	Dispatch(ClipboardRequestCmd{}, sess, facade, hooks)

	assert.Equal(t, 0, facade.clipboardReq)
	assert.Equal(t, []string{"clipboard|hello"}, hooks.texts)
}

func TestDispatch_ClipboardRequest_RequestsFromFacadeWhenUpdated(t *testing.T) {
	sess := session.New(1, session.EncodingAuto, session.QualityHigh, 100)
	sess.Clipboard.Set("new text")

	facade := &fakeFacade{}
	hooks := &fakeHooks{}
	Dispatch(ClipboardRequestCmd{}, sess, facade, hooks)

	assert.Equal(t, 1, facade.clipboardReq)
	assert.Empty(t, hooks.texts)
}

func TestDispatch_Close_StopsProcessing(t *testing.T) {
	sess := session.New(1, session.EncodingAuto, session.QualityHigh, 100)
	Dispatch(CloseCmd{}, sess, &fakeFacade{}, &fakeHooks{})
	assert.False(t, sess.ProcessInputs())
}

func TestDispatch_ScancodeExtendedOnlyOnKeyDown(t *testing.T) {
	sess := session.New(1, session.EncodingAuto, session.QualityHigh, 100)
	facade := &fakeFacade{}
	Dispatch(ScancodeKeyCmd{Code: 71, Down: true}, sess, facade, &fakeHooks{})
	Dispatch(ScancodeKeyCmd{Code: 71, Down: false}, sess, facade, &fakeHooks{})
	require.Len(t, facade.scancodes, 2)
	assert.Equal(t, []bool{true, false}, facade.scancodeExt)
}

func TestParse_UnknownTagIgnored(t *testing.T) {
	cmds := Parse([]byte("XYZhello\tFSU"))
	require.Len(t, cmds, 1)
	_, ok := cmds[0].(FullscreenCmd)
	assert.True(t, ok)
}

func TestParse_ServerHostPort(t *testing.T) {
	cmds := Parse([]byte("SRVexample.com:3389"))
	require.Len(t, cmds, 1)
	assert.Equal(t, ServerCmd{Host: "example.com", Port: 3389}, cmds[0])
}

func TestParse_UsernameWithDomain(t *testing.T) {
	cmds := Parse([]byte("USRalice@corp.local"))
	require.Len(t, cmds, 1)
	assert.Equal(t, UsernameCmd{Username: "alice", Domain: "corp.local"}, cmds[0])
}

package command

import (
	"github.com/rcarmo/remotesession-bridge/internal/rdpfacade"
	"github.com/rcarmo/remotesession-bridge/internal/session"
)

// Extended scancodes that must be flagged "extended" on key-down. This
// matches the source this specification was distilled from exactly: the
// same codes are dispatched on key-up WITHOUT the extended flag. That
// asymmetry is preserved here rather than silently corrected — see
// DESIGN.md's open-question log.
var extendedScancodes = map[int]bool{
	71: true, 72: true, 73: true,
	75: true, 77: true,
	79: true, 80: true, 81: true,
}

// RDP PTRFLAGS wheel constants (MS-RDPBCGR), used to build the flags
// word SendMouseWheel expects.
const (
	ptrflagsWheel         uint32 = 0x0200
	ptrflagsWheelNegative uint32 = 0x0100
	wheelUpUnits          uint32 = 0x0078
	wheelDownUnits        uint32 = 0x0088
)

// Hooks is the set of bridge-owned operations a command can trigger
// beyond the facade and session: emitting a text message down the
// updates channel, or running a capture-and-send pass.
type Hooks interface {
	EmitText(msg string) error
	SendScreen()
}

// Dispatch applies a single parsed Command against sess/facade/hooks.
// It never logs command argument content (callers must not pass PWD's
// argument to a logger either).
func Dispatch(cmd Command, sess *session.Session, facade rdpfacade.Facade, hooks Hooks) {
	switch c := cmd.(type) {
	case ServerCmd:
		facade.SetServer(c.Host, c.Port)

	case VMConnectCmd:
		facade.SetVMConnect(c.GUID)

	case DomainCmd:
		facade.SetDomain(c.Domain)

	case UsernameCmd:
		if c.Domain != "" {
			facade.SetDomain(c.Domain)
		}
		facade.SetUsername(c.Username)

	case PasswordCmd:
		facade.SetPassword(c.Password)

	case ProgramCmd:
		facade.SetAlternateShell(c.Program)

	case ConnectCmd:
		go facade.Connect()

	case ResizeCmd:
		sess.Policy.SetClientSize(c.Width, c.Height)

	case UnicodeKeyCmd:
		facade.SendUnicodeKey(c.Code, c.Down)

	case ScancodeKeyCmd:
		extended := c.Down && extendedScancodes[c.Code]
		facade.SendScancodeKey(c.Code, c.Down, extended)

	case MouseMoveCmd:
		x, y := toDesktopCoords(sess, c.X, c.Y)
		facade.SendMouseMove(x, y)

	case MouseButtonCmd:
		x, y := toDesktopCoords(sess, c.X, c.Y)
		facade.SendMouseButton(toFacadeButton(c.Button), c.Down, x, y)

	case MouseWheelCmd:
		x, y := toDesktopCoords(sess, c.X, c.Y)
		flags := ptrflagsWheel
		if c.Down {
			flags |= ptrflagsWheelNegative | wheelDownUnits
		} else {
			flags |= wheelUpUnits
		}
		facade.SendMouseWheel(flags, x, y)

	case ReloadCmd:
		_ = hooks.EmitText("reload")

	case ScaleCmd:
		if c.Disable {
			sess.Policy.DisableScaling()
		} else {
			sess.Policy.SetScaling(c.Width, c.Height)
		}
		_ = hooks.EmitText("reload")

	case EncodingCmd:
		sess.Policy.SetEncoding(session.Encoding(c.Value))

	case QualityCmd:
		sess.Policy.SetQuality(c.Value)

	case QuantityCmd:
		sess.Policy.SetQuantity(c.Value)

	case FullscreenCmd:
		hooks.SendScreen()

	case ClipboardRequestCmd:
		if sess.Clipboard.Updated() {
			facade.RequestClipboard()
		} else {
			_ = hooks.EmitText("clipboard|" + sess.Clipboard.Text())
		}

	case CloseCmd:
		sess.Stop()
	}
}

func toFacadeButton(k MouseButtonKind) rdpfacade.MouseButton {
	switch k {
	case MouseMiddle:
		return rdpfacade.ButtonMiddle
	case MouseRight:
		return rdpfacade.ButtonRight
	default:
		return rdpfacade.ButtonLeft
	}
}

// toDesktopCoords maps client-window coordinates back to desktop
// coordinates when scaling is enabled, the inverse of the transform
// Screen Source applies to captured pixels (§GLOSSARY: Scaling).
func toDesktopCoords(sess *session.Session, x, y int) (int, int) {
	scale, clientW, clientH := sess.Policy.Scaling()
	if !scale || clientW == 0 || clientH == 0 {
		return x, y
	}

	desktopW, desktopH := sess.DesktopSize()
	if desktopW == 0 || desktopH == 0 {
		return x, y
	}

	return x * desktopW / clientW, y * desktopH / clientH
}

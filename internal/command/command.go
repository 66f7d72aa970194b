// Package command implements the Command Parser & Dispatcher (C6):
// splitting tab-separated tagged records off the inputs channel into a
// Command sum type, then applying each command against the session's
// policy state and the RDP facade. Modeled as a compile-time mapping
// from tag literal to a variant per the redesign note in the bridge
// specification's design notes, rather than runtime tag-string
// branching deep in the dispatch path.
package command

import (
	"strconv"
	"strings"
)

// Command is implemented by every parsed record variant. It carries no
// behavior itself; Dispatch type-switches on the concrete type.
type Command interface {
	isCommand()
}

type ServerCmd struct {
	Host string
	Port int // 0 if not specified
}

type VMConnectCmd struct {
	GUID string
}

type DomainCmd struct{ Domain string }
// UsernameCmd carries an optional Domain extracted from a "user@domain"
// or "domain\user" form; Domain is empty when the raw text is used
// as-is (a domain was already set via a prior DOM record).
type UsernameCmd struct {
	Username string
	Domain   string
}
type PasswordCmd struct{ Password string }
type ProgramCmd struct{ Program string }
type ConnectCmd struct{}

type ResizeCmd struct {
	Width, Height int
}

type UnicodeKeyCmd struct {
	Code int
	Down bool
}

type ScancodeKeyCmd struct {
	Code int
	Down bool
}

type MouseButtonKind int

const (
	MouseLeft MouseButtonKind = iota
	MouseMiddle
	MouseRight
)

type MouseButtonCmd struct {
	Button MouseButtonKind
	Down   bool
	X, Y   int
}

type MouseMoveCmd struct{ X, Y int }

type MouseWheelCmd struct {
	Down bool // true = wheel down, false = wheel up
	X, Y int
}

// ReloadCmd covers STA/DBG/CMP: mode toggles whose only observable
// effect at this layer is a "reload" text message.
type ReloadCmd struct{}

type ScaleCmd struct {
	Disable bool
	Width, Height int
}

type EncodingCmd struct{ Value int }
type QualityCmd struct{ Value int }
type QuantityCmd struct{ Value int }
type FullscreenCmd struct{}
type ClipboardRequestCmd struct{}
type CloseCmd struct{}

func (ServerCmd) isCommand()           {}
func (VMConnectCmd) isCommand()        {}
func (DomainCmd) isCommand()           {}
func (UsernameCmd) isCommand()         {}
func (PasswordCmd) isCommand()         {}
func (ProgramCmd) isCommand()          {}
func (ConnectCmd) isCommand()          {}
func (ResizeCmd) isCommand()           {}
func (UnicodeKeyCmd) isCommand()       {}
func (ScancodeKeyCmd) isCommand()      {}
func (MouseButtonCmd) isCommand()      {}
func (MouseMoveCmd) isCommand()        {}
func (MouseWheelCmd) isCommand()       {}
func (ReloadCmd) isCommand()           {}
func (ScaleCmd) isCommand()            {}
func (EncodingCmd) isCommand()         {}
func (QualityCmd) isCommand()          {}
func (QuantityCmd) isCommand()         {}
func (FullscreenCmd) isCommand()       {}
func (ClipboardRequestCmd) isCommand() {}
func (CloseCmd) isCommand()            {}

// parser tracks whether a DOM record preceded a USR record in this
// batch, per §4.6's USR rule ("if no domain set, parse user@domain or
// domain\user; else set raw"). Parse is stateless across batches by
// design (commands only reference state within Session), so this is
// threaded through a single Parse call via the parser's own domainSeen
// flag — reset per call.
type parser struct {
	domainSeen bool
}

// Parse splits raw inputs-channel bytes on tab and decodes each
// non-empty record into a Command. Unknown tags and malformed args for
// a known tag are skipped per §4.6/§7 (Parse{tag,args} is non-terminal).
func Parse(data []byte) []Command {
	p := &parser{}
	var cmds []Command

	for _, record := range strings.Split(string(data), "\t") {
		if len(record) < 3 {
			continue
		}
		tag, args := record[:3], record[3:]

		cmd, ok := p.parseRecord(tag, args)
		if !ok {
			continue
		}
		if _, isDomain := cmd.(DomainCmd); isDomain {
			p.domainSeen = true
		}
		cmds = append(cmds, cmd)
	}

	return cmds
}

func (p *parser) parseRecord(tag, args string) (Command, bool) {
	switch tag {
	case "SRV":
		return parseServer(args)
	case "VMG":
		return VMConnectCmd{GUID: args}, true
	case "DOM":
		return DomainCmd{Domain: args}, true
	case "USR":
		return parseUsername(args, p.domainSeen)
	case "PWD":
		return PasswordCmd{Password: args}, true
	case "PRG":
		return ProgramCmd{Program: args}, true
	case "CON":
		return ConnectCmd{}, true
	case "RSZ":
		return parseDims(args, func(w, h int) Command { return ResizeCmd{Width: w, Height: h} })
	case "KUC":
		return parseKeyArg(args, func(code int, down bool) Command { return UnicodeKeyCmd{Code: code, Down: down} })
	case "KSC":
		return parseKeyArg(args, func(code int, down bool) Command { return ScancodeKeyCmd{Code: code, Down: down} })
	case "MMO":
		return parseXY(args, func(x, y int) Command { return MouseMoveCmd{X: x, Y: y} })
	case "MLB":
		return parseButton(args, MouseLeft)
	case "MMB":
		return parseButton(args, MouseMiddle)
	case "MRB":
		return parseButton(args, MouseRight)
	case "MWU":
		return parseXY(args, func(x, y int) Command { return MouseWheelCmd{Down: false, X: x, Y: y} })
	case "MWD":
		return parseXY(args, func(x, y int) Command { return MouseWheelCmd{Down: true, X: x, Y: y} })
	case "STA", "DBG", "CMP":
		return ReloadCmd{}, true
	case "SCA":
		return parseScale(args)
	case "ECD":
		return parseIntArg(args, func(v int) Command { return EncodingCmd{Value: v} })
	case "QLT":
		return parseIntArg(args, func(v int) Command { return QualityCmd{Value: v} })
	case "QNT":
		return parseIntArg(args, func(v int) Command { return QuantityCmd{Value: v} })
	case "FSU":
		return FullscreenCmd{}, true
	case "CLP":
		return ClipboardRequestCmd{}, true
	case "CLO":
		return CloseCmd{}, true
	default:
		return nil, false
	}
}

func parseServer(args string) (Command, bool) {
	if args == "" {
		return nil, false
	}

	// "[v6]:port" form.
	if strings.HasPrefix(args, "[") {
		end := strings.Index(args, "]")
		if end < 0 {
			return nil, false
		}
		host := args[1:end]
		rest := args[end+1:]
		if strings.HasPrefix(rest, ":") {
			port, err := strconv.Atoi(rest[1:])
			if err != nil {
				return nil, false
			}
			return ServerCmd{Host: host, Port: port}, true
		}
		return ServerCmd{Host: host}, true
	}

	if idx := strings.LastIndex(args, ":"); idx >= 0 {
		port, err := strconv.Atoi(args[idx+1:])
		if err == nil {
			return ServerCmd{Host: args[:idx], Port: port}, true
		}
	}

	return ServerCmd{Host: args}, true
}

func parseUsername(args string, domainSeen bool) (Command, bool) {
	if domainSeen {
		return UsernameCmd{Username: args}, true
	}

	if idx := strings.IndexByte(args, '@'); idx >= 0 {
		return UsernameCmd{Username: args[:idx], Domain: args[idx+1:]}, true
	}
	if idx := strings.IndexByte(args, '\\'); idx >= 0 {
		return UsernameCmd{Username: args[idx+1:], Domain: args[:idx]}, true
	}

	return UsernameCmd{Username: args}, true
}

func parseDims(args string, build func(w, h int) Command) (Command, bool) {
	idx := strings.IndexByte(args, 'x')
	if idx < 0 {
		return nil, false
	}
	w, err1 := strconv.Atoi(args[:idx])
	h, err2 := strconv.Atoi(args[idx+1:])
	if err1 != nil || err2 != nil {
		return nil, false
	}
	return build(w, h), true
}

func parseScale(args string) (Command, bool) {
	if args == "0" {
		return ScaleCmd{Disable: true}, true
	}
	cmd, ok := parseDims(args, func(w, h int) Command { return ScaleCmd{Width: w, Height: h} })
	return cmd, ok
}

func parseKeyArg(args string, build func(code int, down bool) Command) (Command, bool) {
	idx := strings.LastIndexByte(args, '-')
	if idx < 0 {
		return nil, false
	}
	code, err := strconv.Atoi(args[:idx])
	if err != nil {
		return nil, false
	}
	switch args[idx+1:] {
	case "1":
		return build(code, true), true
	case "0":
		return build(code, false), true
	default:
		return nil, false
	}
}

func parseXY(args string, build func(x, y int) Command) (Command, bool) {
	idx := strings.IndexByte(args, '-')
	if idx < 0 {
		return nil, false
	}
	x, err1 := strconv.Atoi(args[:idx])
	y, err2 := strconv.Atoi(args[idx+1:])
	if err1 != nil || err2 != nil {
		return nil, false
	}
	return build(x, y), true
}

func parseButton(args string, kind MouseButtonKind) (Command, bool) {
	parts := strings.SplitN(args, "-", 3)
	if len(parts) != 3 {
		return nil, false
	}
	state, err0 := strconv.Atoi(parts[0])
	x, err1 := strconv.Atoi(parts[1])
	y, err2 := strconv.Atoi(parts[2])
	if err0 != nil || err1 != nil || err2 != nil {
		return nil, false
	}
	return MouseButtonCmd{Button: kind, Down: state == 1, X: x, Y: y}, true
}

func parseIntArg(args string, build func(v int) Command) (Command, bool) {
	v, err := strconv.Atoi(args)
	if err != nil {
		return nil, false
	}
	return build(v), true
}

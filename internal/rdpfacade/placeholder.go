package rdpfacade

import "sync"

// Placeholder is the integration seam where a real RDP protocol stack
// plugs in: it satisfies Facade by recording the connection parameters
// the command dispatcher sets, but performs no network I/O itself.
// OnBitmapUpdate and OnPointerUpdate are the callbacks a real client
// would invoke from its graphics-update pipeline; wiring them to the
// bridge's SendRegion/SendCursor hooks is what turns a Placeholder into
// a working bridge once a concrete client is dropped in.
type Placeholder struct {
	mu sync.Mutex

	host, domain, username, password, shell, vmGUID string
	port                                             int
	useVMConnect                                     bool
	connected                                        bool

	OnConnect       func()
	OnBitmapUpdate  func()
	OnPointerUpdate func()
}

func (p *Placeholder) SetServer(host string, port int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.host, p.port = host, port
}

func (p *Placeholder) SetVMConnect(guid string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.useVMConnect, p.vmGUID, p.port = true, guid, 2179
}

func (p *Placeholder) SetDomain(domain string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.domain = domain
}

func (p *Placeholder) SetUsername(username string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.username = username
}

func (p *Placeholder) SetPassword(password string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.password = password
}

func (p *Placeholder) SetAlternateShell(program string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shell = program
}

// Connect marks the placeholder connected and fires OnConnect, if set.
// A real client would instead negotiate the RDP session here and keep
// running until Disconnect or a protocol error.
func (p *Placeholder) Connect() error {
	p.mu.Lock()
	p.connected = true
	p.mu.Unlock()

	if p.OnConnect != nil {
		p.OnConnect()
	}
	return nil
}

func (p *Placeholder) Disconnect() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connected = false
}

func (p *Placeholder) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

func (p *Placeholder) SendUnicodeKey(int, bool)        {}
func (p *Placeholder) SendScancodeKey(int, bool, bool) {}
func (p *Placeholder) SendMouseMove(int, int)          {}
func (p *Placeholder) SendMouseButton(MouseButton, bool, int, int) {}
func (p *Placeholder) SendMouseWheel(uint32, int, int)             {}
func (p *Placeholder) RequestClipboard()                           {}

var _ Facade = (*Placeholder)(nil)

// Package printer implements the Printer Relay (C8): an at-most-one-job
// per redirected printer invariant, driven by external document
// open/write/close calls and notifying the bridge when a job against
// the specially named "Myrtille PDF" printer closes. The host spooler
// itself is an external collaborator, reached through the Spooler
// interface; a Windows implementation is grounded on the winspool
// syscall wrapper in other_examples (OpenPrinter/StartDocPrinter/
// WritePrinter/EndDocPrinter/ClosePrinter).
package printer

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// pdfPrinterName triggers the "Myrtille PDF" special-cased document
// naming and close notification, per §4.8.
const pdfPrinterName = "Myrtille PDF"

// ErrBusy is returned by CreateJob when the target printer already has
// a current job.
var ErrBusy = errors.New("printer: busy")

// Spooler is the narrow interface onto the host OS print spooler. The
// Windows implementation lives in spooler_windows.go.
type Spooler interface {
	StartDocument(printerHandle uintptr, docName string) (jobHandle uintptr, err error)
	StartPage(jobHandle uintptr) error
	Write(jobHandle uintptr, data []byte) error
	EndPage(jobHandle uintptr) error
	EndDocument(jobHandle uintptr) error
	EnumPrinters() ([]PrinterInfo, error)
	OpenPrinter(name string) (handle uintptr, err error)
	ClosePrinter(handle uintptr) error
}

// PrinterInfo is what EnumPrinters reports about one OS printer.
type PrinterInfo struct {
	Name       string
	DriverName string
	IsDefault  bool
}

// PrintJob is an open document against one printer.
type PrintJob struct {
	ID            uint32
	DocName       string
	SpoolerHandle uintptr
}

// Printer tracks at most one open PrintJob at a time.
type Printer struct {
	ID         uint32
	Name       string
	DriverName string
	IsDefault  bool
	Handle     uintptr

	mu         sync.Mutex
	currentJob *PrintJob
}

// Registry maps printer IDs to Printer records and mediates job
// creation through the one-job-per-printer invariant.
type Registry struct {
	spooler Spooler

	mu       sync.RWMutex
	printers map[uint32]*Printer
	nextJob  uint32
}

// NewRegistry returns an empty registry backed by spooler.
func NewRegistry(spooler Spooler) *Registry {
	return &Registry{spooler: spooler, printers: make(map[uint32]*Printer)}
}

// EnumPrinters queries the OS for the available printers and replaces
// the registry's contents, assigning each a stable incrementing ID.
func (r *Registry) EnumPrinters() ([]*Printer, error) {
	infos, err := r.spooler.EnumPrinters()
	if err != nil {
		return nil, fmt.Errorf("enum printers: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.printers = make(map[uint32]*Printer, len(infos))
	out := make([]*Printer, 0, len(infos))
	for i, info := range infos {
		id := uint32(i + 1)
		p := &Printer{ID: id, Name: info.Name, DriverName: info.DriverName, IsDefault: info.IsDefault}
		r.printers[id] = p
		out = append(out, p)
	}
	return out, nil
}

// Get returns the printer registered under id, or nil if unknown.
func (r *Registry) Get(id uint32) *Printer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.printers[id]
}

// CreateJob opens a document against printerID. It fails with ErrBusy
// if that printer already has a current job, without any side effects
// (no document opened, no state changed), per §4.8's invariant.
func (r *Registry) CreateJob(printerID uint32) (*PrintJob, error) {
	p := r.Get(printerID)
	if p == nil {
		return nil, fmt.Errorf("printer: unknown printer %d", printerID)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.currentJob != nil {
		return nil, ErrBusy
	}

	handle, err := r.spooler.OpenPrinter(p.Name)
	if err != nil {
		return nil, &SpoolerError{Op: "open printer", Err: err}
	}
	p.Handle = handle

	docName := r.docName(p)

	jobHandle, err := r.spooler.StartDocument(p.Handle, docName)
	if err != nil {
		return nil, &SpoolerError{Op: "start document", Err: err}
	}
	if err := r.spooler.StartPage(jobHandle); err != nil {
		return nil, &SpoolerError{Op: "start page", Err: err}
	}

	job := &PrintJob{ID: r.allocJobID(), DocName: docName, SpoolerHandle: jobHandle}
	p.currentJob = job
	return job, nil
}

// docName derives the host document name: a fixed template, or for the
// specially named PDF printer, a unique "FREERDPjob<pid><ticks>" string
// so concurrent PDF jobs never collide on disk.
func (r *Registry) docName(p *Printer) string {
	if p.Name == pdfPrinterName {
		return fmt.Sprintf("FREERDPjob%d%d", os.Getpid(), time.Now().UnixNano())
	}
	return fmt.Sprintf("%s-job", p.Name)
}

func (r *Registry) allocJobID() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextJob++
	return r.nextJob
}

// WriteJob forwards bytes to the spooler for the printer's current job.
func (r *Registry) WriteJob(printerID uint32, data []byte) error {
	p := r.Get(printerID)
	if p == nil {
		return fmt.Errorf("printer: unknown printer %d", printerID)
	}

	p.mu.Lock()
	job := p.currentJob
	p.mu.Unlock()
	if job == nil {
		return fmt.Errorf("printer: no current job")
	}

	return r.spooler.Write(job.SpoolerHandle, data)
}

// CloseJob ends the page and document for printerID's current job.
// Double-close is idempotent: closing a printer with no current job is
// a no-op. It does NOT close the printer handle itself — that only
// happens in FreePrinter, since closing a shared printer handle here
// would break subsequent jobs against the same printer. If the printer
// is the specially named PDF printer, notify returns the text message
// the bridge should emit on the updates channel.
func (r *Registry) CloseJob(printerID uint32) (notify string, err error) {
	p := r.Get(printerID)
	if p == nil {
		return "", fmt.Errorf("printer: unknown printer %d", printerID)
	}

	p.mu.Lock()
	job := p.currentJob
	p.currentJob = nil
	name := p.Name
	p.mu.Unlock()

	if job == nil {
		return "", nil
	}

	// Per §7, a Spooler op failure here is non-terminal: the job is
	// already considered closed (currentJob was cleared above), so a
	// failure just gets returned for the caller to log rather than
	// reverting any state.
	if err := r.spooler.EndPage(job.SpoolerHandle); err != nil {
		return "", &SpoolerError{Op: "end page", Err: err}
	}
	if err := r.spooler.EndDocument(job.SpoolerHandle); err != nil {
		return "", &SpoolerError{Op: "end document", Err: err}
	}

	if name == pdfPrinterName {
		return fmt.Sprintf("printjob|%s.pdf", job.DocName), nil
	}
	return "", nil
}

// FreePrinter closes the printer's OS handle. Call only once no more
// jobs are expected against it.
func (r *Registry) FreePrinter(printerID uint32) error {
	p := r.Get(printerID)
	if p == nil {
		return nil
	}
	if p.Handle == 0 {
		return nil
	}
	return r.spooler.ClosePrinter(p.Handle)
}

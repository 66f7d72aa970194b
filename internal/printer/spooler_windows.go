//go:build windows

package printer

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

//go:generate go run golang.org/x/sys/windows/mkwinsyscall -output zsyscall_windows.go spooler_windows.go

// docInfo1 mirrors DOC_INFO_1 from the Windows spooler API.
type docInfo1 struct {
	DocName    *uint16
	OutputFile *uint16
	Datatype   *uint16
}

// printerInfo5 mirrors PRINTER_INFO_5.
type printerInfo5 struct {
	PrinterName              *uint16
	PortName                 *uint16
	Attributes               uint32
	DeviceNotSelectedTimeout uint32
	TransmissionRetryTimeout uint32
}

const printerEnumLocalAndConnections = 2 | 4

//sys	openPrinter(name *uint16, h *syscall.Handle, defaults uintptr) (err error) = winspool.OpenPrinterW
//sys	closePrinter(h syscall.Handle) (err error) = winspool.ClosePrinter
//sys	startDocPrinter(h syscall.Handle, level uint32, docinfo *docInfo1) (jobID int32, err error) = winspool.StartDocPrinterW
//sys	endDocPrinter(h syscall.Handle) (err error) = winspool.EndDocPrinter
//sys	startPagePrinter(h syscall.Handle) (err error) = winspool.StartPagePrinter
//sys	endPagePrinter(h syscall.Handle) (err error) = winspool.EndPagePrinter
//sys	writePrinter(h syscall.Handle, buf *byte, bufN uint32, written *uint32) (err error) = winspool.WritePrinter
//sys	enumPrinters(flags uint32, name *uint16, level uint32, buf *byte, bufN uint32, needed *uint32, returned *uint32) (err error) = winspool.EnumPrintersW
//sys	getDefaultPrinter(buf *uint16, bufN *uint32) (err error) = winspool.GetDefaultPrinterW

// WindowsSpooler drives the real host print spooler via the winspool.drv
// syscalls, the same entry points used by the other_examples printer
// package (OpenPrinter/StartDocPrinter/WritePrinter/EndDocPrinter/
// ClosePrinter/EnumPrinters).
type WindowsSpooler struct{}

func (WindowsSpooler) OpenPrinter(name string) (uintptr, error) {
	var h syscall.Handle
	namePtr, err := syscall.UTF16PtrFromString(name)
	if err != nil {
		return 0, err
	}
	if err := openPrinter(namePtr, &h, 0); err != nil {
		return 0, err
	}
	return uintptr(h), nil
}

func (WindowsSpooler) ClosePrinter(handle uintptr) error {
	return closePrinter(syscall.Handle(handle))
}

func (WindowsSpooler) StartDocument(printerHandle uintptr, docName string) (uintptr, error) {
	namePtr, err := syscall.UTF16PtrFromString(docName)
	if err != nil {
		return 0, err
	}
	dataTypePtr, err := syscall.UTF16PtrFromString("RAW")
	if err != nil {
		return 0, err
	}
	doc := docInfo1{DocName: namePtr, Datatype: dataTypePtr}
	_, err = startDocPrinter(syscall.Handle(printerHandle), 1, &doc)
	if err != nil {
		return 0, err
	}
	return printerHandle, nil
}

func (WindowsSpooler) StartPage(jobHandle uintptr) error {
	return startPagePrinter(syscall.Handle(jobHandle))
}

func (WindowsSpooler) Write(jobHandle uintptr, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	var written uint32
	return writePrinter(syscall.Handle(jobHandle), &data[0], uint32(len(data)), &written)
}

func (WindowsSpooler) EndPage(jobHandle uintptr) error {
	return endPagePrinter(syscall.Handle(jobHandle))
}

func (WindowsSpooler) EndDocument(jobHandle uintptr) error {
	return endDocPrinter(syscall.Handle(jobHandle))
}

func (WindowsSpooler) EnumPrinters() ([]PrinterInfo, error) {
	var needed, returned uint32
	buf := make([]byte, 1)
	err := enumPrinters(printerEnumLocalAndConnections, nil, 5, &buf[0], uint32(len(buf)), &needed, &returned)
	if err != nil {
		if err != syscall.ERROR_INSUFFICIENT_BUFFER {
			return nil, err
		}
		buf = make([]byte, needed)
		if err := enumPrinters(printerEnumLocalAndConnections, nil, 5, &buf[0], uint32(len(buf)), &needed, &returned); err != nil {
			return nil, err
		}
	}

	defaultName, _ := defaultPrinterName()

	infos := (*[1024]printerInfo5)(unsafe.Pointer(&buf[0]))[:returned:returned]
	out := make([]PrinterInfo, 0, returned)
	for _, pi := range infos {
		name := windows.UTF16PtrToString(pi.PrinterName)
		out = append(out, PrinterInfo{Name: name, IsDefault: name == defaultName})
	}
	return out, nil
}

func defaultPrinterName() (string, error) {
	b := make([]uint16, 8)
	n := uint32(len(b))
	err := getDefaultPrinter(&b[0], &n)
	if err != nil {
		if err != syscall.ERROR_INSUFFICIENT_BUFFER {
			return "", err
		}
		b = make([]uint16, n)
		if err := getDefaultPrinter(&b[0], &n); err != nil {
			return "", err
		}
	}
	return syscall.UTF16ToString(b), nil
}

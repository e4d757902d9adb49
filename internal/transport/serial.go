package transport

import (
	"fmt"
	"log"
	"time"

	"go.bug.st/serial"
)

// serialReadChunk matches the bulk endpoint packet size the MCUs use.
const serialReadChunk = 64

// serialLink drives an MCU through its CDC-ACM port. The framing on the
// wire is identical to the bulk interface.
type serialLink struct {
	port serial.Port
	path string
}

// SerialOpener returns an Opener for a tty path at the given baud rate.
func SerialOpener(path string, baud int) Opener {
	return func() (Link, error) { return OpenSerial(path, baud) }
}

// OpenSerial opens the port and discards anything buffered from before
// this session.
func OpenSerial(path string, baud int) (Link, error) {
	mode := &serial.Mode{BaudRate: baud}
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := port.ResetInputBuffer(); err != nil {
		log.Printf("[serial] reset input buffer on %s: %v", path, err)
	}
	log.Printf("[serial] connected %s @ %d baud", path, baud)
	return &serialLink{port: port, path: path}, nil
}

func (l *serialLink) Write(p []byte, timeout time.Duration) (int, error) {
	n, err := l.port.Write(p)
	if err != nil {
		return n, fmt.Errorf("serial write %s: %w", l.path, err)
	}
	return n, nil
}

func (l *serialLink) Read(p []byte, timeout time.Duration) (int, error) {
	if err := l.port.SetReadTimeout(timeout); err != nil {
		return 0, fmt.Errorf("set read timeout on %s: %w", l.path, err)
	}
	n, err := l.port.Read(p)
	if err != nil {
		return n, fmt.Errorf("serial read %s: %w", l.path, err)
	}
	// The port signals an expired timeout with an empty read.
	if n == 0 {
		return 0, ErrTimeout
	}
	return n, nil
}

func (l *serialLink) MaxPacketSize() int { return serialReadChunk }

func (l *serialLink) Close() error { return l.port.Close() }

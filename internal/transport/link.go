// Package transport provides the byte-level links to the robot MCUs:
// the vendor bulk USB interface and a CDC-ACM serial fallback. Both are
// exposed through the Link interface so the bridge layer does not care
// which one it is driving.
package transport

import (
	"errors"
	"time"
)

// USB identity of the Sanbot MCUs.
const (
	VendorID  = 0x0483
	PIDHead   = 0x5741
	PIDBottom = 0x5740
)

var (
	// ErrNotFound means the device is not enumerated on the bus.
	ErrNotFound = errors.New("transport: device not found")
	// ErrTimeout means an I/O deadline expired with no data. It is not
	// a failure; read paths treat it as "nothing arrived".
	ErrTimeout = errors.New("transport: timeout")
)

// Link is one open connection to an MCU.
type Link interface {
	// Write sends p and returns the number of bytes written. It blocks
	// at most timeout.
	Write(p []byte, timeout time.Duration) (int, error)
	// Read fills p with whatever arrives within timeout. A timeout with
	// no data returns (0, ErrTimeout).
	Read(p []byte, timeout time.Duration) (int, error)
	// MaxPacketSize is the natural read chunk for this link.
	MaxPacketSize() int
	Close() error
}

// Opener produces a fresh Link. Bridges hold an Opener rather than a
// Link so they can reconnect after errors.
type Opener func() (Link, error)

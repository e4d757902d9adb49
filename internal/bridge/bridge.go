// Package bridge layers the framed MCU protocol over a transport link:
// per-MCU bridges with retry and reconnect, the high-level Robot API,
// heartbeats and background listeners.
package bridge

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sanbotlabs/mcu-bridge/internal/protocol"
	"github.com/sanbotlabs/mcu-bridge/internal/transport"
)

// sendMu serializes all writes from this process, across every bridge.
// The MCUs cannot tolerate interleaved frames on the wire.
var sendMu sync.Mutex

// Bridge owns the connection to one MCU.
type Bridge struct {
	name   string
	opener transport.Opener

	mu   sync.Mutex
	link transport.Link
}

// New creates a bridge for one MCU. name appears in logs ("head" or
// "bottom").
func New(name string, opener transport.Opener) *Bridge {
	return &Bridge{name: name, opener: opener}
}

// Open connects the underlying link. Calling Open on an open bridge is
// a no-op.
func (b *Bridge) Open() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.openLocked()
}

func (b *Bridge) openLocked() error {
	if b.link != nil {
		return nil
	}
	link, err := b.opener()
	if err != nil {
		return fmt.Errorf("open %s bridge: %w", b.name, err)
	}
	b.link = link
	return nil
}

// Close releases the link. Safe to call repeatedly.
func (b *Bridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closeLocked()
}

func (b *Bridge) closeLocked() error {
	if b.link == nil {
		return nil
	}
	err := b.link.Close()
	b.link = nil
	return err
}

// IsOpen reports whether the bridge currently holds a link.
func (b *Bridge) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.link != nil
}

func (b *Bridge) reconnectLocked() error {
	log.Printf("[bridge] %s: reconnecting", b.name)
	b.closeLocked()
	return b.openLocked()
}

// SendPayload frames the payload, appends the routing tag, and writes
// the result under the global send lock. retries is the total number of
// write attempts; each failed attempt reconnects before the next, and
// the error surfaces once all attempts are spent. Returns the number of
// bytes written.
func (b *Bridge) SendPayload(payload []byte, tag protocol.Target, ack byte, timeout time.Duration, retries int) (int, error) {
	frame := protocol.BuildFrame(payload, ack)
	frame = append(frame, byte(tag))
	if retries < 1 {
		retries = 1
	}

	sendMu.Lock()
	defer sendMu.Unlock()
	b.mu.Lock()
	defer b.mu.Unlock()

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		if b.link == nil {
			if err := b.openLocked(); err != nil {
				lastErr = err
				continue
			}
		}
		n, err := b.link.Write(frame, timeout)
		if err == nil {
			return n, nil
		}
		lastErr = err
		log.Printf("[bridge] %s: write failed (attempt %d/%d): %v", b.name, attempt, retries, err)
		if rerr := b.reconnectLocked(); rerr != nil {
			lastErr = rerr
		}
	}
	return 0, fmt.Errorf("send to %s: %w", b.name, lastErr)
}

// ReadFrame reads one frame. A timeout returns (nil, nil). A transport
// error triggers a reconnect and also returns (nil, nil); persistent
// faults surface as repeated empty reads, which callers treat as
// silence.
func (b *Bridge) ReadFrame(timeout time.Duration) (*protocol.Frame, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.link == nil {
		if err := b.openLocked(); err != nil {
			return nil, err
		}
	}
	buf := make([]byte, b.link.MaxPacketSize())
	n, err := b.link.Read(buf, timeout)
	if err != nil {
		if errors.Is(err, transport.ErrTimeout) {
			return nil, nil
		}
		log.Printf("[bridge] %s: read failed: %v", b.name, err)
		if rerr := b.reconnectLocked(); rerr != nil {
			log.Printf("[bridge] %s: reconnect failed: %v", b.name, rerr)
		}
		return nil, nil
	}
	if n == 0 {
		return nil, nil
	}
	return protocol.ParseFrame(buf[:n]), nil
}

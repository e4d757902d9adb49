package bridge

import (
	"log"
	"sync"
	"time"

	"github.com/sanbotlabs/mcu-bridge/internal/protocol"
)

const minHeartbeatInterval = 100 * time.Millisecond

// HeartbeatManager keeps the MCUs from tripping their host-silence
// watchdog. Each cycle sends to the bottom MCU, and to the head when
// enabled; a failed send is logged and skipped, never fatal.
type HeartbeatManager struct {
	send func(protocol.Target) error

	mu          sync.Mutex
	enabled     bool
	headEnabled bool
	interval    time.Duration
	stop        chan struct{}
	done        chan struct{}
}

// NewHeartbeatManager builds a manager around a send hook. The hook is
// injected so tests can count cycles without hardware.
func NewHeartbeatManager(send func(protocol.Target) error) *HeartbeatManager {
	return &HeartbeatManager{send: send, interval: 1500 * time.Millisecond}
}

// Configure applies settings and starts or stops the loop accordingly.
// Idempotent: reconfiguring a running manager restarts it with the new
// settings.
func (h *HeartbeatManager) Configure(enabled bool, interval time.Duration, headEnabled bool) {
	h.Stop()

	h.mu.Lock()
	h.enabled = enabled
	h.headEnabled = headEnabled
	if interval < minHeartbeatInterval {
		interval = minHeartbeatInterval
	}
	h.interval = interval
	h.mu.Unlock()

	if enabled {
		h.Start()
	}
}

// Start launches the loop if enabled and not already running.
func (h *HeartbeatManager) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.enabled || h.stop != nil {
		return
	}
	h.stop = make(chan struct{})
	h.done = make(chan struct{})
	go h.run(h.stop, h.done, h.interval, h.headEnabled)
}

// Stop signals the loop and waits briefly for it to exit. Safe to call
// repeatedly and on shutdown paths.
func (h *HeartbeatManager) Stop() {
	h.mu.Lock()
	stop, done := h.stop, h.done
	h.stop, h.done = nil, nil
	h.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	select {
	case <-done:
	case <-time.After(defaultJoinTimeout):
		log.Printf("[heartbeat] join timed out")
	}
}

func (h *HeartbeatManager) run(stop, done chan struct{}, interval time.Duration, headEnabled bool) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		h.cycle(protocol.TagBottom)
		if headEnabled {
			h.cycle(protocol.TagHead)
		}
	}
}

func (h *HeartbeatManager) cycle(tag protocol.Target) {
	if err := h.send(tag); err != nil {
		log.Printf("[heartbeat] %s skipped: %v", tag, err)
	}
}

package bridge

import (
	"fmt"
	"log"
	"sync"

	"github.com/sanbotlabs/mcu-bridge/internal/protocol"
	"github.com/sanbotlabs/mcu-bridge/internal/safety"
	"github.com/sanbotlabs/mcu-bridge/internal/transport"
)

// Callback receives a decoded event (nil for raw "frame" events) and
// the frame it was decoded from.
type Callback func(ev *protocol.Event, f *protocol.Frame)

// Robot is the high-level API over both MCUs. All operation methods
// validate against the safety limits, encode, and route to the right
// bridge; broadcast commands go to the head first, then the bottom.
type Robot struct {
	Head   *Bridge
	Bottom *Bridge

	cfg   *Config
	check *safety.Validator

	cbMu      sync.Mutex
	callbacks map[string][]Callback

	listeners *listenerGroup
	heartbeat *HeartbeatManager
}

// NewRobot wires bridges for both MCUs from the config's transport
// selection.
func NewRobot(cfg *Config) *Robot {
	var headOpen, bottomOpen transport.Opener
	if cfg.Transport.Type == "serial" {
		headOpen = transport.SerialOpener(cfg.Transport.HeadPort, cfg.Transport.BaudRate)
		bottomOpen = transport.SerialOpener(cfg.Transport.BottomPort, cfg.Transport.BaudRate)
	} else {
		headOpen = transport.USBOpener(transport.PIDHead)
		bottomOpen = transport.USBOpener(transport.PIDBottom)
	}
	return NewRobotWith(cfg, New("head", headOpen), New("bottom", bottomOpen))
}

// NewRobotWith builds a Robot on existing bridges. Tests use this with
// fake links.
func NewRobotWith(cfg *Config, head, bottom *Bridge) *Robot {
	r := &Robot{
		Head:      head,
		Bottom:    bottom,
		cfg:       cfg,
		check:     safety.NewValidator(cfg.Safety.Limits, cfg.Safety.Unsafe),
		callbacks: make(map[string][]Callback),
	}
	r.listeners = newListenerGroup(r)
	r.heartbeat = NewHeartbeatManager(r.sendHeartbeat)
	return r
}

// Open connects both bridges.
func (r *Robot) Open() error {
	if err := r.Bottom.Open(); err != nil {
		return err
	}
	if err := r.Head.Open(); err != nil {
		r.Bottom.Close()
		return err
	}
	return nil
}

// Close stops background work and releases both bridges.
func (r *Robot) Close() {
	r.heartbeat.Stop()
	r.StopListening(defaultJoinTimeout)
	r.Head.Close()
	r.Bottom.Close()
}

// Heartbeat returns the manager for the keepalive loop.
func (r *Robot) Heartbeat() *HeartbeatManager { return r.heartbeat }

// Validator exposes the safety validator (e.g. to flip Unsafe at
// runtime).
func (r *Robot) Validator() *safety.Validator { return r.check }

// bridgeFor maps a routing tag to its bridge; broadcast returns nil and
// is handled by Send.
func (r *Robot) bridgeFor(tag protocol.Target) *Bridge {
	switch tag {
	case protocol.TagHead:
		return r.Head
	case protocol.TagBottom:
		return r.Bottom
	}
	return nil
}

// Send routes one encoded command. Broadcast commands are written to
// both MCUs carrying the broadcast tag; the head is attempted first and
// a head failure does not stop the bottom write.
func (r *Robot) Send(c protocol.Command) (int, error) {
	timeout := r.cfg.WriteTimeout()
	retries := r.cfg.Retries
	if c.Tag == protocol.TagBroadcast {
		n1, err1 := r.Head.SendPayload(c.Payload, c.Tag, c.Ack, timeout, retries)
		n2, err2 := r.Bottom.SendPayload(c.Payload, c.Tag, c.Ack, timeout, retries)
		if err1 != nil && err2 != nil {
			return 0, fmt.Errorf("broadcast %s: %w", c.Name, err2)
		}
		if err1 != nil {
			log.Printf("[bridge] broadcast %s: head write failed: %v", c.Name, err1)
		}
		if err2 != nil {
			log.Printf("[bridge] broadcast %s: bottom write failed: %v", c.Name, err2)
		}
		return n1 + n2, nil
	}
	b := r.bridgeFor(c.Tag)
	return b.SendPayload(c.Payload, c.Tag, c.Ack, timeout, retries)
}

// sendHeartbeat is the heartbeat manager's send hook. Each call opens
// its own short-lived link so a missing device never wedges the robot's
// bridges.
func (r *Robot) sendHeartbeat(tag protocol.Target) error {
	var opener transport.Opener
	if r.cfg.Transport.Type == "serial" {
		port := r.cfg.Transport.BottomPort
		if tag == protocol.TagHead {
			port = r.cfg.Transport.HeadPort
		}
		opener = transport.SerialOpener(port, r.cfg.Transport.BaudRate)
	} else {
		pid := uint16(transport.PIDBottom)
		if tag == protocol.TagHead {
			pid = transport.PIDHead
		}
		opener = transport.USBOpener(pid)
	}
	link, err := opener()
	if err != nil {
		return err
	}
	defer link.Close()

	c := protocol.Heartbeat(tag, 1)
	frame := protocol.BuildFrame(c.Payload, c.Ack)
	frame = append(frame, byte(tag))

	sendMu.Lock()
	defer sendMu.Unlock()
	_, err = link.Write(frame, r.cfg.WriteTimeout())
	return err
}

// On registers a callback for an event name. Listeners emit "frame" for
// every frame, and both "decoded:<name>" and "<name>" for recognized
// payloads.
func (r *Robot) On(event string, cb Callback) {
	r.cbMu.Lock()
	defer r.cbMu.Unlock()
	r.callbacks[event] = append(r.callbacks[event], cb)
}

// Off removes all callbacks for an event name.
func (r *Robot) Off(event string) {
	r.cbMu.Lock()
	defer r.cbMu.Unlock()
	delete(r.callbacks, event)
}

func (r *Robot) emit(event string, ev *protocol.Event, f *protocol.Frame) {
	r.cbMu.Lock()
	cbs := append([]Callback(nil), r.callbacks[event]...)
	r.cbMu.Unlock()
	for _, cb := range cbs {
		cb(ev, f)
	}
}

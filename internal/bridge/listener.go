package bridge

import (
	"log"
	"sync"
	"time"

	"github.com/sanbotlabs/mcu-bridge/internal/protocol"
)

const defaultJoinTimeout = 2 * time.Second

// listenerGroup runs one read loop per MCU, emitting events to the
// robot's callbacks. Loops never crash; errors degrade to a short sleep
// and retry.
type listenerGroup struct {
	robot *Robot

	mu      sync.Mutex
	stop    chan struct{}
	wg      sync.WaitGroup
	running bool
}

func newListenerGroup(r *Robot) *listenerGroup {
	return &listenerGroup{robot: r}
}

// StartListening spawns one goroutine per target. Already-running
// listeners are left alone.
func (r *Robot) StartListening(targets ...protocol.Target) {
	r.listeners.start(targets)
}

// StopListening signals all listener loops and waits up to joinTimeout
// for them to exit. Safe to call repeatedly.
func (r *Robot) StopListening(joinTimeout time.Duration) {
	r.listeners.stopAll(joinTimeout)
}

func (g *listenerGroup) start(targets []protocol.Target) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running {
		return
	}
	g.stop = make(chan struct{})
	g.running = true
	for _, t := range targets {
		b := g.robot.bridgeFor(t)
		if b == nil {
			continue
		}
		g.wg.Add(1)
		go g.run(b, t, g.stop)
	}
}

func (g *listenerGroup) stopAll(joinTimeout time.Duration) {
	g.mu.Lock()
	if !g.running {
		g.mu.Unlock()
		return
	}
	close(g.stop)
	g.running = false
	g.mu.Unlock()

	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(joinTimeout):
		log.Printf("[listener] join timed out after %s", joinTimeout)
	}
}

// run takes its stop channel as a parameter so that a loop left behind
// by a timed-out join keeps watching the channel it was started with
// and exits on its own, instead of adopting a restarted group's.
func (g *listenerGroup) run(b *Bridge, target protocol.Target, stop chan struct{}) {
	defer g.wg.Done()
	log.Printf("[listener] %s: started", target)
	readTimeout := g.robot.cfg.ReadTimeout()
	for {
		select {
		case <-stop:
			log.Printf("[listener] %s: stopped", target)
			return
		default:
		}
		f, err := b.ReadFrame(readTimeout)
		if err != nil {
			// Device absent; back off before probing again.
			select {
			case <-stop:
				return
			case <-time.After(500 * time.Millisecond):
			}
			continue
		}
		if f == nil {
			continue
		}
		g.robot.emit("frame", nil, f)
		if ev := protocol.Decode(f.Payload); ev != nil {
			g.robot.emit("decoded:"+ev.Name, ev, f)
			g.robot.emit(ev.Name, ev, f)
		}
	}
}

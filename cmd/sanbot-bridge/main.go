package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sanbotlabs/mcu-bridge/internal/bridge"
	"github.com/sanbotlabs/mcu-bridge/internal/protocol"
)

func main() {
	configPath := flag.String("config", "/etc/sanbot-bridge/config.yaml", "Path to config file")
	serialMode := flag.Bool("serial", false, "Use the CDC-ACM serial fallback instead of bulk USB")
	unsafe := flag.Bool("unsafe", false, "Disable motion safety checks (not recommended)")
	listenHead := flag.Bool("listen-head", true, "Run a listener on the head MCU")
	flag.Parse()

	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("[main] sanbot-bridge starting")

	cfg := bridge.LoadConfig(*configPath)
	if *serialMode {
		cfg.Transport.Type = "serial"
	}
	if *unsafe {
		cfg.Safety.Unsafe = true
		log.Println("[main] safety checks DISABLED")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("[main] received %v, shutting down", sig)
		cancel()
	}()

	robot := bridge.NewRobot(cfg)
	defer robot.Close()

	// Bring the MCUs up with exponential backoff; the heartbeat loop
	// tolerates an absent device, so it starts immediately.
	if cfg.Heartbeat.Enabled {
		robot.Heartbeat().Configure(true, cfg.HeartbeatInterval(), cfg.Heartbeat.Head)
	}
	if !connectWithRetry(ctx, "bottom", robot.Bottom, 10) {
		return
	}
	if !connectWithRetry(ctx, "head", robot.Head, 10) {
		return
	}

	robot.On("frame", func(ev *protocol.Event, f *protocol.Frame) {
		log.Printf("[main] frame seq=%d len=%d", f.Sequence, len(f.Payload))
	})
	for _, name := range []string{"battery", "touch", "gyro", "obstacle", "upgrade_status"} {
		name := name
		robot.On(name, func(ev *protocol.Event, f *protocol.Frame) {
			log.Printf("[main] %s: %v", name, ev.Fields)
		})
	}

	targets := []protocol.Target{protocol.TagBottom}
	if *listenHead {
		targets = append(targets, protocol.TagHead)
	}
	robot.StartListening(targets...)
	defer robot.StopListening(2 * time.Second)

	<-ctx.Done()
}

// connectable is satisfied by *bridge.Bridge.
type connectable interface {
	Open() error
	Close() error
}

// connectWithRetry attempts to connect with exponential backoff.
// Starts at 1s, doubles each attempt up to 60s, and keeps trying at the
// max interval until the context is cancelled. Returns false when
// cancelled before connecting.
func connectWithRetry(ctx context.Context, name string, c connectable, maxAttempts int) bool {
	delay := 1 * time.Second
	maxDelay := 60 * time.Second
	attempt := 0

	for {
		select {
		case <-ctx.Done():
			return false
		default:
		}

		if err := c.Open(); err != nil {
			attempt++
			if attempt <= maxAttempts {
				log.Printf("[%s] connect attempt %d/%d failed: %v (retry in %v)",
					name, attempt, maxAttempts, err, delay)
			} else {
				log.Printf("[%s] connect attempt %d failed: %v (retry in %v)",
					name, attempt, err, delay)
			}

			select {
			case <-ctx.Done():
				return false
			case <-time.After(delay):
			}

			delay *= 2
			if delay > maxDelay {
				delay = maxDelay
			}
		} else {
			log.Printf("[%s] connected successfully (attempt %d)", name, attempt+1)
			return true
		}
	}
}

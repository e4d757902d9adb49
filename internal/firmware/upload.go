package firmware

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/sanbotlabs/mcu-bridge/internal/protocol"
)

// Sender is the write path an upload runs over. *bridge.Bridge
// satisfies it.
type Sender interface {
	SendPayload(payload []byte, tag protocol.Target, ack byte, timeout time.Duration, retries int) (int, error)
}

type uploadConfig struct {
	blockSize       int
	timeout         time.Duration
	retries         int
	interBlockDelay time.Duration
	progress        func(sent, total int)
}

// Option adjusts upload behavior.
type Option func(*uploadConfig)

// WithBlockSize selects 128 or 1024 byte data blocks. Default 1024.
func WithBlockSize(n int) Option {
	return func(c *uploadConfig) { c.blockSize = n }
}

// WithTimeout sets the per-block write timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *uploadConfig) { c.timeout = d }
}

// WithRetries sets the per-block write retry count.
func WithRetries(n int) Option {
	return func(c *uploadConfig) { c.retries = n }
}

// WithInterBlockDelay inserts a pause between blocks for slow
// bootloaders.
func WithInterBlockDelay(d time.Duration) Option {
	return func(c *uploadConfig) { c.interBlockDelay = d }
}

// WithProgress registers a callback invoked after each data block with
// cumulative and total byte counts.
func WithProgress(fn func(sent, total int)) Option {
	return func(c *uploadConfig) { c.progress = fn }
}

// Upload streams a firmware image to one MCU: the broadcast prepare
// command, the filename header, the data blocks, and the terminator.
// The device reports progress asynchronously through upgrade status
// events; Upload only guarantees the stream was written.
func Upload(s Sender, tag protocol.Target, name string, data []byte, opts ...Option) error {
	cfg := uploadConfig{
		blockSize: BlockSize1024,
		timeout:   time.Second,
		retries:   1,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.blockSize != BlockSize128 && cfg.blockSize != BlockSize1024 {
		return fmt.Errorf("block size must be %d or %d, got %d", BlockSize128, BlockSize1024, cfg.blockSize)
	}

	prep := protocol.UpgradePrepare()
	if _, err := s.SendPayload(prep.Payload, prep.Tag, prep.Ack, cfg.timeout, cfg.retries); err != nil {
		return fmt.Errorf("upgrade prepare: %w", err)
	}

	if _, err := s.SendPayload(FileHeader(name, len(data)), tag, 1, cfg.timeout, cfg.retries); err != nil {
		return fmt.Errorf("file header: %w", err)
	}

	total := len(data)
	sent := 0
	for index := 1; sent < total; index++ {
		end := sent + cfg.blockSize
		if end > total {
			end = total
		}
		block := DataBlock(index, data[sent:end], cfg.blockSize)
		if _, err := s.SendPayload(block, tag, 1, cfg.timeout, cfg.retries); err != nil {
			return fmt.Errorf("data block %d: %w", index, err)
		}
		sent = end
		if cfg.progress != nil {
			cfg.progress(sent, total)
		}
		if cfg.interBlockDelay > 0 {
			time.Sleep(cfg.interBlockDelay)
		}
	}

	if _, err := s.SendPayload(Terminator(), tag, 1, cfg.timeout, cfg.retries); err != nil {
		return fmt.Errorf("terminator: %w", err)
	}
	log.Printf("[firmware] streamed %s (%d bytes, %d blocks) to %s", name, total, (total+cfg.blockSize-1)/cfg.blockSize, tag)
	return nil
}

// UploadFile reads a firmware image from disk and streams it. The block
// filename sent to the bootloader is the path's base name.
func UploadFile(s Sender, tag protocol.Target, path string, opts ...Option) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read firmware image: %w", err)
	}
	return Upload(s, tag, filepath.Base(path), data, opts...)
}

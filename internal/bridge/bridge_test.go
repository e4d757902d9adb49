package bridge

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanbotlabs/mcu-bridge/internal/protocol"
	"github.com/sanbotlabs/mcu-bridge/internal/transport"
)

// fakeLink is an in-memory transport.Link. Reads drain a queue and then
// time out; writes can be made to fail a fixed number of times.
type fakeLink struct {
	mu         sync.Mutex
	writes     [][]byte
	reads      [][]byte
	writeFails int
	closed     bool
}

func (f *fakeLink) Write(p []byte, timeout time.Duration) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeFails > 0 {
		f.writeFails--
		return 0, errors.New("pipe broken")
	}
	f.writes = append(f.writes, append([]byte(nil), p...))
	return len(p), nil
}

func (f *fakeLink) Read(p []byte, timeout time.Duration) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.reads) == 0 {
		return 0, transport.ErrTimeout
	}
	buf := f.reads[0]
	f.reads = f.reads[1:]
	return copy(p, buf), nil
}

func (f *fakeLink) MaxPacketSize() int { return 64 }

func (f *fakeLink) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeLink) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

func (f *fakeLink) lastWrite() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.writes) == 0 {
		return nil
	}
	return f.writes[len(f.writes)-1]
}

// stickyOpener hands out the same link and counts opens.
type stickyOpener struct {
	mu    sync.Mutex
	link  *fakeLink
	opens int
	err   error
}

func (o *stickyOpener) open() (transport.Link, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opens++
	if o.err != nil {
		return nil, o.err
	}
	return o.link, nil
}

func newTestBridge(name string) (*Bridge, *fakeLink, *stickyOpener) {
	link := &fakeLink{}
	opener := &stickyOpener{link: link}
	return New(name, opener.open), link, opener
}

func TestSendPayloadFramesAndTags(t *testing.T) {
	b, link, _ := newTestBridge("bottom")
	require.NoError(t, b.Open())

	n, err := b.SendPayload([]byte{0x04, 0x08, 0x01}, protocol.TagBottom, 1, time.Second, 1)
	require.NoError(t, err)

	wire := link.lastWrite()
	require.NotNil(t, wire)
	assert.Equal(t, n, len(wire))

	// Tag byte rides after the frame.
	assert.Equal(t, byte(protocol.TagBottom), wire[len(wire)-1])
	f := protocol.ParseFrame(wire[:len(wire)-1])
	require.NotNil(t, f)
	assert.Equal(t, []byte{0x04, 0x08, 0x01}, f.Payload)
	assert.True(t, protocol.VerifyChecksum(f))
}

func TestSendPayloadRetriesWithReconnect(t *testing.T) {
	b, link, opener := newTestBridge("bottom")
	require.NoError(t, b.Open())
	link.mu.Lock()
	link.writeFails = 2
	link.mu.Unlock()

	// Three attempts total: two failures, then success.
	_, err := b.SendPayload([]byte{0x81, 0x01}, protocol.TagBottom, 1, time.Second, 3)
	require.NoError(t, err)

	assert.Equal(t, 1, link.writeCount())
	// Initial open plus one reconnect per failed write.
	assert.Equal(t, 3, opener.opens)
}

func TestSendPayloadSingleAttempt(t *testing.T) {
	b, link, opener := newTestBridge("bottom")
	require.NoError(t, b.Open())
	link.mu.Lock()
	link.writeFails = 1
	link.mu.Unlock()

	// retries is the total attempt count, so one failed write must
	// surface its error instead of quietly succeeding on a second try.
	_, err := b.SendPayload([]byte{0x81, 0x01}, protocol.TagBottom, 1, time.Second, 1)
	require.Error(t, err)
	assert.Equal(t, 0, link.writeCount())
	// The failed attempt still reconnects, leaving the bridge usable.
	assert.Equal(t, 2, opener.opens)
	_, err = b.SendPayload([]byte{0x81, 0x01}, protocol.TagBottom, 1, time.Second, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, link.writeCount())
}

func TestSendPayloadExhaustsRetries(t *testing.T) {
	b, link, _ := newTestBridge("bottom")
	require.NoError(t, b.Open())
	link.mu.Lock()
	link.writeFails = 10
	link.mu.Unlock()

	_, err := b.SendPayload([]byte{0x81, 0x01}, protocol.TagBottom, 1, time.Second, 2)
	require.Error(t, err)
	assert.Equal(t, 0, link.writeCount())
}

func TestReadFrameTimeoutIsSilent(t *testing.T) {
	b, _, _ := newTestBridge("bottom")
	require.NoError(t, b.Open())

	f, err := b.ReadFrame(10 * time.Millisecond)
	assert.NoError(t, err)
	assert.Nil(t, f)
}

func TestReadFrameParses(t *testing.T) {
	b, link, _ := newTestBridge("bottom")
	require.NoError(t, b.Open())

	raw := protocol.BuildFrame([]byte{0x81, 0x01, 0x50}, 1)
	link.mu.Lock()
	link.reads = append(link.reads, raw)
	link.mu.Unlock()

	f, err := b.ReadFrame(10 * time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, []byte{0x81, 0x01, 0x50}, f.Payload)
}

func TestOpenCloseIdempotent(t *testing.T) {
	b, link, opener := newTestBridge("head")
	require.NoError(t, b.Open())
	require.NoError(t, b.Open())
	assert.Equal(t, 1, opener.opens)
	assert.True(t, b.IsOpen())

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
	assert.False(t, b.IsOpen())
	assert.True(t, link.closed)
}

func TestOpenPropagatesNotFound(t *testing.T) {
	opener := &stickyOpener{err: transport.ErrNotFound}
	b := New("head", opener.open)

	err := b.Open()
	require.Error(t, err)
	assert.True(t, errors.Is(err, transport.ErrNotFound))
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.ReadTimeoutMs = 10
	cfg.WriteTimeoutMs = 100
	return cfg
}

func newTestRobot(t *testing.T) (*Robot, *fakeLink, *fakeLink) {
	t.Helper()
	head, headLink, _ := newTestBridge("head")
	bottom, bottomLink, _ := newTestBridge("bottom")
	r := NewRobotWith(testConfig(), head, bottom)
	require.NoError(t, r.Open())
	t.Cleanup(r.Close)
	return r, headLink, bottomLink
}

func TestRobotRouting(t *testing.T) {
	r, headLink, bottomLink := newTestRobot(t)

	_, err := r.Battery(-1)
	require.NoError(t, err)
	assert.Equal(t, 0, headLink.writeCount())
	assert.Equal(t, 1, bottomLink.writeCount())

	_, err = r.ProjectorStatus()
	require.NoError(t, err)
	assert.Equal(t, 1, headLink.writeCount())

	// Broadcast goes to both, tagged 3.
	_, err = r.Dance(true)
	require.NoError(t, err)
	assert.Equal(t, 2, headLink.writeCount())
	assert.Equal(t, 2, bottomLink.writeCount())
	assert.Equal(t, byte(protocol.TagBroadcast), headLink.lastWrite()[len(headLink.lastWrite())-1])
	assert.Equal(t, byte(protocol.TagBroadcast), bottomLink.lastWrite()[len(bottomLink.lastWrite())-1])
}

func TestRobotSafetyBlocksBeforeSend(t *testing.T) {
	r, _, bottomLink := newTestRobot(t)

	_, err := r.WheelsTime(protocol.WheelForward, 60000, false)
	require.Error(t, err)
	assert.Equal(t, 0, bottomLink.writeCount())

	_, err = r.HeadAbsolute(500, 0)
	require.Error(t, err)

	// Unsafe bypass lets the same command through.
	r.Validator().Unsafe = true
	_, err = r.WheelsTime(protocol.WheelForward, 60000, false)
	require.NoError(t, err)
	assert.Equal(t, 1, bottomLink.writeCount())
}

func TestRobotZigbeeAckFlag(t *testing.T) {
	r, headLink, _ := newTestRobot(t)

	_, err := r.ZigbeeAllowJoin(30)
	require.NoError(t, err)

	wire := headLink.lastWrite()
	require.NotNil(t, wire)
	f := protocol.ParseFrame(wire[:len(wire)-1])
	require.NotNil(t, f)
	assert.Equal(t, byte(0), f.Ack)
}

func TestListenerEmitsEvents(t *testing.T) {
	r, _, bottomLink := newTestRobot(t)

	raw := protocol.BuildFrame([]byte{0x81, 0x01, 0x42}, 1)
	bottomLink.mu.Lock()
	bottomLink.reads = append(bottomLink.reads, raw)
	bottomLink.mu.Unlock()

	frames := make(chan *protocol.Frame, 4)
	events := make(chan *protocol.Event, 4)
	r.On("frame", func(ev *protocol.Event, f *protocol.Frame) { frames <- f })
	r.On("battery", func(ev *protocol.Event, f *protocol.Frame) { events <- ev })

	r.StartListening(protocol.TagBottom)
	defer r.StopListening(time.Second)

	select {
	case f := <-frames:
		assert.Equal(t, []byte{0x81, 0x01, 0x42}, f.Payload)
	case <-time.After(time.Second):
		t.Fatal("no frame event")
	}
	select {
	case ev := <-events:
		assert.Equal(t, "battery", ev.Name)
		assert.Equal(t, byte(0x42), ev.Fields["level"])
	case <-time.After(time.Second):
		t.Fatal("no battery event")
	}
}

func TestListenerStopIdempotent(t *testing.T) {
	r, _, _ := newTestRobot(t)

	r.StartListening(protocol.TagBottom, protocol.TagHead)
	r.StopListening(time.Second)
	r.StopListening(time.Second)
}

func TestListenerRestartAfterTimedOutJoin(t *testing.T) {
	r, _, bottomLink := newTestRobot(t)

	events := make(chan *protocol.Event, 4)
	r.On("battery", func(ev *protocol.Event, f *protocol.Frame) { events <- ev })

	// A join too short for the loop to observe leaves the old goroutine
	// behind; it must keep watching its original stop channel while the
	// restarted group runs on a fresh one.
	r.StartListening(protocol.TagBottom)
	r.StopListening(time.Nanosecond)
	r.StartListening(protocol.TagBottom)

	bottomLink.mu.Lock()
	bottomLink.reads = append(bottomLink.reads, protocol.BuildFrame([]byte{0x81, 0x01, 0x42}, 1))
	bottomLink.mu.Unlock()

	select {
	case ev := <-events:
		assert.Equal(t, "battery", ev.Name)
	case <-time.After(time.Second):
		t.Fatal("no battery event after restart")
	}
	r.StopListening(time.Second)
}

func TestRobotBroadcastPartialFailure(t *testing.T) {
	r, headLink, bottomLink := newTestRobot(t)
	headLink.mu.Lock()
	headLink.writeFails = 10
	headLink.mu.Unlock()

	// A dead head must not fail a broadcast that still reaches the
	// bottom MCU.
	n, err := r.Dance(true)
	require.NoError(t, err)
	assert.Positive(t, n)
	assert.Equal(t, 0, headLink.writeCount())
	assert.Equal(t, 1, bottomLink.writeCount())
}

func TestOffClearsCallbacks(t *testing.T) {
	r, _, _ := newTestRobot(t)

	called := false
	r.On("battery", func(ev *protocol.Event, f *protocol.Frame) { called = true })
	r.Off("battery")
	r.emit("battery", &protocol.Event{Name: "battery"}, nil)
	assert.False(t, called)
}

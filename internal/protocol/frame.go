// Package protocol implements the framed wire protocol spoken by the
// Sanbot head and bottom MCUs: frame build/parse, the command constructors
// with their per-opcode routing tags, and best-effort decoding of inbound
// payloads into named events.
package protocol

import "encoding/binary"

const (
	frameType    = 0xA403
	frameSubtype = 0x0000
	frameHead    = 0xFFA5

	headerLen = 16 // bytes before the frame head
	// content_len counts frame head (2) + ack (1) + sequence (2) + checksum (1)
	// on top of the payload.
	contentOverhead = 6
)

// Target selects which MCU(s) a command is routed to. It travels as a
// single byte appended after the frame, outside the checksummed region;
// the MCUs themselves never see it.
type Target byte

const (
	TagHead      Target = 1
	TagBottom    Target = 2
	TagBroadcast Target = 3
)

func (t Target) String() string {
	switch t {
	case TagHead:
		return "head"
	case TagBottom:
		return "bottom"
	case TagBroadcast:
		return "broadcast"
	}
	return "unknown"
}

// Frame is one decoded wire frame.
type Frame struct {
	Type     uint16
	Subtype  uint16
	Ack      byte
	Sequence uint16
	Payload  []byte
	Checksum byte
}

// BuildFrame assembles a complete frame around payload. The routing tag is
// not part of the frame; callers append it separately when queueing for
// transmit.
func BuildFrame(payload []byte, ack byte) []byte {
	contentLen := len(payload) + contentOverhead
	seq := uint16((len(payload) + 1) % 0x10000)

	buf := make([]byte, headerLen+contentLen)
	binary.BigEndian.PutUint16(buf[0:2], frameType)
	binary.BigEndian.PutUint16(buf[2:4], frameSubtype)
	binary.BigEndian.PutUint32(buf[4:8], uint32(contentLen))
	buf[8] = ack
	// buf[9:16] reserved, left zero
	binary.BigEndian.PutUint16(buf[16:18], frameHead)
	buf[18] = ack
	binary.BigEndian.PutUint16(buf[19:21], seq)
	copy(buf[21:], payload)
	buf[len(buf)-1] = checksum(ack, seq, payload)
	return buf
}

// checksum is the low 8 bits of the sum of both frame-head bytes, the ack
// flag, both sequence bytes and every payload byte.
func checksum(ack byte, seq uint16, payload []byte) byte {
	sum := uint32(frameHead>>8) + uint32(frameHead&0xFF)
	sum += uint32(ack)
	sum += uint32(seq>>8) + uint32(seq&0xFF)
	for _, b := range payload {
		sum += uint32(b)
	}
	return byte(sum)
}

// ParseFrame decodes one frame from buf. It returns nil when buf is too
// short to hold the length it declares. Trailing bytes beyond the frame
// (such as a routing tag) are ignored. The checksum byte is recorded but
// not verified; see VerifyChecksum.
func ParseFrame(buf []byte) *Frame {
	if len(buf) < headerLen {
		return nil
	}
	contentLen := int(binary.BigEndian.Uint32(buf[4:8]))
	total := headerLen + contentLen
	if contentLen < contentOverhead || len(buf) < total {
		return nil
	}
	payloadLen := contentLen - contentOverhead
	f := &Frame{
		Type:     binary.BigEndian.Uint16(buf[0:2]),
		Subtype:  binary.BigEndian.Uint16(buf[2:4]),
		Ack:      buf[18],
		Sequence: binary.BigEndian.Uint16(buf[19:21]),
		Payload:  make([]byte, payloadLen),
		Checksum: buf[total-1],
	}
	copy(f.Payload, buf[21:21+payloadLen])
	return f
}

// VerifyChecksum recomputes the checksum for f and reports whether it
// matches the byte carried on the wire. Receive paths do not call this;
// it exists for diagnostics and tests.
func VerifyChecksum(f *Frame) bool {
	if f == nil {
		return false
	}
	return checksum(f.Ack, f.Sequence, f.Payload) == f.Checksum
}

// FrameLen reports the total frame length declared by a buffer that holds
// at least the 16-byte header, or 0 if buf is too short.
func FrameLen(buf []byte) int {
	if len(buf) < headerLen {
		return 0
	}
	n := int(binary.BigEndian.Uint32(buf[4:8]))
	if n < contentOverhead {
		return 0
	}
	return headerLen + n
}

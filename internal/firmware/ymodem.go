// Package firmware streams MCU firmware images using the YMODEM
// derivative the bootloader expects: a filename header block, padded
// data blocks with CRC16, and an empty terminator block.
package firmware

import (
	"strconv"

	"github.com/sanbotlabs/mcu-bridge/internal/protocol"
)

const (
	soh = 0x01 // header and terminator blocks
	stx = 0x02 // data blocks

	headerPayloadLen = 128
	headerBlockLen   = 3 + headerPayloadLen + 2
)

// Valid data block sizes.
const (
	BlockSize128  = 128
	BlockSize1024 = 1024
)

// compl is the sequence complement byte. The folding for values above
// 0xFF matches the stock uploader, quirk included.
func compl(v int) byte {
	if v > 0xFF {
		v %= 0xFF
	}
	return byte(0xFF - v)
}

// FileHeader builds the 133-byte filename block: SOH, sequence 0, the
// 128-byte payload holding "name\x00size" (size in decimal ASCII), and
// a big-endian CRC16 over the payload.
func FileHeader(name string, size int) []byte {
	block := make([]byte, headerBlockLen)
	block[0] = soh
	block[1] = 0x00
	block[2] = compl(0)

	// The name, its NUL separator and the size all have to fit in the
	// 128-byte payload.
	if len(name) > headerPayloadLen-1 {
		name = name[:headerPayloadLen-1]
	}
	payload := block[3 : 3+headerPayloadLen]
	n := copy(payload, name)
	// NUL separator, then the decimal size.
	copy(payload[n+1:], strconv.Itoa(size))

	crc := protocol.CRC16(payload)
	block[headerBlockLen-2] = byte(crc >> 8)
	block[headerBlockLen-1] = byte(crc)
	return block
}

// DataBlock builds one data block: STX, the truncated sequence index
// and its complement, the chunk padded to blockSize with 0x1A, and a
// big-endian CRC16 over the padded area.
func DataBlock(index int, chunk []byte, blockSize int) []byte {
	block := make([]byte, 3+blockSize+2)
	block[0] = stx
	block[1] = byte(index)
	block[2] = compl(index)

	body := block[3 : 3+blockSize]
	n := copy(body, chunk)
	for i := n; i < blockSize; i++ {
		body[i] = 0x1A
	}

	crc := protocol.CRC16(body)
	block[len(block)-2] = byte(crc >> 8)
	block[len(block)-1] = byte(crc)
	return block
}

// Terminator builds the header-shaped all-zero block that ends the
// transfer.
func Terminator() []byte {
	block := make([]byte, headerBlockLen)
	block[0] = soh
	block[1] = 0x00
	block[2] = compl(0)
	return block
}

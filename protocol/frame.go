package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrPayloadTooLarge = errors.New("payload too large for one frame")
)

// Frame is one validated message
type Frame struct {
	Sequence uint8
	Payload  []byte
}

// EncodeFrame wraps payload into a frame: length, sequence, payload,
// CRC16 over everything before it, sync byte
func EncodeFrame(output OutputBuffer, seq uint8, payload []byte) error {
	if len(payload) > MessagePayloadMax {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrPayloadTooLarge, len(payload), MessagePayloadMax)
	}

	msg := make([]byte, 0, len(payload)+MessageLengthMin)
	msg = append(msg, uint8(len(payload)+MessageLengthMin), seq)
	msg = append(msg, payload...)

	output.Output(appendTrailer(msg))
	return nil
}

// Decoder extracts frames from a byte stream. Garbage, bad lengths and
// CRC mismatches drop bytes up to the next sync byte.
type Decoder struct {
	buf  []byte
	sync bool

	// Counters for diagnostics
	Frames    uint32
	CRCErrors uint32
	Dropped   uint32
}

// NewDecoder creates a decoder that starts synchronized
func NewDecoder() *Decoder {
	return &Decoder{sync: true}
}

// Feed appends received bytes
func (d *Decoder) Feed(data []byte) {
	d.buf = append(d.buf, data...)
}

// Buffered returns the number of bytes waiting for a complete frame
func (d *Decoder) Buffered() int {
	return len(d.buf)
}

// Next returns the next complete frame, or false when more input is needed
func (d *Decoder) Next() (Frame, bool) {
	for len(d.buf) > 0 {
		if !d.sync {
			d.resync()
			continue
		}

		// Skip leading sync bytes
		if d.buf[0] == MessageValueSync {
			d.buf = d.buf[1:]
			continue
		}

		msgLen := int(d.buf[MessagePositionLen])
		if msgLen < MessageLengthMin || msgLen > MessageLengthMax {
			d.desync()
			continue
		}

		// Wait for full message
		if len(d.buf) < msgLen {
			break
		}

		if d.buf[msgLen-1] != MessageValueSync {
			d.desync()
			continue
		}

		if !trailerValid(d.buf[:msgLen]) {
			d.CRCErrors++
			d.desync()
			continue
		}

		frame := Frame{
			Sequence: d.buf[MessagePositionSeq],
			Payload:  append([]byte(nil), d.buf[MessageHeaderSize:msgLen-MessageTrailerSize]...),
		}
		d.buf = d.buf[msgLen:]
		d.Frames++
		return frame, true
	}

	d.compact()
	return Frame{}, false
}

// desync drops the first byte and scans for the next sync byte
func (d *Decoder) desync() {
	d.sync = false
	d.buf = d.buf[1:]
	d.Dropped++
}

func (d *Decoder) resync() {
	for i, b := range d.buf {
		if b == MessageValueSync {
			d.Dropped += uint32(i)
			d.buf = d.buf[i+1:]
			d.sync = true
			return
		}
	}
	d.Dropped += uint32(len(d.buf))
	d.buf = d.buf[:0]
}

// compact releases the consumed prefix of the backing array
func (d *Decoder) compact() {
	if cap(d.buf) > MessageLengthMax*8 && len(d.buf) < MessageLengthMax {
		d.buf = append([]byte(nil), d.buf...)
	}
}

// Reset discards buffered input
func (d *Decoder) Reset() {
	d.buf = d.buf[:0]
	d.sync = true
}

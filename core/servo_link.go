package core

import (
	"lazyservo/protocol"
)

// maxResponseLen is the worst-case encoded size of one response
const maxResponseLen = 32

// ServoLink is the firmware end of the host protocol. It decodes frames
// from the input stream, dispatches them to a ServoTable and frames the
// responses through write.
type ServoLink struct {
	decoder *protocol.Decoder
	table   *ServoTable
	payload *protocol.ScratchOutput
	frame   *protocol.ScratchOutput
	write   func([]byte)
	seq     uint8
}

// NewServoLink creates a link whose responses are passed to write.
// write must not retain the slice.
func NewServoLink(write func([]byte)) *ServoLink {
	payload := protocol.NewScratchOutput()
	return &ServoLink{
		decoder: protocol.NewDecoder(),
		table:   NewServoTable(payload),
		payload: payload,
		frame:   protocol.NewScratchOutput(),
		write:   write,
	}
}

// Table returns the servo table commands are routed to
func (l *ServoLink) Table() *ServoTable {
	return l.table
}

// Decoder exposes the frame decoder counters
func (l *ServoLink) Decoder() *protocol.Decoder {
	return l.decoder
}

// Receive feeds input bytes and handles every complete frame
func (l *ServoLink) Receive(data []byte) {
	l.decoder.Feed(data)
	for {
		frame, ok := l.decoder.Next()
		if !ok {
			return
		}

		l.seq = frame.Sequence & protocol.MessageSeqMask
		if err := protocol.Dispatch(frame.Payload, l); err != nil {
			DebugPrintln("[LINK] dispatch error: " + err.Error())
		}
		l.flush()
	}
}

func (l *ServoLink) HandleSet(oid uint8, value float32, now bool) error {
	l.reserve()
	return l.table.HandleSet(oid, value, now)
}

func (l *ServoLink) HandleSetLimits(oid uint8, minUS, maxUS uint16) error {
	l.reserve()
	return l.table.HandleSetLimits(oid, minUS, maxUS)
}

func (l *ServoLink) HandleQuery(oid uint8) error {
	l.reserve()
	return l.table.HandleQuery(oid)
}

// reserve flushes pending responses when one more might not fit a frame
func (l *ServoLink) reserve() {
	if l.payload.Len()+maxResponseLen > protocol.MessagePayloadMax {
		l.flush()
	}
}

// flush frames and sends the pending responses
func (l *ServoLink) flush() {
	if l.payload.Len() == 0 {
		return
	}

	l.frame.Reset()
	err := protocol.EncodeFrame(l.frame, protocol.MessageDestHost|l.seq, l.payload.Result())
	l.payload.Reset()
	if err != nil {
		DebugPrintln("[LINK] response dropped: " + err.Error())
		return
	}
	l.write(l.frame.Result())
}

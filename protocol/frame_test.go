package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func encodeTestFrame(t *testing.T, seq uint8, payload []byte) []byte {
	t.Helper()
	output := NewScratchOutput()
	if err := EncodeFrame(output, seq, payload); err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}
	return append([]byte(nil), output.Result()...)
}

func TestEncodeFrameLayout(t *testing.T) {
	frame := encodeTestFrame(t, MessageDestMCU|1, []byte{CmdServoQuery, 3})

	expected := []byte{7, 0x11, 4, 3, 0xDE, 0xB2, MessageValueSync}
	if !bytes.Equal(frame, expected) {
		t.Errorf("frame = % X, expected % X", frame, expected)
	}
}

func TestEncodeFrameTooLarge(t *testing.T) {
	output := NewScratchOutput()
	err := EncodeFrame(output, 0, make([]byte, MessagePayloadMax+1))
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Errorf("expected ErrPayloadTooLarge, got %v", err)
	}
	if output.Len() != 0 {
		t.Errorf("rejected frame wrote %d bytes", output.Len())
	}

	if err := EncodeFrame(output, 0, make([]byte, MessagePayloadMax)); err != nil {
		t.Errorf("maximum payload rejected: %v", err)
	}
	if output.Len() != MessageLengthMax {
		t.Errorf("maximum frame is %d bytes, expected %d", output.Len(), MessageLengthMax)
	}
}

func TestDecoderRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{},
		{CmdServoQuery, 0},
		{CmdServoSet, 1, 0xBD, 0x84, 0x40},
		make([]byte, MessagePayloadMax),
	}

	d := NewDecoder()
	for i, payload := range payloads {
		d.Feed(encodeTestFrame(t, uint8(i), payload))
	}

	for i, payload := range payloads {
		frame, ok := d.Next()
		if !ok {
			t.Fatalf("frame %d missing", i)
		}
		if frame.Sequence != uint8(i) {
			t.Errorf("frame %d: sequence %d", i, frame.Sequence)
		}
		if !bytes.Equal(frame.Payload, payload) {
			t.Errorf("frame %d: payload % X, expected % X", i, frame.Payload, payload)
		}
	}

	if _, ok := d.Next(); ok {
		t.Error("unexpected extra frame")
	}
	if d.Frames != uint32(len(payloads)) {
		t.Errorf("Frames = %d, expected %d", d.Frames, len(payloads))
	}
}

func TestDecoderPartialInput(t *testing.T) {
	frame := encodeTestFrame(t, 2, []byte{CmdServoQuery, 7})

	d := NewDecoder()
	for i := 0; i < len(frame)-1; i++ {
		d.Feed(frame[i : i+1])
		if _, ok := d.Next(); ok {
			t.Fatalf("frame decoded after %d of %d bytes", i+1, len(frame))
		}
	}
	if d.Buffered() != len(frame)-1 {
		t.Errorf("Buffered = %d, expected %d", d.Buffered(), len(frame)-1)
	}

	d.Feed(frame[len(frame)-1:])
	got, ok := d.Next()
	if !ok {
		t.Fatal("frame not decoded after final byte")
	}
	if !bytes.Equal(got.Payload, []byte{CmdServoQuery, 7}) {
		t.Errorf("payload = % X", got.Payload)
	}
	if d.Buffered() != 0 {
		t.Errorf("Buffered = %d after decode", d.Buffered())
	}
}

func TestDecoderResync(t *testing.T) {
	good := encodeTestFrame(t, 1, []byte{CmdServoQuery, 1})

	t.Run("garbage", func(t *testing.T) {
		d := NewDecoder()
		d.Feed([]byte{0x01, 0xFF, 0x42, MessageValueSync})
		d.Feed(good)

		frame, ok := d.Next()
		if !ok {
			t.Fatal("decoder did not resync after garbage")
		}
		if frame.Sequence != 1 {
			t.Errorf("sequence = %d", frame.Sequence)
		}
		if d.Dropped == 0 {
			t.Error("dropped bytes not counted")
		}
	})

	t.Run("crc mismatch", func(t *testing.T) {
		bad := append([]byte(nil), good...)
		bad[MessageHeaderSize] ^= 0xFF

		d := NewDecoder()
		d.Feed(bad)
		d.Feed(good)

		frame, ok := d.Next()
		if !ok {
			t.Fatal("decoder did not resync after CRC error")
		}
		if !bytes.Equal(frame.Payload, []byte{CmdServoQuery, 1}) {
			t.Errorf("payload = % X", frame.Payload)
		}
		if d.CRCErrors != 1 {
			t.Errorf("CRCErrors = %d, expected 1", d.CRCErrors)
		}
		if _, ok := d.Next(); ok {
			t.Error("corrupt frame produced a second frame")
		}
	})

	t.Run("leading sync bytes", func(t *testing.T) {
		d := NewDecoder()
		d.Feed([]byte{MessageValueSync, MessageValueSync})
		d.Feed(good)

		if _, ok := d.Next(); !ok {
			t.Fatal("leading sync bytes blocked decoding")
		}
		if d.Dropped != 0 {
			t.Errorf("Dropped = %d, expected 0", d.Dropped)
		}
	})
}

func TestDecoderReset(t *testing.T) {
	d := NewDecoder()
	d.Feed([]byte{0x01, 0x02})
	d.Next()
	d.Reset()

	if d.Buffered() != 0 {
		t.Errorf("Buffered = %d after Reset", d.Buffered())
	}

	d.Feed(encodeTestFrame(t, 3, nil))
	if _, ok := d.Next(); !ok {
		t.Error("decoder unusable after Reset")
	}
}

func TestFifoBuffer(t *testing.T) {
	f := NewFifoBuffer(8)

	if n := f.Write([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9}); n != 7 {
		t.Errorf("Write accepted %d bytes, expected 7", n)
	}
	if f.Available() != 7 {
		t.Errorf("Available = %d, expected 7", f.Available())
	}

	out := make([]byte, 4)
	if n := f.Read(out); n != 4 || !bytes.Equal(out, []byte{1, 2, 3, 4}) {
		t.Errorf("Read = %d % X", n, out)
	}

	// Wrap around the end of the backing array
	f.Write([]byte{10, 11, 12})
	rest := make([]byte, 8)
	n := f.Read(rest)
	if !bytes.Equal(rest[:n], []byte{5, 6, 7, 10, 11, 12}) {
		t.Errorf("Read after wrap = % X", rest[:n])
	}

	f.Write([]byte{1})
	f.Reset()
	if f.Available() != 0 {
		t.Errorf("Available = %d after Reset", f.Available())
	}
}

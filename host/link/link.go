// Package link is the host side of the servo protocol
package link

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"lazyservo/host/serial"
	"lazyservo/protocol"
)

var (
	ErrClosed  = errors.New("link closed")
	ErrTimeout = errors.New("timed out waiting for response")
)

// RemoteError is a servo_error response from the firmware
type RemoteError struct {
	OID  uint8
	Code uint8
}

func (e *RemoteError) Error() string {
	switch e.Code {
	case protocol.ErrCodeUnknownOID:
		return fmt.Sprintf("servo %d: unknown oid", e.OID)
	case protocol.ErrCodeBadLimits:
		return fmt.Sprintf("servo %d: invalid pulse limits", e.OID)
	}
	return fmt.Sprintf("servo %d: error code %d", e.OID, e.Code)
}

// Client sends servo commands over a byte stream and collects responses
type Client struct {
	port io.ReadWriteCloser

	// Guards seq and frame writes
	mu    sync.Mutex
	seq   uint8
	frame *protocol.ScratchOutput

	statuses chan protocol.Status
	errs     chan protocol.ErrorReport

	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
	readErr   atomic.Value

	// Diagnostics
	badPayloads atomic.Uint32
	dropped     atomic.Uint32
}

// New starts a client on an open stream. The client owns port.
func New(port io.ReadWriteCloser) *Client {
	c := &Client{
		port:     port,
		frame:    protocol.NewScratchOutput(),
		statuses: make(chan protocol.Status, 16),
		errs:     make(chan protocol.ErrorReport, 16),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// Dial opens a serial port and starts a client on it
func Dial(cfg *serial.Config) (*Client, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open link: %w", err)
	}
	return New(port), nil
}

// Set stores a new target; the firmware applies it on its next poll
func (c *Client) Set(oid uint8, value float32) error {
	return c.send(func(out protocol.OutputBuffer) {
		protocol.EncodeSet(out, oid, value, false)
	})
}

// SetNow stores a new target and asks the firmware to evaluate it at once
func (c *Client) SetNow(oid uint8, value float32) error {
	return c.send(func(out protocol.OutputBuffer) {
		protocol.EncodeSet(out, oid, value, true)
	})
}

// SetLimits changes the pulse widths for targets 0 and 1
func (c *Client) SetLimits(oid uint8, minUS, maxUS uint16) error {
	return c.send(func(out protocol.OutputBuffer) {
		protocol.EncodeSetLimits(out, oid, minUS, maxUS)
	})
}

// QueryStatus requests the status of one servo and waits for the reply.
// A servo_error for the same oid is returned as a *RemoteError.
func (c *Client) QueryStatus(oid uint8, timeout time.Duration) (protocol.Status, error) {
	c.drain()

	if err := c.send(func(out protocol.OutputBuffer) {
		protocol.EncodeQuery(out, oid)
	}); err != nil {
		return protocol.Status{}, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case s := <-c.statuses:
			if s.OID == oid {
				return s, nil
			}
		case e := <-c.errs:
			if e.OID == oid {
				return protocol.Status{}, &RemoteError{OID: e.OID, Code: e.Code}
			}
		case <-timer.C:
			return protocol.Status{}, fmt.Errorf("servo %d status: %w", oid, ErrTimeout)
		case <-c.stopped:
			return protocol.Status{}, c.err()
		}
	}
}

// Errors returns unsolicited servo_error reports, such as a rejected Set
func (c *Client) Errors() <-chan protocol.ErrorReport {
	return c.errs
}

// BadPayloads returns the number of frames whose payload failed to decode
func (c *Client) BadPayloads() uint32 {
	return c.badPayloads.Load()
}

// Dropped returns the number of responses discarded because nobody read them
func (c *Client) Dropped() uint32 {
	return c.dropped.Load()
}

// Close stops the read loop and closes the port
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.port.Close()
		<-c.stopped
	})
	return err
}

// send frames one command with the next sequence number
func (c *Client) send(encode func(out protocol.OutputBuffer)) error {
	select {
	case <-c.stopped:
		return c.err()
	default:
	}

	payload := protocol.NewScratchOutput()
	encode(payload)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.frame.Reset()
	seq := protocol.MessageDestMCU | (c.seq & protocol.MessageSeqMask)
	if err := protocol.EncodeFrame(c.frame, seq, payload.Result()); err != nil {
		return err
	}
	c.seq++

	if _, err := c.port.Write(c.frame.Result()); err != nil {
		return fmt.Errorf("failed to write command: %w", err)
	}
	return nil
}

// drain discards statuses left over from earlier timed-out queries
func (c *Client) drain() {
	for {
		select {
		case <-c.statuses:
			c.dropped.Add(1)
		default:
			return
		}
	}
}

func (c *Client) readLoop() {
	defer close(c.stopped)

	decoder := protocol.NewDecoder()
	buf := make([]byte, protocol.MessageLengthMax)
	sink := responseSink{c}

	for {
		n, err := c.port.Read(buf)
		if n > 0 {
			decoder.Feed(buf[:n])
			for {
				frame, ok := decoder.Next()
				if !ok {
					break
				}
				if err := protocol.DispatchResponses(frame.Payload, sink); err != nil {
					c.badPayloads.Add(1)
				}
			}
		}
		if err != nil {
			select {
			case <-c.done:
				c.readErr.Store(loopErr{ErrClosed})
			default:
				c.readErr.Store(loopErr{fmt.Errorf("link read failed: %w", err)})
			}
			return
		}
	}
}

// loopErr keeps the stored type constant for atomic.Value
type loopErr struct {
	err error
}

func (c *Client) err() error {
	if le, ok := c.readErr.Load().(loopErr); ok {
		return le.err
	}
	return ErrClosed
}

// responseSink delivers decoded responses without blocking the read loop
type responseSink struct {
	c *Client
}

func (r responseSink) HandleStatus(s protocol.Status) {
	select {
	case r.c.statuses <- s:
	default:
		r.c.dropped.Add(1)
	}
}

func (r responseSink) HandleError(e protocol.ErrorReport) {
	select {
	case r.c.errs <- e:
	default:
		r.c.dropped.Add(1)
	}
}

package link

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lazyservo/core"
	"lazyservo/protocol"
	"lazyservo/sim"
)

const testTimeout = 2 * time.Second

// firmware serves the servo protocol on one end of a pipe
type firmware struct {
	conn   net.Conn
	link   *core.ServoLink
	clock  *core.ManualClock
	driver *sim.Driver
	done   chan struct{}
}

func startFirmware(t *testing.T, conn net.Conn) *firmware {
	t.Helper()

	fw := &firmware{
		conn:  conn,
		clock: core.NewManualClock(0),
		done:  make(chan struct{}),
	}
	fw.driver = sim.NewDriver(fw.clock)
	fw.link = core.NewServoLink(func(frame []byte) {
		conn.Write(frame)
	})

	queue := core.NewTimerQueue()
	cfg := core.DefaultConfig()
	cfg.OID = 3
	fw.link.Table().Add(core.NewLazyServo(15, fw.driver, core.NewTrigger(queue, fw.clock), fw.clock, cfg))

	go fw.serve()
	return fw
}

func (fw *firmware) serve() {
	defer close(fw.done)
	buf := make([]byte, 64)
	for {
		n, err := fw.conn.Read(buf)
		if err != nil {
			return
		}
		fw.link.Receive(buf[:n])
		fw.clock.Advance(1000)
		fw.link.Table().UpdateAll()
	}
}

func newTestClient(t *testing.T) (*Client, *firmware) {
	t.Helper()
	host, device := net.Pipe()
	fw := startFirmware(t, device)
	c := New(host)
	t.Cleanup(func() {
		c.Close()
		device.Close()
		<-fw.done
	})
	return c, fw
}

func TestQueryStatus(t *testing.T) {
	c, _ := newTestClient(t)

	s, err := c.QueryStatus(3, testTimeout)
	require.NoError(t, err)
	assert.Equal(t, uint8(3), s.OID)
	assert.Equal(t, uint8(core.MonitorAsleep), s.State)
	assert.False(t, s.Attached)
	assert.Equal(t, float32(0.5), s.Target)
	assert.Equal(t, float32(-1), s.Written)
}

func TestSetThenQuery(t *testing.T) {
	c, _ := newTestClient(t)

	require.NoError(t, c.SetNow(3, 0.25))

	s, err := c.QueryStatus(3, testTimeout)
	require.NoError(t, err)
	assert.Equal(t, float32(0.25), s.Target)
	assert.Equal(t, float32(0.25), s.Written)
	assert.Equal(t, uint16(1000), s.PulseUS)
	assert.True(t, s.Attached)
	assert.Equal(t, uint32(1), s.Writes)
	assert.Equal(t, uint32(1), s.Wakeups)
}

func TestSetLimits(t *testing.T) {
	c, _ := newTestClient(t)

	require.NoError(t, c.SetLimits(3, 1000, 2000))
	require.NoError(t, c.SetNow(3, 1))

	s, err := c.QueryStatus(3, testTimeout)
	require.NoError(t, err)
	assert.Equal(t, uint16(2000), s.PulseUS)
}

func TestRemoteErrors(t *testing.T) {
	c, _ := newTestClient(t)

	_, err := c.QueryStatus(9, testTimeout)
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, uint8(9), remote.OID)
	assert.Equal(t, uint8(protocol.ErrCodeUnknownOID), remote.Code)

	require.NoError(t, c.SetLimits(3, 2000, 1000))
	select {
	case e := <-c.Errors():
		assert.Equal(t, protocol.ErrorReport{OID: 3, Code: protocol.ErrCodeBadLimits}, e)
	case <-time.After(testTimeout):
		t.Fatal("no error report for inverted limits")
	}
}

func TestQueryTimeout(t *testing.T) {
	host, device := net.Pipe()
	c := New(host)
	defer c.Close()

	// Swallow the query without answering
	go func() {
		buf := make([]byte, 64)
		for {
			if _, err := device.Read(buf); err != nil {
				return
			}
		}
	}()
	defer device.Close()

	_, err := c.QueryStatus(1, 50*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestClose(t *testing.T) {
	c, _ := newTestClient(t)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	err := c.Set(3, 0.1)
	assert.True(t, errors.Is(err, ErrClosed), "got %v", err)

	_, err = c.QueryStatus(3, testTimeout)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRemoteErrorMessage(t *testing.T) {
	assert.Equal(t, "servo 2: unknown oid", (&RemoteError{OID: 2, Code: protocol.ErrCodeUnknownOID}).Error())
	assert.Equal(t, "servo 2: error code 7", (&RemoteError{OID: 2, Code: 7}).Error())
}

package core

import (
	"lazyservo/protocol"
)

// Servo command handlers for the host protocol
// Implements: servo_set, servo_set_now, servo_set_limits, servo_query

// ServoTable routes decoded host commands to servos by object ID and
// encodes the responses into out
type ServoTable struct {
	servos []*LazyServo
	out    protocol.OutputBuffer
}

// NewServoTable creates an empty table writing responses to out
func NewServoTable(out protocol.OutputBuffer) *ServoTable {
	return &ServoTable{out: out}
}

// Add registers a servo. A servo with the same OID is replaced.
func (t *ServoTable) Add(s *LazyServo) {
	for i, existing := range t.servos {
		if existing.OID() == s.OID() {
			t.servos[i] = s
			return
		}
	}
	t.servos = append(t.servos, s)
}

// Lookup returns the servo registered under oid
func (t *ServoTable) Lookup(oid uint8) (*LazyServo, bool) {
	for _, s := range t.servos {
		if s.OID() == oid {
			return s, true
		}
	}
	return nil, false
}

// Servos returns the registered servos in registration order
func (t *ServoTable) Servos() []*LazyServo {
	return t.servos
}

// UpdateAll polls every servo once
func (t *ServoTable) UpdateAll() {
	for _, s := range t.servos {
		s.Update()
	}
}

// CloseAll detaches every servo
func (t *ServoTable) CloseAll() {
	for _, s := range t.servos {
		s.Close()
	}
}

func (t *ServoTable) HandleSet(oid uint8, value float32, now bool) error {
	s, ok := t.Lookup(oid)
	if !ok {
		t.reportError(oid, protocol.ErrCodeUnknownOID)
		return nil
	}
	if now {
		s.SetNow(value)
	} else {
		s.Set(value)
	}
	return nil
}

func (t *ServoTable) HandleSetLimits(oid uint8, minUS, maxUS uint16) error {
	s, ok := t.Lookup(oid)
	if !ok {
		t.reportError(oid, protocol.ErrCodeUnknownOID)
		return nil
	}
	if minUS > maxUS || maxUS == 0 {
		t.reportError(oid, protocol.ErrCodeBadLimits)
		return nil
	}
	s.SetPulseLimits(minUS, maxUS)
	return nil
}

func (t *ServoTable) HandleQuery(oid uint8) error {
	s, ok := t.Lookup(oid)
	if !ok {
		t.reportError(oid, protocol.ErrCodeUnknownOID)
		return nil
	}
	protocol.EncodeStatus(t.out, ServoStatus(s))
	return nil
}

func (t *ServoTable) reportError(oid uint8, code uint8) {
	DebugPrintln("[SERVO] oid=" + itoa(int(oid)) + " command rejected, code=" + itoa(int(code)))
	protocol.EncodeError(t.out, protocol.ErrorReport{OID: oid, Code: code})
}

// ServoStatus snapshots a servo for the servo_status response
func ServoStatus(s *LazyServo) protocol.Status {
	stats := s.Stats()
	return protocol.Status{
		OID:      s.OID(),
		State:    uint8(s.State()),
		Attached: s.Attached(),
		Target:   s.Get(),
		Written:  s.LastWritten(),
		PulseUS:  s.PulseWidth(),
		Writes:   stats.Writes,
		Wakeups:  stats.Wakeups,
		Sleeps:   stats.Sleeps,
		Faults:   stats.Faults,
	}
}

// Lazy servo control
// Keeps a servo detached while its target does not move and only writes
// pulse widths for changes larger than a configured threshold.
package core

import "math"

const (
	// neverWritten is outside [0, 1] so the first evaluation always breaches
	neverWritten float32 = -1

	// maxChain bounds the zero-delay transitions run by one Update call
	maxChain = 6
)

// Config holds the construction parameters of a LazyServo
type Config struct {
	OID             uint8   // Object ID used in logs and status reports
	Threshold       float32 // Minimum |target - written| that justifies a write
	CheckIntervalUS uint32  // Polling cadence while monitoring
	DozingTimeoutUS uint32  // Idle time before the servo is detached
	MinPulseUS      uint16  // Pulse width for target 0
	MaxPulseUS      uint16  // Pulse width for target 1
	Initial         float32 // Initial target
}

// DefaultConfig returns the defaults for a standard 50Hz hobby servo
func DefaultConfig() Config {
	return Config{
		Threshold:       0.001,
		CheckIntervalUS: 100 * 1000,
		DozingTimeoutUS: 2000 * 1000,
		MinPulseUS:      500,
		MaxPulseUS:      2500,
		Initial:         0.5,
	}
}

// Stats counts what the controller did to the hardware
type Stats struct {
	Writes  uint32 // Physical pulse width writes
	Wakeups uint32 // Attach calls
	Sleeps  uint32 // Detach calls
	Faults  uint32 // Failed attach calls
}

// LazyServo is the power-conserving position controller for one pin.
// It is not safe for concurrent use; Set, SetNow and Update must be
// called from the same loop or serialized by the caller.
type LazyServo struct {
	oid    uint8
	pin    PulsePin
	driver PulseDriver
	sched  Scheduler
	clock  Clock

	target      UnitRange
	lastWritten float32
	threshold   float32
	timing      Timing
	minPulse    uint16
	maxPulse    uint16

	state       State
	attached    bool
	closed      bool
	pulse       uint16
	lastWriteAt uint64
	stats       Stats
}

// NewLazyServo creates a controller for pin and arms its first
// MonitorAsleep evaluation. The servo stays detached until Update runs.
func NewLazyServo(pin PulsePin, driver PulseDriver, sched Scheduler, clock Clock, cfg Config) *LazyServo {
	s := &LazyServo{
		oid:         cfg.OID,
		pin:         pin,
		driver:      driver,
		sched:       sched,
		clock:       clock,
		target:      NewUnitRange(cfg.Initial),
		lastWritten: neverWritten,
		threshold:   cfg.Threshold,
		timing: Timing{
			CheckIntervalUS: cfg.CheckIntervalUS,
			DozingTimeoutUS: cfg.DozingTimeoutUS,
		},
	}
	s.SetPulseLimits(cfg.MinPulseUS, cfg.MaxPulseUS)
	s.goAfter(MonitorAsleep, 0)
	return s
}

// SetPulseLimits sets the pulse widths for targets 0 and 1. The current
// position is not rewritten until the next breach.
func (s *LazyServo) SetPulseLimits(minUS, maxUS uint16) {
	s.minPulse = minUS
	s.maxPulse = maxUS
}

// PulseLimits returns the configured pulse widths
func (s *LazyServo) PulseLimits() (uint16, uint16) {
	return s.minPulse, s.maxPulse
}

// Set stores a new target. It takes effect on the next Update.
func (s *LazyServo) Set(value float32) {
	s.target.Set(value)
}

// SetNow stores a new target and evaluates it right away. A breaching
// target pre-empts the pending monitor interval.
func (s *LazyServo) SetNow(value float32) {
	s.target.Set(value)
	if !s.closed && s.state.Monitoring() && s.breach() {
		s.goAfter(s.state, 0)
	}
	s.Update()
}

// Get returns the current target, not necessarily the written one
func (s *LazyServo) Get() float32 {
	return s.target.Get()
}

// IsReady always reports true; the controller needs no warm-up
func (s *LazyServo) IsReady() bool {
	return true
}

// Update runs the due state, if any, and arms the next one. Zero-delay
// transitions are followed within the same call.
func (s *LazyServo) Update() {
	if s.closed {
		return
	}

	for i := 0; i < maxChain; i++ {
		current := s.state
		breach := s.breach()
		if !s.sched.IsDue(current) {
			// A sleeping servo wakes on demand instead of waiting out
			// the rest of its check interval.
			if current != MonitorAsleep || !breach {
				return
			}
		}

		now := s.clock.Micros()
		step := Evaluate(current, breach, s.idle(now), s.timing)
		written := s.perform(step.Action, now)
		s.goAfter(step.Next, step.Delay)

		if step.Next != current || step.Action != ActionNone {
			evt := TransitionEvent{
				OID:    s.oid,
				From:   current,
				To:     step.Next,
				Action: step.Action,
				Clock:  now,
			}
			if written {
				evt.Pulse = s.pulse
			}
			RecordTransition(evt)
		}

		// A state that re-armed itself waits for the next Update.
		if step.Delay != 0 || step.Next == current {
			return
		}
	}
}

// Close cancels the pending transition and detaches the servo
func (s *LazyServo) Close() {
	if s.closed {
		return
	}
	s.sched.Cancel()
	if s.attached {
		s.driver.Detach()
		s.attached = false
		s.stats.Sleeps++
	}
	s.closed = true
}

// perform executes the side effect of a step and reports whether a
// pulse width was written
func (s *LazyServo) perform(action Action, now uint64) bool {
	switch action {
	case ActionWrite:
		s.adjust(now)
		return true

	case ActionAttachWrite:
		DebugPrintln("[SERVO] oid=" + itoa(int(s.oid)) + " ServoWakeup")
		if err := s.driver.Attach(s.pin); err != nil {
			s.stats.Faults++
			DebugPrintln("[SERVO] oid=" + itoa(int(s.oid)) + " attach failed: " + err.Error())
		} else {
			s.attached = true
		}
		s.stats.Wakeups++
		s.adjust(now)
		return true

	case ActionDetach:
		DebugPrintln("[SERVO] oid=" + itoa(int(s.oid)) + " ServoSleep")
		s.driver.Detach()
		s.attached = false
		s.stats.Sleeps++
	}
	return false
}

// adjust is the only place the hardware receives a new position
func (s *LazyServo) adjust(now uint64) {
	target := s.target.Get()
	pulse := PulseWidth(target, s.minPulse, s.maxPulse)

	DebugPrintln("[SERVO] oid=" + itoa(int(s.oid)) + " adjust to " + ftoa(target) +
		" (" + utoa(uint64(pulse)) + ")")

	s.driver.WritePulseWidth(pulse)

	s.pulse = pulse
	s.lastWritten = target
	s.lastWriteAt = now
	s.stats.Writes++
}

// goAfter replaces the pending transition: cancel, then arm
func (s *LazyServo) goAfter(next State, delayUS uint32) {
	s.sched.Cancel()
	s.sched.Arm(next, delayUS)
	s.state = next
}

func (s *LazyServo) breach() bool {
	diff := s.target.Get() - s.lastWritten
	if diff < 0 {
		diff = -diff
	}
	return diff > s.threshold
}

func (s *LazyServo) idle(now uint64) uint64 {
	if now < s.lastWriteAt {
		return 0
	}
	return now - s.lastWriteAt
}

// PulseWidth maps a normalized value linearly onto [minUS, maxUS],
// rounded to the nearest microsecond
func PulseWidth(value float32, minUS, maxUS uint16) uint16 {
	us := float64(minUS) + (float64(maxUS)-float64(minUS))*float64(value)
	us = math.Round(us)
	if us < 0 {
		return 0
	}
	if us > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(us)
}

// State returns the state that will run next
func (s *LazyServo) State() State {
	return s.state
}

// Attached reports whether the driver is currently attached
func (s *LazyServo) Attached() bool {
	return s.attached
}

// LastWritten returns the value most recently written, or -1 before the first write
func (s *LazyServo) LastWritten() float32 {
	return s.lastWritten
}

// PulseWidth returns the pulse width most recently written
func (s *LazyServo) PulseWidth() uint16 {
	return s.pulse
}

// OID returns the object ID
func (s *LazyServo) OID() uint8 {
	return s.oid
}

// Pin returns the pin the servo is attached to
func (s *LazyServo) Pin() PulsePin {
	return s.pin
}

// Stats returns the hardware activity counters
func (s *LazyServo) Stats() Stats {
	return s.stats
}

// Log writes a one-line status through the debug sink
func (s *LazyServo) Log() {
	attached := "0"
	if s.attached {
		attached = "1"
	}
	DebugPrintln("[SERVO] oid=" + itoa(int(s.oid)) +
		" state=" + s.state.String() +
		" attached=" + attached +
		" target=" + ftoa(s.target.Get()) +
		" written=" + ftoa(s.lastWritten) +
		" pulse=" + utoa(uint64(s.pulse)) +
		" writes=" + utoa(uint64(s.stats.Writes)))
}

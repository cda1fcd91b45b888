package sim

import (
	"lazyservo/core"
)

// Sample is the observable servo state after one poll
type Sample struct {
	AtUS     uint64
	Target   float32
	State    core.State
	Attached bool
	Pulse    uint16 // 0 while detached
}

// Trace is the result of a bench run
type Trace struct {
	Samples []Sample
	Writes  []Write
	Stats   core.Stats
}

// Pulses returns the pulse width series, for plotting
func (t Trace) Pulses() []float64 {
	out := make([]float64, len(t.Samples))
	for i, s := range t.Samples {
		out[i] = float64(s.Pulse)
	}
	return out
}

// Targets returns the target series
func (t Trace) Targets() []float64 {
	out := make([]float64, len(t.Samples))
	for i, s := range t.Samples {
		out[i] = float64(s.Target)
	}
	return out
}

// AttachedTime returns the total time the servo spent attached, assuming
// each sample holds until the next one
func (t Trace) AttachedTime() uint64 {
	var total uint64
	for i := 1; i < len(t.Samples); i++ {
		if t.Samples[i-1].Attached {
			total += t.Samples[i].AtUS - t.Samples[i-1].AtUS
		}
	}
	return total
}

// Bench drives one LazyServo from a script on a manual clock
type Bench struct {
	Clock  *core.ManualClock
	Queue  *core.TimerQueue
	Driver *Driver
	Servo  *core.LazyServo

	// PollUS is the interval between Update calls
	PollUS uint64
}

// DefaultPollUS polls at 1kHz
const DefaultPollUS = 1000

// NewBench creates a bench around a fresh servo on pin 0
func NewBench(cfg core.Config, pollUS uint64) *Bench {
	if pollUS == 0 {
		pollUS = DefaultPollUS
	}
	clock := core.NewManualClock(0)
	queue := core.NewTimerQueue()
	driver := NewDriver(clock)
	servo := core.NewLazyServo(0, driver, core.NewTrigger(queue, clock), clock, cfg)
	return &Bench{
		Clock:  clock,
		Queue:  queue,
		Driver: driver,
		Servo:  servo,
		PollUS: pollUS,
	}
}

// Run plays script until durationUS, polling every PollUS. Steps are
// applied before the poll of the same instant.
func (b *Bench) Run(script Script, durationUS uint64) Trace {
	var trace Trace
	next := 0

	for now := b.Clock.Micros(); now <= durationUS; now += b.PollUS {
		b.Clock.Set(now)
		for next < len(script) && script[next].AtUS <= now {
			if script[next].Now {
				b.Servo.SetNow(script[next].Target)
			} else {
				b.Servo.Set(script[next].Target)
			}
			next++
		}

		b.Servo.Update()

		trace.Samples = append(trace.Samples, Sample{
			AtUS:     now,
			Target:   b.Servo.Get(),
			State:    b.Servo.State(),
			Attached: b.Driver.Attached(),
			Pulse:    b.Driver.Output(),
		})
	}

	trace.Writes = b.Driver.Writes
	trace.Stats = b.Servo.Stats()
	return trace
}

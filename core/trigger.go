package core

// Scheduler is the scheduled-transition primitive the controller uses.
// At most one state is pending at a time.
type Scheduler interface {
	// Arm makes state due after delayUS microseconds (immediately for 0),
	// replacing whatever was pending.
	Arm(state State, delayUS uint32)

	// Cancel drops the pending state, if any
	Cancel()

	// IsDue reports whether state is the pending state and its time has come
	IsDue(state State) bool
}

// Trigger implements Scheduler with a Timer on a TimerQueue
type Trigger struct {
	queue *TimerQueue
	clock Clock
	timer Timer

	state State
	armed bool
	fired bool
}

// NewTrigger creates a trigger whose timer lives on q and reads time from clock
func NewTrigger(q *TimerQueue, clock Clock) *Trigger {
	t := &Trigger{
		queue: q,
		clock: clock,
	}
	t.timer.Handler = t.fire
	return t
}

// fire is the timer handler; it only marks the pending state due
func (t *Trigger) fire(*Timer) uint8 {
	t.fired = true
	return SF_DONE
}

// Arm schedules state to become due after delayUS microseconds
func (t *Trigger) Arm(state State, delayUS uint32) {
	t.Cancel()

	t.state = state
	t.armed = true
	t.fired = false
	t.timer.WakeTime = t.clock.Micros() + uint64(delayUS)
	t.queue.Schedule(&t.timer)
}

// Cancel drops the pending state
func (t *Trigger) Cancel() {
	if !t.armed {
		return
	}
	t.queue.Remove(&t.timer)
	t.armed = false
	t.fired = false
}

// IsDue dispatches the queue up to now and reports whether state fired
func (t *Trigger) IsDue(state State) bool {
	if !t.armed || t.state != state {
		return false
	}
	if !t.fired {
		t.queue.Dispatch(t.clock.Micros())
	}
	return t.fired
}

// Pending returns the armed state and its due time
func (t *Trigger) Pending() (State, uint64, bool) {
	return t.state, t.timer.WakeTime, t.armed
}

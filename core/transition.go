package core

// Action is the hardware side effect a step asks for
type Action uint8

const (
	ActionNone        Action = iota
	ActionWrite              // write the target pulse width
	ActionAttachWrite        // attach, then write unconditionally
	ActionDetach             // power the actuator down
)

// String returns the action name
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionWrite:
		return "write"
	case ActionAttachWrite:
		return "attach+write"
	case ActionDetach:
		return "detach"
	default:
		return "action(" + itoa(int(a)) + ")"
	}
}

// Timing holds the two delay parameters of the machine, in microseconds
type Timing struct {
	CheckIntervalUS uint32
	DozingTimeoutUS uint32
}

// Step is the outcome of evaluating one due state: the side effect to
// perform, then the state to arm and its delay.
type Step struct {
	Action Action
	Next   State
	Delay  uint32
}

// Evaluate computes what a due state does. breach is the threshold test
// on the current target and idleUS the time since the last physical
// write. It has no side effects.
func Evaluate(state State, breach bool, idleUS uint64, t Timing) Step {
	switch state {
	case MonitorAsleep:
		if breach {
			return Step{Action: ActionNone, Next: Wakeup, Delay: 0}
		}
		return Step{Action: ActionNone, Next: MonitorAsleep, Delay: t.CheckIntervalUS}

	case MonitorAwake:
		if breach {
			return Step{Action: ActionWrite, Next: MonitorAwake, Delay: t.CheckIntervalUS}
		}
		doze := uint64(t.DozingTimeoutUS)
		if idleUS >= doze {
			return Step{Action: ActionNone, Next: Sleep, Delay: 0}
		}
		// Keep watching for a breach until the doze deadline.
		delay := t.CheckIntervalUS
		if remaining := doze - idleUS; remaining < uint64(delay) {
			delay = uint32(remaining)
		}
		return Step{Action: ActionNone, Next: MonitorAwake, Delay: delay}

	case Wakeup:
		return Step{Action: ActionAttachWrite, Next: MonitorAwake, Delay: 0}

	case Sleep:
		return Step{Action: ActionDetach, Next: MonitorAsleep, Delay: 0}

	default:
		// Unknown states fall back to the power-down path.
		return Step{Action: ActionDetach, Next: MonitorAsleep, Delay: 0}
	}
}

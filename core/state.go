package core

// State identifies one node of the servo state machine
type State uint8

// Values match the identifiers used by earlier firmware so that status
// dumps stay comparable.
const (
	MonitorAwake  State = 1
	MonitorAsleep State = 2
	Sleep         State = 3
	Wakeup        State = 4
)

// String returns the state name
func (s State) String() string {
	switch s {
	case MonitorAwake:
		return "MonitorAwake"
	case MonitorAsleep:
		return "MonitorAsleep"
	case Sleep:
		return "Sleep"
	case Wakeup:
		return "Wakeup"
	default:
		return "State(" + itoa(int(s)) + ")"
	}
}

// Valid reports whether s is one of the four machine states
func (s State) Valid() bool {
	return s >= MonitorAwake && s <= Wakeup
}

// Monitoring reports whether s is an idle state that re-polls itself
func (s State) Monitoring() bool {
	return s == MonitorAwake || s == MonitorAsleep
}

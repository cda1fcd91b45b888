package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// TransitionEvent captures one state change for post-mortem analysis
type TransitionEvent struct {
	OID    uint8  // Servo object ID
	From   State  // State that was executed
	To     State  // State that was armed
	Action Action // Side effect performed
	Clock  uint64 // Time of the transition in microseconds
	Pulse  uint16 // Pulse width written, 0 if none
}

const (
	TransitionRingSize = 32 // Keep last 32 transitions for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	// Transition capture ring buffer (non-blocking, for post-mortem)
	transitionRing     [TransitionRingSize]TransitionEvent
	transitionRingHead uint8
	transitionCount    uint32

	// Async debug output channel
	debugChan chan string
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// InitAsyncDebug starts the async debug output goroutine
// Call this from main() after SetDebugWriter
func InitAsyncDebug() {
	debugChan = make(chan string, 16) // Buffer 16 messages
	go debugOutputWorker()
}

// debugOutputWorker runs in background, drains debug channel
func debugOutputWorker() {
	for msg := range debugChan {
		if debugPrintln != nil {
			debugPrintln(msg)
		}
	}
}

// DebugPrintln writes a debug message. When InitAsyncDebug was called the
// message is queued instead and dropped if the queue is full, so the
// control loop never waits on a slow UART.
func DebugPrintln(msg string) {
	if !debugEnabled || debugPrintln == nil {
		return
	}
	if debugChan != nil {
		select {
		case debugChan <- msg:
		default:
			// Channel full, drop message (non-blocking)
		}
		return
	}
	debugPrintln(msg)
}

// RecordTransition captures a transition in the ring buffer
func RecordTransition(evt TransitionEvent) {
	idx := transitionRingHead
	transitionRing[idx] = evt
	transitionRingHead = (idx + 1) % TransitionRingSize
	transitionCount++
}

// Transitions returns the recorded transitions, oldest first
func Transitions() []TransitionEvent {
	events := make([]TransitionEvent, 0, TransitionRingSize)
	start := transitionRingHead
	for i := uint8(0); i < TransitionRingSize; i++ {
		evt := transitionRing[(start+i)%TransitionRingSize]
		if evt.From == 0 {
			continue // Empty slot
		}
		events = append(events, evt)
	}
	return events
}

// DumpTransitionRing outputs the transition ring buffer (call on shutdown/error)
func DumpTransitionRing() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[SERVO] === Transition Ring Dump ===")
	debugPrintln("[SERVO] Total transitions: " + utoa(uint64(transitionCount)))

	for _, evt := range Transitions() {
		debugPrintln("[SERVO] oid=" + itoa(int(evt.OID)) +
			" " + evt.From.String() + "->" + evt.To.String() +
			" action=" + evt.Action.String() +
			" clock=" + utoa(evt.Clock) +
			" pulse=" + utoa(uint64(evt.Pulse)))
	}
	debugPrintln("[SERVO] === End Dump ===")
}

// ClearTransitionRing clears the transition buffer
func ClearTransitionRing() {
	for i := range transitionRing {
		transitionRing[i] = TransitionEvent{}
	}
	transitionRingHead = 0
	transitionCount = 0
}

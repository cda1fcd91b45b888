//go:build tinygo

package core

import "runtime/interrupt"

type irqState = interrupt.State

// disableInterrupts masks interrupts and returns the previous state
func disableInterrupts() irqState {
	return interrupt.Disable()
}

func restoreInterrupts(state irqState) {
	interrupt.Restore(state)
}

// Cortex-M0+ has no 64-bit atomics, so the counter lives inside the
// interrupt critical section.

func getSystemMicros() uint64 {
	state := disableInterrupts()
	us := systemMicros
	restoreInterrupts(state)
	return us
}

func setSystemMicros(us uint64) {
	state := disableInterrupts()
	systemMicros = us
	restoreInterrupts(state)
}

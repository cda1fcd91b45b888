//go:build !tinygo

package core

import "sync/atomic"

// Hosted builds have no interrupts to mask. Timer queues are only
// touched from the polling goroutine, so the critical section is empty.
type irqState struct{}

func disableInterrupts() irqState { return irqState{} }

func restoreInterrupts(irqState) {}

func getSystemMicros() uint64 {
	return atomic.LoadUint64(&systemMicros)
}

func setSystemMicros(us uint64) {
	atomic.StoreUint64(&systemMicros, us)
}

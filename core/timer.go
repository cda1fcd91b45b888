package core

var (
	systemMicros uint64
	bootTime     uint64 // Time at boot for uptime calculation
)

// GetTime returns the current system time in microseconds
func GetTime() uint64 {
	return getSystemMicros()
}

// SetTime sets the current system time (for testing/hardware integration)
func SetTime(us uint64) {
	setSystemMicros(us)
}

// GetUptime returns microseconds elapsed since TimerInit
func GetUptime() uint64 {
	return GetTime() - bootTime
}

// TimerInit records the boot time. Targets call it once the hardware
// timer has been read for the first time.
func TimerInit() {
	bootTime = GetTime()
}

// ProcessTimers dispatches every due timer of q against the system time
func ProcessTimers(q *TimerQueue) {
	q.Dispatch(GetTime())
}

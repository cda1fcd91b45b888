package core

// Timer represents a scheduled event
type Timer struct {
	WakeTime uint64 // Absolute due time in microseconds
	Handler  func(*Timer) uint8
	Next     *Timer

	queued bool
}

const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

// TimerQueue keeps timers sorted by WakeTime. Several triggers may share
// one queue; dispatching it on behalf of one of them fires every due timer.
type TimerQueue struct {
	head *Timer
}

// NewTimerQueue creates an empty queue
func NewTimerQueue() *TimerQueue {
	return &TimerQueue{}
}

// Schedule adds a timer to the queue. A timer that is already queued is
// moved to its new WakeTime.
func (q *TimerQueue) Schedule(t *Timer) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	if t.queued {
		q.unlink(t)
	}
	q.insert(t)
}

// Remove takes a timer off the queue. Returns false if it was not queued.
func (q *TimerQueue) Remove(t *Timer) bool {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	if !t.queued {
		return false
	}
	q.unlink(t)
	return true
}

// Len returns the number of queued timers
func (q *TimerQueue) Len() int {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	n := 0
	for t := q.head; t != nil; t = t.Next {
		n++
	}
	return n
}

// NextWake returns the WakeTime of the earliest queued timer
func (q *TimerQueue) NextWake() (uint64, bool) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	if q.head == nil {
		return 0, false
	}
	return q.head.WakeTime, true
}

// insert inserts a timer in sorted order by WakeTime.
// Timers with equal WakeTime keep their scheduling order.
func (q *TimerQueue) insert(t *Timer) {
	t.queued = true
	if q.head == nil || t.WakeTime < q.head.WakeTime {
		t.Next = q.head
		q.head = t
		return
	}

	current := q.head
	for current.Next != nil && current.Next.WakeTime <= t.WakeTime {
		current = current.Next
	}

	t.Next = current.Next
	current.Next = t
}

func (q *TimerQueue) unlink(t *Timer) {
	if q.head == t {
		q.head = t.Next
	} else {
		for current := q.head; current != nil; current = current.Next {
			if current.Next == t {
				current.Next = t.Next
				break
			}
		}
	}
	t.Next = nil
	t.queued = false
}

// Dispatch processes every timer with WakeTime <= now
func (q *TimerQueue) Dispatch(now uint64) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	for q.head != nil && q.head.WakeTime <= now {
		timer := q.head
		q.head = timer.Next
		timer.Next = nil // Clear Next pointer to avoid circular references
		timer.queued = false

		// Reschedule if requested
		if timer.Handler(timer) == SF_RESCHEDULE {
			q.insert(timer)
		}
	}
}

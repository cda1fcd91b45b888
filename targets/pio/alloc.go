package pio

import "errors"

const (
	// RP2040 has 2 PIO blocks (PIO0, PIO1) with 4 state machines each
	NumPIO          = 2
	NumStateMachine = 4
)

var ErrNoStateMachine = errors.New("no free PIO state machine")

// Slot identifies one PIO state machine
type Slot struct {
	PIO uint8
	SM  uint8
}

// Allocator hands out PIO state machines round-robin across both blocks
type Allocator struct {
	used    [NumPIO][NumStateMachine]bool
	nextPIO uint8
	nextSM  uint8
}

// Allocate reserves the next free state machine
func (a *Allocator) Allocate() (Slot, error) {
	for i := 0; i < NumPIO*NumStateMachine; i++ {
		slot := Slot{PIO: a.nextPIO, SM: a.nextSM}

		// Advance to next slot
		a.nextSM++
		if a.nextSM >= NumStateMachine {
			a.nextSM = 0
			a.nextPIO = (a.nextPIO + 1) % NumPIO
		}

		if !a.used[slot.PIO][slot.SM] {
			a.used[slot.PIO][slot.SM] = true
			return slot, nil
		}
	}
	return Slot{}, ErrNoStateMachine
}

// Release returns a state machine to the pool
func (a *Allocator) Release(s Slot) {
	if s.PIO < NumPIO && s.SM < NumStateMachine {
		a.used[s.PIO][s.SM] = false
	}
}

// Status returns the allocation map for debugging
func (a *Allocator) Status() [NumPIO][NumStateMachine]bool {
	return a.used
}

// Reset frees every state machine
func (a *Allocator) Reset() {
	*a = Allocator{}
}

// Servo frame timing at a 1MHz state machine clock, one cycle per microsecond
const (
	FramePeriodUS = 20000 // 50Hz servo frame

	// Cycles the program spends outside the two delay loops
	highOverhead = 2
	lowOverhead  = 6

	MinPulseUS = highOverhead
	MaxPulseUS = FramePeriodUS - lowOverhead - highOverhead
)

// PulseCommand builds the FIFO word for a pulse width: the high delay
// count in bits 0-15 and the low delay count in bits 16-31
func PulseCommand(pulseUS uint16) uint32 {
	us := uint32(pulseUS)
	if us < MinPulseUS {
		us = MinPulseUS
	}
	if us > MaxPulseUS {
		us = MaxPulseUS
	}
	high := us - highOverhead
	low := FramePeriodUS - lowOverhead - us
	return high | low<<16
}

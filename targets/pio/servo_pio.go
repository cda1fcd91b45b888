//go:build rp2040

package pio

// PIO servo pulse backend using tinygo-org/pio package
// Generates a continuous 50Hz frame without CPU involvement; the CPU only
// pushes a new command word when the pulse width changes.

import (
	"machine"

	"lazyservo/core"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// PIO program for servo frames
// Command word format:
//
//	Bits 0-15:  high delay count (pulse width - 2)
//	Bits 16-31: low delay count (frame - 6 - pulse width)
//
// Program flow:
//  1. Pull a new command, or reuse X when the FIFO is empty
//  2. Keep the command in X for the next frame
//  3. Drive the pin high for the high count
//  4. Drive the pin low for the low count
//
// buildServoProgram creates the servo PIO program using AssemblerV0
func buildServoProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Pull(false, false).Encode(),                     // 0: pull noblock (OSR = X if empty)
		asm.Mov(rp2pio.MovDestX, rp2pio.MovSrcOSR).Encode(), // 1: mov x, osr
		asm.Out(rp2pio.OutDestY, 16).Encode(),               // 2: out y, 16 (high count)
		asm.Set(rp2pio.SetDestPins, 1).Encode(),             // 3: set pins, 1
		// high_loop:
		asm.Jmp(4, rp2pio.JmpYNZeroDec).Encode(), // 4: jmp y--, 4
		asm.Set(rp2pio.SetDestPins, 0).Encode(),  // 5: set pins, 0
		asm.Out(rp2pio.OutDestY, 16).Encode(),    // 6: out y, 16 (low count)
		// low_loop:
		asm.Jmp(7, rp2pio.JmpYNZeroDec).Encode(), // 7: jmp y--, 7
		// .wrap
	}
}

const servoPIOOrigin = 0 // Load at offset 0 for correct jump addresses

var (
	allocator Allocator

	// Each PIO block holds one copy of the program
	programLoaded [NumPIO]bool
	programOffset [NumPIO]uint8
)

// ServoPIO implements core.PulseDriver on one PIO state machine
type ServoPIO struct {
	pio      *rp2pio.PIO
	sm       rp2pio.StateMachine
	slot     Slot
	pin      machine.Pin
	ready    bool // program loaded and state machine configured
	attached bool
	running  bool
}

// NewServoPIO allocates a state machine for one servo
func NewServoPIO() (*ServoPIO, error) {
	slot, err := allocator.Allocate()
	if err != nil {
		return nil, err
	}

	pioHW := rp2pio.PIO0
	if slot.PIO == 1 {
		pioHW = rp2pio.PIO1
	}

	return &ServoPIO{
		pio:  pioHW,
		sm:   pioHW.StateMachine(slot.SM),
		slot: slot,
	}, nil
}

// Attach claims the state machine and routes it to pin. The frame starts
// with the first WritePulseWidth so the pin never sees an empty command.
func (b *ServoPIO) Attach(pin core.PulsePin) error {
	if b.ready && b.pin == machine.Pin(pin) {
		b.attached = true
		return nil
	}
	b.pin = machine.Pin(pin)

	// Claim the state machine first
	b.sm.TryClaim()

	offset, err := b.loadProgram()
	if err != nil {
		return err
	}

	b.pin.Configure(machine.PinConfig{Mode: b.pio.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSetPins(b.pin, 1)

	// Shift right, autopull disabled (explicit PULL), 32-bit threshold
	cfg.SetOutShift(true, false, 32)
	cfg.SetWrap(offset+uint8(len(buildServoProgram()))-1, offset)

	// One cycle per microsecond
	cfg.SetClkDivIntFrac(uint16(machine.CPUFrequency()/1000000), 0)

	// Initialize state machine first, then set pin directions
	b.sm.Init(offset, cfg)
	b.sm.SetPindirsConsecutive(b.pin, 1, true)
	b.sm.SetPinsConsecutive(b.pin, 1, false)

	b.ready = true
	b.attached = true
	return nil
}

// loadProgram adds the program to this PIO block once
func (b *ServoPIO) loadProgram() (uint8, error) {
	if programLoaded[b.slot.PIO] {
		return programOffset[b.slot.PIO], nil
	}
	offset, err := b.pio.AddProgram(buildServoProgram(), servoPIOOrigin)
	if err != nil {
		return 0, err
	}
	programLoaded[b.slot.PIO] = true
	programOffset[b.slot.PIO] = offset
	return offset, nil
}

// Detach stops the frame and holds the pin low
func (b *ServoPIO) Detach() {
	b.attached = false
	if !b.ready {
		return
	}
	b.sm.SetEnabled(false)
	b.sm.ClearFIFOs()
	b.sm.Restart()
	b.sm.SetPinsConsecutive(b.pin, 1, false)
	b.running = false
}

// WritePulseWidth queues a new pulse width for the next frame. Writes
// while detached are ignored.
func (b *ServoPIO) WritePulseWidth(us uint16) {
	if !b.attached {
		return
	}

	// Only the newest width matters; never wait on a full FIFO
	if b.sm.IsTxFIFOFull() {
		b.sm.ClearFIFOs()
	}
	b.sm.TxPut(PulseCommand(us))

	if !b.running {
		b.sm.SetEnabled(true)
		b.running = true
	}
}

// Close detaches and returns the state machine to the pool
func (b *ServoPIO) Close() {
	b.Detach()
	allocator.Release(b.slot)
	b.ready = false
}

// Slot returns the state machine backing this servo
func (b *ServoPIO) Slot() Slot {
	return b.slot
}

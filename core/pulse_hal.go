package core

// PulsePin identifies a hardware pin driving a pulse-width actuator
type PulsePin uint32

// PulseDriver is the abstract servo pulse interface that core code uses.
// Platform-specific implementations handle actual hardware control.
type PulseDriver interface {
	// Attach starts the pulse train on pin. A failed attach leaves the
	// driver detached.
	Attach(pin PulsePin) error

	// Detach stops the pulse train and releases the pin
	Detach()

	// WritePulseWidth sets the pulse high time in microseconds.
	// Writes while detached are ignored.
	WritePulseWidth(us uint16)
}

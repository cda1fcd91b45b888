// Package sim runs LazyServo controllers against a recording driver on
// a manual clock
package sim

import (
	"lazyservo/core"
)

// Write is one pulse width handed to the driver
type Write struct {
	AtUS     uint64
	Pulse    uint16
	Attached bool // false means the write had no effect
}

// Driver implements core.PulseDriver and records every call
type Driver struct {
	clock core.Clock

	attached  bool
	pin       core.PulsePin
	pulse     uint16
	AttachErr error

	Writes   []Write
	Attaches int
	Detaches int
}

// NewDriver creates a detached driver stamping writes with clock
func NewDriver(clock core.Clock) *Driver {
	return &Driver{clock: clock}
}

func (d *Driver) Attach(pin core.PulsePin) error {
	d.Attaches++
	if d.AttachErr != nil {
		return d.AttachErr
	}
	d.attached = true
	d.pin = pin
	return nil
}

func (d *Driver) Detach() {
	d.Detaches++
	d.attached = false
}

func (d *Driver) WritePulseWidth(us uint16) {
	d.Writes = append(d.Writes, Write{AtUS: d.clock.Micros(), Pulse: us, Attached: d.attached})
	if d.attached {
		d.pulse = us
	}
}

// Attached reports whether the driver is powering the servo
func (d *Driver) Attached() bool {
	return d.attached
}

// Pin returns the pin of the last successful attach
func (d *Driver) Pin() core.PulsePin {
	return d.pin
}

// Output returns the pulse width on the wire, 0 while detached
func (d *Driver) Output() uint16 {
	if !d.attached {
		return 0
	}
	return d.pulse
}

// Effective returns the writes that reached an attached servo
func (d *Driver) Effective() []Write {
	var out []Write
	for _, w := range d.Writes {
		if w.Attached {
			out = append(out, w)
		}
	}
	return out
}

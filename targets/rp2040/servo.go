//go:build rp2040

package main

import (
	"errors"
	"machine"

	"tinygo.org/x/drivers/servo"

	"lazyservo/core"
	"lazyservo/targets/pio"
)

// pulseBackend selects the hardware that generates the servo frame
type pulseBackend uint8

const (
	backendPWM pulseBackend = iota // hardware PWM slice
	backendPIO                     // PIO state machine
)

// servoSpec is one entry of the compile-time servo table
type servoSpec struct {
	oid     uint8
	pin     machine.Pin
	backend pulseBackend
}

// servoTable lists the servos this firmware drives. Pins sharing a PWM
// slice (GPIO 2n and 2n+1) share its 50Hz period.
var servoTable = []servoSpec{
	{oid: 0, pin: machine.GPIO16, backend: backendPWM},
	{oid: 1, pin: machine.GPIO18, backend: backendPWM},
	{oid: 2, pin: machine.GPIO20, backend: backendPIO},
	{oid: 3, pin: machine.GPIO21, backend: backendPIO},
}

// newPulseDriver creates the driver for one table entry
func newPulseDriver(spec servoSpec) (core.PulseDriver, error) {
	switch spec.backend {
	case backendPIO:
		return pio.NewServoPIO()
	default:
		return &pwmServo{}, nil
	}
}

// pwmPeripheral is an interface for PWM hardware peripherals
// This abstracts over TinyGo's unexported *pwmGroup type
type pwmPeripheral interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
	SetPeriod(period uint64) error
}

var errNoPWM = errors.New("pin has no PWM slice")

// pwmServo implements core.PulseDriver with the tinygo servo driver on a
// hardware PWM slice. Detached means a 0us pulse: the line stays low and
// the servo stops holding.
type pwmServo struct {
	dev      servo.Servo
	pin      machine.Pin
	ready    bool
	attached bool
}

func (d *pwmServo) Attach(pin core.PulsePin) error {
	if d.ready && d.pin == machine.Pin(pin) {
		d.attached = true
		return nil
	}

	pwm := pwmForPin(machine.Pin(pin))
	if pwm == nil {
		return errNoPWM
	}
	dev, err := servo.New(pwm, machine.Pin(pin))
	if err != nil {
		return err
	}

	d.dev = dev
	d.pin = machine.Pin(pin)
	d.ready = true
	d.attached = true
	return nil
}

func (d *pwmServo) Detach() {
	if d.ready {
		d.dev.SetMicroseconds(0)
	}
	d.attached = false
}

func (d *pwmServo) WritePulseWidth(us uint16) {
	if !d.attached {
		return
	}
	if us > 0x7FFF {
		us = 0x7FFF
	}
	d.dev.SetMicroseconds(int16(us))
}

// pwmForPin returns the PWM slice for a GPIO pin
// RP2040: GPIO pin N maps to slice (N >> 1) & 0x7
func pwmForPin(pin machine.Pin) pwmPeripheral {
	if pin > machine.GPIO29 {
		return nil
	}
	switch (uint8(pin) >> 1) & 0x7 {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}

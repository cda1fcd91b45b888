// Package config loads host-side servo profiles
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"lazyservo/core"
	"lazyservo/host/serial"
)

const DefaultDevice = "/dev/ttyACM0"

var (
	ErrDuplicateOID = errors.New("duplicate servo oid")
	ErrPulseBounds  = errors.New("min_pulse_us must not exceed max_pulse_us")
	ErrOutOfRange   = errors.New("value outside [0, 1]")
)

// Profile describes one board and the servos wired to it
type Profile struct {
	Serial serial.Config `yaml:"serial"`
	Servos []Servo       `yaml:"servos"`
}

// Servo holds the controller parameters of one servo
type Servo struct {
	OID             uint8   `yaml:"oid"`
	Name            string  `yaml:"name,omitempty"`
	Pin             uint32  `yaml:"pin"`
	Threshold       float32 `yaml:"threshold"`
	CheckIntervalUS uint32  `yaml:"check_interval_us"`
	DozingTimeoutUS uint32  `yaml:"dozing_timeout_us"`
	MinPulseUS      uint16  `yaml:"min_pulse_us"`
	MaxPulseUS      uint16  `yaml:"max_pulse_us"`
	Initial         float32 `yaml:"initial"`
}

// DefaultServo returns a servo entry carrying the controller defaults
func DefaultServo() Servo {
	c := core.DefaultConfig()
	return Servo{
		Threshold:       c.Threshold,
		CheckIntervalUS: c.CheckIntervalUS,
		DozingTimeoutUS: c.DozingTimeoutUS,
		MinPulseUS:      c.MinPulseUS,
		MaxPulseUS:      c.MaxPulseUS,
		Initial:         c.Initial,
	}
}

// UnmarshalYAML fills keys missing from the document with defaults.
// Keys present with a zero value stay zero.
func (s *Servo) UnmarshalYAML(node *yaml.Node) error {
	type plain Servo
	p := plain(DefaultServo())
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = Servo(p)
	return nil
}

// CoreConfig converts the entry to controller parameters
func (s Servo) CoreConfig() core.Config {
	return core.Config{
		OID:             s.OID,
		Threshold:       s.Threshold,
		CheckIntervalUS: s.CheckIntervalUS,
		DozingTimeoutUS: s.DozingTimeoutUS,
		MinPulseUS:      s.MinPulseUS,
		MaxPulseUS:      s.MaxPulseUS,
		Initial:         s.Initial,
	}
}

// Default returns a profile with one servo on oid 0, pin 0
func Default() *Profile {
	return &Profile{
		Serial: *serial.DefaultConfig(DefaultDevice),
		Servos: []Servo{DefaultServo()},
	}
}

// Parse decodes a YAML profile on top of the defaults
func Parse(data []byte) (*Profile, error) {
	p := &Profile{Serial: *serial.DefaultConfig(DefaultDevice)}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	return p, nil
}

// Load reads and parses a profile file
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	return Parse(data)
}

// Save writes the profile as YAML
func Save(path string, p *Profile) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Servo returns the entry for oid
func (p *Profile) Servo(oid uint8) (Servo, bool) {
	for _, s := range p.Servos {
		if s.OID == oid {
			return s, true
		}
	}
	return Servo{}, false
}

// Validate reports every problem in the profile. The controller accepts
// any parameters; this catches the ones that are certainly mistakes.
func (p *Profile) Validate() error {
	var errs []error
	seen := make(map[uint8]bool)

	for i, s := range p.Servos {
		if seen[s.OID] {
			errs = append(errs, fmt.Errorf("servos[%d]: %w: %d", i, ErrDuplicateOID, s.OID))
		}
		seen[s.OID] = true

		if s.MinPulseUS > s.MaxPulseUS {
			errs = append(errs, fmt.Errorf("servos[%d]: %w (%d > %d)", i, ErrPulseBounds, s.MinPulseUS, s.MaxPulseUS))
		}
		if s.Threshold < 0 || s.Threshold > 1 {
			errs = append(errs, fmt.Errorf("servos[%d]: threshold: %w", i, ErrOutOfRange))
		}
		if s.Initial < 0 || s.Initial > 1 {
			errs = append(errs, fmt.Errorf("servos[%d]: initial: %w", i, ErrOutOfRange))
		}
	}

	return errors.Join(errs...)
}

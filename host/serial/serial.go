// Package serial opens the USB CDC port of a servo controller board
package serial

import (
	"errors"
	"fmt"
	"io"
	"time"
)

const (
	DefaultBaud          = 115200
	DefaultReadTimeoutMS = 100
)

var (
	ErrNoConfig  = errors.New("serial config cannot be nil")
	ErrNoDevice  = errors.New("serial device not set")
	ErrBadConfig = errors.New("invalid serial config")
)

// Port is an open link to the board. Tests substitute an in-memory pipe.
type Port interface {
	io.ReadWriteCloser

	// Flush discards unread input and unsent output
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string `yaml:"device"`

	// Baud rate (USB CDC ignores this)
	Baud int `yaml:"baud"`

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int `yaml:"read_timeout_ms"`
}

// DefaultConfig returns the default configuration for a servo controller board
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        DefaultBaud,
		ReadTimeout: DefaultReadTimeoutMS,
	}
}

// Validate checks the config before a port is opened
func (c *Config) Validate() error {
	if c == nil {
		return ErrNoConfig
	}
	if c.Device == "" {
		return ErrNoDevice
	}
	if c.Baud <= 0 {
		return fmt.Errorf("%w: baud %d", ErrBadConfig, c.Baud)
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("%w: read timeout %dms", ErrBadConfig, c.ReadTimeout)
	}
	return nil
}

// Timeout returns the read timeout as a duration
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.ReadTimeout) * time.Millisecond
}

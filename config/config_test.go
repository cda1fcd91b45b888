package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lazyservo/core"
)

func TestParseDefaults(t *testing.T) {
	p, err := Parse([]byte(`
servos:
  - oid: 1
    pin: 15
  - oid: 2
    pin: 16
    threshold: 0
    dozing_timeout_us: 500000
`))
	require.NoError(t, err)

	assert.Equal(t, DefaultDevice, p.Serial.Device)
	assert.Equal(t, 115200, p.Serial.Baud)
	require.Len(t, p.Servos, 2)

	first := p.Servos[0]
	want := DefaultServo()
	want.OID = 1
	want.Pin = 15
	assert.Equal(t, want, first)

	second := p.Servos[1]
	assert.Zero(t, second.Threshold, "explicit zero must be kept")
	assert.Equal(t, uint32(500000), second.DozingTimeoutUS)
	assert.Equal(t, uint32(100000), second.CheckIntervalUS)
}

func TestParseSerial(t *testing.T) {
	p, err := Parse([]byte(`
serial:
  device: /dev/ttyUSB1
  baud: 250000
`))
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB1", p.Serial.Device)
	assert.Equal(t, 250000, p.Serial.Baud)
	assert.Equal(t, 100, p.Serial.ReadTimeout)
	assert.Empty(t, p.Servos)
}

func TestParseError(t *testing.T) {
	_, err := Parse([]byte("servos: {oid: ["))
	assert.Error(t, err)

	_, err = Parse([]byte("servos:\n  - oid: 300\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		servos []Servo
		errs   []error
	}{
		{
			name:   "default",
			servos: []Servo{DefaultServo()},
		},
		{
			name:   "duplicate oid",
			servos: []Servo{{OID: 1, MaxPulseUS: 1}, {OID: 1, MaxPulseUS: 1}},
			errs:   []error{ErrDuplicateOID},
		},
		{
			name:   "inverted bounds",
			servos: []Servo{{MinPulseUS: 2500, MaxPulseUS: 500}},
			errs:   []error{ErrPulseBounds},
		},
		{
			name:   "everything wrong",
			servos: []Servo{{Threshold: 2}, {Initial: -1, MinPulseUS: 3}},
			errs:   []error{ErrDuplicateOID, ErrPulseBounds, ErrOutOfRange},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := &Profile{Servos: tc.servos}
			err := p.Validate()
			if len(tc.errs) == 0 {
				assert.NoError(t, err)
				return
			}
			for _, want := range tc.errs {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")

	p := Default()
	p.Servos[0].Pin = 22
	p.Servos = append(p.Servos, Servo{OID: 4, Pin: 3, MinPulseUS: 1000, MaxPulseUS: 2000, Initial: 0})
	require.NoError(t, Save(path, p))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, p, loaded)

	s, ok := loaded.Servo(4)
	require.True(t, ok)
	assert.Equal(t, core.Config{OID: 4, MinPulseUS: 1000, MaxPulseUS: 2000}, s.CoreConfig())

	_, ok = loaded.Servo(9)
	assert.False(t, ok)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

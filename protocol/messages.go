package protocol

import (
	"errors"
	"fmt"
)

// Command and response identifiers
const (
	CmdServoSet       = 1 // oid=%c value_ppm=%u
	CmdServoSetNow    = 2 // oid=%c value_ppm=%u
	CmdServoSetLimits = 3 // oid=%c min_us=%hu max_us=%hu
	CmdServoQuery     = 4 // oid=%c

	RespServoStatus = 64 // oid state attached target_ppm written_ppm pulse_us writes wakeups sleeps faults
	RespServoError  = 65 // oid=%c code=%c
)

// Error codes carried by RespServoError
const (
	ErrCodeUnknownOID = 1
	ErrCodeBadLimits  = 2
)

var (
	ErrUnknownCommand  = errors.New("unknown command")
	ErrUnknownResponse = errors.New("unknown response")
)

// PPM is the scale used to carry normalized values as integers
const PPM = 1000000

// ToPPM converts a normalized value, clamped to [0, 1], to parts per million
func ToPPM(v float32) uint32 {
	if v != v || v <= 0 {
		return 0
	}
	if v >= 1 {
		return PPM
	}
	return uint32(float64(v)*PPM + 0.5)
}

// FromPPM converts parts per million back to a normalized value
func FromPPM(ppm int32) float32 {
	return float32(float64(ppm) / PPM)
}

// Status is the firmware's report for one servo
type Status struct {
	OID      uint8
	State    uint8
	Attached bool
	Target   float32
	Written  float32 // -1 before the first write
	PulseUS  uint16
	Writes   uint32
	Wakeups  uint32
	Sleeps   uint32
	Faults   uint32
}

// ErrorReport tells the host a command could not be applied
type ErrorReport struct {
	OID  uint8
	Code uint8
}

// Handler receives decoded host commands on the firmware side
type Handler interface {
	HandleSet(oid uint8, value float32, now bool) error
	HandleSetLimits(oid uint8, minUS, maxUS uint16) error
	HandleQuery(oid uint8) error
}

// ResponseHandler receives decoded firmware responses on the host side
type ResponseHandler interface {
	HandleStatus(s Status)
	HandleError(e ErrorReport)
}

// EncodeSet encodes servo_set or servo_set_now
func EncodeSet(output OutputBuffer, oid uint8, value float32, now bool) {
	cmd := uint32(CmdServoSet)
	if now {
		cmd = CmdServoSetNow
	}
	EncodeVLQUint(output, cmd)
	EncodeVLQUint(output, uint32(oid))
	EncodeVLQUint(output, ToPPM(value))
}

// EncodeSetLimits encodes servo_set_limits
func EncodeSetLimits(output OutputBuffer, oid uint8, minUS, maxUS uint16) {
	EncodeVLQUint(output, CmdServoSetLimits)
	EncodeVLQUint(output, uint32(oid))
	EncodeVLQUint(output, uint32(minUS))
	EncodeVLQUint(output, uint32(maxUS))
}

// EncodeQuery encodes servo_query
func EncodeQuery(output OutputBuffer, oid uint8) {
	EncodeVLQUint(output, CmdServoQuery)
	EncodeVLQUint(output, uint32(oid))
}

// EncodeStatus encodes a servo_status response
func EncodeStatus(output OutputBuffer, s Status) {
	attached := uint32(0)
	if s.Attached {
		attached = 1
	}
	written := int32(-PPM)
	if s.Written >= 0 {
		written = int32(ToPPM(s.Written))
	}

	EncodeVLQUint(output, RespServoStatus)
	EncodeVLQUint(output, uint32(s.OID))
	EncodeVLQUint(output, uint32(s.State))
	EncodeVLQUint(output, attached)
	EncodeVLQUint(output, ToPPM(s.Target))
	EncodeVLQInt(output, written)
	EncodeVLQUint(output, uint32(s.PulseUS))
	EncodeVLQUint(output, s.Writes)
	EncodeVLQUint(output, s.Wakeups)
	EncodeVLQUint(output, s.Sleeps)
	EncodeVLQUint(output, s.Faults)
}

// EncodeError encodes a servo_error response
func EncodeError(output OutputBuffer, e ErrorReport) {
	EncodeVLQUint(output, RespServoError)
	EncodeVLQUint(output, uint32(e.OID))
	EncodeVLQUint(output, uint32(e.Code))
}

// decodeArgs decodes len(args) unsigned integers in order
func decodeArgs(data *[]byte, args ...*uint32) error {
	for _, arg := range args {
		v, err := DecodeVLQUint(data)
		if err != nil {
			return err
		}
		*arg = v
	}
	return nil
}

// Dispatch decodes every command in payload and hands it to h. It stops
// at the first malformed or unknown command or handler error.
func Dispatch(payload []byte, h Handler) error {
	data := payload
	for len(data) > 0 {
		cmdID, err := DecodeVLQUint(&data)
		if err != nil {
			return fmt.Errorf("decode command id: %w", err)
		}

		switch cmdID {
		case CmdServoSet, CmdServoSetNow:
			var oid, ppm uint32
			if err := decodeArgs(&data, &oid, &ppm); err != nil {
				return fmt.Errorf("decode servo_set: %w", err)
			}
			err = h.HandleSet(uint8(oid), FromPPM(int32(ppm)), cmdID == CmdServoSetNow)

		case CmdServoSetLimits:
			var oid, minUS, maxUS uint32
			if err := decodeArgs(&data, &oid, &minUS, &maxUS); err != nil {
				return fmt.Errorf("decode servo_set_limits: %w", err)
			}
			err = h.HandleSetLimits(uint8(oid), uint16(minUS), uint16(maxUS))

		case CmdServoQuery:
			var oid uint32
			if err := decodeArgs(&data, &oid); err != nil {
				return fmt.Errorf("decode servo_query: %w", err)
			}
			err = h.HandleQuery(uint8(oid))

		default:
			return fmt.Errorf("%w: %d", ErrUnknownCommand, cmdID)
		}

		if err != nil {
			return err
		}
	}
	return nil
}

// DispatchResponses decodes every response in payload and hands it to h
func DispatchResponses(payload []byte, h ResponseHandler) error {
	data := payload
	for len(data) > 0 {
		respID, err := DecodeVLQUint(&data)
		if err != nil {
			return fmt.Errorf("decode response id: %w", err)
		}

		switch respID {
		case RespServoStatus:
			var oid, state, attached, target uint32
			if err := decodeArgs(&data, &oid, &state, &attached, &target); err != nil {
				return fmt.Errorf("decode servo_status: %w", err)
			}
			written, err := DecodeVLQInt(&data)
			if err != nil {
				return fmt.Errorf("decode servo_status: %w", err)
			}
			var pulse, writes, wakeups, sleeps, faults uint32
			if err := decodeArgs(&data, &pulse, &writes, &wakeups, &sleeps, &faults); err != nil {
				return fmt.Errorf("decode servo_status: %w", err)
			}
			h.HandleStatus(Status{
				OID:      uint8(oid),
				State:    uint8(state),
				Attached: attached != 0,
				Target:   FromPPM(int32(target)),
				Written:  FromPPM(written),
				PulseUS:  uint16(pulse),
				Writes:   writes,
				Wakeups:  wakeups,
				Sleeps:   sleeps,
				Faults:   faults,
			})

		case RespServoError:
			var oid, code uint32
			if err := decodeArgs(&data, &oid, &code); err != nil {
				return fmt.Errorf("decode servo_error: %w", err)
			}
			h.HandleError(ErrorReport{OID: uint8(oid), Code: uint8(code)})

		default:
			return fmt.Errorf("%w: %d", ErrUnknownResponse, respID)
		}
	}
	return nil
}

// Package protocol implements the framed host <-> firmware servo protocol
package protocol

// Version represents the protocol version reported by the firmware
const Version = "0.1.0"

// Frame layout: len seq payload crc_hi crc_lo sync
const (
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 64
	MessagePayloadMax  = MessageLengthMax - MessageLengthMin
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageValueSync   = 0x7E

	// Sequence byte: low nibble counts, high nibble marks the direction
	MessageSeqMask  = 0x0F
	MessageDestMCU  = 0x10 // Host -> firmware
	MessageDestHost = 0x20 // Firmware -> host
)

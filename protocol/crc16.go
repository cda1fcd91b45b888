package protocol

// CRC16 is the CRC-16/MCRF4XX checksum carried in every frame trailer
// (reflected CCITT polynomial, initial value 0xFFFF, no final xor)
func CRC16(data []byte) uint16 {
	return crc16Update(0xFFFF, data)
}

// crc16Update folds data into a running checksum
func crc16Update(crc uint16, data []byte) uint16 {
	for _, b := range data {
		b ^= uint8(crc)
		b ^= b << 4
		w := uint16(b)
		crc = (w<<8 | crc>>8) ^ (w >> 4) ^ (w << 3)
	}
	return crc
}

// appendTrailer appends the checksum of msg and the sync byte
func appendTrailer(msg []byte) []byte {
	crc := CRC16(msg)
	return append(msg, uint8(crc>>8), uint8(crc), MessageValueSync)
}

// trailerValid reports whether the checksum stored in frame's trailer
// matches its header and payload
func trailerValid(frame []byte) bool {
	body := len(frame) - MessageTrailerSize
	want := uint16(frame[body])<<8 | uint16(frame[body+1])
	return crc16Update(0xFFFF, frame[:body]) == want
}

package core

// itoa converts an integer to a string without using fmt package
// This is a lightweight alternative for embedded systems
func itoa(n int) string {
	if n < 0 {
		return "-" + utoa(uint64(-n))
	}
	return utoa(uint64(n))
}

// utoa converts an unsigned integer to a string
func utoa(n uint64) string {
	if n == 0 {
		return "0"
	}

	var buf [20]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}

	return string(buf[pos:])
}

// ftoa formats a float with three decimals, e.g. 0.5 -> "0.500".
// NaN and infinities are printed as "nan".
func ftoa(f float32) string {
	if f != f || f > 1e9 || f < -1e9 {
		return "nan"
	}

	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}

	milli := uint64(f*1000 + 0.5)
	frac := milli % 1000
	s := utoa(frac)
	for len(s) < 3 {
		s = "0" + s
	}
	return sign + utoa(milli/1000) + "." + s
}

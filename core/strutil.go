package core

// utoa converts an unsigned integer to a string without using fmt.
// Keeps the core free of fmt so firmware images stay small.
func utoa(n uint32) string {
	if n == 0 {
		return "0"
	}

	var buf [10]byte // max uint32 is 10 digits
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[pos:])
}

// pinName formats a pin for diagnostics, e.g. "gpio13"
func pinName(pin GPIOPin) string {
	return "gpio" + utoa(uint32(pin))
}

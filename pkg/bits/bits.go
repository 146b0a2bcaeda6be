// Package bits addresses the bits of a byte the way ISO/IEC 7816 tables
// number them: b8 is the most significant bit, b1 the least.
package bits

// Bit returns the mask of bit n (1 to 8), or 0 when n is out of range.
func Bit(n uint) byte {
	if n < 1 || n > 8 {
		return 0
	}
	return 1 << (n - 1)
}

// IsSet reports whether bit n of b is 1.
func IsSet(b byte, n uint) bool {
	return b&Bit(n) != 0
}

// Set returns b with bit n set to 1.
func Set(b byte, n uint) byte {
	return b | Bit(n)
}

// Clear returns b with bit n set to 0.
func Clear(b byte, n uint) byte {
	return b &^ Bit(n)
}

func rangeMask(high, low uint) (byte, bool) {
	if high < low || high > 8 || low < 1 {
		return 0, false
	}
	return byte((1<<(high-low+1))-1) << (low - 1), true
}

// GetRange extracts bits high..low of b, right-aligned.
// GetRange(0b0000_1100, 4, 3) is 0b11.
func GetRange(b byte, high, low uint) byte {
	mask, ok := rangeMask(high, low)
	if !ok {
		return 0
	}
	return (b & mask) >> (low - 1)
}

// SetRange returns b with bits high..low replaced by v. Bits of v that do
// not fit in the range are dropped.
func SetRange(b byte, high, low uint, v byte) byte {
	mask, ok := rangeMask(high, low)
	if !ok {
		return b
	}
	return b&^mask | (v<<(low-1))&mask
}

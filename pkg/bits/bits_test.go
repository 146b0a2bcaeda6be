package bits

import "testing"

func TestBit(t *testing.T) {
	tests := []struct {
		n        uint
		expected byte
	}{
		{1, 0x01}, {5, 0x10}, {8, 0x80},
		{0, 0x00}, {9, 0x00}, // out of range
	}

	for _, tt := range tests {
		if res := Bit(tt.n); res != tt.expected {
			t.Errorf("Bit(%d) = 0x%02X; want 0x%02X", tt.n, res, tt.expected)
		}
	}
}

func TestSetClear(t *testing.T) {
	val := byte(0b1010_0101)
	if !IsSet(val, 8) || IsSet(val, 7) || !IsSet(val, 1) {
		t.Errorf("IsSet mismatch on 0b%08b", val)
	}

	if got := Set(0, 5); got != 0b0001_0000 {
		t.Errorf("Set(0, 5) = 0b%08b", got)
	}
	if got := Clear(val, 8); got != 0b0010_0101 {
		t.Errorf("Clear(0b%08b, 8) = 0b%08b", val, got)
	}
	if got := Clear(val, 9); got != val {
		t.Errorf("Clear out of range changed the byte: 0b%08b", got)
	}
}

func TestGetRange(t *testing.T) {
	tests := []struct {
		name     string
		input    byte
		high     uint
		low      uint
		expected byte
	}{
		{"Bits 4-3 of 0x0C", 0b0000_1100, 4, 3, 3},
		{"Bits 2-1 of 0x03", 0b0000_0011, 2, 1, 3},
		{"Bits 4-1 of 0x0F", 0b0000_1111, 4, 1, 15},
		{"Bits 8-7 of 0x40", 0b0100_0000, 8, 7, 1},
		{"Full Byte", 0xAA, 8, 1, 0xAA},
		{"Inverted range", 0xFF, 1, 4, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if res := GetRange(tt.input, tt.high, tt.low); res != tt.expected {
				t.Errorf("GetRange(0x%02X, %d, %d) = %d; want %d", tt.input, tt.high, tt.low, res, tt.expected)
			}
		})
	}
}

func TestSetRange(t *testing.T) {
	tests := []struct {
		name      string
		input     byte
		high, low uint
		v         byte
		expected  byte
	}{
		{"SFI in bits 8-4", 0b0000_0100, 8, 4, 1, 0b0000_1100},
		{"Replace bits 4-3", 0b1111_1111, 4, 3, 0b01, 0b1111_0111},
		{"Overflow dropped", 0x00, 2, 1, 0xFF, 0b0000_0011},
		{"Full byte", 0x12, 8, 1, 0xAB, 0xAB},
		{"Invalid range", 0x12, 9, 1, 0xAB, 0x12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SetRange(tt.input, tt.high, tt.low, tt.v)
			if got != tt.expected {
				t.Errorf("SetRange(0b%08b, %d, %d, %d) = 0b%08b; want 0b%08b", tt.input, tt.high, tt.low, tt.v, got, tt.expected)
			}
			if tt.high <= 8 && GetRange(got, tt.high, tt.low) != GetRange(tt.v<<(tt.low-1), tt.high, tt.low) {
				t.Errorf("GetRange does not read back the value set")
			}
		})
	}
}

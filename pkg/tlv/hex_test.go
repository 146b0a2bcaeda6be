package tlv

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHex(t *testing.T) {
	tests := []struct {
		name   string
		inputs []string
		want   []byte
	}{
		{"Fields joined", []string{"00 A4", " 04 00 ", "0E"}, []byte{0x00, 0xA4, 0x04, 0x00, 0x0E}},
		{"Mixed case", []string{"ca", "FE"}, []byte{0xCA, 0xFE}},
		{"Underscore separators", []string{"3F_00"}, []byte{0x3F, 0x00}},
		{"Nibbles split across parts", []string{"0", "1"}, []byte{0x01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Hex(tt.inputs...)); diff != "" {
				t.Errorf("Hex() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHex_Panics(t *testing.T) {
	for _, in := range []string{"ZZ", "123"} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Hex(%q) did not panic", in)
				}
			}()
			Hex(in)
		}()
	}
}

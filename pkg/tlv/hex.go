package tlv

import "github.com/gregLibert/apdu/pkg/octet"

// Hex constructs a byte slice from a series of hex strings, for fixtures
// written as "00 A4 04 00". It panics on malformed input.
func Hex(parts ...string) []byte {
	return octet.MustHex(parts...).Bytes()
}

// Package octet provides Buffer, an immutable byte sequence with a
// hexadecimal text form. It is the value type carried by every APDU field.
package octet

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEncoding reports malformed hexadecimal input.
	ErrEncoding = errors.New("octet: encoding error")
	// ErrRange reports an index or slice bound outside the buffer.
	ErrRange = errors.New("octet: out of range")
)

// Buffer is an immutable, length-exact sequence of bytes.
// The zero value is the empty buffer. Buffers are comparable with ==.
type Buffer struct {
	s string
}

// Empty is the zero-length buffer.
var Empty = Buffer{}

// FromBytes copies b into a new Buffer.
func FromBytes(b []byte) Buffer {
	return Buffer{s: string(b)}
}

// Of builds a Buffer from individual byte values.
func Of(b ...byte) Buffer {
	return Buffer{s: string(b)}
}

// FromUint encodes v big-endian on the minimal number of bytes (at least one).
func FromUint(v uint64) Buffer {
	var b []byte
	for {
		b = append([]byte{byte(v)}, b...)
		v >>= 8
		if v == 0 {
			break
		}
	}
	return Buffer{s: string(b)}
}

// FromHex decodes a hexadecimal string. Digits are case-insensitive and
// spaces or underscores may be used as separators ("00 A4_04 00").
func FromHex(s string) (Buffer, error) {
	clean := strings.Map(func(r rune) rune {
		if r == ' ' || r == '_' {
			return -1
		}
		return r
	}, s)

	for i, r := range clean {
		if !isHexDigit(r) {
			return Empty, fmt.Errorf("%w: invalid character %q at offset %d", ErrEncoding, r, i)
		}
	}
	if len(clean)%2 != 0 {
		return Empty, fmt.Errorf("%w: odd number of nibbles (%d)", ErrEncoding, len(clean))
	}

	b, err := hex.DecodeString(clean)
	if err != nil {
		return Empty, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return Buffer{s: string(b)}, nil
}

// MustHex is like FromHex but panics on malformed input.
// It is meant for constants and tests.
func MustHex(parts ...string) Buffer {
	b, err := FromHex(strings.Join(parts, ""))
	if err != nil {
		panic(err)
	}
	return b
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// Len returns the number of bytes in the buffer.
func (b Buffer) Len() int {
	return len(b.s)
}

// IsEmpty reports whether the buffer holds no bytes.
func (b Buffer) IsEmpty() bool {
	return len(b.s) == 0
}

// Bytes returns a copy of the buffer content.
func (b Buffer) Bytes() []byte {
	return []byte(b.s)
}

// At returns the byte at index i.
func (b Buffer) At(i int) (byte, error) {
	if i < 0 || i >= len(b.s) {
		return 0, fmt.Errorf("%w: index %d, length %d", ErrRange, i, len(b.s))
	}
	return b.s[i], nil
}

// Slice returns the bytes in [from, to) as a new Buffer.
func (b Buffer) Slice(from, to int) (Buffer, error) {
	if from < 0 || to < from || to > len(b.s) {
		return Empty, fmt.Errorf("%w: [%d:%d], length %d", ErrRange, from, to, len(b.s))
	}
	return Buffer{s: b.s[from:to]}, nil
}

// Concat returns a new Buffer holding b followed by every buffer in others.
func (b Buffer) Concat(others ...Buffer) Buffer {
	var sb strings.Builder
	n := len(b.s)
	for _, o := range others {
		n += len(o.s)
	}
	sb.Grow(n)
	sb.WriteString(b.s)
	for _, o := range others {
		sb.WriteString(o.s)
	}
	return Buffer{s: sb.String()}
}

// Uint interprets the buffer as a big-endian unsigned integer.
// Buffers longer than 8 bytes do not fit and are rejected.
func (b Buffer) Uint() (uint64, error) {
	if len(b.s) > 8 {
		return 0, fmt.Errorf("%w: %d bytes do not fit in 64 bits", ErrRange, len(b.s))
	}
	var v uint64
	for i := 0; i < len(b.s); i++ {
		v = v<<8 | uint64(b.s[i])
	}
	return v, nil
}

// Equal reports whether both buffers hold the same bytes.
func (b Buffer) Equal(o Buffer) bool {
	return b.s == o.s
}

// Compare orders buffers byte-wise, like bytes.Compare.
func (b Buffer) Compare(o Buffer) int {
	return bytes.Compare([]byte(b.s), []byte(o.s))
}

// String returns the upper-case hexadecimal form, without separators.
func (b Buffer) String() string {
	return strings.ToUpper(hex.EncodeToString([]byte(b.s)))
}

// MarshalText implements encoding.TextMarshaler.
func (b Buffer) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Buffer) UnmarshalText(text []byte) error {
	v, err := FromHex(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

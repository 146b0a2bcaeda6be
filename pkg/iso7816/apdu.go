package iso7816

import (
	"fmt"

	"github.com/gregLibert/apdu/pkg/octet"
)

// COMMAND APDU (C-APDU), ISO/IEC 7816-3 section 12.1 and 7816-4 section 5.1.
//
//	Case 1   CLA INS P1 P2
//	Case 2S  CLA INS P1 P2 Le
//	Case 2E  CLA INS P1 P2 00 Le1 Le2
//	Case 3S  CLA INS P1 P2 Lc Data
//	Case 3E  CLA INS P1 P2 00 Lc1 Lc2 Data
//	Case 4S  CLA INS P1 P2 Lc Data Le
//	Case 4E  CLA INS P1 P2 00 Lc1 Lc2 Data Le1 Le2
//
// A short Le of 00 encodes Ne = 256 and an extended Le of 0000 encodes
// Ne = 65536. In Case 4 both length fields share one form: if either Nc or
// Ne needs the extended form, both are extended.

// APDU limits.
const (
	// MaxShortLc is the largest Nc encodable on a 1-byte Lc.
	MaxShortLc = 255

	// MaxShortLe is the largest Ne encodable on a 1-byte Le (as 0x00).
	MaxShortLe = 256

	// MaxExtendedLc is the largest Nc encodable on an extended Lc.
	MaxExtendedLc = 65535

	// MaxExtendedLe is the largest Ne encodable on an extended Le (as 0x0000).
	MaxExtendedLe = 65536

	headerLen = 4
)

// CommandAPDU is an immutable, validated command.
type CommandAPDU struct {
	raw   octet.Buffer
	kase  Case
	class Class
	ins   Instruction
	data  octet.Buffer
	ne    int
}

// CommandOption sets an optional part of a command body.
type CommandOption func(*commandBody)

type commandBody struct {
	data    []byte
	hasData bool
	ne      int
	hasNe   bool
}

// WithData attaches a command data field. An empty but present data field
// is rejected: a command without data is built without this option.
func WithData(data []byte) CommandOption {
	return func(b *commandBody) {
		b.data = data
		b.hasData = true
	}
}

// WithNe sets the expected response length Ne (1..65536).
// Ne = 0 is rejected: "no response data expected" is expressed by omitting
// this option.
func WithNe(ne int) CommandOption {
	return func(b *commandBody) {
		b.ne = ne
		b.hasNe = true
	}
}

// NewCommandAPDU builds a command from its header and optional body parts.
// The case and the length field encodings are derived from the body.
func NewCommandAPDU(cla Class, ins Instruction, p1, p2 byte, opts ...CommandOption) (*CommandAPDU, error) {
	var body commandBody
	for _, opt := range opts {
		opt(&body)
	}

	claByte, err := cla.Byte()
	if err != nil {
		return nil, fmt.Errorf("failed to encode Class: %w", err)
	}
	cla.Raw = claByte

	if body.hasData {
		switch nc := len(body.data); {
		case nc == 0:
			return nil, fmt.Errorf("%w: data field present but empty", ErrLength)
		case nc > MaxExtendedLc:
			return nil, fmt.Errorf("%w: data field of %d bytes exceeds %d", ErrLength, nc, MaxExtendedLc)
		}
	}
	if body.hasNe && (body.ne < 1 || body.ne > MaxExtendedLe) {
		return nil, fmt.Errorf("%w: Ne %d out of range [1, %d]", ErrValue, body.ne, MaxExtendedLe)
	}

	c := &CommandAPDU{
		class: cla,
		ins:   ins,
		data:  octet.FromBytes(body.data),
		ne:    body.ne,
	}
	c.kase = caseOf(c.data.Len(), c.ne)
	c.raw = encode(claByte, byte(ins.Raw), p1, p2, c.kase, c.data, c.ne)
	return c, nil
}

// encode serializes a command whose case has already been derived.
func encode(cla, ins, p1, p2 byte, kase Case, data octet.Buffer, ne int) octet.Buffer {
	buf := make([]byte, 0, headerLen+3+data.Len()+2)
	buf = append(buf, cla, ins, p1, p2)

	nc := data.Len()
	switch kase {
	case Case1:
	case Case2Short:
		buf = append(buf, byte(ne))
	case Case2Extended:
		buf = append(buf, 0x00, byte(ne>>8), byte(ne))
	case Case3Short:
		buf = append(buf, byte(nc))
		buf = append(buf, data.Bytes()...)
	case Case3Extended:
		buf = append(buf, 0x00, byte(nc>>8), byte(nc))
		buf = append(buf, data.Bytes()...)
	case Case4Short:
		buf = append(buf, byte(nc))
		buf = append(buf, data.Bytes()...)
		buf = append(buf, byte(ne))
	case Case4Extended:
		buf = append(buf, 0x00, byte(nc>>8), byte(nc))
		buf = append(buf, data.Bytes()...)
		buf = append(buf, byte(ne>>8), byte(ne))
	}
	// byte(256) and byte(65536>>8) both truncate to 0x00, which is exactly
	// the wire encoding of the maximum Ne in each form.
	return octet.FromBytes(buf)
}

// ParseCommandAPDU decodes a serialized command. The byte following P2
// decides the form: 0x00 always announces extended length fields, except in
// a 5-byte command where it is a short Le meaning 256.
//
// Only canonical encodings are accepted: an extended form used where the
// short form fits is rejected, so that parse and serialize are inverses.
func ParseCommandAPDU(raw []byte) (*CommandAPDU, error) {
	n := len(raw)
	if n < headerLen {
		return nil, fmt.Errorf("%w: command of %d bytes, need at least %d", ErrLength, n, headerLen)
	}

	// Any header byte is carried: reserved CLA/INS values are marked, not
	// refused, so reader pseudo-APDUs (CLA FF) parse.
	cla := DecodeClass(raw[0])
	ins := DecodeInstruction(InsCode(raw[1]))
	p1, p2 := raw[2], raw[3]

	var opts []CommandOption
	switch {
	case n == headerLen:
		// Case 1

	case n == headerLen+1:
		opts = append(opts, WithNe(shortNe(raw[4])))

	case raw[4] != 0x00:
		nc := int(raw[4])
		switch n {
		case 5 + nc:
			opts = append(opts, WithData(raw[5:]))
		case 5 + nc + 1:
			opts = append(opts, WithData(raw[5:n-1]), WithNe(shortNe(raw[n-1])))
		case 5 + nc + 2:
			return nil, fmt.Errorf("%w: short Lc followed by a 2-byte Le", ErrFormat)
		default:
			return nil, fmt.Errorf("%w: Lc=%d does not match a %d-byte command", ErrFormat, nc, n)
		}

	default:
		if n < 7 {
			return nil, fmt.Errorf("%w: truncated extended length field", ErrFormat)
		}
		v := int(raw[5])<<8 | int(raw[6])
		if n == 7 {
			opts = append(opts, WithNe(extendedNe(v)))
			break
		}
		if v == 0 {
			return nil, fmt.Errorf("%w: extended Lc of zero", ErrFormat)
		}
		switch n {
		case 7 + v:
			opts = append(opts, WithData(raw[7:]))
		case 7 + v + 1:
			return nil, fmt.Errorf("%w: extended Lc followed by a 1-byte Le", ErrFormat)
		case 7 + v + 2:
			le := int(raw[n-2])<<8 | int(raw[n-1])
			opts = append(opts, WithData(raw[7:n-2]), WithNe(extendedNe(le)))
		default:
			return nil, fmt.Errorf("%w: extended Lc=%d does not match a %d-byte command", ErrFormat, v, n)
		}
	}

	c, err := NewCommandAPDU(cla, ins, p1, p2, opts...)
	if err != nil {
		return nil, err
	}
	if c.raw != octet.FromBytes(raw) {
		return nil, fmt.Errorf("%w: non-canonical %s encoding %X", ErrFormat, c.kase, raw)
	}
	return c, nil
}

// ParseCommandAPDUHex decodes a command from its hexadecimal form.
func ParseCommandAPDUHex(s string) (*CommandAPDU, error) {
	b, err := octet.FromHex(s)
	if err != nil {
		return nil, err
	}
	return ParseCommandAPDU(b.Bytes())
}

func shortNe(le byte) int {
	if le == 0x00 {
		return MaxShortLe
	}
	return int(le)
}

func extendedNe(le int) int {
	if le == 0 {
		return MaxExtendedLe
	}
	return le
}

// Case returns the structural case of the command.
func (c *CommandAPDU) Case() Case { return c.kase }

// Raw returns the serialized command.
func (c *CommandAPDU) Raw() octet.Buffer { return c.raw }

// Bytes returns a copy of the serialized command.
func (c *CommandAPDU) Bytes() []byte { return c.raw.Bytes() }

// Header returns CLA INS P1 P2.
func (c *CommandAPDU) Header() octet.Buffer {
	h, _ := c.raw.Slice(0, headerLen)
	return h
}

// Body returns everything after the header (possibly empty).
func (c *CommandAPDU) Body() octet.Buffer {
	b, _ := c.raw.Slice(headerLen, c.raw.Len())
	return b
}

func (c *CommandAPDU) at(i int) byte {
	v, _ := c.raw.At(i)
	return v
}

// CLA returns the class byte.
func (c *CommandAPDU) CLA() byte { return c.at(0) }

// INS returns the instruction byte.
func (c *CommandAPDU) INS() byte { return c.at(1) }

// P1 returns the first parameter byte.
func (c *CommandAPDU) P1() byte { return c.at(2) }

// P2 returns the second parameter byte.
func (c *CommandAPDU) P2() byte { return c.at(3) }

// Class returns the decoded class byte.
func (c *CommandAPDU) Class() Class { return c.class }

// Instruction returns the decoded instruction byte.
func (c *CommandAPDU) Instruction() Instruction { return c.ins }

// Lc returns the encoded Lc field (1 or 3 bytes).
func (c *CommandAPDU) Lc() (octet.Buffer, error) {
	switch c.kase {
	case Case3Short, Case4Short:
		return c.raw.Slice(4, 5)
	case Case3Extended, Case4Extended:
		return c.raw.Slice(4, 7)
	}
	return octet.Empty, fmt.Errorf("%w: %s has no Lc field", ErrInvalidOperation, c.kase)
}

// Nc returns the length of the data field.
func (c *CommandAPDU) Nc() (int, error) {
	if !c.kase.HasData() {
		return 0, fmt.Errorf("%w: %s has no data field", ErrInvalidOperation, c.kase)
	}
	return c.data.Len(), nil
}

// Data returns the command data field.
func (c *CommandAPDU) Data() (octet.Buffer, error) {
	if !c.kase.HasData() {
		return octet.Empty, fmt.Errorf("%w: %s has no data field", ErrInvalidOperation, c.kase)
	}
	return c.data, nil
}

// Le returns the encoded Le field: 1 byte in short form, 3 bytes in
// Case 2E (leading 00 included) and 2 bytes in Case 4E.
func (c *CommandAPDU) Le() (octet.Buffer, error) {
	n := c.raw.Len()
	switch c.kase {
	case Case2Short, Case4Short:
		return c.raw.Slice(n-1, n)
	case Case2Extended:
		return c.raw.Slice(4, 7)
	case Case4Extended:
		return c.raw.Slice(n-2, n)
	}
	return octet.Empty, fmt.Errorf("%w: %s has no Le field", ErrInvalidOperation, c.kase)
}

// Ne returns the expected response length (256 for a short Le of 00,
// 65536 for an extended Le of 0000).
func (c *CommandAPDU) Ne() (int, error) {
	if !c.kase.HasNe() {
		return 0, fmt.Errorf("%w: %s has no Le field", ErrInvalidOperation, c.kase)
	}
	return c.ne, nil
}

// UpdatedNe returns a new command with the same header and data and a
// different Ne. The case of the result is derived again, so a Case 2S may
// become a Case 2E. Only commands that already carry Ne can be updated.
func (c *CommandAPDU) UpdatedNe(ne int) (*CommandAPDU, error) {
	if !c.kase.HasNe() {
		return nil, fmt.Errorf("%w: cannot update Ne of a %s command", ErrInvalidOperation, c.kase)
	}

	opts := []CommandOption{WithNe(ne)}
	if c.kase.HasData() {
		opts = append(opts, WithData(c.data.Bytes()))
	}
	return NewCommandAPDU(c.class, c.ins, c.P1(), c.P2(), opts...)
}

// String returns a readable representation of the command meta-data.
func (c *CommandAPDU) String() string {
	return fmt.Sprintf("%s | %s | P1: %02X, P2: %02X | Lc: %d | Le: %d",
		c.kase, c.ins.Raw, c.P1(), c.P2(), c.data.Len(), c.ne)
}

package iso7816

import (
	"fmt"

	"github.com/gregLibert/apdu/pkg/bits"
)

// Class byte (CLA) coding, ISO/IEC 7816-4 section 5.4.1.
//
//	b8     0 = interindustry, 1 = proprietary
//	b7     0 = first interindustry range, 1 = further range
//	b5     command chaining (1 = more commands follow)
//
//	first range  (000x xxxx): b4-b3 secure messaging, b2-b1 channel 0..3
//	further range(01xx xxxx): b6 secure messaging, b4-b1 channel minus 4
//
// The range 001x xxxx is RFU and 0xFF is reserved for PPS; neither is a
// valid CLA.

// SecureMessaging is the secure messaging indication carried by CLA.
type SecureMessaging uint8

const (
	SMNone         SecureMessaging = 0 // no SM or no indication
	SMProprietary  SecureMessaging = 1 // proprietary SM format, first range only
	SMHeaderNoProc SecureMessaging = 2 // ISO SM, header not processed
	SMHeaderAuth   SecureMessaging = 3 // ISO SM, header authenticated, first range only
)

var smNames = [...]string{
	SMNone:         "None",
	SMProprietary:  "Proprietary",
	SMHeaderNoProc: "ISO (Header not processed)",
	SMHeaderAuth:   "ISO (Header authenticated)",
}

func (sm SecureMessaging) String() string {
	if int(sm) < len(smNames) {
		return smNames[sm]
	}
	return fmt.Sprintf("SecureMessaging(%d)", uint8(sm))
}

// MaxLogicalChannel is the highest channel number CLA can address.
const MaxLogicalChannel = 19

// Class is a decoded CLA byte. Reserved marks a value ParseClass refuses
// (FF or 001X XXXX); only Raw is meaningful then.
type Class struct {
	Raw             byte
	Proprietary     bool
	Reserved        bool
	Chained         bool
	SecureMessaging SecureMessaging
	Channel         uint8
}

// ParseClass decodes a raw CLA byte.
func ParseClass(cla byte) (Class, error) {
	if cla == 0xFF {
		return Class{}, fmt.Errorf("%w: CLA 0xFF is reserved", ErrValue)
	}

	c := Class{Raw: cla}
	if bits.IsSet(cla, 8) {
		c.Proprietary = true
		return c, nil
	}

	if !bits.IsSet(cla, 7) && bits.IsSet(cla, 6) {
		return Class{}, fmt.Errorf("%w: CLA 0x%02X is in the RFU range 001X XXXX", ErrValue, cla)
	}

	c.Chained = bits.IsSet(cla, 5)
	if bits.IsSet(cla, 7) {
		if bits.IsSet(cla, 6) {
			c.SecureMessaging = SMHeaderNoProc
		}
		c.Channel = bits.GetRange(cla, 4, 1) + 4
	} else {
		c.SecureMessaging = SecureMessaging(bits.GetRange(cla, 4, 3))
		c.Channel = bits.GetRange(cla, 2, 1)
	}
	return c, nil
}

// DecodeClass is like ParseClass but never fails: a reserved value comes
// back with Reserved set. Reader pseudo-APDUs use CLA FF.
func DecodeClass(cla byte) Class {
	c, err := ParseClass(cla)
	if err != nil {
		return Class{Raw: cla, Reserved: true}
	}
	return c
}

// MustClass is like ParseClass but panics on a reserved value.
func MustClass(cla byte) Class {
	c, err := ParseClass(cla)
	if err != nil {
		panic(err)
	}
	return c
}

// NewInterindustryClass builds an interindustry CLA, picking the first or
// further range from the channel number.
func NewInterindustryClass(chained bool, sm SecureMessaging, channel uint8) (Class, error) {
	c := Class{
		Chained:         chained,
		SecureMessaging: sm,
		Channel:         channel,
	}
	raw, err := c.Byte()
	if err != nil {
		return Class{}, err
	}
	c.Raw = raw
	return c, nil
}

// Byte encodes the class back to its CLA byte.
func (c Class) Byte() (byte, error) {
	if c.Proprietary || c.Reserved {
		return c.Raw, nil
	}
	if c.Channel > MaxLogicalChannel {
		return 0, fmt.Errorf("%w: logical channel %d out of range (max %d)", ErrValue, c.Channel, MaxLogicalChannel)
	}
	if c.SecureMessaging > SMHeaderAuth {
		return 0, fmt.Errorf("%w: unknown secure messaging indicator %d", ErrValue, c.SecureMessaging)
	}

	var res byte
	if c.Chained {
		res = bits.Set(res, 5)
	}

	if c.Channel <= 3 {
		res = bits.SetRange(res, 4, 3, byte(c.SecureMessaging))
		return bits.SetRange(res, 2, 1, c.Channel), nil
	}

	// Further range carries a single SM bit.
	if c.SecureMessaging == SMProprietary || c.SecureMessaging == SMHeaderAuth {
		return 0, fmt.Errorf("%w: SM indicator %s not available on channel %d", ErrValue, c.SecureMessaging, c.Channel)
	}
	res = bits.Set(res, 7)
	if c.SecureMessaging != SMNone {
		res = bits.Set(res, 6)
	}
	return bits.SetRange(res, 4, 1, c.Channel-4), nil
}

// Verbose returns a human-readable description of the CLA byte.
func (c Class) Verbose() string {
	if c.Reserved {
		return fmt.Sprintf("Class: Reserved (0x%02X)", c.Raw)
	}
	if c.Proprietary {
		return fmt.Sprintf("Class: Proprietary (0x%02X)", c.Raw)
	}

	rangeName := "First Interindustry (Ch 0-3)"
	if c.Channel >= 4 {
		rangeName = "Further Interindustry (Ch 4-19)"
	}

	chaining := "Last or only command"
	if c.Chained {
		chaining = "More commands follow (Chaining)"
	}

	return fmt.Sprintf(
		"Range: %s\nChaining: %s\nSecure Messaging: %s\nLogical Channel: %d",
		rangeName, chaining, c.SecureMessaging, c.Channel,
	)
}

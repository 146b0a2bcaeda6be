package iso7816

import "fmt"

// NewGetResponse creates GET RESPONSE (INS 'C0'), Case 2S, asking for ne
// bytes. The class byte is the one of the command whose response is being
// fetched, copied as is.
func NewGetResponse(cla Class, ne int) (*CommandAPDU, error) {
	if ne < 1 || ne > MaxShortLe {
		return nil, fmt.Errorf("%w: GET RESPONSE Ne %d out of range 1..%d", ErrValue, ne, MaxShortLe)
	}
	return NewCommandAPDU(cla, MustInstruction(INS_GET_RESPONSE), 0x00, 0x00, WithNe(ne))
}

// NewGetData creates GET DATA (INS 'CA') for a simple data object, Case 2S.
// P1-P2 carry the tag: '00XX' for a one-byte tag, 'XXYY' for a two-byte one.
func NewGetData(cla Class, tag uint16) (*CommandAPDU, error) {
	return NewCommandAPDU(cla, MustInstruction(INS_GET_DATA), byte(tag>>8), byte(tag), WithNe(MaxShortLe))
}

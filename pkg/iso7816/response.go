package iso7816

import (
	"fmt"

	"github.com/gregLibert/apdu/pkg/octet"
)

// RESPONSE APDU (R-APDU): an optional body followed by the mandatory
// trailer SW1 SW2.

// ResponseAPDU is an immutable response of at least two bytes.
type ResponseAPDU struct {
	raw octet.Buffer
}

// NewResponseAPDU wraps a raw response. Only the length is checked here;
// the trailer is validated by Status.
func NewResponseAPDU(raw octet.Buffer) (*ResponseAPDU, error) {
	if raw.Len() < 2 {
		return nil, fmt.Errorf("%w: response of %d bytes, need at least 2", ErrLength, raw.Len())
	}
	return &ResponseAPDU{raw: raw}, nil
}

// ParseResponseAPDU copies raw bytes received from the card into a ResponseAPDU.
func ParseResponseAPDU(raw []byte) (*ResponseAPDU, error) {
	return NewResponseAPDU(octet.FromBytes(raw))
}

// Raw returns the full response, trailer included.
func (r *ResponseAPDU) Raw() octet.Buffer { return r.raw }

// Bytes returns a copy of the full response.
func (r *ResponseAPDU) Bytes() []byte { return r.raw.Bytes() }

// Len returns the response length, trailer included.
func (r *ResponseAPDU) Len() int { return r.raw.Len() }

// HasBody reports whether the response carries data before the trailer.
func (r *ResponseAPDU) HasBody() bool { return r.raw.Len() > 2 }

// Body returns the response data field. A bare trailer has no body.
func (r *ResponseAPDU) Body() (octet.Buffer, error) {
	if !r.HasBody() {
		return octet.Empty, fmt.Errorf("%w: response has no body", ErrInvalidOperation)
	}
	return r.raw.Slice(0, r.raw.Len()-2)
}

// Data returns a copy of the body, or nil when there is none.
func (r *ResponseAPDU) Data() []byte {
	body, err := r.Body()
	if err != nil {
		return nil
	}
	return body.Bytes()
}

// Trailer returns SW1 SW2 as a buffer.
func (r *ResponseAPDU) Trailer() octet.Buffer {
	t, _ := r.raw.Slice(r.raw.Len()-2, r.raw.Len())
	return t
}

// SW1 returns the first trailer byte, unvalidated.
func (r *ResponseAPDU) SW1() byte {
	v, _ := r.raw.At(r.raw.Len() - 2)
	return v
}

// SW2 returns the second trailer byte, unvalidated.
func (r *ResponseAPDU) SW2() byte {
	v, _ := r.raw.At(r.raw.Len() - 1)
	return v
}

// Status validates and returns the trailer as a StatusWord.
func (r *ResponseAPDU) Status() (StatusWord, error) {
	return NewStatusWord(r.SW1(), r.SW2())
}

// String returns a readable representation of the response.
func (r *ResponseAPDU) String() string {
	sw, err := r.Status()
	if err != nil {
		return fmt.Sprintf("Data (%d bytes) | Status: %s (invalid)", r.raw.Len()-2, r.Trailer())
	}
	return fmt.Sprintf("Data (%d bytes) | Status: %s", r.raw.Len()-2, sw.Verbose())
}

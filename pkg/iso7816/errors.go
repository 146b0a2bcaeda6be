package iso7816

import (
	"errors"
	"fmt"
)

// Error taxonomy.
//
// Every failure returned by this package wraps one of the sentinels below and
// can be tested with errors.Is. Card-side execution or checking errors are not
// failures: they come back as a ResponseAPDU whose StatusWord describes them.
var (
	// ErrLength reports a buffer too short to hold a frame, or a data field
	// that does not fit in the extended Lc encoding.
	ErrLength = errors.New("iso7816: length error")

	// ErrFormat reports malformed framing: inconsistent length fields,
	// mixed short/extended encodings or an illegal status word.
	ErrFormat = errors.New("iso7816: format error")

	// ErrValue reports a field value outside its legal domain (Ne = 0,
	// Ne > 65536, reserved CLA/INS/SW values).
	ErrValue = errors.New("iso7816: value error")

	// ErrInvalidOperation reports an accessor or update applied to a case
	// that lacks the requested field.
	ErrInvalidOperation = errors.New("iso7816: invalid operation")

	// ErrUnsupportedCase reports a command case the selected transport
	// protocol cannot carry (extended lengths on T=0).
	ErrUnsupportedCase = errors.New("iso7816: unsupported case")
)

// TransportError wraps a failure of the underlying card connection.
// The engine never retries a transport failure.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("iso7816: transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

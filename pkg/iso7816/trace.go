package iso7816

import (
	"fmt"
	"strings"

	"github.com/gregLibert/apdu/pkg/tlv"
)

// A Transaction is one transport round trip: one command sent, one response
// received. A Trace is the ordered list of transactions an exchange needed.
// On T=0 a single logical command may take up to three round trips:
// a '6CXX' correction, or the command followed by GET RESPONSE (itself
// corrected once on '6CXX').

// Transaction is a completed command-response pair.
type Transaction struct {
	Command  *CommandAPDU
	Response *ResponseAPDU
	Status   StatusWord
}

// IsSuccess reports whether the response status is '9000' or '61XX'.
func (t *Transaction) IsSuccess() bool {
	if t.Response == nil {
		return false
	}
	return t.Status.IsSuccess()
}

// Trace is the chronological list of transactions of one exchange.
type Trace []Transaction

// Last returns the final transaction, or nil for an empty trace.
func (t Trace) Last() *Transaction {
	if len(t) == 0 {
		return nil
	}
	return &t[len(t)-1]
}

// IsSuccess evaluates the final transaction only: intermediate '61XX' or
// '6CXX' statuses are protocol steps, not outcomes.
func (t Trace) IsSuccess() bool {
	last := t.Last()
	if last == nil {
		return false
	}
	return last.IsSuccess()
}

// Describe renders the trace as a report, one block per round trip.
// Response bodies that parse as BER-TLV are shown as a tag tree.
func (t Trace) Describe() string {
	var sb strings.Builder

	for i, tx := range t {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "[%d] %s\n", i+1, tx.Command)
		fmt.Fprintf(&sb, "    => %s\n", tx.Command.Raw())

		if tx.Response == nil {
			sb.WriteString("    <= (no response)")
			continue
		}
		fmt.Fprintf(&sb, "    <= %s\n", tx.Response.Raw())
		fmt.Fprintf(&sb, "    SW %s", tx.Status.Verbose())

		data := tx.Response.Data()
		if len(data) == 0 {
			continue
		}
		if tree, err := tlv.Describe(data, "      "); err == nil {
			sb.WriteString("\n")
			sb.WriteString(tree)
		} else {
			fmt.Fprintf(&sb, "\n      ASCII: %q", tlv.MakeSafeASCII(data))
		}
	}

	return sb.String()
}

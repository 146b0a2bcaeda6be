package iso7816

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gregLibert/apdu/pkg/octet"
)

// EXCHANGE ENGINE
//
// T=1 carries any case in a single round trip. T=0 has no extended length
// encoding and cannot carry Lc and Le in one frame, so ISO/IEC 7816-3
// section 12.2 defines how the terminal completes a command from the status
// word it gets back:
//
//	Case 1, 3S  one round trip.
//	Case 2S     '6CXX': resend once with Ne = XX.
//	            '9000', '6700', '9XYZ', anything else: done.
//	Case 4S     '9000': GET RESPONSE with the original Ne.
//	            '61XX': GET RESPONSE with Ne = min(original Ne, XX).
//	            '6CXX': resend once with Ne = XX.
//	            anything else: done, no GET RESPONSE.
//	Case 2E, 3E, 4E  rejected before any round trip.
//
// GET RESPONSE goes through the Case 2S rules, so it may itself be corrected
// once on '6CXX'. An exchange issues at most one GET RESPONSE and never
// loops, whatever a non-conformant card answers.

// Protocol is the transmission protocol negotiated with the card.
type Protocol uint8

const (
	T0 Protocol = 0
	T1 Protocol = 1
)

func (p Protocol) String() string {
	switch p {
	case T0:
		return "T=0"
	case T1:
		return "T=1"
	default:
		return fmt.Sprintf("T=%d", uint8(p))
	}
}

// Transmitter is the physical card connection. It sends one serialized
// command and returns the raw response, trailer included. Framing below the
// APDU, retransmission and timeouts are its own business.
// *scard.Card satisfies this interface.
type Transmitter interface {
	Transmit(cmd []byte) ([]byte, error)
}

// TransmitterFunc adapts a function to the Transmitter interface.
type TransmitterFunc func(cmd []byte) ([]byte, error)

// Transmit calls f(cmd).
func (f TransmitterFunc) Transmit(cmd []byte) ([]byte, error) {
	return f(cmd)
}

// Client drives exchanges over one card channel. It holds no mutable state
// between exchanges, but a channel is half-duplex: callers must not run two
// exchanges on the same Client concurrently.
type Client struct {
	Card     Transmitter
	Protocol Protocol
	Logger   *zap.Logger
}

// NewClient creates a Client. A nil logger disables logging.
func NewClient(card Transmitter, protocol Protocol, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{Card: card, Protocol: protocol, Logger: logger}
}

// Result is the outcome of one exchange.
type Result struct {
	// Response is the final response. When GET RESPONSE was needed it is the
	// GET RESPONSE answer as received; earlier bodies are only in Trace.
	Response *ResponseAPDU
	Status   StatusWord
	// Trace lists every round trip in issue order.
	Trace Trace
}

// Send runs one exchange. Status words reporting card-side errors are not
// failures: they are returned in Result for the caller to inspect. On
// failure the returned Result still holds the round trips completed so far.
//
// ctx is checked before every round trip; a round trip in progress is never
// interrupted.
func (c *Client) Send(ctx context.Context, cmd *CommandAPDU) (*Result, error) {
	x := &exchange{ctx: ctx, card: c.Card, log: c.logger()}

	var (
		resp *ResponseAPDU
		err  error
	)
	switch c.Protocol {
	case T1:
		resp, _, err = x.roundTrip(cmd)
	case T0:
		resp, err = x.t0(cmd)
	default:
		err = fmt.Errorf("%w: unsupported protocol %s", ErrValue, c.Protocol)
	}

	res := &Result{Response: resp, Trace: x.trace}
	if err != nil {
		return res, err
	}
	// Every response in the trace was validated by roundTrip.
	res.Status, _ = resp.Status()
	return res, nil
}

func (c *Client) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// Exchange sends cmd over card with the given protocol and returns the final
// response.
func Exchange(ctx context.Context, card Transmitter, protocol Protocol, cmd *CommandAPDU) (*ResponseAPDU, error) {
	res, err := NewClient(card, protocol, nil).Send(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return res.Response, nil
}

// exchange is the state of one exchange in progress.
type exchange struct {
	ctx   context.Context
	card  Transmitter
	log   *zap.Logger
	trace Trace
}

func (x *exchange) t0(cmd *CommandAPDU) (*ResponseAPDU, error) {
	switch cmd.Case() {
	case Case1, Case3Short:
		resp, _, err := x.roundTrip(cmd)
		return resp, err
	case Case2Short:
		return x.case2(cmd)
	case Case4Short:
		return x.case4(cmd)
	case Case2Extended, Case3Extended, Case4Extended:
		return nil, fmt.Errorf("%w: %s cannot be carried by %s", ErrUnsupportedCase, cmd.Case(), T0)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCase, cmd.Case())
	}
}

// case2 sends a Case 2S command, correcting Ne once on '6CXX'.
func (x *exchange) case2(cmd *CommandAPDU) (*ResponseAPDU, error) {
	resp, sw, err := x.roundTrip(cmd)
	if err != nil {
		return nil, err
	}
	if sw.SW1() != 0x6C {
		return resp, nil
	}
	return x.retryWithNe(cmd, sw)
}

// case4 sends a Case 4S command and fetches its response data.
func (x *exchange) case4(cmd *CommandAPDU) (*ResponseAPDU, error) {
	resp, sw, err := x.roundTrip(cmd)
	if err != nil {
		return nil, err
	}

	ne, err := cmd.Ne()
	if err != nil {
		return nil, err
	}

	switch {
	case sw == SW_NO_ERROR:
	case sw.SW1() == 0x61:
		if available, _ := sw.AvailableLength(); available < ne {
			ne = available
		}
	case sw.SW1() == 0x6C:
		return x.retryWithNe(cmd, sw)
	default:
		return resp, nil
	}

	x.log.Debug("fetching response data", zap.Stringer("sw", sw), zap.Int("ne", ne))

	getResp, err := NewGetResponse(cmd.Class(), ne)
	if err != nil {
		return nil, err
	}
	return x.case2(getResp)
}

// retryWithNe resends cmd once with Ne taken from a '6CXX' status.
// The response of the retry is final, even if it is '6CXX' again.
func (x *exchange) retryWithNe(cmd *CommandAPDU, sw StatusWord) (*ResponseAPDU, error) {
	na, _ := sw.AvailableLength()
	retry, err := cmd.UpdatedNe(na)
	if err != nil {
		return nil, err
	}

	x.log.Debug("wrong Le, resending", zap.Stringer("sw", sw), zap.Int("ne", na))

	resp, _, err := x.roundTrip(retry)
	return resp, err
}

// roundTrip performs one transport call and records it in the trace.
func (x *exchange) roundTrip(cmd *CommandAPDU) (*ResponseAPDU, StatusWord, error) {
	if err := x.ctx.Err(); err != nil {
		return nil, 0, err
	}

	x.log.Debug("=> card", zap.Stringer("apdu", cmd.Raw()), zap.Stringer("case", cmd.Case()))

	raw, err := x.card.Transmit(cmd.Bytes())
	if err != nil {
		return nil, 0, &TransportError{Err: err}
	}

	resp, err := NewResponseAPDU(octet.FromBytes(raw))
	if err != nil {
		return nil, 0, err
	}
	sw, err := resp.Status()
	if err != nil {
		return nil, 0, fmt.Errorf("invalid response trailer %s: %w", resp.Trailer(), err)
	}

	x.log.Debug("<= card",
		zap.Stringer("apdu", resp.Raw()),
		zap.Stringer("state", sw.State()),
		zap.String("meaning", sw.Meaning()),
	)

	x.trace = append(x.trace, Transaction{Command: cmd, Response: resp, Status: sw})
	return resp, sw, nil
}

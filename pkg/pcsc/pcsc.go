// Package pcsc connects the exchange engine to a PC/SC card reader.
package pcsc

import (
	"errors"
	"fmt"

	"github.com/ebfe/scard"
	"go.uber.org/zap"

	"github.com/gregLibert/apdu/pkg/iso7816"
	"github.com/gregLibert/apdu/pkg/octet"
)

// Preference selects the protocols offered when connecting.
type Preference string

const (
	Auto    Preference = "auto"
	ForceT0 Preference = "t0"
	ForceT1 Preference = "t1"
)

// ErrNoReader is returned by Connect when PC/SC lists no reader.
var ErrNoReader = errors.New("pcsc: no smart card reader found")

func (p Preference) protocols() (scard.Protocol, error) {
	switch p {
	case Auto, "":
		// Force T=0 or T=1 to avoid "Parameter Incorrect" errors (Error 57)
		return scard.ProtocolT0 | scard.ProtocolT1, nil
	case ForceT0:
		return scard.ProtocolT0, nil
	case ForceT1:
		return scard.ProtocolT1, nil
	default:
		return 0, fmt.Errorf("%w: unknown protocol preference %q", iso7816.ErrValue, string(p))
	}
}

// Connection wraps a PC/SC context and the card connected through it.
// It implements iso7816.Transmitter.
type Connection struct {
	ctx      *scard.Context
	card     *scard.Card
	Reader   string
	protocol iso7816.Protocol
	atr      octet.Buffer
	log      *zap.Logger
}

// ListReaders returns the names of the readers PC/SC knows about.
func ListReaders() ([]string, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, fmt.Errorf("establishing context: %w", err)
	}
	defer ctx.Release()

	readers, err := ctx.ListReaders()
	if err != nil {
		return nil, fmt.Errorf("listing readers: %w", err)
	}
	return readers, nil
}

// Connect opens the reader at readerIndex (0-based) in shared mode.
func Connect(readerIndex int, pref Preference, logger *zap.Logger) (*Connection, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	protocols, err := pref.protocols()
	if err != nil {
		return nil, err
	}

	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, fmt.Errorf("establishing context: %w", err)
	}

	readers, err := ctx.ListReaders()
	if err != nil || len(readers) == 0 {
		release(ctx, logger)
		if err == nil {
			err = ErrNoReader
		}
		return nil, fmt.Errorf("listing readers: %w", err)
	}
	if readerIndex < 0 || readerIndex >= len(readers) {
		release(ctx, logger)
		return nil, fmt.Errorf("%w: reader index %d out of range (0..%d)", iso7816.ErrValue, readerIndex, len(readers)-1)
	}

	reader := readers[readerIndex]
	card, err := ctx.Connect(reader, scard.ShareShared, protocols)
	if err != nil {
		release(ctx, logger)
		return nil, fmt.Errorf("connecting to %q: %w", reader, err)
	}

	c := &Connection{ctx: ctx, card: card, Reader: reader, log: logger}

	status, err := card.Status()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("reading card status: %w", err)
	}
	if c.protocol, err = protocolFrom(status.ActiveProtocol); err != nil {
		c.Close()
		return nil, err
	}
	c.atr = octet.FromBytes(status.Atr)

	logger.Info("card connected",
		zap.String("reader", reader),
		zap.Stringer("protocol", c.protocol),
		zap.Stringer("atr", c.atr),
	)
	return c, nil
}

// protocolFrom maps the negotiated PC/SC protocol to the engine's.
func protocolFrom(p scard.Protocol) (iso7816.Protocol, error) {
	switch p {
	case scard.ProtocolT0:
		return iso7816.T0, nil
	case scard.ProtocolT1:
		return iso7816.T1, nil
	default:
		return 0, fmt.Errorf("%w: unsupported active protocol 0x%X", iso7816.ErrValue, uint32(p))
	}
}

// Protocol returns the protocol negotiated with the card.
func (c *Connection) Protocol() iso7816.Protocol { return c.protocol }

// ATR returns the Answer To Reset read at connection time.
func (c *Connection) ATR() octet.Buffer { return c.atr }

// Transmit sends one serialized command to the card.
func (c *Connection) Transmit(cmd []byte) ([]byte, error) {
	if c == nil || c.card == nil {
		return nil, fmt.Errorf("connection not established")
	}
	return c.card.Transmit(cmd)
}

// Client returns an exchange client bound to this connection and its
// negotiated protocol.
func (c *Connection) Client() *iso7816.Client {
	return iso7816.NewClient(c, c.protocol, c.log)
}

// Close disconnects the card and releases the PC/SC context.
func (c *Connection) Close() {
	if c == nil {
		return
	}
	if c.card != nil {
		if err := c.card.Disconnect(scard.LeaveCard); err != nil {
			c.log.Warn("failed to disconnect card", zap.Error(err))
		}
		c.card = nil
	}
	if c.ctx != nil {
		release(c.ctx, c.log)
		c.ctx = nil
	}
}

func release(ctx *scard.Context, logger *zap.Logger) {
	if err := ctx.Release(); err != nil {
		logger.Warn("failed to release context", zap.Error(err))
	}
}

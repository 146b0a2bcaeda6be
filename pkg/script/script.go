// Package script replays a list of configured commands against a card.
package script

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/gregLibert/apdu/pkg/config"
	"github.com/gregLibert/apdu/pkg/iso7816"
)

// ErrUnexpectedStatus reports a step whose final status differs from the
// expected one.
var ErrUnexpectedStatus = errors.New("script: unexpected status")

// Sender runs one exchange. *iso7816.Client implements it.
type Sender interface {
	Send(ctx context.Context, cmd *iso7816.CommandAPDU) (*iso7816.Result, error)
}

// Outcome is what one step produced.
type Outcome struct {
	Step   config.Step
	Result *iso7816.Result
	Err    error
}

// Runner executes steps in order.
type Runner struct {
	Sender Sender
	Logger *zap.Logger
	// KeepGoing runs the remaining steps after a failed one. The returned
	// error then combines every failure.
	KeepGoing bool
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// Run executes steps and returns one Outcome per step attempted.
// A transport failure or a cancelled context always stops the run.
func (r *Runner) Run(ctx context.Context, steps []config.Step) ([]Outcome, error) {
	log := r.logger()

	var (
		outcomes []Outcome
		errs     error
	)
	for i, step := range steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step %d", i+1)
		}

		res, err := r.runStep(ctx, step)
		outcomes = append(outcomes, Outcome{Step: step, Result: res, Err: err})
		if err == nil {
			log.Info("step passed", zap.String("step", name), zap.Stringer("sw", res.Status))
			continue
		}

		err = fmt.Errorf("%s: %w", name, err)
		log.Error("step failed", zap.String("step", name), zap.Error(err))
		errs = multierr.Append(errs, err)

		var te *iso7816.TransportError
		if !r.KeepGoing || errors.As(err, &te) || ctx.Err() != nil {
			break
		}
	}
	return outcomes, errs
}

func (r *Runner) runStep(ctx context.Context, step config.Step) (*iso7816.Result, error) {
	cmd, err := iso7816.ParseCommandAPDU(step.Command.Bytes())
	if err != nil {
		return nil, err
	}

	res, err := r.Sender.Send(ctx, cmd)
	if err != nil {
		return res, err
	}

	if step.Expect == "" {
		return res, nil
	}
	want, err := strconv.ParseUint(step.Expect, 16, 16)
	if err != nil {
		return res, fmt.Errorf("%w: expected status %q", iso7816.ErrValue, step.Expect)
	}
	if uint16(res.Status) != uint16(want) {
		return res, fmt.Errorf("%w: got %s, want %04X", ErrUnexpectedStatus, res.Status.Verbose(), want)
	}
	return res, nil
}

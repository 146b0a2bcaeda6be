package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gregLibert/apdu/pkg/script"
)

func NewRunCommand(c *Context) *cobra.Command {
	var keepGoing bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the script from the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := c.config.Script
			if len(steps) == 0 {
				return errors.New("config has no script")
			}

			client, card, err := c.client()
			if err != nil {
				return err
			}
			defer card.Close()

			runner := script.Runner{Sender: client, Logger: c.logger, KeepGoing: keepGoing}
			outcomes, err := runner.Run(c.Context, steps)

			for i, o := range outcomes {
				verdict := "ok"
				if o.Err != nil {
					verdict = "FAILED"
				}
				fmt.Fprintf(c.out(), "--- %d/%d %s %s\n", i+1, len(steps), o.Step.Name, verdict)
				if o.Result != nil && len(o.Result.Trace) > 0 {
					fmt.Fprintln(c.out(), o.Result.Trace.Describe())
				}
			}
			return err
		},
	}

	cmd.Flags().BoolVarP(&keepGoing, "keep-going", "k", false, "Run the remaining steps after a failure")
	return cmd
}

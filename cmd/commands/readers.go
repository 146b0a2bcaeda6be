package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gregLibert/apdu/pkg/pcsc"
)

func NewReadersCommand(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "readers",
		Short: "List PC/SC readers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list := c.ListReaders
			if list == nil {
				list = pcsc.ListReaders
			}
			readers, err := list()
			if err != nil {
				return err
			}
			if len(readers) == 0 {
				return pcsc.ErrNoReader
			}
			for i, r := range readers {
				fmt.Fprintf(c.out(), "%d: %s\n", i, r)
			}
			return nil
		},
	}
}

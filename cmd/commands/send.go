package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gregLibert/apdu/pkg/iso7816"
)

func NewSendCommand(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:     "send <hex>...",
		Short:   "Send one command APDU and print every round trip",
		Example: "  smartcard send 00A4040007A0000000031010 00",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apdu, err := iso7816.ParseCommandAPDUHex(strings.Join(args, ""))
			if err != nil {
				return err
			}

			client, card, err := c.client()
			if err != nil {
				return err
			}
			defer card.Close()

			res, err := client.Send(c.Context, apdu)
			if len(res.Trace) > 0 {
				fmt.Fprintln(c.out(), res.Trace.Describe())
			}
			return err
		},
	}
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gregLibert/apdu/pkg/iso7816"
	"github.com/gregLibert/apdu/pkg/octet"
)

// NewGetDataCommand reads a simple data object with GET DATA.
func NewGetDataCommand(c *Context) *cobra.Command {
	var cla string

	cmd := cobra.Command{
		Use:   "get-data <tag>",
		Short: "Read a data object with GET DATA",
		Example: `  smartcard get-data 9F36 --cla 80
  smartcard get-data 00 --cla FF   # reader pseudo-APDU: card UID`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			claByte, err := octet.FromHex(cla)
			if err != nil {
				return err
			}
			if claByte.Len() != 1 {
				return fmt.Errorf("%w: CLA of %d bytes", iso7816.ErrLength, claByte.Len())
			}
			tag, err := octet.FromHex(args[0])
			if err != nil {
				return err
			}
			if tag.Len() == 0 || tag.Len() > 2 {
				return fmt.Errorf("%w: tag of %d bytes, want 1 or 2", iso7816.ErrLength, tag.Len())
			}
			v, _ := tag.Uint()
			c0, _ := claByte.At(0)

			apdu, err := iso7816.NewGetData(iso7816.DecodeClass(c0), uint16(v))
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

	cmd.Flags().StringVar(&cla, "cla", "00", "Class byte in hex")
	return &cmd
}

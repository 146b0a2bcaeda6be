package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gregLibert/apdu/pkg/iso7816"
	"github.com/gregLibert/apdu/pkg/octet"
)

// NewParseCommand decodes a command APDU without talking to a card.
func NewParseCommand(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <hex>...",
		Short: "Decode a command APDU",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apdu, err := iso7816.ParseCommandAPDUHex(strings.Join(args, ""))
			if err != nil {
				return err
			}

			w := c.out()
			fmt.Fprintf(w, "%s\n", apdu.Case())
			fmt.Fprintf(w, "CLA: %02X\n%s\n", apdu.CLA(), apdu.Class().Verbose())
			fmt.Fprintf(w, "%s\n", apdu.Instruction().Verbose())
			fmt.Fprintf(w, "P1: %02X P2: %02X\n", apdu.P1(), apdu.P2())
			if lc, err := apdu.Lc(); err == nil {
				data, _ := apdu.Data()
				fmt.Fprintf(w, "Lc: %s (Nc = %d)\n", lc, data.Len())
				fmt.Fprintf(w, "Data: %s\n", data)
			}
			if le, err := apdu.Le(); err == nil {
				ne, _ := apdu.Ne()
				fmt.Fprintf(w, "Le: %s (Ne = %d)\n", le, ne)
			}
			return nil
		},
	}
}

// NewStatusCommand explains a status word.
func NewStatusCommand(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "sw <hex>",
		Short: "Explain a status word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := octet.FromHex(args[0])
			if err != nil {
				return err
			}
			if b.Len() != 2 {
				return fmt.Errorf("%w: status word of %d bytes", iso7816.ErrLength, b.Len())
			}
			v, _ := b.Uint()
			sw, err := iso7816.ParseStatusWord(uint16(v))
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out(), sw.Verbose())
			return nil
		},
	}
}

package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gregLibert/apdu/pkg/iso7816"
	"github.com/gregLibert/apdu/pkg/tlv"
)

// Payment System Environment of contact cards.
const pseName = "1PAY.SYS.DDF01"

// Tags read from the PSE FCI and directory records.
const (
	tagSFI   = "88"
	tagAID   = "4F"
	tagLabel = "50"
)

// maxRecord is the highest record number READ RECORD can address in an SFI.
const maxRecord = 30

// NewPSECommand walks the payment system directory: SELECT the PSE, read
// its directory records and SELECT every application listed.
func NewPSECommand(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "pse",
		Short: "Explore the Payment System Environment (1PAY.SYS.DDF01)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, card, err := c.client()
			if err != nil {
				return err
			}
			defer card.Close()

			fmt.Fprintf(c.out(), ">> ATR: %s (%s)\n", card.ATR(), card.Protocol())

			x := pseExplorer{ctx: c.Context, client: client, out: c.out(), log: c.logger}
			return x.run()
		},
	}
}

type pseExplorer struct {
	ctx    context.Context
	client *iso7816.Client
	out    io.Writer
	log    *zap.Logger
	cla    iso7816.Class
}

func (x *pseExplorer) run() error {
	sfi, err := x.selectPSE()
	if err != nil {
		return err
	}
	if sfi == 0 {
		fmt.Fprintln(x.out, "\n>> No directory SFI in the PSE FCI.")
		return nil
	}

	aids, err := x.readDirectory(sfi)
	if err != nil {
		return err
	}
	return x.selectApplications(aids)
}

func (x *pseExplorer) section(title string) {
	fmt.Fprintln(x.out, "\n=============================================")
	fmt.Fprintf(x.out, " %s\n", title)
	fmt.Fprintln(x.out, "=============================================")
}

// selectPSE selects the PSE and returns the SFI of its directory.
func (x *pseExplorer) selectPSE() (byte, error) {
	x.section("Step 1: SELECT PSE (" + pseName + ")")

	cmd, err := iso7816.SelectByAID(x.cla, []byte(pseName))
	if err != nil {
		return 0, err
	}
	res, err := x.client.Send(x.ctx, cmd)
	if err != nil {
		return 0, fmt.Errorf("selecting PSE: %w", err)
	}
	fmt.Fprintln(x.out, res.Trace.Describe())

	if !res.Status.IsSuccess() {
		return 0, fmt.Errorf("PSE selection failed with status: %s", res.Status.Verbose())
	}

	sfi, found, err := tlv.Find(res.Response.Data(), tagSFI)
	if err != nil {
		return 0, fmt.Errorf("parsing PSE FCI: %w", err)
	}
	if !found || len(sfi) != 1 {
		return 0, nil
	}
	return sfi[0], nil
}

// readDirectory reads records until 'Record not found' and collects the
// AIDs they list.
func (x *pseExplorer) readDirectory(sfi byte) ([][]byte, error) {
	x.section(fmt.Sprintf("Step 2: EXPLORING DIRECTORY (SFI %d)", sfi))

	var aids [][]byte
	for rec := byte(1); rec <= maxRecord; rec++ {
		cmd, err := iso7816.ReadRecord(x.cla, sfi, rec)
		if err != nil {
			return nil, err
		}
		res, err := x.client.Send(x.ctx, cmd)
		if err != nil {
			return nil, fmt.Errorf("reading record %d: %w", rec, err)
		}

		if res.Status == iso7816.SW_ERR_RECORD_NOT_FOUND {
			fmt.Fprintf(x.out, "\n>> Status %s received: End of Directory reached.\n", res.Status)
			break
		}
		fmt.Fprintf(x.out, "\n[Record #%d]\n%s\n", rec, res.Trace.Describe())
		if !res.Status.IsSuccess() {
			continue
		}

		data := res.Response.Data()
		found, err := tlv.FindAll(data, tagAID)
		if err != nil {
			x.log.Warn("malformed directory record", zap.Uint8("record", rec), zap.Error(err))
			continue
		}
		label, _, _ := tlv.Find(data, tagLabel)
		for _, aid := range found {
			fmt.Fprintf(x.out, "      [+] Adding Candidate AID: %X (%s)\n", aid, tlv.MakeSafeASCII(label))
			aids = append(aids, aid)
		}
	}
	return aids, nil
}

func (x *pseExplorer) selectApplications(aids [][]byte) error {
	x.section(fmt.Sprintf("Step 3: SELECTING CANDIDATE APPLICATIONS (%d found)", len(aids)))

	for i, aid := range aids {
		fmt.Fprintf(x.out, "\n [App %d/%d] Selecting AID: %X\n", i+1, len(aids), aid)

		cmd, err := iso7816.SelectByAID(x.cla, aid)
		if err != nil {
			x.log.Warn("invalid AID", zap.Binary("aid", aid), zap.Error(err))
			continue
		}
		res, err := x.client.Send(x.ctx, cmd)
		if err != nil {
			return fmt.Errorf("selecting AID %X: %w", aid, err)
		}
		fmt.Fprintln(x.out, res.Trace.Describe())
	}
	return nil
}

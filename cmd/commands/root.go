package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gregLibert/apdu/pkg/config"
	"github.com/gregLibert/apdu/pkg/iso7816"
	"github.com/gregLibert/apdu/pkg/octet"
	"github.com/gregLibert/apdu/pkg/pcsc"
)

// Card is an open card connection.
type Card interface {
	iso7816.Transmitter
	Protocol() iso7816.Protocol
	ATR() octet.Buffer
	// Client returns an exchange client bound to the negotiated protocol.
	Client() *iso7816.Client
	Close()
}

// Connector opens the reader at index.
type Connector func(index int, pref pcsc.Preference, logger *zap.Logger) (Card, error)

// ConnectPCSC is the Connector backed by the system PC/SC service.
func ConnectPCSC(index int, pref pcsc.Preference, logger *zap.Logger) (Card, error) {
	conn, err := pcsc.Connect(index, pref, logger)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Context represents root command context shared with its children
type Context struct {
	Context context.Context
	Out     io.Writer
	Connect Connector
	// ListReaders defaults to pcsc.ListReaders.
	ListReaders func() ([]string, error)

	config *config.Config
	logger *zap.Logger
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// client connects to the configured reader. The caller closes the card.
func (c *Context) client() (*iso7816.Client, Card, error) {
	connect := c.Connect
	if connect == nil {
		connect = ConnectPCSC
	}
	card, err := connect(c.config.Reader.Index, pcsc.Preference(c.config.Reader.Protocol), c.logger)
	if err != nil {
		return nil, nil, err
	}
	return card.Client(), card, nil
}

// NewRootCommand returns new root command
func NewRootCommand(c *Context, name string) *cobra.Command {
	var (
		level      string
		configFile string
		jsonLog    bool
		reader     int
		protocol   string
	)

	rootCmd := cobra.Command{
		Use:           name,
		Short:         "Send ISO/IEC 7816-4 commands to a smart card",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.Load(configFile)
			if err != nil {
				return err
			}

			// Flags take priority over the config file.
			f := cmd.Flags()
			if f.Changed("log") {
				conf.Log.Level = level
			}
			if jsonLog {
				conf.Log.Format = "json"
			}
			if f.Changed("reader") {
				conf.Reader.Index = reader
			}
			if f.Changed("protocol") {
				conf.Reader.Protocol = protocol
			}
			if err := config.Validator().Struct(conf); err != nil {
				return fmt.Errorf("invalid flags: %w", err)
			}

			logger, err := conf.Log.Logger()
			if err != nil {
				return err
			}

			c.config = conf
			c.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	f := rootCmd.PersistentFlags()

	f.StringVarP(&configFile, "config", "c", "", "Config file path")
	f.StringVar(&level, "log", "info", "Log level: [error, warn, info, debug]")
	f.BoolVar(&jsonLog, "json-log", false, "Use JSON structured logs")
	f.IntVarP(&reader, "reader", "r", 0, "Reader index. Takes priority over the config file")
	f.StringVarP(&protocol, "protocol", "p", "auto", "Protocol: [auto, t0, t1]. Takes priority over the config file")

	rootCmd.AddCommand(
		NewReadersCommand(c),
		NewSendCommand(c),
		NewGetDataCommand(c),
		NewRunCommand(c),
		NewPSECommand(c),
		NewParseCommand(c),
		NewStatusCommand(c),
	)

	return &rootCmd
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/hejijunhao/qrsheet/internal/config"
	"github.com/hejijunhao/qrsheet/internal/logging"
)

// app carries state shared by every subcommand.
type app struct {
	cfgFile  string
	logLevel string
	cfg      config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "qrsheet",
		Short: "Normalize QR code payloads into spreadsheet rows",
		Long: `qrsheet turns decoded QR payloads (JSON, URLs, a=1&b=2 query strings,
a:1, b=2 pairs or plain text) into ordered records and two-line CSV blocks,
and can forward them to a spreadsheet endpoint.

Usage:
  qrsheet normalize <text> [flags]
  qrsheet serve [flags]`,
		Version:           config.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.load,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "YAML config file (optional)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")

	root.AddCommand(newNormalizeCmd(a), newServeCmd(a), newVersionCmd())
	return root
}

// load reads configuration and sets up logging before any subcommand runs.
// Commands that print scans to stdout log JSON to stderr so the two streams
// stay easy to separate.
func (a *app) load(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	logging.Init(cmd.Name() == "normalize", logging.ParseLevel(cfg.Log.Level))
	return nil
}

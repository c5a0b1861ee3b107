package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hejijunhao/qrsheet/internal/engine"
	"github.com/hejijunhao/qrsheet/internal/input"
	"github.com/hejijunhao/qrsheet/internal/output"
	"github.com/hejijunhao/qrsheet/internal/output/file"
	"github.com/hejijunhao/qrsheet/internal/output/multi"
	"github.com/hejijunhao/qrsheet/internal/output/sheets"
	"github.com/hejijunhao/qrsheet/internal/output/stdout"
	"github.com/hejijunhao/qrsheet/internal/pipeline"
)

var successColor = color.New(color.FgGreen, color.Bold)

type normalizeFlags struct {
	file   string
	format string
	pretty bool
	send   bool
	out    string
}

func newNormalizeCmd(a *app) *cobra.Command {
	var f normalizeFlags
	cmd := &cobra.Command{
		Use:   "normalize [text]",
		Short: "Normalize one payload and print it as JSON or CSV",
		Long: `Normalize reads a payload from the arguments, --file, or stdin, and
prints its canonical record.

Examples:
  qrsheet normalize 'a=1&b=2'
  qrsheet normalize --format csv 'https://shop.test/item?sku=A12'
  zbarimg -q --raw code.png | qrsheet normalize --send`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runNormalize(cmd, args, f)
		},
	}
	cmd.Flags().StringVar(&f.file, "file", "", "read the payload from a file")
	cmd.Flags().StringVar(&f.format, "format", "", "output format: json or csv (default from config)")
	cmd.Flags().BoolVar(&f.pretty, "pretty", false, "indent JSON output")
	cmd.Flags().BoolVar(&f.send, "send", false, "also submit the scan to the sheets endpoint")
	cmd.Flags().StringVar(&f.out, "out", "", "append the scan to a file")
	return cmd
}

func (a *app) runNormalize(cmd *cobra.Command, args []string, f normalizeFlags) error {
	if f.file != "" && len(args) > 0 {
		return errors.New("pass the payload as arguments or --file, not both")
	}
	raw, err := a.readPayload(cmd, args, f.file)
	if err != nil {
		return err
	}

	formatName := a.cfg.Output.Format
	if f.format != "" {
		formatName = f.format
	}
	format, err := output.ParseFormat(formatName)
	if err != nil {
		return err
	}
	pretty := f.pretty || a.cfg.Output.Pretty

	outs := []output.Output{stdout.New(cmd.OutOrStdout(), format, pretty)}

	path := a.cfg.Output.File
	if f.out != "" {
		path = f.out
	}
	if path != "" {
		opts := []file.Option{file.WithMaxSize(a.cfg.Output.FileMaxBytes)}
		if pretty {
			opts = append(opts, file.WithPretty())
		}
		fo, err := file.New(path, format, opts...)
		if err != nil {
			return err
		}
		outs = append(outs, fo)
	}

	if f.send {
		if a.cfg.Sheets.Endpoint == "" {
			return errors.New("--send needs sheets.endpoint (or QRSHEET_SHEETS_ENDPOINT / VITE_SHEETS_ENDPOINT)")
		}
		outs = append(outs, a.sheetsOutput())
	}

	p := pipeline.New(engine.New(), multi.New(outs...))
	scan, err := p.Handle(cmd.Context(), raw)
	if cerr := p.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	if f.send {
		successColor.Fprintf(cmd.ErrOrStderr(), "✓ sent %s\n", scan.ID)
	}
	return nil
}

func (a *app) readPayload(cmd *cobra.Command, args []string, path string) (string, error) {
	limit := a.cfg.Server.MaxPayloadBytes
	switch {
	case path != "":
		return input.ReadFile(path, limit)
	case len(args) > 0:
		return strings.Join(args, " "), nil
	default:
		raw, err := input.Read(cmd.InOrStdin(), limit)
		if errors.Is(err, input.ErrTooLarge) {
			return "", fmt.Errorf("stdin: %w (limit %d bytes)", err, limit)
		}
		return raw, err
	}
}

func (a *app) sheetsOutput() *sheets.Output {
	return sheets.New(a.cfg.Sheets.Endpoint,
		sheets.WithHeaders(a.cfg.Sheets.Headers),
		sheets.WithTimeout(a.cfg.Sheets.Timeout),
		sheets.WithRetries(a.cfg.Sheets.Retries),
	)
}

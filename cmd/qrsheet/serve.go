package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hejijunhao/qrsheet/internal/engine"
	"github.com/hejijunhao/qrsheet/internal/output"
	"github.com/hejijunhao/qrsheet/internal/output/async"
	"github.com/hejijunhao/qrsheet/internal/output/file"
	"github.com/hejijunhao/qrsheet/internal/output/multi"
	"github.com/hejijunhao/qrsheet/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP normalization service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			srv, err := a.newServer()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

// newServer wires the submit outputs from config. Spreadsheet submissions
// go through an async buffer so /submit answers without waiting on the
// endpoint.
func (a *app) newServer() (*server.Server, error) {
	opts := []server.Option{server.WithMaxPayloadBytes(a.cfg.Server.MaxPayloadBytes)}

	var outs []output.Output
	if a.cfg.Sheets.Endpoint != "" {
		outs = append(outs, async.New(a.sheetsOutput(), async.WithBufferSize(a.cfg.Server.AsyncBuffer)))
	}
	if a.cfg.Output.File != "" {
		format, err := output.ParseFormat(a.cfg.Output.Format)
		if err != nil {
			return nil, err
		}
		fo, err := file.New(a.cfg.Output.File, format, file.WithMaxSize(a.cfg.Output.FileMaxBytes))
		if err != nil {
			return nil, err
		}
		outs = append(outs, fo)
	}
	if len(outs) > 0 {
		opts = append(opts, server.WithSubmitter(multi.New(outs...)))
	}
	return server.New(engine.New(), opts...), nil
}

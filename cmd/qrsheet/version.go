package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hejijunhao/qrsheet/internal/config"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "qrsheet %s\n", config.Version)
		},
	}
}

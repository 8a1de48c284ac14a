package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vmorsell/volctl/internal/volume"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the master volume whenever it changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		listener := volume.NewListener(ctrl, cfg.PollInterval())
		changes, err := listener.Listen(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%d%%\n", listener.Current())
		for v := range changes {
			fmt.Fprintf(out, "%d%%\n", v)
		}
		return nil
	},
}

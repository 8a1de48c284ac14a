package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vmorsell/volctl/internal/agent"
)

var syncOpts struct {
	relayURL string
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Keep the master volume in sync with a relay",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		relayURL := cfg.Agent.RelayURL
		if syncOpts.relayURL != "" {
			relayURL = syncOpts.relayURL
		}

		a := agent.New(logger, ctrl, agent.Config{
			RelayURL:       relayURL,
			PollInterval:   cfg.PollInterval(),
			ReconnectDelay: cfg.ReconnectDelay(),
		})
		err := a.Run(ctx)
		logger.Info("shutting down")
		return err
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncOpts.relayURL, "relay", "", "relay websocket URL (overrides agent.relay_url)")
}

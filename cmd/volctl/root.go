// Package main provides the volctl command line tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vmorsell/volctl/internal/config"
	"github.com/vmorsell/volctl/internal/logging"
	"github.com/vmorsell/volctl/internal/volume"
	"go.uber.org/zap"
)

// Build-time variables (set via ldflags)
var (
	version = "dev"
	commit  = "unknown"
)

var (
	cfg        *config.Config
	logger     *zap.Logger
	ctrl       *volume.Controller
	globalOpts struct {
		configPath string
		verbose    bool
	}

	newController = func(l *zap.Logger) *volume.Controller {
		return volume.NewController(l)
	}
)

var rootCmd = &cobra.Command{
	Use:           "volctl",
	Short:         "Read and control the system master volume",
	Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if globalOpts.verbose {
			cfg.Log.Level = "debug"
			cfg.Log.Development = true
		}
		logger, err = logging.New(cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		ctrl = newController(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/volctl/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(getCmd, setCmd, watchCmd, syncCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

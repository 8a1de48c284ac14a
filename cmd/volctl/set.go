package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vmorsell/volctl/internal/volume"
)

var setOpts struct {
	clamp bool
}

var setCmd = &cobra.Command{
	Use:   "set <percent>",
	Short: "Set the master volume (0-100)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := parsePercent(args[0])
		if err != nil {
			return err
		}
		if setOpts.clamp {
			v = volume.Clamp(v)
		}
		if err := ctrl.SetVolume(cmd.Context(), v); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d%%\n", v)
		return nil
	},
}

func init() {
	setCmd.Flags().BoolVar(&setOpts.clamp, "clamp", false, "clamp out-of-range values instead of failing")
}

// parsePercent accepts "40" and "40%".
func parsePercent(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if err != nil {
		return 0, fmt.Errorf("invalid volume %q: %w", s, err)
	}
	return v, nil
}

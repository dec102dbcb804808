package cmd

import (
	"github.com/spf13/cobra"

	"github.com/armadaproject/tierprobe/internal/tierprobe"
)

// Create the tiers table and write the tiers listed under probability::tiers into it.
func seedCmd(app *tierprobe.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the tiers table and populate it from configuration.",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, app)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Seed(cmdContext(cmd))
		},
	}
	return cmd
}

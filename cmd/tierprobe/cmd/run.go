package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/armadaproject/tierprobe/internal/tierprobe"
)

const (
	runsFlag    = "runs"
	compareFlag = "compare"
	outputFlag  = "output"
)

// Execute the selection query runCount times and print the histogram.
// Interrupting the run still prints what was tallied so far.
func runCmd(app *tierprobe.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Sample the tier selection query and print how often each tier was selected.",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initParams(cmd, app); err != nil {
				return err
			}
			compare, err := cmd.Flags().GetBool(compareFlag)
			if err != nil {
				return errors.Wrapf(err, "error reading %s", compareFlag)
			}
			output, err := cmd.Flags().GetString(outputFlag)
			if err != nil {
				return errors.Wrapf(err, "error reading %s", outputFlag)
			}
			app.Params.Compare = compare
			app.Params.Output = output
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd, app)
		},
	}
	cmd.Flags().Int(runsFlag, 0, "Number of times to execute the selection query, overrides runCount from config.")
	cmd.Flags().Bool(compareFlag, false, "Also print observed against configured probabilities.")
	cmd.Flags().StringP(outputFlag, "o", tierprobe.OutputText, "Output format, one of text or yaml.")
	return cmd
}

func runApp(cmd *cobra.Command, app *tierprobe.App) error {
	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.Run(ctx)
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

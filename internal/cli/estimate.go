package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Delyplott/DelyPlot-Web/internal/analysis"
	"github.com/Delyplott/DelyPlot-Web/internal/format"
	"github.com/Delyplott/DelyPlot-Web/internal/models"
	"github.com/Delyplott/DelyPlot-Web/internal/quote"
)

// NewEstimateCommand prices a local file with the shop's formula without
// submitting anything.
func NewEstimateCommand(rootOpts *RootOptions) *cobra.Command {
	var options models.Options

	cmd := &cobra.Command{
		Use:           "estimate <file>",
		Short:         "Estimate the price of a local file",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEstimate(args[0], options, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&options.Color, "color", quote.ColorBlackWhite, "color mode")
	cmd.Flags().StringVar(&options.Delivery, "delivery", quote.DeliveryPickup, "delivery")

	return cmd
}

func runEstimate(path string, options models.Options, out io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read file", err)
	}

	result, err := analysis.Analyze(path, data)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to analyze file", err)
	}
	q := quote.Calculate(options, result)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, step := range q.Steps {
		fmt.Fprintf(tw, "%s\t%s\n", step.Label, step.Value)
	}
	tw.Flush()
	fmt.Fprintf(out, "Total: %s\n", format.CLP(q.TotalCLP))
	return nil
}

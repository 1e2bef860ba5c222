package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arslanmit/istanbul-transportation-network/pkg/graphio"
	"github.com/arslanmit/istanbul-transportation-network/pkg/netgraph"
	"github.com/arslanmit/istanbul-transportation-network/pkg/pipeline"
)

// loadCommand creates the load command for building the network graph
// from the input tables.
func (c *CLI) loadCommand() *cobra.Command {
	var (
		stopsPath string
		linesPath string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Build the network graph from stop and line tables",
		Long: `Build the network graph from stop and line tables.

The load command reads the stop table (id, name, lat, lon) and the line
table (id, ordered stop list), expands each line into consecutive stop
pairs, and aggregates them into a directed graph with per-edge service
frequencies. Self-loop traversals are skipped with a warning.

Use --output to export the graph as JSON for later analysis.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLoad(stopsPath, linesPath, output)
		},
	}

	cmd.Flags().StringVarP(&stopsPath, "stops", "s", "", "stop table CSV (required)")
	cmd.Flags().StringVarP(&linesPath, "lines", "l", "", "line table CSV (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the network graph as JSON")
	_ = cmd.MarkFlagRequired("stops")
	_ = cmd.MarkFlagRequired("lines")

	return cmd
}

func (c *CLI) runLoad(stopsPath, linesPath, output string) error {
	runner := pipeline.NewRunner(nil, nil, c.Logger)
	prog := newProgress(c.Logger)

	loaded, err := runner.Load(pipeline.Options{
		StopsPath: stopsPath,
		LinesPath: linesPath,
		Logger:    c.Logger,
	})
	if err != nil {
		return err
	}

	g, skipped, err := netgraph.Build(loaded.Stops, loaded.Records)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Built network from %d stops and %d traversals", len(loaded.Stops), len(loaded.Records)))

	if skipped > 0 {
		printWarning("Skipped %d self-loop traversals", skipped)
	}

	printSuccess("Network built")
	printStats(g.NodeCount(), g.EdgeCount(), false)

	if output != "" {
		if err := graphio.ExportJSON(g, output); err != nil {
			return err
		}
		printFile(output)
	}

	printNewline()
	printNextStep("Analyze centrality", fmt.Sprintf("transitnet analyze -s %s -l %s", stopsPath, linesPath))
	return nil
}

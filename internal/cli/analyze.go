package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/arslanmit/istanbul-transportation-network/pkg/config"
	"github.com/arslanmit/istanbul-transportation-network/pkg/netgraph"
	"github.com/arslanmit/istanbul-transportation-network/pkg/pipeline"
)

// analyzeCommand creates the analyze command for computing centrality.
func (c *CLI) analyzeCommand() *cobra.Command {
	var (
		stopsPath   string
		linesPath   string
		output      string
		cutoff      int
		threshold   float64
		filter      bool
		topK        int
		noCache     bool
		refresh     bool
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compute weights and betweenness, print the stop ranking",
		Long: `Compute weights and betweenness, print the stop ranking.

Edge weights are derived from service frequency: the natural log of each
edge frequency, normalized to [0, 1] so that the busiest connection costs
the least. Shortest-path betweenness then runs over these weights, with
paths bounded by --cutoff hops.

With --filter, edges whose log betweenness falls below --threshold are
dropped from the network before reporting, leaving only the structurally
important corridors.

Results are cached by input content and parameters; use --refresh to
force recomputation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			opts := pipelineOptions(cfg)
			opts.StopsPath = stopsPath
			opts.LinesPath = linesPath
			opts.Refresh = refresh
			opts.Filter = filter
			opts.Formats = []string{pipeline.FormatJSON}
			if cmd.Flags().Changed("cutoff") {
				opts.Cutoff = cutoff
			}
			if cmd.Flags().Changed("threshold") {
				opts.EdgeThreshold = &threshold
			}
			if cmd.Flags().Changed("top") {
				opts.TopK = topK
			}

			return c.runAnalyze(cmd, cfg, opts, output, noCache, interactive)
		},
	}

	cmd.Flags().StringVarP(&stopsPath, "stops", "s", "", "stop table CSV (required)")
	cmd.Flags().StringVarP(&linesPath, "lines", "l", "", "line table CSV (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the analyzed network as JSON")
	cmd.Flags().IntVar(&cutoff, "cutoff", pipeline.DefaultCutoff, "betweenness path cutoff in hops (-1 for unbounded)")
	cmd.Flags().Float64Var(&threshold, "threshold", pipeline.DefaultEdgeThreshold, "log-betweenness filter threshold")
	cmd.Flags().BoolVar(&filter, "filter", false, "drop edges below the threshold")
	cmd.Flags().IntVar(&topK, "top", pipeline.DefaultTopK, "number of stops in the ranking")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even when cached")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse the ranking interactively")
	_ = cmd.MarkFlagRequired("stops")
	_ = cmd.MarkFlagRequired("lines")

	return cmd
}

func (c *CLI) runAnalyze(cmd *cobra.Command, cfg config.Config, opts pipeline.Options, output string, noCache, interactive bool) error {
	ctx := cmd.Context()

	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Analyzing network...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Analysis failed")
		return err
	}
	spinner.Stop()

	printSuccess("Analysis complete")
	printStats(result.Stats.StopCount, result.Stats.EdgeCount, result.CacheInfo.AnalysisHit)
	if result.Degenerate {
		printWarning("All edge frequencies equal, weights are uniform")
	}
	if result.SkippedLoops > 0 {
		printWarning("Skipped %d self-loop traversals", result.SkippedLoops)
	}

	if output != "" {
		if err := os.WriteFile(output, result.Artifacts[pipeline.FormatJSON], 0o644); err != nil {
			return err
		}
		printFile(output)
	}

	if interactive {
		return browseRanking(result.Ranking)
	}

	printNewline()
	printRankingTable(result.Ranking)
	printNewline()
	printNextStep("Render the map", fmt.Sprintf("transitnet render -s %s -l %s", opts.StopsPath, opts.LinesPath))
	return nil
}

// printRankingTable prints the top stops as a bordered table.
func printRankingTable(ranking []netgraph.RankedStop) {
	if len(ranking) == 0 {
		printInfo("No stops to rank")
		return
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, 0, len(ranking))
	for _, s := range ranking {
		rows = append(rows, []string{
			fmt.Sprintf("%d", s.Rank),
			s.Name,
			fmt.Sprintf("%.5f", s.Betweenness),
			fmt.Sprintf("%.3f", s.LogBetweenness),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Stop", "Betweenness", "log").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return StyleDim
			}
			if col == 1 {
				return StyleValue
			}
			return StyleNumber
		})

	fmt.Println(t.Render())
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/topic-tree/internal/draft"
	"github.com/pdiddy/topic-tree/internal/expand"
	"github.com/pdiddy/topic-tree/internal/render"
	"github.com/pdiddy/topic-tree/internal/tree"
	"github.com/pdiddy/topic-tree/pkg/types"
)

const (
	defaultRootTopic = "Machine Learning"
	depthPrompt      = "Enter the level of sub-leveling (1-10): "
)

var buildCmd = &cobra.Command{
	Use:   "build [topic]",
	Short: "Generate a topic tree and write it as an HTML graph",
	Long: `Build grows a topic tree from a root keyword (default "Machine Learning")
down to --depth levels and writes an interactive graph to --output.

When --depth is not given the depth is read from standard input. With
--metrics each topic is colored by its monthly search volume; with --drafts
every newly discovered topic is drafted into a blog post and published to
WordPress.`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindMetricsCache(viper.GetViper(), cmd)
	},
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().String("topic", "", "root topic (default \"Machine Learning\")")
	buildCmd.Flags().Int("depth", 0, "number of levels to expand, 1-10 (prompted when omitted)")
	buildCmd.Flags().Int("branch", expand.DefaultCount, "sub-topics requested per topic, 1-10")
	buildCmd.Flags().Bool("metrics", false, "fetch keyword search volumes")
	buildCmd.Flags().Bool("drafts", false, "draft and publish a blog post for each new topic")
	buildCmd.Flags().Int("min-words", draft.DefaultWordCount, "minimum draft length in words")
	buildCmd.Flags().Bool("physics", false, "enable physics in the rendered graph")
	buildCmd.Flags().Bool("hierarchical", false, "use a hierarchical layout in the rendered graph")
	buildCmd.Flags().String("output", render.DefaultOutputFile, "HTML output file")
	buildCmd.Flags().String("export", "", "also write the result to a .yaml or .json file")
	buildCmd.Flags().String("metrics-cache", "", "SQLite file caching keyword volumes")
	buildCmd.Flags().Bool("print-log", true, "print the detailed progress log")

	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	topic, _ := cmd.Flags().GetString("topic")
	if topic == "" && len(args) > 0 {
		topic = args[0]
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = defaultRootTopic
	}

	depth, _ := cmd.Flags().GetInt("depth")
	if !cmd.Flags().Changed("depth") {
		d, err := promptDepth(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
		depth = d
	}

	branch, _ := cmd.Flags().GetInt("branch")
	fetchMetrics, _ := cmd.Flags().GetBool("metrics")
	drafts, _ := cmd.Flags().GetBool("drafts")
	minWords, _ := cmd.Flags().GetInt("min-words")

	cfg := types.TreeConfig{
		RootTopic:     topic,
		MaxLevel:      depth,
		BranchFactor:  branch,
		FetchMetrics:  fetchMetrics,
		PublishDrafts: drafts,
		MinWordCount:  minWords,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	w, err := wire(viper.GetViper(), loadedSecrets, need{metrics: fetchMetrics, publish: drafts}, logger)
	if err != nil {
		return err
	}
	defer w.Close()

	res, err := w.builder.Build(context.Background(), cfg)
	if err != nil {
		return err
	}

	physics, _ := cmd.Flags().GetBool("physics")
	hierarchical, _ := cmd.Flags().GetBool("hierarchical")
	opts := render.DefaultOptions()
	opts.Physics = physics
	opts.Hierarchical = hierarchical

	output, _ := cmd.Flags().GetString("output")
	if err := render.WriteHTMLFile(output, topic, res.Nodes, res.Edges, opts); err != nil {
		return err
	}

	exportPath, _ := cmd.Flags().GetString("export")
	if exportPath != "" {
		if err := render.ExportFile(exportPath, res); err != nil {
			return err
		}
	}

	printLog, _ := cmd.Flags().GetBool("print-log")
	out := cmd.OutOrStdout()
	if printLog {
		writeLog(out, res)
	}
	writeSummary(out, res, output, exportPath)
	return nil
}

// promptDepth asks for the number of levels on out and reads it from in.
func promptDepth(in io.Reader, out io.Writer) (int, error) {
	fmt.Fprint(out, depthPrompt)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return 0, fmt.Errorf("reading depth: %w", err)
	}
	line = strings.TrimSpace(line)
	depth, err := strconv.Atoi(line)
	if err != nil {
		return 0, fmt.Errorf("invalid depth %q: enter a number from 1 to 10", line)
	}
	return depth, nil
}

func writeLog(w io.Writer, res *tree.Result) {
	for _, line := range res.Log {
		fmt.Fprintln(w, line)
	}
}

func writeSummary(w io.Writer, res *tree.Result, output, exportPath string) {
	fmt.Fprintf(w, "\nTopic tree for %q: %d topics, %d links, %.2f seconds\n",
		res.Config.RootTopic, len(res.Nodes), len(res.Edges), res.Elapsed.Seconds())

	if len(res.Metrics) > 0 {
		known := 0
		for _, m := range res.Metrics {
			if m.Volume.Known() {
				known++
			}
		}
		fmt.Fprintf(w, "Keyword data: %d of %d keywords with search volume\n", known, len(res.Metrics))
	}
	if len(res.Published) > 0 {
		fmt.Fprintf(w, "Published %d draft(s)\n", len(res.Published))
	}
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}

	fmt.Fprintf(w, "Graph written to %s\n", output)
	if exportPath != "" {
		fmt.Fprintf(w, "Exported to %s\n", exportPath)
	}
}

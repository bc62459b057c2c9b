package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lioia/pagerank/pkg/graph"
	"github.com/lioia/pagerank/pkg/pagerank"
	"github.com/lioia/pagerank/pkg/render"
	"github.com/lioia/pagerank/pkg/sink"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compute PageRank once and write the rows as CSV or text",
	RunE:  runPageRank,
}

func init() {
	addSourceFlags(runCmd)
	runCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	runCmd.Flags().Bool("text", false, "write \"Node <id> with rank <r>\" lines instead of CSV")
	runCmd.Flags().String("render", "", "also render the ranked graph (.dot, .svg, .png)")
	rootCmd.AddCommand(runCmd)
}

func runPageRank(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	src, closeSrc, err := openSource(ctx, cmd, cfg)
	if err != nil {
		return err
	}
	defer closeSrc()

	var w io.Writer = os.Stdout
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("could not create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	var out pagerank.Sink
	var flush func() error
	if text, _ := cmd.Flags().GetBool("text"); text {
		out, flush = sink.NewText(w), func() error { return nil }
	} else {
		csv := sink.NewCSV(w)
		out, flush = csv, csv.Flush
	}

	summary, err := pagerank.Run(ctx, src, cfg.Params, outputMode(cmd), out)
	if err != nil {
		return err
	}
	if err := flush(); err != nil {
		return fmt.Errorf("%w: %w", pagerank.ErrSinkWriteFailed, err)
	}
	fmt.Fprintf(os.Stderr, "run %s: %d vertices, %d edges, %d iterations (converged: %t)\n",
		summary.RunID, summary.Vertices, summary.Edges, summary.Iterations, summary.Converged)

	if path, _ := cmd.Flags().GetString("render"); path != "" {
		return renderGraph(ctx, src, cfg.Params, path)
	}
	return nil
}

// renderGraph solves src again and draws it to path, in the format given
// by the extension
func renderGraph(ctx context.Context, src graph.Source, params pagerank.Params, path string) error {
	format, err := render.ParseFormat(filepath.Ext(path))
	if err != nil {
		return err
	}
	topo, err := pagerank.Ingest(ctx, src)
	if err != nil {
		return err
	}
	sol, err := pagerank.Solve(topo, params)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create render output: %w", err)
	}
	defer f.Close()
	return render.Render(topo, sol.Ranks, format, f)
}

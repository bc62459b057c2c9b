package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lioia/pagerank/pkg/config"
	"github.com/lioia/pagerank/pkg/graph"
	"github.com/lioia/pagerank/pkg/pagerank"
	"github.com/lioia/pagerank/pkg/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:          "pagerank",
	Short:        "Compute PageRank over edge lists, SQL and DynamoDB graphs",
	SilenceUsage: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.Float64("damping-factor", pagerank.DefaultDampingFactor, "damping factor, in (0, 1)")
	flags.Int("max-iterations", pagerank.DefaultMaxIterations, "maximum number of iterations")
	flags.Float64("stop-epsilon", pagerank.DefaultStopEpsilon, "convergence threshold")
	flags.Bool("reduced", false, "emit only external id and out-degree")
	flags.Bool("compute-log", false, "log pipeline progress")
	flags.Bool("server-log", false, "log server and worker activity")

	bind(config.KeyDampingFactor, "damping-factor")
	bind(config.KeyMaxIterations, "max-iterations")
	bind(config.KeyStopEpsilon, "stop-epsilon")
	bind(config.KeyComputeLog, "compute-log")
	bind(config.KeyServerLog, "server-log")
}

func bind(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

// loadConfig reads the configuration and sets up logging
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return cfg, err
	}
	utils.InitLog(cfg.ComputeLog, cfg.ServerLog)
	return cfg, nil
}

func outputMode(cmd *cobra.Command) pagerank.Mode {
	if reduced, _ := cmd.Flags().GetBool("reduced"); reduced {
		return pagerank.ModeReduced
	}
	return pagerank.ModeFull
}

// objectStore returns the S3 store for s3:// resources, or nil when no
// endpoint is configured
func objectStore(cfg config.Config) (graph.ObjectStore, error) {
	if cfg.S3Endpoint == "" {
		return nil, nil
	}
	store, err := graph.NewS3Store(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Secure)
	if err != nil {
		return nil, fmt.Errorf("could not create object store: %w", err)
	}
	return store, nil
}

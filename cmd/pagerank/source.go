package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/lioia/pagerank/pkg/config"
	"github.com/lioia/pagerank/pkg/graph"
	"github.com/spf13/cobra"
)

// addSourceFlags registers the flags selecting where a graph is read from
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("graph", "", "edge list: local path, http(s) URL or s3://bucket/key")
	cmd.Flags().String("sql-driver", "", "database/sql driver (sqlite, mysql)")
	cmd.Flags().String("sql-dsn", "", "database/sql data source name")
	cmd.Flags().String("dynamo-table", "", "DynamoDB table holding the graph")
}

// sqlSettings merges the SQL flags over the configuration
func sqlSettings(cmd *cobra.Command, cfg config.Config) (driver, dsn string) {
	driver, dsn = cfg.SQLDriver, cfg.SQLDSN
	if v, _ := cmd.Flags().GetString("sql-driver"); v != "" {
		driver = v
	}
	if v, _ := cmd.Flags().GetString("sql-dsn"); v != "" {
		dsn = v
	}
	return driver, dsn
}

func dynamoTable(cmd *cobra.Command, cfg config.Config) string {
	if v, _ := cmd.Flags().GetString("dynamo-table"); v != "" {
		return v
	}
	return cfg.DynamoTable
}

// openSource returns the graph selected by the flags and a function
// releasing its connection, which is never nil
func openSource(ctx context.Context, cmd *cobra.Command, cfg config.Config) (src graph.Source, release func() error, err error) {
	noop := func() error { return nil }
	if resource, _ := cmd.Flags().GetString("graph"); resource != "" {
		store, err := objectStore(cfg)
		if err != nil {
			return nil, noop, err
		}
		g, err := graph.LoadGraph(ctx, resource, store)
		if err != nil {
			return nil, noop, fmt.Errorf("could not load %s: %w", resource, err)
		}
		return g, noop, nil
	}
	if driver, dsn := sqlSettings(cmd, cfg); dsn != "" {
		store, err := graph.OpenSQLStore(ctx, driver, dsn)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	}
	if table := dynamoTable(cmd, cfg); table != "" {
		client, err := graph.NewDynamoClient(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, noop, err
		}
		return graph.NewDynamoStore(client, table), noop, nil
	}
	return nil, noop, errors.New("no graph source: use --graph, --sql-dsn or --dynamo-table")
}

package main

import (
	"errors"
	"fmt"

	"github.com/lioia/pagerank/pkg/graph"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <edge list>",
	Short: "Store an edge list in a SQL database or a DynamoDB table",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().String("sql-driver", "", "database/sql driver (sqlite, mysql)")
	importCmd.Flags().String("sql-dsn", "", "database/sql data source name")
	importCmd.Flags().String("dynamo-table", "", "DynamoDB table holding the graph")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	store, err := objectStore(cfg)
	if err != nil {
		return err
	}
	g, err := graph.LoadGraph(ctx, args[0], store)
	if err != nil {
		return fmt.Errorf("could not load %s: %w", args[0], err)
	}

	if driver, dsn := sqlSettings(cmd, cfg); dsn != "" {
		db, err := graph.OpenSQLStore(ctx, driver, dsn)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.CreateSchema(ctx); err != nil {
			return err
		}
		if err := db.Import(ctx, g); err != nil {
			return err
		}
	} else if table := dynamoTable(cmd, cfg); table != "" {
		client, err := graph.NewDynamoClient(ctx, cfg.AWSRegion)
		if err != nil {
			return err
		}
		if err := graph.NewDynamoStore(client, table).Import(ctx, g); err != nil {
			return err
		}
	} else {
		return errors.New("no destination: use --sql-dsn or --dynamo-table")
	}
	fmt.Printf("Imported %d vertices and %d edges\n", g.NumVertices(), g.NumEdges())
	return nil
}

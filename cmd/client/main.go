package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/lioia/pagerank/pkg/pagerank"
	"github.com/lioia/pagerank/pkg/server"
	"github.com/lioia/pagerank/pkg/utils"
)

var api string  // Connection string of the server
var file string // Graph file
var reduced bool
var timeout time.Duration

func init() {
	flag.StringVar(&api, "api", "127.0.0.1:50051", "Ranker server connection")
	flag.StringVar(&file, "file", "graph.txt", "Graph file")
	flag.BoolVar(&reduced, "reduced", false, "Request only id and out-degree")
	flag.DurationVar(&timeout, "timeout", time.Minute, "Request timeout")
}

func main() {
	flag.Parse()

	bytes, err := os.ReadFile(file)
	utils.FailOnError("Failed to read file", err)

	client, err := server.Dial(api)
	utils.FailOnError("Failed to connect to server", err)
	defer client.Close()

	mode := pagerank.ModeFull
	if reduced {
		mode = pagerank.ModeReduced
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	results, err := client.Compute(ctx, bytes, pagerank.DefaultParams(), mode)
	utils.FailOnError("Server error", err)

	fields := results.GetFields()
	fmt.Printf("Run %s: %d iterations, converged: %t\n",
		fields["run_id"].GetStringValue(),
		int(fields["iterations"].GetNumberValue()),
		fields["converged"].GetBoolValue())
	for _, row := range fields["rows"].GetListValue().GetValues() {
		r := row.GetStructValue().GetFields()
		id := int64(r[pagerank.FieldExternalID].GetNumberValue())
		if mode == pagerank.ModeReduced {
			fmt.Printf("%d -> %d outlinks\n", id, int(r[pagerank.FieldOutCount].GetNumberValue()))
		} else {
			fmt.Printf("%d -> %f\n", id, r[pagerank.FieldRank].GetNumberValue())
		}
	}
}

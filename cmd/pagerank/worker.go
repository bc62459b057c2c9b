package main

import (
	"context"
	"errors"

	"github.com/lioia/pagerank/pkg/queue"
	"github.com/lioia/pagerank/pkg/utils"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume edge lists from RabbitMQ and publish the ranks",
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Connect to RabbitMQ
	conn, err := amqp.Dial(cfg.RabbitURL())
	utils.FailOnError("Could not connect to RabbitMQ", err)
	defer conn.Close()
	ch, err := conn.Channel()
	utils.FailOnError("Failed to open a channel to RabbitMQ", err)
	defer ch.Close()

	work, err := queue.DeclareQueue(cfg.WorkQueue, ch)
	utils.FailOnError("Failed to declare queue %s", err, cfg.WorkQueue)
	result, err := queue.DeclareQueue(cfg.ResultQueue, ch)
	utils.FailOnError("Failed to declare queue %s", err, cfg.ResultQueue)

	w := &queue.Worker{
		Channel:     ch,
		WorkQueue:   work.Name,
		ResultQueue: result.Name,
		Defaults:    cfg.Params,
	}
	if err := w.Run(cmd.Context()); !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Package queue runs PageRank jobs received over RabbitMQ and publishes the
// resulting rows to a result queue.
package queue

import (
	"context"
	"fmt"

	"github.com/lioia/pagerank/pkg/pagerank"
	"github.com/lioia/pagerank/pkg/sink"
	amqp "github.com/rabbitmq/amqp091-go"
	protobuf "google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	contentType = "application/x-protobuf"

	// Message types on the result queue ("type" header)
	TypeRow     = "row"
	TypeSummary = "summary"
)

// Publisher is the publishing side of *amqp.Channel
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Channel is the part of *amqp.Channel the worker uses
type Channel interface {
	Publisher
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

func DeclareQueue(name string, ch *amqp.Channel) (queue amqp.Queue, err error) {
	queue, err = ch.QueueDeclare(
		name,  // name
		false, // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return
	}
	if err = ch.Qos(1, 0, false); err != nil {
		return
	}
	return
}

// Sink publishes every record as a protobuf encoded structpb.Struct
type Sink struct {
	ch            Publisher
	queue         string
	correlationID string
}

func NewSink(ch Publisher, queue, correlationID string) *Sink {
	return &Sink{ch: ch, queue: queue, correlationID: correlationID}
}

func (s *Sink) Emit(ctx context.Context, rec pagerank.Record) error {
	row, err := sink.RecordToStruct(rec)
	if err != nil {
		return err
	}
	return s.publish(ctx, TypeRow, row)
}

// Finish publishes the run summary after the last row
func (s *Sink) Finish(ctx context.Context, summary *pagerank.Summary, runErr error) error {
	fields := map[string]any{
		"run_id":     summary.RunID,
		"vertices":   summary.Vertices,
		"edges":      summary.Edges,
		"iterations": summary.Iterations,
		"converged":  summary.Converged,
		"residual":   summary.Residual,
		"rows":       summary.Rows,
	}
	if runErr != nil {
		fields["error"] = runErr.Error()
	}
	msg, err := structpb.NewStruct(fields)
	if err != nil {
		return err
	}
	return s.publish(ctx, TypeSummary, msg)
}

func (s *Sink) publish(ctx context.Context, kind string, msg *structpb.Struct) error {
	data, err := protobuf.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", kind, err)
	}
	return s.ch.PublishWithContext(ctx,
		"",      // exchange
		s.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			DeliveryMode:  amqp.Transient, // queues are not durable
			ContentType:   contentType,
			CorrelationId: s.correlationID,
			Headers:       amqp.Table{"type": kind},
			Body:          data,
		})
}

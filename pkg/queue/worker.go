package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/lioia/pagerank/pkg/graph"
	"github.com/lioia/pagerank/pkg/pagerank"
	"github.com/lioia/pagerank/pkg/utils"
	gonanoid "github.com/matoous/go-nanoid/v2"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Job headers; missing ones fall back to the worker defaults
const (
	HeaderDampingFactor = "damping_factor"
	HeaderMaxIterations = "max_iterations"
	HeaderStopEpsilon   = "stop_epsilon"
	HeaderMode          = "mode"
)

// Worker consumes jobs (edge lists) from WorkQueue and publishes rows to
// ResultQueue
type Worker struct {
	Channel     Channel
	WorkQueue   string
	ResultQueue string
	Defaults    pagerank.Params
}

// Run handles deliveries until ctx is done or the channel closes
func (w *Worker) Run(ctx context.Context) error {
	// Register consumer
	msgs, err := w.Channel.Consume(
		w.WorkQueue, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("could not register a consumer: %w", err)
	}
	utils.ServerLog("Waiting for jobs on %s", w.WorkQueue)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			w.Handle(ctx, d)
		}
	}
}

// Handle runs a single job. Successful jobs are acked; failed ones are
// rejected without requeue since rerunning them gives the same failure.
func (w *Worker) Handle(ctx context.Context, d amqp.Delivery) {
	correlationID := d.CorrelationId
	if correlationID == "" {
		correlationID, _ = gonanoid.New()
	}
	out := NewSink(w.Channel, w.ResultQueue, correlationID)

	summary, err := w.run(ctx, correlationID, d, out)
	if ferr := out.Finish(ctx, summary, err); ferr != nil {
		utils.WarnLog("worker", "Could not publish summary of %s: %v", correlationID, ferr)
		if err == nil {
			err = ferr
		}
	}
	if err != nil {
		utils.WarnLog("worker", "Job %s failed: %v", correlationID, err)
		if nerr := d.Nack(false, false); nerr != nil {
			utils.WarnLog("worker", "Could not NACK job %s: %v", correlationID, nerr)
		}
		return
	}
	if aerr := d.Ack(false); aerr != nil {
		utils.WarnLog("worker", "Could not ACK job %s: %v", correlationID, aerr)
	}
}

func (w *Worker) run(ctx context.Context, runID string, d amqp.Delivery, out *Sink) (*pagerank.Summary, error) {
	summary := &pagerank.Summary{RunID: runID}
	params, mode, err := ParseHeaders(d.Headers, w.Defaults)
	if err != nil {
		return summary, err
	}
	g, err := graph.ParseEdgeList(d.Body)
	if err != nil {
		return summary, fmt.Errorf("%w: %w", pagerank.ErrInvalidParameter, err)
	}
	return pagerank.RunWithID(ctx, runID, g, params, mode, out)
}

// ParseHeaders reads the job parameters from the message headers
func ParseHeaders(headers amqp.Table, defaults pagerank.Params) (pagerank.Params, pagerank.Mode, error) {
	params := defaults
	var err error
	if v, ok := headers[HeaderDampingFactor]; ok {
		if params.DampingFactor, err = toFloat(v); err != nil {
			return params, pagerank.ModeFull, fmt.Errorf("%w: %s: %w", pagerank.ErrInvalidParameter, HeaderDampingFactor, err)
		}
	}
	if v, ok := headers[HeaderStopEpsilon]; ok {
		if params.StopEpsilon, err = toFloat(v); err != nil {
			return params, pagerank.ModeFull, fmt.Errorf("%w: %s: %w", pagerank.ErrInvalidParameter, HeaderStopEpsilon, err)
		}
	}
	if v, ok := headers[HeaderMaxIterations]; ok {
		if params.MaxIterations, err = toInt(v); err != nil {
			return params, pagerank.ModeFull, fmt.Errorf("%w: %s: %w", pagerank.ErrInvalidParameter, HeaderMaxIterations, err)
		}
	}
	mode := pagerank.ModeFull
	if v, ok := headers[HeaderMode]; ok {
		s, _ := v.(string)
		if mode, err = pagerank.ParseMode(s); err != nil {
			return params, mode, err
		}
	}
	return params, mode, params.Validate()
}

// Header values arrive typed by the publisher's client library
func toFloat(v any) (float64, error) {
	switch v := v.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(v, 64)
	}
	return 0, fmt.Errorf("unsupported type %T", v)
}

func toInt(v any) (int, error) {
	switch v := v.(type) {
	case int8:
		return int(v), nil
	case int16:
		return int(v), nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case string:
		return strconv.Atoi(v)
	}
	return 0, fmt.Errorf("unsupported type %T", v)
}

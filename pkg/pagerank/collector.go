package pagerank

import (
	"context"
	"fmt"
)

// Collector keeps emitted records in memory
type Collector struct {
	records []Record
	limit   int
}

// NewCollector accepts at most limit records (0 for no limit)
func NewCollector(limit int) *Collector {
	return &Collector{limit: limit}
}

func (c *Collector) Emit(_ context.Context, rec Record) error {
	if c.limit > 0 && len(c.records) >= c.limit {
		return fmt.Errorf("collector full (%d records)", c.limit)
	}
	c.records = append(c.records, rec)
	return nil
}

func (c *Collector) Records() []Record { return c.records }

package memory

import (
	"context"
	"sync/atomic"

	"github.com/w-h-a/recall/counter"
)

type memoryCounter struct {
	options counter.Options
	value   atomic.Int64
}

func (c *memoryCounter) Next(ctx context.Context) (int64, error) {
	return c.value.Add(1), nil
}

func (c *memoryCounter) Current(ctx context.Context) (int64, error) {
	return c.value.Load(), nil
}

func (c *memoryCounter) Reset(ctx context.Context) error {
	c.value.Store(0)
	return nil
}

func NewCounter(opts ...counter.Option) counter.Counter {
	options := counter.NewOptions(opts...)

	c := &memoryCounter{
		options: options,
	}

	return c
}

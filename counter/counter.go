package counter

import "context"

// Counter mints memory ids. Next is an atomic increment on the backing
// store; concurrent callers never observe the same value. After Reset
// the sequence restarts at 1, so ids from before a reset can be reused.
type Counter interface {
	Next(ctx context.Context) (int64, error)
	Current(ctx context.Context) (int64, error)
	Reset(ctx context.Context) error
}

package tracing

import (
	"context"
	"sync"
)

// outcome is the per-exchange failure slot.  The middleware installs one
// in the request context; handlers fill it through Fail.
type outcome struct {
	mu  sync.Mutex
	err error
}

type outcomeKey struct{}

// Fail records err as the exchange's failure.  The first failure wins.
// Outside a traced exchange, or with a nil err, Fail does nothing.
func Fail(ctx context.Context, err error) {
	if err == nil {
		return
	}
	if o, ok := ctx.Value(outcomeKey{}).(*outcome); ok {
		o.set(err)
	}
}

func (o *outcome) set(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err == nil {
		o.err = err
	}
}

func (o *outcome) get() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

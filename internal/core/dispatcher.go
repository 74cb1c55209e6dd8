package core

// dispatcher.go schedules validation runs.
//
// Runs for the same resource id are serialised: the record is written with
// a lookup-or-create then overwrite pattern, so two interleaved runs could
// leave a mixed result. Runs for different resources proceed in parallel
// up to the RunLimiter's capacity.

import (
	"context"
	"sync"

	"github.com/JonMunkholm/tabcheck/internal/catalog"
	"github.com/JonMunkholm/tabcheck/internal/logging"
)

// Dispatcher runs validation jobs inline or on background goroutines.
type Dispatcher struct {
	svc     *Service
	limiter *RunLimiter
	base    context.Context

	mu    sync.Mutex
	locks map[string]*resourceLock

	wg sync.WaitGroup
}

type resourceLock struct {
	mu   sync.Mutex
	refs int
}

// NewDispatcher creates a Dispatcher. Background runs use base as their
// parent context, so they outlive the request that scheduled them.
func NewDispatcher(base context.Context, svc *Service, limiter *RunLimiter) *Dispatcher {
	return &Dispatcher{
		svc:     svc,
		limiter: limiter,
		base:    base,
		locks:   make(map[string]*resourceLock),
	}
}

// Run validates res on the calling goroutine.
func (d *Dispatcher) Run(ctx context.Context, res catalog.Resource) (*Record, error) {
	if err := d.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer d.limiter.Release()

	unlock := d.lock(res.ID)
	defer unlock()

	return d.svc.RunValidationJob(ctx, res)
}

// Dispatch reserves a run slot and validates res in the background. It
// returns ErrTooManyRuns when no slot frees up in time.
func (d *Dispatcher) Dispatch(ctx context.Context, res catalog.Resource) error {
	if err := d.limiter.Acquire(ctx); err != nil {
		return err
	}

	runCtx := logging.NewContext(d.base, logging.FromContext(ctx))

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer d.limiter.Release()

		unlock := d.lock(res.ID)
		defer unlock()

		// Errors are logged by the job runner.
		_, _ = d.svc.RunValidationJob(runCtx, res)
	}()

	return nil
}

// Wait blocks until every dispatched run has finished or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns the run limiter state.
func (d *Dispatcher) Status() RunLimiterStatus {
	return d.limiter.Status()
}

// lock takes the per-resource mutex and returns its release func.
func (d *Dispatcher) lock(resourceID string) func() {
	d.mu.Lock()
	l, ok := d.locks[resourceID]
	if !ok {
		l = &resourceLock{}
		d.locks[resourceID] = l
	}
	l.refs++
	d.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		d.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(d.locks, resourceID)
		}
		d.mu.Unlock()
	}
}

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/paretosim/optimization-core/internal/ensemble"
	"github.com/paretosim/optimization-core/pkg/utils"
)

// ErrCycleInProgress is returned when a dispatch cycle is submitted
// before the previous cycle's outcome table has been consumed.
var ErrCycleInProgress = errors.New("dispatch: previous cycle still in progress")

// Dispatcher fans a set of work items out over a fixed pool of worker
// connections and re-assembles the outcome table by key. A cycle is
// all-or-nothing: if any item exhausts its retries the whole cycle fails
// and partial results are discarded.
type Dispatcher struct {
	transports []Transport
	maxRetries int
	backoff    utils.BackoffStrategy
	log        *slog.Logger

	mu     sync.Mutex
	active bool
}

// NewDispatcher creates a dispatcher over the given worker connections.
// maxRetries is the number of re-dispatches allowed per item after its
// first failure.
func NewDispatcher(transports []Transport, maxRetries int, backoff utils.BackoffStrategy, log *slog.Logger) (*Dispatcher, error) {
	if len(transports) == 0 {
		return nil, fmt.Errorf("dispatch: at least one worker connection is required")
	}
	if maxRetries < 0 {
		return nil, fmt.Errorf("dispatch: retry limit must not be negative, got %d", maxRetries)
	}
	if backoff == nil {
		backoff = utils.NewConstantBackoff(0)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		transports: transports,
		maxRetries: maxRetries,
		backoff:    backoff,
		log:        log,
	}, nil
}

// Workers returns the size of the worker pool.
func (d *Dispatcher) Workers() int {
	return len(d.transports)
}

// Close releases all worker connections.
func (d *Dispatcher) Close() error {
	var errs []error
	for _, t := range d.transports {
		if err := t.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", t.Name(), err))
		}
	}
	return errors.Join(errs...)
}

type queuedItem struct {
	idx     int
	attempt int
}

// EvaluateCycle runs every work item and assembles the outcome table over
// the given quantities. Row identity is (member, realization); assembly
// order follows the submitted item order, independent of which worker
// finished when. Only one cycle may run at a time.
func (d *Dispatcher) EvaluateCycle(ctx context.Context, items []WorkItem, quantities []string) (*ensemble.OutcomeTable, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("dispatch: no work items")
	}

	d.mu.Lock()
	if d.active {
		d.mu.Unlock()
		return nil, ErrCycleInProgress
	}
	d.active = true
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		d.active = false
		d.mu.Unlock()
	}()

	started := time.Now()
	d.log.Debug("dispatch cycle started", "items", len(items), "workers", len(d.transports))

	// Every retry re-enqueues, so size the queue for the worst case to
	// keep re-enqueues non-blocking.
	queue := make(chan queuedItem, len(items)*(d.maxRetries+1))
	for i := range items {
		queue <- queuedItem{idx: i}
	}

	results := make([]Result, len(items))
	var outstanding atomic.Int64
	outstanding.Store(int64(len(items)))

	p := pool.New().WithContext(ctx).WithCancelOnError().WithMaxGoroutines(len(d.transports))
	for _, tr := range d.transports {
		transport := tr
		p.Go(func(ctx context.Context) error {
			return d.runWorker(ctx, transport, items, queue, results, &outstanding)
		})
	}
	if err := p.Wait(); err != nil {
		// Partial results are discarded; the generation's outcome table
		// is all-or-nothing.
		return nil, fmt.Errorf("dispatch cycle failed: %w", err)
	}

	outcomes, err := ensemble.NewOutcomeTable(quantities)
	if err != nil {
		return nil, err
	}
	for i, res := range results {
		key := ensemble.OutcomeKey{Member: items[i].Member, Realization: items[i].Realization}
		if err := outcomes.Insert(key, res.Values); err != nil {
			return nil, fmt.Errorf("dispatch: assembling outcome table: %w", err)
		}
	}

	d.log.Info("dispatch cycle complete", "items", len(items), "elapsed", time.Since(started))
	return outcomes, nil
}

// runWorker is one worker connection's loop: pull the next item, run it,
// re-enqueue on failure until the item's retries are exhausted.
func (d *Dispatcher) runWorker(ctx context.Context, tr Transport, items []WorkItem, queue chan queuedItem, results []Result, outstanding *atomic.Int64) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case q, ok := <-queue:
			if !ok {
				return nil
			}
			item := items[q.idx]
			res, err := tr.Submit(ctx, item)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if q.attempt >= d.maxRetries {
					return fmt.Errorf("item %s/%s failed after %d attempts on worker %s: %w",
						item.Member, item.Realization, q.attempt+1, tr.Name(), err)
				}
				d.log.Warn("work item failed, re-dispatching",
					"member", item.Member, "realization", item.Realization,
					"worker", tr.Name(), "attempt", q.attempt+1, "error", err)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(d.backoff.NextDelay(q.attempt)):
				}
				queue <- queuedItem{idx: q.idx, attempt: q.attempt + 1}
				continue
			}
			results[q.idx] = res
			if outstanding.Add(-1) == 0 {
				close(queue)
				return nil
			}
		}
	}
}

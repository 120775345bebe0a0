// Package dispatch hands verified payment notifications to background
// fulfillment workers. Jobs for one order always land on the same worker, so
// duplicate deliveries are processed one after another.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rolegate/rolegate/internal/application/order/usecases"
	"github.com/rolegate/rolegate/internal/shared/goroutine"
	"github.com/rolegate/rolegate/internal/shared/logger"
)

var (
	ErrStopped   = errors.New("fulfillment dispatcher stopped")
	ErrQueueFull = errors.New("fulfillment queue full")
)

const jobTimeout = 2 * time.Minute

type Job struct {
	OrderID         string
	CallbackPayload map[string]string
	ReportedAmount  decimal.Decimal
}

type Fulfiller interface {
	Execute(ctx context.Context, cmd usecases.FulfillOrderCommand) (*usecases.FulfillOrderResult, error)
}

type Dispatcher struct {
	fulfiller Fulfiller
	buckets   []chan Job
	logger    logger.Interface

	mu      sync.RWMutex
	started bool
	stopped bool
	wg      sync.WaitGroup
}

func NewDispatcher(fulfiller Fulfiller, workers, queueSize int, log logger.Interface) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	buckets := make([]chan Job, workers)
	for i := range buckets {
		buckets[i] = make(chan Job, queueSize)
	}
	return &Dispatcher{
		fulfiller: fulfiller,
		buckets:   buckets,
		logger:    log.Named("dispatch"),
	}
}

// Start launches one worker per bucket. It is a no-op after the first call.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.stopped {
		return
	}
	d.started = true

	for i, ch := range d.buckets {
		d.wg.Add(1)
		name := fmt.Sprintf("fulfillment-worker-%d", i)
		goroutine.SafeGo(d.logger, name, func() {
			defer d.wg.Done()
			d.work(name, ch)
		})
	}
	d.logger.Infow("fulfillment dispatcher started", "workers", len(d.buckets))
}

// Enqueue never blocks: a full bucket is reported as ErrQueueFull.
func (d *Dispatcher) Enqueue(job Job) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrStopped
	}

	select {
	case d.buckets[d.bucketOf(job.OrderID)] <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop refuses new jobs and waits for queued ones to finish or ctx to end.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return nil
	}
	d.stopped = true
	for _, ch := range d.buckets {
		close(ch)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Infow("fulfillment dispatcher stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for fulfillment workers: %w", ctx.Err())
	}
}

func (d *Dispatcher) bucketOf(orderID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(orderID))
	return int(h.Sum32() % uint32(len(d.buckets)))
}

func (d *Dispatcher) work(name string, ch <-chan Job) {
	for job := range ch {
		goroutine.Run(d.logger, name, func() {
			d.process(job)
		})
	}
}

func (d *Dispatcher) process(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	res, err := d.fulfiller.Execute(ctx, usecases.FulfillOrderCommand{
		OrderID:         job.OrderID,
		Source:          usecases.SourceWebhook,
		CallbackPayload: job.CallbackPayload,
		ReportedAmount:  job.ReportedAmount,
	})
	if err != nil {
		// already logged by the use case
		return
	}
	if res.AlreadyPaid {
		d.logger.Debugw("duplicate notification ignored", "order_id", job.OrderID)
	}
}

package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/udla/user-directory/internal/api/metrics"
	"github.com/udla/user-directory/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher delivers flag events to a sink from a fixed set of workers.
// Events are sharded on the context key so one subject's events keep their
// order. Enqueue never blocks a request: a full shard drops the event.
type Dispatcher struct {
	workers []chan ports.FlagEvent
	sink    ports.FlagEventSink
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sink ports.FlagEventSink, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.FlagEvent, numWorkers),
		sink:    sink,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.FlagEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers drain their queue and stop
// when ctx is cancelled; Wait blocks until they have.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands event to the worker owning its context key. It reports
// false when that worker's queue is full and the event was dropped.
func (d *Dispatcher) Enqueue(event ports.FlagEvent) bool {
	idx := d.shardIndex(event.Context.Key)
	select {
	case d.workers[idx] <- event:
		metrics.FlagEventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
		return true
	default:
		metrics.FlagEventsDroppedTotal.Inc()
		d.log.Warn().
			Str("event", event.Name).
			Int("worker_id", idx).
			Msg("flag event queue full, dropping event")
		return false
	}
}

func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.FlagEvent) {
	defer d.wg.Done()
	depth := metrics.FlagEventsQueueDepth.WithLabelValues(strconv.Itoa(id))

	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case event := <-ch:
			depth.Dec()
			d.deliver(ctx, id, event)
		}
	}
}

// drain flushes what is left in ch with a fresh context so shutdown does
// not silently lose queued events.
func (d *Dispatcher) drain(id int, ch <-chan ports.FlagEvent) {
	depth := metrics.FlagEventsQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case event := <-ch:
			depth.Dec()
			d.deliver(context.Background(), id, event)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, id int, event ports.FlagEvent) {
	if err := d.sink.Record(ctx, event); err != nil {
		d.log.Error().Err(err).
			Str("event", event.Name).
			Int("worker_id", id).
			Msg("flag event delivery failed")
		return
	}
	metrics.FlagEventsDeliveredTotal.WithLabelValues(event.Name).Inc()
}

package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/civichub/society-api/internal/core/domain"
	"github.com/civichub/society-api/internal/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	publishTimeout = 5 * time.Second
)

// Publisher delivers a persisted notification to an external subscriber.
type Publisher interface {
	Publish(ctx context.Context, n domain.Notification) error
}

// Dispatcher fans notifications out to a fixed set of workers using
// consistent hashing on the recipient id, so each recipient's notifications
// are published in creation order. Delivery is best-effort: a full shard
// drops the notification instead of blocking the request that produced it.
type Dispatcher struct {
	workers   []chan domain.Notification
	publisher Publisher
	log       zerolog.Logger

	wg      sync.WaitGroup
	dropped atomic.Uint64
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, publisher Publisher, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan domain.Notification, numWorkers),
		publisher: publisher,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Notification, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
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

// Enqueue hands n to the worker responsible for its recipient. It never blocks.
func (d *Dispatcher) Enqueue(n domain.Notification) {
	idx := d.shardIndex(n.RecipientID)
	select {
	case d.workers[idx] <- n:
		metrics.NotificationsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.dropped.Add(1)
		metrics.NotificationsPublishedTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().
			Str("notification_id", n.ID).
			Str("recipient_id", n.RecipientID).
			Int("worker_id", idx).
			Msg("notification queue full, dropping")
	}
}

// Dropped reports how many notifications were discarded because a shard was full.
func (d *Dispatcher) Dropped() uint64 {
	return d.dropped.Load()
}

// shardIndex maps a recipient id deterministically to a worker index.
func (d *Dispatcher) shardIndex(recipientID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(recipientID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Notification) {
	defer d.wg.Done()
	depth := metrics.NotificationsQueueDepth.WithLabelValues(strconv.Itoa(id))

	for {
		select {
		case <-ctx.Done():
			return
		case n := <-ch:
			depth.Set(float64(len(ch)))
			d.publish(ctx, id, n)
		}
	}
}

func (d *Dispatcher) publish(ctx context.Context, workerID int, n domain.Notification) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := d.publisher.Publish(ctx, n); err != nil {
		metrics.NotificationsPublishedTotal.WithLabelValues("error").Inc()
		d.log.Error().Err(err).
			Str("notification_id", n.ID).
			Str("recipient_id", n.RecipientID).
			Int("worker_id", workerID).
			Msg("notification publish failed")
		return
	}
	metrics.NotificationsPublishedTotal.WithLabelValues("ok").Inc()
}

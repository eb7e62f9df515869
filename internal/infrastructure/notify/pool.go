package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"venue-staff/internal/domain/notification"
	"venue-staff/internal/logging"

	"go.uber.org/zap"
)

var ErrQueueFull = errors.New("notification queue is full")

const sendTimeout = 30 * time.Second

// Pool delivers notifications in-process when no broker is configured, so
// request handlers never wait on SMTP or LINE.
type Pool struct {
	workers  int
	tasks    chan notification.Notification
	dispatch dispatcher
	wg       sync.WaitGroup
	mu       sync.RWMutex
	rate     <-chan time.Time
	ticker   *time.Ticker
	log      *zap.Logger
}

func NewPool(d dispatcher, workers, buffer int, log *zap.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	return &Pool{
		workers:  workers,
		tasks:    make(chan notification.Notification, buffer),
		dispatch: d,
		log:      logging.OrNop(log).Named("notify_pool"),
	}
}

// SetRateLimit caps deliveries per second across all workers; rps <= 0
// removes the cap.
func (p *Pool) SetRateLimit(rps int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ticker != nil {
		p.ticker.Stop()
		p.ticker = nil
		p.rate = nil
	}
	if rps <= 0 {
		return
	}
	p.ticker = time.NewTicker(time.Second / time.Duration(rps))
	p.rate = p.ticker.C
}

// Notify queues n without blocking.
func (p *Pool) Notify(ctx context.Context, n notification.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case p.tasks <- n:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run starts the workers and blocks until ctx is cancelled. Queued messages
// not yet picked up are discarded.
func (p *Pool) Run(ctx context.Context) {
	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case n := <-p.tasks:
					p.mu.RLock()
					rate := p.rate
					p.mu.RUnlock()
					if rate != nil {
						select {
						case <-ctx.Done():
							return
						case <-rate:
						}
					}
					p.deliver(ctx, n)
				}
			}
		}()
	}
	p.wg.Wait()

	p.mu.Lock()
	if p.ticker != nil {
		p.ticker.Stop()
		p.ticker = nil
		p.rate = nil
	}
	p.mu.Unlock()
}

func (p *Pool) deliver(ctx context.Context, n notification.Notification) {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	if err := p.dispatch.Dispatch(ctx, n); err != nil {
		p.log.Warn("notification delivery failed",
			zap.Stringer("id", n.ID),
			zap.String("kind", string(n.Kind)),
			zap.Error(err),
		)
	}
}

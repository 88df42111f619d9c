package feed

import (
	"context"
	"sync"
	"time"

	"github.com/okian/spindle/internal/domain/model"
	"github.com/okian/spindle/pkg/logger"
	"github.com/okian/spindle/pkg/metrics"
)

// defaultPollInterval matches the upstream collection cadence.
const defaultPollInterval = 2 * time.Second

// Sink receives the outcome of each collection tick.
type Sink interface {
	// HandleResult ingests one raw feed item.
	HandleResult(ctx context.Context, raw model.FeedResult)

	// HandleError records a failed tick. The poller never retries
	// within a tick; the next tick fetches again.
	HandleError(ctx context.Context, err error)
}

// Poller fetches the feed on a fixed interval and forwards each
// outcome to the sink. Failures cost one tick, never the process.
type Poller struct {
	client   Client
	sink     Sink
	interval time.Duration

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}

	logger logger.Logger
}

// PollerOption applies a configuration option to the Poller.
type PollerOption func(*Poller)

// WithInterval sets the tick interval.
func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithPollerLogger sets a custom logger for the poller.
func WithPollerLogger(l logger.Logger) PollerOption {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPoller creates a poller reading from client into sink.
func NewPoller(client Client, sink Sink, opts ...PollerOption) *Poller {
	p := &Poller{
		client:   client,
		sink:     sink,
		interval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the collection loop, collecting once immediately
// before the first tick. Starting twice is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return
	}
	if p.logger == nil {
		p.logger = logger.Get().Named("poller")
	}
	p.running = true
	p.stop = make(chan struct{})
	p.done = make(chan struct{})

	p.logger.Info(ctx, "starting feed collection",
		logger.Any("interval", p.interval),
	)
	go p.run(ctx, p.stop, p.done)
}

func (p *Poller) run(ctx context.Context, stop, done chan struct{}) {
	defer close(done)

	p.collect(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			p.collect(ctx)
		}
	}
}

// collect runs one tick: fetch the most recent item and hand it off.
func (p *Poller) collect(ctx context.Context) {
	start := time.Now()
	raw, err := p.client.Fetch(ctx)
	metrics.RecordFetchLatency(float64(time.Since(start).Milliseconds()))

	if err != nil {
		p.sink.HandleError(ctx, err)
		return
	}
	p.sink.HandleResult(ctx, raw)
}

// Stop halts the loop and waits for the in-flight tick to finish.
// Stopping twice is a no-op.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	close(p.stop)
	<-p.done
	p.running = false
	p.logger.Info(context.Background(), "feed collection stopped")
}

// Running reports whether the collection loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

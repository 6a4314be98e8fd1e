package probe

import (
	"context"
	"errors"
	"sync"

	"media-stage/internal/logging"
)

// ErrPoolClosed is returned by Submit after Stop.
var ErrPoolClosed = errors.New("probe pool closed")

// Job is one attachment's fetched bytes. URL is where the bytes came from;
// its extension names the content when sniffing cannot.
type Job struct {
	AttachmentID string
	URL          string
	Data         []byte
}

// QueueObserver records queue depth.
type QueueObserver interface {
	ObserveQueueDepth(depth int)
}

// Gate holds workers back before a decode, for example under memory
// pressure.
type Gate interface {
	Wait(ctx context.Context) error
}

// Pool runs probes on a fixed set of workers.
type Pool struct {
	prober   *Prober
	deliver  func(Result)
	observer QueueObserver
	gate     Gate

	jobs    chan Job
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.RWMutex
	closed  bool
	workers int
}

// NewPool creates a pool of size workers feeding deliver. deliver is called
// from worker goroutines and must marshal results to wherever state lives.
func NewPool(prober *Prober, size, queue int, deliver func(Result), observer QueueObserver) *Pool {
	if size < 1 {
		size = 1
	}
	if queue < size {
		queue = size
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		prober:   prober,
		deliver:  deliver,
		observer: observer,
		jobs:     make(chan Job, queue),
		ctx:      ctx,
		cancel:   cancel,
		workers:  size,
	}
}

// SetGate installs a gate every worker waits on before probing. It must be
// called before Start.
func (p *Pool) SetGate(gate Gate) {
	p.gate = gate
}

// Start launches the workers.
func (p *Pool) Start() {
	logging.Info("Starting %d probe workers", p.workers)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.work()
	}
}

// Submit queues a job, blocking while the queue is full.
func (p *Pool) Submit(ctx context.Context, job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.jobs <- job:
		p.observeDepth()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return ErrPoolClosed
	}
}

// Stop stops accepting jobs, drains the queue and waits for the workers.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
	p.cancel()
}

func (p *Pool) work() {
	defer p.wg.Done()
	for job := range p.jobs {
		p.observeDepth()
		if p.gate != nil {
			if err := p.gate.Wait(p.ctx); err != nil {
				logging.Warn("Dropped probe of %s: %v", job.AttachmentID, err)
				continue
			}
		}
		res := p.prober.Probe(p.ctx, job)
		if p.deliver != nil {
			p.deliver(res)
		}
	}
}

func (p *Pool) observeDepth() {
	if p.observer != nil {
		p.observer.ObserveQueueDepth(len(p.jobs))
	}
}

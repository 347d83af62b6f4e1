package camera

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"picam-cli/pkg/models"
)

const DefaultPollInterval = time.Second

// PreviewSource fetches status and preview image in one request.
type PreviewSource interface {
	GetPreview(ctx context.Context) (*models.PreviewFrame, error)
}

// FrameRenderer accepts a new preview image. Render must not block on decoding.
type FrameRenderer interface {
	Render(ctx context.Context, status models.CameraStatus, src string) uint64
}

type PollerConfig struct {
	Interval time.Duration
	Logger   *zap.Logger
	Observer Observer
	// OnStatusChange runs inside the tick that observed a new status.
	OnStatusChange func(prev, next models.CameraStatus)
}

// Poller owns the status oracle and keeps it fresh with a fixed-interval loop.
// A failed tick is logged and the next one is scheduled anyway; there is no backoff.
type Poller struct {
	source   PreviewSource
	oracle   *StatusOracle
	renderer FrameRenderer
	interval time.Duration
	logger   *zap.Logger
	observer Observer
	onChange func(prev, next models.CameraStatus)

	refreshCh chan struct{}
	running   atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPoller builds a poller writing to oracle. renderer may be nil when no
// preview output is wanted.
func NewPoller(source PreviewSource, oracle *StatusOracle, renderer FrameRenderer, cfg PollerConfig) *Poller {
	p := &Poller{
		source:    source,
		oracle:    oracle,
		renderer:  renderer,
		interval:  cfg.Interval,
		logger:    cfg.Logger,
		observer:  cfg.Observer,
		onChange:  cfg.OnStatusChange,
		refreshCh: make(chan struct{}, 1),
	}
	if p.oracle == nil {
		p.oracle = NewStatusOracle()
	}
	if p.interval <= 0 {
		p.interval = DefaultPollInterval
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	p.logger = p.logger.With(zap.String("component", "poller"))
	if p.observer == nil {
		p.observer = nopObserver{}
	}
	return p
}

// Oracle returns the status cell this poller writes.
func (p *Poller) Oracle() *StatusOracle {
	return p.oracle
}

// Tick performs a single poll: fetch, update the oracle, hand the image to the
// renderer. Errors and panics stay inside the tick.
func (p *Poller) Tick(ctx context.Context) (frame *models.PreviewFrame, err error) {
	defer func() {
		if r := recover(); r != nil {
			frame = nil
			err = fmt.Errorf("poll tick panicked: %v", r)
		}
		p.observer.PollCompleted(err)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				p.logger.Debug("poll cancelled")
				return
			}
			p.logger.Error("Request failed", zap.Error(err))
		}
	}()

	frame, err = p.source.GetPreview(ctx)
	if err != nil {
		return nil, err
	}

	prev, hadPrev := p.oracle.store(frame.Status)
	if !hadPrev || prev != frame.Status {
		p.logger.Info("camera status", zap.String("status", string(frame.Status)))
		if p.onChange != nil {
			p.onChange(prev, frame.Status)
		}
	}

	if p.renderer != nil && frame.Image != "" {
		p.renderer.Render(ctx, frame.Status, frame.Image)
	}
	return frame, nil
}

// Run polls until ctx is cancelled. Cancellation is checked at each tick
// boundary and while waiting for the next one.
func (p *Poller) Run(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer p.running.Store(false)

	p.logger.Info("polling started", zap.Duration("interval", p.interval))
	for {
		if ctx.Err() != nil {
			p.logger.Info("polling stopped")
			return nil
		}

		_, _ = p.Tick(ctx)

		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			p.logger.Info("polling stopped")
			return nil
		case <-p.refreshCh:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// Start launches Run in the background unless a loop is already active.
// It reports whether a new loop was started.
func (p *Poller) Start(parent context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil || p.running.Load() {
		return false
	}

	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	go func() {
		defer close(done)
		if err := p.Run(ctx); err != nil {
			p.logger.Debug("background loop not started", zap.Error(err))
		}
		p.mu.Lock()
		if p.done == done {
			p.cancel = nil
			p.done = nil
		}
		p.mu.Unlock()
		cancel()
	}()
	return true
}

// Stop cancels a loop launched by Start and waits for it to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether a poll loop is active.
func (p *Poller) Running() bool {
	return p.running.Load()
}

// Refresh asks the loop to poll now instead of waiting for the interval.
func (p *Poller) Refresh() {
	select {
	case p.refreshCh <- struct{}{}:
	default:
	}
}

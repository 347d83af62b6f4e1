package camera

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"picam-cli/pkg/models"
)

// CommandSender issues the HTTP request for a resolved endpoint.
type CommandSender interface {
	SendCommand(ctx context.Context, endpoint string) (models.CommandResponse, error)
}

// UnknownStatusPolicy decides what a toggle does before the first successful poll.
type UnknownStatusPolicy int

const (
	// UnknownStatusDefault resolves toggles to their start branch, as the web UI does.
	UnknownStatusDefault UnknownStatusPolicy = iota
	// UnknownStatusStrict refuses toggles until a status is known. Photo is always allowed.
	UnknownStatusStrict
)

// ParseUnknownStatusPolicy accepts "default" (or empty) and "strict".
func ParseUnknownStatusPolicy(raw string) (UnknownStatusPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "default":
		return UnknownStatusDefault, nil
	case "strict":
		return UnknownStatusStrict, nil
	}
	return UnknownStatusDefault, fmt.Errorf("invalid unknown status policy %q", raw)
}

type DispatcherConfig struct {
	Policy UnknownStatusPolicy
	// RateLimit caps presses per second; zero disables the limit.
	RateLimit float64
	Logger    *zap.Logger
	Observer  Observer
	// AfterDispatch runs after every successful command, typically Poller.Refresh.
	AfterDispatch func()
}

// Dispatcher turns a logical command into exactly one request, resolved
// against the oracle at the moment of dispatch.
type Dispatcher struct {
	status   StatusReader
	sender   CommandSender
	policy   UnknownStatusPolicy
	limiter  *rate.Limiter
	inFlight atomic.Bool
	logger   *zap.Logger
	observer Observer
	after    func()
}

func NewDispatcher(status StatusReader, sender CommandSender, cfg DispatcherConfig) *Dispatcher {
	d := &Dispatcher{
		status:   status,
		sender:   sender,
		policy:   cfg.Policy,
		logger:   cfg.Logger,
		observer: cfg.Observer,
		after:    cfg.AfterDispatch,
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	d.logger = d.logger.With(zap.String("component", "dispatcher"))
	if d.observer == nil {
		d.observer = nopObserver{}
	}
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		d.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return d
}

// Dispatch resolves cmd against the current status and sends it. It returns
// the endpoint that was requested. Failures are logged and returned; nothing
// is retried, the next poll shows the real camera state.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd models.LogicalCommand) (string, error) {
	status, known := d.status.Status()

	endpoint, err := Resolve(cmd, status)
	if err != nil {
		return "", err
	}
	if !known && d.policy == UnknownStatusStrict && cmd != models.CommandPhoto {
		d.logger.Info("command suppressed until first status", zap.String("command", string(cmd)))
		return "", ErrStatusUnknown
	}

	if !d.inFlight.CompareAndSwap(false, true) {
		return "", ErrBusy
	}
	defer d.inFlight.Store(false)

	if d.limiter != nil && !d.limiter.Allow() {
		return "", ErrThrottled
	}

	resp, err := d.sender.SendCommand(ctx, endpoint)
	d.observer.CommandDispatched(cmd, endpoint, err)
	if err != nil {
		d.logger.Error("Request failed",
			zap.String("command", string(cmd)),
			zap.String("endpoint", endpoint),
			zap.Error(err))
		return endpoint, fmt.Errorf("dispatch %s: %w", cmd, err)
	}

	d.logger.Info("command sent",
		zap.String("command", string(cmd)),
		zap.String("status", string(status)),
		zap.String("endpoint", endpoint),
		zap.Any("response", resp))

	if d.after != nil {
		d.after()
	}
	return endpoint, nil
}

// InFlight reports whether a command is waiting for its response.
func (d *Dispatcher) InFlight() bool {
	return d.inFlight.Load()
}

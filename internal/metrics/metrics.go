package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"picam-cli/internal/camera"
	"picam-cli/pkg/models"
)

// Metrics records the outcome of polls, renders, commands and logins.
// It implements camera.Observer.
type Metrics struct {
	polls      *prometheus.CounterVec
	frames     *prometheus.CounterVec
	frameBytes prometheus.Gauge
	commands   *prometheus.CounterVec
	logins     *prometheus.CounterVec
}

var _ camera.Observer = (*Metrics)(nil)

// New registers the counters on reg, reusing collectors that are already registered.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.polls, err = registerCounterVec(reg, prometheus.CounterOpts{
		Name: "picam_polls_total",
		Help: "Preview polls grouped by result.",
	}, []string{"result"}); err != nil {
		return nil, err
	}
	if m.frames, err = registerCounterVec(reg, prometheus.CounterOpts{
		Name: "picam_frames_total",
		Help: "Decoded preview frames grouped by outcome (shown, dropped).",
	}, []string{"outcome"}); err != nil {
		return nil, err
	}
	if m.commands, err = registerCounterVec(reg, prometheus.CounterOpts{
		Name: "picam_commands_total",
		Help: "Camera commands sent grouped by command, endpoint and result.",
	}, []string{"command", "endpoint", "result"}); err != nil {
		return nil, err
	}
	if m.logins, err = registerCounterVec(reg, prometheus.CounterOpts{
		Name: "picam_logins_total",
		Help: "Login submissions grouped by result (granted, denied, error).",
	}, []string{"result"}); err != nil {
		return nil, err
	}

	frameBytes := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "picam_frame_bytes",
		Help: "Size of the last displayed preview frame.",
	})
	if err := reg.Register(frameBytes); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, fmt.Errorf("failed to register frame size metric: %w", err)
		}
		frameBytes = are.ExistingCollector.(prometheus.Gauge)
	}
	m.frameBytes = frameBytes

	return m, nil
}

func registerCounterVec(reg prometheus.Registerer, opts prometheus.CounterOpts, labels []string) (*prometheus.CounterVec, error) {
	vec := prometheus.NewCounterVec(opts, labels)
	if err := reg.Register(vec); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector.(*prometheus.CounterVec), nil
		}
		return nil, fmt.Errorf("failed to register %s: %w", opts.Name, err)
	}
	return vec, nil
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) PollCompleted(err error) {
	m.polls.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) FrameShown(size int) {
	m.frames.WithLabelValues("shown").Inc()
	m.frameBytes.Set(float64(size))
}

func (m *Metrics) FrameDropped() {
	m.frames.WithLabelValues("dropped").Inc()
}

func (m *Metrics) CommandDispatched(cmd models.LogicalCommand, endpoint string, err error) {
	m.commands.WithLabelValues(string(cmd), endpoint, result(err)).Inc()
}

func (m *Metrics) LoginSubmitted(granted bool, err error) {
	switch {
	case err != nil:
		m.logins.WithLabelValues("error").Inc()
	case granted:
		m.logins.WithLabelValues("granted").Inc()
	default:
		m.logins.WithLabelValues("denied").Inc()
	}
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"picam-cli/internal/auth"
	"picam-cli/internal/camera"
	"picam-cli/pkg/models"
)

var (
	statusDesc = prometheus.NewDesc(
		"picam_camera_status", "1 for the status last reported by the camera, 0 otherwise.", []string{"status"}, nil,
	)
	statusKnownDesc = prometheus.NewDesc(
		"picam_camera_status_known", "Whether at least one poll has succeeded.", nil, nil,
	)
	loginRequiredDesc = prometheus.NewDesc(
		"picam_login_required", "Whether the appliance session needs a new login.", nil, nil,
	)
)

// StateCollector exports the oracle and session state at scrape time.
type StateCollector struct {
	Status camera.StatusReader
	Guard  *auth.Guard
}

func (c *StateCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- statusDesc
	ch <- statusKnownDesc
	ch <- loginRequiredDesc
}

func (c *StateCollector) Collect(ch chan<- prometheus.Metric) {
	status, known := c.Status.Status()

	reported := false
	for _, s := range models.AllStatuses {
		v := 0.0
		if known && s == status {
			v = 1.0
			reported = true
		}
		ch <- prometheus.MustNewConstMetric(statusDesc, prometheus.GaugeValue, v, string(s))
	}
	// Firmware may report values outside the documented vocabulary.
	if known && !reported {
		ch <- prometheus.MustNewConstMetric(statusDesc, prometheus.GaugeValue, 1.0, string(status))
	}

	ch <- prometheus.MustNewConstMetric(statusKnownDesc, prometheus.GaugeValue, boolValue(known))

	if c.Guard != nil {
		ch <- prometheus.MustNewConstMetric(loginRequiredDesc, prometheus.GaugeValue, boolValue(c.Guard.LoginRequired()))
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}

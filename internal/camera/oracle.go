package camera

import (
	"sync/atomic"

	"picam-cli/pkg/models"
)

// StatusReader is the read side of the status oracle.
type StatusReader interface {
	Status() (models.CameraStatus, bool)
}

// StatusOracle holds the last status reported by the appliance. Only the
// poller in this package writes it; everyone else reads through Status.
type StatusOracle struct {
	current atomic.Pointer[models.CameraStatus]
}

func NewStatusOracle() *StatusOracle {
	return &StatusOracle{}
}

// Status returns the latest status and false if no poll has succeeded yet.
func (o *StatusOracle) Status() (models.CameraStatus, bool) {
	p := o.current.Load()
	if p == nil {
		return "", false
	}
	return *p, true
}

func (o *StatusOracle) store(status models.CameraStatus) (prev models.CameraStatus, hadPrev bool) {
	old := o.current.Swap(&status)
	if old == nil {
		return "", false
	}
	return *old, true
}

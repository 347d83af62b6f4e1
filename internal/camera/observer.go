package camera

import "picam-cli/pkg/models"

// Observer receives the outcome of every core operation. internal/metrics
// implements it; the zero configuration uses a no-op.
type Observer interface {
	PollCompleted(err error)
	FrameShown(size int)
	FrameDropped()
	CommandDispatched(cmd models.LogicalCommand, endpoint string, err error)
	LoginSubmitted(granted bool, err error)
}

type nopObserver struct{}

func (nopObserver) PollCompleted(error)                                    {}
func (nopObserver) FrameShown(int)                                         {}
func (nopObserver) FrameDropped()                                          {}
func (nopObserver) CommandDispatched(models.LogicalCommand, string, error) {}
func (nopObserver) LoginSubmitted(bool, error)                             {}

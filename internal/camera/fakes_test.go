package camera

import (
	"context"
	"errors"
	"sync"
	"time"

	"picam-cli/pkg/models"
)

type fakeSender struct {
	mu        sync.Mutex
	endpoints []string
	err       error
	block     chan struct{}
}

func (f *fakeSender) SendCommand(ctx context.Context, endpoint string) (models.CommandResponse, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.endpoints = append(f.endpoints, endpoint)
	if f.err != nil {
		return nil, f.err
	}
	return models.CommandResponse{"status": "ok"}, nil
}

func (f *fakeSender) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.endpoints...)
}

type previewResult struct {
	frame *models.PreviewFrame
	err   error
}

// fakeSource replays results in order and repeats the last one.
type fakeSource struct {
	mu      sync.Mutex
	results []previewResult
	calls   int
}

func (f *fakeSource) GetPreview(ctx context.Context) (*models.PreviewFrame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.results) == 0 {
		return nil, errors.New("no preview configured")
	}
	i := f.calls
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	f.calls++
	r := f.results[i]
	return r.frame, r.err
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fixedStatus struct {
	status models.CameraStatus
	known  bool
}

func (f fixedStatus) Status() (models.CameraStatus, bool) { return f.status, f.known }

type recordingObserver struct {
	nopObserver
	mu      sync.Mutex
	polls   []error
	shown   int
	dropped int
}

func (o *recordingObserver) PollCompleted(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.polls = append(o.polls, err)
}

func (o *recordingObserver) FrameShown(int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.shown++
}

func (o *recordingObserver) FrameDropped() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dropped++
}

const (
	testTimeout = 2 * time.Second
	tick        = time.Millisecond
)

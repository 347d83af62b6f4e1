package camera

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"picam-cli/internal/auth"
	"picam-cli/pkg/models"
)

type fakeAuthenticator struct {
	access string
	err    error

	mu          sync.Mutex
	credentials [][2]string
}

func (f *fakeAuthenticator) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.credentials = append(f.credentials, [2]string{username, password})
	if f.err != nil {
		return nil, f.err
	}
	return &models.LoginResponse{Access: f.access}, nil
}

// countingStarter behaves like Poller.Start: only the first call starts a loop.
type countingStarter struct {
	mu      sync.Mutex
	calls   int
	started int
}

func (s *countingStarter) Start(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.started > 0 {
		return false
	}
	s.started++
	return true
}

func TestDeniedLoginShowsSingleError(t *testing.T) {
	authn := &fakeAuthenticator{access: "denied"}
	flow := NewLoginFlow(context.Background(), authn, auth.NewGuard(nil), nil, nil, nil, nil)

	for i := 0; i < 2; i++ {
		granted, err := flow.Submit(context.Background(), "admin", "wrong")
		require.NoError(t, err)
		assert.False(t, granted)
	}

	assert.True(t, flow.Form().InError())
	assert.Equal(t, []string{WrongCredentialsMessage}, flow.Form().Errors())
	assert.Len(t, authn.credentials, 2)
}

func TestGrantedLoginClearsStateAndStartsPolling(t *testing.T) {
	guard := auth.NewGuard(nil)
	starter := &countingStarter{}
	flow := NewLoginFlow(context.Background(), &fakeAuthenticator{access: models.AccessGranted}, guard, starter, nil, nil, nil)

	guard.RequireLogin()
	require.True(t, flow.Form().Visible())

	granted, err := flow.Submit(context.Background(), "admin", "secret")
	require.NoError(t, err)
	assert.True(t, granted)
	assert.False(t, guard.LoginRequired())
	assert.False(t, flow.Form().Visible())
	assert.False(t, flow.Form().InError())

	granted, err = flow.Submit(context.Background(), "admin", "secret")
	require.NoError(t, err)
	assert.True(t, granted)
	assert.Equal(t, 2, starter.calls)
	assert.Equal(t, 1, starter.started)
}

func TestGrantedLoginAfterDenialClearsFailure(t *testing.T) {
	authn := &fakeAuthenticator{access: "denied"}
	flow := NewLoginFlow(context.Background(), authn, auth.NewGuard(nil), nil, nil, nil, nil)

	_, err := flow.Submit(context.Background(), "admin", "wrong")
	require.NoError(t, err)
	require.True(t, flow.Form().InError())

	authn.access = models.AccessGranted
	granted, err := flow.Submit(context.Background(), "admin", "secret")
	require.NoError(t, err)
	assert.True(t, granted)
	assert.False(t, flow.Form().InError())
}

func TestLoginTransportErrorLeavesFormUntouched(t *testing.T) {
	guard := auth.NewGuard(nil)
	starter := &countingStarter{}
	boom := errors.New("connection refused")
	flow := NewLoginFlow(context.Background(), &fakeAuthenticator{err: boom}, guard, starter, nil, nil, nil)

	granted, err := flow.Submit(context.Background(), "admin", "secret")
	assert.ErrorIs(t, err, boom)
	assert.False(t, granted)
	assert.False(t, flow.Form().InError())
	assert.Empty(t, flow.Form().Errors())
	assert.Zero(t, starter.calls)
}

func TestUnauthorizedResponseOpensForm(t *testing.T) {
	guard := auth.NewGuard(nil)
	form := NewLoginForm()
	NewLoginFlow(context.Background(), &fakeAuthenticator{}, guard, nil, form, nil, nil)

	err := guard.Inspect("GET", "/api/camera/preview", 401, "Unauthorized")
	assert.ErrorIs(t, err, auth.ErrUnauthorized)
	assert.True(t, form.Visible())
	assert.True(t, guard.LoginRequired())
}

func TestGrantedLoginStartsRealPollerOnce(t *testing.T) {
	source := &fakeSource{results: []previewResult{{frame: &models.PreviewFrame{Status: models.StatusReady}}}}
	p := NewPoller(source, nil, nil, PollerConfig{Interval: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	flow := NewLoginFlow(ctx, &fakeAuthenticator{access: models.AccessGranted}, auth.NewGuard(nil), p, nil, nil, nil)
	_, err := flow.Submit(context.Background(), "admin", "secret")
	require.NoError(t, err)
	_, err = flow.Submit(context.Background(), "admin", "secret")
	require.NoError(t, err)

	require.Eventually(t, func() bool { return source.callCount() == 1 }, testTimeout, tick)
	assert.True(t, p.Running())
	p.Stop()
}

package auth

import (
	"net/http"
	"sync"

	"go.uber.org/zap"
)

// Guard sees every appliance response and tracks whether the session has to be
// re-established. A 401 raises the login-required state; only Grant clears it.
type Guard struct {
	mu            sync.Mutex
	loginRequired bool
	listeners     []func()
	logger        *zap.Logger
}

// NewGuard returns a guard in the authenticated state.
func NewGuard(logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{logger: logger.With(zap.String("component", "session"))}
}

// OnLoginRequired registers fn to run each time the session moves to login-required.
func (g *Guard) OnLoginRequired(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, fn)
}

// Inspect converts a response status into the caller's outcome. Statuses in
// [200,300) pass; anything else becomes a *RequestError. For 401 the
// login-required state is raised before the error is returned.
func (g *Guard) Inspect(method, url string, statusCode int, status string) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}
	if statusCode == http.StatusUnauthorized {
		g.RequireLogin()
	}
	return &RequestError{Method: method, URL: url, StatusCode: statusCode, Status: status}
}

// RequireLogin moves the session to login-required. Listeners only run on the
// transition, so repeated calls leave the state unchanged.
func (g *Guard) RequireLogin() {
	g.mu.Lock()
	if g.loginRequired {
		g.mu.Unlock()
		return
	}
	g.loginRequired = true
	listeners := append([]func(){}, g.listeners...)
	g.mu.Unlock()

	g.logger.Warn("appliance rejected session, login required")
	for _, fn := range listeners {
		fn()
	}
}

// Grant marks the session authenticated again.
func (g *Guard) Grant() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.loginRequired {
		g.logger.Info("session re-authenticated")
	}
	g.loginRequired = false
}

// LoginRequired reports the current session state.
func (g *Guard) LoginRequired() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loginRequired
}

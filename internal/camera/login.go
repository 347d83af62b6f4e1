package camera

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"picam-cli/internal/auth"
	"picam-cli/pkg/models"
)

// WrongCredentialsMessage is the inline error shown after a denied login.
const WrongCredentialsMessage = "Wrong username or password"

// Authenticator submits credentials to the appliance.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*models.LoginResponse, error)
}

// PollStarter starts the poll loop if it is not running yet.
type PollStarter interface {
	Start(ctx context.Context) bool
}

// LoginForm is the state of the login surface: whether it is open, whether
// the last submission failed, and the inline error indicators on it.
type LoginForm struct {
	mu       sync.Mutex
	visible  bool
	inError  bool
	messages []string
}

func NewLoginForm() *LoginForm {
	return &LoginForm{}
}

func (f *LoginForm) Show() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visible = true
}

func (f *LoginForm) Hide() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visible = false
}

func (f *LoginForm) Visible() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visible
}

// ShowError marks the form as failed and adds msg unless an indicator is already present.
func (f *LoginForm) ShowError(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inError = true
	if len(f.messages) == 0 {
		f.messages = append(f.messages, msg)
	}
}

// InError reports whether the last submission was denied.
func (f *LoginForm) InError() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inError
}

// Errors returns the inline error indicators currently on the form.
func (f *LoginForm) Errors() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.messages...)
}

func (f *LoginForm) beginSubmit() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inError = false
}

// LoginFlow submits credentials and, once access is granted, clears the
// login-required state and makes sure polling is running.
type LoginFlow struct {
	authn    Authenticator
	guard    *auth.Guard
	poller   PollStarter
	form     *LoginForm
	lifetime context.Context
	logger   *zap.Logger
	observer Observer
}

// NewLoginFlow wires the flow to guard so that a 401 opens form. lifetime is
// the context a poll loop started after login runs under. poller may be nil.
func NewLoginFlow(lifetime context.Context, authn Authenticator, guard *auth.Guard, poller PollStarter, form *LoginForm, logger *zap.Logger, observer Observer) *LoginFlow {
	if lifetime == nil {
		lifetime = context.Background()
	}
	if form == nil {
		form = NewLoginForm()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	guard.OnLoginRequired(form.Show)

	return &LoginFlow{
		authn:    authn,
		guard:    guard,
		poller:   poller,
		form:     form,
		lifetime: lifetime,
		logger:   logger.With(zap.String("component", "login")),
		observer: observer,
	}
}

// Form returns the login surface managed by this flow.
func (l *LoginFlow) Form() *LoginForm {
	return l.form
}

// Submit posts the credentials. It reports whether access was granted; a
// denial is not an error. Transport failures are logged and returned without
// touching the inline error.
func (l *LoginFlow) Submit(ctx context.Context, username, password string) (bool, error) {
	l.form.beginSubmit()

	resp, err := l.authn.Login(ctx, username, password)
	l.observer.LoginSubmitted(err == nil && resp.Granted(), err)
	if err != nil {
		l.logger.Error("Request failed", zap.Error(err))
		return false, err
	}

	if !resp.Granted() {
		l.logger.Warn("login denied", zap.String("username", username), zap.String("access", resp.Access))
		l.form.ShowError(WrongCredentialsMessage)
		return false, nil
	}

	l.guard.Grant()
	l.form.Hide()

	started := false
	if l.poller != nil {
		started = l.poller.Start(l.lifetime)
	}
	l.logger.Info("login granted", zap.String("username", username), zap.Bool("polling_started", started))
	return true, nil
}

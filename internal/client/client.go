package client

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"picam-cli/internal/auth"
	"picam-cli/pkg/models"
)

const (
	DefaultPreviewPath = "/api/camera/preview"
	// ReducedPreviewPath is served by firmware builds without the camera command API.
	ReducedPreviewPath = "/api/preview"

	commandPrefix = "/api/camera/"
	loginPath     = "/api/login"

	defaultTimeout = 10 * time.Second
)

// CameraClient talks to the gopicam appliance. Every response passes through
// the session guard before the caller sees it.
type CameraClient struct {
	HTTP   *resty.Client
	Config ClientConfig
	guard  *auth.Guard
	logger *zap.Logger
}

type ClientConfig struct {
	BaseURL     string
	PreviewPath string
	Timeout     time.Duration
	// Insecure skips TLS verification; the appliance generates a self-signed certificate.
	Insecure bool
}

func New(cfg ClientConfig, guard *auth.Guard, logger *zap.Logger) *CameraClient {
	if cfg.PreviewPath == "" {
		cfg.PreviewPath = DefaultPreviewPath
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if guard == nil {
		guard = auth.NewGuard(logger)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := resty.New()
	r.SetBaseURL(strings.TrimRight(cfg.BaseURL, "/"))
	r.SetTimeout(cfg.Timeout)

	// Same request baseline as the web UI: never cached, JSON in both directions.
	r.SetHeader("Content-Type", "application/json; charset=utf-8")
	r.SetHeader("Accept", "application/json")
	r.SetHeader("Cache-Control", "no-store")
	r.SetHeader("Pragma", "no-cache")

	if cfg.Insecure {
		r.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true}) //nolint:gosec
	}

	return &CameraClient{
		HTTP:   r,
		Config: cfg,
		guard:  guard,
		logger: logger.With(zap.String("component", "client")),
	}
}

// Guard returns the session guard shared by all requests of this client.
func (c *CameraClient) Guard() *auth.Guard {
	return c.guard
}

// Login posts the credentials as a form, the way the login page does.
// A denied login is not an error: callers inspect LoginResponse.Granted.
func (c *CameraClient) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	req := c.HTTP.R().
		SetFormData(map[string]string{
			"username": username,
			"password": password,
		}).
		SetResult(&models.LoginResponse{}).
		ForceContentType("application/json")

	resp, err := c.execute(ctx, req, http.MethodPost, loginPath)
	if err != nil {
		return nil, err
	}

	result, ok := resp.Result().(*models.LoginResponse)
	if !ok {
		return nil, errors.New("failed to parse login response")
	}
	return result, nil
}

// SessionCookies returns the cookies the appliance set for BaseURL, encoded as
// a Cookie header value so they can be persisted.
func (c *CameraClient) SessionCookies() string {
	u, err := url.Parse(c.HTTP.BaseURL)
	if err != nil || c.HTTP.GetClient().Jar == nil {
		return ""
	}
	parts := make([]string, 0, 2)
	for _, cookie := range c.HTTP.GetClient().Jar.Cookies(u) {
		parts = append(parts, cookie.Name+"="+cookie.Value)
	}
	return strings.Join(parts, "; ")
}

// RestoreSession loads cookies previously returned by SessionCookies.
func (c *CameraClient) RestoreSession(header string) error {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil
	}
	cookies, err := http.ParseCookie(header)
	if err != nil {
		return fmt.Errorf("parse stored session: %w", err)
	}
	u, err := url.Parse(c.HTTP.BaseURL)
	if err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}
	c.HTTP.GetClient().Jar.SetCookies(u, cookies)
	return nil
}

func (c *CameraClient) execute(ctx context.Context, req *resty.Request, method, path string) (*resty.Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	resp, err := req.SetContext(ctx).Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if err := c.guard.Inspect(method, path, resp.StatusCode(), statusText(resp)); err != nil {
		c.logger.Debug("request rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode()))
		return resp, err
	}
	return resp, nil
}

// statusText strips the numeric code from "401 Unauthorized".
func statusText(resp *resty.Response) string {
	status := strings.TrimSpace(resp.Status())
	return strings.TrimSpace(strings.TrimPrefix(status, strconv.Itoa(resp.StatusCode())))
}

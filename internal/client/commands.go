package client

import (
	"context"
	"net/http"
	"strings"

	"picam-cli/pkg/models"
)

// CommandURL returns the request path for a resolved command endpoint such as "record/stop".
func CommandURL(endpoint string) string {
	return commandPrefix + strings.TrimLeft(endpoint, "/")
}

// SendCommand issues the GET for a resolved command endpoint.
func (c *CameraClient) SendCommand(ctx context.Context, endpoint string) (models.CommandResponse, error) {
	var result models.CommandResponse

	req := c.HTTP.R().
		SetResult(&result).
		ForceContentType("application/json")

	if _, err := c.execute(ctx, req, http.MethodGet, CommandURL(endpoint)); err != nil {
		return nil, err
	}
	return result, nil
}

package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"picam-cli/pkg/models"
)

// GetPreview fetches the current camera status together with the latest preview image.
func (c *CameraClient) GetPreview(ctx context.Context) (*models.PreviewFrame, error) {
	req := c.HTTP.R().
		SetResult(&models.PreviewFrame{}).
		ForceContentType("application/json")

	resp, err := c.execute(ctx, req, http.MethodGet, c.Config.PreviewPath)
	if err != nil {
		return nil, err
	}

	frame, ok := resp.Result().(*models.PreviewFrame)
	if !ok {
		return nil, errors.New("failed to parse preview response")
	}
	return frame, nil
}

// FetchImage downloads a preview image that was referenced by URL rather than
// embedded as a data URI. Relative URLs resolve against BaseURL.
func (c *CameraClient) FetchImage(ctx context.Context, src string) ([]byte, error) {
	req := c.HTTP.R().SetHeader("Accept", "image/*")

	resp, err := c.execute(ctx, req, http.MethodGet, src)
	if err != nil {
		return nil, err
	}
	if len(resp.Body()) == 0 {
		return nil, fmt.Errorf("image %s: response body is empty", src)
	}
	return resp.Body(), nil
}

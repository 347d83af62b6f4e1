package cmd

import (
	"fmt"
	"os"

	"picam-cli/internal/auth"
	"picam-cli/internal/client"
	"picam-cli/internal/config"
)

// setupCameraClient builds a client for the configured appliance and restores
// the stored session. It exits when no appliance has been configured yet.
func setupCameraClient(settings config.Settings) *client.CameraClient {
	if settings.BaseURL == "" {
		fmt.Println("Error: No camera configured. Please run 'picam-cli login' first.")
		os.Exit(1)
	}

	guard := auth.NewGuard(logger)
	api := client.New(client.ClientConfig{
		BaseURL:     settings.BaseURL,
		PreviewPath: settings.PreviewPath,
		Timeout:     settings.Timeout,
		Insecure:    settings.Insecure,
	}, guard, logger)

	if err := api.RestoreSession(settings.SessionCookies); err != nil {
		logger.Sugar().Warnf("stored session ignored: %v", err)
	}
	return api
}

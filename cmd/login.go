package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"picam-cli/internal/camera"
	"picam-cli/internal/config"
)

// Variables to hold flag values
var (
	host string
	user string
	pass string
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with the camera",
	Long: `Submits the credentials to the camera login endpoint and saves the
session cookie locally for future commands.

Example:
  picam-cli login --host "https://192.168.1.20" --username admin --password pass`,
	Run: func(cmd *cobra.Command, args []string) {
		settings := config.Load()

		// Clean up input host (remove trailing slash if present)
		host = strings.TrimRight(host, "/")
		if host == "" {
			host = settings.BaseURL
		}
		if host == "" {
			log.Fatal("Fatal: --host is required for the first login")
		}
		settings.BaseURL = host
		settings.SessionCookies = ""

		fmt.Printf("Authenticating against %s as user '%s'...\n", host, user)

		api := setupCameraClient(settings)
		flow := camera.NewLoginFlow(context.Background(), api, api.Guard(), nil, nil, logger, nil)

		granted, err := flow.Submit(cmd.Context(), user, pass)
		if err != nil {
			log.Fatalf("Fatal: Login failed: %v", err)
		}
		if !granted {
			log.Fatalf("Fatal: %s", strings.Join(flow.Form().Errors(), "; "))
		}

		fmt.Println("Login successful. Saving configuration...")

		if err := config.SaveSession(host, user, api.SessionCookies()); err != nil {
			log.Fatalf("Failed to save configuration file: %v", err)
		}

		fmt.Printf("Session saved. You can now run commands like './picam-cli status'.\n")
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringVar(&host, "host", "", "Camera base URL (e.g. https://192.168.1.20)")
	loginCmd.Flags().StringVarP(&user, "username", "u", "admin", "Camera username")
	loginCmd.Flags().StringVarP(&pass, "password", "p", "", "Camera password")

	_ = loginCmd.MarkFlagRequired("password")
}

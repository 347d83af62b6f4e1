package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"picam-cli/internal/camera"
	"picam-cli/internal/config"
	"picam-cli/pkg/models"
)

var strictStatus bool

// Parent Command
var cameraCmd = &cobra.Command{
	Use:   "camera",
	Short: "Send a command to the camera",
	Long: `Toggle power, motion detection, timelapse or recording, or take a photo.
Toggles are resolved against the status the camera reports right now.`,
}

func newCameraCommand(action models.LogicalCommand, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(action),
		Short: short,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			settings := config.Load()
			api := setupCameraClient(settings)

			policy, err := camera.ParseUnknownStatusPolicy(settings.UnknownStatus)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			if strictStatus {
				policy = camera.UnknownStatusStrict
			}

			// One tick seeds the oracle; a failure leaves it unset and the policy decides.
			poller := camera.NewPoller(api, nil, nil, camera.PollerConfig{Logger: logger})
			_, _ = poller.Tick(cmd.Context())

			dispatcher := camera.NewDispatcher(poller.Oracle(), api, camera.DispatcherConfig{
				Policy: policy,
				Logger: logger,
			})

			endpoint, err := dispatcher.Dispatch(cmd.Context(), action)
			if err != nil {
				if api.Guard().LoginRequired() {
					fmt.Println("Error: Session expired. Please run 'picam-cli login' again.")
				} else {
					fmt.Printf("Error sending %s: %v\n", action, err)
				}
				os.Exit(1)
			}

			status, _ := poller.Oracle().Status()
			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				_ = enc.Encode(map[string]string{
					"command":  string(action),
					"status":   string(status),
					"endpoint": endpoint,
				})
				return
			}
			fmt.Printf("Sent %s (status was %q).\n", endpoint, status)
		},
	}
}

func init() {
	// Register Parent
	rootCmd.AddCommand(cameraCmd)

	// Register Subcommands
	cameraCmd.AddCommand(newCameraCommand(models.CommandPower, "Start the camera when halted, stop it otherwise"))
	cameraCmd.AddCommand(newCameraCommand(models.CommandMotion, "Toggle motion detection"))
	cameraCmd.AddCommand(newCameraCommand(models.CommandTimelapse, "Toggle timelapse"))
	cameraCmd.AddCommand(newCameraCommand(models.CommandRecord, "Toggle video recording"))
	cameraCmd.AddCommand(newCameraCommand(models.CommandPhoto, "Take a photo"))

	cameraCmd.PersistentFlags().BoolVar(&strictStatus, "strict", false, "Refuse toggles when the camera status cannot be read")
}

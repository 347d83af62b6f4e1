package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"picam-cli/internal/camera"
	"picam-cli/internal/config"
)

var statusOutput string

type statusResult struct {
	Status string `json:"status"`
	Format string `json:"format,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Size   int    `json:"size,omitempty"`
	Output string `json:"output,omitempty"`
}

// captureSurface remembers the frame it was shown and optionally forwards it.
type captureSurface struct {
	next  camera.Surface
	frame *camera.Frame
}

func (s *captureSurface) Show(frame camera.Frame) error {
	s.frame = &frame
	if s.next != nil {
		return s.next.Show(frame)
	}
	return nil
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current camera status",
	Example: `  picam-cli status
  picam-cli status --output preview.jpg`,
	Run: func(cmd *cobra.Command, args []string) {
		settings := config.Load()
		api := setupCameraClient(settings)

		surface := &captureSurface{}
		if statusOutput != "" {
			surface.next = &camera.FileSurface{Path: statusOutput, Logger: logger}
		}
		renderer := camera.NewRenderer(surface, api, logger, nil)
		poller := camera.NewPoller(api, nil, renderer, camera.PollerConfig{Logger: logger})

		preview, err := poller.Tick(cmd.Context())
		if err != nil {
			if api.Guard().LoginRequired() {
				fmt.Println("Error: Session expired. Please run 'picam-cli login' again.")
			} else {
				fmt.Printf("Error fetching status: %v\n", err)
			}
			os.Exit(1)
		}
		renderer.Wait()

		res := statusResult{Status: string(preview.Status)}
		if f := surface.frame; f != nil {
			res.Format, res.Width, res.Height, res.Size = f.Format, f.Width, f.Height, len(f.Data)
			res.Output = statusOutput
		}

		// --- JSON OUTPUT ---
		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				fmt.Printf("Error encoding JSON: %v\n", err)
				os.Exit(1)
			}
			return
		}
		// -------------------

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "STATUS\tFRAME\tSIZE")
		fmt.Fprintln(w, "------\t-----\t----")

		frame, size := "-", "-"
		if res.Size > 0 {
			frame = fmt.Sprintf("%s %dx%d", res.Format, res.Width, res.Height)
			size = humanize.Bytes(uint64(res.Size))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", res.Status, frame, size)
		w.Flush()

		if statusOutput != "" && res.Size > 0 {
			fmt.Printf("Preview saved to %s\n", statusOutput)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&statusOutput, "output", "", "Write the preview frame to this file")
}

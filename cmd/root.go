package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"picam-cli/internal/client"
	"picam-cli/internal/config"
	"picam-cli/internal/logging"
)

var cfgFile string
var jsonOutput bool

var logger = zap.NewNop()

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "picam-cli",
	Short: "A CLI for controlling a gopicam camera appliance",
	Long: `Watch the preview and status of a gopicam camera and toggle recording,
motion detection, timelapse and power from the command line.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(viper.GetString("log_level"), viper.GetBool("log_json"))
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(func() { config.InitConfig(cfgFile) })

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/picam-cli/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	rootCmd.PersistentFlags().String("preview-path", client.DefaultPreviewPath,
		"Preview endpoint (firmware without the camera API serves "+client.ReducedPreviewPath+")")
	_ = viper.BindPFlag("preview_path", rootCmd.PersistentFlags().Lookup("preview-path"))
}

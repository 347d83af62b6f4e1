package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	appName   = "picam-cli"
	envPrefix = "PICAM"
)

// Settings is the resolved runtime configuration.
type Settings struct {
	BaseURL        string
	Username       string
	Password       string
	PreviewPath    string
	PollInterval   time.Duration
	Timeout        time.Duration
	Insecure       bool
	LogLevel       string
	LogJSON        bool
	UnknownStatus  string
	CommandRate    float64
	SessionCookies string
	MetricsAddr    string
	PhotoSchedule  string
	MQTTBroker     string
	MQTTTopic      string
	MQTTClientID   string
	MQTTUsername   string
	MQTTPassword   string
}

// DefaultPath returns the config file location under the XDG config directory.
func DefaultPath() string {
	path, err := xdg.ConfigFile(filepath.Join(appName, "config.yaml"))
	if err != nil {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", appName, "config.yaml")
	}
	return path
}

// SetDefaults registers the default for every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("preview_path", "/api/camera/preview")
	v.SetDefault("poll_interval", time.Second)
	v.SetDefault("timeout", 10*time.Second)
	v.SetDefault("insecure", true)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
	v.SetDefault("unknown_status", "default")
	v.SetDefault("command_rate", 0)
	v.SetDefault("metrics_addr", ":9110")
	v.SetDefault("mqtt_topic", "picam/status")
	v.SetDefault("mqtt_client_id", appName)
}

// InitConfig reads .env, the config file and PICAM_* environment variables.
func InitConfig(cfgFile string) {
	// A missing .env is normal.
	_ = godotenv.Load()

	if cfgFile == "" {
		cfgFile = DefaultPath()
	}
	viper.SetConfigFile(cfgFile)

	SetDefaults(viper.GetViper())
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		// Config loaded successfully
	}
}

// Load resolves Settings from the global viper instance.
func Load() Settings {
	return LoadFrom(viper.GetViper())
}

func LoadFrom(v *viper.Viper) Settings {
	return Settings{
		BaseURL:        strings.TrimRight(v.GetString("base_url"), "/"),
		Username:       v.GetString("username"),
		Password:       v.GetString("password"),
		PreviewPath:    v.GetString("preview_path"),
		PollInterval:   v.GetDuration("poll_interval"),
		Timeout:        v.GetDuration("timeout"),
		Insecure:       v.GetBool("insecure"),
		LogLevel:       v.GetString("log_level"),
		LogJSON:        v.GetBool("log_json"),
		UnknownStatus:  v.GetString("unknown_status"),
		CommandRate:    v.GetFloat64("command_rate"),
		SessionCookies: v.GetString("session_cookies"),
		MetricsAddr:    v.GetString("metrics_addr"),
		PhotoSchedule:  v.GetString("photo_schedule"),
		MQTTBroker:     v.GetString("mqtt_broker"),
		MQTTTopic:      v.GetString("mqtt_topic"),
		MQTTClientID:   v.GetString("mqtt_client_id"),
		MQTTUsername:   v.GetString("mqtt_username"),
		MQTTPassword:   v.GetString("mqtt_password"),
	}
}

// SaveSession stores the appliance session so later commands can reuse it.
func SaveSession(baseURL, username, cookies string) error {
	return SaveSessionTo(viper.GetViper(), baseURL, username, cookies)
}

func SaveSessionTo(v *viper.Viper, baseURL, username, cookies string) error {
	v.Set("base_url", baseURL)
	v.Set("username", username)
	v.Set("session_cookies", cookies)

	path := v.ConfigFileUsed()
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return os.Chmod(path, 0o600)
}

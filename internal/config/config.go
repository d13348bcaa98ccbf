package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix           = "BANQUET"
	defaultHTTPAddress  = "0.0.0.0:8080"
	defaultDatabasePath = "banquet.db"
	defaultUploadsDir   = "uploads"
	defaultLogLevel     = "info"
	defaultFortuneModel = "gemini-3-flash-preview"
)

// AppConfig captures runtime configuration for the API server.
type AppConfig struct {
	HTTPAddress        string
	DatabasePath       string
	UploadsDir         string
	LogLevel           string
	AdminPasscode      string
	AdminSigningSecret string
	FortuneAPIKey      string
	FortuneAPIURL      string
	FortuneModel       string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("uploads.dir", defaultUploadsDir)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("fortune.model", defaultFortuneModel)
	configViper.SetDefault("fortune.api_url", "")
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:        configViper.GetString("http.address"),
		DatabasePath:       configViper.GetString("database.path"),
		UploadsDir:         configViper.GetString("uploads.dir"),
		LogLevel:           configViper.GetString("log.level"),
		AdminPasscode:      configViper.GetString("admin.passcode"),
		AdminSigningSecret: configViper.GetString("admin.signing_secret"),
		FortuneAPIKey:      configViper.GetString("fortune.api_key"),
		FortuneAPIURL:      configViper.GetString("fortune.api_url"),
		FortuneModel:       configViper.GetString("fortune.model"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	if strings.TrimSpace(c.UploadsDir) == "" {
		return fmt.Errorf("uploads.dir is required")
	}
	if strings.TrimSpace(c.AdminPasscode) != "" && strings.TrimSpace(c.AdminSigningSecret) == "" {
		return fmt.Errorf("admin.signing_secret is required when admin.passcode is set")
	}
	return nil
}

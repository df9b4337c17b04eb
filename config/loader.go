package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoaderConfig holds optional file overrides for Load.
type LoaderConfig struct {
	ConfigFile string
	EnvFile    string
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// Load reads configuration from a YAML file, a .env file and the
// process environment. Environment variables use the TWEETKIT_ prefix
// with underscores for nesting (TWEETKIT_CREDENTIALS_CONSUMER_KEY).
// The result has defaults applied but is not validated; Validate runs
// when the client is built.
func Load(opts ...LoaderOption) (*Config, error) {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.ConfigFile == "" {
		lc.ConfigFile = findFile("config.yml", "config.yaml", ".tweetkit.yml")
	}
	if lc.EnvFile == "" {
		lc.EnvFile = findFile(".env")
	}

	if lc.EnvFile != "" {
		if err := godotenv.Load(lc.EnvFile); err != nil {
			return nil, fmt.Errorf("config: load env file %s: %w", lc.EnvFile, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix("TWEETKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindKeys(v)

	if lc.ConfigFile != "" {
		v.SetConfigFile(lc.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", lc.ConfigFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// bindKeys registers every known key so AutomaticEnv can resolve it
// even when no config file sets it.
func bindKeys(v *viper.Viper) {
	for _, key := range []string{
		"credentials.consumer_key",
		"credentials.consumer_secret",
		"credentials.access_token",
		"credentials.access_token_secret",
		"credentials.bearer_token",
		"client.base_url",
		"client.api_version",
		"client.timeout",
		"client.stream_keep_alive",
		"client.max_attempts",
		"client.user_agent",
		"logging.level",
		"logging.format",
		"logging.output",
		"logging.no_color",
	} {
		// BindEnv only errors on an empty key
		_ = v.BindEnv(key)
	}
}

// findFile returns the first existing candidate, searching the working
// directory and one level up.
func findFile(names ...string) string {
	for _, prefix := range []string{"./", "../"} {
		for _, name := range names {
			path := prefix + name
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

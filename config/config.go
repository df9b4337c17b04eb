package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/tweetkit/client"
	"github.com/kbukum/tweetkit/logger"
	"github.com/kbukum/tweetkit/oauth"
)

// Config is the full client configuration.
type Config struct {
	Credentials oauth.Credentials `yaml:"credentials" mapstructure:"credentials"`
	Client      client.Config     `yaml:"client" mapstructure:"client"`
	Logging     logger.Config     `yaml:"logging" mapstructure:"logging"`
}

var validate = validator.New()

// ApplyDefaults applies default values.
func (c *Config) ApplyDefaults() {
	c.Client.ApplyDefaults()
	c.Logging.ApplyDefaults()
}

// Validate validates the configuration. Credentials are checked here
// rather than in client.Config.Validate because the signer is built
// from them later.
func (c *Config) Validate() error {
	if err := validate.Struct(c.Credentials); err != nil {
		return fmt.Errorf("config.credentials: %w", err)
	}
	if _, err := c.Credentials.Signer(); err != nil {
		return fmt.Errorf("config.credentials: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}

// NewClient builds a ready-to-use client from the configuration:
// signer from the credentials, logger from the logging section.
func (c *Config) NewClient(opts ...client.Option) (*client.Client, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	signer, err := c.Credentials.Signer()
	if err != nil {
		return nil, err
	}

	cc := c.Client
	cc.Signer = signer

	opts = append([]client.Option{client.WithLogger(logger.New(c.Logging))}, opts...)
	return client.New(cc, opts...)
}

package apillon

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DefaultAPIURL is the production API base URL.
const DefaultAPIURL = "https://api.apillon.io"

// Config holds the resolved connection settings of a Client.
type Config struct {
	APIURL    string `validate:"required,url"`
	APIKey    string `validate:"required"`
	APISecret string `validate:"required"`
}

// WithDefaults returns a copy of the config with default values applied.
// If APIURL is empty, it defaults to DefaultAPIURL. A trailing slash is removed.
func (c *Config) WithDefaults() *Config {
	cfg := *c
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	cfg.APIURL = strings.TrimSuffix(cfg.APIURL, "/")
	return &cfg
}

// Validate checks that credentials are present and the URL is well formed.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	for _, fe := range verrs {
		switch fe.Field() {
		case "APIKey":
			return ErrAPIKeyRequired
		case "APISecret":
			return ErrAPISecretRequired
		}
	}
	return fmt.Errorf("validate config: %w", err)
}

package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/apillon/apillon-go"
	"github.com/apillon/apillon-go/logging"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "APILLON"

// DefaultEnvFile is the dotenv file read from the working directory.
const DefaultEnvFile = ".env"

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the resolved CLI configuration.
type Config struct {
	API   APIConfig `mapstructure:"api"`
	Debug bool      `mapstructure:"debug"`
	Log   LogConfig `mapstructure:"log"`
}

// APIConfig holds the connection settings. Credentials are checked when a
// client is built, so commands that never reach the API can run without them.
type APIConfig struct {
	URL    string `mapstructure:"url" validate:"required,url"`
	Key    string `mapstructure:"key"`
	Secret string `mapstructure:"secret"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=none error verbose debug info warn"`
	JSON  bool   `mapstructure:"json"`
}

// Client converts the API settings into a client config.
func (c *Config) Client() *apillon.Config {
	return &apillon.Config{
		APIURL:    c.API.URL,
		APIKey:    c.API.Key,
		APISecret: c.API.Secret,
	}
}

// LogLevel resolves the effective log level. Debug forces verbose output.
func (c *Config) LogLevel() logging.Level {
	if c.Debug {
		return logging.LevelVerbose
	}
	return logging.ParseLevel(c.Log.Level)
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"api-url":   "api.url",
	"key":       "api.key",
	"secret":    "api.secret",
	"log-level": "log.level",
	"log-json":  "log.json",
	"debug":     "debug",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey, ok := flagToViperKey[f.Name]
		if !ok {
			return
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
// Every key needs a default so AutomaticEnv applies to Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("api.url", apillon.DefaultAPIURL)
	v.SetDefault("api.key", "")
	v.SetDefault("api.secret", "")

	v.SetDefault("debug", false)

	v.SetDefault("log.level", "error")
	v.SetDefault("log.json", false)
}

// LoadOption customizes Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	envFile string
	profile *APIConfig
}

// WithEnvFile reads dotenv variables from path instead of DefaultEnvFile.
// An empty path disables dotenv loading.
func WithEnvFile(path string) LoadOption {
	return func(o *loadOptions) {
		o.envFile = path
	}
}

// WithProfile layers stored profile values above the config files and below
// the environment.
func WithProfile(p APIConfig) LoadOption {
	return func(o *loadOptions) {
		o.profile = &p
	}
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env (including .env) >
// profile > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet, opts ...LoadOption) (*Config, error) {
	o := loadOptions{envFile: DefaultEnvFile}
	for _, opt := range opts {
		opt(&o)
	}

	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("apillon")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Merge the selected profile
	if o.profile != nil {
		if err := v.MergeConfigMap(profileMap(*o.profile)); err != nil {
			return nil, fmt.Errorf("merge profile: %w", err)
		}
	}

	// 4. Bind environment variables, seeding them from the dotenv file.
	// Variables already present in the process environment win.
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("error reading env file", "file", o.envFile, "err", err)
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 5. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 6. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.API.URL = strings.TrimSuffix(cfg.API.URL, "/")

	// 7. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// profileMap renders the non-empty profile values as a nested config map.
func profileMap(p APIConfig) map[string]any {
	api := map[string]any{}
	if p.URL != "" {
		api["url"] = p.URL
	}
	if p.Key != "" {
		api["key"] = p.Key
	}
	if p.Secret != "" {
		api["secret"] = p.Secret
	}
	return map[string]any{"api": api}
}

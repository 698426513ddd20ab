package clientcli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/apillon/apillon-go"
	"github.com/apillon/apillon-go/config"
)

// Profile holds the credentials of one Apillon project.
type Profile struct {
	Name      string `yaml:"name" validate:"required"`
	APIURL    string `yaml:"api_url,omitempty" validate:"omitempty,url"`
	APIKey    string `yaml:"api_key,omitempty"`
	APISecret string `yaml:"api_secret,omitempty"`
	Default   bool   `yaml:"default,omitempty"`
}

// APIConfig returns the profile as a config layer.
func (p *Profile) APIConfig() config.APIConfig {
	if p == nil {
		return config.APIConfig{}
	}
	return config.APIConfig{
		URL:    p.APIURL,
		Key:    p.APIKey,
		Secret: p.APISecret,
	}
}

// Endpoint returns the profile's API URL, falling back to the production API.
func (p *Profile) Endpoint() string {
	if p.APIURL == "" {
		return apillon.DefaultAPIURL
	}
	return p.APIURL
}

// ConfigFile is the profile file: a list of named credential sets, at most
// one of them marked default.
type ConfigFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// index returns the position of the named profile, or -1.
func (c *ConfigFile) index(name string) int {
	return slices.IndexFunc(c.Profiles, func(p Profile) bool { return p.Name == name })
}

// GetProfile returns the named profile, or the default one when name is empty.
func (c *ConfigFile) GetProfile(name string) (*Profile, error) {
	if name == "" {
		return c.GetDefaultProfile()
	}
	if len(c.Profiles) == 0 {
		return nil, ErrNoProfiles
	}
	i := c.index(name)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return &c.Profiles[i], nil
}

// GetDefaultProfile returns the profile marked default, else the first one.
func (c *ConfigFile) GetDefaultProfile() (*Profile, error) {
	if len(c.Profiles) == 0 {
		return nil, ErrNoProfiles
	}
	i := slices.IndexFunc(c.Profiles, func(p Profile) bool { return p.Default })
	return &c.Profiles[max(i, 0)], nil
}

// DefaultName returns the name of the default profile, or "" without profiles.
func (c *ConfigFile) DefaultName() string {
	p, err := c.GetDefaultProfile()
	if err != nil {
		return ""
	}
	return p.Name
}

// AddProfile appends a new profile. The first profile added is always the default.
func (c *ConfigFile) AddProfile(p Profile) error {
	if err := apillon.ValidateRequest(p); err != nil {
		return fmt.Errorf("profile %q: %w", p.Name, err)
	}
	if c.index(p.Name) >= 0 {
		return fmt.Errorf("%w: %s", ErrProfileExists, p.Name)
	}
	p.Default = p.Default || len(c.Profiles) == 0
	c.Profiles = append(c.Profiles, p)
	return c.settle(p)
}

// UpdateProfile replaces the stored profile with the same name.
func (c *ConfigFile) UpdateProfile(p Profile) error {
	if err := apillon.ValidateRequest(p); err != nil {
		return fmt.Errorf("profile %q: %w", p.Name, err)
	}
	i := c.index(p.Name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, p.Name)
	}
	c.Profiles[i] = p
	return c.settle(p)
}

// settle keeps a single default after p was stored.
func (c *ConfigFile) settle(p Profile) error {
	if !p.Default {
		return nil
	}
	return c.SetDefault(p.Name)
}

// RemoveProfile removes a profile by name. Removing the default leaves the
// first remaining profile as the implicit default.
func (c *ConfigFile) RemoveProfile(name string) error {
	i := c.index(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	c.Profiles = slices.Delete(c.Profiles, i, i+1)
	return nil
}

// SetDefault marks name as the only default profile.
func (c *ConfigFile) SetDefault(name string) error {
	if c.index(name) < 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	for i := range c.Profiles {
		c.Profiles[i].Default = c.Profiles[i].Name == name
	}
	return nil
}

// ProfileNames returns the profile names in file order.
func (c *ConfigFile) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for _, p := range c.Profiles {
		names = append(names, p.Name)
	}
	return names
}

// Save writes the profile file with owner-only permissions. The file is
// written next to path and renamed over it, so a failed write keeps the old file.
func (c *ConfigFile) Save(path string) error {
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-*.yaml")
	if err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// LoadConfigFile reads the profile file at path. Profiles with an empty or
// repeated name are rejected.
func LoadConfigFile(path string) (*ConfigFile, error) {
	data, err := os.ReadFile(filepath.Clean(path)) //#nosec G304 -- path is user-provided config file
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg ConfigFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	seen := make(map[string]bool, len(cfg.Profiles))
	for _, p := range cfg.Profiles {
		if err := apillon.ValidateRequest(p); err != nil {
			return nil, fmt.Errorf("parse config file: profile %q: %w", p.Name, err)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("parse config file: %w: %s", ErrProfileExists, p.Name)
		}
		seen[p.Name] = true
	}
	return &cfg, nil
}

// DefaultConfigPath returns the default config file path (~/.apillon/config.yaml).
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".apillon", "config.yaml")
}

// ProfileFromEnv returns the profile name from APILLON_PROFILE environment variable.
func ProfileFromEnv() string {
	return os.Getenv("APILLON_PROFILE")
}

// ConfigPathFromEnv returns the config file path from APILLON_CONFIG environment variable.
func ConfigPathFromEnv() string {
	return os.Getenv("APILLON_CONFIG")
}

package clientcli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apillon/apillon-go"
	"github.com/apillon/apillon-go/clientcli"
)

func TestLoadConfigFile(t *testing.T) {
	t.Run("valid config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.yaml")

		content := `profiles:
  - name: dev
    api_url: https://api-dev.apillon.io
    api_key: dev-key
    api_secret: dev-secret
  - name: prod
    api_key: prod-key
    api_secret: prod-secret
    default: true
`
		err := os.WriteFile(configPath, []byte(content), 0o600)
		require.NoError(t, err)

		cfg, err := clientcli.LoadConfigFile(configPath)
		require.NoError(t, err)

		require.Len(t, cfg.Profiles, 2)
		assert.Equal(t, []string{"dev", "prod"}, cfg.ProfileNames())
		assert.Equal(t, "prod", cfg.DefaultName())

		dev, err := cfg.GetProfile("dev")
		require.NoError(t, err)
		assert.Equal(t, "https://api-dev.apillon.io", dev.Endpoint())

		prod, err := cfg.GetProfile("")
		require.NoError(t, err)
		assert.Equal(t, "prod-key", prod.APIKey)
		assert.Equal(t, apillon.DefaultAPIURL, prod.Endpoint())
	})

	t.Run("file not found", func(t *testing.T) {
		_, err := clientcli.LoadConfigFile("/nonexistent/path/config.yaml")
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("repeated or empty names", func(t *testing.T) {
		for name, content := range map[string]string{
			"repeated": "profiles:\n  - name: dev\n  - name: dev\n",
			"empty":    "profiles:\n  - api_key: k\n",
			"bad url":  "profiles:\n  - name: dev\n    api_url: not a url\n",
		} {
			t.Run(name, func(t *testing.T) {
				configPath := filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))

				_, err := clientcli.LoadConfigFile(configPath)
				assert.Error(t, err)
			})
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.yaml")

		err := os.WriteFile(configPath, []byte(`invalid: [yaml: content`), 0o600)
		require.NoError(t, err)

		_, err = clientcli.LoadConfigFile(configPath)
		assert.Error(t, err)
	})
}

func TestConfigFile_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := &clientcli.ConfigFile{}
	require.NoError(t, cfg.AddProfile(clientcli.Profile{Name: "dev", APIKey: "k", APISecret: "s"}))
	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := clientcli.LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Profiles, loaded.Profiles)

	require.NoError(t, cfg.AddProfile(clientcli.Profile{Name: "prod"}))
	require.NoError(t, cfg.Save(path))
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temporary files are left behind")
	assert.Equal(t, "config.yaml", entries[0].Name())
}

func TestConfigFile_Profiles(t *testing.T) {
	t.Run("empty file", func(t *testing.T) {
		cfg := &clientcli.ConfigFile{}
		_, err := cfg.GetProfile("")
		assert.ErrorIs(t, err, clientcli.ErrNoProfiles)
		assert.Empty(t, cfg.DefaultName())
	})

	t.Run("first profile is the implicit default", func(t *testing.T) {
		cfg := &clientcli.ConfigFile{Profiles: []clientcli.Profile{{Name: "a"}, {Name: "b"}}}
		p, err := cfg.GetDefaultProfile()
		require.NoError(t, err)
		assert.Equal(t, "a", p.Name)
	})

	t.Run("first added profile becomes default", func(t *testing.T) {
		cfg := &clientcli.ConfigFile{}
		require.NoError(t, cfg.AddProfile(clientcli.Profile{Name: "a"}))
		require.NoError(t, cfg.AddProfile(clientcli.Profile{Name: "b"}))
		assert.True(t, cfg.Profiles[0].Default)
		assert.False(t, cfg.Profiles[1].Default)
	})

	t.Run("add invalid", func(t *testing.T) {
		cfg := &clientcli.ConfigFile{}
		assert.ErrorIs(t, cfg.AddProfile(clientcli.Profile{}), apillon.ErrInvalidInput)
		assert.ErrorIs(t, cfg.AddProfile(clientcli.Profile{Name: "a", APIURL: "api"}), apillon.ErrInvalidInput)
		assert.Empty(t, cfg.Profiles)
	})

	t.Run("add duplicate", func(t *testing.T) {
		cfg := &clientcli.ConfigFile{Profiles: []clientcli.Profile{{Name: "a"}}}
		err := cfg.AddProfile(clientcli.Profile{Name: "a"})
		assert.ErrorIs(t, err, clientcli.ErrProfileExists)
	})

	t.Run("add default clears others", func(t *testing.T) {
		cfg := &clientcli.ConfigFile{Profiles: []clientcli.Profile{{Name: "a", Default: true}}}
		require.NoError(t, cfg.AddProfile(clientcli.Profile{Name: "b", Default: true}))
		assert.False(t, cfg.Profiles[0].Default)
		assert.True(t, cfg.Profiles[1].Default)
	})

	t.Run("update", func(t *testing.T) {
		cfg := &clientcli.ConfigFile{Profiles: []clientcli.Profile{{Name: "a", APIKey: "old"}}}
		require.NoError(t, cfg.UpdateProfile(clientcli.Profile{Name: "a", APIKey: "new"}))
		assert.Equal(t, "new", cfg.Profiles[0].APIKey)

		err := cfg.UpdateProfile(clientcli.Profile{Name: "missing"})
		assert.ErrorIs(t, err, clientcli.ErrProfileNotFound)
	})

	t.Run("remove", func(t *testing.T) {
		cfg := &clientcli.ConfigFile{Profiles: []clientcli.Profile{{Name: "a"}, {Name: "b"}}}
		require.NoError(t, cfg.RemoveProfile("a"))
		assert.Equal(t, []string{"b"}, cfg.ProfileNames())

		err := cfg.RemoveProfile("a")
		assert.ErrorIs(t, err, clientcli.ErrProfileNotFound)
	})

	t.Run("set default", func(t *testing.T) {
		cfg := &clientcli.ConfigFile{Profiles: []clientcli.Profile{{Name: "a", Default: true}, {Name: "b"}}}
		require.NoError(t, cfg.SetDefault("b"))
		assert.Equal(t, "b", cfg.DefaultName())
		assert.False(t, cfg.Profiles[0].Default)

		err := cfg.SetDefault("missing")
		assert.ErrorIs(t, err, clientcli.ErrProfileNotFound)
		assert.Equal(t, "b", cfg.DefaultName(), "a failed SetDefault changes nothing")
	})
}

func TestProfile_APIConfig(t *testing.T) {
	p := &clientcli.Profile{Name: "dev", APIURL: "https://api-dev.apillon.io", APIKey: "k", APISecret: "s"}
	c := p.APIConfig()
	assert.Equal(t, "https://api-dev.apillon.io", c.URL)
	assert.Equal(t, "k", c.Key)
	assert.Equal(t, "s", c.Secret)

	var nilProfile *clientcli.Profile
	assert.Empty(t, nilProfile.APIConfig().Key)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("APILLON_PROFILE", "staging")
	t.Setenv("APILLON_CONFIG", "/tmp/apillon.yaml")

	assert.Equal(t, "staging", clientcli.ProfileFromEnv())
	assert.Equal(t, "/tmp/apillon.yaml", clientcli.ConfigPathFromEnv())
}

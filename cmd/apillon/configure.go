package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/apillon/apillon-go"
	"github.com/apillon/apillon-go/clientcli"
)

const verifyTimeout = 10 * time.Second

func (a *app) newConfigureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Manage credential profiles",
		Long: `Manage credential profiles in the profiles file.

Profiles store the API key pair of several projects and let you switch
between them using --profile or APILLON_PROFILE.

Profiles are stored in ~/.apillon/config.yaml`,
		// Profiles are managed here, so the selected one is not loaded.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	}

	var showSecrets bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all configured profiles",
		Long: `List all profiles configured in the profiles file.

The default profile is marked with an asterisk (*).`,
		Args: cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.runConfigureList(showSecrets)
		},
	}
	listCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "show secret values")

	showCmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Show profile details",
		Long: `Show details for a profile.

If no name is provided, shows the default profile.
Secrets are hidden by default; use --show-secrets to reveal them.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.runConfigureShow(args, showSecrets)
		},
	}
	showCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "show secret values")

	cmd.AddCommand(
		listCmd,
		a.newConfigureAddCmd(),
		&cobra.Command{
			Use:     "remove <name>",
			Aliases: []string{"rm"},
			Short:   "Remove a profile",
			Args:    cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return a.runConfigureRemove(args[0])
			},
		},
		&cobra.Command{
			Use:   "set-default <name>",
			Short: "Set the default profile",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return a.runConfigureSetDefault(args[0])
			},
		},
		showCmd,
	)
	return cmd
}

func (a *app) newConfigureAddCmd() *cobra.Command {
	var (
		setDefault bool
		noVerify   bool
	)
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add or update a profile",
		Long: `Add a profile.

Values given with --api-url, --key and --secret are used as is; you are
prompted for the others. The key pair is verified against the API before
saving unless --no-verify is set.

Examples:
  apillon configure add production
  apillon configure add ci --key $KEY --secret $SECRET --default`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConfigureAdd(cmd, args[0], setDefault, noVerify)
		},
	}
	cmd.Flags().BoolVar(&setDefault, "default", false, "set as the default profile")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "skip verifying the credentials")
	return cmd
}

// loadProfiles reads the profiles file; a missing file yields an empty one
// when missingOK is set.
func (a *app) loadProfiles(missingOK bool) (*clientcli.ConfigFile, string, error) {
	path, _ := a.profilesPath()
	if path == "" {
		return nil, "", errors.New("cannot determine the profiles file; use --config")
	}
	cfg, err := clientcli.LoadConfigFile(path)
	if err != nil {
		if missingOK && errors.Is(err, os.ErrNotExist) {
			return &clientcli.ConfigFile{}, path, nil
		}
		return nil, path, fmt.Errorf("load config: %w", err)
	}
	return cfg, path, nil
}

func (a *app) runConfigureList(showSecrets bool) error {
	cfg, _, err := a.loadProfiles(true)
	if err != nil {
		return err
	}

	if len(cfg.Profiles) == 0 {
		return a.printMessage("No profiles configured.\nRun 'apillon configure add <name>' to create one.",
			map[string]any{"profiles": []any{}})
	}

	return a.formatter().FormatProfileList(a.stdout, cfg.Profiles, cfg.DefaultName(), showSecrets)
}

func (a *app) runConfigureAdd(cmd *cobra.Command, name string, setDefault, noVerify bool) error {
	cfg, path, err := a.loadProfiles(true)
	if err != nil {
		return err
	}

	existing, _ := cfg.GetProfile(name)
	if existing != nil {
		if !a.confirm(fmt.Sprintf("Profile '%s' already exists. Update it", name)) {
			_, _ = fmt.Fprintln(a.stdout, "Cancelled.")
			return nil
		}
	}

	endpoint, err := a.flagOrPrompt(cmd, "api-url", promptui.Prompt{
		Label:    "API URL",
		Default:  apillon.DefaultAPIURL,
		Validate: validateEndpoint,
	})
	if err != nil {
		return a.handlePromptError(err)
	}
	if err := validateEndpoint(endpoint); err != nil {
		return err
	}

	key, err := a.flagOrPrompt(cmd, "key", promptui.Prompt{
		Label:    "API Key",
		Validate: required("API key"),
	})
	if err != nil {
		return a.handlePromptError(err)
	}

	secret, err := a.flagOrPrompt(cmd, "secret", promptui.Prompt{
		Label:    "API Secret",
		Mask:     '*',
		Validate: required("API secret"),
	})
	if err != nil {
		return a.handlePromptError(err)
	}

	// The first profile is always the default.
	if len(cfg.Profiles) == 0 || (existing != nil && existing.Default) {
		setDefault = true
	} else if !setDefault && !cmd.Flags().Changed("default") {
		setDefault = a.confirm("Set as default profile")
	}

	if !noVerify {
		_, _ = fmt.Fprint(a.stderr, "Verifying credentials... ")
		if verifyErr := verifyCredentials(cmd.Context(), endpoint, key, secret); verifyErr != nil {
			_, _ = fmt.Fprintln(a.stderr, "FAILED")
			_, _ = fmt.Fprintf(a.stderr, "Warning: %v\n", verifyErr)
			if !a.confirm("Save profile anyway") {
				_, _ = fmt.Fprintln(a.stdout, "Cancelled.")
				return nil
			}
		} else {
			_, _ = fmt.Fprintln(a.stderr, "OK")
		}
	}

	profile := clientcli.Profile{
		Name:      name,
		APIURL:    strings.TrimSuffix(endpoint, "/"),
		APIKey:    key,
		APISecret: secret,
	}
	if profile.APIURL == apillon.DefaultAPIURL {
		profile.APIURL = ""
	}

	if existing != nil {
		profile.Default = existing.Default
		err = cfg.UpdateProfile(profile)
	} else {
		err = cfg.AddProfile(profile)
	}
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	if setDefault {
		if err := cfg.SetDefault(name); err != nil {
			return err
		}
	}

	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	msg := fmt.Sprintf("Profile '%s' added.", name)
	if existing != nil {
		msg = fmt.Sprintf("Profile '%s' updated.", name)
	}
	if setDefault {
		msg += "\nSet as default profile."
	}
	return a.printMessage(msg, map[string]any{"profile": name, "default": setDefault})
}

func (a *app) runConfigureRemove(name string) error {
	cfg, path, err := a.loadProfiles(false)
	if err != nil {
		return err
	}

	if _, err = cfg.GetProfile(name); err != nil {
		return err
	}

	if !a.confirm(fmt.Sprintf("Remove profile '%s'", name)) {
		_, _ = fmt.Fprintln(a.stdout, "Cancelled.")
		return nil
	}

	if err := cfg.RemoveProfile(name); err != nil {
		return fmt.Errorf("remove profile: %w", err)
	}

	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	return a.printMessage(fmt.Sprintf("Profile '%s' removed.", name), map[string]any{"profile": name, "removed": true})
}

func (a *app) runConfigureSetDefault(name string) error {
	cfg, path, err := a.loadProfiles(false)
	if err != nil {
		return err
	}

	if err := cfg.SetDefault(name); err != nil {
		return err
	}

	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	return a.printMessage(fmt.Sprintf("Default profile set to '%s'.", name), map[string]any{"default": name})
}

func (a *app) runConfigureShow(args []string, showSecrets bool) error {
	cfg, _, err := a.loadProfiles(false)
	if err != nil {
		return err
	}

	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	p, err := cfg.GetProfile(name)
	if err != nil {
		return err
	}

	return a.formatter().FormatProfileShow(a.stdout, *p, p.Name == cfg.DefaultName(), showSecrets)
}

// flagOrPrompt returns the value of an explicitly set flag, prompting otherwise.
func (a *app) flagOrPrompt(cmd *cobra.Command, flag string, prompt promptui.Prompt) (string, error) {
	if f := cmd.Flag(flag); f != nil && f.Changed {
		return f.Value.String(), nil
	}
	a.wire(&prompt)
	return prompt.Run()
}

// confirm asks a yes/no question; anything but yes is a no.
func (a *app) confirm(label string) bool {
	prompt := promptui.Prompt{Label: label, IsConfirm: true}
	a.wire(&prompt)
	_, err := prompt.Run()
	return err == nil
}

func (a *app) wire(p *promptui.Prompt) {
	p.Stdin = io.NopCloser(a.stdin)
	p.Stdout = nopWriteCloser{a.stdout}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// handlePromptError handles promptui errors.
func (a *app) handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) || errors.Is(err, promptui.ErrEOF) {
		_, _ = fmt.Fprintln(a.stdout, "Cancelled.")
		return &exitError{code: 0}
	}
	return err
}

func validateEndpoint(input string) error {
	if input == "" {
		return errors.New("API URL is required")
	}
	parsedURL, err := url.Parse(input)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return errors.New("URL must start with http:// or https://")
	}
	return nil
}

func required(what string) promptui.ValidateFunc {
	return func(input string) error {
		if strings.TrimSpace(input) == "" {
			return fmt.Errorf("%s is required", what)
		}
		return nil
	}
}

// verifyCredentials checks the key pair with one authenticated request.
func verifyCredentials(ctx context.Context, endpoint, key, secret string) error {
	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	client, err := clientcli.New(&apillon.Config{APIURL: endpoint, APIKey: key, APISecret: secret})
	if err != nil {
		return err
	}
	return client.VerifyCredentials(ctx)
}

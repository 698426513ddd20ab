package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/apillon/apillon-go"
	"github.com/apillon/apillon-go/clientcli"
	"github.com/apillon/apillon-go/config"
	"github.com/apillon/apillon-go/logging"
)

// app carries the state shared by every command of one invocation.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	profileName string
	profileFile string
	jsonOutput  bool
	quiet       bool

	cfg    *config.Config
	logger *slog.Logger
	out    clientcli.Formatter
}

func (a *app) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "apillon",
		Version: version,
		Short:   "Command line client for the Apillon platform",
		Long: `apillon - command line client for the Apillon Web3 platform

Manage storage buckets, hosted websites, NFT collections and cloud functions
of an Apillon project.

Credentials are resolved in this order (highest first):
  flags (--key, --secret, --api-url)
  environment (APILLON_API_KEY, APILLON_API_SECRET, APILLON_API_URL, .env)
  the selected profile (--profile, APILLON_PROFILE, or the default profile)
  ./apillon.yaml`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.String("api-url", "", "API URL (default: "+apillon.DefaultAPIURL+", env: APILLON_API_URL)")
	flags.String("key", "", "API key (env: APILLON_API_KEY)")
	flags.String("secret", "", "API secret (env: APILLON_API_SECRET)")
	flags.String("log-level", "", "log level: none, error, verbose (env: APILLON_LOG_LEVEL)")
	flags.Bool("log-json", false, "write logs as JSON")
	flags.Bool("debug", false, "verbose logging")
	flags.StringVarP(&a.profileName, "profile", "p", "", "profile to use (env: APILLON_PROFILE)")
	flags.StringVarP(&a.profileFile, "config", "c", "", "profiles file (default: ~/.apillon/config.yaml, env: APILLON_CONFIG)")
	flags.BoolVar(&a.jsonOutput, "json", false, "output as JSON")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "suppress non-essential output")

	root.AddCommand(
		a.newStorageCmd(),
		a.newHostingCmd(),
		a.newNFTCmd(),
		a.newCloudFunctionsCmd(),
		a.newConfigureCmd(),
	)
	return root
}

// setup resolves configuration and the logger before any API command runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	profile, err := a.loadProfile()
	if err != nil {
		return err
	}

	cfg, err := config.Load(nil, cmd.Flags(), config.WithProfile(profile.APIConfig()))
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logging.New(a.stderr, logging.Options{
		Level:   cfg.LogLevel(),
		JSON:    cfg.Log.JSON,
		NoColor: os.Getenv("NO_COLOR") != "",
	})
	cmd.SetContext(config.WithContext(cmd.Context(), cfg))

	if profile != nil {
		a.logger.Debug("using profile", "profile", profile.Name)
	}
	a.logger.Debug("configuration loaded", "api", cfg.API.URL)
	return nil
}

// profilesPath resolves the profiles file. explicit reports whether the user
// named it, in which case a missing file is an error.
func (a *app) profilesPath() (path string, explicit bool) {
	if a.profileFile != "" {
		return a.profileFile, true
	}
	if p := clientcli.ConfigPathFromEnv(); p != "" {
		return p, true
	}
	return clientcli.DefaultConfigPath(), false
}

// loadProfile returns the selected profile, or nil when none is configured
// and none was asked for.
func (a *app) loadProfile() (*clientcli.Profile, error) {
	name := a.profileName
	if name == "" {
		name = clientcli.ProfileFromEnv()
	}

	path, explicit := a.profilesPath()
	if path == "" {
		if name != "" {
			return nil, fmt.Errorf("profile %q: %w", name, clientcli.ErrProfileNotFound)
		}
		return nil, nil
	}

	file, err := clientcli.LoadConfigFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit && name == "" {
			return nil, nil
		}
		return nil, fmt.Errorf("load profiles: %w", err)
	}

	p, err := file.GetProfile(name)
	if err != nil {
		if name == "" && errors.Is(err, clientcli.ErrNoProfiles) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (a *app) formatter() clientcli.Formatter {
	if a.out == nil {
		a.out = clientcli.NewFormatter(a.jsonOutput, a.quiet)
	}
	return a.out
}

// client creates an API client from the resolved configuration.
func (a *app) client() (*clientcli.Client, error) {
	return clientcli.New(a.cfg.Client(),
		apillon.WithLogger(a.logger),
		apillon.WithUserAgent("apillon-cli/"+version),
	)
}

func (a *app) printTable(v any, t *clientcli.Table) error {
	return a.formatter().FormatTable(a.stdout, v, t)
}

func (a *app) printDetails(v any, d *clientcli.Details) error {
	return a.formatter().FormatDetails(a.stdout, v, d)
}

func (a *app) printMessage(msg string, v any) error {
	return a.formatter().FormatMessage(a.stdout, msg, v)
}

// pageFlags are the list parameters every list command accepts.
type pageFlags struct {
	search  string
	page    int
	limit   int
	orderBy string
	desc    bool
}

func addPageFlags(cmd *cobra.Command) *pageFlags {
	p := &pageFlags{}
	cmd.Flags().StringVar(&p.search, "search", "", "filter by name")
	cmd.Flags().IntVar(&p.page, "page", 1, "page number")
	cmd.Flags().IntVarP(&p.limit, "limit", "l", 20, "items per page")
	cmd.Flags().StringVar(&p.orderBy, "order-by", "", "sort field")
	cmd.Flags().BoolVar(&p.desc, "desc", false, "sort descending")
	return p
}

// pagination returns the flags the user set; the rest stay at the API defaults.
func (p *pageFlags) pagination(cmd *cobra.Command) apillon.Pagination {
	var pg apillon.Pagination
	flags := cmd.Flags()
	if flags.Changed("search") {
		pg.Search = apillon.Ptr(p.search)
	}
	if flags.Changed("page") {
		pg.Page = apillon.Ptr(p.page)
	}
	if flags.Changed("limit") {
		pg.Limit = apillon.Ptr(p.limit)
	}
	if flags.Changed("order-by") {
		pg.OrderBy = apillon.Ptr(p.orderBy)
	}
	if flags.Changed("desc") {
		pg.Desc = apillon.Ptr(p.desc)
	}
	return pg
}

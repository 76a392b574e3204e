package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/docfetch/acquire"
	"github.com/hazyhaar/docfetch/internal/config"
)

type options struct {
	configPath string
	logLevel   string
	remote     string
	email      string
	password   string
	output     string
	limit      int
}

type app struct {
	opts   options
	cfg    *config.Config
	logger *slog.Logger
	stdout io.Writer
	getenv func(string) string
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	a := &app{stdout: stdout, getenv: os.Getenv}

	root := &cobra.Command{
		Use:           "docfetch",
		Short:         "Acquire documents from the budstandart portal and search them.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.opts.configPath, "config", "", "path to docfetch.yaml")
	f.StringVar(&a.opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	f.StringVar(&a.opts.remote, "remote", "", "Chrome remote debugging URL (default http://localhost:9222)")
	f.StringVar(&a.opts.email, "email", "", "portal account email (or BUDSTANDART_EMAIL)")
	f.StringVar(&a.opts.password, "password", "", "portal account password (or BUDSTANDART_PASSWORD, or the keyring)")
	f.IntVar(&a.opts.limit, "limit", 20, "maximum number of listing results")
	f.StringVar(&a.opts.output, "output", "", "output file or directory for downloads")

	root.AddCommand(
		a.searchCmd(),
		a.documentCmd(),
		a.downloadCmd(),
		a.recentCmd(),
		a.credentialsCmd(),
		a.storeCmd(),
		a.mcpCmd(),
	)
	return root
}

// setup loads the configuration file and applies flag overrides.
func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if a.opts.configPath != "" {
		loaded, err := config.LoadFile(a.opts.configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = a.opts.logLevel
	}
	if flags.Changed("remote") {
		cfg.Browser.Remote = a.opts.remote
	}
	if flags.Changed("limit") {
		cfg.Portal.Limit = a.opts.limit
	}

	a.cfg = cfg
	a.logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(a.logger)
	return nil
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// acquirer builds the portal client from the configuration and the
// resolved credentials.
func (a *app) acquirer() (*acquire.Acquirer, error) {
	creds, err := resolveCredentials(a.opts.email, a.opts.password, a.getenv)
	if err != nil {
		return nil, err
	}
	return acquire.New(acquire.Config{
		BaseURL:           a.cfg.Portal.BaseURL,
		RemoteURL:         a.cfg.Browser.Remote,
		NavigationTimeout: a.cfg.Browser.NavigationTimeout,
		NavigationRate:    a.cfg.Browser.NavigationRate,
		ResourceBlocking:  a.cfg.Browser.ResourceBlocking,
		DownloadDir:       a.cfg.Download.Dir,
		DownloadTimeout:   a.cfg.Download.Timeout,
		UserAgent:         a.cfg.Download.UserAgent,
		Credentials:       creds,
		Logger:            a.logger,
	})
}

func (a *app) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = a.stdout.Write(data)
	return err
}

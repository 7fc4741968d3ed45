// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"

	"github.com/stratalaunch/strata/internal/acquire"
	"github.com/stratalaunch/strata/internal/config"
	"github.com/stratalaunch/strata/internal/issue"
	"github.com/stratalaunch/strata/internal/launch"
	"github.com/stratalaunch/strata/pkg/platform"
	"github.com/stratalaunch/strata/pkg/target"
)

type (
	// ConfigProvider loads configuration from explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// LauncherFactory builds the handoff mechanism for a loaded configuration.
	LauncherFactory func(cfg *config.Config, stdin io.Reader, stdout, stderr io.Writer) launch.Launcher

	// App holds all CLI dependencies.
	App struct {
		Config   ConfigProvider
		Launcher LauncherFactory
		// HTTPClient is shared by every http(s) repository.
		HTTPClient *http.Client

		stdin  io.Reader
		stdout io.Writer
		stderr io.Writer

		flags rootFlags
	}

	// Dependencies defines optional constructor inputs for App.
	// Nil fields fall back to production implementations.
	Dependencies struct {
		Config     ConfigProvider
		Launcher   LauncherFactory
		HTTPClient *http.Client
		Stdin      io.Reader
		Stdout     io.Writer
		Stderr     io.Writer
	}

	// rootFlags are the persistent flags shared by every subcommand.
	rootFlags struct {
		verbose    bool
		configPath string
		baseDir    string
	}

	// session is one command invocation's loaded state.
	session struct {
		app       *App
		cfg       *config.Config
		logger    *log.Logger
		catalogue *target.Catalogue
	}
)

// NewApp creates an App with provided dependencies.
func NewApp(deps Dependencies) (*App, error) {
	app := &App{
		Config:     deps.Config,
		Launcher:   deps.Launcher,
		HTTPClient: deps.HTTPClient,
		stdin:      deps.Stdin,
		stdout:     deps.Stdout,
		stderr:     deps.Stderr,
	}

	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.Launcher == nil {
		app.Launcher = javaLauncher
	}
	if app.HTTPClient == nil {
		app.HTTPClient = &http.Client{}
	}
	if app.stdin == nil {
		app.stdin = os.Stdin
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}

	return app, nil
}

// javaLauncher is the production LauncherFactory: a child JVM sharing stdio.
func javaLauncher(cfg *config.Config, stdin io.Reader, stdout, stderr io.Writer) launch.Launcher {
	return &launch.JavaLauncher{
		Binary:  cfg.Java.Binary,
		JVMArgs: cfg.Java.JVMArgs,
		Sandbox: platform.DetectSandbox(),
		Stdin:   stdin,
		Stdout:  stdout,
		Stderr:  stderr,
	}
}

// loadSession reads configuration and the target catalogue.
func (a *App) loadSession(ctx context.Context) (*session, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: a.flags.configPath,
		BaseDir:        a.flags.baseDir,
	})
	if err != nil {
		if ae, ok := issue.AsActionable(err); ok && ae.IssueId == 0 {
			ae.IssueId = issue.ConfigLoadFailedId
		}
		return nil, err
	}

	logger := log.NewWithOptions(a.stderr, log.Options{Prefix: config.AppName})
	if a.flags.verbose || cfg.UI.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	catalogue, err := loadCatalogue(cfg)
	if err != nil {
		return nil, err
	}

	return &session{app: a, cfg: cfg, logger: logger, catalogue: catalogue}, nil
}

func loadCatalogue(cfg *config.Config) (*target.Catalogue, error) {
	if cfg.TargetsFile == "" {
		return target.Builtin()
	}
	path := cfg.ResolvePath(cfg.TargetsFile)
	catalogue, err := target.LoadCatalogue(path)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load target catalogue").
			WithResource(path).
			WithSuggestion("Check targets_file in your configuration, or unset it to use the built-in targets").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(err).
			BuildError()
	}
	return catalogue, nil
}

// verbose reports whether debug output and error chains are enabled.
func (s *session) verbose() bool {
	return s.app.flags.verbose || s.cfg.UI.Verbose
}

// manifestDir is the absolute location of emitted manifests.
func (s *session) manifestDir() string {
	return s.cfg.ResolvePath(s.cfg.ManifestDir)
}

// acquirer builds an Acquirer over the configured cache and repositories.
func (s *session) acquirer() (*acquire.Acquirer, error) {
	repos := make([]acquire.Source, 0, len(s.cfg.Repositories))
	for _, r := range s.cfg.Repositories {
		src, err := acquire.NewRepository(r.Name, r.URL, s.app.HTTPClient)
		if err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("configure repository").
				WithResource(r.Name).
				WithSuggestionf("Change the url of repository %q to an http, https or file url", r.Name).
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
		repos = append(repos, src)
	}

	cache := acquire.NewCache(s.cfg.ResolvePath(s.cfg.CacheDir), s.logger)
	return acquire.New(cache, repos, acquire.Options{
		Concurrency: s.cfg.Acquire.Concurrency,
		Timeout:     s.cfg.Acquire.Timeout,
		MaxAttempts: s.cfg.Acquire.MaxAttempts,
		BaseBackoff: s.cfg.Acquire.BaseBackoff,
		Logger:      s.logger,
		HTTPClient:  s.app.HTTPClient,
	}), nil
}

// dispatcher wires the Target Dispatcher. withLauncher is false for plan-only use.
func (s *session) dispatcher(withLauncher bool) (*launch.Dispatcher, error) {
	acq, err := s.acquirer()
	if err != nil {
		return nil, err
	}

	opts := launch.Options{
		Catalogue:   s.catalogue,
		ManifestDir: s.manifestDir(),
		BaseDir:     s.cfg.BaseDir(),
		LocalLayers: s.cfg.Layers.Patterns(),
		Acquirer:    acq,
		MainClass:   s.cfg.Java.MainClass,
		Logger:      s.logger,
	}
	if withLauncher {
		opts.Launcher = s.app.Launcher(s.cfg, s.app.stdin, s.app.stdout, s.app.stderr)
	}
	return launch.NewDispatcher(opts)
}

// glamourStyle maps the configured color scheme to a glamour style name.
func glamourStyle(cfg *config.Config) string {
	if cfg == nil {
		return "auto"
	}
	return cfg.UI.ColorScheme.String()
}

// fail renders err with its issue entry on stderr and converts it to an
// ExitError carrying the reserved exit code.
func (a *App) fail(s *session, err error) error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}

	var cfg *config.Config
	verbose := a.flags.verbose
	logger := log.New(a.stderr)
	if s != nil {
		cfg, verbose, logger = s.cfg, s.verbose(), s.logger
	}

	svcErr, exitErr := classifyForDisplay(err, verbose)
	renderServiceError(a.stderr, svcErr, glamourStyle(cfg), logger)
	return exitErr
}

// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/stratalaunch/strata/internal/issue"
	"github.com/stratalaunch/strata/pkg/cueutil"
	"github.com/stratalaunch/strata/pkg/platform"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "strata"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// LocalConfigFileName is looked up in the working directory when the
	// user config directory has no config file.
	LocalConfigFileName = "strata.cue"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "STRATA"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the strata configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case platform.Windows:
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case platform.Darwin:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// setDefaults registers every key so that AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()
	v.SetDefault("cache_dir", defaults.CacheDir)
	v.SetDefault("manifest_dir", defaults.ManifestDir)
	v.SetDefault("targets_file", defaults.TargetsFile)
	v.SetDefault("requirements_file", defaults.RequirementsFile)
	v.SetDefault("layers.bootstrap", defaults.Layers.Bootstrap)
	v.SetDefault("layers.launch-support", defaults.Layers.LaunchSupport)
	v.SetDefault("layers.patch-definitions", defaults.Layers.PatchDefinitions)
	v.SetDefault("layers.main", defaults.Layers.Main)
	v.SetDefault("repositories", repositoriesToMaps(defaults.Repositories))
	v.SetDefault("acquire.concurrency", defaults.Acquire.Concurrency)
	v.SetDefault("acquire.timeout", defaults.Acquire.Timeout)
	v.SetDefault("acquire.max_attempts", defaults.Acquire.MaxAttempts)
	v.SetDefault("acquire.base_backoff", defaults.Acquire.BaseBackoff)
	v.SetDefault("java.binary", defaults.Java.Binary)
	v.SetDefault("java.jvm_args", defaults.Java.JVMArgs)
	v.SetDefault("java.main_class", defaults.Java.MainClass)
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
}

func repositoriesToMaps(repos []Repository) []map[string]any {
	out := make([]map[string]any, 0, len(repos))
	for _, r := range repos {
		out = append(out, map[string]any{"name": r.Name, "url": r.URL})
	}
	return out
}

// loadWithOptions performs option-driven config loading without mutating
// package-level cache state. Callers that want caching can wrap this function.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	resolvedPath, err := mergeConfigFile(v, opts)
	if err != nil {
		return nil, "", err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.sourceFile = resolvedPath
	cfg.baseDir = opts.BaseDir
	if cfg.baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			cfg.baseDir = wd
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Repository names must be unique").
			WithSuggestion("Check STRATA_* environment variables for malformed values").
			WithSuggestion("Run 'strata config show' to inspect the effective configuration").
			Wrap(err).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// mergeConfigFile locates the config file per the lookup order and merges it
// into v. It returns the path that was loaded, or "" when defaults apply.
func mergeConfigFile(v *viper.Viper, opts LoadOptions) (string, error) {
	// A custom config file path (--config) is used exclusively.
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				WithSuggestion("Use 'strata config show' to see default configuration").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, loadFile(v, opts.ConfigFilePath)
	}

	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}

	candidates := []string{filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)}
	local := LocalConfigFileName
	if opts.BaseDir != "" {
		local = filepath.Join(opts.BaseDir, LocalConfigFileName)
	}
	candidates = append(candidates, local)

	for _, path := range candidates {
		if fileExists(path) {
			return path, loadFile(v, path)
		}
	}

	// No config file: defaults and environment only.
	return "", nil
}

func loadFile(v *viper.Viper, path string) error {
	if err := loadCUEIntoViper(v, path); err != nil {
		return issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(path).
			WithSuggestion("Check that the file contains valid CUE syntax").
			WithSuggestion("Verify the configuration values match the expected schema").
			WithSuggestion("See 'strata config --help' for configuration options").
			Wrap(err).
			BuildError()
	}
	return nil
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Most config fields are optional, so the document need not be concrete.
	parsed, err := cueutil.ParseAndDecode[map[string]any](
		[]byte(configSchema), data, "#Config",
		cueutil.WithConcrete(false),
		cueutil.WithFilename(path),
	)
	if err != nil {
		return err
	}

	// Merge into Viper (preserves defaults, allows env overrides)
	if err := v.MergeConfigMap(*parsed.Value); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig creates a default config file in cfgDir ("" for
// ConfigDir()) if it doesn't exist. It returns the path of the config file.
func CreateDefaultConfig(cfgDir string) (string, error) {
	cfgDir, err := configDirWithOverride(cfgDir)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	cfgPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)

	if _, err := os.Stat(cfgPath); err == nil {
		return cfgPath, nil
	}

	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return cfgPath, nil
}

// Save writes cfg to the config file in cfgDir ("" for ConfigDir()).
func Save(cfg *Config, cfgDir string) error {
	cfgDir, err := configDirWithOverride(cfgDir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	cfgPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)

	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// Strata Configuration File\n\n")

	fmt.Fprintf(&sb, "cache_dir:    %q\n", cfg.CacheDir)
	fmt.Fprintf(&sb, "manifest_dir: %q\n", cfg.ManifestDir)
	if cfg.TargetsFile != "" {
		fmt.Fprintf(&sb, "targets_file: %q\n", cfg.TargetsFile)
	}
	if cfg.RequirementsFile != "" {
		fmt.Fprintf(&sb, "requirements_file: %q\n", cfg.RequirementsFile)
	}

	sb.WriteString("\nlayers: {\n")
	writeGlobs(&sb, "bootstrap", cfg.Layers.Bootstrap)
	writeGlobs(&sb, `"launch-support"`, cfg.Layers.LaunchSupport)
	writeGlobs(&sb, `"patch-definitions"`, cfg.Layers.PatchDefinitions)
	writeGlobs(&sb, "main", cfg.Layers.Main)
	sb.WriteString("}\n")

	sb.WriteString("\nrepositories: [\n")
	for _, r := range cfg.Repositories {
		fmt.Fprintf(&sb, "\t{name: %q, url: %q},\n", r.Name, r.URL)
	}
	sb.WriteString("]\n")

	sb.WriteString("\nacquire: {\n")
	fmt.Fprintf(&sb, "\tconcurrency:  %d\n", cfg.Acquire.Concurrency)
	fmt.Fprintf(&sb, "\ttimeout:      %q\n", cfg.Acquire.Timeout.String())
	fmt.Fprintf(&sb, "\tmax_attempts: %d\n", cfg.Acquire.MaxAttempts)
	fmt.Fprintf(&sb, "\tbase_backoff: %q\n", cfg.Acquire.BaseBackoff.String())
	sb.WriteString("}\n")

	sb.WriteString("\njava: {\n")
	fmt.Fprintf(&sb, "\tbinary: %q\n", cfg.Java.Binary)
	if cfg.Java.JVMArgs != "" {
		fmt.Fprintf(&sb, "\tjvm_args: %q\n", cfg.Java.JVMArgs)
	}
	if cfg.Java.MainClass != "" {
		fmt.Fprintf(&sb, "\tmain_class: %q\n", cfg.Java.MainClass)
	}
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}

func writeGlobs(sb *strings.Builder, key string, globs []string) {
	quoted := make([]string, 0, len(globs))
	for _, g := range globs {
		quoted = append(quoted, fmt.Sprintf("%q", g))
	}
	fmt.Fprintf(sb, "\t%s: [%s]\n", key, strings.Join(quoted, ", "))
}

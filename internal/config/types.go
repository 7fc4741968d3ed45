// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultRepositoryURL is Maven Central.
	DefaultRepositoryURL = "https://repo.maven.apache.org/maven2"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// CacheDir is the content-addressed artifact cache.
		CacheDir string `json:"cache_dir" mapstructure:"cache_dir"`
		// ManifestDir holds one <target>.toml manifest per target.
		ManifestDir string `json:"manifest_dir" mapstructure:"manifest_dir"`
		// TargetsFile is a CUE target catalogue; empty means the built-in one.
		TargetsFile string `json:"targets_file,omitempty" mapstructure:"targets_file"`
		// RequirementsFile is the CUE input to manifest emission.
		RequirementsFile string `json:"requirements_file,omitempty" mapstructure:"requirements_file"`
		// Layers lists the local output globs of each layer.
		Layers LayersConfig `json:"layers" mapstructure:"layers"`
		// Repositories are tried in order for coordinates without an explicit source.
		Repositories []Repository `json:"repositories" mapstructure:"repositories"`
		// Acquire tunes artifact fetching.
		Acquire AcquireConfig `json:"acquire" mapstructure:"acquire"`
		// Java configures the handoff to the main layer.
		Java JavaConfig `json:"java" mapstructure:"java"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`

		// baseDir anchors relative paths; set by the loader.
		baseDir string
		// sourceFile is the config file that was merged, "" for defaults only.
		sourceFile string
	}

	// LayersConfig holds doublestar globs per layer, relative to the base directory.
	LayersConfig struct {
		Bootstrap        []string `json:"bootstrap,omitempty" mapstructure:"bootstrap"`
		LaunchSupport    []string `json:"launch-support,omitempty" mapstructure:"launch-support"`
		PatchDefinitions []string `json:"patch-definitions,omitempty" mapstructure:"patch-definitions"`
		Main             []string `json:"main,omitempty" mapstructure:"main"`
	}

	// Repository is a Maven-layout artifact repository.
	Repository struct {
		Name string `json:"name" mapstructure:"name"`
		URL  string `json:"url" mapstructure:"url"`
	}

	// AcquireConfig bounds parallelism, per-attempt time and retries.
	AcquireConfig struct {
		Concurrency int           `json:"concurrency" mapstructure:"concurrency"`
		Timeout     time.Duration `json:"timeout" mapstructure:"timeout"`
		MaxAttempts int           `json:"max_attempts" mapstructure:"max_attempts"`
		BaseBackoff time.Duration `json:"base_backoff" mapstructure:"base_backoff"`
	}

	// JavaConfig configures the JVM that runs the main layer.
	JavaConfig struct {
		// Binary is the java executable.
		Binary string `json:"binary" mapstructure:"binary"`
		// JVMArgs is one shell-quoted string of JVM options.
		JVMArgs string `json:"jvm_args,omitempty" mapstructure:"jvm_args"`
		// MainClass is used when the target descriptor names none.
		MainClass string `json:"main_class,omitempty" mapstructure:"main_class"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables debug logging
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// Patterns returns the globs keyed by layer name.
func (l LayersConfig) Patterns() map[string][]string {
	return map[string][]string{
		"bootstrap":         l.Bootstrap,
		"launch-support":    l.LaunchSupport,
		"patch-definitions": l.PatchDefinitions,
		"main":              l.Main,
	}
}

// BaseDir returns the directory relative paths are resolved against.
func (c *Config) BaseDir() string {
	if c.baseDir == "" {
		return "."
	}
	return c.baseDir
}

// SourceFile returns the config file the values were read from, or "" when
// only defaults and environment variables applied.
func (c *Config) SourceFile() string { return c.sourceFile }

// ResolvePath anchors a relative path at the base directory. Empty stays empty.
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	if strings.HasPrefix(p, "~"+string(filepath.Separator)) || p == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return filepath.Join(c.BaseDir(), p)
}

// Validate returns an *InvalidConfigError listing every problem CUE cannot
// express: duplicate repository names and values set through the environment.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.CacheDir) == "" {
		errs = append(errs, errors.New("cache_dir must not be empty"))
	}
	if strings.TrimSpace(c.ManifestDir) == "" {
		errs = append(errs, errors.New("manifest_dir must not be empty"))
	}

	seen := make(map[string]bool, len(c.Repositories))
	for i, r := range c.Repositories {
		if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.URL) == "" {
			errs = append(errs, fmt.Errorf("repositories[%d]: name and url are required", i))
			continue
		}
		if seen[r.Name] {
			errs = append(errs, fmt.Errorf("repositories[%d]: duplicate name %q", i, r.Name))
		}
		seen[r.Name] = true
	}

	if c.Acquire.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("acquire.concurrency must be at least 1, got %d", c.Acquire.Concurrency))
	}
	if c.Acquire.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("acquire.max_attempts must be at least 1, got %d", c.Acquire.MaxAttempts))
	}
	if c.Acquire.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("acquire.timeout must be positive, got %s", c.Acquire.Timeout))
	}
	if c.Acquire.BaseBackoff < 0 {
		errs = append(errs, fmt.Errorf("acquire.base_backoff must not be negative, got %s", c.Acquire.BaseBackoff))
	}
	if strings.TrimSpace(c.Java.Binary) == "" {
		errs = append(errs, errors.New("java.binary must not be empty"))
	}
	if err := c.UI.ColorScheme.Validate(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// Validate returns an error if the ColorScheme is not one of the defined color schemes.
func (cs ColorScheme) Validate() error {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return &InvalidColorSchemeError{Value: cs}
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		CacheDir:    defaultCacheDir(),
		ManifestDir: "manifests",
		Layers: LayersConfig{
			Bootstrap:        []string{"libs/bootstrap/*.jar"},
			LaunchSupport:    []string{"libs/launch-support/*.jar"},
			PatchDefinitions: []string{"libs/patch-definitions/*.jar"},
			Main:             []string{"libs/main/*.jar"},
		},
		Repositories: []Repository{{Name: "central", URL: DefaultRepositoryURL}},
		Acquire: AcquireConfig{
			Concurrency: 4,
			Timeout:     60 * time.Second,
			MaxAttempts: 3,
			BaseBackoff: 500 * time.Millisecond,
		},
		Java: JavaConfig{Binary: "java"},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}

// defaultCacheDir returns <user cache dir>/strata/artifacts, or a relative
// .strata/artifacts when the platform has no user cache directory.
func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".strata", "artifacts")
	}
	return filepath.Join(dir, AppName, "artifacts")
}

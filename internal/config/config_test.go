// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stratalaunch/strata/internal/issue"
	"github.com/stratalaunch/strata/pkg/platform"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestConfigDir(t *testing.T) {
	if runtime.GOOS != platform.Linux {
		t.Skip("XDG lookup is Linux-specific")
	}
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() returned error: %v", err)
	}
	if want := filepath.Join(xdg, AppName); dir != want {
		t.Errorf("ConfigDir() = %s, want %s", dir, want)
	}
}

func TestLoad_ReturnsDefaultsWhenNoConfigFile(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	cfg, path, err := LoadWithPath(context.Background(), LoadOptions{ConfigDirPath: t.TempDir(), BaseDir: base})
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if path != "" {
		t.Errorf("resolved path = %q, want empty", path)
	}
	if cfg.Acquire.Concurrency != DefaultConfig().Acquire.Concurrency {
		t.Errorf("Acquire.Concurrency = %d, want default", cfg.Acquire.Concurrency)
	}
	if cfg.BaseDir() != base {
		t.Errorf("BaseDir() = %q, want %q", cfg.BaseDir(), base)
	}
}

func TestLoad_FromConfigDir(t *testing.T) {
	t.Parallel()

	cfgDir := t.TempDir()
	want := writeConfig(t, cfgDir, "config.cue", `
manifest_dir: "build/manifests"
layers: {main: ["out/*.jar"]}
repositories: [
	{name: "mirror", url: "https://mirror.example/m2"},
	{name: "central", url: "https://repo.maven.apache.org/maven2"},
]
acquire: {timeout: "90s", base_backoff: "0s"}
java: {jvm_args: "-Xmx1G"}
ui: {verbose: true}
`)

	cfg, path, err := LoadWithPath(context.Background(), LoadOptions{ConfigDirPath: cfgDir, BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if path != want {
		t.Errorf("resolved path = %q, want %q", path, want)
	}
	if cfg.SourceFile() != want {
		t.Errorf("SourceFile() = %q, want %q", cfg.SourceFile(), want)
	}
	if cfg.ManifestDir != "build/manifests" {
		t.Errorf("ManifestDir = %q", cfg.ManifestDir)
	}
	if len(cfg.Layers.Main) != 1 || cfg.Layers.Main[0] != "out/*.jar" {
		t.Errorf("Layers.Main = %v", cfg.Layers.Main)
	}
	if len(cfg.Layers.Bootstrap) != 1 {
		t.Errorf("Layers.Bootstrap = %v, want default retained", cfg.Layers.Bootstrap)
	}
	if len(cfg.Repositories) != 2 || cfg.Repositories[0].Name != "mirror" {
		t.Errorf("Repositories = %v", cfg.Repositories)
	}
	if cfg.Acquire.Timeout != 90*time.Second {
		t.Errorf("Acquire.Timeout = %s, want 90s", cfg.Acquire.Timeout)
	}
	if cfg.Acquire.BaseBackoff != 0 {
		t.Errorf("Acquire.BaseBackoff = %s, want 0s", cfg.Acquire.BaseBackoff)
	}
	if cfg.Acquire.MaxAttempts != 3 {
		t.Errorf("Acquire.MaxAttempts = %d, want default 3", cfg.Acquire.MaxAttempts)
	}
	if cfg.Java.JVMArgs != "-Xmx1G" || cfg.Java.Binary != "java" {
		t.Errorf("Java = %+v", cfg.Java)
	}
	if !cfg.UI.Verbose {
		t.Error("UI.Verbose = false, want true")
	}
}

func TestLoad_LocalConfigFallback(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	want := writeConfig(t, base, LocalConfigFileName, `manifest_dir: "local-manifests"`)

	cfg, path, err := LoadWithPath(context.Background(), LoadOptions{ConfigDirPath: t.TempDir(), BaseDir: base})
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if path != want {
		t.Errorf("resolved path = %q, want %q", path, want)
	}
	if cfg.ManifestDir != "local-manifests" {
		t.Errorf("ManifestDir = %q", cfg.ManifestDir)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("STRATA_MANIFEST_DIR", "env-manifests")
	t.Setenv("STRATA_ACQUIRE_CONCURRENCY", "9")
	t.Setenv("STRATA_ACQUIRE_TIMEOUT", "5s")
	t.Setenv("STRATA_JAVA_BINARY", "/opt/jdk/bin/java")

	cfgDir := t.TempDir()
	writeConfig(t, cfgDir, "config.cue", `manifest_dir: "file-manifests"`)

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: cfgDir, BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.ManifestDir != "env-manifests" {
		t.Errorf("ManifestDir = %q, want env-manifests", cfg.ManifestDir)
	}
	if cfg.Acquire.Concurrency != 9 {
		t.Errorf("Acquire.Concurrency = %d, want 9", cfg.Acquire.Concurrency)
	}
	if cfg.Acquire.Timeout != 5*time.Second {
		t.Errorf("Acquire.Timeout = %s, want 5s", cfg.Acquire.Timeout)
	}
	if cfg.Java.Binary != "/opt/jdk/bin/java" {
		t.Errorf("Java.Binary = %q", cfg.Java.Binary)
	}
}

func TestLoad_CustomPath_NotFound_ReturnsError(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nope.cue")
	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: missing})
	if err == nil {
		t.Fatal("Load() = nil error, want not found")
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("error is %T, want *issue.ActionableError", err)
	}
	if ae.Resource != missing {
		t.Errorf("Resource = %q, want %q", ae.Resource, missing)
	}
	if !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("error = %q", err)
	}
}

func TestLoad_SchemaViolation_ReturnsError(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), "custom.cue", `acquire: {concurrency: 0}`)
	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
	if err == nil {
		t.Fatal("Load() = nil error, want schema violation")
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.Operation != "load configuration" {
		t.Errorf("error = %v, want actionable load configuration error", err)
	}
}

func TestLoad_DuplicateRepository_ReturnsError(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), "custom.cue", `repositories: [
	{name: "a", url: "https://one.example"},
	{name: "a", url: "https://two.example"},
]`)
	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Load() error = %v, want ErrInvalidConfig", err)
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewProvider().Load(ctx, LoadOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestGenerateCUE_RoundTrips(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.TargetsFile = "targets.cue"
	cfg.Java.JVMArgs = `-Xmx2G -Dname="a b"`
	cfg.Acquire.BaseBackoff = 250 * time.Millisecond

	path := writeConfig(t, t.TempDir(), "generated.cue", GenerateCUE(cfg))
	loaded, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("Load(GenerateCUE()) returned error: %v", err)
	}
	if loaded.TargetsFile != cfg.TargetsFile || loaded.Java.JVMArgs != cfg.Java.JVMArgs {
		t.Errorf("loaded = %+v, want %+v", loaded, cfg)
	}
	if loaded.Acquire != cfg.Acquire {
		t.Errorf("Acquire = %+v, want %+v", loaded.Acquire, cfg.Acquire)
	}
	if len(loaded.Layers.LaunchSupport) != 1 || loaded.Layers.LaunchSupport[0] != cfg.Layers.LaunchSupport[0] {
		t.Errorf("Layers.LaunchSupport = %v", loaded.Layers.LaunchSupport)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "strata")
	path, err := CreateDefaultConfig(dir)
	if err != nil {
		t.Fatalf("CreateDefaultConfig() returned error: %v", err)
	}
	if want := filepath.Join(dir, "config.cue"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	// Existing files are left alone.
	if err := os.WriteFile(path, []byte(`manifest_dir: "kept"`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := CreateDefaultConfig(dir); err != nil {
		t.Fatalf("second CreateDefaultConfig() returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `manifest_dir: "kept"` {
		t.Errorf("config was overwritten: %s", data)
	}
}

func TestSaveThenLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Java.MainClass = "net.example.Main"
	cfg.Repositories = append(cfg.Repositories, Repository{Name: "mirror", URL: "https://mirror.example/m2"})

	if err := Save(cfg, dir); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}

	loaded, path, err := LoadWithPath(context.Background(), LoadOptions{ConfigDirPath: dir, BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if path != filepath.Join(dir, "config.cue") {
		t.Errorf("loaded from %q", path)
	}
	if loaded.Java.MainClass != "net.example.Main" || len(loaded.Repositories) != 2 {
		t.Errorf("loaded = %+v", loaded)
	}
}

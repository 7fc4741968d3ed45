// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/stratalaunch/strata/internal/config"
	"github.com/stratalaunch/strata/internal/launch"
	"github.com/stratalaunch/strata/internal/testutil"
	"github.com/stratalaunch/strata/internal/transform"
	"github.com/stratalaunch/strata/pkg/artifact"
	"github.com/stratalaunch/strata/pkg/manifest"
	"github.com/stratalaunch/strata/pkg/types"
)

const workspaceTargets = `targets: [{
	id:              "hosted"
	description:     "Hosted test target"
	provided_layers: ["bootstrap", "launch-support"]
	transforms: [
		{kind: "patch-config", resource: "hosted.patches.json"},
		{kind: "access-widener", resource: "hosted.accesswidener"},
	]
	main_class: "net.example.Main"
}]
`

// recordingLauncher captures handoffs instead of starting a JVM.
type recordingLauncher struct {
	mu    sync.Mutex
	calls []launch.Handoff
	exit  types.ExitCode
}

func (l *recordingLauncher) Launch(_ context.Context, h launch.Handoff) (types.ExitCode, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, h)
	return l.exit, nil
}

// workspace is a project directory with a strata.cue, a target catalogue,
// a requirements file, a file:// repository and a local main layer.
type workspace struct {
	root     string
	launcher *recordingLauncher
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	root := t.TempDir()
	w := &workspace{root: root, launcher: &recordingLauncher{}}

	patches := w.publish(t, "net.example", "patches", "1.0", testutil.Jar(t, map[string]string{
		"hosted.accesswidener": "accessWidener v2 named\naccessible field net/example/Server ticks I\n",
		"hosted.patches.json": `{
	"package": "net.example.mixin",
	"mixins": ["ServerMixin"],
	"patches": [{"mixin": "ServerMixin", "kind": "inject", "target": "net.example.Server", "member": "tick()V", "at": "HEAD"}],
}`,
		"net/example/mixin/ServerMixin.class": "mixin",
	}))
	loader := w.publish(t, "net.loader", "loader", "2.0", testutil.Jar(t, map[string]string{
		"net/loader/Loader.class": "loader",
	}))

	w.write(t, "requirements.cue", `buckets: [
	{name: "patches", layer: "patch-definitions", artifacts: [`+artifactCUE(patches)+`]},
	{name: "loader", layer: "launch-support", artifacts: [`+artifactCUE(loader)+`]},
]
exclusions: hosts: hosted: [{group: "net.loader"}]
`)
	w.write(t, "targets.cue", workspaceTargets)
	w.write(t, "out/main/net/example/Main.class", "main")
	w.write(t, "out/main/net/example/Server.class", "server")
	w.write(t, "strata.cue", `cache_dir:         "cache"
manifest_dir:      "manifests"
targets_file:      "targets.cue"
requirements_file: "requirements.cue"
layers: main: ["out/main"]
repositories: [{name: "local", url: "file://`+filepath.ToSlash(filepath.Join(root, "repo"))+`"}]
acquire: {max_attempts: 1, base_backoff: "0s"}
`)
	return w
}

func (w *workspace) write(t *testing.T, rel, content string) {
	t.Helper()
	testutil.MustWriteFile(t, filepath.Join(w.root, filepath.FromSlash(rel)), []byte(content))
}

func (w *workspace) publish(t *testing.T, group, name, version string, content []byte) artifact.Coordinate {
	t.Helper()
	return testutil.Publish(t, filepath.Join(w.root, "repo"), group, name, version, content)
}

// run executes one CLI invocation against the workspace.
func (w *workspace) run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app, err := NewApp(Dependencies{
		Launcher: func(*config.Config, io.Reader, io.Writer, io.Writer) launch.Launcher { return w.launcher },
		Stdin:    strings.NewReader(""),
		Stdout:   &out,
		Stderr:   &errOut,
	})
	if err != nil {
		t.Fatal(err)
	}
	root := NewRootCommand(app)
	root.SetArgs(append([]string{"--config", filepath.Join(w.root, "strata.cue"), "--dir", w.root}, args...))
	root.SetOut(&out)
	root.SetErr(&errOut)
	err = root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func artifactCUE(c artifact.Coordinate) string {
	return `{group: "` + c.Group + `", name: "` + c.Name + `", version: "` + c.Version + `", hash: "` + c.Hash.String() + `"}`
}

func exitCode(t *testing.T, err error) types.ExitCode {
	t.Helper()
	if err == nil {
		return types.ExitSuccess
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error %v is not an *ExitError", err)
	}
	return exitErr.Code
}

func TestEmitPlanLaunch(t *testing.T) {
	t.Parallel()

	w := newWorkspace(t)

	stdout, stderr, err := w.run(t, "emit")
	if err != nil {
		t.Fatalf("emit error = %v\nstderr: %s", err, stderr)
	}
	if !strings.Contains(stdout, "hosted") {
		t.Errorf("emit output = %q, want the target id", stdout)
	}

	m, err := manifest.Load(manifest.Path(filepath.Join(w.root, "manifests"), "hosted"))
	if err != nil {
		t.Fatalf("emitted manifest: %v", err)
	}
	if m.Bucket("loader") != nil {
		t.Error("host-provided loader bucket survived emission")
	}
	if m.Bucket("patches") == nil {
		t.Fatal("patches bucket missing from emitted manifest")
	}

	stdout, stderr, err = w.run(t, "plan", "hosted", "--format", "json")
	if err != nil {
		t.Fatalf("plan error = %v\nstderr: %s", err, stderr)
	}
	var view planView
	if err := json.Unmarshal([]byte(stdout), &view); err != nil {
		t.Fatalf("plan json: %v\n%s", err, stdout)
	}
	if view.Target != "hosted" || view.MainClass != "net.example.Main" {
		t.Errorf("plan = %+v", view)
	}
	if len(view.Transforms) != 2 || view.Transforms[0].Resource != "hosted.accesswidener" {
		t.Errorf("plan transforms = %+v, want access widener first", view.Transforms)
	}
	if view.Cache.Fetched != 1 {
		t.Errorf("plan fetched = %d, want 1", view.Cache.Fetched)
	}
	if len(w.launcher.calls) != 0 {
		t.Fatal("plan launched the target")
	}

	w.launcher.exit = 7
	_, stderr, err = w.run(t, "launch", "hosted", "--world", "alpha")
	if got := exitCode(t, err); got != 7 {
		t.Fatalf("launch exit = %d, want the main layer's 7 (err %v, stderr %s)", got, err, stderr)
	}
	if len(w.launcher.calls) != 1 {
		t.Fatalf("launcher called %d times, want 1", len(w.launcher.calls))
	}
	h := w.launcher.calls[0]
	if !slices.Equal(h.Args, []string{"--world", "alpha"}) {
		t.Errorf("forwarded args = %v", h.Args)
	}
	wantProps := []string{
		"-D" + transform.AccessWidenersProperty + "=hosted.accesswidener",
		"-D" + transform.PatchConfigsProperty + "=hosted.patches.json",
	}
	if !slices.Equal(h.SystemProperties, wantProps) {
		t.Errorf("system properties = %v, want %v", h.SystemProperties, wantProps)
	}
}

func TestLaunchForwardsArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"bare", []string{"--world", "alpha"}, []string{"--world", "alpha"}},
		{"after separator", []string{"--", "--world", "alpha"}, []string{"--world", "alpha"}},
		{"literal separator kept", []string{"--", "--", "x"}, []string{"--", "x"}},
		{"none", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := newWorkspace(t)
			if _, stderr, err := w.run(t, "emit"); err != nil {
				t.Fatalf("emit error = %v\nstderr: %s", err, stderr)
			}
			if _, stderr, err := w.run(t, append([]string{"launch", "hosted"}, tt.args...)...); err != nil {
				t.Fatalf("launch error = %v\nstderr: %s", err, stderr)
			}
			if len(w.launcher.calls) != 1 {
				t.Fatalf("launcher called %d times, want 1", len(w.launcher.calls))
			}
			if got := w.launcher.calls[0].Args; !slices.Equal(got, tt.want) {
				t.Errorf("forwarded args = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPlanYAML(t *testing.T) {
	t.Parallel()

	w := newWorkspace(t)
	if _, stderr, err := w.run(t, "emit", "--target", "hosted"); err != nil {
		t.Fatalf("emit error = %v\nstderr: %s", err, stderr)
	}

	stdout, stderr, err := w.run(t, "plan", "hosted", "-f", "yaml")
	if err != nil {
		t.Fatalf("plan error = %v\nstderr: %s", err, stderr)
	}
	var view planView
	if err := yaml.Unmarshal([]byte(stdout), &view); err != nil {
		t.Fatalf("plan yaml: %v\n%s", err, stdout)
	}
	if view.Target != "hosted" || len(view.Classpath) == 0 {
		t.Errorf("plan = %+v", view)
	}
	if !slices.Contains(view.ProvidedLayers, "bootstrap") {
		t.Errorf("provided layers = %v", view.ProvidedLayers)
	}
}

func TestFetchPopulatesCache(t *testing.T) {
	t.Parallel()

	w := newWorkspace(t)
	if _, stderr, err := w.run(t, "emit"); err != nil {
		t.Fatalf("emit error = %v\nstderr: %s", err, stderr)
	}

	stdout, stderr, err := w.run(t, "fetch", "hosted")
	if err != nil {
		t.Fatalf("fetch error = %v\nstderr: %s", err, stderr)
	}
	if !strings.Contains(stdout, "0 cached, 1 fetched") {
		t.Errorf("first fetch output = %q", stdout)
	}

	stdout, _, err = w.run(t, "fetch", "hosted")
	if err != nil {
		t.Fatalf("second fetch error = %v", err)
	}
	if !strings.Contains(stdout, "1 cached, 0 fetched") {
		t.Errorf("second fetch output = %q", stdout)
	}
}

func TestLaunchFailuresMapToExitCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		emit      bool
		setup     func(t *testing.T, w *workspace)
		args      []string
		want      types.ExitCode
		wantInErr string
	}{
		{
			name:      "unknown target",
			emit:      true,
			args:      []string{"launch", "quilt"},
			want:      types.ExitUnknownTarget,
			wantInErr: `unknown target "quilt"`,
		},
		{
			name:      "manifest not emitted",
			args:      []string{"launch", "hosted"},
			want:      types.ExitFailure,
			wantInErr: "no manifest",
		},
		{
			name: "main layer missing",
			emit: true,
			setup: func(t *testing.T, w *workspace) {
				testutil.MustRemoveAll(t, filepath.Join(w.root, "out"))
			},
			args: []string{"launch", "hosted"},
			want: types.ExitLayerMissing,
		},
		{
			name: "no source holds the artifact",
			emit: true,
			setup: func(t *testing.T, w *workspace) {
				testutil.MustRemoveAll(t, filepath.Join(w.root, "repo"))
			},
			args: []string{"fetch", "hosted"},
			want: types.ExitMissingSource,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := newWorkspace(t)
			if tt.emit {
				if _, stderr, err := w.run(t, "emit"); err != nil {
					t.Fatalf("emit error = %v\nstderr: %s", err, stderr)
				}
			}
			if tt.setup != nil {
				tt.setup(t, w)
			}

			_, stderr, err := w.run(t, tt.args...)
			if got := exitCode(t, err); got != tt.want {
				t.Errorf("exit = %d, want %d (err %v)", got, tt.want, err)
			}
			if tt.wantInErr != "" && !strings.Contains(stderr, tt.wantInErr) {
				t.Errorf("stderr = %q, want %q", stderr, tt.wantInErr)
			}
			if len(w.launcher.calls) != 0 {
				t.Error("failed launch reached the launcher")
			}
		})
	}
}

func TestEmitWithoutRequirements(t *testing.T) {
	t.Parallel()

	w := newWorkspace(t)
	w.write(t, "strata.cue", `targets_file: "targets.cue"`+"\n")

	_, stderr, err := w.run(t, "emit")
	if exitCode(t, err) != types.ExitFailure {
		t.Fatalf("emit err = %v, want generic failure", err)
	}
	if !strings.Contains(stderr, "--requirements") {
		t.Errorf("stderr = %q, want a --requirements suggestion", stderr)
	}
}

func TestTargetsLists(t *testing.T) {
	t.Parallel()

	w := newWorkspace(t)
	stdout, _, err := w.run(t, "targets")
	if err != nil {
		t.Fatalf("targets error = %v", err)
	}
	for _, want := range []string{"hosted", "bootstrap, launch-support", "Hosted test target"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("targets output lacks %q:\n%s", want, stdout)
		}
	}
}

func TestConfigShowAndDump(t *testing.T) {
	t.Parallel()

	w := newWorkspace(t)

	stdout, _, err := w.run(t, "config", "show")
	if err != nil {
		t.Fatalf("config show error = %v", err)
	}
	for _, want := range []string{filepath.Join(w.root, "strata.cue"), filepath.Join(w.root, "manifests"), "local"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("config show lacks %q:\n%s", want, stdout)
		}
	}

	stdout, _, err = w.run(t, "config", "dump")
	if err != nil {
		t.Fatalf("config dump error = %v", err)
	}
	if !strings.Contains(stdout, `targets_file:`) || !strings.Contains(stdout, `"out/main"`) {
		t.Errorf("config dump = %s", stdout)
	}
}

func TestSetConfigValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key, value string
		wantErr    bool
		check      func(*config.Config) bool
	}{
		{key: "java.main_class", value: "net.example.Main", check: func(c *config.Config) bool { return c.Java.MainClass == "net.example.Main" }},
		{key: "acquire.concurrency", value: "8", check: func(c *config.Config) bool { return c.Acquire.Concurrency == 8 }},
		{key: "ui.verbose", value: "true", check: func(c *config.Config) bool { return c.UI.Verbose }},
		{key: "acquire.concurrency", value: "0", wantErr: true},
		{key: "ui.color_scheme", value: "neon", wantErr: true},
		{key: "ui.verbose", value: "maybe", wantErr: true},
		{key: "container_engine", value: "docker", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Parallel()

			cfg := config.DefaultConfig()
			err := setConfigValue(cfg, tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("setConfigValue() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil && !tt.check(cfg) {
				t.Errorf("%s not applied: %+v", tt.key, cfg)
			}
		})
	}
}

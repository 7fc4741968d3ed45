// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/stratalaunch/strata/internal/config"
	"github.com/stratalaunch/strata/internal/issue"
)

// settableKeys lists the scalar keys `config set` accepts.
var settableKeys = []string{
	"cache_dir", "manifest_dir", "targets_file", "requirements_file",
	"acquire.concurrency", "acquire.max_attempts",
	"java.binary", "java.jvm_args", "java.main_class",
	"ui.color_scheme", "ui.verbose",
}

// newConfigCommand creates the `strata config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage strata configuration",
		Long: `Manage strata configuration.

Configuration is stored in:
  - Linux: ~/.config/strata/config.cue
  - macOS: ~/Library/Application Support/strata/config.cue
  - Windows: %APPDATA%\strata\config.cue

A strata.cue in the base directory is used when no user configuration exists.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.loadSession(cmd.Context())
			if err != nil {
				return app.fail(nil, err)
			}
			showConfig(cmd.OutOrStdout(), s.cfg)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefaultConfig("")
			if err != nil {
				return app.fail(nil, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgDir, err := config.ConfigDir()
			if err != nil {
				return app.fail(nil, err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config directory: %s\n", cfgDir)
			fmt.Fprintf(out, "Config file: %s\n", filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Set a configuration value",
		Args:      cobra.ExactArgs(2),
		ValidArgs: settableKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.loadSession(cmd.Context())
			if err != nil {
				return app.fail(nil, err)
			}
			if err := setConfigValue(s.cfg, args[0], args[1]); err != nil {
				return app.fail(s, err)
			}
			if err := config.Save(s.cfg, ""); err != nil {
				return app.fail(s, issue.WrapWithOperation(err, "save configuration"))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Set %s = %s\n", SuccessStyle.Render("✓"), args[0], args[1])
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.loadSession(cmd.Context())
			if err != nil {
				return app.fail(nil, err)
			}
			fmt.Fprint(cmd.OutOrStdout(), config.GenerateCUE(s.cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(w io.Writer, cfg *config.Config) {
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	if src := cfg.SourceFile(); src != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), src)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Base directory"), cfg.BaseDir())
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("cache_dir"), valueStyle.Render(cfg.ResolvePath(cfg.CacheDir)))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("manifest_dir"), valueStyle.Render(cfg.ResolvePath(cfg.ManifestDir)))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("targets_file"), orNone(cfg.TargetsFile, "(built-in targets)"))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("requirements_file"), orNone(cfg.RequirementsFile, "(not set)"))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("layers"))
	for _, name := range []string{"bootstrap", "launch-support", "patch-definitions", "main"} {
		fmt.Fprintf(w, "  %s: %v\n", name, valueStyle.Render(fmt.Sprint(cfg.Layers.Patterns()[name])))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("repositories"))
	if len(cfg.Repositories) == 0 {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(none configured)"))
	}
	for _, r := range cfg.Repositories {
		fmt.Fprintf(w, "  - %s %s\n", valueStyle.Render(r.Name), r.URL)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("acquire"))
	fmt.Fprintf(w, "  concurrency: %s\n", valueStyle.Render(strconv.Itoa(cfg.Acquire.Concurrency)))
	fmt.Fprintf(w, "  timeout: %s\n", valueStyle.Render(cfg.Acquire.Timeout.String()))
	fmt.Fprintf(w, "  max_attempts: %s\n", valueStyle.Render(strconv.Itoa(cfg.Acquire.MaxAttempts)))
	fmt.Fprintf(w, "  base_backoff: %s\n", valueStyle.Render(cfg.Acquire.BaseBackoff.String()))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("java"))
	fmt.Fprintf(w, "  binary: %s\n", valueStyle.Render(cfg.Java.Binary))
	fmt.Fprintf(w, "  jvm_args: %s\n", orNone(cfg.Java.JVMArgs, "(none)"))
	fmt.Fprintf(w, "  main_class: %s\n", orNone(cfg.Java.MainClass, "(from target)"))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  color_scheme: %s\n", valueStyle.Render(cfg.UI.ColorScheme.String()))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(strconv.FormatBool(cfg.UI.Verbose)))
}

func orNone(v, placeholder string) string {
	if v == "" {
		return SubtitleStyle.Render(placeholder)
	}
	return SuccessStyle.Render(v)
}

// setConfigValue applies one key to cfg and revalidates it.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "cache_dir":
		cfg.CacheDir = value
	case "manifest_dir":
		cfg.ManifestDir = value
	case "targets_file":
		cfg.TargetsFile = value
	case "requirements_file":
		cfg.RequirementsFile = value
	case "acquire.concurrency", "acquire.max_attempts":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		if key == "acquire.concurrency" {
			cfg.Acquire.Concurrency = n
		} else {
			cfg.Acquire.MaxAttempts = n
		}
	case "java.binary":
		cfg.Java.Binary = value
	case "java.jvm_args":
		cfg.Java.JVMArgs = value
	case "java.main_class":
		cfg.Java.MainClass = value
	case "ui.color_scheme":
		cfg.UI.ColorScheme = config.ColorScheme(value)
	case "ui.verbose":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid ui.verbose: %w", err)
		}
		cfg.UI.Verbose = b
	default:
		return fmt.Errorf("unknown configuration key: %s\nValid keys: %v", key, settableKeys)
	}
	return cfg.Validate()
}

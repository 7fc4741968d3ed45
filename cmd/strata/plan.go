// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/stratalaunch/strata/internal/classpath"
	"github.com/stratalaunch/strata/internal/launch"
	"github.com/stratalaunch/strata/pkg/target"
)

// Plan output formats.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

type (
	// planView is the serialized form of a launch plan.
	planView struct {
		Target         string             `json:"target" yaml:"target"`
		MainClass      string             `json:"main_class,omitempty" yaml:"main_class,omitempty"`
		ProvidedLayers []target.LayerName `json:"provided_layers" yaml:"provided_layers"`
		Cache          cacheView          `json:"cache" yaml:"cache"`
		Classpath      []classpath.Entry  `json:"classpath" yaml:"classpath"`
		Transforms     []stepView         `json:"transforms" yaml:"transforms"`
	}

	cacheView struct {
		Hits    int `json:"hits" yaml:"hits"`
		Fetched int `json:"fetched" yaml:"fetched"`
	}

	stepView struct {
		Kind     target.TransformKind `json:"kind" yaml:"kind"`
		Resource string               `json:"resource" yaml:"resource"`
		Location string               `json:"location" yaml:"location"`
	}
)

func newPlanCommand(app *App) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "plan <target>",
		Short: "Resolve a target's launch plan without launching it",
		Long: `Resolve a target's launch plan without launching it.

The manifest is acquired, the classpath composed and every transform loaded
and verified, exactly as launch would. The result is printed instead of
handed off.`,
		Example: `  strata plan standalone
  strata plan hosted --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, app, args[0], format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text, json or yaml")

	return cmd
}

func runPlan(cmd *cobra.Command, app *App, id, format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
	default:
		return fmt.Errorf("unknown format %q (valid: text, json, yaml)", format)
	}

	s, err := app.loadSession(cmd.Context())
	if err != nil {
		return app.fail(nil, err)
	}

	d, err := s.dispatcher(false)
	if err != nil {
		return app.fail(s, err)
	}

	p, err := d.Plan(cmd.Context(), id)
	if err != nil {
		return app.fail(s, err)
	}

	view := newPlanView(p)
	out := cmd.OutOrStdout()
	switch format {
	case formatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	case formatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(view); err != nil {
			return err
		}
		return enc.Close()
	default:
		renderPlanText(out, view)
		return nil
	}
}

func newPlanView(p *launch.Plan) planView {
	view := planView{
		Target:         p.Target.ID,
		MainClass:      p.MainClass,
		ProvidedLayers: p.Target.ProvidedLayers,
		Classpath:      p.Classpath.Entries,
		Transforms:     make([]stepView, 0, len(p.Steps)),
	}
	if view.ProvidedLayers == nil {
		view.ProvidedLayers = []target.LayerName{}
	}
	if view.Classpath == nil {
		view.Classpath = []classpath.Entry{}
	}
	if p.Acquired != nil {
		view.Cache = cacheView{Hits: p.Acquired.Hits, Fetched: p.Acquired.Fetched}
	}
	for _, st := range p.Steps {
		view.Transforms = append(view.Transforms, stepView{
			Kind:     st.Spec.Kind,
			Resource: st.Spec.Resource,
			Location: st.Location,
		})
	}
	return view
}

func renderPlanText(w io.Writer, v planView) {
	fmt.Fprintln(w, TitleStyle.Render("Target ")+CmdStyle.Render(v.Target))
	if v.MainClass != "" {
		fmt.Fprintln(w, SubtitleStyle.Render("main class: ")+v.MainClass)
	}
	fmt.Fprintln(w, SubtitleStyle.Render(fmt.Sprintf("cache: %d hits, %d fetched", v.Cache.Hits, v.Cache.Fetched)))
	fmt.Fprintln(w)

	fmt.Fprintln(w, TitleStyle.Render("Classpath"))
	for _, l := range target.Layers() {
		if slices.Contains(v.ProvidedLayers, l) {
			fmt.Fprintln(w, layerStyle.Render(l.String())+" "+WarningStyle.Render("(provided by host)"))
			continue
		}
		fmt.Fprintln(w, layerStyle.Render(l.String()))
		for _, e := range v.Classpath {
			if e.Layer != l {
				continue
			}
			label := e.Path
			if e.Artifact != nil {
				label += " " + SubtitleStyle.Render("["+e.Artifact.String()+"]")
			}
			fmt.Fprintln(w, entryStyle.Render(label))
		}
	}

	if len(v.Transforms) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render("Transforms"))
	for i, st := range v.Transforms {
		fmt.Fprintln(w, entryStyle.Render(fmt.Sprintf("%d. %s:%s %s", i+1, st.Kind, st.Resource,
			SubtitleStyle.Render("("+st.Location+")"))))
	}
}

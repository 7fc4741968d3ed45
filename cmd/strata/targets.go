// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/stratalaunch/strata/pkg/target"
)

func newTargetsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "targets",
		Aliases: []string{"ls"},
		Short:   "List known deployment targets",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.loadSession(cmd.Context())
			if err != nil {
				return app.fail(nil, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTargets(s.catalogue.Targets()))
			return nil
		},
	}
}

func renderTargets(targets []target.Descriptor) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorMuted)).
		Headers("TARGET", "PROVIDED LAYERS", "TRANSFORMS", "DESCRIPTION").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, d := range targets {
		provided := make([]string, 0, len(d.ProvidedLayers))
		for _, l := range d.ProvidedLayers {
			provided = append(provided, l.String())
		}
		if len(provided) == 0 {
			provided = append(provided, "-")
		}
		t.Row(d.ID, strings.Join(provided, ", "), fmt.Sprint(len(d.Transforms)), d.Description)
	}

	return t.Render()
}

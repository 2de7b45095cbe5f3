package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/thanhnhan2tn/package-updater/pkg/updater"
)

func (c *CLI) depsCommand() *cobra.Command {
	var outdatedOnly bool

	cmd := &cobra.Command{
		Use:   "deps [project]",
		Short: "Show dependencies with their latest versions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.newApp(ctx, cacheFile)
			if err != nil {
				return err
			}
			defer a.Close()

			prog := newProgress(c.Logger)
			deps, err := c.loadDependencies(cmd, a, args)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Resolved %d dependencies", len(deps)))

			if outdatedOnly {
				deps = filterOutdated(deps)
			}
			if len(deps) == 0 {
				printSuccess("Nothing to show")
				return nil
			}

			fmt.Println(renderDependencies(deps))
			if n := len(filterOutdated(deps)); n > 0 {
				printNextStep(fmt.Sprintf("%d outdated, upgrade with", n), appName+" upgrade")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&outdatedOnly, "outdated", false, "only show outdated dependencies")
	return cmd
}

// loadDependencies resolves every project's dependencies, or only those of
// args[0] when given.
func (c *CLI) loadDependencies(cmd *cobra.Command, a *app, args []string) ([]updater.Dependency, error) {
	ctx := cmd.Context()
	spinner := newSpinnerWithContext(ctx, "Resolving latest versions...")
	spinner.Start()
	defer spinner.Stop()

	if len(args) == 1 {
		return a.svc.ProjectDependencies(ctx, args[0])
	}
	return a.svc.Dependencies(ctx)
}

func filterOutdated(deps []updater.Dependency) []updater.Dependency {
	var out []updater.Dependency
	for _, d := range deps {
		if d.Outdated {
			out = append(out, d)
		}
	}
	return out
}

func renderDependencies(deps []updater.Dependency) string {
	rows := make([][]string, len(deps))
	for i, d := range deps {
		name := d.Name
		if d.DevDependency {
			name += " (dev)"
		}
		rows[i] = []string{
			versionStatus(d.LatestVersion, d.Outdated),
			d.Project,
			string(d.Type),
			name,
			d.CurrentVersion,
			orDash(d.LatestVersion),
		}
	}
	return renderTable(
		[]string{"", "Project", "Type", "Package", "Current", "Latest"},
		rows,
		func(row, col int) lipgloss.Style {
			if col == 1 || col == 2 {
				return StyleDim
			}
			return statusStyle(rows[row][0])
		},
	)
}

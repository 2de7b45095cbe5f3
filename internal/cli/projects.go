package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/thanhnhan2tn/package-updater/pkg/project"
)

func (c *CLI) projectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List configured projects, cloning or pulling remote ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.newApp(ctx, cacheFile)
			if err != nil {
				return err
			}
			defer a.Close()

			spinner := newSpinnerWithContext(ctx, "Syncing projects...")
			spinner.Start()
			list, err := a.svc.Projects(ctx)
			spinner.Stop()
			if err != nil {
				return err
			}
			if len(list) == 0 {
				printInfo("No projects configured in %s", a.cfg.ProjectsFile)
				return nil
			}

			fmt.Println(renderProjects(list))
			return nil
		},
	}
}

func renderProjects(list []project.Project) string {
	rows := make([][]string, len(list))
	for i, p := range list {
		source := "local"
		if p.Remote() {
			source = p.RemoteURL
			if p.Cloned {
				source += " " + iconSuccess
			}
		}
		rows[i] = []string{p.Name, p.Path, orDash(p.Frontend), orDash(p.Server), orDash(p.PackageManager), source}
	}
	return renderTable(
		[]string{"Project", "Path", "Frontend", "Server", "PM", "Source"},
		rows,
		func(row, col int) lipgloss.Style {
			if col == 0 {
				return StyleValue.Bold(true)
			}
			return StyleDim
		},
	)
}

package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/thanhnhan2tn/package-updater/pkg/updater"
)

func (c *CLI) upgradeCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "upgrade [project]",
		Short: "Upgrade outdated dependencies",
		Long: `Upgrade outdated dependencies to their latest versions.

Each upgrade rewrites the version in package.json and reinstalls with the
project's package manager. If the install fails the manifest is restored.
Without --all an interactive picker chooses which dependencies to upgrade.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.newApp(ctx, cacheFile)
			if err != nil {
				return err
			}
			defer a.Close()

			deps, err := c.loadDependencies(cmd, a, args)
			if err != nil {
				return err
			}
			outdated := filterOutdated(deps)
			if len(outdated) == 0 {
				printSuccess("Everything is up to date")
				return nil
			}

			selected := outdated
			if !all {
				final, err := tea.NewProgram(NewDependencyPickerModel(outdated), tea.WithContext(ctx)).Run()
				if err != nil {
					return fmt.Errorf("picker: %w", err)
				}
				selected = final.(DependencyPickerModel).Selected()
			}
			if len(selected) == 0 {
				printInfo("No upgrades selected")
				return nil
			}

			return c.applyUpgrades(cmd, a, selected)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "upgrade every outdated dependency without prompting")
	return cmd
}

// applyUpgrades runs upgrades one at a time so installs in the same project
// never overlap.
func (c *CLI) applyUpgrades(cmd *cobra.Command, a *app, deps []updater.Dependency) error {
	ctx := cmd.Context()
	failed := 0
	for _, d := range deps {
		spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Upgrading %s in %s...", d.Name, d.Project))
		spinner.Start()
		res, err := a.svc.Upgrade(ctx, updater.UpgradeRequest{
			Project: d.Project,
			Name:    d.Name,
			Version: d.LatestVersion,
			Type:    d.Type,
		})
		if err != nil {
			failed++
			spinner.StopWithError(fmt.Sprintf("%s %s: %v", d.Project, d.Name, err))
			continue
		}
		if !res.Changed {
			spinner.Stop()
			printWarning("%s %s already at %s", d.Project, d.Name, d.LatestVersion)
			continue
		}
		spinner.StopWithSuccess(fmt.Sprintf("%s %s %s %s %s", d.Project, d.Name, res.From, iconArrow, res.To))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d upgrades failed", failed, len(deps))
	}
	return nil
}

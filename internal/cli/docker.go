package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/thanhnhan2tn/package-updater/pkg/project"
	"github.com/thanhnhan2tn/package-updater/pkg/resolve"
	"github.com/thanhnhan2tn/package-updater/pkg/updater"
)

func (c *CLI) dockerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docker [project]",
		Short: "Show Docker base images with their latest tags",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.newApp(ctx, cacheFile)
			if err != nil {
				return err
			}
			defer a.Close()

			spinner := newSpinnerWithContext(ctx, "Looking up image tags...")
			spinner.Start()
			images, err := a.svc.Images(ctx)
			spinner.Stop()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				images = imagesOf(images, args[0])
			}
			if len(images) == 0 {
				printInfo("No Dockerfiles configured")
				return nil
			}

			fmt.Println(renderImages(images))
			return nil
		},
	}

	cmd.AddCommand(c.dockerUpgradeCommand())
	return cmd
}

func (c *CLI) dockerUpgradeCommand() *cobra.Command {
	var tag string

	cmd := &cobra.Command{
		Use:   "upgrade <project> <frontend|server>",
		Short: "Rewrite a Dockerfile FROM line to the latest tag",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			kind, err := project.ParseKind(args[1])
			if err != nil {
				return err
			}
			a, err := c.newApp(ctx, cacheFile)
			if err != nil {
				return err
			}
			defer a.Close()

			img, err := a.svc.Image(ctx, args[0], kind)
			if err != nil {
				return err
			}
			target := tag
			if target == "" {
				target = img.LatestVersion
			}
			if target == "" || target == resolve.Unknown {
				return fmt.Errorf("no known tag for %s, pass --tag", img.ImageName)
			}

			res, err := a.svc.UpgradeImage(ctx, updater.ImageUpgradeRequest{
				Project:   img.Project,
				ImageName: img.ImageName,
				Version:   target,
				Type:      kind,
			})
			if err != nil {
				return err
			}
			if !res.Changed {
				printWarning("%s already uses %s:%s", res.DockerfilePath, img.ImageName, target)
				return nil
			}
			printSuccess("%s:%s %s %s", img.ImageName, img.CurrentVersion, iconArrow, target)
			printDetail("%s", res.DockerfilePath)
			return nil
		},
	}

	cmd.Flags().StringVar(&tag, "tag", "", "tag to use instead of the latest one")
	return cmd
}

func imagesOf(images []updater.DockerImage, name string) []updater.DockerImage {
	var out []updater.DockerImage
	for _, img := range images {
		if img.Project == name {
			out = append(out, img)
		}
	}
	return out
}

func renderImages(images []updater.DockerImage) string {
	rows := make([][]string, len(images))
	for i, img := range images {
		rows[i] = []string{
			versionStatus(img.LatestVersion, img.Outdated),
			img.Project,
			string(img.Type),
			img.ImageName,
			img.CurrentVersion,
			orDash(img.LatestVersion),
		}
	}
	return renderTable(
		[]string{"", "Project", "Type", "Image", "Current", "Latest"},
		rows,
		func(row, col int) lipgloss.Style {
			if col == 1 || col == 2 {
				return StyleDim
			}
			return statusStyle(rows[row][0])
		},
	)
}

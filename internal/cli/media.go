package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/labelsmith/labelsmith/pkg/media"
)

// mediaCommand creates the media command group for inspecting profiles.
func (c *CLI) mediaCommand() *cobra.Command {
	var mediaFile string

	cmd := &cobra.Command{
		Use:   "media",
		Short: "Inspect the known media profiles",
		Long: `Inspect the known media profiles.

Profiles describe the physical tape or die-cut label a layout targets:
width, print resolution, printable dots, and margins. The built-in set
covers the common continuous tape widths plus a die-cut example; extra
profiles merge in from a --media-file TOML file.`,
	}

	cmd.PersistentFlags().StringVar(&mediaFile, "media-file", "", "TOML file with extra media profiles")

	cmd.AddCommand(c.mediaListCommand(&mediaFile))
	cmd.AddCommand(c.mediaShowCommand(&mediaFile))
	cmd.AddCommand(c.mediaPickCommand(&mediaFile))

	return cmd
}

// mediaListCommand creates the "media list" subcommand.
func (c *CLI) mediaListCommand(mediaFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all media profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := c.newRegistry(*mediaFile)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), mediaTable(registry.List()))
			return nil
		},
	}
}

// mediaShowCommand creates the "media show" subcommand.
func (c *CLI) mediaShowCommand(mediaFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show one media profile in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := c.newRegistry(*mediaFile)
			if err != nil {
				return err
			}
			p, err := registry.Get(args[0])
			if err != nil {
				return err
			}

			canvas := p.Canvas()
			printKeyValue("ID", p.ID)
			printKeyValue("Name", p.Name)
			printKeyValue("Width", formatWidth(p))
			printKeyValue("Resolution", fmt.Sprintf("%g dots/mm", p.DotsPerMM))
			printKeyValue("Printable", fmt.Sprintf("%g dots", p.UsableDots))
			printKeyValue("Margin", fmt.Sprintf("%g dots", p.MarginDots))
			printKeyValue("Length", fmt.Sprintf("%s (%s)", formatLength(p), mediaKind(p)))
			printKeyValue("Canvas", fmt.Sprintf("%g x %g dots", canvas.Width, canvas.Height))
			return nil
		},
	}
}

// mediaPickCommand creates the "media pick" subcommand.
func (c *CLI) mediaPickCommand(mediaFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "pick",
		Short: "Choose a media profile interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := c.newRegistry(*mediaFile)
			if err != nil {
				return err
			}
			profile, err := pickMedia(registry.List())
			if err != nil {
				return err
			}
			if profile == nil {
				printDetail("No selection made")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), profile.ID)
			return nil
		},
	}
}

// =============================================================================
// Formatting
// =============================================================================

// mediaTable renders profiles as a bordered table.
func mediaTable(profiles []media.Profile) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, 0, len(profiles))
	for _, p := range profiles {
		rows = append(rows, []string{p.ID, p.Name, formatWidth(p), formatLength(p), mediaKind(p)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Width", "Length", "Kind").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 4 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	return t.Render()
}

// mediaKind names the profile family shown in listings.
func mediaKind(p media.Profile) string {
	if p.FixedLengthDots > 0 {
		return "die-cut"
	}
	return "continuous"
}

func formatWidth(p media.Profile) string {
	return fmt.Sprintf("%g mm", p.WidthMM)
}

// formatLength reports the fixed label length for die-cut media and the
// working design length for continuous tape.
func formatLength(p media.Profile) string {
	if p.FixedLengthDots > 0 {
		return fmt.Sprintf("%g dots", p.FixedLengthDots)
	}
	return fmt.Sprintf("%g dots", p.DesignLengthDots)
}

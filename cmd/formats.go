package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/julienpequegnot/openqa/internal/format"
	"github.com/spf13/cobra"
)

var formatsCmd = &cobra.Command{
	Use:   "formats [name-or-extension]",
	Short: "List known formats and their openness weight",
	Long:  `Shows the format table used for scoring, or how a format label or extension resolves.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFormats,
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}

func runFormats(cmd *cobra.Command, args []string) error {
	formats := format.Default()

	list := formats.All()
	if len(args) == 1 {
		f, ok := formats.ByFreeText(args[0])
		if !ok {
			return fmt.Errorf("%q does not correspond to a known format", args[0])
		}
		list = []*format.Descriptor{f}
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	nameStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	openStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	closedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	fmt.Println(headerStyle.Render(fmt.Sprintf(" %-8s  %-6s  %-6s  %s", "FORMAT", "WEIGHT", "OPEN", "EXTENSIONS")))
	fmt.Println(strings.Repeat("─", 60))

	for _, f := range list {
		open := closedStyle.Render(fmt.Sprintf("%-6s", "no"))
		if f.Open {
			open = openStyle.Render(fmt.Sprintf("%-6s", "yes"))
		}
		fmt.Printf(" %s  %-6d  %s  %s\n",
			nameStyle.Render(fmt.Sprintf("%-8s", f.DisplayName)),
			f.Weight,
			open,
			strings.Join(f.Extensions, ", "),
		)
	}

	return nil
}

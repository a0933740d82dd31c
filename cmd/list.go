package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/julienpequegnot/openqa/internal/config"
	"github.com/julienpequegnot/openqa/internal/database"
	"github.com/julienpequegnot/openqa/internal/resource"
	"github.com/julienpequegnot/openqa/internal/score"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List resources",
	Long:  `List catalogued resources with their openness score, grouped by package.`,
	RunE:  runList,
}

var listTop int

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().IntVarP(&listTop, "top", "n", 50, "Number of resources to show")
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := database.New(config.DBPath())
	if err != nil {
		return err
	}
	defer db.Close()

	resources, err := resource.NewRepository(db).List(listTop)
	if err != nil {
		return err
	}

	if len(resources) == 0 {
		fmt.Println("No resources found. Add some with 'openqa add <url>' or 'openqa import <portal>'.")
		return nil
	}

	scoreRepo := score.NewRepository(db)

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	idStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	packageStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	formatStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	fmt.Println(headerStyle.Render(fmt.Sprintf(" %-8s  %-5s  %-8s  %-20s  %s", "ID", "SCORE", "FORMAT", "PACKAGE", "URL")))
	fmt.Println(strings.Repeat("─", 100))

	for _, r := range resources {
		scoreText, formatText := "-", "-"
		s, err := scoreRepo.Get(r.ID)
		if err != nil {
			return err
		}
		if s != nil {
			scoreText = fmt.Sprintf("%d", s.OpennessScore)
			if s.Format != "" {
				formatText = s.Format
			}
		}

		packageID := r.PackageID
		if len(packageID) > 20 {
			packageID = packageID[:17] + "..."
		}

		resourceURL := r.URL
		if len(resourceURL) > 55 {
			resourceURL = resourceURL[:52] + "..."
		}

		fmt.Printf(" %s  %s  %s  %s  %s\n",
			idStyle.Render(fmt.Sprintf("%-8s", shortID(r.ID))),
			scoreStyle(s).Render(fmt.Sprintf("%-5s", scoreText)),
			formatStyle.Render(fmt.Sprintf("%-8s", formatText)),
			packageStyle.Render(fmt.Sprintf("%-20s", packageID)),
			resourceURL,
		)
	}

	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// scoreStyle colours a score from red (0) to green (3).
func scoreStyle(s *score.Score) lipgloss.Style {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	if s == nil {
		return style
	}
	switch s.OpennessScore {
	case 0:
		return style.Foreground(lipgloss.Color("9"))
	case 1:
		return style.Foreground(lipgloss.Color("11"))
	default:
		return style.Foreground(lipgloss.Color("10"))
	}
}

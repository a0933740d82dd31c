// cmd/show.go
package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/julienpequegnot/openqa/internal/config"
	"github.com/julienpequegnot/openqa/internal/database"
	"github.com/julienpequegnot/openqa/internal/resource"
	"github.com/julienpequegnot/openqa/internal/score"
	"github.com/julienpequegnot/openqa/internal/taskstatus"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <resource-id>",
	Short: "Show details of a resource",
	Long:  `Display a resource's metadata, download status and openness score with its reasoning.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	db, err := database.New(config.DBPath())
	if err != nil {
		return err
	}
	defer db.Close()

	r, err := resource.NewRepository(db).Get(args[0])
	if err != nil {
		return err
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	urlStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Underline(true)
	divider := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(strings.Repeat("━", 70))

	title := r.Name
	if title == "" {
		title = r.ID
	}

	fmt.Println(divider)
	fmt.Println(titleStyle.Render(title))
	fmt.Println(divider)

	fmt.Printf("%s %s\n", labelStyle.Render("ID:"), valueStyle.Render(r.ID))
	fmt.Printf("%s %s (position %d)\n", labelStyle.Render("Package:"), valueStyle.Render(r.PackageID), r.Position)
	fmt.Printf("%s %s\n", labelStyle.Render("URL:"), urlStyle.Render(r.URL))
	if r.Format != "" {
		fmt.Printf("%s %s\n", labelStyle.Render("Format:"), valueStyle.Render(r.Format))
	}
	license := "not open"
	if r.IsOpen {
		license = "open"
	}
	fmt.Printf("%s %s\n", labelStyle.Render("License:"), valueStyle.Render(license))
	if r.CacheFilepath != "" {
		fmt.Printf("%s %s\n", labelStyle.Render("Cached:"), valueStyle.Render(r.CacheFilepath))
	}

	rec, err := taskstatus.NewRepository(db).Latest(r.ID)
	if err != nil {
		return err
	}
	if rec != nil {
		fmt.Printf("\n%s\n", labelStyle.Render("DOWNLOAD:"))
		if rec.Success && rec.LastSuccessAt != nil {
			fmt.Printf("  Succeeded %s\n", rec.LastSuccessAt.Format("2006-01-02 15:04"))
		} else if !rec.Success {
			fmt.Printf("  %s, %d attempts since %s\n", rec.Reason, rec.Attempts, rec.FirstAttemptedAt.Format("2006-01-02"))
			if rec.LastError != "" {
				fmt.Printf("  %s\n", rec.LastError)
			}
		}
	}

	s, err := score.NewRepository(db).Get(r.ID)
	if err != nil {
		return err
	}
	if s != nil {
		fmt.Printf("\n%s\n", labelStyle.Render("OPENNESS:"))
		fmt.Printf("  %s %s  (scored %s)\n",
			scoreStyle(s).Render(fmt.Sprintf("%d/3", s.OpennessScore)),
			s.Format,
			s.ScoredAt.Format("2006-01-02 15:04"))
		fmt.Printf("  %s\n", valueStyle.Render(s.OpennessScoreReason))
	}

	fmt.Println()
	return nil
}

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/julienpequegnot/openqa/internal/config"
	"github.com/julienpequegnot/openqa/internal/database"
	"github.com/julienpequegnot/openqa/internal/feed"
	"github.com/julienpequegnot/openqa/internal/format"
	"github.com/julienpequegnot/openqa/internal/resource"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <portal-or-feed-url>",
	Short: "Import resources from a portal's dataset feed",
	Long: `Reads a data portal's dataset Atom/RSS feed and adds every file enclosure as a
resource. Given a portal home page, the feed is discovered first.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var importOpen bool

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().BoolVar(&importOpen, "open", false, "Mark imported resources as openly licensed")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	feedURL, err := feed.DiscoverFeed(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Reading feed %s...\n", feedURL)

	fetcher := feed.NewFetcher(time.Duration(cfg.Fetch.TimeoutSeconds)*time.Second, cfg.Fetch.UserAgent)
	items, err := fetcher.FetchResources(cmd.Context(), feedURL)
	if err != nil {
		return err
	}

	if len(items) == 0 {
		fmt.Println("No resources found in feed.")
		return nil
	}

	db, err := database.New(config.DBPath())
	if err != nil {
		return err
	}
	defer db.Close()

	repo := resource.NewRepository(db)
	formats := format.Default()

	added, skipped := 0, 0
	for _, item := range items {
		// enclosure types are MIME types; store the format name when we know it
		declared := item.Format
		if f, ok := formats.ByMIMEType(item.Format); ok {
			declared = f.DisplayName
		}

		_, err := repo.Add(resource.Resource{
			PackageID: item.PackageID,
			URL:       item.URL,
			Name:      item.Name,
			Format:    declared,
			IsOpen:    importOpen,
			Position:  item.Position,
		})
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint") {
				skipped++
				continue
			}
			fmt.Printf("  Failed to add %s: %v\n", item.URL, err)
			continue
		}
		added++
	}

	fmt.Printf("\nImported %d resources (%d already known)\n", added, skipped)
	return nil
}

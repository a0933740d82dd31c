package cmd

import (
	"fmt"
	"os"

	"github.com/julienpequegnot/openqa/internal/config"
	"github.com/julienpequegnot/openqa/internal/database"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize openqa configuration and database",
	Long:  `Creates the ~/.openqa directory with config.yaml, the SQLite database and the download cache.`,
	RunE:  runInit,
}

var initSiteURL string

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initSiteURL, "site", "", "Data portal URL used for task status queries")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := config.Dir()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	cfg := config.Default()
	if initSiteURL != "" {
		cfg.Site.URL = initSiteURL
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Printf("Created config at %s/config.yaml\n", dir)

	if err := os.MkdirAll(cfg.CacheDir(), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := database.New(config.DBPath())
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	db.Close()
	fmt.Printf("Created database at %s/openqa.db\n", dir)

	fmt.Println("\nOpenqa initialized! Next steps:")
	fmt.Println("  openqa add <url> --package <id>   Add a resource to check")
	fmt.Println("  openqa import <portal-url>        Import resources from a dataset feed")
	fmt.Println("  openqa fetch                      Download resources into the cache")
	fmt.Println("  openqa score                      Score downloaded resources")

	return nil
}

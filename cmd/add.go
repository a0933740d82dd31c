// cmd/add.go
package cmd

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/julienpequegnot/openqa/internal/config"
	"github.com/julienpequegnot/openqa/internal/database"
	"github.com/julienpequegnot/openqa/internal/resource"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Add a resource to check",
	Long:  `Add a resource URL, with the package it belongs to and its declared format and license.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

var (
	addID      string
	addPackage string
	addName    string
	addFormat  string
	addOpen    bool
)

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVar(&addID, "id", "", "Resource ID (generated if empty)")
	addCmd.Flags().StringVarP(&addPackage, "package", "p", "", "Package (dataset) the resource belongs to")
	addCmd.Flags().StringVarP(&addName, "name", "n", "", "Resource name")
	addCmd.Flags().StringVarP(&addFormat, "format", "f", "", "Declared format, e.g. CSV or Excel")
	addCmd.Flags().BoolVar(&addOpen, "open", false, "The resource is published under an open license")
	addCmd.MarkFlagRequired("package")
}

func runAdd(cmd *cobra.Command, args []string) error {
	resourceURL := args[0]

	if !strings.HasPrefix(resourceURL, "http") {
		resourceURL = "https://" + resourceURL
	}

	parsed, err := url.Parse(resourceURL)
	if err != nil || parsed.Host == "" {
		return fmt.Errorf("invalid URL: %s", args[0])
	}

	db, err := database.New(config.DBPath())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	repo := resource.NewRepository(db)
	res, err := repo.Add(resource.Resource{
		ID:        addID,
		PackageID: addPackage,
		URL:       resourceURL,
		Name:      addName,
		Format:    addFormat,
		IsOpen:    addOpen,
		Position:  -1,
	})
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("resource already exists: %s", resourceURL)
		}
		return err
	}

	fmt.Printf("Added: %s (ID: %s, package %s, position %d)\n", res.URL, res.ID, res.PackageID, res.Position)
	fmt.Println("\nRun 'openqa fetch' to download it")

	return nil
}

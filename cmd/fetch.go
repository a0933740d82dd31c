package cmd

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/julienpequegnot/openqa/internal/cache"
	"github.com/julienpequegnot/openqa/internal/config"
	"github.com/julienpequegnot/openqa/internal/database"
	"github.com/julienpequegnot/openqa/internal/fetch"
	"github.com/julienpequegnot/openqa/internal/resource"
	"github.com/julienpequegnot/openqa/internal/taskstatus"
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download resources into the local cache",
	Long: `Downloads every resource that is not cached yet and records the outcome of each
attempt, so that scoring can explain why a file could not be downloaded.`,
	RunE: runFetch,
}

var (
	fetchConcurrency int
	fetchLimit       int
)

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().IntVarP(&fetchConcurrency, "concurrency", "c", 0, "Number of concurrent downloads (0 = use config)")
	fetchCmd.Flags().IntVarP(&fetchLimit, "limit", "l", 100, "Maximum resources to download")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := database.New(config.DBPath())
	if err != nil {
		return err
	}
	defer db.Close()

	if fetchConcurrency > 0 {
		cfg.Fetch.Concurrency = fetchConcurrency
	}
	_, err = fetchResources(cmd, cfg, db, fetchLimit)
	return err
}

// fetchResources downloads uncached resources and returns how many succeeded.
func fetchResources(cmd *cobra.Command, cfg *config.Config, db *database.DB, limit int) (int, error) {
	resRepo := resource.NewRepository(db)
	statusRepo := taskstatus.NewRepository(db)

	resources, err := resRepo.ListUncached(limit)
	if err != nil {
		return 0, err
	}

	if len(resources) == 0 {
		fmt.Println("No resources waiting to be downloaded.")
		return 0, nil
	}

	fetcher := fetch.NewFetcher(
		cache.New(cfg.CacheDir(), cfg.Cache.BaseURL),
		time.Duration(cfg.Fetch.TimeoutSeconds)*time.Second,
		cfg.Fetch.UserAgent,
		cfg.Fetch.MaxBytes,
	)

	concurrency := cfg.Fetch.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)
	var mu sync.Mutex
	downloaded := 0

	for _, res := range resources {
		wg.Add(1)
		go func(r resource.Resource) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			dl, err := fetcher.Fetch(cmd.Context(), r.ID, r.URL)
			now := time.Now().UTC()
			if err != nil {
				reason, details := fetch.ReasonRequestFailed, err.Error()
				var fe *fetch.Error
				if errors.As(err, &fe) {
					reason, details = fe.Reason, fe.Details
				}
				if err := statusRepo.RecordFailure(r.ID, now, reason, details); err != nil {
					fmt.Printf("  Failed to record status for %s: %v\n", r.ID, err)
				}
				fmt.Printf("  %s: %s (%s)\n", r.URL, reason, details)
				return
			}

			if err := resRepo.SetCache(r.ID, dl.CacheURL, dl.Path); err != nil {
				fmt.Printf("  Failed to save cache location for %s: %v\n", r.ID, err)
				return
			}
			if err := statusRepo.RecordSuccess(r.ID, now); err != nil {
				fmt.Printf("  Failed to record status for %s: %v\n", r.ID, err)
			}

			mu.Lock()
			downloaded++
			mu.Unlock()

			fmt.Printf("  %s: %d bytes\n", r.URL, dl.Size)
		}(res)
	}

	wg.Wait()

	fmt.Printf("\nDownloaded %d of %d resources\n", downloaded, len(resources))
	return downloaded, nil
}

// cmd/daemon.go
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julienpequegnot/openqa/internal/config"
	"github.com/julienpequegnot/openqa/internal/database"
	"github.com/julienpequegnot/openqa/internal/resource"
	"github.com/julienpequegnot/openqa/internal/score"
	"github.com/spf13/cobra"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run in daemon mode",
	Long:  `Runs openqa in the background, periodically downloading and rescoring resources.`,
	RunE:  runDaemon,
}

var (
	daemonInterval int
	daemonOnce     bool
)

func init() {
	rootCmd.AddCommand(daemonCmd)
	daemonCmd.Flags().IntVar(&daemonInterval, "interval", 0, "Override interval in hours (0 = use config)")
	daemonCmd.Flags().BoolVar(&daemonOnce, "once", false, "Run once and exit")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	interval := cfg.Daemon.IntervalHours
	if daemonInterval > 0 {
		interval = daemonInterval
	}
	if interval < 1 {
		interval = 1
	}

	fmt.Printf("Openqa daemon starting (interval: %d hours)\n", interval)

	if err := runPipeline(cmd, cfg); err != nil {
		fmt.Printf("Pipeline error: %v\n", err)
	}

	if daemonOnce {
		fmt.Println("Single run complete.")
		return nil
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(interval) * time.Hour)
	defer ticker.Stop()

	fmt.Printf("Daemon running. Next run in %d hours. Press Ctrl+C to stop.\n", interval)

	for {
		select {
		case <-ticker.C:
			fmt.Printf("\n[%s] Running scheduled pipeline...\n", time.Now().Format("2006-01-02 15:04:05"))
			if err := runPipeline(cmd, cfg); err != nil {
				fmt.Printf("Pipeline error: %v\n", err)
			}
			fmt.Printf("Next run in %d hours.\n", interval)

		case sig := <-sigChan:
			fmt.Printf("\nReceived signal %v, shutting down...\n", sig)
			return nil

		case <-cmd.Context().Done():
			return nil
		}
	}
}

// runPipeline retries downloads and then rescores every resource, since a
// download, a license change or a new cache file can all change a score.
func runPipeline(cmd *cobra.Command, cfg *config.Config) error {
	db, err := database.New(config.DBPath())
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Println("→ Downloading resources...")
	if _, err := fetchResources(cmd, cfg, db, 1000); err != nil {
		return err
	}

	fmt.Println("→ Scoring resources...")
	resources, err := resource.NewRepository(db).List(10000)
	if err != nil {
		return err
	}
	scored := scoreResources(cmd, cfg, db, resources)
	fmt.Printf("  Scored %d resources\n", scored)

	dist, err := score.NewRepository(db).Distribution()
	if err != nil {
		return err
	}
	for s := 0; s <= 3; s++ {
		fmt.Printf("  %d: %d resources\n", s, dist[s])
	}

	fmt.Println("→ Pipeline complete")
	return nil
}

package cmd

import (
	"fmt"
	"sync"

	"github.com/julienpequegnot/openqa/internal/cache"
	"github.com/julienpequegnot/openqa/internal/config"
	"github.com/julienpequegnot/openqa/internal/database"
	"github.com/julienpequegnot/openqa/internal/format"
	"github.com/julienpequegnot/openqa/internal/resource"
	"github.com/julienpequegnot/openqa/internal/score"
	"github.com/julienpequegnot/openqa/internal/scorer"
	"github.com/julienpequegnot/openqa/internal/sniff"
	"github.com/julienpequegnot/openqa/internal/taskstatus"
	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score [resource-id...]",
	Short: "Calculate openness scores for resources",
	Long: `Calculates the openness score of unscored resources, or of the given resources,
and stores the score with the reasoning behind it.`,
	RunE: runScore,
}

var (
	scoreLimit int
	scoreAll   bool
)

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().IntVarP(&scoreLimit, "limit", "l", 100, "Maximum resources to score")
	scoreCmd.Flags().BoolVar(&scoreAll, "all", false, "Rescore resources that already have a score")
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := database.New(config.DBPath())
	if err != nil {
		return err
	}
	defer db.Close()

	resRepo := resource.NewRepository(db)

	var resources []resource.Resource
	switch {
	case len(args) > 0:
		for _, id := range args {
			r, err := resRepo.Get(id)
			if err != nil {
				return err
			}
			resources = append(resources, *r)
		}
	case scoreAll:
		resources, err = resRepo.List(scoreLimit)
	default:
		resources, err = resRepo.ListUnscored(scoreLimit)
	}
	if err != nil {
		return err
	}

	if len(resources) == 0 {
		fmt.Println("No unscored resources found.")
		return nil
	}

	fmt.Printf("Scoring %d resources\n\n", len(resources))
	scoreResources(cmd, cfg, db, resources)
	fmt.Println("\nScoring complete")
	return nil
}

func newResourceScorer(cfg *config.Config, db *database.DB) *scorer.ResourceScorer {
	var status scorer.StatusSource = taskstatus.NewRepository(db)
	if cfg.Status.Source == "remote" {
		status = taskstatus.NewClient(cfg.StatusTimeout())
	}

	formats := format.Default()
	return scorer.NewResourceScorer(formats, scorer.Collaborators{
		Sniffer: sniff.New(formats),
		Cache:   cache.New(cfg.CacheDir(), cfg.Cache.BaseURL),
		Status:  status,
	}, cfg.StatusTimeout())
}

func toScorerResource(r resource.Resource) scorer.Resource {
	return scorer.Resource{
		ID:            r.ID,
		URL:           r.URL,
		CacheURL:      r.CacheURL,
		CacheFilepath: r.CacheFilepath,
		PackageID:     r.PackageID,
		IsOpen:        r.IsOpen,
		Format:        r.Format,
		Position:      r.Position,
	}
}

// scoreResources scores and stores each resource, returning how many were saved.
func scoreResources(cmd *cobra.Command, cfg *config.Config, db *database.DB, resources []resource.Resource) int {
	rs := newResourceScorer(cfg, db)
	scoreRepo := score.NewRepository(db)
	logger := newLogger()
	tc := cfg.TaskContext()

	concurrency := cfg.Score.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)
	var mu sync.Mutex
	saved := 0

	for _, res := range resources {
		wg.Add(1)
		go func(r resource.Resource) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result, err := rs.Score(cmd.Context(), tc, toScorerResource(r), logger)
			if err != nil {
				fmt.Printf("  Error scoring %s: %v\n", r.ID, err)
				return
			}

			if err := scoreRepo.Upsert(r.ID, result.OpennessScore, result.OpennessScoreReason, result.Format); err != nil {
				fmt.Printf("  Error saving score for %s: %v\n", r.ID, err)
				return
			}

			mu.Lock()
			saved++
			fmt.Printf("%s\n  Score %d: %s\n", r.URL, result.OpennessScore, result.OpennessScoreReason)
			mu.Unlock()
		}(res)
	}

	wg.Wait()
	return saved
}

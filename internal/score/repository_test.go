package score

import (
	"path/filepath"
	"testing"

	"github.com/julienpequegnot/openqa/internal/database"
	"github.com/julienpequegnot/openqa/internal/resource"
)

func setupTestDB(t *testing.T) (*database.DB, string) {
	tmpDir := t.TempDir()
	db, err := database.New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	res, err := resource.NewRepository(db).Add(resource.Resource{
		PackageID: "fake_package_id",
		URL:       "http://remotesite.com/filename.csv",
		IsOpen:    true,
	})
	if err != nil {
		t.Fatalf("failed to add resource: %v", err)
	}

	return db, res.ID
}

func TestUpsertScore(t *testing.T) {
	db, resourceID := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	if err := repo.Upsert(resourceID, 1, "Format field is blank.", ""); err != nil {
		t.Fatalf("failed to upsert score: %v", err)
	}
	if err := repo.Upsert(resourceID, 3, `Content of file appeared to be format "CSV".`, "CSV"); err != nil {
		t.Fatalf("failed to upsert score: %v", err)
	}

	s, err := repo.Get(resourceID)
	if err != nil {
		t.Fatalf("failed to get score: %v", err)
	}

	if s.OpennessScore != 3 {
		t.Errorf("expected score 3, got %d", s.OpennessScore)
	}
	if s.Format != "CSV" {
		t.Errorf("expected format CSV, got %s", s.Format)
	}
}

func TestGetUnscored(t *testing.T) {
	db, resourceID := setupTestDB(t)
	defer db.Close()

	s, err := NewRepository(db).Get(resourceID)
	if err != nil {
		t.Fatalf("failed to get score: %v", err)
	}
	if s != nil {
		t.Errorf("expected no score, got %+v", s)
	}
}

func TestDistribution(t *testing.T) {
	db, resourceID := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	repo.Upsert(resourceID, 2, "ok", "XLS")

	dist, err := repo.Distribution()
	if err != nil {
		t.Fatalf("failed to get distribution: %v", err)
	}
	if dist[2] != 1 || len(dist) != 1 {
		t.Errorf("unexpected distribution %v", dist)
	}
}

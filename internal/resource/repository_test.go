package resource

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/julienpequegnot/openqa/internal/database"
)

func setupTestDB(t *testing.T) *database.DB {
	tmpDir := t.TempDir()
	db, err := database.New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	return db
}

func TestAddResource(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	res, err := repo.Add(Resource{
		PackageID: "coins",
		URL:       "http://dept.gov.uk/coins-data-1996.csv",
		Format:    "CSV",
		IsOpen:    true,
		Position:  -1,
	})
	if err != nil {
		t.Fatalf("failed to add resource: %v", err)
	}

	if res.ID == "" {
		t.Error("expected generated ID")
	}
	if res.Position != 0 {
		t.Errorf("expected position 0, got %d", res.Position)
	}

	got, err := repo.Get(res.ID)
	if err != nil {
		t.Fatalf("failed to get resource: %v", err)
	}
	if got.URL != res.URL || !got.IsOpen || got.Format != "CSV" {
		t.Errorf("unexpected resource: %+v", got)
	}
}

func TestAddAssignsNextPosition(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	repo.Add(Resource{PackageID: "coins", URL: "http://dept.gov.uk/a.csv", Position: -1})
	second, err := repo.Add(Resource{PackageID: "coins", URL: "http://dept.gov.uk/b.csv", Position: -1})
	if err != nil {
		t.Fatalf("failed to add resource: %v", err)
	}

	if second.Position != 1 {
		t.Errorf("expected position 1, got %d", second.Position)
	}
}

func TestAddDuplicateResource(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	if _, err := repo.Add(Resource{PackageID: "coins", URL: "http://dept.gov.uk/a.csv"}); err != nil {
		t.Fatalf("failed to add resource: %v", err)
	}

	_, err := repo.Add(Resource{PackageID: "coins", URL: "http://dept.gov.uk/a.csv"})
	if err == nil {
		t.Error("expected error for duplicate resource")
	}
}

func TestAddRequiresURL(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if _, err := NewRepository(db).Add(Resource{PackageID: "coins"}); err == nil {
		t.Error("expected error for missing URL")
	}
}

func TestGetMissing(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := NewRepository(db).Get("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetCacheAndListUncached(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	a, _ := repo.Add(Resource{PackageID: "coins", URL: "http://dept.gov.uk/a.csv", Position: -1})
	repo.Add(Resource{PackageID: "coins", URL: "http://dept.gov.uk/b.csv", Position: -1})

	if err := repo.SetCache(a.ID, "file:///cache/a.csv", "/cache/a.csv"); err != nil {
		t.Fatalf("failed to set cache: %v", err)
	}

	got, _ := repo.Get(a.ID)
	if got.CacheFilepath != "/cache/a.csv" {
		t.Errorf("expected cache path /cache/a.csv, got %q", got.CacheFilepath)
	}

	uncached, err := repo.ListUncached(10)
	if err != nil {
		t.Fatalf("failed to list uncached: %v", err)
	}
	if len(uncached) != 1 || uncached[0].URL != "http://dept.gov.uk/b.csv" {
		t.Errorf("expected only b.csv uncached, got %+v", uncached)
	}

	if err := repo.SetCache("nope", "", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListUnscored(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	a, _ := repo.Add(Resource{PackageID: "coins", URL: "http://dept.gov.uk/a.csv", Position: -1})
	repo.Add(Resource{PackageID: "coins", URL: "http://dept.gov.uk/b.csv", Position: -1})

	if _, err := db.Exec(
		`INSERT INTO qa_results (resource_id, openness_score, openness_score_reason) VALUES (?, 3, 'ok')`, a.ID,
	); err != nil {
		t.Fatalf("failed to insert result: %v", err)
	}

	unscored, err := repo.ListUnscored(10)
	if err != nil {
		t.Fatalf("failed to list unscored: %v", err)
	}
	if len(unscored) != 1 {
		t.Errorf("expected 1 unscored resource, got %d", len(unscored))
	}

	all, _ := repo.List(10)
	if len(all) != 2 {
		t.Errorf("expected 2 resources, got %d", len(all))
	}
}

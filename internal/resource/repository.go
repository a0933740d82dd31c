package resource

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/julienpequegnot/openqa/internal/database"
)

var ErrNotFound = errors.New("resource not found")

type Resource struct {
	ID            string
	PackageID     string
	URL           string
	Name          string
	Format        string
	IsOpen        bool
	Position      int
	CacheURL      string
	CacheFilepath string
	CreatedAt     time.Time
}

type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// Add stores a new resource. An empty ID is replaced with a generated one and the
// position defaults to the next free slot in the package.
func (r *Repository) Add(res Resource) (*Resource, error) {
	if res.URL == "" {
		return nil, fmt.Errorf("resource URL is required")
	}
	if res.PackageID == "" {
		return nil, fmt.Errorf("resource package is required")
	}
	if res.ID == "" {
		res.ID = uuid.New().String()
	}

	if res.Position < 0 {
		err := r.db.QueryRow(
			`SELECT COALESCE(MAX(position) + 1, 0) FROM resources WHERE package_id = ?`,
			res.PackageID,
		).Scan(&res.Position)
		if err != nil {
			return nil, fmt.Errorf("failed to compute position: %w", err)
		}
	}

	_, err := r.db.Exec(`
		INSERT INTO resources (id, package_id, url, name, format, is_open, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, res.ID, res.PackageID, res.URL, res.Name, res.Format, res.IsOpen, res.Position)
	if err != nil {
		return nil, fmt.Errorf("failed to insert resource: %w", err)
	}

	return &res, nil
}

func (r *Repository) Get(id string) (*Resource, error) {
	row := r.db.QueryRow(`
		SELECT id, package_id, url, COALESCE(name, ''), COALESCE(format, ''), is_open, position,
		       COALESCE(cache_url, ''), COALESCE(cache_filepath, ''), created_at
		FROM resources WHERE id = ?
	`, id)

	res, err := scanResource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Repository) List(limit int) ([]Resource, error) {
	rows, err := r.db.Query(`
		SELECT id, package_id, url, COALESCE(name, ''), COALESCE(format, ''), is_open, position,
		       COALESCE(cache_url, ''), COALESCE(cache_filepath, ''), created_at
		FROM resources
		ORDER BY package_id, position
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanResources(rows)
}

// ListUnscored returns resources that have no QA result yet.
func (r *Repository) ListUnscored(limit int) ([]Resource, error) {
	rows, err := r.db.Query(`
		SELECT r.id, r.package_id, r.url, COALESCE(r.name, ''), COALESCE(r.format, ''), r.is_open, r.position,
		       COALESCE(r.cache_url, ''), COALESCE(r.cache_filepath, ''), r.created_at
		FROM resources r
		LEFT JOIN qa_results q ON r.id = q.resource_id
		WHERE q.resource_id IS NULL
		ORDER BY r.package_id, r.position
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanResources(rows)
}

// ListUncached returns resources that have not been downloaded into the cache.
func (r *Repository) ListUncached(limit int) ([]Resource, error) {
	rows, err := r.db.Query(`
		SELECT id, package_id, url, COALESCE(name, ''), COALESCE(format, ''), is_open, position,
		       COALESCE(cache_url, ''), COALESCE(cache_filepath, ''), created_at
		FROM resources
		WHERE COALESCE(cache_filepath, '') = ''
		ORDER BY package_id, position
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanResources(rows)
}

func (r *Repository) SetCache(id, cacheURL, cacheFilepath string) error {
	result, err := r.db.Exec(
		`UPDATE resources SET cache_url = ?, cache_filepath = ? WHERE id = ?`,
		cacheURL, cacheFilepath, id,
	)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResource(s scanner) (*Resource, error) {
	var res Resource
	err := s.Scan(&res.ID, &res.PackageID, &res.URL, &res.Name, &res.Format, &res.IsOpen, &res.Position,
		&res.CacheURL, &res.CacheFilepath, &res.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func scanResources(rows *sql.Rows) ([]Resource, error) {
	var resources []Resource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		resources = append(resources, *res)
	}
	return resources, rows.Err()
}

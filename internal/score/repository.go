package score

import (
	"database/sql"
	"errors"
	"time"

	"github.com/julienpequegnot/openqa/internal/database"
)

// Score is a stored QA result for one resource.
type Score struct {
	ResourceID          string
	OpennessScore       int
	OpennessScoreReason string
	Format              string
	ScoredAt            time.Time
}

type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Upsert(resourceID string, openness int, reason, format string) error {
	_, err := r.db.Exec(`
		INSERT INTO qa_results (resource_id, openness_score, openness_score_reason, format, scored_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(resource_id) DO UPDATE SET
			openness_score = excluded.openness_score,
			openness_score_reason = excluded.openness_score_reason,
			format = excluded.format,
			scored_at = CURRENT_TIMESTAMP
	`, resourceID, openness, reason, format)
	return err
}

// Get returns nil when the resource has not been scored.
func (r *Repository) Get(resourceID string) (*Score, error) {
	var s Score
	err := r.db.QueryRow(`
		SELECT resource_id, openness_score, openness_score_reason, COALESCE(format, ''), scored_at
		FROM qa_results WHERE resource_id = ?
	`, resourceID).Scan(&s.ResourceID, &s.OpennessScore, &s.OpennessScoreReason, &s.Format, &s.ScoredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Distribution counts scored resources per openness score.
func (r *Repository) Distribution() (map[int]int, error) {
	rows, err := r.db.Query(`SELECT openness_score, COUNT(*) FROM qa_results GROUP BY openness_score`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dist := make(map[int]int)
	for rows.Next() {
		var score, count int
		if err := rows.Scan(&score, &count); err != nil {
			return nil, err
		}
		dist[score] = count
	}
	return dist, rows.Err()
}

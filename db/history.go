package db

import (
	"database/sql"
	"fmt"

	"github.com/andrejsstepanovs/memberqr/models"
)

// ListRuns returns the most recent runs first.
func ListRuns(db *sql.DB, limit int) ([]models.Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := db.Query(`
		SELECT id, photos_dir, started_at, finished_at, published, skipped
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []models.Run
	for rows.Next() {
		var run models.Run
		var finishedAt sql.NullTime
		if err := rows.Scan(&run.ID, &run.PhotosDir, &run.StartedAt, &finishedAt, &run.Published, &run.Skipped); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		if finishedAt.Valid {
			t := finishedAt.Time
			run.FinishedAt = &t
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during run row iteration: %w", err)
	}

	return runs, nil
}

// GetRunArtifacts returns the artifacts of a run in the order they were recorded.
func GetRunArtifacts(db *sql.DB, runID string) ([]models.Artifact, error) {
	rows, err := db.Query(`
		SELECT id, run_id, base_name, display_name, image_key, page_url, qr_generated, skip_reason, created_at
		FROM artifacts
		WHERE run_id = ?
		ORDER BY id ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query artifacts for run '%s': %w", runID, err)
	}
	defer rows.Close()

	var artifacts []models.Artifact
	for rows.Next() {
		var a models.Artifact
		// The driver will handle DATETIME -> time.Time conversion
		if err := rows.Scan(&a.ID, &a.RunID, &a.BaseName, &a.DisplayName, &a.ImageKey, &a.PageURL, &a.QRGenerated, &a.SkipReason, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan artifact row: %w", err)
		}
		artifacts = append(artifacts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during artifact row iteration: %w", err)
	}

	return artifacts, nil
}

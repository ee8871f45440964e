package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/andrejsstepanovs/memberqr/models"
	_ "github.com/mattn/go-sqlite3"
)

func InitDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("error creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY NOT NULL,
			photos_dir TEXT NOT NULL,
			started_at DATETIME NOT NULL,
			finished_at DATETIME,
			published INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("error creating runs table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS artifacts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			base_name TEXT NOT NULL,
			display_name TEXT NOT NULL,
			image_key TEXT NOT NULL DEFAULT '',
			page_url TEXT NOT NULL DEFAULT '',
			qr_generated INTEGER NOT NULL DEFAULT 0,
			skip_reason TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("error creating artifacts table: %w", err)
	}

	return db, nil
}

func SetupDatabase(path string) (*sql.DB, error) {
	dbConn, err := InitDB(path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return dbConn, nil
}

func InsertRun(db *sql.DB, run models.Run) error {
	_, err := db.Exec("INSERT INTO runs (id, photos_dir, started_at) VALUES (?, ?, ?)",
		run.ID, run.PhotosDir, run.StartedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert run '%s': %w", run.ID, err)
	}
	return nil
}

func FinishRun(db *sql.DB, run models.Run) error {
	if run.FinishedAt == nil {
		return fmt.Errorf("run '%s' has no finish time", run.ID)
	}

	result, err := db.Exec("UPDATE runs SET finished_at = ?, published = ?, skipped = ? WHERE id = ?",
		run.FinishedAt.UTC(), run.Published, run.Skipped, run.ID)
	if err != nil {
		return fmt.Errorf("failed to finish run '%s': %w", run.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("run '%s' not found", run.ID)
	}
	return nil
}

func SaveArtifact(db *sql.DB, artifact models.Artifact) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO artifacts (run_id, base_name, display_name, image_key, page_url, qr_generated, skip_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		artifact.RunID,
		artifact.BaseName,
		artifact.DisplayName,
		artifact.ImageKey,
		artifact.PageURL,
		artifact.QRGenerated,
		artifact.SkipReason,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert artifact err: %w", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id err: %w", err)
	}

	return lastID, nil
}

// Ledger records publish runs in the database.
type Ledger struct {
	db *sql.DB
}

// OpenLedger opens (or creates) the ledger database at path.
func OpenLedger(path string) (*Ledger, error) {
	dbConn, err := SetupDatabase(path)
	if err != nil {
		return nil, err
	}
	return &Ledger{db: dbConn}, nil
}

func (l *Ledger) DB() *sql.DB {
	return l.db
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) StartRun(run models.Run) error {
	return InsertRun(l.db, run)
}

func (l *Ledger) RecordArtifact(artifact models.Artifact) error {
	_, err := SaveArtifact(l.db, artifact)
	return err
}

func (l *Ledger) FinishRun(run models.Run) error {
	return FinishRun(l.db, run)
}

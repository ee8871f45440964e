package models

import "time"

// Run stores metadata about a single publish run.
type Run struct {
	ID         string
	PhotosDir  string
	StartedAt  time.Time
	FinishedAt *time.Time
	Published  int
	Skipped    int
}

// Artifact represents the outcome of publishing one photo.
type Artifact struct {
	ID          int64
	RunID       string
	BaseName    string
	DisplayName string
	ImageKey    string
	PageURL     string
	QRGenerated bool
	SkipReason  string
	CreatedAt   time.Time
}

// Skipped reports whether the photo was left out of the run.
func (a Artifact) Skipped() bool {
	return a.SkipReason != ""
}

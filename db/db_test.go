package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/andrejsstepanovs/memberqr/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	ledger, err := OpenLedger(filepath.Join(t.TempDir(), "data", "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ledger.Close() })
	return ledger
}

func TestInitDB_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	first, err := InitDB(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := InitDB(path)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestLedger_RunLifecycle(t *testing.T) {
	ledger := openTestLedger(t)

	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	run := models.Run{ID: "run-1", PhotosDir: "./images", StartedAt: started}
	require.NoError(t, ledger.StartRun(run))

	artifacts := []models.Artifact{
		{RunID: "run-1", BaseName: "ANNA_LEE", DisplayName: "ANNA LEE", ImageKey: "images/ANNA_LEE.png", PageURL: "https://cdn/ANNA_LEE.html", QRGenerated: true},
		{RunID: "run-1", BaseName: "broken", DisplayName: "broken", SkipReason: "unreadable image broken.heic"},
	}
	for _, a := range artifacts {
		require.NoError(t, ledger.RecordArtifact(a))
	}

	finished := started.Add(time.Minute)
	run.FinishedAt = &finished
	run.Published = 1
	run.Skipped = 1
	require.NoError(t, ledger.FinishRun(run))

	runs, err := ListRuns(ledger.DB(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.Equal(t, "./images", runs[0].PhotosDir)
	assert.True(t, started.Equal(runs[0].StartedAt))
	require.NotNil(t, runs[0].FinishedAt)
	assert.True(t, finished.Equal(*runs[0].FinishedAt))
	assert.Equal(t, 1, runs[0].Published)
	assert.Equal(t, 1, runs[0].Skipped)

	got, err := GetRunArtifacts(ledger.DB(), "run-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "ANNA LEE", got[0].DisplayName)
	assert.True(t, got[0].QRGenerated)
	assert.False(t, got[0].Skipped())
	assert.Equal(t, "broken", got[1].BaseName)
	assert.True(t, got[1].Skipped())
	assert.False(t, got[1].CreatedAt.IsZero())
}

func TestListRuns_NewestFirstAndLimit(t *testing.T) {
	ledger := openTestLedger(t)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, ledger.StartRun(models.Run{ID: id, PhotosDir: "p", StartedAt: base.Add(time.Duration(i) * time.Hour)}))
	}

	runs, err := ListRuns(ledger.DB(), 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].ID)
	assert.Equal(t, "mid", runs[1].ID)
	assert.Nil(t, runs[0].FinishedAt)
}

func TestFinishRun_Errors(t *testing.T) {
	ledger := openTestLedger(t)

	err := ledger.FinishRun(models.Run{ID: "missing"})
	assert.Error(t, err)

	now := time.Now()
	err = ledger.FinishRun(models.Run{ID: "missing", FinishedAt: &now})
	assert.Error(t, err)
}

func TestStartRun_DuplicateID(t *testing.T) {
	ledger := openTestLedger(t)
	run := models.Run{ID: "same", PhotosDir: "p", StartedAt: time.Now()}

	require.NoError(t, ledger.StartRun(run))
	assert.Error(t, ledger.StartRun(run))
}

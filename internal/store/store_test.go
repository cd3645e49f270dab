package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/conductor/internal/constants"
	"github.com/mrz1836/conductor/internal/domain"
	conductorerrors "github.com/mrz1836/conductor/internal/errors"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "runs"))
	require.NoError(t, err)
	return s
}

func terminalRun(id string, createdAt time.Time) *domain.WorkflowRun {
	return &domain.WorkflowRun{
		ID:            id,
		Goal:          "release",
		Status:        constants.RunStatusSucceeded,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
		SchemaVersion: constants.RunSchemaVersion,
	}
}

func TestArchiveAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run := terminalRun("run-1", time.Unix(1700000000, 0).UTC())
	run.FindingLog = []domain.Finding{{
		Severity: domain.SeverityHigh, TaskID: "review-1", Description: "issue",
	}}
	require.NoError(t, s.Archive(ctx, run))

	got, err := s.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, run.Status, got.Status)
	require.Len(t, got.FindingLog, 1)
	assert.Equal(t, domain.SeverityHigh, got.FindingLog[0].Severity)
}

func TestArchive_Validation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.Archive(ctx, nil)
	require.ErrorIs(t, err, conductorerrors.ErrInvalidArgument)

	live := terminalRun("run-1", time.Now())
	live.Status = constants.RunStatusRunning
	err = s.Archive(ctx, live)
	require.ErrorIs(t, err, conductorerrors.ErrRunNotTerminal)
}

func TestArchive_DuplicateRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run := terminalRun("run-1", time.Now().UTC())
	require.NoError(t, s.Archive(ctx, run))
	require.ErrorIs(t, s.Archive(ctx, run), conductorerrors.ErrRunExists)
}

func TestArchive_FilePermissions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Archive(ctx, terminalRun("run-1", time.Now().UTC())))

	info, err := os.Stat(filepath.Join(s.runsDir, "run-1.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestGet_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), "missing")
	require.ErrorIs(t, err, conductorerrors.ErrRunNotFound)
}

func TestGet_Corrupted(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(s.runsDir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(s.runsDir, "bad.json"), []byte("{not json"), 0o600))

	_, err := s.Get(context.Background(), "bad")
	require.ErrorIs(t, err, conductorerrors.ErrRunCorrupted)
}

func TestList_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Unix(1700000000, 0).UTC()
	require.NoError(t, s.Archive(ctx, terminalRun("run-old", base)))
	require.NoError(t, s.Archive(ctx, terminalRun("run-mid", base.Add(time.Hour))))
	require.NoError(t, s.Archive(ctx, terminalRun("run-new", base.Add(2*time.Hour))))

	runs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "run-new", runs[0].ID)
	assert.Equal(t, "run-mid", runs[1].ID)
	assert.Equal(t, "run-old", runs[2].ID)
}

func TestList_EmptyAndCorruptedSkipped(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	runs, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)

	require.NoError(t, s.Archive(ctx, terminalRun("run-1", time.Now().UTC())))
	require.NoError(t, os.WriteFile(filepath.Join(s.runsDir, "bad.json"), []byte("{"), 0o600))

	runs, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
}

func TestArchive_CanceledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Archive(ctx, terminalRun("run-1", time.Now().UTC()))
	require.ErrorIs(t, err, context.Canceled)
}

// Package store implements the archive for terminal workflow runs.
// Runs are persisted as JSON files with atomic writes; the storage layout
// is one file per run under the runs directory.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/conductor/internal/domain"
	conductorerrors "github.com/mrz1836/conductor/internal/errors"
)

// Directory and file permission constants.
const (
	dirPerm  = 0o750 // Secure directory permissions
	filePerm = 0o600 // Secure file permissions
)

// listReadConcurrency bounds parallel file reads in List.
const listReadConcurrency = 8

// Store defines the interface for run archive operations.
type Store interface {
	// Archive persists a terminal run. Returns ErrRunNotTerminal for live
	// runs and ErrRunExists when the run was already archived.
	Archive(ctx context.Context, run *domain.WorkflowRun) error

	// Get retrieves an archived run by ID.
	// Returns ErrRunNotFound if absent, ErrRunCorrupted if unreadable.
	Get(ctx context.Context, runID string) (*domain.WorkflowRun, error)

	// List returns all archived runs, newest first.
	List(ctx context.Context) ([]*domain.WorkflowRun, error)
}

// FileStore implements Store using one JSON file per run.
type FileStore struct {
	runsDir string
}

// NewFileStore creates a FileStore rooted at the given runs directory.
func NewFileStore(runsDir string) (*FileStore, error) {
	if runsDir == "" {
		return nil, fmt.Errorf("%w: runs directory is empty", conductorerrors.ErrInvalidArgument)
	}
	return &FileStore{runsDir: runsDir}, nil
}

// Archive persists a terminal run as pretty-printed JSON, creating the runs
// directory on first use. The write is atomic: data lands in a temp file
// that is renamed into place.
func (s *FileStore) Archive(ctx context.Context, run *domain.WorkflowRun) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if run == nil || run.ID == "" {
		return fmt.Errorf("%w: run has no ID", conductorerrors.ErrInvalidArgument)
	}
	if !run.IsTerminal() {
		return fmt.Errorf("%w: run %s is %s", conductorerrors.ErrRunNotTerminal, run.ID, run.Status)
	}

	if err := os.MkdirAll(s.runsDir, dirPerm); err != nil {
		return fmt.Errorf("failed to create runs directory: %w", err)
	}

	path := s.runPath(run.ID)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", conductorerrors.ErrRunExists, run.ID)
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run %s: %w", run.ID, err)
	}
	if err := atomicWrite(path, data); err != nil {
		return fmt.Errorf("failed to archive run %s: %w", run.ID, err)
	}
	return nil
}

// Get retrieves an archived run by ID.
func (s *FileStore) Get(ctx context.Context, runID string) (*domain.WorkflowRun, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if runID == "" {
		return nil, fmt.Errorf("%w: run ID is empty", conductorerrors.ErrInvalidArgument)
	}

	data, err := os.ReadFile(s.runPath(runID)) //#nosec G304 -- path is constructed internally
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", conductorerrors.ErrRunNotFound, runID)
		}
		return nil, fmt.Errorf("failed to read run %s: %w", runID, err)
	}

	var run domain.WorkflowRun
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", conductorerrors.ErrRunCorrupted, runID, err)
	}
	return &run, nil
}

// List returns all archived runs sorted by creation time, newest first.
// Corrupted files are skipped rather than failing the whole listing.
func (s *FileStore) List(ctx context.Context) ([]*domain.WorkflowRun, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.runsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	var (
		mu   sync.Mutex
		runs []*domain.WorkflowRun
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listReadConcurrency)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		runID := strings.TrimSuffix(entry.Name(), ".json")
		g.Go(func() error {
			run, err := s.Get(gctx, runID)
			if err != nil {
				return nil //nolint:nilerr // skip unreadable entries
			}
			mu.Lock()
			runs = append(runs, run)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].ID > runs[j].ID
		}
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs, nil
}

func (s *FileStore) runPath(runID string) string {
	return filepath.Join(s.runsDir, runID+".json")
}

// atomicWrite writes data to a temp file, syncs it, and renames it into
// place so readers never observe a partial file.
func atomicWrite(path string, data []byte) error {
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm) //#nosec G304 -- path is constructed internally
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

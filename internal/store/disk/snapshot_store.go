// Package disk provides a snapshot cache that survives restarts: one
// zstd-compressed JSON file per tenant under a cache directory.
package disk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/Osmandiyaka/mindbloom-sub000/internal/models"
	"github.com/Osmandiyaka/mindbloom-sub000/internal/store"
)

// SnapshotStore implements store.SnapshotStore on the filesystem. Writes go
// to a temp file first and are renamed into place so readers never observe a
// partial snapshot.
type SnapshotStore struct {
	dir string
}

// NewSnapshotStore creates the cache directory if needed.
func NewSnapshotStore(dir string) (*SnapshotStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	return &SnapshotStore{dir: dir}, nil
}

func (s *SnapshotStore) path(tenantID string) string {
	return filepath.Join(s.dir, tenantID+".json.zst")
}

// Load retrieves the snapshot for a tenant.
func (s *SnapshotStore) Load(ctx context.Context, tenantID string) (*models.WizardSnapshot, error) {
	src, err := os.Open(s.path(tenantID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, store.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer func() { _ = src.Close() }()

	dec, err := zstd.NewReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	defer dec.Close()

	var snapshot models.WizardSnapshot
	if err := json.NewDecoder(dec.IOReadCloser()).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snapshot, nil
}

// Save stores the snapshot for a tenant.
func (s *SnapshotStore) Save(ctx context.Context, tenantID string, snapshot *models.WizardSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, tenantID+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	enc, err := zstd.NewWriter(tmp, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to create encoder: %w", err)
	}
	if _, err := enc.Write(payload); err != nil {
		_ = enc.Close()
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to compress snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close encoder: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path(tenantID)); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to move snapshot into place: %w", err)
	}
	return nil
}

// Clear removes the tenant's snapshot file.
func (s *SnapshotStore) Clear(ctx context.Context, tenantID string) error {
	err := os.Remove(s.path(tenantID))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove snapshot: %w", err)
	}
	return nil
}

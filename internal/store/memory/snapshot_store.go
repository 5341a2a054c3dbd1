// Package memory provides the in-process snapshot cache. It is the default
// local mirror: process-wide keyed storage with an explicit clear, no hidden
// state beyond the keyed map.
package memory

import (
	"context"
	"sync"

	"github.com/Osmandiyaka/mindbloom-sub000/internal/models"
	"github.com/Osmandiyaka/mindbloom-sub000/internal/store"
)

// DefaultKeyPrefix namespaces snapshot keys so other cached artifacts can
// share the process.
const DefaultKeyPrefix = "setup-program"

// SnapshotStore implements store.SnapshotStore using in-memory storage.
// Snapshots are cloned on the way in and out to avoid aliasing.
type SnapshotStore struct {
	mu sync.RWMutex

	prefix    string
	snapshots map[string]*models.WizardSnapshot // "<prefix>:<tenantID>" -> snapshot
}

// NewSnapshotStore creates an in-memory snapshot store. An empty prefix
// falls back to DefaultKeyPrefix.
func NewSnapshotStore(prefix string) *SnapshotStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &SnapshotStore{
		prefix:    prefix,
		snapshots: make(map[string]*models.WizardSnapshot),
	}
}

func (s *SnapshotStore) key(tenantID string) string {
	return s.prefix + ":" + tenantID
}

// Load retrieves the snapshot for a tenant.
func (s *SnapshotStore) Load(ctx context.Context, tenantID string) (*models.WizardSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, exists := s.snapshots[s.key(tenantID)]
	if !exists {
		return nil, store.ErrSnapshotNotFound
	}
	return snapshot.Clone(), nil
}

// Save stores the snapshot for a tenant.
func (s *SnapshotStore) Save(ctx context.Context, tenantID string, snapshot *models.WizardSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[s.key(tenantID)] = snapshot.Clone()
	return nil
}

// Clear removes the tenant's snapshot.
func (s *SnapshotStore) Clear(ctx context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.snapshots, s.key(tenantID))
	return nil
}

// Package store persists wizard snapshots. The interface covers the local
// cache mirrors (memory, disk, postgres); ProgressStore composes a mirror
// with the remote tenant-settings collaborator, which remains the source of
// truth.
package store

import (
	"context"
	"errors"

	"github.com/Osmandiyaka/mindbloom-sub000/internal/models"
)

// Sentinel errors for snapshot storage operations.
var (
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// SnapshotStore loads and saves one wizard snapshot per tenant.
type SnapshotStore interface {
	// Load retrieves the snapshot for a tenant.
	// Returns ErrSnapshotNotFound if none has been saved.
	Load(ctx context.Context, tenantID string) (*models.WizardSnapshot, error)

	// Save stores the snapshot for a tenant, replacing any prior one.
	Save(ctx context.Context, tenantID string, snapshot *models.WizardSnapshot) error

	// Clear removes the tenant's snapshot. Clearing a tenant that has no
	// snapshot is not an error.
	Clear(ctx context.Context, tenantID string) error
}

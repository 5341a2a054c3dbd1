package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Osmandiyaka/mindbloom-sub000/internal/models"
)

// RemoteStore is the remote side of snapshot persistence: the tenant
// settings collaborator holding extras.setupProgram. A nil snapshot from
// GetSetupProgram means the tenant has never saved one.
type RemoteStore interface {
	GetSetupProgram(ctx context.Context) (*models.WizardSnapshot, error)
	PutSetupProgram(ctx context.Context, snapshot *models.WizardSnapshot) error
}

// ProgressStore composes the local cache mirror with the remote settings
// endpoint. The remote is the source of truth; the local mirror is a
// convenience, so its write failures are swallowed.
type ProgressStore struct {
	local  SnapshotStore
	remote RemoteStore
	log    zerolog.Logger
}

// NewProgressStore builds the composite store. local may be nil, in which
// case only the remote side is used.
func NewProgressStore(local SnapshotStore, remote RemoteStore, log zerolog.Logger) *ProgressStore {
	return &ProgressStore{local: local, remote: remote, log: log}
}

// Load resolves the snapshot to continue from, applying the tie-break
// policy between the local mirror and the remote copy:
//
//  1. A remote snapshot with status in_progress always wins.
//  2. Otherwise, when both exist, the one with the later UpdatedAt wins.
//  3. On an exact timestamp tie the local copy wins (it is the copy this
//     device touched most recently).
//
// Returns ErrSnapshotNotFound when neither side has one.
func (p *ProgressStore) Load(ctx context.Context, tenantID string) (*models.WizardSnapshot, error) {
	var local *models.WizardSnapshot
	if p.local != nil {
		snapshot, err := p.local.Load(ctx, tenantID)
		switch {
		case err == nil:
			local = snapshot
		case errors.Is(err, ErrSnapshotNotFound):
		default:
			// Unreadable cache is treated as absent.
			p.log.Debug().Err(err).Str("tenant_id", tenantID).Msg("local snapshot unreadable")
		}
	}

	remote, err := p.remote.GetSetupProgram(ctx)
	if err != nil {
		if local != nil {
			p.log.Warn().Err(err).Str("tenant_id", tenantID).Msg("remote snapshot unavailable, using local cache")
			return local, nil
		}
		return nil, fmt.Errorf("failed to load remote snapshot: %w", err)
	}

	switch {
	case remote == nil && local == nil:
		return nil, ErrSnapshotNotFound
	case remote == nil:
		return local, nil
	case local == nil:
		return remote, nil
	case remote.Status == models.WizardInProgress:
		return remote, nil
	case remote.UpdatedAt.After(local.UpdatedAt):
		return remote, nil
	default:
		return local, nil
	}
}

// Save persists the snapshot remotely and mirrors it locally. A local write
// failure is logged and swallowed; a remote failure is returned.
func (p *ProgressStore) Save(ctx context.Context, tenantID string, snapshot *models.WizardSnapshot) error {
	if err := p.remote.PutSetupProgram(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to save remote snapshot: %w", err)
	}
	if p.local != nil {
		if err := p.local.Save(ctx, tenantID, snapshot); err != nil {
			p.log.Debug().Err(err).Str("tenant_id", tenantID).Msg("local snapshot write failed")
		}
	}
	return nil
}

// Clear removes the snapshot from both sides.
func (p *ProgressStore) Clear(ctx context.Context, tenantID string) error {
	if err := p.remote.PutSetupProgram(ctx, nil); err != nil {
		return fmt.Errorf("failed to clear remote snapshot: %w", err)
	}
	if p.local != nil {
		if err := p.local.Clear(ctx, tenantID); err != nil {
			p.log.Debug().Err(err).Str("tenant_id", tenantID).Msg("local snapshot clear failed")
		}
	}
	return nil
}

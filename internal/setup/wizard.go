package setup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Osmandiyaka/mindbloom-sub000/internal/api"
	"github.com/Osmandiyaka/mindbloom-sub000/internal/models"
	"github.com/Osmandiyaka/mindbloom-sub000/internal/store"
)

// Clients bundles the collaborator clients the wizard's sub-stores drive.
type Clients struct {
	Schools *api.SchoolsClient
	Classes *api.ClassesClient
	Levels  *api.LevelsClient
	Users   *api.UsersClient
}

// Config configures a Wizard.
type Config struct {
	TenantID string
	Progress *store.ProgressStore
	Clients  Clients

	// AutosaveSettle overrides the autosave coalescing window. Zero means
	// DefaultAutosaveSettle.
	AutosaveSettle time.Duration

	Logger zerolog.Logger
}

// Wizard is the workspace setup orchestrator. It exclusively owns the
// wizard snapshot and step state, composes the entity sub-stores into one
// addressable object, and schedules autosave on every tracked change.
type Wizard struct {
	mu sync.Mutex

	tenantID string
	progress *store.ProgressStore

	status      models.WizardStatus
	step        Step
	startedAt   *time.Time
	skippedAt   *time.Time
	completedAt *time.Time

	attemptedContinue bool
	lastError         string
	loaded            bool

	Schools     *SchoolStore
	OrgUnits    *OrgUnitStore
	Levels      *LevelStore
	Classes     *ClassStore
	GradeScales *GradeScaleStore
	Users       *UserStore

	autosaver *Autosaver
	log       zerolog.Logger
}

// New builds a wizard and its sub-stores. Call Init before using it.
func New(cfg Config) *Wizard {
	w := &Wizard{
		tenantID:    cfg.TenantID,
		progress:    cfg.Progress,
		status:      models.WizardNotStarted,
		Schools:     NewSchoolStore(cfg.Clients.Schools, cfg.Logger),
		OrgUnits:    NewOrgUnitStore(cfg.Logger),
		Levels:      NewLevelStore(context.Background(), cfg.Clients.Levels, cfg.Logger),
		Classes:     NewClassStore(cfg.Clients.Classes, cfg.Logger),
		GradeScales: NewGradeScaleStore(cfg.Logger),
		Users:       NewUserStore(cfg.Clients.Users, cfg.Logger),
		log:         cfg.Logger,
	}
	w.autosaver = NewAutosaver(cfg.Progress, cfg.TenantID, w.Snapshot, cfg.AutosaveSettle, cfg.Logger)

	notify := w.autosaver.Notify
	w.Schools.SetOnChange(notify)
	w.OrgUnits.SetOnChange(notify)
	w.Levels.SetOnChange(notify)
	w.Classes.SetOnChange(notify)
	w.GradeScales.SetOnChange(notify)
	w.Users.SetOnChange(notify)
	return w
}

// Init loads the tenant's stored snapshot (if any), migrates legacy
// shapes, seeds the sub-stores, and arms the autosaver. Autosave stays
// disabled until Init returns so the initial seeding never persists
// default state over real saved state.
func (w *Wizard) Init(ctx context.Context) error {
	snapshot, err := w.progress.Load(ctx, w.tenantID)
	if err != nil {
		if !errors.Is(err, store.ErrSnapshotNotFound) {
			return fmt.Errorf("failed to load setup progress: %w", err)
		}
		snapshot = models.NewWizardSnapshot()
	}

	if MigrateSnapshot(&snapshot.Data) {
		w.log.Info().Str("tenant_id", w.tenantID).Msg("migrated legacy snapshot shape")
	}

	w.mu.Lock()
	w.status = snapshot.Status
	w.step = clampStep(Step(snapshot.Step))
	w.startedAt = snapshot.StartedAt
	w.skippedAt = snapshot.SkippedAt
	w.completedAt = snapshot.CompletedAt
	w.mu.Unlock()

	w.Schools.Seed(snapshot.Data.Schools)
	w.OrgUnits.Seed(snapshot.Data.OrgUnits, snapshot.Data.OrgUnitMembers, snapshot.Data.OrgUnitRoles)
	w.Levels.Seed(snapshot.Data.Levels)
	w.Classes.Seed(snapshot.Data.Classes, snapshot.Data.Sections)
	w.GradeScales.Seed(snapshot.Data.GradeScales)
	w.Users.Seed(snapshot.Data.Users)

	w.mu.Lock()
	w.loaded = true
	w.mu.Unlock()
	w.autosaver.Arm()

	w.log.Info().
		Str("tenant_id", w.tenantID).
		Str("status", string(snapshot.Status)).
		Int("step", int(w.Step())).
		Msg("setup wizard initialized")
	return nil
}

func clampStep(s Step) Step {
	if s < StepWelcome {
		return StepWelcome
	}
	if s > lastStep {
		return lastStep
	}
	return s
}

// Step returns the current step index.
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Status returns the wizard lifecycle status.
func (w *Wizard) Status() models.WizardStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// AttemptedContinue reports whether the last Next call was blocked by the
// step gate; the host uses it to reveal inline validation errors.
func (w *Wizard) AttemptedContinue() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.attemptedContinue
}

// LastError returns the banner text for the last blocking failure, empty
// when clear.
func (w *Wizard) LastError() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastError
}

// Next validates the current step, runs its remote commit, and advances.
// Gate failures set the attempted-continue flag and return
// ErrStepIncomplete; commit failures leave the step unchanged and surface
// a recoverable error banner.
func (w *Wizard) Next(ctx context.Context) error {
	w.mu.Lock()
	current := w.step
	if current >= lastStep || w.status.Terminal() {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	if gate, ok := stepGates[current]; ok && !gate(w) {
		w.mu.Lock()
		w.attemptedContinue = true
		w.mu.Unlock()
		return ErrStepIncomplete
	}

	if commit, ok := stepCommits[current]; ok {
		if err := commit(ctx, w); err != nil {
			w.mu.Lock()
			w.lastError = remoteMessage(err, "Something went wrong while saving this step. Please try again.")
			w.mu.Unlock()
			return err
		}
	}

	w.mu.Lock()
	w.step = clampStep(current + 1)
	w.attemptedContinue = false
	w.lastError = ""
	w.enterInProgressLocked()
	w.mu.Unlock()

	w.autosaver.Notify()
	return nil
}

// enterInProgressLocked re-enters the in_progress state on navigation,
// stamping StartedAt on the first transition out of not_started.
func (w *Wizard) enterInProgressLocked() {
	if w.status.Terminal() {
		return
	}
	if w.status == models.WizardNotStarted {
		now := time.Now().UTC()
		w.startedAt = &now
	}
	w.status = models.WizardInProgress
}

// Back moves one step backwards, clamped at the welcome screen.
func (w *Wizard) Back() {
	w.mu.Lock()
	if w.step > StepWelcome && !w.status.Terminal() {
		w.step--
		w.attemptedContinue = false
		w.lastError = ""
		w.enterInProgressLocked()
	}
	w.mu.Unlock()
	w.autosaver.Notify()
}

// GoToStep jumps to a step, clamped to the valid range. Moving backwards
// is a plain jump; moving forward walks through Next so every intermediate
// step gets the same validate-and-commit treatment.
func (w *Wizard) GoToStep(ctx context.Context, target Step) error {
	target = clampStep(target)

	w.mu.Lock()
	current := w.step
	if w.status.Terminal() {
		w.mu.Unlock()
		return nil
	}
	if target <= current {
		w.step = target
		w.attemptedContinue = false
		w.lastError = ""
		w.enterInProgressLocked()
		w.mu.Unlock()
		w.autosaver.Notify()
		return nil
	}
	w.mu.Unlock()

	for w.Step() < target {
		if err := w.Next(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Finish marks the wizard completed and persists the final snapshot. Any
// queued level edits are flushed first.
func (w *Wizard) Finish(ctx context.Context) error {
	w.Levels.Flush()

	w.mu.Lock()
	now := time.Now().UTC()
	w.status = models.WizardCompleted
	w.completedAt = &now
	w.step = StepDone
	w.mu.Unlock()

	if err := w.progress.Save(ctx, w.tenantID, w.Snapshot()); err != nil {
		return fmt.Errorf("failed to persist completion: %w", err)
	}
	w.log.Info().Str("tenant_id", w.tenantID).Msg("setup wizard completed")
	return nil
}

// Skip marks the wizard skipped and persists. The snapshot remains
// loadable for inspection.
func (w *Wizard) Skip(ctx context.Context) error {
	w.mu.Lock()
	now := time.Now().UTC()
	w.status = models.WizardSkipped
	w.skippedAt = &now
	w.mu.Unlock()

	if err := w.progress.Save(ctx, w.tenantID, w.Snapshot()); err != nil {
		return fmt.Errorf("failed to persist skip: %w", err)
	}
	w.log.Info().Str("tenant_id", w.tenantID).Msg("setup wizard skipped")
	return nil
}

// Reset clears the stored snapshot and returns the wizard to its initial
// state.
func (w *Wizard) Reset(ctx context.Context) error {
	if err := w.progress.Clear(ctx, w.tenantID); err != nil {
		return fmt.Errorf("failed to clear setup progress: %w", err)
	}

	w.mu.Lock()
	w.status = models.WizardNotStarted
	w.step = StepWelcome
	w.startedAt = nil
	w.skippedAt = nil
	w.completedAt = nil
	w.attemptedContinue = false
	w.lastError = ""
	w.mu.Unlock()

	w.Schools.Seed(nil)
	w.OrgUnits.Seed(nil, nil, nil)
	w.Levels.Seed(nil)
	w.Classes.Seed(nil, nil)
	w.GradeScales.Seed(nil)
	w.Users.Seed(nil)
	return nil
}

// Snapshot assembles the composite wizard snapshot from the sub-stores.
// Returns nil before Init has seeded the stores.
func (w *Wizard) Snapshot() *models.WizardSnapshot {
	w.mu.Lock()
	if !w.loaded {
		w.mu.Unlock()
		return nil
	}
	snapshot := &models.WizardSnapshot{
		Status:      w.status,
		Step:        int(w.step),
		StartedAt:   w.startedAt,
		SkippedAt:   w.skippedAt,
		CompletedAt: w.completedAt,
		UpdatedAt:   time.Now().UTC(),
	}
	w.mu.Unlock()

	snapshot.Data = models.WizardData{
		Schools:        w.Schools.Schools(),
		OrgUnits:       w.OrgUnits.Units(),
		OrgUnitMembers: w.OrgUnits.MemberTable(),
		OrgUnitRoles:   w.OrgUnits.RoleTable(),
		Levels:         w.Levels.Levels(),
		Classes:        w.Classes.Classes(),
		Sections:       w.Classes.Sections(),
		GradeScales:    w.GradeScales.Scales(),
		Users:          w.Users.Users(),
	}
	return snapshot
}

// Close stops the autosaver (after a final flush) and any pending level
// debounce timers.
func (w *Wizard) Close() {
	w.autosaver.Close()
	w.Levels.Close()
}

package setup

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/Osmandiyaka/mindbloom-sub000/internal/models"
	"github.com/Osmandiyaka/mindbloom-sub000/internal/store"
)

// DefaultAutosaveSettle is how long the autosaver lets further change
// notifications accumulate before flushing, so that the multiple field
// writes of one user action coalesce into a single persisted snapshot.
const DefaultAutosaveSettle = 10 * time.Millisecond

// Autosaver watches the composite wizard state and persists the full
// snapshot once per burst of changes. It stays disarmed until the initial
// load completes so default state never overwrites real saved state.
// Persistence failures are logged and swallowed here; only the per-level
// field autosave surfaces a visible error indicator.
type Autosaver struct {
	progress *store.ProgressStore
	tenantID string
	snapshot func() *models.WizardSnapshot
	settle   time.Duration

	signal chan struct{}
	stopCh chan struct{}
	doneCh chan struct{}
	armed  atomic.Bool

	startOnce sync.Once
	stopOnce  sync.Once

	log zerolog.Logger
}

// NewAutosaver wires the scheduler. snapshot must assemble the current
// composite snapshot; it is invoked once per flush.
func NewAutosaver(progress *store.ProgressStore, tenantID string, snapshot func() *models.WizardSnapshot, settle time.Duration, log zerolog.Logger) *Autosaver {
	if settle <= 0 {
		settle = DefaultAutosaveSettle
	}
	return &Autosaver{
		progress: progress,
		tenantID: tenantID,
		snapshot: snapshot,
		settle:   settle,
		signal:   make(chan struct{}, 1), // buffered so Notify never blocks
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		log:      log,
	}
}

// Notify records that tracked state changed. Safe to call from any store
// mutation; signals arriving while a flush is pending coalesce.
func (a *Autosaver) Notify() {
	if !a.armed.Load() {
		return
	}
	select {
	case a.signal <- struct{}{}:
	default:
	}
}

// Arm enables the scheduler after the initial load and starts the flush
// goroutine.
func (a *Autosaver) Arm() {
	a.armed.Store(true)
	a.startOnce.Do(func() {
		go a.loop()
	})
}

func (a *Autosaver) loop() {
	defer close(a.doneCh)

	for {
		select {
		case <-a.signal:
			a.coalesce()
			a.flush()
		case <-a.stopCh:
			// Final flush for anything still queued.
			select {
			case <-a.signal:
				a.flush()
			default:
			}
			return
		}
	}
}

// coalesce waits out the settle window, draining any further signals that
// arrive, so one user action produces one persisted snapshot.
func (a *Autosaver) coalesce() {
	timer := time.NewTimer(a.settle)
	defer timer.Stop()
	for {
		select {
		case <-a.signal:
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(a.settle)
		case <-timer.C:
			return
		case <-a.stopCh:
			return
		}
	}
}

func (a *Autosaver) flush() {
	snapshot := a.snapshot()
	if snapshot == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.progress.Save(ctx, a.tenantID, snapshot); err != nil {
		// Not retried and not surfaced in the wizard flow.
		a.log.Warn().Err(err).Str("tenant_id", a.tenantID).Msg("autosave failed")
		return
	}
	a.log.Debug().Str("tenant_id", a.tenantID).Int("step", snapshot.Step).Msg("autosaved snapshot")
}

// Close stops the scheduler after a final flush of any queued change.
func (a *Autosaver) Close() {
	a.stopOnce.Do(func() {
		started := a.armed.Load()
		a.armed.Store(false)
		close(a.stopCh)
		if started {
			<-a.doneCh
		}
	})
}

package setup

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Osmandiyaka/mindbloom-sub000/internal/api"
	"github.com/Osmandiyaka/mindbloom-sub000/internal/models"
)

// DefaultLevelDebounce is the trailing debounce window for inline level
// edits. Repeated edits to the same level inside the window collapse into
// one PATCH.
const DefaultLevelDebounce = 500 * time.Millisecond

// LevelSaveState is the per-level autosave status.
type LevelSaveState string

const (
	LevelSaveSaving LevelSaveState = "saving"
	LevelSaveSaved  LevelSaveState = "saved"
	LevelSaveError  LevelSaveState = "error"
)

// LevelBanner is the aggregated autosave indicator across all levels.
type LevelBanner string

const (
	LevelBannerIdle   LevelBanner = ""
	LevelBannerSaving LevelBanner = "Saving…"
	LevelBannerFailed LevelBanner = "Some changes failed"
	LevelBannerSaved  LevelBanner = "All changes saved"
)

// LevelEdit carries one inline field edit. Nil fields are untouched.
type LevelEdit struct {
	Name  *string
	Code  *string
	Group *string
}

// LevelStore owns the academic-level ladder. Unlike the wizard's coarse
// autosave, inline edits here commit straight to the level collaborator:
// each edit is queued per level with a trailing debounce while the
// in-memory value updates immediately.
type LevelStore struct {
	mu sync.Mutex

	client *api.LevelsClient

	levels   []models.AcademicLevel
	pending  map[string]api.UpdateLevelRequest
	timers   map[string]*time.Timer
	statuses map[string]LevelSaveState

	debounce time.Duration
	ctx      context.Context

	onChange func()
	log      zerolog.Logger
}

// NewLevelStore creates an empty store bound to the level collaborator.
// The context bounds the debounced background PATCHes; it is not used to
// cancel them on navigation.
func NewLevelStore(ctx context.Context, client *api.LevelsClient, log zerolog.Logger) *LevelStore {
	return &LevelStore{
		client:   client,
		pending:  make(map[string]api.UpdateLevelRequest),
		timers:   make(map[string]*time.Timer),
		statuses: make(map[string]LevelSaveState),
		debounce: DefaultLevelDebounce,
		ctx:      ctx,
		log:      log,
	}
}

// SetDebounce overrides the debounce window. Used by tests.
func (s *LevelStore) SetDebounce(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debounce = d
}

// SetOnChange registers the autosave notification hook.
func (s *LevelStore) SetOnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Seed replaces the ladder from a loaded snapshot, normalizing sort order.
func (s *LevelStore) Seed(levels []models.AcademicLevel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels = append([]models.AcademicLevel(nil), levels...)
	s.renumberLocked()
}

func (s *LevelStore) notifyLocked() {
	if s.onChange != nil {
		s.onChange()
	}
}

func (s *LevelStore) renumberLocked() {
	for i := range s.levels {
		s.levels[i].SortOrder = i + 1
	}
}

func (s *LevelStore) indexOfLocked(id string) int {
	for i, l := range s.levels {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// Levels returns the ladder in sort order.
func (s *LevelStore) Levels() []models.AcademicLevel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AcademicLevel(nil), s.levels...)
}

// AddLevel creates a level through the collaborator and appends it to the
// ladder. The create is awaited; nothing is added on failure.
func (s *LevelStore) AddLevel(ctx context.Context, name, code, group string) (models.AcademicLevel, error) {
	if strings.TrimSpace(name) == "" {
		return models.AcademicLevel{}, fieldErr("name", "Level name is required.")
	}

	s.mu.Lock()
	row := models.AcademicLevel{
		Name:      name,
		Code:      code,
		Group:     group,
		SortOrder: len(s.levels) + 1,
		Status:    models.LevelStatusActive,
	}
	s.mu.Unlock()

	created, err := s.client.Create(ctx, row)
	if err != nil {
		return models.AcademicLevel{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels = append(s.levels, *created)
	s.renumberLocked()
	s.notifyLocked()
	return *created, nil
}

// EditLevel applies an inline field edit. The in-memory value updates
// immediately for responsiveness; the PATCH is queued per level with a
// trailing debounce, replacing (not accumulating) any timer already armed
// for the same level.
func (s *LevelStore) EditLevel(id string, edit LevelEdit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(id)
	if i < 0 {
		return ErrLevelNotFound
	}

	queued := s.pending[id]
	if edit.Name != nil {
		s.levels[i].Name = *edit.Name
		queued.Name = edit.Name
	}
	if edit.Code != nil {
		s.levels[i].Code = *edit.Code
		queued.Code = edit.Code
	}
	if edit.Group != nil {
		s.levels[i].Group = *edit.Group
		queued.Group = edit.Group
	}
	s.pending[id] = queued

	if timer, armed := s.timers[id]; armed {
		timer.Stop()
	}
	s.timers[id] = time.AfterFunc(s.debounce, func() { s.flushLevel(id) })

	s.notifyLocked()
	return nil
}

// flushLevel sends the queued PATCH for one level and records the outcome.
func (s *LevelStore) flushLevel(id string) {
	s.mu.Lock()
	req, ok := s.pending[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.pending, id)
	delete(s.timers, id)
	s.statuses[id] = LevelSaveSaving
	s.mu.Unlock()

	updated, err := s.client.Update(s.ctx, id, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.statuses[id] = LevelSaveError
		s.log.Warn().Err(err).Str("level_id", id).Msg("level autosave failed")
		return
	}
	s.statuses[id] = LevelSaveSaved
	if i := s.indexOfLocked(id); i >= 0 && updated != nil {
		// Keep any newer local edits already queued again.
		if _, editing := s.pending[id]; !editing {
			order := s.levels[i].SortOrder
			s.levels[i] = *updated
			s.levels[i].SortOrder = order
		}
	}
}

// Flush forces every queued edit out immediately, bypassing the debounce.
// Used when the wizard finishes while edits are still pending.
func (s *LevelStore) Flush() {
	s.mu.Lock()
	ids := make([]string, 0, len(s.pending))
	for id := range s.pending {
		if timer, armed := s.timers[id]; armed {
			timer.Stop()
			delete(s.timers, id)
		}
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.flushLevel(id)
	}
}

// SaveState returns one level's autosave status.
func (s *LevelStore) SaveState(id string) LevelSaveState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statuses[id]
}

// Banner aggregates the per-level statuses into the single indicator the
// host renders: saving beats failed beats saved.
func (s *LevelStore) Banner() LevelBanner {
	s.mu.Lock()
	defer s.mu.Unlock()

	var anySaving, anyError, anySaved bool
	for _, st := range s.statuses {
		switch st {
		case LevelSaveSaving:
			anySaving = true
		case LevelSaveError:
			anyError = true
		case LevelSaveSaved:
			anySaved = true
		}
	}
	if len(s.pending) > 0 {
		anySaving = true
	}
	switch {
	case anySaving:
		return LevelBannerSaving
	case anyError:
		return LevelBannerFailed
	case anySaved:
		return LevelBannerSaved
	default:
		return LevelBannerIdle
	}
}

// MoveLevel moves a level to a new position. The full ladder's dense sort
// orders are recomputed immediately (optimistic) and persisted via one
// batch reorder call; on failure the canonical list is refetched to discard
// the optimistic change.
func (s *LevelStore) MoveLevel(ctx context.Context, id string, newIndex int) error {
	s.mu.Lock()
	i := s.indexOfLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return ErrLevelNotFound
	}
	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex >= len(s.levels) {
		newIndex = len(s.levels) - 1
	}

	moved := s.levels[i]
	rest := append(append([]models.AcademicLevel(nil), s.levels[:i]...), s.levels[i+1:]...)
	s.levels = append(append(append([]models.AcademicLevel(nil), rest[:newIndex]...), moved), rest[newIndex:]...)
	s.renumberLocked()

	items := make([]api.ReorderItem, len(s.levels))
	for j, l := range s.levels {
		items[j] = api.ReorderItem{ID: l.ID, SortOrder: l.SortOrder}
	}
	s.mu.Unlock()

	if err := s.client.Reorder(ctx, items); err != nil {
		s.log.Warn().Err(err).Msg("level reorder failed, refetching canonical order")
		s.reloadCanonical(ctx)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifyLocked()
	return nil
}

// reloadCanonical discards optimistic state by refetching the remote list.
// When even the refetch fails the optimistic order stays; the next load
// reconciles.
func (s *LevelStore) reloadCanonical(ctx context.Context) {
	canonical, err := s.client.List(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("level refetch failed, keeping optimistic order")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels = canonical
	s.renumberLocked()
	s.notifyLocked()
}

// ApplyTemplate replaces the whole ladder with the server-returned template
// result. When levels already exist the caller must have confirmed the
// destructive replace; otherwise ErrLevelsExist is returned before any call
// is made.
func (s *LevelStore) ApplyTemplate(ctx context.Context, templateKey string, confirmed bool) error {
	s.mu.Lock()
	hasLevels := len(s.levels) > 0
	s.mu.Unlock()

	if hasLevels && !confirmed {
		return ErrLevelsExist
	}

	rows, err := s.client.ApplyTemplate(ctx, templateKey)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels = rows
	s.renumberLocked()
	s.statuses = make(map[string]LevelSaveState)
	s.notifyLocked()
	return nil
}

// ArchiveLevel marks a level archived via the collaborator, then locally.
func (s *LevelStore) ArchiveLevel(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.indexOfLocked(id) < 0 {
		s.mu.Unlock()
		return ErrLevelNotFound
	}
	s.mu.Unlock()

	if err := s.client.Archive(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOfLocked(id); i >= 0 {
		s.levels[i].Status = models.LevelStatusArchived
	}
	s.notifyLocked()
	return nil
}

// RestoreLevel returns an archived level to active.
func (s *LevelStore) RestoreLevel(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.indexOfLocked(id) < 0 {
		s.mu.Unlock()
		return ErrLevelNotFound
	}
	s.mu.Unlock()

	if err := s.client.Restore(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOfLocked(id); i >= 0 {
		s.levels[i].Status = models.LevelStatusActive
	}
	s.notifyLocked()
	return nil
}

// DeleteLevel removes a level after consulting the collaborator's impact
// report. Deletion proceeds only when nothing depends on the level or the
// caller confirmed.
func (s *LevelStore) DeleteLevel(ctx context.Context, id string, confirmed bool) (*models.LevelImpact, error) {
	s.mu.Lock()
	if s.indexOfLocked(id) < 0 {
		s.mu.Unlock()
		return nil, ErrLevelNotFound
	}
	s.mu.Unlock()

	impact, err := s.client.Impact(ctx, id)
	if err != nil {
		return nil, err
	}
	if (impact.Classes > 0 || impact.Students > 0) && !confirmed {
		return impact, ErrConfirmationMismatch
	}

	if err := s.client.Delete(ctx, id); err != nil {
		return impact, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOfLocked(id); i >= 0 {
		s.levels = append(s.levels[:i], s.levels[i+1:]...)
	}
	s.renumberLocked()
	delete(s.statuses, id)
	s.notifyLocked()
	return impact, nil
}

// Close stops any armed debounce timers without flushing.
func (s *LevelStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}

package setup

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Osmandiyaka/mindbloom-sub000/internal/api"
	"github.com/Osmandiyaka/mindbloom-sub000/internal/models"
)

// ClassSort selects the ordering of a class list view.
type ClassSort string

const (
	ClassSortName     ClassSort = "name"
	ClassSortRecency  ClassSort = "recency"
	ClassSortSections ClassSort = "sections"
)

// ClassForm is the class create/edit payload. An empty ID means create.
type ClassForm struct {
	ID        string
	Name      string
	Code      string
	SchoolIDs []string
	Notes     string
	Status    models.RowStatus
}

// SectionForm is the section create/edit payload. An empty ID means create.
type SectionForm struct {
	ID       string
	ClassID  string
	Name     string
	Code     string
	Capacity int
	Status   models.RowStatus
}

// SectionPatternKind selects how GenerateSectionsPreview expands names.
type SectionPatternKind string

const (
	SectionPatternLetters SectionPatternKind = "letters"
	SectionPatternNumbers SectionPatternKind = "numbers"
	SectionPatternCustom  SectionPatternKind = "custom"
)

// SectionPattern describes a batch of section names to generate: an
// inclusive letter range, an inclusive number range, or a comma list.
type SectionPattern struct {
	Kind       SectionPatternKind
	FromLetter string
	ToLetter   string
	FromNumber int
	ToNumber   int
	Custom     string
}

// ClassStore owns the tenant's classes and sections: flat collections keyed
// by id with derived filtered/sorted views, optimistic creates reconciled
// against the class collaborator, cascade deletes, and drag-reorder
// persisted as batched per-row updates.
type ClassStore struct {
	mu sync.Mutex

	client *api.ClassesClient

	classes  []models.ClassRow
	sections []models.SectionRow

	classSeq   int
	sectionSeq int

	draftClassOrder   []string            // pending drag order, class ids
	draftSectionOrder map[string][]string // class id -> pending section ids

	submitting bool
	lastError  string

	onChange func()
	log      zerolog.Logger
}

// NewClassStore creates an empty store bound to the class collaborator.
func NewClassStore(client *api.ClassesClient, log zerolog.Logger) *ClassStore {
	return &ClassStore{
		client:            client,
		draftSectionOrder: make(map[string][]string),
		log:               log,
	}
}

// SetOnChange registers the autosave notification hook.
func (s *ClassStore) SetOnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Seed replaces the store contents from a loaded snapshot, normalizing sort
// orders to dense 1..n per scope and re-seeding the optimistic id counters
// from the largest numeric suffixes present.
func (s *ClassStore) Seed(classes []models.ClassRow, sections []models.SectionRow) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.classes = make([]models.ClassRow, len(classes))
	for i, c := range classes {
		s.classes[i] = c.Clone()
	}
	s.sections = append([]models.SectionRow(nil), sections...)
	s.renumberLocked()

	classIDs := make([]string, 0, len(classes))
	for _, c := range classes {
		classIDs = append(classIDs, c.ID)
	}
	sectionIDs := make([]string, 0, len(sections))
	for _, r := range sections {
		sectionIDs = append(sectionIDs, r.ID)
	}
	s.classSeq = maxIDSuffix("class", classIDs)
	s.sectionSeq = maxIDSuffix("section", sectionIDs)
}

func (s *ClassStore) notifyLocked() {
	if s.onChange != nil {
		s.onChange()
	}
}

// renumberLocked restores dense 1..n sort orders for the class list and for
// each class's section list, preserving relative order.
func (s *ClassStore) renumberLocked() {
	sort.SliceStable(s.classes, func(i, j int) bool {
		return s.classes[i].SortOrder < s.classes[j].SortOrder
	})
	for i := range s.classes {
		s.classes[i].SortOrder = i + 1
	}

	sort.SliceStable(s.sections, func(i, j int) bool {
		if s.sections[i].ClassID != s.sections[j].ClassID {
			return s.sections[i].ClassID < s.sections[j].ClassID
		}
		return s.sections[i].SortOrder < s.sections[j].SortOrder
	})
	perClass := make(map[string]int)
	for i := range s.sections {
		perClass[s.sections[i].ClassID]++
		s.sections[i].SortOrder = perClass[s.sections[i].ClassID]
	}
}

func (s *ClassStore) classIndexLocked(id string) int {
	for i, c := range s.classes {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (s *ClassStore) sectionIndexLocked(id string) int {
	for i, r := range s.sections {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// beginSubmit implements the best-effort re-entrancy guard checked at the
// top of every mutating operation.
func (s *ClassStore) beginSubmit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitting {
		return ErrSubmitting
	}
	s.submitting = true
	return nil
}

func (s *ClassStore) endSubmit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
}

// LastError returns the store's error banner text, empty when clear.
func (s *ClassStore) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

func (s *ClassStore) setErrorLocked(msg string) {
	s.lastError = msg
}

// validateClassForm enforces the class form rules and resolves the
// effective school set: the explicit selection, else the tenant's only
// school, else an error.
func validateClassForm(form ClassForm, tenantSchools []models.SchoolRow) ([]string, error) {
	if strings.TrimSpace(form.Name) == "" {
		return nil, fieldErr("name", "Class name is required.")
	}
	if !validCode(form.Code) {
		return nil, fieldErr("code", "Class code must be alphanumeric and can include hyphens.")
	}
	if len(form.SchoolIDs) > 0 {
		return append([]string(nil), form.SchoolIDs...), nil
	}
	if len(tenantSchools) == 1 && tenantSchools[0].ID != "" {
		return []string{tenantSchools[0].ID}, nil
	}
	return nil, fieldErr("schoolIds", "Select at least one school.")
}

// SaveClassForm creates or updates a class. Creates allocate an optimistic
// local id before the remote call resolves and reconcile the row in place
// with whatever id/fields the collaborator returns; on remote failure the
// local collection is restored and an error banner is set.
func (s *ClassStore) SaveClassForm(ctx context.Context, form ClassForm, tenantSchools []models.SchoolRow) (models.ClassRow, error) {
	if err := s.beginSubmit(); err != nil {
		return models.ClassRow{}, err
	}
	defer s.endSubmit()

	schoolIDs, err := validateClassForm(form, tenantSchools)
	if err != nil {
		return models.ClassRow{}, err
	}

	if form.ID == "" {
		return s.createClass(ctx, form, schoolIDs)
	}
	return s.updateClass(ctx, form, schoolIDs)
}

func (s *ClassStore) createClass(ctx context.Context, form ClassForm, schoolIDs []string) (models.ClassRow, error) {
	s.mu.Lock()
	s.classSeq++
	row := models.ClassRow{
		ID:        "class-" + strconv.Itoa(s.classSeq),
		Name:      form.Name,
		Code:      form.Code,
		SortOrder: len(s.classes) + 1,
		SchoolIDs: schoolIDs,
		Notes:     form.Notes,
		Status:    defaultRowStatus(form.Status),
	}
	s.classes = append(s.classes, row)
	prevID := row.ID
	s.mu.Unlock()

	created, err := s.client.CreateClass(ctx, row)

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.classIndexLocked(prevID)
	if err != nil {
		if i >= 0 {
			s.classes = append(s.classes[:i], s.classes[i+1:]...)
		}
		s.setErrorLocked(remoteMessage(err, "Could not save the class. Please try again."))
		return models.ClassRow{}, err
	}
	if i >= 0 {
		s.classes[i] = mergeClassRow(s.classes[i], *created)
		row = s.classes[i]
		if row.ID != prevID {
			// Re-point any sections created against the optimistic id.
			for k := range s.sections {
				if s.sections[k].ClassID == prevID {
					s.sections[k].ClassID = row.ID
				}
			}
		}
	}
	s.setErrorLocked("")
	s.notifyLocked()
	return row, nil
}

func (s *ClassStore) updateClass(ctx context.Context, form ClassForm, schoolIDs []string) (models.ClassRow, error) {
	s.mu.Lock()
	i := s.classIndexLocked(form.ID)
	if i < 0 {
		s.mu.Unlock()
		return models.ClassRow{}, ErrClassNotFound
	}
	prev := s.classes[i].Clone()
	next := prev
	next.Name = form.Name
	next.Code = form.Code
	next.SchoolIDs = schoolIDs
	next.Notes = form.Notes
	next.Status = defaultRowStatus(form.Status)
	s.classes[i] = next
	s.mu.Unlock()

	updated, err := s.client.UpdateClass(ctx, form.ID, next)

	s.mu.Lock()
	defer s.mu.Unlock()
	j := s.classIndexLocked(form.ID)
	if err != nil {
		if j >= 0 {
			s.classes[j] = prev
		}
		s.setErrorLocked(remoteMessage(err, "Could not save the class. Please try again."))
		return models.ClassRow{}, err
	}
	if j >= 0 {
		s.classes[j] = mergeClassRow(s.classes[j], *updated)
		next = s.classes[j]
	}
	s.setErrorLocked("")
	s.notifyLocked()
	return next, nil
}

// mergeClassRow overlays collaborator-returned fields on the local row,
// keeping local values for any field the collaborator omitted.
func mergeClassRow(local, remote models.ClassRow) models.ClassRow {
	merged := local
	if remote.ID != "" {
		merged.ID = remote.ID
	}
	if remote.Name != "" {
		merged.Name = remote.Name
	}
	if remote.Code != "" {
		merged.Code = remote.Code
	}
	if remote.SortOrder > 0 {
		merged.SortOrder = remote.SortOrder
	}
	if remote.SchoolIDs != nil {
		merged.SchoolIDs = remote.SchoolIDs
	}
	if remote.Notes != "" {
		merged.Notes = remote.Notes
	}
	if remote.Status != "" {
		merged.Status = remote.Status
	}
	return merged
}

// DeleteClass removes a class. The remote delete is awaited first; on
// failure the local collection is left untouched. On success the class's
// sections are cascaded out of the local collection.
func (s *ClassStore) DeleteClass(ctx context.Context, id string) error {
	if err := s.beginSubmit(); err != nil {
		return err
	}
	defer s.endSubmit()

	s.mu.Lock()
	if s.classIndexLocked(id) < 0 {
		s.mu.Unlock()
		return ErrClassNotFound
	}
	s.mu.Unlock()

	if err := s.client.DeleteClass(ctx, id); err != nil {
		s.mu.Lock()
		s.setErrorLocked(remoteMessage(err, "Could not delete the class. Please try again."))
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.classIndexLocked(id); i >= 0 {
		s.classes = append(s.classes[:i], s.classes[i+1:]...)
	}
	kept := s.sections[:0]
	for _, r := range s.sections {
		if r.ClassID != id {
			kept = append(kept, r)
		}
	}
	s.sections = kept
	delete(s.draftSectionOrder, id)
	s.renumberLocked()
	s.setErrorLocked("")
	s.notifyLocked()
	return nil
}

// SaveSectionForm creates or updates a section, with the same optimistic
// id/reconcile semantics as SaveClassForm.
func (s *ClassStore) SaveSectionForm(ctx context.Context, form SectionForm) (models.SectionRow, error) {
	if err := s.beginSubmit(); err != nil {
		return models.SectionRow{}, err
	}
	defer s.endSubmit()

	if strings.TrimSpace(form.Name) == "" {
		return models.SectionRow{}, fieldErr("name", "Section name is required.")
	}
	if !validCode(form.Code) {
		return models.SectionRow{}, fieldErr("code", "Section code must be alphanumeric and can include hyphens.")
	}

	s.mu.Lock()
	if s.classIndexLocked(form.ClassID) < 0 {
		s.mu.Unlock()
		return models.SectionRow{}, ErrClassNotFound
	}
	s.mu.Unlock()

	if form.ID == "" {
		return s.createSection(ctx, form)
	}
	return s.updateSection(ctx, form)
}

func (s *ClassStore) createSection(ctx context.Context, form SectionForm) (models.SectionRow, error) {
	s.mu.Lock()
	s.sectionSeq++
	row := models.SectionRow{
		ID:        "section-" + strconv.Itoa(s.sectionSeq),
		ClassID:   form.ClassID,
		Name:      form.Name,
		Code:      form.Code,
		Capacity:  form.Capacity,
		Status:    defaultRowStatus(form.Status),
		SortOrder: s.sectionCountLocked(form.ClassID) + 1,
	}
	s.sections = append(s.sections, row)
	prevID := row.ID
	s.mu.Unlock()

	created, err := s.client.CreateSection(ctx, row)

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.sectionIndexLocked(prevID)
	if err != nil {
		if i >= 0 {
			s.sections = append(s.sections[:i], s.sections[i+1:]...)
		}
		s.setErrorLocked(remoteMessage(err, "Could not save the section. Please try again."))
		return models.SectionRow{}, err
	}
	if i >= 0 {
		s.sections[i] = mergeSectionRow(s.sections[i], *created)
		row = s.sections[i]
	}
	s.setErrorLocked("")
	s.notifyLocked()
	return row, nil
}

func (s *ClassStore) updateSection(ctx context.Context, form SectionForm) (models.SectionRow, error) {
	s.mu.Lock()
	i := s.sectionIndexLocked(form.ID)
	if i < 0 {
		s.mu.Unlock()
		return models.SectionRow{}, ErrSectionNotFound
	}
	prev := s.sections[i]
	next := prev
	next.Name = form.Name
	next.Code = form.Code
	next.Capacity = form.Capacity
	next.Status = defaultRowStatus(form.Status)
	s.sections[i] = next
	s.mu.Unlock()

	updated, err := s.client.UpdateSection(ctx, form.ID, next)

	s.mu.Lock()
	defer s.mu.Unlock()
	j := s.sectionIndexLocked(form.ID)
	if err != nil {
		if j >= 0 {
			s.sections[j] = prev
		}
		s.setErrorLocked(remoteMessage(err, "Could not save the section. Please try again."))
		return models.SectionRow{}, err
	}
	if j >= 0 {
		s.sections[j] = mergeSectionRow(s.sections[j], *updated)
		next = s.sections[j]
	}
	s.setErrorLocked("")
	s.notifyLocked()
	return next, nil
}

func mergeSectionRow(local, remote models.SectionRow) models.SectionRow {
	merged := local
	if remote.ID != "" {
		merged.ID = remote.ID
	}
	if remote.ClassID != "" {
		merged.ClassID = remote.ClassID
	}
	if remote.Name != "" {
		merged.Name = remote.Name
	}
	if remote.Code != "" {
		merged.Code = remote.Code
	}
	if remote.Capacity > 0 {
		merged.Capacity = remote.Capacity
	}
	if remote.Status != "" {
		merged.Status = remote.Status
	}
	if remote.SortOrder > 0 {
		merged.SortOrder = remote.SortOrder
	}
	return merged
}

// DeleteSection removes one section. The remote delete is awaited first.
func (s *ClassStore) DeleteSection(ctx context.Context, id string) error {
	if err := s.beginSubmit(); err != nil {
		return err
	}
	defer s.endSubmit()

	s.mu.Lock()
	if s.sectionIndexLocked(id) < 0 {
		s.mu.Unlock()
		return ErrSectionNotFound
	}
	s.mu.Unlock()

	if err := s.client.DeleteSection(ctx, id); err != nil {
		s.mu.Lock()
		s.setErrorLocked(remoteMessage(err, "Could not delete the section. Please try again."))
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.sectionIndexLocked(id); i >= 0 {
		s.sections = append(s.sections[:i], s.sections[i+1:]...)
	}
	s.renumberLocked()
	s.setErrorLocked("")
	s.notifyLocked()
	return nil
}

func (s *ClassStore) sectionCountLocked(classID string) int {
	count := 0
	for _, r := range s.sections {
		if r.ClassID == classID {
			count++
		}
	}
	return count
}

// Classes returns the class list in sort order.
func (s *ClassStore) Classes() []models.ClassRow {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.ClassRow, len(s.classes))
	for i, c := range s.classes {
		out[i] = c.Clone()
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out
}

// Sections returns every section, ordered by class then sort order.
func (s *ClassStore) Sections() []models.SectionRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.SectionRow(nil), s.sections...)
}

// SectionsOf returns one class's sections in sort order.
func (s *ClassStore) SectionsOf(classID string) []models.SectionRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sectionsOfLocked(classID)
}

func (s *ClassStore) sectionsOfLocked(classID string) []models.SectionRow {
	var out []models.SectionRow
	for _, r := range s.sections {
		if r.ClassID == classID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out
}

// SearchClasses returns the filtered, sorted class view: case-insensitive
// name/code substring match, optional school filter, and one of the
// ClassSort orders.
func (s *ClassStore) SearchClasses(query, schoolID string, order ClassSort) []models.ClassRow {
	s.mu.Lock()
	defer s.mu.Unlock()

	query = strings.ToLower(strings.TrimSpace(query))
	var out []models.ClassRow
	for _, c := range s.classes {
		if query != "" &&
			!strings.Contains(strings.ToLower(c.Name), query) &&
			!strings.Contains(strings.ToLower(c.Code), query) {
			continue
		}
		if schoolID != "" && !containsString(c.SchoolIDs, schoolID) {
			continue
		}
		out = append(out, c.Clone())
	}

	switch order {
	case ClassSortName:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		})
	case ClassSortSections:
		counts := make(map[string]int, len(out))
		for _, r := range s.sections {
			counts[r.ClassID]++
		}
		sort.SliceStable(out, func(i, j int) bool {
			return counts[out[i].ID] > counts[out[j].ID]
		})
	case ClassSortRecency:
		// Higher optimistic suffixes were created later; remote ids sort
		// after the sort-order baseline.
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].SortOrder > out[j].SortOrder
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].SortOrder < out[j].SortOrder
		})
	}
	return out
}

func containsString(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

// HandleClassReorderDrop records a drag-reorder as a draft. Nothing is
// persisted or reordered locally until SaveClassReorder commits the batch.
func (s *ClassStore) HandleClassReorderDrop(orderedIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draftClassOrder = append([]string(nil), orderedIDs...)
}

// SaveClassReorder persists the draft order as one batch of per-row
// updates (one PATCH per row). Local sort orders are committed only after
// the whole batch succeeds; any failure leaves the prior order in place and
// surfaces a generic error.
func (s *ClassStore) SaveClassReorder(ctx context.Context) error {
	if err := s.beginSubmit(); err != nil {
		return err
	}
	defer s.endSubmit()

	s.mu.Lock()
	draft := s.draftClassOrder
	s.draftClassOrder = nil
	if len(draft) == 0 {
		s.mu.Unlock()
		return nil
	}
	rows := make([]models.ClassRow, 0, len(draft))
	for i, id := range draft {
		j := s.classIndexLocked(id)
		if j < 0 {
			s.mu.Unlock()
			return ErrClassNotFound
		}
		row := s.classes[j].Clone()
		row.SortOrder = i + 1
		rows = append(rows, row)
	}
	s.mu.Unlock()

	for _, row := range rows {
		if _, err := s.client.UpdateClass(ctx, row.ID, row); err != nil {
			s.mu.Lock()
			s.setErrorLocked(remoteMessage(err, "Could not save the new order. Please try again."))
			s.mu.Unlock()
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		if j := s.classIndexLocked(row.ID); j >= 0 {
			s.classes[j].SortOrder = row.SortOrder
		}
	}
	s.renumberLocked()
	s.setErrorLocked("")
	s.notifyLocked()
	return nil
}

// HandleSectionReorderDrop records a drag-reorder of one class's sections
// as a draft.
func (s *ClassStore) HandleSectionReorderDrop(classID string, orderedIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draftSectionOrder[classID] = append([]string(nil), orderedIDs...)
}

// SaveSectionReorder persists a class's draft section order with the same
// batch semantics as SaveClassReorder.
func (s *ClassStore) SaveSectionReorder(ctx context.Context, classID string) error {
	if err := s.beginSubmit(); err != nil {
		return err
	}
	defer s.endSubmit()

	s.mu.Lock()
	draft := s.draftSectionOrder[classID]
	delete(s.draftSectionOrder, classID)
	if len(draft) == 0 {
		s.mu.Unlock()
		return nil
	}
	rows := make([]models.SectionRow, 0, len(draft))
	for i, id := range draft {
		j := s.sectionIndexLocked(id)
		if j < 0 {
			s.mu.Unlock()
			return ErrSectionNotFound
		}
		row := s.sections[j]
		row.SortOrder = i + 1
		rows = append(rows, row)
	}
	s.mu.Unlock()

	for _, row := range rows {
		if _, err := s.client.UpdateSection(ctx, row.ID, row); err != nil {
			s.mu.Lock()
			s.setErrorLocked(remoteMessage(err, "Could not save the new order. Please try again."))
			s.mu.Unlock()
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		if j := s.sectionIndexLocked(row.ID); j >= 0 {
			s.sections[j].SortOrder = row.SortOrder
		}
	}
	s.renumberLocked()
	s.setErrorLocked("")
	s.notifyLocked()
	return nil
}

// GenerateSectionsPreview expands a pattern into the section names that
// would be created for a class. Names already present in the class are
// skipped case-insensitively; if nothing new would be created the preview
// fails with ErrSectionsAlreadyExist.
func (s *ClassStore) GenerateSectionsPreview(classID string, pattern SectionPattern) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.classIndexLocked(classID) < 0 {
		return nil, ErrClassNotFound
	}

	candidates, err := expandSectionPattern(pattern)
	if err != nil {
		return nil, err
	}

	existing := make(map[string]struct{})
	for _, r := range s.sections {
		if r.ClassID == classID {
			existing[strings.ToLower(r.Name)] = struct{}{}
		}
	}

	var out []string
	for _, name := range candidates {
		if _, dup := existing[strings.ToLower(name)]; dup {
			continue
		}
		out = append(out, name)
	}
	if len(out) == 0 {
		return nil, ErrSectionsAlreadyExist
	}
	return out, nil
}

// expandSectionPattern produces the raw candidate list for a pattern.
func expandSectionPattern(pattern SectionPattern) ([]string, error) {
	switch pattern.Kind {
	case SectionPatternLetters:
		if len(pattern.FromLetter) != 1 || len(pattern.ToLetter) != 1 {
			return nil, fieldErr("range", "Letter range must be single characters.")
		}
		from := strings.ToUpper(pattern.FromLetter)[0]
		to := strings.ToUpper(pattern.ToLetter)[0]
		if from > to {
			return nil, fieldErr("range", "Letter range start must not exceed the end.")
		}
		var out []string
		for ch := from; ch <= to; ch++ {
			out = append(out, string(ch))
		}
		return out, nil
	case SectionPatternNumbers:
		if pattern.FromNumber > pattern.ToNumber {
			return nil, fieldErr("range", "Number range start must not exceed the end.")
		}
		var out []string
		for n := pattern.FromNumber; n <= pattern.ToNumber; n++ {
			out = append(out, strconv.Itoa(n))
		}
		return out, nil
	case SectionPatternCustom:
		var out []string
		for _, token := range strings.Split(pattern.Custom, ",") {
			if trimmed := strings.TrimSpace(token); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) == 0 {
			return nil, fieldErr("custom", "Enter at least one section name.")
		}
		return out, nil
	default:
		return nil, fieldErr("pattern", "Unknown section pattern.")
	}
}

// CreateSections bulk-creates named sections for a class, one awaited
// remote create per name. The first failure stops the batch; sections
// created before it remain.
func (s *ClassStore) CreateSections(ctx context.Context, classID string, names []string) ([]models.SectionRow, error) {
	var created []models.SectionRow
	for _, name := range names {
		row, err := s.SaveSectionForm(ctx, SectionForm{ClassID: classID, Name: name, Status: models.RowStatusActive})
		if err != nil {
			return created, fmt.Errorf("failed to create section %q: %w", name, err)
		}
		created = append(created, row)
	}
	return created, nil
}

func defaultRowStatus(status models.RowStatus) models.RowStatus {
	if status == "" {
		return models.RowStatusActive
	}
	return status
}

// remoteMessage extracts the collaborator's human message, falling back to
// the given text.
func remoteMessage(err error, fallback string) string {
	var remote *api.RemoteError
	if errors.As(err, &remote) {
		return remote.HumanMessage(fallback)
	}
	return fallback
}

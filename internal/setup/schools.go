package setup

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Osmandiyaka/mindbloom-sub000/internal/api"
	"github.com/Osmandiyaka/mindbloom-sub000/internal/models"
)

// SchoolForm is the school create/edit payload, addressed by list index
// because school rows carry no id until their remote create succeeds.
type SchoolForm struct {
	Name     string
	Code     string
	Country  string
	Timezone string
	Status   models.SchoolStatus
	Address  string
}

// SchoolStore owns the tenant's school rows. Edits stay local through the
// Schools step; rows without a remote id are created in one pass by
// CommitPending when the wizard advances past the step.
type SchoolStore struct {
	mu sync.Mutex

	client *api.SchoolsClient

	schools []models.SchoolRow

	onChange func()
	log      zerolog.Logger
}

// NewSchoolStore creates an empty store bound to the school collaborator.
func NewSchoolStore(client *api.SchoolsClient, log zerolog.Logger) *SchoolStore {
	return &SchoolStore{client: client, log: log}
}

// SetOnChange registers the autosave notification hook.
func (s *SchoolStore) SetOnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Seed replaces the store contents from a loaded snapshot.
func (s *SchoolStore) Seed(schools []models.SchoolRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schools = append([]models.SchoolRow(nil), schools...)
}

func (s *SchoolStore) notifyLocked() {
	if s.onChange != nil {
		s.onChange()
	}
}

// Schools returns a copy of the school rows.
func (s *SchoolStore) Schools() []models.SchoolRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.SchoolRow(nil), s.schools...)
}

// AddSchool appends a new local row. No remote call happens here.
func (s *SchoolStore) AddSchool(form SchoolForm) (models.SchoolRow, error) {
	if strings.TrimSpace(form.Name) == "" {
		return models.SchoolRow{}, fieldErr("name", "School name is required.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	row := models.SchoolRow{
		Name:     form.Name,
		Code:     form.Code,
		Country:  form.Country,
		Timezone: form.Timezone,
		Status:   form.Status,
		Address:  form.Address,
	}
	if row.Status == "" {
		row.Status = models.SchoolStatusActive
	}
	s.schools = append(s.schools, row)
	s.notifyLocked()
	return row, nil
}

// UpdateSchool edits the row at an index in place.
func (s *SchoolStore) UpdateSchool(index int, form SchoolForm) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.schools) {
		return fieldErr("school", "School not found.")
	}
	if strings.TrimSpace(form.Name) == "" {
		return fieldErr("name", "School name is required.")
	}
	row := &s.schools[index]
	row.Name = form.Name
	row.Code = form.Code
	row.Country = form.Country
	row.Timezone = form.Timezone
	if form.Status != "" {
		row.Status = form.Status
	}
	row.Address = form.Address
	s.notifyLocked()
	return nil
}

// RemoveSchool drops the row at an index. Rows that already exist remotely
// are only removed from the wizard's working set; school deletion is not a
// setup concern.
func (s *SchoolStore) RemoveSchool(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.schools) {
		return fieldErr("school", "School not found.")
	}
	s.schools = append(s.schools[:index], s.schools[index+1:]...)
	s.notifyLocked()
	return nil
}

// StepComplete reports whether the Schools step may advance: at least one
// row, and every Active row fully filled in.
func (s *SchoolStore) StepComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.schools) == 0 {
		return false
	}
	for _, row := range s.schools {
		if row.Status == models.SchoolStatusActive && !row.Complete() {
			return false
		}
	}
	return true
}

// CommitPending creates every row that does not yet have a remote id,
// filling ids in place as creates succeed. The first failure aborts the
// pass and is returned; rows created before it keep their new ids.
func (s *SchoolStore) CommitPending(ctx context.Context) error {
	s.mu.Lock()
	pending := make([]int, 0, len(s.schools))
	for i, row := range s.schools {
		if row.ID == "" {
			pending = append(pending, i)
		}
	}
	s.mu.Unlock()

	for _, i := range pending {
		s.mu.Lock()
		if i >= len(s.schools) || s.schools[i].ID != "" {
			s.mu.Unlock()
			continue
		}
		req := api.CreateSchoolRequest{Name: s.schools[i].Name, Code: s.schools[i].Code}
		s.mu.Unlock()

		created, err := s.client.Create(ctx, req)
		if err != nil {
			return err
		}

		s.mu.Lock()
		if i < len(s.schools) {
			s.schools[i].ID = created.ID
			if created.Code != "" {
				s.schools[i].Code = created.Code
			}
		}
		s.mu.Unlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifyLocked()
	return nil
}

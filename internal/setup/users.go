package setup

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Osmandiyaka/mindbloom-sub000/internal/api"
	"github.com/Osmandiyaka/mindbloom-sub000/internal/models"
)

// UserForm is the invite/create payload for a workspace user.
type UserForm struct {
	ID           string
	Name         string `validate:"required"`
	Email        string `validate:"required,email"`
	Role         string `validate:"required"`
	SchoolAccess models.SchoolAccess
	Title        string
	Phone        string
}

// UserStore owns the tenant's in-progress user list: invites and direct
// creates against the user collaborator with optimistic ids, plus
// suspend/activate lifecycle calls.
type UserStore struct {
	mu sync.Mutex

	client *api.UsersClient

	users   []models.UserRow
	userSeq int

	submitting bool
	lastError  string

	onChange func()
	log      zerolog.Logger
}

// NewUserStore creates an empty store bound to the user collaborator.
func NewUserStore(client *api.UsersClient, log zerolog.Logger) *UserStore {
	return &UserStore{client: client, log: log}
}

// SetOnChange registers the autosave notification hook.
func (s *UserStore) SetOnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Seed replaces the store contents from a loaded snapshot.
func (s *UserStore) Seed(users []models.UserRow) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = make([]models.UserRow, len(users))
	ids := make([]string, 0, len(users))
	for i, u := range users {
		s.users[i] = u.Clone()
		ids = append(ids, u.ID)
	}
	s.userSeq = maxIDSuffix("user", ids)
}

func (s *UserStore) notifyLocked() {
	if s.onChange != nil {
		s.onChange()
	}
}

func (s *UserStore) indexOfLocked(id string) int {
	for i, u := range s.users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

// Users returns a copy of the user list.
func (s *UserStore) Users() []models.UserRow {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.UserRow, len(s.users))
	for i, u := range s.users {
		out[i] = u.Clone()
	}
	return out
}

// LastError returns the store's error banner text, empty when clear.
func (s *UserStore) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// emailTakenLocked enforces case-insensitive email uniqueness within the
// in-progress list, excluding the row being edited.
func (s *UserStore) emailTakenLocked(email, excludeID string) bool {
	lower := strings.ToLower(email)
	for _, u := range s.users {
		if u.ID != excludeID && strings.ToLower(u.Email) == lower {
			return true
		}
	}
	return false
}

// InviteUser validates the form and sends an invitation, appending an
// optimistic row that is reconciled with the collaborator's response. The
// invited row starts in the Invited status.
func (s *UserStore) InviteUser(ctx context.Context, form UserForm) (models.UserRow, error) {
	return s.saveUser(ctx, form, models.UserStatusInvited)
}

// CreateUser validates the form and creates an already-active account.
func (s *UserStore) CreateUser(ctx context.Context, form UserForm) (models.UserRow, error) {
	return s.saveUser(ctx, form, models.UserStatusActive)
}

func (s *UserStore) saveUser(ctx context.Context, form UserForm, status models.UserStatus) (models.UserRow, error) {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return models.UserRow{}, ErrSubmitting
	}
	s.submitting = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
	}()

	if err := validate.Struct(form); err != nil {
		return models.UserRow{}, fieldErrors(err)
	}

	s.mu.Lock()
	if s.emailTakenLocked(form.Email, form.ID) {
		s.mu.Unlock()
		return models.UserRow{}, fieldErr("email", "A user with this email already exists.")
	}

	if form.ID != "" {
		return s.updateUserLocked(ctx, form)
	}

	s.userSeq++
	row := models.UserRow{
		ID:           "user-" + strconv.Itoa(s.userSeq),
		Name:         form.Name,
		Email:        form.Email,
		Role:         form.Role,
		SchoolAccess: form.SchoolAccess,
		Status:       status,
		Title:        form.Title,
		Phone:        form.Phone,
	}
	s.users = append(s.users, row)
	prevID := row.ID
	s.mu.Unlock()

	var created *models.UserRow
	var err error
	if status == models.UserStatusInvited {
		created, err = s.client.Invite(ctx, row)
	} else {
		created, err = s.client.Create(ctx, row)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOfLocked(prevID)
	if err != nil {
		if i >= 0 {
			s.users = append(s.users[:i], s.users[i+1:]...)
		}
		s.lastError = remoteMessage(err, "Could not save the user. Please try again.")
		return models.UserRow{}, err
	}
	if i >= 0 && created != nil {
		if created.ID != "" {
			s.users[i].ID = created.ID
		}
		if created.Status != "" {
			s.users[i].Status = created.Status
		}
		row = s.users[i]
	}
	s.lastError = ""
	s.notifyLocked()
	return row, nil
}

// updateUserLocked finishes an edit save. The caller holds the mutex on
// entry; it is released around the remote call.
func (s *UserStore) updateUserLocked(ctx context.Context, form UserForm) (models.UserRow, error) {
	i := s.indexOfLocked(form.ID)
	if i < 0 {
		s.mu.Unlock()
		return models.UserRow{}, ErrUserNotFound
	}
	prev := s.users[i].Clone()
	next := prev
	next.Name = form.Name
	next.Email = form.Email
	next.Role = form.Role
	next.SchoolAccess = form.SchoolAccess
	next.Title = form.Title
	next.Phone = form.Phone
	s.users[i] = next
	s.mu.Unlock()

	updated, err := s.client.Update(ctx, form.ID, next)

	s.mu.Lock()
	defer s.mu.Unlock()
	j := s.indexOfLocked(form.ID)
	if err != nil {
		if j >= 0 {
			s.users[j] = prev
		}
		s.lastError = remoteMessage(err, "Could not save the user. Please try again.")
		return models.UserRow{}, err
	}
	if j >= 0 && updated != nil && updated.ID != "" {
		s.users[j].ID = updated.ID
		next = s.users[j]
	}
	s.lastError = ""
	s.notifyLocked()
	return next, nil
}

// SuspendUser blocks a user. The remote call is awaited; the local status
// flips only on success.
func (s *UserStore) SuspendUser(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, models.UserStatusSuspended, s.client.Suspend)
}

// ActivateUser restores a suspended user.
func (s *UserStore) ActivateUser(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, models.UserStatusActive, s.client.Activate)
}

func (s *UserStore) setStatus(ctx context.Context, id string, status models.UserStatus, call func(context.Context, string) error) error {
	s.mu.Lock()
	if s.indexOfLocked(id) < 0 {
		s.mu.Unlock()
		return ErrUserNotFound
	}
	s.mu.Unlock()

	if err := call(ctx, id); err != nil {
		s.mu.Lock()
		s.lastError = remoteMessage(err, "Could not update the user. Please try again.")
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOfLocked(id); i >= 0 {
		s.users[i].Status = status
	}
	s.lastError = ""
	s.notifyLocked()
	return nil
}

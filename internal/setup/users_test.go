package setup

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Osmandiyaka/mindbloom-sub000/internal/api"
	"github.com/Osmandiyaka/mindbloom-sub000/internal/models"
)

// userServer is a scriptable user collaborator.
type userServer struct {
	t *testing.T

	assignID    string
	failInvites bool
	suspends    int
}

func (f *userServer) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && (r.URL.Path == "/users" || r.URL.Path == "/users/invite"):
			if f.failInvites {
				writeError(f.t, w, http.StatusConflict, "Email already registered")
				return
			}
			var row models.UserRow
			_ = decodeBody(r, &row)
			if f.assignID != "" {
				row.ID = f.assignID
			}
			writeData(f.t, w, row)
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/suspend"):
			f.suspends++
			writeData(f.t, w, map[string]bool{"ok": true})
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/activate"):
			writeData(f.t, w, map[string]bool{"ok": true})
		case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/users/"):
			var row models.UserRow
			_ = decodeBody(r, &row)
			writeData(f.t, w, row)
		default:
			writeError(f.t, w, http.StatusNotFound, "no such route")
		}
	})
}

func newUserFixture(t *testing.T, server *userServer) *UserStore {
	t.Helper()
	server.t = t
	client := api.NewUsersClient(testAPIClient(t, server.handler()))
	return NewUserStore(client, zerolog.Nop())
}

func validUserForm() UserForm {
	return UserForm{
		Name:         "Ada Okafor",
		Email:        "ada@example.com",
		Role:         "admin",
		SchoolAccess: models.AllSchools,
	}
}

func TestInviteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("reconciles the optimistic id and keeps Invited status", func(t *testing.T) {
		s := newUserFixture(t, &userServer{assignID: "usr_1a2b"})

		row, err := s.InviteUser(ctx, validUserForm())
		require.NoError(t, err)
		require.Equal(t, "usr_1a2b", row.ID)
		require.Equal(t, models.UserStatusInvited, row.Status)
		require.Len(t, s.Users(), 1)
	})

	t.Run("validation failures block the call", func(t *testing.T) {
		s := newUserFixture(t, &userServer{})

		form := validUserForm()
		form.Email = "not-an-email"
		_, err := s.InviteUser(ctx, form)
		var fe *FieldError
		require.ErrorAs(t, err, &fe)
		require.Equal(t, "email", fe.Field)
		require.Empty(t, s.Users())
	})

	t.Run("duplicate email is rejected case-insensitively", func(t *testing.T) {
		s := newUserFixture(t, &userServer{})
		_, err := s.InviteUser(ctx, validUserForm())
		require.NoError(t, err)

		form := validUserForm()
		form.Email = "ADA@example.com"
		_, err = s.InviteUser(ctx, form)
		var fe *FieldError
		require.ErrorAs(t, err, &fe)
		require.Equal(t, "A user with this email already exists.", fe.Message)
		require.Len(t, s.Users(), 1)
	})

	t.Run("a remote failure removes the optimistic row", func(t *testing.T) {
		s := newUserFixture(t, &userServer{failInvites: true})

		_, err := s.InviteUser(ctx, validUserForm())
		require.Error(t, err)
		require.Empty(t, s.Users())
		require.Equal(t, "Email already registered", s.LastError())
	})
}

func TestCreateUser(t *testing.T) {
	s := newUserFixture(t, &userServer{})

	row, err := s.CreateUser(context.Background(), validUserForm())
	require.NoError(t, err)
	require.Equal(t, models.UserStatusActive, row.Status)
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	s := newUserFixture(t, &userServer{})

	created, err := s.InviteUser(ctx, validUserForm())
	require.NoError(t, err)

	form := validUserForm()
	form.ID = created.ID
	form.Name = "Ada N. Okafor"
	updated, err := s.InviteUser(ctx, form)
	require.NoError(t, err)
	require.Equal(t, "Ada N. Okafor", updated.Name)
	require.Len(t, s.Users(), 1)
}

func TestSuspendActivate(t *testing.T) {
	ctx := context.Background()
	server := &userServer{}
	s := newUserFixture(t, server)

	created, err := s.InviteUser(ctx, validUserForm())
	require.NoError(t, err)

	require.NoError(t, s.SuspendUser(ctx, created.ID))
	require.Equal(t, models.UserStatusSuspended, s.Users()[0].Status)
	require.Equal(t, 1, server.suspends)

	require.NoError(t, s.ActivateUser(ctx, created.ID))
	require.Equal(t, models.UserStatusActive, s.Users()[0].Status)

	require.ErrorIs(t, s.SuspendUser(ctx, "user-404"), ErrUserNotFound)
}

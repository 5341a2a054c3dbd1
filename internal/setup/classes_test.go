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

// classServer is a scriptable class/section collaborator.
type classServer struct {
	t *testing.T

	createClassID string // id assigned to created classes
	failPatches   int    // fail the nth and later PATCHes (1-based, 0 = never)
	failMessage   string

	patches int
	creates int
}

func (f *classServer) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/classes":
			f.creates++
			var row models.ClassRow
			require.NoError(f.t, decodeBody(r, &row))
			if f.createClassID != "" {
				row.ID = f.createClassID
			}
			writeData(f.t, w, row)
		case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/classes/"):
			f.patches++
			if f.failPatches > 0 && f.patches >= f.failPatches {
				writeError(f.t, w, http.StatusBadRequest, f.failMessage)
				return
			}
			var row models.ClassRow
			require.NoError(f.t, decodeBody(r, &row))
			writeData(f.t, w, row)
		case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/classes/"):
			writeData(f.t, w, map[string]bool{"deleted": true})
		case r.Method == http.MethodPost && r.URL.Path == "/sections":
			var row models.SectionRow
			require.NoError(f.t, decodeBody(r, &row))
			writeData(f.t, w, row)
		case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/sections/"):
			f.patches++
			if f.failPatches > 0 && f.patches >= f.failPatches {
				writeError(f.t, w, http.StatusBadRequest, f.failMessage)
				return
			}
			var row models.SectionRow
			require.NoError(f.t, decodeBody(r, &row))
			writeData(f.t, w, row)
		case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/sections/"):
			writeData(f.t, w, map[string]bool{"deleted": true})
		default:
			writeError(f.t, w, http.StatusNotFound, "no such route")
		}
	})
}

func newClassFixture(t *testing.T, server *classServer) *ClassStore {
	t.Helper()
	server.t = t
	client := api.NewClassesClient(testAPIClient(t, server.handler()))
	return NewClassStore(client, zerolog.Nop())
}

var oneSchool = []models.SchoolRow{{ID: "sch-1", Name: "Hillside", Status: models.SchoolStatusActive}}

func TestSaveClassFormValidation(t *testing.T) {
	ctx := context.Background()
	s := newClassFixture(t, &classServer{})

	t.Run("name is required", func(t *testing.T) {
		_, err := s.SaveClassForm(ctx, ClassForm{Code: "g7"}, oneSchool)
		var fe *FieldError
		require.ErrorAs(t, err, &fe)
		require.Equal(t, "Class name is required.", fe.Message)
	})

	t.Run("code must be alphanumeric with hyphens", func(t *testing.T) {
		_, err := s.SaveClassForm(ctx, ClassForm{Name: "Grade 7", Code: "math-7!"}, oneSchool)
		var fe *FieldError
		require.ErrorAs(t, err, &fe)
		require.Equal(t, "Class code must be alphanumeric and can include hyphens.", fe.Message)
		require.Empty(t, s.Classes(), "nothing should be created on validation failure")
	})

	t.Run("sole tenant school is selected implicitly", func(t *testing.T) {
		row, err := s.SaveClassForm(ctx, ClassForm{Name: "Grade 7", Code: "math-7"}, oneSchool)
		require.NoError(t, err)
		require.Equal(t, []string{"sch-1"}, row.SchoolIDs)
	})

	t.Run("multiple schools require an explicit selection", func(t *testing.T) {
		two := []models.SchoolRow{{ID: "sch-1"}, {ID: "sch-2"}}
		_, err := s.SaveClassForm(ctx, ClassForm{Name: "Grade 8"}, two)
		var fe *FieldError
		require.ErrorAs(t, err, &fe)
		require.Equal(t, "Select at least one school.", fe.Message)
	})
}

func TestCreateClassReconcilesRemoteID(t *testing.T) {
	ctx := context.Background()
	s := newClassFixture(t, &classServer{createClassID: "cls_9f2"})

	row, err := s.SaveClassForm(ctx, ClassForm{Name: "Grade 7"}, oneSchool)
	require.NoError(t, err)
	require.Equal(t, "cls_9f2", row.ID)

	classes := s.Classes()
	require.Len(t, classes, 1)
	require.Equal(t, "cls_9f2", classes[0].ID)
	require.Equal(t, 1, classes[0].SortOrder)
}

func TestCreateClassRemoteFailure(t *testing.T) {
	ctx := context.Background()
	s := newClassFixtureFailing(t, &classServerFailCreate{message: "Name already in use"})

	_, err := s.SaveClassForm(ctx, ClassForm{Name: "Grade 7"}, oneSchool)
	require.Error(t, err)
	require.Empty(t, s.Classes(), "optimistic row must be removed on failure")
	require.Equal(t, "Name already in use", s.LastError())
}

// classServerFailCreate rejects every create with one message.
type classServerFailCreate struct {
	t       *testing.T
	message string
}

func (f *classServerFailCreate) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(f.t, w, http.StatusConflict, f.message)
	})
}

func newClassFixtureFailing(t *testing.T, f *classServerFailCreate) *ClassStore {
	t.Helper()
	f.t = t
	client := api.NewClassesClient(testAPIClient(t, f.handler()))
	return NewClassStore(client, zerolog.Nop())
}

func TestDeleteClassCascade(t *testing.T) {
	ctx := context.Background()
	s := newClassFixture(t, &classServer{})
	s.Seed([]models.ClassRow{
		{ID: "class-1", Name: "Grade 1", SortOrder: 1, Status: models.RowStatusActive},
		{ID: "class-2", Name: "Grade 2", SortOrder: 2, Status: models.RowStatusActive},
	}, []models.SectionRow{
		{ID: "section-1", ClassID: "class-1", Name: "A", SortOrder: 1, Status: models.RowStatusActive},
		{ID: "section-2", ClassID: "class-1", Name: "B", SortOrder: 2, Status: models.RowStatusActive},
		{ID: "section-3", ClassID: "class-2", Name: "A", SortOrder: 1, Status: models.RowStatusActive},
	})

	require.NoError(t, s.DeleteClass(ctx, "class-1"))

	classes := s.Classes()
	require.Len(t, classes, 1)
	require.Equal(t, "class-2", classes[0].ID)
	require.Equal(t, 1, classes[0].SortOrder, "orders renumber densely after delete")

	sections := s.Sections()
	require.Len(t, sections, 1)
	require.Equal(t, "section-3", sections[0].ID)
	require.Equal(t, 1, sections[0].SortOrder)
}

func TestReferentialIntegrityAfterAnyLoad(t *testing.T) {
	s := newClassFixture(t, &classServer{})
	s.Seed([]models.ClassRow{
		{ID: "class-1", Name: "Grade 1", SortOrder: 5},
		{ID: "class-2", Name: "Grade 2", SortOrder: 9},
	}, []models.SectionRow{
		{ID: "section-1", ClassID: "class-1", Name: "A", SortOrder: 7},
		{ID: "section-2", ClassID: "class-2", Name: "A", SortOrder: 3},
	})

	classIDs := make(map[string]bool)
	for i, c := range s.Classes() {
		classIDs[c.ID] = true
		require.Equal(t, i+1, c.SortOrder)
	}
	for _, sec := range s.Sections() {
		require.True(t, classIDs[sec.ClassID], "section %s references missing class", sec.ID)
		require.Equal(t, 1, sec.SortOrder)
	}
}

func TestClassReorder(t *testing.T) {
	ctx := context.Background()

	seed := func(s *ClassStore) {
		s.Seed([]models.ClassRow{
			{ID: "class-1", Name: "A", SortOrder: 1},
			{ID: "class-2", Name: "B", SortOrder: 2},
			{ID: "class-3", Name: "C", SortOrder: 3},
		}, nil)
	}

	t.Run("commit happens only after every row persists", func(t *testing.T) {
		server := &classServer{}
		s := newClassFixture(t, server)
		seed(s)

		s.HandleClassReorderDrop([]string{"class-3", "class-1", "class-2"})
		require.NoError(t, s.SaveClassReorder(ctx))
		require.Equal(t, 3, server.patches, "one PATCH per row")

		got := s.Classes()
		require.Equal(t, []string{"class-3", "class-1", "class-2"}, []string{got[0].ID, got[1].ID, got[2].ID})
		require.Equal(t, []int{1, 2, 3}, []int{got[0].SortOrder, got[1].SortOrder, got[2].SortOrder})
	})

	t.Run("a mid-batch failure leaves the prior order in place", func(t *testing.T) {
		server := &classServer{failPatches: 2, failMessage: "validation failed"}
		s := newClassFixture(t, server)
		seed(s)

		s.HandleClassReorderDrop([]string{"class-3", "class-1", "class-2"})
		err := s.SaveClassReorder(ctx)
		require.Error(t, err)

		got := s.Classes()
		require.Equal(t, []string{"class-1", "class-2", "class-3"}, []string{got[0].ID, got[1].ID, got[2].ID})
		require.NotEmpty(t, s.LastError())
	})

	t.Run("saving with no draft is a no-op", func(t *testing.T) {
		server := &classServer{}
		s := newClassFixture(t, server)
		seed(s)

		require.NoError(t, s.SaveClassReorder(ctx))
		require.Zero(t, server.patches)
	})
}

func TestSectionReorder(t *testing.T) {
	ctx := context.Background()
	server := &classServer{}
	s := newClassFixture(t, server)
	s.Seed([]models.ClassRow{{ID: "class-1", Name: "Grade 1", SortOrder: 1}}, []models.SectionRow{
		{ID: "section-1", ClassID: "class-1", Name: "A", SortOrder: 1},
		{ID: "section-2", ClassID: "class-1", Name: "B", SortOrder: 2},
	})

	s.HandleSectionReorderDrop("class-1", []string{"section-2", "section-1"})
	require.NoError(t, s.SaveSectionReorder(ctx, "class-1"))

	got := s.SectionsOf("class-1")
	require.Equal(t, "section-2", got[0].ID)
	require.Equal(t, 1, got[0].SortOrder)
	require.Equal(t, "section-1", got[1].ID)
	require.Equal(t, 2, got[1].SortOrder)
}

func TestGenerateSectionsPreview(t *testing.T) {
	s := newClassFixture(t, &classServer{})
	s.Seed([]models.ClassRow{{ID: "class-1", Name: "Grade 1", SortOrder: 1}}, []models.SectionRow{
		{ID: "section-1", ClassID: "class-1", Name: "a", SortOrder: 1},
	})

	t.Run("skips existing names case-insensitively", func(t *testing.T) {
		names, err := s.GenerateSectionsPreview("class-1", SectionPattern{
			Kind: SectionPatternLetters, FromLetter: "A", ToLetter: "C",
		})
		require.NoError(t, err)
		require.Equal(t, []string{"B", "C"}, names)
	})

	t.Run("fails when every candidate already exists", func(t *testing.T) {
		_, err := s.GenerateSectionsPreview("class-1", SectionPattern{
			Kind: SectionPatternLetters, FromLetter: "A", ToLetter: "A",
		})
		require.ErrorIs(t, err, ErrSectionsAlreadyExist)
	})

	t.Run("number and custom patterns expand", func(t *testing.T) {
		names, err := s.GenerateSectionsPreview("class-1", SectionPattern{
			Kind: SectionPatternNumbers, FromNumber: 1, ToNumber: 3,
		})
		require.NoError(t, err)
		require.Equal(t, []string{"1", "2", "3"}, names)

		names, err = s.GenerateSectionsPreview("class-1", SectionPattern{
			Kind: SectionPatternCustom, Custom: "Red, Blue, ,Green",
		})
		require.NoError(t, err)
		require.Equal(t, []string{"Red", "Blue", "Green"}, names)
	})
}

func TestCreateSectionsBulk(t *testing.T) {
	ctx := context.Background()
	s := newClassFixture(t, &classServer{})
	s.Seed([]models.ClassRow{{ID: "class-1", Name: "Grade 1", SortOrder: 1}}, nil)

	created, err := s.CreateSections(ctx, "class-1", []string{"A", "B", "C"})
	require.NoError(t, err)
	require.Len(t, created, 3)

	got := s.SectionsOf("class-1")
	require.Len(t, got, 3)
	for i, sec := range got {
		require.Equal(t, i+1, sec.SortOrder)
		require.Equal(t, "class-1", sec.ClassID)
	}
}

func TestSearchClasses(t *testing.T) {
	s := newClassFixture(t, &classServer{})
	s.Seed([]models.ClassRow{
		{ID: "class-1", Name: "Math 7", Code: "m7", SortOrder: 1, SchoolIDs: []string{"sch-1"}},
		{ID: "class-2", Name: "Art", Code: "art", SortOrder: 2, SchoolIDs: []string{"sch-2"}},
		{ID: "class-3", Name: "math 8", Code: "m8", SortOrder: 3, SchoolIDs: []string{"sch-1"}},
	}, []models.SectionRow{
		{ID: "section-1", ClassID: "class-2", Name: "A", SortOrder: 1},
	})

	t.Run("case-insensitive substring match on name and code", func(t *testing.T) {
		got := s.SearchClasses("MATH", "", "")
		require.Len(t, got, 2)

		got = s.SearchClasses("m8", "", "")
		require.Len(t, got, 1)
		require.Equal(t, "class-3", got[0].ID)
	})

	t.Run("school filter", func(t *testing.T) {
		got := s.SearchClasses("", "sch-2", "")
		require.Len(t, got, 1)
		require.Equal(t, "class-2", got[0].ID)
	})

	t.Run("sort by name", func(t *testing.T) {
		got := s.SearchClasses("", "", ClassSortName)
		require.Equal(t, "Art", got[0].Name)
	})

	t.Run("sort by section count", func(t *testing.T) {
		got := s.SearchClasses("", "", ClassSortSections)
		require.Equal(t, "class-2", got[0].ID)
	})
}

package setup

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Osmandiyaka/mindbloom-sub000/internal/api"
	"github.com/Osmandiyaka/mindbloom-sub000/internal/models"
)

// wizardServer serves every collaborator the wizard drives, assigning
// sequential server-side ids on create.
type wizardServer struct {
	t *testing.T

	mu          sync.Mutex
	seq         int
	schoolFails bool
}

func (f *wizardServer) nextID(prefix string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	return prefix + "-" + strconv.Itoa(f.seq)
}

func (f *wizardServer) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/schools":
			f.mu.Lock()
			fails := f.schoolFails
			f.mu.Unlock()
			if fails {
				writeError(f.t, w, http.StatusBadRequest, "School rejected")
				return
			}
			var req api.CreateSchoolRequest
			_ = decodeBody(r, &req)
			writeData(f.t, w, models.SchoolRow{ID: f.nextID("sch"), Name: req.Name, Code: req.Code})
		case r.Method == http.MethodPost && r.URL.Path == "/academic-levels":
			var row models.AcademicLevel
			_ = decodeBody(r, &row)
			row.ID = f.nextID("lvl")
			writeData(f.t, w, row)
		case r.Method == http.MethodPost && r.URL.Path == "/classes":
			var row models.ClassRow
			_ = decodeBody(r, &row)
			writeData(f.t, w, row)
		case r.Method == http.MethodPost && r.URL.Path == "/sections":
			var row models.SectionRow
			_ = decodeBody(r, &row)
			writeData(f.t, w, row)
		case r.Method == http.MethodPost && r.URL.Path == "/users/invite":
			var row models.UserRow
			_ = decodeBody(r, &row)
			writeData(f.t, w, row)
		default:
			writeError(f.t, w, http.StatusNotFound, "no such route")
		}
	})
}

func newWizardFixture(t *testing.T, server *wizardServer, remote *fakeRemote) *Wizard {
	t.Helper()
	server.t = t
	base := testAPIClient(t, server.handler())
	w := New(Config{
		TenantID: "tenant-1",
		Progress: newTestProgress(remote),
		Clients: Clients{
			Schools: api.NewSchoolsClient(base),
			Classes: api.NewClassesClient(base),
			Levels:  api.NewLevelsClient(base),
			Users:   api.NewUsersClient(base),
		},
		AutosaveSettle: 10 * time.Millisecond,
		Logger:         zerolog.Nop(),
	})
	t.Cleanup(w.Close)
	return w
}

func TestWizardFirstRun(t *testing.T) {
	ctx := context.Background()
	w := newWizardFixture(t, &wizardServer{}, &fakeRemote{})

	require.NoError(t, w.Init(ctx))
	require.Equal(t, models.WizardNotStarted, w.Status())
	require.Equal(t, StepWelcome, w.Step())

	require.NoError(t, w.Next(ctx))
	require.Equal(t, StepSchools, w.Step())
	require.Equal(t, models.WizardInProgress, w.Status())
}

func TestWizardStepGating(t *testing.T) {
	ctx := context.Background()
	w := newWizardFixture(t, &wizardServer{}, &fakeRemote{})
	require.NoError(t, w.Init(ctx))
	require.NoError(t, w.Next(ctx)) // to Schools

	t.Run("an incomplete step blocks and records the attempt", func(t *testing.T) {
		err := w.Next(ctx)
		require.ErrorIs(t, err, ErrStepIncomplete)
		require.Equal(t, StepSchools, w.Step())
		require.True(t, w.AttemptedContinue())
	})

	t.Run("completing the step clears the attempt and advances", func(t *testing.T) {
		_, err := w.Schools.AddSchool(completeSchool("Hillside"))
		require.NoError(t, err)

		require.NoError(t, w.Next(ctx))
		require.Equal(t, StepOrgUnits, w.Step())
		require.False(t, w.AttemptedContinue())

		// The commit hook created the school remotely.
		require.NotEmpty(t, w.Schools.Schools()[0].ID)
	})
}

func TestWizardCommitFailureBlocksAdvance(t *testing.T) {
	ctx := context.Background()
	server := &wizardServer{schoolFails: true}
	w := newWizardFixture(t, server, &fakeRemote{})
	require.NoError(t, w.Init(ctx))
	require.NoError(t, w.Next(ctx))

	_, err := w.Schools.AddSchool(completeSchool("Hillside"))
	require.NoError(t, err)

	require.Error(t, w.Next(ctx))
	require.Equal(t, StepSchools, w.Step(), "a failed commit leaves the step unchanged")
	require.Equal(t, "School rejected", w.LastError())

	// Recovery: the collaborator accepts and the wizard moves on.
	server.mu.Lock()
	server.schoolFails = false
	server.mu.Unlock()
	require.NoError(t, w.Next(ctx))
	require.Equal(t, StepOrgUnits, w.Step())
	require.Empty(t, w.LastError())
}

func walkToLevels(t *testing.T, ctx context.Context, w *Wizard) {
	t.Helper()
	require.NoError(t, w.Next(ctx)) // Welcome -> Schools
	_, err := w.Schools.AddSchool(completeSchool("Hillside"))
	require.NoError(t, err)
	require.NoError(t, w.Next(ctx)) // Schools -> OrgUnits
	require.NoError(t, w.Next(ctx)) // OrgUnits -> Levels
}

func TestWizardFullWalk(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemote{}
	w := newWizardFixture(t, &wizardServer{}, remote)
	require.NoError(t, w.Init(ctx))
	walkToLevels(t, ctx, w)

	require.ErrorIs(t, w.Next(ctx), ErrStepIncomplete, "levels gate needs at least one level")
	_, err := w.Levels.AddLevel(ctx, "Primary", "PR", "")
	require.NoError(t, err)
	require.NoError(t, w.Next(ctx)) // Levels -> Classes

	require.ErrorIs(t, w.Next(ctx), ErrStepIncomplete, "classes gate needs a class and a section")
	class, err := w.Classes.SaveClassForm(ctx, ClassForm{Name: "Grade 1"}, w.Schools.Schools())
	require.NoError(t, err)
	require.ErrorIs(t, w.Next(ctx), ErrStepIncomplete)
	_, err = w.Classes.SaveSectionForm(ctx, SectionForm{ClassID: class.ID, Name: "A"})
	require.NoError(t, err)
	require.NoError(t, w.Next(ctx)) // Classes -> GradeScales

	require.NoError(t, w.Next(ctx)) // GradeScales -> Users
	require.NoError(t, w.Next(ctx)) // Users -> Review
	require.Equal(t, StepReview, w.Step())

	require.NoError(t, w.Finish(ctx))
	require.Equal(t, models.WizardCompleted, w.Status())
	require.Equal(t, StepDone, w.Step())

	stored := remote.stored()
	require.NotNil(t, stored)
	require.Equal(t, models.WizardCompleted, stored.Status)
	require.NotNil(t, stored.CompletedAt)
	require.Len(t, stored.Data.Classes, 1)
	require.Len(t, stored.Data.Sections, 1)

	// Terminal wizards no longer advance.
	require.NoError(t, w.Next(ctx))
	require.Equal(t, StepDone, w.Step())
}

func TestWizardBackAndGoTo(t *testing.T) {
	ctx := context.Background()
	w := newWizardFixture(t, &wizardServer{}, &fakeRemote{})
	require.NoError(t, w.Init(ctx))
	walkToLevels(t, ctx, w)

	w.Back()
	require.Equal(t, StepOrgUnits, w.Step())

	require.NoError(t, w.GoToStep(ctx, StepWelcome))
	require.Equal(t, StepWelcome, w.Step())

	// Forward jumps re-run every gate on the way.
	require.NoError(t, w.GoToStep(ctx, StepOrgUnits))
	require.Equal(t, StepOrgUnits, w.Step())

	err := w.GoToStep(ctx, StepClasses)
	require.ErrorIs(t, err, ErrStepIncomplete, "cannot jump past the levels gate")
	require.Equal(t, StepLevels, w.Step())

	// Back at the welcome screen Back is a no-op.
	require.NoError(t, w.GoToStep(ctx, StepWelcome))
	w.Back()
	require.Equal(t, StepWelcome, w.Step())
}

func TestWizardSkip(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemote{}
	w := newWizardFixture(t, &wizardServer{}, remote)
	require.NoError(t, w.Init(ctx))
	require.NoError(t, w.Next(ctx))

	require.NoError(t, w.Skip(ctx))
	require.Equal(t, models.WizardSkipped, w.Status())

	stored := remote.stored()
	require.Equal(t, models.WizardSkipped, stored.Status)
	require.NotNil(t, stored.SkippedAt)

	// A skipped snapshot remains loadable.
	w2 := newWizardFixture(t, &wizardServer{}, remote)
	require.NoError(t, w2.Init(ctx))
	require.Equal(t, models.WizardSkipped, w2.Status())
	step := w2.Step()
	require.NoError(t, w2.Next(ctx))
	require.Equal(t, step, w2.Step(), "terminal wizard does not move")
}

func TestWizardResume(t *testing.T) {
	ctx := context.Background()
	started := time.Now().UTC().Add(-time.Hour)
	remote := &fakeRemote{snapshot: &models.WizardSnapshot{
		Status:    models.WizardInProgress,
		Step:      int(StepClasses),
		StartedAt: &started,
		UpdatedAt: time.Now().UTC(),
		Data: models.WizardData{
			Schools: []models.SchoolRow{{ID: "sch-1", Name: "Hillside", Code: "hs", Country: "KE", Timezone: "Africa/Nairobi", Status: models.SchoolStatusActive}},
			Levels:  []models.AcademicLevel{{ID: "lvl-1", Name: "Primary", SortOrder: 1}},
			Classes: []models.ClassRow{{ID: "class-4", Name: "Grade 1", SortOrder: 1, Status: models.RowStatusActive}},
			Sections: []models.SectionRow{
				{ID: "section-2", ClassID: "class-4", Name: "A", SortOrder: 1},
			},
		},
	}}

	w := newWizardFixture(t, &wizardServer{}, remote)
	require.NoError(t, w.Init(ctx))

	require.Equal(t, StepClasses, w.Step())
	require.Equal(t, models.WizardInProgress, w.Status())
	require.Len(t, w.Classes.Classes(), 1)

	// Optimistic counters continue past loaded suffixes.
	class, err := w.Classes.SaveClassForm(ctx, ClassForm{Name: "Grade 2"}, w.Schools.Schools())
	require.NoError(t, err)
	require.Equal(t, "class-5", class.ID)
}

func TestWizardLegacyMigrationOnLoad(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemote{snapshot: &models.WizardSnapshot{
		Status:    models.WizardInProgress,
		UpdatedAt: time.Now().UTC(),
		Data: models.WizardData{
			Classes: []models.ClassRow{{Name: "Grade 1", LegacyLevel: "Primary", LegacySections: "A, B, B"}},
		},
	}}

	w := newWizardFixture(t, &wizardServer{}, remote)
	require.NoError(t, w.Init(ctx))

	require.Len(t, w.Classes.Classes(), 1)
	sections := w.Classes.Sections()
	require.Len(t, sections, 3)
	for _, sec := range sections {
		require.Equal(t, "class-1", sec.ClassID)
	}
}

func TestWizardAutosaveOnTrackedChange(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemote{}
	w := newWizardFixture(t, &wizardServer{}, remote)
	require.NoError(t, w.Init(ctx))

	_, err := w.OrgUnits.CreateUnit("Science", models.OrgUnitDepartment, "", "")
	require.NoError(t, err)

	waitFor(t, func() bool {
		stored := remote.stored()
		return stored != nil && len(stored.Data.OrgUnits) == 1
	})
}

func TestWizardReset(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemote{}
	w := newWizardFixture(t, &wizardServer{}, remote)
	require.NoError(t, w.Init(ctx))
	walkToLevels(t, ctx, w)

	require.NoError(t, w.Reset(ctx))
	require.Equal(t, models.WizardNotStarted, w.Status())
	require.Equal(t, StepWelcome, w.Step())
	require.Empty(t, w.Schools.Schools())
	require.Nil(t, remote.stored())
}

package storage

import (
	"testing"
	"time"

	"github.com/ebarcelosf/active-learn-hub-backup/internal/auth"
	"github.com/ebarcelosf/active-learn-hub-backup/internal/models"
	"github.com/ebarcelosf/active-learn-hub-backup/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type remoteFixture struct {
	db     *gorm.DB
	auth   *auth.Service
	store  *RemoteStore
	userID string
}

// newRemoteFixture signs up and logs in a user so scoped calls have a
// session to work against.
func newRemoteFixture(t *testing.T, email string) *remoteFixture {
	t.Helper()

	db := testutil.NewTestDB(t)
	authSvc := auth.NewService(db, testutil.NewTestConfig())
	sessions := auth.NewSessionContext(authSvc, nil)
	store := NewRemote(db, authSvc, sessions)

	user, err := store.Signup("Ana", email, "password123", "Aluno")
	require.NoError(t, err)
	_, err = store.Login(email, "password123")
	require.NoError(t, err)

	return &remoteFixture{db: db, auth: authSvc, store: store, userID: user.ID}
}

func TestRemoteSignupLogin_MergesProfile(t *testing.T) {
	f := newRemoteFixture(t, "ana@example.com")

	user, err := f.store.Login("ana@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, f.userID, user.ID)
	assert.Equal(t, "Ana", user.Name)
	assert.Equal(t, "Aluno", user.Role)

	current, err := f.store.CurrentUser()
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "ana@example.com", current.Email)
}

func TestRemoteSignup_DuplicateEmail(t *testing.T) {
	f := newRemoteFixture(t, "ana@example.com")

	_, err := f.store.Signup("Other", "ana@example.com", "password456", "")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRemoteLogin_BadCredentials(t *testing.T) {
	f := newRemoteFixture(t, "ana@example.com")

	_, err := f.store.Login("ana@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRemoteLogout_InvalidatesSession(t *testing.T) {
	f := newRemoteFixture(t, "ana@example.com")

	require.NoError(t, f.store.Logout())

	user, err := f.store.CurrentUser()
	require.NoError(t, err)
	assert.Nil(t, user)

	_, err = f.store.SaveProject(&Project{Name: "Horta"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestRemoteSaveProject_CreateAssignsUUIDAndDefaults(t *testing.T) {
	f := newRemoteFixture(t, "ana@example.com")

	saved, err := f.store.SaveProject(&Project{
		Name:   "Horta",
		Phases: map[string]any{"empatizar": map[string]any{"done": true}},
		Tags:   []string{"meio-ambiente"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "active", saved.Status)
	assert.Equal(t, []string{"meio-ambiente"}, saved.Tags)
}

func TestRemoteSaveProject_UpdateUnknownID(t *testing.T) {
	f := newRemoteFixture(t, "ana@example.com")

	_, err := f.store.SaveProject(&Project{ID: "proj_123", Name: "Local ID"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.store.SaveProject(&Project{ID: "2f9b3a60-0000-0000-0000-000000000000", Name: "Ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoteProjects_OrderedByUpdatedAtDesc(t *testing.T) {
	f := newRemoteFixture(t, "ana@example.com")

	first, err := f.store.SaveProject(&Project{Name: "Primeiro"})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = f.store.SaveProject(&Project{Name: "Segundo"})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	// Touching the first project moves it back to the front.
	first.Progress = 10
	_, err = f.store.SaveProject(first)
	require.NoError(t, err)

	projects, err := f.store.Projects()
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "Primeiro", projects[0].Name)
}

func TestRemoteOwnership_OtherOwnersRowsAreInvisible(t *testing.T) {
	f := newRemoteFixture(t, "ana@example.com")

	saved, err := f.store.SaveProject(&Project{Name: "Horta"})
	require.NoError(t, err)

	// Move the row to a different owner to simulate another user's data.
	other, err := f.auth.SignUp("bia@example.com", "password123")
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&models.Project{}).
		Where("id = ?", saved.ID).
		Update("user_id", other.ID).Error)

	// Update on a row we no longer own reports not-found.
	saved.Name = "Roubada"
	_, err = f.store.SaveProject(saved)
	assert.ErrorIs(t, err, ErrNotFound)

	// Delete is silently a no-op and the row survives.
	require.NoError(t, f.store.DeleteProject(saved.ID))
	var count int64
	require.NoError(t, f.db.Model(&models.Project{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// And listing shows nothing.
	projects, err := f.store.Projects()
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestRemoteDeleteProject_NonUUIDIsIgnored(t *testing.T) {
	f := newRemoteFixture(t, "ana@example.com")

	assert.NoError(t, f.store.DeleteProject("proj_1700000000000"))
}

func TestRemoteSaveActivity_Lifecycle(t *testing.T) {
	f := newRemoteFixture(t, "ana@example.com")

	project, err := f.store.SaveProject(&Project{Name: "Horta"})
	require.NoError(t, err)

	saved, err := f.store.SaveActivity(&Activity{
		ProjectID:   project.ID,
		Phase:       "empatizar",
		ActivityKey: "entrevistas",
		Title:       "Entrevistas",
		Completed:   true,
	})
	require.NoError(t, err)
	assert.NotNil(t, saved.CompletedAt)

	saved.Completed = false
	updated, err := f.store.SaveActivity(saved)
	require.NoError(t, err)
	assert.Nil(t, updated.CompletedAt)

	activities, err := f.store.Activities(project.ID)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, "entrevistas", activities[0].ActivityKey)
}

func TestRemoteSaveBadge_DuplicateKeepsOneRowButDoublesXP(t *testing.T) {
	f := newRemoteFixture(t, "ana@example.com")

	badge := Badge{ID: "first-project", Title: "Primeiro Projeto", XP: 10}
	_, err := f.store.SaveBadge(&badge)
	require.NoError(t, err)
	dup := badge
	_, err = f.store.SaveBadge(&dup)
	require.NoError(t, err)

	badges, err := f.store.Badges()
	require.NoError(t, err)
	assert.Len(t, badges, 1)

	// The XP update fires on the deduplicated insert as well.
	var profile models.Profile
	require.NoError(t, f.db.First(&profile, "email = ?", "ana@example.com").Error)
	assert.Equal(t, 20, profile.XPTotal)
}

func TestRemoteUpdateUserXP_RecomputesLevel(t *testing.T) {
	f := newRemoteFixture(t, "ana@example.com")

	require.NoError(t, f.store.UpdateUserXP(95))
	require.NoError(t, f.store.UpdateUserXP(10))

	var profile models.Profile
	require.NoError(t, f.db.First(&profile, "email = ?", "ana@example.com").Error)
	assert.Equal(t, 105, profile.XPTotal)
	assert.Equal(t, 2, profile.Level)
}

func TestRemoteSettings_UpsertRoundtrip(t *testing.T) {
	f := newRemoteFixture(t, "ana@example.com")

	in := DefaultSettings()
	in.Theme = "light"
	in.FontSize = "large"
	in.Notifications.Push = true
	require.NoError(t, f.store.SaveSettings(in))

	// Second save replaces, never duplicates.
	in.Theme = "dark"
	require.NoError(t, f.store.SaveSettings(in))

	out, err := f.store.Settings()
	require.NoError(t, err)
	assert.Equal(t, "dark", out.Theme)
	assert.Equal(t, "large", out.FontSize)
	assert.True(t, out.Notifications.Push)

	var count int64
	require.NoError(t, f.db.Model(&models.UserSettings{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRemoteSettings_DefaultsWithoutRow(t *testing.T) {
	f := newRemoteFixture(t, "ana@example.com")

	out, err := f.store.Settings()
	require.NoError(t, err)
	assert.Equal(t, "dark", out.Theme)
	assert.Equal(t, "pt-BR", out.Language)
}

func TestRemoteLogAction_WritesAuditRow(t *testing.T) {
	f := newRemoteFixture(t, "ana@example.com")

	f.store.LogAction("project_saved", "project", "abc", map[string]any{
		"user_agent": "test-agent",
		"source":     "unit",
	})

	var entry models.ActivityLog
	require.NoError(t, f.db.First(&entry, "action = ?", "project_saved").Error)
	assert.Equal(t, "test-agent", entry.UserAgent)
	assert.Equal(t, "project", entry.EntityType)
}

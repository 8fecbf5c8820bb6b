package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/ebarcelosf/active-learn-hub-backup/internal/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocal(t *testing.T) *LocalStore {
	t.Helper()
	return NewLocal(kv.NewMemoryStore())
}

func signedUpLocal(t *testing.T) *LocalStore {
	t.Helper()
	l := newLocal(t)
	_, err := l.Signup("Ana", "ana@example.com", "password123", "")
	require.NoError(t, err)
	return l
}

func TestLocalSignup_DefaultsRoleAndSignsIn(t *testing.T) {
	l := newLocal(t)

	user, err := l.Signup("Ana", "  Ana@Example.COM ", "password123", "")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, "Aluno", user.Role)

	current, err := l.CurrentUser()
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "ana@example.com", current.Email)
}

func TestLocalSignup_ConflictIsCaseInsensitive(t *testing.T) {
	l := signedUpLocal(t)

	_, err := l.Signup("Other", "ANA@example.com ", "password456", "Professor")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestLocalLogin(t *testing.T) {
	l := signedUpLocal(t)
	require.NoError(t, l.Logout())

	user, err := l.Login("Ana@Example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "Ana", user.Name)

	_, err = l.Login("ana@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = l.Login("nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalLogin_NeverExposesPasswordHash(t *testing.T) {
	store := kv.NewMemoryStore()
	l := NewLocal(store)
	_, err := l.Signup("Ana", "ana@example.com", "password123", "")
	require.NoError(t, err)

	// The stored current-user blob carries public fields only.
	raw, ok, err := store.Get("ALH_user")
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, raw, "password")

	// The user list keeps a hash, not the plaintext.
	raw, _, err = store.Get("ALH_users")
	require.NoError(t, err)
	assert.NotContains(t, raw, "password123")
}

func TestLocalCurrentUser_NilWhenSignedOut(t *testing.T) {
	l := newLocal(t)

	user, err := l.CurrentUser()
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestLocalSaveProject_InsertsWithSyntheticID(t *testing.T) {
	l := signedUpLocal(t)

	saved, err := l.SaveProject(&Project{Name: "Horta"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(saved.ID, "proj_"))
	assert.False(t, saved.CreatedAt.IsZero())

	projects, err := l.Projects()
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Horta", projects[0].Name)
}

func TestLocalSaveProject_UpdatePreservesCreatedAt(t *testing.T) {
	l := signedUpLocal(t)

	saved, err := l.SaveProject(&Project{Name: "Horta"})
	require.NoError(t, err)
	created := saved.CreatedAt

	saved.Name = "Horta Comunitária"
	saved.Progress = 40
	updated, err := l.SaveProject(saved)
	require.NoError(t, err)
	assert.Equal(t, created, updated.CreatedAt)

	projects, err := l.Projects()
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Horta Comunitária", projects[0].Name)
	assert.Equal(t, 40, projects[0].Progress)
}

func TestLocalSaveProject_UnknownIDFails(t *testing.T) {
	l := signedUpLocal(t)

	_, err := l.SaveProject(&Project{ID: "proj_999", Name: "Ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalMutations_RequireSignedInUser(t *testing.T) {
	l := newLocal(t)

	_, err := l.SaveProject(&Project{Name: "Horta"})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	projects, err := l.Projects()
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestLocalDeleteProject(t *testing.T) {
	l := signedUpLocal(t)

	saved, err := l.SaveProject(&Project{Name: "Horta"})
	require.NoError(t, err)

	require.NoError(t, l.DeleteProject(saved.ID))
	require.NoError(t, l.DeleteProject("proj_missing")) // silently ignored

	projects, err := l.Projects()
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestLocalSaveActivity_RecomputesCompletedAt(t *testing.T) {
	l := signedUpLocal(t)

	saved, err := l.SaveActivity(&Activity{ProjectID: "proj_1", Title: "Entrevistas", Completed: true})
	require.NoError(t, err)
	require.NotNil(t, saved.CompletedAt)
	assert.WithinDuration(t, time.Now().UTC(), *saved.CompletedAt, time.Minute)

	saved.Completed = false
	updated, err := l.SaveActivity(saved)
	require.NoError(t, err)
	assert.Nil(t, updated.CompletedAt)
}

func TestLocalActivities_FilteredByProject(t *testing.T) {
	l := signedUpLocal(t)

	_, err := l.SaveActivity(&Activity{ProjectID: "proj_1", Title: "A"})
	require.NoError(t, err)
	_, err = l.SaveActivity(&Activity{ProjectID: "proj_2", Title: "B"})
	require.NoError(t, err)

	activities, err := l.Activities("proj_1")
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, "A", activities[0].Title)
}

func TestLocalSaveBadge_DuplicateIsSilentNoOp(t *testing.T) {
	l := signedUpLocal(t)

	badge := &Badge{ID: "first-project", Title: "Primeiro Projeto", XP: 10}
	_, err := l.SaveBadge(badge)
	require.NoError(t, err)
	_, err = l.SaveBadge(&Badge{ID: "first-project", Title: "Primeiro Projeto", XP: 10})
	require.NoError(t, err)

	badges, err := l.Badges()
	require.NoError(t, err)
	assert.Len(t, badges, 1)

	// XP granted only once locally.
	var data localData
	_, err = l.getJSON(keyData, &data)
	require.NoError(t, err)
	assert.Equal(t, 10, data.XPTotal)
}

func TestLocalUpdateUserXP_LevelFromTotal(t *testing.T) {
	l := signedUpLocal(t)

	require.NoError(t, l.UpdateUserXP(95))
	require.NoError(t, l.UpdateUserXP(10))

	var data localData
	_, err := l.getJSON(keyData, &data)
	require.NoError(t, err)
	assert.Equal(t, 105, data.XPTotal)
	assert.Equal(t, 2, data.Level)
}

func TestLocalUpdateUserXP_NoOpWithoutUser(t *testing.T) {
	l := newLocal(t)

	require.NoError(t, l.UpdateUserXP(50))

	var data localData
	ok, err := l.getJSON(keyData, &data)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalSettings_DefaultsWhenUnset(t *testing.T) {
	l := newLocal(t)
	assert.False(t, l.HasSettings())

	s, err := l.Settings()
	require.NoError(t, err)
	assert.Equal(t, "dark", s.Theme)
	assert.Equal(t, "medium", s.FontSize)
	assert.Equal(t, "pt-BR", s.Language)
	assert.True(t, s.Notifications.Email)
}

func TestLocalSettings_Roundtrip(t *testing.T) {
	l := newLocal(t)

	in := DefaultSettings()
	in.Theme = "light"
	in.FontSize = "large"
	in.Language = "en-US"
	in.Notifications.Email = false
	require.NoError(t, l.SaveSettings(in))
	assert.True(t, l.HasSettings())

	out, err := l.Settings()
	require.NoError(t, err)
	assert.Equal(t, "light", out.Theme)
	assert.Equal(t, "large", out.FontSize)
	assert.Equal(t, "en-US", out.Language)
	assert.False(t, out.Notifications.Email)
}

package auth_test

import (
	"testing"

	"github.com/ebarcelosf/active-learn-hub-backup/internal/auth"
	"github.com/ebarcelosf/active-learn-hub-backup/internal/kv"
	"github.com/ebarcelosf/active-learn-hub-backup/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *auth.Service {
	t.Helper()
	return auth.NewService(testutil.NewTestDB(t), testutil.NewTestConfig())
}

func TestSignUp_NormalizesEmail(t *testing.T) {
	svc := newService(t)

	user, err := svc.SignUp("  Ana@Example.COM ", "password123")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.NotEqual(t, "password123", user.Password, "password must be stored hashed")
}

func TestSignUp_RejectsShortPassword(t *testing.T) {
	svc := newService(t)

	_, err := svc.SignUp("ana@example.com", "short")
	assert.Error(t, err)
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	svc := newService(t)

	_, err := svc.SignUp("ana@example.com", "password123")
	require.NoError(t, err)

	// Same email, different casing
	_, err = svc.SignUp("ANA@example.com", "password123")
	assert.ErrorIs(t, err, auth.ErrEmailTaken)
}

func TestSignIn_IssuesValidatableSession(t *testing.T) {
	svc := newService(t)

	user, err := svc.SignUp("ana@example.com", "password123")
	require.NoError(t, err)

	session, err := svc.SignIn("ana@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.UserID)
	assert.NotEmpty(t, session.Token)

	validated, err := svc.Validate(session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, validated.UserID)
	assert.Equal(t, "ana@example.com", validated.Email)
}

func TestSignIn_BackToBackIssuesDistinctTokens(t *testing.T) {
	svc := newService(t)

	_, err := svc.SignUp("ana@example.com", "password123")
	require.NoError(t, err)

	// Both sign-ins land within the same second, which the coarse iat/exp
	// claims alone cannot tell apart.
	first, err := svc.SignIn("ana@example.com", "password123")
	require.NoError(t, err)
	second, err := svc.SignIn("ana@example.com", "password123")
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)

	// Both sessions stand on their own until revoked.
	_, err = svc.Validate(first.Token)
	require.NoError(t, err)
	_, err = svc.Validate(second.Token)
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(first.Token))
	_, err = svc.Validate(first.Token)
	assert.ErrorIs(t, err, auth.ErrInvalidSession)
	_, err = svc.Validate(second.Token)
	require.NoError(t, err)
}

func TestSignIn_WrongPassword(t *testing.T) {
	svc := newService(t)

	_, err := svc.SignUp("ana@example.com", "password123")
	require.NoError(t, err)

	_, err = svc.SignIn("ana@example.com", "wrong-password")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.SignIn("nobody@example.com", "password123")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestSignOut_RevokesToken(t *testing.T) {
	svc := newService(t)

	_, err := svc.SignUp("ana@example.com", "password123")
	require.NoError(t, err)
	session, err := svc.SignIn("ana@example.com", "password123")
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(session.Token))

	_, err = svc.Validate(session.Token)
	assert.ErrorIs(t, err, auth.ErrInvalidSession)
}

func TestValidate_GarbageToken(t *testing.T) {
	svc := newService(t)

	_, err := svc.Validate("not-a-jwt")
	assert.ErrorIs(t, err, auth.ErrInvalidSession)
}

func TestSubscribe_EmitsSignInAndSignOut(t *testing.T) {
	svc := newService(t)

	var events []auth.EventKind
	svc.Subscribe(func(e auth.Event) { events = append(events, e.Kind) })

	_, err := svc.SignUp("ana@example.com", "password123")
	require.NoError(t, err)
	session, err := svc.SignIn("ana@example.com", "password123")
	require.NoError(t, err)
	require.NoError(t, svc.SignOut(session.Token))

	assert.Equal(t, []auth.EventKind{auth.EventSignedIn, auth.EventSignedOut}, events)
}

func TestSessionContext_TracksAuthState(t *testing.T) {
	svc := newService(t)
	store := kv.NewMemoryStore()
	ctx := auth.NewSessionContext(svc, store)

	session, err := ctx.Session()
	require.NoError(t, err)
	assert.Nil(t, session)

	_, err = svc.SignUp("ana@example.com", "password123")
	require.NoError(t, err)
	signedIn, err := svc.SignIn("ana@example.com", "password123")
	require.NoError(t, err)

	session, err = ctx.Session()
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, signedIn.UserID, session.UserID)

	require.NoError(t, svc.SignOut(signedIn.Token))
	session, err = ctx.Session()
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestSessionContext_RestoreFromStore(t *testing.T) {
	db := testutil.NewTestDB(t)
	cfg := testutil.NewTestConfig()
	svc := auth.NewService(db, cfg)
	store := kv.NewMemoryStore()

	// The first context persists the token into the store on sign-in.
	auth.NewSessionContext(svc, store)

	_, err := svc.SignUp("ana@example.com", "password123")
	require.NoError(t, err)
	signedIn, err := svc.SignIn("ana@example.com", "password123")
	require.NoError(t, err)

	// A fresh context over the same store picks the token back up.
	second := auth.NewSessionContext(auth.NewService(db, cfg), store)
	second.Restore()

	session, err := second.Session()
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, signedIn.UserID, session.UserID)
}

func TestSessionContext_RestoreDiscardsInvalidToken(t *testing.T) {
	svc := newService(t)
	store := kv.NewMemoryStore()
	require.NoError(t, store.Set("session_token", "stale-garbage"))

	ctx := auth.NewSessionContext(svc, store)
	ctx.Restore()

	assert.Empty(t, ctx.Token())
	_, ok, err := store.Get("session_token")
	require.NoError(t, err)
	assert.False(t, ok, "stale token should be removed from the store")
}

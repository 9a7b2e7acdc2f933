package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService() (*AuthService, *fakeUserStore, *fakeSessionStore) {
	users := newFakeUserStore()
	sessions := newFakeSessionStore()
	return NewAuthService(users, sessions, 24*time.Hour), users, sessions
}

func TestRegisterIssuesSession(t *testing.T) {
	svc, _, sessions := newTestAuthService()

	result, err := svc.Register(RegisterInput{
		Email:    "Ada@Example.COM",
		Password: "hunter2hunter2",
		FullName: "Ada Lovelace",
	})
	require.NoError(t, err)
	require.NotNil(t, result.User)

	assert.Equal(t, "ada@example.com", result.User.Email)
	assert.Len(t, result.Token, 64)
	require.NotNil(t, sessions.byToken[result.Token])
	assert.Equal(t, result.User.ID, sessions.byToken[result.Token].UserID)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, err := svc.Register(RegisterInput{Email: "a@b.com", Password: "longenough"})
	require.NoError(t, err)

	_, err = svc.Register(RegisterInput{Email: "A@B.com", Password: "longenough"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, err := svc.Register(RegisterInput{Email: "a@b.com", Password: "short"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, err := svc.Register(RegisterInput{Email: "a@b.com", Password: "longenough"})
	require.NoError(t, err)

	_, err = svc.Login(LoginInput{Email: "a@b.com", Password: "wrongwrong"})
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, err := svc.Login(LoginInput{Email: "nobody@b.com", Password: "longenough"})
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestResolveCredential(t *testing.T) {
	svc, _, _ := newTestAuthService()

	result, err := svc.Register(RegisterInput{Email: "a@b.com", Password: "longenough"})
	require.NoError(t, err)

	userID, err := svc.ResolveCredential(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, userID)
}

// An expired session must be indistinguishable from a missing one.
func TestResolveCredentialExpired(t *testing.T) {
	svc, _, sessions := newTestAuthService()

	result, err := svc.Register(RegisterInput{Email: "a@b.com", Password: "longenough"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(25 * time.Hour) }

	_, err = svc.ResolveCredential(result.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.ResolveCredential("no-such-token")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.ResolveCredential("")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	// Expiry does not delete the row.
	assert.NotNil(t, sessions.byToken[result.Token])
}

func TestLogoutDeletesSession(t *testing.T) {
	svc, _, sessions := newTestAuthService()

	result, err := svc.Register(RegisterInput{Email: "a@b.com", Password: "longenough"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(result.Token))
	assert.Nil(t, sessions.byToken[result.Token])

	_, err = svc.ResolveCredential(result.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

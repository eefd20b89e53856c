package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListSessionsMarksCurrent(t *testing.T) {
	env := newTestEnv(t)
	env.seedVerifiedUser(t, "ada@example.com", "", "Sup3r$ecret")
	ctx := context.Background()

	first, err := env.svc.Login(ctx, "ada@example.com", "Sup3r$ecret", "10.0.0.1", "laptop")
	require.NoError(t, err)
	second, err := env.svc.Login(ctx, "ada@example.com", "Sup3r$ecret", "10.0.0.2", "phone")
	require.NoError(t, err)

	infos, err := env.svc.ListSessions(ctx, first.User.ID, second.RefreshToken)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	current := 0
	for _, info := range infos {
		if info.IsCurrent {
			current++
			assert.Equal(t, second.Session.ID, info.ID)
		}
	}
	assert.Equal(t, 1, current)
}

func TestRevokeOtherSessions(t *testing.T) {
	env := newTestEnv(t)
	env.seedVerifiedUser(t, "ada@example.com", "", "Sup3r$ecret")
	ctx := context.Background()

	var keep *AuthResult
	for i := 0; i < 3; i++ {
		res, err := env.svc.Login(ctx, "ada@example.com", "Sup3r$ecret", "", "")
		require.NoError(t, err)
		keep = res
	}

	count, err := env.svc.RevokeOtherSessions(ctx, keep.User.ID, keep.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Len(t, env.sessions.sessions, 1)
}

func TestRevokeOtherSessionsWithoutCurrentSession(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedVerifiedUser(t, "ada@example.com", "", "Sup3r$ecret")

	_, err := env.svc.RevokeOtherSessions(context.Background(), u.ID, "no-such-token")
	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, 401, e.Status)
}

func TestRevokeOtherSessionsForeignToken(t *testing.T) {
	env := newTestEnv(t)
	env.seedVerifiedUser(t, "ada@example.com", "", "Sup3r$ecret")
	other := env.seedVerifiedUser(t, "eve@example.com", "", "Sup3r$ecret")
	ctx := context.Background()

	adaLogin, err := env.svc.Login(ctx, "ada@example.com", "Sup3r$ecret", "", "")
	require.NoError(t, err)

	// eve presents ada's refresh token as her own current session
	_, err = env.svc.RevokeOtherSessions(ctx, other.ID, adaLogin.RefreshToken)
	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, 403, e.Status)
}

func TestRevokeSessionRules(t *testing.T) {
	env := newTestEnv(t)
	env.seedVerifiedUser(t, "ada@example.com", "", "Sup3r$ecret")
	eve := env.seedVerifiedUser(t, "eve@example.com", "", "Sup3r$ecret")
	ctx := context.Background()

	current, err := env.svc.Login(ctx, "ada@example.com", "Sup3r$ecret", "", "")
	require.NoError(t, err)
	other, err := env.svc.Login(ctx, "ada@example.com", "Sup3r$ecret", "", "")
	require.NoError(t, err)

	// absent
	err = env.svc.RevokeSession(ctx, current.User.ID, "missing", current.RefreshToken)
	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, 404, e.Status)

	// someone else's session
	err = env.svc.RevokeSession(ctx, eve.ID, other.Session.ID, "")
	e, ok = AsError(err)
	require.True(t, ok)
	assert.Equal(t, 403, e.Status)

	// the current session must go through logout
	err = env.svc.RevokeSession(ctx, current.User.ID, current.Session.ID, current.RefreshToken)
	e, ok = AsError(err)
	require.True(t, ok)
	assert.Equal(t, 403, e.Status)
	assert.Contains(t, e.Message, "logout")

	// another of your own sessions is fine
	err = env.svc.RevokeSession(ctx, current.User.ID, other.Session.ID, current.RefreshToken)
	require.NoError(t, err)
	assert.Len(t, env.sessions.sessions, 1)
}

func TestRevokeSessionBearerCallerCanRevokeAnyOwnedSession(t *testing.T) {
	env := newTestEnv(t)
	env.seedVerifiedUser(t, "ada@example.com", "", "Sup3r$ecret")
	ctx := context.Background()

	login, err := env.svc.Login(ctx, "ada@example.com", "Sup3r$ecret", "", "")
	require.NoError(t, err)

	// no refresh token on the request: there is no current session to
	// protect, so even the session backing this login may be revoked
	err = env.svc.RevokeSession(ctx, login.User.ID, login.Session.ID, "")
	require.NoError(t, err)
	assert.Len(t, env.sessions.sessions, 0)
}

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"officehub/internal/store"
)

type recordingSink struct {
	events []map[string]any
}

func (r *recordingSink) ProcessEvent(ctx context.Context, eventType string, attributes map[string]any) int {
	attributes["__type"] = eventType
	r.events = append(r.events, attributes)
	return 0
}

func newTestAuth(t *testing.T) (*AuthModule, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	a := NewAuthModule(store.NewMemoryBare(5), nil, sink, "test-secret")
	require.NoError(t, a.CreateUser(context.Background(), "admin1", "adminpass1", "admin"))
	require.NoError(t, a.CreateUser(context.Background(), "user1", "userpass1", "user"))
	return a, sink
}

func TestLoginAndTokenRoundtrip(t *testing.T) {
	a, sink := newTestAuth(t)
	ctx := context.Background()

	token, role, err := a.Login(ctx, "admin1", "adminpass1")
	require.NoError(t, err)
	assert.Equal(t, "admin", role)

	username, role, err := a.ValidateTokenJWT(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "admin1", username)
	assert.Equal(t, "admin", role)

	require.Len(t, sink.events, 1)
	assert.Equal(t, "user_login", sink.events[0]["__type"])
	assert.Equal(t, "admin1", sink.events[0]["username"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	a, sink := newTestAuth(t)
	ctx := context.Background()

	_, _, err := a.Login(ctx, "admin1", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = a.Login(ctx, "nobody", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Failed logins must not emit events.
	assert.Empty(t, sink.events)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	a, _ := newTestAuth(t)
	ctx := context.Background()

	_, _, err := a.ValidateTokenJWT(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Token signed with a different secret.
	other := NewAuthModule(store.NewMemoryBare(5), nil, nil, "other-secret")
	require.NoError(t, other.CreateUser(ctx, "admin1", "adminpass1", "admin"))
	token, _, err := other.Login(ctx, "admin1", "adminpass1")
	require.NoError(t, err)

	_, _, err = a.ValidateTokenJWT(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLastAdminGuards(t *testing.T) {
	a, _ := newTestAuth(t)
	ctx := context.Background()

	assert.ErrorIs(t, a.SetRole(ctx, "admin1", "user"), ErrLastAdmin)
	assert.ErrorIs(t, a.DeleteUser(ctx, "admin1", "user1"), ErrLastAdmin)

	// With a second admin the demotion goes through.
	require.NoError(t, a.CreateUser(ctx, "admin2", "adminpass2", "admin"))
	require.NoError(t, a.SetRole(ctx, "admin1", "user"))

	// Which makes admin2 the last admin in turn.
	assert.ErrorIs(t, a.DeleteUser(ctx, "admin2", "user1"), ErrLastAdmin)
	require.NoError(t, a.SetRole(ctx, "admin1", "admin"))
	require.NoError(t, a.DeleteUser(ctx, "admin2", "admin1"))
}

func TestSelfDeleteRefused(t *testing.T) {
	a, _ := newTestAuth(t)
	ctx := context.Background()

	assert.ErrorIs(t, a.DeleteUser(ctx, "user1", "user1"), ErrSelfDelete)
	require.NoError(t, a.DeleteUser(ctx, "user1", "admin1"))
	assert.ErrorIs(t, a.DeleteUser(ctx, "user1", "admin1"), store.ErrNotFound)
}

func TestSetPassword(t *testing.T) {
	a, _ := newTestAuth(t)
	ctx := context.Background()

	require.NoError(t, a.SetPassword(ctx, "user1", "newpass"))
	_, _, err := a.Login(ctx, "user1", "userpass1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = a.Login(ctx, "user1", "newpass")
	assert.NoError(t, err)
}

func newSessionTestAuth(t *testing.T) (*AuthModule, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	a := NewAuthModule(store.NewMemoryBare(5), client, nil, "test-secret")
	require.NoError(t, a.CreateUser(context.Background(), "user1", "userpass1", "user"))
	return a, mr
}

func TestSessionLifecycle(t *testing.T) {
	a, mr := newSessionTestAuth(t)
	ctx := context.Background()

	token, err := a.LoginWithSession(ctx, "user1", "userpass1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	username, role, err := a.ValidateTokenSession(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user1", username)
	assert.Equal(t, "user", role)

	require.NoError(t, a.Logout(ctx, token))
	_, _, err = a.ValidateTokenSession(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	assert.False(t, mr.Exists("session:"+token))
}

func TestSessionTTLSlides(t *testing.T) {
	a, mr := newSessionTestAuth(t)
	ctx := context.Background()

	token, err := a.LoginWithSession(ctx, "user1", "userpass1")
	require.NoError(t, err)

	// A session close to expiry gets its full lifetime back on use.
	mr.SetTTL("session:"+token, time.Hour)
	_, _, err = a.ValidateTokenSession(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, mr.TTL("session:"+token))
}

func TestSessionRejectsUnknownToken(t *testing.T) {
	a, _ := newSessionTestAuth(t)
	_, _, err := a.ValidateTokenSession(context.Background(), "bogus")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionsDisabledWithoutRedis(t *testing.T) {
	a, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := a.LoginWithSession(ctx, "user1", "userpass1")
	assert.ErrorIs(t, err, ErrSessionsDisabled)

	_, _, err = a.ValidateTokenSession(ctx, "anything")
	assert.ErrorIs(t, err, ErrInvalidToken)

	assert.NoError(t, a.Logout(ctx, "anything"))
}

package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/andrebq/jotter/internal/testutil"
	"github.com/andrebq/jotter/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecorder map[string]int

func (c countingRecorder) AuthOutcome(op, outcome string) {
	c[op+"/"+outcome]++
}

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	conn, cleanup := testutil.AcquireConn(ctx, t)
	defer cleanup()
	rec := countingRecorder{}
	svc := NewService(testHasher, rec)

	id, err := svc.Register(ctx, conn, "bob", "secret")
	require.NoError(t, err)

	stored, err := conn.FindUserByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", stored.PasswordHash, "raw passwords are never stored")

	var sess Session
	user, err := svc.Login(ctx, conn, &sess, "bob", "secret")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	sid, ok := sess.UserID()
	require.True(t, ok)
	assert.Equal(t, id, sid)

	assert.Equal(t, countingRecorder{"register/ok": 1, "login/ok": 1}, rec)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	conn, cleanup := testutil.AcquireConn(ctx, t)
	defer cleanup()
	svc := NewService(testHasher, nil)

	type testCase struct {
		username string
		password string
		err      error
		message  string
	}
	for _, tc := range []testCase{
		{"", "x", MissingUsername{}, "Username is required"},
		{"bob", "", MissingPassword{}, "Password is required"},
		{"", "", MissingUsername{}, "Username is required"},
	} {
		_, err := svc.Register(ctx, conn, tc.username, tc.password)
		assert.True(t, errors.Is(err, tc.err), "register(%q, %q) should fail with %T, got %v", tc.username, tc.password, tc.err, err)
		msg, ok := UserMessage(err)
		assert.True(t, ok)
		assert.Equal(t, tc.message, msg)
	}
	assert.False(t, conn.Acquired(), "invalid input should never reach the store")
}

func TestRegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	conn, cleanup := testutil.AcquireConn(ctx, t)
	defer cleanup()
	svc := NewService(testHasher, nil)

	first, err := svc.Register(ctx, conn, "bob", "secret")
	require.NoError(t, err)

	_, err = svc.Register(ctx, conn, "bob", "other")
	require.True(t, errors.Is(err, UsernameTaken{Username: "bob"}), "got %v", err)
	msg, ok := UserMessage(err)
	require.True(t, ok)
	assert.Contains(t, msg, "bob")

	var sess Session
	user, err := svc.Login(ctx, conn, &sess, "bob", "secret")
	require.NoError(t, err, "first registration must be unaffected")
	assert.Equal(t, first, user.ID)
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	conn, cleanup := testutil.AcquireConn(ctx, t)
	defer cleanup()
	svc := NewService(testHasher, nil)
	_, err := svc.Register(ctx, conn, "bob", "secret")
	require.NoError(t, err)

	var sess Session
	_, err = svc.Login(ctx, conn, &sess, "nouser", "anything")
	require.True(t, errors.Is(err, InvalidCredentials{Field: "username"}), "got %v", err)
	msg, _ := UserMessage(err)
	assert.Equal(t, "Incorrect username.", msg)
	_, ok := sess.UserID()
	assert.False(t, ok)
	assert.False(t, sess.Modified())

	_, err = svc.Login(ctx, conn, &sess, "bob", "wrongpass")
	require.True(t, errors.Is(err, InvalidCredentials{Field: "password"}), "got %v", err)
	msg, _ = UserMessage(err)
	assert.Equal(t, "Incorrect password.", msg)
	_, ok = sess.UserID()
	assert.False(t, ok)
}

func TestLoginReplacesPreviousSession(t *testing.T) {
	ctx := context.Background()
	conn, cleanup := testutil.AcquireConn(ctx, t)
	defer cleanup()
	svc := NewService(testHasher, nil)
	aliceID, err := svc.Register(ctx, conn, "alice", "a")
	require.NoError(t, err)
	bobID, err := svc.Register(ctx, conn, "bob", "b")
	require.NoError(t, err)

	var sess Session
	_, err = svc.Login(ctx, conn, &sess, "alice", "a")
	require.NoError(t, err)
	aliceSession := sess.ID()
	sess.Flash("stale")

	_, err = svc.Login(ctx, conn, &sess, "bob", "b")
	require.NoError(t, err)
	id, _ := sess.UserID()
	assert.Equal(t, bobID, id)
	assert.NotEqual(t, aliceID, id)
	assert.NotEqual(t, aliceSession, sess.ID())
	assert.Empty(t, sess.TakeFlashes())
}

func TestLogoutAndResolve(t *testing.T) {
	ctx := context.Background()
	conn, cleanup := testutil.AcquireConn(ctx, t)
	defer cleanup()
	svc := NewService(testHasher, nil)
	_, err := svc.Register(ctx, conn, "bob", "secret")
	require.NoError(t, err)

	var sess Session
	_, err = svc.Login(ctx, conn, &sess, "bob", "secret")
	require.NoError(t, err)

	user, err := svc.ResolveIdentity(ctx, conn, &sess)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "bob", user.Username)

	svc.Logout(&sess)
	user, err = svc.ResolveIdentity(ctx, conn, &sess)
	require.NoError(t, err)
	assert.Nil(t, user)

	svc.Logout(&sess)
	user, err = svc.ResolveIdentity(ctx, conn, &sess)
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.True(t, sess.Empty())
}

func TestResolveMissingUserKeepsSession(t *testing.T) {
	ctx := context.Background()
	conn, cleanup := testutil.AcquireConn(ctx, t)
	defer cleanup()
	svc := NewService(testHasher, nil)

	codec, err := NewSessionCodec("dev", 0)
	require.NoError(t, err)
	var issued Session
	issued.SetUser(404)
	token, err := codec.Encode(&issued)
	require.NoError(t, err)

	sess := codec.Decode(token)
	user, err := svc.ResolveIdentity(ctx, conn, sess)
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.False(t, sess.Modified(), "the session must not be cleared")
	id, ok := sess.UserID()
	assert.True(t, ok)
	assert.Equal(t, int64(404), id)
}

type brokenStore struct{}

var errStoreDown = errors.New("database is unreachable")

func (brokenStore) InsertUser(context.Context, string, string) (int64, error) {
	return 0, errStoreDown
}

func (brokenStore) FindUserByUsername(context.Context, string) (store.User, error) {
	return store.User{}, errStoreDown
}

func (brokenStore) FindUserByID(context.Context, int64) (store.User, error) {
	return store.User{}, errStoreDown
}

func TestStoreFailuresPropagate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(testHasher, nil)

	_, err := svc.Register(ctx, brokenStore{}, "bob", "secret")
	require.ErrorIs(t, err, errStoreDown)
	_, ok := UserMessage(err)
	assert.False(t, ok)

	var sess Session
	_, err = svc.Login(ctx, brokenStore{}, &sess, "bob", "secret")
	require.ErrorIs(t, err, errStoreDown)

	sess.SetUser(1)
	_, err = svc.ResolveIdentity(ctx, brokenStore{}, &sess)
	require.ErrorIs(t, err, errStoreDown)
}

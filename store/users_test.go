package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/andrebq/jotter/internal/testutil"
	"github.com/andrebq/jotter/store"
	"github.com/stretchr/testify/require"
)

func TestInsertAndFindUser(t *testing.T) {
	ctx := context.Background()
	conn, cleanup := testutil.AcquireConn(ctx, t)
	defer cleanup()

	id, err := conn.InsertUser(ctx, "bob", "hash-of-secret")
	require.NoError(t, err)
	require.NotZero(t, id)

	byName, err := conn.FindUserByUsername(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, store.User{ID: id, Username: "bob", PasswordHash: "hash-of-secret"}, byName)

	byID, err := conn.FindUserByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, byName, byID)
}

func TestUsernamesAreCaseSensitive(t *testing.T) {
	ctx := context.Background()
	conn, cleanup := testutil.AcquireConn(ctx, t)
	defer cleanup()

	_, err := conn.InsertUser(ctx, "bob", "h1")
	require.NoError(t, err)
	_, err = conn.InsertUser(ctx, "Bob", "h2")
	require.NoError(t, err)

	_, err = conn.FindUserByUsername(ctx, "BOB")
	require.True(t, errors.Is(err, store.UserNotFound{Username: "BOB"}), "got %v", err)
}

func TestDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	conn, cleanup := testutil.AcquireConn(ctx, t)
	defer cleanup()

	first, err := conn.InsertUser(ctx, "bob", "first-hash")
	require.NoError(t, err)

	_, err = conn.InsertUser(ctx, "bob", "second-hash")
	require.True(t, errors.Is(err, store.DuplicateUsername{Username: "bob"}), "got %v", err)

	u, err := conn.FindUserByUsername(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, first, u.ID)
	require.Equal(t, "first-hash", u.PasswordHash)
}

func TestConcurrentRegistrationHasOneWinner(t *testing.T) {
	ctx := context.Background()
	db, cleanup := testutil.AcquireDatabase(ctx, t)
	defer cleanup()

	const racers = 8
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conn := db.Acquire()
			defer conn.Close()
			_, errs[i] = conn.InsertUser(ctx, "alice", "hash")
		}(i)
	}
	wg.Wait()

	var wins, dups int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, store.DuplicateUsername{Username: "alice"}):
			dups++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, wins)
	require.Equal(t, racers-1, dups)
}

func TestUserNotFound(t *testing.T) {
	ctx := context.Background()
	conn, cleanup := testutil.AcquireConn(ctx, t)
	defer cleanup()

	_, err := conn.FindUserByUsername(ctx, "nouser")
	require.True(t, errors.Is(err, store.UserNotFound{Username: "nouser"}), "got %v", err)

	_, err = conn.FindUserByID(ctx, 42)
	require.True(t, errors.Is(err, store.UserNotFound{ID: 42}), "got %v", err)
}

func TestConnIsLazy(t *testing.T) {
	ctx := context.Background()
	db, cleanup := testutil.AcquireDatabase(ctx, t)
	defer cleanup()

	conn := db.Acquire()
	require.False(t, conn.Acquired(), "no query, no connection")
	require.Equal(t, 0, db.Stats().InUse)

	_, err := conn.FindUserByID(ctx, 1)
	require.Error(t, err)
	require.True(t, conn.Acquired())
	require.Equal(t, 1, db.Stats().InUse)

	require.NoError(t, conn.Close())
	require.False(t, conn.Acquired())
	require.Equal(t, 0, db.Stats().InUse)
	require.NoError(t, conn.Close(), "closing twice should be harmless")
}

func TestOpenCreatesMissingDirectories(t *testing.T) {
	ctx := context.Background()
	dbpath := filepath.Join(t.TempDir(), "nested", "instance", "jotter.sqlite")
	db, err := store.Open(ctx, dbpath)
	require.NoError(t, err)
	defer db.Close()
	require.Equal(t, dbpath, db.Path())
	require.NoError(t, db.InitSchema(ctx))
	_, err = os.Stat(dbpath)
	require.NoError(t, err)
}

func TestClosedDatabaseIsNotUserNotFound(t *testing.T) {
	ctx := context.Background()
	db, cleanup := testutil.AcquireDatabase(ctx, t)
	defer cleanup()
	require.NoError(t, db.Close())

	conn := db.Acquire()
	defer conn.Close()
	_, err := conn.FindUserByID(ctx, 1)
	require.Error(t, err)
	var notFound store.UserNotFound
	require.False(t, errors.As(err, &notFound), "connectivity failures must not look like a missing user")
}

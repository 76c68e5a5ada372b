package testutil

import (
	"context"
	"os"
	"path/filepath"

	"github.com/andrebq/jotter/store"
)

type (
	TestLog interface {
		Fatal(...interface{})
		Log(...interface{})
	}
)

// AcquireDatabase opens a fresh database, with the schema already in place,
// under a temporary directory that is removed by the returned cleanup.
func AcquireDatabase(ctx context.Context, t TestLog) (*store.DB, func()) {
	dir, err := os.MkdirTemp("", "jotter-tests")
	if err != nil {
		t.Fatal(err)
	}
	db, err := store.Open(ctx, filepath.Join(dir, "jotter.sqlite"))
	if err != nil {
		os.RemoveAll(dir)
		t.Fatal(err)
	}
	err = db.InitSchema(ctx)
	if err != nil {
		db.Close()
		os.RemoveAll(dir)
		t.Fatal(err)
	}
	return db, func() {
		err := db.Close()
		if err != nil {
			t.Log("unable to close database", err)
		}
		err = os.RemoveAll(dir)
		if err != nil {
			t.Log("unable to cleanup temp dir", dir)
		}
	}
}

// AcquireConn is AcquireDatabase plus a request-scoped connection,
// both released by cleanup.
func AcquireConn(ctx context.Context, t TestLog) (*store.Conn, func()) {
	db, cleanupDB := AcquireDatabase(ctx, t)
	conn := db.Acquire()
	return conn, func() {
		err := conn.Close()
		if err != nil {
			t.Log("unable to release connection", err)
		}
		cleanupDB()
	}
}

package repo

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// TestingT is the part of testing.TB that UseTestDB needs.
type TestingT interface {
	Helper()
	Name() string
	Cleanup(func())
	Fatalf(format string, args ...any)
}

var testDBSeq atomic.Int64

// UseTestDB points Db at a fresh in-memory SQLite database for the test.
func UseTestDB(t TestingT) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, testDBSeq.Add(1))
	db, err := OpenSqlite(dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	prev := Db
	Db = db
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		Db = prev
	})
}

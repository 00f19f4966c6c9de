// Package dbtest provides a migrated in-memory database for package tests.
package dbtest

import (
	"fmt"
	"sync/atomic"
	"testing"

	"penpal/backend/internal/db"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var seq atomic.Int64

// Open returns a fresh, migrated in-memory SQLite database private to t.
// The pool holds a single connection, so concurrent callers queue on it.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:penpal_test_%d?mode=memory&cache=shared", seq.Add(1))
	gdb, err := db.Open("sqlite", dsn)
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

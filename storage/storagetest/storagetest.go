// Package storagetest provides an in-memory sqlite store for tests.
package storagetest

import (
	"fmt"
	"github.com/alex-pricope/hackathon-coordinator/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"testing"
)

// NewTestStore opens a fresh migrated database private to the test.
func NewTestStore(t *testing.T) *storage.GormStore {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := storage.Open("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, storage.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return storage.NewGormStore(db)
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withGooseUp(t *testing.T, fn func(ctx context.Context, db *sql.DB, dir string) error) {
	t.Helper()
	orig := gooseUp
	gooseUp = fn
	t.Cleanup(func() { gooseUp = orig })
}

func TestMigrateDB_RunsEmbeddedMigrations(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var gotDir string
	var gotDB *sql.DB
	withGooseUp(t, func(_ context.Context, d *sql.DB, dir string) error {
		gotDB = d
		gotDir = dir
		return nil
	})

	require.NoError(t, MigrateDB(context.Background(), db))
	assert.Equal(t, migrationsDir, gotDir)
	assert.Same(t, db, gotDB)
}

func TestMigrateDB_WrapsError(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	withGooseUp(t, func(context.Context, *sql.DB, string) error {
		return errors.New("boom")
	})

	err = MigrateDB(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to apply migrations")
	assert.Contains(t, err.Error(), "boom")
}

func TestMigrations_AreEmbedded(t *testing.T) {
	entries, err := migrations.ReadDir(migrationsDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "00001_init.sql", entries[0].Name())
}

package sqlite_test

import (
	"context"
	"testing"

	"github.com/fwojciec/dealrater/sqlite"
	"github.com/stretchr/testify/require"
)

func TestDB_Open(t *testing.T) {
	t.Parallel()

	t.Run("creates schema on first open", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(":memory:")
		err := db.Open()
		require.NoError(t, err)
		defer db.Close()

		ctx := context.Background()

		var reportCount int
		err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reports").Scan(&reportCount)
		require.NoError(t, err)

		var listingCount int
		err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM listings").Scan(&listingCount)
		require.NoError(t, err)
	})

	t.Run("returns error for invalid path", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB("/nonexistent/path/db.sqlite")
		err := db.Open()
		require.Error(t, err)
	})

	t.Run("enables WAL mode for file-based databases", func(t *testing.T) {
		t.Parallel()

		dbPath := t.TempDir() + "/test.db"
		db := sqlite.NewDB(dbPath)
		err := db.Open()
		require.NoError(t, err)
		defer db.Close()

		ctx := context.Background()
		var journalMode string
		err = db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journalMode)
		require.NoError(t, err)
		require.Equal(t, "wal", journalMode)
	})

	t.Run("reopening keeps existing data", func(t *testing.T) {
		t.Parallel()

		dbPath := t.TempDir() + "/dealrater.db"
		ctx := context.Background()

		db := sqlite.NewDB(dbPath)
		require.NoError(t, db.Open())
		_, err := db.ExecContext(ctx, `INSERT INTO reports (id, url, created_at) VALUES ('r1', 'https://dealer.example.com', '2026-01-01T00:00:00Z')`)
		require.NoError(t, err)
		require.NoError(t, db.Close())

		db = sqlite.NewDB(dbPath)
		require.NoError(t, db.Open())
		defer db.Close()

		var count int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reports").Scan(&count))
		require.Equal(t, 1, count)
	})

	t.Run("records schema version", func(t *testing.T) {
		t.Parallel()

		dbPath := t.TempDir() + "/dealrater.db"
		ctx := context.Background()

		for range 2 {
			db := sqlite.NewDB(dbPath)
			require.NoError(t, db.Open())
			version, err := db.SchemaVersion(ctx)
			require.NoError(t, err)
			require.Equal(t, 1, version)
			require.NoError(t, db.Close())
		}
	})

	t.Run("refuses newer schema", func(t *testing.T) {
		t.Parallel()

		dbPath := t.TempDir() + "/dealrater.db"
		ctx := context.Background()

		db := sqlite.NewDB(dbPath)
		require.NoError(t, db.Open())
		_, err := db.ExecContext(ctx, "PRAGMA user_version = 99")
		require.NoError(t, err)
		require.NoError(t, db.Close())

		err = sqlite.NewDB(dbPath).Open()
		require.ErrorContains(t, err, "newer than this program")
	})
}

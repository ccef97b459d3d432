package storetest

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/filmorate/internal/database"
	"github.com/iliyamo/filmorate/internal/repository"
)

// MySQLDSNEnv names the variable holding the DSN of a scratch database.
// Tests that need MySQL are skipped when it is unset.
const MySQLDSNEnv = "FILMORATE_TEST_MYSQL_DSN"

// children first so foreign keys never block the cleanup
var cleanupOrder = []string{
	"feed", "review_votes", "reviews", "likes", "friendships",
	"film_directors", "film_genres", "films", "directors", "users",
}

// MySQL returns a Factory over the database named by MySQLDSNEnv. Every
// store it produces starts from empty tables; the genre and rating seeds
// are kept.
func MySQL(t *testing.T) Factory {
	t.Helper()
	dsn := os.Getenv(MySQLDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", MySQLDSNEnv)
	}
	db, err := database.OpenDSN(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db))

	return func(t *testing.T) repository.Store {
		t.Helper()
		truncate(t, db)
		return repository.NewMySQLStore(db)
	}
}

func truncate(t *testing.T, db *sql.DB) {
	t.Helper()
	for _, table := range cleanupOrder {
		_, err := db.ExecContext(context.Background(), "DELETE FROM "+table)
		require.NoError(t, err)
	}
}

package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/sweetcrust/internal/db"
)

// PostgresEnv names the DSN of a scratch Postgres database for tests that
// need real row locks. Its tables are truncated before and after each test.
const PostgresEnv = "SWEETCRUST_TEST_DATABASE_URL"

// NewPostgresDB opens and migrates the database named by PostgresEnv and
// skips the test when it is unset.
func NewPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv(PostgresEnv)
	if dsn == "" {
		t.Skipf("%s not set", PostgresEnv)
	}

	ctx := context.Background()
	gdb, err := db.Open(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx, gdb))

	truncate := func() error {
		return gdb.Exec("TRUNCATE orders, products, users, messages RESTART IDENTITY CASCADE").Error
	}
	require.NoError(t, truncate())
	t.Cleanup(func() {
		_ = truncate()
		_ = db.Close(gdb)
	})
	return gdb
}

package migrate

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestBundledMigrationsValidate(t *testing.T) {
	require.NoError(t, Validate(Bundled()))

	names, err := fs.Glob(Bundled(), "*.sql")
	require.NoError(t, err)
	onDisk, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	require.NoError(t, err)
	require.Len(t, names, len(onDisk))
}

func TestOrdersMigrationEnforcesStatusAndPaymentMethod(t *testing.T) {
	matches, err := fs.Glob(Bundled(), "*_create_orders_tables.sql")
	require.NoError(t, err)
	require.Len(t, matches, 1)

	body, err := fs.ReadFile(Bundled(), matches[0])
	require.NoError(t, err)
	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"CREATE TABLE IF NOT EXISTS order_items",
		"'pending', 'processing', 'shipped', 'delivered', 'cancelled'",
		"payment_method IN ('COD', 'STRIPE')",
		"total numeric(12,2)",
		"ON DELETE CASCADE",
	} {
		require.Contains(t, string(body), want)
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Store Banner!")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, "_add_store_banner.sql"), path)
	require.NoError(t, Validate(os.DirFS(dir)))

	_, err = CreateSQLMigration(dir, "!!!")
	require.Error(t, err)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	migrations := fstest.MapFS{
		"001_init.sql":                   {Data: []byte("-- +goose Up\n-- +goose Down\n")},
		"20240101000000_users.sql":       {Data: []byte("-- +goose Up\nSELECT 1;\n")},
		"20240101000000_users_again.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
		"20240102000000_fine.sql":        {Data: []byte("-- +goose Up\n-- +goose Down\n")},
		"README.md":                      {Data: []byte("ignored")},
	}
	err := Validate(migrations)
	require.Error(t, err)
	msg := err.Error()
	require.Contains(t, msg, "001_init.sql")
	require.Contains(t, msg, `missing "-- +goose Down"`)
	require.Contains(t, msg, "already used")
	require.NotContains(t, msg, "20240102000000_fine.sql")
}

func TestSourcePrefersDirectory(t *testing.T) {
	dir := t.TempDir()
	_, err := CreateSQLMigration(dir, "only_one")
	require.NoError(t, err)

	names, err := fs.Glob(Source(dir), "*.sql")
	require.NoError(t, err)
	require.Len(t, names, 1)
}

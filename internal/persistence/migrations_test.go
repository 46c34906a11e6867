package persistence

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/washline/laundry-service/migrations"
)

func TestMigrationNamesSortedSQLOnly(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_orders.sql": {Data: []byte("SELECT 2")},
		"0001_init.sql":   {Data: []byte("SELECT 1")},
		"README.md":       {Data: []byte("notes")},
		"archive/old.sql": {Data: []byte("SELECT 0")},
	}

	names, err := migrationNames(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_init.sql", "0002_orders.sql"}, names)
}

func TestEmbeddedMigrations(t *testing.T) {
	names, err := migrationNames(migrations.FS)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_init.sql", "0002_unique_side_effects.sql"}, names)

	raw, err := fs.ReadFile(migrations.FS, "0002_unique_side_effects.sql")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "CREATE UNIQUE INDEX IF NOT EXISTS orders_source_appointment_key")
	assert.Contains(t, string(raw), "WHERE status <> 'cancelled'")
}

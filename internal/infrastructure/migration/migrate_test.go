package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const migrationsDir = "../../../migrations"

func TestMigrationFiles(t *testing.T) {
	abs, err := filepath.Abs(migrationsDir)
	require.NoError(t, err)

	drv, err := source.Open(SourceURL(abs))
	require.NoError(t, err)
	defer drv.Close()

	version, err := drv.First()
	require.NoError(t, err)

	count := 0
	for {
		count++

		up, name, err := drv.ReadUp(version)
		require.NoError(t, err, "version %d has no up file", version)
		up.Close()
		down, _, err := drv.ReadDown(version)
		require.NoError(t, err, "version %d (%s) has no down file", version, name)
		down.Close()

		next, err := drv.Next(version)
		if err != nil {
			assert.ErrorIs(t, err, os.ErrNotExist)
			break
		}
		assert.Greater(t, next, version)
		version = next
	}
	assert.Equal(t, 2, count)
}

func TestMigrationFiles_CreateMappedTables(t *testing.T) {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.up.sql"))
	require.NoError(t, err)

	var all strings.Builder
	for _, f := range files {
		data, err := os.ReadFile(f)
		require.NoError(t, err)
		all.Write(data)
	}

	for _, table := range []string{
		"product_templates",
		"product_variants",
		"product_attributes",
		"product_attribute_values",
		"product_variant_attribute_values",
		"product_attribute_lines",
		"sync_operations",
		"feed_entries",
	} {
		assert.Contains(t, all.String(), "CREATE TABLE IF NOT EXISTS "+table+" (", table)
	}
}

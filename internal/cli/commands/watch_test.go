package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchRebuild(t *testing.T) {
	dir := t.TempDir()
	cc, tr := newTestContext(t, testConfig(dir))
	w := &watchState{cc: cc, dir: dir}

	write := func(name, sql string) {
		t.Helper()
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(sql), 0o600))
	}

	write("001_a.sql", "CREATE TABLE a (id INT);")
	require.NoError(t, w.rebuild())
	assert.Contains(t, tr.Output(), "ok: 1 table(s)")
	tr.Reset()

	write("002_b.sql", "ALTER TABLE a ADD COLUMN b TEXT;")
	require.NoError(t, w.rebuild())
	assert.Contains(t, tr.Output(), "+ column a.b text")
	tr.Reset()

	require.NoError(t, w.rebuild())
	assert.Contains(t, tr.Output(), "no schema changes")
	tr.Reset()

	write("003_c.sql", "DROP TABLE nope;")
	require.NoError(t, w.rebuild())
	assert.Contains(t, tr.Output(), "CatalogError/UnknownTable")
	assert.Contains(t, tr.Output(), "1 error(s); schema unchanged")
	a, ok := w.prev.LookupTable("a")
	require.True(t, ok)
	assert.Len(t, a.Columns, 2)
}

func TestWatchRebuildMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	cc, _ := newTestContext(t, testConfig(dir))
	w := &watchState{cc: cc, dir: dir}
	require.Error(t, w.rebuild())
}

func TestRunWatchStopsOnCancel(t *testing.T) {
	dir := testdataMigrations(t)
	cc, tr := newTestContext(t, testConfig(dir))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, runWatch(ctx, cc, dir))
	assert.Contains(t, tr.Output(), "ok: 2 table(s)")
	assert.Contains(t, tr.Output(), "watching "+dir)
}

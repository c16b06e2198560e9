package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expandd/internal/diag"
	"expandd/internal/rules"
)

func writeRules(t *testing.T, path, doc string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
}

func newTestWatcher(t *testing.T, path string, store *rules.Store) *Watcher {
	t.Helper()
	w, err := New(path, store, nil, diag.NewSink(diag.NewRing(0), nil), 30*time.Millisecond)
	require.NoError(t, err)
	return w
}

func waitForReloads(t *testing.T, w *Watcher, n uint64) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if w.Reloads() >= n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("watcher never reached %d reloads (have %d)", n, w.Reloads())
}

func TestReloadAppliesDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	writeRules(t, path, `[{"trigger": ";a", "replacement": "alpha"}]`)

	store := rules.NewStore()
	w := newTestWatcher(t, path, store)

	require.NoError(t, w.Reload())
	snap := store.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "alpha", snap[0].Replacement)
}

func TestReloadYAMLByExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	writeRules(t, path, "- trigger: \";b\"\n  replacement: beta\n")

	store := rules.NewStore()
	w := newTestWatcher(t, path, store)

	require.NoError(t, w.Reload())
	snap := store.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, ";b", snap[0].Trigger)
}

func TestReloadInvalidKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	writeRules(t, path, `[{"trigger": ";a", "replacement": "alpha"}]`)

	store := rules.NewStore()
	w := newTestWatcher(t, path, store)
	require.NoError(t, w.Reload())

	writeRules(t, path, `[{"trigger": ""}]`)
	require.Error(t, w.Reload())

	snap := store.Snapshot()
	require.Len(t, snap, 1, "previous rule set must stay active")
	assert.Equal(t, ";a", snap[0].Trigger)
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	writeRules(t, path, `[]`)

	store := rules.NewStore()
	w := newTestWatcher(t, path, store)
	require.NoError(t, w.Start())
	defer w.Stop()

	writeRules(t, path, `[{"trigger": ";c", "replacement": "gamma"}]`)
	waitForReloads(t, w, 1)

	snap := store.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "gamma", snap[0].Replacement)
}

func TestWatchReloadsOnRenameReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.json")
	writeRules(t, path, `[]`)

	store := rules.NewStore()
	w := newTestWatcher(t, path, store)
	require.NoError(t, w.Start())
	defer w.Stop()

	// Editor-style save: write a sibling, then rename over the target.
	tmp := filepath.Join(dir, "rules.json.tmp")
	writeRules(t, tmp, `[{"trigger": ";d", "replacement": "delta"}]`)
	require.NoError(t, os.Rename(tmp, path))

	waitForReloads(t, w, 1)
	snap := store.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, ";d", snap[0].Trigger)
}

func TestWatchIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.json")
	writeRules(t, path, `[]`)

	store := rules.NewStore()
	w := newTestWatcher(t, path, store)
	require.NoError(t, w.Start())
	defer w.Stop()

	writeRules(t, filepath.Join(dir, "other.json"), `[{"trigger": "x", "replacement": "y"}]`)
	time.Sleep(150 * time.Millisecond)
	assert.Zero(t, w.Reloads())
}

type savedRules struct {
	sets [][]rules.Rule
}

func (a *savedRules) Save(rs []rules.Rule) error {
	a.sets = append(a.sets, rs)
	return nil
}

func TestReloadPersistsToArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	writeRules(t, path, `[{"trigger": ";e", "replacement": "epsilon"}]`)

	archive := &savedRules{}
	w, err := New(path, rules.NewStore(), archive, diag.NewSink(nil, nil), 0)
	require.NoError(t, err)

	require.NoError(t, w.Reload())
	require.Len(t, archive.sets, 1)
	assert.Equal(t, ";e", archive.sets[0][0].Trigger)
}

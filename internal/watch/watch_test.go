package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWatcher(t *testing.T, dir string, patterns ...string) *Watcher {
	t.Helper()
	w, err := New([]string{dir}, Config{Debounce: 100 * time.Millisecond, Patterns: patterns}, nil)
	require.NoError(t, err)
	return w
}

func TestNew_InvalidPattern(t *testing.T) {
	_, err := New([]string{t.TempDir()}, Config{Patterns: []string{"[unclosed"}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid watch pattern")
}

func TestMatches(t *testing.T) {
	dir := t.TempDir()
	w := newWatcher(t, dir, "**/*.tsv")
	defer w.Close()

	assert.True(t, w.Matches(filepath.Join(dir, "chain.tsv")))
	assert.True(t, w.Matches(filepath.Join(dir, "sub", "molecule.tsv")))
	assert.False(t, w.Matches(filepath.Join(dir, "notes.md")))
	assert.False(t, w.Matches(filepath.Join(filepath.Dir(dir), "outside.tsv")))
}

func TestMatches_Ignore(t *testing.T) {
	dir := t.TempDir()
	report := filepath.Join(dir, "build", "errors.tsv")
	w, err := New([]string{dir}, Config{Patterns: []string{"**/*.tsv"}, Ignore: []string{report}}, nil)
	require.NoError(t, err)
	defer w.Close()

	assert.False(t, w.Matches(report))
	assert.True(t, w.Matches(filepath.Join(dir, "build", "other.tsv")))
}

func TestMatches_NoPatterns(t *testing.T) {
	dir := t.TempDir()
	w := newWatcher(t, dir)
	defer w.Close()

	assert.True(t, w.Matches(filepath.Join(dir, "anything.txt")))
}

func TestRun_DebouncesChanges(t *testing.T) {
	dir := t.TempDir()
	w := newWatcher(t, dir, "*.tsv")

	calls := make(chan []string, 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, changed []string) {
			calls <- changed
		})
	}()

	chain := filepath.Join(dir, "chain.tsv")
	molecule := filepath.Join(dir, "molecule.tsv")
	require.NoError(t, os.WriteFile(chain, []byte("Label\n"), 0o644))
	require.NoError(t, os.WriteFile(molecule, []byte("Label\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.md"), []byte("x"), 0o644))

	select {
	case changed := <-calls:
		assert.ElementsMatch(t, []string{chain, molecule}, changed)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "no change callback")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "Run did not return after cancel")
	}
}

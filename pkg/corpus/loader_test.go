package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.FatalLevel)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.txt", "second source")
	writeFile(t, dir, "a.TXT", "first source")
	writeFile(t, dir, "notes.md", "ignored")
	writeFile(t, dir, "README", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.txt"), 0755))
	// dangling symlink: listed, but reading it fails
	require.NoError(t, os.Symlink(filepath.Join(dir, "missing"), filepath.Join(dir, "broken.txt")))
	require.NoError(t, os.Symlink(filepath.Join(dir, "b.txt"), filepath.Join(dir, "c.txt")))
	require.NoError(t, os.Symlink(filepath.Join(dir, "nested.txt"), filepath.Join(dir, "linkdir.txt")))

	files, skipped, err := ReadDirectory(context.Background(), dir, LoaderOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)

	require.Len(t, files, 3)
	assert.Equal(t, "a.TXT", files[0].Name)
	assert.Equal(t, "first source", files[0].Content)
	assert.Equal(t, "b.txt", files[1].Name)
	assert.Equal(t, filepath.Join(dir, "b.txt"), files[1].Path)
	assert.Equal(t, "c.txt", files[2].Name)
	assert.Equal(t, "second source", files[2].Content)
}

func TestReadDirectoryExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "text")
	writeFile(t, dir, "b.md", "markdown")

	files, _, err := ReadDirectory(context.Background(), dir, LoaderOptions{Extensions: []string{".md"}, Workers: 1})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "b.md", files[0].Name)
}

func TestReadDirectoryMissing(t *testing.T) {
	files, skipped, err := ReadDirectory(context.Background(), filepath.Join(t.TempDir(), "nope"), LoaderOptions{})
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.Zero(t, skipped)
}

func TestReadDirectoryNotADirectory(t *testing.T) {
	path := writeFile(t, t.TempDir(), "file.txt", "x")
	_, _, err := ReadDirectory(context.Background(), path, LoaderOptions{})
	assert.ErrorIs(t, err, ErrNotDirectory)
}

func TestReadFilesCanceled(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := ReadFiles(ctx, []string{path}, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecognized(t *testing.T) {
	exts := []string{".txt", ".MD"}
	assert.True(t, Recognized("a.txt", exts))
	assert.True(t, Recognized("/x/y/A.Txt", exts))
	assert.True(t, Recognized("notes.md", exts))
	assert.False(t, Recognized("a.text", exts))
	assert.False(t, Recognized("Makefile", exts))
}

func TestSeedSamples(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sources")

	written, err := SeedSamples(dir)
	require.NoError(t, err)
	assert.True(t, written)

	files, _, err := ReadDirectory(context.Background(), dir, LoaderOptions{})
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "sample1.txt", files[0].Name)
	assert.Contains(t, files[0].Content, "truth universally acknowledged")

	written, err = SeedSamples(dir)
	require.NoError(t, err)
	assert.False(t, written, "existing dir is left alone")
}

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	got := make(chan []string, 4)

	w, err := NewWatcher(dir, func(paths []string) { got <- paths }, WatcherOptions{Debounce: 20 * time.Millisecond})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	writeFile(t, dir, "ignored.md", "nope")
	path := writeFile(t, dir, "new.txt", "fresh text")

	select {
	case paths := <-got:
		assert.Equal(t, []string{path}, paths)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not report the new file")
	}
}

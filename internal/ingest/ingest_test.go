package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docid/internal/testutil"
)

func TestIngestPath(t *testing.T) {
	fs := testutil.MemFs(t, map[string][]byte{
		"/in/a.txt":    []byte("hello"),
		"/in/b.docx":   []byte("zip"),
		"/in/noext":    []byte("x"),
		"/in/SCAN.PNG": []byte("png"),
	})
	ing := NewFSIngestor(fs, nil)
	ctx := context.Background()

	r, err := ing.IngestPath(ctx, "/in/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "txt", r.Ext)
	assert.Equal(t, int64(5), r.Size)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", r.HashHex)

	r, err = ing.IngestPath(ctx, "/in/SCAN.PNG")
	require.NoError(t, err)
	assert.Equal(t, "png", r.Ext)

	_, err = ing.IngestPath(ctx, "/in/b.docx")
	assert.ErrorContains(t, err, "unsupported")
	_, err = ing.IngestPath(ctx, "/in/noext")
	assert.Error(t, err)
	_, err = ing.IngestPath(ctx, "/in/missing.pdf")
	assert.ErrorContains(t, err, "open")
}

func TestIngestDirectory(t *testing.T) {
	fs := testutil.MemFs(t, map[string][]byte{
		"/root/a.txt":           []byte("same"),
		"/root/sub/b.txt":       []byte("same"),
		"/root/sub/c.pdf":       []byte("%PDF"),
		"/root/sub/notes.docx":  []byte("zip"),
		"/root/.cache/d.txt":    []byte("hidden dir"),
		"/root/sub/.hidden.txt": []byte("hidden file"),
	})
	ing := NewFSIngestor(fs, nil)

	entries, stats, err := ing.IngestDirectory(context.Background(), "/root", true)
	require.NoError(t, err)

	var paths []string
	for _, e := range entries {
		paths = append(paths, e.Path)
	}
	assert.Equal(t, []string{"/root/a.txt", "/root/sub/b.txt", "/root/sub/c.pdf"}, paths)
	assert.Equal(t, uint32(3), stats.Matched)
	assert.Equal(t, uint32(3), stats.Succeeded)
	assert.Equal(t, uint32(1), stats.Deduplicated)
	assert.False(t, entries[0].Deduplicated)
	assert.True(t, entries[1].Deduplicated)

	entries, stats, err = ing.IngestDirectory(context.Background(), "/root", false)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
	assert.Equal(t, uint32(5), stats.Matched)
}

func TestIngestDirectory_Restricted(t *testing.T) {
	fs := testutil.MemFs(t, map[string][]byte{
		"/r/a.txt": []byte("a"),
		"/r/b.pdf": []byte("b"),
	})
	ing := NewFSIngestor(fs, nil)
	ing.AllowedExts = ExtSet([]string{".PDF"})

	entries, _, err := ing.IngestDirectory(context.Background(), "/r", true)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "/r/b.pdf", entries[0].Path)
}

func TestIngestDirectory_Errors(t *testing.T) {
	ing := NewFSIngestor(testutil.MemFs(t, map[string][]byte{"/r/a.txt": []byte("a")}), nil)

	_, _, err := ing.IngestDirectory(context.Background(), " ", true)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = ing.IngestDirectory(ctx, "/r", true)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHelpers(t *testing.T) {
	assert.True(t, AllowedExt(".PDF", nil))
	assert.True(t, AllowedExt("jpeg", nil))
	assert.False(t, AllowedExt("docx", nil))
	assert.False(t, AllowedExt("txt", ExtSet([]string{"pdf"})))

	assert.True(t, IsHidden("/a/.git"))
	assert.False(t, IsHidden("/a/b.txt"))
	assert.False(t, IsHidden("."))

	assert.Nil(t, ExtSet(nil))
}

func TestStartWatcher(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "existing.txt"), []byte("x"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _, err := StartWatcher(ctx, WatchConfig{
		Roots:       []string{dir},
		InitialScan: true,
		Debounce:    20 * time.Millisecond,
		SkipHidden:  true,
	})
	require.NoError(t, err)

	next := func() string {
		select {
		case p := <-events:
			return p
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for watch event")
			return ""
		}
	}
	assert.Equal(t, filepath.Join(dir, "existing.txt"), next())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.docx"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.pdf"), []byte("%PDF"), 0o644))
	assert.Equal(t, filepath.Join(dir, "new.pdf"), next())

	cancel()
	for range events {
	}
}

func TestStartWatcher_NoRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{})
	assert.Error(t, err)
}

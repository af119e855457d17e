package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/joseph-ayodele/docid/constants"
)

// FSIngestor reads from an afero filesystem (the OS by default).
type FSIngestor struct {
	Fs          afero.Fs
	AllowedExts map[string]struct{} // lowercased sans '.'; nil -> every supported format
	Logger      *slog.Logger
}

func NewFSIngestor(fs afero.Fs, logger *slog.Logger) *FSIngestor {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{Fs: fs, Logger: logger}
}

func (i *FSIngestor) IngestPath(ctx context.Context, path string) (FileEntry, error) {
	out := FileEntry{Path: path}
	if err := ctx.Err(); err != nil {
		return out, err
	}

	ext := constants.NormalizeExt(filepath.Ext(path))
	if ext == "" || !AllowedExt(ext, i.AllowedExts) {
		i.Logger.Debug("unsupported or missing extension", "path", path, "ext", ext)
		return out, fmt.Errorf("unsupported or missing extension: %q", ext)
	}
	out.Ext = ext

	f, err := i.Fs.Open(path)
	if err != nil {
		return out, fmt.Errorf("open: %w", err)
	}
	defer func(f afero.File) {
		if err := f.Close(); err != nil {
			i.Logger.Warn("close file error", "path", path, "error", err)
		}
	}(f)

	info, err := f.Stat()
	if err != nil {
		return out, fmt.Errorf("stat: %w", err)
	}
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return out, fmt.Errorf("hash: %w", err)
	}

	out.Size = info.Size()
	out.ModTime = info.ModTime().UTC()
	out.HashHex = hex.EncodeToString(h.Sum(nil))
	return out, nil
}

// IngestDirectory walks root, skips hidden entries if requested and hashes
// every matching file. Entries come back in lexical order; per-file failures
// are recorded on the entry and do not stop the walk.
func (i *FSIngestor) IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]FileEntry, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root_path is required")
	}

	var results []FileEntry
	var stats DirStats
	seen := make(map[string]struct{})

	err := afero.Walk(i.Fs, root, func(path string, info os.FileInfo, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, FileEntry{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if !AllowedExt(filepath.Ext(path), i.AllowedExts) {
			return nil
		}
		stats.Matched++

		r, err := i.IngestPath(ctx, path)
		if err != nil {
			r.Err = err.Error()
			results = append(results, r)
			stats.Failed++
			return nil
		}
		if _, dup := seen[r.HashHex]; dup {
			r.Deduplicated = true
			stats.Deduplicated++
		}
		seen[r.HashHex] = struct{}{}

		results = append(results, r)
		stats.Succeeded++
		return nil
	})

	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	i.Logger.Debug("directory ingested", "root", root, "matched", stats.Matched, "failed", stats.Failed)
	return results, stats, nil
}

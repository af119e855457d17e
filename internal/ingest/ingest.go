// Package ingest discovers candidate documents on a filesystem.
package ingest

import (
	"context"
	"time"
)

// FileEntry is the per-file discovery outcome.
type FileEntry struct {
	Path         string    `json:"path"`
	Ext          string    `json:"ext"`
	Size         int64     `json:"size"`
	HashHex      string    `json:"sha256"`
	ModTime      time.Time `json:"mod_time"`
	Deduplicated bool      `json:"deduplicated"` // same bytes as an earlier entry
	Err          string    `json:"error,omitempty"`
}

// DirStats summarizes a directory walk.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// Ingestor is the behavior the batch runner depends on.
type Ingestor interface {
	// IngestPath hashes a single path.
	IngestPath(ctx context.Context, path string) (FileEntry, error)
	// IngestDirectory collects all matching files under root.
	IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]FileEntry, DirStats, error)
}

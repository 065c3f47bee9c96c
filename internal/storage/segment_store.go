package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Segment is one staged stream segment.
type Segment struct {
	Seq  int
	Path string
}

// SegmentStore is the transient on-disk staging area for one download's
// fetched segments, keyed by sequence number. The directory is exclusive to
// its download and is never read by another.
type SegmentStore struct {
	dir string
}

// NewSegmentStore wipes and recreates the staging directory so a restarted
// download never mixes segments from an earlier attempt.
func NewSegmentStore(dir string) (*SegmentStore, error) {
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("clear staging dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &SegmentStore{dir: dir}, nil
}

// Dir returns the staging directory path.
func (s *SegmentStore) Dir() string {
	return s.dir
}

// Write stages one segment's bytes under its zero-padded sequence name.
func (s *SegmentStore) Write(seq int, data []byte) error {
	path := filepath.Join(s.dir, fmt.Sprintf("%06d.ts", seq))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("stage segment %d: %w", seq, err)
	}
	return nil
}

// List returns the staged segments sorted by numeric sequence, not lexical
// name. Files that do not parse as a sequence number are ignored.
func (s *SegmentStore) List() ([]Segment, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read staging dir: %w", err)
	}

	segments := make([]Segment, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".ts" {
			continue
		}
		stem := strings.TrimSuffix(entry.Name(), ".ts")
		seq, err := strconv.Atoi(stem)
		if err != nil {
			continue
		}
		segments = append(segments, Segment{Seq: seq, Path: filepath.Join(s.dir, entry.Name())})
	}

	sort.Slice(segments, func(i, j int) bool { return segments[i].Seq < segments[j].Seq })
	return segments, nil
}

// Clear removes the staging directory and everything in it. Called only after
// a successful assembly; failures keep the segments around for diagnosis.
func (s *SegmentStore) Clear() error {
	return os.RemoveAll(s.dir)
}

// Package checkpoint implements the Checkpoint Store: a crash-safe,
// self-verifying record of completed documentation nodes. All mutations are
// serialized through a single in-process mutex per store, and every write
// goes to a temp file followed by os.Rename so a crash mid-write never
// corrupts the checkpoint on disk.
package checkpoint

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"codedocs/internal/docmodel"
)

// Store owns the on-disk checkpoint for a single documentation run.
type Store struct {
	mu       sync.Mutex
	docsRoot string
	path     string
	data     docmodel.CheckpointData
}

// New returns a Store with an empty CheckpointData, ignoring any checkpoint
// file already present under docsRoot. Used for non-resuming runs, which
// still persist to the same file for a later resumed run to pick up.
func New(docsRoot string) *Store {
	return &Store{
		docsRoot: docsRoot,
		path:     filepath.Join(docsRoot, docmodel.CheckpointName),
		data:     docmodel.NewCheckpointData(),
	}
}

// LoadOrInit reads the checkpoint file under docsRoot if present, otherwise
// starts from an empty CheckpointData.
func LoadOrInit(docsRoot string) (*Store, error) {
	s := &Store{
		docsRoot: docsRoot,
		path:     filepath.Join(docsRoot, docmodel.CheckpointName),
		data:     docmodel.NewCheckpointData(),
	}
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	var data docmodel.CheckpointData
	if err := json.Unmarshal(b, &data); err != nil {
		// A corrupt checkpoint is treated as absent rather than fatal; the
		// run simply redoes every node, which is always safe.
		return s, nil
	}
	if data.CompletedFiles == nil {
		data.CompletedFiles = make(map[string]bool)
	}
	if data.CompletedDirs == nil {
		data.CompletedDirs = make(map[string]bool)
	}
	if data.DocPathMap == nil {
		data.DocPathMap = make(map[string]string)
	}
	s.data = data
	return s, nil
}

// VerifyFileCompleted reports whether relativePath has a completed record
// whose artifact still exists with non-zero length. A stale or missing
// artifact evicts the record and returns false — the self-healing property
// the checkpoint depends on.
func (s *Store) VerifyFileCompleted(relativePath, artifactPath string) bool {
	return s.verify(s.data.CompletedFiles, relativePath, artifactPath)
}

// VerifyDirCompleted is the directory-node counterpart of VerifyFileCompleted.
func (s *Store) VerifyDirCompleted(relativePath, artifactPath string) bool {
	return s.verify(s.data.CompletedDirs, relativePath, artifactPath)
}

func (s *Store) verify(set map[string]bool, relativePath, artifactPath string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !set[relativePath] {
		return false
	}
	info, err := os.Stat(filepath.Join(s.docsRoot, artifactPath))
	if err != nil || info.Size() == 0 {
		delete(set, relativePath)
		delete(s.data.DocPathMap, relativePath)
		_ = s.persistLocked()
		return false
	}
	return true
}

// MarkFileCompleted records relativePath as done and persists atomically.
func (s *Store) MarkFileCompleted(relativePath, artifactPath string) error {
	return s.mark(s.data.CompletedFiles, relativePath, artifactPath)
}

// MarkDirCompleted is the directory-node counterpart of MarkFileCompleted.
func (s *Store) MarkDirCompleted(relativePath, artifactPath string) error {
	return s.mark(s.data.CompletedDirs, relativePath, artifactPath)
}

func (s *Store) mark(set map[string]bool, relativePath, artifactPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set[relativePath] = true
	s.data.DocPathMap[relativePath] = artifactPath
	return s.persistLocked()
}

// MarkReadmeCompleted flags the README-generation phase as done.
func (s *Store) MarkReadmeCompleted() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.ReadmeCompleted = true
	return s.persistLocked()
}

// IsReadmeCompleted reports the README-phase flag.
func (s *Store) IsReadmeCompleted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.ReadmeCompleted
}

// MarkReadingGuideCompleted flags the reading-guide-generation phase as done.
func (s *Store) MarkReadingGuideCompleted() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.ReadingGuideCompleted = true
	return s.persistLocked()
}

// IsReadingGuideCompleted reports the reading-guide-phase flag.
func (s *Store) IsReadingGuideCompleted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.ReadingGuideCompleted
}

// MarkProjectGraphCompleted flags the aggregation phase as done.
func (s *Store) MarkProjectGraphCompleted() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.ProjectGraphCompleted = true
	return s.persistLocked()
}

// IsProjectGraphCompleted reports the aggregation-phase flag.
func (s *Store) IsProjectGraphCompleted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.ProjectGraphCompleted
}

// MarkAPIDocCompleted flags the supplemental API-doc generation phase as done.
func (s *Store) MarkAPIDocCompleted() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.APIDocCompleted = true
	return s.persistLocked()
}

// IsAPIDocCompleted reports the API-doc-phase flag.
func (s *Store) IsAPIDocCompleted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.APIDocCompleted
}

// persistLocked writes the checkpoint via temp-file-then-rename so a crash
// mid-write leaves the previous, valid checkpoint in place. Caller must hold
// s.mu.
func (s *Store) persistLocked() error {
	b, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.docsRoot, ".checkpoint-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path)
}

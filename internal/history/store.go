// Package history records completed documentation runs, dual-mode like the
// teacher's project store: Postgres when a DSN is configured, a JSON file
// otherwise. In Postgres mode recorded and listed runs are also added to an
// in-process LRU cache; List always queries the database and never reads the
// cache. The file mode has no cache.
package history

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/jackc/pgx/v5/stdlib"

	"codedocs/internal/docmodel"
)

// Run is one completed (or failed) documentation run, as reported by
// GET /api/docs/history.
type Run struct {
	TaskID       string    `json:"task_id"`
	SourcePath   string    `json:"source_path"`
	DocsPath     string    `json:"docs_path"`
	Status       string    `json:"status"`
	TotalFiles   int       `json:"total_files"`
	TotalDirs    int       `json:"total_dirs"`
	Failed       int       `json:"failed"`
	Skipped      int       `json:"skipped"`
	Error        string    `json:"error,omitempty"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// Store is the dual-mode recorder: s.db != nil selects the Postgres path.
type Store struct {
	path string
	db   *sql.DB

	loadOnce sync.Once
	mu       sync.RWMutex
	byID     map[string]Run

	schemaOnce sync.Once
	schemaErr  error

	cache *lru.Cache[string, Run]
}

// New returns a file-backed Store persisting to path.
func New(path string) *Store {
	return &Store{path: path, byID: make(map[string]Run)}
}

// NewPostgres returns a Postgres-backed Store using dsn, with an LRU cache
// that recordDB and listDB populate; no read path consults it.
func NewPostgres(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	cache, err := lru.New[string, Run](1024)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, cache: cache}, nil
}

// NewFromEnv returns a Postgres-backed Store if dsn is non-empty and
// reachable, falling back to a file-backed Store at path otherwise.
func NewFromEnv(dsn, path string) *Store {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return New(path)
	}
	s, err := NewPostgres(dsn)
	if err != nil {
		return New(path)
	}
	return s
}

// Record persists a completed run.
func (s *Store) Record(run Run) {
	if s == nil {
		return
	}
	if run.RecordedAt.IsZero() {
		run.RecordedAt = time.Now()
	}
	if s.db != nil {
		s.recordDB(run)
		return
	}
	s.recordFile(run)
}

// RecordTask converts a terminal Task snapshot into a Run and persists it.
// Non-terminal (pending/running) snapshots are ignored.
func (s *Store) RecordTask(task docmodel.Task) {
	if s == nil {
		return
	}
	switch task.Status {
	case docmodel.TaskCompleted, docmodel.TaskFailed, docmodel.TaskCancelled:
	default:
		return
	}
	s.Record(Run{
		TaskID:     task.ID,
		SourcePath: task.SourcePath,
		DocsPath:   task.DocsPath,
		Status:     string(task.Status),
		TotalFiles: task.Stats.TotalFiles,
		TotalDirs:  task.Stats.TotalDirs,
		Failed:     task.Stats.Failed,
		Skipped:    task.Stats.Skipped,
		Error:      task.Error,
	})
}

// List returns every recorded run, most recent first.
func (s *Store) List() []Run {
	if s == nil {
		return nil
	}
	if s.db != nil {
		return s.listDB()
	}
	return s.listFile()
}

func (s *Store) ensureSchema() error {
	if s == nil || s.db == nil {
		return nil
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.Exec(`
CREATE TABLE IF NOT EXISTS doc_run_history (
  task_id TEXT PRIMARY KEY,
  source_path TEXT NOT NULL,
  docs_path TEXT NOT NULL,
  status TEXT NOT NULL,
  total_files INTEGER NOT NULL DEFAULT 0,
  total_dirs INTEGER NOT NULL DEFAULT 0,
  failed INTEGER NOT NULL DEFAULT 0,
  skipped INTEGER NOT NULL DEFAULT 0,
  error TEXT NOT NULL DEFAULT '',
  recorded_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_doc_run_history_recorded_at ON doc_run_history (recorded_at DESC);
`)
	})
	return s.schemaErr
}

func (s *Store) recordDB(run Run) {
	if err := s.ensureSchema(); err != nil {
		return
	}
	_, _ = s.db.Exec(`
INSERT INTO doc_run_history (task_id, source_path, docs_path, status, total_files, total_dirs, failed, skipped, error, recorded_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (task_id) DO UPDATE SET
  status=EXCLUDED.status, total_files=EXCLUDED.total_files, total_dirs=EXCLUDED.total_dirs,
  failed=EXCLUDED.failed, skipped=EXCLUDED.skipped, error=EXCLUDED.error, recorded_at=EXCLUDED.recorded_at
`, run.TaskID, run.SourcePath, run.DocsPath, run.Status, run.TotalFiles, run.TotalDirs, run.Failed, run.Skipped, run.Error, run.RecordedAt)
	if s.cache != nil {
		s.cache.Add(run.TaskID, run)
	}
}

func (s *Store) listDB() []Run {
	if err := s.ensureSchema(); err != nil {
		return nil
	}
	rows, err := s.db.Query(`SELECT task_id, source_path, docs_path, status, total_files, total_dirs, failed, skipped, error, recorded_at
FROM doc_run_history ORDER BY recorded_at DESC LIMIT 200`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.TaskID, &r.SourcePath, &r.DocsPath, &r.Status, &r.TotalFiles, &r.TotalDirs, &r.Failed, &r.Skipped, &r.Error, &r.RecordedAt); err != nil {
			continue
		}
		out = append(out, r)
		if s.cache != nil {
			s.cache.Add(r.TaskID, r)
		}
	}
	return out
}

func (s *Store) ensureLoadedFile() {
	s.loadOnce.Do(func() {
		b, err := os.ReadFile(s.path)
		if err != nil {
			return
		}
		var rows []Run
		if err := json.Unmarshal(b, &rows); err != nil {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, r := range rows {
			if r.TaskID == "" {
				continue
			}
			s.byID[r.TaskID] = r
		}
	})
}

func (s *Store) recordFile(run Run) {
	s.ensureLoadedFile()
	s.mu.Lock()
	s.byID[run.TaskID] = run
	rows := make([]Run, 0, len(s.byID))
	for _, r := range s.byID {
		rows = append(rows, r)
	}
	s.mu.Unlock()

	b, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return
	}
	_ = os.MkdirAll(filepath.Dir(s.path), 0o755)
	_ = os.WriteFile(s.path, b, 0o644)
}

func (s *Store) listFile() []Run {
	s.ensureLoadedFile()
	s.mu.RLock()
	out := make([]Run, 0, len(s.byID))
	for _, r := range s.byID {
		out = append(out, r)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].RecordedAt.After(out[j].RecordedAt) })
	return out
}

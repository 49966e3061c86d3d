// Package runstate holds the mutable, concurrently-accessed state of one
// documentation run: the Task record the HTTP layer reports back to
// clients, guarded by a single mutex so the Depth Scheduler's concurrent
// node goroutines can update it safely.
package runstate

import (
	"sync"

	"codedocs/internal/docmodel"
)

// State wraps a docmodel.Task with the locking its concurrent readers and
// writers need. It satisfies depthscheduler.StatusChecker structurally.
type State struct {
	mu   sync.Mutex
	task docmodel.Task
}

// New creates run state for a freshly accepted generate request.
func New(id, sourcePath, docsPath string) *State {
	return &State{
		task: docmodel.Task{
			ID:           id,
			SourcePath:   sourcePath,
			DocsPath:     docsPath,
			Status:       docmodel.TaskPending,
			CurrentFiles: make(map[string]struct{}),
		},
	}
}

// Snapshot returns a safe copy of the current task state.
func (s *State) Snapshot() docmodel.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.task.Snapshot()
}

// SetRunning transitions a pending task to running.
func (s *State) SetRunning() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.task.Status = docmodel.TaskRunning
}

// SetTotals seeds the stats totals computed by the Tree Walker.
func (s *State) SetTotals(totalFiles, totalDirs int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.task.Stats.TotalFiles = totalFiles
	s.task.Stats.TotalDirs = totalDirs
}

// BeginNode marks a node as in-flight.
func (s *State) BeginNode(relativePath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.task.CurrentFiles[relativePath] = struct{}{}
}

// EndNode clears a node's in-flight marker.
func (s *State) EndNode(relativePath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.task.CurrentFiles, relativePath)
}

// RecordFileProcessed increments file/progress counters. resumed additionally
// counts the node under Skipped, per the "resumed" accounting convention for
// nodes that verified as already-complete.
func (s *State) RecordFileProcessed(resumed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.task.Stats.ProcessedFiles++
	if resumed {
		s.task.Stats.Skipped++
	}
	s.recomputeProgressLocked()
}

// RecordDirProcessed is the directory-node counterpart of RecordFileProcessed.
func (s *State) RecordDirProcessed(resumed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.task.Stats.ProcessedDirs++
	if resumed {
		s.task.Stats.Skipped++
	}
	s.recomputeProgressLocked()
}

func (s *State) recomputeProgressLocked() {
	total := s.task.Stats.TotalFiles + s.task.Stats.TotalDirs
	if total <= 0 {
		return
	}
	done := s.task.Stats.ProcessedFiles + s.task.Stats.ProcessedDirs
	pct := done * 100 / total
	if pct > 100 {
		pct = 100
	}
	s.task.Progress = pct
}

// ProgressSnapshot returns the fields a "progress" event carries.
func (s *State) ProgressSnapshot() (progress int, currentFiles []string, stats docmodel.Stats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.task.Progress, s.task.CurrentFilesList(), s.task.Stats
}

// Fail records the first failure; subsequent calls are no-ops so the
// fail-fast contract keeps the first error.
func (s *State) Fail(relativePath, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.task.Status == docmodel.TaskFailed || s.task.Status == docmodel.TaskCancelled {
		return
	}
	s.task.Status = docmodel.TaskFailed
	s.task.Stats.Failed++
	if relativePath != "" {
		s.task.Error = relativePath + ": " + message
	} else {
		s.task.Error = message
	}
}

// Cancel requests cooperative cancellation.
func (s *State) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.task.Status == docmodel.TaskFailed || s.task.Status == docmodel.TaskCompleted {
		return
	}
	s.task.Status = docmodel.TaskCancelled
}

// Complete marks the task as finished successfully.
func (s *State) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.task.Status == docmodel.TaskFailed || s.task.Status == docmodel.TaskCancelled {
		return
	}
	s.task.Status = docmodel.TaskCompleted
	s.task.Progress = 100
}

// Failed reports whether the run has failed.
func (s *State) Failed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.task.Status == docmodel.TaskFailed
}

// Cancelled reports whether the run has been cancelled.
func (s *State) Cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.task.Status == docmodel.TaskCancelled
}

// ErrorMessage returns the recorded failure message, if any.
func (s *State) ErrorMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.task.Error
}

package httpapi

import (
	"errors"
	"net/http"

	"codedocs/internal/docmodel"
	"codedocs/internal/docpipeline"
)

var errSourcePathRequired = errors.New("httpapi: source_path is required")

type generateRequest struct {
	SourcePath string `json:"source_path"`
	DocsPath   string `json:"docs_path,omitempty"`
	Resume     *bool  `json:"resume,omitempty"`
}

type generateResponse struct {
	TaskID   string `json:"task_id"`
	DocsPath string `json:"docs_path"`
}

func (a *API) handleDocsGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.SourcePath == "" {
		writeError(w, http.StatusBadRequest, errSourcePathRequired)
		return
	}
	resume := true
	if req.Resume != nil {
		resume = *req.Resume
	}

	taskID, docsPath, err := a.pipeline.Start(docpipeline.Request{
		SourcePath: req.SourcePath,
		DocsPath:   req.DocsPath,
		Resume:     resume,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{TaskID: taskID, DocsPath: docsPath})
}

func (a *API) handleDocsTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	state, err := a.pipeline.Registry.State(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, taskSnapshotJSONFrom(state.Snapshot()))
}

func (a *API) handleDocsTaskCancel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := a.pipeline.Registry.Cancel(id); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// taskSnapshotJSON is docmodel.Task reshaped into the wire form: CurrentFiles
// as a sorted-free list instead of a set, and nested stats per §6.
type taskSnapshotJSON struct {
	ID           string              `json:"id"`
	SourcePath   string              `json:"source_path"`
	DocsPath     string              `json:"docs_path"`
	Status       docmodel.TaskStatus `json:"status"`
	Progress     int                 `json:"progress"`
	Stats        docmodel.Stats      `json:"stats"`
	CurrentFiles []string            `json:"current_files"`
	Error        string              `json:"error,omitempty"`
}

func taskSnapshotJSONFrom(t docmodel.Task) taskSnapshotJSON {
	return taskSnapshotJSON{
		ID:           t.ID,
		SourcePath:   t.SourcePath,
		DocsPath:     t.DocsPath,
		Status:       t.Status,
		Progress:     t.Progress,
		Stats:        t.Stats,
		CurrentFiles: t.CurrentFilesList(),
		Error:        t.Error,
	}
}

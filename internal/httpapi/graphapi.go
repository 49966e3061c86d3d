package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"codedocs/internal/docmodel"
)

var errFilePathRequired = errors.New("httpapi: file_path is required")

type graphRequest struct {
	DocsPath string `json:"docs_path"`
	FilePath string `json:"file_path,omitempty"`
	DirPath  string `json:"dir_path,omitempty"`
}

func (a *API) handleProjectGraph(w http.ResponseWriter, r *http.Request) {
	var req graphRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeGraphFile(w, req.DocsPath, docmodel.ProjectGraphName, &docmodel.ProjectGraph{})
}

func (a *API) handleFileGraph(w http.ResponseWriter, r *http.Request) {
	var req graphRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.FilePath == "" {
		writeError(w, http.StatusBadRequest, errFilePathRequired)
		return
	}
	rel := filepath.ToSlash(req.FilePath) + ".graph.json"
	writeGraphFile(w, req.DocsPath, rel, &docmodel.GraphFragment{})
}

func (a *API) handleDirGraph(w http.ResponseWriter, r *http.Request) {
	var req graphRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	dir := filepath.ToSlash(req.DirPath)
	if dir == "." {
		dir = ""
	}
	rel := docmodel.DirGraphName
	if dir != "" {
		rel = path.Join(dir, docmodel.DirGraphName)
	}
	writeGraphFile(w, req.DocsPath, rel, &docmodel.GraphFragment{})
}

// writeGraphFile reads relPath under docsPath, decodes it into dst (to
// normalize the response shape), and writes it as the JSON response.
func writeGraphFile(w http.ResponseWriter, docsPath, relPath string, dst any) {
	b, err := os.ReadFile(filepath.Join(docsPath, filepath.FromSlash(relPath)))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err := json.Unmarshal(b, dst); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, dst)
}

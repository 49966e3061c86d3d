package docpipeline

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"codedocs/internal/config"
	"codedocs/internal/docmodel"
	"codedocs/internal/llmclient"
)

func fakeChatServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/event-stream")
		frame := `{"choices":[{"delta":{"content":"# Overview\nGenerated content.\n"}}]}`
		fmt.Fprintf(w, "data: %s\n\n", frame)
		flusher.Flush()
		fmt.Fprint(w, "data: [DONE]\n\n")
		flusher.Flush()
	}))
}

func TestGenerateEndToEndSmallTree(t *testing.T) {
	srv := fakeChatServer(t)
	defer srv.Close()

	sourceRoot := t.TempDir()
	if err := os.WriteFile(filepath.Join(sourceRoot, "main.go"), []byte("package main\nfunc main() {}\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg := config.LLMConfig{APIKey: "k", BaseURL: srv.URL, Model: "gpt-4o-mini", Temperature: 0.5, MaxTokens: 1024}
	svc := NewService(llmclient.New(), func() config.LLMConfig { return cfg }, 2)

	taskID, docsPath, err := svc.Start(Request{SourcePath: sourceRoot, Resume: true})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	state, err := svc.Registry.State(taskID)
	if err != nil {
		t.Fatalf("State: %v", err)
	}

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		snap := state.Snapshot()
		if snap.Status == docmodel.TaskCompleted || snap.Status == docmodel.TaskFailed {
			if snap.Status == docmodel.TaskFailed {
				t.Fatalf("task failed: %s", snap.Error)
			}
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	snap := state.Snapshot()
	if snap.Status != docmodel.TaskCompleted {
		t.Fatalf("task did not complete in time, status=%s", snap.Status)
	}

	for _, name := range []string{"main.go.md", docmodel.ProjectGraphName, docmodel.ReadmeName, docmodel.ReadingGuideName} {
		if info, err := os.Stat(filepath.Join(docsPath, name)); err != nil || info.Size() == 0 {
			t.Fatalf("expected non-empty %s under docs path, err=%v", name, err)
		}
	}
}

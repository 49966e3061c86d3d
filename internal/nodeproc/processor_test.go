package nodeproc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"codedocs/internal/checkpoint"
	"codedocs/internal/docmodel"
	"codedocs/internal/progressbus"
	"codedocs/internal/runstate"
	"codedocs/internal/safeio"
)

type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) Analyze(ctx context.Context, prompt string) (string, error) {
	return f.response, f.err
}

func newProcessor(t *testing.T, sourceRoot, docsRoot string, llm LLMCaller) *Processor {
	t.Helper()
	fsys, err := safeio.NewSafeFS(sourceRoot)
	if err != nil {
		t.Fatalf("NewSafeFS: %v", err)
	}
	cp, err := checkpoint.LoadOrInit(docsRoot)
	if err != nil {
		t.Fatalf("LoadOrInit: %v", err)
	}
	return &Processor{
		Source:     fsys,
		DocsRoot:   docsRoot,
		Checkpoint: cp,
		Bus:        progressbus.New(),
		State:      runstate.New("t1", sourceRoot, docsRoot),
		LLM:        llm,
	}
}

func TestProcessFileWritesArtifactAndMarksCheckpoint(t *testing.T) {
	sourceRoot := t.TempDir()
	docsRoot := t.TempDir()
	if err := os.WriteFile(filepath.Join(sourceRoot, "a.go"), []byte("package a"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	response := "# a.go\n\nOverview.\n\n<!-- GRAPH_DATA_START -->\n```json\n" +
		`{"nodes":[{"id":"file::a.go","label":"a.go","type":"file"}],"edges":[]}` +
		"\n```\n<!-- GRAPH_DATA_END -->\n"

	proc := newProcessor(t, sourceRoot, docsRoot, &fakeLLM{response: response})
	node := docmodel.SourceNode{Kind: docmodel.KindFile, AbsolutePath: "a.go", RelativePath: "a.go", Depth: 1, Name: "a.go"}

	if err := proc.Process(context.Background(), node, ""); err != nil {
		t.Fatalf("Process: %v", err)
	}

	artifact := filepath.Join(docsRoot, "a.go.md")
	if info, err := os.Stat(artifact); err != nil || info.Size() == 0 {
		t.Fatalf("expected non-empty artifact, err=%v", err)
	}
	if _, err := os.Stat(filepath.Join(docsRoot, "a.go.graph.json")); err != nil {
		t.Fatalf("expected graph fragment written: %v", err)
	}
	if !proc.Checkpoint.VerifyFileCompleted("a.go", "a.go.md") {
		t.Fatal("expected checkpoint to verify file completed")
	}
}

func TestProcessFileResumesFromCheckpoint(t *testing.T) {
	sourceRoot := t.TempDir()
	docsRoot := t.TempDir()
	if err := os.WriteFile(filepath.Join(sourceRoot, "a.go"), []byte("package a"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(filepath.Join(docsRoot, "a.go.md"), []byte("# cached\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	proc := newProcessor(t, sourceRoot, docsRoot, &fakeLLM{})
	if err := proc.Checkpoint.MarkFileCompleted("a.go", "a.go.md"); err != nil {
		t.Fatalf("MarkFileCompleted: %v", err)
	}

	node := docmodel.SourceNode{Kind: docmodel.KindFile, AbsolutePath: "a.go", RelativePath: "a.go", Depth: 1, Name: "a.go"}
	if err := proc.Process(context.Background(), node, ""); err != nil {
		t.Fatalf("Process: %v", err)
	}

	snap := proc.State.Snapshot()
	if snap.Stats.ProcessedFiles != 1 || snap.Stats.Skipped != 1 {
		t.Fatalf("expected resumed accounting, got %+v", snap.Stats)
	}
}

func TestProcessFileFailsOnEmptyResponse(t *testing.T) {
	sourceRoot := t.TempDir()
	docsRoot := t.TempDir()
	if err := os.WriteFile(filepath.Join(sourceRoot, "a.go"), []byte("package a"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	proc := newProcessor(t, sourceRoot, docsRoot, &fakeLLM{response: "   "})
	node := docmodel.SourceNode{Kind: docmodel.KindFile, AbsolutePath: "a.go", RelativePath: "a.go", Depth: 1, Name: "a.go"}

	if err := proc.Process(context.Background(), node, ""); err == nil {
		t.Fatal("expected error for empty LLM response")
	}
	if !proc.State.Failed() {
		t.Fatal("expected task state to be failed")
	}
}

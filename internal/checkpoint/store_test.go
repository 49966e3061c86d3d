package checkpoint

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMarkAndVerifyFileCompleted(t *testing.T) {
	dir := t.TempDir()
	s, err := LoadOrInit(dir)
	if err != nil {
		t.Fatalf("LoadOrInit: %v", err)
	}

	artifact := "foo.md"
	if err := os.WriteFile(filepath.Join(dir, artifact), []byte("# Foo\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := s.MarkFileCompleted("foo.py", artifact); err != nil {
		t.Fatalf("MarkFileCompleted: %v", err)
	}
	if !s.VerifyFileCompleted("foo.py", artifact) {
		t.Fatal("expected VerifyFileCompleted to be true")
	}

	reloaded, err := LoadOrInit(dir)
	if err != nil {
		t.Fatalf("LoadOrInit reload: %v", err)
	}
	if !reloaded.VerifyFileCompleted("foo.py", artifact) {
		t.Fatal("expected reloaded checkpoint to verify completed")
	}
}

func TestVerifyFileCompletedEvictsStaleRecord(t *testing.T) {
	dir := t.TempDir()
	s, err := LoadOrInit(dir)
	if err != nil {
		t.Fatalf("LoadOrInit: %v", err)
	}
	if err := s.MarkFileCompleted("bar.py", "bar.md"); err != nil {
		t.Fatalf("MarkFileCompleted: %v", err)
	}
	// Artifact file was never written to disk, simulating a crash between
	// the artifact write and the checkpoint mutation.
	if s.VerifyFileCompleted("bar.py", "bar.md") {
		t.Fatal("expected verification to fail for missing artifact")
	}
	if s.VerifyFileCompleted("bar.py", "bar.md") {
		t.Fatal("expected record to stay evicted")
	}
}

func TestProjectGraphCompletedFlag(t *testing.T) {
	dir := t.TempDir()
	s, err := LoadOrInit(dir)
	if err != nil {
		t.Fatalf("LoadOrInit: %v", err)
	}
	if s.IsProjectGraphCompleted() {
		t.Fatal("expected false before mark")
	}
	if err := s.MarkProjectGraphCompleted(); err != nil {
		t.Fatalf("MarkProjectGraphCompleted: %v", err)
	}
	if !s.IsProjectGraphCompleted() {
		t.Fatal("expected true after mark")
	}
}

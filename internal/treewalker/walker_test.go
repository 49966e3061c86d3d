package treewalker

import (
	"os"
	"path/filepath"
	"testing"

	"codedocs/internal/docmodel"
	"codedocs/internal/safeio"
)

func mustWriteFile(t *testing.T, root string, rel string, size int) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	data := make([]byte, size)
	for i := range data {
		data[i] = 'x'
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestWalkClassifiesAndBucketsByDepth(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, root, "main.go", 10)
	mustWriteFile(t, root, "README.txt", 10) // unrecognized extension
	mustWriteFile(t, root, "pkg/util.go", 10)
	mustWriteFile(t, root, "node_modules/lib/index.js", 10) // ignored dir
	mustWriteFile(t, root, ".docs/_dir_summary.md", 10)     // output dir, must be excluded

	fsys, err := safeio.NewSafeFS(root)
	if err != nil {
		t.Fatalf("NewSafeFS: %v", err)
	}

	plan, err := Walk(fsys, ".docs")
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	if plan.Stats.TotalDirs != 2 { // root + pkg
		t.Fatalf("TotalDirs = %d, want 2", plan.Stats.TotalDirs)
	}
	if plan.Stats.TotalFiles != 3 { // main.go, README.txt (skipped), pkg/util.go
		t.Fatalf("TotalFiles = %d, want 3", plan.Stats.TotalFiles)
	}

	var sawMainGo, sawPkgDir, sawUtilGo bool
	for _, nodes := range plan.ByDepth {
		for _, n := range nodes {
			switch {
			case n.Kind == docmodel.KindFile && n.RelativePath == "main.go":
				sawMainGo = true
			case n.Kind == docmodel.KindDir && n.RelativePath == "pkg":
				sawPkgDir = true
			case n.Kind == docmodel.KindFile && n.RelativePath == "pkg/util.go":
				sawUtilGo = true
			case n.RelativePath == "node_modules" || n.RelativePath == ".docs":
				t.Fatalf("ignored directory leaked into plan: %+v", n)
			}
		}
	}
	if !sawMainGo || !sawPkgDir || !sawUtilGo {
		t.Fatalf("missing expected nodes: main.go=%v pkg=%v util.go=%v", sawMainGo, sawPkgDir, sawUtilGo)
	}
}

func TestWalkDepthsDescending(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, root, "a/b/c.go", 10)

	fsys, err := safeio.NewSafeFS(root)
	if err != nil {
		t.Fatalf("NewSafeFS: %v", err)
	}
	plan, err := Walk(fsys, "")
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	depths := plan.Depths()
	for i := 1; i < len(depths); i++ {
		if depths[i] > depths[i-1] {
			t.Fatalf("depths not descending: %v", depths)
		}
	}
}

func TestWalkSkipsOversizedFile(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, root, "big.go", MaxFileSize+1)

	fsys, err := safeio.NewSafeFS(root)
	if err != nil {
		t.Fatalf("NewSafeFS: %v", err)
	}
	plan, err := Walk(fsys, "")
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	for _, nodes := range plan.ByDepth {
		for _, n := range nodes {
			if n.Kind == docmodel.KindFile {
				t.Fatalf("oversized file should not become a task: %+v", n)
			}
		}
	}
	if plan.Stats.TotalFiles != 1 {
		t.Fatalf("TotalFiles = %d, want 1 (counted as skipped)", plan.Stats.TotalFiles)
	}
}

// Package treewalker builds the documentation work plan by walking a source
// tree, classifying files by extension, and bucketing nodes by depth for the
// Depth Scheduler.
package treewalker

import (
	"path"
	"sort"
	"strings"

	"codedocs/internal/docmodel"
	"codedocs/internal/safeio"
)

// MaxFileSize is the size above which a recognized source file is still
// skipped (too large to usefully prompt an LLM with).
const MaxFileSize = 1024 * 1024

var ignoreNames = map[string]bool{
	".git":         true,
	".docs":        true,
	"node_modules": true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
	"target":       true,
	"dist":         true,
	"build":        true,
	".idea":        true,
	".vscode":      true,
	".next":        true,
	"out":          true,
	".cache":       true,
}

var ignoreGlobs = []string{"*.pyc", "*.pyo", "*.so", "*.dll", "*.exe"}

var recognizedExtensions = map[string]bool{
	"py": true, "js": true, "ts": true, "jsx": true, "tsx": true,
	"java": true, "go": true, "rs": true, "c": true, "cpp": true,
	"h": true, "hpp": true, "cs": true, "rb": true, "php": true,
	"swift": true, "kt": true, "scala": true, "vue": true, "svelte": true,
}

// Stats summarizes the plan for a run before any node has been processed.
type Stats struct {
	TotalFiles int
	TotalDirs  int
}

// Plan is the Tree Walker's output: per-depth buckets of files and
// directories, deepest depth last omitted here (callers sort as needed), and
// overall stats including unrecognized files counted as skipped.
type Plan struct {
	ByDepth map[int][]docmodel.SourceNode // both files and directories; depth -> nodes
	Stats   Stats
}

// Depths returns the plan's depths sorted descending, the order the Depth
// Scheduler must drive them in.
func (p *Plan) Depths() []int {
	depths := make([]int, 0, len(p.ByDepth))
	for d := range p.ByDepth {
		depths = append(depths, d)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(depths)))
	return depths
}

// Walk builds a Plan rooted at fsys (a safeio.SafeFS locked to sourceRoot).
// docsRelPath, if non-empty, is the docs output directory's path relative to
// sourceRoot and is always excluded from the plan even if it doesn't match
// the fixed ignore set (e.g. a custom docs_path inside the source tree).
func Walk(fsys *safeio.SafeFS, docsRelPath string) (*Plan, error) {
	plan := &Plan{ByDepth: make(map[int][]docmodel.SourceNode)}
	docsRelPath = strings.Trim(path.Clean(filepathToSlash(docsRelPath)), "/")

	var walk func(relDir string, depth int) error
	walk = func(relDir string, depth int) error {
		root := docmodel.SourceNode{
			Kind:         docmodel.KindDir,
			AbsolutePath: relDir,
			RelativePath: relDir,
			Depth:        depth,
			Name:         baseName(relDir),
		}
		plan.ByDepth[depth] = append(plan.ByDepth[depth], root)
		plan.Stats.TotalDirs++

		entries, err := fsys.SafeReadDir(dirArg(relDir))
		if err != nil {
			return err
		}
		for _, ent := range entries {
			name := ent.Name()
			childRel := name
			if relDir != "" {
				childRel = relDir + "/" + name
			}

			if ent.IsDir() {
				if shouldIgnoreDir(name, childRel, docsRelPath) {
					continue
				}
				if err := walk(childRel, depth+1); err != nil {
					return err
				}
				continue
			}

			if shouldIgnoreFile(name) {
				continue
			}
			ext := extensionOf(name)
			if !recognizedExtensions[ext] {
				plan.Stats.TotalFiles++ // unrecognized but still counted, per spec
				continue
			}
			info, err := fsys.SafeStat(dirArg(childRel))
			if err != nil {
				continue
			}
			if info.Size() == 0 || info.Size() > MaxFileSize {
				plan.Stats.TotalFiles++
				continue
			}
			plan.ByDepth[depth+1] = append(plan.ByDepth[depth+1], docmodel.SourceNode{
				Kind:         docmodel.KindFile,
				AbsolutePath: childRel,
				RelativePath: childRel,
				Depth:        depth + 1,
				Name:         name,
			})
			plan.Stats.TotalFiles++
		}
		return nil
	}

	if err := walk("", 0); err != nil {
		return nil, err
	}
	return plan, nil
}

func shouldIgnoreDir(name, relPath, docsRelPath string) bool {
	if docsRelPath != "" && relPath == docsRelPath {
		return true
	}
	if ignoreNames[name] {
		return true
	}
	if strings.HasPrefix(name, ".") && name != ".docs" {
		return true
	}
	return false
}

func shouldIgnoreFile(name string) bool {
	for _, g := range ignoreGlobs {
		if matchSuffixGlob(g, name) {
			return true
		}
	}
	return false
}

func matchSuffixGlob(glob, name string) bool {
	suffix, ok := strings.CutPrefix(glob, "*")
	if !ok {
		return glob == name
	}
	return strings.HasSuffix(name, suffix)
}

func extensionOf(name string) string {
	ext := path.Ext(name)
	return strings.TrimPrefix(ext, ".")
}

func baseName(relPath string) string {
	if relPath == "" {
		return ""
	}
	return path.Base(relPath)
}

func dirArg(relPath string) string {
	if relPath == "" {
		return "."
	}
	return relPath
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// Package aggregator implements the final pipeline phase: collecting every
// node's graph fragment into one project-level graph, and generating the
// project-level README and reading-guide artifacts.
package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"codedocs/internal/checkpoint"
	"codedocs/internal/docmodel"
	"codedocs/internal/docprompt"
	"codedocs/internal/docwriter"
	"codedocs/internal/treewalker"
)

// LLMCaller is the same single-call interface nodeproc.LLMCaller exposes;
// duplicated here to avoid a dependency between the two packages.
type LLMCaller interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}

// Run performs the Aggregator's steps (spec §4.9): union every graph
// fragment into one project graph, add directory nodes and contains edges,
// write _project_graph.json, then generate the README and reading-guide
// from the concatenation of every node's Markdown. Each project-level
// artifact is gated on its own checkpoint flag, mirroring the original's
// is_readme_completed/is_reading_guide_completed/is_project_graph_completed
// checks (processor.rs), so a resumed run over an unchanged tree redoes no
// LLM work and rewrites no project-level file.
func Run(ctx context.Context, docsRoot, projectName string, plan *treewalker.Plan, cp *checkpoint.Store, llm LLMCaller) error {
	if !cp.IsProjectGraphCompleted() {
		graph, err := unionFragments(docsRoot, plan)
		if err != nil {
			return fmt.Errorf("aggregator: union fragments: %w", err)
		}
		b, err := json.MarshalIndent(graph, "", "  ")
		if err != nil {
			return fmt.Errorf("aggregator: marshal project graph: %w", err)
		}
		if err := docwriter.WriteAtomic(docsRoot, docmodel.ProjectGraphName, b); err != nil {
			return fmt.Errorf("aggregator: write project graph: %w", err)
		}
		if err := docwriter.VerifyNonEmpty(docsRoot, docmodel.ProjectGraphName); err != nil {
			return fmt.Errorf("aggregator: verify project graph: %w", err)
		}
		if err := cp.MarkProjectGraphCompleted(); err != nil {
			return fmt.Errorf("aggregator: mark project graph completed: %w", err)
		}
	}

	needReadme := !cp.IsReadmeCompleted()
	needGuide := !cp.IsReadingGuideCompleted()

	if needReadme || needGuide {
		allDocs, err := concatDocs(docsRoot, plan)
		if err != nil {
			return fmt.Errorf("aggregator: read node docs: %w", err)
		}

		if needReadme {
			readmePrompt := docprompt.Readme(projectName, docsRoot, allDocs)
			readme, err := llm.Analyze(ctx, readmePrompt)
			if err != nil {
				return fmt.Errorf("aggregator: generate readme: %w", err)
			}
			if err := writeProjectDoc(docsRoot, docmodel.ReadmeName, readme); err != nil {
				return err
			}
			if err := cp.MarkReadmeCompleted(); err != nil {
				return fmt.Errorf("aggregator: mark readme completed: %w", err)
			}
		}

		if needGuide {
			structure := renderStructure(plan)
			guidePrompt := docprompt.ReadingGuide(projectName, structure, allDocs)
			guide, err := llm.Analyze(ctx, guidePrompt)
			if err != nil {
				return fmt.Errorf("aggregator: generate reading guide: %w", err)
			}
			if err := writeProjectDoc(docsRoot, docmodel.ReadingGuideName, guide); err != nil {
				return err
			}
			if err := cp.MarkReadingGuideCompleted(); err != nil {
				return fmt.Errorf("aggregator: mark reading guide completed: %w", err)
			}
		}
	}

	if !cp.IsAPIDocCompleted() {
		if err := generateAPIDoc(ctx, docsRoot, projectName, plan, llm); err != nil {
			return fmt.Errorf("aggregator: generate api doc: %w", err)
		}
		if err := cp.MarkAPIDocCompleted(); err != nil {
			return fmt.Errorf("aggregator: mark api doc completed: %w", err)
		}
	}

	return nil
}

// generateAPIDoc is the supplemented API-documentation step (spec.md doesn't
// require it, but original_source/backend-rs's doc_generator does): extract
// every file's API surface, then merge the non-empty extracts into one
// project-level API.md. Produces no file when no file declares an endpoint.
func generateAPIDoc(ctx context.Context, docsRoot, projectName string, plan *treewalker.Plan, llm LLMCaller) error {
	var details strings.Builder
	found := false

	for _, depth := range plan.Depths() {
		for _, n := range plan.ByDepth[depth] {
			if n.Kind != docmodel.KindFile {
				continue
			}
			artifact := docmodel.ArtifactPath(n)
			content, err := os.ReadFile(filepath.Join(docsRoot, filepath.FromSlash(artifact)))
			if err != nil {
				continue
			}
			extract, err := llm.Analyze(ctx, docprompt.APIExtract(n.RelativePath, string(content)))
			if err != nil {
				return fmt.Errorf("extract api surface for %s: %w", n.RelativePath, err)
			}
			if strings.Contains(extract, "defines no API endpoints") {
				continue
			}
			found = true
			fmt.Fprintf(&details, "### %s\n\n%s\n\n", n.RelativePath, extract)
		}
	}

	if !found {
		return nil
	}

	summary, err := llm.Analyze(ctx, docprompt.APISummary(projectName, details.String()))
	if err != nil {
		return fmt.Errorf("summarize api surface: %w", err)
	}
	return writeProjectDoc(docsRoot, docmodel.APIDocName, summary)
}

func writeProjectDoc(docsRoot, name, content string) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return fmt.Errorf("aggregator: %s generation produced empty content", name)
	}
	if err := docwriter.WriteAtomic(docsRoot, name, []byte(trimmed)); err != nil {
		return fmt.Errorf("aggregator: write %s: %w", name, err)
	}
	return docwriter.VerifyNonEmpty(docsRoot, name)
}

// unionFragments collects every *.graph.json under docsRoot that corresponds
// to a plan node, de-duplicates nodes by id and edges by (source, type,
// target), and adds directory nodes plus synthesized contains edges for the
// plan's own parent/child structure.
func unionFragments(docsRoot string, plan *treewalker.Plan) (*docmodel.ProjectGraph, error) {
	nodesByID := make(map[string]docmodel.GraphNode)
	type edgeKey struct{ source, typ, target string }
	edgeSet := make(map[edgeKey]docmodel.GraphEdge)

	children := make(map[string][]docmodel.SourceNode)
	var allNodes []docmodel.SourceNode

	for _, depth := range plan.Depths() {
		for _, n := range plan.ByDepth[depth] {
			allNodes = append(allNodes, n)
			fragPath := filepath.Join(docsRoot, filepath.FromSlash(docmodel.GraphFragmentPath(n)))
			b, err := os.ReadFile(fragPath)
			if err != nil {
				continue // no fragment for this node is not an error
			}
			var frag docmodel.GraphFragment
			if err := json.Unmarshal(b, &frag); err != nil {
				continue
			}
			for _, gn := range frag.Nodes {
				nodesByID[gn.ID] = gn
			}
			for _, ge := range frag.Edges {
				edgeSet[edgeKey{ge.Source, ge.Type, ge.Target}] = ge
			}

			if n.RelativePath != "" {
				parent := path.Dir(n.RelativePath)
				if parent == "." {
					parent = ""
				}
				children[parent] = append(children[parent], n)
			}
		}
	}

	for _, n := range allNodes {
		if n.Kind != docmodel.KindDir {
			continue
		}
		id := directoryNodeID(n.RelativePath)
		nodesByID[id] = docmodel.GraphNode{ID: id, Label: dirLabel(n), Type: docmodel.GraphNodeDirectory}
	}

	for parent, kids := range children {
		parentID := directoryNodeID(parent)
		if _, ok := nodesByID[parentID]; !ok {
			continue
		}
		for _, kid := range kids {
			var childID string
			if kid.Kind == docmodel.KindDir {
				childID = directoryNodeID(kid.RelativePath)
			} else {
				childID = "file::" + kid.RelativePath
				nodesByID[childID] = docmodel.GraphNode{ID: childID, Label: kid.Name, Type: docmodel.GraphNodeFile}
			}
			key := edgeKey{parentID, docmodel.EdgeContains, childID}
			edgeSet[key] = docmodel.GraphEdge{Source: parentID, Target: childID, Type: docmodel.EdgeContains}
		}
	}

	graph := &docmodel.ProjectGraph{}
	for _, n := range nodesByID {
		graph.Nodes = append(graph.Nodes, n)
	}
	for _, e := range edgeSet {
		graph.Edges = append(graph.Edges, e)
	}
	return graph, nil
}

func directoryNodeID(relPath string) string {
	if relPath == "" {
		return "directory::."
	}
	return "directory::" + relPath
}

func dirLabel(n docmodel.SourceNode) string {
	if n.RelativePath == "" {
		return "."
	}
	return n.Name
}

// concatDocs reads every node's Markdown artifact in plan order and
// concatenates them with a path header, for use as LLM context.
func concatDocs(docsRoot string, plan *treewalker.Plan) (string, error) {
	var b strings.Builder
	for _, depth := range plan.Depths() {
		for _, n := range plan.ByDepth[depth] {
			artifact := docmodel.ArtifactPath(n)
			content, readErr := os.ReadFile(filepath.Join(docsRoot, filepath.FromSlash(artifact)))
			if readErr != nil {
				continue
			}
			label := n.RelativePath
			if label == "" {
				label = "."
			}
			fmt.Fprintf(&b, "## %s\n\n%s\n\n", label, string(content))
		}
	}
	return b.String(), nil
}

// renderStructure renders a simple indented tree of the plan for the
// reading-guide prompt's project-structure section.
func renderStructure(plan *treewalker.Plan) string {
	var b strings.Builder
	depths := plan.Depths()
	for i := len(depths) - 1; i >= 0; i-- {
		for _, n := range plan.ByDepth[depths[i]] {
			if n.RelativePath == "" {
				continue
			}
			indent := strings.Repeat("  ", n.Depth-1)
			marker := n.Name
			if n.Kind == docmodel.KindDir {
				marker += "/"
			}
			fmt.Fprintf(&b, "%s%s\n", indent, marker)
		}
	}
	return b.String()
}

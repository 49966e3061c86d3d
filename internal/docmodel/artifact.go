package docmodel

import "path"

const (
	DirSummaryName  = "_dir_summary.md"
	DirGraphName    = "_dir.graph.json"
	ProjectGraphName = "_project_graph.json"
	CheckpointName  = ".checkpoint.json"
	ReadmeName      = "README.md"
	ReadingGuideName = "READING_GUIDE.md"
	APIDocName      = "API.md"
)

// ArtifactPath returns the Markdown artifact path for a node, relative to
// docsRoot is joined by the caller; this returns the path under docsRoot.
func ArtifactPath(n SourceNode) string {
	if n.Kind == KindFile {
		return n.RelativePath + ".md"
	}
	if n.RelativePath == "" {
		return DirSummaryName
	}
	return path.Join(n.RelativePath, DirSummaryName)
}

// GraphFragmentPath returns the per-node JSON graph fragment path, relative
// to docsRoot.
func GraphFragmentPath(n SourceNode) string {
	if n.Kind == KindFile {
		return n.RelativePath + ".graph.json"
	}
	if n.RelativePath == "" {
		return DirGraphName
	}
	return path.Join(n.RelativePath, DirGraphName)
}

// GraphNode is one node in a GraphFragment or ProjectGraph.
type GraphNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
	Line  *int   `json:"line,omitempty"`
}

// Recognized GraphNode.Type values.
const (
	GraphNodeFile      = "file"
	GraphNodeClass     = "class"
	GraphNodeInterface = "interface"
	GraphNodeStruct    = "struct"
	GraphNodeEnum      = "enum"
	GraphNodeFunction  = "function"
	GraphNodeMethod    = "method"
	GraphNodeConstant  = "constant"
	GraphNodeModule    = "module"
	GraphNodeDirectory = "directory"
)

// GraphEdge is one edge in a GraphFragment or ProjectGraph.
type GraphEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
	Label  string `json:"label,omitempty"`
}

// Recognized GraphEdge.Type values.
const (
	EdgeContains   = "contains"
	EdgeImports    = "imports"
	EdgeCalls      = "calls"
	EdgeInherits   = "inherits"
	EdgeImplements = "implements"
	EdgeDepends    = "depends"
)

// GraphFragment is the per-node JSON graph document embedded in LLM output.
type GraphFragment struct {
	Nodes   []GraphNode `json:"nodes"`
	Edges   []GraphEdge `json:"edges"`
	Imports []any       `json:"imports,omitempty"`
}

// ProjectGraph is the aggregated, de-duplicated union of all fragments.
type ProjectGraph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

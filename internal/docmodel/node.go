// Package docmodel defines the data types shared across the documentation
// pipeline: the work plan (SourceNode), the artifacts it produces
// (DocArtifact, GraphFragment, ProjectGraph), and the bookkeeping types a
// run is tracked by (Task, ProgressEvent).
package docmodel

// NodeKind distinguishes a file node from a directory node in the plan.
type NodeKind string

const (
	KindFile NodeKind = "file"
	KindDir  NodeKind = "directory"
)

// SourceNode is a single item in the Tree Walker's plan.
type SourceNode struct {
	Kind         NodeKind
	AbsolutePath string
	RelativePath string // forward-slash, relative to source root; "" for the root itself
	Depth        int    // 0 at root
	Name         string
}


// Package docpipeline wires the Tree Walker, Depth Scheduler, Node
// Processor, and Aggregator into the end-to-end documentation-generation
// operation, and tracks every in-flight run in a Registry.
package docpipeline

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"codedocs/internal/aggregator"
	"codedocs/internal/checkpoint"
	"codedocs/internal/config"
	"codedocs/internal/depthscheduler"
	"codedocs/internal/docmodel"
	"codedocs/internal/llmclient"
	"codedocs/internal/nodeproc"
	"codedocs/internal/progressbus"
	"codedocs/internal/runstate"
	"codedocs/internal/safeio"
	"codedocs/internal/treewalker"
)

// Request is the input to Generate, mirroring the /api/docs/generate body.
type Request struct {
	SourcePath string
	DocsPath   string // optional; defaults to <source_path>/.docs
	Resume     bool
}

// Service owns the task Registry and the LLM client configuration shared by
// every run it starts.
type Service struct {
	Registry    *Registry
	llmClient   *llmclient.Client
	llmConfig   func() config.LLMConfig
	concurrency int
	onTerminal  func(docmodel.Task)
	mirror      func(ctx context.Context, taskID, docsPath string) error
}

// NewService builds a Service. cfg is called at the start of each run so a
// live config update (PUT /api/config) takes effect on the next generate
// call without restarting the process.
func NewService(llmClient *llmclient.Client, cfg func() config.LLMConfig, concurrency int) *Service {
	if concurrency <= 0 {
		concurrency = depthscheduler.DefaultConcurrency
	}
	return &Service{
		Registry:    NewRegistry(),
		llmClient:   llmClient,
		llmConfig:   cfg,
		concurrency: concurrency,
	}
}

// OnTerminal registers a callback invoked with a snapshot of the task once a
// run reaches a terminal state (completed, failed, or cancelled). Used to
// feed the run-history recorder without coupling this package to it.
func (s *Service) OnTerminal(fn func(docmodel.Task)) {
	s.onTerminal = fn
}

// OnCompleted registers a callback invoked with the docs path after a run
// completes successfully, before the completed event is published. Used to
// mirror the docs root to off-box storage. A returned error fails the run.
func (s *Service) OnCompleted(fn func(ctx context.Context, taskID, docsPath string) error) {
	s.mirror = fn
}

// Start accepts a generate request, registers a new task, and launches the
// pipeline in a background goroutine. It returns immediately with the task
// id and resolved docs path.
func (s *Service) Start(req Request) (taskID, docsPath string, err error) {
	sourcePath := filepath.Clean(req.SourcePath)
	info, err := os.Stat(sourcePath)
	if err != nil {
		return "", "", fmt.Errorf("docpipeline: source path: %w", err)
	}
	if !info.IsDir() {
		return "", "", fmt.Errorf("docpipeline: source path is not a directory: %s", sourcePath)
	}

	docsPath = req.DocsPath
	if docsPath == "" {
		docsPath = filepath.Join(sourcePath, ".docs")
	}
	if err := os.MkdirAll(docsPath, 0o755); err != nil {
		return "", "", fmt.Errorf("docpipeline: create docs path: %w", err)
	}

	id := uuid.NewString()
	state := runstate.New(id, sourcePath, docsPath)
	bus := progressbus.New()

	ctx, cancel := context.WithCancel(context.Background())
	s.Registry.register(id, state, bus, cancel)

	go s.run(ctx, id, sourcePath, docsPath, req.Resume, state, bus)

	return id, docsPath, nil
}

func (s *Service) run(ctx context.Context, taskID, sourcePath, docsPath string, resume bool, state *runstate.State, bus *progressbus.Bus) {
	defer bus.CloseAll()
	defer func() {
		if s.onTerminal != nil {
			s.onTerminal(state.Snapshot())
		}
	}()
	state.SetRunning()

	fail := func(relPath string, err error) {
		state.Fail(relPath, err.Error())
		bus.Publish(docmodel.ProgressEvent{Kind: docmodel.EventError, Path: relPath, Message: err.Error()})
	}

	fsys, err := safeio.NewSafeFS(sourcePath)
	if err != nil {
		fail("", fmt.Errorf("open source tree: %w", err))
		return
	}

	docsRel := relativeDocsPath(sourcePath, docsPath)
	plan, err := treewalker.Walk(fsys, docsRel)
	if err != nil {
		fail("", fmt.Errorf("walk source tree: %w", err))
		return
	}
	state.SetTotals(plan.Stats.TotalFiles, plan.Stats.TotalDirs)

	var cp *checkpoint.Store
	if resume {
		cp, err = checkpoint.LoadOrInit(docsPath)
	} else {
		// resume=false starts from an empty checkpoint even if one exists on
		// disk; it still persists to the same file, so a later resumed run
		// benefits from this one's work.
		cp = checkpoint.New(docsPath)
	}
	if err != nil {
		fail("", fmt.Errorf("load checkpoint: %w", err))
		return
	}

	llm := newLLMAdapter(s.llmClient, s.llmConfig())
	proc := &nodeproc.Processor{
		Source:     fsys,
		DocsRoot:   docsPath,
		Checkpoint: cp,
		Bus:        bus,
		State:      state,
		LLM:        llm,
	}

	err = depthscheduler.Run(ctx, plan, s.concurrency, state, func(ctx context.Context, node docmodel.SourceNode) error {
		childDocs := ""
		if node.Kind == docmodel.KindDir {
			childDocs = readChildDocs(docsPath, plan, node)
		}
		return proc.Process(ctx, node, childDocs)
	})

	switch {
	case state.Cancelled():
		bus.Publish(docmodel.ProgressEvent{Kind: docmodel.EventCancelled})
		return
	case state.Failed():
		bus.Publish(docmodel.ProgressEvent{Kind: docmodel.EventError, Message: state.ErrorMessage()})
		return
	case err != nil:
		fail("", err)
		return
	}

	projectName := filepath.Base(sourcePath)
	if aggErr := aggregator.Run(ctx, docsPath, projectName, plan, cp, llm); aggErr != nil {
		fail("", aggErr)
		return
	}

	if s.mirror != nil {
		if mirrorErr := s.mirror(ctx, taskID, docsPath); mirrorErr != nil {
			fail("", fmt.Errorf("mirror docs root: %w", mirrorErr))
			return
		}
	}

	state.Complete()
	progress, currentFiles, stats := state.ProgressSnapshot()
	bus.Publish(docmodel.ProgressEvent{Kind: docmodel.EventCompleted, Progress: progress, CurrentFiles: currentFiles, Stats: &stats})
}

// readChildDocs concatenates the Markdown artifacts of a directory's
// immediate children, already written because the Depth Scheduler drains
// depth D+1 before starting depth D.
func readChildDocs(docsRoot string, plan *treewalker.Plan, dir docmodel.SourceNode) string {
	var b strings.Builder
	childDepth := dir.Depth + 1
	for _, n := range plan.ByDepth[childDepth] {
		parent := path.Dir(n.RelativePath)
		if parent == "." {
			parent = ""
		}
		if parent != dir.RelativePath {
			continue
		}
		artifact := docmodel.ArtifactPath(n)
		content, err := os.ReadFile(filepath.Join(docsRoot, filepath.FromSlash(artifact)))
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "### %s\n\n%s\n\n", n.Name, string(content))
	}
	return b.String()
}

func relativeDocsPath(sourcePath, docsPath string) string {
	rel, err := filepath.Rel(sourcePath, docsPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	return filepath.ToSlash(rel)
}

// Package nodeproc implements the Node Processor: the per-file and
// per-directory pipeline that turns one SourceNode into a Markdown artifact
// and an optional graph fragment, honoring the checkpoint and reporting
// progress.
package nodeproc

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"codedocs/internal/checkpoint"
	"codedocs/internal/docmodel"
	"codedocs/internal/docprompt"
	"codedocs/internal/docwriter"
	"codedocs/internal/graphfrag"
	"codedocs/internal/progressbus"
	"codedocs/internal/runstate"
	"codedocs/internal/safeio"
)

// ErrEmptyResponse is a Protocol-class error (§7): the LLM stream produced
// no non-whitespace content.
var ErrEmptyResponse = errors.New("nodeproc: empty LLM response")

// LLMCaller is the subset of the LLM Client the Node Processor depends on:
// a single blocking call that returns the full concatenated response text.
type LLMCaller interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}

// Processor runs individual nodes against a shared set of collaborators.
type Processor struct {
	Source     *safeio.SafeFS
	DocsRoot   string
	Checkpoint *checkpoint.Store
	Bus        *progressbus.Bus
	State      *runstate.State
	LLM        LLMCaller
}

// Process runs the full per-node pipeline for a single SourceNode,
// dispatching to the file or directory variant. It never returns an error
// for a resumed (already-verified) node; any other failure is returned so
// the Depth Scheduler can promote it to task failure.
func (p *Processor) Process(ctx context.Context, node docmodel.SourceNode, childDocs string) error {
	if node.Kind == docmodel.KindFile {
		return p.processFile(ctx, node)
	}
	return p.processDir(ctx, node, childDocs)
}

func (p *Processor) processFile(ctx context.Context, node docmodel.SourceNode) error {
	rel := node.RelativePath
	artifact := docmodel.ArtifactPath(node)
	fragPath := docmodel.GraphFragmentPath(node)

	if p.Checkpoint.VerifyFileCompleted(rel, artifact) {
		p.Bus.Publish(docmodel.ProgressEvent{Kind: docmodel.EventFileCompleted, Path: rel})
		p.State.RecordFileProcessed(true)
		p.emitProgress()
		return nil
	}

	p.State.BeginNode(rel)
	defer p.State.EndNode(rel)
	p.Bus.Publish(docmodel.ProgressEvent{Kind: docmodel.EventFileStarted, Path: rel})

	content, err := p.Source.SafeReadFile(node.AbsolutePath)
	if err != nil {
		return p.fail(rel, fmt.Errorf("read source: %w", err))
	}

	prompt := docprompt.FileAnalysis(rel, string(content))
	response, err := p.LLM.Analyze(ctx, prompt)
	if err != nil {
		return p.fail(rel, fmt.Errorf("llm call: %w", err))
	}
	if strings.TrimSpace(response) == "" {
		return p.fail(rel, ErrEmptyResponse)
	}

	doc, fragment, err := graphfrag.Parse(response)
	if err != nil {
		return p.fail(rel, fmt.Errorf("parse response: %w", err))
	}

	if err := docwriter.WriteAtomic(p.DocsRoot, artifact, []byte(doc)); err != nil {
		return p.fail(rel, fmt.Errorf("write artifact: %w", err))
	}
	if err := docwriter.VerifyNonEmpty(p.DocsRoot, artifact); err != nil {
		return p.fail(rel, err)
	}

	if fragment != nil {
		if err := writeFragment(p.DocsRoot, fragPath, fragment); err != nil {
			return p.fail(rel, fmt.Errorf("write graph fragment: %w", err))
		}
	}

	if err := p.Checkpoint.MarkFileCompleted(rel, artifact); err != nil {
		return p.fail(rel, fmt.Errorf("checkpoint: %w", err))
	}

	p.Bus.Publish(docmodel.ProgressEvent{Kind: docmodel.EventFileCompleted, Path: rel})
	p.State.RecordFileProcessed(false)
	p.emitProgress()
	return nil
}

func (p *Processor) processDir(ctx context.Context, node docmodel.SourceNode, childDocs string) error {
	rel := node.RelativePath
	artifact := docmodel.ArtifactPath(node)
	fragPath := docmodel.GraphFragmentPath(node)

	if p.Checkpoint.VerifyDirCompleted(rel, artifact) {
		p.Bus.Publish(docmodel.ProgressEvent{Kind: docmodel.EventDirCompleted, Path: rel})
		p.State.RecordDirProcessed(true)
		p.emitProgress()
		return nil
	}

	p.State.BeginNode(rel)
	defer p.State.EndNode(rel)
	p.Bus.Publish(docmodel.ProgressEvent{Kind: docmodel.EventDirStarted, Path: rel})

	dirName := path.Base(rel)
	if rel == "" {
		dirName = "."
	}
	prompt := docprompt.DirectorySummary(dirName, rel, childDocs)
	response, err := p.LLM.Analyze(ctx, prompt)
	if err != nil {
		return p.fail(rel, fmt.Errorf("llm call: %w", err))
	}
	if strings.TrimSpace(response) == "" {
		return p.fail(rel, ErrEmptyResponse)
	}

	doc, fragment, err := graphfrag.Parse(response)
	if err != nil {
		return p.fail(rel, fmt.Errorf("parse response: %w", err))
	}

	if err := docwriter.WriteAtomic(p.DocsRoot, artifact, []byte(doc)); err != nil {
		return p.fail(rel, fmt.Errorf("write artifact: %w", err))
	}
	if err := docwriter.VerifyNonEmpty(p.DocsRoot, artifact); err != nil {
		return p.fail(rel, err)
	}

	if fragment != nil {
		if err := writeFragment(p.DocsRoot, fragPath, fragment); err != nil {
			return p.fail(rel, fmt.Errorf("write graph fragment: %w", err))
		}
	}

	if err := p.Checkpoint.MarkDirCompleted(rel, artifact); err != nil {
		return p.fail(rel, fmt.Errorf("checkpoint: %w", err))
	}

	p.Bus.Publish(docmodel.ProgressEvent{Kind: docmodel.EventDirCompleted, Path: rel})
	p.State.RecordDirProcessed(false)
	p.emitProgress()
	return nil
}

func (p *Processor) fail(relativePath string, err error) error {
	p.State.Fail(relativePath, err.Error())
	p.Bus.Publish(docmodel.ProgressEvent{Kind: docmodel.EventError, Path: relativePath, Message: err.Error()})
	return err
}

func (p *Processor) emitProgress() {
	progress, currentFiles, stats := p.State.ProgressSnapshot()
	p.Bus.Publish(docmodel.ProgressEvent{
		Kind:         docmodel.EventProgress,
		Progress:     progress,
		CurrentFiles: currentFiles,
		Stats:        &stats,
	})
}

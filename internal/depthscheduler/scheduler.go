// Package depthscheduler drives a treewalker.Plan layer by layer, deepest
// first, with bounded concurrency inside each layer so that a directory's
// summary is never generated before every child it contains.
package depthscheduler

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"codedocs/internal/docmodel"
	"codedocs/internal/treewalker"
)

// DefaultConcurrency is used when a caller does not configure one.
const DefaultConcurrency = 6

// NodeFunc processes a single node (file or directory). Implementations are
// the Node Processor (§4.8); this package only owns interleaving, depth
// ordering, and fail-fast/cancellation propagation.
type NodeFunc func(ctx context.Context, node docmodel.SourceNode) error

// StatusChecker reports the current run status so the scheduler can refuse
// to start new work once the run has failed or been cancelled.
type StatusChecker interface {
	Failed() bool
	Cancelled() bool
}

// Run drives plan depth-descending, merging files and directories at each
// depth into one task stream bounded by concurrency. It returns the first
// node error encountered (fail-fast); in-flight nodes at that depth are
// allowed to finish, but no subsequent depth is started.
func Run(ctx context.Context, plan *treewalker.Plan, concurrency int, status StatusChecker, fn NodeFunc) error {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	for _, depth := range plan.Depths() {
		if status.Failed() || status.Cancelled() {
			return nil
		}

		nodes := plan.ByDepth[depth]
		// A plain errgroup.Group, not errgroup.WithContext: a node failure
		// must not cancel ctx out from under sibling in-flight nodes — the
		// fail-fast contract lets their current LLM call finish rather than
		// forcing I/O interruption.
		var g errgroup.Group
		g.SetLimit(concurrency)

		for _, node := range nodes {
			node := node
			g.Go(func() error {
				if status.Failed() || status.Cancelled() {
					return nil
				}
				if err := fn(ctx, node); err != nil {
					return fmt.Errorf("node %s: %w", node.RelativePath, err)
				}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return err
		}
		if status.Failed() {
			return nil
		}
	}
	return nil
}

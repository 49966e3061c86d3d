package depthscheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"codedocs/internal/docmodel"
	"codedocs/internal/treewalker"
)

type fakeStatus struct {
	failed    atomic.Bool
	cancelled atomic.Bool
}

func (s *fakeStatus) Failed() bool    { return s.failed.Load() }
func (s *fakeStatus) Cancelled() bool { return s.cancelled.Load() }

func TestRunProcessesDeepestDepthFirst(t *testing.T) {
	plan := &treewalker.Plan{ByDepth: map[int][]docmodel.SourceNode{
		0: {{Kind: docmodel.KindDir, RelativePath: "", Depth: 0}},
		1: {{Kind: docmodel.KindFile, RelativePath: "a.go", Depth: 1}, {Kind: docmodel.KindDir, RelativePath: "pkg", Depth: 1}},
	}}

	var mu sync.Mutex
	var order []int

	err := Run(context.Background(), plan, 4, &fakeStatus{}, func(ctx context.Context, n docmodel.SourceNode) error {
		mu.Lock()
		order = append(order, n.Depth)
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	for i, d := range order {
		if i > 0 && d > order[i-1] {
			t.Fatalf("depth %d processed after shallower depth %d: order=%v", d, order[i-1], order)
		}
	}
}

func TestRunFailFastStopsNextDepth(t *testing.T) {
	plan := &treewalker.Plan{ByDepth: map[int][]docmodel.SourceNode{
		1: {{Kind: docmodel.KindFile, RelativePath: "bad.go", Depth: 1}},
		0: {{Kind: docmodel.KindDir, RelativePath: "", Depth: 0}},
	}}

	status := &fakeStatus{}
	var depth0Ran atomic.Bool

	err := Run(context.Background(), plan, 4, status, func(ctx context.Context, n docmodel.SourceNode) error {
		if n.Depth == 1 {
			status.failed.Store(true)
			return errors.New("boom")
		}
		depth0Ran.Store(true)
		return nil
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if depth0Ran.Load() {
		t.Fatal("depth 0 must not run after depth 1 failure")
	}
}

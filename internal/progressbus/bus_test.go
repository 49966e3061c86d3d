package progressbus

import (
	"testing"
	"time"

	"codedocs/internal/docmodel"
)

func TestLateSubscriberReplaysTerminalEvents(t *testing.T) {
	b := New()
	b.Publish(docmodel.ProgressEvent{Kind: docmodel.EventFileStarted, Path: "a.py"})
	b.Publish(docmodel.ProgressEvent{Kind: docmodel.EventFileCompleted, Path: "a.py"})
	b.Publish(docmodel.ProgressEvent{Kind: docmodel.EventProgress, Progress: 50})

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	seen := map[docmodel.EventKind]docmodel.ProgressEvent{}
	for i := 0; i < 2; i++ {
		select {
		case ev := <-ch:
			seen[ev.Kind] = ev
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for replay")
		}
	}

	completed, ok := seen[docmodel.EventFileCompleted]
	if !ok || completed.Path != "a.py" {
		t.Fatalf("expected file_completed replay for a.py, got %+v", seen)
	}
	progress, ok := seen[docmodel.EventProgress]
	if !ok || progress.Progress != 50 {
		t.Fatalf("expected progress replay at 50, got %+v", seen)
	}
	if _, ok := seen[docmodel.EventFileStarted]; ok {
		t.Fatal("file_started must not be replayed")
	}
}

func TestTerminalEventCachedForLateSubscriber(t *testing.T) {
	b := New()
	b.Publish(docmodel.ProgressEvent{Kind: docmodel.EventCompleted})

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	select {
	case ev := <-ch:
		if ev.Kind != docmodel.EventCompleted {
			t.Fatalf("expected completed event, got %v", ev.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for terminal replay")
	}
}

func TestPublishDoesNotBlockOnSlowSubscriber(t *testing.T) {
	b := New()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for i := 0; i < subscriberBuffer+10; i++ {
		b.Publish(docmodel.ProgressEvent{Kind: docmodel.EventProgress, Progress: i})
	}
}

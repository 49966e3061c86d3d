// Package progressbus implements the Progress Bus: a per-task broadcast
// channel with a replay buffer, so a subscriber that connects late still
// learns the task's current state instead of racing task creation against
// websocket subscription.
package progressbus

import (
	"sync"

	"codedocs/internal/docmodel"
)

const subscriberBuffer = 64

// Bus fans out ProgressEvents for a single task to any number of
// subscribers, replaying cached terminal state to new subscribers.
type Bus struct {
	mu sync.Mutex

	fileCompleted map[string]docmodel.ProgressEvent
	dirCompleted  map[string]docmodel.ProgressEvent
	lastProgress  *docmodel.ProgressEvent
	terminal      *docmodel.ProgressEvent

	subs map[chan docmodel.ProgressEvent]struct{}
}

// New returns an empty Bus ready to accept subscribers and publishes.
func New() *Bus {
	return &Bus{
		fileCompleted: make(map[string]docmodel.ProgressEvent),
		dirCompleted:  make(map[string]docmodel.ProgressEvent),
		subs:          make(map[chan docmodel.ProgressEvent]struct{}),
	}
}

// Subscribe registers a new receiver and returns a channel delivering a
// replay of cached state followed by live events. Callers must drain the
// channel; Unsubscribe releases it.
func (b *Bus) Subscribe() chan docmodel.ProgressEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Room for the whole replay on top of the live buffer, so the replay
	// sends below never block while b.mu is held.
	replay := len(b.fileCompleted) + len(b.dirCompleted) + 2
	ch := make(chan docmodel.ProgressEvent, subscriberBuffer+replay)

	for _, ev := range b.fileCompleted {
		ch <- ev
	}
	for _, ev := range b.dirCompleted {
		ch <- ev
	}
	if b.lastProgress != nil {
		ch <- *b.lastProgress
	}
	if b.terminal != nil {
		ch <- *b.terminal
	}
	b.subs[ch] = struct{}{}
	return ch
}

// Unsubscribe removes and closes a subscriber channel obtained from
// Subscribe.
func (b *Bus) Unsubscribe(ch chan docmodel.ProgressEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
}

// Publish broadcasts ev to every live subscriber and updates the replay
// cache. file_started/dir_started are forwarded live but never cached,
// since a late subscriber will see either the terminal completion event or
// the node's name in the next progress snapshot's CurrentFiles.
func (b *Bus) Publish(ev docmodel.ProgressEvent) {
	b.mu.Lock()
	switch ev.Kind {
	case docmodel.EventFileCompleted:
		b.fileCompleted[ev.Path] = ev
	case docmodel.EventDirCompleted:
		b.dirCompleted[ev.Path] = ev
	case docmodel.EventProgress:
		cp := ev
		b.lastProgress = &cp
	case docmodel.EventCompleted, docmodel.EventError, docmodel.EventCancelled:
		cp := ev
		b.terminal = &cp
	}
	subs := make([]chan docmodel.ProgressEvent, 0, len(b.subs))
	for ch := range b.subs {
		subs = append(subs, ch)
	}
	b.mu.Unlock()

	for _, ch := range subs {
		// Non-blocking: a slow subscriber may miss a non-terminal event,
		// which is acceptable because the next progress snapshot carries
		// the state.
		select {
		case ch <- ev:
		default:
		}
	}
}

// CloseAll unsubscribes and closes every live subscriber, used once the
// task reaches a terminal state and no further events will be published.
func (b *Bus) CloseAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
}

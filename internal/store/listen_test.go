package store

import (
	"context"
	"testing"
)

func TestEnqueueDeliversWhenBufferHasRoom(t *testing.T) {
	l := NewChangeListener("")

	if done := l.enqueue(context.Background(), CollectionStories); done {
		t.Fatal("enqueue reported context cancellation")
	}
	if got := <-l.changes; got != CollectionStories {
		t.Fatalf("payload = %q", got)
	}
}

func TestEnqueueCoalescesOnOverflow(t *testing.T) {
	l := NewChangeListener("")

	// Bury a single likes notification under alternating duplicates until
	// the buffer is full. Dropping the oldest entry here would lose the
	// only pending likes reload.
	l.changes <- CollectionLikes
	for len(l.changes) < cap(l.changes) {
		if len(l.changes)%2 == 0 {
			l.changes <- CollectionStories
		} else {
			l.changes <- CollectionComments
		}
	}

	if done := l.enqueue(context.Background(), CollectionProfiles); done {
		t.Fatal("enqueue reported context cancellation")
	}

	got := make(map[string]int)
	for len(l.changes) > 0 {
		got[<-l.changes]++
	}
	for _, name := range []string{CollectionLikes, CollectionStories, CollectionComments, CollectionProfiles} {
		if got[name] != 1 {
			t.Fatalf("collection %s delivered %d times, want 1 (%v)", name, got[name], got)
		}
	}
}

package session

import (
	"testing"
)

func TestNotifierConflatesToLatest(t *testing.T) {
	n := NewNotifier()
	sub := n.Subscribe()

	n.Publish(Notification{State: Setup})
	n.Publish(Notification{State: InProgress})
	n.Publish(Notification{State: Paused})

	note := <-sub
	if note.State != Paused {
		t.Fatalf("expected latest snapshot, got %v", note.State)
	}
	select {
	case extra := <-sub:
		t.Fatalf("expected no second snapshot, got %v", extra.State)
	default:
	}
}

func TestNotifierDeliversAfterDrain(t *testing.T) {
	n := NewNotifier()
	sub := n.Subscribe()

	n.Publish(Notification{State: Setup})
	if note := <-sub; note.State != Setup {
		t.Fatalf("expected setup snapshot, got %v", note.State)
	}
	n.Publish(Notification{State: InProgress})
	if note := <-sub; note.State != InProgress {
		t.Fatalf("expected in-progress snapshot, got %v", note.State)
	}
}

func TestNotifierCloseReleasesSubscribers(t *testing.T) {
	n := NewNotifier()
	sub := n.Subscribe()

	n.Publish(Notification{State: Complete})
	n.Close()

	note, ok := <-sub
	if !ok || note.State != Complete {
		t.Fatalf("expected pending snapshot before close, got %v %v", note.State, ok)
	}
	if _, ok := <-sub; ok {
		t.Fatal("expected closed channel")
	}

	// Publishing after close must not panic, and late subscribers get a
	// closed channel immediately.
	n.Publish(Notification{State: Setup})
	late := n.Subscribe()
	if _, ok := <-late; ok {
		t.Fatal("expected closed channel for late subscriber")
	}
	n.Close()
}

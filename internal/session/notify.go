package session

import (
	"sync"

	"github.com/verte-zerg/typeduel/internal/keyboard"
	"github.com/verte-zerg/typeduel/internal/model"
)

// Notification is a presentation snapshot published after every handled
// event. Record is set exactly once, on the notification that reports
// Complete.
type Notification struct {
	State   State
	Players []PlayerView
	Devices []keyboard.Device
	Bound   []BoundDevice
	Record  *model.SessionRecord
}

// BoundDevice is one settled keyboard assignment, for the setup screen.
type BoundDevice struct {
	Slot   model.Slot
	Device keyboard.DeviceID
}

// Notifier fans notifications out to subscribers. Every subscriber channel
// holds at most one pending notification; a slow consumer only ever misses
// intermediate snapshots, never the latest one.
type Notifier struct {
	mu     sync.Mutex
	subs   []chan Notification
	closed bool
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

// Subscribe returns a channel that receives conflated snapshots. The
// channel closes when the session loop exits.
func (n *Notifier) Subscribe() <-chan Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	ch := make(chan Notification, 1)
	if n.closed {
		close(ch)
		return ch
	}
	n.subs = append(n.subs, ch)
	return ch
}

// Publish replaces any undelivered snapshot with note. Never blocks.
func (n *Notifier) Publish(note Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	for _, ch := range n.subs {
		select {
		case ch <- note:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- note:
		default:
		}
	}
}

// Close closes every subscriber channel. A snapshot still sitting in a
// channel is delivered before the close is observed.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	for _, ch := range n.subs {
		close(ch)
	}
	n.subs = nil
}

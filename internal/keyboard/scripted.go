package keyboard

import (
	"sync"
	"time"
)

// Scripted is a Source fed by tests. Push delivers events in call order,
// End terminates the stream with an optional failure the way a real device
// loss would.
type Scripted struct {
	devices []Device
	events  chan Event

	closeOnce sync.Once

	mu  sync.Mutex
	err error
}

func NewScripted(devices ...Device) *Scripted {
	return &Scripted{
		devices: devices,
		events:  make(chan Event, eventBuffer),
	}
}

func (s *Scripted) Devices() []Device {
	out := make([]Device, len(s.devices))
	copy(out, s.devices)
	return out
}

func (s *Scripted) Events() <-chan Event {
	return s.events
}

func (s *Scripted) Push(evs ...Event) {
	for _, ev := range evs {
		s.events <- ev
	}
}

// End closes the stream. A non-nil err is reported from Err afterwards,
// mimicking a device that went away mid-session.
func (s *Scripted) End(err error) {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.events)
	})
}

func (s *Scripted) Close() error {
	s.End(nil)
	return nil
}

func (s *Scripted) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// PushPress delivers a press of r as typed on dev.
func (s *Scripted) PushPress(dev DeviceID, r rune) {
	s.Push(Event{Device: dev, Kind: Press, Rune: r, When: time.Now()})
}

// PushRelease delivers the matching release.
func (s *Scripted) PushRelease(dev DeviceID, r rune) {
	s.Push(Event{Device: dev, Kind: Release, Rune: r, When: time.Now()})
}

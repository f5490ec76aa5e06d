// Package keyboard provides access to raw keyboard devices.
//
// Events are tagged with the identity of the keyboard that produced them so
// that input can be attributed to a player. The evdev-backed Registry is the
// live implementation; Scripted replaces it in tests.
package keyboard

import (
	"errors"
	"time"
)

// Sentinel errors surfaced before a session can start.
var (
	// ErrDeviceUnavailable reports a keyboard that could not be acquired
	// exclusively (busy, revoked, or permission denied).
	ErrDeviceUnavailable = errors.New("keyboard device unavailable")

	// ErrNoKeyboards reports that fewer keyboards were found than the
	// session needs.
	ErrNoKeyboards = errors.New("not enough keyboards")
)

// DeviceID identifies a physical keyboard for the lifetime of the process.
// The /dev/input/by-id name is used when the kernel provides one, so two
// identical models remain distinguishable; otherwise the event node path.
type DeviceID string

// Device describes one discovered keyboard.
type Device struct {
	ID   DeviceID
	Path string
	Name string
}

// EventKind mirrors the three key event values delivered by the kernel.
type EventKind uint8

const (
	Release EventKind = iota
	Press
	Repeat
)

func (k EventKind) String() string {
	switch k {
	case Release:
		return "release"
	case Press:
		return "press"
	case Repeat:
		return "repeat"
	}
	return "unknown"
}

// CodeEscape is the key code reserved for in-band session control. Grabbed
// keyboards never reach the terminal, so pause/abort must arrive on the
// device stream itself.
const CodeEscape uint16 = 1

// Event is one key transition from one keyboard.
type Event struct {
	Device   DeviceID
	Code     uint16
	Kind     EventKind
	Rune     rune // decoded character, 0 when the key produces none
	Ctrl     bool // a control key was held when this event fired
	Modifier bool // the key itself is a modifier (shift, ctrl, alt, ...)
	When     time.Time
}

// Source delivers key events from a fixed set of keyboards.
//
// The event channel preserves per-device arrival order and closes when the
// source fails or is closed; Err reports the failure afterwards, nil for a
// clean shutdown. A Source cannot be restarted.
type Source interface {
	Devices() []Device
	Events() <-chan Event
	Close() error
	Err() error
}

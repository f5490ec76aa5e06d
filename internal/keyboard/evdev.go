package keyboard

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	evdev "github.com/holoplot/go-evdev"
	"github.com/rs/zerolog"
)

const (
	byIDDir     = "/dev/input/by-id"
	eventBuffer = 256
)

// probeKeys are key capabilities that distinguish a real keyboard from the
// other event nodes a physical device tends to expose (consumer control,
// system control, mouse buttons).
var probeKeys = []evdev.EvCode{
	evdev.KEY_A,
	evdev.KEY_Z,
	evdev.KEY_SPACE,
	evdev.KEY_ENTER,
	evdev.KEY_1,
}

// Registry owns exclusive access to a set of physical keyboards. It grabs
// every discovered keyboard so keystrokes reach the session instead of the
// terminal, decodes raw key events and fans them into a single channel.
type Registry struct {
	log     zerolog.Logger
	devices []Device
	handles map[DeviceID]*evdev.InputDevice

	events chan Event
	done   chan struct{}

	wg        sync.WaitGroup
	closeOnce sync.Once

	mu      sync.Mutex
	readErr error
}

// OpenAll discovers keyboards, grabs them all and starts one reader per
// device. required is the number of keyboards the session needs; discovery
// finding fewer fails with ErrNoKeyboards. Extra keyboards are still grabbed
// so a stray device cannot type into the shell underneath the session.
func OpenAll(log zerolog.Logger, required int) (*Registry, error) {
	found, err := discover()
	if err != nil {
		return nil, err
	}
	if len(found) < required {
		closeCandidates(found)
		return nil, fmt.Errorf("found %d keyboard(s), need %d: %w", len(found), required, ErrNoKeyboards)
	}

	r := &Registry{
		log:     log,
		handles: make(map[DeviceID]*evdev.InputDevice, len(found)),
		events:  make(chan Event, eventBuffer),
		done:    make(chan struct{}),
	}
	for i, c := range found {
		if err := c.handle.Grab(); err != nil {
			for _, g := range found[:i] {
				_ = g.handle.Ungrab()
			}
			closeCandidates(found)
			return nil, fmt.Errorf("failed to grab %s: %w", c.dev.Path, ErrDeviceUnavailable)
		}
		r.devices = append(r.devices, c.dev)
		r.handles[c.dev.ID] = c.handle
		log.Debug().Str("id", string(c.dev.ID)).Str("path", c.dev.Path).Str("name", c.dev.Name).Msg("grabbed keyboard")
	}

	for id, h := range r.handles {
		r.wg.Add(1)
		go r.reader(id, h)
	}
	return r, nil
}

// Devices returns the discovered keyboards in enumeration order.
func (r *Registry) Devices() []Device {
	out := make([]Device, len(r.devices))
	copy(out, r.devices)
	return out
}

// Events returns the fan-in channel. Closed by Close.
func (r *Registry) Events() <-chan Event {
	return r.events
}

// Err reports the read failure that stopped the registry, nil after a plain
// Close.
func (r *Registry) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readErr
}

// Close releases all keyboards and closes the event channel. Safe to call
// more than once and from reader goroutines.
func (r *Registry) Close() error {
	r.closeOnce.Do(func() {
		close(r.done)
		r.releaseAll()
		r.wg.Wait()
		close(r.events)
	})
	return nil
}

func (r *Registry) releaseAll() {
	for _, h := range r.handles {
		_ = h.Ungrab()
		_ = h.Close()
	}
}

func (r *Registry) fail(id DeviceID, err error) {
	r.mu.Lock()
	if r.readErr == nil {
		r.readErr = fmt.Errorf("device %s: %v: %w", id, err, ErrDeviceUnavailable)
	}
	r.mu.Unlock()
	r.log.Error().Err(err).Str("id", string(id)).Msg("keyboard read failed")
	go r.Close()
}

// reader pumps one device. Closing the underlying fd in Close unblocks the
// pending read, which is how shutdown reaches us.
func (r *Registry) reader(id DeviceID, dev *evdev.InputDevice) {
	defer r.wg.Done()
	var mods modState
	for {
		raw, err := dev.ReadOne()
		if err != nil {
			select {
			case <-r.done:
			default:
				r.fail(id, err)
			}
			return
		}
		if raw.Type != evdev.EV_KEY {
			continue
		}
		if raw.Value < 0 || raw.Value > int32(Repeat) {
			continue
		}
		mods.apply(raw.Code, raw.Value != 0)
		ev := Event{
			Device:   id,
			Code:     uint16(raw.Code),
			Kind:     EventKind(raw.Value),
			Rune:     decodeRune(raw.Code, mods.shift()),
			Ctrl:     mods.ctrl(),
			Modifier: isModifier(raw.Code),
			When:     time.Now(),
		}
		select {
		case r.events <- ev:
		case <-r.done:
			return
		}
	}
}

type candidate struct {
	dev    Device
	handle *evdev.InputDevice
}

func closeCandidates(cs []candidate) {
	for _, c := range cs {
		_ = c.handle.Close()
	}
}

// discover opens every input node that looks like a keyboard. Nodes that
// cannot be opened are skipped rather than failing the whole enumeration;
// running without the right permissions surfaces as ErrNoKeyboards instead.
func discover() ([]candidate, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, fmt.Errorf("failed to list input devices: %w", err)
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i].Path < paths[j].Path })

	ids := byIDIndex()
	var found []candidate
	for _, p := range paths {
		h, err := evdev.Open(p.Path)
		if err != nil {
			continue
		}
		if !isKeyboard(h) {
			_ = h.Close()
			continue
		}
		found = append(found, candidate{
			dev: Device{
				ID:   deviceID(ids, p.Path),
				Path: p.Path,
				Name: p.Name,
			},
			handle: h,
		})
	}
	return found, nil
}

// ListKeyboards enumerates keyboards without grabbing them, for inspection
// commands.
func ListKeyboards() ([]Device, error) {
	found, err := discover()
	if err != nil {
		return nil, err
	}
	defer closeCandidates(found)
	devs := make([]Device, 0, len(found))
	for _, c := range found {
		devs = append(devs, c.dev)
	}
	if len(devs) == 0 {
		return nil, ErrNoKeyboards
	}
	return devs, nil
}

func isKeyboard(dev *evdev.InputDevice) bool {
	hasKeys := false
	for _, t := range dev.CapableTypes() {
		if t == evdev.EV_KEY {
			hasKeys = true
			break
		}
	}
	if !hasKeys {
		return false
	}
	capable := make(map[evdev.EvCode]struct{})
	for _, code := range dev.CapableEvents(evdev.EV_KEY) {
		capable[code] = struct{}{}
	}
	for _, code := range probeKeys {
		if _, ok := capable[code]; ok {
			return true
		}
	}
	return false
}

// byIDIndex maps resolved device paths to their /dev/input/by-id entry.
// The by-id name is stable across reboots and replugs, unlike eventN.
func byIDIndex() map[string]string {
	entries, err := os.ReadDir(byIDDir)
	if err != nil {
		return nil
	}
	index := make(map[string]string, len(entries))
	for _, e := range entries {
		target, err := filepath.EvalSymlinks(filepath.Join(byIDDir, e.Name()))
		if err != nil {
			continue
		}
		if _, ok := index[target]; !ok {
			index[target] = e.Name()
		}
	}
	return index
}

func deviceID(ids map[string]string, path string) DeviceID {
	if name, ok := ids[path]; ok {
		return DeviceID(name)
	}
	return DeviceID(filepath.Base(path))
}

// Package binding assigns player slots to keyboards by order of first press.
package binding

import (
	"errors"

	"github.com/verte-zerg/typeduel/internal/keyboard"
	"github.com/verte-zerg/typeduel/internal/model"
)

// ErrSetupTimeout reports that not every player pressed a key before the
// setup deadline.
var ErrSetupTimeout = errors.New("timed out waiting for players")

// Binding is one frozen device-to-slot assignment.
type Binding struct {
	Slot   model.Slot
	Device keyboard.DeviceID
}

// Resolver watches key presses during setup and hands out slots in arrival
// order: the first keyboard to press becomes player 1, the next distinct
// keyboard player 2, and so on. Once every slot is taken the bindings are
// frozen for the rest of the session.
type Resolver struct {
	required int
	order    []keyboard.DeviceID
	slots    map[keyboard.DeviceID]model.Slot
}

func NewResolver(required int) *Resolver {
	return &Resolver{
		required: required,
		slots:    make(map[keyboard.DeviceID]model.Slot, required),
	}
}

// Observe feeds one event and returns the slot newly assigned to the
// event's device, SlotNone when nothing changed. Only presses bind:
// releases and auto-repeats are ignored, as is every press on an already
// bound keyboard. Escape is reserved for aborting setup and never claims
// a slot.
func (r *Resolver) Observe(ev keyboard.Event) model.Slot {
	if r.Complete() || ev.Kind != keyboard.Press || ev.Code == keyboard.CodeEscape {
		return model.SlotNone
	}
	if _, bound := r.slots[ev.Device]; bound {
		return model.SlotNone
	}
	slot := model.Slot(len(r.order) + 1)
	r.slots[ev.Device] = slot
	r.order = append(r.order, ev.Device)
	return slot
}

// Complete reports whether every slot has a keyboard.
func (r *Resolver) Complete() bool {
	return len(r.order) == r.required
}

// Resolve maps a device to its slot.
func (r *Resolver) Resolve(id keyboard.DeviceID) (model.Slot, bool) {
	slot, ok := r.slots[id]
	return slot, ok
}

// Bindings returns the assignments in slot order.
func (r *Resolver) Bindings() []Binding {
	out := make([]Binding, 0, len(r.order))
	for i, id := range r.order {
		out = append(out, Binding{Slot: model.Slot(i + 1), Device: id})
	}
	return out
}

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/typeduel/internal/binding"
	"github.com/verte-zerg/typeduel/internal/keyboard"
	"github.com/verte-zerg/typeduel/internal/model"
)

// ErrAborted reports a session abandoned before any play happened.
var ErrAborted = errors.New("session aborted")

// Runner serializes all device events into the machine. Keyboards are
// grabbed for the whole session, so the control keys ride the device
// streams themselves: escape toggles pause (and abandons setup), ctrl+c
// stops the session.
type Runner struct {
	log      zerolog.Logger
	cfg      model.Config
	src      keyboard.Source
	machine  *Machine
	resolver *binding.Resolver
	notifier *Notifier
}

func NewRunner(log zerolog.Logger, cfg model.Config, src keyboard.Source, m *Machine, n *Notifier) *Runner {
	return &Runner{
		log:      log,
		cfg:      cfg,
		src:      src,
		machine:  m,
		resolver: binding.NewResolver(cfg.Players),
		notifier: n,
	}
}

// Run processes events until the session completes or dies. It returns the
// session record on a completed session, including one stopped early by the
// player; setup failures and device loss return an error instead. The
// source is closed and subscribers are released on every path.
func (r *Runner) Run(ctx context.Context) (model.SessionRecord, error) {
	defer r.notifier.Close()
	defer func() { _ = r.src.Close() }()

	r.publish(nil)

	var timer *time.Timer
	var timeoutC <-chan time.Time
	if r.cfg.SetupTimeout > 0 {
		timer = time.NewTimer(r.cfg.SetupTimeout)
		defer timer.Stop()
		timeoutC = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			if r.machine.State() == Setup {
				return model.SessionRecord{}, ctx.Err()
			}
			r.machine.Stop(time.Now())
			return r.finish()

		case <-timeoutC:
			return model.SessionRecord{}, fmt.Errorf("no player joined within %s: %w",
				r.cfg.SetupTimeout, binding.ErrSetupTimeout)

		case ev, ok := <-r.src.Events():
			if !ok {
				if err := r.src.Err(); err != nil {
					return model.SessionRecord{}, fmt.Errorf("input stream ended: %w", err)
				}
				return model.SessionRecord{}, fmt.Errorf("input stream closed: %w", ErrAborted)
			}
			stop, err := r.handle(ev)
			if err != nil {
				return model.SessionRecord{}, err
			}
			if timeoutC != nil && r.machine.State() != Setup {
				timer.Stop()
				timeoutC = nil
			}
			if stop || r.machine.State() == Complete {
				return r.finish()
			}
			r.publish(nil)
		}
	}
}

// handle routes one event: control keys first, then binding while in Setup,
// then evaluation.
func (r *Runner) handle(ev keyboard.Event) (stop bool, err error) {
	if ev.Kind == keyboard.Press {
		if ev.Code == keyboard.CodeEscape {
			switch r.machine.State() {
			case Setup:
				return false, fmt.Errorf("setup cancelled: %w", ErrAborted)
			case InProgress:
				r.machine.Pause(ev.When)
			case Paused:
				r.machine.Resume(ev.When)
			}
			return false, nil
		}
		if ev.Ctrl && (ev.Rune == 'c' || ev.Rune == 'C') {
			if r.machine.State() == Setup {
				return false, fmt.Errorf("setup cancelled: %w", ErrAborted)
			}
			r.machine.Stop(ev.When)
			return true, nil
		}
	}

	if r.machine.State() == Setup {
		if slot := r.resolver.Observe(ev); slot != model.SlotNone {
			r.log.Info().Stringer("slot", slot).Str("device", string(ev.Device)).Msg("keyboard bound")
		}
		if r.resolver.Complete() {
			r.machine.Start(ev.When, r.resolver.Bindings())
		}
		return false, nil
	}

	slot, _ := r.resolver.Resolve(ev.Device)
	outcome := r.machine.Submit(slot, ev)
	if outcome != Ignored {
		r.log.Debug().
			Stringer("slot", slot).
			Stringer("outcome", outcome).
			Str("rune", string(ev.Rune)).
			Msg("evaluated")
	}
	return false, nil
}

func (r *Runner) finish() (model.SessionRecord, error) {
	rec, ok := r.machine.Record()
	if !ok {
		return model.SessionRecord{}, fmt.Errorf("session ended without a record: %w", ErrAborted)
	}
	r.publish(&rec)
	return rec, nil
}

func (r *Runner) publish(rec *model.SessionRecord) {
	note := Notification{
		State:   r.machine.State(),
		Devices: r.src.Devices(),
		Record:  rec,
	}
	for _, b := range r.resolver.Bindings() {
		note.Bound = append(note.Bound, BoundDevice{Slot: b.Slot, Device: b.Device})
	}
	if note.State != Setup {
		note.Players = r.machine.Players(time.Now())
	}
	r.notifier.Publish(note)
}

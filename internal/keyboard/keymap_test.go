package keyboard

import (
	"testing"

	evdev "github.com/holoplot/go-evdev"
)

func TestDecodeRune(t *testing.T) {
	cases := []struct {
		code    evdev.EvCode
		shifted bool
		want    rune
	}{
		{evdev.KEY_A, false, 'a'},
		{evdev.KEY_A, true, 'A'},
		{evdev.KEY_1, false, '1'},
		{evdev.KEY_1, true, '!'},
		{evdev.KEY_SEMICOLON, false, ';'},
		{evdev.KEY_SEMICOLON, true, ':'},
		{evdev.KEY_SPACE, false, ' '},
		{evdev.KEY_SPACE, true, ' '},
		{evdev.KEY_ENTER, false, '\n'},
		{evdev.KEY_BACKSPACE, false, '\b'},
		{evdev.KEY_ESC, false, 0},
		{evdev.KEY_F1, false, 0},
		{evdev.KEY_LEFTSHIFT, false, 0},
	}
	for _, c := range cases {
		got := decodeRune(c.code, c.shifted)
		if got != c.want {
			t.Fatalf("decodeRune(%d, %v): expected %q, got %q", c.code, c.shifted, c.want, got)
		}
	}
}

func TestModState(t *testing.T) {
	var m modState
	if m.shift() || m.ctrl() {
		t.Fatal("expected no modifiers held initially")
	}
	m.apply(evdev.KEY_LEFTSHIFT, true)
	if !m.shift() {
		t.Fatal("expected shift held after left shift down")
	}
	m.apply(evdev.KEY_RIGHTSHIFT, true)
	m.apply(evdev.KEY_LEFTSHIFT, false)
	if !m.shift() {
		t.Fatal("expected shift held while right shift is down")
	}
	m.apply(evdev.KEY_RIGHTSHIFT, false)
	if m.shift() {
		t.Fatal("expected shift released")
	}
	m.apply(evdev.KEY_LEFTCTRL, true)
	if !m.ctrl() {
		t.Fatal("expected ctrl held")
	}
}

func TestIsModifier(t *testing.T) {
	for _, code := range []evdev.EvCode{
		evdev.KEY_LEFTSHIFT, evdev.KEY_RIGHTSHIFT,
		evdev.KEY_LEFTCTRL, evdev.KEY_RIGHTCTRL,
		evdev.KEY_LEFTALT, evdev.KEY_CAPSLOCK,
	} {
		if !isModifier(code) {
			t.Fatalf("expected code %d to be a modifier", code)
		}
	}
	if isModifier(evdev.KEY_A) {
		t.Fatal("expected KEY_A not to be a modifier")
	}
}

func TestScriptedSource(t *testing.T) {
	dev := Device{ID: "kbd-left", Path: "/dev/input/event3", Name: "left"}
	src := NewScripted(dev)
	if len(src.Devices()) != 1 || src.Devices()[0].ID != "kbd-left" {
		t.Fatalf("unexpected devices: %v", src.Devices())
	}

	src.PushPress("kbd-left", 'a')
	src.PushRelease("kbd-left", 'a')
	src.End(nil)

	var got []Event
	for ev := range src.Events() {
		got = append(got, ev)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Kind != Press || got[0].Rune != 'a' {
		t.Fatalf("unexpected first event: %+v", got[0])
	}
	if got[1].Kind != Release {
		t.Fatalf("unexpected second event: %+v", got[1])
	}
	if err := src.Err(); err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if err := src.Close(); err != nil {
		t.Fatalf("close after end: %v", err)
	}
}

func TestScriptedEndWithError(t *testing.T) {
	src := NewScripted(Device{ID: "kbd-a"})
	src.End(ErrDeviceUnavailable)
	if _, ok := <-src.Events(); ok {
		t.Fatal("expected closed event channel")
	}
	if src.Err() != ErrDeviceUnavailable {
		t.Fatalf("expected ErrDeviceUnavailable, got %v", src.Err())
	}
}

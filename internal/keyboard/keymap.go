package keyboard

import (
	evdev "github.com/holoplot/go-evdev"
)

// keysym holds the unshifted and shifted character for a key position on a
// US layout. Prompt generation sticks to the same repertoire, so a richer
// layout model has not been needed.
type keysym struct {
	lower rune
	upper rune
}

var keymap = map[evdev.EvCode]keysym{
	evdev.KEY_A: {'a', 'A'},
	evdev.KEY_B: {'b', 'B'},
	evdev.KEY_C: {'c', 'C'},
	evdev.KEY_D: {'d', 'D'},
	evdev.KEY_E: {'e', 'E'},
	evdev.KEY_F: {'f', 'F'},
	evdev.KEY_G: {'g', 'G'},
	evdev.KEY_H: {'h', 'H'},
	evdev.KEY_I: {'i', 'I'},
	evdev.KEY_J: {'j', 'J'},
	evdev.KEY_K: {'k', 'K'},
	evdev.KEY_L: {'l', 'L'},
	evdev.KEY_M: {'m', 'M'},
	evdev.KEY_N: {'n', 'N'},
	evdev.KEY_O: {'o', 'O'},
	evdev.KEY_P: {'p', 'P'},
	evdev.KEY_Q: {'q', 'Q'},
	evdev.KEY_R: {'r', 'R'},
	evdev.KEY_S: {'s', 'S'},
	evdev.KEY_T: {'t', 'T'},
	evdev.KEY_U: {'u', 'U'},
	evdev.KEY_V: {'v', 'V'},
	evdev.KEY_W: {'w', 'W'},
	evdev.KEY_X: {'x', 'X'},
	evdev.KEY_Y: {'y', 'Y'},
	evdev.KEY_Z: {'z', 'Z'},

	evdev.KEY_1: {'1', '!'},
	evdev.KEY_2: {'2', '@'},
	evdev.KEY_3: {'3', '#'},
	evdev.KEY_4: {'4', '$'},
	evdev.KEY_5: {'5', '%'},
	evdev.KEY_6: {'6', '^'},
	evdev.KEY_7: {'7', '&'},
	evdev.KEY_8: {'8', '*'},
	evdev.KEY_9: {'9', '('},
	evdev.KEY_0: {'0', ')'},

	evdev.KEY_MINUS:      {'-', '_'},
	evdev.KEY_EQUAL:      {'=', '+'},
	evdev.KEY_LEFTBRACE:  {'[', '{'},
	evdev.KEY_RIGHTBRACE: {']', '}'},
	evdev.KEY_SEMICOLON:  {';', ':'},
	evdev.KEY_APOSTROPHE: {'\'', '"'},
	evdev.KEY_GRAVE:      {'`', '~'},
	evdev.KEY_BACKSLASH:  {'\\', '|'},
	evdev.KEY_COMMA:      {',', '<'},
	evdev.KEY_DOT:        {'.', '>'},
	evdev.KEY_SLASH:      {'/', '?'},

	evdev.KEY_SPACE:     {' ', ' '},
	evdev.KEY_ENTER:     {'\n', '\n'},
	evdev.KEY_TAB:       {'\t', '\t'},
	evdev.KEY_BACKSPACE: {'\b', '\b'},
}

var modifierKeys = map[evdev.EvCode]struct{}{
	evdev.KEY_LEFTSHIFT:  {},
	evdev.KEY_RIGHTSHIFT: {},
	evdev.KEY_LEFTCTRL:   {},
	evdev.KEY_RIGHTCTRL:  {},
	evdev.KEY_LEFTALT:    {},
	evdev.KEY_RIGHTALT:   {},
	evdev.KEY_LEFTMETA:   {},
	evdev.KEY_RIGHTMETA:  {},
	evdev.KEY_CAPSLOCK:   {},
}

func isModifier(code evdev.EvCode) bool {
	_, ok := modifierKeys[code]
	return ok
}

// decodeRune maps a key code to the character it types, 0 when the key
// produces none (modifiers, function keys, navigation keys).
func decodeRune(code evdev.EvCode, shifted bool) rune {
	sym, ok := keymap[code]
	if !ok {
		return 0
	}
	if shifted {
		return sym.upper
	}
	return sym.lower
}

// modState tracks held modifiers for one keyboard. Each physical device
// carries its own state so one player's shift never leaks into the other's
// stream.
type modState struct {
	lshift, rshift bool
	lctrl, rctrl   bool
}

func (m *modState) apply(code evdev.EvCode, down bool) {
	switch code {
	case evdev.KEY_LEFTSHIFT:
		m.lshift = down
	case evdev.KEY_RIGHTSHIFT:
		m.rshift = down
	case evdev.KEY_LEFTCTRL:
		m.lctrl = down
	case evdev.KEY_RIGHTCTRL:
		m.rctrl = down
	}
}

func (m *modState) shift() bool { return m.lshift || m.rshift }
func (m *modState) ctrl() bool  { return m.lctrl || m.rctrl }

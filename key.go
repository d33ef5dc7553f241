package termfx

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

// Key is a single decoded keypress. Keys which have a unicode representation
// use that value as Codepoint. Keys without one (arrows, function keys, etc)
// use a Codepoint above unicode.MaxRune, see KeyUp and friends.
//
// Keys are values: WithModifiers returns a new Key and never changes the
// receiver
type Key struct {
	Codepoint rune
	Modifiers ModifierMask

	// literal is set on keys spelled out from units of a sequence which
	// could not be decoded. Literal keys are never printable. Equal
	// ignores it
	literal bool
}

// ModifierMask is a set of modifier keys. A ModifierMask is only ever
// composed into a Key, it is never decoded on its own
type ModifierMask int

const (
	ModShift ModifierMask = 1 << iota
	ModAlt
	ModCtrl
)

const (
	extended rune = 1 << 30
)

const (
	KeyUp rune = extended + 1 + iota
	KeyRight
	KeyDown
	KeyLeft
	KeyInsert
	KeyDelete
	KeyPgDown
	KeyPgUp
	KeyHome
	KeyEnd
	KeyF01
	KeyF02
	KeyF03
	KeyF04
	KeyF05
	KeyF06
	KeyF07
	KeyF08
	KeyF09
	KeyF10
	KeyF11
	KeyF12

	KeyTab   = 0x09
	KeyEsc   = 0x1B
	KeySpace = 0x20
	KeyDEL   = 0x7F
)

var keyNames = map[rune]string{
	KeyUp:     "up",
	KeyRight:  "right",
	KeyDown:   "down",
	KeyLeft:   "left",
	KeyInsert: "insert",
	KeyDelete: "delete",
	KeyPgDown: "pgdown",
	KeyPgUp:   "pgup",
	KeyHome:   "home",
	KeyEnd:    "end",
	KeyF01:    "f1",
	KeyF02:    "f2",
	KeyF03:    "f3",
	KeyF04:    "f4",
	KeyF05:    "f5",
	KeyF06:    "f6",
	KeyF07:    "f7",
	KeyF08:    "f8",
	KeyF09:    "f9",
	KeyF10:    "f10",
	KeyF11:    "f11",
	KeyF12:    "f12",
}

// Aliases for control codes which have a name of their own. These are only
// used when printing keys
var controlNames = map[rune]string{
	KeyTab:   "tab",
	KeyEsc:   "esc",
	KeySpace: "space",
	KeyDEL:   "del",
	'\r':     "cr",
	'\n':     "lf",
}

var (
	// KeyEnter matches a carriage return or a line feed. Which one a
	// terminal sends depends on the platform and the terminal's settings
	KeyEnter = AliasedKey{
		name: "enter",
		keys: []Key{
			{Codepoint: '\r'},
			{Codepoint: '\n'},
		},
	}
	// KeyBackspace matches DEL, BS and Ctrl+H, which is how BS decodes
	KeyBackspace = AliasedKey{
		name: "bs",
		keys: []Key{
			{Codepoint: KeyDEL},
			{Codepoint: 0x08},
			{Codepoint: 'h', Modifiers: ModCtrl},
		},
	}
)

// Code returns the unicode value of the key, if it has one
func (k Key) Code() (rune, bool) {
	if k.Codepoint < 0 || k.Codepoint > unicode.MaxRune {
		return 0, false
	}
	return k.Codepoint, true
}

// Name returns the symbolic name of the key ("up", "f5"), or an empty string
// for keys which are identified by their codepoint
func (k Key) Name() string {
	return keyNames[k.Codepoint]
}

// Printable reports whether the key is text: a codepoint which is not a
// control character, without Ctrl held. Keys spelled out from an undecodable
// sequence are not printable
func (k Key) Printable() bool {
	r, ok := k.Code()
	if !ok || k.literal || k.Modifiers&ModCtrl != 0 {
		return false
	}
	return !unicode.IsControl(r)
}

// WithModifiers returns a copy of k with mods added to its modifiers
func (k Key) WithModifiers(mods ModifierMask) Key {
	k.Modifiers |= mods
	return k
}

// Matches returns true if the key has the given codepoint and modifiers
func (k Key) Matches(r rune, mods ...ModifierMask) bool {
	var m ModifierMask
	for _, mod := range mods {
		m |= mod
	}
	return k.Codepoint == r && k.Modifiers == m
}

func (k Key) Equal(other Event) bool {
	switch other := other.(type) {
	case Key:
		return k.Codepoint == other.Codepoint && k.Modifiers == other.Modifiers
	case AliasedKey:
		return other.Equal(k)
	default:
		return false
	}
}

// Width is the number of cells the key occupies when echoed. Keys which are
// not printable have a width of 0
func (k Key) Width() int {
	if !k.Printable() {
		return 0
	}
	return runewidth.RuneWidth(k.Codepoint)
}

// String returns a description of the key. Modified and special keys are
// wrapped in angle brackets, with modifier prefixes always in this order:
//
//	<c-a-s-{key}>
func (k Key) String() string {
	buf := &strings.Builder{}
	if k.Modifiers&ModCtrl != 0 {
		buf.WriteString("c-")
	}
	if k.Modifiers&ModAlt != 0 {
		buf.WriteString("a-")
	}
	if k.Modifiers&ModShift != 0 {
		buf.WriteString("s-")
	}

	switch {
	case keyNames[k.Codepoint] != "":
		buf.WriteString(keyNames[k.Codepoint])
	case controlNames[k.Codepoint] != "":
		buf.WriteString(controlNames[k.Codepoint])
	case k.Codepoint < 0 || k.Codepoint > unicode.MaxRune:
		return "<invalid>"
	case k.Codepoint < 0x20:
		// Control codes without a name are shown as the ctrl chord
		// which produces them
		if k.Modifiers&ModCtrl == 0 {
			buf.WriteString("c-")
		}
		buf.WriteRune(unicode.ToLower(k.Codepoint + 0x40))
	case k.Modifiers == 0:
		return string(k.Codepoint)
	default:
		buf.WriteRune(k.Codepoint)
	}
	return "<" + buf.String() + ">"
}

// AliasedKey is a key which can be produced by more than one code. It is equal
// to any Key which equals one of its members
type AliasedKey struct {
	name string
	keys []Key
}

// Keys returns the members of the alias
func (a AliasedKey) Keys() []Key {
	keys := make([]Key, len(a.keys))
	copy(keys, a.keys)
	return keys
}

func (a AliasedKey) Equal(other Event) bool {
	switch other := other.(type) {
	case Key:
		for _, k := range a.keys {
			if k.Equal(other) {
				return true
			}
		}
	case AliasedKey:
		for _, k := range other.keys {
			if a.Equal(k) {
				return true
			}
		}
	}
	return false
}

func (a AliasedKey) Printable() bool {
	return false
}

func (a AliasedKey) String() string {
	return "<" + a.name + ">"
}

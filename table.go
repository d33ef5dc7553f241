package termfx

import (
	"sort"
)

// A producer decodes the units following a matched pattern. It returns how
// many of them it consumed
type producer func(seq []rune) (int, Event, error)

type entry struct {
	// seq is the pattern, without the leading ESC
	seq []rune
	key Key
	fn  producer
}

// Table maps escape sequences to events. Sequences are stored without their
// leading ESC. A Table is immutable once built and safe for concurrent use
type Table struct {
	// entries is sorted by descending pattern length, so the first match is
	// the longest
	entries []entry
}

// Modifier suffixes used by rxvt style terminals for the numbered CSI keys
var modSuffixes = []struct {
	suffix string
	mods   ModifierMask
}{
	{"~", 0},
	{"$", ModShift},
	{"^", ModCtrl},
	{"@", ModCtrl | ModShift},
}

type tableBuilder struct {
	entries []entry
}

func (b *tableBuilder) key(seq string, key Key) {
	b.entries = append(b.entries, entry{seq: []rune(seq), key: key})
}

// keyMods registers seq with each of the modifier suffixes
func (b *tableBuilder) keyMods(seq string, r rune) {
	for _, s := range modSuffixes {
		b.key(seq+s.suffix, Key{Codepoint: r, Modifiers: s.mods})
	}
}

func (b *tableBuilder) producer(seq string, fn producer) {
	b.entries = append(b.entries, entry{seq: []rune(seq), fn: fn})
}

func (b *tableBuilder) build() *Table {
	entries := make([]entry, len(b.entries))
	copy(entries, b.entries)
	sort.SliceStable(entries, func(i, j int) bool {
		return len(entries[i].seq) > len(entries[j].seq)
	})
	return &Table{entries: entries}
}

// defaultTable is the table used by every Decoder
var defaultTable = newDefaultTable()

// DefaultTable returns the built in table of VT100 / xterm / rxvt sequences
func DefaultTable() *Table {
	return defaultTable
}

func newDefaultTable() *Table {
	b := &tableBuilder{}

	// Misc
	b.producer("[M", parseMouse)
	b.key("[Z", Key{Codepoint: KeyTab, Modifiers: ModShift})

	// Arrow keys. Shift and Ctrl variants are rxvt
	arrows := []struct {
		final rune
		key   rune
	}{
		{'A', KeyUp},
		{'B', KeyDown},
		{'C', KeyRight},
		{'D', KeyLeft},
	}
	for _, a := range arrows {
		lower := a.final + ('a' - 'A')
		b.key("["+string(a.final), Key{Codepoint: a.key})
		b.key("["+string(lower), Key{Codepoint: a.key, Modifiers: ModShift})
		b.key("O"+string(lower), Key{Codepoint: a.key, Modifiers: ModCtrl})
		// Application cursor mode
		b.key("O"+string(a.final), Key{Codepoint: a.key})
	}

	// Function keys
	fkeys := []struct {
		num string
		key rune
	}{
		{"11", KeyF01},
		{"12", KeyF02},
		{"13", KeyF03},
		{"14", KeyF04},
		{"15", KeyF05},
		{"17", KeyF06},
		{"18", KeyF07},
		{"19", KeyF08},
		{"20", KeyF09},
		{"21", KeyF10},
		{"23", KeyF11},
		{"24", KeyF12},
	}
	for _, f := range fkeys {
		b.keyMods("["+f.num, f.key)
	}
	b.key("OP", Key{Codepoint: KeyF01})
	b.key("OQ", Key{Codepoint: KeyF02})
	b.key("OR", Key{Codepoint: KeyF03})
	b.key("OS", Key{Codepoint: KeyF04})

	// Navigation keys
	b.keyMods("[2", KeyInsert)
	b.keyMods("[3", KeyDelete)
	b.keyMods("[5", KeyPgUp)
	b.keyMods("[6", KeyPgDown)
	b.keyMods("[7", KeyHome)
	b.keyMods("[8", KeyEnd)
	// vt220 / linux console home and end
	b.keyMods("[1", KeyHome)
	b.keyMods("[4", KeyEnd)
	b.key("[H", Key{Codepoint: KeyHome})
	b.key("[F", Key{Codepoint: KeyEnd})
	b.key("OH", Key{Codepoint: KeyHome})
	b.key("OF", Key{Codepoint: KeyEnd})

	return b.build()
}

// match returns the longest entry which is a prefix of seq
func (t *Table) match(seq []rune) (entry, bool) {
	for _, e := range t.entries {
		if hasPrefix(seq, e.seq) {
			return e, true
		}
	}
	return entry{}, false
}

// Sequence returns the escape sequence a terminal sends for k, including the
// leading ESC. When several sequences decode to the same key the shortest
// wins, then the first registered
func (t *Table) Sequence(k Key) (string, bool) {
	var (
		best  []rune
		found bool
	)
	for _, e := range t.entries {
		if e.fn != nil || !e.key.Equal(k) {
			continue
		}
		if !found || len(e.seq) < len(best) {
			best = e.seq
			found = true
		}
	}
	if !found {
		return "", false
	}
	return "\x1b" + string(best), true
}

// Len returns the number of entries in the table
func (t *Table) Len() int {
	return len(t.entries)
}

// Keys returns every key the table can produce, in table order. Producer
// entries are skipped
func (t *Table) Keys() []Key {
	keys := make([]Key, 0, len(t.entries))
	for _, e := range t.entries {
		if e.fn != nil {
			continue
		}
		keys = append(keys, e.key)
	}
	return keys
}

func hasPrefix(s, prefix []rune) bool {
	if len(prefix) > len(s) {
		return false
	}
	for i, r := range prefix {
		if s[i] != r {
			return false
		}
	}
	return true
}

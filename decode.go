package termfx

import (
	"strconv"

	"git.sr.ht/~rockorager/termfx/log"
)

// MalformedPolicy decides what happens to the units which follow a table
// entry that failed to decode (currently only short mouse reports)
type MalformedPolicy int

const (
	// DropRemainder discards the rest of the group. The units are still
	// available from the DecodeError
	DropRemainder MalformedPolicy = iota
	// ResurfaceRemainder emits the rest of the group as literal keys
	ResurfaceRemainder
)

// controlKeys maps C0 codes 1-26 to their Ctrl+letter chord. Tab, line feed
// and carriage return are left out: they collide with keys users type
// directly
var controlKeys = func() map[rune]Key {
	m := make(map[rune]Key, 26)
	for i := rune(1); i <= 26; i += 1 {
		switch i {
		case '\t', '\n', '\r':
			continue
		}
		m[i] = Key{Codepoint: i + 0x60, Modifiers: ModCtrl}
	}
	return m
}()

// Decoder translates groups of input units into events
type Decoder struct {
	table     *Table
	strict    bool
	malformed MalformedPolicy
}

// NewDecoder returns a Decoder using the default table
func NewDecoder(opts Options) *Decoder {
	opts = opts.withDefaults()
	return &Decoder{
		table:     defaultTable,
		strict:    opts.StrictEscapes,
		malformed: opts.MalformedMouse,
	}
}

// decodeUnit decodes a single unit which isn't part of an escape sequence
func decodeUnit(r rune) Key {
	if key, ok := controlKeys[r]; ok {
		return key
	}
	return Key{Codepoint: r}
}

// Decode returns the events in group. On error, the events decoded before
// the failing sequence are returned along with it. Events resurfaced by
// ResurfaceRemainder follow them
func (d *Decoder) Decode(group []rune) ([]Event, error) {
	events := []Event{}
	seq := group
	for len(seq) > 0 {
		if seq[0] != KeyEsc {
			events = append(events, decodeUnit(seq[0]))
			seq = seq[1:]
			continue
		}

		// ESC followed by a single key is read as alt+key. A quick ESC
		// followed by a key is indistinguishable from this
		if len(seq) == 2 && seq[1] < KeyDEL {
			events = append(events, decodeUnit(seq[1]).WithModifiers(ModAlt))
			break
		}

		rest := seq[1:]
		if len(rest) == 0 {
			events = append(events, Key{Codepoint: KeyEsc})
			break
		}

		e, ok := d.table.match(rest)
		if !ok {
			if d.strict {
				return events, &UnknownEscapeError{Seq: copyRunes(seq)}
			}
			log.Debug("[decode] unknown sequence", "seq", strconv.QuoteToASCII(string(seq)))
			events = append(events, Key{Codepoint: KeyEsc})
			for _, r := range rest {
				events = append(events, literalKey(r))
			}
			break
		}

		params := rest[len(e.seq):]
		if e.fn == nil {
			events = append(events, e.key)
			seq = params
			continue
		}

		n, ev, err := e.fn(params)
		if err != nil {
			derr := &DecodeError{Seq: copyRunes(seq), Err: err}
			log.Debug("[decode] malformed sequence", "error", derr)
			if d.malformed == ResurfaceRemainder {
				for _, r := range params {
					events = append(events, literalKey(r))
				}
			}
			return events, derr
		}
		events = append(events, ev)
		seq = params[n:]
	}
	return events, nil
}

// literalKey spells out a unit of a sequence which couldn't be decoded
func literalKey(r rune) Key {
	return Key{Codepoint: r, literal: true}
}

func copyRunes(rs []rune) []rune {
	c := make([]rune, len(rs))
	copy(c, rs)
	return c
}

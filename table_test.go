package termfx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableSortedByLength(t *testing.T) {
	table := DefaultTable()
	for i := 1; i < len(table.entries); i += 1 {
		assert.GreaterOrEqual(t, len(table.entries[i-1].seq), len(table.entries[i].seq))
	}
}

func TestTableUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, e := range DefaultTable().entries {
		s := string(e.seq)
		assert.False(t, seen[s], "duplicate sequence %q", s)
		seen[s] = true
	}
}

// Every entry decodes its own sequence to its own key
func TestTableEntriesRoundTrip(t *testing.T) {
	d := NewDecoder(Options{StrictEscapes: true})
	for _, e := range DefaultTable().entries {
		if e.fn != nil {
			continue
		}
		seq := "\x1b" + string(e.seq)
		t.Run(seq[1:], func(t *testing.T) {
			ev := decodeOne(t, d, seq)
			assert.True(t, e.key.Equal(ev), "%q decoded to %s, expected %s", seq, ev, e.key)
		})
	}
}

// Every key the table knows has a canonical sequence which decodes back to it
func TestTableSequenceRoundTrip(t *testing.T) {
	table := DefaultTable()
	d := NewDecoder(Options{StrictEscapes: true})
	keys := table.Keys()
	require.NotEmpty(t, keys)
	for _, key := range keys {
		t.Run(key.String(), func(t *testing.T) {
			seq, ok := table.Sequence(key)
			require.True(t, ok)
			assert.True(t, key.Equal(decodeOne(t, d, seq)))
		})
	}
}

func TestTableSequence(t *testing.T) {
	table := DefaultTable()
	tests := []struct {
		key      Key
		expected string
	}{
		{Key{Codepoint: KeyUp}, "\x1b[A"},
		{Key{Codepoint: KeyUp, Modifiers: ModCtrl}, "\x1bOa"},
		{Key{Codepoint: KeyF01}, "\x1bOP"},
		{Key{Codepoint: KeyF05}, "\x1b[15~"},
		{Key{Codepoint: KeyHome}, "\x1b[H"},
		{Key{Codepoint: KeyPgUp, Modifiers: ModCtrl | ModShift}, "\x1b[5@"},
	}
	for _, test := range tests {
		t.Run(test.key.String(), func(t *testing.T) {
			seq, ok := table.Sequence(test.key)
			require.True(t, ok)
			assert.Equal(t, test.expected, seq)
		})
	}

	_, ok := table.Sequence(Key{Codepoint: 'a'})
	assert.False(t, ok)
}

func TestTableLongestMatch(t *testing.T) {
	table := DefaultTable()
	e, ok := table.match([]rune("[11~"))
	require.True(t, ok)
	assert.Equal(t, Key{Codepoint: KeyF01}, e.key)

	e, ok = table.match([]rune("[1~"))
	require.True(t, ok)
	assert.Equal(t, Key{Codepoint: KeyHome}, e.key)

	_, ok = table.match([]rune("[9"))
	assert.False(t, ok)
	assert.Greater(t, table.Len(), 0)
}

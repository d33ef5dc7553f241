package termfx

import (
	"bufio"
	"os"
	"sync"
	"sync/atomic"

	"golang.org/x/term"
)

// TTY is the platform side of a terminal: raw mode switching, blocking unit
// reads and output. It satisfies io.RuneReader and is the source a Terminal
// hands to its input daemon
type TTY struct {
	in  *os.File
	out *os.File
	fd  int
	rd  *bufio.Reader

	raw   atomic.Bool
	mu    sync.Mutex
	state *term.State
}

// OpenTTY wraps in and out. in must be a terminal
func OpenTTY(in, out *os.File) (*TTY, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}
	return &TTY{
		in:  in,
		out: out,
		fd:  fd,
		rd:  bufio.NewReader(in),
	}, nil
}

// SetRaw enters or leaves raw mode. Leaving raw mode restores the state the
// terminal had when raw mode was entered
func (t *TTY) SetRaw(raw bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch {
	case raw && t.state == nil:
		state, err := term.MakeRaw(t.fd)
		if err != nil {
			return err
		}
		t.state = state
	case !raw && t.state != nil:
		if err := term.Restore(t.fd, t.state); err != nil {
			return err
		}
		t.state = nil
	}
	t.raw.Store(raw)
	return nil
}

// Raw reports if the terminal is in raw mode
func (t *TTY) Raw() bool {
	return t.raw.Load()
}

// ReadRune reads a single UTF-8 encoded unit, blocking until one is
// available. It fails with ErrNotRaw if the terminal is not in raw mode
func (t *TTY) ReadRune() (rune, int, error) {
	if !t.raw.Load() {
		return 0, 0, ErrNotRaw
	}
	return t.rd.ReadRune()
}

func (t *TTY) Write(p []byte) (int, error) {
	return t.out.Write(p)
}

func (t *TTY) WriteString(s string) (int, error) {
	return t.out.WriteString(s)
}

// Size returns the size of the terminal in cells
func (t *TTY) Size() (cols int, rows int, err error) {
	return winsize(t.out)
}

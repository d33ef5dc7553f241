package termfx

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sourceItem struct {
	r   rune
	err error
}

// chanSource is an input source fed by a test. Reads block until the test
// sends something
type chanSource chan sourceItem

func (s chanSource) ReadRune() (rune, int, error) {
	item := <-s
	if item.err != nil {
		return 0, 0, item.err
	}
	return item.r, utf8.RuneLen(item.r), nil
}

func (s chanSource) send(str string) {
	for _, r := range str {
		s <- sourceItem{r: r}
	}
}

func readGroup(t *testing.T, d *Daemon) []rune {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	group, err := d.ReadContext(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, group)
	return group
}

var testOptions = Options{
	EscapeTimeout: time.Millisecond,
	RestartDelay:  time.Millisecond,
}

func TestDaemonPreservesOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	alphabet := []rune{KeyEsc, KeyEsc, '[', 'A', 'M', 'x', '5', '~', 'é', 0x01}
	for _, n := range []int{1, 2, 3, 10, 257, 2000} {
		t.Run(strconv.Itoa(n), func(t *testing.T) {
			input := make([]rune, n)
			for i := range input {
				input[i] = alphabet[rng.Intn(len(alphabet))]
			}
			src := make(chanSource, n)
			for _, r := range input {
				src <- sourceItem{r: r}
			}
			d := NewDaemon(src, testOptions)

			var out []rune
			for len(out) < n {
				group := readGroup(t, d)
				for i, r := range group {
					if i > 0 && r == KeyEsc {
						t.Fatalf("ESC inside group %q", string(group))
					}
				}
				out = append(out, group...)
			}
			assert.Equal(t, input, out)
		})
	}
}

func TestDaemonLoneEscape(t *testing.T) {
	src := make(chanSource, 8)
	d := NewDaemon(src, testOptions)
	src.send("\x1b")
	group := readGroup(t, d)
	assert.Equal(t, []rune{KeyEsc}, group)
	assert.Equal(t, Key{Codepoint: KeyEsc}, decodeOne(t, NewDecoder(Options{}), string(group)))
}

func TestDaemonEscapeFlushesBuffer(t *testing.T) {
	src := make(chanSource, 8)
	d := NewDaemon(src, testOptions)
	src.send("x\x1b[B")
	assert.Equal(t, []rune("x"), readGroup(t, d))
	assert.Equal(t, []rune("\x1b[B"), readGroup(t, d))
}

func TestDaemonEscapeTimeouts(t *testing.T) {
	opts := Options{EscapeTimeout: 5 * time.Millisecond}

	t.Run("mouse report waits", func(t *testing.T) {
		src := make(chanSource, 8)
		d := NewDaemon(src, opts)
		d.Start()
		src.send("\x1b[M")
		// Longer than the short window, shorter than the long one
		time.Sleep(15 * time.Millisecond)
		src.send(" !!")
		assert.Equal(t, []rune("\x1b[M !!"), readGroup(t, d))
	})

	t.Run("other sequences don't", func(t *testing.T) {
		src := make(chanSource, 8)
		d := NewDaemon(src, opts)
		d.Start()
		src.send("\x1b[5")
		time.Sleep(30 * time.Millisecond)
		src.send("~")
		assert.Equal(t, []rune("\x1b[5"), readGroup(t, d))
		assert.Equal(t, []rune("~"), readGroup(t, d))
	})
}

func TestDaemonLazyStart(t *testing.T) {
	src := make(chanSource, 8)
	d := NewDaemon(src, testOptions)
	assert.Equal(t, StateIdle, d.State())

	_, ok := d.TryRead()
	assert.False(t, ok)
	assert.Equal(t, StateRunning, d.State())

	d.Start()
	d.Start()
	assert.Equal(t, StateRunning, d.State())

	src.send("q")
	var group []rune
	require.Eventually(t, func() bool {
		group, ok = d.TryRead()
		return ok
	}, 2*time.Second, time.Millisecond)
	assert.Equal(t, []rune("q"), group)
}

func TestDaemonReadBlocks(t *testing.T) {
	src := make(chanSource, 8)
	d := NewDaemon(src, testOptions)
	got := make(chan []rune)
	go func() {
		got <- d.Read()
	}()

	select {
	case <-got:
		t.Fatal("Read returned without input")
	case <-time.After(30 * time.Millisecond):
	}

	src.send("k")
	select {
	case group := <-got:
		assert.Equal(t, []rune("k"), group)
	case <-time.After(2 * time.Second):
		t.Fatal("Read didn't return")
	}
}

func TestDaemonReadContext(t *testing.T) {
	d := NewDaemon(make(chanSource), testOptions)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := d.ReadContext(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDaemonRestart(t *testing.T) {
	errClosed := errors.New("device closed")
	src := make(chanSource, 8)
	src.send("a")
	src <- sourceItem{err: errClosed}
	src.send("b")

	d := NewDaemon(src, testOptions)
	assert.Equal(t, []rune("a"), readGroup(t, d))
	require.Eventually(t, func() bool {
		return d.State() == StateFaulted
	}, 2*time.Second, time.Millisecond)
	assert.ErrorIs(t, d.Err(), errClosed)

	assert.Equal(t, []rune("b"), readGroup(t, d))
	assert.Equal(t, StateRunning, d.State())
	assert.NoError(t, d.Err())
}

func TestDaemonFaultFlushes(t *testing.T) {
	// Units buffered when the source fails are delivered, not dropped
	src := make(chanSource, 8)
	src.send("\x1b[")
	src <- sourceItem{err: ErrNotRaw}
	d := NewDaemon(src, Options{EscapeTimeout: time.Hour})
	assert.Equal(t, []rune("\x1b["), readGroup(t, d))
}

func TestDaemonRestartAfterFaultedWait(t *testing.T) {
	// A reader blocked when the source fails restarts the daemon itself
	src := make(chanSource)
	d := NewDaemon(src, testOptions)
	got := make(chan []rune)
	go func() {
		got <- d.Read()
	}()
	src <- sourceItem{err: ErrNotRaw}
	src.send("z")
	select {
	case group := <-got:
		assert.Equal(t, []rune("z"), group)
	case <-time.After(2 * time.Second):
		t.Fatal("Read didn't recover")
	}
}

func TestDaemonBackoff(t *testing.T) {
	d := NewDaemon(make(chanSource), Options{RestartDelay: 10 * time.Millisecond})
	d.faults.Store(1)
	assert.Equal(t, 10*time.Millisecond, d.backoff())
	d.faults.Store(3)
	assert.Equal(t, 40*time.Millisecond, d.backoff())
	d.faults.Store(20)
	assert.Equal(t, maxRestartDelay, d.backoff())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "faulted", StateFaulted.String())
}

type failingSource struct{ err error }

func (s failingSource) ReadRune() (rune, int, error) {
	return 0, 0, s.err
}

func TestDaemonBackoffDoesNotBlock(t *testing.T) {
	errClosed := errors.New("device closed")
	d := NewDaemon(failingSource{err: errClosed}, Options{RestartDelay: 500 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errs := make(chan error, 1)
	go func() {
		_, err := d.ReadContext(ctx)
		errs <- err
	}()
	require.Eventually(t, func() bool {
		return d.State() == StateFaulted
	}, 2*time.Second, time.Millisecond)
	// Let the reader settle into waiting out the restart delay
	time.Sleep(20 * time.Millisecond)

	start := time.Now()
	_, ok := d.TryRead()
	assert.False(t, ok)
	assert.Equal(t, StateFaulted, d.State())
	assert.ErrorIs(t, d.Err(), errClosed)
	assert.Less(t, time.Since(start).Milliseconds(), int64(100))

	cancel()
	select {
	case err := <-errs:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("ReadContext didn't return after cancel")
	}
}

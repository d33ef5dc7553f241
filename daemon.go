package termfx

import (
	"context"
	"io"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"git.sr.ht/~rockorager/termfx/log"
)

// State is the lifecycle state of a Daemon
type State int

const (
	// StateIdle is a daemon which has never been started
	StateIdle State = iota
	// StateRunning is a daemon with a live collector and grouper
	StateRunning
	// StateFaulted is a daemon whose input source failed. The next read
	// restarts it
	StateFaulted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateFaulted:
		return "faulted"
	default:
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
}

// Daemon turns a blocking, one unit at a time input source into a stream of
// groups. A group is a run of units which most likely belong to a single
// input action: one keypress, one escape sequence or one mouse report.
//
// Two goroutines do the work. The collector reads units from the source
// into a bounded channel. The grouper assembles units into groups, using
// timeouts to decide whether an ESC stands on its own or starts a sequence,
// and pushes completed groups onto an unbounded queue read by Read.
//
// The daemon starts on the first read. The only way it stops is the source
// returning an error (for example because raw mode was turned off). The next
// read joins the stopped goroutines and starts new ones
type Daemon struct {
	src           io.RuneReader
	escapeTimeout time.Duration
	restartDelay  time.Duration
	queueSize     int

	groups *queue[[]rune]
	// faults counts consecutive source failures. Reset by the collector
	// on each successful read
	faults atomic.Int32

	mu        sync.Mutex
	state     State
	err       error
	faultedAt time.Time
	// done is closed when the grouper of the current run exits
	done chan struct{}
	wg   sync.WaitGroup
}

// NewDaemon returns an idle Daemon reading from src
func NewDaemon(src io.RuneReader, opts Options) *Daemon {
	opts = opts.withDefaults()
	return &Daemon{
		src:           src,
		escapeTimeout: opts.EscapeTimeout,
		restartDelay:  opts.RestartDelay,
		queueSize:     opts.QueueSize,
		groups:        newQueue[[]rune](),
	}
}

// Start launches the collector and grouper. It is a no-op if the daemon is
// already running
func (d *Daemon) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.startLocked()
}

func (d *Daemon) startLocked() {
	switch d.state {
	case StateRunning:
		return
	case StateFaulted:
		// The collector has already returned. Wait for the grouper
		// to flush and exit
		d.wg.Wait()
	}
	units := make(chan rune, d.queueSize)
	d.done = make(chan struct{})
	d.state = StateRunning
	d.err = nil
	d.wg.Add(2)
	go d.collect(units)
	go d.group(units, d.done)
	log.Debug("[daemon] started")
}

// State returns the current lifecycle state
func (d *Daemon) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Err returns the error which faulted the daemon, if it is faulted
func (d *Daemon) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

// Read blocks until a group is available and returns it. Groups are returned
// in the order the units arrived
func (d *Daemon) Read() []rune {
	group, _ := d.ReadContext(context.Background())
	return group
}

// ReadContext is like Read, but gives up when ctx is done
func (d *Daemon) ReadContext(ctx context.Context) ([]rune, error) {
	for {
		// Groups flushed by a run which has since faulted are handed out
		// before restarting
		if group, ok := d.groups.pop(); ok {
			return group, nil
		}
		done, err := d.ensureRunning(ctx)
		if err != nil {
			return nil, err
		}
		select {
		case <-d.groups.wait():
		case <-done:
			// The source failed. Loop around to restart
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// TryRead returns the oldest group, or false if none is queued. It never
// blocks: a faulted daemon is only restarted once its restart delay has
// passed
func (d *Daemon) TryRead() ([]rune, bool) {
	d.mu.Lock()
	switch d.state {
	case StateIdle:
		d.startLocked()
	case StateFaulted:
		if time.Since(d.faultedAt) >= d.backoff() {
			d.restartLocked()
		}
	}
	d.mu.Unlock()
	return d.groups.pop()
}

// ensureRunning starts or restarts the daemon as needed and returns the done
// channel of the current run. The restart delay is waited out without holding
// the lock
func (d *Daemon) ensureRunning(ctx context.Context) (<-chan struct{}, error) {
	for {
		d.mu.Lock()
		switch d.state {
		case StateIdle:
			d.startLocked()
		case StateFaulted:
			if wait := d.backoff() - time.Since(d.faultedAt); wait > 0 {
				d.mu.Unlock()
				t := time.NewTimer(wait)
				select {
				case <-t.C:
				case <-ctx.Done():
					t.Stop()
					return nil, ctx.Err()
				}
				// Another reader may have restarted it in the meantime
				continue
			}
			d.restartLocked()
		}
		done := d.done
		d.mu.Unlock()
		return done, nil
	}
}

func (d *Daemon) restartLocked() {
	log.Debug("[daemon] restarting", "faults", d.faults.Load(), "error", d.err)
	d.startLocked()
}

// backoff is the restart delay for the current number of consecutive faults
func (d *Daemon) backoff() time.Duration {
	delay := d.restartDelay
	for i := int32(1); i < d.faults.Load(); i += 1 {
		delay *= 2
		if delay >= maxRestartDelay {
			return maxRestartDelay
		}
	}
	return delay
}

func (d *Daemon) fault(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.faults.Add(1)
	d.state = StateFaulted
	d.err = err
	d.faultedAt = time.Now()
	log.Warn("[daemon] input source failed", "error", err)
}

// collect reads units from the source. Closing units is the end of input
// signal for the grouper
func (d *Daemon) collect(units chan<- rune) {
	defer d.wg.Done()
	defer close(units)
	for {
		r, _, err := d.src.ReadRune()
		if err != nil {
			d.fault(err)
			return
		}
		d.faults.Store(0)
		units <- r
	}
}

// group assembles units into groups.
//
// With an empty buffer it waits for the next unit indefinitely. A unit which
// isn't ESC is flushed as soon as no further units are immediately
// available, which keeps pasted text together. ESC flushes whatever is
// buffered and starts a new group, then waits up to ten escape timeouts for
// the rest of the sequence. Once the group is ESC plus one unit, a third
// unit other than 'M' means this is not a mouse report: every other sequence
// in the table completes quickly, so the wait drops to one escape timeout.
// The group is flushed when the wait expires.
//
// This heuristic is tied to the decode table. Sequences added to the table
// that need more time than the short window must be accounted for here
func (d *Daemon) group(units <-chan rune, done chan<- struct{}) {
	defer d.wg.Done()
	defer close(done)

	const drain time.Duration = 0
	var (
		buf     []rune
		timeout time.Duration
		timer   = time.NewTimer(time.Hour)
	)
	timer.Stop()
	defer timer.Stop()

	flush := func() {
		if len(buf) == 0 {
			return
		}
		group := make([]rune, len(buf))
		copy(group, buf)
		buf = buf[:0]
		d.groups.push(group)
		log.Trace("[daemon] group", "seq", strconv.QuoteToASCII(string(group)))
	}

	for {
		var (
			r  rune
			ok bool
		)
		switch {
		case len(buf) == 0:
			r, ok = <-units
		case timeout == drain:
			select {
			case r, ok = <-units:
			default:
				flush()
				continue
			}
		default:
			resetTimer(timer, timeout)
			select {
			case r, ok = <-units:
			case <-timer.C:
				flush()
				continue
			}
		}
		if !ok {
			// The source failed. Nothing more will arrive for this
			// group
			flush()
			log.Debug("[daemon] grouper exiting")
			return
		}

		switch {
		case r == KeyEsc:
			flush()
			timeout = 10 * d.escapeTimeout
		case len(buf) == 0:
			timeout = drain
		case len(buf) == 2 && buf[0] == KeyEsc && r != 'M':
			timeout = d.escapeTimeout
		}
		buf = append(buf, r)
	}
}

// resetTimer stops t, drains a pending fire, and resets it to dur
func resetTimer(t *time.Timer, dur time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(dur)
}

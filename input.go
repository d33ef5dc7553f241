package termfx

import (
	"context"
	"io"
	"sync"

	"git.sr.ht/~rockorager/termfx/log"
)

// Input pairs a Daemon with a Decoder. One group can decode to several
// events; Getch hands them out one at a time
type Input struct {
	daemon  *Daemon
	decoder *Decoder

	mu sync.Mutex
	// pending holds decoded groups in arrival order
	pending []decoded
}

// decoded is the result of decoding one group. err is reported after events
type decoded struct {
	events []Event
	err    error
}

// NewInput returns an Input reading units from src. Environment overrides
// (see Options) are applied to opts
func NewInput(src io.RuneReader, opts Options) *Input {
	opts = opts.withDefaults().applyEnv()
	if opts.Logger != nil {
		log.SetLogger(opts.Logger)
	}
	return &Input{
		daemon:  NewDaemon(src, opts),
		decoder: NewDecoder(opts),
	}
}

// Daemon returns the underlying daemon
func (in *Input) Daemon() *Daemon {
	return in.daemon
}

// GetchRaw blocks until the next group of raw units is available. It does
// not decode escape sequences
func (in *Input) GetchRaw() []rune {
	return in.daemon.Read()
}

// TryGetchRaw returns the next group if one is available, without blocking
func (in *Input) TryGetchRaw() ([]rune, bool) {
	return in.daemon.TryRead()
}

// Getch blocks until the next event is available. Decode errors are local to
// the call which returns them: the following call continues with the next
// input
func (in *Input) Getch() (Event, error) {
	return in.GetchContext(context.Background())
}

// GetchContext is like Getch, but gives up when ctx is done
func (in *Input) GetchContext(ctx context.Context) (Event, error) {
	in.mu.Lock()
	defer in.mu.Unlock()
	for {
		for len(in.pending) > 0 {
			head := &in.pending[0]
			if len(head.events) > 0 {
				ev := head.events[0]
				head.events = head.events[1:]
				return ev, nil
			}
			err := head.err
			in.pending = in.pending[1:]
			if err != nil {
				return nil, err
			}
		}
		group, err := in.daemon.ReadContext(ctx)
		if err != nil {
			return nil, err
		}
		in.decodeLocked(group)
	}
}

func (in *Input) decodeLocked(group []rune) {
	events, err := in.decoder.Decode(group)
	if len(events) == 0 && err == nil {
		return
	}
	in.pending = append(in.pending, decoded{events: events, err: err})
}

// requeue decodes group into the pending events of the next Getch. Used for
// user input which arrives while waiting for the reply to a query
func (in *Input) requeue(group []rune) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.decodeLocked(group)
}

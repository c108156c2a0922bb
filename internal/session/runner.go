package session

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vtmai/celwrite/internal/task"
)

// DraftStore persists drafts between sessions, keyed by task type. Writes
// are advisory: a failed save must never interrupt the editing loop.
type DraftStore interface {
	Load(t task.Type) (draft string, ok bool)
	Save(t task.Type, draft string) error
	Clear(t task.Type) error
}

// Finalizer receives the finalized submission. What happens to it (scoring,
// persistence, navigation) is entirely the caller's concern.
type Finalizer interface {
	Finalize(ctx context.Context, sub Submission) error
}

type cmdKind int

const (
	cmdEdit cmdKind = iota
	cmdSubmit
	cmdSaveNow
	cmdResolve
	cmdSnapshot
	cmdLeave
	cmdConfirmLeave
)

type command struct {
	kind  cmdKind
	text  string
	err   error
	reply chan cmdReply
}

type cmdReply struct {
	snap Session
	err  error
	ok   bool
}

// Runner drives one Session on a single event loop goroutine. Ticker
// ticks, edits, submits and finalize outcomes are all serialized onto the
// loop, so the session state needs no locking.
type Runner struct {
	cmds     chan command
	quit     chan struct{}
	finished chan struct{}

	session   Session
	drafts    DraftStore
	finalizer Finalizer
	tickEvery time.Duration
	notify    func(string)
}

// Option configures a Runner.
type Option func(*Runner)

// WithTickInterval overrides the wall-clock duration of one countdown tick.
// Each tick still counts as one second of session time.
func WithTickInterval(d time.Duration) Option {
	return func(r *Runner) { r.tickEvery = d }
}

// WithTimeLimit overrides the session countdown, in seconds.
func WithTimeLimit(seconds int) Option {
	return func(r *Runner) { r.session.Remaining = seconds }
}

// WithNotifier sets the sink for user-facing notices (time up, etc).
func WithNotifier(fn func(string)) Option {
	return func(r *Runner) { r.notify = fn }
}

// NewRunner builds a runner for one timed editing pass, recovering any
// previously autosaved draft for the task type.
func NewRunner(t task.Type, prompt string, drafts DraftStore, fin Finalizer, opts ...Option) *Runner {
	recovered, _ := drafts.Load(t)
	r := &Runner{
		cmds:      make(chan command),
		quit:      make(chan struct{}),
		finished:  make(chan struct{}),
		session:   New(t, prompt, recovered),
		drafts:    drafts,
		finalizer: fin,
		tickEvery: time.Second,
		notify:    func(string) {},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start launches the event loop.
func (r *Runner) Start() { go r.loop() }

// Stop terminates the event loop. It does not cancel a finalize in flight.
func (r *Runner) Stop() { close(r.quit) }

// Finished is closed once the session reaches Submitted.
func (r *Runner) Finished() <-chan struct{} { return r.finished }

// Edit replaces the draft text.
func (r *Runner) Edit(text string) {
	r.send(command{kind: cmdEdit, text: text})
}

// Submit attempts a manual submission; validation errors are returned
// synchronously and leave the session untouched.
func (r *Runner) Submit() error {
	rep := r.send(command{kind: cmdSubmit})
	return rep.err
}

// SaveNow persists the draft immediately.
func (r *Runner) SaveNow() {
	r.send(command{kind: cmdSaveNow})
}

// Snapshot returns a copy of the current session state.
func (r *Runner) Snapshot() Session {
	return r.send(command{kind: cmdSnapshot}).snap
}

// RequestLeave reports whether leaving needs explicit confirmation.
func (r *Runner) RequestLeave() bool {
	return r.send(command{kind: cmdLeave}).ok
}

// ConfirmLeave clears the in-progress flag after the user confirmed.
func (r *Runner) ConfirmLeave() {
	r.send(command{kind: cmdConfirmLeave})
}

func (r *Runner) send(cmd command) cmdReply {
	cmd.reply = make(chan cmdReply, 1)
	select {
	case r.cmds <- cmd:
		return <-cmd.reply
	case <-r.quit:
		return cmdReply{snap: r.session}
	}
}

func (r *Runner) loop() {
	var ticker *time.Ticker
	var tickC <-chan time.Time

	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker = nil
			tickC = nil
		}
	}
	defer stopTicker()

	apply := func(effects []Effect) {
		now := time.Now()
		for _, eff := range effects {
			switch eff.Kind {
			case StartTimer:
				ticker = time.NewTicker(r.tickEvery)
				tickC = ticker.C
			case StopTimer:
				stopTicker()
			case SaveDraft:
				if err := r.drafts.Save(r.session.Task, r.session.Draft); err != nil {
					log.Warn().Err(err).Str("task", r.session.Task.String()).Msg("Draft autosave failed")
				} else {
					r.session = r.session.MarkSaved(now)
				}
			case ClearDraft:
				if err := r.drafts.Clear(r.session.Task); err != nil {
					log.Warn().Err(err).Str("task", r.session.Task.String()).Msg("Failed to clear saved draft")
				}
			case NotifyTimeUp:
				r.notify("Time is up! Submitting your response...")
			case Finalize:
				sub := *eff.Submission
				go func() {
					err := r.finalizer.Finalize(context.Background(), sub)
					select {
					case r.cmds <- command{kind: cmdResolve, err: err, reply: make(chan cmdReply, 1)}:
					case <-r.quit:
					}
				}()
			}
		}
	}

	for {
		select {
		case <-r.quit:
			return
		case now := <-tickC:
			next, effects := r.session.Tick(now)
			r.session = next
			apply(effects)
		case cmd := <-r.cmds:
			switch cmd.kind {
			case cmdEdit:
				next, effects := r.session.Edit(cmd.text, time.Now())
				r.session = next
				apply(effects)
				cmd.reply <- cmdReply{snap: r.session}
			case cmdSubmit:
				next, effects, err := r.session.Submit(time.Now())
				if err != nil {
					cmd.reply <- cmdReply{snap: r.session, err: err}
					continue
				}
				r.session = next
				apply(effects)
				cmd.reply <- cmdReply{snap: r.session}
			case cmdSaveNow:
				if err := r.drafts.Save(r.session.Task, r.session.Draft); err != nil {
					log.Warn().Err(err).Msg("Manual draft save failed")
				} else {
					r.session = r.session.MarkSaved(time.Now())
				}
				cmd.reply <- cmdReply{snap: r.session}
			case cmdResolve:
				next, effects := r.session.Resolve(cmd.err)
				r.session = next
				apply(effects)
				if r.session.Status == Submitted {
					close(r.finished)
				} else if cmd.err != nil {
					r.notify("Failed to submit. Please try again.")
				}
			case cmdSnapshot:
				cmd.reply <- cmdReply{snap: r.session}
			case cmdLeave:
				cmd.reply <- cmdReply{snap: r.session, ok: r.session.LeaveRequiresConfirm()}
			case cmdConfirmLeave:
				r.session = r.session.ConfirmLeave()
				cmd.reply <- cmdReply{snap: r.session}
			}
		}
	}
}

package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vtmai/celwrite/internal/task"
)

// Status is the lifecycle state of one timed writing session.
type Status int

const (
	Idle Status = iota
	Active
	Submitting
	Submitted
	Expired
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case Submitting:
		return "submitting"
	case Submitted:
		return "submitted"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// AutosaveTicks is the number of countdown ticks between draft autosaves.
const AutosaveTicks = 30

// ErrEmptyDraft rejects a manual submit with nothing written.
var ErrEmptyDraft = errors.New("draft is empty")

// LengthError rejects a manual submit whose word count falls outside the
// target band. Auto-submission on expiry never produces it.
type LengthError struct {
	Count int
	Min   int
	Max   int
}

func (e *LengthError) Error() string {
	if e.Count < e.Min {
		return fmt.Sprintf("write at least %d more words", e.Min-e.Count)
	}
	return fmt.Sprintf("response exceeds the %d word limit", e.Max)
}

// Submission is the finalized output of a session. It is the session's only
// output contract; scoring and persistence belong to the caller.
type Submission struct {
	Task      task.Type
	Prompt    string
	Response  string
	WordCount int
	TimeSpent int // seconds
}

// EffectKind enumerates the side-effect intents a transition can request.
type EffectKind int

const (
	StartTimer EffectKind = iota
	StopTimer
	SaveDraft
	ClearDraft
	NotifyTimeUp
	Finalize
)

// Effect is one side-effect intent returned by a transition. The value
// object never performs effects itself; the Runner (or a test) does.
type Effect struct {
	Kind       EffectKind
	Submission *Submission // set only for Finalize
}

// Session is the state of one timed editing pass. Transitions are pure:
// they return the next state plus the effects the caller must perform.
type Session struct {
	Task       task.Type
	Prompt     string
	Target     task.WordTarget
	Status     Status
	Draft      string
	Remaining  int // seconds left on the countdown
	InProgress bool
	StartedAt  time.Time
	LastSaved  time.Time

	ticksSinceSave int
}

// New builds an Idle session. A previously autosaved draft for the task
// type may be passed in to pre-populate the editor (crash/refresh recovery);
// recovery alone does not start the timer.
func New(t task.Type, prompt string, recoveredDraft string) Session {
	return Session{
		Task:      t,
		Prompt:    prompt,
		Target:    t.WordTarget(),
		Status:    Idle,
		Draft:     recoveredDraft,
		Remaining: int(t.TimeLimit().Seconds()),
	}
}

// WordCount derives the current draft word count.
func (s Session) WordCount() int { return task.WordCount(s.Draft) }

// Fit classifies the current word count against the target band.
func (s Session) Fit() task.Fit { return s.Target.Classify(s.WordCount()) }

// Edit replaces the draft text. The first non-empty edit activates the
// session: the start time is recorded, the in-progress flag is raised and a
// StartTimer effect is requested. Edits after submission begins are ignored.
func (s Session) Edit(text string, now time.Time) (Session, []Effect) {
	switch s.Status {
	case Idle:
		s.Draft = text
		if text == "" {
			return s, nil
		}
		s.Status = Active
		s.StartedAt = now
		s.InProgress = true
		return s, []Effect{{Kind: StartTimer}}
	case Active:
		s.Draft = text
		return s, nil
	default:
		return s, nil
	}
}

// Tick advances the countdown by one second. Every AutosaveTicks ticks with
// a draft present, a SaveDraft effect is requested. When the countdown
// reaches zero the session expires and auto-submission is triggered with
// whatever draft exists, bypassing the minimum-length gate.
func (s Session) Tick(now time.Time) (Session, []Effect) {
	if s.Status != Active {
		return s, nil
	}
	if s.Remaining > 0 {
		s.Remaining--
	}
	if s.Remaining == 0 {
		s.Status = Expired
		sub := s.submission(now)
		return s, []Effect{{Kind: StopTimer}, {Kind: NotifyTimeUp}, {Kind: Finalize, Submission: &sub}}
	}
	s.ticksSinceSave++
	if s.ticksSinceSave >= AutosaveTicks && s.Draft != "" {
		s.ticksSinceSave = 0
		return s, []Effect{{Kind: SaveDraft}}
	}
	return s, nil
}

// Submit is the manual submission path. The draft must be non-empty and the
// word count must lie within the target band, inclusive; a violation
// returns an error with no state change and no effects.
func (s Session) Submit(now time.Time) (Session, []Effect, error) {
	if s.Status != Active {
		return s, nil, fmt.Errorf("cannot submit while %s", s.Status)
	}
	wc := s.WordCount()
	if wc == 0 {
		return s, nil, ErrEmptyDraft
	}
	if s.Target.Classify(wc) != task.Acceptable {
		return s, nil, &LengthError{Count: wc, Min: s.Target.Min, Max: s.Target.Max}
	}
	s.Status = Submitting
	sub := s.submission(now)
	return s, []Effect{{Kind: StopTimer}, {Kind: Finalize, Submission: &sub}}, nil
}

// Resolve records the outcome of the finalize operation. Success moves the
// session to Submitted and clears the stored draft. Failure returns it to
// Active with the timer left stopped so the user can retry manually.
func (s Session) Resolve(err error) (Session, []Effect) {
	if s.Status != Submitting && s.Status != Expired {
		return s, nil
	}
	if err == nil {
		s.Status = Submitted
		s.InProgress = false
		return s, []Effect{{Kind: ClearDraft}}
	}
	s.Status = Active
	return s, nil
}

// MarkSaved records a completed draft save.
func (s Session) MarkSaved(now time.Time) Session {
	s.LastSaved = now
	return s
}

// LeaveRequiresConfirm reports whether navigating away must be intercepted:
// true while the session is in progress and submission is not underway.
func (s Session) LeaveRequiresConfirm() bool {
	return s.InProgress && s.Status != Submitting && s.Status != Submitted
}

// ConfirmLeave drops the in-progress flag, allowing navigation. The rest of
// the session state is left untouched.
func (s Session) ConfirmLeave() Session {
	s.InProgress = false
	return s
}

func (s Session) submission(now time.Time) Submission {
	spent := 0
	if !s.StartedAt.IsZero() {
		spent = int(now.Sub(s.StartedAt).Seconds())
		if spent < 0 {
			spent = 0
		}
	}
	return Submission{
		Task:      s.Task,
		Prompt:    s.Prompt,
		Response:  strings.TrimSpace(s.Draft),
		WordCount: s.WordCount(),
		TimeSpent: spent,
	}
}

package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vtmai/celwrite/internal/task"
)

type memDraftStore struct {
	mu     sync.Mutex
	drafts map[task.Type]string
}

func newMemDraftStore() *memDraftStore {
	return &memDraftStore{drafts: map[task.Type]string{}}
}

func (s *memDraftStore) Load(t task.Type) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[t]
	return d, ok
}

func (s *memDraftStore) Save(t task.Type, draft string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[t] = draft
	return nil
}

func (s *memDraftStore) Clear(t task.Type) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, t)
	return nil
}

type fakeFinalizer struct {
	mu   sync.Mutex
	errs []error
	subs []Submission
}

func (f *fakeFinalizer) Finalize(ctx context.Context, sub Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, sub)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return err
	}
	return nil
}

func (f *fakeFinalizer) submissions() []Submission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Submission(nil), f.subs...)
}

func waitFinished(t *testing.T, r *Runner) {
	t.Helper()
	select {
	case <-r.Finished():
	case <-time.After(5 * time.Second):
		t.Fatal("session did not finish in time")
	}
}

func TestRunnerRecoversDraft(t *testing.T) {
	store := newMemDraftStore()
	require.NoError(t, store.Save(task.Email, "recovered text"))

	r := NewRunner(task.Email, "prompt", store, &fakeFinalizer{})
	r.Start()
	defer r.Stop()

	snap := r.Snapshot()
	assert.Equal(t, "recovered text", snap.Draft)
	assert.Equal(t, Idle, snap.Status)
}

func TestRunnerManualSubmit(t *testing.T) {
	store := newMemDraftStore()
	fin := &fakeFinalizer{}
	r := NewRunner(task.Email, "prompt", store, fin)
	r.Start()
	defer r.Stop()

	r.Edit(words(160))
	require.NoError(t, r.Submit())
	waitFinished(t, r)

	snap := r.Snapshot()
	assert.Equal(t, Submitted, snap.Status)

	subs := fin.submissions()
	require.Len(t, subs, 1)
	assert.Equal(t, 160, subs[0].WordCount)
	assert.Equal(t, task.Email, subs[0].Task)

	_, ok := store.Load(task.Email)
	assert.False(t, ok, "stored draft is cleared after a successful submission")
}

func TestRunnerSubmitValidation(t *testing.T) {
	r := NewRunner(task.Email, "prompt", newMemDraftStore(), &fakeFinalizer{})
	r.Start()
	defer r.Stop()

	r.Edit(words(40))
	err := r.Submit()

	var lenErr *LengthError
	require.ErrorAs(t, err, &lenErr)
	assert.Equal(t, Active, r.Snapshot().Status)

	select {
	case <-r.Finished():
		t.Fatal("rejected submission must not finish the session")
	default:
	}
}

func TestRunnerExpiry(t *testing.T) {
	var mu sync.Mutex
	var notices []string
	fin := &fakeFinalizer{}
	r := NewRunner(task.Email, "prompt", newMemDraftStore(), fin,
		WithTickInterval(time.Millisecond),
		WithTimeLimit(3),
		WithNotifier(func(msg string) {
			mu.Lock()
			notices = append(notices, msg)
			mu.Unlock()
		}),
	)
	r.Start()
	defer r.Stop()

	r.Edit("far too short")
	waitFinished(t, r)

	subs := fin.submissions()
	require.Len(t, subs, 1)
	assert.Equal(t, 3, subs[0].WordCount, "expiry submits even below the minimum")

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, notices)
	assert.Contains(t, notices[0], "Time is up")
}

func TestRunnerRetryAfterFailedFinalize(t *testing.T) {
	fin := &fakeFinalizer{errs: []error{errors.New("service unavailable")}}
	r := NewRunner(task.Email, "prompt", newMemDraftStore(), fin)
	r.Start()
	defer r.Stop()

	r.Edit(words(160))
	require.NoError(t, r.Submit())

	require.Eventually(t, func() bool {
		return r.Snapshot().Status == Active
	}, 5*time.Second, 5*time.Millisecond, "failed finalize returns the session to active")

	assert.Equal(t, words(160), r.Snapshot().Draft)

	require.NoError(t, r.Submit())
	waitFinished(t, r)
	assert.Len(t, fin.submissions(), 2)
}

func TestRunnerSaveNow(t *testing.T) {
	store := newMemDraftStore()
	r := NewRunner(task.Email, "prompt", store, &fakeFinalizer{})
	r.Start()
	defer r.Stop()

	r.Edit("work in progress")
	r.SaveNow()

	saved, ok := store.Load(task.Email)
	require.True(t, ok)
	assert.Equal(t, "work in progress", saved)
	assert.False(t, r.Snapshot().LastSaved.IsZero())
}

func TestRunnerLeaveGuard(t *testing.T) {
	r := NewRunner(task.Email, "prompt", newMemDraftStore(), &fakeFinalizer{})
	r.Start()
	defer r.Stop()

	assert.False(t, r.RequestLeave(), "nothing to guard before the first edit")

	r.Edit("started writing")
	assert.True(t, r.RequestLeave())

	r.ConfirmLeave()
	assert.False(t, r.RequestLeave())
}

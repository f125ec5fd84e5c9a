package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mind-engage/cefr-assess/internal/content"
	"github.com/mind-engage/cefr-assess/internal/grading"
)

// SubmitHook observes every session that reaches Completed.
type SubmitHook func(set content.Set, s State)

type entry struct {
	state   State
	set     content.Set // snapshot taken at creation
	touched time.Time
}

// Store keeps sessions in memory. Each session grades against the set as it
// was when the session was created.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]entry

	sets   content.Store
	grader *grading.Grader
	now    func() time.Time
	ttl    time.Duration
	hooks  []SubmitHook
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithTTL sets how long an untouched session survives Sweep.
func WithTTL(d time.Duration) Option {
	return func(s *Store) { s.ttl = d }
}

func WithSubmitHook(h SubmitHook) Option {
	return func(s *Store) { s.hooks = append(s.hooks, h) }
}

func NewStore(sets content.Store, g *grading.Grader, opts ...Option) *Store {
	st := &Store{
		sessions: map[string]entry{},
		sets:     sets,
		grader:   g,
		now:      time.Now,
		ttl:      2 * time.Hour,
	}
	for _, o := range opts {
		o(st)
	}
	return st
}

func (st *Store) Create(ctx context.Context, setID string) (State, error) {
	set, err := st.sets.GetSet(ctx, setID)
	if err != nil {
		return State{}, err
	}
	s := New(uuid.NewString(), set.ID)
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID] = entry{state: s, set: set, touched: st.now()}
	return s, nil
}

// Get returns a session, submitting it first if its deadline passed.
func (st *Store) Get(_ context.Context, id string) (State, error) {
	return st.update(id, nil)
}

// Set returns the set snapshot a session is graded against.
func (st *Store) Set(_ context.Context, id string) (content.Set, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	e, ok := st.sessions[id]
	if !ok {
		return content.Set{}, errors.Wrap(ErrNotFound, id)
	}
	return e.set, nil
}

func (st *Store) Start(_ context.Context, id string) (State, error) {
	return st.update(id, func(set content.Set, s State, now time.Time) (State, error) {
		return Start(s, set, now)
	})
}

func (st *Store) Answer(_ context.Context, id string, recs ...grading.Answer) (State, error) {
	return st.update(id, func(set content.Set, s State, _ time.Time) (State, error) {
		return Answer(set, s, recs...)
	})
}

func (st *Store) Submit(_ context.Context, id string) (State, error) {
	return st.update(id, func(set content.Set, s State, now time.Time) (State, error) {
		return Submit(set, s, now, st.grader)
	})
}

func (st *Store) Reset(_ context.Context, id string) (State, error) {
	return st.update(id, func(_ content.Set, s State, _ time.Time) (State, error) {
		return Reset(s)
	})
}

// update applies fn under the write lock. An expired session is submitted at
// its deadline before fn sees it, and stays submitted even if fn fails.
func (st *Store) update(id string, fn func(content.Set, State, time.Time) (State, error)) (State, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.sessions[id]
	if !ok {
		return State{}, errors.Wrap(ErrNotFound, id)
	}
	now := st.now()
	prev := e.state.Phase
	s := e.state
	var err error
	if Expired(s, now) {
		if s, err = Submit(e.set, s, time.Unix(s.Deadline, 0), st.grader); err != nil {
			return e.state, err
		}
	}
	var fnErr error
	if fn != nil {
		next, err := fn(e.set, s, now)
		if err != nil {
			fnErr = err
		} else {
			s = next
		}
	}
	st.sessions[id] = entry{state: s, set: e.set, touched: now}
	if prev != PhaseCompleted && s.Phase == PhaseCompleted {
		for _, h := range st.hooks {
			h(e.set, s)
		}
	}
	return s, fnErr
}

// Sweep drops sessions untouched for longer than the TTL and returns how many
// it removed.
func (st *Store) Sweep(now time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for id, e := range st.sessions {
		if now.Sub(e.touched) > st.ttl {
			delete(st.sessions, id)
			n++
		}
	}
	return n
}

// Len is the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// RunSweeper sweeps every interval until ctx is done.
func (st *Store) RunSweeper(ctx context.Context, every time.Duration, onSweep func(removed int)) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n := st.Sweep(st.now())
			if onSweep != nil {
				onSweep(n)
			}
		}
	}
}

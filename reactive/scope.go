package reactive

import "sync"

// DefaultMaxPropagationDepth is the depth cap spec.md §6 configures as
// `max_propagation_depth`, used when a Scope is constructed with 0.
const DefaultMaxPropagationDepth = 100

// Scope is the task-local reactivity root: it owns every Effect created
// with it (passed to CreateEffect, or installed by Run when CreateEffect
// gets a nil scope), holds the FIFO flush queue, and caps runaway
// propagation. A live session owns exactly one Scope; tests create their
// own throwaway scopes.
//
// A Scope is not safe for concurrent use from multiple goroutines at once —
// per spec.md §5, all reactive work for a given owner happens on a single
// cooperative task.
type Scope struct {
	mu       sync.Mutex
	pending  []*Effect
	owned    []*Effect
	inFlush  bool
	disposed bool

	equality            Equality
	maxPropagationDepth int
	metrics             *Metrics
}

// ScopeOption configures a Scope at construction.
type ScopeOption func(*Scope)

// WithMetrics attaches Prometheus instrumentation to a Scope. Omit it (the
// default) to run without metrics, e.g. in tests.
func WithMetrics(m *Metrics) ScopeOption {
	return func(s *Scope) { s.metrics = m }
}

// NewScope creates a Scope. A zero Equality is EqualityValue; a zero
// maxPropagationDepth uses DefaultMaxPropagationDepth.
func NewScope(equality Equality, maxPropagationDepth int, opts ...ScopeOption) *Scope {
	if maxPropagationDepth <= 0 {
		maxPropagationDepth = DefaultMaxPropagationDepth
	}
	s := &Scope{equality: equality, maxPropagationDepth: maxPropagationDepth}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// schedule enqueues an effect for the next Flush, deduplicating by identity
// so an effect that is marked dirty multiple times before a flush still
// runs once, per spec.md §4.R.
func (s *Scope) schedule(e *Effect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	for _, p := range s.pending {
		if p == e {
			return
		}
	}
	s.pending = append(s.pending, e)
}

// Flush runs every pending effect, in FIFO schedule order. Effects that
// mutate further signals during their run may schedule more effects; those
// are appended to the same flush (depth-first settlement, per spec.md §4.R
// "Fairness / reentrancy"), not deferred to the next Flush call. If the
// total number of effect runs in one Flush call exceeds
// MaxPropagationDepth, Flush aborts and returns a *CycleError; the scope
// remains usable afterward.
func (s *Scope) Flush() error {
	s.mu.Lock()
	if s.inFlush || s.disposed {
		s.mu.Unlock()
		return nil
	}
	s.inFlush = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlush = false
		s.mu.Unlock()
	}()

	runs := 0
	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.mu.Unlock()
			if runs > 0 {
				s.metrics.flush()
			}
			return nil
		}
		next := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()

		next.run()
		s.metrics.effectRun()

		runs++
		if runs > s.maxPropagationDepth {
			s.mu.Lock()
			s.pending = nil
			s.mu.Unlock()
			s.metrics.flush()
			s.metrics.cycleAbort()
			return &CycleError{Depth: runs, EffectName: next.Name()}
		}
	}
}

// HasPending reports whether any effect is queued for the next Flush.
func (s *Scope) HasPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending) > 0
}

// Dispose disposes every effect this scope still owns and marks it so no
// further scheduling takes effect. Idempotent.
func (s *Scope) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	owned := s.owned
	s.owned = nil
	s.pending = nil
	s.mu.Unlock()

	for _, e := range owned {
		e.Dispose()
	}
}

// registerOwned tracks an effect for bulk disposal; called by CreateEffect.
func (s *Scope) registerOwned(e *Effect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.owned = append(s.owned, e)
}

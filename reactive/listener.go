package reactive

// Listener is anything that can subscribe to a signal: an Effect or a
// Derived. Signals hold Listeners as non-owning back-references — disposing
// a Listener must make it unreachable from every signal it subscribed to.
type Listener interface {
	// id uniquely identifies the listener so subscriber sets can
	// deduplicate and remove by identity.
	id() uint64

	// notifyDirty is called synchronously, in the mutator's call frame,
	// when a tracked dependency changes. Effects use it to schedule
	// themselves on their Scope's flush queue; Deriveds use it to mark
	// themselves stale and eagerly propagate to their own subscribers.
	notifyDirty()
}

// subscriberSet is the shared subscriber-management logic embedded in both
// Signal and Derived (a Derived is a signal to its readers and a listener
// to its own dependencies).
type subscriberSet struct {
	subs []Listener
}

func (s *subscriberSet) subscribe(l Listener) {
	if l == nil {
		return
	}
	for _, existing := range s.subs {
		if existing.id() == l.id() {
			return
		}
	}
	s.subs = append(s.subs, l)
}

func (s *subscriberSet) unsubscribe(l Listener) {
	if l == nil {
		return
	}
	for i, existing := range s.subs {
		if existing.id() == l.id() {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// notifyAll calls notifyDirty on every current subscriber, in insertion
// (subscription) order, matching the FIFO propagation order the
// specification requires for glitch-free single-pass updates.
func (s *subscriberSet) notifyAll() {
	// Copy first: a subscriber's notifyDirty may itself mutate s.subs
	// (e.g. a derived recomputing and resubscribing) while we iterate.
	subs := make([]Listener, len(s.subs))
	copy(subs, s.subs)
	for _, l := range subs {
		l.notifyDirty()
	}
}

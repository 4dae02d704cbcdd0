package session

import (
	"sync"

	"github.com/flowui-dev/flowui/element"
)

// Registry maps stable element identifiers to the live element that owns
// them, the lookup table the inbound loop consults for target_id per
// spec.md §4.S. Grounded on the teacher's session.components map, but
// keyed by the numeric element ID rather than a string HID since this
// module's Element already carries one.
type Registry struct {
	mu   sync.RWMutex
	byID map[uint64]*element.Element
}

func newRegistry() *Registry {
	return &Registry{byID: make(map[uint64]*element.Element)}
}

// Lookup returns the element registered under id, if any.
func (r *Registry) Lookup(id uint64) (*element.Element, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byID[id]
	return e, ok
}

// RebuildFull clears the registry and re-registers every element in root's
// subtree, per spec.md §4.S's "a full rerender clears the registry and
// re-registers the tree".
func (r *Registry) RebuildFull(root *element.Element) {
	fresh := make(map[uint64]*element.Element)
	registerSubtree(fresh, root)
	r.mu.Lock()
	r.byID = fresh
	r.mu.Unlock()
}

// RebuildPartial unregisters every identifier under oldSubtree and
// registers every identifier under newSubtree, per spec.md §4.S's partial
// rerender rule: "unregisters the old subtree's identifiers and registers
// the new one; identifiers are the stable element identifiers, not
// positions."
func (r *Registry) RebuildPartial(oldSubtree, newSubtree *element.Element) {
	r.mu.Lock()
	defer r.mu.Unlock()
	unregisterSubtree(r.byID, oldSubtree)
	registerSubtree(r.byID, newSubtree)
}

func registerSubtree(m map[uint64]*element.Element, e *element.Element) {
	if e == nil {
		return
	}
	m[e.ID()] = e
	for _, c := range e.Children() {
		registerSubtree(m, c)
	}
}

func unregisterSubtree(m map[uint64]*element.Element, e *element.Element) {
	if e == nil {
		return
	}
	delete(m, e.ID())
	for _, c := range e.Children() {
		unregisterSubtree(m, c)
	}
}

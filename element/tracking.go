package element

import (
	"runtime"
	"sync"
)

// parentStack is one goroutine's current-parent chain, encoded as a slice
// acting as a stack. Elements are built per-goroutine (one per session, or
// one per test), so a sync.Map keyed by goroutine id is enough to keep
// stacks from different goroutines apart without a global lock on every
// push/pop.
type parentStack struct {
	mu    sync.Mutex
	stack []*Element
}

var stacks sync.Map // goroutine id -> *parentStack

// goroutineID parses the "goroutine N " header off runtime.Stack, the same
// trick used by the reactive package's task-local tracking slot.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := 10; i < n; i++ {
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

func currentStack() *parentStack {
	gid := goroutineID()
	if s, ok := stacks.Load(gid); ok {
		return s.(*parentStack)
	}
	s := &parentStack{}
	actual, _ := stacks.LoadOrStore(gid, s)
	return actual.(*parentStack)
}

// currentParent returns the ambient parent for the calling goroutine, or
// nil if no scope is open.
func currentParent() *Element {
	s := currentStack()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.stack) == 0 {
		return nil
	}
	return s.stack[len(s.stack)-1]
}

// Token is the opaque handle returned by Scope and required by Exit. It
// encodes the depth the push happened at so out-of-order Exit calls are
// detected rather than silently corrupting the stack.
type Token struct {
	depth int
	elem  *Element
}

// pushParent pushes e as the ambient parent and returns a token identifying
// this push.
func pushParent(e *Element) Token {
	s := currentStack()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stack = append(s.stack, e)
	return Token{depth: len(s.stack), elem: e}
}

// popParent pops the ambient parent if tok matches the current top of
// stack exactly (by depth and identity); otherwise returns ErrDetachedScope
// and leaves the stack untouched, per spec.md §7's DetachedScope row.
func popParent(tok Token) error {
	s := currentStack()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.stack) != tok.depth || s.stack[len(s.stack)-1] != tok.elem {
		return ErrDetachedScope
	}
	s.stack = s.stack[:len(s.stack)-1]
	return nil
}

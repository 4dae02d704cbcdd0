// Package element implements the scoped element-tree builder: construction
// of an element auto-mounts it to whatever element is currently the ambient
// parent, and Scope/Exit push and pop that ambient parent for the lifetime
// of a nested builder block. The slot is per-goroutine, not a global, so
// concurrent sessions building trees on separate goroutines never observe
// each other's ambient parent.
package element

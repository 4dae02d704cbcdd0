// Package reactive implements the fine-grained reactivity graph: signals,
// derived values, and effects, with automatic dependency tracking and
// glitch-free propagation.
//
// A task in this package is whatever goroutine is currently evaluating a
// signal read, effect body, or derived computation. Tracking state
// (the active subscriber, the active scheduler) lives in a per-goroutine
// slot rather than a package global, so unrelated goroutines never observe
// each other's in-flight dependency tracking.
package reactive

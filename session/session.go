package session

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/flowui-dev/flowui/config"
	"github.com/flowui-dev/flowui/element"
	"github.com/flowui-dev/flowui/reactive"
	"github.com/flowui-dev/flowui/render"
	"github.com/flowui-dev/flowui/vdom"
)

// State is a position in the per-connection state machine of spec.md §4.S:
// CONNECTING -> INITIALIZING -> ACTIVE -> CLOSING -> CLOSED.
type State int32

const (
	StateConnecting State = iota
	StateInitializing
	StateActive
	StateClosing
	StateClosed
)

func (st State) String() string {
	switch st {
	case StateConnecting:
		return "CONNECTING"
	case StateInitializing:
		return "INITIALIZING"
	case StateActive:
		return "ACTIVE"
	case StateClosing:
		return "CLOSING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Option configures a Session at construction.
type Option func(*Session)

func WithConfig(cfg config.Config) Option { return func(s *Session) { s.cfg = cfg } }
func WithLogger(l *slog.Logger) Option    { return func(s *Session) { s.logger = l } }
func WithMetrics(m *Metrics) Option       { return func(s *Session) { s.metrics = m } }
func WithStore(store Store) Option        { return func(s *Session) { s.store = store } }
func WithRenderer(r render.Renderer) Option {
	return func(s *Session) { s.renderer = r }
}

// WithReactiveMetrics attaches Prometheus instrumentation to the session's
// reactive.Scope (effects run, flushes, dependency-cycle aborts). Distinct
// from WithMetrics, which instruments the session itself.
func WithReactiveMetrics(m *reactive.Metrics) Option {
	return func(s *Session) { s.reactiveMetrics = m }
}

// WithSnapshot supplies the hooks needed to persist and resume session
// state through a Store: snapshot captures whatever opaque state the root
// needs to rebuild itself, called once the session begins CLOSING.
func WithSnapshot(snapshot func() []byte) Option {
	return func(s *Session) { s.snapshotFn = snapshot }
}

// Session drives one connection's element tree, reactive scope, and
// handler registry. Per spec.md §5, every reactive read/write, element
// construction, and handler invocation for a given Session happens on its
// single cooperative task (eventLoop); rendering and transport I/O run on
// separate goroutines that never touch the live element tree.
type Session struct {
	id  string
	cfg config.Config

	transport Transport
	store     Store
	renderer  render.Renderer

	snapshotFn func() []byte

	logger          *slog.Logger
	metrics         *Metrics
	reactiveMetrics *reactive.Metrics
	tracer          trace.Tracer

	root     *element.Element
	scope    *reactive.Scope
	registry *Registry

	state atomic.Int32

	messages   chan InboundMessage
	dispatchCh chan func()

	updateMu  sync.Mutex
	pending   map[uint64]*vdom.RenderNode
	updateSig chan struct{}

	done      chan struct{}
	closeOnce sync.Once
}

// New constructs a Session around root (already built, e.g. inside an
// element.Scope by the caller) and a Transport. Run must be called to
// drive it through INITIALIZING/ACTIVE.
func New(root *element.Element, transport Transport, opts ...Option) *Session {
	s := &Session{
		id:         generateSessionID(),
		root:       root,
		transport:  transport,
		cfg:        config.Default(),
		logger:     slog.Default(),
		renderer:   render.NewHTMLRenderer(false),
		registry:   newRegistry(),
		messages:   make(chan InboundMessage, 64),
		dispatchCh: make(chan func(), 64),
		pending:    make(map[uint64]*vdom.RenderNode),
		updateSig:  make(chan struct{}, 1),
		done:       make(chan struct{}),
		tracer:     otel.Tracer("github.com/flowui-dev/flowui/session"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cfg = config.Normalize(s.cfg)
	s.scope = reactive.NewScope(s.cfg.Equality, s.cfg.MaxPropagationDepth, reactive.WithMetrics(s.reactiveMetrics))
	s.logger = s.logger.With("session_id", s.id)
	s.state.Store(int32(StateConnecting))
	return s
}

func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("session: crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

// ID returns the session's stable identifier.
func (s *Session) ID() string { return s.id }

// State returns the current position in the state machine.
func (s *Session) State() State { return State(s.state.Load()) }

func (s *Session) setState(st State) { s.state.Store(int32(st)) }

// Root returns the session's root element.
func (s *Session) Root() *element.Element { return s.root }

// Scope returns the session's reactive scope, for code that builds the
// element tree and wants to create effects owned by this session.
func (s *Session) Scope() *reactive.Scope { return s.scope }

// Run drives the session from INITIALIZING through CLOSED, blocking until
// the transport closes or ctx is canceled. It is safe to call exactly
// once per Session.
func (s *Session) Run(ctx context.Context) error {
	s.setState(StateInitializing)
	s.registry.RebuildFull(s.root)

	if err := s.sendFullRender(ctx); err != nil {
		s.setState(StateClosed)
		return err
	}

	s.setState(StateActive)
	s.metrics.sessionStarted()
	defer s.metrics.sessionEnded()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); s.inboundLoop(runCtx) }()
	go func() { defer wg.Done(); s.outboundLoop(runCtx) }()

	// The event loop IS the session's single cooperative task: every
	// handler invocation and every dispatched continuation runs here, in
	// arrival order, per spec.md §5's ordering guarantees.
	s.eventLoop(runCtx)
	wg.Wait()

	s.setState(StateClosing)
	s.saveSnapshot(context.Background())
	s.scope.Dispose()
	_ = s.transport.Close()
	s.setState(StateClosed)
	return nil
}

// saveSnapshot persists the session's state to Store, if both a Store and
// a WithSnapshot hook were configured — the detach/resume path
// SPEC_FULL.md describes. A nil store or snapshot hook makes this a no-op,
// since most sessions (and every test) run without persistence.
func (s *Session) saveSnapshot(ctx context.Context) {
	if s.store == nil || s.snapshotFn == nil {
		return
	}
	snap := Snapshot{SessionID: s.id, SavedAt: time.Now(), Data: s.snapshotFn()}
	if err := s.store.Save(ctx, snap); err != nil {
		s.logger.Error("save snapshot", "session_id", s.id, "error", err)
	}
}

// Resume rebuilds a session from a previously saved Snapshot: it loads the
// snapshot by sessionID from store, passes its Data to buildRoot to
// reconstruct the element tree, and constructs a new Session that reuses
// sessionID rather than minting a fresh one. Run must still be called to
// drive it through INITIALIZING/ACTIVE, exactly as with New.
func Resume(ctx context.Context, store Store, sessionID string, transport Transport, buildRoot func(data []byte) *element.Element, opts ...Option) (*Session, error) {
	snap, err := store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("session: resume %q: %w", sessionID, err)
	}
	root := buildRoot(snap.Data)
	s := New(root, transport, opts...)
	s.id = snap.SessionID
	s.store = store
	s.logger = s.logger.With("session_id", s.id)
	return s, nil
}

// sendFullRender renders the whole tree once and writes it as the initial
// replace patch, per spec.md §4.S's INITIALIZING step.
func (s *Session) sendFullRender(ctx context.Context) error {
	node := vdom.FromElement(s.root)
	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, node, nil); err != nil {
		return fmt.Errorf("session: initial render: %w", err)
	}
	if err := s.writePatchNow(ctx, replacePatch(s.root.ID(), buf.String())); err != nil {
		return fmt.Errorf("session: initial send: %w", err)
	}
	return nil
}

// inboundLoop reads transport frames and forwards decoded messages to the
// event loop. A read error (including transport closure) requests
// session close; a malformed frame is logged and discarded, per spec.md
// §7's MalformedEvent kind.
func (s *Session) inboundLoop(ctx context.Context) {
	for {
		data, err := s.transport.ReadMessage(ctx)
		if err != nil {
			s.requestClose()
			return
		}
		msg, err := decodeInbound(data)
		if err != nil {
			s.logger.Warn("malformed inbound event", "error", err)
			continue
		}
		select {
		case s.messages <- msg:
		case <-s.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// eventLoop is the session's single cooperative task: it serially handles
// inbound messages and dispatched async continuations, running every
// handler and effect flush without locks.
func (s *Session) eventLoop(ctx context.Context) {
	for {
		select {
		case msg := <-s.messages:
			s.handleMessage(ctx, msg)
		case fn := <-s.dispatchCh:
			fn()
			s.flush()
		case <-s.done:
			return
		case <-ctx.Done():
			s.requestClose()
			return
		}
	}
}

// outboundLoop drains the pending-update set and writes patches. It only
// ever touches immutable RenderNode snapshots handed to it by Invalidate,
// never the live element tree, so it needs no coordination with eventLoop
// beyond the channel handoff.
func (s *Session) outboundLoop(ctx context.Context) {
	for {
		select {
		case <-s.updateSig:
			s.flushPatches(ctx)
		case <-s.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) flushPatches(ctx context.Context) {
	s.updateMu.Lock()
	pending := s.pending
	s.pending = make(map[uint64]*vdom.RenderNode)
	s.updateMu.Unlock()

	for targetID, node := range pending {
		spanCtx, span := s.tracer.Start(ctx, "session.send_patch")
		var buf bytes.Buffer
		if err := s.renderer.Render(&buf, node, nil); err != nil {
			s.logger.Error("render patch", "target_id", targetID, "error", err)
			span.End()
			continue
		}
		if err := s.writePatchNow(spanCtx, replacePatch(targetID, buf.String())); err != nil {
			s.logger.Error("write patch", "target_id", targetID, "error", err)
			span.End()
			s.requestClose()
			return
		}
		span.End()
	}
}

func (s *Session) writePatchNow(ctx context.Context, patch OutboundPatch) error {
	data, err := encodeOutbound(patch)
	if err != nil {
		return err
	}
	if err := s.transport.WriteMessage(ctx, data); err != nil {
		return err
	}
	s.metrics.patchSent()
	return nil
}

// handleMessage routes one inbound event to its registered handler, per
// spec.md §4.S's "looks up target_id in the registry, then the handler at
// prop on_<type>". Missing target or handler is logged and discarded.
func (s *Session) handleMessage(ctx context.Context, msg InboundMessage) {
	ctx, span := s.tracer.Start(ctx, "session.handle_event")
	defer span.End()

	target, ok := s.registry.Lookup(msg.TargetID)
	if !ok {
		s.logger.Warn("unknown target_id", "target_id", msg.TargetID, "type", msg.Type)
		return
	}

	propKey := "on_" + msg.Type
	handlerVal, ok := target.Props[propKey]
	if !ok {
		s.logger.Warn("no handler registered", "target_id", msg.TargetID, "prop", propKey)
		return
	}

	event := &Event{Type: msg.Type, TargetID: msg.TargetID, Value: msg.Value, Key: msg.Key}

	switch h := handlerVal.(type) {
	case Handler:
		s.safeCall(msg.TargetID, func() { h(event) })
		s.flush()
	case func(*Event):
		s.safeCall(msg.TargetID, func() { h(event) })
		s.flush()
	case AsyncHandler:
		go s.runAsync(msg.TargetID, h, event)
	case func(*Event) func():
		go s.runAsync(msg.TargetID, h, event)
	default:
		s.logger.Warn("handler has unsupported type", "target_id", msg.TargetID, "prop", propKey)
	}
}

// runAsync executes an AsyncHandler off the cooperative task and, if it
// returns a continuation, dispatches that continuation back onto the
// event loop so any signal writes it makes are serialized with everything
// else, per spec.md §5's "suspension hands control to the scheduler".
func (s *Session) runAsync(targetID uint64, h AsyncHandler, event *Event) {
	var cont func()
	func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("async handler panic", "target_id", targetID, "panic", r)
				s.metrics.handlerError()
			}
		}()
		cont = h(event)
	}()
	if cont != nil {
		s.Dispatch(cont)
	}
}

// safeCall runs fn with panic recovery, per spec.md §7's HandlerException
// kind: caught, logged, surfaced as an error patch, session stays alive.
func (s *Session) safeCall(targetID uint64, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("handler panic", "target_id", targetID, "panic", r)
			s.metrics.handlerError()
			if err := s.writePatchNow(context.Background(), OutboundPatch{
				Op:       "replace",
				TargetID: targetID,
				Payload:  map[string]any{"error": fmt.Sprint(r)},
			}); err != nil {
				s.logger.Error("write error patch", "target_id", targetID, "error", err)
			}
		}
	}()
	fn()
}

// flush runs the scope's pending effects, per spec.md §4.R. A
// *reactive.CycleError (DependencyCycle) is logged and swallowed; the
// session stays alive.
func (s *Session) flush() {
	s.metrics.flushCycle()
	if err := s.scope.Flush(); err != nil {
		if cycleErr, ok := err.(*reactive.CycleError); ok {
			s.logger.Error("flush aborted: dependency cycle", "depth", cycleErr.Depth, "effect", cycleErr.EffectName)
			return
		}
		s.logger.Error("flush aborted: dependency cycle", "error", err)
	}
}

// Invalidate snapshots target's current subtree and enqueues it for the
// outbound loop to render and send as a replace patch, coalescing with
// any not-yet-sent update for the same target. Call it from inside an
// effect body (see Bind) — it must only be called from the session's
// cooperative task, since FromElement reads live element state.
func (s *Session) Invalidate(target *element.Element) {
	if target == nil {
		return
	}
	node := vdom.FromElement(target)
	s.updateMu.Lock()
	s.pending[target.ID()] = node
	s.updateMu.Unlock()
	select {
	case s.updateSig <- struct{}{}:
	default:
	}
}

// Bind creates an effect, owned by this session's scope, that runs thunk
// and then invalidates target — the pattern spec.md §4.S describes as
// "the scheduler notifies the session whenever a subtree effect reruns".
func (s *Session) Bind(target *element.Element, thunk func()) *reactive.Effect {
	name := fmt.Sprintf("bind:%d", target.ID())
	return reactive.CreateEffect(s.scope, func() reactive.Cleanup {
		thunk()
		s.Invalidate(target)
		return nil
	}, reactive.WithName(name))
}

// RebuildRegistry re-registers newSubtree's identifiers in place of
// oldSubtree's, per spec.md §4.S's partial-rerender rule. Element-tree
// code that replaces a subtree in place (rather than mutating props on
// existing elements) should call this after doing so.
func (s *Session) RebuildRegistry(oldSubtree, newSubtree *element.Element) {
	s.registry.RebuildPartial(oldSubtree, newSubtree)
}

// Dispatch queues fn to run on the session's cooperative task. Safe to
// call from any goroutine — the correct way for an AsyncHandler's
// continuation (or any other background work) to touch signals.
func (s *Session) Dispatch(fn func()) {
	switch s.State() {
	case StateClosing, StateClosed:
		return
	}
	select {
	case s.dispatchCh <- fn:
	case <-s.done:
	default:
		s.logger.Warn("dispatch queue full, discarding callback")
	}
}

// requestClose transitions to CLOSING and signals both loops to stop.
// Idempotent.
func (s *Session) requestClose() {
	s.closeOnce.Do(func() {
		s.setState(StateClosing)
		close(s.done)
	})
}

// Close requests an orderly shutdown: it closes the transport (unblocking
// any in-flight read) and signals both loops to stop. Run returns once
// shutdown finishes.
func (s *Session) Close() {
	s.requestClose()
	_ = s.transport.Close()
}

// Done returns a channel closed once the session has requested shutdown.
func (s *Session) Done() <-chan struct{} { return s.done }

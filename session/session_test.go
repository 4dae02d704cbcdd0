package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/flowui-dev/flowui/element"
	"github.com/flowui-dev/flowui/reactive"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// buildCounterTree returns a root with a button (click increments count)
// and a span wrapping a text leaf bound to count's current value, wired
// through a fresh Session. The session is not yet running.
func buildCounterTree(t *testing.T) (sess *Session, client *MemoryTransport, btn, textWrap *element.Element, count *reactive.Signal[int]) {
	t.Helper()

	count = reactive.NewSignal(0, reactive.EqualityValue)

	textLeaf := element.New("", element.Set("text", "0"))
	textWrap = element.New("span")
	if err := textWrap.AddChild(textLeaf); err != nil {
		t.Fatalf("AddChild: %v", err)
	}

	btn = element.New("button")
	root := element.New("div")
	if err := root.AddChild(btn); err != nil {
		t.Fatalf("AddChild: %v", err)
	}
	if err := root.AddChild(textWrap); err != nil {
		t.Fatalf("AddChild: %v", err)
	}

	var server *MemoryTransport
	server, client = NewMemoryTransportPair()
	sess = New(root, server, WithLogger(discardLogger()))

	btn.Props["on_click"] = Handler(func(e *Event) {
		count.Update(func(v int) int { return v + 1 })
	})
	sess.Bind(textWrap, func() {
		textLeaf.Props["text"] = fmt.Sprint(count.Get())
	})

	return sess, client, btn, textWrap, count
}

func nextPatch(t *testing.T, client *MemoryTransport, timeout time.Duration) OutboundPatch {
	t.Helper()
	select {
	case raw := <-client.inbound:
		var p OutboundPatch
		if err := json.Unmarshal(raw, &p); err != nil {
			t.Fatalf("decode patch: %v", err)
		}
		return p
	case <-time.After(timeout):
		t.Fatal("timed out waiting for a patch")
		return OutboundPatch{}
	}
}

// drainUntil reads patches until pred matches one, or the timeout expires.
func drainUntil(t *testing.T, client *MemoryTransport, timeout time.Duration, pred func(OutboundPatch) bool) OutboundPatch {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case raw := <-client.inbound:
			var p OutboundPatch
			if err := json.Unmarshal(raw, &p); err != nil {
				t.Fatalf("decode patch: %v", err)
			}
			if pred(p) {
				return p
			}
		case <-deadline:
			t.Fatal("timed out waiting for matching patch")
			return OutboundPatch{}
		}
	}
}

func TestEventRoundTrip(t *testing.T) {
	sess, client, btn, textWrap, _ := buildCounterTree(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runDone := make(chan struct{})
	go func() {
		_ = sess.Run(ctx)
		close(runDone)
	}()

	msg, _ := json.Marshal(InboundMessage{Type: "click", TargetID: btn.ID()})
	if err := client.WriteMessage(ctx, msg); err != nil {
		t.Fatalf("write event: %v", err)
	}

	patch := drainUntil(t, client, 2*time.Second, func(p OutboundPatch) bool {
		payload, _ := p.Payload.(string)
		return p.TargetID == textWrap.ID() && strings.Contains(payload, ">1<")
	})
	payload, _ := patch.Payload.(string)
	if !strings.Contains(payload, ">1<") {
		t.Fatalf("patch payload %q does not reflect incremented count", payload)
	}

	sess.Close()
	<-runDone
}

func TestUnknownTargetLeavesSessionRunning(t *testing.T) {
	sess, client, _, _, _ := buildCounterTree(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runDone := make(chan struct{})
	go func() {
		_ = sess.Run(ctx)
		close(runDone)
	}()

	// Drain the initial full render and the Bind's first-run patch.
	nextPatch(t, client, time.Second)
	nextPatch(t, client, time.Second)

	msg, _ := json.Marshal(InboundMessage{Type: "click", TargetID: 999999})
	if err := client.WriteMessage(ctx, msg); err != nil {
		t.Fatalf("write event: %v", err)
	}

	select {
	case raw := <-client.inbound:
		t.Fatalf("unexpected patch after unknown target_id: %s", raw)
	case <-time.After(200 * time.Millisecond):
	}

	if sess.State() != StateActive {
		t.Fatalf("state = %v, want ACTIVE", sess.State())
	}

	sess.Close()
	<-runDone
}

func TestHandlerExceptionEmitsErrorPatchAndStaysAlive(t *testing.T) {
	sess, client, _, _, _ := buildCounterTree(t)

	boom := element.New("button")
	boom.Props["on_click"] = Handler(func(e *Event) {
		panic("boom")
	})
	if err := sess.root.AddChild(boom); err != nil {
		t.Fatalf("AddChild: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runDone := make(chan struct{})
	go func() {
		_ = sess.Run(ctx)
		close(runDone)
	}()

	msg, _ := json.Marshal(InboundMessage{Type: "click", TargetID: boom.ID()})
	if err := client.WriteMessage(ctx, msg); err != nil {
		t.Fatalf("write event: %v", err)
	}

	patch := drainUntil(t, client, 2*time.Second, func(p OutboundPatch) bool {
		return p.TargetID == boom.ID()
	})
	errPayload, ok := patch.Payload.(map[string]any)
	if !ok {
		t.Fatalf("expected map payload for error patch, got %T", patch.Payload)
	}
	if _, ok := errPayload["error"]; !ok {
		t.Fatalf("expected error key in patch payload: %+v", errPayload)
	}

	if sess.State() != StateActive {
		t.Fatalf("state = %v, want ACTIVE after recovered handler panic", sess.State())
	}

	sess.Close()
	<-runDone
}

func TestCancellationClosesWithinDeadline(t *testing.T) {
	sess, client, _, _, _ := buildCounterTree(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runDone := make(chan struct{})
	go func() {
		_ = sess.Run(ctx)
		close(runDone)
	}()

	nextPatch(t, client, time.Second) // initial full render
	nextPatch(t, client, time.Second) // Bind's first-run patch

	client.Close()

	select {
	case <-runDone:
	case <-time.After(2 * time.Second):
		t.Fatal("session did not shut down within deadline after transport close")
	}

	if sess.State() != StateClosed {
		t.Fatalf("state = %v, want CLOSED", sess.State())
	}

	select {
	case raw, ok := <-client.inbound:
		if ok {
			t.Fatalf("unexpected patch after close: %s", raw)
		}
	default:
	}
}

func TestDetachSavesSnapshotAndResumeRebuildsRoot(t *testing.T) {
	store := NewMemoryStore()

	count := reactive.NewSignal(7, reactive.EqualityValue)
	root := element.New("div")
	server, client := NewMemoryTransportPair()

	sess := New(root, server,
		WithLogger(discardLogger()),
		WithStore(store),
		WithSnapshot(func() []byte {
			return []byte(fmt.Sprint(count.Peek()))
		}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runDone := make(chan struct{})
	go func() {
		_ = sess.Run(ctx)
		close(runDone)
	}()

	nextPatch(t, client, time.Second) // initial full render

	sess.Close()
	<-runDone

	snap, err := store.Load(context.Background(), sess.ID())
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if string(snap.Data) != "7" {
		t.Fatalf("snapshot data = %q, want %q", snap.Data, "7")
	}

	var rebuiltWith string
	server2, client2 := NewMemoryTransportPair()
	resumed, err := Resume(context.Background(), store, sess.ID(), server2, func(data []byte) *element.Element {
		rebuiltWith = string(data)
		return element.New("div")
	}, WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if rebuiltWith != "7" {
		t.Fatalf("buildRoot received %q, want %q", rebuiltWith, "7")
	}
	if resumed.ID() != sess.ID() {
		t.Fatalf("resumed session id = %q, want original id %q", resumed.ID(), sess.ID())
	}

	ctx2, cancel2 := context.WithCancel(context.Background())
	defer cancel2()
	runDone2 := make(chan struct{})
	go func() {
		_ = resumed.Run(ctx2)
		close(runDone2)
	}()
	nextPatch(t, client2, time.Second) // resumed session's initial full render
	resumed.Close()
	<-runDone2
}

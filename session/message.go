package session

import "encoding/json"

// InboundMessage is the wire shape of a client event, per spec.md §6:
// {type, target_id, value?, key?}.
type InboundMessage struct {
	Type     string `json:"type"`
	TargetID uint64 `json:"target_id"`
	Value    any    `json:"value,omitempty"`
	Key      string `json:"key,omitempty"`
}

// decodeInbound parses a raw transport frame into an InboundMessage.
// Malformed JSON or a missing type/target_id is ErrMalformedEvent, per
// spec.md §7's MalformedEvent kind ("discard, log").
func decodeInbound(data []byte) (InboundMessage, error) {
	var msg InboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return InboundMessage{}, ErrMalformedEvent
	}
	if msg.Type == "" {
		return InboundMessage{}, ErrMalformedEvent
	}
	var present struct {
		TargetID *uint64 `json:"target_id"`
	}
	if err := json.Unmarshal(data, &present); err != nil || present.TargetID == nil {
		return InboundMessage{}, ErrMalformedEvent
	}
	return msg, nil
}

// Event is the decoded message handed to a registered Handler/AsyncHandler.
type Event struct {
	Type     string
	TargetID uint64
	Value    any
	Key      string
}

// Handler runs synchronously on the session's single cooperative task,
// per spec.md §4.S/§5. Registered as an element prop at "on_<type>".
type Handler func(*Event)

// AsyncHandler runs on its own goroutine (spec.md §5's "suspension
// points"); its return value, if non-nil, is a continuation dispatched
// back onto the session's cooperative task once the goroutine completes,
// so any signal writes it makes are properly serialized.
type AsyncHandler func(*Event) func()

// OutboundPatch is the wire shape of a server update, per spec.md §6:
// {op: "replace", target_id, payload}. Payload is renderer-specific: an
// HTML string for the HTML back end, or a cell-buffer diff for the
// terminal back end.
type OutboundPatch struct {
	Op       string `json:"op"`
	TargetID uint64 `json:"target_id"`
	Payload  any    `json:"payload"`
}

func encodeOutbound(p OutboundPatch) ([]byte, error) {
	return json.Marshal(p)
}

func replacePatch(targetID uint64, payload any) OutboundPatch {
	return OutboundPatch{Op: "replace", TargetID: targetID, Payload: payload}
}

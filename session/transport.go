package session

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
)

// Transport is the duplex message channel a Session reads events from and
// writes patches to. Grounded on the teacher's pattern of keeping
// *websocket.Conn behind a narrow interface so session logic is testable
// without a real socket.
type Transport interface {
	// ReadMessage blocks for the next inbound frame, or returns an error
	// (including ctx.Err()) when the transport is closed or ctx is done.
	ReadMessage(ctx context.Context) ([]byte, error)
	// WriteMessage sends a single outbound frame. Implementations must
	// serialize concurrent writers themselves.
	WriteMessage(ctx context.Context, data []byte) error
	Close() error
}

// WebSocketTransport adapts a *websocket.Conn to Transport. Writes are
// serialized with a mutex since gorilla/websocket forbids concurrent
// writers on one connection, matching the teacher's Session.mu guard
// around conn.WriteMessage.
type WebSocketTransport struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// NewWebSocketTransport wraps an already-upgraded connection.
func NewWebSocketTransport(conn *websocket.Conn) *WebSocketTransport {
	return &WebSocketTransport{conn: conn}
}

func (t *WebSocketTransport) ReadMessage(ctx context.Context) ([]byte, error) {
	// gorilla/websocket reads cannot observe ctx; closing the connection
	// when ctx is done unblocks the read.
	stop := context.AfterFunc(ctx, func() { t.conn.Close() })
	defer stop()
	_, data, err := t.conn.ReadMessage()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	return data, nil
}

func (t *WebSocketTransport) WriteMessage(ctx context.Context, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

func (t *WebSocketTransport) Close() error {
	return t.conn.Close()
}

// MemoryTransport is an in-process, channel-pair Transport for tests: one
// side written by the "client" (test code) and read by the session, and
// vice versa.
type MemoryTransport struct {
	inbound  chan []byte
	outbound chan []byte

	closeOnce sync.Once
	closed    chan struct{}
}

// NewMemoryTransportPair returns two ends of the same in-memory channel
// pair: the server end (what Session uses) and the client end (what test
// code drives).
func NewMemoryTransportPair() (server *MemoryTransport, client *MemoryTransport) {
	toServer := make(chan []byte, 32)
	toClient := make(chan []byte, 32)
	closed := make(chan struct{})
	server = &MemoryTransport{inbound: toServer, outbound: toClient, closed: closed}
	client = &MemoryTransport{inbound: toClient, outbound: toServer, closed: closed}
	return server, client
}

func (t *MemoryTransport) ReadMessage(ctx context.Context) ([]byte, error) {
	select {
	case data, ok := <-t.inbound:
		if !ok {
			return nil, ErrSessionClosed
		}
		return data, nil
	case <-t.closed:
		return nil, ErrSessionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *MemoryTransport) WriteMessage(ctx context.Context, data []byte) error {
	select {
	case t.outbound <- data:
		return nil
	case <-t.closed:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close closes the shared closed signal. Both ends of a pair reference the
// same channel but guard it with their own sync.Once, so Close is safe to
// call from either or both ends without a double-close panic.
func (t *MemoryTransport) Close() error {
	t.closeOnce.Do(func() {
		select {
		case <-t.closed:
		default:
			close(t.closed)
		}
	})
	return nil
}

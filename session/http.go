package session

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/flowui-dev/flowui/config"
	"github.com/flowui-dev/flowui/element"
)

// upgrader is shared across connections; gorilla/websocket's Upgrader is
// safe for concurrent use once configured.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandlerOption configures the HTTP upgrade handler; distinct from Option
// (Session construction) since some choices — the logger, the metrics
// registry, the store — are shared across every connection it accepts.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	cfg        config.Config
	logger     *slog.Logger
	metrics    *Metrics
	store      Store
	resumeRoot func(data []byte) *element.Element
}

func WithHandlerConfig(cfg config.Config) HandlerOption {
	return func(h *handlerConfig) { h.cfg = cfg }
}

func WithHandlerLogger(l *slog.Logger) HandlerOption {
	return func(h *handlerConfig) { h.logger = l }
}

func WithHandlerMetrics(m *Metrics) HandlerOption {
	return func(h *handlerConfig) { h.metrics = m }
}

func WithHandlerStore(store Store) HandlerOption {
	return func(h *handlerConfig) { h.store = store }
}

// WithResumeRoot enables detach/resume: when a connection arrives with a
// non-empty "X-Resume-Session" header and a matching snapshot exists in
// the configured Store, the handler rebuilds the element tree via
// buildRoot(snapshot.Data) and reuses the prior session ID, instead of
// starting a fresh session with newRoot.
func WithResumeRoot(buildRoot func(data []byte) *element.Element) HandlerOption {
	return func(h *handlerConfig) { h.resumeRoot = buildRoot }
}

// NewHTTPHandler builds an http.HandlerFunc that upgrades each request to
// a WebSocket, builds a fresh element tree via newRoot (or resumes one via
// WithResumeRoot/WithHandlerStore), and runs a Session over it until the
// connection closes. newRoot is called once per connection — it is the
// caller's responsibility to build the tree inside an element.Scope if it
// needs one.
func NewHTTPHandler(newRoot func() *element.Element, opts ...HandlerOption) http.HandlerFunc {
	hc := &handlerConfig{cfg: config.Default(), logger: slog.Default()}
	for _, opt := range opts {
		opt(hc)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hc.logger.Error("websocket upgrade failed", "error", err)
			return
		}
		transport := NewWebSocketTransport(conn)

		sessOpts := []Option{
			WithConfig(hc.cfg),
			WithLogger(hc.logger),
			WithMetrics(hc.metrics),
			WithStore(hc.store),
		}

		var sess *Session
		if resumeID := r.Header.Get("X-Resume-Session"); resumeID != "" && hc.store != nil && hc.resumeRoot != nil {
			sess, err = Resume(r.Context(), hc.store, resumeID, transport, hc.resumeRoot, sessOpts...)
			if err != nil {
				hc.logger.Warn("resume failed, starting fresh session", "session_id", resumeID, "error", err)
			}
		}
		if sess == nil {
			sess = New(newRoot(), transport, sessOpts...)
		}

		if err := sess.Run(r.Context()); err != nil {
			hc.logger.Error("session ended with error", "session_id", sess.ID(), "error", err)
		}
	}
}

// Mount registers NewHTTPHandler at pattern on r, mirroring the way the
// teacher wires its session manager into an HTTP server with chi.
func Mount(r chi.Router, pattern string, newRoot func() *element.Element, opts ...HandlerOption) {
	r.Get(pattern, NewHTTPHandler(newRoot, opts...))
}

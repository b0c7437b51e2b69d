package preview

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/cortexhq/cortex/internal/diagram"
)

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<title>cortex preview</title>
<style>
  body { margin: 0; background: #0a0a0a; display: flex; justify-content: center; }
  #diagram { padding: 24px; }
  #status { position: fixed; top: 8px; right: 12px; color: #f87171; font: 13px sans-serif; }
</style>
</head>
<body>
<div id="status"></div>
<div id="diagram"></div>
<script>
async function refresh() {
  const res = await fetch('/preview.svg');
  document.getElementById('status').textContent = res.headers.get('X-Render-Error') ? 'syntax error' : '';
  document.getElementById('diagram').innerHTML = await res.text();
}
refresh();
const ws = new WebSocket('ws://' + location.host + '/ws');
ws.onmessage = function(ev) { if (ev.data === 'reload') refresh(); };
</script>
</body>
</html>`

// Server watches a diagram source file and serves a self-refreshing
// rendering of it to a local browser.
type Server struct {
	path    string
	bind    string
	port    int
	poll    time.Duration
	preview *diagram.Preview
	hub     *hub
	watcher *watcher

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
	started  bool
}

// ServerOption configures a Server
type ServerOption func(*Server)

// WithBind overrides the bind address
func WithBind(bind string) ServerOption {
	return func(s *Server) {
		if bind != "" {
			s.bind = bind
		}
	}
}

// WithPort overrides the listening port. Zero asks the OS for a free one.
func WithPort(port int) ServerOption {
	return func(s *Server) { s.port = port }
}

// WithPollInterval overrides the file watch interval
func WithPollInterval(d time.Duration) ServerOption {
	return func(s *Server) { s.poll = d }
}

// WithRenderDebounce overrides the re-render window
func WithRenderDebounce(d time.Duration) ServerOption {
	return func(s *Server) {
		s.preview = diagram.NewPreview(diagram.NewEngine(), d, nil)
	}
}

// NewServer creates a preview server for one source file
func NewServer(path string, opts ...ServerOption) *Server {
	s := &Server{
		path: path,
		bind: "127.0.0.1",
		port: 7319,
		poll: defaultPollInterval,
		hub:  newHub(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.preview == nil {
		s.preview = diagram.NewPreview(diagram.NewEngine(), diagram.DefaultRenderDebounce, nil)
	}
	return s
}

// Start binds the listener and begins watching. It does not block;
// Close shuts everything down.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("preview server already started")
	}

	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", s.bind, s.port))
	if err != nil {
		return fmt.Errorf("failed to bind preview server: %w", err)
	}
	s.listener = listener

	s.watcher = newWatcher(s.path, s.poll, func(content string) {
		s.preview.SetSource(content)
		s.preview.Flush()
		s.hub.broadcast("reload")
	})

	s.server = &http.Server{Handler: s.routes()}
	s.started = true

	go s.watcher.run()
	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			slog.Error("preview server stopped", "error", err)
		}
	}()

	slog.Info("preview server started", "addr", listener.Addr().String(), "file", s.path)
	return nil
}

// Addr returns the bound address, empty before Start
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept"},
		ExposedHeaders: []string{"X-Render-Error"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleIndex)
	r.Get("/preview.svg", s.handleSVG)
	r.Get("/ws", s.hub.serve)
	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	if s.preview.Erred() {
		w.Header().Set("X-Render-Error", "1")
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	fmt.Fprint(w, s.preview.SVG())
}

// Close stops the watcher, drops websocket clients, and shuts the
// listener down
func (s *Server) Close() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	watcher, server := s.watcher, s.server
	s.mu.Unlock()

	watcher.close()
	s.hub.close()
	s.preview.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

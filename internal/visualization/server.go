package visualization

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/nvandessel/crosswalk/internal/constants"
	"github.com/nvandessel/crosswalk/internal/store"
)

// Server serves a local viewer for one archived run.
type Server struct {
	store      store.RunStore
	runID      string
	scale      int
	httpServer *http.Server
	listener   net.Listener
	mu         sync.Mutex
	addr       string
}

// NewServer creates a viewer for runID. The ID must be a full run ID.
func NewServer(rs store.RunStore, runID string) *Server {
	return &Server{
		store: rs,
		runID: runID,
		scale: constants.DefaultSnapshotScale,
	}
}

// Addr returns the address the server is listening on (e.g., "localhost:PORT").
// Returns empty string if the server hasn't started yet.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Handler returns the viewer's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/frames", s.handleFrames)
	mux.HandleFunc("/api/frame", s.handleFrame)
	mux.HandleFunc("/frame.png", s.handleFramePNG)
	return mux
}

// ListenAndServe starts the HTTP server on an OS-assigned port and blocks
// until the context is cancelled. Returns nil on clean shutdown.
func (s *Server) ListenAndServe(ctx context.Context) error {
	// Let the OS pick a free port.
	ln, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	s.mu.Lock()
	s.listener = ln
	s.addr = ln.Addr().String()
	s.httpServer = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	err = s.httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

type pageData struct {
	Run        *store.Run
	ShortID    string
	APIBase    string
	LastTurn   int
	ImageWidth int
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	run, err := s.store.GetRun(r.Context(), s.runID)
	if err != nil {
		http.Error(w, "run not found: "+err.Error(), http.StatusNotFound)
		return
	}

	data := pageData{
		Run:        run,
		ShortID:    shortID(run.ID),
		LastTurn:   run.TurnsPlayed,
		ImageWidth: run.Width * s.scale,
	}
	if addr := s.Addr(); addr != "" {
		data.APIBase = "http://" + addr
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		http.Error(w, "render error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) handleFrames(w http.ResponseWriter, r *http.Request) {
	turns, err := s.store.Turns(r.Context(), s.runID)
	if err != nil {
		http.Error(w, "listing frames: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if turns == nil {
		turns = []int{}
	}
	writeJSON(w, map[string]any{"run_id": s.runID, "turns": turns})
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	turn, ok := parseTurn(w, r)
	if !ok {
		return
	}
	snap, err := s.store.Frame(r.Context(), s.runID, turn)
	if err != nil {
		frameError(w, err)
		return
	}
	writeJSON(w, snap)
}

func (s *Server) handleFramePNG(w http.ResponseWriter, r *http.Request) {
	turn, ok := parseTurn(w, r)
	if !ok {
		return
	}
	snap, err := s.store.Frame(r.Context(), s.runID, turn)
	if err != nil {
		frameError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := RenderPNG(&buf, *snap, s.scale); err != nil {
		http.Error(w, "render error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

func parseTurn(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("turn")
	if raw == "" {
		http.Error(w, "missing 'turn' query parameter", http.StatusBadRequest)
		return 0, false
	}
	turn, err := strconv.Atoi(raw)
	if err != nil || turn < 0 {
		http.Error(w, "invalid turn: "+raw, http.StatusBadRequest)
		return 0, false
	}
	return turn, true
}

func frameError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrFrameNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, "loading frame: "+err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

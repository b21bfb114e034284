// Collector HTTP server: ingest, mailbox, obstacles, last state, versions
package collector

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"robotops-sim/internal/geo"
	"robotops-sim/internal/logging"
	"robotops-sim/internal/store"
	"robotops-sim/internal/telemetry"
)

// Retention for persisted telemetry and path history.
const (
	RetentionWindow     = 30 * 24 * time.Hour
	maintenanceInterval = time.Hour
)

// Server holds the collector's shared state. The mailbox and gate carry
// their own locks; the store serializes through its single connection.
type Server struct {
	db       *store.DB
	mailbox  *Mailbox
	gate     *PersistenceGate
	sessions *sessionStore
	sink     TelemetryWriter // optional fan-out beside the store
}

// NewServer wires the collector. sink may be nil.
func NewServer(db *store.DB, sessionSecret string, sink TelemetryWriter) *Server {
	return &Server{
		db:       db,
		mailbox:  NewMailbox(),
		gate:     NewPersistenceGate(),
		sessions: newSessionStore(sessionSecret),
		sink:     sink,
	}
}

// Mailbox exposes the command queue for embedding callers (tests, manual
// control surfaces).
func (s *Server) Mailbox() *Mailbox {
	return s.mailbox
}

// Router builds the chi router for the full HTTP contract.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Post("/login", s.handleLogin)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/telemetry", s.handleIngest)
		r.Get("/commands", s.handleCommands)
		r.Post("/command", s.handleEnqueue)
		r.Get("/obstacles", s.handleObstacles)
		r.Post("/obstacles", s.handleObstacleUpdate)
		r.Get("/laststate", s.handleLastState)
		r.Post("/versions", s.handleVersionReport)
		r.Get("/versions", s.handleVersions)
		r.Get("/agents", s.handleAgents)
	})

	return r
}

// Start runs the HTTP server until the context is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Router()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	return srv.ListenAndServe()
}

// RunMaintenance prunes history past the retention window on a timer until
// the context is cancelled.
func (s *Server) RunMaintenance(ctx context.Context) {
	log := logging.FromContext(ctx)
	ticker := time.NewTicker(maintenanceInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			n, err := s.db.Prune(time.Now().UTC().Add(-RetentionWindow))
			if err != nil {
				log.Error("retention sweep failed", "err", err)
				continue
			}
			if n > 0 {
				log.Info("retention sweep", "rows_pruned", n)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.sessions.getUser(r); !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad form"})
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	hash, err := s.db.UserHash(username)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "lookup failed"})
		return
	}
	if hash == "" || !checkPassword(password, hash) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}
	s.sessions.setUser(w, r, username)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleIngest accepts one telemetry sample. A 200 means accepted whether or
// not the health gate chose to persist; the path row is written on every
// accepted sample.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var sample telemetry.Sample
	if err := json.NewDecoder(r.Body).Decode(&sample); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed sample"})
		return
	}
	if sample.AgentID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "agent_id required"})
		return
	}
	if sample.Timestamp.IsZero() {
		sample.Timestamp = time.Now().UTC()
	}

	if err := s.db.EnsureAgent(sample.AgentID); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "store failure"})
		return
	}

	// Warm the gate from the store after a collector restart so cooldown
	// windows survive the process.
	if !s.gate.Has(sample.AgentID) {
		if last, err := s.db.LastHealth(sample.AgentID); err == nil && last != nil {
			s.gate.Prime(*last)
		}
	}

	persisted := false
	if s.gate.ShouldPersist(sample) {
		if err := s.db.InsertHealth(sample); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "store failure"})
			return
		}
		persisted = true
	}

	if err := s.db.InsertPath(sample); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "store failure"})
		return
	}

	if s.sink != nil {
		if err := s.sink.Write(telemetry.RowFromSample(sample)); err != nil {
			// Fan-out is best effort; the store already has the data.
			log.Warn("sink write failed", "agent_id", sample.AgentID, "err", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "accepted", "persisted": persisted})
}

// handleCommands drains the agent's mailbox as a side effect of the read.
func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	agentID := r.URL.Query().Get("agent_id")
	if agentID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "agent_id required"})
		return
	}
	cmds := s.mailbox.Drain(agentID)
	if cmds == nil {
		cmds = []QueuedCommand{}
	}
	writeJSON(w, http.StatusOK, cmds)
}

func (s *Server) handleEnqueue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AgentID string `json:"agent_id"`
		Command string `json:"command"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AgentID == "" || req.Command == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "agent_id and command required"})
		return
	}
	cmd := s.mailbox.Enqueue(req.AgentID, req.Command)
	writeJSON(w, http.StatusOK, cmd)
}

func (s *Server) handleObstacles(w http.ResponseWriter, r *http.Request) {
	obstacles, err := s.db.ListObstacles()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "store failure"})
		return
	}
	if obstacles == nil {
		obstacles = []geo.Obstacle{}
	}
	writeJSON(w, http.StatusOK, obstacles)
}

// handleObstacleUpdate swaps the workspace layout. Agents pick the new set
// up on their next obstacle fetch; the center fallback must stay clear.
func (s *Server) handleObstacleUpdate(w http.ResponseWriter, r *http.Request) {
	var obstacles []geo.Obstacle
	if err := json.NewDecoder(r.Body).Decode(&obstacles); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed obstacle list"})
		return
	}
	for _, o := range obstacles {
		if o.Shape != geo.ShapeRectangle && o.Shape != geo.ShapeCircle {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown shape " + string(o.Shape)})
			return
		}
		if o.Collides(geo.CenterX, geo.CenterY) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "obstacle covers the center fallback"})
			return
		}
	}
	if err := s.db.ReplaceObstacles(obstacles); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "store failure"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "count": len(obstacles)})
}

func (s *Server) handleLastState(w http.ResponseWriter, r *http.Request) {
	agentID := r.URL.Query().Get("agent_id")
	if agentID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "agent_id required"})
		return
	}
	last, err := s.db.LastState(agentID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "store failure"})
		return
	}
	if last == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no state recorded"})
		return
	}
	writeJSON(w, http.StatusOK, last)
}

func (s *Server) handleVersionReport(w http.ResponseWriter, r *http.Request) {
	var report telemetry.VersionReport
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil || report.AgentID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed report"})
		return
	}
	if report.ReportedAt.IsZero() {
		report.ReportedAt = time.Now().UTC()
	}
	if err := s.db.EnsureAgent(report.AgentID); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "store failure"})
		return
	}
	changes := 0
	for component, version := range report.Components {
		changed, err := s.db.UpsertVersion(report.AgentID, component, version, report.ReportedAt)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "store failure"})
			return
		}
		if changed {
			changes++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "changes": changes})
}

func (s *Server) handleVersions(w http.ResponseWriter, r *http.Request) {
	agentID := r.URL.Query().Get("agent_id")
	if agentID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "agent_id required"})
		return
	}
	versions, err := s.db.Versions(agentID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "store failure"})
		return
	}
	writeJSON(w, http.StatusOK, versions)
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := s.db.ListAgents()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "store failure"})
		return
	}
	if agents == nil {
		agents = []store.AgentInfo{}
	}
	writeJSON(w, http.StatusOK, agents)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

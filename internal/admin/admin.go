// Package admin implements the HTTP admin surface of spec.md §4.F,
// expanded per SPEC_FULL.md §4.F with an audit trail, health probe, and
// Prometheus metrics endpoint. It is an external collaborator per
// spec.md §1 — nothing in the control or data plane depends on it.
package admin

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"

	"github.com/firefly-raftedge/raftedge/internal/audit"
	"github.com/firefly-raftedge/raftedge/internal/clock"
	"github.com/firefly-raftedge/raftedge/internal/health"
	"github.com/firefly-raftedge/raftedge/internal/logging"
	"github.com/firefly-raftedge/raftedge/internal/state"
	"github.com/firefly-raftedge/raftedge/internal/wire"
)

// followerRow is one entry of the GET /followers/list response.
type followerRow struct {
	IP                string `json:"ip"`
	LastHeartbeatSend int64  `json:"last_heartbeat_send_ns"`
	HasLatency        bool   `json:"has_latency"`
	LatencyNs         int64  `json:"latency_ns,omitempty"`
	Phi               float64 `json:"phi"`
	Failed            bool    `json:"failed"`
}

// ipRequest is the JSON body of POST /followers/add and /followers/delete.
type ipRequest struct {
	IP string `json:"ip"`
}

// errorResponse is the JSON shape returned on any handler failure.
type errorResponse struct {
	Error string `json:"error"`
}

// Server is the admin HTTP surface.
type Server struct {
	view   state.AdminView
	scorer *health.Scorer
	log    *audit.Log
	clk    clock.Clock

	dataplaneReady *atomic.Bool
	fsmAlive       *atomic.Bool

	logger *logging.Logger
	mux    *http.ServeMux
}

// New builds a Server wired to view for follower mutations, scorer for
// liveness enrichment, log for the audit trail, and clk for timestamping
// health computations. dataplaneReady/fsmAlive are flipped by the caller's
// bootstrap sequence and read by GET /healthz.
func New(view state.AdminView, scorer *health.Scorer, log *audit.Log, clk clock.Clock, dataplaneReady, fsmAlive *atomic.Bool) *Server {
	s := &Server{
		view:           view,
		scorer:         scorer,
		log:            log,
		clk:            clk,
		dataplaneReady: dataplaneReady,
		fsmAlive:       fsmAlive,
		logger:         logging.NewLogger("admin"),
		mux:            http.NewServeMux(),
	}
	s.mux.HandleFunc("/followers/list", s.handleList)
	s.mux.HandleFunc("/followers/add", s.handleAdd)
	s.mux.HandleFunc("/followers/delete", s.handleDelete)
	s.mux.HandleFunc("/audit/recent", s.handleAuditRecent)
	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/metrics", s.handleMetrics)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET only")
		return
	}

	now := s.clk.NowNano()
	followers := s.view.ListFollowers()
	rows := make([]followerRow, 0, len(followers))
	for _, f := range followers {
		if f.LastHeartbeatSend != 0 {
			s.scorer.Observe(f.Addr, f.LastHeartbeatSend)
		}
		phi, failed := s.scorer.Status(f.Addr, now)
		rows = append(rows, followerRow{
			IP:                wire.Uint32ToIPv4(f.Addr),
			LastHeartbeatSend: f.LastHeartbeatSend,
			HasLatency:        f.HasLatency,
			LatencyNs:         f.LatencyNs,
			Phi:               phi,
			Failed:            failed,
		})
	}

	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	dotted, addr, ok := s.decodeIP(w, r)
	if !ok {
		return
	}
	if err := s.view.AddFollower(addr); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.log.Record(audit.EventFollowerAdded, dotted, nil)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	dotted, addr, ok := s.decodeIP(w, r)
	if !ok {
		return
	}
	if err := s.view.RemoveFollower(addr); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.log.Record(audit.EventFollowerRemoved, dotted, nil)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeIP parses the {ip} request body, writing a JSON error response and
// returning ok=false on any failure.
func (s *Server) decodeIP(w http.ResponseWriter, r *http.Request) (dotted string, addr uint32, ok bool) {
	var req ipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return "", 0, false
	}
	addr, err := wire.IPv4ToUint32(req.IP)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", 0, false
	}
	return req.IP, addr, true
}

func (s *Server) handleAuditRecent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET only")
		return
	}
	writeJSON(w, http.StatusOK, s.log.Recent(100))
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.dataplaneReady.Load() && s.fsmAlive.Load() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	followers := s.view.ListFollowers()
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "# HELP raftedge_followers_total number of tracked followers\n")
	fmt.Fprintf(w, "# TYPE raftedge_followers_total gauge\n")
	fmt.Fprintf(w, "raftedge_followers_total %d\n", len(followers))

	fmt.Fprintf(w, "# HELP raftedge_follower_latency_ns most recent heartbeat round-trip latency\n")
	fmt.Fprintf(w, "# TYPE raftedge_follower_latency_ns gauge\n")
	for _, f := range followers {
		if f.HasLatency {
			fmt.Fprintf(w, "raftedge_follower_latency_ns{peer=%q} %d\n", wire.Uint32ToIPv4(f.Addr), f.LatencyNs)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// ListenAndServe serves the admin HTTP surface on ln. If tlsCfg is
// non-nil, ln is wrapped for TLS (RAFTEDGE_ADMIN_TLS=1 per SPEC_FULL.md
// §6.1) before serving. The caller owns ln's lifecycle: closing it (e.g.
// on context cancellation) is what makes this return.
func ListenAndServe(ln net.Listener, srv *Server, tlsCfg *tls.Config) error {
	if tlsCfg != nil {
		ln = tls.NewListener(ln, tlsCfg)
	}
	return http.Serve(ln, srv)
}

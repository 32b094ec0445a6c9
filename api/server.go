// Package api exposes a minimal HTTP endpoint over service.Compile for
// editor integrations that would rather send source text over the
// network than shell out to the CLI.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/nand2tetris-go/jackc/compiler"
	"github.com/nand2tetris-go/jackc/config"
	"github.com/nand2tetris-go/jackc/service"
)

// Server is the HTTP front end over one config.Config.
type Server struct {
	cfg    *config.Config
	mux    *http.ServeMux
	server *http.Server
	port   int
}

// NewServer constructs a Server listening on port and compiling
// against cfg.
func NewServer(port int, cfg *config.Config) *Server {
	s := &Server{cfg: cfg, mux: http.NewServeMux(), port: port}
	s.registerRoutes()
	return s
}

// Handler returns the HTTP handler with CORS middleware applied.
func (s *Server) Handler() http.Handler {
	return s.corsMiddleware(s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/v1/compile", s.handleCompile)
}

// Start runs the server until it errors or is shut down.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("127.0.0.1:%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	log.Printf("jackc API server starting on http://127.0.0.1:%d", s.port)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if isAllowedOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isAllowedOrigin(origin string) bool {
	if origin == "" {
		return true
	}
	if strings.HasPrefix(origin, "file://") {
		return true
	}
	return strings.HasPrefix(origin, "http://localhost") ||
		strings.HasPrefix(origin, "https://localhost") ||
		strings.HasPrefix(origin, "http://127.0.0.1") ||
		strings.HasPrefix(origin, "https://127.0.0.1")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// compileRequest is the POST /api/v1/compile request body.
type compileRequest struct {
	Filename string `json:"filename"`
	Source   string `json:"source"`
}

// compileResponse is the success-path response body.
type compileResponse struct {
	VM      string                  `json:"vm"`
	Classes []service.ClassSummary `json:"classes"`
}

// errorResponse is the failure-path response body.
type errorResponse struct {
	Error struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req compileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "malformed_request", err.Error())
		return
	}
	if req.Filename == "" {
		req.Filename = "input.jack"
	}

	result, err := service.Compile([]byte(req.Source), req.Filename, s.cfg)
	if err != nil {
		var ce *compiler.CompileError
		if errors.As(err, &ce) {
			writeErr(w, http.StatusUnprocessableEntity, ce.Kind.String(), ce.Error())
			return
		}
		writeErr(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, compileResponse{
		VM:      string(result.VM),
		Classes: result.Classes,
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("jackc api: error encoding JSON response: %v", err)
	}
}

func writeErr(w http.ResponseWriter, status int, kind, message string) {
	var resp errorResponse
	resp.Error.Kind = kind
	resp.Error.Message = message
	writeJSON(w, status, resp)
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/ledgerlite/ledgerlite"
	"github.com/ledgerlite/ledgerlite/db"
)

// Server exposes a LedgerLite engine over an HTTP JSON API. The engine is
// single-threaded, so every request that touches it holds the server mutex.
type Server struct {
	instance   *ledgerlite.Instance
	engine     *db.Engine
	auth       *AuthConfig
	mu         sync.Mutex
	httpServer *http.Server
}

// NewServer creates a server around the given LedgerLite instance.
func NewServer(instance *ledgerlite.Instance, auth *AuthConfig) *Server {
	return &Server{
		instance: instance,
		engine:   instance.Engine(),
		auth:     auth,
	}
}

// Handler builds the API route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/query", s.requireAuth(s.handleQuery))
	mux.HandleFunc("GET /api/tables", s.requireAuth(s.handleTables))
	mux.HandleFunc("GET /api/tables/{name}", s.requireAuth(s.handleTable))
	mux.HandleFunc("GET /api/history", s.requireAuth(s.handleHistory))
	return mux
}

// Start begins serving on addr. It does not block.
func (s *Server) Start(addr string) {
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	log.Printf("LedgerLite API listening on %s", addr)
}

// Stop gracefully shuts the server down.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.SQL == "" {
		writeError(w, http.StatusBadRequest, "missing sql")
		return
	}

	writeJSON(w, http.StatusOK, s.executeQuery(req.SQL))
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	tables := s.engine.Tables()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, TablesResponse{Tables: tables})
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.engine.Table(name)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	rows, err := s.engine.Rows(name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, TableResponse{
		Name:    table.Name,
		Columns: table.Columns,
		Rows:    rows,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := queryInt(r, "limit", 100)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	entries, total, err := s.engine.History(offset, limit)
	s.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, HistoryResponse{
		Entries: entries,
		Offset:  offset,
		Total:   total,
	})
}

func (s *Server) executeQuery(query string) Response {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.engine.Execute(query)
	if err != nil {
		return Response{
			Success: false,
			Error:   err.Error(),
		}
	}

	data, err := json.Marshal(result)
	if err != nil {
		return Response{
			Success: false,
			Error:   "encode result: " + err.Error(),
		}
	}

	return Response{
		Success: true,
		Type:    resultTypeName(result.Type()),
		Result:  data,
	}
}

func resultTypeName(resultType db.ResultType) string {
	switch resultType {
	case db.RowSetResultType:
		return "rows"
	case db.AffectedCountResultType:
		return "affected"
	case db.SchemaAckResultType:
		return "schema"
	default:
		return "unknown"
	}
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return value, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Success: false, Error: message})
}

// Package fakeapi é uma versão mínima do serviço de documentos/limites, usada
// para validar o harness localmente e nos testes. Não calcula limites: só
// responde com os status que o serviço real usa.
package fakeapi

import (
	"html"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"limites-harness/harness/domain"
)

const DefaultHeading = "Dashboard de Limites"

type Options struct {
	// Documents restringe os documentos conhecidos; vazio aceita qualquer id.
	Documents []string
	// SyncRecalc responde 200 em vez de 202 no recálculo.
	SyncRecalc bool
	// Latency é somada a cada requisição.
	Latency time.Duration
	// ForceStatus força o status por rota ("presign", "patch", "recalculate", "dashboard").
	ForceStatus map[string]int
	// RequireRole exige X-User-Role com esse valor (vazio não exige).
	RequireRole string
	Heading     string
}

// Request é uma requisição recebida, guardada para asserções.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

type Server struct {
	opts   Options
	known  map[string]bool
	router chi.Router

	mu       sync.Mutex
	requests []Request
	docs     map[string]map[string]any
}

func New(opts Options) *Server {
	if opts.Heading == "" {
		opts.Heading = DefaultHeading
	}
	s := &Server{
		opts:  opts,
		known: map[string]bool{},
		docs:  map[string]map[string]any{},
	}
	for _, id := range opts.Documents {
		s.known[id] = true
	}

	r := chi.NewRouter()
	r.Use(s.record, delay(opts.Latency), requireRole(opts.RequireRole))
	r.Post("/documents/storage/presign-upload", s.forced("presign", s.presign))
	r.Patch("/documents/{docID}", s.forced("patch", s.patch))
	r.Post("/limits/recalculate", s.forced("recalculate", s.recalculate))
	r.Get("/dashboard", s.forced("dashboard", s.dashboard))
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Document devolve os campos gravados por patch (nil se nunca houve patch).
func (s *Server) Document(id string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	fields, ok := s.docs[id]
	if !ok {
		return nil
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func (s *Server) forced(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if code, ok := s.opts.ForceStatus[route]; ok {
			writeJSON(w, code, map[string]string{"error": "forced"})
			return
		}
		next(w, r)
	}
}

func (s *Server) presign(w http.ResponseWriter, r *http.Request) {
	var req domain.PresignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Key) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "key is required"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"url":        "http://storage.local/upload/" + req.Key,
		"key":        req.Key,
		"expires_in": 900,
	})
}

func (s *Server) patch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "docID")
	if len(s.known) > 0 && !s.known[id] {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "document not found"})
		return
	}

	var changes []domain.FieldPatch
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil || len(changes) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "expected a non-empty array of field patches"})
		return
	}

	s.mu.Lock()
	fields := s.docs[id]
	if fields == nil {
		fields = map[string]any{}
		s.docs[id] = fields
	}
	for _, c := range changes {
		fields[c.Path] = c.Value
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"id": id, "updated": len(changes)})
}

func (s *Server) recalculate(w http.ResponseWriter, r *http.Request) {
	var req domain.RecalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TenantID == "" || req.Year <= 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "tenant_id and year are required"})
		return
	}
	if s.opts.SyncRecalc {
		writeJSON(w, http.StatusOK, map[string]any{"status": "done", "documents": len(req.DocIDs)})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted", "job_id": uuid.NewString()})
}

func (s *Server) dashboard(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, "<!doctype html><html><head><title>Limites</title></head><body><main><h1>"+
		html.EscapeString(s.opts.Heading)+"</h1><p>Limites por documento</p></main></body></html>")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

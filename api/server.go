// Copyright 2025 Complia
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"complia/platform/orchestrator"
	"complia/platform/shared/logger"
	"complia/platform/shared/types"
	"complia/platform/storage"
)

// maxUploadBytes bounds the multipart form kept in memory per audit run.
const maxUploadBytes = 64 << 20

// AuditService is the audit pipeline surface the API depends on.
type AuditService interface {
	RunAudit(ctx context.Context, req orchestrator.AuditRequest) (*types.AuditResult, error)
	GetHistory(ctx context.Context, userID string) ([]types.AuditHistoryItem, error)
}

// PermitService is the permit pipeline surface the API depends on.
type PermitService interface {
	AnalyzePermitRequest(ctx context.Context, projectDescription, location, userID, sessionID string) (*types.PermitAnalysis, error)
}

// ExplanationService is the explanation pipeline surface the API depends on.
type ExplanationService interface {
	GetExplanation(ctx context.Context, query, userID, sessionID string) (*types.Explanation, error)
}

// ServerConfig carries the collaborators the HTTP server needs.
type ServerConfig struct {
	Audit       AuditService
	Permits     PermitService
	Explain     ExplanationService
	Store       storage.ArtifactStore
	Users       UserStore
	Tokens      *TokenAuthority
	RateLimiter *RateLimiter // optional
}

// Server exposes the three pipelines over HTTP with JWT auth,
// CORS, and optional Redis-backed rate limiting.
type Server struct {
	audit   AuditService
	permits PermitService
	explain ExplanationService
	store   storage.ArtifactStore
	users   UserStore
	tokens  *TokenAuthority
	limiter *RateLimiter
	log     *logger.Logger
}

func NewServer(cfg ServerConfig) *Server {
	return &Server{
		audit:   cfg.Audit,
		permits: cfg.Permits,
		explain: cfg.Explain,
		store:   cfg.Store,
		users:   cfg.Users,
		tokens:  cfg.Tokens,
		limiter: cfg.RateLimiter,
		log:     logger.New("api"),
	}
}

// Handler builds the full route table wrapped in CORS.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.Handle("/prometheus", promhttp.Handler()).Methods("GET")

	r.HandleFunc("/api/v1/auth/login", s.handleLogin).Methods("POST")

	r.HandleFunc("/api/v1/audit/run", s.authenticated(s.handleAuditRun)).Methods("POST")
	r.HandleFunc("/api/v1/audit/history", s.authenticated(s.handleAuditHistory)).Methods("GET")
	r.HandleFunc("/api/v1/audit/pdf/{id}", s.authenticated(s.handleAuditPDF)).Methods("GET")

	r.HandleFunc("/api/v1/permits/analyze", s.authenticated(s.handlePermitAnalyze)).Methods("POST")
	r.HandleFunc("/api/v1/explain", s.authenticated(s.handleExplain)).Methods("POST")

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Configure for production
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

// authenticated verifies the bearer token, applies the rate limit, and
// stores the principal on the request context.
func (s *Server) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			s.writeError(w, http.StatusUnauthorized, "Authorization header required", "")
			return
		}
		user, err := s.tokens.Verify(token)
		if err != nil {
			s.writeError(w, http.StatusUnauthorized, "Invalid token", "")
			return
		}
		if s.limiter != nil && !s.limiter.Allow(r.Context(), user.ID) {
			s.writeError(w, http.StatusTooManyRequests, "Rate limit exceeded", "")
			return
		}

		requestID := uuid.New().String()
		w.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		next(w, r.WithContext(withUser(r.Context(), user)))
		s.log.InfoWithDuration(user.ID, requestID, "request handled",
			float64(time.Since(start).Milliseconds()), map[string]interface{}{
				"method": r.Method,
				"path":   r.URL.Path,
			})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}
	user, err := s.users.Authenticate(req.Username, req.Password)
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, "Invalid credentials", "")
		return
	}
	token, err := s.tokens.Issue(user)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to create token", "")
		return
	}
	s.writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

func (s *Server) handleAuditRun(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid multipart form", err.Error())
		return
	}

	req := orchestrator.AuditRequest{
		AuditType:   r.FormValue("audit_type"),
		CompanyName: r.FormValue("company_name"),
		AuditScope:  r.FormValue("audit_scope"),
		UserID:      user.ID,
		SessionID:   s.sessionID(r),
		ProjectID:   r.FormValue("project_id"),
	}
	if families := strings.TrimSpace(r.FormValue("control_families")); families != "" {
		for _, f := range strings.Split(families, ",") {
			if f = strings.TrimSpace(f); f != "" {
				req.ControlFamilies = append(req.ControlFamilies, f)
			}
		}
	}

	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["documents"] {
			file, err := header.Open()
			if err != nil {
				s.writeError(w, http.StatusBadRequest, "Unreadable upload", header.Filename)
				return
			}
			defer file.Close()
			req.Documents = append(req.Documents, orchestrator.Document{
				Filename: header.Filename,
				Content:  file,
			})
		}
	}

	result, err := s.audit.RunAudit(r.Context(), req)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Audit failed", err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAuditHistory(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	items, err := s.audit.GetHistory(r.Context(), user.ID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to load history", err.Error())
		return
	}
	if items == nil {
		items = []types.AuditHistoryItem{}
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"audits": items})
}

func (s *Server) handleAuditPDF(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	id := mux.Vars(r)["id"]

	data, artifact, err := s.store.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "Report not found", "")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to load report", err.Error())
		return
	}

	// Ownership check happens before any bytes go out.
	if artifact.Metadata.OwnerID != user.ID && user.Role != RoleAdmin {
		s.writeError(w, http.StatusForbidden, "Access denied", "")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

type permitRequest struct {
	ProjectDescription string `json:"project_description"`
	Location           string `json:"location"`
	SessionID          string `json:"session_id"`
}

func (s *Server) handlePermitAnalyze(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	var req permitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}
	if req.ProjectDescription == "" || req.Location == "" {
		s.writeError(w, http.StatusBadRequest, "project_description and location are required", "")
		return
	}

	analysis, err := s.permits.AnalyzePermitRequest(r.Context(),
		req.ProjectDescription, req.Location, user.ID, s.orSessionID(req.SessionID))
	if errors.Is(err, orchestrator.ErrIntentExtraction) {
		s.writeError(w, http.StatusUnprocessableEntity, orchestrator.ErrIntentExtraction.Error(), err.Error())
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Permit analysis failed", err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, analysis)
}

type explainRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	var req explainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}
	if req.Query == "" {
		s.writeError(w, http.StatusBadRequest, "query is required", "")
		return
	}

	result, err := s.explain.GetExplanation(r.Context(), req.Query, user.ID, s.orSessionID(req.SessionID))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Explanation failed", err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) sessionID(r *http.Request) string {
	return s.orSessionID(r.FormValue("session_id"))
}

// orSessionID falls back to a fresh session when the client sent none.
func (s *Server) orSessionID(id string) string {
	if id != "" {
		return id
	}
	return uuid.New().String()
}

type apiError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("", "", "failed to encode response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message, details string) {
	s.writeJSON(w, status, apiError{Error: message, Details: details})
}

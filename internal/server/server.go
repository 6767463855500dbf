// Package server exposes the copy engine and draft store over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"

	"survey-sync/internal/common/errors"
	"survey-sync/internal/common/logger"
	"survey-sync/internal/directory"
	"survey-sync/internal/drafts"
	"survey-sync/internal/models"
	"survey-sync/internal/sync"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DraftStore is the subset of the Redis draft store the API needs.
type DraftStore interface {
	Save(ctx context.Context, draft drafts.Draft) (*drafts.Draft, error)
	Load(ctx context.Context, templateID string) (*drafts.Draft, error)
	Delete(ctx context.Context, templateID string) error
	MoveQuestion(ctx context.Context, templateID string, fromIndex, toIndex int) (*drafts.Draft, error)
}

// HealthChecker reports readiness of one backing dependency.
type HealthChecker func(ctx context.Context) error

// Server wires the HTTP routes to the engine.
type Server struct {
	store        directory.Store
	orchestrator *sync.Orchestrator
	drafts       DraftStore
	health       map[string]HealthChecker
	logger       logger.Logger
}

func New(store directory.Store, orch *sync.Orchestrator, draftStore DraftStore, log logger.Logger) *Server {
	return &Server{
		store:        store,
		orchestrator: orch,
		drafts:       draftStore,
		health:       map[string]HealthChecker{},
		logger:       log.WithFields(map[string]interface{}{"component": "http-server"}),
	}
}

// AddHealthCheck registers a named readiness probe.
func (s *Server) AddHealthCheck(name string, check HealthChecker) {
	s.health[name] = check
}

// Router builds the mux router with all API routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/templates/{id}/copy", s.handleCopyTemplate).Methods(http.MethodPost)
	api.HandleFunc("/versions/{id}/copy", s.handleCopyVersion).Methods(http.MethodPost)
	api.HandleFunc("/versions/{id}/templates", s.handleListTemplates).Methods(http.MethodGet)
	api.HandleFunc("/organizations/{id}/versions", s.handleListVersions).Methods(http.MethodGet)
	api.HandleFunc("/templates/{id}", s.handleGetTemplate).Methods(http.MethodGet)

	if s.drafts != nil {
		api.HandleFunc("/templates/{id}/draft", s.handleSaveDraft).Methods(http.MethodPut)
		api.HandleFunc("/templates/{id}/draft", s.handleGetDraft).Methods(http.MethodGet)
		api.HandleFunc("/templates/{id}/draft", s.handleDeleteDraft).Methods(http.MethodDelete)
		api.HandleFunc("/templates/{id}/draft/move", s.handleMoveDraftQuestion).Methods(http.MethodPost)
	}

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("request received", map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
		})
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{}
	healthy := true

	names := make([]string, 0, len(s.health))
	for name := range s.health {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := s.health[name](r.Context()); err != nil {
			status[name] = err.Error()
			healthy = false
		} else {
			status[name] = "ok"
		}
	}

	if !healthy {
		writeJSON(w, http.StatusServiceUnavailable, Response{Success: false, Data: status})
		return
	}
	writeSuccess(w, http.StatusOK, "healthy", status)
}

func (s *Server) handleCopyTemplate(w http.ResponseWriter, r *http.Request) {
	var req sync.CopyTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewValidationError("invalid request body"))
		return
	}
	req.SourceTemplateID = mux.Vars(r)["id"]

	result, err := s.orchestrator.CopyTemplate(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "template copied", result)
}

func (s *Server) handleCopyVersion(w http.ResponseWriter, r *http.Request) {
	var req sync.CopyVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewValidationError("invalid request body"))
		return
	}
	req.SourceVersionID = mux.Vars(r)["id"]

	result, err := s.orchestrator.CopyVersion(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, result.Message, result)
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	versionID := mux.Vars(r)["id"]

	version, err := s.store.GetVersion(r.Context(), versionID)
	if err != nil {
		writeError(w, err)
		return
	}
	if version == nil {
		writeError(w, errors.NewVersionNotFoundError(versionID))
		return
	}

	templates, err := s.store.ListTemplates(r.Context(), versionID)
	if err != nil {
		writeError(w, err)
		return
	}
	if templates == nil {
		templates = []models.Template{}
	}
	writeSuccess(w, http.StatusOK, "", templates)
}

func (s *Server) handleListVersions(w http.ResponseWriter, r *http.Request) {
	orgID := mux.Vars(r)["id"]

	org, err := s.store.GetOrganization(r.Context(), orgID)
	if err != nil {
		writeError(w, err)
		return
	}
	if org == nil {
		writeError(w, errors.NewOrganizationNotFoundError(orgID))
		return
	}

	versions, err := s.store.ListVersions(r.Context(), orgID)
	if err != nil {
		writeError(w, err)
		return
	}
	if versions == nil {
		versions = []models.TemplateVersion{}
	}
	writeSuccess(w, http.StatusOK, "", versions)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	templateID := mux.Vars(r)["id"]

	template, err := s.store.GetTemplate(r.Context(), templateID)
	if err != nil {
		writeError(w, err)
		return
	}
	if template == nil {
		writeError(w, errors.NewTemplateNotFoundError(templateID))
		return
	}
	writeSuccess(w, http.StatusOK, "", template)
}

func (s *Server) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	var draft drafts.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, errors.NewValidationError("invalid request body"))
		return
	}
	draft.TemplateID = mux.Vars(r)["id"]

	saved, err := s.drafts.Save(r.Context(), draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "draft saved", saved)
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := s.drafts.Load(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", draft)
}

func (s *Server) handleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	if err := s.drafts.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "draft deleted", nil)
}

type moveRequest struct {
	FromIndex int `json:"from_index"`
	ToIndex   int `json:"to_index"`
}

func (s *Server) handleMoveDraftQuestion(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewValidationError("invalid request body"))
		return
	}

	draft, err := s.drafts.MoveQuestion(r.Context(), mux.Vars(r)["id"], req.FromIndex, req.ToIndex)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "question moved", draft)
}

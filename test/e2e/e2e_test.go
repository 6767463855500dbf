// test/e2e/e2e_test.go
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survey-sync/internal/common/logger"
	"survey-sync/internal/directory"
	"survey-sync/internal/drafts"
	"survey-sync/internal/models"
	"survey-sync/internal/server"
	"survey-sync/internal/sync"
)

// The suite drives the whole stack over real HTTP: router, handlers,
// copy engine, draft store, and the in-memory directory standing in
// for Postgres.

type stack struct {
	url   string
	store *directory.Memory
}

func newStack(t *testing.T) *stack {
	store := directory.NewMemory()
	store.AddOrganization(models.Organization{ID: "org-globex", Name: "Globex Insurance"})
	store.AddOrganization(models.Organization{ID: "org-acme", Name: "Acme Health"})
	store.AddVersion(models.TemplateVersion{
		ID:             "ver-2024",
		Name:           "2024 Baseline",
		Description:    "annual baseline",
		OrganizationID: "org-globex",
	})
	store.AddTemplate(models.Template{
		ID:         "tpl-core",
		SurveyCode: "CORE-1",
		VersionID:  "ver-2024",
		Sections:   map[string]int{"Demographics": 0, "Coverage": 1},
		Questions: []models.Question{
			{ID: "q-name", Text: "Company name", TypeKind: models.KindShortText, Section: "Demographics", Order: 0},
			{ID: "q-tier", Text: "Coverage tier", TypeKind: models.KindSingleChoice, Section: "Coverage", Order: 1,
				Config: models.MustConfig(models.ChoiceConfig{Options: []string{"Bronze", "Silver", "Gold"}})},
		},
	})
	store.AddTemplate(models.Template{
		ID:         "tpl-extra",
		SurveyCode: "EXTRA-1",
		VersionID:  "ver-2024",
		Questions: []models.Question{
			{ID: "q-notes", Text: "Notes", TypeKind: models.KindLongText, Order: 0},
		},
	})

	log := logger.NewTestLogger(t)
	orch := sync.NewOrchestrator(store, log, sync.Options{CopyConcurrency: 2})

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	draftStore := drafts.NewStore(client, time.Hour, log)

	srv := httptest.NewServer(server.New(store, orch, draftStore, log).Router())
	t.Cleanup(srv.Close)
	return &stack{url: srv.URL, store: store}
}

func (s *stack) do(t *testing.T, method, path string, body interface{}) (int, server.Response) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.url+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var resp server.Response
	require.NoError(t, json.NewDecoder(res.Body).Decode(&resp))
	return res.StatusCode, resp
}

func decodeData(t *testing.T, resp server.Response, out interface{}) {
	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
}

func TestFullCopyFlow(t *testing.T) {
	s := newStack(t)

	// Copy the whole 2024 version into Acme's new renewal version.
	status, resp := s.do(t, http.MethodPost, "/api/v1/versions/ver-2024/copy", map[string]string{
		"target_organization_id": "org-acme",
		"version_name":           "2025 Renewal",
	})
	require.Equal(t, http.StatusOK, status)
	require.True(t, resp.Success)

	var result sync.CopyVersionResult
	decodeData(t, resp, &result)
	assert.Equal(t, 2, result.TemplatesCreated)
	assert.Empty(t, result.Failures)
	renewalID := result.Version.ID

	// Both templates landed under their source codes.
	status, resp = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/versions/%s/templates", renewalID), nil)
	require.Equal(t, http.StatusOK, status)
	var templates []models.Template
	decodeData(t, resp, &templates)
	require.Len(t, templates, 2)

	// Re-running the same copy updates in place instead of duplicating.
	status, resp = s.do(t, http.MethodPost, "/api/v1/versions/ver-2024/copy", map[string]string{
		"target_organization_id": "org-acme",
		"version_name":           "2025 Renewal",
	})
	require.Equal(t, http.StatusOK, status)
	var second sync.CopyVersionResult
	decodeData(t, resp, &second)
	assert.Equal(t, renewalID, second.Version.ID)
	assert.Equal(t, 0, second.TemplatesCreated)
	assert.Equal(t, 2, second.TemplatesUpdated)

	status, resp = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/versions/%s/templates", renewalID), nil)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, resp, &templates)
	assert.Len(t, templates, 2)
}

func TestSingleTemplateCopyFlow(t *testing.T) {
	s := newStack(t)

	status, resp := s.do(t, http.MethodPost, "/api/v1/templates/tpl-core/copy", map[string]string{
		"target_organization_id": "org-acme",
		"target_version_name":    "Scratch",
	})
	require.Equal(t, http.StatusOK, status)

	var result sync.CopyTemplateResult
	decodeData(t, resp, &result)
	assert.Equal(t, "CORE-1_copy", result.Template.SurveyCode)
	assert.Equal(t, "Acme Health", result.Template.OrganizationName)

	// The copy is a deep clone: question ids differ, content matches.
	status, resp = s.do(t, http.MethodGet, "/api/v1/templates/"+result.Template.ID, nil)
	require.Equal(t, http.StatusOK, status)
	var copied models.Template
	decodeData(t, resp, &copied)
	require.Len(t, copied.Questions, 2)
	for _, q := range copied.Questions {
		assert.NotContains(t, []string{"q-name", "q-tier"}, q.ID)
	}
	assert.Equal(t, "Company name", copied.Questions[0].Text)
}

func TestDraftEditFlow(t *testing.T) {
	s := newStack(t)

	draft := map[string]interface{}{
		"sections": map[string]int{"Coverage": 0},
		"questions": []map[string]interface{}{
			{"id": "q-a", "question_text": "A", "question_type_id": "short_text", "section": "Coverage", "order": 0},
			{"id": "q-b", "question_text": "B", "question_type_id": "short_text", "section": "Coverage", "order": 1},
			{"id": "q-c", "question_text": "C", "question_type_id": "long_text", "order": 2},
		},
	}
	status, _ := s.do(t, http.MethodPut, "/api/v1/templates/tpl-core/draft", draft)
	require.Equal(t, http.StatusOK, status)

	status, resp := s.do(t, http.MethodPost, "/api/v1/templates/tpl-core/draft/move", map[string]int{
		"from_index": 2,
		"to_index":   0,
	})
	require.Equal(t, http.StatusOK, status)

	var moved drafts.Draft
	decodeData(t, resp, &moved)
	require.Len(t, moved.Questions, 3)
	assert.Equal(t, "q-c", moved.Questions[0].ID)
	for i, q := range moved.Questions {
		assert.Equal(t, i, q.Order)
	}

	status, _ = s.do(t, http.MethodDelete, "/api/v1/templates/tpl-core/draft", nil)
	require.Equal(t, http.StatusOK, status)

	status, resp = s.do(t, http.MethodGet, "/api/v1/templates/tpl-core/draft", nil)
	assert.Equal(t, http.StatusNotFound, status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "DRAFT_NOT_FOUND", resp.Error.Code)
}

func TestCopyIntoMissingOrganization(t *testing.T) {
	s := newStack(t)

	status, resp := s.do(t, http.MethodPost, "/api/v1/versions/ver-2024/copy", map[string]string{
		"target_organization_id": "org-ghost",
		"version_name":           "2025",
	})
	assert.Equal(t, http.StatusNotFound, status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ORGANIZATION_NOT_FOUND", resp.Error.Code)
}

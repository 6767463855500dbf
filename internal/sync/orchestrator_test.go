package sync

import (
	"context"
	"encoding/json"
	"testing"

	"survey-sync/internal/common/errors"
	"survey-sync/internal/common/logger"
	"survey-sync/internal/directory"
	"survey-sync/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingIndexer captures catalog entries for assertions.
type recordingIndexer struct {
	entries []CatalogEntry
}

func (r *recordingIndexer) IndexTemplate(ctx context.Context, entry CatalogEntry) error {
	r.entries = append(r.entries, entry)
	return nil
}

func seedStore() *directory.Memory {
	store := directory.NewMemory()
	store.AddOrganization(models.Organization{ID: "org-src", Name: "Globex Insurance"})
	store.AddOrganization(models.Organization{ID: "org-tgt", Name: "Acme Health"})
	store.AddVersion(models.TemplateVersion{
		ID:             "ver-src",
		Name:           "2024 Baseline",
		OrganizationID: "org-src",
	})
	store.AddTemplate(models.Template{
		ID:         "tpl-1",
		SurveyCode: "SUR-1",
		VersionID:  "ver-src",
		Sections:   map[string]int{"Demographics": 0, "Coverage": 1},
		Questions: []models.Question{
			{ID: "q-1", Text: "Company name", TypeKind: models.KindShortText, Section: "Demographics", Order: 0},
			{ID: "q-2", Text: "Coverage tier", TypeKind: models.KindSingleChoice, Section: "Coverage", Order: 1,
				Config: models.MustConfig(models.ChoiceConfig{Options: []string{"Bronze", "Silver", "Gold"}})},
			{ID: "q-3", Text: "Headcount", TypeKind: models.KindNumericRange, Section: "Demographics", Order: 2,
				Config: models.MustConfig(models.NumericRangeConfig{Min: 1, Max: 100000})},
		},
	})
	store.AddTemplate(models.Template{
		ID:         "tpl-2",
		SurveyCode: "SUR-2",
		VersionID:  "ver-src",
		Questions: []models.Question{
			{ID: "q-4", Text: "Additional comments", TypeKind: models.KindLongText, Order: 0},
		},
	})
	return store
}

func newTestOrchestrator(store *directory.Memory, opts Options) *Orchestrator {
	return NewOrchestrator(store, logger.NewNoOpLogger(), opts)
}

func TestCopyTemplate_DefaultsSurveyCodeSuffix(t *testing.T) {
	store := seedStore()
	o := newTestOrchestrator(store, Options{})

	result, err := o.CopyTemplate(context.Background(), CopyTemplateRequest{
		SourceTemplateID:     "tpl-1",
		TargetOrganizationID: "org-tgt",
		TargetVersionName:    "2025 Renewal",
	})

	require.NoError(t, err)
	assert.Equal(t, StateCompleted, result.State)
	assert.Equal(t, ActionCreated, result.Version.Action)
	assert.Equal(t, "Acme Health", result.Version.OrganizationName)
	assert.Equal(t, ActionCreated, result.Template.Action)
	assert.Equal(t, "SUR-1_copy", result.Template.SurveyCode)

	copied, err := store.FindTemplate(context.Background(), result.Version.ID, "SUR-1_copy")
	require.NoError(t, err)
	require.NotNil(t, copied)
	assert.Len(t, copied.Questions, 3)
	for i, q := range copied.Questions {
		assert.Equal(t, i, q.Order)
		assert.NotContains(t, []string{"q-1", "q-2", "q-3"}, q.ID)
	}
	// Demographics outranks Coverage, so both of its questions come first.
	assert.Equal(t, "Demographics", copied.Questions[0].Section)
	assert.Equal(t, "Demographics", copied.Questions[1].Section)
	assert.Equal(t, "Coverage", copied.Questions[2].Section)
}

func TestCopyTemplate_UpdatesExistingTargetCode(t *testing.T) {
	store := seedStore()
	store.AddVersion(models.TemplateVersion{
		ID:             "ver-tgt",
		Name:           "2025 Renewal",
		OrganizationID: "org-tgt",
	})
	store.AddTemplate(models.Template{
		ID:         "tpl-existing",
		SurveyCode: "SUR-9",
		VersionID:  "ver-tgt",
		Questions: []models.Question{
			{ID: "q-old", Text: "Stale question", TypeKind: models.KindShortText, Order: 0},
		},
	})
	o := newTestOrchestrator(store, Options{})

	result, err := o.CopyTemplate(context.Background(), CopyTemplateRequest{
		SourceTemplateID:     "tpl-1",
		TargetOrganizationID: "org-tgt",
		TargetVersionName:    "2025 Renewal",
		NewSurveyCode:        "SUR-9",
	})

	require.NoError(t, err)
	assert.Equal(t, ActionReused, result.Version.Action)
	assert.Equal(t, ActionUpdated, result.Template.Action)
	assert.Equal(t, "tpl-existing", result.Template.ID)
	assert.Equal(t, "SUR-9", result.Template.SurveyCode)

	updated, err := store.GetTemplate(context.Background(), "tpl-existing")
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Len(t, updated.Questions, 3)
	for _, q := range updated.Questions {
		assert.NotEqual(t, "q-old", q.ID)
	}
}

func TestCopyTemplate_SourceMissing(t *testing.T) {
	o := newTestOrchestrator(seedStore(), Options{})

	result, err := o.CopyTemplate(context.Background(), CopyTemplateRequest{
		SourceTemplateID:     "tpl-ghost",
		TargetOrganizationID: "org-tgt",
		TargetVersionName:    "2025 Renewal",
	})

	assert.Nil(t, result)
	assert.Equal(t, errors.ErrCodeTemplateNotFound, errors.CodeOf(err))
}

func TestCopyTemplate_OrganizationMissing(t *testing.T) {
	o := newTestOrchestrator(seedStore(), Options{})

	_, err := o.CopyTemplate(context.Background(), CopyTemplateRequest{
		SourceTemplateID:     "tpl-1",
		TargetOrganizationID: "org-ghost",
		TargetVersionName:    "2025 Renewal",
	})

	assert.Equal(t, errors.ErrCodeOrganizationNotFound, errors.CodeOf(err))
}

func TestCopyTemplate_PreservesConfigPayload(t *testing.T) {
	store := seedStore()
	o := newTestOrchestrator(store, Options{})

	result, err := o.CopyTemplate(context.Background(), CopyTemplateRequest{
		SourceTemplateID:     "tpl-1",
		TargetOrganizationID: "org-tgt",
		TargetVersionName:    "2025 Renewal",
	})
	require.NoError(t, err)

	copied, err := store.GetTemplate(context.Background(), result.Template.ID)
	require.NoError(t, err)
	require.NotNil(t, copied)

	var choice *models.Question
	for i := range copied.Questions {
		if copied.Questions[i].TypeKind == models.KindSingleChoice {
			choice = &copied.Questions[i]
		}
	}
	require.NotNil(t, choice)

	var cfg models.ChoiceConfig
	require.NoError(t, choice.Config.Decode(&cfg))
	assert.Equal(t, []string{"Bronze", "Silver", "Gold"}, cfg.Options)
}

func TestCopyVersion_CreatesVersionAndTemplates(t *testing.T) {
	store := seedStore()
	indexer := &recordingIndexer{}
	o := newTestOrchestrator(store, Options{CopyConcurrency: 3, Indexer: indexer})

	result, err := o.CopyVersion(context.Background(), CopyVersionRequest{
		SourceVersionID:      "ver-src",
		TargetOrganizationID: "org-tgt",
		TargetVersionName:    "2025 Renewal",
	})

	require.NoError(t, err)
	assert.Equal(t, StateCompleted, result.State)
	assert.Equal(t, ActionCreated, result.Version.Action)
	assert.Equal(t, 2, result.TemplatesCreated)
	assert.Equal(t, 0, result.TemplatesUpdated)
	assert.Empty(t, result.Failures)
	assert.Equal(t, `Copied templates to "2025 Renewal": 2 created, 0 updated, 0 failed`, result.Message)

	for _, code := range []string{"SUR-1", "SUR-2"} {
		tpl, err := store.FindTemplate(context.Background(), result.Version.ID, code)
		require.NoError(t, err)
		assert.NotNil(t, tpl, "expected %s in target version", code)
	}
	assert.Len(t, indexer.entries, 2)
}

func TestCopyVersion_SecondRunConverges(t *testing.T) {
	store := seedStore()
	o := newTestOrchestrator(store, Options{CopyConcurrency: 2})
	req := CopyVersionRequest{
		SourceVersionID:      "ver-src",
		TargetOrganizationID: "org-tgt",
		TargetVersionName:    "2025 Renewal",
	}

	first, err := o.CopyVersion(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, first.TemplatesCreated)

	second, err := o.CopyVersion(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, ActionReused, second.Version.Action)
	assert.Equal(t, first.Version.ID, second.Version.ID)
	assert.Equal(t, 0, second.TemplatesCreated)
	assert.Equal(t, 2, second.TemplatesUpdated)
	assert.Empty(t, second.Failures)

	templates, err := store.ListTemplates(context.Background(), second.Version.ID)
	require.NoError(t, err)
	assert.Len(t, templates, 2)
}

func TestCopyVersion_PartialFailureContinues(t *testing.T) {
	store := seedStore()
	store.AddTemplate(models.Template{
		ID:         "tpl-bad",
		SurveyCode: "SUR-3",
		VersionID:  "ver-src",
		Questions: []models.Question{
			{ID: "q-bad", Text: "Pick one", TypeKind: models.KindSingleChoice, Order: 0,
				Config: models.NewQuestionConfig(json.RawMessage(`{"options": []}`))},
		},
	})
	o := newTestOrchestrator(store, Options{CopyConcurrency: 2})

	result, err := o.CopyVersion(context.Background(), CopyVersionRequest{
		SourceVersionID:      "ver-src",
		TargetOrganizationID: "org-tgt",
		TargetVersionName:    "2025 Renewal",
	})

	require.NoError(t, err)
	assert.Equal(t, StateCompleted, result.State)
	assert.Equal(t, 2, result.TemplatesCreated)
	require.Len(t, result.Failures, 1)
	failure := result.Failures[0]
	assert.Equal(t, "tpl-bad", failure.SourceTemplateID)
	assert.Equal(t, "SUR-3", failure.SurveyCode)
	assert.Equal(t, errors.ErrCodeQuestionConfigInvalid, failure.Code)

	// The failed template never landed in the target.
	tpl, err := store.FindTemplate(context.Background(), result.Version.ID, "SUR-3")
	require.NoError(t, err)
	assert.Nil(t, tpl)
}

func TestCopyVersion_SourceVersionMissing(t *testing.T) {
	o := newTestOrchestrator(seedStore(), Options{})

	result, err := o.CopyVersion(context.Background(), CopyVersionRequest{
		SourceVersionID:      "ver-ghost",
		TargetOrganizationID: "org-tgt",
		TargetVersionName:    "2025 Renewal",
	})

	assert.Nil(t, result)
	assert.Equal(t, errors.ErrCodeVersionNotFound, errors.CodeOf(err))
}

func TestCopyVersion_EmptySourceVersion(t *testing.T) {
	store := seedStore()
	store.AddVersion(models.TemplateVersion{
		ID:             "ver-empty",
		Name:           "Empty",
		OrganizationID: "org-src",
	})
	o := newTestOrchestrator(store, Options{})

	result, err := o.CopyVersion(context.Background(), CopyVersionRequest{
		SourceVersionID:      "ver-empty",
		TargetOrganizationID: "org-tgt",
		TargetVersionName:    "2025 Renewal",
	})

	require.NoError(t, err)
	assert.Equal(t, StateCompleted, result.State)
	assert.Equal(t, ActionCreated, result.Version.Action)
	assert.Zero(t, result.TemplatesCreated)
	assert.Zero(t, result.TemplatesUpdated)
}

func TestCopyVersion_MissingRequestFields(t *testing.T) {
	o := newTestOrchestrator(seedStore(), Options{})

	tests := []struct {
		name string
		req  CopyVersionRequest
	}{
		{
			name: "empty source version id",
			req:  CopyVersionRequest{TargetOrganizationID: "org-tgt", TargetVersionName: "2025"},
		},
		{
			name: "empty target organization",
			req:  CopyVersionRequest{SourceVersionID: "ver-src", TargetVersionName: "2025"},
		},
		{
			name: "empty target version name",
			req:  CopyVersionRequest{SourceVersionID: "ver-src", TargetOrganizationID: "org-tgt"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := o.CopyVersion(context.Background(), tt.req)
			assert.Equal(t, errors.ErrCodeValidationFailed, errors.CodeOf(err))
		})
	}
}

package sync

import (
	"context"

	"survey-sync/internal/common/errors"
	"survey-sync/internal/common/logger"
	"survey-sync/internal/directory"
	"survey-sync/internal/models"

	"github.com/google/uuid"
)

// DefaultCopySuffix is appended to the source survey code when a
// single-template copy arrives without a caller-chosen code.
const DefaultCopySuffix = "_copy"

// TemplateReconciler creates or updates one template inside the target
// version, keyed by survey code. An update replaces the question set
// and never renames the target's survey code.
type TemplateReconciler struct {
	store  directory.Store
	merger *QuestionMerger
	logger logger.Logger
}

func NewTemplateReconciler(store directory.Store, merger *QuestionMerger, log logger.Logger) *TemplateReconciler {
	return &TemplateReconciler{
		store:  store,
		merger: merger,
		logger: log.WithFields(map[string]interface{}{"component": "template-reconciler"}),
	}
}

// Reconcile copies source into targetVersionID. The match key is
// desiredCode when supplied, otherwise the source's own survey code
// (the version-copy flow). An ambiguous match in the target surfaces
// as a conflict without touching anything.
func (r *TemplateReconciler) Reconcile(ctx context.Context, targetVersionID string, source models.Template, desiredCode string) (*models.Template, Action, error) {
	code := desiredCode
	if code == "" {
		code = source.SurveyCode
	}
	if code == "" {
		return nil, "", errors.NewValidationError("survey code is required")
	}

	existing, err := r.store.FindTemplate(ctx, targetVersionID, code)
	if err != nil {
		return nil, "", err
	}

	if existing != nil {
		merged, err := r.merger.Merge(ctx, existing, source.Questions, source.Sections)
		if err != nil {
			return nil, "", err
		}
		r.logger.Info("template updated", map[string]interface{}{
			"templateId": merged.ID,
			"surveyCode": merged.SurveyCode,
			"versionId":  targetVersionID,
		})
		return merged, ActionUpdated, nil
	}

	questions, err := r.merger.PrepareQuestions(source.Questions, source.Sections)
	if err != nil {
		return nil, "", err
	}

	created, err := r.store.CreateTemplate(ctx, models.Template{
		ID:         uuid.New().String(),
		SurveyCode: code,
		VersionID:  targetVersionID,
		Questions:  questions,
		Sections:   models.CloneSections(source.Sections),
	})
	if err != nil {
		return nil, "", err
	}

	r.logger.Info("template created", map[string]interface{}{
		"templateId": created.ID,
		"surveyCode": created.SurveyCode,
		"versionId":  targetVersionID,
	})
	return created, ActionCreated, nil
}

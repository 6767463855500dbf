// Package directory provides the organization/template persistence
// contract consumed by the sync engine, with Postgres and in-memory
// implementations.
package directory

import (
	"context"

	"survey-sync/internal/models"
)

// Directory is the read-only view the sync engine consults. Lookups
// that find nothing return (nil, nil); errors are reserved for
// infrastructure failures and data-integrity violations.
type Directory interface {
	GetOrganization(ctx context.Context, id string) (*models.Organization, error)
	GetVersion(ctx context.Context, id string) (*models.TemplateVersion, error)
	FindVersion(ctx context.Context, orgID, name string) (*models.TemplateVersion, error)
	ListVersions(ctx context.Context, orgID string) ([]models.TemplateVersion, error)
	GetTemplate(ctx context.Context, id string) (*models.Template, error)
	FindTemplate(ctx context.Context, versionID, surveyCode string) (*models.Template, error)
	ListTemplates(ctx context.Context, versionID string) ([]models.Template, error)
}

// Store adds the writes the copy engine performs. Uniqueness of
// (organization_id, name) and (version_id, survey_code) is enforced
// here so concurrent copies cannot duplicate versions or templates.
type Store interface {
	Directory

	// EnsureVersion atomically finds or creates a version by
	// (organization_id, name). The bool reports whether a row was created.
	EnsureVersion(ctx context.Context, version models.TemplateVersion) (*models.TemplateVersion, bool, error)

	// CreateTemplate inserts a template with its questions.
	CreateTemplate(ctx context.Context, template models.Template) (*models.Template, error)

	// ReplaceQuestions swaps a template's entire question set and its
	// section-order map in one transaction.
	ReplaceQuestions(ctx context.Context, templateID string, questions []models.Question, sections map[string]int) error
}
